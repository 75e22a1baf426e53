// Package esi implements the upstream order-book snapshot client.
//
// The client consumes two public market endpoints:
//   - GET /markets/{region_id}/types/   (item types trading in a region)
//   - GET /markets/{region_id}/orders/  (live orders, filtered by type and side)
//
// Both endpoints are paginated through the X-Pages response header. Responses
// may be served from an optional Redis-backed cache; a force-refresh flag
// bypasses the cache read and overwrites the stored entry.
package esi
