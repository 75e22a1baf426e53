package esi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// APIError represents an error from the ESI API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("esi api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
// 420 is ESI's error-limit response.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429 || e.StatusCode == 420
}

// page holds one page body plus the X-Pages total reported with it.
type page struct {
	body       []byte
	totalPages int
}

// doRequest performs a GET against the given path and returns the body
// and total page count from the X-Pages header (1 when absent).
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) (page, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return page{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return page{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return page{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return page{}, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	totalPages := 1
	if xp := resp.Header.Get("X-Pages"); xp != "" {
		if n, err := strconv.Atoi(xp); err == nil && n > 0 {
			totalPages = n
		}
	}

	return page{body: body, totalPages: totalPages}, nil
}

// doWithRetry performs a request with exponential backoff retry.
func (c *Client) doWithRetry(ctx context.Context, path string, query url.Values) (page, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int63n(int64(backoff)))
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", jitter,
				"path", path,
			)

			select {
			case <-ctx.Done():
				return page{}, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		p, err := c.doRequest(ctx, path, query)
		if err == nil {
			return p, nil
		}

		lastErr = err

		// Check if error is retryable
		apiErr, ok := err.(*APIError)
		if !ok || !apiErr.IsRetryable() {
			return page{}, err
		}
	}

	return page{}, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// getPage fetches one page, consulting the cache unless forceRefresh is set.
func (c *Client) getPage(ctx context.Context, path string, query url.Values, forceRefresh bool) (page, error) {
	key := cacheKey(path, query)

	if c.cache != nil && !forceRefresh {
		if cached, ok := c.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	p, err := c.doWithRetry(ctx, path, query)
	if err != nil {
		return page{}, err
	}

	if c.cache != nil {
		c.cache.Set(ctx, key, p)
	}

	return p, nil
}

// getAllPages walks every page of a paginated endpoint and invokes onPage
// with each raw body, in page order.
func (c *Client) getAllPages(ctx context.Context, path string, query url.Values, forceRefresh bool, onPage func([]byte) error) error {
	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	q.Set("page", "1")

	first, err := c.getPage(ctx, path, q, forceRefresh)
	if err != nil {
		return err
	}
	if err := onPage(first.body); err != nil {
		return err
	}

	for p := 2; p <= first.totalPages; p++ {
		q.Set("page", strconv.Itoa(p))
		next, err := c.getPage(ctx, path, q, forceRefresh)
		if err != nil {
			return err
		}
		if err := onPage(next.body); err != nil {
			return err
		}
	}

	return nil
}

// getJSON performs a single-page GET and decodes the body.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, forceRefresh bool, result any) error {
	p, err := c.getPage(ctx, path, query, forceRefresh)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(p.body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

func cacheKey(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
