package esi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/stationledger/marketdata/internal/model"
)

// RegionTypes fetches every item type currently listed anywhere in the
// region, paginating through results. The returned set is deduplicated
// and restricted to positive IDs.
func (c *Client) RegionTypes(ctx context.Context, regionID int32, forceRefresh bool) ([]int32, error) {
	path := fmt.Sprintf("/markets/%d/types/", regionID)

	seen := make(map[int32]struct{})
	var types []int32

	err := c.getAllPages(ctx, path, nil, forceRefresh, func(body []byte) error {
		var ids []int32
		if err := json.Unmarshal(body, &ids); err != nil {
			return fmt.Errorf("unmarshal types page: %w", err)
		}
		for _, id := range ids {
			if id <= 0 {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			types = append(types, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get region types %d: %w", regionID, err)
	}

	return types, nil
}

// RegionOrders fetches all live orders in the region for one type and
// side filter (OrderTypeAll, OrderTypeSell or OrderTypeBuy), paginating
// through results. Malformed entries are dropped.
func (c *Client) RegionOrders(ctx context.Context, regionID, typeID int32, orderType string, forceRefresh bool) ([]model.Order, error) {
	path := fmt.Sprintf("/markets/%d/orders/", regionID)
	query := url.Values{}
	query.Set("order_type", orderType)
	query.Set("type_id", strconv.Itoa(int(typeID)))

	var orders []model.Order
	var dropped int

	err := c.getAllPages(ctx, path, query, forceRefresh, func(body []byte) error {
		var raw []apiOrder
		if err := json.Unmarshal(body, &raw); err != nil {
			return fmt.Errorf("unmarshal orders page: %w", err)
		}
		for _, a := range raw {
			o, ok := a.toModel()
			if !ok {
				dropped++
				continue
			}
			orders = append(orders, o)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get region orders %d type %d: %w", regionID, typeID, err)
	}

	if dropped > 0 {
		c.logger.Warn("dropped malformed orders",
			"region_id", regionID,
			"type_id", typeID,
			"dropped", dropped,
		)
	}

	return orders, nil
}

// TypeHistory fetches the regional daily trade history for one type.
func (c *Client) TypeHistory(ctx context.Context, regionID, typeID int32) ([]HistoryDay, error) {
	path := fmt.Sprintf("/markets/%d/history/", regionID)
	query := url.Values{}
	query.Set("type_id", strconv.Itoa(int(typeID)))

	var days []HistoryDay
	if err := c.getJSON(ctx, path, query, false, &days); err != nil {
		return nil, fmt.Errorf("get type history %d region %d: %w", typeID, regionID, err)
	}

	return days, nil
}
