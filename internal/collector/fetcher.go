package collector

import (
	"context"

	"github.com/stationledger/marketdata/internal/esi"
	"github.com/stationledger/marketdata/internal/model"
)

// fetchTypeOrders retrieves the station's live order book for one type,
// split by side. It prefers a single combined query; some upstream
// deployments reject the combined shape for certain types, so it falls
// back to separate per-side fetches.
func (c *Collector) fetchTypeOrders(ctx context.Context, typeID int32) (sell, buy []model.Order, err error) {
	orders, err := c.client.RegionOrders(ctx, c.cfg.RegionID, typeID, esi.OrderTypeAll, c.cfg.ForceRefresh)
	if err == nil {
		sell, buy = c.splitStationOrders(orders)
		return sell, buy, nil
	}
	c.logger.Debug("combined order fetch failed, retrying per side", "type_id", typeID, "error", err)

	sellOrders, err := c.client.RegionOrders(ctx, c.cfg.RegionID, typeID, esi.OrderTypeSell, c.cfg.ForceRefresh)
	if err != nil {
		return nil, nil, err
	}
	buyOrders, err := c.client.RegionOrders(ctx, c.cfg.RegionID, typeID, esi.OrderTypeBuy, c.cfg.ForceRefresh)
	if err != nil {
		return nil, nil, err
	}
	sell, _ = c.splitStationOrders(sellOrders)
	_, buy = c.splitStationOrders(buyOrders)
	return sell, buy, nil
}

// splitStationOrders keeps only orders located at the configured station
// and partitions them by side.
func (c *Collector) splitStationOrders(orders []model.Order) (sell, buy []model.Order) {
	for _, o := range orders {
		if o.LocationID != c.cfg.StationID {
			continue
		}
		if o.IsBuyOrder {
			buy = append(buy, o)
		} else {
			sell = append(sell, o)
		}
	}
	return sell, buy
}
