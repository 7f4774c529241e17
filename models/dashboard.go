package models

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/spdhub/spdhub_backend/config"
	"github.com/spdhub/spdhub_backend/utils"
)

type DashboardCounts struct {
	PendingRequests  int64 `json:"pending_requests"`
	AssignedRequests int64 `json:"assigned_requests"`
	TodaysEvents     int64 `json:"todays_events"`
	LowStockItems    int64 `json:"low_stock_items"`
}

const dashboardCacheKey = "dashboard:counts"
const dashboardCacheTTL = 30 * time.Second

func lowStockThreshold() int {
	threshold, err := strconv.Atoi(os.Getenv("LOW_STOCK_THRESHOLD"))
	if err != nil || threshold < 0 {
		return 10
	}
	return threshold
}

// GetDashboardCounts serves the portal landing page. Counts are cached for
// a short window; staleness up to the TTL is acceptable here.
func GetDashboardCounts(ctx context.Context) (*DashboardCounts, error) {
	var cached DashboardCounts
	if found, err := config.GetRedisObject(dashboardCacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	var counts DashboardCounts
	var err error

	counts.PendingRequests, err = utils.ResourceCountWhere[StockRequest](ctx, "status = ?", StockRequestStatusPending)
	if err != nil {
		return nil, err
	}
	counts.AssignedRequests, err = utils.ResourceCountWhere[StockRequest](ctx, "status = ?", StockRequestStatusAssigned)
	if err != nil {
		return nil, err
	}

	today := time.Now()
	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	counts.TodaysEvents, err = utils.ResourceCountWhere[Event](ctx,
		"event_date = ? AND status <> ?", todayStart, EventStatusCancelled)
	if err != nil {
		return nil, err
	}

	warehouse, err := GetWarehouseLocation(ctx)
	if err != nil {
		return nil, err
	}
	counts.LowStockItems, err = utils.ResourceCountWhere[StockEntry](ctx,
		"location_id = ? AND qty <= ?", warehouse.ID, lowStockThreshold())
	if err != nil {
		return nil, err
	}

	if err := config.SetRedisObject(dashboardCacheKey, counts, dashboardCacheTTL); err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "models", "GetDashboardCounts", "cache", counts, err)
	}
	return &counts, nil
}
