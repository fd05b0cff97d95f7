// Package usagelogs passes usage report queries through to the database's
// get_aggregated_usage_logs routine.
package usagelogs

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/heliumhq/invite-dashboard-api/models"
)

const functionName = "get_aggregated_usage_logs"

// Params are the arguments of the aggregation routine
type Params struct {
	SearchQuery         string `json:"search_query" db:"search_query"`
	ActivityLevelFilter string `json:"activity_level_filter" db:"activity_level_filter"`
	PageNumber          int    `json:"page_number" db:"page_number"`
	PageSize            int    `json:"page_size" db:"page_size"`
	UserTypeFilter      string `json:"user_type_filter" db:"user_type_filter"`
}

// Aggregator runs one aggregation query
type Aggregator interface {
	Aggregate(ctx context.Context, params Params) ([]models.UsageLog, error)
}

// ParamsFrom maps a validated request onto routine arguments. The "all"
// activity filter is sent as an empty string.
func ParamsFrom(req models.UsageLogsAggregatedRequest) Params {
	activity := req.ActivityFilter
	if activity == "all" {
		activity = ""
	}
	return Params{
		SearchQuery:         req.SearchQuery,
		ActivityLevelFilter: activity,
		PageNumber:          req.Page,
		PageSize:            req.Limit,
		UserTypeFilter:      req.UserTypeFilter,
	}
}

// Summarize builds the response; the routine repeats the grand totals on every
// row so they are read from the first one
func Summarize(rows []models.UsageLog, req models.UsageLogsAggregatedRequest) models.UsageLogsAggregatedResponse {
	resp := models.UsageLogsAggregatedResponse{
		Success:        true,
		Data:           rows,
		GrandTotalCost: decimal.Zero,
		Page:           req.Page,
		Limit:          req.Limit,
	}
	if resp.Data == nil {
		resp.Data = []models.UsageLog{}
	}
	if len(rows) > 0 {
		resp.TotalCount = rows[0].TotalCount
		resp.GrandTotalTokens = rows[0].GrandTotalTokens
		resp.GrandTotalCost = rows[0].GrandTotalCost
	}
	return resp
}
