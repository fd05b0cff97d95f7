package services

import (
	"context"
	"fmt"

	"github.com/heliumhq/invite-dashboard-api/models"
	"github.com/heliumhq/invite-dashboard-api/usagelogs"
)

// UsageReports pages through per-user usage aggregates
type UsageReports struct {
	Aggregator usagelogs.Aggregator
}

// NewUsageLogsRequest returns a request holding the default page and filters
func NewUsageLogsRequest() models.UsageLogsAggregatedRequest {
	return models.UsageLogsAggregatedRequest{
		Page:           1,
		Limit:          10,
		ActivityFilter: "all",
		UserTypeFilter: "external",
	}
}

// Aggregated validates req and runs one aggregation page
func (u *UsageReports) Aggregated(ctx context.Context, req models.UsageLogsAggregatedRequest) (*models.UsageLogsAggregatedResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	rows, err := u.Aggregator.Aggregate(ctx, usagelogs.ParamsFrom(req))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usage logs: %w", err)
	}
	resp := usagelogs.Summarize(rows, req)
	return &resp, nil
}
