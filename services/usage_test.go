package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliumhq/invite-dashboard-api/models"
	"github.com/heliumhq/invite-dashboard-api/services"
	"github.com/heliumhq/invite-dashboard-api/usagelogs"
)

type fakeAggregator struct {
	params usagelogs.Params
	rows   []models.UsageLog
	err    error
}

func (f *fakeAggregator) Aggregate(ctx context.Context, params usagelogs.Params) ([]models.UsageLog, error) {
	f.params = params
	return f.rows, f.err
}

func TestUsageReportsDefaults(t *testing.T) {
	agg := &fakeAggregator{rows: []models.UsageLog{{UserID: "u1", TotalCount: 7, GrandTotalTokens: 99}}}
	u := &services.UsageReports{Aggregator: agg}

	resp, err := u.Aggregated(context.Background(), services.NewUsageLogsRequest())
	require.NoError(t, err)

	assert.Equal(t, usagelogs.Params{PageNumber: 1, PageSize: 10, UserTypeFilter: "external"}, agg.params)
	assert.Equal(t, int64(7), resp.TotalCount)
	assert.Equal(t, int64(99), resp.GrandTotalTokens)
	assert.Equal(t, 10, resp.Limit)
}

func TestUsageReportsValidation(t *testing.T) {
	u := &services.UsageReports{Aggregator: &fakeAggregator{}}

	for name, mutate := range map[string]func(*models.UsageLogsAggregatedRequest){
		"page zero":       func(r *models.UsageLogsAggregatedRequest) { r.Page = 0 },
		"limit too large": func(r *models.UsageLogsAggregatedRequest) { r.Limit = 101 },
		"bad activity":    func(r *models.UsageLogsAggregatedRequest) { r.ActivityFilter = "extreme" },
		"bad user type":   func(r *models.UsageLogsAggregatedRequest) { r.UserTypeFilter = "robot" },
	} {
		t.Run(name, func(t *testing.T) {
			req := services.NewUsageLogsRequest()
			mutate(&req)
			_, err := u.Aggregated(context.Background(), req)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
}

func TestUsageReportsUpstreamError(t *testing.T) {
	u := &services.UsageReports{Aggregator: &fakeAggregator{err: errors.New("rpc down")}}

	_, err := u.Aggregated(context.Background(), services.NewUsageLogsRequest())

	assert.ErrorContains(t, err, "rpc down")
	assert.NotErrorIs(t, err, services.ErrValidation)
}
