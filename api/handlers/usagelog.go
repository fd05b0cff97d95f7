package handlers

import (
	"net/http"

	"github.com/heliumhq/invite-dashboard-api/api"
	"github.com/heliumhq/invite-dashboard-api/services"
)

// UsageLog exported for testing purposes
type UsageLog struct {
	Service *services.UsageReports
}

// AggregatedUsageLogsHandler returns one page of per-user usage aggregates
func (u UsageLog) AggregatedUsageLogsHandler(w http.ResponseWriter, r *http.Request) {
	req := services.NewUsageLogsRequest()
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := u.Service.Aggregated(ctx, req)
	if err != nil {
		serviceError(w, "Failed to fetch usage logs", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
