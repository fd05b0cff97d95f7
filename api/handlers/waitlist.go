package handlers

import (
	"fmt"
	"net/http"

	"github.com/heliumhq/invite-dashboard-api/api"
	"github.com/heliumhq/invite-dashboard-api/models"
	"github.com/heliumhq/invite-dashboard-api/services"
)

// Waitlist exported for testing purposes
type Waitlist struct {
	Service *services.Waitlist
}

// WaitlistHandler returns every waitlist entry, most recent signup first
func (wl Waitlist) WaitlistHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	entries, err := wl.Service.List(ctx)
	if err != nil {
		serviceError(w, "Failed to fetch waitlist users", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ArchiveWaitlistHandler archives the listed entries, or every notified entry
// when no ids are sent
func (wl Waitlist) ArchiveWaitlistHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ArchiveWaitlistRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := wl.Service.Archive(ctx, req.UserIDs)
	if err != nil {
		serviceError(w, "Failed to archive waitlist users", err)
		return
	}
	writeSuccess(w, fmt.Sprintf("Successfully archived %d waitlist users", count), map[string]interface{}{
		"archived_count": count,
	})
}
