package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/heliumhq/invite-dashboard-api/databases"
	"github.com/heliumhq/invite-dashboard-api/models"
)

// Waitlist reviews waitlist signups
type Waitlist struct {
	DB databases.WaitlistDatabase
}

// List returns every entry, most recent signup first
func (w *Waitlist) List(ctx context.Context) ([]models.WaitlistEntry, error) {
	entries, err := w.DB.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist: %w", err)
	}
	return entries, nil
}

// Archive archives the listed entries, or every notified entry when ids is
// empty, and returns how many were archived
func (w *Waitlist) Archive(ctx context.Context, ids []string) (int64, error) {
	count, err := w.DB.Archive(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to archive waitlist entries: %w", err)
	}
	zap.S().Infow("archived waitlist entries", "requested", len(ids), "archived", count)
	return count, nil
}
