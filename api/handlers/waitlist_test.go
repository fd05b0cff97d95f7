package handlers_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliumhq/invite-dashboard-api/models"
)

func TestWaitlistHandler(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.waitlist.Entries = []models.WaitlistEntry{
		{ID: "w1", Email: "early@x.com", JoinedAt: now.Add(-48 * time.Hour)},
		{ID: "w2", Email: "late@x.com", JoinedAt: now},
	}

	rr := f.user(t, http.MethodGet, "/waitlist", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var entries []models.WaitlistEntry
	decode(t, rr, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "w2", entries[0].ID)
	assert.Equal(t, "w1", entries[1].ID)
}

func TestWaitlistHandlerStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.waitlist.Err = errors.New("mongo down")

	rr := f.user(t, http.MethodGet, "/waitlist", "")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to fetch waitlist users", detail(t, rr))
}

func TestArchiveWaitlistHandler(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		archived map[string]bool
		count    float64
	}{
		{
			name:     "listed entries",
			body:     `{"user_ids": ["w2"]}`,
			archived: map[string]bool{"w1": false, "w2": true, "w3": false},
			count:    1,
		},
		{
			name:     "every notified entry",
			body:     `{}`,
			archived: map[string]bool{"w1": true, "w2": false, "w3": true},
			count:    2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.waitlist.Entries = []models.WaitlistEntry{
				{ID: "w1", IsNotified: true},
				{ID: "w2"},
				{ID: "w3", IsNotified: true},
			}

			resp := success(t, f.user(t, http.MethodPost, "/waitlist/archive", tt.body))

			assert.Equal(t, tt.count, resp.Data["archived_count"])
			got := map[string]bool{}
			for _, e := range f.waitlist.Entries {
				got[e.ID] = e.IsArchived
			}
			assert.Equal(t, tt.archived, got)
		})
	}
}
