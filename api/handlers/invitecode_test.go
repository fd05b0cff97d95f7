package handlers_test

import (
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliumhq/invite-dashboard-api/models"
)

var codeFormat = regexp.MustCompile(`^NA[A-Z0-9]{5}$`)

func TestInviteCodesHandler(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.codes.Codes = []models.InviteCode{
		{ID: "old", Code: "NAOLD00", CreatedAt: now.Add(-time.Hour)},
		{ID: "new", Code: "NANEW00", CreatedAt: now},
	}

	rr := f.admin(t, http.MethodGet, "/invite-codes", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var codes []models.InviteCode
	decode(t, rr, &codes)
	require.Len(t, codes, 2)
	assert.Equal(t, "new", codes[0].ID)
	assert.Equal(t, "old", codes[1].ID)
}

func TestInviteCodesHandlerStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.codes.Err = errors.New("mongo down")

	rr := f.admin(t, http.MethodGet, "/invite-codes", "")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to fetch invite codes", detail(t, rr))
}

func TestGenerateInviteCodeHandlerDefaults(t *testing.T) {
	f := newFixture(t)

	resp := success(t, f.admin(t, http.MethodPost, "/invite-codes/generate", ""))

	assert.Equal(t, "Invite code generated successfully", resp.Message)
	assert.Regexp(t, codeFormat, resp.Data["code"])
	require.Len(t, f.codes.Codes, 1)
	code := f.codes.Codes[0]
	assert.Equal(t, 1, code.MaxUses)
	assert.Equal(t, 0, code.CurrentUses)
	assert.False(t, code.IsUsed)
	require.NotNil(t, code.ExpiresAt)
	assert.WithinDuration(t, code.CreatedAt.AddDate(0, 0, 30), *code.ExpiresAt, time.Second)
}

func TestGenerateInviteCodeHandlerBatch(t *testing.T) {
	f := newFixture(t)

	resp := success(t, f.admin(t, http.MethodPost, "/invite-codes/generate",
		`{"count": 3, "max_uses": 5, "expires_in_days": 7}`))

	assert.Equal(t, "Successfully generated 3 invite codes", resp.Message)
	codes, ok := resp.Data["codes"].([]interface{})
	require.True(t, ok)
	assert.Len(t, codes, 3)
	for _, c := range codes {
		assert.Regexp(t, codeFormat, c)
	}
	require.Len(t, f.codes.Codes, 3)
	assert.Equal(t, 5, f.codes.Codes[0].MaxUses)
}

func TestGenerateInviteCodeHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"too many", `{"count": 101}`},
		{"expiry too long", `{"expires_in_days": 366}`},
		{"negative uses", `{"max_uses": -1}`},
		{"zero uses", `{"max_uses": 0}`},
		{"zero expiry", `{"expires_in_days": 0}`},
		{"zero count", `{"count": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			rr := f.admin(t, http.MethodPost, "/invite-codes/generate", tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Empty(t, f.codes.Codes)
		})
	}
}

func TestDeleteInviteCodeHandler(t *testing.T) {
	f := newFixture(t)
	f.codes.Codes = []models.InviteCode{{ID: "c1", Code: "NAAAAAA"}}

	resp := success(t, f.admin(t, http.MethodDelete, "/invite-codes/c1", ""))

	assert.Equal(t, "Invite code deleted successfully", resp.Message)
	assert.Empty(t, f.codes.Codes)
}

func TestBulkDeleteInviteCodesHandler(t *testing.T) {
	f := newFixture(t)
	f.codes.Codes = []models.InviteCode{
		{ID: "c1", Code: "NAAAAAA"},
		{ID: "c2", Code: "NABBBBB"},
		{ID: "c3", Code: "NACCCCC"},
	}

	resp := success(t, f.admin(t, http.MethodPost, "/invite-codes/bulk-delete", `{"code_ids": ["c1", "c3"]}`))

	assert.Equal(t, "Successfully deleted 2 invite codes", resp.Message)
	assert.EqualValues(t, 2, resp.Data["deleted_count"])
	require.Len(t, f.codes.Codes, 1)
	assert.Equal(t, "c2", f.codes.Codes[0].ID)
}

func TestBulkDeleteInviteCodesHandlerRequiresIDs(t *testing.T) {
	rr := newFixture(t).admin(t, http.MethodPost, "/invite-codes/bulk-delete", `{"code_ids": []}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestArchiveAndUnarchiveInviteCodeHandlers(t *testing.T) {
	f := newFixture(t)
	f.codes.Codes = []models.InviteCode{{ID: "c1", Code: "NAAAAAA"}}

	resp := success(t, f.admin(t, http.MethodPost, "/invite-codes/archive", `{"code_id": "c1"}`))
	assert.Equal(t, "Invite code archived successfully", resp.Message)
	assert.True(t, f.codes.Codes[0].IsArchived)

	resp = success(t, f.admin(t, http.MethodPost, "/invite-codes/unarchive", `{"code_id": "c1"}`))
	assert.Equal(t, "Invite code unarchived successfully", resp.Message)
	assert.False(t, f.codes.Codes[0].IsArchived)
}

func TestArchiveInviteCodeHandlerUnknownCode(t *testing.T) {
	rr := newFixture(t).admin(t, http.MethodPost, "/invite-codes/archive", `{"code_id": "missing"}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBulkArchiveUsedHandler(t *testing.T) {
	f := newFixture(t)
	f.codes.Codes = []models.InviteCode{
		{ID: "c1", Code: "NAAAAAA", IsUsed: true},
		{ID: "c2", Code: "NABBBBB", IsUsed: true},
		{ID: "c3", Code: "NACCCCC"},
	}

	resp := success(t, f.admin(t, http.MethodPost, "/invite-codes/bulk-archive-used", ""))

	assert.Equal(t, "Successfully archived 2 used invite codes", resp.Message)
	assert.EqualValues(t, 2, resp.Data["archived_count"])
	assert.False(t, f.codes.Codes[2].IsArchived)
}
