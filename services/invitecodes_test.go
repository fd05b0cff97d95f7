package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliumhq/invite-dashboard-api/api/testhelpers"
	"github.com/heliumhq/invite-dashboard-api/models"
	"github.com/heliumhq/invite-dashboard-api/services"
)

var codePattern = regexp.MustCompile(`^NA[A-Z0-9]{5}$`)

func intPtr(v int) *int { return &v }

func TestGenerateInviteCodes(t *testing.T) {
	store := &testhelpers.InviteCodeStore{}
	s := &services.InviteCodes{DB: store, Now: func() time.Time { return t0 }}

	codes, err := s.Generate(context.Background(), models.GenerateInviteCodesRequest{Count: intPtr(25), MaxUses: intPtr(3), ExpiresInDays: intPtr(7)})
	require.NoError(t, err)

	assert.Len(t, codes, 25)
	for _, code := range codes {
		assert.Regexp(t, codePattern, code)
	}
	require.Len(t, store.Codes, 25)
	row := store.Codes[0]
	assert.NotEmpty(t, row.ID)
	assert.Equal(t, 3, row.MaxUses)
	assert.Equal(t, 0, row.CurrentUses)
	assert.False(t, row.IsUsed)
	assert.False(t, row.IsArchived)
	assert.Equal(t, []string{}, row.EmailSentTo)
	assert.Equal(t, t0, row.CreatedAt)
	assert.Equal(t, t0.AddDate(0, 0, 7), *row.ExpiresAt)
}

func TestGenerateInviteCodesDefaults(t *testing.T) {
	store := &testhelpers.InviteCodeStore{}
	s := &services.InviteCodes{DB: store, Now: func() time.Time { return t0 }}

	codes, err := s.Generate(context.Background(), models.GenerateInviteCodesRequest{})
	require.NoError(t, err)

	require.Len(t, codes, 1)
	assert.Equal(t, services.DefaultMaxUses, store.Codes[0].MaxUses)
	assert.Equal(t, t0.AddDate(0, 0, services.DefaultExpiresInDays), *store.Codes[0].ExpiresAt)
}

func TestGenerateInviteCodesValidation(t *testing.T) {
	store := &testhelpers.InviteCodeStore{}
	s := &services.InviteCodes{DB: store}

	for name, req := range map[string]models.GenerateInviteCodesRequest{
		"count too high":  {Count: intPtr(101)},
		"negative uses":   {Count: intPtr(1), MaxUses: intPtr(-1)},
		"zero uses":       {MaxUses: intPtr(0)},
		"expiry too long": {Count: intPtr(1), ExpiresInDays: intPtr(366)},
		"negative expiry": {Count: intPtr(1), ExpiresInDays: intPtr(-2)},
		"zero expiry":     {ExpiresInDays: intPtr(0)},
		"negative count":  {Count: intPtr(-5)},
		"zero count":      {Count: intPtr(0)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Generate(context.Background(), req)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
	assert.Empty(t, store.Codes)
}

// constantReader always yields the same byte, so every generated code collides
type constantReader struct{}

func (constantReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestGenerateInviteCodesCollisionFailsBatch(t *testing.T) {
	store := &testhelpers.InviteCodeStore{}
	s := &services.InviteCodes{DB: store, Rand: constantReader{}}

	_, err := s.Generate(context.Background(), models.GenerateInviteCodesRequest{Count: intPtr(2)})

	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Empty(t, store.Codes)
}

func TestInviteCodeArchiveLifecycle(t *testing.T) {
	store := &testhelpers.InviteCodeStore{Codes: []models.InviteCode{
		{ID: "c1", Code: "NAAAAAA", IsUsed: true},
		{ID: "c2", Code: "NABBBBB", IsUsed: true, IsArchived: true},
		{ID: "c3", Code: "NACCCCC"},
	}}
	s := &services.InviteCodes{DB: store}
	ctx := context.Background()

	require.NoError(t, s.Archive(ctx, "c3"))
	assert.True(t, store.Codes[2].IsArchived)
	require.NoError(t, s.Unarchive(ctx, "c3"))
	assert.False(t, store.Codes[2].IsArchived)

	assert.ErrorIs(t, s.Archive(ctx, "missing"), services.ErrNotFound)
	assert.ErrorIs(t, s.Archive(ctx, ""), services.ErrValidation)

	count, err := s.ArchiveUsed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.True(t, store.Codes[0].IsArchived)
	assert.False(t, store.Codes[2].IsArchived)
}

func TestInviteCodeDelete(t *testing.T) {
	store := &testhelpers.InviteCodeStore{Codes: []models.InviteCode{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}}}
	s := &services.InviteCodes{DB: store}
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "c1"))
	require.NoError(t, s.Delete(ctx, "already-gone"))

	count, err := s.BulkDelete(ctx, []string{"c2", "c3"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Empty(t, store.Codes)

	_, err = s.BulkDelete(ctx, nil)
	assert.ErrorIs(t, err, services.ErrValidation)

	store.Err = errors.New("db down")
	assert.Error(t, s.Delete(ctx, "c9"))
}
