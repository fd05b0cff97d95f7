package identity_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliumhq/invite-dashboard-api/identity"
	"github.com/heliumhq/invite-dashboard-api/models"
)

type fakeDirectory struct {
	listFn   func(page, perPage int) ([]models.Identity, error)
	calls    []int
	getFn    func(id string) (*models.Identity, error)
	createFn func(params identity.CreateParams) (*models.Identity, error)
	deleteFn func(id string) error
}

func (f *fakeDirectory) ListUsers(ctx context.Context, page, perPage int) ([]models.Identity, error) {
	f.calls = append(f.calls, page)
	return f.listFn(page, perPage)
}

func (f *fakeDirectory) GetUser(ctx context.Context, id string) (*models.Identity, error) {
	return f.getFn(id)
}

func (f *fakeDirectory) CreateUser(ctx context.Context, params identity.CreateParams) (*models.Identity, error) {
	return f.createFn(params)
}

func (f *fakeDirectory) DeleteUser(ctx context.Context, id string) error {
	return f.deleteFn(id)
}

func makeUsers(prefix string, n int) []models.Identity {
	users := make([]models.Identity, n)
	for i := range users {
		users[i] = models.Identity{ID: fmt.Sprintf("%s-%d", prefix, i), Email: fmt.Sprintf("%s%d@x.com", prefix, i)}
	}
	return users
}

func TestListAllStopsOnShortPage(t *testing.T) {
	dir := &fakeDirectory{listFn: func(page, perPage int) ([]models.Identity, error) {
		assert.Equal(t, identity.PageSize, perPage)
		switch page {
		case 1:
			return makeUsers("a", identity.PageSize), nil
		case 2:
			return makeUsers("b", 3), nil
		}
		t.Fatalf("unexpected page %d", page)
		return nil, nil
	}}

	users, err := identity.ListAll(context.Background(), dir)

	require.NoError(t, err)
	assert.Len(t, users, identity.PageSize+3)
	assert.Equal(t, []int{1, 2}, dir.calls)
}

func TestListAllStopsOnEmptyPage(t *testing.T) {
	dir := &fakeDirectory{listFn: func(page, perPage int) ([]models.Identity, error) {
		if page == 1 {
			return makeUsers("a", identity.PageSize), nil
		}
		return nil, nil
	}}

	users, err := identity.ListAll(context.Background(), dir)

	require.NoError(t, err)
	assert.Len(t, users, identity.PageSize)
}

func TestListAllFallsBackWhenFirstPageFails(t *testing.T) {
	dir := &fakeDirectory{listFn: func(page, perPage int) ([]models.Identity, error) {
		if page == 1 {
			return nil, errors.New("timeout")
		}
		assert.Equal(t, 0, page)
		assert.Equal(t, 0, perPage)
		return makeUsers("u", 2), nil
	}}

	users, err := identity.ListAll(context.Background(), dir)

	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, []int{1, 0}, dir.calls)
}

func TestListAllFailsWhenFallbackFails(t *testing.T) {
	dir := &fakeDirectory{listFn: func(page, perPage int) ([]models.Identity, error) {
		return nil, errors.New("down")
	}}

	users, err := identity.ListAll(context.Background(), dir)

	assert.Error(t, err)
	assert.Nil(t, users)
}

func TestListAllReturnsPartialOnLaterPageFailure(t *testing.T) {
	dir := &fakeDirectory{listFn: func(page, perPage int) ([]models.Identity, error) {
		if page == 1 {
			return makeUsers("a", identity.PageSize), nil
		}
		return nil, errors.New("rate limited")
	}}

	users, err := identity.ListAll(context.Background(), dir)

	require.NoError(t, err)
	assert.Len(t, users, identity.PageSize)
}

func TestListAllDeduplicatesLastWriteWins(t *testing.T) {
	dir := &fakeDirectory{listFn: func(page, perPage int) ([]models.Identity, error) {
		return []models.Identity{
			{ID: "1", Email: "old@x.com"},
			{ID: "2", Email: "two@x.com"},
			{ID: "1", Email: "new@x.com"},
		}, nil
	}}

	users, err := identity.ListAll(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, []models.Identity{
		{ID: "1", Email: "new@x.com"},
		{ID: "2", Email: "two@x.com"},
	}, users)
}

func TestEmailsFiltersInMemory(t *testing.T) {
	dir := &fakeDirectory{listFn: func(page, perPage int) ([]models.Identity, error) {
		return []models.Identity{
			{ID: "1", Email: "one@x.com", Metadata: map[string]interface{}{"full_name": "One"}},
			{ID: "2", Email: "two@x.com"},
			{ID: "3", Email: "three@x.com"},
		}, nil
	}}

	emails, err := identity.Emails(context.Background(), dir, []string{"1", "2", "missing"})

	require.NoError(t, err)
	assert.Equal(t, map[string]models.UserEmail{
		"1": {ID: "1", Email: "one@x.com", FullName: "One"},
		"2": {ID: "2", Email: "two@x.com"},
	}, emails)
}

func TestEmailsWithNoIDsSkipsDirectory(t *testing.T) {
	dir := &fakeDirectory{}

	emails, err := identity.Emails(context.Background(), dir, nil)

	require.NoError(t, err)
	assert.Empty(t, emails)
	assert.Empty(t, dir.calls)
}
