package identity

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/heliumhq/invite-dashboard-api/models"
)

// PageSize is the number of identities requested per directory page
const PageSize = 1000

// maxPages bounds enumeration if the directory keeps returning full pages
const maxPages = 1000

var (
	// ErrNotFound is returned when the directory has no identity with the given id
	ErrNotFound = errors.New("identity not found")
	// ErrAlreadyExists is returned when creating an identity whose email is taken
	ErrAlreadyExists = errors.New("identity already exists")
)

// CreateParams holds the attributes of a new identity
type CreateParams struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	Metadata     map[string]interface{} `json:"user_metadata,omitempty"`
}

// Directory is the external identity store. A page of 0 with perPage 0 asks
// for the directory's unpaginated listing.
type Directory interface {
	ListUsers(ctx context.Context, page, perPage int) ([]models.Identity, error)
	GetUser(ctx context.Context, id string) (*models.Identity, error)
	CreateUser(ctx context.Context, params CreateParams) (*models.Identity, error)
	DeleteUser(ctx context.Context, id string) error
}

// ListAll enumerates every identity in the directory. A failure on the first
// page falls back to one unpaginated call; a failure on a later page returns
// what was collected so far. Duplicate ids keep their first position and the
// last value seen.
func ListAll(ctx context.Context, dir Directory) ([]models.Identity, error) {
	var all []models.Identity
	index := map[string]int{}
	add := func(users []models.Identity) {
		for _, u := range users {
			if i, ok := index[u.ID]; ok {
				all[i] = u
				continue
			}
			index[u.ID] = len(all)
			all = append(all, u)
		}
	}

	for page := 1; page <= maxPages; page++ {
		users, err := dir.ListUsers(ctx, page, PageSize)
		if err != nil {
			if page == 1 {
				zap.S().Warnw("paginated identity listing failed, retrying unpaginated", "error", err)
				users, err = dir.ListUsers(ctx, 0, 0)
				if err != nil {
					return nil, fmt.Errorf("failed to list identities: %w", err)
				}
				add(users)
				return all, nil
			}
			zap.S().Warnw("identity listing stopped early",
				"page", page,
				"collected", len(all),
				"error", err)
			return all, nil
		}
		add(users)
		if len(users) < PageSize {
			break
		}
	}
	return all, nil
}

// Emails returns the email and full name of each requested identity that exists
func Emails(ctx context.Context, dir Directory, ids []string) (map[string]models.UserEmail, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	result := make(map[string]models.UserEmail, len(ids))
	if len(wanted) == 0 {
		return result, nil
	}

	users, err := ListAll(ctx, dir)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if !wanted[u.ID] {
			continue
		}
		fullName, _ := u.Metadata["full_name"].(string)
		result[u.ID] = models.UserEmail{ID: u.ID, Email: u.Email, FullName: fullName}
	}
	return result, nil
}
