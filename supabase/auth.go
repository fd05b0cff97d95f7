package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"

	"github.com/heliumhq/invite-dashboard-api/identity"
	"github.com/heliumhq/invite-dashboard-api/models"
)

const adminUsersPath = "/auth/v1/admin/users"

type listUsersParams struct {
	Page    int `url:"page,omitempty"`
	PerPage int `url:"per_page,omitempty"`
}

type listUsersResponse struct {
	Users []models.Identity `json:"users"`
}

var _ identity.Directory = (*Client)(nil)

// ListUsers returns one page of the auth directory; zero values request the default listing
func (c *Client) ListUsers(ctx context.Context, page, perPage int) ([]models.Identity, error) {
	v, err := query.Values(listUsersParams{Page: page, PerPage: perPage})
	if err != nil {
		return nil, err
	}
	var resp listUsersResponse
	if err := c.do(ctx, http.MethodGet, adminUsersPath, v, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// GetUser fetches one identity by id
func (c *Client) GetUser(ctx context.Context, id string) (*models.Identity, error) {
	user := &models.Identity{}
	if err := c.do(ctx, http.MethodGet, adminUsersPath+"/"+url.PathEscape(id), nil, nil, user); err != nil {
		return nil, mapAuthError(err)
	}
	return user, nil
}

// CreateUser registers a new identity
func (c *Client) CreateUser(ctx context.Context, params identity.CreateParams) (*models.Identity, error) {
	user := &models.Identity{}
	if err := c.do(ctx, http.MethodPost, adminUsersPath, nil, params, user); err != nil {
		return nil, mapAuthError(err)
	}
	if user.ID == "" {
		return nil, errors.New("supabase: create user returned no id")
	}
	return user, nil
}

// DeleteUser removes an identity
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return mapAuthError(c.do(ctx, http.MethodDelete, adminUsersPath+"/"+url.PathEscape(id), nil, nil, nil))
}

var alreadyExistsCodes = map[string]bool{
	"email_exists":        true,
	"user_already_exists": true,
	"phone_exists":        true,
}

func mapAuthError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Status == http.StatusNotFound || apiErr.ErrorCode == "user_not_found":
		return fmt.Errorf("%w: %v", identity.ErrNotFound, apiErr)
	case alreadyExistsCodes[apiErr.ErrorCode]:
		return fmt.Errorf("%w: %v", identity.ErrAlreadyExists, apiErr)
	case apiErr.Status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(apiErr.Message), "already been registered"):
		// older auth servers send no error_code
		return fmt.Errorf("%w: %v", identity.ErrAlreadyExists, apiErr)
	}
	return err
}
