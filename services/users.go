package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/heliumhq/invite-dashboard-api/databases"
	"github.com/heliumhq/invite-dashboard-api/identity"
	"github.com/heliumhq/invite-dashboard-api/models"
)

const (
	// EmailNotAvailable stands in for a profile whose identity has no email
	EmailNotAvailable = "Email not available"
	// DefaultPlanType is reported for profiles without a plan
	DefaultPlanType = "seed"
	// DefaultAccountType is reported for profiles without an account type
	DefaultAccountType = "individual"
)

// Users keeps identities and profiles in step
type Users struct {
	Directory identity.Directory
	Profiles  databases.ProfileDatabase
	Now       func() time.Time
}

// BulkDeleteResult reports a bulk delete; ids that failed are listed with the reason
type BulkDeleteResult struct {
	Deleted int      `json:"deleted_count"`
	Failed  []string `json:"failed,omitempty"`
}

func (u *Users) now() time.Time {
	if u.Now != nil {
		return u.Now().UTC()
	}
	return time.Now().UTC()
}

// ListProfiles returns every profile, newest first, joined with the email of its identity
func (u *Users) ListProfiles(ctx context.Context) ([]models.UserProfileResponse, error) {
	profiles, err := u.Profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	if len(profiles) == 0 {
		return []models.UserProfileResponse{}, nil
	}

	identities, err := identity.ListAll(ctx, u.Directory)
	if err != nil {
		return nil, err
	}
	emails := make(map[string]string, len(identities))
	for _, i := range identities {
		if i.Email != "" {
			emails[i.ID] = i.Email
		}
	}
	zap.S().Debugw("joined profiles with identities",
		"profiles", len(profiles),
		"identities", len(identities),
		"emails", len(emails))

	out := make([]models.UserProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileResponse(p, emails[p.UserID]))
	}
	return out, nil
}

func profileResponse(p models.Profile, email string) models.UserProfileResponse {
	if email == "" {
		email = EmailNotAvailable
	}
	if p.PlanType == "" {
		p.PlanType = DefaultPlanType
	}
	if p.AccountType == "" {
		p.AccountType = DefaultAccountType
	}
	return models.UserProfileResponse{Profile: p, Email: email}
}

// Create makes the identity and then its profile. If the profile cannot be
// written the identity is deleted again.
func (u *Users) Create(ctx context.Context, req models.CreateUserRequest) (*models.UserProfileResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	var created *models.Identity
	var profile models.Profile
	err := runSaga(ctx,
		sagaStep{
			name: "create identity",
			forward: func(ctx context.Context) error {
				var err error
				created, err = u.Directory.CreateUser(ctx, identity.CreateParams{
					Email:        req.Email,
					Password:     req.Password,
					EmailConfirm: true,
				})
				return err
			},
			compensate: func(ctx context.Context) error {
				return u.Directory.DeleteUser(ctx, created.ID)
			},
		},
		sagaStep{
			name: "create profile",
			forward: func(ctx context.Context) error {
				profile = newProfile(created.ID, req, u.now())
				return u.Profiles.Insert(ctx, profile)
			},
			compensate: func(ctx context.Context) error {
				_, err := u.Profiles.DeleteByUserID(ctx, created.ID)
				return err
			},
		},
	)
	if errors.Is(err, identity.ErrAlreadyExists) {
		return nil, fmt.Errorf("%w: a user with email %s already exists", ErrConflict, req.Email)
	}
	if errors.Is(err, databases.ErrDuplicateKey) {
		return nil, fmt.Errorf("%w: a profile for this user already exists", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	zap.S().Infow("created user", "user_id", created.ID)
	resp := profileResponse(profile, created.Email)
	return &resp, nil
}

func newProfile(userID string, req models.CreateUserRequest, now time.Time) models.Profile {
	fullName := strings.TrimSpace(req.FullName)
	preferred := ""
	if req.PreferredName != nil {
		preferred = strings.TrimSpace(*req.PreferredName)
	}
	if preferred == "" {
		if words := strings.Fields(fullName); len(words) > 0 {
			preferred = words[0]
		}
	}
	work := ""
	if req.WorkDescription != nil {
		work = *req.WorkDescription
	}
	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return models.Profile{
		ID:              uuid.NewString(),
		UserID:          userID,
		FullName:        fullName,
		PreferredName:   preferred,
		WorkDescription: work,
		Metadata:        metadata,
		PlanType:        DefaultPlanType,
		AccountType:     DefaultAccountType,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Delete removes the profile and then the identity. An identity that is
// already gone counts as deleted; any other directory error is checked by
// looking the identity up again.
func (u *Users) Delete(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return invalid("user id is required")
	}
	if _, err := u.Profiles.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	err := u.Directory.DeleteUser(ctx, userID)
	if err == nil || errors.Is(err, identity.ErrNotFound) {
		zap.S().Infow("deleted user", "user_id", userID)
		return nil
	}

	_, lookupErr := u.Directory.GetUser(ctx, userID)
	if errors.Is(lookupErr, identity.ErrNotFound) {
		zap.S().Infow("identity already gone after delete error", "user_id", userID, "error", err)
		return nil
	}
	return fmt.Errorf("failed to delete identity %s: %w", userID, err)
}

// BulkDelete deletes each user in turn and reports the ones that failed
func (u *Users) BulkDelete(ctx context.Context, ids []string) (*BulkDeleteResult, error) {
	if err := Validate(models.BulkDeleteUsersRequest{UserIDs: ids}); err != nil {
		return nil, err
	}
	result := &BulkDeleteResult{}
	for _, id := range ids {
		if err := u.Delete(ctx, id); err != nil {
			zap.S().Errorw("bulk delete failed for user", "user_id", id, "error", err)
			result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		result.Deleted++
	}
	zap.S().Infow("bulk deleted users", "requested", len(ids), "deleted", result.Deleted)
	return result, nil
}

// FetchEmails returns the email and full name of each requested identity
// that has an email, in request order
func (u *Users) FetchEmails(ctx context.Context, ids []string) ([]models.UserEmail, error) {
	ids = distinct(ids)
	found, err := identity.Emails(ctx, u.Directory, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserEmail, 0, len(found))
	for _, id := range ids {
		if e, ok := found[id]; ok && e.Email != "" {
			out = append(out, e)
		}
	}
	return out, nil
}
