package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/heliumhq/invite-dashboard-api/databases"
	"github.com/heliumhq/invite-dashboard-api/models"
)

const (
	codePrefix   = "NA"
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 5

	// DefaultMaxUses applies when a generate request leaves max_uses out
	DefaultMaxUses = 1
	// DefaultExpiresInDays applies when a generate request leaves expires_in_days out
	DefaultExpiresInDays = 30
)

// InviteCodes manages invite code generation and the archive lifecycle
type InviteCodes struct {
	DB   databases.InviteCodeDatabase
	Now  func() time.Time
	Rand io.Reader
}

func (s *InviteCodes) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// List returns every code, newest first
func (s *InviteCodes) List(ctx context.Context) ([]models.InviteCode, error) {
	codes, err := s.DB.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invite codes: %w", err)
	}
	return codes, nil
}

// Generate creates the requested number of codes in one batch and returns them. Codes are
// not checked against existing ones; a collision fails the whole batch.
func (s *InviteCodes) Generate(ctx context.Context, req models.GenerateInviteCodesRequest) ([]string, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	count := intOr(req.Count, 1)
	maxUses := intOr(req.MaxUses, DefaultMaxUses)

	now := s.now()
	expiresAt := now.AddDate(0, 0, intOr(req.ExpiresInDays, DefaultExpiresInDays))
	codes := make([]string, 0, count)
	rows := make([]models.InviteCode, 0, count)
	for i := 0; i < count; i++ {
		code, err := newInviteCode(s.random())
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}
		codes = append(codes, code)
		rows = append(rows, models.InviteCode{
			ID:          uuid.NewString(),
			Code:        code,
			MaxUses:     maxUses,
			ExpiresAt:   &expiresAt,
			EmailSentTo: []string{},
			CreatedAt:   now,
		})
	}

	if err := s.DB.InsertMany(ctx, rows); err != nil {
		if errors.Is(err, databases.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: generated invite code already exists, retry the request", ErrConflict)
		}
		return nil, fmt.Errorf("failed to save invite codes: %w", err)
	}
	zap.S().Infow("generated invite codes", "count", len(codes))
	return codes, nil
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func (s *InviteCodes) random() io.Reader {
	if s.Rand != nil {
		return s.Rand
	}
	return rand.Reader
}

// newInviteCode returns "NA" followed by five characters drawn uniformly from A-Z0-9
func newInviteCode(r io.Reader) (string, error) {
	buf := make([]byte, 0, len(codePrefix)+codeLength)
	buf = append(buf, codePrefix...)
	base := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(r, base)
		if err != nil {
			return "", err
		}
		buf = append(buf, codeAlphabet[n.Int64()])
	}
	return string(buf), nil
}

// Delete removes a code; deleting a missing code is not an error
func (s *InviteCodes) Delete(ctx context.Context, id string) error {
	if id == "" {
		return invalid("code id is required")
	}
	if _, err := s.DB.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete invite code: %w", err)
	}
	zap.S().Infow("deleted invite code", "id", id)
	return nil
}

// BulkDelete removes the listed codes and returns how many were requested
func (s *InviteCodes) BulkDelete(ctx context.Context, ids []string) (int, error) {
	if err := Validate(models.BulkDeleteInviteCodesRequest{CodeIDs: ids}); err != nil {
		return 0, err
	}
	deleted, err := s.DB.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete invite codes: %w", err)
	}
	zap.S().Infow("bulk deleted invite codes", "requested", len(ids), "deleted", deleted)
	return len(ids), nil
}

// Archive hides a code from the active list
func (s *InviteCodes) Archive(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, true)
}

// Unarchive returns a code to the active list
func (s *InviteCodes) Unarchive(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, false)
}

func (s *InviteCodes) setArchived(ctx context.Context, id string, archived bool) error {
	if err := Validate(models.InviteCodeIDRequest{CodeID: id}); err != nil {
		return err
	}
	matched, err := s.DB.SetArchived(ctx, id, archived)
	if err != nil {
		return fmt.Errorf("failed to update invite code: %w", err)
	}
	if matched == 0 {
		return fmt.Errorf("%w: invite code %s", ErrNotFound, id)
	}
	zap.S().Infow("updated invite code", "id", id, "is_archived", archived)
	return nil
}

// ArchiveUsed archives every used code that is still active and returns the count
func (s *InviteCodes) ArchiveUsed(ctx context.Context) (int64, error) {
	count, err := s.DB.ArchiveUsed(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to archive used invite codes: %w", err)
	}
	zap.S().Infow("archived used invite codes", "count", count)
	return count, nil
}
