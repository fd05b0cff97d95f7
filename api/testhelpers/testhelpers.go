// Package testhelpers provides in-memory stand-ins for the stores, the identity
// directory and the mail transport, for handler and service tests
package testhelpers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/heliumhq/invite-dashboard-api/databases"
	"github.com/heliumhq/invite-dashboard-api/identity"
	"github.com/heliumhq/invite-dashboard-api/mailer"
	"github.com/heliumhq/invite-dashboard-api/models"
)

// InviteCodeStore is an in-memory databases.InviteCodeDatabase
type InviteCodeStore struct {
	mu    sync.Mutex
	Codes []models.InviteCode
	Err   error
}

// List implements databases.InviteCodeDatabase
func (s *InviteCodeStore) List(ctx context.Context) ([]models.InviteCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := append([]models.InviteCode{}, s.Codes...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// InsertMany implements databases.InviteCodeDatabase
func (s *InviteCodeStore) InsertMany(ctx context.Context, codes []models.InviteCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	seen := map[string]bool{}
	for _, c := range s.Codes {
		seen[c.Code] = true
	}
	for _, c := range codes {
		if seen[c.Code] {
			return databases.ErrDuplicateKey
		}
		seen[c.Code] = true
	}
	s.Codes = append(s.Codes, codes...)
	return nil
}

// Delete implements databases.InviteCodeDatabase
func (s *InviteCodeStore) Delete(ctx context.Context, id string) (int64, error) {
	return s.DeleteMany(ctx, []string{id})
}

// DeleteMany implements databases.InviteCodeDatabase
func (s *InviteCodeStore) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	drop := toSet(ids)
	kept := s.Codes[:0]
	var n int64
	for _, c := range s.Codes {
		if drop[c.ID] {
			n++
			continue
		}
		kept = append(kept, c)
	}
	s.Codes = kept
	return n, nil
}

// SetArchived implements databases.InviteCodeDatabase
func (s *InviteCodeStore) SetArchived(ctx context.Context, id string, archived bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	for i := range s.Codes {
		if s.Codes[i].ID == id {
			s.Codes[i].IsArchived = archived
			return 1, nil
		}
	}
	return 0, nil
}

// ArchiveUsed implements databases.InviteCodeDatabase
func (s *InviteCodeStore) ArchiveUsed(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for i := range s.Codes {
		if s.Codes[i].IsUsed && !s.Codes[i].IsArchived {
			s.Codes[i].IsArchived = true
			n++
		}
	}
	return n, nil
}

// ProfileStore is an in-memory databases.ProfileDatabase
type ProfileStore struct {
	mu        sync.Mutex
	Profiles  []models.Profile
	Err       error
	InsertErr error
}

// List implements databases.ProfileDatabase
func (s *ProfileStore) List(ctx context.Context) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := append([]models.Profile{}, s.Profiles...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// FindByUserID implements databases.ProfileDatabase
func (s *ProfileStore) FindByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, p := range s.Profiles {
		if p.UserID == userID {
			found := p
			return &found, nil
		}
	}
	return nil, databases.ErrNotFound
}

// FindByUserIDs implements databases.ProfileDatabase
func (s *ProfileStore) FindByUserIDs(ctx context.Context, userIDs []string) (map[string]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	wanted := toSet(userIDs)
	out := map[string]models.Profile{}
	for _, p := range s.Profiles {
		if wanted[p.UserID] {
			out[p.UserID] = p
		}
	}
	return out, nil
}

// Insert implements databases.ProfileDatabase
func (s *ProfileStore) Insert(ctx context.Context, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InsertErr != nil {
		return s.InsertErr
	}
	for _, p := range s.Profiles {
		if p.UserID == profile.UserID {
			return databases.ErrDuplicateKey
		}
	}
	s.Profiles = append(s.Profiles, profile)
	return nil
}

// UpdateByUserID implements databases.ProfileDatabase. It understands
// metadata.<key> and updated_at patches.
func (s *ProfileStore) UpdateByUserID(ctx context.Context, userID string, patch bson.M) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Profiles {
		p := &s.Profiles[i]
		if p.UserID != userID {
			continue
		}
		for key, value := range patch {
			if k, ok := strings.CutPrefix(key, "metadata."); ok {
				if p.Metadata == nil {
					p.Metadata = map[string]interface{}{}
				}
				p.Metadata[k] = value
			}
			if key == "updated_at" {
				p.UpdatedAt, _ = value.(time.Time)
			}
		}
		return nil
	}
	return databases.ErrNotFound
}

// DeleteByUserID implements databases.ProfileDatabase
func (s *ProfileStore) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	kept := s.Profiles[:0]
	var n int64
	for _, p := range s.Profiles {
		if p.UserID == userID {
			n++
			continue
		}
		kept = append(kept, p)
	}
	s.Profiles = kept
	return n, nil
}

// CreditBalanceStore is an in-memory databases.CreditBalanceDatabase
type CreditBalanceStore struct {
	mu       sync.Mutex
	Balances []models.CreditBalance
	Err      error
	// Assigns counts calls to Assign
	Assigns int
}

// List implements databases.CreditBalanceDatabase
func (s *CreditBalanceStore) List(ctx context.Context, userID string) ([]models.CreditBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.CreditBalance{}
	for _, b := range s.Balances {
		if userID == "" || b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastUpdated.After(out[j].LastUpdated) })
	return out, nil
}

// Assign implements databases.CreditBalanceDatabase with the same upsert
// semantics as the Mongo implementation
func (s *CreditBalanceStore) Assign(ctx context.Context, userID string, assignment models.CreditAssignment) (*models.CreditBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Assigns++
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Balances {
		b := &s.Balances[i]
		if b.UserID != userID {
			continue
		}
		b.BalanceDollars = b.BalanceDollars.Add(assignment.Amount)
		b.TotalPurchased = b.TotalPurchased.Add(assignment.Amount)
		b.LastUpdated = assignment.Timestamp
		if b.Metadata == nil {
			b.Metadata = map[string]interface{}{}
		}
		b.Metadata["last_assignment"] = assignment
		updated := *b
		return &updated, nil
	}
	created := models.CreditBalance{
		UserID:         userID,
		BalanceDollars: assignment.Amount,
		TotalPurchased: assignment.Amount,
		LastUpdated:    assignment.Timestamp,
		Metadata: map[string]interface{}{
			"initial_assignment": assignment,
			"last_assignment":    assignment,
		},
	}
	s.Balances = append(s.Balances, created)
	return &created, nil
}

// CreditPurchaseStore is an in-memory databases.CreditPurchaseDatabase
type CreditPurchaseStore struct {
	mu        sync.Mutex
	Purchases []models.CreditPurchase
	Err       error
}

// List implements databases.CreditPurchaseDatabase
func (s *CreditPurchaseStore) List(ctx context.Context, status string) ([]models.CreditPurchase, error) {
	return s.filter(func(p models.CreditPurchase) bool { return status == "" || p.Status == status })
}

// ListCompletedByUserIDs implements databases.CreditPurchaseDatabase
func (s *CreditPurchaseStore) ListCompletedByUserIDs(ctx context.Context, userIDs []string) ([]models.CreditPurchase, error) {
	wanted := toSet(userIDs)
	return s.filter(func(p models.CreditPurchase) bool {
		return wanted[p.UserID] && p.Status == models.PurchaseStatusCompleted
	})
}

// FindOne implements databases.CreditPurchaseDatabase
func (s *CreditPurchaseStore) FindOne(ctx context.Context, id string) (*models.CreditPurchase, error) {
	found, err := s.filter(func(p models.CreditPurchase) bool { return p.ID == id })
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, databases.ErrNotFound
	}
	return &found[0], nil
}

func (s *CreditPurchaseStore) filter(keep func(models.CreditPurchase) bool) ([]models.CreditPurchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.CreditPurchase{}
	for _, p := range s.Purchases {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// WaitlistStore is an in-memory databases.WaitlistDatabase
type WaitlistStore struct {
	mu      sync.Mutex
	Entries []models.WaitlistEntry
	Err     error
}

// List implements databases.WaitlistDatabase
func (s *WaitlistStore) List(ctx context.Context) ([]models.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := append([]models.WaitlistEntry{}, s.Entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].JoinedAt.After(out[j].JoinedAt) })
	return out, nil
}

// FindByEmails implements databases.WaitlistDatabase
func (s *WaitlistStore) FindByEmails(ctx context.Context, emails []string) (map[string]models.WaitlistEntry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	wanted := toSet(emails)
	out := map[string]models.WaitlistEntry{}
	for _, e := range entries {
		if _, ok := out[e.Email]; wanted[e.Email] && !ok {
			out[e.Email] = e
		}
	}
	return out, nil
}

// Archive implements databases.WaitlistDatabase
func (s *WaitlistStore) Archive(ctx context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	listed := toSet(ids)
	var n int64
	for i := range s.Entries {
		e := &s.Entries[i]
		if e.IsArchived {
			continue
		}
		if (len(ids) == 0 && e.IsNotified) || listed[e.ID] {
			e.IsArchived = true
			n++
		}
	}
	return n, nil
}

// Directory is an in-memory identity.Directory
type Directory struct {
	mu    sync.Mutex
	Users []models.Identity
	// ListErr, when set, decides whether listing a page fails
	ListErr   func(page int) error
	CreateErr error
	DeleteErr error
	GetErr    error
	Deleted   []string
}

// ListUsers implements identity.Directory
func (d *Directory) ListUsers(ctx context.Context, page, perPage int) ([]models.Identity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ListErr != nil {
		if err := d.ListErr(page); err != nil {
			return nil, err
		}
	}
	if perPage == 0 {
		return append([]models.Identity{}, d.Users...), nil
	}
	start := (page - 1) * perPage
	if start >= len(d.Users) {
		return []models.Identity{}, nil
	}
	end := start + perPage
	if end > len(d.Users) {
		end = len(d.Users)
	}
	return append([]models.Identity{}, d.Users[start:end]...), nil
}

// GetUser implements identity.Directory
func (d *Directory) GetUser(ctx context.Context, id string) (*models.Identity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.GetErr != nil {
		return nil, d.GetErr
	}
	for _, u := range d.Users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, identity.ErrNotFound
}

// CreateUser implements identity.Directory
func (d *Directory) CreateUser(ctx context.Context, params identity.CreateParams) (*models.Identity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.CreateErr != nil {
		return nil, d.CreateErr
	}
	for _, u := range d.Users {
		if strings.EqualFold(u.Email, params.Email) {
			return nil, identity.ErrAlreadyExists
		}
	}
	created := models.Identity{
		ID:       "id-" + strings.ToLower(params.Email),
		Email:    params.Email,
		Metadata: params.Metadata,
	}
	d.Users = append(d.Users, created)
	return &created, nil
}

// DeleteUser implements identity.Directory
func (d *Directory) DeleteUser(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Deleted = append(d.Deleted, id)
	if d.DeleteErr != nil {
		return d.DeleteErr
	}
	for i, u := range d.Users {
		if u.ID == id {
			d.Users = append(d.Users[:i], d.Users[i+1:]...)
			return nil
		}
	}
	return identity.ErrNotFound
}

// Sender records messages instead of sending them
type Sender struct {
	mu   sync.Mutex
	Sent []*mailer.Message
	// Fail, when set, decides whether a send to the address fails
	Fail func(to string) error
}

// Send implements mailer.Sender
func (s *Sender) Send(ctx context.Context, msg *mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		if err := s.Fail(msg.To); err != nil {
			return err
		}
	}
	s.Sent = append(s.Sent, msg)
	return nil
}

// Recipients returns the addresses mailed so far
func (s *Sender) Recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.Sent))
	for _, m := range s.Sent {
		out = append(out, m.To)
	}
	return out
}

// LockStore is an in-memory databases.SchedulerLockDatabase; leases never expire
type LockStore struct {
	mu       sync.Mutex
	Held     map[string]string
	Released []string
	Err      error
}

// TryAcquireLock implements databases.SchedulerLockDatabase
func (s *LockStore) TryAcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	if s.Held == nil {
		s.Held = map[string]string{}
	}
	if held, ok := s.Held[name]; ok && held != owner {
		return false, nil
	}
	s.Held[name] = owner
	return true, nil
}

// ReleaseLock implements databases.SchedulerLockDatabase
func (s *LockStore) ReleaseLock(ctx context.Context, name, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Held[name] == owner {
		delete(s.Held, name)
		s.Released = append(s.Released, name)
	}
	return nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
