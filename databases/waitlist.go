package databases

// go generate: mockery --name WaitlistDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/heliumhq/invite-dashboard-api/models"
)

const waitlistName = "waitlist"

// WaitlistDatabase contains the methods to use with the waitlist database
type WaitlistDatabase interface {
	List(ctx context.Context) ([]models.WaitlistEntry, error)
	FindByEmails(ctx context.Context, emails []string) (map[string]models.WaitlistEntry, error)
	Archive(ctx context.Context, ids []string) (int64, error)
}

type waitlistDatabase struct {
	db DatabaseHelper
}

// NewWaitlistDatabase initializes a new instance of waitlist database with the provided db connection
func NewWaitlistDatabase(db DatabaseHelper) WaitlistDatabase {
	return &waitlistDatabase{
		db: db,
	}
}

func (w *waitlistDatabase) List(ctx context.Context) ([]models.WaitlistEntry, error) {
	entries := []models.WaitlistEntry{}
	cur, err := w.db.Collection(waitlistName).Find(ctx, bson.M{}, newestFirst("joined_at"))
	if err != nil {
		return nil, err
	}
	if err = cur.Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByEmails maps each exact email to its waitlist entry; the most recent signup wins
func (w *waitlistDatabase) FindByEmails(ctx context.Context, emails []string) (map[string]models.WaitlistEntry, error) {
	result := make(map[string]models.WaitlistEntry, len(emails))
	if len(emails) == 0 {
		return result, nil
	}
	var entries []models.WaitlistEntry
	cur, err := w.db.Collection(waitlistName).Find(ctx, inFilter("email", emails), newestFirst("joined_at"))
	if err != nil {
		return nil, err
	}
	if err = cur.Decode(&entries); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if _, ok := result[entry.Email]; !ok {
			result[entry.Email] = entry
		}
	}
	return result, nil
}

// Archive marks entries archived and returns how many changed
func (w *waitlistDatabase) Archive(ctx context.Context, ids []string) (int64, error) {
	res, err := w.db.Collection(waitlistName).UpdateMany(ctx,
		archiveFilter(ids),
		bson.M{"$set": bson.M{"is_archived": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// archiveFilter selects the listed unarchived entries, or every notified
// unarchived entry when no ids are given
func archiveFilter(ids []string) bson.M {
	if len(ids) == 0 {
		return bson.M{"is_notified": true, "is_archived": false}
	}
	filter := inFilter("_id", ids)
	filter["is_archived"] = false
	return filter
}
