package databases

// go generate: mockery --name InviteCodeDatabase

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/heliumhq/invite-dashboard-api/models"
)

const inviteCodeName = "invite_codes"

// InviteCodeDatabase contains the methods to use with the invite code database
type InviteCodeDatabase interface {
	List(ctx context.Context) ([]models.InviteCode, error)
	InsertMany(ctx context.Context, codes []models.InviteCode) error
	Delete(ctx context.Context, id string) (int64, error)
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	SetArchived(ctx context.Context, id string, archived bool) (int64, error)
	ArchiveUsed(ctx context.Context) (int64, error)
}

type inviteCodeDatabase struct {
	db DatabaseHelper
}

// NewInviteCodeDatabase initializes a new instance of invite code database with the provided db connection
func NewInviteCodeDatabase(db DatabaseHelper) InviteCodeDatabase {
	return &inviteCodeDatabase{
		db: db,
	}
}

func (c *inviteCodeDatabase) List(ctx context.Context) ([]models.InviteCode, error) {
	inviteCodes := []models.InviteCode{}
	cur, err := c.db.Collection(inviteCodeName).Find(ctx, bson.M{}, newestFirst("created_at"))
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&inviteCodes)
	if err != nil {
		return nil, err
	}
	return inviteCodes, nil
}

func (c *inviteCodeDatabase) InsertMany(ctx context.Context, codes []models.InviteCode) error {
	docs := make([]interface{}, 0, len(codes))
	for _, code := range codes {
		docs = append(docs, code)
	}
	_, err := c.db.Collection(inviteCodeName).InsertMany(ctx, docs)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

func (c *inviteCodeDatabase) Delete(ctx context.Context, id string) (int64, error) {
	return c.db.Collection(inviteCodeName).DeleteOne(ctx, bson.M{"_id": id})
}

func (c *inviteCodeDatabase) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	return c.db.Collection(inviteCodeName).DeleteMany(ctx, inFilter("_id", ids))
}

func (c *inviteCodeDatabase) SetArchived(ctx context.Context, id string, archived bool) (int64, error) {
	res, err := c.db.Collection(inviteCodeName).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_archived": archived}},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (c *inviteCodeDatabase) ArchiveUsed(ctx context.Context) (int64, error) {
	res, err := c.db.Collection(inviteCodeName).UpdateMany(ctx,
		bson.M{"is_used": true, "is_archived": false},
		bson.M{"$set": bson.M{"is_archived": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
