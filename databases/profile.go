package databases

// go generate: mockery --name ProfileDatabase

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/heliumhq/invite-dashboard-api/models"
)

const profileName = "user_profiles"

// ProfileDatabase contains the methods to use with the user profile database
type ProfileDatabase interface {
	List(ctx context.Context) ([]models.Profile, error)
	FindByUserID(ctx context.Context, userID string) (*models.Profile, error)
	FindByUserIDs(ctx context.Context, userIDs []string) (map[string]models.Profile, error)
	Insert(ctx context.Context, profile models.Profile) error
	UpdateByUserID(ctx context.Context, userID string, patch bson.M) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

type profileDatabase struct {
	db DatabaseHelper
}

// NewProfileDatabase initializes a new instance of profile database with the provided db connection
func NewProfileDatabase(db DatabaseHelper) ProfileDatabase {
	return &profileDatabase{
		db: db,
	}
}

func (p *profileDatabase) List(ctx context.Context) ([]models.Profile, error) {
	profiles := []models.Profile{}
	cur, err := p.db.Collection(profileName).Find(ctx, bson.M{}, newestFirst("created_at"))
	if err != nil {
		return nil, err
	}
	if err = cur.Decode(&profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (p *profileDatabase) FindByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	profile := &models.Profile{}
	err := p.db.Collection(profileName).FindOne(ctx, bson.M{"user_id": userID}).Decode(profile)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (p *profileDatabase) FindByUserIDs(ctx context.Context, userIDs []string) (map[string]models.Profile, error) {
	result := make(map[string]models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	var profiles []models.Profile
	cur, err := p.db.Collection(profileName).Find(ctx, inFilter("user_id", userIDs))
	if err != nil {
		return nil, err
	}
	if err = cur.Decode(&profiles); err != nil {
		return nil, err
	}
	for _, profile := range profiles {
		result[profile.UserID] = profile
	}
	return result, nil
}

func (p *profileDatabase) Insert(ctx context.Context, profile models.Profile) error {
	if profile.Metadata == nil {
		profile.Metadata = map[string]interface{}{}
	}
	_, err := p.db.Collection(profileName).InsertOne(ctx, profile)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

func (p *profileDatabase) UpdateByUserID(ctx context.Context, userID string, patch bson.M) error {
	res, err := p.db.Collection(profileName).UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": patch},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *profileDatabase) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	return p.db.Collection(profileName).DeleteOne(ctx, bson.M{"user_id": userID})
}
