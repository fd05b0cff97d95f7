package databases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/heliumhq/invite-dashboard-api/databases"
	"github.com/heliumhq/invite-dashboard-api/databases/mocks"
	"github.com/heliumhq/invite-dashboard-api/models"
)

func TestProfileDatabase_FindByUserID(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srHelperMissing := &mocks.SingleResultHelper{}
	srHelperCorrect := &mocks.SingleResultHelper{}

	srHelperMissing.On("Decode", mock.Anything).Return(databases.ErrNotFound)
	srHelperCorrect.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.Profile)
		arg.UserID = "user-1"
		arg.FullName = "Ada Lovelace"
	})
	collectionHelper.On("FindOne", context.Background(), bson.M{"user_id": "missing"}).Return(srHelperMissing)
	collectionHelper.On("FindOne", context.Background(), bson.M{"user_id": "user-1"}).Return(srHelperCorrect)
	dbHelper.On("Collection", "user_profiles").Return(collectionHelper)

	profileDB := databases.NewProfileDatabase(dbHelper)

	profile, err := profileDB.FindByUserID(context.Background(), "missing")
	assert.Nil(t, profile)
	assert.ErrorIs(t, err, databases.ErrNotFound)

	profile, err = profileDB.FindByUserID(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", profile.FullName)
}

func TestProfileDatabase_FindByUserIDs(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Profile)
		*arg = []models.Profile{{UserID: "a", FullName: "A"}, {UserID: "b", FullName: "B"}}
	})
	collectionHelper.On("Find", context.Background(), bson.M{"user_id": bson.M{"$in": []string{"a", "b", "c"}}}).Return(cursorHelper, nil)
	dbHelper.On("Collection", "user_profiles").Return(collectionHelper)

	profiles, err := databases.NewProfileDatabase(dbHelper).FindByUserIDs(context.Background(), []string{"a", "b", "c"})

	assert.NoError(t, err)
	assert.Len(t, profiles, 2)
	assert.Equal(t, "B", profiles["b"].FullName)
	_, ok := profiles["c"]
	assert.False(t, ok)
}

func TestProfileDatabase_FindByUserIDsEmpty(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}

	profiles, err := databases.NewProfileDatabase(dbHelper).FindByUserIDs(context.Background(), nil)

	assert.NoError(t, err)
	assert.Empty(t, profiles)
	dbHelper.AssertNotCalled(t, "Collection", mock.Anything)
}

func TestProfileDatabase_InsertDefaultsMetadata(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("InsertOne", context.Background(), mock.MatchedBy(func(p models.Profile) bool {
		return p.Metadata != nil && p.UserID == "user-1"
	})).Return("profile-1", nil)
	dbHelper.On("Collection", "user_profiles").Return(collectionHelper)

	err := databases.NewProfileDatabase(dbHelper).Insert(context.Background(), models.Profile{UserID: "user-1"})

	assert.NoError(t, err)
	collectionHelper.AssertExpectations(t)
}

func TestProfileDatabase_UpdateByUserIDNotFound(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	patch := bson.M{"metadata.credits_assigned": true}
	collectionHelper.On("UpdateOne", context.Background(), bson.M{"user_id": "ghost"}, bson.M{"$set": patch}).
		Return(&mongo.UpdateResult{MatchedCount: 0}, nil)
	dbHelper.On("Collection", "user_profiles").Return(collectionHelper)

	err := databases.NewProfileDatabase(dbHelper).UpdateByUserID(context.Background(), "ghost", patch)

	assert.ErrorIs(t, err, databases.ErrNotFound)
}
