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

func TestWaitlistDatabase_ArchiveWithoutIDsTargetsNotified(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("UpdateMany", context.Background(),
		bson.M{"is_notified": true, "is_archived": false},
		bson.M{"$set": bson.M{"is_archived": true}},
	).Return(&mongo.UpdateResult{ModifiedCount: 7}, nil)
	dbHelper.On("Collection", "waitlist").Return(collectionHelper)

	count, err := databases.NewWaitlistDatabase(dbHelper).Archive(context.Background(), []string{})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestWaitlistDatabase_ArchiveWithIDsIgnoresNotified(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("UpdateMany", context.Background(),
		bson.M{"_id": bson.M{"$in": []string{"w1", "w2"}}, "is_archived": false},
		bson.M{"$set": bson.M{"is_archived": true}},
	).Return(&mongo.UpdateResult{ModifiedCount: 2}, nil)
	dbHelper.On("Collection", "waitlist").Return(collectionHelper)

	count, err := databases.NewWaitlistDatabase(dbHelper).Archive(context.Background(), []string{"w1", "w2"})

	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestWaitlistDatabase_FindByEmailsKeepsNewest(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.WaitlistEntry)
		*arg = []models.WaitlistEntry{
			{ID: "new", Email: "jo@x.com", FullName: "Jo New"},
			{ID: "old", Email: "jo@x.com", FullName: "Jo Old"},
		}
	})
	collectionHelper.On("Find", context.Background(), bson.M{"email": bson.M{"$in": []string{"jo@x.com"}}}, mock.Anything).Return(cursorHelper, nil)
	dbHelper.On("Collection", "waitlist").Return(collectionHelper)

	entries, err := databases.NewWaitlistDatabase(dbHelper).FindByEmails(context.Background(), []string{"jo@x.com"})

	assert.NoError(t, err)
	assert.Equal(t, "Jo New", entries["jo@x.com"].FullName)
}
