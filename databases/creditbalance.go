package databases

// go generate: mockery --name CreditBalanceDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/heliumhq/invite-dashboard-api/models"
)

const creditBalanceName = "credit_balance"

// CreditBalanceDatabase contains the methods to use with the credit balance database
type CreditBalanceDatabase interface {
	List(ctx context.Context, userID string) ([]models.CreditBalance, error)
	Assign(ctx context.Context, userID string, assignment models.CreditAssignment) (*models.CreditBalance, error)
}

type creditBalanceDatabase struct {
	db DatabaseHelper
}

// NewCreditBalanceDatabase initializes a new instance of credit balance database with the provided db connection
func NewCreditBalanceDatabase(db DatabaseHelper) CreditBalanceDatabase {
	return &creditBalanceDatabase{
		db: db,
	}
}

// List returns every balance, or only the one owned by userID when it is set
func (c *creditBalanceDatabase) List(ctx context.Context, userID string) ([]models.CreditBalance, error) {
	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	balances := []models.CreditBalance{}
	cur, err := c.db.Collection(creditBalanceName).Find(ctx, filter, newestFirst("last_updated"))
	if err != nil {
		return nil, err
	}
	if err = cur.Decode(&balances); err != nil {
		return nil, err
	}
	return balances, nil
}

// Assign adds the assignment amount to both balance and total purchased in a
// single upsert and returns the resulting row. The first assignment for a user
// creates the row with total_used at zero. A row whose metadata is null or
// not a document gets an empty one first so the dotted $set can apply.
func (c *creditBalanceDatabase) Assign(ctx context.Context, userID string, assignment models.CreditAssignment) (*models.CreditBalance, error) {
	_, err := c.db.Collection(creditBalanceName).UpdateOne(ctx,
		bson.M{"user_id": userID, "metadata": bson.M{"$not": bson.M{"$type": "object"}}},
		bson.M{"$set": bson.M{"metadata": bson.M{}}},
	)
	if err != nil {
		return nil, err
	}

	balance := &models.CreditBalance{}
	err = c.db.Collection(creditBalanceName).FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		assignUpdate(assignment),
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(balance)
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func assignUpdate(assignment models.CreditAssignment) bson.M {
	return bson.M{
		"$inc": bson.M{
			"balance_dollars": assignment.Amount,
			"total_purchased": assignment.Amount,
		},
		"$set": bson.M{
			"last_updated":             assignment.Timestamp,
			"metadata.last_assignment": assignment,
		},
		"$setOnInsert": bson.M{
			"total_used":                  zeroAmount,
			"metadata.initial_assignment": assignment,
		},
	}
}
