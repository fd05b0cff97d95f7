package databases

// go generate: mockery --name CreditPurchaseDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/heliumhq/invite-dashboard-api/models"
)

const creditPurchaseName = "credit_purchases"

// CreditPurchaseDatabase contains the methods to use with the credit purchase database.
// Purchases are written by the payment webhook; this service only reads them.
type CreditPurchaseDatabase interface {
	List(ctx context.Context, status string) ([]models.CreditPurchase, error)
	ListCompletedByUserIDs(ctx context.Context, userIDs []string) ([]models.CreditPurchase, error)
	FindOne(ctx context.Context, id string) (*models.CreditPurchase, error)
}

type creditPurchaseDatabase struct {
	db DatabaseHelper
}

// NewCreditPurchaseDatabase initializes a new instance of credit purchase database with the provided db connection
func NewCreditPurchaseDatabase(db DatabaseHelper) CreditPurchaseDatabase {
	return &creditPurchaseDatabase{
		db: db,
	}
}

func (c *creditPurchaseDatabase) List(ctx context.Context, status string) ([]models.CreditPurchase, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return c.find(ctx, filter)
}

func (c *creditPurchaseDatabase) ListCompletedByUserIDs(ctx context.Context, userIDs []string) ([]models.CreditPurchase, error) {
	if len(userIDs) == 0 {
		return []models.CreditPurchase{}, nil
	}
	filter := inFilter("user_id", userIDs)
	filter["status"] = models.PurchaseStatusCompleted
	return c.find(ctx, filter)
}

func (c *creditPurchaseDatabase) FindOne(ctx context.Context, id string) (*models.CreditPurchase, error) {
	purchase := &models.CreditPurchase{}
	err := c.db.Collection(creditPurchaseName).FindOne(ctx, bson.M{"_id": id}).Decode(purchase)
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func (c *creditPurchaseDatabase) find(ctx context.Context, filter bson.M) ([]models.CreditPurchase, error) {
	purchases := []models.CreditPurchase{}
	cur, err := c.db.Collection(creditPurchaseName).Find(ctx, filter, newestFirst("created_at"))
	if err != nil {
		return nil, err
	}
	if err = cur.Decode(&purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}
