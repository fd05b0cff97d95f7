package databases

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newestFirst orders a find by the given timestamp field, most recent first
func newestFirst(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}})
}

func inFilter(field string, values []string) bson.M {
	return bson.M{field: bson.M{"$in": values}}
}

var zeroAmount = decimal.Zero
