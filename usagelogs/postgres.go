package usagelogs

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/heliumhq/invite-dashboard-api/models"
)

const aggregateQuery = `SELECT * FROM get_aggregated_usage_logs(
	search_query => $1,
	activity_level_filter => $2,
	page_number => $3,
	page_size => $4,
	user_type_filter => $5
)`

// PostgresAggregator calls the routine directly over a database connection
type PostgresAggregator struct {
	DB *sqlx.DB
}

// NewPostgresAggregator connects to the database at url
func NewPostgresAggregator(ctx context.Context, url string) (*PostgresAggregator, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect usage logs database: %w", err)
	}
	return &PostgresAggregator{DB: db}, nil
}

// Aggregate implements Aggregator
func (a *PostgresAggregator) Aggregate(ctx context.Context, params Params) ([]models.UsageLog, error) {
	rows := []models.UsageLog{}
	err := a.DB.SelectContext(ctx, &rows, aggregateQuery,
		params.SearchQuery,
		params.ActivityLevelFilter,
		params.PageNumber,
		params.PageSize,
		params.UserTypeFilter,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", functionName, err)
	}
	return rows, nil
}

// Close releases the connection pool
func (a *PostgresAggregator) Close() error {
	return a.DB.Close()
}
