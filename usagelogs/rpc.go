package usagelogs

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/heliumhq/invite-dashboard-api/models"
)

// RPCCaller invokes a remote database function
type RPCCaller interface {
	RPC(ctx context.Context, function string, params, out interface{}) error
}

// RPCAggregator calls the routine through the backend's rest RPC endpoint
type RPCAggregator struct {
	Caller RPCCaller
}

// rpcRow carries the grand totals that the public row type hides from JSON
type rpcRow struct {
	models.UsageLog
	TotalCount       int64           `json:"total_count"`
	GrandTotalTokens int64           `json:"grand_total_tokens"`
	GrandTotalCost   decimal.Decimal `json:"grand_total_cost"`
}

// Aggregate implements Aggregator
func (a *RPCAggregator) Aggregate(ctx context.Context, params Params) ([]models.UsageLog, error) {
	var rows []rpcRow
	if err := a.Caller.RPC(ctx, functionName, params, &rows); err != nil {
		return nil, fmt.Errorf("%s: %w", functionName, err)
	}
	logs := make([]models.UsageLog, 0, len(rows))
	for _, row := range rows {
		log := row.UsageLog
		log.TotalCount = row.TotalCount
		log.GrandTotalTokens = row.GrandTotalTokens
		log.GrandTotalCost = row.GrandTotalCost
		logs = append(logs, log)
	}
	return logs, nil
}
