package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageLogsAggregatedRequest is the body of POST /usage-logs/aggregated
type UsageLogsAggregatedRequest struct {
	Page           int    `json:"page" validate:"min=1"`
	Limit          int    `json:"limit" validate:"min=1,max=100"`
	SearchQuery    string `json:"search_query"`
	ActivityFilter string `json:"activity_filter" validate:"oneof=all high medium low inactive"`
	UserTypeFilter string `json:"user_type_filter" validate:"oneof=internal external"`
}

// UsageLog is one aggregated row per user returned by the aggregation routine
type UsageLog struct {
	UserID                string          `json:"user_id" db:"user_id"`
	UserName              string          `json:"user_name" db:"user_name"`
	UserEmail             string          `json:"user_email" db:"user_email"`
	TotalPromptTokens     int64           `json:"total_prompt_tokens" db:"total_prompt_tokens"`
	TotalCompletionTokens int64           `json:"total_completion_tokens" db:"total_completion_tokens"`
	TotalTokens           int64           `json:"total_tokens" db:"total_tokens"`
	TotalEstimatedCost    decimal.Decimal `json:"total_estimated_cost" db:"total_estimated_cost"`
	UsageCount            int64           `json:"usage_count" db:"usage_count"`
	EarliestActivity      *time.Time      `json:"earliest_activity" db:"earliest_activity"`
	LatestActivity        *time.Time      `json:"latest_activity" db:"latest_activity"`
	HasCompletedPayment   bool            `json:"has_completed_payment" db:"has_completed_payment"`
	ActivityLevel         string          `json:"activity_level" db:"activity_level"`
	DaysSinceLastActivity int64           `json:"days_since_last_activity" db:"days_since_last_activity"`
	ActivityScore         decimal.Decimal `json:"activity_score" db:"activity_score"`
	UserType              string          `json:"user_type" db:"user_type"`
	TotalCount            int64           `json:"-" db:"total_count"`
	GrandTotalTokens      int64           `json:"-" db:"grand_total_tokens"`
	GrandTotalCost        decimal.Decimal `json:"-" db:"grand_total_cost"`
}

// UsageLogsAggregatedResponse is the response of POST /usage-logs/aggregated
type UsageLogsAggregatedResponse struct {
	Success          bool            `json:"success"`
	Data             []UsageLog      `json:"data"`
	TotalCount       int64           `json:"total_count"`
	GrandTotalTokens int64           `json:"grand_total_tokens"`
	GrandTotalCost   decimal.Decimal `json:"grand_total_cost"`
	Page             int             `json:"page"`
	Limit            int             `json:"limit"`
}
