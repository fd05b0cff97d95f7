package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts are rendered as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Purchase statuses written by the payment webhook
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusFailed    = "failed"
	PurchaseStatusRefunded  = "refunded"
)

// CreditBalance holds the structure for the credit_balance collection
type CreditBalance struct {
	UserID         string                 `json:"user_id" bson:"user_id"`
	BalanceDollars decimal.Decimal        `json:"balance_dollars" bson:"balance_dollars"`
	TotalPurchased decimal.Decimal        `json:"total_purchased" bson:"total_purchased"`
	TotalUsed      decimal.Decimal        `json:"total_used" bson:"total_used"`
	LastUpdated    time.Time              `json:"last_updated" bson:"last_updated"`
	Metadata       map[string]interface{} `json:"metadata" bson:"metadata"`
}

// CreditAssignment is the audit entry recorded under metadata.last_assignment
type CreditAssignment struct {
	Amount    decimal.Decimal `json:"amount" bson:"amount"`
	Timestamp time.Time       `json:"timestamp" bson:"timestamp"`
	Notes     *string         `json:"notes" bson:"notes"`
}

// CreditPurchase holds the structure for the credit_purchases collection.
// Rows are written by the payment webhook and only read here.
type CreditPurchase struct {
	ID                    string                 `json:"id" bson:"_id"`
	UserID                string                 `json:"user_id" bson:"user_id"`
	AmountDollars         decimal.Decimal        `json:"amount_dollars" bson:"amount_dollars"`
	StripePaymentIntentID *string                `json:"stripe_payment_intent_id" bson:"stripe_payment_intent_id,omitempty"`
	StripeChargeID        *string                `json:"stripe_charge_id" bson:"stripe_charge_id,omitempty"`
	Status                string                 `json:"status" bson:"status"`
	Description           *string                `json:"description" bson:"description,omitempty"`
	Metadata              map[string]interface{} `json:"metadata" bson:"metadata"`
	CreatedAt             time.Time              `json:"created_at" bson:"created_at"`
	CompletedAt           *time.Time             `json:"completed_at" bson:"completed_at,omitempty"`
	ExpiresAt             *time.Time             `json:"expires_at" bson:"expires_at,omitempty"`
}

// CreditBalanceResponse is a balance joined with the resolved owner name and email
type CreditBalanceResponse struct {
	CreditBalance
	UserEmail *string `json:"user_email"`
	UserName  *string `json:"user_name"`
}

// CreditPurchaseResponse is a purchase joined with the resolved owner name and email
type CreditPurchaseResponse struct {
	CreditPurchase
	UserEmail *string `json:"user_email"`
	UserName  *string `json:"user_name"`
}

// AssignCreditsRequest is the body of POST /credits/assign
type AssignCreditsRequest struct {
	UserID       string          `json:"user_id"`
	CreditsToAdd decimal.Decimal `json:"credits_to_add"`
	Notes        *string         `json:"notes"`
}

// PaymentDetails is the live state of a purchase's payment intent
type PaymentDetails struct {
	PurchaseID      string    `json:"purchase_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	Status          string    `json:"status"`
	AmountCents     int64     `json:"amount_cents"`
	Currency        string    `json:"currency"`
	CreatedAt       time.Time `json:"created_at"`
}
