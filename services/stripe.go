package services

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"github.com/heliumhq/invite-dashboard-api/models"
)

// StripePayments reads payment intents with the account's secret key
type StripePayments struct {
	client paymentintent.Client
}

// NewStripePayments returns a lookup using key
func NewStripePayments(key string) *StripePayments {
	return &StripePayments{
		client: paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: key},
	}
}

// PaymentIntent implements PaymentLookup
func (s *StripePayments) PaymentIntent(ctx context.Context, id string) (*models.PaymentDetails, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.client.Get(id, params)
	if err != nil {
		return nil, err
	}
	return &models.PaymentDetails{
		PaymentIntentID: pi.ID,
		Status:          string(pi.Status),
		AmountCents:     pi.Amount,
		Currency:        string(pi.Currency),
		CreatedAt:       time.Unix(pi.Created, 0).UTC(),
	}, nil
}
