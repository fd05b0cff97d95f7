package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/heliumhq/invite-dashboard-api/databases"
	"github.com/heliumhq/invite-dashboard-api/models"
)

// PaymentLookup reads a payment intent from the payment provider
type PaymentLookup interface {
	PaymentIntent(ctx context.Context, id string) (*models.PaymentDetails, error)
}

// CreditLedger assembles credit balances and purchases for the dashboard
type CreditLedger struct {
	Balances  databases.CreditBalanceDatabase
	Purchases databases.CreditPurchaseDatabase
	Names     Resolver
	Payments  PaymentLookup
	Now       func() time.Time
}

func (l *CreditLedger) now() time.Time {
	if l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

// ListBalances returns balances with their owner's name and email. Owners with
// a completed purchase come first, most recent purchase first; the rest follow
// by last update.
func (l *CreditLedger) ListBalances(ctx context.Context, userID string) ([]models.CreditBalanceResponse, error) {
	balances, err := l.Balances.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit balances: %w", err)
	}
	if len(balances) == 0 {
		return []models.CreditBalanceResponse{}, nil
	}

	ids := make([]string, 0, len(balances))
	for _, b := range balances {
		ids = append(ids, b.UserID)
	}
	completed, err := l.Purchases.ListCompletedByUserIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed purchases: %w", err)
	}
	sortBalances(balances, latestPurchases(completed))

	names := l.Names.Resolve(ctx, ids)
	out := make([]models.CreditBalanceResponse, 0, len(balances))
	for _, b := range balances {
		resolved := names[b.UserID]
		out = append(out, models.CreditBalanceResponse{
			CreditBalance: b,
			UserEmail:     resolved.Email,
			UserName:      nameOrNil(resolved.Name),
		})
	}
	return out, nil
}

// latestPurchases maps each user to the time of their most recent completed
// purchase, using created_at when completed_at was never written
func latestPurchases(purchases []models.CreditPurchase) map[string]time.Time {
	latest := make(map[string]time.Time, len(purchases))
	for _, p := range purchases {
		at := p.CreatedAt
		if p.CompletedAt != nil {
			at = *p.CompletedAt
		}
		if prev, ok := latest[p.UserID]; !ok || at.After(prev) {
			latest[p.UserID] = at
		}
	}
	return latest
}

func sortBalances(balances []models.CreditBalance, latest map[string]time.Time) {
	sort.SliceStable(balances, func(i, j int) bool {
		ti, paidI := latest[balances[i].UserID]
		tj, paidJ := latest[balances[j].UserID]
		if paidI != paidJ {
			return paidI
		}
		if paidI {
			return ti.After(tj)
		}
		return balances[i].LastUpdated.After(balances[j].LastUpdated)
	})
}

// AssignCredits adds amount to the user's balance and total purchased,
// creating the balance on first assignment. Invalid input is rejected before
// anything is written.
func (l *CreditLedger) AssignCredits(ctx context.Context, userID string, amount decimal.Decimal, notes *string) (*models.CreditBalance, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, invalid("user_id is required")
	}
	if !amount.IsPositive() {
		return nil, invalid("credits_to_add must be greater than 0")
	}

	balance, err := l.Balances.Assign(ctx, userID, models.CreditAssignment{
		Amount:    amount,
		Timestamp: l.now(),
		Notes:     notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign credits: %w", err)
	}
	zap.S().Infow("assigned credits",
		"user_id", userID,
		"amount", amount.String(),
		"balance", balance.BalanceDollars.String())
	return balance, nil
}

// ListPurchases returns purchases newest first with their owner's name and
// email, filtered to one status when status is set
func (l *CreditLedger) ListPurchases(ctx context.Context, status string) ([]models.CreditPurchaseResponse, error) {
	purchases, err := l.Purchases.List(ctx, strings.TrimSpace(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list credit purchases: %w", err)
	}
	if len(purchases) == 0 {
		return []models.CreditPurchaseResponse{}, nil
	}

	ids := make([]string, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.UserID)
	}
	names := l.Names.Resolve(ctx, ids)
	out := make([]models.CreditPurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		resolved := names[p.UserID]
		out = append(out, models.CreditPurchaseResponse{
			CreditPurchase: p,
			UserEmail:      resolved.Email,
			UserName:       nameOrNil(resolved.Name),
		})
	}
	return out, nil
}

// PaymentDetails looks up the live payment intent behind a purchase
func (l *CreditLedger) PaymentDetails(ctx context.Context, purchaseID string) (*models.PaymentDetails, error) {
	if l.Payments == nil {
		return nil, fmt.Errorf("%w: payment lookups are not configured", ErrUnavailable)
	}
	purchase, err := l.Purchases.FindOne(ctx, purchaseID)
	if errors.Is(err, databases.ErrNotFound) {
		return nil, fmt.Errorf("%w: purchase %s", ErrNotFound, purchaseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}
	if purchase.StripePaymentIntentID == nil || *purchase.StripePaymentIntentID == "" {
		return nil, fmt.Errorf("%w: purchase %s has no payment intent", ErrNotFound, purchaseID)
	}

	details, err := l.Payments.PaymentIntent(ctx, *purchase.StripePaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment intent: %w", err)
	}
	details.PurchaseID = purchase.ID
	return details, nil
}

func nameOrNil(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}
