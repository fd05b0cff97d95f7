package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/heliumhq/invite-dashboard-api/api"
	"github.com/heliumhq/invite-dashboard-api/models"
	"github.com/heliumhq/invite-dashboard-api/services"
)

// Credit exported for testing purposes
type Credit struct {
	Ledger *services.CreditLedger
	Emails *services.Emails
}

// CreditBalancesHandler returns balances with owner names, payers first.
// The optional user_id query parameter narrows the list to one user.
func (c Credit) CreditBalancesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	balances, err := c.Ledger.ListBalances(ctx, r.URL.Query().Get("user_id"))
	if err != nil {
		serviceError(w, "Failed to fetch credit balances", err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

// AssignCreditsHandler adds credits to a balance and then emails the user.
// A failed email does not fail the assignment.
func (c Credit) AssignCreditsHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AssignCreditsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	balance, err := c.Ledger.AssignCredits(ctx, req.UserID, req.CreditsToAdd, req.Notes)
	if err != nil {
		serviceError(w, "Failed to assign credits", err)
		return
	}

	if c.Emails != nil {
		if err := c.Emails.SendCreditsAdded(r.Context(), balance.UserID, req.CreditsToAdd); err != nil {
			zap.S().Warnw("failed to send credits email", "user_id", balance.UserID, "error", err)
		}
	}

	writeSuccess(w, fmt.Sprintf("Successfully assigned %s credits to user", req.CreditsToAdd.String()), map[string]interface{}{
		"userId":         balance.UserID,
		"balanceDollars": balance.BalanceDollars,
		"totalPurchased": balance.TotalPurchased,
		"totalUsed":      balance.TotalUsed,
	})
}

// CreditPurchasesHandler returns purchases newest first, optionally filtered by status
func (c Credit) CreditPurchasesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	purchases, err := c.Ledger.ListPurchases(ctx, r.URL.Query().Get("status"))
	if err != nil {
		serviceError(w, "Failed to fetch credit purchases", err)
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}

// PurchasePaymentHandler returns the live payment intent behind a purchase
func (c Credit) PurchasePaymentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	details, err := c.Ledger.PaymentDetails(ctx, mux.Vars(r)["purchase_id"])
	if err != nil {
		serviceError(w, "Failed to fetch payment details", err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}
