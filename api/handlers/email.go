package handlers

import (
	"fmt"
	"net/http"

	"github.com/heliumhq/invite-dashboard-api/models"
	"github.com/heliumhq/invite-dashboard-api/services"
)

// Email exported for testing purposes
type Email struct {
	Service *services.Emails
}

// SendBulkEmailHandler mails the selected users, or everyone, and reports
// per-recipient outcomes
func (e Email) SendBulkEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SendBulkEmailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := e.Service.SendBulk(r.Context(), req)
	if err != nil {
		serviceError(w, "Failed to send bulk emails", err)
		return
	}
	writeSuccess(w,
		fmt.Sprintf("Emails processed: %d sent successfully, %d failed", result.SuccessCount, result.ErrorCount),
		map[string]interface{}{
			"total":         result.Total,
			"success_count": result.SuccessCount,
			"error_count":   result.ErrorCount,
			"errors":        result.Errors,
		})
}

// SendIndividualEmailHandler mails supplied content to one address
func (e Email) SendIndividualEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SendIndividualEmailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := e.Service.SendIndividual(r.Context(), req); err != nil {
		serviceError(w, "Failed to send email", err)
		return
	}
	writeSuccess(w, fmt.Sprintf("Email sent successfully to %s", req.IndividualEmail), nil)
}

// EmailImagesHandler returns the template images as data URIs
func (e Email) EmailImagesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"images":  e.Service.ImageURIs(),
	})
}

// PreviewEmailHandler renders a template with embedded images
func (e Email) PreviewEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req models.PreviewEmailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	html, err := e.Service.Preview(req)
	if err != nil {
		serviceError(w, "Failed to render email preview", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"html":    html,
	})
}
