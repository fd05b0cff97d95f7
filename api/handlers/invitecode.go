package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/heliumhq/invite-dashboard-api/api"
	"github.com/heliumhq/invite-dashboard-api/models"
	"github.com/heliumhq/invite-dashboard-api/services"
)

// InviteCode exported for testing purposes
type InviteCode struct {
	Service *services.InviteCodes
}

// InviteCodesHandler returns every invite code, newest first
func (i InviteCode) InviteCodesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	codes, err := i.Service.List(ctx)
	if err != nil {
		serviceError(w, "Failed to fetch invite codes", err)
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

// GenerateInviteCodeHandler creates one code, or count codes when count is sent
func (i InviteCode) GenerateInviteCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateInviteCodesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	codes, err := i.Service.Generate(ctx, req)
	if err != nil {
		serviceError(w, "Failed to generate invite code", err)
		return
	}
	message := "Invite code generated successfully"
	if len(codes) > 1 {
		message = fmt.Sprintf("Successfully generated %d invite codes", len(codes))
	}
	writeSuccess(w, message, map[string]interface{}{
		"code":  codes[0],
		"codes": codes,
	})
}

// DeleteInviteCodeHandler deletes the code named in the path
func (i InviteCode) DeleteInviteCodeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := i.Service.Delete(ctx, mux.Vars(r)["code_id"]); err != nil {
		serviceError(w, "Failed to delete invite code", err)
		return
	}
	writeSuccess(w, "Invite code deleted successfully", nil)
}

// BulkDeleteInviteCodesHandler deletes every listed code
func (i InviteCode) BulkDeleteInviteCodesHandler(w http.ResponseWriter, r *http.Request) {
	var req models.BulkDeleteInviteCodesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := i.Service.BulkDelete(ctx, req.CodeIDs)
	if err != nil {
		serviceError(w, "Failed to bulk delete invite codes", err)
		return
	}
	writeSuccess(w, fmt.Sprintf("Successfully deleted %d invite codes", count), map[string]interface{}{
		"deleted_count": count,
	})
}

// ArchiveInviteCodeHandler hides a code from the active list
func (i InviteCode) ArchiveInviteCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.InviteCodeIDRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := i.Service.Archive(ctx, req.CodeID); err != nil {
		serviceError(w, "Failed to archive invite code", err)
		return
	}
	writeSuccess(w, "Invite code archived successfully", nil)
}

// UnarchiveInviteCodeHandler returns a code to the active list
func (i InviteCode) UnarchiveInviteCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.InviteCodeIDRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := i.Service.Unarchive(ctx, req.CodeID); err != nil {
		serviceError(w, "Failed to unarchive invite code", err)
		return
	}
	writeSuccess(w, "Invite code unarchived successfully", nil)
}

// BulkArchiveUsedHandler archives every used code that is still active
func (i InviteCode) BulkArchiveUsedHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := i.Service.ArchiveUsed(ctx)
	if err != nil {
		serviceError(w, "Failed to bulk archive used codes", err)
		return
	}
	writeSuccess(w, fmt.Sprintf("Successfully archived %d used invite codes", count), map[string]interface{}{
		"archived_count": count,
	})
}
