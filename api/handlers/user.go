package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/heliumhq/invite-dashboard-api/api"
	"github.com/heliumhq/invite-dashboard-api/models"
	"github.com/heliumhq/invite-dashboard-api/services"
)

// User exported for testing purposes
type User struct {
	Service *services.Users
}

// UsersHandler returns every profile joined with its identity email
func (u User) UsersHandler(w http.ResponseWriter, r *http.Request) {
	profiles, err := u.Service.ListProfiles(r.Context())
	if err != nil {
		serviceError(w, "Failed to fetch users", err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// CreateUserHandler creates the identity and profile and returns the profile
func (u User) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	profile, err := u.Service.Create(r.Context(), req)
	if err != nil {
		serviceError(w, "Failed to create user", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// DeleteUserHandler deletes the profile and identity named in the path
func (u User) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	if err := u.Service.Delete(r.Context(), mux.Vars(r)["user_id"]); err != nil {
		serviceError(w, "Failed to delete user", err)
		return
	}
	writeSuccess(w, "User deleted successfully", nil)
}

// BulkDeleteUsersHandler deletes each listed user, reporting the ones that failed
func (u User) BulkDeleteUsersHandler(w http.ResponseWriter, r *http.Request) {
	var req models.BulkDeleteUsersRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := u.Service.BulkDelete(r.Context(), req.UserIDs)
	if err != nil {
		serviceError(w, "Failed to bulk delete users", err)
		return
	}
	data := map[string]interface{}{"deleted_count": result.Deleted}
	if len(result.Failed) > 0 {
		data["failed"] = result.Failed
	}
	writeSuccess(w, fmt.Sprintf("Successfully deleted %d users", result.Deleted), data)
}

// FetchEmailsHandler returns the email and full name of each requested user
func (u User) FetchEmailsHandler(w http.ResponseWriter, r *http.Request) {
	var req models.FetchEmailsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emails, err := u.Service.FetchEmails(ctx, req.UserIDs)
	if err != nil {
		serviceError(w, "Failed to fetch user emails", err)
		return
	}
	writeJSON(w, http.StatusOK, emails)
}
