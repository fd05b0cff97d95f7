package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/heliumhq/invite-dashboard-api/config"
	"github.com/heliumhq/invite-dashboard-api/models"
	"github.com/heliumhq/invite-dashboard-api/services"
)

// maxBodyBytes caps request bodies; bulk email html is the largest legitimate payload
const maxBodyBytes = 5 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("failed to encode response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, message string, data map[string]interface{}) {
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: message, Data: data})
}

// decodeBody reads a JSON body into dst. dst should already hold the
// defaults for fields the client may omit. An empty body keeps them.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	config.ErrorStatus(fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest, w, err)
	return false
}

// serviceError answers err with the status its kind calls for. Upstream
// failures are reported with the endpoint's failure message.
func serviceError(w http.ResponseWriter, failure string, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		config.ErrorStatus(err.Error(), http.StatusBadRequest, w, err)
	case errors.Is(err, services.ErrConflict):
		config.ErrorStatus(err.Error(), http.StatusConflict, w, err)
	case errors.Is(err, services.ErrNotFound):
		config.ErrorStatus(err.Error(), http.StatusNotFound, w, err)
	case errors.Is(err, services.ErrUnavailable):
		config.ErrorStatus(err.Error(), http.StatusServiceUnavailable, w, err)
	default:
		config.ErrorStatus(failure, http.StatusInternalServerError, w, err)
	}
}
