package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sdko-org/stream-gate/internal/registry"
	"github.com/sdko-org/stream-gate/internal/telemetry"
)

// action is the closed set of request kinds the /access-codes resource
// dispatches on. Anything outside it is rejected with 400.
type action string

const (
	actionAdmin    action = "admin"
	actionGenerate action = "generate"
	actionValidate action = "validate"
	actionRevoke   action = "revoke"
)

type postRequest struct {
	Action   string `json:"action"`
	Code     string `json:"code"`
	Duration int    `json:"duration"`
}

type generateResponse struct {
	Code              string    `json:"code"`
	ExpiresAt         time.Time `json:"expiresAt"`
	ExpirationMinutes int       `json:"expirationMinutes"`
}

type validateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *AccessCodeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	switch action(r.URL.Query().Get("action")) {
	case actionAdmin:
		h.handleAdminList(w, r)
	default:
		writeError(w, http.StatusBadRequest, "Invalid action")
	}
}

func (h *AccessCodeHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.WithError(err).Error("Malformed request body")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch action(req.Action) {
	case actionGenerate:
		h.handleGenerate(w, r, req)
	case actionValidate:
		h.handleValidate(w, r, req)
	case actionRevoke:
		h.handleRevoke(w, r, req)
	default:
		writeError(w, http.StatusBadRequest, "Invalid action")
	}
}

// handleAdminList checks the token before touching the registry so a
// rejected request leaves state unmodified.
func (h *AccessCodeHandler) handleAdminList(w http.ResponseWriter, r *http.Request) {
	if !h.isAdmin(r) {
		telemetry.CodeOperationsTotal.WithLabelValues("admin", "unauthorized").Inc()
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	telemetry.CodeOperationsTotal.WithLabelValues("admin", "ok").Inc()
	writeJSON(w, http.StatusOK, h.registry.AdminView())
}

func (h *AccessCodeHandler) handleGenerate(w http.ResponseWriter, r *http.Request, req postRequest) {
	if !h.isAdmin(r) {
		telemetry.CodeOperationsTotal.WithLabelValues("generate", "unauthorized").Inc()
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.registry.Generate(req.Duration)
	if err != nil {
		h.log.WithError(err).Error("Code generation failed")
		telemetry.CodeOperationsTotal.WithLabelValues("generate", "error").Inc()
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	telemetry.CodeOperationsTotal.WithLabelValues("generate", "ok").Inc()
	writeJSON(w, http.StatusOK, generateResponse{
		Code:              result.Code,
		ExpiresAt:         result.ExpiresAt,
		ExpirationMinutes: result.Minutes,
	})
}

// handleValidate is the one public operation: end-users redeem codes
// without a token. The caller identity passed to the registry is the
// client IP.
func (h *AccessCodeHandler) handleValidate(w http.ResponseWriter, r *http.Request, req postRequest) {
	if req.Code == "" {
		telemetry.CodeOperationsTotal.WithLabelValues("validate", "missing_code").Inc()
		writeJSON(w, http.StatusBadRequest, validateResponse{Valid: false, Error: "Code is required"})
		return
	}

	switch h.registry.Validate(req.Code, getClientIP(r)) {
	case registry.ValidationOK:
		telemetry.CodeOperationsTotal.WithLabelValues("validate", "ok").Inc()
		writeJSON(w, http.StatusOK, validateResponse{Valid: true, Message: "Access code validated successfully"})
	case registry.ValidationInactive:
		telemetry.CodeOperationsTotal.WithLabelValues("validate", "inactive").Inc()
		writeJSON(w, http.StatusBadRequest, validateResponse{Valid: false, Error: "Access code has been deactivated"})
	case registry.ValidationExpired:
		telemetry.CodeOperationsTotal.WithLabelValues("validate", "expired").Inc()
		writeJSON(w, http.StatusBadRequest, validateResponse{Valid: false, Error: "Access code has expired"})
	default:
		telemetry.CodeOperationsTotal.WithLabelValues("validate", "not_found").Inc()
		writeJSON(w, http.StatusBadRequest, validateResponse{Valid: false, Error: "Invalid access code"})
	}
}

func (h *AccessCodeHandler) handleRevoke(w http.ResponseWriter, r *http.Request, req postRequest) {
	if !h.isAdmin(r) {
		telemetry.CodeOperationsTotal.WithLabelValues("revoke", "unauthorized").Inc()
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if req.Code == "" {
		telemetry.CodeOperationsTotal.WithLabelValues("revoke", "missing_code").Inc()
		writeError(w, http.StatusBadRequest, "Code is required")
		return
	}

	if err := h.registry.Revoke(req.Code); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			telemetry.CodeOperationsTotal.WithLabelValues("revoke", "not_found").Inc()
			writeError(w, http.StatusNotFound, "Code not found")
			return
		}
		h.log.WithError(err).Error("Revoke failed")
		telemetry.CodeOperationsTotal.WithLabelValues("revoke", "error").Inc()
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	telemetry.CodeOperationsTotal.WithLabelValues("revoke", "ok").Inc()
	writeJSON(w, http.StatusOK, messageResponse{Message: "Code revoked successfully"})
}
