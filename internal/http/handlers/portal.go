// Package handlers exposes the portal's HTTP surface: the wizard session
// endpoints and the health check.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborvet/portal-api/internal/http/middleware"
	"github.com/harborvet/portal-api/internal/wizard"
	"github.com/harborvet/portal-api/pkg/logging"
)

// PortalHandler serves the appointment-request wizard over REST.
type PortalHandler struct {
	controller *wizard.Controller
	logger     *logging.Logger
}

// NewPortalHandler creates the wizard handler.
func NewPortalHandler(controller *wizard.Controller, logger *logging.Logger) *PortalHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &PortalHandler{
		controller: controller,
		logger:     logger,
	}
}

// StartRequest handles POST /portal/requests. A valid portal token on the
// request starts an authenticated session; no token starts a logged-out one.
func (h *PortalHandler) StartRequest(w http.ResponseWriter, r *http.Request) {
	var claims *wizard.AuthClaims
	if portal, ok := middleware.PortalClaimsFromContext(r.Context()); ok {
		claims = &wizard.AuthClaims{
			ClientID: portal.ClientID(),
			Email:    portal.Email,
		}
	}

	snap := h.controller.Start(r.Context(), claims)
	h.logger.Info("wizard session started", "session_id", snap.ID, "authenticated", snap.Authenticated)
	writeJSON(w, http.StatusCreated, snap)
}

// GetRequest handles GET /portal/requests/{sessionID}.
func (h *PortalHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.controller.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err, snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// UpdateRequest handles PATCH /portal/requests/{sessionID} with a
// field-keyed change set for the current page.
func (h *PortalHandler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	var changes map[string]any
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	snap, err := h.controller.Update(r.Context(), chi.URLParam(r, "sessionID"), changes)
	if err != nil {
		h.writeError(w, err, snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Next handles POST /portal/requests/{sessionID}/next.
func (h *PortalHandler) Next(w http.ResponseWriter, r *http.Request) {
	snap, err := h.controller.Next(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err, snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Back handles POST /portal/requests/{sessionID}/back.
func (h *PortalHandler) Back(w http.ResponseWriter, r *http.Request) {
	snap, err := h.controller.Back(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err, snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Submit handles POST /portal/requests/{sessionID}/submit.
func (h *PortalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	snap, err := h.controller.Submit(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err, snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// writeError maps controller errors onto statuses. Validation refusals and
// the known-email block carry the full snapshot so the UI can render the
// field errors or the modal without a second round trip.
func (h *PortalHandler) writeError(w http.ResponseWriter, err error, snap wizard.Snapshot) {
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	case errors.Is(err, wizard.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, snap)
	case errors.Is(err, wizard.ErrBlocked):
		writeJSON(w, http.StatusConflict, snap)
	case errors.Is(err, wizard.ErrNoTransition), errors.Is(err, wizard.ErrNotSubmitPage):
		writeJSON(w, http.StatusConflict, snap)
	default:
		// Submission delivery failure: the snapshot carries the message.
		h.logger.Error("wizard request failed", "error", err)
		writeJSON(w, http.StatusBadGateway, snap)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
