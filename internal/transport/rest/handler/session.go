package handler

import (
	"adaudit/internal/model"
	"adaudit/internal/service"
	"adaudit/internal/transport/rest/middleware"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// SessionHandler handles the in-progress audit endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// StartSessionRequest is the request body for starting a session
type StartSessionRequest struct {
	BusinessModel model.BusinessModel `json:"businessModel"`
	Channel       model.Channel       `json:"channel"`
}

// AnswerRequest is the request body for answering a question
type AnswerRequest struct {
	Option *int `json:"option"`
}

// Start handles POST /v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.sessionSvc.Start(r.Context(), ownerID, req.BusinessModel, req.Channel)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// Get handles GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	id := mux.Vars(r)["id"]

	view, err := h.sessionSvc.Get(r.Context(), ownerID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Answer handles PUT /v1/sessions/{id}/answers/{questionId}
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	vars := mux.Vars(r)

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Option == nil {
		writeError(w, http.StatusBadRequest, "option is required")
		return
	}

	view, err := h.sessionSvc.Answer(r.Context(), ownerID, vars["id"], vars["questionId"], *req.Option)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Back handles POST /v1/sessions/{id}/back
func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	view, err := h.sessionSvc.Back(r.Context(), ownerID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Preview handles GET /v1/sessions/{id}/preview
func (h *SessionHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	preview, err := h.sessionSvc.Preview(r.Context(), ownerID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

// Submit handles POST /v1/sessions/{id}/submit
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	audit, err := h.sessionSvc.Submit(r.Context(), ownerID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, audit)
}

// Abandon handles DELETE /v1/sessions/{id}
func (h *SessionHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	if err := h.sessionSvc.Abandon(r.Context(), ownerID, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
