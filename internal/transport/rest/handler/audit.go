package handler

import (
	"adaudit/internal/service"
	"adaudit/internal/transport/rest/middleware"
	"net/http"

	"github.com/gorilla/mux"
)

// AuditHandler handles the submitted audit endpoints
type AuditHandler struct {
	auditSvc *service.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditSvc *service.AuditService) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc}
}

// List handles GET /v1/audits
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.auditSvc.List(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /v1/audits/{id}
func (h *AuditHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	audit, err := h.auditSvc.Get(r.Context(), ownerID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, audit)
}

// Delete handles DELETE /v1/audits/{id}
func (h *AuditHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())

	if err := h.auditSvc.Delete(r.Context(), ownerID, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
