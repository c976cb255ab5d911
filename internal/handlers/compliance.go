package handlers

import (
	"net/http"
	"time"

	"github.com/motominder/motominder/internal/compliance"
	"github.com/motominder/motominder/internal/middleware"
	"github.com/motominder/motominder/internal/service"
)

// ComplianceHandler handles owner-wide obligation requests
type ComplianceHandler struct {
	compliance *service.ComplianceService
}

// NewComplianceHandler creates a new compliance handler
func NewComplianceHandler(complianceService *service.ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{compliance: complianceService}
}

// Obligations handles GET /api/obligations: re-evaluates every vehicle the
// owner has, refreshes their reminders, and returns the classified items.
// This is the call every screen load maps to; there is no cached state.
func (h *ComplianceHandler) Obligations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	obligations, err := h.compliance.RefreshOwner(r.Context(), claims.OwnerID, time.Now())
	if err != nil {
		http.Error(w, "Failed to evaluate vehicles", http.StatusInternalServerError)
		return
	}
	if r.URL.Query().Get("all") == "" {
		obligations = compliance.Actionable(obligations)
	}
	if obligations == nil {
		obligations = []compliance.Obligation{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"obligations": obligations})
}
