// Package alerts serves the alert ledger endpoints.
package alerts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/netwatch/internal/api/middleware"
	"github.com/good-yellow-bee/netwatch/internal/api/respond"
	"github.com/good-yellow-bee/netwatch/internal/models"
)

// Service is the subset of the monitor service used by this handler.
type Service interface {
	Alerts(role models.Role, filter models.StatusFilter) ([]*models.Alert, error)
	Alert(role models.Role, id string) (*models.Alert, error)
	Summary(role models.Role) (map[models.Severity]int, error)
	ResolveAlert(role models.Role, id string) (*models.Alert, error)
	ResolveAll(role models.Role) (int, error)
}

// Handler handles alert endpoints.
type Handler struct {
	svc Service
}

// NewHandler creates a new alerts handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// ListResponse wraps an alert listing.
type ListResponse struct {
	Status models.StatusFilter `json:"status"`
	Total  int                 `json:"total"`
	Items  []*models.Alert     `json:"items"`
}

// SummaryResponse is the active alert count per severity.
type SummaryResponse struct {
	Total      int                     `json:"total"`
	BySeverity map[models.Severity]int `json:"by_severity"`
}

// ResolveAllResponse reports how many alerts a bulk resolve changed.
type ResolveAllResponse struct {
	Resolved int `json:"resolved"`
}

// List handles GET /api/v1/alerts?status=active|resolved|all.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := models.ParseStatusFilter(r.URL.Query().Get("status"))
	if !ok {
		respond.JSONError(w, respond.NewBadRequest("status must be active, resolved, or all"))
		return
	}

	items, err := h.svc.Alerts(middleware.GetRole(r.Context()), filter)
	if err != nil {
		respond.Err(w, err)
		return
	}
	if items == nil {
		items = []*models.Alert{}
	}
	respond.OK(w, ListResponse{Status: filter, Total: len(items), Items: items})
}

// GetByID handles GET /api/v1/alerts/{id}.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Alert(middleware.GetRole(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respond.Err(w, err)
		return
	}
	respond.OK(w, a)
}

// Summary handles GET /api/v1/alerts/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Summary(middleware.GetRole(r.Context()))
	if err != nil {
		respond.Err(w, err)
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	respond.OK(w, SummaryResponse{Total: total, BySeverity: counts})
}

// Resolve handles POST /api/v1/alerts/{id}/resolve.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.ResolveAlert(middleware.GetRole(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respond.Err(w, err)
		return
	}
	respond.OK(w, a)
}

// ResolveAll handles POST /api/v1/alerts/resolve-all.
func (h *Handler) ResolveAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ResolveAll(middleware.GetRole(r.Context()))
	if err != nil {
		respond.Err(w, err)
		return
	}
	respond.OK(w, ResolveAllResponse{Resolved: n})
}
