// Package thresholds serves the threshold configuration endpoints.
package thresholds

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/netwatch/internal/access"
	"github.com/good-yellow-bee/netwatch/internal/api/middleware"
	"github.com/good-yellow-bee/netwatch/internal/api/respond"
	"github.com/good-yellow-bee/netwatch/internal/models"
)

// Service is the subset of the monitor service used by this handler.
type Service interface {
	Authorize(role models.Role, action access.Action) error
	Thresholds(role models.Role) ([]models.Threshold, error)
	Threshold(role models.Role, metricType string) (models.Threshold, error)
	UpsertThreshold(role models.Role, t models.Threshold) (models.Threshold, error)
	SetThresholdEnabled(role models.Role, metricType string, enabled bool) (models.Threshold, error)
}

// Handler handles threshold endpoints.
type Handler struct {
	svc Service
}

// NewHandler creates a new thresholds handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// UpsertRequest is the body of PUT /thresholds/{metricType}.
type UpsertRequest struct {
	MetricType    string           `json:"metric_type,omitempty"`
	WarningLevel  *float64         `json:"warning_level"`
	CriticalLevel *float64         `json:"critical_level"`
	Enabled       *bool            `json:"enabled,omitempty"`
	Direction     models.Direction `json:"direction,omitempty"`
}

// EnabledRequest is the body of PATCH /thresholds/{metricType}/enabled.
type EnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// List handles GET /api/v1/thresholds.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Thresholds(middleware.GetRole(r.Context()))
	if err != nil {
		respond.Err(w, err)
		return
	}
	respond.OK(w, list)
}

// Get handles GET /api/v1/thresholds/{metricType}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Threshold(middleware.GetRole(r.Context()), metricTypeParam(r))
	if err != nil {
		respond.Err(w, err)
		return
	}
	respond.OK(w, t)
}

// Put handles PUT /api/v1/thresholds/{metricType}.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	if err := h.svc.Authorize(role, access.ActionEditThreshold); err != nil {
		respond.Err(w, err)
		return
	}
	metricType := metricTypeParam(r)

	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSONError(w, respond.NewBadRequest("invalid JSON body"))
		return
	}
	if req.MetricType != "" && req.MetricType != metricType {
		respond.JSONError(w, respond.NewValidationError("metric_type in body does not match path"))
		return
	}
	if req.WarningLevel == nil || req.CriticalLevel == nil {
		respond.JSONError(w, respond.NewValidationError("warning_level and critical_level are required"))
		return
	}

	t := models.Threshold{
		MetricType:    metricType,
		WarningLevel:  *req.WarningLevel,
		CriticalLevel: *req.CriticalLevel,
		Enabled:       true,
		Direction:     req.Direction,
	}
	if req.Enabled != nil {
		t.Enabled = *req.Enabled
	}

	saved, err := h.svc.UpsertThreshold(role, t)
	if err != nil {
		respond.Err(w, err)
		return
	}
	respond.OK(w, saved)
}

// PatchEnabled handles PATCH /api/v1/thresholds/{metricType}/enabled.
func (h *Handler) PatchEnabled(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	if err := h.svc.Authorize(role, access.ActionEditThreshold); err != nil {
		respond.Err(w, err)
		return
	}

	var req EnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSONError(w, respond.NewBadRequest("invalid JSON body"))
		return
	}
	if req.Enabled == nil {
		respond.JSONError(w, respond.NewValidationError("enabled is required"))
		return
	}

	saved, err := h.svc.SetThresholdEnabled(role, metricTypeParam(r), *req.Enabled)
	if err != nil {
		respond.Err(w, err)
		return
	}
	respond.OK(w, saved)
}

// metricTypeParam returns the decoded metric type path segment.
// chi matches against RawPath when it is set, so only then is the
// segment still percent-encoded.
func metricTypeParam(r *http.Request) string {
	param := chi.URLParam(r, "metricType")
	if r.URL.RawPath == "" {
		return param
	}
	if v, err := url.PathUnescape(param); err == nil {
		return v
	}
	return param
}
