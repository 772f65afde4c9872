// Package samples accepts metric samples from pollers.
package samples

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/netwatch/internal/alerting"
	"github.com/good-yellow-bee/netwatch/internal/api/middleware"
	"github.com/good-yellow-bee/netwatch/internal/api/respond"
	"github.com/good-yellow-bee/netwatch/internal/models"
)

// MaxBatch is the largest number of samples accepted per request.
const MaxBatch = 1000

const maxBodyBytes = 1 << 20

// Ingester runs samples through the alert pipeline.
type Ingester interface {
	Ingest(samples []models.MetricSample) ([]alerting.Outcome, error)
}

// Handler handles sample ingestion.
type Handler struct {
	ingester Ingester
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a new samples handler.
func NewHandler(ingester Ingester, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		ingester: ingester,
		logger:   logger.With(zap.String("component", "samples")),
		now:      time.Now,
	}
}

// IngestRequest is the body of POST /api/v1/samples.
type IngestRequest struct {
	Samples []models.MetricSample `json:"samples"`
}

// IngestResponse reports the outcome of every accepted sample, in order.
type IngestResponse struct {
	Accepted int                `json:"accepted"`
	Raised   int                `json:"raised"`
	Outcomes []alerting.Outcome `json:"outcomes"`
}

// Ingest handles POST /api/v1/samples.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSONError(w, respond.NewBadRequest("invalid JSON body"))
		return
	}
	if err := h.validate(req.Samples); err != nil {
		respond.JSONError(w, respond.NewValidationError(err.Error()))
		return
	}

	outcomes, err := h.ingester.Ingest(req.Samples)
	if err != nil {
		h.logger.Error("ingest failed",
			zap.String("api_key_id", middleware.GetAPIKeyID(r.Context())),
			zap.Int("processed", len(outcomes)),
			zap.Error(err),
		)
		respond.Err(w, err)
		return
	}

	raised := 0
	for _, o := range outcomes {
		if o.Alert != nil {
			raised++
		}
	}
	h.logger.Debug("samples ingested",
		zap.String("api_key_id", middleware.GetAPIKeyID(r.Context())),
		zap.Int("accepted", len(outcomes)),
		zap.Int("raised", raised),
	)
	respond.OK(w, IngestResponse{Accepted: len(outcomes), Raised: raised, Outcomes: outcomes})
}

// validate checks the batch and stamps samples that carry no observation time.
func (h *Handler) validate(samples []models.MetricSample) error {
	if len(samples) == 0 {
		return fmt.Errorf("samples must not be empty")
	}
	if len(samples) > MaxBatch {
		return fmt.Errorf("at most %d samples per request", MaxBatch)
	}
	now := h.now()
	for i := range samples {
		s := &samples[i]
		switch {
		case s.MetricType == "":
			return fmt.Errorf("sample %d: metric_type is required", i)
		case s.DeviceID == "":
			return fmt.Errorf("sample %d: device_id is required", i)
		case math.IsNaN(s.Value) || math.IsInf(s.Value, 0):
			return fmt.Errorf("sample %d: value must be finite", i)
		}
		if s.ObservedAt.IsZero() {
			s.ObservedAt = now
		}
	}
	return nil
}
