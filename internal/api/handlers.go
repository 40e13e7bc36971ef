package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"heartrisk/internal/artifacts"
	"heartrisk/internal/config"
	"heartrisk/internal/features"
	"heartrisk/internal/health"
	"heartrisk/internal/logs"
	"heartrisk/internal/metrics"
	"heartrisk/internal/predict"
	"heartrisk/internal/schema"
)

// maxBodyBytes bounds a prediction request body.
const maxBodyBytes = 1 << 16

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	engine   *predict.Engine
	metrics  *metrics.Registry
	logger   *logs.Logger
	analyzer *health.HealthAnalyzer
	cfg      config.Config
}

// NewHandler creates a new API handler.
func NewHandler(
	engine *predict.Engine,
	metrics *metrics.Registry,
	logger *logs.Logger,
	cfg config.Config,
) *Handler {
	return &Handler{
		engine:   engine,
		metrics:  metrics,
		logger:   logger,
		analyzer: health.NewHealthAnalyzer(metrics, logger),
		cfg:      cfg,
	}
}

type errorResponse struct {
	Detail any `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

/* ---------------- POST {prefix}/predict ---------------- */

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		h.metrics.Inc(metrics.MalformedRequestsTotal)
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	rec, err := schema.Parse(raw)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			h.metrics.Inc(metrics.ValidationRejectsTotal)
			writeError(w, http.StatusUnprocessableEntity, verr.Fields)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.engine.PredictRecord(rec)
	if err != nil {
		h.metrics.Inc(metrics.PredictionFailuresTotal)
		h.logger.Error("prediction failed",
			"request_id", RequestID(r.Context()),
			"err", err,
		)
		writeError(w, http.StatusInternalServerError, publicMessage(err))
		return
	}

	h.observe(result)
	writeJSON(w, http.StatusOK, result)
}

// publicMessage describes a pipeline failure without model internals.
func publicMessage(err error) string {
	var (
		perr *predict.PredictionError
		verr *features.VectorizationError
	)
	switch {
	case errors.As(err, &perr):
		return "Prediction error: prediction failed during " + string(perr.Stage)
	case errors.As(err, &verr):
		return "Prediction error: " + verr.Error()
	default:
		return "Unexpected error"
	}
}

func (h *Handler) observe(res schema.Result) {
	h.metrics.Inc(metrics.PredictionsTotal)
	if res.Prediction {
		h.metrics.Inc(metrics.PositiveDiagnosesTotal)
	}
	switch res.RiskLevel {
	case schema.RiskHigh:
		h.metrics.Inc(metrics.RiskHighTotal)
	case schema.RiskMedium:
		h.metrics.Inc(metrics.RiskMediumTotal)
	default:
		h.metrics.Inc(metrics.RiskLowTotal)
	}
}

/* ---------------- GET / ---------------- */

type infoResponse struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
	Status      string            `json:"status"`
}

func (h *Handler) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{
		Name:        h.cfg.AppName,
		Version:     h.cfg.Version,
		Description: h.cfg.Description,
		Endpoints: map[string]string{
			"predict":     h.cfg.APIPrefix + "/predict",
			"schema":      h.cfg.APIPrefix + "/schema",
			"health":      "/health",
			"metrics":     "/metrics",
			"diagnostics": "/admin/diagnostics",
		},
		Status: "running",
	})
}

/* ---------------- GET /health ---------------- */

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: h.cfg.AppName,
		Version: h.cfg.Version,
	})
}

/* ---------------- GET {prefix}/schema ---------------- */

type riskBand struct {
	Level schema.RiskLevel `json:"level"`
	Min   float64          `json:"min"`
}

type schemaResponse struct {
	Fields       []schema.Definition `json:"fields"`
	FeatureOrder []string            `json:"feature_order"`
	Example      map[string]any      `json:"example"`
	RiskLevels   []riskBand          `json:"risk_levels"`
}

func (h *Handler) GetSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, schemaResponse{
		Fields:       schema.Definitions(),
		FeatureOrder: features.Order(),
		Example:      schema.Example(),
		RiskLevels: []riskBand{
			{Level: schema.RiskLow, Min: 0},
			{Level: schema.RiskMedium, Min: predict.MediumRiskThreshold},
			{Level: schema.RiskHigh, Min: predict.HighRiskThreshold},
		},
	})
}

/* ---------------- GET /metrics ---------------- */

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_ = h.metrics.WriteText(w)
		return
	}
	writeJSON(w, http.StatusOK, h.metrics.Snapshot())
}

/* ---------------- GET /admin/diagnostics ---------------- */

func (h *Handler) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analyzer.Analyze())
}

/* ---------------- GET /admin/logs ---------------- */

func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	n := 100
	if q := r.URL.Query().Get("n"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "n must be a non-negative integer")
			return
		}
		n = v
	}
	writeJSON(w, http.StatusOK, h.logger.GetLast(n))
}

/* ---------------- GET /admin/artifacts ---------------- */

func (h *Handler) GetArtifacts(w http.ResponseWriter, r *http.Request) {
	var info []artifacts.Info
	if set := h.engine.Artifacts(); set != nil {
		info = set.Info()
	}
	writeJSON(w, http.StatusOK, info)
}
