package rest

import (
	"log/slog"
	"net/http"
	"time"
)

// ServiceName identifies this service in health payloads.
const ServiceName = "kara"

// HealthHandler provides the banner and health check endpoints.
type HealthHandler struct {
	logger         *slog.Logger
	modelLoaded    func() bool
	chatConfigured func() bool
	version        string
	startTime      time.Time
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(modelLoaded, chatConfigured func() bool, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger:         logger,
		modelLoaded:    modelLoaded,
		chatConfigured: chatConfigured,
		version:        version,
		startTime:      time.Now(),
	}
}

// BannerResponse is the JSON response of the root endpoint.
type BannerResponse struct {
	Endpoints map[string]string `json:"endpoints"`
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Version   string            `json:"version"`
}

// HealthResponse reports model and chat relay availability.
type HealthResponse struct {
	Status              string `json:"status"`
	ModelLoaded         bool   `json:"model_loaded"`
	GeminiAPIConfigured bool   `json:"gemini_api_configured"`
}

// ProbeResponse is the JSON response for liveness and readiness probes.
type ProbeResponse struct {
	Checks  map[string]string `json:"checks,omitempty"`
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Uptime  string            `json:"uptime"`
}

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Root describes the API.
func (h *HealthHandler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, BannerResponse{
		Message: "KARA Learning Intelligence API",
		Status:  "running",
		Version: h.version,
		Endpoints: map[string]string{
			"health":  "/health (GET)",
			"predict": "/predict (POST)",
			"chat":    "/chat (POST)",
			"metrics": "/metrics (GET)",
		},
	})
}

// Health reports whether the model and chat relay are usable.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	loaded := h.modelLoaded()
	status := "healthy"
	if !loaded {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:              status,
		ModelLoaded:         loaded,
		GeminiAPIConfigured: h.chatConfigured(),
	})
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ProbeResponse{
		Status:  "healthy",
		Service: ServiceName,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Readyz reports ready only once a model artifact is loaded.
func (h *HealthHandler) Readyz(w http.ResponseWriter, _ *http.Request) {
	resp := ProbeResponse{
		Status:  "ready",
		Service: ServiceName,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Checks:  map[string]string{"model": "ok"},
	}
	status := http.StatusOK

	if !h.modelLoaded() {
		resp.Status = "not ready"
		resp.Checks["model"] = "not loaded"
		status = http.StatusServiceUnavailable
		h.logger.Debug("readiness probe failed: model not loaded")
	}

	writeJSON(w, status, resp)
}
