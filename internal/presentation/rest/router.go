package rest

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AtharvaDeo101/KARA/internal/application/usecase"
	"github.com/AtharvaDeo101/KARA/internal/presentation/middleware"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Predict        *usecase.PredictCompletion
	Chat           *usecase.Chat
	Logger         *slog.Logger
	Registry       *prometheus.Registry
	MetricsHandler http.Handler
	AllowedOrigins []string
	Version        string
}

// NewRouter registers every route and wraps the mux in the middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	NewHealthHandler(cfg.Predict.Ready, cfg.Chat.Configured, cfg.Version, cfg.Logger).RegisterRoutes(mux)
	NewPredictionHandler(cfg.Predict, cfg.Chat, cfg.Logger).RegisterRoutes(mux)

	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}

	chain := []func(http.Handler) http.Handler{
		middleware.Recover(cfg.Logger),
		middleware.RequestID,
		middleware.Logging(cfg.Logger),
	}
	if cfg.Registry != nil {
		chain = append(chain, middleware.NewHTTPMetrics(cfg.Registry).Middleware)
	}
	chain = append(chain,
		middleware.CORS(cfg.AllowedOrigins),
		middleware.BodyLimit(MaxBodyBytes),
	)

	return middleware.Chain(mux, chain...)
}
