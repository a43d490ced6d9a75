package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AtharvaDeo101/KARA/internal/application/usecase"
	"github.com/AtharvaDeo101/KARA/internal/domain/port"
	"github.com/AtharvaDeo101/KARA/internal/domain/service"
	"github.com/AtharvaDeo101/KARA/internal/infrastructure/config"
	"github.com/AtharvaDeo101/KARA/internal/infrastructure/gemini"
	"github.com/AtharvaDeo101/KARA/internal/infrastructure/ml"
	"github.com/AtharvaDeo101/KARA/internal/infrastructure/telemetry"
	grpcpresentation "github.com/AtharvaDeo101/KARA/internal/presentation/grpc"
	"github.com/AtharvaDeo101/KARA/internal/presentation/rest"
	"github.com/AtharvaDeo101/KARA/pkg/observability"
	"github.com/AtharvaDeo101/KARA/pkg/tlsutil"
)

const serviceName = "karad"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("karad exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	logger.Info("starting karad",
		"version", version,
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"environment", cfg.Environment,
	)

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Enabled:      cfg.TracingEnabled,
		Insecure:     true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		shutdownTracer = func(context.Context) error { return nil }
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	metrics, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		return err
	}
	defer func() { _ = metrics.Provider.Shutdown(context.Background()) }()

	classifier, err := loadClassifier(cfg, logger)
	if err != nil {
		return err
	}

	predictionMetrics, err := telemetry.NewPredictionMetrics(metrics.Provider)
	if err != nil {
		return err
	}

	geminiClient := gemini.NewClient(gemini.ClientOptions{
		BaseURL:        cfg.GeminiAPIURL,
		APIKey:         cfg.GeminiAPIKey,
		Model:          cfg.GeminiModel,
		Timeout:        cfg.ChatTimeout,
		RequestsPerSec: cfg.ChatRateLimit,
	}, logger)
	if !geminiClient.Configured() {
		logger.Warn("GEMINI_API_KEY not set, chat endpoint will be unavailable")
	}

	predictUC := usecase.NewPredictCompletion(
		service.NewValidator(),
		service.NewPredictionEngine(classifier),
		predictionMetrics,
		logger,
	)
	chatUC := usecase.NewChat(geminiClient, logger)

	creds, err := tlsutil.ServerCredentials(cfg.GRPCTLSCertFile, cfg.GRPCTLSKeyFile)
	if err != nil {
		return fmt.Errorf("failed to load gRPC TLS credentials: %w", err)
	}
	grpcServer := grpcpresentation.NewServer(
		grpcpresentation.NewPredictionHandler(predictUC, logger),
		grpcpresentation.ServerConfig{
			Address:     cfg.GRPCAddress(),
			Creds:       creds,
			Reflection:  cfg.GRPCReflection,
			ModelLoaded: predictUC.Ready(),
		},
		logger,
	)

	httpServer := &http.Server{
		Addr: cfg.HTTPAddress(),
		Handler: rest.NewRouter(rest.RouterConfig{
			Predict:        predictUC,
			Chat:           chatUC,
			Logger:         logger,
			Registry:       metrics.Registry,
			MetricsHandler: metrics.Handler,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Version:        version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.ChatTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := grpcServer.Start(); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down karad")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		grpcServer.Stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	logger.Info("karad started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"model_loaded", predictUC.Ready(),
	)

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("karad stopped")
	return nil
}

// loadClassifier returns nil without error when the artifact is missing or
// unreadable and MODEL_REQUIRED is false; the service then runs degraded.
func loadClassifier(cfg *config.Config, logger *slog.Logger) (port.Classifier, error) {
	pipeline, err := ml.LoadFile(cfg.ModelPath)
	if err == nil {
		logger.Info("model loaded", "path", cfg.ModelPath, "type", pipeline.ModelType())
		return pipeline, nil
	}
	if cfg.ModelRequired {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	if errors.Is(err, ml.ErrArtifactNotFound) {
		logger.Warn("model artifact not found, predictions disabled", "path", cfg.ModelPath)
	} else {
		logger.Error("failed to load model, predictions disabled", "path", cfg.ModelPath, "error", err)
	}
	return nil, nil
}
