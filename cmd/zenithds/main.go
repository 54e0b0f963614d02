package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zenithds/zenithds/internal/config"
	logpkg "github.com/zenithds/zenithds/internal/logger"
	"github.com/zenithds/zenithds/internal/metrics"
	collectionrepo "github.com/zenithds/zenithds/internal/repository/collection"
	"github.com/zenithds/zenithds/internal/repository/csvfile"
	chiTransport "github.com/zenithds/zenithds/internal/transport/chi"
	collectionuc "github.com/zenithds/zenithds/internal/usecase/collection"
	healthuc "github.com/zenithds/zenithds/internal/usecase/health"
	queryuc "github.com/zenithds/zenithds/internal/usecase/query"
	"github.com/zenithds/zenithds/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting zenithds API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("addr", cfg.Address()),
		zap.String("data_path", cfg.Engine.DataPath),
		zap.Int("workers", cfg.Engine.Workers),
		zap.String("filename_mode", cfg.Engine.FilenameMode),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEngineMetrics()
	metrics.RegisterHTTPMetrics()

	collRepo, err := collectionrepo.New(collectionrepo.Config{
		Root:    cfg.Engine.DataPath,
		Mode:    collectionrepo.FilenameMode(cfg.Engine.FilenameMode),
		Pattern: cfg.Engine.FilenamePattern,
	})
	if err != nil {
		logger.Fatal("Failed to create collection repository", zap.Error(err))
	}
	if err := collRepo.Ping(context.Background()); err != nil {
		logger.Warn("Data path not ready", zap.String("root", collRepo.Root()), zap.Error(err))
	}

	querySvc := queryuc.New(collRepo, csvfile.NewScanner()).WithWorkers(cfg.Engine.Workers)
	collSvc := collectionuc.New(collRepo).WithHeaderSample(cfg.Engine.HeaderSample)
	healthSvc := healthuc.New(collRepo, cfg.Engine.Workers)

	server := chiTransport.NewServer(querySvc, collSvc, healthSvc, chiTransport.Pagination{
		DefaultPage:     cfg.Pagination.DefaultPage,
		DefaultPageSize: cfg.Pagination.DefaultPageSize,
		MaxPageSize:     cfg.Pagination.MaxPageSize,
	}, logger).
		WithDefaultCollection(cfg.Engine.DefaultCollection).
		WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := cfg.Address()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternal,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
