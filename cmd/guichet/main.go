package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Dayende-ib/guichet/internal/config"
	dbRedis "github.com/Dayende-ib/guichet/internal/db/redis"
	"github.com/Dayende-ib/guichet/internal/domain"
	logpkg "github.com/Dayende-ib/guichet/internal/logger"
	"github.com/Dayende-ib/guichet/internal/metrics"
	collectionrepo "github.com/Dayende-ib/guichet/internal/repository/collection"
	"github.com/Dayende-ib/guichet/internal/repository/embcache"
	searchrepo "github.com/Dayende-ib/guichet/internal/repository/search"
	chiTransport "github.com/Dayende-ib/guichet/internal/transport/chi"
	openaiTr "github.com/Dayende-ib/guichet/internal/transport/openai"
	answeruc "github.com/Dayende-ib/guichet/internal/usecase/answer"
	healthuc "github.com/Dayende-ib/guichet/internal/usecase/health"
	retrieveruc "github.com/Dayende-ib/guichet/internal/usecase/retriever"
	"github.com/Dayende-ib/guichet/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting guichet API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	// Build embedder chain — composition root.
	// OpenAI provider -> redis cache -> instruction prefix (outermost,
	// so the cache key covers the intent-prefixed text).
	vecCfg := domain.DefaultVectorConfig()
	base := openaiTr.NewEmbedder(&openaiTr.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})
	cached := embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	queryEmbedder := domain.NewInstructionEmbedder(cached, vecCfg.QueryPrefix)
	passageEmbedder := domain.NewInstructionEmbedder(cached, vecCfg.PassagePrefix)

	// Model unavailability is fatal at boot, not per-call.
	if err := base.HealthCheck(ctx); err != nil {
		logger.Fatal("Embedding provider not available", zap.Error(err))
	}
	logger.Info("Embedder ready",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	collRepo := collectionrepo.New(store, cfg.Embedding.Dimensions).WithHNSW(collectionrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	searchRepo := searchrepo.New(store)

	retrieverSvc := retrieveruc.New(searchRepo, collRepo, queryEmbedder, passageEmbedder, retrieveruc.Options{
		Rerank:          !cfg.Retrieval.DisableRerank,
		OverfetchFactor: cfg.Retrieval.OverfetchFactor,
		PrefetchFloor:   cfg.Retrieval.PrefetchFloor,
		RerankCap:       cfg.Retrieval.RerankCap,
	})

	// Generation is optional: without it the answer service degrades to
	// citations-only responses.
	var generator answeruc.Generator
	if cfg.Generation.Enabled {
		generator = openaiTr.NewGenerator(&openaiTr.GeneratorConfig{
			APIKey:      cfg.Generation.APIKey,
			BaseURL:     cfg.Generation.BaseURL,
			Model:       cfg.Generation.Model,
			Temperature: cfg.Generation.Temperature,
			MaxTokens:   cfg.Generation.MaxTokens,
			Logger:      logger,
		})
		logger.Info("Generator ready", zap.String("model", cfg.Generation.Model))
	} else {
		logger.Info("Generation disabled, serving citations-only answers")
	}

	answerSvc := answeruc.New(retrieverSvc, generator, domain.CollectionName)
	healthSvc := healthuc.New(store, base)

	server := chiTransport.NewServer(
		answerSvc, retrieverSvc, healthSvc,
		domain.CollectionName, cfg.Retrieval.DefaultTopK,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
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

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
