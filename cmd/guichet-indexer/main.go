// Command guichet-indexer rebuilds the procedure collection from a corpus
// file. A run is all-or-nothing: the previous records are wiped only after
// every document embedded successfully.
package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/Dayende-ib/guichet/internal/config"
	"github.com/Dayende-ib/guichet/internal/corpus"
	dbRedis "github.com/Dayende-ib/guichet/internal/db/redis"
	"github.com/Dayende-ib/guichet/internal/domain"
	logpkg "github.com/Dayende-ib/guichet/internal/logger"
	"github.com/Dayende-ib/guichet/internal/metrics"
	collectionrepo "github.com/Dayende-ib/guichet/internal/repository/collection"
	"github.com/Dayende-ib/guichet/internal/repository/embcache"
	procedurerepo "github.com/Dayende-ib/guichet/internal/repository/procedure"
	openaiTr "github.com/Dayende-ib/guichet/internal/transport/openai"
	indexeruc "github.com/Dayende-ib/guichet/internal/usecase/indexer"
	"github.com/Dayende-ib/guichet/internal/version"
)

func main() {
	corpusPath := flag.String("corpus", "", "corpus file path (overrides config)")
	timeout := flag.Duration("timeout", 30*time.Minute, "overall reindex timeout")
	recreate := flag.Bool("recreate", false, "drop the collection first; required after a dimension change")
	flag.Parse()

	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	path := cfg.Corpus.Path
	if *corpusPath != "" {
		path = *corpusPath
	}

	logger.Info("Starting corpus reindex",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("corpus", path),
	)

	procs, err := corpus.Load(path)
	if err != nil {
		logger.Fatal("Failed to load corpus", zap.Error(err))
	}
	logger.Info("Corpus loaded", zap.Int("documents", len(procs)))

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	metrics.RegisterEmbeddingMetrics()

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
	passageEmbedder := domain.NewInstructionEmbedder(cached, vecCfg.PassagePrefix)

	if err := base.HealthCheck(ctx); err != nil {
		logger.Fatal("Embedding provider not available", zap.Error(err))
	}

	collRepo := collectionrepo.New(store, cfg.Embedding.Dimensions).WithHNSW(collectionrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	procRepo := procedurerepo.New(store)

	if *recreate {
		if err := collRepo.Delete(ctx, domain.CollectionName); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Fatal("Failed to drop collection", zap.Error(err))
		}
		logger.Info("Collection dropped", zap.String("collection", domain.CollectionName))
	}

	indexer := indexeruc.New(collRepo, procRepo, passageEmbedder, cfg.Embedding.Dimensions, logger)

	report, err := indexer.Reindex(ctx, procs)
	if err != nil {
		logger.Fatal("Reindex failed", zap.Error(err))
	}

	logger.Info("Reindex finished",
		zap.Int("indexed", report.Indexed),
		zap.Int("removed", report.Removed),
		zap.Int("total_tokens", report.TotalTokens),
	)
}
