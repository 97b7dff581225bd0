package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"proxydeck/internal/card"
	"proxydeck/internal/config"
	"proxydeck/internal/decklist"
	"proxydeck/internal/imagefetch"
	"proxydeck/internal/logging"
	"proxydeck/internal/platform/mtgapi"
	"proxydeck/internal/proxy"
	"proxydeck/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.StorageRoot, 0o755); err != nil {
		return fmt.Errorf("create storage root: %w", err)
	}

	var repo proxy.Repository = proxy.NopRepo{}
	var pool *pgxpool.Pool
	if cfg.DatabaseDSN != "" {
		var err error
		if pool, err = openDB(ctx, cfg.DatabaseDSN); err != nil {
			return err
		}
		defer pool.Close()
		repo = proxy.NewPostgresRepo(pool)
		logger.Info("database connection OK")
	} else {
		logger.Info("DB_DSN not set, run ledger disabled")
	}

	client := mtgapi.NewClient(mtgapi.Config{
		Domain:   cfg.APIDomain,
		Version:  cfg.APIVersion,
		Resource: cfg.APIResource,
		Timeout:  cfg.APIRequestTimeout,
		RPS:      cfg.APIRPS,
	})

	policy, err := card.ParsePolicy(cfg.PrintingPolicy)
	if err != nil {
		return err
	}

	allocator := storage.NewAllocator(cfg.StorageRoot)
	resolver := card.NewResolver(client, cfg.FetchConcurrency)
	fetcher := imagefetch.NewFetcher(client)
	svc := proxy.NewService(allocator, decklist.FileIngestor{}, resolver, fetcher, repo,
		proxy.Config{Concurrency: cfg.FetchConcurrency, Policy: policy}, logger)

	if cfg.StorageTTL > 0 {
		storage.StartSweeper(ctx, logger, cfg.StorageRoot, cfg.StorageTTL, cfg.SweepInterval)
	}

	ready := func(ctx context.Context) error {
		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("database: %w", err)
			}
		}
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("card api: %w", err)
		}
		return nil
	}

	handler, err := newServer(ctx, cfg, logger, routes{
		cards: card.NewHTTPHandler(resolver, fetcher, allocator),
		decks: proxy.NewHTTPHandler(svc, cfg.MaxUploadBytes),
		ready: ready,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("addr", cfg.Addr),
			zap.String("upstream", client.BaseURL()),
			zap.String("policy", string(policy)),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", redactDSN(dsn), err)
	}
	return pool, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
