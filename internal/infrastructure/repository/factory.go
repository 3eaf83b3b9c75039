// Package repository selects and opens the configured product store.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrops-br/product-catalog/internal/domain"
	"github.com/mrops-br/product-catalog/internal/infrastructure/config"
	"github.com/mrops-br/product-catalog/internal/infrastructure/repository/memory"
	"github.com/mrops-br/product-catalog/internal/infrastructure/repository/mongodb"
	"github.com/mrops-br/product-catalog/internal/infrastructure/repository/postgres"
	"github.com/mrops-br/product-catalog/internal/infrastructure/repository/sqlite"
	"go.opentelemetry.io/otel/trace"
)

// New opens the product repository described by cfg.
// The caller must Close the returned repository.
func New(ctx context.Context, cfg *config.StorageConfig, tracer trace.Tracer, logger *slog.Logger) (domain.ProductRepository, error) {
	storageType := strings.ToLower(cfg.Type)
	if storageType == "" {
		storageType = config.StorageSQLite
	}

	logger.InfoContext(ctx, "Opening product repository", slog.String("storage", storageType))

	var (
		repo domain.ProductRepository
		err  error
	)
	switch storageType {
	case config.StorageMemory:
		return memory.NewProductRepository(tracer, logger), nil
	case config.StorageSQLite:
		repo, err = openSQLite(cfg, tracer, logger)
	case config.StoragePostgreSQL:
		repo, err = openPostgres(ctx, cfg, tracer, logger)
	case config.StorageMongoDB:
		repo, err = openMongo(ctx, cfg, tracer, logger)
	default:
		return nil, fmt.Errorf("unknown storage type: %s (valid: memory, sqlite, postgresql, mongodb)", cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func openSQLite(cfg *config.StorageConfig, tracer trace.Tracer, logger *slog.Logger) (domain.ProductRepository, error) {
	repo, err := sqlite.Open(cfg.SQLite.Path, tracer, logger)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func openPostgres(ctx context.Context, cfg *config.StorageConfig, tracer trace.Tracer, logger *slog.Logger) (domain.ProductRepository, error) {
	repo, err := postgres.Open(ctx, postgres.Config{
		URL:      cfg.PostgreSQL.URL,
		MaxConns: cfg.PostgreSQL.MaxConns,
	}, tracer, logger)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func openMongo(ctx context.Context, cfg *config.StorageConfig, tracer trace.Tracer, logger *slog.Logger) (domain.ProductRepository, error) {
	repo, err := mongodb.Open(ctx, mongodb.Config{
		URL:      cfg.MongoDB.URL,
		Database: cfg.MongoDB.Database,
	}, tracer, logger)
	if err != nil {
		return nil, err
	}
	return repo, nil
}
