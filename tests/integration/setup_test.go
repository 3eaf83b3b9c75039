//go:build integration

package integration

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/mrops-br/product-catalog/internal/app/service"
	"github.com/mrops-br/product-catalog/internal/domain"
	"github.com/mrops-br/product-catalog/internal/infrastructure/repository/mongodb"
	"github.com/mrops-br/product-catalog/internal/infrastructure/repository/postgres"
	"github.com/mrops-br/product-catalog/internal/infrastructure/repository/repotest"
	"github.com/mrops-br/product-catalog/internal/infrastructure/repository/sqlite"
)

// backend opens an empty repository in a database private to t.
type backend struct {
	name string
	open repotest.Factory
}

func backends() []backend {
	return []backend{
		{name: "postgresql", open: newPostgresRepository},
		{name: "mongodb", open: newMongoRepository},
		{name: "sqlite", open: newSQLiteRepository},
	}
}

// ephemeralName returns a database name unique to this test run.
func ephemeralName() string {
	return "t_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// newPostgresRepository creates a fresh PostgreSQL database, points a pool at
// it and drops the database when the test ends.
func newPostgresRepository(t *testing.T) domain.ProductRepository {
	t.Helper()
	ctx := testCtx
	name := ephemeralName()

	_, err := pgAdmin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize())
	require.NoError(t, err, "create database %s", name)

	poolCfg, err := pgxpool.ParseConfig(pgURL)
	require.NoError(t, err)
	poolCfg.ConnConfig.Database = name

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		dropCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := pgAdmin.Exec(dropCtx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()+" WITH (FORCE)")
		if err != nil {
			t.Logf("drop database %s: %v", name, err)
		}
	})

	repo, err := postgres.NewProductRepository(ctx, pool, repotest.Tracer(), repotest.Logger())
	require.NoError(t, err)
	return repo
}

// newMongoRepository uses a fresh MongoDB database dropped when the test ends.
func newMongoRepository(t *testing.T) domain.ProductRepository {
	t.Helper()
	db := mongoClient.Database(ephemeralName())

	t.Cleanup(func() {
		dropCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := db.Drop(dropCtx); err != nil {
			t.Logf("drop database %s: %v", db.Name(), err)
		}
	})

	repo, err := mongodb.NewProductRepository(testCtx, db, repotest.Tracer(), repotest.Logger())
	require.NoError(t, err)
	return repo
}

// newSQLiteRepository uses a database file in the test's temp dir.
func newSQLiteRepository(t *testing.T) domain.ProductRepository {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "products.db"), repotest.Tracer(), repotest.Logger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// newManager wires a manager over a fresh repository from b.
func newManager(t *testing.T, b backend) (*service.ProductManager, domain.ProductRepository) {
	t.Helper()
	repo := b.open(t)
	manager := service.NewProductManager(repo, repotest.Tracer(), noop.NewMeterProvider().Meter("integration"), repotest.Logger())
	return manager, repo
}

// forEachBackend runs fn once per storage backend as a subtest.
func forEachBackend(t *testing.T, fn func(t *testing.T, b backend)) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			fn(t, b)
		})
	}
}

// storedCount returns how many products the repository holds.
func storedCount(t *testing.T, repo domain.ProductRepository) int {
	t.Helper()
	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	return len(all)
}
