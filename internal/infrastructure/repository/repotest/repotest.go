// Package repotest holds a behavioral suite every domain.ProductRepository
// implementation must pass, plus small fixtures shared by store tests.
package repotest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mrops-br/product-catalog/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Factory returns an empty repository private to the calling test.
type Factory func(t *testing.T) domain.ProductRepository

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Tracer returns a tracer that records nothing.
func Tracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("repotest")
}

// Product builds a valid product whose code and name derive from n.
func Product(n int, country string) *domain.Product {
	now := domain.Now()
	return &domain.Product{
		ID:            fmt.Sprintf("00000000-0000-0000-0000-%012d", n),
		OriginCountry: country,
		ProductName:   fmt.Sprintf("Product %d", n),
		ProductCode:   fmt.Sprintf("P-%04d", n),
		Price:         decimal.RequireFromString("19.99").Add(decimal.NewFromInt(int64(n))),
		Quantity:      n,
		Description:   fmt.Sprintf("Description of product %d", n),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// AssertProductEqual compares every persisted field of two products.
func AssertProductEqual(t *testing.T, want, got *domain.Product) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.OriginCountry, got.OriginCountry)
	assert.Equal(t, want.ProductName, got.ProductName)
	assert.Equal(t, want.ProductCode, got.ProductCode)
	assert.True(t, want.Price.Equal(got.Price), "price = %s, want %s", got.Price, want.Price)
	assert.Equal(t, want.Quantity, got.Quantity)
	assert.Equal(t, want.Description, got.Description)
	assert.WithinDuration(t, want.CreatedAt, got.CreatedAt, time.Millisecond)
	assert.WithinDuration(t, want.UpdatedAt, got.UpdatedAt, time.Millisecond)
}

// Run exercises the full repository contract against stores built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("CreateAndFindByCode", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		p := Product(1, "Bulgaria")

		require.NoError(t, repo.Create(ctx, p))

		got, err := repo.FindByCode(ctx, p.ProductCode)
		require.NoError(t, err)
		AssertProductEqual(t, p, got)
	})

	t.Run("CreateDuplicateCode", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		p := Product(1, "Bulgaria")
		require.NoError(t, repo.Create(ctx, p))

		dup := Product(2, "Greece")
		dup.ProductCode = p.ProductCode
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrProductCodeExists)

		got, err := repo.FindByCode(ctx, p.ProductCode)
		require.NoError(t, err)
		assert.Equal(t, "Bulgaria", got.OriginCountry)
	})

	t.Run("FindByCodeMissing", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.FindByCode(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("FindAll", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		empty, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty)

		for _, n := range []int{3, 1, 2} {
			require.NoError(t, repo.Create(ctx, Product(n, "Bulgaria")))
		}

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "P-0001", all[0].ProductCode)
		assert.Equal(t, "P-0002", all[1].ProductCode)
		assert.Equal(t, "P-0003", all[2].ProductCode)
	})

	t.Run("FindByOriginCountry", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.Create(ctx, Product(1, "Bulgaria")))
		require.NoError(t, repo.Create(ctx, Product(2, "Greece")))
		require.NoError(t, repo.Create(ctx, Product(3, "Bulgaria")))
		require.NoError(t, repo.Create(ctx, Product(4, "bulgaria")))

		found, err := repo.FindByOriginCountry(ctx, "Bulgaria")
		require.NoError(t, err)
		require.Len(t, found, 2)
		for _, p := range found {
			assert.Equal(t, "Bulgaria", p.OriginCountry)
		}

		none, err := repo.FindByOriginCountry(ctx, "Peru")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		p := Product(1, "Bulgaria")
		require.NoError(t, repo.Create(ctx, p))

		changed := p.Clone()
		changed.ID = "ignored-on-update"
		changed.CreatedAt = p.CreatedAt.Add(-time.Hour)
		changed.OriginCountry = "Greece"
		changed.ProductName = "Olive Oil"
		changed.Price = decimal.RequireFromString("7.25")
		changed.Quantity = 0
		changed.Description = "Extra virgin"
		changed.UpdatedAt = p.UpdatedAt.Add(time.Minute)
		require.NoError(t, repo.Update(ctx, changed))

		got, err := repo.FindByCode(ctx, p.ProductCode)
		require.NoError(t, err)

		want := changed.Clone()
		want.ID = p.ID
		want.CreatedAt = p.CreatedAt
		AssertProductEqual(t, want, got)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.Update(context.Background(), Product(9, "Bulgaria"))
		assert.ErrorIs(t, err, domain.ErrProductNotFound)

		all, err := repo.FindAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, Product(1, "Bulgaria")))
		require.NoError(t, repo.Create(ctx, Product(2, "Bulgaria")))

		require.NoError(t, repo.Delete(ctx, "P-0001"))

		_, err := repo.FindByCode(ctx, "P-0001")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("DeleteMissingIsNoop", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, Product(1, "Bulgaria")))

		require.NoError(t, repo.Delete(ctx, "missing"))

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("ReturnedProductsAreDetached", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		p := Product(1, "Bulgaria")
		require.NoError(t, repo.Create(ctx, p))

		p.ProductName = "mutated after create"
		got, err := repo.FindByCode(ctx, p.ProductCode)
		require.NoError(t, err)
		got.ProductName = "mutated after read"

		again, err := repo.FindByCode(ctx, p.ProductCode)
		require.NoError(t, err)
		assert.Equal(t, "Product 1", again.ProductName)
	})

	t.Run("Ping", func(t *testing.T) {
		repo := newRepo(t)
		assert.NoError(t, repo.Ping(context.Background()))
	})
}
