package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/mrops-br/product-catalog/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProductRepository is an in-memory implementation of domain.ProductRepository
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		products: make(map[string]*domain.Product),
		tracer:   tracer,
		logger:   logger,
	}
}

// Create stores a new product
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.code", product.ProductCode),
		attribute.String("product.name", product.ProductName),
	)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ProductCode]; exists {
		span.RecordError(domain.ErrProductCodeExists)
		span.SetStatus(codes.Error, "Product code already exists")
		return domain.ErrProductCodeExists
	}

	r.products[product.ProductCode] = product.Clone()

	r.logger.InfoContext(ctx, "Product created in repository",
		slog.String("product_code", product.ProductCode),
		slog.String("product_name", product.ProductName),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return nil
}

// Update overwrites the product stored under the same code
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("product.code", product.ProductCode))

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.products[product.ProductCode]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		return domain.ErrProductNotFound
	}

	updated := product.Clone()
	updated.ID = stored.ID
	updated.CreatedAt = stored.CreatedAt
	r.products[product.ProductCode] = updated

	r.logger.InfoContext(ctx, "Product updated in repository",
		slog.String("product_code", product.ProductCode),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return nil
}

// Delete removes the product with the given code, if any
func (r *ProductRepository) Delete(ctx context.Context, code string) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("product.code", code))

	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.products[code]
	delete(r.products, code)

	r.logger.InfoContext(ctx, "Product deleted from repository",
		slog.String("product_code", code),
		slog.Bool("existed", existed),
	)

	span.SetStatus(codes.Ok, "Product deleted")
	return nil
}

// FindByCode retrieves a product by code
func (r *ProductRepository) FindByCode(ctx context.Context, code string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByCode")
	defer span.End()

	span.SetAttributes(attribute.String("product.code", code))

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[code]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		r.logger.WarnContext(ctx, "Product not found",
			slog.String("product_code", code),
		)
		return nil, domain.ErrProductNotFound
	}

	r.logger.DebugContext(ctx, "Product found in repository",
		slog.String("product_code", code),
		slog.String("product_name", product.ProductName),
	)

	span.SetStatus(codes.Ok, "Product found")
	return product.Clone(), nil
}

// FindAll retrieves all products ordered by code
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	products := r.collect(func(*domain.Product) bool { return true })

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.InfoContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// FindByOriginCountry retrieves products whose origin country matches exactly
func (r *ProductRepository) FindByOriginCountry(ctx context.Context, country string) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByOriginCountry")
	defer span.End()

	span.SetAttributes(attribute.String("product.origin_country", country))

	products := r.collect(func(p *domain.Product) bool { return p.OriginCountry == country })

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.InfoContext(ctx, "Products searched by country",
		slog.String("country", country),
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// Ping always succeeds for the in-memory store
func (r *ProductRepository) Ping(context.Context) error {
	return nil
}

// Close is a no-op
func (r *ProductRepository) Close() error {
	return nil
}

func (r *ProductRepository) collect(match func(*domain.Product) bool) []*domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if match(product) {
			products = append(products, product.Clone())
		}
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].ProductCode < products[j].ProductCode
	})
	return products
}
