package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mrops-br/product-catalog/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProductManager validates products and orchestrates repository calls
type ProductManager struct {
	repo                  domain.ProductRepository
	tracer                trace.Tracer
	logger                *slog.Logger
	productCreatedCounter metric.Int64Counter
	productOperations     metric.Int64Counter
}

// NewProductManager creates a new product manager
func NewProductManager(
	repo domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductManager {
	productCreatedCounter, _ := meter.Int64Counter(
		"products.created.total",
		metric.WithDescription("Total number of products created"),
	)

	productOperations, _ := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)

	return &ProductManager{
		repo:                  repo,
		tracer:                tracer,
		logger:                logger,
		productCreatedCounter: productCreatedCounter,
		productOperations:     productOperations,
	}
}

// Add validates and stores a new product. The product's ID and timestamps
// are assigned here; the stored copy is returned.
func (m *ProductManager) Add(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, span := m.tracer.Start(ctx, "ProductManager.Add")
	defer span.End()

	if product == nil {
		return nil, m.fail(ctx, span, "add", domain.ErrInvalidProduct)
	}

	span.SetAttributes(attribute.String("product.code", product.ProductCode))

	m.logger.InfoContext(ctx, "Adding product",
		slog.String("product_code", product.ProductCode),
	)

	created, err := domain.NewProduct(
		product.OriginCountry,
		product.ProductName,
		product.ProductCode,
		product.Price,
		product.Quantity,
		product.Description,
	)
	if err != nil {
		return nil, m.fail(ctx, span, "add", err)
	}

	span.SetAttributes(
		attribute.String("product.id", created.ID),
		attribute.String("product.price", created.Price.String()),
	)

	if err := m.repo.Create(ctx, created); err != nil {
		return nil, m.fail(ctx, span, "add", err)
	}

	m.productCreatedCounter.Add(ctx, 1)
	m.record(ctx, "add", "success")

	m.logger.InfoContext(ctx, "Product added successfully",
		slog.String("product_id", created.ID),
		slog.String("product_code", created.ProductCode),
	)

	span.SetStatus(codes.Ok, "Product added successfully")
	return created, nil
}

// Update validates product and overwrites the stored product with the same code
func (m *ProductManager) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, span := m.tracer.Start(ctx, "ProductManager.Update")
	defer span.End()

	if product == nil {
		return nil, m.fail(ctx, span, "update", domain.ErrInvalidProduct)
	}

	span.SetAttributes(attribute.String("product.code", product.ProductCode))

	m.logger.InfoContext(ctx, "Updating product",
		slog.String("product_code", product.ProductCode),
	)

	if err := product.Validate(); err != nil {
		return nil, m.fail(ctx, span, "update", err)
	}

	updated := product.Clone()
	updated.UpdatedAt = domain.Now()
	if err := m.repo.Update(ctx, updated); err != nil {
		return nil, m.fail(ctx, span, "update", err)
	}

	stored, err := m.repo.FindByCode(ctx, updated.ProductCode)
	if err != nil {
		return nil, m.fail(ctx, span, "update", err)
	}

	m.record(ctx, "update", "success")

	m.logger.InfoContext(ctx, "Product updated successfully",
		slog.String("product_code", stored.ProductCode),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return stored, nil
}

// Delete removes the product with the given code. A missing code is not an error.
func (m *ProductManager) Delete(ctx context.Context, code string) error {
	ctx, span := m.tracer.Start(ctx, "ProductManager.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("product.code", code))

	if strings.TrimSpace(code) == "" {
		return m.fail(ctx, span, "delete", domain.ErrEmptyProductCode)
	}

	if err := m.repo.Delete(ctx, code); err != nil {
		return m.fail(ctx, span, "delete", err)
	}

	m.record(ctx, "delete", "success")

	m.logger.InfoContext(ctx, "Product deleted",
		slog.String("product_code", code),
	)

	span.SetStatus(codes.Ok, "Product deleted")
	return nil
}

// GetAll returns every product, failing with ErrProductNotFound on an empty store
func (m *ProductManager) GetAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := m.tracer.Start(ctx, "ProductManager.GetAll")
	defer span.End()

	m.logger.InfoContext(ctx, "Listing all products")

	products, err := m.repo.FindAll(ctx)
	if err != nil {
		return nil, m.fail(ctx, span, "list", err)
	}
	if len(products) == 0 {
		return nil, m.fail(ctx, span, "list", domain.ErrProductNotFound)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	m.record(ctx, "list", "success")

	m.logger.InfoContext(ctx, "Products listed successfully",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return products, nil
}

// GetSpecific returns the product with the given code
func (m *ProductManager) GetSpecific(ctx context.Context, code string) (*domain.Product, error) {
	ctx, span := m.tracer.Start(ctx, "ProductManager.GetSpecific")
	defer span.End()

	span.SetAttributes(attribute.String("product.code", code))

	if strings.TrimSpace(code) == "" {
		return nil, m.fail(ctx, span, "read", domain.ErrEmptyProductCode)
	}

	m.logger.InfoContext(ctx, "Getting product by code",
		slog.String("product_code", code),
	)

	product, err := m.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, m.fail(ctx, span, "read", err)
	}

	m.record(ctx, "read", "success")

	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return product, nil
}

// SearchByOriginCountry returns products whose origin country equals country exactly
func (m *ProductManager) SearchByOriginCountry(ctx context.Context, country string) ([]*domain.Product, error) {
	ctx, span := m.tracer.Start(ctx, "ProductManager.SearchByOriginCountry")
	defer span.End()

	span.SetAttributes(attribute.String("product.origin_country", country))

	if strings.TrimSpace(country) == "" {
		return nil, m.fail(ctx, span, "search", domain.ErrEmptyCountry)
	}

	m.logger.InfoContext(ctx, "Searching products by origin country",
		slog.String("country", country),
	)

	products, err := m.repo.FindByOriginCountry(ctx, country)
	if err != nil {
		return nil, m.fail(ctx, span, "search", err)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	m.record(ctx, "search", "success")

	m.logger.InfoContext(ctx, "Products searched successfully",
		slog.String("country", country),
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products searched successfully")
	return products, nil
}

// fail records err on the span, the operations counter and the log, then returns it
func (m *ProductManager) fail(ctx context.Context, span trace.Span, operation string, err error) error {
	result := resultOf(err)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	m.record(ctx, operation, result)

	attrs := []any{
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		attrs = append(attrs, slog.String("fields", verr.Detail()))
	}

	if result == "failure" {
		m.logger.ErrorContext(ctx, "Product operation failed", attrs...)
	} else {
		m.logger.WarnContext(ctx, "Product operation rejected", attrs...)
	}
	return err
}

func (m *ProductManager) record(ctx context.Context, operation, result string) {
	m.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

func resultOf(err error) string {
	switch {
	case domain.IsValidation(err):
		return "invalid"
	case domain.IsArgument(err):
		return "bad_argument"
	case domain.IsNotFound(err):
		return "not_found"
	case domain.IsConflict(err):
		return "conflict"
	default:
		return "failure"
	}
}
