// Package sqlite stores products in a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mrops-br/product-catalog/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DefaultPath is used when no database path is configured
const DefaultPath = "data/products.db"

const selectColumns = `id, origin_country, product_name, code, price, quantity, description, created_at, updated_at`

// ProductRepository implements domain.ProductRepository on SQLite
type ProductRepository struct {
	db     *sql.DB
	tracer trace.Tracer
	logger *slog.Logger
}

// Open opens (creating if needed) the database file at path.
func Open(path string, tracer trace.Tracer, logger *slog.Logger) (*ProductRepository, error) {
	if path == "" {
		path = DefaultPath
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	repo, err := NewProductRepository(db, tracer, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// NewProductRepository creates the products table if needed and wraps db.
// Close on the returned repository closes db.
func NewProductRepository(db *sql.DB, tracer trace.Tracer, logger *slog.Logger) (*ProductRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			origin_country TEXT NOT NULL,
			product_name TEXT NOT NULL,
			code TEXT NOT NULL UNIQUE,
			price TEXT NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			description TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create products table: %w", err)
	}

	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_products_origin_country ON products(origin_country)"); err != nil {
		return nil, fmt.Errorf("failed to create products origin_country index: %w", err)
	}

	return &ProductRepository{db: db, tracer: tracer, logger: logger}, nil
}

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "SQLiteProductRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.String("product.code", product.ProductCode))

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, origin_country, product_name, code, price, quantity, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, product.ID, product.OriginCountry, product.ProductName, product.ProductCode, product.Price.String(),
		product.Quantity, product.Description, product.CreatedAt.UnixMilli(), product.UpdatedAt.UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			err = domain.ErrProductCodeExists
		} else {
			err = fmt.Errorf("insert product: %w", err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to insert product")
		return err
	}

	r.logger.InfoContext(ctx, "Product created in repository",
		slog.String("product_code", product.ProductCode),
		slog.String("storage", "sqlite"),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return nil
}

// Update overwrites the mutable columns of the product with the same code
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "SQLiteProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("product.code", product.ProductCode))

	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET origin_country = ?, product_name = ?, price = ?, quantity = ?, description = ?, updated_at = ?
		WHERE code = ?
	`, product.OriginCountry, product.ProductName, product.Price.String(), product.Quantity,
		product.Description, product.UpdatedAt.UnixMilli(), product.ProductCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update product")
		return fmt.Errorf("update product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read update rows affected: %w", err)
	}
	if affected == 0 {
		span.SetStatus(codes.Error, "Product not found")
		return domain.ErrProductNotFound
	}

	r.logger.InfoContext(ctx, "Product updated in repository",
		slog.String("product_code", product.ProductCode),
		slog.String("storage", "sqlite"),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return nil
}

// Delete removes the product with the given code, if any
func (r *ProductRepository) Delete(ctx context.Context, code string) error {
	ctx, span := r.tracer.Start(ctx, "SQLiteProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("product.code", code))

	if _, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE code = ?", code); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete product")
		return fmt.Errorf("delete product: %w", err)
	}

	r.logger.InfoContext(ctx, "Product deleted from repository",
		slog.String("product_code", code),
	)

	span.SetStatus(codes.Ok, "Product deleted")
	return nil
}

// FindByCode returns the product with the given code
func (r *ProductRepository) FindByCode(ctx context.Context, code string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "SQLiteProductRepository.FindByCode")
	defer span.End()

	span.SetAttributes(attribute.String("product.code", code))

	row := r.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM products WHERE code = ?", code)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			span.SetStatus(codes.Error, "Product not found")
			return nil, domain.ErrProductNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to query product")
		return nil, fmt.Errorf("query product: %w", err)
	}

	span.SetStatus(codes.Ok, "Product found")
	return product, nil
}

// FindAll returns every product ordered by code
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "SQLiteProductRepository.FindAll")
	defer span.End()

	products, err := r.query(ctx, "SELECT "+selectColumns+" FROM products ORDER BY code")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list products")
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// FindByOriginCountry returns products whose origin country matches exactly
func (r *ProductRepository) FindByOriginCountry(ctx context.Context, country string) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "SQLiteProductRepository.FindByOriginCountry")
	defer span.End()

	span.SetAttributes(attribute.String("product.origin_country", country))

	products, err := r.query(ctx, "SELECT "+selectColumns+" FROM products WHERE origin_country = ? ORDER BY code", country)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to search products")
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// Ping verifies the database is reachable
func (r *ProductRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the underlying database
func (r *ProductRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *ProductRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*domain.Product, error) {
	var (
		p         domain.Product
		price     string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&p.ID, &p.OriginCountry, &p.ProductName, &p.ProductCode, &price,
		&p.Quantity, &p.Description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("decode price %q: %w", price, err)
	}
	p.Price = amount
	p.CreatedAt = time.UnixMilli(createdAt).UTC()
	p.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
