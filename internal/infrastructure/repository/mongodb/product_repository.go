// Package mongodb stores products as documents in a MongoDB collection.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrops-br/product-catalog/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultDatabase is used when no database name is configured
const DefaultDatabase = "products"

const collectionName = "products"

// Config holds MongoDB connection settings
type Config struct {
	// URL is the connection string (e.g., mongodb://localhost:27017)
	URL string
	// Database is the database name (default: products)
	Database string
}

type productDocument struct {
	ID            string          `bson:"_id"`
	OriginCountry string          `bson:"origin_country"`
	ProductName   string          `bson:"product_name"`
	Code          string          `bson:"code"`
	Price         bson.Decimal128 `bson:"price"`
	Quantity      int             `bson:"quantity"`
	Description   string          `bson:"description"`
	CreatedAt     time.Time       `bson:"created_at"`
	UpdatedAt     time.Time       `bson:"updated_at"`
}

// ProductRepository implements domain.ProductRepository on MongoDB
type ProductRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Open connects to cfg.URL and returns a repository that owns the client.
func Open(ctx context.Context, cfg Config, tracer trace.Tracer, logger *slog.Logger) (*ProductRepository, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("MongoDB URL is required")
	}

	dbName := cfg.Database
	if dbName == "" {
		dbName = DefaultDatabase
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	repo, err := NewProductRepository(ctx, client.Database(dbName), tracer, logger)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	repo.client = client
	return repo, nil
}

// NewProductRepository ensures the collection indexes and wraps database.
// The caller keeps ownership of the client behind database.
func NewProductRepository(ctx context.Context, database *mongo.Database, tracer trace.Tracer, logger *slog.Logger) (*ProductRepository, error) {
	if database == nil {
		return nil, fmt.Errorf("database is required")
	}

	coll := database.Collection(collectionName)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "origin_country", Value: 1}}},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("create products indexes: %w", err)
	}

	return &ProductRepository{collection: coll, tracer: tracer, logger: logger}, nil
}

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "MongoProductRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.String("product.code", product.ProductCode))

	doc, err := toDocument(product)
	if err != nil {
		return err
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
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
		slog.String("storage", "mongodb"),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return nil
}

// Update overwrites the mutable fields of the product with the same code
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "MongoProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("product.code", product.ProductCode))

	price, err := bson.ParseDecimal128(product.Price.String())
	if err != nil {
		return fmt.Errorf("encode price: %w", err)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"code": product.ProductCode},
		bson.M{"$set": bson.M{
			"origin_country": product.OriginCountry,
			"product_name":   product.ProductName,
			"price":          price,
			"quantity":       product.Quantity,
			"description":    product.Description,
			"updated_at":     product.UpdatedAt,
		}},
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update product")
		return fmt.Errorf("update product: %w", err)
	}
	if result.MatchedCount == 0 {
		span.SetStatus(codes.Error, "Product not found")
		return domain.ErrProductNotFound
	}

	r.logger.InfoContext(ctx, "Product updated in repository",
		slog.String("product_code", product.ProductCode),
		slog.String("storage", "mongodb"),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return nil
}

// Delete removes the product with the given code, if any
func (r *ProductRepository) Delete(ctx context.Context, code string) error {
	ctx, span := r.tracer.Start(ctx, "MongoProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("product.code", code))

	result, err := r.collection.DeleteOne(ctx, bson.M{"code": code})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete product")
		return fmt.Errorf("delete product: %w", err)
	}

	r.logger.InfoContext(ctx, "Product deleted from repository",
		slog.String("product_code", code),
		slog.Int64("deleted", result.DeletedCount),
	)

	span.SetStatus(codes.Ok, "Product deleted")
	return nil
}

// FindByCode returns the product with the given code
func (r *ProductRepository) FindByCode(ctx context.Context, code string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "MongoProductRepository.FindByCode")
	defer span.End()

	span.SetAttributes(attribute.String("product.code", code))

	var doc productDocument
	if err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			span.SetStatus(codes.Error, "Product not found")
			return nil, domain.ErrProductNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to query product")
		return nil, fmt.Errorf("query product: %w", err)
	}

	span.SetStatus(codes.Ok, "Product found")
	return fromDocument(doc)
}

// FindAll returns every product ordered by code
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "MongoProductRepository.FindAll")
	defer span.End()

	products, err := r.find(ctx, bson.M{})
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
	ctx, span := r.tracer.Start(ctx, "MongoProductRepository.FindByOriginCountry")
	defer span.End()

	span.SetAttributes(attribute.String("product.origin_country", country))

	products, err := r.find(ctx, bson.M{"origin_country": country})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to search products")
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// Ping verifies the server is reachable
func (r *ProductRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, nil)
}

// Close disconnects the client when the repository opened it
func (r *ProductRepository) Close() error {
	if r.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]*domain.Product, 0)
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product document: %w", err)
		}
		product, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate products cursor: %w", err)
	}
	return products, nil
}

func toDocument(p *domain.Product) (productDocument, error) {
	price, err := bson.ParseDecimal128(p.Price.String())
	if err != nil {
		return productDocument{}, fmt.Errorf("encode price: %w", err)
	}
	return productDocument{
		ID:            p.ID,
		OriginCountry: p.OriginCountry,
		ProductName:   p.ProductName,
		Code:          p.ProductCode,
		Price:         price,
		Quantity:      p.Quantity,
		Description:   p.Description,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

func fromDocument(doc productDocument) (*domain.Product, error) {
	price, err := decimal.NewFromString(doc.Price.String())
	if err != nil {
		return nil, fmt.Errorf("decode price %q: %w", doc.Price.String(), err)
	}
	return &domain.Product{
		ID:            doc.ID,
		OriginCountry: doc.OriginCountry,
		ProductName:   doc.ProductName,
		ProductCode:   doc.Code,
		Price:         price,
		Quantity:      doc.Quantity,
		Description:   doc.Description,
		CreatedAt:     doc.CreatedAt.UTC(),
		UpdatedAt:     doc.UpdatedAt.UTC(),
	}, nil
}
