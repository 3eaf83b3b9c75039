package domain

import (
	"context"
)

// ProductRepository defines the contract for product storage.
// Implementations return ErrProductNotFound when an update targets a missing
// code and ErrProductCodeExists when a create collides with a stored code.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, code string) error
	FindByCode(ctx context.Context, code string) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
	FindByOriginCountry(ctx context.Context, country string) ([]*Product, error)
	Ping(ctx context.Context) error
	Close() error
}
