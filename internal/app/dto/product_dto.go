package dto

import (
	"time"

	"github.com/mrops-br/product-catalog/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductRequest is the body of create and update requests.
// Price accepts a JSON number or a numeric string.
type ProductRequest struct {
	OriginCountry string          `json:"originCountry"`
	ProductName   string          `json:"productName"`
	ProductCode   string          `json:"productCode"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	Description   string          `json:"description"`
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID            string          `json:"id"`
	OriginCountry string          `json:"originCountry"`
	ProductName   string          `json:"productName"`
	ProductCode   string          `json:"productCode"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ToProduct converts the request into an unsaved domain Product
func (r *ProductRequest) ToProduct() *domain.Product {
	return &domain.Product{
		OriginCountry: r.OriginCountry,
		ProductName:   r.ProductName,
		ProductCode:   r.ProductCode,
		Price:         r.Price,
		Quantity:      r.Quantity,
		Description:   r.Description,
	}
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:            p.ID,
		OriginCountry: p.OriginCountry,
		ProductName:   p.ProductName,
		ProductCode:   p.ProductCode,
		Price:         p.Price,
		Quantity:      p.Quantity,
		Description:   p.Description,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}
