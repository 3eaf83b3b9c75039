package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Field length limits enforced before a product is persisted
const (
	MaxCountryLength     = 100
	MaxNameLength        = 100
	MaxCodeLength        = 50
	MaxDescriptionLength = 1000

	// MaxPriceDigits caps the significant digits of a price, integer part included
	MaxPriceDigits = 18
	// MaxPriceScale caps the digits after the decimal point
	MaxPriceScale = 6
)

// Product represents the catalog entity
type Product struct {
	ID            string
	OriginCountry string
	ProductName   string
	ProductCode   string
	Price         decimal.Decimal
	Quantity      int
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewProduct creates a validated product with a fresh ID and timestamps
func NewProduct(country, name, code string, price decimal.Decimal, quantity int, description string) (*Product, error) {
	now := Now()
	product := &Product{
		ID:            uuid.New().String(),
		OriginCountry: country,
		ProductName:   name,
		ProductCode:   code,
		Price:         price,
		Quantity:      quantity,
		Description:   description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}

// Validate performs business validation on the product
func (p *Product) Validate() error {
	var fields []FieldError

	fields = checkText(fields, "OriginCountry", p.OriginCountry, MaxCountryLength)
	fields = checkText(fields, "ProductName", p.ProductName, MaxNameLength)
	fields = checkText(fields, "ProductCode", p.ProductCode, MaxCodeLength)
	fields = checkPrice(fields, p.Price)
	if p.Quantity < 0 {
		fields = append(fields, FieldError{Field: "Quantity", Description: "cannot be negative"})
	}
	fields = checkText(fields, "Description", p.Description, MaxDescriptionLength)

	if len(fields) > 0 {
		return &ValidationError{Message: ErrInvalidProduct.Message, Fields: fields}
	}
	return nil
}

// Clone returns a copy that shares no mutable state with p
func (p *Product) Clone() *Product {
	c := *p
	return &c
}

// checkPrice works on the exponent and coefficient so it never renders the value
func checkPrice(fields []FieldError, price decimal.Decimal) []FieldError {
	if !price.IsPositive() {
		return append(fields, FieldError{Field: "Price", Description: "must be greater than zero"})
	}

	exp := int64(price.Exponent())
	if -exp > MaxPriceScale {
		return append(fields, FieldError{Field: "Price", Description: "has too many decimal places"})
	}

	digits := int64(price.NumDigits())
	if exp > 0 {
		digits += exp
	}
	if digits > MaxPriceDigits {
		return append(fields, FieldError{Field: "Price", Description: "has too many digits"})
	}
	return fields
}

func checkText(fields []FieldError, name, value string, limit int) []FieldError {
	if strings.TrimSpace(value) == "" {
		return append(fields, FieldError{Field: name, Description: "is required"})
	}
	if utf8.RuneCountInString(value) > limit {
		return append(fields, FieldError{Field: name, Description: "is too long"})
	}
	return fields
}

// Now returns the current UTC time truncated to the precision every store keeps
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
