package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() *Product {
	return &Product{
		OriginCountry: "Bulgaria",
		ProductName:   "Rose Oil",
		ProductCode:   "BG-001",
		Price:         decimal.RequireFromString("12.50"),
		Quantity:      10,
		Description:   "Cold pressed rose oil from the Kazanlak valley.",
	}
}

func TestNewProduct(t *testing.T) {
	p, err := NewProduct("Bulgaria", "Rose Oil", "BG-001", decimal.RequireFromString("12.50"), 10, "Rose oil.")
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.Equal(t, "BG-001", p.ProductCode)
}

func TestNewProductRejectsInvalid(t *testing.T) {
	p, err := NewProduct("Bulgaria", "Rose Oil", "BG-001", decimal.NewFromInt(-1), 10, "Rose oil.")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Product)
		field  string
	}{
		{"blank country", func(p *Product) { p.OriginCountry = "  " }, "OriginCountry"},
		{"blank name", func(p *Product) { p.ProductName = "" }, "ProductName"},
		{"blank code", func(p *Product) { p.ProductCode = "" }, "ProductCode"},
		{"zero price", func(p *Product) { p.Price = decimal.Zero }, "Price"},
		{"negative price", func(p *Product) { p.Price = decimal.RequireFromString("-0.01") }, "Price"},
		{"negative quantity", func(p *Product) { p.Quantity = -1 }, "Quantity"},
		{"blank description", func(p *Product) { p.Description = "" }, "Description"},
		{"long description", func(p *Product) { p.Description = strings.Repeat("a", MaxDescriptionLength+1) }, "Description"},
		{"long code", func(p *Product) { p.ProductCode = strings.Repeat("x", MaxCodeLength+1) }, "ProductCode"},
		{"long country", func(p *Product) { p.OriginCountry = strings.Repeat("c", MaxCountryLength+1) }, "OriginCountry"},
		{"long name", func(p *Product) { p.ProductName = strings.Repeat("n", MaxNameLength+1) }, "ProductName"},
		{"huge exponent price", func(p *Product) { p.Price = decimal.RequireFromString("1e5000000") }, "Price"},
		{"too many price digits", func(p *Product) {
			p.Price = decimal.RequireFromString("1.0000000000000000000000000000000000000001")
		}, "Price"},
		{"too many price decimals", func(p *Product) { p.Price = decimal.RequireFromString("0.0000001") }, "Price"},
		{"tiny exponent price", func(p *Product) { p.Price = decimal.RequireFromString("1e-5000000") }, "Price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(p)

			err := p.Validate()
			require.Error(t, err)
			assert.EqualError(t, err, "Invalid product!")
			assert.True(t, IsValidation(err))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestValidateAcceptsBoundaries(t *testing.T) {
	p := validProduct()
	p.Quantity = 0
	p.Price = decimal.RequireFromString("0.01")
	p.Description = strings.Repeat("d", MaxDescriptionLength)

	assert.NoError(t, p.Validate())
}

func TestValidationErrorCollectsAllFields(t *testing.T) {
	p := &Product{Price: decimal.Zero, Quantity: -5}

	var verr *ValidationError
	require.True(t, errors.As(p.Validate(), &verr))
	assert.Len(t, verr.Fields, 6)
	assert.Contains(t, verr.Detail(), "Price: must be greater than zero")
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, IsArgument(ErrEmptyProductCode))
	assert.True(t, IsArgument(ErrEmptyCountry))
	assert.True(t, IsNotFound(ErrProductNotFound))
	assert.True(t, IsConflict(ErrProductCodeExists))
	assert.False(t, IsNotFound(ErrEmptyCountry))

	wrapped := errors.Join(errors.New("query failed"), ErrProductNotFound)
	assert.True(t, IsNotFound(wrapped))

	assert.Equal(t, "Product code cannot be empty.", ErrEmptyProductCode.Error())
	assert.Equal(t, "Country name cannot be empty.", ErrEmptyCountry.Error())
	assert.Equal(t, "No product found.", ErrProductNotFound.Error())
}

func TestClone(t *testing.T) {
	p := validProduct()
	c := p.Clone()
	c.ProductName = "changed"

	assert.Equal(t, "Rose Oil", p.ProductName)
}
