package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/product-catalog/internal/app/dto"
	"github.com/mrops-br/product-catalog/internal/app/service"
	"github.com/mrops-br/product-catalog/internal/infrastructure/http/response"
)

// MaxBodyBytes bounds the size of a product request body
const MaxBodyBytes = 64 << 10

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	manager *service.ProductManager
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(manager *service.ProductManager, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		manager: manager,
		logger:  logger,
	}
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	product, err := h.manager.Add(r.Context(), req.ToProduct())
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, dto.ToProductResponse(product))
}

// UpdateProduct handles PUT /products/{code}; the path code wins over the body
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	product := req.ToProduct()
	product.ProductCode = chi.URLParam(r, "code")

	updated, err := h.manager.Update(r.Context(), product)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ToProductResponse(updated))
}

// DeleteProduct handles DELETE /products/{code}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		response.DomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetProduct handles GET /products/{code}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.manager.GetSpecific(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ToProductResponse(product))
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.manager.GetAll(r.Context())
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ToProductResponseList(products))
}

// SearchProducts handles GET /products/search?country=
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.manager.SearchByOriginCountry(r.Context(), r.URL.Query().Get("country"))
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ToProductResponseList(products))
}

func (h *ProductHandler) decode(w http.ResponseWriter, r *http.Request) (*dto.ProductRequest, bool) {
	var req dto.ProductRequest
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		response.Error(w, status, err)
		return nil, false
	}
	return &req, true
}
