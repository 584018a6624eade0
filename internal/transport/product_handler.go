package transport

import (
	"errors"
	"net/http"

	"megashop/internal/middleware"
	"megashop/internal/repository"
	"megashop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler serves the public catalog
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers the catalog routes. None require authentication.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/categories", h.ListCategories)
		r.Get("/category/{category}", h.ListByCategory)
		r.Get("/{id}", h.GetProduct)
	})
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.String("product_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	products, err := h.catalogService.ListProductsByCategory(r.Context(), category)
	if err != nil {
		h.logger.Error("Failed to list products by category", zap.String("category", category), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}
