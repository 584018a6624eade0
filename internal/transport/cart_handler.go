package transport

import (
	"context"
	"errors"
	"net/http"

	"megashop/internal/domain"
	"megashop/internal/middleware"
	"megashop/internal/repository"
	"megashop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddToCartRequest represents the add-to-cart payload. Quantity defaults to 1.
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1"`
}

// UpdateCartRequest sets the quantity of a cart row
type UpdateCartRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// CartHandler handles the authenticated user's cart
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers the cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.AddItem)
		r.Get("/", h.ListItems)
		r.Put("/{id}", h.UpdateItem)
		// PATCH addresses the row by product ID
		r.Patch("/{id}", h.UpdateItemByProduct)
		r.Delete("/{id}", h.RemoveItem)
		r.Delete("/product/{productId}", h.RemoveItemByProduct)
	})
}

// AddItem answers 201 with a new row or 200 with an incremented one
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req AddToCartRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}
	productID := uuid.MustParse(req.ProductID)

	item, created, err := h.cartService.AddItem(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to add to cart", zap.String("user_id", userID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to add to cart")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	middleware.RespondWithJSON(w, status, item)
}

func (h *CartHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	lines, err := h.cartService.ListItems(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list cart", zap.String("user_id", userID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, lines)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.cartService.UpdateItem)
}

func (h *CartHandler) UpdateItemByProduct(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.cartService.UpdateItemByProduct)
}

type cartUpdateFunc func(ctx context.Context, userID, id uuid.UUID, quantity int) (*domain.CartItem, error)

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request, apply cartUpdateFunc) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCartRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	item, err := apply(r.Context(), userID, id, req.Quantity)
	if err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Cart item not found")
			return
		}
		h.logger.Error("Failed to update cart", zap.String("user_id", userID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to update cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "id", h.cartService.RemoveItem)
}

func (h *CartHandler) RemoveItemByProduct(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "productId", h.cartService.RemoveItemByProduct)
}

// remove is idempotent: deleting an absent row still answers 200
func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request, param string, apply func(ctx context.Context, userID, id uuid.UUID) error) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := uuidParam(w, r, param)
	if !ok {
		return
	}

	if err := apply(r.Context(), userID, id); err != nil {
		h.logger.Error("Failed to remove from cart", zap.String("user_id", userID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to remove item")
		return
	}
	middleware.RespondWithMessage(w, http.StatusOK, "Item removed from cart")
}
