package transport

import (
	"context"
	"errors"
	"net/http"

	"megashop/internal/middleware"
	"megashop/internal/repository"
	"megashop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WishlistRequest represents the add-to-wishlist payload
type WishlistRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// WishlistHandler handles the authenticated user's wishlist
type WishlistHandler struct {
	wishlistService service.WishlistService
	logger          *zap.Logger
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlistService service.WishlistService, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		logger:          logger,
	}
}

// RegisterRoutes registers the wishlist routes
func (h *WishlistHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Add)
		r.Get("/", h.List)
		r.Delete("/{id}", h.Remove)
		r.Delete("/product/{productId}", h.RemoveByProduct)
	})
}

// Add saves a product. Saving it again still answers 201.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req WishlistRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	if err := h.wishlistService.Add(r.Context(), userID, uuid.MustParse(req.ProductID)); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to add to wishlist", zap.String("user_id", userID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to add to wishlist")
		return
	}

	middleware.RespondWithMessage(w, http.StatusCreated, "Added to wishlist")
}

func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	entries, err := h.wishlistService.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list wishlist", zap.String("user_id", userID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch wishlist")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "id", h.wishlistService.Remove)
}

func (h *WishlistHandler) RemoveByProduct(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "productId", h.wishlistService.RemoveByProduct)
}

func (h *WishlistHandler) remove(w http.ResponseWriter, r *http.Request, param string, apply func(ctx context.Context, userID, id uuid.UUID) error) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := uuidParam(w, r, param)
	if !ok {
		return
	}

	if err := apply(r.Context(), userID, id); err != nil {
		h.logger.Error("Failed to remove from wishlist", zap.String("user_id", userID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to remove from wishlist")
		return
	}
	middleware.RespondWithMessage(w, http.StatusOK, "Removed from wishlist")
}
