package transport

import (
	"errors"
	"net/http"

	"megashop/internal/domain"
	"megashop/internal/middleware"
	"megashop/internal/repository"
	"megashop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutRequest represents the checkout payload
type CheckoutRequest struct {
	PaymentMethod   string                 `json:"payment_method" validate:"required,oneof=cod card upi wallet"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address" validate:"required"`
	PromoCode       string                 `json:"promo_code" validate:"omitempty,max=50"`
}

// OrderHandler handles checkout and order history
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers the order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Checkout)
		r.Get("/", h.ListOrders)
	})
}

// Checkout turns the cart into an order
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req CheckoutRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	order, err := h.orderService.Checkout(r.Context(), service.CheckoutRequest{
		UserID:          userID,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		PromoCode:       req.PromoCode,
	})
	if err != nil {
		if errors.Is(err, repository.ErrCartEmpty) {
			middleware.RespondWithError(w, http.StatusBadRequest, "Cart is empty")
			return
		}
		h.logger.Error("Checkout failed", zap.String("user_id", userID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Checkout failed")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// ListOrders returns the user's orders newest first
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrders(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.String("user_id", userID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}
