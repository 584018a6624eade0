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

// ValidatePromoRequest represents the promo validation payload
type ValidatePromoRequest struct {
	Code string `json:"code" validate:"required"`
}

// PromoResponse describes a usable promo code
type PromoResponse struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
	Description     string `json:"description"`
}

// PromoHandler handles promo code validation
type PromoHandler struct {
	promoService service.PromoService
	logger       *zap.Logger
}

// NewPromoHandler creates a new PromoHandler
func NewPromoHandler(promoService service.PromoService, logger *zap.Logger) *PromoHandler {
	return &PromoHandler{
		promoService: promoService,
		logger:       logger,
	}
}

// RegisterRoutes registers the promo routes. Guards run after
// authentication, so they can key on the shopper.
func (h *PromoHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler, guards ...func(http.Handler) http.Handler) {
	r.Route("/api/promo", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(guards...)
		r.Post("/validate", h.Validate)
	})
}

func (h *PromoHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidatePromoRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	promo, err := h.promoService.Validate(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, repository.ErrPromoCodeNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Invalid or expired promo code")
			return
		}
		h.logger.Error("Failed to validate promo code", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to validate promo code")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PromoResponse{
		Code:            promo.Code,
		DiscountPercent: promo.DiscountPercent,
		Description:     promo.Description,
	})
}
