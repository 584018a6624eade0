package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"megashop/internal/domain"
	"megashop/internal/repository"
)

// PromoService validates discount codes
type PromoService interface {
	// Validate returns the code if it is active and inside its window.
	// Lookup is case-insensitive.
	Validate(ctx context.Context, code string) (*domain.PromoCode, error)
}

type promoService struct {
	promoRepo repository.PromoRepository
}

// NewPromoService creates a new instance of PromoService
func NewPromoService(promoRepo repository.PromoRepository) PromoService {
	return &promoService{promoRepo: promoRepo}
}

func (s *promoService) Validate(ctx context.Context, code string) (*domain.PromoCode, error) {
	code = NormalizePromoCode(code)
	if code == "" {
		return nil, repository.ErrPromoCodeNotFound
	}

	promo, err := s.promoRepo.FindUsable(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrPromoCodeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to validate promo code: %w", err)
	}
	return promo, nil
}

// NormalizePromoCode trims and uppercases a user-entered code
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
