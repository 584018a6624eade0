package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"megashop/internal/domain"
)

var (
	ErrPromoCodeNotFound = errors.New("promo code not found")
)

// usablePromoQuery only matches active codes inside their validity window
const usablePromoQuery = `
	SELECT id, code, discount_percent, description, is_active, valid_from, valid_until, created_at
	FROM promo_codes
	WHERE code = $1
	  AND is_active = TRUE
	  AND (valid_from IS NULL OR valid_from <= NOW())
	  AND (valid_until IS NULL OR valid_until > NOW())
`

// PromoRepository defines the interface for promo code lookups
type PromoRepository interface {
	Create(ctx context.Context, promo *domain.PromoCode) error
	FindUsable(ctx context.Context, code string) (*domain.PromoCode, error)
}

type promoRepository struct {
	db *sql.DB
}

// NewPromoRepository creates a new instance of PromoRepository
func NewPromoRepository(db *sql.DB) PromoRepository {
	return &promoRepository{db: db}
}

// Create inserts a promo code. Codes are stored uppercase.
func (r *promoRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	query := `
		INSERT INTO promo_codes (id, code, discount_percent, description, is_active, valid_from, valid_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		promo.ID,
		promo.Code,
		promo.DiscountPercent,
		promo.Description,
		promo.Active,
		promo.ValidFrom,
		promo.ValidUntil,
		promo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	return nil
}

// FindUsable returns the code if it exists, is active and has not expired.
// The caller normalizes case.
func (r *promoRepository) FindUsable(ctx context.Context, code string) (*domain.PromoCode, error) {
	promo, err := scanPromo(r.db.QueryRowContext(ctx, usablePromoQuery, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPromoCodeNotFound
		}
		return nil, fmt.Errorf("failed to find promo code: %w", err)
	}
	return promo, nil
}

func scanPromo(row *sql.Row) (*domain.PromoCode, error) {
	promo := &domain.PromoCode{}
	err := row.Scan(
		&promo.ID,
		&promo.Code,
		&promo.DiscountPercent,
		&promo.Description,
		&promo.Active,
		&promo.ValidFrom,
		&promo.ValidUntil,
		&promo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return promo, nil
}
