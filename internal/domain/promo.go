package domain

import (
	"time"

	"github.com/google/uuid"
)

// PromoCode is a percentage discount applied to an order subtotal
type PromoCode struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Code            string     `json:"code" db:"code"`
	DiscountPercent int        `json:"discount_percent" db:"discount_percent"`
	Description     string     `json:"description" db:"description"`
	Active          bool       `json:"active" db:"is_active"`
	ValidFrom       *time.Time `json:"valid_from,omitempty" db:"valid_from"`
	ValidUntil      *time.Time `json:"valid_until,omitempty" db:"valid_until"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// UsableAt reports whether the code is active and inside its validity window
func (p *PromoCode) UsableAt(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && !now.Before(*p.ValidUntil) {
		return false
	}
	return true
}
