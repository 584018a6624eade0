package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Images      []string        `json:"images" db:"images"`
	Category    string          `json:"category" db:"category"`
	Rating      *float64        `json:"rating,omitempty" db:"rating"`
	ReviewCount *int            `json:"review_count,omitempty" db:"review_count"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Category represents a product category. Products reference it by name.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Icon        string    `json:"icon,omitempty" db:"icon"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// ProductCount is derived when listing
	ProductCount int `json:"product_count"`
}
