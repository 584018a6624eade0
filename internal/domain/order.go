package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrderStatusConfirmed = "confirmed"

	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"

	PaymentMethodCOD = "cod"
)

// Order is created once per checkout and never modified afterwards
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	OrderNumber     string          `json:"order_number" db:"order_number"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	Tax             decimal.Decimal `json:"tax" db:"tax"`
	Shipping        decimal.Decimal `json:"shipping" db:"shipping"`
	Discount        decimal.Decimal `json:"discount" db:"discount"`
	Total           decimal.Decimal `json:"total" db:"total"`
	Status          string          `json:"status" db:"status"`
	PaymentMethod   string          `json:"payment_method" db:"payment_method"`
	PaymentStatus   string          `json:"payment_status" db:"payment_status"`
	TransactionID   string          `json:"transaction_id" db:"transaction_id"`
	ShippingAddress ShippingAddress `json:"shipping_address" db:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// OrderItem snapshots the quantity and price of a product at purchase time
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

// ShippingAddress is stored as JSONB on the order row
type ShippingAddress struct {
	Name       string `json:"name" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
}

// Value implements driver.Valuer
func (a ShippingAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *ShippingAddress) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = ShippingAddress{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("unsupported shipping address type")
	}
}

// PaymentStatusFor derives the payment status recorded at checkout. Only
// cash on delivery stays pending; no gateway confirmation exists.
func PaymentStatusFor(method string) string {
	if method == PaymentMethodCOD {
		return PaymentStatusPending
	}
	return PaymentStatusCompleted
}
