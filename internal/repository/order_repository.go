package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"megashop/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrCartEmpty = errors.New("cart is empty")
)

// orderItemsConcurrency bounds the per-order item queries of ListByUser
const orderItemsConcurrency = 4

// CheckoutFunc turns the locked cart lines and the resolved promo code (nil
// when none was given or it is not usable) into the order to persist.
// Returning an error aborts the checkout before anything is written.
type CheckoutFunc func(lines []*domain.CartLine, promo *domain.PromoCode) (*domain.Order, error)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Checkout converts the user's cart into an order inside one transaction:
	// read and lock the cart, resolve the promo code, insert the order and its
	// items, then clear the cart. Any failure rolls everything back.
	Checkout(ctx context.Context, userID uuid.UUID, promoCode string, build CheckoutFunc) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Checkout(ctx context.Context, userID uuid.UUID, promoCode string, build CheckoutFunc) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin checkout transaction: %w", err)
	}
	defer tx.Rollback()

	// Locking the cart rows makes a concurrent checkout of the same cart wait
	// and then observe it empty.
	rows, err := tx.QueryContext(ctx, `
		SELECT c.id, c.product_id, p.name, p.price, to_json(p.images), c.quantity
		FROM cart_items c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY c.created_at ASC
		FOR UPDATE OF c
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	lines, err := scanCartLines(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	var promo *domain.PromoCode
	if promoCode != "" {
		promo, err = scanPromo(tx.QueryRowContext(ctx, usablePromoQuery, promoCode))
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("failed to look up promo code: %w", err)
			}
			promo = nil
		}
	}

	order, err := build(lines, promo)
	if err != nil {
		return nil, err
	}

	// The stored amounts are scanned back so the caller sees the row as persisted
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders
			(id, user_id, order_number, subtotal, tax, shipping, discount, total, status,
			 payment_method, payment_status, transaction_id, shipping_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING subtotal, tax, shipping, discount, total, created_at
	`,
		order.ID,
		order.UserID,
		order.OrderNumber,
		order.Subtotal,
		order.Tax,
		order.Shipping,
		order.Discount,
		order.Total,
		order.Status,
		order.PaymentMethod,
		order.PaymentStatus,
		order.TransactionID,
		order.ShippingAddress,
	).Scan(&order.Subtotal, &order.Tax, &order.Shipping, &order.Discount, &order.Total, &order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, order.ID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	return order, nil
}

// ListByUser returns the user's orders newest first, each with its items
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT id, user_id, order_number, subtotal, tax, shipping, discount, total, status,
		       payment_method, payment_status, transaction_id, shipping_address, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.OrderNumber,
			&order.Subtotal,
			&order.Tax,
			&order.Shipping,
			&order.Discount,
			&order.Total,
			&order.Status,
			&order.PaymentMethod,
			&order.PaymentStatus,
			&order.TransactionID,
			&order.ShippingAddress,
			&order.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(orderItemsConcurrency)
	for _, order := range orders {
		order := order
		g.Go(func() error {
			items, err := r.ListItems(gctx, order.ID)
			if err != nil {
				return err
			}
			order.Items = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return orders, nil
}

// ListItems returns the items of one order with the product name joined in
func (r *orderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}
