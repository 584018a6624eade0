package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"megashop/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartRepository defines the interface for cart data access. Every method is
// scoped by the owning user in the same statement.
type CartRepository interface {
	// Upsert inserts the item or adds its quantity to the existing row for the
	// same (user, product). The item is overwritten with the stored row and
	// created reports which branch ran.
	Upsert(ctx context.Context, item *domain.CartItem) (created bool, err error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.CartItem, error)
	UpdateQuantityByProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error)
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	DeleteByProduct(ctx context.Context, userID, productID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// Upsert relies on the (user_id, product_id) unique key instead of a
// read-then-write, so concurrent adds cannot create duplicate rows
func (r *cartRepository) Upsert(ctx context.Context, item *domain.CartItem) (bool, error) {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, user_id, product_id, quantity, created_at, (xmax = 0) AS inserted
	`

	var created bool
	err := r.db.QueryRowContext(
		ctx,
		query,
		item.ID,
		item.UserID,
		item.ProductID,
		item.Quantity,
		item.CreatedAt,
	).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&created,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return false, ErrProductNotFound
		}
		return false, fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return created, nil
}

// ListByUser returns the cart joined with current catalog name, price and images
func (r *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartLine, error) {
	query := `
		SELECT c.id, c.product_id, p.name, p.price, to_json(p.images), c.quantity
		FROM cart_items c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY c.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	return scanCartLines(rows)
}

// UpdateQuantity sets the quantity of a cart row by its ID
func (r *cartRepository) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.CartItem, error) {
	query := `
		UPDATE cart_items
		SET quantity = $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, product_id, quantity, created_at
	`
	return r.updateOne(ctx, query, quantity, itemID, userID)
}

// UpdateQuantityByProduct sets the quantity of the row holding productID
func (r *cartRepository) UpdateQuantityByProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	query := `
		UPDATE cart_items
		SET quantity = $1
		WHERE product_id = $2 AND user_id = $3
		RETURNING id, user_id, product_id, quantity, created_at
	`
	return r.updateOne(ctx, query, quantity, productID, userID)
}

// Delete removes a cart row by ID. Removing an absent row is not an error.
func (r *cartRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID); err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return nil
}

// DeleteByProduct removes the row holding productID
func (r *cartRepository) DeleteByProduct(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE product_id = $1 AND user_id = $2`, productID, userID); err != nil {
		return fmt.Errorf("failed to delete cart item by product: %w", err)
	}
	return nil
}

func (r *cartRepository) updateOne(ctx context.Context, query string, args ...interface{}) (*domain.CartItem, error) {
	item := &domain.CartItem{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return item, nil
}

func scanCartLines(rows *sql.Rows) ([]*domain.CartLine, error) {
	lines := []*domain.CartLine{}
	for rows.Next() {
		line := &domain.CartLine{}
		err := rows.Scan(
			&line.ID,
			&line.ProductID,
			&line.ProductName,
			&line.Price,
			(*stringArray)(&line.Images),
			&line.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return lines, nil
}
