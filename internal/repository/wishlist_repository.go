package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"megashop/internal/domain"

	"github.com/google/uuid"
)

// WishlistRepository defines the interface for wishlist data access
type WishlistRepository interface {
	// Add inserts the pair and reports false if it was already saved
	Add(ctx context.Context, item *domain.WishlistItem) (added bool, err error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistEntry, error)
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	DeleteByProduct(ctx context.Context, userID, productID uuid.UUID) error
}

type wishlistRepository struct {
	db *sql.DB
}

// NewWishlistRepository creates a new instance of WishlistRepository
func NewWishlistRepository(db *sql.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Add(ctx context.Context, item *domain.WishlistItem) (bool, error) {
	query := `
		INSERT INTO wishlist (id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id) DO NOTHING
		RETURNING id
	`

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query, item.ID, item.UserID, item.ProductID, item.CreatedAt).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		if isForeignKeyViolation(err) {
			return false, ErrProductNotFound
		}
		return false, fmt.Errorf("failed to add wishlist item: %w", err)
	}

	return true, nil
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistEntry, error) {
	query := `
		SELECT w.id, w.product_id, p.name, p.price, to_json(p.images), p.category
		FROM wishlist w
		JOIN products p ON w.product_id = p.id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	defer rows.Close()

	entries := []*domain.WishlistEntry{}
	for rows.Next() {
		entry := &domain.WishlistEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.ProductID,
			&entry.ProductName,
			&entry.Price,
			(*stringArray)(&entry.Images),
			&entry.Category,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wishlist: %w", err)
	}

	return entries, nil
}

func (r *wishlistRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM wishlist WHERE id = $1 AND user_id = $2`, itemID, userID); err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return nil
}

func (r *wishlistRepository) DeleteByProduct(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM wishlist WHERE product_id = $1 AND user_id = $2`, productID, userID); err != nil {
		return fmt.Errorf("failed to delete wishlist item by product: %w", err)
	}
	return nil
}
