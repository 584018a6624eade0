package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"megashop/internal/domain"
)

var (
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context) ([]*domain.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a category. Names are unique; products point at them.
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, description, icon)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, category.ID, category.Name, category.Description, category.Icon).Scan(&category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// List returns every category by name with the number of products in it.
// Empty categories are included.
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT c.id, c.name, c.description, c.icon, c.created_at, COUNT(p.id)
		FROM categories c
		LEFT JOIN products p ON p.category = c.name
		GROUP BY c.id
		ORDER BY c.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&category.Icon,
			&category.CreatedAt,
			&category.ProductCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}
