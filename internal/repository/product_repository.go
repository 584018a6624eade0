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
	ErrProductNotFound = errors.New("product not found")
)

const productColumns = `id, name, description, price, to_json(images), category, rating, review_count, created_at`

// ProductRepository defines the interface for catalog reads. Create exists
// for seeding and tests; the API never writes products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, images, category, rating, review_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`

	images := product.Images
	if images == nil {
		images = []string{}
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		images,
		product.Category,
		product.Rating,
		product.ReviewCount,
		product.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(productFields(product)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves the whole catalog. Filtering and sorting happen client side.
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, name ASC`
	return r.query(ctx, query)
}

// ListByCategory retrieves the products of a single category by name
func (r *productRepository) ListByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY created_at DESC, name ASC`
	return r.query(ctx, query, category)
}

func (r *productRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		if err := rows.Scan(productFields(product)...); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func productFields(p *domain.Product) []interface{} {
	return []interface{}{
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		(*stringArray)(&p.Images),
		&p.Category,
		&p.Rating,
		&p.ReviewCount,
		&p.CreatedAt,
	}
}
