package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"megashop/internal/domain"
	"megashop/internal/repository"

	"github.com/google/uuid"
)

// DefaultCartQuantity is used when an add request carries no quantity
const DefaultCartQuantity = 1

// CartService defines the interface for cart business logic
type CartService interface {
	// AddItem adds quantity of a product, merging into an existing row.
	// created is false when an existing row was incremented.
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (item *domain.CartItem, created bool, err error)
	ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.CartLine, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.CartItem, error)
	UpdateItemByProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	RemoveItemByProduct(ctx context.Context, userID, productID uuid.UUID) error
}

type cartService struct {
	cartRepo repository.CartRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository) CartService {
	return &cartService{cartRepo: cartRepo}
}

func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, bool, error) {
	if quantity <= 0 {
		quantity = DefaultCartQuantity
	}

	item := &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}

	created, err := s.cartRepo.Upsert(ctx, item)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("failed to add cart item: %w", err)
	}

	return item, created, nil
}

func (s *cartService) ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.CartLine, error) {
	lines, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return lines, nil
}

func (s *cartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.CartItem, error) {
	item, err := s.cartRepo.UpdateQuantity(ctx, userID, itemID, quantity)
	return item, wrapCartUpdate(err)
}

func (s *cartService) UpdateItemByProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	item, err := s.cartRepo.UpdateQuantityByProduct(ctx, userID, productID, quantity)
	return item, wrapCartUpdate(err)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.cartRepo.Delete(ctx, userID, itemID); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (s *cartService) RemoveItemByProduct(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.cartRepo.DeleteByProduct(ctx, userID, productID); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func wrapCartUpdate(err error) error {
	if err == nil || errors.Is(err, repository.ErrCartItemNotFound) {
		return err
	}
	return fmt.Errorf("failed to update cart item: %w", err)
}
