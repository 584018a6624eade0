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

// WishlistService defines the interface for wishlist business logic
type WishlistService interface {
	// Add saves the product; saving it twice is not an error
	Add(ctx context.Context, userID, productID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistEntry, error)
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	RemoveByProduct(ctx context.Context, userID, productID uuid.UUID) error
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
}

// NewWishlistService creates a new instance of WishlistService
func NewWishlistService(wishlistRepo repository.WishlistRepository) WishlistService {
	return &wishlistService{wishlistRepo: wishlistRepo}
}

func (s *wishlistService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	item := &domain.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}

	if _, err := s.wishlistRepo.Add(ctx, item); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return nil
}

func (s *wishlistService) List(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistEntry, error) {
	entries, err := s.wishlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return entries, nil
}

func (s *wishlistService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.wishlistRepo.Delete(ctx, userID, itemID); err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	return nil
}

func (s *wishlistService) RemoveByProduct(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.wishlistRepo.DeleteByProduct(ctx, userID, productID); err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	return nil
}
