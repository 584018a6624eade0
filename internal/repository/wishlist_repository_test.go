package repository

import (
	"context"
	"testing"
	"time"

	"megashop/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWishlistItem(userID, productID uuid.UUID) *domain.WishlistItem {
	return &domain.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}
}

func TestWishlistRepository_AddIsIdempotent(t *testing.T) {
	repo := NewWishlistRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t)
	product := createTestProduct(t, "1200.00")

	added, err := repo.Add(ctx, newWishlistItem(user.ID, product.ID))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Add(ctx, newWishlistItem(user.ID, product.ID))
	require.NoError(t, err)
	assert.False(t, added)

	entries, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, product.ID, entries[0].ProductID)
	assert.Equal(t, product.Name, entries[0].ProductName)
	assert.Equal(t, product.Category, entries[0].Category)
	assert.True(t, entries[0].Price.Equal(product.Price))
}

func TestWishlistRepository_UnknownProduct(t *testing.T) {
	user := createTestUser(t)

	_, err := NewWishlistRepository(testDB).Add(context.Background(), newWishlistItem(user.ID, uuid.New()))
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestWishlistRepository_Delete(t *testing.T) {
	repo := NewWishlistRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t)
	other := createTestUser(t)
	first := createTestProduct(t, "10.00")
	second := createTestProduct(t, "20.00")

	item := newWishlistItem(user.ID, first.ID)
	_, err := repo.Add(ctx, item)
	require.NoError(t, err)
	_, err = repo.Add(ctx, newWishlistItem(user.ID, second.ID))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, other.ID, item.ID))
	entries, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, repo.Delete(ctx, user.ID, item.ID))
	require.NoError(t, repo.DeleteByProduct(ctx, user.ID, second.ID))

	entries, err = repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
