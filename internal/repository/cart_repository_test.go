package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"megashop/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartItem(userID, productID uuid.UUID, quantity int) *domain.CartItem {
	return &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
}

func TestCartRepository_UpsertMergesQuantities(t *testing.T) {
	repo := NewCartRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t)
	product := createTestProduct(t, "500.00")

	first := newCartItem(user.ID, product.ID, 1)
	created, err := repo.Upsert(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	second := newCartItem(user.ID, product.ID, 2)
	created, err = repo.Upsert(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID, "existing row should be returned")
	assert.Equal(t, 3, second.Quantity)

	lines, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, product.Name, lines[0].ProductName)
	assert.True(t, lines[0].Price.Equal(product.Price))
	assert.Equal(t, product.Images, lines[0].Images)
}

// Repeated adds of the same product always collapse into one row
func TestProperty_CartQuantitiesAccumulate(t *testing.T) {
	repo := NewCartRepository(testDB)
	ctx := context.Background()
	product := createTestProduct(t, "19.99")

	properties := gopter.NewProperties(nil)

	properties.Property("N adds of quantity q yield one row with N*q", prop.ForAll(
		func(adds int, quantity int) bool {
			user := createTestUser(t)

			for i := 0; i < adds; i++ {
				if _, err := repo.Upsert(ctx, newCartItem(user.ID, product.ID, quantity)); err != nil {
					t.Logf("FAIL: upsert: %v", err)
					return false
				}
			}

			lines, err := repo.ListByUser(ctx, user.ID)
			if err != nil {
				t.Logf("FAIL: list: %v", err)
				return false
			}
			return len(lines) == 1 && lines[0].Quantity == adds*quantity
		},
		gen.IntRange(1, 5),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCartRepository_ConcurrentAddsDoNotDuplicate(t *testing.T) {
	repo := NewCartRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t)
	product := createTestProduct(t, "5.00")

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Upsert(ctx, newCartItem(user.ID, product.ID, 1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lines, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, workers, lines[0].Quantity)
}

func TestCartRepository_UnknownProduct(t *testing.T) {
	user := createTestUser(t)

	_, err := NewCartRepository(testDB).Upsert(context.Background(), newCartItem(user.ID, uuid.New(), 1))
	assert.True(t, errors.Is(err, ErrProductNotFound), "got %v", err)
}

func TestCartRepository_UpdateIsScopedToOwner(t *testing.T) {
	repo := NewCartRepository(testDB)
	ctx := context.Background()
	owner := createTestUser(t)
	other := createTestUser(t)
	product := createTestProduct(t, "42.00")

	item := newCartItem(owner.ID, product.ID, 1)
	_, err := repo.Upsert(ctx, item)
	require.NoError(t, err)

	_, err = repo.UpdateQuantity(ctx, other.ID, item.ID, 9)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	updated, err := repo.UpdateQuantity(ctx, owner.ID, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	updated, err = repo.UpdateQuantityByProduct(ctx, owner.ID, product.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, item.ID, updated.ID)
	assert.Equal(t, 6, updated.Quantity)

	// A foreign delete is a silent no-op
	require.NoError(t, repo.Delete(ctx, other.ID, item.ID))
	lines, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	require.NoError(t, repo.DeleteByProduct(ctx, owner.ID, product.ID))
	lines, err = repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	require.NoError(t, repo.Delete(ctx, owner.ID, item.ID), "deleting twice is idempotent")
}
