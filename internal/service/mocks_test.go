package service

import (
	"context"
	"sync"

	"megashop/internal/domain"
	"megashop/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	for _, user := range m.users {
		if user.ID == id {
			user.PasswordHash = passwordHash
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type mockCatalogRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockCatalogRepository(products ...*domain.Product) *mockCatalogRepository {
	m := &mockCatalogRepository{products: make(map[uuid.UUID]*domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockCatalogRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockCatalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockCatalogRepository) List(ctx context.Context) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, p := range m.products {
		products = append(products, p)
	}
	return products, nil
}

func (m *mockCatalogRepository) ListByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, p := range m.products {
		if p.Category == category {
			products = append(products, p)
		}
	}
	return products, nil
}

type mockCategoryRepository struct {
	categories []*domain.Category
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	m.categories = append(m.categories, category)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return m.categories, nil
}

// mockCartRepository keeps one row per (user, product) like the unique key
type mockCartRepository struct {
	mu       sync.Mutex
	items    map[uuid.UUID]*domain.CartItem
	products map[uuid.UUID]*domain.Product
}

func newMockCartRepository(products ...*domain.Product) *mockCartRepository {
	m := &mockCartRepository{
		items:    make(map[uuid.UUID]*domain.CartItem),
		products: make(map[uuid.UUID]*domain.Product),
	}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockCartRepository) Upsert(ctx context.Context, item *domain.CartItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[item.ProductID]; !ok {
		return false, repository.ErrProductNotFound
	}
	for _, existing := range m.items {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			*item = *existing
			return false, nil
		}
	}
	stored := *item
	m.items[item.ID] = &stored
	return true, nil
}

func (m *mockCartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines := []*domain.CartLine{}
	for _, item := range m.items {
		if item.UserID != userID {
			continue
		}
		product := m.products[item.ProductID]
		lines = append(lines, &domain.CartLine{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Price:       product.Price,
			Images:      product.Images,
			Quantity:    item.Quantity,
		})
	}
	return lines, nil
}

func (m *mockCartRepository) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.CartItem, error) {
	return m.update(func(item *domain.CartItem) bool { return item.ID == itemID && item.UserID == userID }, quantity)
}

func (m *mockCartRepository) UpdateQuantityByProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	return m.update(func(item *domain.CartItem) bool { return item.ProductID == productID && item.UserID == userID }, quantity)
}

func (m *mockCartRepository) update(match func(*domain.CartItem) bool, quantity int) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range m.items {
		if match(item) {
			item.Quantity = quantity
			updated := *item
			return &updated, nil
		}
	}
	return nil, repository.ErrCartItemNotFound
}

func (m *mockCartRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item, ok := m.items[itemID]; ok && item.UserID == userID {
		delete(m.items, itemID)
	}
	return nil
}

func (m *mockCartRepository) DeleteByProduct(ctx context.Context, userID, productID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, item := range m.items {
		if item.UserID == userID && item.ProductID == productID {
			delete(m.items, id)
		}
	}
	return nil
}

type mockPromoRepository struct {
	codes map[string]*domain.PromoCode
}

func newMockPromoRepository(codes ...*domain.PromoCode) *mockPromoRepository {
	m := &mockPromoRepository{codes: make(map[string]*domain.PromoCode)}
	for _, c := range codes {
		m.codes[c.Code] = c
	}
	return m
}

func (m *mockPromoRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	m.codes[promo.Code] = promo
	return nil
}

func (m *mockPromoRepository) FindUsable(ctx context.Context, code string) (*domain.PromoCode, error) {
	promo, ok := m.codes[code]
	if !ok || !promo.Active {
		return nil, repository.ErrPromoCodeNotFound
	}
	return promo, nil
}

type mockWishlistRepository struct {
	items    map[uuid.UUID]*domain.WishlistItem
	products map[uuid.UUID]*domain.Product
}

func newMockWishlistRepository(products ...*domain.Product) *mockWishlistRepository {
	m := &mockWishlistRepository{
		items:    make(map[uuid.UUID]*domain.WishlistItem),
		products: make(map[uuid.UUID]*domain.Product),
	}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockWishlistRepository) Add(ctx context.Context, item *domain.WishlistItem) (bool, error) {
	if _, ok := m.products[item.ProductID]; !ok {
		return false, repository.ErrProductNotFound
	}
	for _, existing := range m.items {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID {
			return false, nil
		}
	}
	m.items[item.ID] = item
	return true, nil
}

func (m *mockWishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistEntry, error) {
	entries := []*domain.WishlistEntry{}
	for _, item := range m.items {
		if item.UserID != userID {
			continue
		}
		product := m.products[item.ProductID]
		entries = append(entries, &domain.WishlistEntry{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Price:       product.Price,
			Images:      product.Images,
			Category:    product.Category,
		})
	}
	return entries, nil
}

func (m *mockWishlistRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	if item, ok := m.items[itemID]; ok && item.UserID == userID {
		delete(m.items, itemID)
	}
	return nil
}

func (m *mockWishlistRepository) DeleteByProduct(ctx context.Context, userID, productID uuid.UUID) error {
	for id, item := range m.items {
		if item.UserID == userID && item.ProductID == productID {
			delete(m.items, id)
		}
	}
	return nil
}

// mockOrderRepository checks out against a mockCartRepository and
// mockPromoRepository, mirroring the transactional repository
type mockOrderRepository struct {
	mu     sync.Mutex
	carts  *mockCartRepository
	promos *mockPromoRepository
	orders []*domain.Order
}

func newMockOrderRepository(carts *mockCartRepository, promos *mockPromoRepository) *mockOrderRepository {
	return &mockOrderRepository{carts: carts, promos: promos}
}

func (m *mockOrderRepository) Checkout(ctx context.Context, userID uuid.UUID, promoCode string, build repository.CheckoutFunc) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines, _ := m.carts.ListByUser(ctx, userID)
	if len(lines) == 0 {
		return nil, repository.ErrCartEmpty
	}

	var promo *domain.PromoCode
	if promoCode != "" {
		promo, _ = m.promos.FindUsable(ctx, promoCode)
	}

	order, err := build(lines, promo)
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		_ = m.carts.Delete(ctx, userID, line.ID)
	}
	m.orders = append(m.orders, order)
	return order, nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders := []*domain.Order{}
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].UserID == userID {
			orders = append(orders, m.orders[i])
		}
	}
	return orders, nil
}

func (m *mockOrderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	for _, order := range m.orders {
		if order.ID == orderID {
			return order.Items, nil
		}
	}
	return []domain.OrderItem{}, nil
}
