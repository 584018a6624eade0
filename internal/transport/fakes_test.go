package transport

import (
	"context"
	"sync"
	"time"

	"megashop/internal/domain"
	"megashop/internal/middleware"
	"megashop/internal/repository"
	"megashop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
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

type mockPromoRepository struct {
	codes map[string]*domain.PromoCode
}

func (m *mockPromoRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	m.codes[promo.Code] = promo
	return nil
}

func (m *mockPromoRepository) FindUsable(ctx context.Context, code string) (*domain.PromoCode, error) {
	promo, ok := m.codes[code]
	if !ok || !promo.UsableAt(time.Now()) {
		return nil, repository.ErrPromoCodeNotFound
	}
	return promo, nil
}

// Fake services for the handlers whose logic is covered in the service package

type fakeCatalogService struct {
	products map[uuid.UUID]*domain.Product
}

func (f *fakeCatalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, p := range f.products {
		products = append(products, p)
	}
	return products, nil
}

func (f *fakeCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return []*domain.Category{{ID: uuid.New(), Name: "Electronics"}}, nil
}

func (f *fakeCatalogService) ListProductsByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, p := range f.products {
		if p.Category == category {
			products = append(products, p)
		}
	}
	return products, nil
}

type fakeCartService struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
	items    []*domain.CartItem
}

func (f *fakeCartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.products[productID]; !ok {
		return nil, false, repository.ErrProductNotFound
	}
	if quantity <= 0 {
		quantity = service.DefaultCartQuantity
	}
	for _, item := range f.items {
		if item.UserID == userID && item.ProductID == productID {
			item.Quantity += quantity
			return item, false, nil
		}
	}
	item := &domain.CartItem{ID: uuid.New(), UserID: userID, ProductID: productID, Quantity: quantity, CreatedAt: time.Now()}
	f.items = append(f.items, item)
	return item, true, nil
}

func (f *fakeCartService) ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := []*domain.CartLine{}
	for _, item := range f.items {
		if item.UserID == userID {
			p := f.products[item.ProductID]
			lines = append(lines, &domain.CartLine{ID: item.ID, ProductID: p.ID, ProductName: p.Name, Price: p.Price, Images: p.Images, Quantity: item.Quantity})
		}
	}
	return lines, nil
}

func (f *fakeCartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.CartItem, error) {
	return f.update(func(item *domain.CartItem) bool { return item.UserID == userID && item.ID == itemID }, quantity)
}

func (f *fakeCartService) UpdateItemByProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	return f.update(func(item *domain.CartItem) bool { return item.UserID == userID && item.ProductID == productID }, quantity)
}

func (f *fakeCartService) update(match func(*domain.CartItem) bool, quantity int) (*domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, item := range f.items {
		if match(item) {
			item.Quantity = quantity
			return item, nil
		}
	}
	return nil, repository.ErrCartItemNotFound
}

func (f *fakeCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return f.remove(func(item *domain.CartItem) bool { return item.UserID == userID && item.ID == itemID })
}

func (f *fakeCartService) RemoveItemByProduct(ctx context.Context, userID, productID uuid.UUID) error {
	return f.remove(func(item *domain.CartItem) bool { return item.UserID == userID && item.ProductID == productID })
}

func (f *fakeCartService) remove(match func(*domain.CartItem) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.items[:0]
	for _, item := range f.items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	f.items = kept
	return nil
}

// fakeOrderService checks out whatever the fake cart holds
type fakeOrderService struct {
	cart   *fakeCartService
	err    error
	orders []*domain.Order
	last   service.CheckoutRequest
}

func (f *fakeOrderService) Checkout(ctx context.Context, req service.CheckoutRequest) (*domain.Order, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}

	lines, _ := f.cart.ListItems(ctx, req.UserID)
	if len(lines) == 0 {
		return nil, repository.ErrCartEmpty
	}

	totals := service.CalculateTotals(lines, 0)
	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          req.UserID,
		OrderNumber:     "ORD-1767225600000",
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Shipping:        totals.Shipping,
		Discount:        totals.Discount,
		Total:           totals.Total,
		Status:          domain.OrderStatusConfirmed,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   domain.PaymentStatusFor(req.PaymentMethod),
		TransactionID:   "TXN_1767225600000_ABCDEFGHI",
		ShippingAddress: req.ShippingAddress,
		CreatedAt:       time.Now(),
	}
	for _, line := range lines {
		order.Items = append(order.Items, domain.OrderItem{ID: uuid.New(), OrderID: order.ID, ProductID: line.ProductID, ProductName: line.ProductName, Quantity: line.Quantity, Price: line.Price})
		_ = f.cart.RemoveItem(ctx, req.UserID, line.ID)
	}
	f.orders = append([]*domain.Order{order}, f.orders...)
	return order, nil
}

func (f *fakeOrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

type fakeWishlistService struct {
	products map[uuid.UUID]*domain.Product
	saved    map[uuid.UUID]map[uuid.UUID]bool
}

func (f *fakeWishlistService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	if _, ok := f.products[productID]; !ok {
		return repository.ErrProductNotFound
	}
	if f.saved[userID] == nil {
		f.saved[userID] = map[uuid.UUID]bool{}
	}
	f.saved[userID][productID] = true
	return nil
}

func (f *fakeWishlistService) List(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistEntry, error) {
	entries := []*domain.WishlistEntry{}
	for productID := range f.saved[userID] {
		p := f.products[productID]
		entries = append(entries, &domain.WishlistEntry{ID: uuid.New(), ProductID: p.ID, ProductName: p.Name, Price: p.Price, Images: p.Images, Category: p.Category})
	}
	return entries, nil
}

func (f *fakeWishlistService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	return nil
}

func (f *fakeWishlistService) RemoveByProduct(ctx context.Context, userID, productID uuid.UUID) error {
	delete(f.saved[userID], productID)
	return nil
}

// testAPI is the full router over in-memory collaborators
type testAPI struct {
	router      chi.Router
	userService service.UserService
	cart        *fakeCartService
	orders      *fakeOrderService
	product     *domain.Product
}

func newTestAPI() *testAPI {
	logger := zap.NewNop()

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        "Wireless Headphones",
		Description: "Noise cancelling",
		Price:       decimal.RequireFromString("1000"),
		Images:      []string{"https://images.megashop.test/headphones.jpg"},
		Category:    "Electronics",
	}
	products := map[uuid.UUID]*domain.Product{product.ID: product}

	userService := service.NewUserService(newMockUserRepository(), "test-secret", time.Hour)
	promoService := service.NewPromoService(&mockPromoRepository{codes: map[string]*domain.PromoCode{
		"SAVE10": {ID: uuid.New(), Code: "SAVE10", DiscountPercent: 10, Description: "10% off", Active: true},
		"OLD50":  {ID: uuid.New(), Code: "OLD50", DiscountPercent: 50, Active: false},
	}})
	cart := &fakeCartService{products: products}
	orders := &fakeOrderService{cart: cart}
	wishlist := &fakeWishlistService{products: products, saved: map[uuid.UUID]map[uuid.UUID]bool{}}

	auth := middleware.AuthMiddleware(func(token string) (uuid.UUID, error) {
		claims, err := userService.ValidateToken(token)
		if err != nil {
			return uuid.Nil, err
		}
		return claims.UserID, nil
	}, logger)

	r := chi.NewRouter()
	NewUserHandler(userService, logger).RegisterRoutes(r, auth)
	NewProductHandler(&fakeCatalogService{products: products}, logger).RegisterRoutes(r)
	NewCartHandler(cart, logger).RegisterRoutes(r, auth)
	NewOrderHandler(orders, logger).RegisterRoutes(r, auth)
	NewWishlistHandler(wishlist, logger).RegisterRoutes(r, auth)
	NewPromoHandler(promoService, logger).RegisterRoutes(r, auth)

	return &testAPI{
		router:      r,
		userService: userService,
		cart:        cart,
		orders:      orders,
		product:     product,
	}
}
