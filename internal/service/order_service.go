package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"time"

	"megashop/internal/domain"
	"megashop/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const transactionSuffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CheckoutRequest carries the shopper's choices for one checkout
type CheckoutRequest struct {
	UserID          uuid.UUID
	PaymentMethod   string
	ShippingAddress domain.ShippingAddress
	PromoCode       string
}

// OrderService defines the interface for order business logic
type OrderService interface {
	// Checkout converts the cart into a confirmed order. An unknown or
	// unusable promo code is ignored. An empty cart yields
	// repository.ErrCartEmpty.
	Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, logger *zap.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *orderService) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	build := func(lines []*domain.CartLine, promo *domain.PromoCode) (*domain.Order, error) {
		return s.buildOrder(req, lines, promo)
	}

	order, err := s.orderRepo.Checkout(ctx, req.UserID, NormalizePromoCode(req.PromoCode), build)
	if err != nil {
		if errors.Is(err, repository.ErrCartEmpty) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	s.logger.Info("Order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", order.UserID.String()),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.Total.String()),
	)

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) buildOrder(req CheckoutRequest, lines []*domain.CartLine, promo *domain.PromoCode) (*domain.Order, error) {
	discountPercent := 0
	if promo != nil {
		discountPercent = promo.DiscountPercent
	}
	totals := CalculateTotals(lines, discountPercent)

	now := s.now()
	transactionID, err := newTransactionID(now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate transaction id: %w", err)
	}

	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          req.UserID,
		OrderNumber:     newOrderNumber(now),
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Shipping:        totals.Shipping,
		Discount:        totals.Discount,
		Total:           totals.Total,
		Status:          domain.OrderStatusConfirmed,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   domain.PaymentStatusFor(req.PaymentMethod),
		TransactionID:   transactionID,
		ShippingAddress: req.ShippingAddress,
		Items:           make([]domain.OrderItem, 0, len(lines)),
	}

	for _, line := range lines {
		order.Items = append(order.Items, domain.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Price:       line.Price,
		})
	}

	return order, nil
}

// newOrderNumber is ORD- followed by the epoch milliseconds
func newOrderNumber(now time.Time) string {
	return "ORD-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// newTransactionID is TXN_<epoch ms>_<9 random uppercase base36 chars>
func newTransactionID(now time.Time) (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = transactionSuffixAlphabet[int(b)%len(transactionSuffixAlphabet)]
	}
	return fmt.Sprintf("TXN_%d_%s", now.UnixMilli(), buf), nil
}
