// Package client is a typed Go client for the MegaShop API. It covers what
// the shop app does over HTTP: account, catalog, cart, wishlist, promo codes,
// checkout and order history.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"megashop/internal/domain"
	"megashop/internal/middleware"
	"megashop/internal/transport"

	"github.com/google/uuid"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response decoded from the error envelope
type APIError struct {
	StatusCode int
	Code       middleware.ErrorKind
	Message    string
	Details    map[string]interface{}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("megashop: %d %s", e.StatusCode, e.Message)
}

// Client talks to one MegaShop API. It is safe for concurrent use once
// configured; SetToken must not race with requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken starts the client with an existing session token
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a client for baseURL, which includes the /api prefix
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current session token, empty when logged out
func (c *Client) Token() string {
	return c.token
}

// SetToken replaces the session token
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var envelope middleware.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Details = envelope.Error.Details
	}
	return apiErr
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates an account and keeps the returned token
func (c *Client) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	var resp transport.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// Login authenticates and keeps the returned token
func (c *Client) Login(ctx context.Context, email, password string) (*transport.AuthResponse, error) {
	var resp transport.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", transport.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

func (c *Client) Me(ctx context.Context) (*transport.UserProfile, error) {
	var profile transport.UserProfile
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	return c.do(ctx, http.MethodPut, "/auth/change-password", transport.ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}, nil)
}

func (c *Client) Products(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Product(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+id.String(), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) Categories(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	if err := c.do(ctx, http.MethodGet, "/products/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	var products []*domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/category/"+url.PathEscape(category), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// AddToCart adds quantity units; zero means one
func (c *Client) AddToCart(ctx context.Context, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	var item domain.CartItem
	err := c.do(ctx, http.MethodPost, "/cart", transport.AddToCartRequest{ProductID: productID.String(), Quantity: quantity}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) Cart(ctx context.Context) ([]*domain.CartLine, error) {
	var lines []*domain.CartLine
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// UpdateCartItem sets the quantity of a cart row by its id
func (c *Client) UpdateCartItem(ctx context.Context, itemID uuid.UUID, quantity int) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := c.do(ctx, http.MethodPut, "/cart/"+itemID.String(), transport.UpdateCartRequest{Quantity: quantity}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCartProduct sets the quantity of the cart row holding productID
func (c *Client) UpdateCartProduct(ctx context.Context, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := c.do(ctx, http.MethodPatch, "/cart/"+productID.String(), transport.UpdateCartRequest{Quantity: quantity}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/cart/"+itemID.String(), nil, nil)
}

func (c *Client) RemoveCartProduct(ctx context.Context, productID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/cart/product/"+productID.String(), nil, nil)
}

func (c *Client) Wishlist(ctx context.Context) ([]*domain.WishlistEntry, error) {
	var entries []*domain.WishlistEntry
	if err := c.do(ctx, http.MethodGet, "/wishlist", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) AddToWishlist(ctx context.Context, productID uuid.UUID) error {
	return c.do(ctx, http.MethodPost, "/wishlist", transport.WishlistRequest{ProductID: productID.String()}, &messageResponse{})
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/wishlist/product/"+productID.String(), nil, nil)
}

// ValidatePromo checks a code; unknown or expired codes come back as a 404 APIError
func (c *Client) ValidatePromo(ctx context.Context, code string) (*transport.PromoResponse, error) {
	var promo transport.PromoResponse
	if err := c.do(ctx, http.MethodPost, "/promo/validate", transport.ValidatePromoRequest{Code: code}, &promo); err != nil {
		return nil, err
	}
	return &promo, nil
}

func (c *Client) Checkout(ctx context.Context, req transport.CheckoutRequest) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) Orders(ctx context.Context) ([]*domain.Order, error) {
	var orders []*domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
