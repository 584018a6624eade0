package client

import (
	"fmt"
	"sort"
	"strings"

	"megashop/internal/domain"
	"megashop/internal/service"
	"megashop/internal/transport"

	"github.com/shopspring/decimal"
)

// SortOrder selects how FilterProducts orders its result
type SortOrder string

const (
	SortDefault   SortOrder = "default"
	SortPriceLow  SortOrder = "price_low"
	SortPriceHigh SortOrder = "price_high"
	SortRating    SortOrder = "rating"
)

// ParseSortOrder accepts the sort names shown in the app; "" is default
func ParseSortOrder(raw string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(raw))); order {
	case "", SortDefault:
		return SortDefault, nil
	case SortPriceLow, SortPriceHigh, SortRating:
		return order, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", raw)
	}
}

// ProductFilter narrows a product list the way the catalog screens do.
// Zero values disable each criterion.
type ProductFilter struct {
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     SortOrder
}

// FilterProducts matches Search case-insensitively against the name, keeps
// prices inside [MinPrice, MaxPrice] and sorts stably. The input is not
// modified. Products without a rating sort as 0.
func FilterProducts(products []*domain.Product, filter ProductFilter) []*domain.Product {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	filtered := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if filter.MinPrice != nil && p.Price.LessThan(*filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && p.Price.GreaterThan(*filter.MaxPrice) {
			continue
		}
		filtered = append(filtered, p)
	}

	switch filter.Sort {
	case SortPriceLow:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Price.LessThan(filtered[j].Price)
		})
	case SortPriceHigh:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Price.GreaterThan(filtered[j].Price)
		})
	case SortRating:
		sort.SliceStable(filtered, func(i, j int) bool {
			return rating(filtered[i]) > rating(filtered[j])
		})
	}

	return filtered
}

func rating(p *domain.Product) float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// EstimateTotals previews the checkout amounts for the current cart with an
// optional validated promo. The server recomputes them at checkout.
func EstimateTotals(lines []*domain.CartLine, promo *transport.PromoResponse) service.Totals {
	percent := 0
	if promo != nil {
		percent = promo.DiscountPercent
	}
	return service.CalculateTotals(lines, percent)
}
