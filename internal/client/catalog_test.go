package client

import (
	"testing"

	"megashop/internal/domain"
	"megashop/internal/transport"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(name, price string, rating *float64) *domain.Product {
	return &domain.Product{ID: uuid.New(), Name: name, Price: decimal.RequireFromString(price), Rating: rating}
}

func ratingOf(v float64) *float64 {
	return &v
}

func names(products []*domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestFilterProducts(t *testing.T) {
	catalog := []*domain.Product{
		product("Wireless Headphones", "1999", ratingOf(4.5)),
		product("Wired Headphones", "499", nil),
		product("Smart Watch", "2999", ratingOf(4.8)),
		product("Phone Case", "299", ratingOf(3.9)),
	}
	min := decimal.RequireFromString("499")
	max := decimal.RequireFromString("1999")

	tests := []struct {
		name   string
		filter ProductFilter
		want   []string
	}{
		{"no filter keeps order", ProductFilter{}, []string{"Wireless Headphones", "Wired Headphones", "Smart Watch", "Phone Case"}},
		{"search ignores case", ProductFilter{Search: "HEADphones"}, []string{"Wireless Headphones", "Wired Headphones"}},
		{"price range is inclusive", ProductFilter{MinPrice: &min, MaxPrice: &max}, []string{"Wireless Headphones", "Wired Headphones"}},
		{"price low to high", ProductFilter{Sort: SortPriceLow}, []string{"Phone Case", "Wired Headphones", "Wireless Headphones", "Smart Watch"}},
		{"price high to low", ProductFilter{Sort: SortPriceHigh}, []string{"Smart Watch", "Wireless Headphones", "Wired Headphones", "Phone Case"}},
		{"rating with missing as zero", ProductFilter{Sort: SortRating}, []string{"Smart Watch", "Wireless Headphones", "Phone Case", "Wired Headphones"}},
		{"search and sort", ProductFilter{Search: "phone", Sort: SortPriceLow}, []string{"Phone Case", "Wired Headphones", "Wireless Headphones"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(FilterProducts(catalog, tt.filter)))
		})
	}

	assert.Equal(t, "Wireless Headphones", catalog[0].Name, "input must not be reordered")
}

func TestParseSortOrder(t *testing.T) {
	order, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortDefault, order)

	order, err = ParseSortOrder(" Price_High ")
	require.NoError(t, err)
	assert.Equal(t, SortPriceHigh, order)

	_, err = ParseSortOrder("newest")
	assert.Error(t, err)
}

// Sorting by price never drops products and yields a non-decreasing sequence
func TestProperty_PriceSortIsOrderedPermutation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("price_low returns every product in non-decreasing price order", prop.ForAll(
		func(cents []int64) bool {
			products := make([]*domain.Product, len(cents))
			for i, c := range cents {
				products[i] = &domain.Product{ID: uuid.New(), Price: decimal.New(c, -2)}
			}

			sorted := FilterProducts(products, ProductFilter{Sort: SortPriceLow})
			if len(sorted) != len(products) {
				return false
			}
			for i := 1; i < len(sorted); i++ {
				if sorted[i].Price.LessThan(sorted[i-1].Price) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(0, 1000000)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestEstimateTotals(t *testing.T) {
	lines := []*domain.CartLine{
		{ProductID: uuid.New(), Price: decimal.RequireFromString("500"), Quantity: 2},
	}

	plain := EstimateTotals(lines, nil)
	assert.True(t, plain.Total.Equal(decimal.RequireFromString("1200")), plain.Total.String())

	discounted := EstimateTotals(lines, &transport.PromoResponse{Code: "SAVE10", DiscountPercent: 10})
	assert.True(t, discounted.Discount.Equal(decimal.RequireFromString("100")))
	assert.True(t, discounted.Total.Equal(decimal.RequireFromString("1100")), discounted.Total.String())
}
