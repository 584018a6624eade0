package commands

import (
	"fmt"

	"megashop/cmd/megashopctl/output"
	"megashop/internal/client"
	"megashop/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	// Catalog flags
	search   string
	category string
	minPrice string
	maxPrice string
	sortBy   string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products",
	Long: `List the catalog. Filtering and sorting happen locally over the full list.

Examples:
  megashopctl products --search headphones
  megashopctl products --category Electronics --sort price_low
  megashopctl products --min 500 --max 2000 --sort rating`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := productFilter()
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}

		var products []*domain.Product
		if category != "" {
			products, err = s.client.ProductsByCategory(commandContext(cmd), category)
		} else {
			products, err = s.client.Products(commandContext(cmd))
		}
		if err != nil {
			return err
		}

		products = client.FilterProducts(products, filter)
		if jsonOutput {
			return output.JSON(products)
		}

		rows := make([][]string, 0, len(products))
		for _, p := range products {
			rating := "-"
			if p.Rating != nil {
				rating = fmt.Sprintf("%.1f", *p.Rating)
			}
			rows = append(rows, []string{p.ID.String(), p.Name, p.Category, p.Price.StringFixed(2), rating})
		}
		output.Table([]string{"id", "name", "category", "price", "rating"}, rows)
		return nil
	},
}

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("product id", args[0])
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}

		p, err := s.client.Product(commandContext(cmd), id)
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(p)
		}
		output.Header("%s", p.Name)
		output.Info("Price: %s", p.Price.StringFixed(2))
		output.Info("Category: %s", p.Category)
		if p.Rating != nil {
			reviews := 0
			if p.ReviewCount != nil {
				reviews = *p.ReviewCount
			}
			output.Info("Rating: %.1f (%d reviews)", *p.Rating, reviews)
		}
		if p.Description != "" {
			output.Muted("%s", p.Description)
		}
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}

		categories, err := s.client.Categories(commandContext(cmd))
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(categories)
		}
		rows := make([][]string, 0, len(categories))
		for _, c := range categories {
			rows = append(rows, []string{c.Name, fmt.Sprint(c.ProductCount), c.Description})
		}
		output.Table([]string{"name", "products", "description"}, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(productsCmd, productCmd, categoriesCmd)

	productsCmd.Flags().StringVar(&search, "search", "", "Case-insensitive name filter")
	productsCmd.Flags().StringVar(&category, "category", "", "Only this category")
	productsCmd.Flags().StringVar(&minPrice, "min", "", "Minimum price")
	productsCmd.Flags().StringVar(&maxPrice, "max", "", "Maximum price")
	productsCmd.Flags().StringVar(&sortBy, "sort", "default", "default, price_low, price_high or rating")
}

func productFilter() (client.ProductFilter, error) {
	order, err := client.ParseSortOrder(sortBy)
	if err != nil {
		return client.ProductFilter{}, err
	}

	filter := client.ProductFilter{Search: search, Sort: order}
	if filter.MinPrice, err = parsePrice("--min", minPrice); err != nil {
		return client.ProductFilter{}, err
	}
	if filter.MaxPrice, err = parsePrice("--max", maxPrice); err != nil {
		return client.ProductFilter{}, err
	}
	return filter, nil
}

func parsePrice(flag, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", flag, raw)
	}
	return &price, nil
}

func parseID(what, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q", what, raw)
	}
	return id, nil
}
