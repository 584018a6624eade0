package commands

import (
	"fmt"
	"strconv"

	"megashop/cmd/megashopctl/output"
	"megashop/internal/client"
	"megashop/internal/transport"

	"github.com/spf13/cobra"
)

var (
	// Cart flags
	quantity  int
	cartPromo string
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart with an estimate of the order total",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loggedInSession()
		if err != nil {
			return err
		}
		ctx := commandContext(cmd)

		lines, err := s.client.Cart(ctx)
		if err != nil {
			return err
		}

		var promo *transport.PromoResponse
		if cartPromo != "" {
			promo, err = s.client.ValidatePromo(ctx, cartPromo)
			if err != nil {
				output.Warning("Promo code %s not applied: %v", cartPromo, err)
				promo = nil
			}
		}
		totals := client.EstimateTotals(lines, promo)

		if jsonOutput {
			return output.JSON(map[string]interface{}{"items": lines, "estimate": totals})
		}
		if len(lines) == 0 {
			output.Info("Your cart is empty")
			return nil
		}

		rows := make([][]string, 0, len(lines))
		for _, line := range lines {
			rows = append(rows, []string{
				line.ID.String(),
				line.ProductName,
				strconv.Itoa(line.Quantity),
				line.Price.StringFixed(2),
				line.LineTotal().StringFixed(2),
			})
		}
		output.Table([]string{"item", "product", "qty", "price", "line total"}, rows)

		output.Muted("Subtotal %s  Tax %s  Shipping %s  Discount %s",
			totals.Subtotal.StringFixed(2), totals.Tax.StringFixed(2),
			totals.Shipping.StringFixed(2), totals.Discount.StringFixed(2))
		output.Header("Estimated total %s", totals.Total.StringFixed(2))
		return nil
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := parseID("product id", args[0])
		if err != nil {
			return err
		}
		s, err := loggedInSession()
		if err != nil {
			return err
		}

		item, err := s.client.AddToCart(commandContext(cmd), productID, quantity)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(item)
		}
		output.Success("Cart now holds %d of this product", item.Quantity)
		return nil
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <item-id> <quantity>",
	Short: "Set the quantity of a cart item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseID("cart item id", args[0])
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil || qty < 1 {
			return fmt.Errorf("quantity must be a positive number, got %q", args[1])
		}
		s, err := loggedInSession()
		if err != nil {
			return err
		}

		item, err := s.client.UpdateCartItem(commandContext(cmd), itemID, qty)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(item)
		}
		output.Success("Quantity set to %d", item.Quantity)
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove an item from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseID("cart item id", args[0])
		if err != nil {
			return err
		}
		s, err := loggedInSession()
		if err != nil {
			return err
		}

		if err := s.client.RemoveCartItem(commandContext(cmd), itemID); err != nil {
			return err
		}
		output.Success("Item removed from cart")
		return nil
	},
}

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Show the wishlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loggedInSession()
		if err != nil {
			return err
		}

		entries, err := s.client.Wishlist(commandContext(cmd))
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(entries)
		}
		if len(entries) == 0 {
			output.Info("Your wishlist is empty")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.ProductID.String(), e.ProductName, e.Category, e.Price.StringFixed(2)})
		}
		output.Table([]string{"product", "name", "category", "price"}, rows)
		return nil
	},
}

var wishlistAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Save a product to the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := parseID("product id", args[0])
		if err != nil {
			return err
		}
		s, err := loggedInSession()
		if err != nil {
			return err
		}

		if err := s.client.AddToWishlist(commandContext(cmd), productID); err != nil {
			return err
		}
		output.Success("Added to wishlist")
		return nil
	},
}

var wishlistRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := parseID("product id", args[0])
		if err != nil {
			return err
		}
		s, err := loggedInSession()
		if err != nil {
			return err
		}

		if err := s.client.RemoveFromWishlist(commandContext(cmd), productID); err != nil {
			return err
		}
		output.Success("Removed from wishlist")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cartCmd, wishlistCmd)
	cartCmd.AddCommand(cartAddCmd, cartUpdateCmd, cartRemoveCmd)
	wishlistCmd.AddCommand(wishlistAddCmd, wishlistRemoveCmd)

	cartCmd.Flags().StringVar(&cartPromo, "promo", "", "Preview the total with this promo code")
	cartAddCmd.Flags().IntVar(&quantity, "qty", 1, "Quantity to add")
}

func loggedInSession() (*session, error) {
	s, err := newSession()
	if err != nil {
		return nil, err
	}
	if err := s.requireLogin(); err != nil {
		return nil, err
	}
	return s, nil
}
