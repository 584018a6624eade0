package commands

import (
	"strconv"

	"megashop/cmd/megashopctl/output"
	"megashop/internal/domain"
	"megashop/internal/transport"

	"github.com/spf13/cobra"
)

var (
	// Checkout flags
	paymentMethod string
	promoCode     string
	address       domain.ShippingAddress
)

var promoCmd = &cobra.Command{
	Use:   "promo <code>",
	Short: "Check whether a promo code is usable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loggedInSession()
		if err != nil {
			return err
		}

		promo, err := s.client.ValidatePromo(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(promo)
		}
		output.Success("%s gives %d%% off", promo.Code, promo.DiscountPercent)
		if promo.Description != "" {
			output.Muted("%s", promo.Description)
		}
		return nil
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for everything in the cart",
	Long: `Place an order for the whole cart. Totals are computed by the server;
an unusable promo code is ignored rather than rejected.

Example:
  megashopctl checkout --payment card --name "Asha Perera" --address "12 Lake Road" \
    --city Colombo --postal-code 00300 --phone 0771234567 --promo SAVE10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loggedInSession()
		if err != nil {
			return err
		}

		order, err := s.client.Checkout(commandContext(cmd), transport.CheckoutRequest{
			PaymentMethod:   paymentMethod,
			ShippingAddress: address,
			PromoCode:       promoCode,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(order)
		}
		output.Success("Order %s placed", order.OrderNumber)
		output.Info("Total %s (payment %s)", order.Total.StringFixed(2), order.PaymentStatus)
		output.Muted("Transaction %s", order.TransactionID)
		return nil
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List past orders, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loggedInSession()
		if err != nil {
			return err
		}

		orders, err := s.client.Orders(commandContext(cmd))
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(orders)
		}
		if len(orders) == 0 {
			output.Info("No orders yet")
			return nil
		}

		rows := make([][]string, 0, len(orders))
		for _, o := range orders {
			rows = append(rows, []string{
				o.OrderNumber,
				o.CreatedAt.Format("2006-01-02 15:04"),
				strconv.Itoa(len(o.Items)),
				o.Total.StringFixed(2),
				o.Status,
				o.PaymentStatus,
			})
		}
		output.Table([]string{"order", "placed", "items", "total", "status", "payment"}, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promoCmd, checkoutCmd, ordersCmd)

	checkoutCmd.Flags().StringVar(&paymentMethod, "payment", "cod", "cod, card, upi or wallet")
	checkoutCmd.Flags().StringVar(&promoCode, "promo", "", "Promo code to apply")
	checkoutCmd.Flags().StringVar(&address.Name, "name", "", "Recipient name")
	checkoutCmd.Flags().StringVar(&address.Address, "address", "", "Street address")
	checkoutCmd.Flags().StringVar(&address.City, "city", "", "City")
	checkoutCmd.Flags().StringVar(&address.PostalCode, "postal-code", "", "Postal code")
	checkoutCmd.Flags().StringVar(&address.Phone, "phone", "", "Contact phone")
	for _, flag := range []string{"name", "address", "city", "postal-code", "phone"} {
		checkoutCmd.MarkFlagRequired(flag)
	}
}
