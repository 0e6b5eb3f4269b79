package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/payment"
	"github.com/Skotchmaster/pcshop/internal/util"
)

func checkoutCmd(a *app) *cobra.Command {
	var (
		shipping models.ShippingInfo
		pay      payment.Details
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for everything in the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.currentSession(cmd.Context())
			if err != nil {
				return err
			}
			total := a.cart.Total()
			id, err := a.checkout.PlaceCart(cmd.Context(), s.User.ID, a.cart, shipping, pay)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "order %s placed, total %s\n", id, total.StringFixed(2))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&shipping.Address, "address", "", "street address")
	f.StringVar(&shipping.City, "city", "", "city")
	f.StringVar(&shipping.State, "state", "", "state or region")
	f.StringVar(&shipping.Zip, "zip", "", "postal code")
	f.StringVar(&shipping.Country, "country", "", "country")
	f.StringVar(&pay.Method, "method", "card", "payment method")
	f.StringVar(&pay.CardNumber, "card", "", "card number")
	f.StringVar(&pay.Cardholder, "cardholder", "", "name on the card")
	f.StringVar(&pay.Expiry, "expiry", "", "card expiry, MM/YY")
	f.StringVar(&pay.CVV, "cvv", "", "card security code")
	return cmd
}

func ordersCmd(a *app) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "orders [order-id]",
		Short: "List your orders or show one of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.currentSession(cmd.Context())
			if err != nil {
				return err
			}

			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("order id: %w", err)
				}
				o, err := a.orders.GetForUser(cmd.Context(), s.User.ID, id)
				if err != nil {
					return err
				}
				return a.printJSON(o)
			}

			offset, limit := util.Calculate(page, size)
			items, err := a.orders.ListForUser(cmd.Context(), s.User.ID, limit, offset)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPLACED\tSTATUS\tITEMS\tTOTAL")
			for _, o := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.Status, len(o.Items), o.TotalPrice.StringFixed(2))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&size, "size", util.DefaultPageSize, "page size")
	return cmd
}
