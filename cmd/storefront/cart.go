package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/pcshop/internal/cart"
)

func (a *app) printCart() {
	lines := a.cart.Items()
	if len(lines) == 0 {
		fmt.Fprintln(a.out, "cart is empty")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range lines {
		name := l.Name
		if l.IsBuild {
			name = fmt.Sprintf("%s (%d parts)", l.Name, len(l.Components))
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", l.ID, name, l.Quantity, l.Price.StringFixed(2), l.Subtotal().StringFixed(2))
	}
	_ = w.Flush()
	fmt.Fprintf(a.out, "%d items, total %s\n", a.cart.TotalItems(), a.cart.Total().StringFixed(2))
}

func cartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and edit the cart",
		RunE: func(*cobra.Command, []string) error {
			a.printCart()
			return nil
		},
	}

	var qty int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("product id: %w", err)
			}
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}
			p, err := a.catalog.GetProduct(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := a.cart.AddItem(cart.FromProduct(*p), qty); err != nil {
				return err
			}
			a.printCart()
			return nil
		},
	}
	add.Flags().IntVar(&qty, "qty", 1, "quantity to add")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.cart.RemoveItem(args[0]); err != nil {
				return err
			}
			a.printCart()
			return nil
		},
	}

	setQty := &cobra.Command{
		Use:   "qty <id> <quantity>",
		Short: "Change the quantity of a line",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity: %w", err)
			}
			if err := a.cart.UpdateQuantity(args[0], n); err != nil {
				return err
			}
			a.printCart()
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(*cobra.Command, []string) error {
			return a.cart.Clear()
		},
	}

	cmd.AddCommand(add, remove, setQty, clearCmd)
	return cmd
}
