package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/pcshop/internal/builder"
	"github.com/Skotchmaster/pcshop/internal/query"
)

func (a *app) printBuild() {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLOT\tPRODUCT\tPRICE")
	for _, slot := range builder.Slots {
		p, ok := a.build.Component(slot)
		if !ok {
			fmt.Fprintf(w, "%s\t-\t-\n", slot)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", slot, p.Name, p.Price.StringFixed(2))
	}
	_ = w.Flush()
	fmt.Fprintf(a.out, "%d/%d parts, total %s\n", a.build.ComponentsCount(), len(builder.Slots), a.build.BuildTotal().StringFixed(2))
}

func buildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble a PC one slot at a time",
		RunE: func(*cobra.Command, []string) error {
			a.printBuild()
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <slot> <product-id>",
		Short: "Put a product into a slot, replacing what was there",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := builder.ParseSlot(args[0])
			if err != nil {
				return err
			}
			id, err := uuid.Parse(args[1])
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
			if err := a.build.AddComponent(slot, *p); err != nil {
				return err
			}
			a.printBuild()
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <slot>",
		Short: "Empty a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			slot, err := builder.ParseSlot(args[0])
			if err != nil {
				return err
			}
			if err := a.build.RemoveComponent(slot); err != nil {
				return err
			}
			a.printBuild()
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty every slot",
		RunE: func(*cobra.Command, []string) error {
			return a.build.ClearBuild()
		},
	}

	var maxPrice float64
	candidates := &cobra.Command{
		Use:   "candidates <slot>",
		Short: "List products that fit a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := builder.ParseSlot(args[0])
			if err != nil {
				return err
			}
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}
			q := query.New().Order("price", true)
			if cmd.Flags().Changed("max") {
				q.Lte("price", maxPrice)
			}
			items, err := a.catalog.SlotCandidates(cmd.Context(), slot, q)
			if err != nil {
				return err
			}
			a.printProducts(items)
			return nil
		},
	}
	candidates.Flags().Float64Var(&maxPrice, "max", 0, "maximum price")

	toCart := &cobra.Command{
		Use:   "add-to-cart",
		Short: "Save the finished build and add it to the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.currentSession(cmd.Context())
			if err != nil {
				return err
			}
			b, err := a.checkout.AddBuildToCart(cmd.Context(), s.User.ID, a.build, a.cart)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "build %s added to the cart for %s\n", b.ID, b.TotalPrice.StringFixed(2))
			return nil
		},
	}

	cmd.AddCommand(set, remove, clearCmd, candidates, toCart)
	return cmd
}
