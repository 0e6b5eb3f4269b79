package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/pcshop/internal/localstore"
	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/query"
	"github.com/Skotchmaster/pcshop/internal/util"
)

func (a *app) printProducts(items []models.Product) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range items {
		cat := "-"
		if p.Category != nil {
			cat = p.Category.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, cat, p.Price.StringFixed(2), p.Stock)
	}
	_ = w.Flush()
}

func productsCmd(a *app) *cobra.Command {
	var (
		category   string
		sortField  string
		descending bool
		minPrice   float64
		maxPrice   float64
		page       int
		size       int
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products, remembering the last filter and sort",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}

			prefs := a.prefs.Get()
			flags := cmd.Flags()
			if flags.Changed("category") {
				prefs.ProductsFilterCategory = category
			}
			if flags.Changed("sort") {
				prefs.ProductsSortField = sortField
			}
			if flags.Changed("desc") {
				prefs.ProductsSortDirection = "asc"
				if descending {
					prefs.ProductsSortDirection = "desc"
				}
			}

			q := query.New().Order(prefs.ProductsSortField, prefs.ProductsSortDirection != "desc")
			if prefs.ProductsFilterCategory != "" {
				q.Eq("category_id", prefs.ProductsFilterCategory)
			}
			if flags.Changed("min") {
				q.Gte("price", minPrice)
			}
			if flags.Changed("max") {
				q.Lte("price", maxPrice)
			}
			q.Offset, q.Limit = util.Calculate(page, size)

			total, items, err := a.catalog.ListProducts(cmd.Context(), q)
			if err != nil {
				return err
			}

			err = a.prefs.Update(func(p *localstore.Preferences) {
				p.ProductsFilterCategory = prefs.ProductsFilterCategory
				p.ProductsSortField = prefs.ProductsSortField
				p.ProductsSortDirection = prefs.ProductsSortDirection
			})
			if err != nil {
				a.logger.Warn("save_preferences_error", "error", err)
			}

			a.printProducts(items)
			meta := util.Meta(page, q.Limit, q.Offset, total)
			fmt.Fprintf(a.out, "page %v of %v, %d products\n", meta["page"], meta["total_pages"], total)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&category, "category", "", "category id to filter by, empty clears the filter")
	f.StringVar(&sortField, "sort", "", "column to sort by")
	f.BoolVar(&descending, "desc", false, "sort descending")
	f.Float64Var(&minPrice, "min", 0, "minimum price")
	f.Float64Var(&maxPrice, "max", 0, "maximum price")
	f.IntVar(&page, "page", 1, "page number")
	f.IntVar(&size, "size", util.DefaultPageSize, "page size")
	return cmd
}

func categoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}
			items, err := a.catalog.ListCategories(cmd.Context(), query.New())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
			for _, c := range items {
				desc := ""
				if c.Description != nil {
					desc = *c.Description
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, desc)
			}
			return w.Flush()
		},
	}
}

func searchCmd(a *app) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search products by name, reusing the last query when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}
			text := a.prefs.Get().DraftText
			if len(args) == 1 {
				text = args[0]
			}

			offset, limit := util.Calculate(page, size)
			total, items, err := a.catalog.Search(cmd.Context(), text, offset, limit)
			if err != nil {
				return err
			}
			if err := a.prefs.Update(func(p *localstore.Preferences) { p.DraftText = text }); err != nil {
				a.logger.Warn("save_preferences_error", "error", err)
			}

			a.printProducts(items)
			fmt.Fprintf(a.out, "%d matches for %q\n", total, text)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&size, "size", util.DefaultPageSize, "page size")
	return cmd
}
