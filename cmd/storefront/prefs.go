package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/pcshop/internal/localstore"
)

var prefSetters = map[string]func(*localstore.Preferences, string){
	"activeTab":              func(p *localstore.Preferences, v string) { p.AdminTab = v },
	"adminSearchQuery":       func(p *localstore.Preferences, v string) { p.AdminSearchQuery = v },
	"productsFilterCategory": func(p *localstore.Preferences, v string) { p.ProductsFilterCategory = v },
	"productsSortField":      func(p *localstore.Preferences, v string) { p.ProductsSortField = v },
	"productsSortDirection":  func(p *localstore.Preferences, v string) { p.ProductsSortDirection = v },
	"draftText":              func(p *localstore.Preferences, v string) { p.DraftText = v },
}

func prefsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show the saved preferences",
		RunE: func(*cobra.Command, []string) error {
			return a.printJSON(a.prefs.Get())
		},
	}

	set := &cobra.Command{
		Use:   "set key=value...",
		Short: "Change saved preferences",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			type change struct {
				apply func(*localstore.Preferences, string)
				value string
			}
			changes := make([]change, 0, len(args))
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected key=value, got %q", arg)
				}
				fn, ok := prefSetters[key]
				if !ok {
					return fmt.Errorf("unknown preference %q", key)
				}
				changes = append(changes, change{apply: fn, value: value})
			}
			err := a.prefs.Update(func(p *localstore.Preferences) {
				for _, c := range changes {
					c.apply(p, c.value)
				}
			})
			if err != nil {
				return err
			}
			return a.printJSON(a.prefs.Get())
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default preferences",
		RunE: func(*cobra.Command, []string) error {
			if err := a.prefs.Reset(); err != nil {
				return err
			}
			return a.printJSON(a.prefs.Get())
		},
	}

	cmd.AddCommand(set, reset)
	return cmd
}
