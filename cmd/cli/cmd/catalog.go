package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"building-cost/core/output"
	"building-cost/core/scope"
	"building-cost/core/types"
	"building-cost/core/ui"
	"building-cost/internal/config"
)

// catalogCmd inspects the building catalog
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the building catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list [building_type]",
	Short: "List building types and subtypes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadCatalog(config.Get())
		if err != nil {
			return err
		}
		filter := types.BuildingType("")
		if len(args) > 0 {
			if filter, err = types.ParseBuildingType(args[0]); err != nil {
				return err
			}
		}

		w := ui.NewWriter(cmd.OutOrStdout(), noColor)
		tbl := w.NewTable("Type", "Subtype", "Name", "Base cost", "Scope").AlignRight(3)
		for _, bt := range store.BuildingTypes() {
			if filter != "" && bt != filter {
				continue
			}
			for _, sub := range store.Subtypes(bt) {
				c, err := store.Config(bt, sub)
				if err != nil {
					return err
				}
				source := "generic"
				if c.ScopeItemsProfile != "" {
					source = "profile " + c.ScopeItemsProfile
				} else if c.ScopeGenerator != "" {
					source = "generator " + c.ScopeGenerator
				}
				tbl.AddRow(string(bt), sub, c.Name(), output.PerSF(c.BaseCostPerSF), source)
			}
		}
		tbl.Render()

		if filter == "" || filter == types.BuildingMixedUse {
			w.Println("")
			mixed := w.NewTable("Mixed-use component", "Cost", "Revenue").AlignRight(1, 2)
			for _, name := range store.MixedUseComponents() {
				m, _ := store.MixedUseComponent(name)
				mixed.AddRow(name, output.Factor(m.CostMultiplier), output.Factor(m.RevenueMultiplier))
			}
			mixed.Render()
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <building_type> [subtype]",
	Short: "Print one building configuration as JSON",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadCatalog(config.Get())
		if err != nil {
			return err
		}
		bt, err := types.ParseBuildingType(args[0])
		if err != nil {
			return err
		}
		sub := ""
		if len(args) > 1 {
			sub = args[1]
		}
		c, err := store.Config(bt, sub)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the catalog and compile every scope profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		w := ui.NewWriter(cmd.OutOrStdout(), noColor)
		store, err := loadCatalog(cfg)
		if err != nil {
			w.Error("catalog invalid: %v", err)
			return err
		}
		if err := scope.ValidateProfiles(store); err != nil {
			w.Error("scope profiles invalid: %v", err)
			return err
		}
		w.Success("%d building configurations, %d scope profiles, %d tile profiles",
			store.Count(), len(store.ScopeProfileIDs()), len(store.TileProfileIDs()))
		return nil
	},
}

func init() {
	catalogCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}
