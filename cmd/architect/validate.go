package main

import (
	"fmt"
	"os"

	"github.com/aretw0/architect/pkg/catalog"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check the catalog for consistency",
	Long:  `Loads the four catalog documents and reports missing files, empty sets or a missing "light" clutter entry.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cat, err := runValidate(cmd, args)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog is valid! ✅ (%d interiors, %d photographers, %d lighting, %d clutter)\n",
			cat.Interiors.Len(), cat.Photographers.Len(), cat.Lighting.Len(), cat.Clutter.Len())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) (*catalog.Catalog, error) {
	if len(args) > 0 {
		return catalog.Load(args[0])
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return catalog.Load(cfg.CatalogDir)
}
