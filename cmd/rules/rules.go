package rules

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zengent/codelens/internal/catalog"
	"github.com/zengent/codelens/pkg/shared/config"
)

var AppConfig *config.Config

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewRulesCmd creates a new cobra.Command for the rules command.
func NewRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "rules",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "List the pattern catalog rules in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}

			fmt.Printf("%-10s %-16s %-10s %s\n", "ID", "CATEGORY", "TIER", "DESCRIPTION")
			for _, rule := range cat.Rules() {
				fmt.Printf("%-10s %-16s %-10s %s\n", rule.ID, rule.Category, rule.Tier, rule.Description)
			}
			fmt.Printf("\n%d rules loaded\n", cat.Len())
			return nil
		},
	}
}

func loadCatalog() (*catalog.Catalog, error) {
	if AppConfig != nil && AppConfig.Scan.CatalogPath != "" {
		return catalog.LoadFile(AppConfig.Scan.CatalogPath)
	}
	return catalog.Load()
}
