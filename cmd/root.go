package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zengent/codelens/cmd/check"
	"github.com/zengent/codelens/cmd/rules"
	"github.com/zengent/codelens/cmd/scan"
	"github.com/zengent/codelens/cmd/version"
	"github.com/zengent/codelens/pkg/shared/config"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "codelens [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Codelens scans source code for demographic and personal data references.",
		Long: `Codelens scans source repositories, archives and local folders for references
	to demographic and personal data: identifiers, column names, annotations and
	value literals. Findings are matched against a pattern catalog and optional
	reference field data, then rendered as html, sarif, json or markdown reports.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(check.CheckCmd)
	rootCmd.AddCommand(rules.NewRulesCmd())
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Printf("initializing config file function is crashed - %v \n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	scan.Init(AppConfig)
	check.Init(AppConfig)
	rules.Init(AppConfig)
	version.Init(AppConfig)
}
