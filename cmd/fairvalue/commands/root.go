package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	profilesFile string
	verbose      bool
	jsonOutput   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fairvalue",
	Short: "DCF fair value and cross-sectional stock screener",
	Long: `fairvalue CLI

투자 철학(Philosophy) 기반 DCF 적정가치 계산 및 유니버스 스크리닝.

Usage:
  go run ./cmd/fairvalue [command]

Examples:
  go run ./cmd/fairvalue value AAPL --philosophy GARP
  go run ./cmd/fairvalue screen --universe "Dow 30"
  go run ./cmd/fairvalue philosophies
  go run ./cmd/fairvalue api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&profilesFile, "profiles", "", "philosophy override YAML (default is PROFILES_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of tables")
}
