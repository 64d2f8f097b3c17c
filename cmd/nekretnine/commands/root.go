// Package commands implements the CLI commands for nekretnine.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nyka2002/nekretnine-search/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "nekretnine",
	Short: "Conversational search over Croatian real-estate listings",
	Long: `nekretnine scrapes Croatian real-estate listing sites, normalizes and
embeds the listings, and serves a conversational natural-language search
API over the result.

Examples:
  # Run the scrape worker loop
  nekretnine worker

  # Run the HTTP API
  nekretnine serve

  # Trigger a one-off scrape from the command line
  nekretnine scrape --source njuskalo`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: nekretnine.yaml in $HOME or the working directory)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

// loadConfig reads the typed configuration, honoring --config.
func loadConfig() (config.Config, error) {
	return config.Load(cfgFile)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
