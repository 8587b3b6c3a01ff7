// Package cmd implements the command-line interface of the crawler.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/config"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/logger"
)

var (
	// cfgFile is the --config flag value.
	cfgFile string
	// debug is the --debug flag value; forces debug-level logging.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "vnnews-crawler",
		Short: "A configurable crawler for Vietnamese news sites",
		Long: `vnnews-crawler discovers categories and articles on configured news
sites, extracts structured article records and stores them in PostgreSQL.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment overrides are visible to viper.
	_ = godotenv.Load()
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("vnnews-crawler version 1.0.0")
		},
	})

	rootCmd.AddCommand(newCrawlCommand())
	rootCmd.AddCommand(newSitesCommand())
}

// bootstrap loads the configuration and builds the logger shared by all
// commands.
func bootstrap() (*config.Config, logger.Interface, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if debug {
		cfg.Log.Level = "debug"
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, log, nil
}
