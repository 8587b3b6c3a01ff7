package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/sites"
)

// newSitesCommand groups the site-profile inspection subcommands.
func newSitesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "Inspect the configured site profiles",
	}
	cmd.AddCommand(newSitesListCommand())
	cmd.AddCommand(newSitesValidateCommand())
	return cmd
}

// newSitesListCommand prints the registered profiles as a table.
func newSitesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered site profiles",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, _, err := bootstrap()
			if err != nil {
				return err
			}

			registry, err := sites.LoadFile(cfg.Crawl.SitesFile)
			if err != nil {
				return fmt.Errorf("load sites: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Key", "Base URL", "Discovery", "Max Articles", "Delay"})
			for _, key := range registry.Keys() {
				profile, getErr := registry.Get(key)
				if getErr != nil {
					continue
				}
				t.AppendRow(table.Row{
					profile.Key, profile.BaseURL, profile.Discovery,
					profile.MaxArticles, profile.RateLimit.Delay,
				})
			}
			t.Render()
			return nil
		},
	}
}

// newSitesValidateCommand checks the sites file without crawling.
func newSitesValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the sites file and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, _, err := bootstrap()
			if err != nil {
				return err
			}

			registry, err := sites.LoadFile(cfg.Crawl.SitesFile)
			if err != nil {
				return fmt.Errorf("sites file invalid: %w", err)
			}

			fmt.Printf("sites file OK: %d profile(s)\n", registry.Len())
			return nil
		},
	}
}
