// Command importer bulk-imports tabular records into a CRM item store.
// It maps spreadsheet columns onto CRM fields, converts each row into a
// typed create request, and submits them one at a time, collecting
// per-row outcomes.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/config"
	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/logging"
)

func main() {
	// Load .env if present; real environment variables win.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "importer",
		Short:         "Bulk-import CSV/XLSX rows into a CRM item store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTypesCmd(),
		newFieldsCmd(),
		newImportCmd(),
		newServeCmd(),
	)
	return root
}

// loadConfig loads and validates configuration and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}
