package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/core"
	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/crm"
	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/history"
	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/logging"
	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/source"
	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/web"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the entity types available in the CRM",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client := crm.NewClient(cfg.CRM.BaseURL, cfg.CRM.Timeout)

			types, err := client.ListTypes(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE")
			for _, t := range types {
				fmt.Fprintf(tw, "%d\t%s\n", t.EntityTypeID, t.Title)
			}
			return tw.Flush()
		},
	}
}

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields <entityTypeID>",
		Short: "List the field definitions of an entity type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityTypeID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid entity type id %q", args[0])
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client := crm.NewClient(cfg.CRM.BaseURL, cfg.CRM.Timeout)

			fields, err := client.ListFields(cmd.Context(), entityTypeID)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tREQUIRED\tOPTIONS")
			for _, f := range fields {
				options := ""
				if len(f.EnumOptions) > 0 {
					values := make([]string, len(f.EnumOptions))
					for i, opt := range f.EnumOptions {
						values[i] = opt.Value
					}
					options = strings.Join(values, ", ")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%v\t%s\n", f.ID, f.Title, f.Type, f.Required, options)
			}
			return tw.Flush()
		},
	}
}

func newImportCmd() *cobra.Command {
	var (
		entityTypeID int
		mapPairs     []string
		sheet        string
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV or XLSX file into an entity type",
		Long: `Import reads a tabular file, converts each row into a typed create
request using the given field mapping, and submits the rows one at a
time. Row failures do not stop the run; every row gets an outcome.`,
		Example: `  importer import deals.csv --entity-type 128 \
      --map title=Name --map ufCrmBudget=Budget`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			pairs, err := parseMapFlags(mapPairs)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if int64(len(data)) > cfg.Import.MaxFileSize {
				return fmt.Errorf("file exceeds %dMB limit", cfg.Import.MaxFileSize/(1024*1024))
			}

			table, err := source.ParseFile(args[0], data, sheet)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client := crm.NewClient(cfg.CRM.BaseURL, cfg.CRM.Timeout)
			fields, err := client.ListFields(ctx, entityTypeID)
			if err != nil {
				return err
			}

			var recorder core.Recorder
			if cfg.History.DatabaseURL != "" {
				store, err := history.Open(ctx, cfg.History.DatabaseURL)
				if err != nil {
					return err
				}
				defer store.Close()
				recorder = store
			}

			ingestor := core.NewFileIngestor(&http.Client{Timeout: cfg.Import.FileFetchTimeout})
			svc := core.NewService(client, ingestor, recorder)

			result, err := svc.Run(ctx, entityTypeID, fields, pairs, table)
			if err != nil {
				return err
			}

			printResult(cmd, result)
			if result.Failed > 0 {
				os.Exit(2)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&entityTypeID, "entity-type", 0, "target entity type ID (required)")
	cmd.Flags().StringArrayVar(&mapPairs, "map", nil, "field mapping FIELD_ID=COLUMN (repeatable)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	cmd.MarkFlagRequired("entity-type")
	cmd.MarkFlagRequired("map")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := logging.FromContext(cmd.Context())

			client := crm.NewClient(cfg.CRM.BaseURL, cfg.CRM.Timeout)

			var store *history.Store
			var recorder core.Recorder
			if cfg.History.DatabaseURL != "" {
				store, err = history.Open(cmd.Context(), cfg.History.DatabaseURL)
				if err != nil {
					return err
				}
				defer store.Close()
				recorder = store
				logger.Info("run history enabled")
			}

			ingestor := core.NewFileIngestor(&http.Client{Timeout: cfg.Import.FileFetchTimeout})
			service := core.NewService(client, ingestor, recorder)
			server := web.NewServer(client, service, store, cfg)

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh

				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("shutdown", "error", err)
				}
			}()

			logger.Info("starting server", "addr", cfg.Server.Addr())
			return server.Start()
		},
	}
}

// parseMapFlags turns repeated FIELD_ID=COLUMN flags into mapping pairs.
func parseMapFlags(flags []string) ([]core.MappingPair, error) {
	pairs := make([]core.MappingPair, 0, len(flags))
	for _, f := range flags {
		fieldID, column, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --map value %q (expected FIELD_ID=COLUMN)", f)
		}
		pairs = append(pairs, core.MappingPair{FieldID: fieldID, Column: column})
	}
	return pairs, nil
}

func printResult(cmd *cobra.Command, result *core.RunResult) {
	out := cmd.OutOrStdout()
	for _, o := range result.Outcomes {
		if o.Success {
			fmt.Fprintf(out, "line %d: ok, item id %d\n", o.Line, o.ID)
		} else {
			fmt.Fprintf(out, "line %d: FAILED: %s\n", o.Line, o.Error)
		}
	}
	fmt.Fprintf(out, "\n%d succeeded, %d failed (%s)\n",
		result.Succeeded, result.Failed, result.Duration.Round(time.Millisecond))
}
