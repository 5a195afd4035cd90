package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/grachmannico95/shopease-be/internal/app"
	"github.com/grachmannico95/shopease-be/internal/config"
	"github.com/grachmannico95/shopease-be/internal/ingest"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/spf13/cobra"
)

type importOptions struct {
	file   string
	dryRun bool
}

type importSummary struct {
	ImportID  string              `json:"import_id"`
	DryRun    bool                `json:"dry_run"`
	RowsFound int                 `json:"rows_found"`
	Inserted  int                 `json:"inserted"`
	Valid     int                 `json:"valid"`
	Skipped   []ingest.SkippedRow `json:"skipped"`
}

type importFunc func(p *ingest.Pipeline, ctx context.Context, r io.Reader, dryRun bool) (*ingest.Result, error)

func newImportCmd(loadConfig func() *config.Config, newLogger func() *logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import offers or sales from a spreadsheet",
	}

	cmd.AddCommand(
		newImportKindCmd("offers", loadConfig, newLogger, func(p *ingest.Pipeline, ctx context.Context, r io.Reader, dryRun bool) (*ingest.Result, error) {
			if dryRun {
				return p.PreviewOffers(ctx, r)
			}
			return p.ImportOffers(ctx, r)
		}),
		newImportKindCmd("sales", loadConfig, newLogger, func(p *ingest.Pipeline, ctx context.Context, r io.Reader, dryRun bool) (*ingest.Result, error) {
			if dryRun {
				return p.PreviewSales(ctx, r)
			}
			return p.ImportSales(ctx, r)
		}),
	)
	return cmd
}

func newImportKindCmd(kind string, loadConfig func() *config.Config, newLogger func() *logger.Logger, run importFunc) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   kind,
		Short: fmt.Sprintf("Import %s from an .xlsx or .csv file", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := loadConfig()
			log := newLogger()

			f, err := os.Open(opts.file)
			if err != nil {
				return err
			}
			defer f.Close()

			if info, err := f.Stat(); err == nil && cfg.Ingest.MaxUploadBytes > 0 && info.Size() > cfg.Ingest.MaxUploadBytes {
				return fmt.Errorf("%s is %d bytes, limit is %d", opts.file, info.Size(), cfg.Ingest.MaxUploadBytes)
			}

			if cfg.Database.URL == "" && !opts.dryRun {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: DATABASE_URL is not set, rows go to a throwaway in-memory store")
			}

			backend, err := app.Open(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer backend.Close()

			res, err := run(backend.NewPipeline(cfg.Ingest, log), ctx, f, opts.dryRun)
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), res, opts.dryRun)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Spreadsheet to import (required)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate and report without inserting")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func writeSummary(w io.Writer, res *ingest.Result, dryRun bool) error {
	summary := importSummary{
		ImportID:  res.ImportID,
		DryRun:    dryRun,
		RowsFound: res.RowsFound,
		Inserted:  res.Inserted,
		Valid:     len(res.Offers) + len(res.Sales),
		Skipped:   res.Skipped,
	}
	if summary.Skipped == nil {
		summary.Skipped = []ingest.SkippedRow{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
