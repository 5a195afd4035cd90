package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grachmannico95/shopease-be/internal/ingest"
	"github.com/grachmannico95/shopease-be/internal/spreadsheet"
	"github.com/spf13/cobra"
)

type templateOptions struct {
	out       string
	storeSlug string
}

func newTemplateCmd() *cobra.Command {
	var opts templateOptions

	cmd := &cobra.Command{
		Use:       "template offers|sales",
		Short:     "Write an upload template",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"offers", "sales"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet := ingest.OffersTemplate(opts.storeSlug)
			if args[0] == "sales" {
				sheet = ingest.SalesTemplate(opts.storeSlug)
			}

			out := opts.out
			if out == "" {
				out = sheet.Filename(spreadsheet.FormatXLSX)
			}
			format, err := spreadsheet.ParseFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), "."))
			if err != nil {
				return fmt.Errorf("--out: %w", err)
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := sheet.Write(f, format); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.out, "out", "", "Output file, .xlsx or .csv (default <kind>_template.xlsx)")
	cmd.Flags().StringVar(&opts.storeSlug, "store-slug", "", "Store slug used in the example rows")

	return cmd
}
