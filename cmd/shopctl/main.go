// Command shopctl runs database migrations, imports offer and sales
// spreadsheets and writes upload templates from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/grachmannico95/shopease-be/internal/config"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "shopctl",
		Short:         "ShopEase administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	newLogger := func() *logger.Logger { return logger.New(opts.logLevel) }

	cmd.AddCommand(
		newMigrateCmd(config.Load, newLogger),
		newImportCmd(config.Load, newLogger),
		newTemplateCmd(),
	)
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
