package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vox-librorum/vox-desk/internal/library"
)

type rootOptions struct {
	verbose bool
	catalog string
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "vox",
		Short: "Vox Librorum archive desk",
		Long: `vox is the terminal desk for the Vox Librorum archive.

Sign in to an archive server (or run offline with a passphrase), assemble
investigations from the catalog, and ingest newly digitized scans.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !opts.verbose {
				return nil
			}
			config := zap.NewDevelopmentConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log diagnostics to stderr")
	cmd.PersistentFlags().StringVar(&opts.catalog, "catalog", "", "catalog YAML file (default: built-in catalog)")

	cmd.AddCommand(newDeskCmd(opts), newLibraryCmd(opts), newIngestCmd(opts))
	return cmd
}

func (o *rootOptions) library() (*library.Library, error) {
	return library.Load(o.catalog)
}
