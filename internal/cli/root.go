// Package cli implements the npdb command line tool.
package cli

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jo-hoe/cnpdb/internal/backend/reference"
)

type rootOptions struct {
	table   string
	sheet   string
	verbose bool
}

// NewRootCommand assembles npdb and its subcommands
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "npdb",
		Short:         "Query the crustacean neuropeptide database from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if opts.verbose {
				level = log.DebugLevel
			}
			logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Level: level, ReportTimestamp: true})
			slog.SetDefault(slog.New(logger))
		},
	}
	root.PersistentFlags().StringVarP(&opts.table, "table", "t", os.Getenv("CNPDB_REFERENCE_PATH"), "reference table (.xlsx or .csv)")
	root.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "worksheet name, first sheet when empty")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newSearchCommand(opts),
		newBlastCommand(opts),
		newPropsCommand(),
		newExportCommand(opts),
	)
	return root
}

func (opts *rootOptions) loadTable() (*reference.Table, error) {
	if opts.table == "" {
		return nil, errMissingTable
	}
	return reference.Load(opts.table, opts.sheet)
}
