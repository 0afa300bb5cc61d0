package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/jo-hoe/cnpdb/internal/backend/reference"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var ids []int
	var format, output string

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export selected peptides as FASTA or XLSX",
		Example: "  npdb export --table cnpdb.xlsx --id 1 --id 4 --format xlsx --output selected.xlsx",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			write, ok := map[string]func(io.Writer, []reference.Peptide) error{
				"fasta": reference.WriteFASTA,
				"xlsx":  reference.WriteXLSX,
			}[format]
			if !ok {
				return fmt.Errorf("unknown format %q, use fasta or xlsx", format)
			}
			if format == "xlsx" && output == "" {
				return fmt.Errorf("xlsx export needs --output")
			}
			table, err := opts.loadTable()
			if err != nil {
				return err
			}
			peptides := table.Select(ids)
			if len(peptides) == 0 {
				return fmt.Errorf("none of the ids %v exist", ids)
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer func() { err = multierr.Append(err, f.Close()) }()
				w = f
			}
			if err := write(w, peptides); err != nil {
				return err
			}
			slog.Info("exported peptides", "count", len(peptides), "format", format, "output", output)
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&ids, "id", nil, "cNPDB ID, repeatable")
	cmd.Flags().StringVarP(&format, "format", "f", "fasta", "fasta or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
