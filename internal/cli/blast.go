package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jo-hoe/cnpdb/internal/backend/alignment"
	"github.com/jo-hoe/cnpdb/internal/backend/preprocess"
)

func newBlastCommand(opts *rootOptions) *cobra.Command {
	params := alignment.DefaultParams()
	var mode string
	var workers int

	cmd := &cobra.Command{
		Use:     "blast QUERY",
		Short:   "Rank reference peptides by similarity to a query",
		Example: "  npdb blast --table cnpdb.xlsx --matrix PAM30 FDAFTTGFGHN",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Mode = alignment.Mode(strings.ToLower(mode))
			params.Matrix = strings.ToUpper(params.Matrix)
			if err := params.Validate(); err != nil {
				return err
			}
			query, err := preprocess.Clean(args[0], params.LowComplexity)
			if err != nil {
				return err
			}
			table, err := opts.loadTable()
			if err != nil {
				return err
			}
			result, err := alignment.NewSearcher(workers).Search(cmd.Context(), query, table, params)
			if err != nil {
				return err
			}
			return alignment.WriteReport(cmd.OutOrStdout(), result)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&mode, "mode", string(params.Mode), "alignment mode, local or global")
	flags.StringVar(&params.Matrix, "matrix", params.Matrix, "substitution matrix: "+strings.Join(alignment.Matrices, ", "))
	flags.IntVar(&params.MatchScore, "match", params.MatchScore, "match score for the IDENTITY matrix")
	flags.IntVar(&params.MismatchScore, "mismatch", params.MismatchScore, "mismatch score for the IDENTITY matrix")
	flags.IntVar(&params.GapOpen, "gap-open", params.GapOpen, "gap open penalty")
	flags.IntVar(&params.GapExtend, "gap-extend", params.GapExtend, "gap extend penalty")
	flags.IntVar(&params.WordSize, "word-size", params.WordSize, "minimum query and reference length")
	flags.Float64Var(&params.Threshold, "evalue", params.Threshold, "pseudo E-value threshold")
	flags.IntVar(&params.TopN, "top", params.TopN, "number of hits: 5, 10 or 20")
	flags.BoolVar(&params.LowComplexity, "low-complexity", false, "mask low-complexity runs in the query")
	flags.IntVar(&workers, "workers", 0, "scan workers, GOMAXPROCS when 0")
	return cmd
}
