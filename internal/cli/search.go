package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jo-hoe/cnpdb/internal/backend/reference"
)

var errMissingTable = errors.New("no reference table given, use --table or CNPDB_REFERENCE_PATH")

func newSearchCommand(opts *rootOptions) *cobra.Command {
	var sequences []string
	categorical := make(map[string]*[]string, len(reference.CategoricalKeys))
	bounds := make(map[string]*string, 2*len(reference.NumericKeys))

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Filter the reference table",
		Long: `Filter the reference table the way the search page does. Sequence fragments
match as substrings, categorical flags as membership and numeric bounds as ranges.`,
		Example: "  npdb search --table cnpdb.xlsx --seq FDAF --family Orcokinin --mass_max 1500",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := url.Values{"seq": {strings.Join(sequences, " ")}}
			for key, selected := range categorical {
				values[key] = *selected
			}
			for key, bound := range bounds {
				if *bound != "" {
					values.Set(key, *bound)
				}
			}
			filter, err := reference.FilterFromValues(values)
			if err != nil {
				return err
			}
			table, err := opts.loadTable()
			if err != nil {
				return err
			}

			peptides := table.Filter(filter)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CNPDB ID\tSEQUENCE\tFAMILY\tORGANISM\tTISSUE")
			for _, p := range peptides {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.CNPDBID, p.DisplaySequence(), p.Family, p.Organism, p.Tissue)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s of %s peptides\n",
				humanize.Comma(int64(len(peptides))), humanize.Comma(int64(table.Len())))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&sequences, "seq", nil, "sequence fragment, repeatable")
	for _, column := range reference.CategoricalColumns {
		key := reference.CategoricalKeys[column]
		categorical[key] = new([]string)
		flags.StringSliceVar(categorical[key], key, nil, key+" value, repeatable")
	}
	for _, column := range reference.NumericColumns {
		key := reference.NumericKeys[column]
		for _, suffix := range []string{"_min", "_max"} {
			bounds[key+suffix] = new(string)
			flags.StringVar(bounds[key+suffix], key+suffix, "", fmt.Sprintf("%s bound for %s", strings.TrimPrefix(suffix, "_"), column))
		}
	}
	return cmd
}
