package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jo-hoe/cnpdb/internal/backend/properties"
)

func newPropsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "props SEQUENCE...",
		Short:   "Calculate physicochemical properties of a peptide",
		Example: "  npdb props FDAFTTGFGHN",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := properties.Calculate(strings.Join(args, ""))
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Sequence\t%s\n", p.Sequence)
			fmt.Fprintf(w, "Length\t%d\n", p.Length)
			fmt.Fprintf(w, "Molecular Weight\t%.2f\n", p.MolecularWeight)
			fmt.Fprintf(w, "Monoisotopic Mass\t%.4f\n", p.MonoisotopicMass)
			fmt.Fprintf(w, "GRAVY\t%.3f\n", p.Gravy)
			fmt.Fprintf(w, "%% Hydrophobic Residue\t%.2f\n", p.HydrophobicPercent)
			fmt.Fprintf(w, "Instability Index\t%.2f (%s)\n", p.InstabilityIndex, p.StabilityLabel())
			fmt.Fprintf(w, "Isoelectric Point (pI)\t%.2f\n", p.IsoelectricPoint)
			fmt.Fprintf(w, "Net Charge (pH 7.0)\t%.2f\n", p.NetChargePH7)
			fmt.Fprintf(w, "Aliphatic Index\t%.2f\n", p.AliphaticIndex)
			fmt.Fprintf(w, "Boman Index\t%.2f\n", p.BomanIndex)
			return w.Flush()
		},
	}
}
