package alignment

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// WriteReport writes a plain-text report of a search result
func WriteReport(w io.Writer, result Result) error {
	var b strings.Builder
	p := result.Params

	b.WriteString("cNPDB peptide similarity search\n")
	b.WriteString(strings.Repeat("=", 40) + "\n\n")
	fmt.Fprintf(&b, "Query (%d aa): %s\n", len(result.Query), result.Query)
	fmt.Fprintf(&b, "Mode: %s  Matrix: %s  Gap open: %d  Gap extend: %d\n", p.Mode, p.Matrix, p.GapOpen, p.GapExtend)
	if strings.EqualFold(p.Matrix, MatrixIdentity) {
		fmt.Fprintf(&b, "Match: %d  Mismatch: %d\n", p.MatchScore, p.MismatchScore)
	}
	fmt.Fprintf(&b, "Word size: %d  E-value threshold: %g  Top hits: %d  Low complexity filter: %t\n",
		p.WordSize, p.Threshold, p.TopN, p.LowComplexity)
	fmt.Fprintf(&b, "Scanned %s references, %s skipped\n\n",
		humanize.Comma(int64(result.Scanned)), humanize.Comma(int64(result.Skipped+result.Failed)))

	if result.Empty() {
		b.WriteString("No hits found.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	for _, hit := range result.Hits {
		a := hit.Alignment
		fmt.Fprintf(&b, "#%d %s\n", hit.Rank, hit.ID)
		fmt.Fprintf(&b, "  Score: %d  E-value: %.2e  Identity: %.1f%%  Similarity: %.1f%%  Gaps: %d\n",
			a.Score, hit.EValue, a.Identity(), a.Similarity(), a.Gaps)
		fmt.Fprintf(&b, "  Query %d-%d  Reference %d-%d\n", a.QueryStart, a.QueryEnd, a.ReferenceStart, a.ReferenceEnd)
		fmt.Fprintf(&b, "  Family: %s\n  Organism: %s\n  Tissue: %s\n", orNA(hit.Family), orNA(hit.Organism), orNA(hit.Tissue))
		fmt.Fprintf(&b, "    Query  %s\n           %s\n    Sbjct  %s\n\n", a.QueryRow, a.MatchRow, a.ReferenceRow)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}
