package frontend

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jo-hoe/cnpdb/internal/backend/alignment"
	"github.com/jo-hoe/cnpdb/internal/backend/properties"
	"github.com/jo-hoe/cnpdb/internal/backend/reference"
)

var esc = html.EscapeString

func warningHTML(message string) string {
	return fmt.Sprintf(`<p class="warning" role="alert">%s</p>`, esc(message))
}

// buildPeptideTableHTML lists the matching rows inside a form that posts the checked IDs to the download routes
func buildPeptideTableHTML(peptides []reference.Peptide) string {
	var b strings.Builder
	if len(peptides) == 0 {
		b.WriteString(`<p>No peptides match the selected filters.</p>`)
		return b.String()
	}

	b.WriteString(fmt.Sprintf(`<p>%s peptides found.</p>`, humanize.Comma(int64(len(peptides)))))
	b.WriteString(`<form method="post"><div class="grid">
	<button type="submit" formaction="/download/fasta" class="secondary">Download FASTA</button>
	<button type="submit" formaction="/download/xlsx" class="secondary">Download XLSX</button>
	<button type="submit" formaction="/download/zip" class="secondary">Download structures and MSI</button>
</div>
<div class="overflow-auto"><table class="striped">
<thead><tr><th><input type="checkbox" aria-label="Select all" onclick="this.closest('table').querySelectorAll('input[name=id]').forEach(c => c.checked = this.checked)"></th>
<th>cNPDB ID</th><th>Sequence</th><th>Family</th><th>Organism</th><th>Tissue</th><th>PTM</th><th>Mass</th><th>Length</th><th>pI</th></tr></thead><tbody>`)
	for _, p := range peptides {
		b.WriteString(fmt.Sprintf(`<tr><td><input type="checkbox" name="id" value="%d" aria-label="Select %s"></td><td>%s</td><td><code>%s</code></td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			p.CNPDBID, esc(p.FastaID()), esc(p.FastaID()), esc(p.DisplaySequence()), esc(p.Family), esc(p.Organism),
			esc(p.Tissue), esc(p.PTM),
			formatNumber(p.Number(reference.MonoisotopicMass)),
			formatLength(p.Number(reference.Length)),
			formatNumber(p.Number(reference.IsoelectricPoint))))
	}
	b.WriteString(`</tbody></table></div></form>`)
	return b.String()
}

func formatLength(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.0f", v)
}

func buildBlastResultHTML(result alignment.Result) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(`<p>Query <code>%s</code> (%d aa) against %s references with %s.</p>`,
		esc(result.Query), len(result.Query), humanize.Comma(int64(result.Scanned)), esc(result.Params.Matrix)))
	if result.Empty() {
		b.WriteString(`<p>No hits found below the E-value threshold.</p>`)
		return b.String()
	}

	b.WriteString(`<table class="striped"><thead><tr><th>Rank</th><th>ID</th><th>Score</th><th>E-value</th><th>Identity</th><th>Similarity</th><th>Family</th><th>Organism</th><th>Tissue</th></tr></thead><tbody>`)
	for _, hit := range result.Hits {
		a := hit.Alignment
		b.WriteString(fmt.Sprintf(`<tr><td>%d</td><td>%s</td><td>%d</td><td>%.2e</td><td>%.1f%%</td><td>%.1f%%</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			hit.Rank, esc(hit.ID), a.Score, hit.EValue, a.Identity(), a.Similarity(),
			esc(hit.Family), esc(hit.Organism), esc(hit.Tissue)))
	}
	b.WriteString(`</tbody></table>`)

	for _, hit := range result.Hits {
		a := hit.Alignment
		b.WriteString(fmt.Sprintf(`<details><summary>#%d %s (query %d-%d, reference %d-%d)</summary><pre class="alignment">Query  %s
       %s
Sbjct  %s</pre></details>`,
			hit.Rank, esc(hit.ID), a.QueryStart, a.QueryEnd, a.ReferenceStart, a.ReferenceEnd,
			esc(a.QueryRow), esc(a.MatchRow), esc(a.ReferenceRow)))
	}
	return b.String()
}

func buildPropertiesHTML(p properties.Properties) string {
	rows := [][2]string{
		{"Sequence", esc(p.Sequence)},
		{"Length", fmt.Sprintf("%d", p.Length)},
		{"Molecular Weight", formatNumber(p.MolecularWeight) + " Da"},
		{"Monoisotopic Mass", fmt.Sprintf("%.4f Da", p.MonoisotopicMass)},
		{"GRAVY", fmt.Sprintf("%.3f", p.Gravy)},
		{"% Hydrophobic Residue", formatNumber(p.HydrophobicPercent) + "%"},
		{"Instability Index", fmt.Sprintf("%s (%s)", formatNumber(p.InstabilityIndex), p.StabilityLabel())},
		{"Isoelectric Point (pI)", formatNumber(p.IsoelectricPoint)},
		{"Net Charge (pH 7.0)", formatNumber(p.NetChargePH7)},
		{"Aliphatic Index", formatNumber(p.AliphaticIndex)},
		{"Boman Index", formatNumber(p.BomanIndex)},
	}
	var b strings.Builder
	b.WriteString(`<table><tbody>`)
	for _, row := range rows {
		b.WriteString(fmt.Sprintf(`<tr><th scope="row">%s</th><td>%s</td></tr>`, esc(row[0]), row[1]))
	}
	b.WriteString(`</tbody></table>`)
	return b.String()
}
