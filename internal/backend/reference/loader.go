package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for reference files that are neither xlsx nor csv
var ErrUnsupportedFormat = errors.New("unsupported reference table format")

// header aliases, matched case-insensitively after trimming
var textColumns = map[string]func(p *Peptide, v string){
	"cnpdb id":          func(p *Peptide, v string) { p.CNPDBID = parseInt(v) },
	"id":                func(p *Peptide, v string) { p.ID = v },
	"sequence":          func(p *Peptide, v string) { p.Sequence = strings.ToUpper(v) },
	"seq":               func(p *Peptide, v string) { p.Sequence = strings.ToUpper(v) },
	"active sequence":   func(p *Peptide, v string) { p.ActiveSequence = v },
	"family":            func(p *Peptide, v string) { p.Family = v },
	"os":                func(p *Peptide, v string) { p.Organism = v },
	"organism":          func(p *Peptide, v string) { p.Organism = v },
	"tissue":            func(p *Peptide, v string) { p.Tissue = v },
	"ptm":               func(p *Peptide, v string) { p.PTM = v },
	"existence":         func(p *Peptide, v string) { p.Existence = v },
	"topic":             func(p *Peptide, v string) { p.Topic = v },
	"instrument":        func(p *Peptide, v string) { p.Instrument = v },
	"technique":         func(p *Peptide, v string) { p.Technique = v },
	"doi":               func(p *Peptide, v string) { p.DOI = v },
	"instability index": func(p *Peptide, v string) { p.InstabilityIndex = v },
}

var numericAliases = map[string]NumericColumn{
	"% hydrophobic residue (%)": HydrophobicPercent,
}

const msiTissuePrefix = "msi tissue "

// Load reads a reference table from an .xlsx or .csv file
func Load(path, sheet string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference table %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			slog.Warn("failed to close reference table", "path", path, "error", cerr)
		}
	}()

	var table *Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		table, err = ReadXLSX(file, sheet)
	case ".csv":
		table, err = ReadCSV(file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reference table %s: %w", path, err)
	}
	table.source = path

	slog.Info("reference table loaded", "path", path, "sheet", sheet, "rows", table.Len())
	return table, nil
}

// ReadXLSX parses a workbook sheet. An empty sheet name selects the first sheet.
func ReadXLSX(r io.Reader, sheet string) (*Table, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = workbook.Close()
	}()

	if sheet == "" {
		sheet = workbook.GetSheetName(0)
	}
	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return fromRecords(rows)
}

// ReadCSV parses comma separated text with a header row
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return fromRecords(records)
}

func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("reference table has no header row")
	}

	header := records[0]
	peptides := make([]Peptide, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		peptides = append(peptides, parsePeptide(header, record))
	}
	return NewTable("", peptides), nil
}

func parsePeptide(header, record []string) Peptide {
	p := Peptide{
		Numbers: make(map[NumericColumn]float64, len(NumericColumns)),
	}
	msi := make([]string, 3)

	for i, name := range header {
		value := ""
		if i < len(record) {
			value = strings.TrimSpace(record[i])
		}
		key := strings.ToLower(strings.TrimSpace(name))

		if set, ok := textColumns[key]; ok {
			set(&p, value)
			continue
		}
		if column, ok := numericColumn(key); ok {
			p.Numbers[column] = parseFloat(value)
			continue
		}
		if strings.HasPrefix(key, msiTissuePrefix) {
			if n := parseInt(strings.TrimPrefix(key, msiTissuePrefix)); n >= 1 && n <= len(msi) {
				msi[n-1] = value
				continue
			}
		}
		if key == "" || value == "" {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]string)
		}
		p.Extra[strings.TrimSpace(name)] = value
	}

	p.MSITissues = msi
	if math.IsNaN(p.Number(Length)) && p.Sequence != "" {
		p.Numbers[Length] = float64(len(p.Sequence))
	}
	if p.ID == "" && p.CNPDBID > 0 {
		p.ID = fmt.Sprintf("cNP%d", p.CNPDBID)
	}
	return p
}

func numericColumn(key string) (NumericColumn, bool) {
	if column, ok := numericAliases[key]; ok {
		return column, true
	}
	for _, column := range NumericColumns {
		if strings.ToLower(string(column)) == key {
			return column, true
		}
	}
	return "", false
}

// parseFloat coerces a cell to a number, NaN when it is empty or not numeric
func parseFloat(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseInt(value string) int {
	f := parseFloat(value)
	if math.IsNaN(f) {
		return 0
	}
	return int(f)
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
