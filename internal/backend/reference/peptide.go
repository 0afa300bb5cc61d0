package reference

import (
	"math"
	"strings"
)

// NumericColumn names a precomputed physicochemical property column
type NumericColumn string

const (
	MonoisotopicMass   NumericColumn = "Monoisotopic Mass"
	Length             NumericColumn = "Length"
	Gravy              NumericColumn = "GRAVY"
	HydrophobicPercent NumericColumn = "% Hydrophobic Residue"
	InstabilityValue   NumericColumn = "Instability Index Value"
	IsoelectricPoint   NumericColumn = "Isoelectric Point (pI)"
	NetCharge          NumericColumn = "Net Charge (pH 7.0)"
	AliphaticIndex     NumericColumn = "Aliphatic Index"
	BomanIndex         NumericColumn = "Boman Index"
)

// NumericColumns lists every numeric column in display order
var NumericColumns = []NumericColumn{
	MonoisotopicMass,
	Length,
	Gravy,
	HydrophobicPercent,
	InstabilityValue,
	IsoelectricPoint,
	NetCharge,
	AliphaticIndex,
	BomanIndex,
}

// CategoricalColumn names a text annotation column usable as a filter
type CategoricalColumn string

const (
	FamilyColumn     CategoricalColumn = "Family"
	OrganismColumn   CategoricalColumn = "OS"
	TissueColumn     CategoricalColumn = "Tissue"
	PTMColumn        CategoricalColumn = "PTM"
	ExistenceColumn  CategoricalColumn = "Existence"
	TopicColumn      CategoricalColumn = "Topic"
	InstrumentColumn CategoricalColumn = "Instrument"
	TechniqueColumn  CategoricalColumn = "Technique"
)

// CategoricalColumns lists every categorical column in display order
var CategoricalColumns = []CategoricalColumn{
	FamilyColumn,
	OrganismColumn,
	TissueColumn,
	PTMColumn,
	ExistenceColumn,
	TopicColumn,
	InstrumentColumn,
	TechniqueColumn,
}

// Peptide is one curated row of the reference table
type Peptide struct {
	CNPDBID          int
	ID               string
	Sequence         string
	ActiveSequence   string
	Family           string
	Organism         string
	Tissue           string
	PTM              string
	Existence        string
	Topic            string
	Instrument       string
	Technique        string
	DOI              string
	InstabilityIndex string
	MSITissues       []string
	Numbers          map[NumericColumn]float64
	Extra            map[string]string
}

// Number returns the value of a numeric column, NaN when the cell was empty or not numeric
func (p Peptide) Number(column NumericColumn) float64 {
	if v, ok := p.Numbers[column]; ok {
		return v
	}
	return math.NaN()
}

// Categorical returns the raw cell value of a categorical column
func (p Peptide) Categorical(column CategoricalColumn) string {
	switch column {
	case FamilyColumn:
		return p.Family
	case OrganismColumn:
		return p.Organism
	case TissueColumn:
		return p.Tissue
	case PTMColumn:
		return p.PTM
	case ExistenceColumn:
		return p.Existence
	case TopicColumn:
		return p.Topic
	case InstrumentColumn:
		return p.Instrument
	case TechniqueColumn:
		return p.Technique
	}
	return ""
}

// DisplaySequence is the active sequence with modification annotations, or the raw one
func (p Peptide) DisplaySequence() string {
	if p.ActiveSequence != "" {
		return p.ActiveSequence
	}
	return p.Sequence
}

// FastaID is the record identifier used in FASTA exports
func (p Peptide) FastaID() string {
	return strings.TrimLeft(p.ID, ">")
}

// SplitMultiValue splits a cell holding several values separated by ';' or ','
func SplitMultiValue(cell string) []string {
	parts := strings.FieldsFunc(cell, func(r rune) bool { return r == ';' || r == ',' })
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			values = append(values, v)
		}
	}
	return values
}
