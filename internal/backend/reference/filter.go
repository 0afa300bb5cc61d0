package reference

import (
	"math"
	"slices"
	"strings"
)

// Range is an inclusive numeric interval
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in the closed interval. NaN is never contained.
func (r Range) Contains(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	return v >= r.Min && v <= r.Max
}

// DefaultRanges are the slider bounds of the search page
var DefaultRanges = map[NumericColumn]Range{
	MonoisotopicMass:   {Min: 200, Max: 14000},
	Length:             {Min: 2, Max: 130},
	Gravy:              {Min: -5, Max: 5},
	HydrophobicPercent: {Min: -1, Max: 100},
	InstabilityValue:   {Min: -100, Max: 250},
	IsoelectricPoint:   {Min: 0, Max: 14},
	NetCharge:          {Min: -25, Max: 10},
	AliphaticIndex:     {Min: 0, Max: 390},
	BomanIndex:         {Min: -0.45, Max: 2.65},
}

// Filter selects reference rows. Empty fields do not constrain the result.
type Filter struct {
	// Sequences are fragments; a row matches when its sequence contains any of them
	Sequences []string
	// Categorical holds the selected values per column
	Categorical map[CategoricalColumn][]string
	// Ranges overrides DefaultRanges per column
	Ranges map[NumericColumn]Range
}

// RangeFor returns the effective range of a numeric column
func (f Filter) RangeFor(column NumericColumn) Range {
	if r, ok := f.Ranges[column]; ok {
		return r
	}
	return DefaultRanges[column]
}

func (f Filter) categoricalActive() bool {
	for _, selected := range f.Categorical {
		if len(selected) > 0 {
			return true
		}
	}
	return false
}

func (f Filter) rangesChanged() bool {
	for _, column := range NumericColumns {
		if f.RangeFor(column) != DefaultRanges[column] {
			return true
		}
	}
	return false
}

// applyRanges: sliders only constrain when moved, or when no categorical filter is set
func (f Filter) applyRanges() bool {
	return f.rangesChanged() || !f.categoricalActive()
}

// Matches reports whether a single row passes the filter
func (f Filter) Matches(p Peptide) bool {
	return f.matches(p, f.applyRanges())
}

func (f Filter) matches(p Peptide, withRanges bool) bool {
	if len(f.Sequences) > 0 && !containsAny(p.Sequence, f.Sequences) {
		return false
	}
	for column, selected := range f.Categorical {
		if len(selected) == 0 {
			continue
		}
		if !matchColumn(column, selected, p.Categorical(column)) {
			return false
		}
	}
	if withRanges {
		for _, column := range NumericColumns {
			if !f.RangeFor(column).Contains(p.Number(column)) {
				return false
			}
		}
	}
	return true
}

// Filter returns the rows matching f in scan order
func (t *Table) Filter(f Filter) []Peptide {
	withRanges := f.applyRanges()
	matched := make([]Peptide, 0)
	for _, row := range t.rows {
		if f.matches(row, withRanges) {
			matched = append(matched, row)
		}
	}
	return matched
}

// family and existence compare whole cells, others compare split values
func matchColumn(column CategoricalColumn, selected []string, cell string) bool {
	if column == FamilyColumn || column == ExistenceColumn {
		return slices.Contains(selected, strings.TrimSpace(cell))
	}
	values := SplitMultiValue(cell)
	for _, s := range selected {
		if slices.Contains(values, strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}

func containsAny(sequence string, fragments []string) bool {
	for _, fragment := range fragments {
		if fragment != "" && strings.Contains(sequence, fragment) {
			return true
		}
	}
	return false
}
