package reference

import (
	"slices"
	"sort"
)

// Table is the in-memory curated reference set. It is never mutated after construction.
type Table struct {
	source     string
	version    string
	rows       []Peptide
	bySequence map[string]int
	byID       map[int]int
}

// NewTable indexes the given rows. The first row wins when sequences or IDs repeat.
func NewTable(source string, rows []Peptide) *Table {
	table := &Table{
		source:     source,
		rows:       rows,
		bySequence: make(map[string]int, len(rows)),
		byID:       make(map[int]int, len(rows)),
	}
	for i, row := range rows {
		if _, seen := table.bySequence[row.Sequence]; !seen && row.Sequence != "" {
			table.bySequence[row.Sequence] = i
		}
		if _, seen := table.byID[row.CNPDBID]; !seen && row.CNPDBID > 0 {
			table.byID[row.CNPDBID] = i
		}
	}
	return table
}

// Source is the path the table was loaded from, empty for tables built in memory
func (t *Table) Source() string { return t.source }

// Version identifies the file state the table was loaded from. It changes whenever the
// loader reloads a modified file and is empty for tables built in memory.
func (t *Table) Version() string { return t.version }

// Len returns the number of rows
func (t *Table) Len() int { return len(t.rows) }

// At returns the row at scan position i
func (t *Table) At(i int) Peptide { return t.rows[i] }

// Rows returns a copy of all rows in scan order
func (t *Table) Rows() []Peptide { return slices.Clone(t.rows) }

// ByID returns the row with the given cNPDB ID
func (t *Table) ByID(id int) (Peptide, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Peptide{}, false
	}
	return t.rows[i], true
}

// Select returns the rows for the given cNPDB IDs in request order, skipping unknown IDs
func (t *Table) Select(ids []int) []Peptide {
	selected := make([]Peptide, 0, len(ids))
	for _, id := range ids {
		if row, ok := t.ByID(id); ok {
			selected = append(selected, row)
		}
	}
	return selected
}

// LookupBySequence joins on exact raw sequence equality
func (t *Table) LookupBySequence(sequence string) (Peptide, bool) {
	i, ok := t.bySequence[sequence]
	if !ok {
		return Peptide{}, false
	}
	return t.rows[i], true
}

// UniqueValues returns the sorted distinct values of a categorical column.
// Family cells are taken whole; every other column is split on ';' and ','.
func (t *Table) UniqueValues(column CategoricalColumn) []string {
	seen := make(map[string]struct{})
	for _, row := range t.rows {
		cell := row.Categorical(column)
		if column == FamilyColumn {
			if cell != "" {
				seen[cell] = struct{}{}
			}
			continue
		}
		for _, v := range SplitMultiValue(cell) {
			seen[v] = struct{}{}
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// CountBy counts rows per value of a categorical column, splitting multi-value cells
func (t *Table) CountBy(column CategoricalColumn) map[string]int {
	counts := make(map[string]int)
	for _, row := range t.rows {
		for _, v := range SplitMultiValue(row.Categorical(column)) {
			counts[v]++
		}
	}
	return counts
}
