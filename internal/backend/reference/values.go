package reference

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Field names of a filter in query strings and html forms
var (
	CategoricalKeys = map[CategoricalColumn]string{
		FamilyColumn:     "family",
		OrganismColumn:   "organism",
		TissueColumn:     "tissue",
		PTMColumn:        "ptm",
		ExistenceColumn:  "existence",
		TopicColumn:      "topic",
		InstrumentColumn: "instrument",
		TechniqueColumn:  "technique",
	}
	NumericKeys = map[NumericColumn]string{
		MonoisotopicMass:   "mass",
		Length:             "length",
		Gravy:              "gravy",
		HydrophobicPercent: "hydrophobic",
		InstabilityValue:   "instability",
		IsoelectricPoint:   "pi",
		NetCharge:          "charge",
		AliphaticIndex:     "aliphatic",
		BomanIndex:         "boman",
	}
)

const (
	sequenceKey = "seq"
	minSuffix   = "_min"
	maxSuffix   = "_max"
)

// FilterFromValues parses a filter. "seq" holds space-separated fragments, categorical
// keys may repeat, and numeric bounds are given as <key>_min and <key>_max.
func FilterFromValues(values url.Values) (Filter, error) {
	f := Filter{
		Categorical: make(map[CategoricalColumn][]string),
		Ranges:      make(map[NumericColumn]Range),
	}
	for _, raw := range values[sequenceKey] {
		for _, fragment := range strings.Fields(raw) {
			f.Sequences = append(f.Sequences, strings.ToUpper(fragment))
		}
	}
	for column, key := range CategoricalKeys {
		for _, v := range values[key] {
			if v = strings.TrimSpace(v); v != "" {
				f.Categorical[column] = append(f.Categorical[column], v)
			}
		}
	}
	for column, key := range NumericKeys {
		r := DefaultRanges[column]
		changed := false
		for suffix, bound := range map[string]*float64{minSuffix: &r.Min, maxSuffix: &r.Max} {
			raw := strings.TrimSpace(values.Get(key + suffix))
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return Filter{}, fmt.Errorf("invalid %s%s %q: %w", key, suffix, raw, err)
			}
			*bound = v
			changed = true
		}
		if r.Min > r.Max {
			return Filter{}, fmt.Errorf("invalid %s range: min %g above max %g", key, r.Min, r.Max)
		}
		if changed {
			f.Ranges[column] = r
		}
	}
	return f, nil
}
