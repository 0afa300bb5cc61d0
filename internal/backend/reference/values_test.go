package reference

import (
	"net/url"
	"testing"
)

func TestFilterFromValues(t *testing.T) {
	values := url.Values{
		"seq":      {"fdaf  gfgh"},
		"family":   {"Orcokinin", " "},
		"tissue":   {"Brain", "STG"},
		"mass_min": {"1000"},
		"pi_max":   {"7.5"},
	}
	f, err := FilterFromValues(values)
	if err != nil {
		t.Fatalf("FilterFromValues error: %v", err)
	}
	if len(f.Sequences) != 2 || f.Sequences[0] != "FDAF" || f.Sequences[1] != "GFGH" {
		t.Errorf("Sequences = %v", f.Sequences)
	}
	if got := f.Categorical[FamilyColumn]; len(got) != 1 || got[0] != "Orcokinin" {
		t.Errorf("family = %v", got)
	}
	if got := f.Categorical[TissueColumn]; len(got) != 2 {
		t.Errorf("tissue = %v", got)
	}
	if got := f.RangeFor(MonoisotopicMass); got.Min != 1000 || got.Max != DefaultRanges[MonoisotopicMass].Max {
		t.Errorf("mass range = %+v", got)
	}
	if got := f.RangeFor(IsoelectricPoint); got.Max != 7.5 || got.Min != 0 {
		t.Errorf("pI range = %+v", got)
	}
	if _, ok := f.Ranges[Gravy]; ok {
		t.Error("untouched range should not be set")
	}
}

func TestFilterFromValues_Errors(t *testing.T) {
	tests := []url.Values{
		{"mass_min": {"heavy"}},
		{"length_min": {"50"}, "length_max": {"10"}},
	}
	for _, values := range tests {
		if _, err := FilterFromValues(values); err == nil {
			t.Errorf("FilterFromValues(%v) expected error", values)
		}
	}
}
