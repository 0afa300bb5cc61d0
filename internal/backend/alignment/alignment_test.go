package alignment

import (
	"bytes"
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jo-hoe/cnpdb/internal/backend/preprocess"
	"github.com/jo-hoe/cnpdb/internal/backend/reference"
)

func testTable() *reference.Table {
	rows := []reference.Peptide{
		{CNPDBID: 1, ID: ">cNP1", Sequence: "GYRKPPFNGSIF", Family: "Allatostatin", Organism: "Cancer borealis", Tissue: "Brain"},
		{CNPDBID: 2, ID: ">cNP2", Sequence: "AG", Family: "Short"},
		{CNPDBID: 3, ID: ">cNP3", Sequence: "FDAFTTGFGHS", Family: "FLRFamide", Organism: "Homarus americanus"},
		{CNPDBID: 4, ID: ">cNP4", Sequence: "FDAFTTGFGHN", Family: "Orcokinin", Organism: "Cancer borealis", Tissue: "STG"},
		{CNPDBID: 5, ID: ">cNP5", Sequence: "NFDEIDRSGFGFN", Family: "Orcokinin", Organism: "Callinectes sapidus"},
		{CNPDBID: 6, ID: ">cNP6", Sequence: "PFCNAFTGC", Family: "CCAP"},
	}
	return reference.NewTable("test", rows)
}

func TestAlign_IdenticalSequences(t *testing.T) {
	aln, err := Align("FDAFTTGFGHN", "FDAFTTGFGHN", DefaultParams())
	if err != nil {
		t.Fatalf("Align error: %v", err)
	}
	if !aln.Exact() {
		t.Errorf("expected exact alignment, got %+v", aln)
	}
	if aln.Score <= 0 {
		t.Errorf("Score = %d, want positive", aln.Score)
	}
	if aln.MatchRow != strings.Repeat("|", 11) {
		t.Errorf("MatchRow = %q", aln.MatchRow)
	}
	if aln.QueryStart != 1 || aln.QueryEnd != 11 {
		t.Errorf("query coordinates = %d-%d, want 1-11", aln.QueryStart, aln.QueryEnd)
	}
	if aln.Identity() != 100 || aln.Similarity() != 100 {
		t.Errorf("Identity/Similarity = %v/%v", aln.Identity(), aln.Similarity())
	}
}

func TestAlign_Modes(t *testing.T) {
	for _, mode := range []Mode{ModeLocal, ModeGlobal} {
		for _, matrix := range Matrices {
			t.Run(string(mode)+"/"+matrix, func(t *testing.T) {
				params := DefaultParams()
				params.Mode = mode
				params.Matrix = matrix
				aln, err := Align("FDAFTTGFGHN", "FDAFTTGFGHS", params)
				if err != nil {
					t.Fatalf("Align error: %v", err)
				}
				if aln.Identities < 10 {
					t.Errorf("Identities = %d, want >= 10", aln.Identities)
				}
				if len(aln.MatchRow) != aln.Length || len(aln.QueryRow) != aln.Length {
					t.Errorf("row lengths differ: %+v", aln)
				}
			})
		}
	}
}

func TestAlign_InvalidResidue(t *testing.T) {
	if _, err := Align("FD1AF", "FDAF", DefaultParams()); !errors.Is(err, ErrInvalidSequence) {
		t.Errorf("error = %v, want ErrInvalidSequence", err)
	}
	if _, err := Align("FDAF", "FD-AF", DefaultParams()); !errors.Is(err, ErrInvalidSequence) {
		t.Errorf("gap in input: error = %v, want ErrInvalidSequence", err)
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
		valid  bool
	}{
		{"defaults", func(p *Params) {}, true},
		{"global", func(p *Params) { p.Mode = ModeGlobal }, true},
		{"lowercase matrix", func(p *Params) { p.Matrix = "pam30" }, true},
		{"unknown mode", func(p *Params) { p.Mode = "semi" }, false},
		{"unknown matrix", func(p *Params) { p.Matrix = "BLOSUM99" }, false},
		{"negative gap", func(p *Params) { p.GapOpen = -1 }, false},
		{"zero word size", func(p *Params) { p.WordSize = 0 }, false},
		{"zero threshold", func(p *Params) { p.Threshold = 0 }, false},
		{"top 7", func(p *Params) { p.TopN = 7 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			err := p.Validate()
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("error = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestParams_WithDefaults(t *testing.T) {
	if got := (Params{}).WithDefaults(); !reflect.DeepEqual(got, DefaultParams()) {
		t.Errorf("WithDefaults() = %+v, want %+v", got, DefaultParams())
	}
	got := Params{TopN: 20, Matrix: MatrixPAM70}.WithDefaults()
	if got.TopN != 20 || got.Matrix != MatrixPAM70 || got.WordSize != 3 {
		t.Errorf("WithDefaults() overwrote fields: %+v", got)
	}
	if got.GapOpen != 0 || got.GapExtend != 0 {
		t.Errorf("zero gap penalties with a chosen matrix were replaced: %+v", got)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("zero gap penalties rejected: %v", err)
	}
	if _, err := Align("FDAFTTGFGHN", "FDAFGHN", got); err != nil {
		t.Errorf("Align with zero gap penalties: %v", err)
	}
}

func TestPseudoEValue(t *testing.T) {
	got := PseudoEValue(11, 0, 0)
	if math.Abs(got-0.041*11) > 1e-12 {
		t.Errorf("PseudoEValue(11, 0, 0) = %v", got)
	}
	if PseudoEValue(11, 3, 50) >= PseudoEValue(11, 3, 40) {
		t.Errorf("higher score should give lower E-value")
	}
	if PseudoEValue(11, 100, 40) <= PseudoEValue(11, 0, 40) {
		t.Errorf("later scan index should give higher E-value")
	}
}

func TestSearch_ExactTopHit(t *testing.T) {
	table := testTable()
	params := DefaultParams()
	result, err := Search(context.Background(), "FDAFTTGFGHN", table, params)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if result.Empty() {
		t.Fatal("expected hits")
	}
	top := result.Hits[0]
	if top.Sequence != "FDAFTTGFGHN" || !top.Alignment.Exact() || top.Alignment.Mismatches != 0 {
		t.Errorf("top hit = %+v", top)
	}
	if top.Family != "Orcokinin" || top.Tissue != "STG" || top.ID != "cNP4" {
		t.Errorf("metadata not joined: %+v", top)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1 (reference shorter than word size)", result.Skipped)
	}
}

func TestSearch_Invariants(t *testing.T) {
	table := testTable()
	for _, topN := range TopNChoices {
		for _, threshold := range []float64{1e-6, 1, 10, 1000} {
			params := DefaultParams()
			params.TopN = topN
			params.Threshold = threshold
			result, err := Search(context.Background(), "FDAFTTGFGHNGSIF", table, params)
			if err != nil {
				t.Fatalf("Search error: %v", err)
			}
			if len(result.Hits) > min(topN, table.Len()) {
				t.Errorf("topN %d: %d hits", topN, len(result.Hits))
			}
			for i, hit := range result.Hits {
				if hit.EValue > threshold {
					t.Errorf("hit %d E-value %v above threshold %v", i, hit.EValue, threshold)
				}
				if hit.Rank != i+1 {
					t.Errorf("hit %d has rank %d", i, hit.Rank)
				}
				if i > 0 && hit.Alignment.Score > result.Hits[i-1].Alignment.Score {
					t.Errorf("hits not ordered by score at %d", i)
				}
			}
		}
	}
}

func TestSearch_NoHitsIsNotAnError(t *testing.T) {
	params := DefaultParams()
	params.Threshold = 1e-300
	result, err := Search(context.Background(), "WWWWWWWW", testTable(), params)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if !result.Empty() {
		t.Errorf("expected no hits, got %d", len(result.Hits))
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	_, err := Search(context.Background(), "", testTable(), DefaultParams())
	if !errors.Is(err, preprocess.ErrEmptyQuery) {
		t.Errorf("error = %v, want ErrEmptyQuery", err)
	}
}

func TestSearch_InvalidQueryAbortsBeforeScan(t *testing.T) {
	for _, query := range []string{"HELLO123", "FDAF-TTG", "FDAF TTG"} {
		result, err := Search(context.Background(), query, testTable(), DefaultParams())
		if !errors.Is(err, ErrInvalidSequence) {
			t.Errorf("Search(%q) error = %v, want ErrInvalidSequence", query, err)
		}
		if result.Scanned != 0 || result.Failed != 0 {
			t.Errorf("Search(%q) scanned the table: %+v", query, result)
		}
	}
}

func TestSearch_InvalidReferenceRowIsSkipped(t *testing.T) {
	table := reference.NewTable("test", []reference.Peptide{
		{CNPDBID: 1, ID: "cNP1", Sequence: "FDA1FTTG"},
		{CNPDBID: 2, ID: "cNP2", Sequence: "FDAFTTGFGHN"},
	})
	result, err := Search(context.Background(), "FDAFTTGFGHN", table, DefaultParams())
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if result.Failed != 1 || len(result.Hits) != 1 || result.Hits[0].ID != "cNP2" {
		t.Errorf("result = %+v", result)
	}
}

func TestSearch_WorkerCountDoesNotChangeResult(t *testing.T) {
	table := testTable()
	sequential, err := NewSearcher(1).Search(context.Background(), "FDAFTTGF", table, DefaultParams())
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	concurrent, err := NewSearcher(4).Search(context.Background(), "FDAFTTGF", table, DefaultParams())
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if !reflect.DeepEqual(sequential.Hits, concurrent.Hits) {
		t.Errorf("results differ between 1 and 4 workers")
	}
}

func TestSearch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Search(ctx, "FDAFTTGFGHN", testTable(), DefaultParams()); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestParallelFor_VisitsEveryIndexOnce(t *testing.T) {
	const n = 1000
	var visits [n]atomic.Int32
	if err := parallelFor(context.Background(), n, 0, func(i int) { visits[i].Add(1) }); err != nil {
		t.Fatalf("parallelFor error: %v", err)
	}
	for i := range visits {
		if got := visits[i].Load(); got != 1 {
			t.Fatalf("index %d visited %d times", i, got)
		}
	}
}

func TestWriteReport(t *testing.T) {
	result, err := Search(context.Background(), "FDAFTTGFGHN", testTable(), DefaultParams())
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, result); err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	report := buf.String()
	for _, want := range []string{"Query (11 aa): FDAFTTGFGHN", "Matrix: BLOSUM62", "#1 cNP4", "Orcokinin", "|||||||||||"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}

	buf.Reset()
	if err := WriteReport(&buf, Result{Query: "WW", Params: DefaultParams()}); err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	if !strings.Contains(buf.String(), "No hits found.") {
		t.Errorf("empty report = %q", buf.String())
	}
}
