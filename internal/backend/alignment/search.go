package alignment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"github.com/jo-hoe/cnpdb/internal/backend/preprocess"
	"github.com/jo-hoe/cnpdb/internal/backend/reference"
)

// Constants of the pseudo-E-value. It ranks hits and is not a calibrated statistic.
const (
	PseudoK      = 0.041
	PseudoLambda = 0.267
)

// ReferenceSet is the table a query is scanned against
type ReferenceSet interface {
	Len() int
	At(i int) reference.Peptide
	LookupBySequence(sequence string) (reference.Peptide, bool)
}

// Hit is one reference peptide that passed the E-value threshold
type Hit struct {
	Rank      int               `json:"rank"`
	Index     int               `json:"index"`
	Peptide   reference.Peptide `json:"-"`
	ID        string            `json:"id"`
	Sequence  string            `json:"sequence"`
	Family    string            `json:"family"`
	Organism  string            `json:"organism"`
	Tissue    string            `json:"tissue"`
	EValue    float64           `json:"eValue"`
	Alignment Alignment         `json:"alignment"`
}

// Result of a database scan. No hits is a valid, empty result.
type Result struct {
	Query   string `json:"query"`
	Params  Params `json:"params"`
	Scanned int    `json:"scanned"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
	Hits    []Hit  `json:"hits"`
}

// Empty reports whether no reference passed the threshold
func (r Result) Empty() bool { return len(r.Hits) == 0 }

// PseudoEValue is K * m * (i+1) * exp(-lambda * S) for query length m,
// scan index i and raw score S
func PseudoEValue(queryLength, index, score int) float64 {
	return PseudoK * float64(queryLength) * float64(index+1) * math.Exp(-PseudoLambda*float64(score))
}

// Searcher scans reference sets with a fixed number of workers
type Searcher struct {
	workers int
}

// NewSearcher creates a searcher; workers <= 0 uses GOMAXPROCS
func NewSearcher(workers int) *Searcher {
	return &Searcher{workers: workers}
}

// Search scans refs with the default searcher
func Search(ctx context.Context, query string, refs ReferenceSet, params Params) (Result, error) {
	return NewSearcher(0).Search(ctx, query, refs, params)
}

// ValidateQuery rejects a query with residues outside the protein alphabet
func ValidateQuery(query string) error {
	if _, err := newProteinSeq("query", query); err != nil {
		return err
	}
	return nil
}

// Search aligns the cleaned query against every row of refs and ranks the hits by raw
// score. Rows that fail to align are skipped. The output does not depend on worker count.
func (s *Searcher) Search(ctx context.Context, query string, refs ReferenceSet, params Params) (Result, error) {
	if query == "" {
		return Result{}, preprocess.ErrEmptyQuery
	}
	if err := ValidateQuery(query); err != nil {
		return Result{}, err
	}
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	n := refs.Len()
	slots := make([]*Hit, n)
	var skipped, failed atomic.Int64

	err := parallelFor(ctx, n, s.workers, func(i int) {
		p := refs.At(i)
		if len(query) < params.WordSize || len(p.Sequence) < params.WordSize {
			skipped.Add(1)
			return
		}
		aln, err := Align(query, p.Sequence, params)
		if err != nil {
			failed.Add(1)
			slog.Debug("alignment skipped", "index", i, "cnpdb_id", p.CNPDBID, "error", err)
			return
		}
		if aln.Length == 0 {
			return
		}
		e := PseudoEValue(len(query), i, aln.Score)
		if e > params.Threshold {
			return
		}
		slots[i] = newHit(i, p, aln, e, refs)
	})
	if err != nil {
		return Result{}, fmt.Errorf("search cancelled: %w", err)
	}

	hits := make([]Hit, 0)
	for _, h := range slots {
		if h != nil {
			hits = append(hits, *h)
		}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return b.Alignment.Score - a.Alignment.Score
	})
	if len(hits) > params.TopN {
		hits = hits[:params.TopN]
	}
	for i := range hits {
		hits[i].Rank = i + 1
	}

	result := Result{
		Query:   query,
		Params:  params,
		Scanned: n,
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
		Hits:    hits,
	}
	slog.Info("search completed",
		"query_length", len(query),
		"scanned", result.Scanned,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"hits", len(hits),
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// newHit joins metadata by exact sequence match, falling back to the scanned row
func newHit(index int, scanned reference.Peptide, aln Alignment, e float64, refs ReferenceSet) *Hit {
	meta, ok := refs.LookupBySequence(scanned.Sequence)
	if !ok {
		meta = scanned
	}
	return &Hit{
		Index:     index,
		Peptide:   scanned,
		ID:        scanned.FastaID(),
		Sequence:  scanned.Sequence,
		Family:    meta.Family,
		Organism:  meta.Organism,
		Tissue:    meta.Tissue,
		EValue:    e,
		Alignment: aln,
	}
}
