package alignment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/biogo/biogo/align"
	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/feat"
	"github.com/biogo/biogo/seq/linear"
)

var (
	ErrInvalidSequence = errors.New("invalid protein sequence")
	ErrAlignment       = errors.New("alignment failed")
)

const gapLetter = '-'

// Alignment is the outcome of one pairwise alignment
type Alignment struct {
	Score        int    `json:"score"`
	QueryRow     string `json:"queryRow"`
	MatchRow     string `json:"matchRow"`
	ReferenceRow string `json:"referenceRow"`
	Length       int    `json:"length"`
	Identities   int    `json:"identities"`
	Positives    int    `json:"positives"`
	Mismatches   int    `json:"mismatches"`
	Gaps         int    `json:"gaps"`
	// 1-based inclusive coordinates, zero when nothing aligned
	QueryStart     int `json:"queryStart"`
	QueryEnd       int `json:"queryEnd"`
	ReferenceStart int `json:"referenceStart"`
	ReferenceEnd   int `json:"referenceEnd"`
}

// Identity is the percentage of identical columns
func (a Alignment) Identity() float64 { return percent(a.Identities, a.Length) }

// Similarity is the percentage of identical or positively scoring columns
func (a Alignment) Similarity() float64 { return percent(a.Positives, a.Length) }

// Exact reports a gap-free alignment of identical residues
func (a Alignment) Exact() bool {
	return a.Length > 0 && a.Identities == a.Length
}

// Rows joins the three display rows with newlines
func (a Alignment) Rows() string {
	return a.QueryRow + "\n" + a.MatchRow + "\n" + a.ReferenceRow
}

type scorer interface {
	Score() int
}

type pairAligner interface {
	Align(reference, query align.AlphabetSlicer) ([]feat.Pair, error)
}

// Align aligns query against reference on the protein alphabet.
// Panics raised by the aligner are returned as ErrAlignment.
func Align(query, reference string, params Params) (result Alignment, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = Alignment{}
			err = fmt.Errorf("%w: %v", ErrAlignment, r)
		}
	}()

	q, err := newProteinSeq("query", query)
	if err != nil {
		return Alignment{}, err
	}
	r, err := newProteinSeq("reference", reference)
	if err != nil {
		return Alignment{}, err
	}

	scores := params.scoringMatrix()
	pairs, err := aligner(params, scores).Align(q, r)
	if err != nil {
		return Alignment{}, fmt.Errorf("%w: %v", ErrAlignment, err)
	}
	if len(pairs) == 0 {
		return Alignment{}, nil
	}

	for _, pair := range pairs {
		if s, ok := pair.(scorer); ok {
			result.Score += s.Score()
		}
	}

	first := pairs[0].Features()
	last := pairs[len(pairs)-1].Features()
	result.QueryStart = first[0].Start() + 1
	result.QueryEnd = last[0].End()
	result.ReferenceStart = first[1].Start() + 1
	result.ReferenceEnd = last[1].End()

	rows := align.Format(q, r, pairs, gapLetter)
	result.QueryRow = fmt.Sprint(rows[0])
	result.ReferenceRow = fmt.Sprint(rows[1])
	result.annotate(scores)
	return result, nil
}

func aligner(params Params, scores align.Linear) pairAligner {
	affine := params.GapOpen > 0
	switch {
	case params.Mode == ModeGlobal && affine:
		return align.NWAffine{Matrix: scores, GapOpen: -params.GapOpen}
	case params.Mode == ModeGlobal:
		return align.NW(scores)
	case affine:
		return align.SWAffine{Matrix: scores, GapOpen: -params.GapOpen}
	default:
		return align.SW(scores)
	}
}

// annotate builds the match row: '|' identical, ':' positive score, '.' mismatch, ' ' gap
func (a *Alignment) annotate(scores align.Linear) {
	var match strings.Builder
	n := min(len(a.QueryRow), len(a.ReferenceRow))
	for i := 0; i < n; i++ {
		qc, rc := a.QueryRow[i], a.ReferenceRow[i]
		switch {
		case qc == gapLetter || rc == gapLetter:
			a.Gaps++
			match.WriteByte(' ')
		case qc == rc:
			a.Identities++
			a.Positives++
			match.WriteByte('|')
		case substitution(scores, qc, rc) > 0:
			a.Positives++
			a.Mismatches++
			match.WriteByte(':')
		default:
			a.Mismatches++
			match.WriteByte('.')
		}
	}
	a.Length = n
	a.MatchRow = match.String()
}

func substitution(scores align.Linear, x, y byte) int {
	i := alphabet.Protein.IndexOf(alphabet.Letter(x))
	j := alphabet.Protein.IndexOf(alphabet.Letter(y))
	if i < 0 || j < 0 {
		return 0
	}
	return scores[i][j]
}

func newProteinSeq(id, sequence string) (*linear.Seq, error) {
	for i := 0; i < len(sequence); i++ {
		c := alphabet.Letter(sequence[i])
		if c == gapLetter || !alphabet.Protein.IsValid(c) {
			return nil, fmt.Errorf("%w: %s residue %q at position %d", ErrInvalidSequence, id, sequence[i], i+1)
		}
	}
	return linear.NewSeq(id, alphabet.BytesToLetters([]byte(sequence)), alphabet.Protein), nil
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
