package alignment

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/biogo/biogo/align"
	"github.com/biogo/biogo/align/matrix"
	"github.com/biogo/biogo/alphabet"
)

// Mode selects local (Smith-Waterman) or global (Needleman-Wunsch) alignment
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeGlobal Mode = "global"
)

const (
	MatrixBLOSUM45 = "BLOSUM45"
	MatrixBLOSUM62 = "BLOSUM62"
	MatrixBLOSUM80 = "BLOSUM80"
	MatrixPAM30    = "PAM30"
	MatrixPAM70    = "PAM70"
	MatrixPAM250   = "PAM250"
	MatrixIdentity = "IDENTITY"
)

// Matrices lists the selectable substitution matrices in display order
var Matrices = []string{
	MatrixBLOSUM62, MatrixBLOSUM45, MatrixBLOSUM80,
	MatrixPAM30, MatrixPAM70, MatrixPAM250, MatrixIdentity,
}

// TopNChoices are the allowed result list sizes
var TopNChoices = []int{5, 10, 20}

var ErrInvalidParams = errors.New("invalid alignment parameters")

// Params configures a pairwise alignment and the database scan built on it.
// Gap penalties are positive and applied as negative scores.
type Params struct {
	Mode          Mode    `yaml:"mode" json:"mode"`
	Matrix        string  `yaml:"matrix" json:"matrix"`
	MatchScore    int     `yaml:"matchScore" json:"matchScore"`
	MismatchScore int     `yaml:"mismatchScore" json:"mismatchScore"`
	GapOpen       int     `yaml:"gapOpen" json:"gapOpen"`
	GapExtend     int     `yaml:"gapExtend" json:"gapExtend"`
	WordSize      int     `yaml:"wordSize" json:"wordSize"`
	Threshold     float64 `yaml:"threshold" json:"threshold"`
	TopN          int     `yaml:"topN" json:"topN"`
	LowComplexity bool    `yaml:"lowComplexity" json:"lowComplexity"`
}

// DefaultParams mirrors the defaults of the search form
func DefaultParams() Params {
	return Params{
		Mode:          ModeLocal,
		Matrix:        MatrixBLOSUM62,
		MatchScore:    2,
		MismatchScore: -1,
		GapOpen:       10,
		GapExtend:     1,
		WordSize:      3,
		Threshold:     10,
		TopN:          10,
	}
}

// WithDefaults fills zero fields from DefaultParams. Gap penalties are defaulted only
// together with the matrix, so zero penalties stay zero once a matrix is chosen.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.Mode == "" {
		p.Mode = d.Mode
	}
	if p.Matrix == "" {
		p.Matrix = d.Matrix
		if p.GapOpen == 0 && p.GapExtend == 0 {
			p.GapOpen, p.GapExtend = d.GapOpen, d.GapExtend
		}
	}
	if p.MatchScore == 0 && p.MismatchScore == 0 {
		p.MatchScore, p.MismatchScore = d.MatchScore, d.MismatchScore
	}
	if p.WordSize == 0 {
		p.WordSize = d.WordSize
	}
	if p.Threshold == 0 {
		p.Threshold = d.Threshold
	}
	if p.TopN == 0 {
		p.TopN = d.TopN
	}
	return p
}

// Validate reports every invalid field at once
func (p Params) Validate() error {
	var problems []string
	if p.Mode != ModeLocal && p.Mode != ModeGlobal {
		problems = append(problems, fmt.Sprintf("mode %q must be %q or %q", p.Mode, ModeLocal, ModeGlobal))
	}
	if !slices.Contains(Matrices, strings.ToUpper(p.Matrix)) {
		problems = append(problems, fmt.Sprintf("unknown matrix %q", p.Matrix))
	}
	if p.GapOpen < 0 || p.GapExtend < 0 {
		problems = append(problems, "gap penalties must not be negative")
	}
	if p.WordSize < 1 {
		problems = append(problems, "word size must be at least 1")
	}
	if p.Threshold <= 0 {
		problems = append(problems, "E-value threshold must be positive")
	}
	if !slices.Contains(TopNChoices, p.TopN) {
		problems = append(problems, fmt.Sprintf("top hits %d must be one of %v", p.TopN, TopNChoices))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(problems, "; "))
	}
	return nil
}

const gapIndex = 0

// scoringMatrix returns a private copy of the named matrix with the gap row and column
// set to the extension penalty. The gap letter sits at index 0 of alphabet.Protein.
func (p Params) scoringMatrix() align.Linear {
	var base [][]int
	switch strings.ToUpper(p.Matrix) {
	case MatrixBLOSUM45:
		base = matrix.BLOSUM45
	case MatrixBLOSUM80:
		base = matrix.BLOSUM80
	case MatrixPAM30:
		base = matrix.PAM30
	case MatrixPAM70:
		base = matrix.PAM70
	case MatrixPAM250:
		base = matrix.PAM250
	case MatrixIdentity:
		base = identityMatrix(p.MatchScore, p.MismatchScore)
	default:
		base = matrix.BLOSUM62
	}

	m := make(align.Linear, len(base))
	for i := range base {
		m[i] = slices.Clone(base[i])
	}
	for i := 1; i < len(m); i++ {
		m[i][gapIndex] = -p.GapExtend
		m[gapIndex][i] = -p.GapExtend
	}
	return m
}

func identityMatrix(match, mismatch int) [][]int {
	n := alphabet.Protein.Len()
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
		for j := range m[i] {
			if i == j {
				m[i][j] = match
			} else {
				m[i][j] = mismatch
			}
		}
	}
	return m
}
