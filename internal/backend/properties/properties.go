package properties

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

var (
	ErrEmptySequence  = errors.New("please enter a peptide sequence")
	ErrInvalidResidue = errors.New("invalid amino acid residue")
)

// stableBelow is the instability index under which a peptide is predicted stable
const stableBelow = 40.0

// Properties are the physicochemical properties of one peptide
type Properties struct {
	Sequence           string  `json:"sequence"`
	Length             int     `json:"length"`
	MolecularWeight    float64 `json:"molecularWeight"`
	MonoisotopicMass   float64 `json:"monoisotopicMass"`
	Gravy              float64 `json:"gravy"`
	HydrophobicPercent float64 `json:"hydrophobicPercent"`
	InstabilityIndex   float64 `json:"instabilityIndex"`
	Stable             bool    `json:"stable"`
	IsoelectricPoint   float64 `json:"isoelectricPoint"`
	NetChargePH7       float64 `json:"netChargePH7"`
	AliphaticIndex     float64 `json:"aliphaticIndex"`
	BomanIndex         float64 `json:"bomanIndex"`
}

// StabilityLabel is "stable" or "unstable"
func (p Properties) StabilityLabel() string {
	if p.Stable {
		return "stable"
	}
	return "unstable"
}

// Normalize removes whitespace and upper-cases the input
func Normalize(sequence string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, sequence))
}

// Calculate computes all properties of a peptide given in one-letter code
func Calculate(sequence string) (Properties, error) {
	seq := Normalize(sequence)
	if seq == "" {
		return Properties{}, ErrEmptySequence
	}
	for i, r := range seq {
		if _, ok := averageResidueMass[r]; !ok {
			return Properties{}, fmt.Errorf("%w %q at position %d", ErrInvalidResidue, r, i+1)
		}
	}

	counts := make(map[rune]int, 20)
	for _, r := range seq {
		counts[r]++
	}
	length := len(seq)

	stability := InstabilityIndex(seq)
	return Properties{
		Sequence:           seq,
		Length:             length,
		MolecularWeight:    MolecularWeight(seq),
		MonoisotopicMass:   MonoisotopicMass(seq),
		Gravy:              Gravy(seq),
		HydrophobicPercent: hydrophobicPercent(counts, length),
		InstabilityIndex:   stability,
		Stable:             stability < stableBelow,
		IsoelectricPoint:   IsoelectricPoint(seq),
		NetChargePH7:       ChargeAt(seq, 7.0),
		AliphaticIndex:     aliphaticIndex(counts, length),
		BomanIndex:         BomanIndex(seq),
	}, nil
}

// MolecularWeight is the average mass of the neutral peptide
func MolecularWeight(seq string) float64 {
	return sumOver(seq, averageResidueMass) + averageWater
}

// MonoisotopicMass is the monoisotopic mass of the neutral peptide
func MonoisotopicMass(seq string) float64 {
	return sumOver(seq, monoisotopicResidueMass) + monoisotopicWater
}

// Gravy is the grand average of hydropathy
func Gravy(seq string) float64 {
	if seq == "" {
		return 0
	}
	return sumOver(seq, kyteDoolittle) / float64(len(seq))
}

// BomanIndex is the negated mean solubility of the residues
func BomanIndex(seq string) float64 {
	if seq == "" {
		return 0
	}
	return -sumOver(seq, bomanScale) / float64(len(seq))
}

// InstabilityIndex sums dipeptide weights scaled by 10/length
func InstabilityIndex(seq string) float64 {
	if len(seq) < 2 {
		return 0
	}
	score := 0.0
	for i := 0; i < len(seq)-1; i++ {
		score += diwv[rune(seq[i])][rune(seq[i+1])]
	}
	return 10.0 / float64(len(seq)) * score
}

// ChargeAt is the net charge of the peptide at the given pH
func ChargeAt(seq string, pH float64) float64 {
	if seq == "" {
		return 0
	}
	nTerm, ok := nTerminalPK[rune(seq[0])]
	if !ok {
		nTerm = defaultNTerminalPK
	}
	cTerm, ok := cTerminalPK[rune(seq[len(seq)-1])]
	if !ok {
		cTerm = defaultCTerminalPK
	}

	positive := partialPositive(nTerm, pH)
	negative := partialNegative(cTerm, pH)
	for _, r := range seq {
		if pk, ok := positivePK[r]; ok {
			positive += partialPositive(pk, pH)
		}
		if pk, ok := negativePK[r]; ok {
			negative += partialNegative(pk, pH)
		}
	}
	return positive - negative
}

// IsoelectricPoint finds the pH of zero net charge by bisection
func IsoelectricPoint(seq string) float64 {
	low, high := 0.0, 14.0
	pH := 7.0
	for i := 0; i < 200; i++ {
		pH = (low + high) / 2
		charge := ChargeAt(seq, pH)
		if math.Abs(charge) < 1e-4 {
			break
		}
		if charge > 0 {
			low = pH
		} else {
			high = pH
		}
	}
	return pH
}

func partialPositive(pk, pH float64) float64 {
	ratio := math.Pow(10, pk-pH)
	return ratio / (ratio + 1)
}

func partialNegative(pk, pH float64) float64 {
	ratio := math.Pow(10, pH-pk)
	return ratio / (ratio + 1)
}

func hydrophobicPercent(counts map[rune]int, length int) float64 {
	if length == 0 {
		return 0
	}
	n := 0
	for r, c := range counts {
		if hydrophobicResidues[r] {
			n += c
		}
	}
	return float64(n) / float64(length) * 100
}

// aliphaticIndex is 100 * (xA + 2.9 xV + 3.9 (xI + xL)) with mole fractions x
func aliphaticIndex(counts map[rune]int, length int) float64 {
	if length == 0 {
		return 0
	}
	frac := func(r rune) float64 { return float64(counts[r]) / float64(length) }
	return 100 * (frac('A') + 2.9*frac('V') + 3.9*(frac('I')+frac('L')))
}

func sumOver(seq string, scale map[rune]float64) float64 {
	total := 0.0
	for _, r := range seq {
		total += scale[r]
	}
	return total
}
