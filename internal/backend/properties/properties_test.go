package properties

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestCalculate_Glycine(t *testing.T) {
	props, err := Calculate("G")
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	if !almostEqual(props.MonoisotopicMass, 75.03202, 1e-4) {
		t.Errorf("MonoisotopicMass = %v, want 75.03202", props.MonoisotopicMass)
	}
	if !almostEqual(props.MolecularWeight, 75.0672, 1e-3) {
		t.Errorf("MolecularWeight = %v, want 75.0672", props.MolecularWeight)
	}
	if props.InstabilityIndex != 0 {
		t.Errorf("InstabilityIndex of a single residue = %v, want 0", props.InstabilityIndex)
	}
	if !props.Stable || props.StabilityLabel() != "stable" {
		t.Errorf("single residue should be stable")
	}
}

func TestCalculate_Normalizes(t *testing.T) {
	props, err := Calculate(" fdaf ttgf\nghn ")
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	if props.Sequence != "FDAFTTGFGHN" || props.Length != 11 {
		t.Errorf("Sequence/Length = %q/%d", props.Sequence, props.Length)
	}
	// 4 of 11 residues (F, A, F, F) are hydrophobic
	if !almostEqual(props.HydrophobicPercent, 400.0/11.0, 1e-9) {
		t.Errorf("HydrophobicPercent = %v", props.HydrophobicPercent)
	}
}

func TestCalculate_Errors(t *testing.T) {
	if _, err := Calculate("  \n"); !errors.Is(err, ErrEmptySequence) {
		t.Errorf("empty input error = %v, want ErrEmptySequence", err)
	}
	if _, err := Calculate("FDAXB"); !errors.Is(err, ErrInvalidResidue) {
		t.Errorf("invalid residue error = %v, want ErrInvalidResidue", err)
	}
}

func TestGravy(t *testing.T) {
	if got := Gravy("IV"); !almostEqual(got, 4.35, 1e-9) {
		t.Errorf("Gravy(IV) = %v, want 4.35", got)
	}
	if got := Gravy("RK"); !almostEqual(got, -4.2, 1e-9) {
		t.Errorf("Gravy(RK) = %v, want -4.2", got)
	}
}

func TestAliphaticIndex(t *testing.T) {
	props, err := Calculate("AVIL")
	if err != nil {
		t.Fatalf("Calculate error: %v", err)
	}
	// 100 * (0.25 + 2.9*0.25 + 3.9*0.5)
	if !almostEqual(props.AliphaticIndex, 292.5, 1e-9) {
		t.Errorf("AliphaticIndex = %v, want 292.5", props.AliphaticIndex)
	}
}

func TestBomanIndex(t *testing.T) {
	if got := BomanIndex("LL"); !almostEqual(got, -4.92, 1e-9) {
		t.Errorf("BomanIndex(LL) = %v, want -4.92", got)
	}
	if got := BomanIndex("RD"); !almostEqual(got, 11.82, 1e-9) {
		t.Errorf("BomanIndex(RD) = %v, want 11.82", got)
	}
}

func TestInstabilityIndex(t *testing.T) {
	// diwv[W][A] = -14.03, scaled by 10/2
	if got := InstabilityIndex("WA"); !almostEqual(got, -70.15, 1e-9) {
		t.Errorf("InstabilityIndex(WA) = %v, want -70.15", got)
	}
}

func TestChargeAndIsoelectricPoint(t *testing.T) {
	basic := "KKRKR"
	acidic := "DDEED"

	if ChargeAt(basic, 7.0) <= 0 {
		t.Errorf("basic peptide should be positive at pH 7")
	}
	if ChargeAt(acidic, 7.0) >= 0 {
		t.Errorf("acidic peptide should be negative at pH 7")
	}
	if IsoelectricPoint(basic) <= IsoelectricPoint(acidic) {
		t.Errorf("pI(basic) = %v <= pI(acidic) = %v", IsoelectricPoint(basic), IsoelectricPoint(acidic))
	}

	pI := IsoelectricPoint("FDAFTTGFGHN")
	if charge := ChargeAt("FDAFTTGFGHN", pI); math.Abs(charge) > 1e-3 {
		t.Errorf("charge at pI = %v, want ~0", charge)
	}
}
