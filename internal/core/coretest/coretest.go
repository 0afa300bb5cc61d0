// Package coretest provides a CoreService backed by a small on-disk reference table.
package coretest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jo-hoe/cnpdb/internal/core"
)

// SampleCSV is a five-row reference table
const SampleCSV = `cNPDB ID,ID,Sequence,Active Sequence,Family,OS,Tissue,PTM,Existence,Topic,Instrument,Technique,Monoisotopic Mass,Length,GRAVY,% Hydrophobic Residue,Instability Index Value,Isoelectric Point (pI),Net Charge (pH 7.0),Aliphatic Index,Boman Index
1,>cNP1,FDAFTTGFGHN,FDAFTTGFGHN,Orcokinin,Cancer borealis,STG; Brain,,MS,Discovery,Orbitrap,LC-MS/MS,1213.52,11,-0.29,36.36,1.2,5.2,-0.9,9.09,0.8
2,>cNP2,NFDEIDRSGFGFN,NFDEIDRSGFGFN,Orcokinin,Cancer borealis,Pericardial organ,,MS,Discovery,Orbitrap,LC-MS/MS,1515.66,13,-0.9,23.08,30.5,3.9,-2.0,30.0,2.1
3,>cNP3,GYRKPPFNGSIF,GYRKPPFNGSIFamide,Allatostatin B,Homarus americanus,Brain,Amidation,Predicted,Mapping,MALDI,MSI,1383.71,12,-0.6,33.3,20.1,10.0,1.9,32.5,1.3
4,>cNP4,PFCNAFTGC,PFCNAFTGCamide,CCAP,Callinectes sapidus,Brain,Amidation,MS,Quantitation,Orbitrap,LC-MS/MS,956.38,9,0.9,44.4,35.0,5.8,-0.1,10.9,0.2
5,>cNP5,AG,AG,Short,Carcinus maenas,Brain,,Predicted,Mapping,MALDI,MSI,146.07,2,0.4,50.0,0.0,6.0,0.0,50.0,0.1
`

// Config writes SampleCSV and an assets directory to a temporary directory and
// returns a configuration using an in-memory database and cache.
func Config(t testing.TB) *core.ServiceConfig {
	t.Helper()
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "cnpdb.csv")
	if err := os.WriteFile(tablePath, []byte(SampleCSV), 0o644); err != nil {
		t.Fatalf("failed to write reference table: %v", err)
	}
	assets := filepath.Join(dir, "assets", "3D Structure")
	if err := os.MkdirAll(assets, 0o755); err != nil {
		t.Fatalf("failed to create assets dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(assets, "3D cNP1.cif"), []byte("data_cNP1\n"), 0o644); err != nil {
		t.Fatalf("failed to write asset: %v", err)
	}

	config := &core.ServiceConfig{
		Reference: core.Reference{Path: tablePath, AssetsDir: filepath.Join(dir, "assets")},
	}
	config.ApplyDefaults()
	return config
}

// NewService creates a CoreService from Config and closes it when the test ends
func NewService(t testing.TB) *core.CoreService {
	t.Helper()
	return NewServiceWithConfig(t, Config(t))
}

func NewServiceWithConfig(t testing.TB, config *core.ServiceConfig) *core.CoreService {
	t.Helper()
	service, err := core.NewCoreService(config)
	if err != nil {
		t.Fatalf("NewCoreService error: %v", err)
	}
	t.Cleanup(func() { _ = service.Close() })
	return service
}
