package reference

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// SelectedSheet is the sheet name of spreadsheet exports
const SelectedSheet = "Selected"

// WriteFASTA writes one ">ID\nSequence" record per peptide
func WriteFASTA(w io.Writer, peptides []Peptide) error {
	bw := bufio.NewWriter(w)
	for _, p := range peptides {
		if _, err := fmt.Fprintf(bw, ">%s\n%s\n", p.FastaID(), p.Sequence); err != nil {
			return fmt.Errorf("failed to write fasta record %s: %w", p.ID, err)
		}
	}
	return bw.Flush()
}

var exportTextColumns = []string{
	"cNPDB ID", "ID", "Sequence", "Active Sequence", "Family", "OS", "Tissue", "PTM",
	"Existence", "Topic", "Instrument", "Technique", "DOI", "Instability Index",
}

func exportTextValues(p Peptide) []any {
	return []any{
		p.CNPDBID, p.ID, p.Sequence, p.ActiveSequence, p.Family, p.Organism, p.Tissue, p.PTM,
		p.Existence, p.Topic, p.Instrument, p.Technique, p.DOI, p.InstabilityIndex,
	}
}

// WriteXLSX writes the peptides as a single-sheet workbook
func WriteXLSX(w io.Writer, peptides []Peptide) error {
	workbook := excelize.NewFile()
	defer func() {
		_ = workbook.Close()
	}()

	if err := workbook.SetSheetName(workbook.GetSheetName(0), SelectedSheet); err != nil {
		return fmt.Errorf("failed to name export sheet: %w", err)
	}

	header := make([]any, 0, len(exportTextColumns)+len(NumericColumns))
	for _, name := range exportTextColumns {
		header = append(header, name)
	}
	for _, column := range NumericColumns {
		header = append(header, string(column))
	}
	if err := workbook.SetSheetRow(SelectedSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for i, p := range peptides {
		row := exportTextValues(p)
		for _, column := range NumericColumns {
			if v := p.Number(column); !math.IsNaN(v) {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := workbook.SetSheetRow(SelectedSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write export row %d: %w", i+2, err)
		}
	}

	if _, err := workbook.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// assetFile maps a file under the assets directory to its place inside the zip
type assetFile struct {
	source  string
	archive string
}

func assetFiles(assetsDir string, p Peptide) []assetFile {
	cif := fmt.Sprintf("3D cNP%d.cif", p.CNPDBID)
	pdb := fmt.Sprintf("3D Meta cNP%d.pdb", p.CNPDBID)
	files := []assetFile{
		{filepath.Join(assetsDir, "3D Structure", cif), "AlphaFold_3D_Structures/" + cif},
		{filepath.Join(assetsDir, "3D Structure", pdb), "ESMfold_3D_Structures/" + pdb},
	}
	for n := 1; n <= 3; n++ {
		msi := fmt.Sprintf("MSI cNP%d %d.jpeg", p.CNPDBID, n)
		files = append(files, assetFile{filepath.Join(assetsDir, "MSImaging", msi), "MSI_Images/" + msi})
	}
	return files
}

// WriteAssetsZip bundles the structure and imaging files that exist for the peptides.
// Missing files are skipped. It returns the number of files added.
func WriteAssetsZip(w io.Writer, assetsDir string, peptides []Peptide) (int, error) {
	archive := zip.NewWriter(w)
	added := 0

	for _, p := range peptides {
		for _, asset := range assetFiles(assetsDir, p) {
			ok, err := addZipFile(archive, asset)
			if err != nil {
				_ = archive.Close()
				return added, err
			}
			if ok {
				added++
			}
		}
	}

	if err := archive.Close(); err != nil {
		return added, fmt.Errorf("failed to finish zip archive: %w", err)
	}
	return added, nil
}

func addZipFile(archive *zip.Writer, asset assetFile) (bool, error) {
	src, err := os.Open(asset.source)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open asset %s: %w", asset.source, err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Warn("failed to close asset", "path", asset.source, "error", cerr)
		}
	}()

	dst, err := archive.Create(asset.archive)
	if err != nil {
		return false, fmt.Errorf("failed to add %s to zip: %w", asset.archive, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return false, fmt.Errorf("failed to copy %s into zip: %w", asset.source, err)
	}
	return true, nil
}
