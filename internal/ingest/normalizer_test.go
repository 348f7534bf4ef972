package ingest

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/molscreen/molscreen/internal/infrastructure/logging"
	"github.com/molscreen/molscreen/pkg/errors"
)

func TestFromText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "mixed delimiters and whitespace",
			raw:  "CCC, CCO\nCNC",
			want: []string{"CCC", "CCO", "CNC"},
		},
		{
			name: "leading and trailing noise",
			raw:  "  CCO \n\n , ,CC(=O)O,\r\n",
			want: []string{"CCO", "CC(=O)O"},
		},
		{
			name: "empty input",
			raw:  "   \n , ",
			want: []string{},
		},
		{
			name: "windows line endings",
			raw:  "CCO\r\nCCN\r\nCCC",
			want: []string{"CCO", "CCN", "CCC"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromText(tt.raw))
		})
	}
}

func TestValidate(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInputEmpty))
	assert.Contains(t, err.Error(), "no input provided")

	assert.NoError(t, Validate([]string{"CCO"}))

	exactly20 := make([]string, MaxCompounds)
	for i := range exactly20 {
		exactly20[i] = "CCO"
	}
	assert.NoError(t, Validate(exactly20))

	tooMany := append(exactly20, "CCC")
	err = Validate(tooMany)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInputTooManyCompounds))
	assert.Contains(t, err.Error(), "maximum 20")
	assert.Contains(t, err.Error(), "21")
}

func TestValidateExtension(t *testing.T) {
	assert.NoError(t, ValidateExtension("compounds.csv"))
	assert.NoError(t, ValidateExtension("Compounds.XLSX"))
	assert.NoError(t, ValidateExtension("legacy.xls"))

	err := ValidateExtension("notes.txt")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInputUnsupportedExtension))

	err = ValidateExtension("noextension")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInputUnsupportedExtension))
}

func TestFromFile_CSVWithHeader(t *testing.T) {
	n := NewNormalizer(logging.NewNopLogger())

	withHeader := "SMILES\nCCO\nCC(=O)O\nc1ccccc1\n"
	got, err := n.FromFile("input.csv", []byte(withHeader))
	require.NoError(t, err)
	assert.Equal(t, []string{"CCO", "CC(=O)O", "c1ccccc1"}, got)

	// The same rows without a header yield the same candidates.
	withoutHeader := "CCO\nCC(=O)O\nc1ccccc1\n"
	got, err = n.FromFile("input.csv", []byte(withoutHeader))
	require.NoError(t, err)
	assert.Equal(t, []string{"CCO", "CC(=O)O", "c1ccccc1"}, got)
}

func TestFromFile_HeaderVariants(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name   string
		csv    string
		want   []string
	}{
		{
			name: "compound header skipped",
			csv:  "Compound Name,Activity\nCCO,1\nCCN,0\n",
			want: []string{"CCO", "CCN"},
		},
		{
			name: "molecule header skipped case-insensitively",
			csv:  "MOLECULE\nCCO\nCCN\n",
			want: []string{"CCO", "CCN"},
		},
		{
			name: "long first cell is data, not header",
			csv:  strings.Repeat("C", 50) + "molecule\nCCO\n",
			want: []string{strings.Repeat("C", 50) + "molecule", "CCO"},
		},
		{
			name: "single row is never treated as a header",
			csv:  "CCO\n",
			want: []string{"CCO"},
		},
		{
			name: "stray header-like row beyond the first is dropped",
			csv:  "SMILES\nCCO\nsmiles_backup\nCCN\n",
			want: []string{"CCO", "CCN"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.FromFile("f.csv", []byte(tt.csv))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromFile_ShortCellsExcluded(t *testing.T) {
	n := NewNormalizer(nil)

	got, err := n.FromFile("f.csv", []byte("SMILES\nC\nCC\nCCO\n"))
	require.NoError(t, err)
	// "C" and "CC" are length <= 2 and dropped even though well-formed.
	assert.Equal(t, []string{"CCO"}, got)
}

func TestFromFile_BlankRowsFiltered(t *testing.T) {
	n := NewNormalizer(nil)

	got, err := n.FromFile("f.csv", []byte("SMILES\nCCO\n\n ,\nCCN\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"CCO", "CCN"}, got)
}

func TestFromFile_FirstColumnOnly(t *testing.T) {
	n := NewNormalizer(nil)

	got, err := n.FromFile("f.csv", []byte("SMILES,IC50\nCCO,42.5\nCCN,17\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"CCO", "CCN"}, got)
}

func TestFromFile_UnsupportedExtension(t *testing.T) {
	n := NewNormalizer(nil)

	_, err := n.FromFile("compounds.pdf", []byte("whatever"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInputUnsupportedExtension))
}

func TestFromFile_XLSXWorkbook(t *testing.T) {
	n := NewNormalizer(nil)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "SMILES"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Name"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "CCO"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "ethanol"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "c1ccccc1"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	got, err := n.FromFile("compounds.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"CCO", "c1ccccc1"}, got)
}

func TestFromFile_LegacyXLSWorkbook(t *testing.T) {
	n := NewNormalizer(nil)

	data, err := os.ReadFile(filepath.Join("testdata", "legacy_compounds.xls"))
	require.NoError(t, err)

	got, err := n.FromFile("legacy_compounds.xls", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"CCO", "CCN", "c1ccccc1"}, got)
}

func TestFromFile_CorruptXLSFails(t *testing.T) {
	n := NewNormalizer(nil)

	_, err := n.FromFile("broken.xls", []byte("not an OLE2 compound document"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInputParseFailed))
	assert.Contains(t, err.Error(), "CSV or Excel")
}

// emptyWorkbookBytes assembles a minimal OOXML package whose workbook part
// declares no sheets, something excelize itself refuses to produce.
func emptyWorkbookBytes(t *testing.T) []byte {
	t.Helper()

	parts := []struct{ name, body string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/></Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/></Relationships>`},
		{"xl/workbook.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheets></sheets></workbook>`},
		{"xl/_rels/workbook.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFromFile_WorkbookWithoutSheets(t *testing.T) {
	n := NewNormalizer(nil)

	_, err := n.FromFile("empty.xlsx", emptyWorkbookBytes(t))
	require.Error(t, err)
	// The dedicated code survives the strategy ladder instead of collapsing
	// into the generic parse failure.
	assert.True(t, errors.IsCode(err, errors.CodeInputNoSheets))
	assert.Contains(t, err.Error(), "no sheets")
}

func TestFromFile_CorruptXLSXFails(t *testing.T) {
	n := NewNormalizer(nil)

	_, err := n.FromFile("broken.xlsx", []byte("this is not a zip archive"))
	require.Error(t, err)
	// Non-CSV files get no line-split fallback: the whole operation fails
	// with a parse error naming the accepted formats.
	assert.True(t, errors.IsCode(err, errors.CodeInputParseFailed))
	assert.Contains(t, err.Error(), "CSV or Excel")
}

func TestFromFile_MayReturnEmptyList(t *testing.T) {
	n := NewNormalizer(nil)

	// A file containing only a header is a successful parse with zero
	// candidates; ValidateUpload turns that into its own failure so the
	// user learns the file was readable but held nothing usable.
	got, err := n.FromFile("f.csv", []byte("SMILES\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, errors.IsCode(ValidateUpload(got), errors.CodeInputNoCompounds))
}

func TestValidateUpload(t *testing.T) {
	err := ValidateUpload(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInputNoCompounds))
	assert.Contains(t, err.Error(), "no compounds found")

	assert.NoError(t, ValidateUpload([]string{"CCO"}))

	tooMany := make([]string, MaxCompounds+1)
	for i := range tooMany {
		tooMany[i] = "CCO"
	}
	err = ValidateUpload(tooMany)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInputTooManyCompounds))
}

func TestLineStrategy_Fallback(t *testing.T) {
	s := lineStrategy{}

	assert.True(t, s.applies(".csv"))
	assert.False(t, s.applies(".xlsx"))

	grid, err := s.parse([]byte("CCO;ethanol\nCCN\tamine\nCC(=O)O,acid\r\n"))
	require.NoError(t, err)
	assert.Equal(t, Grid{{"CCO"}, {"CCN"}, {"CC(=O)O"}}, grid)
}

func TestCSVStrategy_QuotedFields(t *testing.T) {
	s := csvStrategy{}

	grid, err := s.parse([]byte("SMILES,Name\n\"C,C\",weird\nCCO,ethanol\n"))
	require.NoError(t, err)
	require.Len(t, grid, 3)
	// Quoted comma survives as a single cell.
	assert.Equal(t, "C,C", grid[1][0])
}

func TestWorkbookStrategy_Applies(t *testing.T) {
	s := workbookStrategy{}
	assert.True(t, s.applies(".xlsx"))
	assert.False(t, s.applies(".xls"))
	assert.False(t, s.applies(".csv"))

	l := legacyWorkbookStrategy{}
	assert.True(t, l.applies(".xls"))
	assert.False(t, l.applies(".xlsx"))
	assert.False(t, l.applies(".csv"))
}

func TestDropBlankRows(t *testing.T) {
	got := dropBlankRows([][]string{
		{"CCO", "x"},
		{"", "  "},
		{},
		{"CCN"},
	})
	assert.Equal(t, Grid{{"CCO", "x"}, {"CCN"}}, got)
}
