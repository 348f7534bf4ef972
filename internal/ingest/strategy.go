package ingest

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/molscreen/molscreen/pkg/errors"
)

// parseStrategy is one rung of the ordered parse ladder.  Strategies are
// evaluated in sequence; each either yields a grid or a typed failure, and
// the first applicable success wins.
type parseStrategy interface {
	name() string

	// applies reports whether this strategy should be attempted for a file
	// with the given (lowercased) extension.
	applies(ext string) bool

	// parse converts raw file bytes into a grid of verbatim cell values
	// with blank rows removed.
	parse(data []byte) (Grid, error)
}

// workbookStrategy loads the file as an OOXML Excel workbook and converts
// the first sheet to a grid.  Cell values are read raw: no numeric or date
// coercion is applied.
type workbookStrategy struct{}

func (workbookStrategy) name() string { return "workbook" }

func (workbookStrategy) applies(ext string) bool { return ext == ".xlsx" }

func (workbookStrategy) parse(data []byte) (Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInputParseFailed, "could not open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New(errors.CodeInputNoSheets, "no sheets found in workbook")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInputParseFailed, "could not read first sheet")
	}

	return dropBlankRows(rows), nil
}

// legacyWorkbookStrategy reads the pre-2007 binary workbook format (BIFF
// inside an OLE2 container), which excelize does not understand.  First
// sheet only, mirroring the OOXML path.
type legacyWorkbookStrategy struct{}

func (legacyWorkbookStrategy) name() string { return "legacy-workbook" }

func (legacyWorkbookStrategy) applies(ext string) bool { return ext == ".xls" }

func (legacyWorkbookStrategy) parse(data []byte) (Grid, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInputParseFailed, "could not open workbook")
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, errors.New(errors.CodeInputNoSheets, "no sheets found in workbook")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New(errors.CodeInputNoSheets, "no sheets found in workbook")
	}

	grid := make(Grid, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		// Columns are keyed from zero so grid indices line up with the
		// first-column extraction downstream; Col returns "" for gaps.
		width := row.LastCol()
		if width < 1 {
			width = 1
		}
		cells := make([]string, 0, width)
		for j := 0; j < width; j++ {
			cells = append(cells, row.Col(j))
		}
		grid = append(grid, cells)
	}
	return dropBlankRows(grid), nil
}

// csvStrategy performs the structured CSV parse.  LazyQuotes and a variable
// field count make it tolerant of the loosely formatted spreadsheets users
// actually export.
type csvStrategy struct{}

func (csvStrategy) name() string { return "csv" }

func (csvStrategy) applies(ext string) bool { return ext == ".csv" }

func (csvStrategy) parse(data []byte) (Grid, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInputParseFailed, "could not parse CSV content")
	}
	return dropBlankRows(records), nil
}

// lineStrategy is the last-resort fallback for CSV-typed files: split the
// text on line breaks, split each line on comma/semicolon/tab, and take the
// first field of each row.  It cannot fail on non-empty input.
type lineStrategy struct{}

func (lineStrategy) name() string { return "lines" }

func (lineStrategy) applies(ext string) bool { return ext == ".csv" }

func (lineStrategy) parse(data []byte) (Grid, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r'
	})

	grid := make(Grid, 0, len(lines))
	for _, line := range lines {
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ';' || r == '\t'
		})
		if len(fields) == 0 {
			continue
		}
		grid = append(grid, []string{fields[0]})
	}
	return dropBlankRows(grid), nil
}

// dropBlankRows removes rows that are empty or contain only blank cells.
func dropBlankRows(rows [][]string) Grid {
	out := make(Grid, 0, len(rows))
	for _, row := range rows {
		blank := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out
}
