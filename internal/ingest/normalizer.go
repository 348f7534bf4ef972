// Package ingest implements the input normalizer: it converts heterogeneous
// raw input (free text or an uploaded spreadsheet/CSV file) into a clean,
// bounded list of candidate SMILES strings, or fails with a typed reason.
//
// File parsing runs an explicit ordered strategy list (workbook, CSV grid,
// naive line split) rather than nested error handling, so the fallback
// policy is testable in isolation.  See strategy.go.
package ingest

import (
	"path/filepath"
	"strings"

	"github.com/molscreen/molscreen/internal/infrastructure/logging"
	"github.com/molscreen/molscreen/pkg/errors"
)

const (
	// MaxCompounds is the largest candidate list accepted at submission
	// time; larger batches are rejected before any network call.
	MaxCompounds = 20

	// minIdentifierLen is the exclusive lower bound on candidate length:
	// entries of 2 characters or fewer are dropped.
	minIdentifierLen = 2

	// headerMaxLen bounds how long a first cell may be and still be
	// considered a header.  Longer cells are assumed to be data (a SMILES
	// string can legitimately contain "molecule"-like fragments only in
	// pathological cases, but a 50+ char cell is never a column title).
	headerMaxLen = 50
)

// headerMarkers are the substrings that identify a header row when found in
// a short first cell, case-insensitively.
var headerMarkers = []string{"smiles", "compound", "molecule"}

// dataRowMarkers are the substrings that disqualify an individual cell even
// outside the first row, defending against stray header-like rows.
var dataRowMarkers = []string{"smiles", "compound"}

// supportedExtensions gates file selection before any parsing is attempted.
var supportedExtensions = map[string]bool{
	".csv":  true,
	".xls":  true,
	".xlsx": true,
}

// Grid is a two-dimensional ordered grid of verbatim cell values derived
// from an uploaded file.  It is consumed once to build the candidate list
// and not retained.
type Grid [][]string

// Normalizer converts raw input into candidate identifier lists.
type Normalizer struct {
	log        logging.Logger
	strategies []parseStrategy
}

// NewNormalizer constructs a Normalizer with the standard strategy order:
// OOXML workbook, legacy binary workbook, CSV grid, naive line split.
func NewNormalizer(log logging.Logger) *Normalizer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Normalizer{
		log: log.Named("ingest"),
		strategies: []parseStrategy{
			workbookStrategy{},
			legacyWorkbookStrategy{},
			csvStrategy{},
			lineStrategy{},
		},
	}
}

// FromText splits raw free text on newlines and commas, trims each piece,
// and drops empty pieces.  No row/column structure is assumed.  Length and
// count bounds are applied separately by Validate.
func FromText(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ValidateExtension rejects filenames outside {.csv, .xls, .xlsx}.  It is
// intended to run at selection/upload time, before any bytes are parsed.
func ValidateExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !supportedExtensions[ext] {
		return errors.Newf(errors.CodeInputUnsupportedExtension,
			"unsupported file type %q: please upload a CSV or Excel file (.csv, .xls, .xlsx)", ext)
	}
	return nil
}

// FromFile extracts a candidate identifier list from an uploaded file's
// contents.  The result may be empty; callers must treat an empty list as a
// validation failure, not a silent success.
func (n *Normalizer) FromFile(filename string, data []byte) ([]string, error) {
	if err := ValidateExtension(filename); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(filename))

	var lastErr error
	for _, s := range n.strategies {
		if !s.applies(ext) {
			continue
		}
		grid, err := s.parse(data)
		if err != nil {
			n.log.Debug("parse strategy failed",
				logging.String("strategy", s.name()),
				logging.String("file", filename),
				logging.Err(err),
			)
			lastErr = err
			continue
		}
		n.log.Info("parsed upload",
			logging.String("strategy", s.name()),
			logging.String("file", filename),
			logging.Int("rows", len(grid)),
		)
		return candidatesFromGrid(grid), nil
	}

	// Every applicable strategy failed.  A dedicated "no sheets" failure
	// keeps its own code; everything else collapses into the parse error
	// naming the accepted formats.
	if errors.IsCode(lastErr, errors.CodeInputNoSheets) {
		return nil, lastErr
	}
	return nil, errors.Wrap(lastErr, errors.CodeInputParseFailed,
		"could not parse file: expected a CSV or Excel spreadsheet (.csv, .xls, .xlsx)")
}

// Validate applies the submission-time bounds to a candidate list: empty
// lists and lists longer than MaxCompounds are rejected.
func Validate(candidates []string) error {
	if len(candidates) == 0 {
		return errors.New(errors.CodeInputEmpty, "no input provided")
	}
	if len(candidates) > MaxCompounds {
		return errors.Newf(errors.CodeInputTooManyCompounds,
			"too many compounds: maximum %d allowed, got %d", MaxCompounds, len(candidates))
	}
	return nil
}

// ValidateUpload applies the submission-time bounds to candidates extracted
// from a file.  A file that parsed but yielded no usable rows is reported
// distinctly from a blank submission, so the user learns the file was
// readable yet held no compounds.
func ValidateUpload(candidates []string) error {
	if len(candidates) == 0 {
		return errors.New(errors.CodeInputNoCompounds, "no compounds found in the uploaded file")
	}
	return Validate(candidates)
}

// candidatesFromGrid projects a parsed grid onto the candidate list: header
// detection on the first row, then first-column extraction with trimming
// and the length/marker filters.
func candidatesFromGrid(grid Grid) []string {
	rows := grid
	if len(rows) > 1 && isHeaderRow(rows[0]) {
		rows = rows[1:]
	}

	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(row[0])
		if len(cell) <= minIdentifierLen {
			continue
		}
		if containsAny(strings.ToLower(cell), dataRowMarkers) {
			continue
		}
		out = append(out, cell)
	}
	return out
}

// isHeaderRow reports whether a row's first cell looks like a column title:
// short, and containing one of the header markers case-insensitively.
func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	cell := strings.TrimSpace(row[0])
	if len(cell) >= headerMaxLen {
		return false
	}
	return containsAny(strings.ToLower(cell), headerMarkers)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
