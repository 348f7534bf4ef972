// Package export renders a screening result set as a downloadable CSV.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/molscreen/molscreen/internal/screening"
	"github.com/molscreen/molscreen/pkg/errors"
)

// FileName is the fixed download name offered to the browser.
const FileName = "prediction_results.csv"

// ContentType is the MIME type for the exported artifact.
const ContentType = "text/csv; charset=utf-8"

var header = []string{"ID", "Compound (SMILES)", "Type", "Class", "IC50 (nM)"}

// WriteCSV writes the result rows as RFC 4180 CSV.  Fields containing a
// comma, quote or newline are quoted with internal quotes doubled, which
// encoding/csv handles for us.  Missing Class/IC50 render as empty fields.
func WriteCSV(w io.Writer, rows []screening.Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to write CSV header")
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.ID),
			row.SMILES,
			string(row.Classification),
			formatClass(row.PotencyClass),
			formatIC50(row.IC50),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to write CSV row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to flush CSV output")
	}
	return nil
}

func formatClass(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatIC50(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
