package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/molscreen/molscreen/internal/export"
	"github.com/molscreen/molscreen/internal/ingest"
	"github.com/molscreen/molscreen/internal/screening"
	"github.com/molscreen/molscreen/pkg/errors"
)

// predictOptions holds flags local to the predict command.
type predictOptions struct {
	SMILES string
	Input  string
	Output string
}

// NewPredictCmd creates the predict command.
func NewPredictCmd(root *RootOptions, factory PredictorFactory) *cobra.Command {
	opts := &predictOptions{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Submit compounds for prediction",
		Long: "Submit up to 20 SMILES strings for inhibitor/decoy prediction.\n" +
			"Compounds come from --smiles (newline- or comma-separated text) or from\n" +
			"--input (a .csv, .xls or .xlsx file); the two are mutually exclusive.",
		Example: `  molscreen predict --smiles "CCO, c1ccccc1"
  molscreen predict --input compounds.csv --output csv
  molscreen predict --input screen.xlsx --server http://predictor:5000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, root, opts, factory)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.SMILES, "smiles", "", "SMILES strings, newline- or comma-separated")
	f.StringVarP(&opts.Input, "input", "i", "", "path to a CSV or Excel file of compounds")
	f.StringVarP(&opts.Output, "output", "o", "table", "output format (table, csv, json)")
	cmd.MarkFlagsMutuallyExclusive("smiles", "input")

	return cmd
}

func runPredict(cmd *cobra.Command, root *RootOptions, opts *predictOptions, factory PredictorFactory) error {
	candidates, err := gatherCandidates(opts)
	if err != nil {
		return err
	}
	// File input gets the upload-specific bounds so an empty spreadsheet is
	// reported as such rather than as a blank submission.
	validate := ingest.Validate
	if opts.Input != "" {
		validate = ingest.ValidateUpload
	}
	if err := validate(candidates); err != nil {
		return err
	}

	predictor, err := factory(root.ServerAddr, root.Timeout)
	if err != nil {
		return err
	}

	preds, err := predictor.Predict(cmd.Context(), candidates)
	if err != nil {
		return err
	}

	return render(cmd, screening.Summarize(preds), opts.Output)
}

// gatherCandidates resolves the input channel and normalizes it into a
// candidate list.
func gatherCandidates(opts *predictOptions) ([]string, error) {
	if opts.Input != "" {
		data, err := os.ReadFile(opts.Input)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInputReadFailed, "failed to read input file")
		}
		normalizer := ingest.NewNormalizer(nil)
		return normalizer.FromFile(filepath.Base(opts.Input), data)
	}
	return ingest.FromText(opts.SMILES), nil
}

func render(cmd *cobra.Command, summary screening.Summary, format string) error {
	out := cmd.OutOrStdout()

	switch strings.ToLower(format) {
	case "csv":
		return export.WriteCSV(out, summary.Rows)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case "table":
		rows := make([][]string, 0, len(summary.Rows))
		for _, r := range summary.Rows {
			class, ic50 := "", ""
			if r.PotencyClass != nil {
				class = strconv.Itoa(*r.PotencyClass)
			}
			if r.IC50 != nil {
				ic50 = strconv.FormatFloat(*r.IC50, 'f', -1, 64)
			}
			rows = append(rows, []string{
				strconv.Itoa(r.ID),
				r.SMILES,
				string(r.Classification),
				class,
				ic50,
			})
		}
		fmt.Fprint(out, FormatTable([]string{"ID", "Compound (SMILES)", "Type", "Class", "IC50 (nM)"}, rows))

		fmt.Fprintln(out)
		for _, cls := range []screening.Classification{screening.ClassificationInhibitor, screening.ClassificationDecoy} {
			if n := summary.TypeCounts[cls]; n > 0 {
				fmt.Fprintf(out, "%s: %d\n", cls, n)
			}
		}
		return nil
	default:
		return errors.Newf(errors.ErrCodeBadRequest, "unknown output format %q (expected table, csv or json)", format)
	}
}
