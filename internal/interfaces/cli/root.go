// Package cli implements the molscreen command line client.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/molscreen/molscreen/internal/config"
	"github.com/molscreen/molscreen/internal/infrastructure/logging"
	"github.com/molscreen/molscreen/internal/screening"
	"github.com/molscreen/molscreen/pkg/client"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	LogLevel   string
	Verbose    bool
	ServerAddr string
	Timeout    time.Duration
}

// PredictorFactory builds the predictor a command talks to.  Tests swap it
// for a stub.
type PredictorFactory func(serverAddr string, timeout time.Duration) (screening.Predictor, error)

func defaultPredictorFactory(serverAddr string, timeout time.Duration) (screening.Predictor, error) {
	opts := []client.Option{}
	if timeout > 0 {
		opts = append(opts, client.WithTimeout(timeout))
	}
	c, err := client.NewClient(serverAddr, opts...)
	if err != nil {
		return nil, err
	}
	return screening.NewClientPredictor(c), nil
}

// NewRootCommand creates the root command with global flags and the predict
// subcommand.
func NewRootCommand(factory PredictorFactory) *cobra.Command {
	if factory == nil {
		factory = defaultPredictorFactory
	}
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "molscreen",
		Short:   "molscreen — submit SMILES compounds for inhibitor/decoy prediction",
		Long:    "molscreen submits candidate compound identifiers (SMILES) to a prediction\nservice and renders the classification results as a table or CSV.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogger(opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&opts.ServerAddr, "server", config.DefaultPredictorBaseURL, "prediction service base URL")
	pf.DurationVar(&opts.Timeout, "timeout", 0, "request timeout (0 means none)")

	cmd.AddCommand(NewPredictCmd(opts, factory))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "molscreen %s (commit: %s, built: %s)\n", Version, GitCommit, BuildDate)
		},
	}
}

// initLogger configures the process-wide logger for CLI usage, writing to
// stderr so stdout stays clean for command output.
func initLogger(opts *RootOptions) error {
	level := opts.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(logging.Config{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	logging.SetDefault(logger)
	return nil
}

// Execute runs the CLI and reports failure to the caller.
func Execute() error {
	return NewRootCommand(nil).Execute()
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	for i, h := range headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(padRight(h, colWidths[i]))
	}
	sb.WriteString("\n")

	for i, w := range colWidths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(strings.Repeat("-", w))
	}
	sb.WriteString("\n")

	for _, row := range rows {
		for i := 0; i < len(headers); i++ {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			sb.WriteString(padRight(val, colWidths[i]))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
