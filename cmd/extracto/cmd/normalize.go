package cmd

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/legaltech-cl/extracto/internal/batch"
	"github.com/legaltech-cl/extracto/internal/normalize"
	"github.com/legaltech-cl/extracto/internal/record"
	"github.com/legaltech-cl/extracto/internal/trace"
)

// normalizeCmd cleans up a previously extracted CSV without re-running OCR.
var normalizeCmd = &cobra.Command{
	Use:   "normalize <input.csv>",
	Short: "Normalize and reconcile an existing extraction CSV",
	Long: `Re-apply output normalization to a CSV produced by an earlier batch
run: mojibake repair, date and amount formatting, RUT check digits,
comuna repair, and optional reconciliation against a debug trace file.

Examples:
  extracto normalize operaciones.csv --output limpio.csv
  extracto normalize operaciones.csv --trace debug.txt --fill-mode prefer_trace
  extracto normalize operaciones.csv --report informe.md`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runNormalizeCommand,
}

func runNormalizeCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	delimiter := cfg.Batch.Delimiter
	if cmd.Flags().Changed("delimiter") {
		delimiter, _ = cmd.Flags().GetString("delimiter")
	}
	if len(delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}

	rows, err := readRecordsCSV(args[0], rune(delimiter[0]))
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var mergeStats trace.MergeStats
	traceFile := cfg.Trace.File
	if cmd.Flags().Changed("trace") {
		traceFile, _ = cmd.Flags().GetString("trace")
	}
	if traceFile != "" {
		fillMode := cfg.Trace.FillMode
		if cmd.Flags().Changed("fill-mode") {
			fillMode, _ = cmd.Flags().GetString("fill-mode")
		}
		mode, err := trace.ParseFillMode(fillMode)
		if err != nil {
			return err
		}
		table, err := trace.ParseFile(traceFile)
		if err != nil {
			return fmt.Errorf("parsing trace file: %w", err)
		}
		mergeStats = trace.Merge(rows, table, mode)
	}

	if cmd.Flags().Changed("strict-dv") {
		cfg.Rules.StrictDV, _ = cmd.Flags().GetBool("strict-dv")
	}
	opts := cfg.NormalizeOptions()
	var stats normalize.Stats
	for _, rec := range rows {
		normalize.Row(rec, opts, &stats)
	}

	if opts.RejectIncomplete {
		kept := rows[:0]
		for _, rec := range rows {
			if normalize.Complete(rec, opts.RequiredFields) {
				kept = append(kept, rec)
			}
		}
		rows = kept
	}

	format, _ := cmd.Flags().GetString("format")
	outputFile, _ := cmd.Flags().GetString("output")
	if err := batch.WriteOutput(rows, format, rune(delimiter[0]), outputFile); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if reportFile, _ := cmd.Flags().GetString("report"); reportFile != "" {
		if err := writeReportFile(reportFile, stats, mergeStats); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	return nil
}

// readRecordsCSV loads an extraction CSV back into records. Unknown
// columns are ignored; missing columns stay empty.
func readRecordsCSV(path string, delimiter rune) ([]record.Record, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-supplied by design
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	known := make(map[string]struct{}, len(record.Headers))
	for _, h := range record.Headers {
		known[h] = struct{}{}
	}

	header := raw[0]
	rows := make([]record.Record, 0, len(raw)-1)
	for _, line := range raw[1:] {
		rec := record.New()
		for i, col := range header {
			if i >= len(line) {
				break
			}
			if _, ok := known[col]; ok {
				rec[col] = line[i]
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().String("trace", "", "debug trace file with FINAL ROW blocks")
	normalizeCmd.Flags().Bool("strict-dv", false, "recompute RUT check digits from the body")
	normalizeCmd.Flags().String("fill-mode", "", "trace fill mode: none, only_blanks, prefer_trace")
	normalizeCmd.Flags().StringP("format", "f", "csv", "output format: csv, xlsx, json")
	normalizeCmd.Flags().StringP("output", "o", "", "output file (default: stdout, required for xlsx)")
	normalizeCmd.Flags().String("delimiter", "", "CSV field delimiter (default: ;)")
	normalizeCmd.Flags().String("report", "", "write a normalization report to this file")
}
