package cmd

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/legaltech-cl/extracto/internal/batch"
	"github.com/legaltech-cl/extracto/internal/config"
	"github.com/legaltech-cl/extracto/internal/geocode"
	"github.com/legaltech-cl/extracto/internal/normalize"
	"github.com/legaltech-cl/extracto/internal/ocr"
	"github.com/legaltech-cl/extracto/internal/record"
	"github.com/legaltech-cl/extracto/internal/trace"
)

// batchCmd represents the batch command for parallel document processing.
var batchCmd = &cobra.Command{
	Use:   "batch [files or directories...]",
	Short: "Extract operation records from credit document PDFs in parallel",
	Long: `Process PDF documents in parallel and emit one operation record per
document. Each file is rasterized with pdftoppm, OCRed with Tesseract,
classified as pagaré or contrato de crédito, and run through the field
extraction cascade.

Examples:
  extracto batch pagares/ --bank itau
  extracto batch docs/ --recursive --workers 8 --output salida.csv
  extracto batch *.pdf --format xlsx --output salida.xlsx
  extracto batch docs/ --reference referencia.yaml --trace debug.txt --fill-mode prefer_trace`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

// configToBatchConfig maps centralized configuration to batch.Config.
// CLI flags override config file values.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command) (*batch.Config, error) {
	bc := batch.DefaultConfig()

	bc.Language = cfg.OCR.Language
	if cmd.Flags().Changed("language") {
		bc.Language, _ = cmd.Flags().GetString("language")
	}

	enhance := cfg.OCR.Enhance
	if cmd.Flags().Changed("enhance") {
		enhance, _ = cmd.Flags().GetString("enhance")
	}
	mode, err := ocr.ParseEnhanceMode(enhance)
	if err != nil {
		return nil, err
	}
	bc.Enhance = mode

	bc.DPI = cfg.PDF.DPI
	if cmd.Flags().Changed("dpi") {
		bc.DPI, _ = cmd.Flags().GetInt("dpi")
	}

	bc.PdftoppmPath = cfg.PDF.PdftoppmPath
	if cmd.Flags().Changed("pdftoppm") {
		bc.PdftoppmPath, _ = cmd.Flags().GetString("pdftoppm")
	}

	bc.Bank = cfg.Rules.Bank
	if cmd.Flags().Changed("bank") {
		bc.Bank, _ = cmd.Flags().GetString("bank")
	}
	// Venue defaults only override the bank profile when the user
	// changed them; otherwise each profile keeps its own.
	defaults := config.DefaultConfig()
	if cfg.Rules.DefaultExhorto != defaults.Rules.DefaultExhorto {
		bc.Exhorto = cfg.Rules.DefaultExhorto
	}
	if cfg.Rules.DefaultSucursal != defaults.Rules.DefaultSucursal {
		bc.Sucursal = cfg.Rules.DefaultSucursal
	}

	bc.Workers = cfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		bc.Workers, _ = cmd.Flags().GetInt("workers")
	}

	bc.ContinueOnError = cfg.Batch.ContinueOnError
	if cmd.Flags().Changed("continue-on-error") {
		bc.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}

	if cmd.Flags().Changed("page-timeout") {
		bc.PageTimeout, _ = cmd.Flags().GetDuration("page-timeout")
	}

	// File discovery settings are CLI-only.
	bc.Recursive, _ = cmd.Flags().GetBool("recursive")
	bc.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	bc.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")

	referenceFile := cfg.Reference.File
	if cmd.Flags().Changed("reference") {
		referenceFile, _ = cmd.Flags().GetString("reference")
	}
	bc.Reference = record.NewReferenceTable()
	if referenceFile != "" {
		if err := bc.Reference.LoadReferenceFile(referenceFile); err != nil {
			return nil, fmt.Errorf("loading reference file: %w", err)
		}
	}

	traceFile := cfg.Trace.File
	if cmd.Flags().Changed("trace") {
		traceFile, _ = cmd.Flags().GetString("trace")
	}
	fillMode := cfg.Trace.FillMode
	if cmd.Flags().Changed("fill-mode") {
		fillMode, _ = cmd.Flags().GetString("fill-mode")
	}
	bc.FillMode, err = trace.ParseFillMode(fillMode)
	if err != nil {
		return nil, err
	}
	if traceFile != "" {
		bc.Trace, err = trace.ParseFile(traceFile)
		if err != nil {
			return nil, fmt.Errorf("parsing trace file: %w", err)
		}
	} else {
		bc.FillMode = trace.FillNone
	}

	if cmd.Flags().Changed("strict-dv") {
		cfg.Rules.StrictDV, _ = cmd.Flags().GetBool("strict-dv")
	}
	bc.Normalize = cfg.NormalizeOptions()

	geocodeEnabled := cfg.Geocode.Enabled
	if cmd.Flags().Changed("geocode") {
		geocodeEnabled, _ = cmd.Flags().GetBool("geocode")
	}
	if geocodeEnabled {
		bc.Geocoder = geocode.NewNominatim(cfg.Geocode.Endpoint, cfg.Geocode.UserAgent, cfg.Geocode.Delay)
	}

	// Progress settings are CLI-only.
	bc.ShowProgress, _ = cmd.Flags().GetBool("progress")
	bc.Quiet, _ = cmd.Flags().GetBool("quiet")
	bc.ProgressInterval, _ = cmd.Flags().GetDuration("progress-interval")

	return bc, nil
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	bc, err := configToBatchConfig(cfg, cmd)
	if err != nil {
		return err
	}

	result, err := batch.ProcessBatch(cmd.Context(), args, bc)
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}

	format := cfg.Batch.OutputFormat
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	delimiter := cfg.Batch.Delimiter
	if cmd.Flags().Changed("delimiter") {
		delimiter, _ = cmd.Flags().GetString("delimiter")
	}
	if len(delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}
	outputFile, _ := cmd.Flags().GetString("output")

	if err := batch.WriteOutput(result.Rows, format, rune(delimiter[0]), outputFile); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if reportFile, _ := cmd.Flags().GetString("report"); reportFile != "" {
		if err := writeReportFile(reportFile, result.NormalizeStats, result.MergeStats); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	if !bc.Quiet {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Processed %d documents (%d failed, %d rejected) in %s\n",
			len(result.Statuses), result.Failed(), result.Rejected, result.Duration.Round(time.Millisecond))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// OCR flags
	batchCmd.Flags().String("language", "", "Tesseract language (default from config: spa)")
	batchCmd.Flags().String("enhance", "", "image enhancement mode: off, basic, aggressive")

	// Rasterization flags
	batchCmd.Flags().Int("dpi", 0, "rasterization resolution in DPI")
	batchCmd.Flags().String("pdftoppm", "", "path to the pdftoppm binary")

	// Extraction flags
	batchCmd.Flags().StringP("bank", "b", "", "bank profile: itau, santander, indisa")
	batchCmd.Flags().Bool("strict-dv", false, "recompute RUT check digits from the body")

	// Reconciliation flags
	batchCmd.Flags().String("reference", "", "YAML file with per-operation field overrides")
	batchCmd.Flags().String("trace", "", "debug trace file with FINAL ROW blocks")
	batchCmd.Flags().String("fill-mode", "", "trace fill mode: none, only_blanks, prefer_trace")

	// Geocoding flags
	batchCmd.Flags().Bool("geocode", false, "resolve missing comunas via Nominatim")

	// Output flags
	batchCmd.Flags().StringP("format", "f", "", "output format: csv, xlsx, json")
	batchCmd.Flags().StringP("output", "o", "", "output file (default: stdout, required for xlsx)")
	batchCmd.Flags().String("delimiter", "", "CSV field delimiter (default: ;)")
	batchCmd.Flags().String("report", "", "write a normalization report to this file")

	// Parallel processing flags
	batchCmd.Flags().IntP("workers", "w", 0,
		fmt.Sprintf("number of parallel workers (default: %d)", runtime.NumCPU()))
	batchCmd.Flags().Bool("continue-on-error", true,
		"emit an empty row for failed documents instead of aborting")
	batchCmd.Flags().Duration("page-timeout", 2*time.Minute,
		"maximum OCR time per page, 0 to disable")

	// File discovery flags
	batchCmd.Flags().BoolP("recursive", "r", false, "recursively scan directories")
	batchCmd.Flags().StringSlice("include", []string{}, "file patterns to include")
	batchCmd.Flags().StringSlice("exclude", []string{}, "file patterns to exclude")

	// Progress flags
	batchCmd.Flags().Bool("progress", false, "log periodic progress")
	batchCmd.Flags().Bool("quiet", false, "suppress summary output")
	batchCmd.Flags().Duration("progress-interval", time.Second, "progress logging interval")
}

func writeReportFile(path string, stats normalize.Stats, merge trace.MergeStats) error {
	f, err := os.Create(path) //nolint:gosec // path is user-supplied by design
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return normalize.WriteReport(f, stats, merge)
}
