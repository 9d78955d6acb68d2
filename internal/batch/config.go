package batch

import (
	"time"

	"github.com/legaltech-cl/extracto/internal/geocode"
	"github.com/legaltech-cl/extracto/internal/normalize"
	"github.com/legaltech-cl/extracto/internal/ocr"
	"github.com/legaltech-cl/extracto/internal/record"
	"github.com/legaltech-cl/extracto/internal/trace"
)

// Config holds all configuration for a batch run.
type Config struct {
	// OCR settings
	Language string
	Enhance  ocr.EnhanceMode

	// Rasterization settings
	DPI          int
	PdftoppmPath string

	// Extraction settings. Exhorto and Sucursal override the bank
	// profile defaults when non-empty.
	Bank     string
	Exhorto  string
	Sucursal string

	// Parallel processing settings
	Workers int

	// PageTimeout bounds a single page's OCR pass. Tesseract can hang
	// on degenerate rasters; expiry counts as a failed page, not a
	// failed document. Zero disables the bound.
	PageTimeout time.Duration

	// Error handling: when true a failed document yields an empty row
	// instead of aborting the batch.
	ContinueOnError bool

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Reconciliation settings
	Reference *record.ReferenceTable
	Trace     *trace.Table
	FillMode  trace.FillMode

	// Output normalization
	Normalize normalize.Options

	// Geocoding fallback for rows with an address but no comuna
	Geocoder geocode.Resolver

	// Progress settings
	ShowProgress     bool
	Quiet            bool
	ProgressInterval time.Duration
}

// DefaultConfig returns a batch configuration with sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Language:         "spa",
		Enhance:          ocr.EnhanceBasic,
		DPI:              300,
		PdftoppmPath:     "pdftoppm",
		Bank:             "itau",
		Workers:          4,
		PageTimeout:      2 * time.Minute,
		ContinueOnError:  true,
		FillMode:         trace.FillNone,
		Normalize:        normalize.DefaultOptions(),
		Geocoder:         geocode.Noop{},
		ProgressInterval: time.Second,
	}
}
