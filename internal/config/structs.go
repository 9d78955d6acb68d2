package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/legaltech-cl/extracto/internal/normalize"
	"github.com/legaltech-cl/extracto/internal/ocr"
	"github.com/legaltech-cl/extracto/internal/trace"
)

// Config is the complete configuration for extracto. It covers every
// command and loads from configuration files, environment variables
// and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	OCR       OCRConfig       `mapstructure:"ocr" yaml:"ocr" json:"ocr"`
	PDF       PDFConfig       `mapstructure:"pdf" yaml:"pdf" json:"pdf"`
	Batch     BatchConfig     `mapstructure:"batch" yaml:"batch" json:"batch"`
	Rules     RulesConfig     `mapstructure:"rules" yaml:"rules" json:"rules"`
	Reference ReferenceConfig `mapstructure:"reference" yaml:"reference" json:"reference"`
	Trace     TraceConfig     `mapstructure:"trace" yaml:"trace" json:"trace"`
	Geocode   GeocodeConfig   `mapstructure:"geocode" yaml:"geocode" json:"geocode"`
	Normalize NormalizeConfig `mapstructure:"normalize" yaml:"normalize" json:"normalize"`
}

// OCRConfig holds Tesseract settings.
type OCRConfig struct {
	Language string `mapstructure:"language" yaml:"language" json:"language"`
	Enhance  string `mapstructure:"enhance" yaml:"enhance" json:"enhance"`
}

// PDFConfig holds rasterization settings.
type PDFConfig struct {
	DPI          int    `mapstructure:"dpi" yaml:"dpi" json:"dpi"`
	PdftoppmPath string `mapstructure:"pdftoppm_path" yaml:"pdftoppm_path" json:"pdftoppm_path"`
}

// BatchConfig holds batch processing settings.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
	OutputFormat    string `mapstructure:"output_format" yaml:"output_format" json:"output_format"`
	Delimiter       string `mapstructure:"delimiter" yaml:"delimiter" json:"delimiter"`
}

// RulesConfig holds extraction rule settings.
type RulesConfig struct {
	Bank            string `mapstructure:"bank" yaml:"bank" json:"bank"`
	StrictDV        bool   `mapstructure:"strict_dv" yaml:"strict_dv" json:"strict_dv"`
	DefaultExhorto  string `mapstructure:"default_exhorto" yaml:"default_exhorto" json:"default_exhorto"`
	DefaultSucursal string `mapstructure:"default_sucursal" yaml:"default_sucursal" json:"default_sucursal"`
}

// ReferenceConfig points at the per-operation override table.
type ReferenceConfig struct {
	File string `mapstructure:"file" yaml:"file" json:"file"`
}

// TraceConfig holds debug-trace reconciliation settings.
type TraceConfig struct {
	File     string `mapstructure:"file" yaml:"file" json:"file"`
	FillMode string `mapstructure:"fill_mode" yaml:"fill_mode" json:"fill_mode"`
}

// GeocodeConfig holds Nominatim settings.
type GeocodeConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Endpoint  string        `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent" json:"user_agent"`
	Delay     time.Duration `mapstructure:"delay" yaml:"delay" json:"delay"`
}

// NormalizeConfig holds output normalization settings.
type NormalizeConfig struct {
	DateFormat       string   `mapstructure:"date_format" yaml:"date_format" json:"date_format"`
	ThousandSep      string   `mapstructure:"thousand_sep" yaml:"thousand_sep" json:"thousand_sep"`
	RequiredFields   []string `mapstructure:"required_fields" yaml:"required_fields" json:"required_fields"`
	RejectIncomplete bool     `mapstructure:"reject_incomplete" yaml:"reject_incomplete" json:"reject_incomplete"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		OCR: OCRConfig{
			Language: "spa",
			Enhance:  string(ocr.EnhanceBasic),
		},
		PDF: PDFConfig{
			DPI:          300,
			PdftoppmPath: "pdftoppm",
		},
		Batch: BatchConfig{
			Workers:         runtime.NumCPU(),
			ContinueOnError: true,
			OutputFormat:    "csv",
			Delimiter:       ";",
		},
		Rules: RulesConfig{
			Bank:            "itau",
			DefaultExhorto:  "TEMUCO",
			DefaultSucursal: "SANTIAGO",
		},
		Trace: TraceConfig{
			FillMode: string(trace.FillOnlyBlanks),
		},
		Geocode: GeocodeConfig{
			Delay: time.Second,
		},
		Normalize: NormalizeConfig{
			DateFormat:  string(normalize.DateDMY),
			ThousandSep: string(normalize.SepNone),
		},
	}
}

var validLogLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "error": {},
}

var validOutputFormats = map[string]struct{}{
	"csv": {}, "xlsx": {}, "json": {},
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, ok := validLogLevels[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log_level %q (debug, info, warn, error)", c.LogLevel)
	}
	if _, err := ocr.ParseEnhanceMode(c.OCR.Enhance); err != nil {
		return fmt.Errorf("invalid ocr.enhance: %w", err)
	}
	if c.OCR.Language == "" {
		return fmt.Errorf("ocr.language must not be empty")
	}
	if c.PDF.DPI < 72 || c.PDF.DPI > 1200 {
		return fmt.Errorf("pdf.dpi %d out of range [72, 1200]", c.PDF.DPI)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers)
	}
	if _, ok := validOutputFormats[c.Batch.OutputFormat]; !ok {
		return fmt.Errorf("invalid batch.output_format %q (csv, xlsx, json)", c.Batch.OutputFormat)
	}
	if len(c.Batch.Delimiter) != 1 {
		return fmt.Errorf("batch.delimiter must be a single character, got %q", c.Batch.Delimiter)
	}
	if _, err := trace.ParseFillMode(c.Trace.FillMode); err != nil {
		return fmt.Errorf("invalid trace.fill_mode: %w", err)
	}
	opts := normalize.Options{
		DateFormat:  normalize.DateFormat(c.Normalize.DateFormat),
		ThousandSep: normalize.ThousandSep(c.Normalize.ThousandSep),
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid normalize settings: %w", err)
	}
	return nil
}

// NormalizeOptions builds the normalization options from config.
func (c *Config) NormalizeOptions() normalize.Options {
	return normalize.Options{
		DateFormat:       normalize.DateFormat(c.Normalize.DateFormat),
		ThousandSep:      normalize.ThousandSep(c.Normalize.ThousandSep),
		StrictDV:         c.Rules.StrictDV,
		RequiredFields:   c.Normalize.RequiredFields,
		RejectIncomplete: c.Normalize.RejectIncomplete,
	}
}
