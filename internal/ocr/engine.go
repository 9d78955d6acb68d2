// Package ocr runs Tesseract over page images. Scanned legal documents
// OCR unevenly, so every page goes through several recognition passes
// with different segmentation settings and the results are merged.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Pass is one Tesseract configuration.
type Pass struct {
	Name       string
	EngineMode string // tessedit_ocr_engine_mode value
	SegMode    gosseract.PageSegMode
}

// DefaultPasses is the pass order tuned on the document corpus: block
// segmentation first, then column and full-auto layouts, then the
// legacy engine which sometimes reads degraded stamps better.
var DefaultPasses = []Pass{
	{Name: "oem3-psm6", EngineMode: "3", SegMode: gosseract.PSM_SINGLE_BLOCK},
	{Name: "oem3-psm4", EngineMode: "3", SegMode: gosseract.PSM_SINGLE_COLUMN},
	{Name: "oem3-psm3", EngineMode: "3", SegMode: gosseract.PSM_AUTO},
	{Name: "oem1-psm6", EngineMode: "1", SegMode: gosseract.PSM_SINGLE_BLOCK},
}

// Engine recognizes page images.
type Engine struct {
	language string
	passes   []Pass
	enhance  EnhanceMode
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPasses overrides the recognition pass list.
func WithPasses(passes []Pass) Option {
	return func(e *Engine) {
		if len(passes) > 0 {
			e.passes = passes
		}
	}
}

// WithEnhance sets the pre-OCR image enhancement mode.
func WithEnhance(mode EnhanceMode) Option {
	return func(e *Engine) { e.enhance = mode }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine for the given Tesseract language
// (e.g. "spa").
func NewEngine(language string, opts ...Option) *Engine {
	e := &Engine{
		language: language,
		passes:   DefaultPasses,
		enhance:  EnhanceBasic,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecognizeFile OCRs a page image through every pass and merges the
// results. A pass that fails is logged and skipped; the call errors
// only when every pass failed.
func (e *Engine) RecognizeFile(ctx context.Context, imagePath string) (string, error) {
	srcPath := imagePath
	if e.enhance != EnhanceOff {
		enhanced, cleanup, err := e.enhanceToTemp(imagePath)
		if err != nil {
			e.logger.Warn("image enhancement failed, using original",
				"image", imagePath, "error", err)
		} else {
			srcPath = enhanced
			defer cleanup()
		}
	}

	texts := make([]string, 0, len(e.passes))
	var lastErr error
	for _, pass := range e.passes {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := e.runPass(srcPath, pass)
		if err != nil {
			lastErr = err
			e.logger.Warn("ocr pass failed",
				"pass", pass.Name, "image", imagePath, "error", err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		if lastErr != nil {
			return "", fmt.Errorf("all ocr passes failed for %s: %w", imagePath, lastErr)
		}
		return "", errors.New("no text recognized in " + imagePath)
	}
	return MergeTexts(texts), nil
}

func (e *Engine) runPass(imagePath string, pass Pass) (string, error) {
	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("setting language %q: %w", e.language, err)
	}
	if err := client.SetVariable("tessedit_ocr_engine_mode", pass.EngineMode); err != nil {
		return "", fmt.Errorf("setting engine mode: %w", err)
	}
	if err := client.SetPageSegMode(pass.SegMode); err != nil {
		return "", fmt.Errorf("setting segmentation mode: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("setting image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("pass %s: %w", pass.Name, err)
	}
	return text, nil
}

func (e *Engine) enhanceToTemp(imagePath string) (string, func(), error) {
	f, err := os.CreateTemp("", "extracto-enh-*"+filepath.Ext(imagePath))
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	_ = f.Close()
	if err := EnhanceFile(imagePath, path, e.enhance); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}

// MergeTexts combines pass outputs: the longest text is the base, and
// lines the other passes saw that the base missed are appended sorted
// by length descending (ties alphabetical). The merge is deterministic
// for identical input.
func MergeTexts(texts []string) string {
	if len(texts) == 0 {
		return ""
	}
	base := texts[0]
	for _, t := range texts[1:] {
		if len(t) > len(base) {
			base = t
		}
	}

	known := make(map[string]struct{})
	for _, line := range strings.Split(base, "\n") {
		known[strings.TrimSpace(line)] = struct{}{}
	}

	extraSet := make(map[string]struct{})
	for _, t := range texts {
		if t == base {
			continue
		}
		for _, line := range strings.Split(t, "\n") {
			l := strings.TrimSpace(line)
			if l == "" {
				continue
			}
			if _, ok := known[l]; ok {
				continue
			}
			extraSet[l] = struct{}{}
		}
	}
	if len(extraSet) == 0 {
		return base
	}

	extras := make([]string, 0, len(extraSet))
	for l := range extraSet {
		extras = append(extras, l)
	}
	sort.Slice(extras, func(i, j int) bool {
		if len(extras[i]) != len(extras[j]) {
			return len(extras[i]) > len(extras[j])
		}
		return extras[i] < extras[j]
	})
	return base + "\n" + strings.Join(extras, "\n")
}
