package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/legaltech-cl/extracto/internal/assemble"
	"github.com/legaltech-cl/extracto/internal/extract"
	"github.com/legaltech-cl/extracto/internal/ocr"
	"github.com/legaltech-cl/extracto/internal/pdf"
	"github.com/legaltech-cl/extracto/internal/record"
)

// Recognizer produces text for a page image. Satisfied by ocr.Engine.
type Recognizer interface {
	RecognizeFile(ctx context.Context, imagePath string) (string, error)
}

// Rasterizer renders a PDF into page images. Satisfied by pdf.Renderer.
type Rasterizer interface {
	Render(ctx context.Context, pdfPath, destDir string) ([]pdf.Page, error)
}

// pipeline bundles the per-document processing dependencies.
type pipeline struct {
	engine   Recognizer
	renderer Rasterizer
	profile  *extract.Profile
	cfg      *Config
}

func buildPipeline(cfg *Config) *pipeline {
	return &pipeline{
		engine: ocr.NewEngine(cfg.Language,
			ocr.WithEnhance(cfg.Enhance)),
		renderer: pdf.NewRenderer(cfg.PdftoppmPath, cfg.DPI),
		profile:  applyProfileOverrides(extract.ProfileFor(cfg.Bank), cfg),
		cfg:      cfg,
	}
}

// applyProfileOverrides copies the profile when the config replaces its
// venue defaults.
func applyProfileOverrides(profile *extract.Profile, cfg *Config) *extract.Profile {
	if cfg.Exhorto == "" && cfg.Sucursal == "" {
		return profile
	}
	p := *profile
	if cfg.Exhorto != "" {
		p.Exhorto = cfg.Exhorto
	}
	if cfg.Sucursal != "" {
		p.Sucursal = cfg.Sucursal
	}
	return &p
}

// profileFor picks the profile for one document: a bank name embedded
// in the file name wins over the configured default.
func (p *pipeline) profileFor(path string) *extract.Profile {
	if hinted, ok := extract.ProfileHint(path); ok && hinted.Name != p.profile.Name {
		return applyProfileOverrides(hinted, p.cfg)
	}
	return p.profile
}

// processDocument runs one PDF through render, OCR and assembly. The
// page rasters live in a temp directory that is always removed.
func (p *pipeline) processDocument(ctx context.Context, path string) (record.Record, error) {
	tempDir, err := os.MkdirTemp("", "extracto-doc-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	if err := pdf.Validate(path); err != nil {
		slog.Warn("pdf validation failed, attempting render anyway", "file", path, "error", err)
	}

	pages, err := p.renderer.Render(ctx, path, tempDir)
	if err != nil {
		return nil, fmt.Errorf("rasterizing %s: %w", path, err)
	}

	texts := make([]string, 0, len(pages))
	for _, page := range pages {
		text, err := p.recognizePage(ctx, page.Path)
		if err != nil {
			slog.Warn("page recognition failed", "file", path, "page", page.Number, "error", err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		texts = append(texts, text)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("no page of %s produced text", path)
	}

	rec := assemble.Document(texts, path, p.profileFor(path))
	p.geocodeFallback(ctx, rec)
	return rec, nil
}

// recognizePage runs OCR on one page image under the configured page
// timeout, so a stuck tesseract pass costs one page instead of the run.
func (p *pipeline) recognizePage(ctx context.Context, imagePath string) (string, error) {
	if p.cfg.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.PageTimeout)
		defer cancel()
	}
	return p.engine.RecognizeFile(ctx, imagePath)
}

// geocodeFallback fills a missing comuna from the street address.
func (p *pipeline) geocodeFallback(ctx context.Context, rec record.Record) {
	if p.cfg.Geocoder == nil {
		return
	}
	if rec[record.FieldComuna] != "" || rec[record.FieldDireccion] == "" {
		return
	}
	name, conf, err := p.cfg.Geocoder.ResolveComuna(ctx, rec[record.FieldDireccion])
	if err != nil {
		slog.Warn("geocoding failed", "address", rec[record.FieldDireccion], "error", err)
		return
	}
	if name != "" {
		slog.Debug("comuna resolved by geocoding",
			"address", rec[record.FieldDireccion], "comuna", name, "confidence", conf)
		rec[record.FieldComuna] = name
		rec.SetDefault(record.FieldCiudad, name)
	}
}

// DocumentStatus records the outcome for one input file.
type DocumentStatus struct {
	Path string
	Err  error
}

// processDocumentsParallel fans documents out to a worker pool. The
// returned slices are indexed like files, so output order matches the
// discovered input order regardless of scheduling.
func processDocumentsParallel(ctx context.Context, p *pipeline, files []string) ([]record.Record, []DocumentStatus, error) {
	rows := make([]record.Record, len(files))
	statuses := make([]DocumentStatus, len(files))

	workers := p.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var done atomic.Int64
	if p.cfg.ShowProgress && !p.cfg.Quiet {
		stop := startProgressReporter(ctx, &done, len(files), p.cfg.ProgressInterval)
		defer stop()
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				path := files[i]
				rec, err := p.processDocument(ctx, path)
				statuses[i] = DocumentStatus{Path: path, Err: err}
				done.Add(1)
				if err == nil {
					rows[i] = rec
					continue
				}
				if !p.cfg.ContinueOnError {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("processing %s: %w", path, err)
						cancel()
					})
					return
				}
				slog.Warn("document failed, emitting empty row", "file", path, "error", err)
				rows[i] = record.Empty(extract.OperationFromFilename(path))
			}
		}()
	}

feed:
	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return rows, statuses, nil
}

// startProgressReporter logs completion counts on a fixed interval
// until the returned stop function is called.
func startProgressReporter(ctx context.Context, done *atomic.Int64, total int, interval time.Duration) func() {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	stopped := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				slog.Info("batch progress", "done", done.Load(), "total", total)
			case <-ctx.Done():
				return
			case <-stopped:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(stopped)
	}
}
