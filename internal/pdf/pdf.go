// Package pdf validates credit-document PDFs and rasterizes their
// pages for OCR. Validation and page counting go through pdfcpu;
// rasterization shells out to poppler's pdftoppm, which handles the
// scanned-image PDFs these documents invariably are.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Page is one rasterized page.
type Page struct {
	Number int
	Path   string
}

// Validate checks that path is a readable, well-formed PDF.
func Validate(path string) error {
	if err := api.ValidateFile(path, nil); err != nil {
		return fmt.Errorf("invalid pdf %s: %w", path, err)
	}
	return nil
}

// PageCount returns the number of pages in the PDF.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", path, err)
	}
	return n, nil
}

// Renderer rasterizes PDF pages via pdftoppm.
type Renderer struct {
	// Binary is the pdftoppm executable, "pdftoppm" by default.
	Binary string
	// DPI is the render resolution; 300 works well for OCR.
	DPI int
}

// NewRenderer returns a Renderer with the given binary path and DPI,
// applying defaults for zero values.
func NewRenderer(binary string, dpi int) *Renderer {
	if binary == "" {
		binary = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &Renderer{Binary: binary, DPI: dpi}
}

// Render rasterizes every page of pdfPath into destDir as PNG files
// and returns them ordered by page number. The caller owns destDir and
// its cleanup.
func (r *Renderer) Render(ctx context.Context, pdfPath, destDir string) ([]Page, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, fmt.Errorf("pdf not accessible: %w", err)
	}
	prefix := filepath.Join(destDir, "page")

	cmd := exec.CommandContext(ctx, r.Binary,
		"-png",
		"-r", fmt.Sprintf("%d", r.DPI),
		pdfPath, prefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("pdftoppm failed for %s: %w: %s", pdfPath, err, msg)
		}
		return nil, fmt.Errorf("pdftoppm failed for %s: %w", pdfPath, err)
	}

	pages, err := collectPages(destDir)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages for %s", pdfPath)
	}
	return pages, nil
}

// collectPages gathers the page-N.png files pdftoppm wrote, sorted by
// page number. pdftoppm zero-pads the numbers, so a lexical parse of
// the suffix is enough.
func collectPages(dir string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading render dir: %w", err)
	}
	var pages []Page
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		num, ok := parsePageNumber(entry.Name())
		if !ok {
			continue
		}
		pages = append(pages, Page{Number: num, Path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages, nil
}

// parsePageNumber extracts N from "page-N.png" (or "page-0N.png").
func parsePageNumber(name string) (int, bool) {
	if !strings.HasPrefix(name, "page-") || !strings.HasSuffix(name, ".png") {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, "page-"), ".png")
	n := 0
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if digits == "" {
		return 0, false
	}
	return n, true
}
