package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legaltech-cl/extracto/internal/extract"
	"github.com/legaltech-cl/extracto/internal/pdf"
	"github.com/legaltech-cl/extracto/internal/record"
)

type fakeRasterizer struct {
	pages int
	err   error
}

func (f *fakeRasterizer) Render(_ context.Context, _, destDir string) ([]pdf.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	pages := make([]pdf.Page, f.pages)
	for i := range pages {
		pages[i] = pdf.Page{Number: i + 1, Path: filepath.Join(destDir, "page.png")}
	}
	return pages, nil
}

type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) RecognizeFile(context.Context, string) (string, error) {
	return f.text, f.err
}

// stalledRecognizer never answers until its context expires.
type stalledRecognizer struct{}

func (stalledRecognizer) RecognizeFile(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

const samplePageText = `PAGARE
OPERACION NRO: 4191896500082450
SUSCRIPTOR: JUAN ANDRES SOTO MUNOZ
RUT: 15.657.067-2
DOMICILIO: CALLE LAUTARO 1234, TEMUCO
POR ESTE PAGARE me obligo a pagar a la orden del BANCO
la suma de $ 5.000.000.- en 48 cuotas mensuales`

func testPipeline(t *testing.T, rec Recognizer, ras Rasterizer) *pipeline {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 2
	return &pipeline{
		engine:   rec,
		renderer: ras,
		profile:  extract.ProfileFor(cfg.Bank),
		cfg:      cfg,
	}
}

func writeTempPDFs(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o600)
		require.NoError(t, err)
	}
	return dir
}

func TestDiscoverPDFFiles(t *testing.T) {
	dir := writeTempPDFs(t, "b_60247566.pdf", "a_4191896.pdf", "notes.txt")

	files, err := discoverPDFFiles([]string{dir}, false, nil, nil)
	require.NoError(t, err)
	require.Len(t, files, 2)
	// Sorted, txt excluded.
	assert.True(t, strings.HasSuffix(files[0], "a_4191896.pdf"))
	assert.True(t, strings.HasSuffix(files[1], "b_60247566.pdf"))
}

func TestDiscoverPDFFiles_Dedup(t *testing.T) {
	dir := writeTempPDFs(t, "doc.pdf")
	path := filepath.Join(dir, "doc.pdf")

	files, err := discoverPDFFiles([]string{path, path, dir}, false, nil, nil)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestDiscoverPDFFiles_Patterns(t *testing.T) {
	dir := writeTempPDFs(t, "itau_1.pdf", "santander_2.pdf", "itau_draft.pdf")

	files, err := discoverPDFFiles([]string{dir}, false,
		[]string{"itau_*.pdf"}, []string{"*draft*"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasSuffix(files[0], "itau_1.pdf"))
}

func TestDiscoverPDFFiles_Missing(t *testing.T) {
	_, err := discoverPDFFiles([]string{"/nonexistent/path"}, false, nil, nil)
	assert.Error(t, err)
}

func TestProcessDocument(t *testing.T) {
	p := testPipeline(t, &fakeRecognizer{text: samplePageText}, &fakeRasterizer{pages: 1})

	rec, err := p.processDocument(context.Background(), "4191896500082450.pdf")
	require.NoError(t, err)
	assert.Equal(t, "4191896500082450", rec[record.FieldOperacion])
	assert.Equal(t, "15657067", rec[record.FieldRUT])
	assert.Equal(t, "2", rec[record.FieldDV])
}

func TestProcessDocument_RenderError(t *testing.T) {
	p := testPipeline(t, &fakeRecognizer{text: samplePageText},
		&fakeRasterizer{err: errors.New("pdftoppm not found")})

	_, err := p.processDocument(context.Background(), "doc.pdf")
	assert.Error(t, err)
}

func TestProcessDocument_AllPagesFail(t *testing.T) {
	p := testPipeline(t, &fakeRecognizer{err: errors.New("tesseract crashed")},
		&fakeRasterizer{pages: 2})

	_, err := p.processDocument(context.Background(), "doc.pdf")
	assert.Error(t, err)
}

func TestProcessDocument_PageTimeout(t *testing.T) {
	p := testPipeline(t, stalledRecognizer{}, &fakeRasterizer{pages: 1})
	p.cfg.PageTimeout = 10 * time.Millisecond

	start := time.Now()
	_, err := p.processDocument(context.Background(), "doc.pdf")
	assert.Error(t, err)
	// The hung page is cut off by the timeout, not waited out.
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestProcessDocumentsParallel_OrderStable(t *testing.T) {
	p := testPipeline(t, &fakeRecognizer{text: samplePageText}, &fakeRasterizer{pages: 1})

	files := []string{"111111.pdf", "222222.pdf", "333333.pdf", "444444.pdf"}
	rows, statuses, err := processDocumentsParallel(context.Background(), p, files)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Len(t, statuses, 4)
	for i, s := range statuses {
		assert.Equal(t, files[i], s.Path)
		assert.NoError(t, s.Err)
	}
}

func TestProcessDocumentsParallel_ContinueOnError(t *testing.T) {
	p := testPipeline(t, &fakeRecognizer{text: samplePageText},
		&fakeRasterizer{err: errors.New("render failed")})
	p.cfg.ContinueOnError = true

	rows, statuses, err := processDocumentsParallel(context.Background(), p,
		[]string{"60247566.pdf"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Error(t, statuses[0].Err)
	// Failed documents still yield a row carrying the operation number.
	assert.Equal(t, "60247566", rows[0][record.FieldOperacion])
	assert.Empty(t, rows[0][record.FieldRUT])
}

func TestProcessDocumentsParallel_AbortOnError(t *testing.T) {
	p := testPipeline(t, &fakeRecognizer{text: samplePageText},
		&fakeRasterizer{err: errors.New("render failed")})
	p.cfg.ContinueOnError = false

	_, _, err := processDocumentsParallel(context.Background(), p,
		[]string{"60247566.pdf", "4191896.pdf"})
	assert.Error(t, err)
}

func TestProfileForPath(t *testing.T) {
	p := testPipeline(t, &fakeRecognizer{text: samplePageText}, &fakeRasterizer{pages: 1})

	assert.Equal(t, "itau", p.profileFor("/docs/4191896.pdf").Name)
	assert.Equal(t, "santander", p.profileFor("/docs/santander/4191896.pdf").Name)

	// Venue overrides survive the filename hint.
	p.cfg.Exhorto = "CONCEPCION"
	hinted := p.profileFor("/docs/indisa/123.pdf")
	assert.Equal(t, "indisa", hinted.Name)
	assert.Equal(t, "CONCEPCION", hinted.Exhorto)
}

func TestResultFailed(t *testing.T) {
	r := &Result{Statuses: []DocumentStatus{
		{Path: "a.pdf"},
		{Path: "b.pdf", Err: errors.New("boom")},
		{Path: "c.pdf", Err: errors.New("boom")},
	}}
	assert.Equal(t, 2, r.Failed())
}

func TestFormatCSV(t *testing.T) {
	rec := record.Empty("123456")
	rec[record.FieldNombre] = "JUAN SOTO"

	out, err := FormatRows([]record.Record{rec}, "csv", ';')
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(record.Headers, ";"), lines[0])
	cols := strings.Split(lines[1], ";")
	require.Len(t, cols, len(record.Headers))
	assert.Equal(t, "123456", cols[0])
	assert.Equal(t, "JUAN SOTO", cols[3])
}

func TestFormatJSON(t *testing.T) {
	rec := record.Empty("123456")

	out, err := FormatRows([]record.Record{rec}, "json", ';')
	require.NoError(t, err)
	assert.Contains(t, out, `"OPERACION": "123456"`)
}

func TestFormatRows_Unsupported(t *testing.T) {
	_, err := FormatRows(nil, "parquet", ';')
	assert.Error(t, err)
}

func TestWriteOutput_XLSX(t *testing.T) {
	rec := record.Empty("123456")
	path := filepath.Join(t.TempDir(), "out.xlsx")

	err := WriteOutput([]record.Record{rec}, "xlsx", ';', path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteOutput_XLSXNeedsPath(t *testing.T) {
	err := WriteOutput(nil, "xlsx", ';', "")
	assert.Error(t, err)
}
