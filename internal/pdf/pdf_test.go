package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer_Defaults(t *testing.T) {
	r := NewRenderer("", 0)
	assert.Equal(t, "pdftoppm", r.Binary)
	assert.Equal(t, 300, r.DPI)

	r = NewRenderer("/usr/local/bin/pdftoppm", 150)
	assert.Equal(t, "/usr/local/bin/pdftoppm", r.Binary)
	assert.Equal(t, 150, r.DPI)
}

func TestRender_MissingFile(t *testing.T) {
	r := NewRenderer("", 0)
	_, err := r.Render(context.Background(), "/nonexistent.pdf", t.TempDir())
	assert.Error(t, err)
}

func TestParsePageNumber(t *testing.T) {
	tests := []struct {
		name string
		num  int
		ok   bool
	}{
		{"page-1.png", 1, true},
		{"page-01.png", 1, true},
		{"page-12.png", 12, true},
		{"page-1.jpg", 0, false},
		{"other-1.png", 0, false},
		{"page-.png", 0, false},
		{"page-x.png", 0, false},
	}
	for _, tt := range tests {
		num, ok := parsePageNumber(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		if tt.ok {
			assert.Equal(t, tt.num, num, tt.name)
		}
	}
}

func TestCollectPages_Sorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"page-10.png", "page-2.png", "page-1.png", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	pages, err := collectPages(dir)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, 2, pages[1].Number)
	assert.Equal(t, 10, pages[2].Number)
}

func TestValidate_MissingFile(t *testing.T) {
	assert.Error(t, Validate("/nonexistent.pdf"))
}

func TestPageCount_MissingFile(t *testing.T) {
	_, err := PageCount("/nonexistent.pdf")
	assert.Error(t, err)
}
