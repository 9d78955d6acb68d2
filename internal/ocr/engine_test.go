package ocr

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTexts_LongestWins(t *testing.T) {
	texts := []string{
		"linea corta",
		"esta es la salida mas larga\ncon dos lineas",
	}
	merged := MergeTexts(texts)
	assert.Contains(t, merged, "esta es la salida mas larga")
	// the shorter pass contributes its unique line
	assert.Contains(t, merged, "linea corta")
}

func TestMergeTexts_NoDuplicateLines(t *testing.T) {
	texts := []string{
		"RUT: 4.499.116-0\nTEMUCO",
		"RUT: 4.499.116-0",
	}
	merged := MergeTexts(texts)
	assert.Equal(t, "RUT: 4.499.116-0\nTEMUCO", merged)
}

func TestMergeTexts_Deterministic(t *testing.T) {
	texts := []string{
		"base base base base",
		"bb\naa",
		"cc\naa",
	}
	first := MergeTexts(texts)
	for range 10 {
		assert.Equal(t, first, MergeTexts(texts))
	}
	// unique extras sorted by length desc, then alphabetical
	assert.Equal(t, "base base base base\naa\nbb\ncc", first)
}

func TestMergeTexts_Empty(t *testing.T) {
	assert.Empty(t, MergeTexts(nil))
	assert.Equal(t, "solo", MergeTexts([]string{"solo"}))
}

func TestParseEnhanceMode(t *testing.T) {
	for _, s := range []string{"off", "basic", "aggressive"} {
		m, err := ParseEnhanceMode(s)
		require.NoError(t, err)
		assert.Equal(t, EnhanceMode(s), m)
	}
	_, err := ParseEnhanceMode("extreme")
	assert.Error(t, err)
}

func TestEnhance_UpscalesSmallImages(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 400, 300))
	out := Enhance(small, EnhanceBasic)
	assert.GreaterOrEqual(t, out.Bounds().Dx(), minOCRWidth)
}

func TestEnhance_OffIsIdentity(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.Equal(t, image.Image(img), Enhance(img, EnhanceOff))
}

func TestEnhanceFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")

	img := imaging.New(100, 80, color.White)
	require.NoError(t, imaging.Save(img, src))

	require.NoError(t, EnhanceFile(src, dst, EnhanceBasic))
	out, err := imaging.Open(dst)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, out.Bounds().Dx(), minOCRWidth)
}

func TestEnhanceFile_MissingSource(t *testing.T) {
	assert.Error(t, EnhanceFile("/nonexistent.png", "/tmp/out.png", EnhanceBasic))
}

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine("spa")
	assert.Equal(t, "spa", e.language)
	assert.Len(t, e.passes, 4)
	assert.Equal(t, EnhanceBasic, e.enhance)
}

func TestNewEngine_Options(t *testing.T) {
	passes := []Pass{DefaultPasses[0]}
	e := NewEngine("spa", WithPasses(passes), WithEnhance(EnhanceOff))
	assert.Len(t, e.passes, 1)
	assert.Equal(t, EnhanceOff, e.enhance)
}
