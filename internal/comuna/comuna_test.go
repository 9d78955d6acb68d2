package comuna

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("TEMUCO"))
	assert.True(t, IsValid("temuco"))
	assert.True(t, IsValid("Ñuñoa"))
	assert.True(t, IsValid("  Padre Las Casas "))
	assert.False(t, IsValid("NARNIA"))
	assert.False(t, IsValid(""))
}

func TestFix_DirectCorrection(t *testing.T) {
	got, ok := Fix("TAMUCO")
	require.True(t, ok)
	assert.Equal(t, "TEMUCO", got)

	got, ok = Fix("Villarica")
	require.True(t, ok)
	assert.Equal(t, "VILLARRICA", got)
}

func TestFix_ExactAndWindow(t *testing.T) {
	got, ok := Fix("temuco")
	require.True(t, ok)
	assert.Equal(t, "TEMUCO", got)

	// noise word around a valid comuna
	got, ok = Fix("CIUDAD TEMUCO")
	require.True(t, ok)
	assert.Equal(t, "TEMUCO", got)

	got, ok = Fix("PADRE LAS CASAS CHILE")
	require.True(t, ok)
	assert.Equal(t, "PADRE LAS CASAS", got)
}

func TestFix_Similarity(t *testing.T) {
	got, ok := Fix("TEMUDO")
	require.True(t, ok)
	assert.Equal(t, "TEMUCO", got)

	_, ok = Fix("XQZW")
	assert.False(t, ok)

	_, ok = Fix("")
	assert.False(t, ok)
}

func TestFix_Deterministic(t *testing.T) {
	a, _ := Fix("TEMUDO")
	b, _ := Fix("TEMUDO")
	assert.Equal(t, a, b)
}

func TestExact(t *testing.T) {
	got, ok := Exact("temuco")
	require.True(t, ok)
	assert.Equal(t, "TEMUCO", got)

	got, ok = Exact("TAMUCO")
	require.True(t, ok)
	assert.Equal(t, "TEMUCO", got)

	// no fuzzy stages
	_, ok = Exact("TEMUDO")
	assert.False(t, ok)
	_, ok = Exact("CIUDAD TEMUCO")
	assert.False(t, ok)
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("TEMUCO", "TEMUCO"), 1e-9)
	assert.Greater(t, similarity("TEMUCO", "TEMUDO"), 0.8)
	assert.Less(t, similarity("TEMUCO", "ARICA"), 0.5)
}
