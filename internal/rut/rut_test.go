package rut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDV(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"4499116", "0"},
		{"15657067", "2"},
		{"97023000", "9"},
		{"12345678", "5"},
		{"7775777", "5"},
		{"20000003", "K"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeDV(tt.body), "body %s", tt.body)
	}
}

func TestComputeDV_Invalid(t *testing.T) {
	assert.Empty(t, ComputeDV(""))
	assert.Empty(t, ComputeDV("abc"))
	assert.Empty(t, ComputeDV("123"))
	// bodies shorter than six digits never form a RUT
	assert.Empty(t, ComputeDV("1"))
}

func TestValidate(t *testing.T) {
	assert.True(t, Validate("4499116", "0"))
	assert.True(t, Validate("15657067", "2"))
	assert.False(t, Validate("15657067", "3"))
	assert.False(t, Validate("", "0"))

	// K is case-insensitive
	assert.Equal(t, Validate("10101010", "k"), Validate("10101010", "K"))
}

func TestCleanBody_OCRFixes(t *testing.T) {
	assert.Equal(t, "15657067", CleanBody("15.657.067"))
	assert.Equal(t, "15057061", CleanBody("15O57O6l"))
	assert.Empty(t, CleanBody("12"))
	assert.Empty(t, CleanBody("not-a-rut"))
}

func TestNormalize(t *testing.T) {
	body, dv := Normalize("15.657.067", " 2 ")
	assert.Equal(t, "15657067", body)
	assert.Equal(t, "2", dv)

	body, dv = Normalize("10101010", "k")
	assert.Equal(t, "10101010", body)
	assert.Equal(t, "K", dv)

	body, dv = Normalize("xx", "2")
	assert.Empty(t, body)
	assert.Empty(t, dv)
}

func TestSplit(t *testing.T) {
	body, dv, ok := Split("12.345.678-5")
	require.True(t, ok)
	assert.Equal(t, "12345678", body)
	assert.Equal(t, "5", dv)

	body, dv, ok = Split("4499116-0")
	require.True(t, ok)
	assert.Equal(t, "4499116", body)
	assert.Equal(t, "0", dv)

	_, _, ok = Split("operacion 123456")
	assert.False(t, ok)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12.345.678-5", Format("12345678", "5"))
	assert.Equal(t, "4.499.116-0", Format("4499116", "0"))
	assert.Empty(t, Format("12", "3"))
}
