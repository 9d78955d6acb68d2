package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hola mundo", Normalize("hola  mundo"))
	assert.Equal(t, `"cita"`, Normalize("“cita”"))
	assert.Equal(t, "a-b", Normalize("a–b"))
	assert.Equal(t, "x", Normalize("  x�  "))
}

func TestNormalize_ZeroWidth(t *testing.T) {
	assert.Equal(t, "RUT", Normalize("R​U‍T"))
	assert.Equal(t, "TEMUCO", Normalize("\ufeffTEMUCO"))
}

func TestRepairMojibake(t *testing.T) {
	assert.Equal(t, "MUÑOZ", RepairMojibake("MUÃ‘OZ"))
	assert.Equal(t, "pagaré", RepairMojibake("pagarÃ©"))
	assert.Equal(t, "N° 123", RepairMojibake("NÂ° 123"))
	// untouched text passes through unchanged
	assert.Equal(t, "TEMUCO", RepairMojibake("TEMUCO"))
}

func TestFixDigits(t *testing.T) {
	assert.Equal(t, "1005", FixDigits("lOOS"))
	assert.Equal(t, "280", FixDigits("2BO"))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "5713357", DigitsOnly("$ 5.713.357"))
	assert.Equal(t, "1234", DigitsOnly("l2.3A4"))
}

func TestRestoreEnie(t *testing.T) {
	assert.Equal(t, "MIGUEL MUÑOZ PEÑA", RestoreEnie("MIGUEL MUNOZ PENA"))
	assert.Equal(t, "JUAN PEREZ", RestoreEnie("JUAN PEREZ"))
	// partial words are not rewritten
	assert.Equal(t, "PENAL", RestoreEnie("PENAL"))
}

func TestStripAccents(t *testing.T) {
	assert.Equal(t, "credito", StripAccents("crédito"))
	assert.Equal(t, "MUÑOZ", StripAccents("MUÑOZ"))
	assert.Equal(t, "Nuñez", StripAccents("Núñez"))
}
