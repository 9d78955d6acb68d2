package extract

import (
	"testing"

	"github.com/legaltech-cl/extracto/internal/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRUTCandidates_Weights(t *testing.T) {
	text := `Suscriptor: FERNANDO FERNANDEZ CAMPOS
C.I./RUT N° : 4.499.116-0
Cuenta corriente 12.345.678-5 del Banco`

	cands := RUTCandidates(text)
	require.NotEmpty(t, cands)

	var labeled, generic *RUTCandidate
	seen := make(map[string]int)
	for i := range cands {
		seen[cands[i].Body]++
		switch cands[i].Body {
		case "4499116":
			labeled = &cands[i]
		case "12345678":
			generic = &cands[i]
		}
	}
	require.NotNil(t, labeled)
	require.NotNil(t, generic)
	// one candidate per physical token, carrying the best weight
	assert.Equal(t, 1, seen["4499116"])
	assert.Equal(t, 20, labeled.Weight)
	assert.True(t, labeled.Valid)
	assert.LessOrEqual(t, generic.Weight, 3)
}

func TestRUTCandidates_SkipsOperationContext(t *testing.T) {
	text := "Operación N° 12345678-9 del producto"
	for _, c := range RUTCandidates(text) {
		assert.NotEqual(t, "12345678", c.Body, "operation numbers must not surface as generic RUTs")
	}
}

func TestChooseRUT_ExcludesInstitutional(t *testing.T) {
	text := `BANCO ITAU CHILE RUT: 97.023.000-9
Suscriptor FERNANDO FERNANDEZ C.I./RUT: 4.499.116-0`

	cands := RUTCandidates(text)
	got, ok := ChooseRUT(text, cands, classify.PromissoryNote, Itau)
	require.True(t, ok)
	assert.Equal(t, "4499116", got.Body)
	assert.Equal(t, "0", got.DV)
}

func TestChooseRUT_BankContextPenalty(t *testing.T) {
	text := `cuenta del BANCO SANTANDER 11.111.111-1
Cliente: MIGUEL ROA RUT: 15.657.067-2`

	cands := RUTCandidates(text)
	got, ok := ChooseRUT(text, cands, classify.ConsumerLoan, Santander)
	require.True(t, ok)
	assert.Equal(t, "15657067", got.Body)
}

func TestChooseRUT_Deterministic(t *testing.T) {
	text := "RUT: 4.499.116-0 y RUT: 15.657.067-2"
	cands := RUTCandidates(text)
	first, ok := ChooseRUT(text, cands, classify.ConsumerLoan, Itau)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, _ := ChooseRUT(text, RUTCandidates(text), classify.ConsumerLoan, Itau)
		assert.Equal(t, first.Body, again.Body)
	}
}

func TestChooseRUT_Empty(t *testing.T) {
	_, ok := ChooseRUT("sin ruts", nil, classify.ConsumerLoan, Itau)
	assert.False(t, ok)
}

func TestProximityBonus(t *testing.T) {
	assert.Equal(t, 30, proximityBonus(100, []int{100}))
	assert.Equal(t, 20, proximityBonus(200, []int{100}))
	assert.Equal(t, 0, proximityBonus(1000, []int{100}))
	assert.Equal(t, 0, proximityBonus(100, nil))
}
