// Package classify decides whether a document is a promissory note
// (pagaré) or an installment consumer loan (crédito de consumo) from
// its OCR text.
package classify

import (
	"regexp"
	"strings"

	"github.com/legaltech-cl/extracto/internal/textutil"
)

// DocType is the document class.
type DocType string

const (
	// PromissoryNote is a single-maturity pagaré.
	PromissoryNote DocType = "PP"
	// ConsumerLoan is an installment crédito de consumo.
	ConsumerLoan DocType = "CC"
)

// Keyword cues, matched on lowercase accent-stripped text. Weights
// reflect how decisive each phrase is in the corpus.
var ppCues = []struct {
	phrase string
	weight int
}{
	{"pagare", 3},
	{"pagare a la vista", 5},
	{"a la vista", 2},
	{"suscriptor", 3},
	{"por este pagare", 4},
	{"me obligo a pagar", 3},
	{"a la orden de", 2},
	{"protesto", 2},
}

var ccCues = []struct {
	phrase string
	weight int
}{
	{"credito de consumo", 5},
	{"cuotas mensuales", 4},
	{"valor cuota", 4},
	{"cuotas iguales", 3},
	{"tasa de interes mensual", 2},
	{"primera cuota", 2},
	{"ultima cuota", 2},
	{"liquidacion de credito", 3},
	{"deudor", 1},
}

var (
	// An installment table ("en 60 cuotas") is a strong CC signal.
	installmentRe = regexp.MustCompile(`en\s+\d{1,3}\s+cuotas`)
	// "PAGARE" as a standalone title near the top is a strong PP signal.
	ppTitleRe = regexp.MustCompile(`(?m)^\s*pagare\b`)
	// "PAGARE CREDITO DE CONSUMO" is an installment contract despite
	// its pagaré-styled title.
	ccTitleRe = regexp.MustCompile(`pagare\s+credito\s+de\s+consumo`)
)

// Classify scores both document classes over the page text and returns
// the winner. Ties resolve to ConsumerLoan, which is the dominant class
// in the corpus. Identical input always yields the same result.
func Classify(text string) DocType {
	ppScore, ccScore := scores(text)
	if ppScore > ccScore {
		return PromissoryNote
	}
	return ConsumerLoan
}

// Scores exposes the raw class scores, mainly for diagnostics.
func Scores(text string) (pp, cc int) {
	return scores(text)
}

func scores(text string) (int, int) {
	t := strings.ToLower(textutil.StripAccents(text))
	t = strings.ReplaceAll(t, "ñ", "n")

	pp, cc := 0, 0
	for _, cue := range ppCues {
		if strings.Contains(t, cue.phrase) {
			pp += cue.weight
		}
	}
	for _, cue := range ccCues {
		if strings.Contains(t, cue.phrase) {
			cc += cue.weight
		}
	}
	if installmentRe.MatchString(t) {
		cc += 4
	}
	if ppTitleRe.MatchString(t) {
		pp += 4
	}
	if ccTitleRe.MatchString(t) {
		cc += 10
	}
	// A deudor identity block is contract layout, not pagaré layout.
	if strings.Contains(t, "nombre y apellidos del deudor") &&
		strings.Contains(t, "cedula de identidad") {
		cc += 4
	}
	return pp, cc
}
