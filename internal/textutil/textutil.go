// Package textutil repairs text coming out of OCR and legacy CSV
// exports: Unicode normalization, mojibake repair, digit confusion
// fixes and restoration of the letter Ñ in Chilean surnames.
package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe = regexp.MustCompile(`[ \t\x{00A0}]+`)
	zeroWidthRe  = regexp.MustCompile(`[\x{200B}\x{200C}\x{200D}\x{FEFF}\x{FFFD}]`)
)

// Mojibake sequences produced by decoding UTF-8 as Latin-1 somewhere in
// the legacy pipeline. Order matters: longer sequences first.
var mojibakeFixes = []struct{ bad, good string }{
	{"Ã‘", "Ñ"},
	{"Ã±", "ñ"},
	{"Ã¡", "á"},
	{"Ã©", "é"},
	{"Ã­", "í"},
	{"Ã³", "ó"},
	{"Ãº", "ú"},
	{"Ã", "Á"},
	{"Ã‰", "É"},
	{"Ã", "Í"},
	{"Ã“", "Ó"},
	{"Ãš", "Ú"},
	{"Â°", "°"},
	{"ÂŞ", "ª"},
	{"â€“", "-"},
	{"â€”", "-"},
	{"â€œ", `"`},
	{"â€", `"`},
	{"â€™", "'"},
}

// Surnames and tokens where OCR reads Ñ as N. Applied per word on
// uppercased name and address fields.
var enieFixes = map[string]string{
	"PENA":       "PEÑA",
	"MUNOZ":      "MUÑOZ",
	"NUNEZ":      "NÚÑEZ",
	"IBANEZ":     "IBÁÑEZ",
	"ZUNIGA":     "ZÚÑIGA",
	"ACUNA":      "ACUÑA",
	"VICUNA":     "VICUÑA",
	"CASTANEDA":  "CASTAÑEDA",
	"PENAILILLO": "PEÑAILILLO",
	"OCANA":      "OCAÑA",
	"ARANEDA":    "ARANEDA",
	"MONTANA":    "MONTAÑA",
	"NINO":       "NIÑO",
	"CANETE":     "CAÑETE",
	"PINERA":     "PIÑERA",
}

// Digit confusions for values that must be numeric.
var digitConfusions = strings.NewReplacer(
	"O", "0", "o", "0",
	"l", "1", "I", "1", "|", "1",
	"S", "5", "s", "5",
	"B", "8",
	"Z", "2", "z", "2",
	"G", "6",
	"q", "9",
)

// Normalize applies NFC normalization, drops replacement and zero-width
// characters, straightens typographic quotes and collapses runs of
// horizontal whitespace.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = zeroWidthRe.ReplaceAllString(s, "")
	s = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
		"–", "-", "—", "-",
	).Replace(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// RepairMojibake undoes UTF-8-as-Latin-1 damage using a literal
// replacement table, then NFC-normalizes the result.
func RepairMojibake(s string) string {
	if !strings.ContainsRune(s, 'Ã') && !strings.ContainsRune(s, 'Â') && !strings.Contains(s, "â€") {
		return s
	}
	for _, f := range mojibakeFixes {
		s = strings.ReplaceAll(s, f.bad, f.good)
	}
	return norm.NFC.String(s)
}

// FixDigits repairs OCR letter-for-digit confusions. Callers should
// only use it on values known to be numeric.
func FixDigits(s string) string {
	return digitConfusions.Replace(s)
}

// DigitsOnly strips everything but decimal digits after repairing
// confusions.
func DigitsOnly(s string) string {
	s = FixDigits(s)
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RestoreEnie rewrites whole words where OCR dropped the tilde from Ñ,
// e.g. MUNOZ -> MUÑOZ. Only exact uppercase word matches are replaced.
func RestoreEnie(s string) string {
	words := strings.Fields(s)
	changed := false
	for i, w := range words {
		if fixed, ok := enieFixes[w]; ok {
			words[i] = fixed
			changed = true
		}
	}
	if !changed {
		return s
	}
	return strings.Join(words, " ")
}

// StripAccents removes diacritics for comparison purposes while keeping
// Ñ/ñ, which are distinct letters in Spanish.
func StripAccents(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		switch {
		case r == 0x0303 && b.Len() > 0 && endsWithN(b.String()):
			// keep the tilde that forms Ñ
			b.WriteRune(r)
		case r >= 0x0300 && r <= 0x036f:
			// drop combining marks
		default:
			b.WriteRune(r)
		}
	}
	return norm.NFC.String(b.String())
}

func endsWithN(s string) bool {
	return strings.HasSuffix(s, "n") || strings.HasSuffix(s, "N")
}
