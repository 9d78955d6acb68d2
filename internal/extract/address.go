package extract

import (
	"regexp"
	"strings"

	"github.com/legaltech-cl/extracto/internal/comuna"
)

var domicilioPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)domicili(?:o|ado)\s+en\s+([^\n]{8,90})`),
	regexp.MustCompile(`(?i)domicilio\s*[:\s]\s*([^\n]{8,90})`),
	regexp.MustCompile(`(?i)direcci[óo]n\s*[:\s]\s*([^\n]{8,90})`),
}

var addressKeywords = []string{
	"CALLE", "AVENIDA", "AV.", "AVDA", "PASAJE", "PSJE", "CAMINO",
	"POBLACION", "POBLACIÓN", "VILLA", "SECTOR", "KM ", "PARCELA",
}

var legalBoilerplate = []string{
	"COMPETENCIA", "EFECTOS LEGALES", "TRIBUNALES", "DOMICILIO ESPECIAL",
	"JURISDICCION", "JURISDICCIÓN", "PRORROGA", "PRÓRROGA",
}

// scoreAddressLine rates how address-like a captured line is. Commas
// and street numbers are good signs; venue-selection boilerplate is a
// strong negative.
func scoreAddressLine(line string) int {
	up := strings.ToUpper(line)
	score := 0
	if strings.Contains(line, ",") {
		score += 3
	}
	if regexp.MustCompile(`\d{1,5}`).MatchString(line) {
		score += 3
	}
	for _, kw := range addressKeywords {
		if strings.Contains(up, kw) {
			score += 2
			break
		}
	}
	for _, b := range legalBoilerplate {
		if strings.Contains(up, b) {
			score -= 5
			break
		}
	}
	return score
}

// AddressComuna extracts the debtor street address and comuna from
// promissory-note text. Every pattern hit is scored and the best
// candidate wins; the comuna is then split off the address tail.
func AddressComuna(text string) (address, comunaName string) {
	type cand struct {
		val   string
		score int
		pos   int
	}
	var cands []cand
	for _, re := range domicilioPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			val := strings.TrimSpace(text[m[2]:m[3]])
			if val == "" || IsBankHeaderLine(val) {
				continue
			}
			cands = append(cands, cand{val: val, score: scoreAddressLine(val), pos: m[0]})
		}
	}
	if len(cands) == 0 {
		return "", ""
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.score > best.score || (c.score == best.score && c.pos < best.pos) {
			best = c
		}
	}
	if best.score < 0 {
		return "", ""
	}
	return SplitAddressComuna(best.val)
}

// SplitAddressComuna separates a trailing comuna from an address line.
// Comma-separated segments are tried right to left first; failing that
// 1-3 word tails are tried against the comuna set. Matching is exact
// here so street names never fuzzy-match a comuna.
func SplitAddressComuna(s string) (address, comunaName string) {
	s = strings.TrimSpace(strings.Trim(s, ".,;"))
	if parts := strings.Split(s, ","); len(parts) > 1 {
		for i := len(parts) - 1; i >= 1; i-- {
			if fixed, ok := comuna.Exact(parts[i]); ok {
				return cleanAddress(strings.Join(parts[:i], ",")), fixed
			}
		}
	}
	words := strings.Fields(s)
	for n := 3; n >= 1; n-- {
		if len(words) <= n {
			continue
		}
		tail := strings.Join(words[len(words)-n:], " ")
		if fixed, ok := comuna.Exact(tail); ok {
			return cleanAddress(strings.Join(words[:len(words)-n], " ")), fixed
		}
	}
	return cleanAddress(s), ""
}

func cleanAddress(s string) string {
	s = strings.TrimSpace(strings.Trim(s, ".,;-"))
	return strings.Join(strings.Fields(s), " ")
}

// IdentityBlock is the labeled debtor block on consumer-loan documents.
type IdentityBlock struct {
	Name      string
	RUTBody   string
	RUTDV     string
	Address   string
	Comuna    string
	City      string
}

var identityLabelRes = map[string]*regexp.Regexp{
	"name":    regexp.MustCompile(`(?im)^\s*Nombre\s+y\s+Apellidos?(?:\s+del?\s+deudor)?\s*[:\s]\s*(.{8,70})$`),
	"cedula":  regexp.MustCompile(`(?im)^\s*C[ée]dula(?:\s+de\s+identidad)?\s*(?:N[°ºo\.]*)?\s*[:\s]\s*([\d\.]{7,12})\s*[-–]\s*([\dkK])`),
	"address": regexp.MustCompile(`(?im)^\s*Domicilio\s*[:\s]\s*(.{6,90})$`),
	"infoDir": regexp.MustCompile(`(?im)^\s*Direcci[óo]n\s+Informativa\s*[:\s]\s*(.{6,90})$`),
	"comuna":  regexp.MustCompile(`(?im)^\s*Comuna\s*[:\s]\s*([A-Za-zÁÉÍÓÚÑáéíóúñ\s]{3,40})$`),
	"city":    regexp.MustCompile(`(?im)^\s*Ciudad\s*[:\s]\s*([A-Za-zÁÉÍÓÚÑáéíóúñ\s]{3,40})$`),
}

// ExtractIdentityBlock pulls the labeled identity block from
// consumer-loan pages. Values that look like bank letterhead are
// discarded field by field. The boolean is false when nothing useful
// was found.
func ExtractIdentityBlock(text string) (IdentityBlock, bool) {
	var blk IdentityBlock
	found := false

	if m := identityLabelRes["name"].FindStringSubmatch(text); m != nil {
		if v := cleanName(m[1]); v != "" && !IsBankHeaderLine(v) {
			blk.Name, found = v, true
		}
	}
	if m := identityLabelRes["cedula"].FindStringSubmatch(text); m != nil {
		blk.RUTBody = strings.ReplaceAll(m[1], ".", "")
		blk.RUTDV = strings.ToUpper(m[2])
		found = true
	}
	if m := identityLabelRes["address"].FindStringSubmatch(text); m != nil {
		if v := cleanAddress(m[1]); v != "" && !IsBankHeaderLine(v) {
			blk.Address, found = v, true
		}
	}
	// Dirección Informativa is where the debtor actually lives; it
	// wins over the generic Domicilio label when both are present.
	if m := identityLabelRes["infoDir"].FindStringSubmatch(text); m != nil {
		if v := cleanAddress(m[1]); v != "" && !IsBankHeaderLine(v) {
			blk.Address, found = v, true
		}
	}
	if m := identityLabelRes["comuna"].FindStringSubmatch(text); m != nil {
		if v := strings.TrimSpace(m[1]); !IsBankHeaderLine(v) {
			if fixed, ok := comuna.Fix(v); ok {
				blk.Comuna, found = fixed, true
			}
		}
	}
	if m := identityLabelRes["city"].FindStringSubmatch(text); m != nil {
		if v := strings.ToUpper(strings.TrimSpace(m[1])); !IsBankHeaderLine(v) {
			blk.City, found = strings.Join(strings.Fields(v), " "), true
		}
	}

	if blk.Address != "" && blk.Comuna == "" {
		blk.Address, blk.Comuna = SplitAddressComuna(blk.Address)
	}
	return blk, found
}
