package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/legaltech-cl/extracto/internal/classify"
	"github.com/legaltech-cl/extracto/internal/rut"
)

// RUTCandidate is a possible debtor RUT found in the page text.
type RUTCandidate struct {
	Body    string
	DV      string
	Pos     int    // byte offset of the match in the source text
	Weight  int    // base weight from the pattern that matched
	Context string // surrounding text window
	Valid   bool   // check digit verifies
}

// rutPattern pairs a regex with the base weight of its matches. Labeled
// patterns outrank generic ones; dotted generic outranks plain digits.
type rutPattern struct {
	re     *regexp.Regexp
	weight int
}

var rutPatterns = []rutPattern{
	{regexp.MustCompile(`(?i)C\.?\s?I\.?\s*/?\s*RUT\s*(?:N[°ºo\.]*)?\s*[:\s]\s*([\d\.]{7,12})\s*[-–]\s*([\dkK])`), 20},
	{regexp.MustCompile(`(?i)RUT\s*/\s*C\.?\s?I\.?\s*[:\s]\s*([\d\.]{7,12})\s*[-–]\s*([\dkK])`), 15},
	{regexp.MustCompile(`(?i)C[ée]dula(?:\s+de\s+identidad)?\s*(?:N[°ºo\.]*)?\s*[:\s]\s*([\d\.]{7,12})\s*[-–]\s*([\dkK])`), 12},
	{regexp.MustCompile(`(?i)R\.?U\.?T\.?\s*(?:N[°ºo\.]*)?\s*[:\s]\s*([\d\.]{7,12})\s*[-–]\s*([\dkK])`), 10},
	{regexp.MustCompile(`(\d{1,3}(?:\.\d{3}){2})\s*[-–]\s*([\dkK])`), 3},
	{regexp.MustCompile(`(\d{7,9})\s*[-–]\s*([\dkK])`), 2},
}

// Numeric context that disqualifies a generic match: operation and
// product numbers also look like "12345678-9".
var rutSkipContext = regexp.MustCompile(`(?i)(operaci[óo]n|producto|n[°º]\s*operaci)`)

const (
	ctxBefore = 80
	ctxAfter  = 120
)

// RUTCandidates finds every RUT-looking token in text together with
// its pattern weight and context window. A token matched by several
// patterns (with and without its label) is one candidate carrying the
// highest weight; dedup keys on the body capture offset so differing
// match starts don't split it.
func RUTCandidates(text string) []RUTCandidate {
	type key struct {
		body string
		pos  int
	}
	seen := make(map[key]int) // key -> index in out
	var out []RUTCandidate

	for _, p := range rutPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			body := rut.CleanBody(text[m[2]:m[3]])
			if body == "" {
				continue
			}
			dv := strings.ToUpper(text[m[4]:m[5]])
			pos := m[0]
			ctx := window(text, pos, m[1])

			// Generic patterns near an operation/product label are
			// numbers, not people.
			if p.weight <= 3 && rutSkipContext.MatchString(before(text, pos)) {
				continue
			}

			k := key{body, m[2]}
			if idx, dup := seen[k]; dup {
				if out[idx].Weight < p.weight {
					out[idx].Weight = p.weight
				}
				continue
			}
			seen[k] = len(out)
			out = append(out, RUTCandidate{
				Body:    body,
				DV:      dv,
				Pos:     pos,
				Weight:  p.weight,
				Context: ctx,
				Valid:   rut.Validate(body, dv),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

func window(text string, start, end int) string {
	lo := start - ctxBefore
	if lo < 0 {
		lo = 0
	}
	hi := end + ctxAfter
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}

func before(text string, pos int) string {
	lo := pos - ctxBefore
	if lo < 0 {
		lo = 0
	}
	return text[lo:pos]
}

var debtorAnchorRe = regexp.MustCompile(`(?i)(suscriptor|deudor|cliente)`)

// ChooseRUT picks the debtor RUT from the candidate list. Institutional
// RUTs are excluded outright; bank-context matches are penalized; valid
// check digits and proximity to a debtor anchor earn bonuses. Ties
// break on score descending then position ascending, so the choice is
// deterministic for identical input.
func ChooseRUT(text string, cands []RUTCandidate, docType classify.DocType, profile *Profile) (RUTCandidate, bool) {
	anchors := anchorPositions(text)

	best := -1
	bestScore := 0
	for i, c := range cands {
		if profile.IsInstitutional(c.Body) {
			continue
		}

		score := c.Weight
		if profile.hasBankContext(c.Context) {
			score -= 50
		}
		if c.Valid {
			score += 5
		}
		if docType == classify.PromissoryNote {
			score += ppLabelBonus(c.Context)
		}
		score += proximityBonus(c.Pos, anchors)

		if best == -1 || score > bestScore || (score == bestScore && c.Pos < cands[best].Pos) {
			best, bestScore = i, score
		}
	}
	if best == -1 {
		return RUTCandidate{}, false
	}
	return cands[best], true
}

func anchorPositions(text string) []int {
	var out []int
	for _, m := range debtorAnchorRe.FindAllStringIndex(text, -1) {
		out = append(out, m[0])
	}
	return out
}

// proximityBonus rewards candidates close to a debtor anchor:
// max(0, 300-distance)/10.
func proximityBonus(pos int, anchors []int) int {
	bonus := 0
	for _, a := range anchors {
		d := pos - a
		if d < 0 {
			d = -d
		}
		if b := (300 - d) / 10; b > bonus {
			bonus = b
		}
	}
	if bonus < 0 {
		return 0
	}
	return bonus
}

// Pagaré signature blocks label the debtor explicitly; those labels
// near the match are worth a lot.
func ppLabelBonus(ctx string) int {
	up := strings.ToUpper(ctx)
	switch {
	case strings.Contains(up, "SUSCRIPTOR"):
		return 30
	case strings.Contains(up, "DEUDOR"):
		return 25
	case strings.Contains(up, "NOMBRE"):
		return 20
	}
	return 0
}
