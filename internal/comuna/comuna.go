// Package comuna validates and repairs Chilean comuna names extracted
// by OCR. Repair goes through increasingly fuzzy stages and refuses to
// guess when nothing clears the similarity cutoff.
package comuna

import (
	"sort"
	"strings"

	"github.com/legaltech-cl/extracto/internal/textutil"
)

// Valid holds the accepted comuna names, uppercased, accent-stripped.
// The set covers the regions the document corpus actually comes from
// plus the metropolitan area.
var Valid = map[string]struct{}{}

var validList = []string{
	"TEMUCO", "PADRE LAS CASAS", "VILLARRICA", "PUCON", "ANGOL",
	"VICTORIA", "LAUTARO", "NUEVA IMPERIAL", "PITRUFQUEN", "GORBEA",
	"LONCOCHE", "CARAHUE", "FREIRE", "CUNCO", "VILCUN", "TOLTEN",
	"TEODORO SCHMIDT", "SAAVEDRA", "PERQUENCO", "GALVARINO",
	"CHOLCHOL", "MELIPEUCO", "CURARREHUE", "LUMACO", "PUREN",
	"TRAIGUEN", "RENAICO", "COLLIPULLI", "ERCILLA", "LOS SAUCES",
	"CURACAUTIN", "LONQUIMAY",
	"SANTIAGO", "PROVIDENCIA", "LAS CONDES", "VITACURA", "NUNOA",
	"LA FLORIDA", "MAIPU", "PUENTE ALTO", "SAN BERNARDO", "QUILICURA",
	"ESTACION CENTRAL", "RECOLETA", "INDEPENDENCIA", "SAN MIGUEL",
	"LA CISTERNA", "EL BOSQUE", "PENALOLEN", "MACUL", "CERRILLOS",
	"RENCA", "CONCHALI", "HUECHURABA", "PUDAHUEL", "LO PRADO",
	"CONCEPCION", "TALCAHUANO", "CHILLAN", "LOS ANGELES", "VALDIVIA",
	"OSORNO", "PUERTO MONTT", "VALPARAISO", "VINA DEL MAR", "QUILPUE",
	"RANCAGUA", "TALCA", "CURICO", "LINARES", "IQUIQUE", "ANTOFAGASTA",
	"CALAMA", "COPIAPO", "LA SERENA", "COQUIMBO", "ARICA",
	"PUNTA ARENAS", "COYHAIQUE",
}

// corrections maps recurring OCR misreads straight to their comuna.
var corrections = map[string]string{
	"TAMUCO":          "TEMUCO",
	"TENUCO":          "TEMUCO",
	"TEMUCD":          "TEMUCO",
	"TFMUCO":          "TEMUCO",
	"PADRE LAS CASA":  "PADRE LAS CASAS",
	"PADRELAS CASAS":  "PADRE LAS CASAS",
	"VILLARICA":       "VILLARRICA",
	"STGO":            "SANTIAGO",
	"SANTIAG0":        "SANTIAGO",
	"CONCEPCI0N":      "CONCEPCION",
	"PTO MONTT":       "PUERTO MONTT",
	"PUERTO MONT":     "PUERTO MONTT",
	"NVA IMPERIAL":    "NUEVA IMPERIAL",
	"LABRANZA":        "TEMUCO",
	"COMUNA DE TEMUCO": "TEMUCO",
}

func init() {
	for _, c := range validList {
		Valid[c] = struct{}{}
	}
}

// canon uppercases and strips accents so lookups tolerate both "ÑUÑOA"
// and "NUNOA" spellings.
func canon(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = textutil.StripAccents(s)
	s = strings.ReplaceAll(s, "Ñ", "N")
	return strings.Join(strings.Fields(s), " ")
}

// IsValid reports whether s names a known comuna.
func IsValid(s string) bool {
	_, ok := Valid[canon(s)]
	return ok
}

// Exact resolves s through the correction table and the exact set only,
// with no fuzzy stages. Address-tail splitting uses this to avoid
// matching street words against comuna names.
func Exact(s string) (string, bool) {
	c := canon(s)
	if c == "" {
		return "", false
	}
	if v, hit := corrections[c]; hit {
		return v, true
	}
	if _, hit := Valid[c]; hit {
		return c, true
	}
	return "", false
}

// Fix repairs an OCR-damaged comuna name. Stages: direct correction
// table, exact set match, word-window partial match, then similarity
// matching with a 0.72 cutoff. ok is false when no stage produces a
// safe answer.
func Fix(s string) (fixed string, ok bool) {
	c := canon(s)
	if c == "" {
		return "", false
	}
	if v, hit := corrections[c]; hit {
		return v, true
	}
	if _, hit := Valid[c]; hit {
		return c, true
	}

	// A trailing or leading word may be noise: try windows of the
	// candidate's words against the set.
	words := strings.Fields(c)
	for size := len(words); size >= 1; size-- {
		for start := 0; start+size <= len(words); start++ {
			window := strings.Join(words[start:start+size], " ")
			if _, hit := Valid[window]; hit {
				return window, true
			}
		}
	}

	best, score := closest(c)
	if score >= 0.72 {
		return best, true
	}
	return "", false
}

// closest returns the valid comuna with the highest similarity ratio
// to c. Ties resolve alphabetically so repair is deterministic.
func closest(c string) (string, float64) {
	names := make([]string, 0, len(Valid))
	for name := range Valid {
		names = append(names, name)
	}
	sort.Strings(names)

	best := ""
	bestScore := 0.0
	for _, name := range names {
		if s := similarity(c, name); s > bestScore {
			best, bestScore = name, s
		}
	}
	return best, bestScore
}

// similarity is the classic 2*matches/(len(a)+len(b)) ratio over the
// longest common subsequence.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}
