package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/legaltech-cl/extracto/internal/textutil"
)

var spanishMonths = map[string]int{
	"enero": 1, "febrero": 2, "marzo": 3, "abril": 4, "mayo": 5,
	"junio": 6, "julio": 7, "agosto": 8, "septiembre": 9, "setiembre": 9,
	"octubre": 10, "noviembre": 11, "diciembre": 12,
}

var (
	longDateRe    = regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+([a-zá-ú]+)\s+(?:de|del)(?:\s+a[ñn]o)?\s+(\d{4})`)
	numericDateRe = regexp.MustCompile(`(\d{1,2})[/\-\.](\d{1,2})[/\-\.](\d{2,4})`)
)

// FormatDMY renders a date as DD-MM-YYYY, the canonical format of the
// output rows.
func FormatDMY(day, month, year int) string {
	return fmt.Sprintf("%02d-%02d-%04d", day, month, year)
}

// SpanishDate parses the first date found in s, handling both the
// written form "12 de mayo de 2024" and numeric forms. Two-digit years
// are interpreted as 2000+YY. Returns "" when no plausible date exists.
func SpanishDate(s string) string {
	if m := longDateRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := spanishMonths[strings.ToLower(textutil.StripAccents(m[2]))]
		year, _ := strconv.Atoi(m[3])
		if ok && validDate(day, month, year) {
			return FormatDMY(day, month, year)
		}
	}
	if m := numericDateRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		if validDate(day, month, year) {
			return FormatDMY(day, month, year)
		}
	}
	return ""
}

func validDate(day, month, year int) bool {
	return day >= 1 && day <= 31 && month >= 1 && month <= 12 && year >= 1990 && year <= 2100
}

var subscriptionDateRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:suscrito|firmado|otorgado)\s+en\s+[^\n,]{2,40}[,;]?\s*(?:el|a|con\s+fecha)\s+([^\n]{6,50})`),
	regexp.MustCompile(`(?i)fecha\s+(?:de\s+)?suscripci[óo]n\s*[:\s]\s*([^\n]{6,30})`),
	regexp.MustCompile(`(?i)(?:en\s+)?(?:Temuco|Santiago|Concepci[óo]n)[,;]?\s+(?:a\s+)?(\d{1,2}\s+de\s+[a-zá-ú]+\s+(?:de|del)\s+\d{4})`),
}

// SubscriptionDate extracts the document's signing date.
func SubscriptionDate(text string) string {
	for _, re := range subscriptionDateRes {
		if m := re.FindStringSubmatch(text); m != nil {
			if d := SpanishDate(m[1]); d != "" {
				return d
			}
		}
	}
	return ""
}

var (
	// "la primera cuota el día 29 de junio de 2023 y la última el 29 de
	// mayo de 2028" captured in one pass when the phrasing joins both.
	firstLastCombinedRe = regexp.MustCompile(`(?i)primera(?:\s+cuota)?\s+(?:el\s+)?(?:d[íi]a\s+)?([^\n,]{6,45}?)\s*(?:,|y)\s+(?:y\s+)?la\s+[uú]ltima\s+(?:cuota\s+)?(?:el\s+)?(?:d[íi]a\s+)?([^\n\.,]{6,45})`)

	firstDueRe = regexp.MustCompile(`(?i)(?:vencimiento\s+(?:de\s+la\s+)?primera\s+cuota|primera\s+cuota(?:\s+vence)?)?\s*(?:el|:)?\s*(\d{1,2}[/\-\.]\d{1,2}[/\-\.]\d{2,4}|\d{1,2}\s+de\s+[a-zá-ú]+\s+(?:de|del)\s+\d{4})`)
	lastDueRe  = regexp.MustCompile(`(?i)[uú]ltima\s+cuota[^\n]{0,30}?(\d{1,2}[/\-\.]\d{1,2}[/\-\.]\d{2,4}|\d{1,2}\s+de\s+[a-zá-ú]+\s+(?:de|del)\s+\d{4})`)
)

// FirstLastDueDates extracts the first and last installment due dates.
// The combined "primera ... y la última ..." phrasing is preferred;
// isolated labels are the fallback.
func FirstLastDueDates(text string) (first, last string) {
	if m := firstLastCombinedRe.FindStringSubmatch(text); m != nil {
		first = SpanishDate(m[1])
		last = SpanishDate(m[2])
		if first != "" && last != "" {
			return first, last
		}
	}
	if m := regexp.MustCompile(`(?i)primera\s+cuota[^\n]{0,40}`).FindString(text); m != "" {
		if _, found := findLabeledDate(m); found != "" {
			first = found
		}
	}
	if m := lastDueRe.FindStringSubmatch(text); m != nil {
		last = SpanishDate(m[1])
	}
	return first, last
}

func findLabeledDate(s string) (string, string) {
	if m := firstDueRe.FindStringSubmatch(s); m != nil {
		return m[1], SpanishDate(m[1])
	}
	return "", ""
}

var aContarRe = regexp.MustCompile(`(?i)a\s+contar\s+del?\s+(\d{1,2})\s+de\s+([a-zá-ú]+)\s+del?\s+(?:a[ñn]o\s+)?(\d{4})`)

// FirstDueFromAContar handles the "a contar del 5 de enero del año
// 2024" phrasing used by some institutions.
func FirstDueFromAContar(text string) string {
	if m := aContarRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := spanishMonths[strings.ToLower(textutil.StripAccents(m[2]))]
		year, _ := strconv.Atoi(m[3])
		if ok && validDate(day, month, year) {
			return FormatDMY(day, month, year)
		}
	}
	return ""
}
