package extract

import (
	"regexp"
	"strings"
)

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Nombre\s+y\s+Apellidos?(?:\s+del?\s+deudor)?\s*[:\s]\s*([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ \.]{8,60})`),
	regexp.MustCompile(`(?i)Nombre\s+del?\s+(?:deudor|suscriptor|cliente)\s*[:\s]\s*([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ \.]{8,60})`),
	regexp.MustCompile(`(?i)Suscriptor\s*[:\s]\s*([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ \.]{8,60})`),
	regexp.MustCompile(`(?i)Cliente\s*[:\s]\s*([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ \.]{8,60})`),
	regexp.MustCompile(`(?i)Deudor\s*[:\s]\s*([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ \.]{8,60})`),
}

// Lines that belong to the bank letterhead, never to a person.
var bankHeaderMarkers = []string{
	"EN SU OFICINA",
	"PRESIDENTE RIESCO",
	"BANCO ITA",
	"BANCO SANTANDER",
	"COMUNA DE LAS",
	"CASA MATRIZ",
	"SOCIEDAD ANONIMA",
	"S.A.",
}

// IsBankHeaderLine reports whether the line looks like letterhead
// rather than debtor data.
func IsBankHeaderLine(line string) bool {
	up := strings.ToUpper(line)
	for _, m := range bankHeaderMarkers {
		if strings.Contains(up, m) {
			return true
		}
	}
	return false
}

var uppercaseNameRe = regexp.MustCompile(`^[A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ\s\.]{10,60}$`)

// Name extracts the debtor name. The cascade tries labeled patterns,
// then the line above the chosen RUT, then the first plausible
// all-uppercase line. Letterhead lines are rejected at every stage.
func Name(text string, rutPos int) string {
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if n := cleanName(m[1]); n != "" && !IsBankHeaderLine(n) {
				return n
			}
		}
	}

	lines := strings.Split(text, "\n")
	if rutPos >= 0 {
		if n := nameNearOffset(text, lines, rutPos); n != "" {
			return n
		}
	}

	for _, line := range lines {
		l := strings.TrimSpace(line)
		if uppercaseNameRe.MatchString(l) && !IsBankHeaderLine(l) && countWords(l) >= 2 {
			return cleanName(l)
		}
	}
	return ""
}

// nameNearOffset returns the nearest plausible name on the line holding
// byte offset pos or the line above it.
func nameNearOffset(text string, lines []string, pos int) string {
	lineIdx := strings.Count(text[:min(pos, len(text))], "\n")
	for _, idx := range []int{lineIdx - 1, lineIdx} {
		if idx < 0 || idx >= len(lines) {
			continue
		}
		l := strings.TrimSpace(lines[idx])
		// strip any trailing RUT-ish token
		l = regexp.MustCompile(`[\d\.\-kK]{8,}\s*$`).ReplaceAllString(l, "")
		l = strings.TrimSpace(l)
		if uppercaseNameRe.MatchString(l) && !IsBankHeaderLine(l) && countWords(l) >= 2 {
			return cleanName(l)
		}
	}
	return ""
}

func cleanName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, ".:,")
	s = strings.Join(strings.Fields(s), " ")
	if len(s) < 8 {
		return ""
	}
	return s
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
