package extract

import (
	"path/filepath"
	"regexp"
	"strings"
)

var digitRunRe = regexp.MustCompile(`\d{6,}`)

// OperationFromFilename derives the operation number from a PDF
// filename: the longest digit run of at least six digits. Scans name
// files like "4191896500082450.pdf" and "op_60247566_scan.pdf" both
// resolve.
func OperationFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	best := ""
	for _, run := range digitRunRe.FindAllString(base, -1) {
		if len(run) > len(best) {
			best = run
		}
	}
	return best
}

// OCR often turns "N°" into "N º", "No" or "N 0"; the patterns are
// deliberately loose there.
var operationTextRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)operaci[óo]n\s*(?:N\s*[°ºo0\.]*)?\s*[:\s]\s*(\d{6,16})`),
	regexp.MustCompile(`(?i)N[°ºo]\s*(?:de\s+)?operaci[óo]n\s*[:\s]\s*(\d{6,16})`),
	regexp.MustCompile(`(?i)pagar[ée]\s*N[°ºo0\.]*\s*(\d{6,16})`),
	regexp.MustCompile(`(?i)cr[ée]dito\s*N[°ºo0\.]*\s*(\d{6,16})`),
}

// OperationFromText extracts a labeled operation number from page text.
func OperationFromText(text string) string {
	for _, re := range operationTextRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}
