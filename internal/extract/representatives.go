package extract

import (
	"regexp"
	"strings"
)

var repLabeledRe = regexp.MustCompile(`(?i)Representante\s*(?:legal)?\s*([12])?\s*[:\s]\s*([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ \.]{8,60})`)

// Representatives extracts up to two bank representative names,
// scanning the joined text of every page. When the "Representante 2"
// label sits alone on a line, the name on the following line is taken.
func Representatives(pages []string) (rep1, rep2 string) {
	text := strings.Join(pages, "\n")

	for _, m := range repLabeledRe.FindAllStringSubmatch(text, -1) {
		name := cleanName(m[2])
		if name == "" || IsBankHeaderLine(name) {
			continue
		}
		switch {
		case m[1] == "2" && rep2 == "":
			rep2 = name
		case m[1] == "1" && rep1 == "":
			rep1 = name
		case m[1] == "":
			if rep1 == "" {
				rep1 = name
			} else if rep2 == "" && name != rep1 {
				rep2 = name
			}
		}
	}
	if rep2 == "" {
		rep2 = repFromNextLine(text, rep1)
	}
	return rep1, rep2
}

var bareRepLabelRe = regexp.MustCompile(`(?i)^\s*Representante\s*(?:legal)?\s*2?\s*[:\s]*$`)

// repFromNextLine handles layouts where the label and the name got
// split across lines by the OCR pass.
func repFromNextLine(text, already string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !bareRepLabelRe.MatchString(line) || i+1 >= len(lines) {
			continue
		}
		name := cleanName(lines[i+1])
		if name != "" && name != already && !IsBankHeaderLine(name) && uppercaseNameRe.MatchString(name) {
			return name
		}
	}
	return ""
}
