// Package rut implements Chilean RUT (Rol Único Tributario) check-digit
// computation, validation and normalization.
package rut

import (
	"regexp"
	"strings"
)

var (
	bodyPattern = regexp.MustCompile(`^\d{6,9}$`)
	splitRe     = regexp.MustCompile(`^(\d{1,3}(?:\.?\d{3}){1,2}|\d{6,9})\s*-\s*([\dkK])$`)
)

// OCR confusions that show up inside the numeric body of a RUT.
var digitFixes = strings.NewReplacer(
	"O", "0", "o", "0",
	"l", "1", "I", "1", "|", "1",
	"S", "5", "s", "5",
	"B", "8",
	"Z", "2", "z", "2",
	"G", "6",
	"q", "9",
)

// ComputeDV returns the check digit for a RUT body using the standard
// modulo-11 algorithm: digits are weighted right-to-left with the cycle
// 2,3,4,5,6,7. A remainder of 11 maps to "0" and 10 maps to "K".
func ComputeDV(body string) string {
	body = CleanBody(body)
	if body == "" {
		return ""
	}
	sum := 0
	weight := 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return ""
		}
		sum += int(c-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	dv := 11 - sum%11
	switch dv {
	case 11:
		return "0"
	case 10:
		return "K"
	}
	return string(rune('0' + dv))
}

// Validate reports whether dv is the correct check digit for body.
// The comparison is case-insensitive on K.
func Validate(body, dv string) bool {
	want := ComputeDV(body)
	if want == "" {
		return false
	}
	return want == strings.ToUpper(strings.TrimSpace(dv))
}

// CleanBody strips thousands separators and repairs common OCR digit
// confusions in a RUT body. Returns "" when the result is not a
// plausible body (6 to 9 digits).
func CleanBody(body string) string {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, ".", "")
	body = strings.ReplaceAll(body, " ", "")
	body = digitFixes.Replace(body)
	if !bodyPattern.MatchString(body) {
		return ""
	}
	return body
}

// Normalize returns the cleaned body and uppercased check digit.
// When the body cannot be repaired both return values are empty.
func Normalize(body, dv string) (string, string) {
	cleaned := CleanBody(body)
	if cleaned == "" {
		return "", ""
	}
	dv = strings.ToUpper(strings.TrimSpace(dv))
	if dv != "K" && (len(dv) != 1 || dv[0] < '0' || dv[0] > '9') {
		dv = ""
	}
	return cleaned, dv
}

// Split separates a full RUT string such as "12.345.678-9" into body
// and check digit. The boolean is false when the string does not look
// like a RUT.
func Split(full string) (body, dv string, ok bool) {
	m := splitRe.FindStringSubmatch(strings.TrimSpace(full))
	if m == nil {
		return "", "", false
	}
	body = strings.ReplaceAll(m[1], ".", "")
	return body, strings.ToUpper(m[2]), true
}

// Format renders body and dv in the dotted display form used on
// Chilean documents, e.g. "12.345.678-9".
func Format(body, dv string) string {
	body = CleanBody(body)
	if body == "" {
		return ""
	}
	var b strings.Builder
	n := len(body)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(body[i])
	}
	if dv != "" {
		b.WriteByte('-')
		b.WriteString(strings.ToUpper(dv))
	}
	return b.String()
}
