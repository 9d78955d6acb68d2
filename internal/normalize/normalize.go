// Package normalize canonicalizes extracted rows: encoding repair,
// date and number layout, RUT check digits and apoderado names. It
// also keeps the counters that feed the run report.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/legaltech-cl/extracto/internal/comuna"
	"github.com/legaltech-cl/extracto/internal/record"
	"github.com/legaltech-cl/extracto/internal/rut"
	"github.com/legaltech-cl/extracto/internal/textutil"
)

// DateFormat selects the output date layout.
type DateFormat string

const (
	// DateDMY renders dates as DD-MM-YYYY.
	DateDMY DateFormat = "dmy"
	// DateISO renders dates as YYYY-MM-DD.
	DateISO DateFormat = "iso"
)

// ThousandSep selects the digit grouping of money fields.
type ThousandSep string

const (
	// SepNone writes bare digits.
	SepNone ThousandSep = "none"
	// SepDot groups thousands with dots, the Chilean convention.
	SepDot ThousandSep = "dot"
	// SepComma groups thousands with commas.
	SepComma ThousandSep = "comma"
)

// Options configures row normalization.
type Options struct {
	DateFormat       DateFormat
	ThousandSep      ThousandSep
	StrictDV         bool
	RequiredFields   []string
	RejectIncomplete bool
}

// DefaultOptions matches the historical output layout.
func DefaultOptions() Options {
	return Options{
		DateFormat:  DateDMY,
		ThousandSep: SepNone,
	}
}

// Validate checks option values coming from config.
func (o Options) Validate() error {
	switch o.DateFormat {
	case DateDMY, DateISO:
	default:
		return fmt.Errorf("unknown date format %q (dmy, iso)", o.DateFormat)
	}
	switch o.ThousandSep {
	case SepNone, SepDot, SepComma:
	default:
		return fmt.Errorf("unknown thousand separator %q (none, dot, comma)", o.ThousandSep)
	}
	return nil
}

// Stats counts every class of fix a normalization run applied.
type Stats struct {
	Rows              int
	FixedEncoding     int
	NormalizedDates   int
	NormalizedInts    int
	NormalizedPercent int
	NormalizedRUT     int
	InvalidRUT        int
	RecomputedDV      int
	InvalidComuna     int
	FixedComuna       int
	FixedApoderado    int
	IncompleteRows    int
	RejectedRows      int
}

var dateFields = []string{
	record.FieldFechaSuscripcion,
	record.FieldFechaVencPrimera,
	record.FieldFechaVencUltima,
	record.FieldFechaCuotaMorosa,
}

var intFields = []string{
	record.FieldCuotas,
	record.FieldCuotaMorosa,
}

var moneyFields = []string{
	record.FieldMontoCredito,
	record.FieldMontoCuota,
	record.FieldMontoUltimaCuota,
	record.FieldCapital,
}

// Row normalizes rec in place and updates stats. Already-clean values
// pass through unchanged, so normalization is idempotent.
func Row(rec record.Record, opts Options, stats *Stats) {
	stats.Rows++

	for _, h := range record.Headers {
		v := rec[h]
		if v == "" {
			continue
		}
		cleaned := textutil.Normalize(textutil.RepairMojibake(v))
		if cleaned != v {
			stats.FixedEncoding++
			rec[h] = cleaned
		}
	}

	for _, f := range dateFields {
		if v := rec[f]; v != "" {
			if d, ok := normalizeDate(v, opts.DateFormat); ok {
				if d != v {
					stats.NormalizedDates++
				}
				rec[f] = d
			}
		}
	}

	for _, f := range intFields {
		normalizeIntField(rec, f, SepNone, stats)
	}
	for _, f := range moneyFields {
		normalizeIntField(rec, f, opts.ThousandSep, stats)
	}

	normalizePercent(rec, stats)
	normalizeRUT(rec, opts.StrictDV, stats)
	normalizeApoderados(rec, stats)
	normalizeComuna(rec, stats)

	rec.SetDefault(record.FieldCapital, rec[record.FieldMontoCredito])

	if len(opts.RequiredFields) > 0 && !Complete(rec, opts.RequiredFields) {
		stats.IncompleteRows++
	}
}

// Complete reports whether every required field is non-empty.
func Complete(rec record.Record, required []string) bool {
	for _, f := range required {
		if rec[f] == "" {
			return false
		}
	}
	return true
}

var dateLayouts = []string{
	"02-01-2006",
	"02/01/2006",
	"2006-01-02",
	"01/02/2006",
}

func normalizeDate(v string, format DateFormat) (string, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, v)
		if err != nil {
			continue
		}
		switch format {
		case DateISO:
			return t.Format("2006-01-02"), true
		default:
			return t.Format("02-01-2006"), true
		}
	}
	return v, false
}

func normalizeIntField(rec record.Record, field string, sep ThousandSep, stats *Stats) {
	v := rec[field]
	if v == "" {
		return
	}
	digits := textutil.DigitsOnly(v)
	if digits == "" {
		return
	}
	out := groupDigits(digits, sep)
	if out != v {
		stats.NormalizedInts++
		rec[field] = out
	}
}

// groupDigits inserts thousand separators into a digit string.
func groupDigits(digits string, sep ThousandSep) string {
	var sepStr string
	switch sep {
	case SepDot:
		sepStr = "."
	case SepComma:
		sepStr = ","
	default:
		return digits
	}
	var b strings.Builder
	n := len(digits)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteString(sepStr)
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}

func normalizePercent(rec record.Record, stats *Stats) {
	v := rec[record.FieldTasaInteres]
	if v == "" {
		return
	}
	out := strings.TrimSpace(v)
	out = strings.TrimSuffix(out, "%")
	out = strings.TrimSpace(out)
	out = strings.ReplaceAll(out, ".", ",")
	out += "%"
	if out != v {
		stats.NormalizedPercent++
		rec[record.FieldTasaInteres] = out
	}
}

func normalizeRUT(rec record.Record, strictDV bool, stats *Stats) {
	body := rec[record.FieldRUT]
	if body == "" {
		return
	}
	// a full "12.345.678-9" may have landed in the RUT column
	if b, dv, ok := rut.Split(body); ok {
		body = b
		if rec[record.FieldDV] == "" {
			rec[record.FieldDV] = dv
		}
	}
	cleanBody, dv := rut.Normalize(body, rec[record.FieldDV])
	if cleanBody == "" {
		stats.InvalidRUT++
		return
	}
	if cleanBody != rec[record.FieldRUT] || dv != rec[record.FieldDV] {
		stats.NormalizedRUT++
	}
	rec[record.FieldRUT] = cleanBody
	rec[record.FieldDV] = dv

	if strictDV {
		want := rut.ComputeDV(cleanBody)
		if want != "" && want != dv {
			rec[record.FieldDV] = want
			stats.RecomputedDV++
		}
	} else if dv != "" && !rut.Validate(cleanBody, dv) {
		stats.InvalidRUT++
	}
}

// normalizeApoderados repairs OCR-mangled attorney names: any value
// that shares a distinctive surname with a known apoderado collapses
// to the canonical spelling.
func normalizeApoderados(rec record.Record, stats *Stats) {
	fix := func(field, canonical string, markers []string) {
		v := strings.ToUpper(rec[field])
		if v == "" || v == canonical {
			return
		}
		for _, m := range markers {
			if strings.Contains(v, m) {
				rec[field] = canonical
				stats.FixedApoderado++
				return
			}
		}
	}
	fix(record.FieldApoderado1, record.DefaultApoderado1, []string{"YASNA", "OLAVE"})
	fix(record.FieldApoderado2, record.DefaultApoderado2, []string{"ERWIN", "ALIAGA", "MARILLAN"})
}

func normalizeComuna(rec record.Record, stats *Stats) {
	v := rec[record.FieldComuna]
	if v == "" {
		return
	}
	if comuna.IsValid(v) {
		return
	}
	if fixed, ok := comuna.Fix(v); ok {
		rec[record.FieldComuna] = fixed
		stats.FixedComuna++
		return
	}
	stats.InvalidComuna++
}
