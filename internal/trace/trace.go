// Package trace parses extraction debug traces and merges their final
// rows back into batch output. Traces are the plain-text logs the
// pipeline writes per document; the "FINAL ROW" blocks in them carry
// the fields as the extractor last saw them.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/legaltech-cl/extracto/internal/record"
	"github.com/legaltech-cl/extracto/internal/textutil"
)

// FillMode controls how trace values combine with extracted rows.
type FillMode string

const (
	// FillNone disables trace merging.
	FillNone FillMode = "none"
	// FillOnlyBlanks fills only fields the extraction left empty.
	FillOnlyBlanks FillMode = "only_blanks"
	// FillPreferTrace overwrites extracted values whenever the trace
	// has a non-empty value.
	FillPreferTrace FillMode = "prefer_trace"
)

// ParseFillMode validates a fill mode string from config.
func ParseFillMode(s string) (FillMode, error) {
	switch FillMode(s) {
	case FillNone, FillOnlyBlanks, FillPreferTrace:
		return FillMode(s), nil
	}
	return "", fmt.Errorf("unknown fill mode %q (none, only_blanks, prefer_trace)", s)
}

var blockMarkerRe = regexp.MustCompile(`(?i)^-{2,}\s*FINAL\s+ROW\s*-{2,}`)

// fieldAliases maps trace header spellings to canonical field names,
// after uppercasing, accent stripping and space-to-underscore folding.
var fieldAliases = map[string]string{
	"OPERACION":        record.FieldOperacion,
	"N_OPERACION":      record.FieldOperacion,
	"NUMERO_OPERACION": record.FieldOperacion,
	"RUT_CLIENTE":      record.FieldRUT,
	"NOMBRE_CLIENTE":   record.FieldNombre,
	"DOMICILIO":        record.FieldDireccion,
	"TASA":             record.FieldTasaInteres,
	"MONTO":            record.FieldMontoCredito,
	"FECHA":            record.FieldFechaSuscripcion,
	"PRODUCTO_TIPO":    record.FieldProducto,
}

// canonField resolves a raw trace field name to a canonical header, or
// "" when it maps to nothing.
func canonField(name string) string {
	n := strings.ToUpper(textutil.StripAccents(strings.TrimSpace(name)))
	n = strings.ReplaceAll(n, "Ñ", "N")
	n = strings.Join(strings.FieldsFunc(n, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '.'
	}), "_")
	if alias, ok := fieldAliases[n]; ok {
		return alias
	}
	for _, h := range record.Headers {
		if n == h {
			return h
		}
	}
	return ""
}

// Table is an indexed set of trace final rows.
type Table struct {
	byOperation map[string]record.Record
	byIdentity  map[string]record.Record
	rows        int
}

// identityKey is the fallback lookup key when a row has no operation
// number: RUT-DV-NOMBRE.
func identityKey(r record.Record) string {
	if r[record.FieldRUT] == "" || r[record.FieldNombre] == "" {
		return ""
	}
	return r[record.FieldRUT] + "-" + r[record.FieldDV] + "-" + strings.ToUpper(r[record.FieldNombre])
}

// Parse reads trace text and indexes every FINAL ROW block. Field
// lines are "NAME: value", case-insensitive, one per line; a blank
// line or the next marker ends the block.
func Parse(r io.Reader) (*Table, error) {
	t := &Table{
		byOperation: make(map[string]record.Record),
		byIdentity:  make(map[string]record.Record),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current record.Record
	flush := func() {
		if current == nil {
			return
		}
		t.rows++
		if op := current[record.FieldOperacion]; op != "" {
			t.byOperation[op] = current
		} else if key := identityKey(current); key != "" {
			t.byIdentity[key] = current
		}
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if blockMarkerRe.MatchString(line) {
			flush()
			current = record.New()
			continue
		}
		if current == nil {
			continue
		}
		if line == "" {
			flush()
			continue
		}
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if field := canonField(name); field != "" {
			current[field] = strings.TrimSpace(value)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return t, nil
}

// ParseFile parses a trace file from disk.
func ParseFile(path string) (*Table, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided trace file
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Len reports the number of indexed rows.
func (t *Table) Len() int { return t.rows }

// Lookup finds the trace row matching rec, by operation number first
// and the RUT-DV-NOMBRE composite second.
func (t *Table) Lookup(rec record.Record) (record.Record, bool) {
	if op := rec[record.FieldOperacion]; op != "" {
		if row, ok := t.byOperation[op]; ok {
			return row, true
		}
	}
	if key := identityKey(rec); key != "" {
		if row, ok := t.byIdentity[key]; ok {
			return row, true
		}
	}
	return nil, false
}

// MergeStats counts what a merge did.
type MergeStats struct {
	Hits          int
	Misses        int
	FilledByField map[string]int
}

// Filled returns the total number of field values the merge wrote.
func (s MergeStats) Filled() int {
	n := 0
	for _, c := range s.FilledByField {
		n += c
	}
	return n
}

// Merge applies trace values to rows according to mode and returns the
// counters. FillOnlyBlanks never overwrites a non-empty value;
// FillPreferTrace overwrites whenever the trace value is non-empty.
func Merge(rows []record.Record, t *Table, mode FillMode) MergeStats {
	stats := MergeStats{FilledByField: make(map[string]int)}
	if mode == FillNone || t == nil {
		return stats
	}

	for _, rec := range rows {
		traceRow, ok := t.Lookup(rec)
		if !ok {
			stats.Misses++
			continue
		}
		stats.Hits++
		for _, h := range record.Headers {
			tv := traceRow[h]
			if tv == "" {
				continue
			}
			switch mode {
			case FillOnlyBlanks:
				if rec[h] == "" {
					rec[h] = tv
					stats.FilledByField[h]++
				}
			case FillPreferTrace:
				if rec[h] != tv {
					rec[h] = tv
					stats.FilledByField[h]++
				}
			}
		}
	}
	return stats
}
