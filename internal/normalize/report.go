package normalize

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/legaltech-cl/extracto/internal/trace"
)

// WriteReport renders a markdown summary of a normalization run,
// including trace merge counters when a merge happened.
func WriteReport(w io.Writer, stats Stats, merge trace.MergeStats) error {
	var err error
	p := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	p("# Informe de normalización\n\n")
	p("Generado: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	p("## Filas\n\n")
	p("- Procesadas: %d\n", stats.Rows)
	p("- Incompletas: %d\n", stats.IncompleteRows)
	p("- Rechazadas: %d\n\n", stats.RejectedRows)

	p("## Correcciones aplicadas\n\n")
	p("- Codificación reparada: %d\n", stats.FixedEncoding)
	p("- Fechas normalizadas: %d\n", stats.NormalizedDates)
	p("- Enteros normalizados: %d\n", stats.NormalizedInts)
	p("- Tasas normalizadas: %d\n", stats.NormalizedPercent)
	p("- RUT normalizados: %d\n", stats.NormalizedRUT)
	p("- DV recalculados: %d\n", stats.RecomputedDV)
	p("- Apoderados corregidos: %d\n", stats.FixedApoderado)
	p("- Comunas corregidas: %d\n\n", stats.FixedComuna)

	p("## Problemas detectados\n\n")
	p("- RUT inválidos: %d\n", stats.InvalidRUT)
	p("- Comunas no reconocidas: %d\n\n", stats.InvalidComuna)

	if merge.Hits > 0 || merge.Misses > 0 {
		p("## Cruce con traza\n\n")
		p("- Coincidencias: %d\n", merge.Hits)
		p("- Sin coincidencia: %d\n\n", merge.Misses)
		if len(merge.FilledByField) > 0 {
			p("Campos completados desde la traza:\n\n")
			fields := make([]string, 0, len(merge.FilledByField))
			for f := range merge.FilledByField {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				p("- %s: %d\n", f, merge.FilledByField[f])
			}
			p("\n")
		}
	}
	return err
}
