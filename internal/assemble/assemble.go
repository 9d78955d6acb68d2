// Package assemble turns per-page OCR text into one canonical record
// per document. Each page is extracted independently, pages are scored
// for completeness, and the best page wins with later pages filling
// the blanks it left.
package assemble

import (
	"strings"

	"github.com/legaltech-cl/extracto/internal/classify"
	"github.com/legaltech-cl/extracto/internal/comuna"
	"github.com/legaltech-cl/extracto/internal/extract"
	"github.com/legaltech-cl/extracto/internal/record"
	"github.com/legaltech-cl/extracto/internal/textutil"
)

// Page completeness weights. An operation number alone outranks any
// combination of the other fields.
const (
	scoreOperation = 50
	scoreRUT       = 30
	scoreName      = 20
	scoreAmount    = 10
)

// PageRow is the extraction result of a single page.
type PageRow struct {
	Rec   record.Record
	Score int
}

// scoreRow rates how complete a page extraction is.
func scoreRow(r record.Record) int {
	s := 0
	if r[record.FieldOperacion] != "" {
		s += scoreOperation
	}
	if r[record.FieldRUT] != "" {
		s += scoreRUT
	}
	if r[record.FieldNombre] != "" {
		s += scoreName
	}
	if r[record.FieldMontoCredito] != "" {
		s += scoreAmount
	}
	return s
}

// Document assembles the canonical record for one document from its
// per-page OCR text. filename supplies the fallback operation number.
// The returned record always has every canonical field present.
func Document(pages []string, filename string, profile *extract.Profile) record.Record {
	fullText := strings.Join(pages, "\n")
	opFromFile := extract.OperationFromFilename(filename)

	docType := classify.Classify(fullText)
	if profile.ForcedProduct != "" {
		docType = classify.DocType(profile.ForcedProduct)
	}

	rows := make([]PageRow, 0, len(pages))
	for _, page := range pages {
		rec := extractPage(page, opFromFile, docType, profile)
		rows = append(rows, PageRow{Rec: rec, Score: scoreRow(rec)})
	}

	final := record.New()
	if len(rows) > 0 {
		best := 0
		for i, row := range rows[1:] {
			if row.Score > rows[best].Score {
				best = i + 1
			}
		}
		final = rows[best].Rec.Clone()
		// Remaining pages fill whatever the best page missed.
		for i, row := range rows {
			if i == best {
				continue
			}
			for _, h := range record.Headers {
				final.SetDefault(h, row.Rec[h])
			}
		}
	}

	// A label and its value split across a page break only line up in
	// the concatenated text, so a whole-document pass fills whatever no
	// single page could.
	if len(pages) > 1 {
		doc := extractPage(fullText, opFromFile, docType, profile)
		for _, h := range record.Headers {
			final.SetDefault(h, doc[h])
		}
	}

	final.SetDefault(record.FieldOperacion, opFromFile)
	finish(final, pages, docType, profile)
	return final
}

// extractPage runs the field cascades over one page of text.
func extractPage(page, opFromFile string, docType classify.DocType, profile *extract.Profile) record.Record {
	rec := record.New()

	rec[record.FieldOperacion] = opFromFile
	if rec[record.FieldOperacion] == "" {
		rec[record.FieldOperacion] = extract.OperationFromText(page)
	}

	if profile.ChequeMode {
		extractChequePage(rec, page, profile)
		return rec
	}

	cands := extract.RUTCandidates(page)
	rutPos := -1
	if chosen, ok := extract.ChooseRUT(page, cands, docType, profile); ok {
		rec[record.FieldRUT] = chosen.Body
		rec[record.FieldDV] = chosen.DV
		rutPos = chosen.Pos
	}
	rec[record.FieldNombre] = extract.Name(page, rutPos)

	addr, com := extract.AddressComuna(page)
	rec[record.FieldDireccion] = addr
	rec[record.FieldComuna] = com

	rec[record.FieldFechaSuscripcion] = extract.SubscriptionDate(page)
	rec[record.FieldMontoCredito] = extract.Amount(page)

	if docType == classify.ConsumerLoan {
		extractInstallmentFields(rec, page)
		// The labeled identity block is authoritative when present.
		if blk, ok := extract.ExtractIdentityBlock(page); ok {
			applyIdentityBlock(rec, blk)
		}
	}
	return rec
}

// applyIdentityBlock overwrites generic extraction with the labeled
// debtor block fields.
func applyIdentityBlock(rec record.Record, blk extract.IdentityBlock) {
	if blk.Name != "" {
		rec[record.FieldNombre] = blk.Name
	}
	if blk.RUTBody != "" {
		rec[record.FieldRUT] = blk.RUTBody
		rec[record.FieldDV] = blk.RUTDV
	}
	if blk.Address != "" {
		rec[record.FieldDireccion] = blk.Address
	}
	if blk.Comuna != "" {
		rec[record.FieldComuna] = blk.Comuna
	}
	if blk.City != "" {
		rec[record.FieldCiudad] = blk.City
	}
}

func extractInstallmentFields(rec record.Record, page string) {
	rec[record.FieldCuotas] = extract.Installments(page)
	rec[record.FieldTasaInteres] = extract.Rate(page)

	monthly, final := extract.InstallmentAmounts(page)
	rec[record.FieldMontoCuota] = monthly
	rec[record.FieldMontoUltimaCuota] = final

	first, last := extract.FirstLastDueDates(page)
	if first == "" {
		first = extract.FirstDueFromAContar(page)
	}
	rec[record.FieldFechaVencPrimera] = first
	rec[record.FieldFechaVencUltima] = last

	rec[record.FieldCuotaMorosa] = extract.DelinquentInstallment(page)
	rec[record.FieldFechaCuotaMorosa] = extract.DelinquentDate(page)
}

// extractChequePage handles scanned cheques: amounts are the largest
// grouped number when no label matches, dates may carry two-digit
// years, and the payer RUT is the first position-ordered valid one.
func extractChequePage(rec record.Record, page string, profile *extract.Profile) {
	for _, c := range extract.RUTCandidates(page) {
		if c.Valid && !profile.IsInstitutional(c.Body) {
			rec[record.FieldRUT] = c.Body
			rec[record.FieldDV] = c.DV
			rec[record.FieldNombre] = extract.Name(page, c.Pos)
			break
		}
	}
	rec[record.FieldMontoCredito] = extract.Amount(page)
	if rec[record.FieldMontoCredito] == "" {
		rec[record.FieldMontoCredito] = extract.MaxGroupedAmount(page)
	}
	rec[record.FieldFechaSuscripcion] = extract.SpanishDate(page)
}

// finish applies document-level touches: representatives, Ñ repair,
// comuna repair, venue defaults and derived fields.
func finish(rec record.Record, pages []string, docType classify.DocType, profile *extract.Profile) {
	rep1, rep2 := extract.Representatives(pages)
	rec.SetDefault(record.FieldApoderado1, rep1)
	rec.SetDefault(record.FieldApoderado2, rep2)
	rec.SetDefault(record.FieldApoderado1, record.DefaultApoderado1)
	rec.SetDefault(record.FieldApoderado2, record.DefaultApoderado2)

	rec[record.FieldNombre] = textutil.RestoreEnie(rec[record.FieldNombre])
	rec[record.FieldDireccion] = textutil.RestoreEnie(rec[record.FieldDireccion])

	if c := rec[record.FieldComuna]; c != "" {
		if fixed, ok := comuna.Fix(c); ok {
			rec[record.FieldComuna] = fixed
		}
	}
	rec.SetDefault(record.FieldCiudad, rec[record.FieldComuna])

	rec[record.FieldProducto] = string(docType)
	if profile.ForcedProduct != "" {
		rec[record.FieldProducto] = profile.ForcedProduct
	}
	rec[record.FieldCapital] = rec[record.FieldMontoCredito]

	rec.SetDefault(record.FieldExhorto, profile.Exhorto)
	rec.SetDefault(record.FieldSucursal, profile.Sucursal)
}
