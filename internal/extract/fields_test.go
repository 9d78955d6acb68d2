package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName_Labeled(t *testing.T) {
	text := "Nombre y Apellidos del deudor: MIGUEL ALEJANDRO ROA GARCIA\n"
	assert.Equal(t, "MIGUEL ALEJANDRO ROA GARCIA", Name(text, -1))
}

func TestName_LineAboveRUT(t *testing.T) {
	text := "FERNANDO SEGUNDO FERNANDEZ CAMPOS\n4.499.116-0 firma\n"
	pos := len("FERNANDO SEGUNDO FERNANDEZ CAMPOS\n")
	assert.Equal(t, "FERNANDO SEGUNDO FERNANDEZ CAMPOS", Name(text, pos))
}

func TestName_RejectsBankHeader(t *testing.T) {
	text := "EN SU OFICINA DE PRESIDENTE RIESCO\nBANCO ITAU CHILE S.A.\n"
	assert.Empty(t, Name(text, -1))
}

func TestAddressComuna(t *testing.T) {
	text := "domiciliado en LORENZO ACEITON 2185, TEMUCO, para todos los efectos"
	addr, com := AddressComuna(text)
	assert.Equal(t, "LORENZO ACEITON 2185", addr)
	assert.Equal(t, "TEMUCO", com)
}

func TestAddressComuna_PrefersRealAddressOverBoilerplate(t *testing.T) {
	text := `fija domicilio en la ciudad de Santiago para todos los efectos legales y competencia
Domicilio: LOS PINGÜINOS 0447, TEMUCO`
	addr, com := AddressComuna(text)
	assert.Contains(t, addr, "PING")
	assert.Equal(t, "TEMUCO", com)
}

func TestSplitAddressComuna_TailWords(t *testing.T) {
	addr, com := SplitAddressComuna("LORENZO ACEITON 2185 TEMUCO")
	assert.Equal(t, "LORENZO ACEITON 2185", addr)
	assert.Equal(t, "TEMUCO", com)

	addr, com = SplitAddressComuna("CALLE UNO 123")
	assert.Equal(t, "CALLE UNO 123", addr)
	assert.Empty(t, com)
}

func TestExtractIdentityBlock(t *testing.T) {
	text := `Nombre y Apellidos del deudor: MIGUEL ALEJANDRO ROA GARCIA
Cédula de identidad N°: 15.657.067-2
Domicilio: LOS PINGUINOS 0447
Comuna: TEMUCO
Ciudad: TEMUCO`

	blk, ok := ExtractIdentityBlock(text)
	require.True(t, ok)
	assert.Equal(t, "MIGUEL ALEJANDRO ROA GARCIA", blk.Name)
	assert.Equal(t, "15657067", blk.RUTBody)
	assert.Equal(t, "2", blk.RUTDV)
	assert.Equal(t, "LOS PINGUINOS 0447", blk.Address)
	assert.Equal(t, "TEMUCO", blk.Comuna)
	assert.Equal(t, "TEMUCO", blk.City)
}

func TestExtractIdentityBlock_RejectsLetterhead(t *testing.T) {
	text := "Domicilio: EN SU OFICINA DE PRESIDENTE RIESCO 5537\n"
	blk, _ := ExtractIdentityBlock(text)
	assert.Empty(t, blk.Address)
}

func TestSpanishDate(t *testing.T) {
	assert.Equal(t, "25-09-2025", SpanishDate("25 de septiembre de 2025"))
	assert.Equal(t, "12-05-2024", SpanishDate("el 12 de mayo del 2024"))
	assert.Equal(t, "29-05-2023", SpanishDate("29/05/2023"))
	assert.Equal(t, "07-03-2024", SpanishDate("7-3-24"))
	assert.Empty(t, SpanishDate("sin fecha"))
	assert.Empty(t, SpanishDate("45 de mayo de 2024"))
}

func TestSubscriptionDate(t *testing.T) {
	assert.Equal(t, "25-09-2025",
		SubscriptionDate("En Temuco, a 25 de septiembre de 2025, comparece"))
	assert.Equal(t, "29-05-2023",
		SubscriptionDate("Fecha de suscripción: 29/05/2023"))
}

func TestFirstLastDueDates_Combined(t *testing.T) {
	text := "la primera cuota el día 29 de junio de 2023 y la última el 29 de mayo de 2028"
	first, last := FirstLastDueDates(text)
	assert.Equal(t, "29-06-2023", first)
	assert.Equal(t, "29-05-2028", last)
}

func TestFirstDueFromAContar(t *testing.T) {
	assert.Equal(t, "05-01-2024", FirstDueFromAContar("a contar del 5 de enero del año 2024"))
	assert.Empty(t, FirstDueFromAContar("sin frase"))
}

func TestAmount(t *testing.T) {
	assert.Equal(t, "5713357", Amount("por la suma de $5.713.357 pagadera"))
	assert.Equal(t, "21481761", Amount("Monto del crédito: $21.481.761"))
	assert.Empty(t, Amount("sin montos"))
}

func TestMaxGroupedAmount(t *testing.T) {
	text := "serie 001.234 páguese $1.500.000 con cargo 12.000"
	assert.Equal(t, "1500000", MaxGroupedAmount(text))
}

func TestInstallmentsAndRate(t *testing.T) {
	text := "pagadero en 60 cuotas mensuales iguales de $566.331 cada una, tasa de interés mensual 1,62%"
	assert.Equal(t, "60", Installments(text))
	assert.Equal(t, "1,62%", Rate(text))

	monthly, final := InstallmentAmounts(text + " y una última de $566.400")
	assert.Equal(t, "566331", monthly)
	assert.Equal(t, "566400", final)
}

func TestRate_NormalizesDecimalPoint(t *testing.T) {
	assert.Equal(t, "2,05%", Rate("interés de 2.05% mensual"))
}

func TestDelinquentInstallment(t *testing.T) {
	assert.Equal(t, "14", DelinquentInstallment("cuota morosa N° 14"))
	assert.Empty(t, DelinquentInstallment("al día"))
}

func TestDelinquentDate(t *testing.T) {
	assert.Equal(t, "05-03-2024",
		DelinquentDate("cuota morosa N° 14 con vencimiento el 5 de marzo de 2024"))
	assert.Equal(t, "10-01-2025",
		DelinquentDate("cuota impaga 3, exigible desde el 10 de enero del 2025"))
	assert.Empty(t, DelinquentDate("cuota morosa N° 14 sin fecha"))
	// A written date elsewhere on the page does not qualify.
	assert.Empty(t, DelinquentDate("cuota morosa 2\nsuscrito el 5 de marzo de 2024"))
}

func TestOperationFromFilename(t *testing.T) {
	assert.Equal(t, "4191896500082450", OperationFromFilename("/in/4191896500082450.pdf"))
	assert.Equal(t, "60247566", OperationFromFilename("op_60247566_scan.pdf"))
	assert.Empty(t, OperationFromFilename("documento.pdf"))
}

func TestOperationFromText(t *testing.T) {
	assert.Equal(t, "60247566", OperationFromText("Operación N° 60247566"))
	assert.Equal(t, "4191896500082450", OperationFromText("PAGARE Nº 4191896500082450"))
	assert.Empty(t, OperationFromText("sin operación"))
}

func TestRepresentatives(t *testing.T) {
	pages := []string{
		"Representante 1: YASNA DEL CARMEN OLAVE MARTINEZ\nRepresentante 2: ERWIN ORLANDO ALIAGA MARILLAN",
	}
	r1, r2 := Representatives(pages)
	assert.Equal(t, "YASNA DEL CARMEN OLAVE MARTINEZ", r1)
	assert.Equal(t, "ERWIN ORLANDO ALIAGA MARILLAN", r2)
}

func TestRepresentatives_NextLineFallback(t *testing.T) {
	pages := []string{
		"Representante 1: YASNA DEL CARMEN OLAVE MARTINEZ\nRepresentante 2:\nERWIN ORLANDO ALIAGA MARILLAN",
	}
	r1, r2 := Representatives(pages)
	assert.Equal(t, "YASNA DEL CARMEN OLAVE MARTINEZ", r1)
	assert.Equal(t, "ERWIN ORLANDO ALIAGA MARILLAN", r2)
}

func TestProfileFor(t *testing.T) {
	assert.Equal(t, Itau, ProfileFor("itau"))
	assert.Equal(t, Santander, ProfileFor("SANTANDER"))
	assert.Equal(t, Indisa, ProfileFor("indisa"))
	assert.Equal(t, Itau, ProfileFor("desconocido"))
}

func TestProfileHint(t *testing.T) {
	p, ok := ProfileHint("/data/Santander_oct/4191896.pdf")
	assert.True(t, ok)
	assert.Equal(t, Santander, p)

	p, ok = ProfileHint("cheques_indisa/123.pdf")
	assert.True(t, ok)
	assert.Equal(t, Indisa, p)

	_, ok = ProfileHint("/data/pagares/4191896.pdf")
	assert.False(t, ok)
}
