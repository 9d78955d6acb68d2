package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/legaltech-cl/extracto/internal/textutil"
)

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)monto\s+del?\s+cr[ée]dito\s*[:\s]\s*\$?\s*([\d\.]{4,15})`),
	regexp.MustCompile(`(?i)capital\s*[:\s]\s*\$?\s*([\d\.]{4,15})`),
	regexp.MustCompile(`(?i)por\s+la\s+suma\s+de\s+\$?\s*([\d\.]{4,15})`),
	regexp.MustCompile(`(?i)la\s+cantidad\s+de\s+\$?\s*([\d\.]{4,15})`),
	regexp.MustCompile(`\$\s*([\d]{1,3}(?:\.\d{3}){1,4})`),
}

// Amount extracts the loan principal as bare digits ("5713357").
func Amount(text string) string {
	for _, re := range amountPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := textutil.DigitsOnly(m[1]); plausibleAmount(v) {
				return v
			}
		}
	}
	return ""
}

var groupedNumberRe = regexp.MustCompile(`\d{1,3}(?:\.\d{3}){1,4}`)

// MaxGroupedAmount is the cheque fallback: the largest thousands-
// grouped number on the page is almost always the cheque amount.
func MaxGroupedAmount(text string) string {
	best := ""
	bestVal := int64(0)
	for _, m := range groupedNumberRe.FindAllString(text, -1) {
		digits := textutil.DigitsOnly(m)
		v, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}
		if v > bestVal && plausibleAmount(digits) {
			best, bestVal = digits, v
		}
	}
	return best
}

// Rows sometimes capture operation numbers or RUTs as amounts; require
// 4-10 digits.
func plausibleAmount(digits string) bool {
	return len(digits) >= 4 && len(digits) <= 10
}

var installmentsRe = regexp.MustCompile(`(?i)en\s+(\d{1,3})\s+cuotas`)

// Installments returns the installment count as a string, or "".
func Installments(text string) string {
	if m := installmentsRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 1 && n <= 240 {
			return strconv.Itoa(n)
		}
	}
	return ""
}

var ratePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)tasa\s+de\s+inter[ée]s(?:\s+mensual)?\s*(?:de|:)?\s*(\d{1,2}[\.,]\d{1,4})\s*%`),
	regexp.MustCompile(`(?i)inter[ée]s\s+(?:de\s+)?(?:un\s+)?(\d{1,2}[\.,]\d{1,4})\s*%\s*mensual`),
	regexp.MustCompile(`(\d{1,2}[\.,]\d{1,4})\s*%`),
}

// Rate extracts the monthly interest rate in the display form "1,62%".
func Rate(text string) string {
	for _, re := range ratePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			v := strings.ReplaceAll(m[1], ".", ",")
			return v + "%"
		}
	}
	return ""
}

var (
	installmentAmountRe = regexp.MustCompile(`(?i)cuotas?\s+(?:mensuales\s+)?(?:iguales\s+)?(?:y\s+sucesivas\s+)?de\s+\$?\s*([\d\.]{4,15})`)
	perInstallmentRe    = regexp.MustCompile(`(?i)\$?\s*([\d\.]{4,15})\s+cada\s+una`)
	lastInstallmentRe   = regexp.MustCompile(`(?i)(?:una\s+)?[uú]ltima\s+(?:cuota\s+)?de\s+\$?\s*([\d\.]{4,15})`)
)

// InstallmentAmounts extracts the regular installment amount and the
// final balloon installment when present.
func InstallmentAmounts(text string) (monthly, final string) {
	if m := installmentAmountRe.FindStringSubmatch(text); m != nil {
		if v := textutil.DigitsOnly(m[1]); plausibleAmount(v) {
			monthly = v
		}
	}
	if monthly == "" {
		if m := perInstallmentRe.FindStringSubmatch(text); m != nil {
			if v := textutil.DigitsOnly(m[1]); plausibleAmount(v) {
				monthly = v
			}
		}
	}
	if m := lastInstallmentRe.FindStringSubmatch(text); m != nil {
		if v := textutil.DigitsOnly(m[1]); plausibleAmount(v) {
			final = v
		}
	}
	return monthly, final
}

var delinquentRe = regexp.MustCompile(`(?i)cuota\s+(?:morosa|impaga|en\s+mora)\s*(?:N[°ºo\.]*)?\s*[:\s]\s*(\d{1,3})`)

// DelinquentInstallment extracts the number of the first unpaid
// installment.
func DelinquentInstallment(text string) string {
	if m := delinquentRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

var delinquentDateRe = regexp.MustCompile(`(?i)cuota\s+(?:morosa|impaga|en\s+mora)[^\n]{0,120}?(\d{1,2}\s+de\s+[a-zá-úñ]+\s+(?:de|del)\s+\d{4})`)

// DelinquentDate extracts the due date of the delinquent installment,
// written in words near the "cuota morosa" mention.
func DelinquentDate(text string) string {
	if m := delinquentDateRe.FindStringSubmatch(text); m != nil {
		return SpanishDate(m[1])
	}
	return ""
}
