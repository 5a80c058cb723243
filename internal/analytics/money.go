package analytics

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// formatMoney renders an amount in minor units as whole major units, e.g. "12,345 KES".
// Fractions are truncated.
func formatMoney(minor float64, currency string) string {
	major := decimal.NewFromFloat(minor).Shift(-2).Truncate(0)
	return message.NewPrinter(language.English).Sprintf("%d %s", major.IntPart(), currency)
}
