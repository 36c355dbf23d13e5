package billing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pesoPrinter = message.NewPrinter(language.English)

// Peso formats an amount for documents, with digit grouping: ₱1,234.50.
func Peso(v float64) string {
	return pesoPrinter.Sprintf("₱%.2f", v)
}
