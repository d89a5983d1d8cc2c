package shared

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Fold lower-cases s for case-insensitive matching.
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// FormatAmount renders a whole currency amount with thousands separators.
func FormatAmount(amount float64) string {
	return message.NewPrinter(language.English).Sprintf("Rp %.0f", amount)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
