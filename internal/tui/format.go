package tui

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// amountFormatter renders rupee amounts with the locale's digit grouping.
type amountFormatter struct {
	printer  *message.Printer
	currency string
}

func newAmountFormatter(p *message.Printer, currency string) amountFormatter {
	if p == nil {
		p = message.NewPrinter(language.MustParse("en-IN"))
	}
	if currency == "" {
		currency = "₹"
	}
	return amountFormatter{printer: p, currency: currency}
}

// format renders d to two places, for example ₹1,00,000.00 under en-IN.
func (f amountFormatter) format(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + f.currency + f.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// truncate shortens s to width runes, marking the cut with an ellipsis
func truncate(s string, width int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= width {
		return string(runes)
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
