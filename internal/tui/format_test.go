package tui

import (
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestAmountFormatter(t *testing.T) {
	f := newAmountFormatter(message.NewPrinter(language.English), "₹")

	tests := []struct {
		in   string
		want string
	}{
		{"0", "₹0.00"},
		{"1234.5", "₹1,234.50"},
		{"95000", "₹95,000.00"},
		{"-2000", "-₹2,000.00"},
		{"10.005", "₹10.01"},
	}
	for _, tt := range tests {
		if got := f.format(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("format(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAmountFormatterDefaults(t *testing.T) {
	f := newAmountFormatter(nil, "")
	if f.currency != "₹" {
		t.Fatalf("expected rupee symbol by default, got %q", f.currency)
	}
	if f.printer == nil {
		t.Fatalf("expected a default printer")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Ramesh Kumar", 20); got != "Ramesh Kumar" {
		t.Errorf("short string changed: %q", got)
	}
	if got := truncate("Ramachandran Venkataraman", 10); got != "Ramacha..." {
		t.Errorf("truncate = %q", got)
	}
}
