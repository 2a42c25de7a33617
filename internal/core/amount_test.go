package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAmountInRange(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"0", true},
		{"5000.50", true},
		{"-1200.5", true},
		{"1e3", true},
		{"999999999999999.99", true},
		{"1000000000000000", false},
		{"-1e15", false},
		{"1e19", false},
		{"1e20000000", false},
		{"1e-20000000", false},
		{"0.000000000000000001", true},
		{"0.0000000000000000001", false},
	}

	for _, test := range tests {
		d, err := decimal.NewFromString(test.input)
		if err != nil {
			t.Fatalf("bad input %q: %v", test.input, err)
		}
		if got := AmountInRange(d); got != test.want {
			t.Errorf("AmountInRange(%s) = %v, want %v", test.input, got, test.want)
		}
	}
}
