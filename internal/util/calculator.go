package util

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"github.com/Knetic/govaluate"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyExpression = errors.New("empty expression")
	ErrNotFinite       = errors.New("result is not a finite number")
	ErrOutOfRange      = errors.New("amount is too large")

	validMathPattern = regexp.MustCompile(`^[0-9+\-*/.() ]+$`)
	simpleNumber     = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)
)

// EvaluateExpression evaluates an amount typed by the operator, such as "2*500 + 250"
// or "₹1,200", and returns it rounded to paise. Results outside core.AmountInRange
// are rejected with ErrOutOfRange.
func EvaluateExpression(expr string) (decimal.Decimal, error) {
	d, err := evaluate(expr)
	if err != nil {
		return decimal.Zero, err
	}
	if !core.AmountInRange(d) {
		return decimal.Zero, ErrOutOfRange
	}
	return d, nil
}

func evaluate(expr string) (decimal.Decimal, error) {
	cleanExpr := cleanCurrencyString(expr)
	if cleanExpr == "" {
		return decimal.Zero, ErrEmptyExpression
	}

	// Plain numbers skip the evaluator so they keep full decimal precision
	if isSimpleNumber(cleanExpr) {
		d, err := decimal.NewFromString(cleanExpr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid number format: %w", err)
		}
		return d.Round(2), nil
	}

	if !isValidMathExpression(cleanExpr) {
		return decimal.Zero, fmt.Errorf("invalid expression: contains non-mathematical characters")
	}

	expression, err := govaluate.NewEvaluableExpression(cleanExpr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid expression: %w", err)
	}

	result, err := expression.Evaluate(nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("evaluation error: %w", err)
	}

	switch v := result.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, ErrNotFinite
		}
		return decimal.NewFromFloat(v).Round(2), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		resultStr := fmt.Sprintf("%v", result)
		d, err := decimal.NewFromString(resultStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("could not convert result to decimal: %w", err)
		}
		return d.Round(2), nil
	}
}

// ParseAmount is EvaluateExpression for callers that only care whether the text
// produced a usable number.
func ParseAmount(text string) (decimal.Decimal, bool) {
	d, err := EvaluateExpression(text)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// cleanCurrencyString removes rupee symbols and digit grouping.
func cleanCurrencyString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.TrimPrefix(s, "Rs.")
	s = strings.TrimPrefix(s, "Rs")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

// isSimpleNumber checks if the string is just a number without operators.
func isSimpleNumber(s string) bool {
	return simpleNumber.MatchString(s)
}

// isValidMathExpression checks if the string contains only valid mathematical characters.
func isValidMathExpression(expr string) bool {
	return validMathPattern.MatchString(expr)
}
