package amount

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmpty is returned when a value has no numeric content at all.
var ErrEmpty = errors.New("no numeric content")

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

var hundred = decimal.NewFromInt(100)

// ParseCurrency parses an invoice money string such as "¥1,024.50".
// Everything except digits, dot and minus is stripped first.
func ParseCurrency(s string) (decimal.Decimal, error) {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return decimal.Zero, ErrEmpty
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// ParseRate normalizes a tax rate to a fraction. "3%" and "3" both give 0.03;
// values at or below 1 are taken as fractions already.
func ParseRate(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	percent := strings.HasSuffix(trimmed, "%") || strings.HasSuffix(trimmed, "％")
	d, err := ParseCurrency(trimmed)
	if err != nil {
		return decimal.Zero, err
	}
	if percent || d.GreaterThan(decimal.NewFromInt(1)) {
		return d.Div(hundred), nil
	}
	return d, nil
}

// Format2 renders d with exactly two fraction digits.
func Format2(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatThousands renders d with two fraction digits and comma grouped
// integer digits, e.g. "1,234,567.50".
func FormatThousands(d decimal.Decimal) string {
	intPart, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	var b strings.Builder
	if d.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
