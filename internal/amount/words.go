// Package amount parses invoice money values and spells them out in the
// capitalized numerals used on Chinese contracts and invoices.
package amount

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	digitGlyphs = [10]string{"零", "壹", "贰", "叁", "肆", "伍", "陆", "柒", "捌", "玖"}
	placeUnits  = [4]string{"", "拾", "佰", "仟"}
	groupUnits  = []string{"", "万", "亿", "万亿", "亿亿"}
)

const zeroWords = "零元整"

// ToWords converts an amount string to capitalized Chinese numerals.
// Currency symbols and separators are ignored; unparseable input yields 零元整.
func ToWords(s string) string {
	d, err := ParseCurrency(s)
	if err != nil {
		return zeroWords
	}
	return ToWordsDecimal(d)
}

// ToWordsDecimal converts d, truncated to two fraction digits.
func ToWordsDecimal(d decimal.Decimal) string {
	d = d.Truncate(2)
	if d.IsZero() {
		return zeroWords
	}

	var b strings.Builder
	if d.IsNegative() {
		b.WriteString("负")
		d = d.Neg()
	}

	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	jiao, fen := cents/10, cents%10

	integer := integerWords(whole.String())
	if integer == "" {
		if len(whole.String()) > 1 {
			// overflow: more digits than the unit table can name
			return ""
		}
		b.WriteString("零")
	}
	b.WriteString(integer)
	b.WriteString("元")

	if cents == 0 {
		b.WriteString("整")
		return b.String()
	}
	if jiao > 0 {
		b.WriteString(digitGlyphs[jiao])
		b.WriteString("角")
	}
	if fen > 0 {
		b.WriteString(digitGlyphs[fen])
		b.WriteString("分")
	}
	return b.String()
}

// integerWords spells a non-negative integer given as decimal digits.
// It returns "" for zero and for values too large to name.
func integerWords(digits string) string {
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return ""
	}

	groupCount := (len(digits) + 3) / 4
	if groupCount > len(groupUnits) {
		return ""
	}
	if pad := groupCount*4 - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}

	var b strings.Builder
	started, pendingZero := false, false
	for g := 0; g < groupCount; g++ {
		group := digits[g*4 : g*4+4]
		nonZero := false
		for pos := 0; pos < 4; pos++ {
			n := group[pos] - '0'
			if n == 0 {
				if started {
					pendingZero = true
				}
				continue
			}
			if pendingZero {
				b.WriteString(digitGlyphs[0])
				pendingZero = false
			}
			b.WriteString(digitGlyphs[n])
			b.WriteString(placeUnits[3-pos])
			started, nonZero = true, true
		}
		if nonZero {
			b.WriteString(groupUnits[groupCount-1-g])
		}
	}
	return b.String()
}
