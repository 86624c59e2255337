package layout

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// ColumnKey names a semantic column of the goods table.
type ColumnKey string

const (
	ColName     ColumnKey = "name"
	ColSpec     ColumnKey = "spec"
	ColUnit     ColumnKey = "unit"
	ColQuantity ColumnKey = "quantity"
	ColPrice    ColumnKey = "price"
	ColAmount   ColumnKey = "amount"
	ColTaxRate  ColumnKey = "taxRate"
	ColTax      ColumnKey = "tax"
)

var headerLabels = map[ColumnKey][]string{
	ColName:     {"项目名称", "货物名称", "货物或应税劳务、服务名称"},
	ColSpec:     {"规格型号", "规格", "型号"},
	ColUnit:     {"单位", "单 位"},
	ColQuantity: {"数量", "数 量"},
	ColPrice:    {"单价", "单 价"},
	ColAmount:   {"金额"},
	ColTaxRate:  {"税率", "税率/征收率", "征收率"},
	ColTax:      {"税额", "税 额"},
}

// MatchHeaderLabel returns the column a header token names. The longest
// label variant the token starts with wins.
func MatchHeaderLabel(text string) (ColumnKey, bool) {
	c := compact(text)
	if c == "" {
		return "", false
	}
	var (
		best    ColumnKey
		bestLen int
	)
	for key, variants := range headerLabels {
		for _, v := range variants {
			v = compact(v)
			if !strings.HasPrefix(c, v) {
				continue
			}
			if n := utf8.RuneCountInString(v); n > bestLen {
				best, bestLen = key, n
			}
		}
	}
	return best, bestLen > 0
}

// Column is an x range owned by one semantic column.
type Column struct {
	Key  ColumnKey `json:"key"`
	MinX float64   `json:"minX"`
	MaxX float64   `json:"maxX"`

	// LabelX is the centre of the header label, kept for layout review.
	LabelX float64 `json:"labelX"`
}

// ColumnSet is a list of columns sorted by MinX that tiles the x axis.
type ColumnSet []Column

// maxLabelParts bounds how many letter-spaced header tokens form one label.
const maxLabelParts = 6

// MapColumns derives column ranges from the header row. Each column ends
// where the next begins. The outermost columns extend margin beyond their
// labels; tokens further out belong to no column.
func MapColumns(header Row, margin float64) ColumnSet {
	type span struct {
		min, max float64
	}

	tokens := make([]Token, len(header.Tokens))
	copy(tokens, header.Tokens)
	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].X < tokens[j].X })

	spans := map[ColumnKey]*span{}
	for i := 0; i < len(tokens); {
		key, n, ok := matchLabelAt(tokens, i)
		if !ok {
			i++
			continue
		}
		lo, hi := tokens[i].X, tokens[i].Right()
		for _, t := range tokens[i+1 : i+n] {
			lo, hi = math.Min(lo, t.X), math.Max(hi, t.Right())
		}
		i += n

		s, seen := spans[key]
		if !seen {
			spans[key] = &span{min: lo, max: hi}
			continue
		}
		s.min = math.Min(s.min, lo)
		s.max = math.Max(s.max, hi)
	}

	cols := make(ColumnSet, 0, len(spans))
	for key, s := range spans {
		cols = append(cols, Column{Key: key, MinX: s.min, MaxX: s.max, LabelX: (s.min + s.max) / 2})
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i].MinX != cols[j].MinX {
			return cols[i].MinX < cols[j].MinX
		}
		return cols[i].Key < cols[j].Key
	})

	for i := 0; i < len(cols)-1; i++ {
		cols[i].MaxX = cols[i+1].MinX
	}
	if n := len(cols); n > 0 {
		cols[0].MinX -= margin
		cols[n-1].MaxX += margin
	}
	return cols
}

// matchLabelAt matches the label starting at tokens[i]. Letter-spaced labels
// such as "单 位" arrive as several tokens; the shortest run of tokens whose
// joined text names a column wins. A run stops at a token that is a label by
// itself.
func matchLabelAt(tokens []Token, i int) (ColumnKey, int, bool) {
	if key, ok := MatchHeaderLabel(tokens[i].Text); ok {
		return key, 1, true
	}
	joined := compact(tokens[i].Text)
	for j := i + 1; j < len(tokens) && j-i < maxLabelParts; j++ {
		if _, ok := MatchHeaderLabel(tokens[j].Text); ok {
			break
		}
		joined += compact(tokens[j].Text)
		if key, ok := MatchHeaderLabel(joined); ok {
			return key, j - i + 1, true
		}
	}
	return "", 0, false
}

// Lookup returns the column whose range contains x.
func (cs ColumnSet) Lookup(x float64) (ColumnKey, bool) {
	for _, c := range cs {
		if x >= c.MinX && x < c.MaxX {
			return c.Key, true
		}
	}
	return "", false
}

// Has reports whether the header defined key.
func (cs ColumnSet) Has(key ColumnKey) bool {
	for _, c := range cs {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Review lists header labels lying outside their expected bands.
func (cs ColumnSet) Review(bounds map[ColumnKey]Range) []string {
	var warnings []string
	for _, c := range cs {
		band, ok := bounds[c.Key]
		if !ok || band.Contains(c.LabelX) {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("column %s at x=%.1f outside expected [%.0f,%.0f)",
			c.Key, c.LabelX, band.Min, band.Max))
	}
	return warnings
}
