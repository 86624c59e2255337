// Package layout rebuilds the goods table of a VAT invoice from positioned
// text tokens: rows, table bounds, columns, item rows and wrapped lines.
package layout

import (
	"math"
	"sort"
	"strings"
)

// Token is a positioned fragment of page text. Y grows downward.
type Token struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the token's right edge.
func (t Token) Right() float64 {
	return t.X + t.Width
}

// Row is a set of tokens on the same visual line, sorted by x.
type Row struct {
	Y      float64
	Tokens []Token
}

// Text joins the row's token texts with single spaces.
func (r Row) Text() string {
	parts := make([]string, 0, len(r.Tokens))
	for _, t := range r.Tokens {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

// compact returns s without any whitespace.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// GroupRows clusters tokens into rows. A token joins the current row while
// its y is within tolerance of the y of the row's first token.
func GroupRows(tokens []Token, tolerance float64) []Row {
	if len(tokens) == 0 {
		return []Row{}
	}

	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows []Row
	current := Row{Y: sorted[0].Y, Tokens: []Token{sorted[0]}}
	for _, tok := range sorted[1:] {
		if math.Abs(tok.Y-current.Y) <= tolerance {
			current.Tokens = append(current.Tokens, tok)
			continue
		}
		rows = append(rows, finishRow(current))
		current = Row{Y: tok.Y, Tokens: []Token{tok}}
	}
	rows = append(rows, finishRow(current))

	return rows
}

func finishRow(r Row) Row {
	sort.SliceStable(r.Tokens, func(i, j int) bool {
		return r.Tokens[i].X < r.Tokens[j].X
	})
	return r
}

// FullText renders rows as newline separated lines, skipping blank ones.
func FullText(rows []Row) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		line := strings.TrimSpace(r.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
