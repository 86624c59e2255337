package pdf

import (
	"sort"
	"strings"

	"github.com/a3tai/mcp-invoice-contract/internal/layout"
)

// Glyph is one positioned character in PDF user space (origin bottom left).
type Glyph struct {
	Text     string
	X        float64
	Baseline float64
	Width    float64
	FontSize float64
}

// Right returns the glyph's right edge.
func (g Glyph) Right() float64 {
	return g.X + g.Width
}

func (g Glyph) isSpace() bool {
	return strings.TrimSpace(g.Text) == ""
}

const (
	baselineTolerance = 1.0
	relativeGapRatio  = 0.3
	ascentRatio       = 0.8
)

// MergeGlyphs joins glyphs into word tokens. A word ends at a space glyph, a
// baseline change, or a horizontal gap wider than wordGap or 0.3 of the next
// glyph's width. Token y is the glyph top measured from the page top.
func MergeGlyphs(glyphs []Glyph, pageHeight, wordGap float64) []layout.Token {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Baseline != sorted[j].Baseline {
			return sorted[i].Baseline > sorted[j].Baseline
		}
		return sorted[i].X < sorted[j].X
	})

	var (
		tokens []layout.Token
		line   []Glyph
	)
	lineBase := sorted[0].Baseline
	for _, g := range sorted {
		if g.Baseline-lineBase > baselineTolerance || lineBase-g.Baseline > baselineTolerance {
			tokens = append(tokens, mergeLine(line, pageHeight, wordGap)...)
			line, lineBase = nil, g.Baseline
		}
		line = append(line, g)
	}
	return append(tokens, mergeLine(line, pageHeight, wordGap)...)
}

func mergeLine(line []Glyph, pageHeight, wordGap float64) []layout.Token {
	sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })

	var (
		tokens []layout.Token
		word   []Glyph
	)
	flush := func() {
		if tok, ok := newToken(word, pageHeight); ok {
			tokens = append(tokens, tok)
		}
		word = nil
	}

	for _, g := range line {
		if g.isSpace() {
			flush()
			continue
		}
		if len(word) > 0 {
			gap := g.X - word[len(word)-1].Right()
			if gap > wordGap || gap > g.Width*relativeGapRatio {
				flush()
			}
		}
		word = append(word, g)
	}
	flush()
	return tokens
}

func newToken(word []Glyph, pageHeight float64) (layout.Token, bool) {
	if len(word) == 0 {
		return layout.Token{}, false
	}
	var b strings.Builder
	size, base := 0.0, word[0].Baseline
	for _, g := range word {
		b.WriteString(g.Text)
		if g.FontSize > size {
			size = g.FontSize
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return layout.Token{}, false
	}
	first, last := word[0], word[len(word)-1]
	return layout.Token{
		Text:   text,
		X:      first.X,
		Y:      pageHeight - (base + ascentRatio*size),
		Width:  last.Right() - first.X,
		Height: size,
	}, true
}
