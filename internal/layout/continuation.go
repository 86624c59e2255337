package layout

import (
	"regexp"
	"sort"
	"strings"

	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

var (
	voltageToken   = regexp.MustCompile(`^\d+(?:\.\d+)?/\d+(?:\.\d+)?[Kk][Vv]$`)
	voltageInName  = regexp.MustCompile(`\d+(?:\.\d+)?/\d+(?:\.\d+)?[Kk][Vv]`)
	trailingRating = regexp.MustCompile(`\s*\d+(?:\.\d+)?/\d+(?:\.\d+)?[Kk][Vv]$`)
	multiplySpaces = regexp.MustCompile(`(\d+)\s*\*\s*(\d+)`)
)

var nonProductKeywords = []string{"合计", "价税", "备注", "工程", "开票"}

// IsVoltageRating reports whether text is a standalone rating like "0.6/1kV".
func IsVoltageRating(text string) bool {
	return voltageToken.MatchString(strings.TrimSpace(text))
}

// isProductText rejects footer labels and rating tokens.
func isProductText(text string) bool {
	for _, kw := range nonProductKeywords {
		if strings.Contains(text, kw) {
			return false
		}
	}
	return !IsVoltageRating(text)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeSpec(s string) string {
	return multiplySpaces.ReplaceAllString(collapseSpaces(s), "$1*$2")
}

// mergeContinuations reattaches wrapped name and spec lines and standalone
// voltage ratings to the items above them. Tokens in used are never merged,
// and every merged token is added to used.
func mergeContinuations(items []PlacedItem, tokens []Token, used tokenSet, cfg Config, log debugLog) []model.LineItem {
	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	hasName := func(text string) bool {
		for _, it := range items {
			if it.Name == text {
				return true
			}
		}
		return false
	}
	hasSpec := func(text string) bool {
		for _, it := range items {
			if it.Spec == text {
				return true
			}
		}
		return false
	}

	for i := range items {
		item := &items[i]
		var names, specs []Token
		for _, tok := range sorted {
			if used.has(tok) || tok.Text == "" {
				continue
			}
			if tok.Y <= item.Y || tok.Y >= item.Y+cfg.ContinuationWindow {
				continue
			}
			switch {
			case tok.X < cfg.NameRegionMaxX:
				if isProductText(tok.Text) && !hasName(tok.Text) {
					names = append(names, tok)
				}
			case tok.X > cfg.SpecRegionMinX && tok.X < cfg.SpecRegionMaxX:
				if !hasSpec(tok.Text) {
					specs = append(specs, tok)
				}
			}
		}

		if len(names) > 0 {
			item.Name = collapseSpaces(item.Name + " " + joinTexts(names))
			used.add(names...)
			log.Printf("[Layout] merged name continuation: %s", item.Name)
		}
		if len(specs) > 0 {
			item.Spec = normalizeSpec(item.Spec + " " + joinTexts(specs))
			used.add(specs...)
			log.Printf("[Layout] merged spec continuation: %s", item.Spec)
		}
		item.Spec = normalizeSpec(item.Spec)
	}

	attachRatings(items, sorted, used, cfg.VoltageMaxDistance, log)
	propagateRatings(items)

	out := make([]model.LineItem, 0, len(items))
	for _, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		out = append(out, it.LineItem)
	}
	return out
}

// attachRatings appends each free rating token to the nearest item above it.
func attachRatings(items []PlacedItem, sorted []Token, used tokenSet, maxDistance float64, log debugLog) {
	for _, tok := range sorted {
		if used.has(tok) || !IsVoltageRating(tok.Text) {
			continue
		}
		rating := strings.TrimSpace(tok.Text)

		nearest := -1
		for i, it := range items {
			if it.Y >= tok.Y {
				continue
			}
			if nearest < 0 || it.Y > items[nearest].Y {
				nearest = i
			}
		}
		if nearest < 0 || tok.Y-items[nearest].Y >= maxDistance {
			continue
		}
		target := &items[nearest]
		if strings.Contains(target.Name, rating) {
			continue
		}
		target.Name = collapseSpaces(target.Name + " " + rating)
		used.add(tok)
		log.Printf("[Layout] attached rating %s to %q", rating, target.Name)
	}
}

// propagateRatings gives every item sharing a base name the rating that any
// one of them carries.
func propagateRatings(items []PlacedItem) {
	groups := map[string][]int{}
	var order []string
	for i, it := range items {
		base := strings.TrimSpace(trailingRating.ReplaceAllString(it.Name, ""))
		if _, ok := groups[base]; !ok {
			order = append(order, base)
		}
		groups[base] = append(groups[base], i)
	}

	for _, base := range order {
		members := groups[base]
		rating := ""
		for _, idx := range members {
			if m := voltageInName.FindString(items[idx].Name); m != "" {
				rating = m
				break
			}
		}
		if rating == "" {
			continue
		}
		for _, idx := range members {
			if !strings.Contains(items[idx].Name, rating) {
				items[idx].Name = base + " " + rating
			}
		}
	}
}

func joinTexts(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}
