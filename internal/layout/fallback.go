package layout

import (
	"log"
	"math"
	"strings"

	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

// FallbackStrategy guesses columns from fixed x buckets. It is used when a
// page has no recognizable header and total rows, and is best effort only.
type FallbackStrategy struct {
	cfg Config
	log debugLog
}

// NewFallbackStrategy returns a fallback strategy using cfg's buckets.
func NewFallbackStrategy(cfg Config, logger *log.Logger) *FallbackStrategy {
	return &FallbackStrategy{cfg: cfg, log: debugLog{logger: logger, on: cfg.Debug}}
}

// Name implements ItemStrategy.
func (s *FallbackStrategy) Name() string { return model.StrategyFallback }

// Applicable reports whether the page has an item name label to anchor on.
func (s *FallbackStrategy) Applicable(p Page) bool {
	_, ok := findNameLabel(p.Tokens)
	return ok
}

// Extract implements ItemStrategy.
func (s *FallbackStrategy) Extract(p Page) Result {
	label, ok := findNameLabel(p.Tokens)
	if !ok {
		return Result{}
	}

	used := tokenSet{}
	seen := map[string]bool{}
	var items []PlacedItem

	for _, cand := range p.Tokens {
		text := strings.TrimSpace(cand.Text)
		if cand.X >= s.cfg.FallbackNameMaxX || cand.Y <= label.Y+s.cfg.FallbackRowWindow {
			continue
		}
		if text == "" || seen[text] || !isProductText(text) || model.IsSummaryName(text) {
			continue
		}
		seen[text] = true

		item := PlacedItem{LineItem: model.LineItem{Name: text}, Y: cand.Y}
		placed := []Token{cand}
		for _, tok := range p.Tokens {
			if tok == cand || math.Abs(tok.Y-cand.Y) > s.cfg.FallbackRowWindow {
				continue
			}
			if s.assign(&item.LineItem, tok) {
				placed = append(placed, tok)
			}
		}

		if !item.HasDetail() {
			continue
		}
		used.add(placed...)
		items = append(items, item)
		s.log.Printf("[Layout] fallback item %q at y=%.1f", item.Name, item.Y)
	}

	return Result{Items: mergeContinuations(items, p.Tokens, used, s.cfg, s.log)}
}

// assign places tok into the first bucket containing its x.
func (s *FallbackStrategy) assign(li *model.LineItem, tok Token) bool {
	for _, b := range s.cfg.FallbackBuckets {
		if !b.Contains(tok.X) {
			continue
		}
		switch b.Key {
		case ColSpec:
			li.Spec += tok.Text
		case ColUnit:
			li.Unit += tok.Text
		case ColQuantity:
			li.Quantity += tok.Text
		case ColPrice:
			li.Price += tok.Text
		case ColAmount:
			li.Amount += tok.Text
		case ColTaxRate:
			li.TaxRate += tok.Text
		case ColTax:
			li.Tax += tok.Text
		default:
			return false
		}
		return true
	}
	return false
}

// findNameLabel returns the topmost token labelling the item name column.
// An exact label is preferred over one embedded in longer text.
func findNameLabel(tokens []Token) (Token, bool) {
	var (
		best      Token
		bestExact bool
		found     bool
	)
	for _, tok := range tokens {
		c := compact(tok.Text)
		if !strings.Contains(c, itemNameMarker) {
			continue
		}
		exact := c == itemNameMarker
		switch {
		case !found:
		case exact && !bestExact:
		case exact == bestExact && tok.Y < best.Y:
		default:
			continue
		}
		best, bestExact, found = tok, exact, true
	}
	return best, found
}
