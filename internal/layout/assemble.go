package layout

import (
	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

// PlacedItem is a line item together with the y of its name token, which the
// continuation merger measures distances from.
type PlacedItem struct {
	model.LineItem
	Y float64
}

type tokenSet map[Token]struct{}

func (s tokenSet) has(t Token) bool {
	_, ok := s[t]
	return ok
}

func (s tokenSet) add(tokens ...Token) {
	for _, t := range tokens {
		s[t] = struct{}{}
	}
}

// assembleItems regroups table body tokens into rows and builds one item per
// row. A row that only carries name or spec text continues the previous item.
// Tokens that were placed into an item are recorded in used.
func assembleItems(body []Token, cols ColumnSet, tolerance float64, used tokenSet, log debugLog) []PlacedItem {
	var items []PlacedItem

	for _, row := range GroupRows(body, tolerance) {
		var (
			item     PlacedItem
			placed   []Token
			haveName bool
		)
		item.Y = row.Y

		for _, tok := range row.Tokens {
			key, ok := cols.Lookup(tok.X)
			if !ok {
				log.Printf("[Layout] dropped token %q at x=%.1f: outside every column", tok.Text, tok.X)
				continue
			}
			placed = append(placed, tok)
			switch key {
			case ColName:
				item.Name = joinSpaced(item.Name, tok.Text)
				if !haveName {
					item.Y, haveName = tok.Y, true
				}
			case ColSpec:
				item.Spec = joinSpaced(item.Spec, tok.Text)
			case ColUnit:
				item.Unit += tok.Text
			case ColQuantity:
				item.Quantity += tok.Text
			case ColPrice:
				item.Price += tok.Text
			case ColAmount:
				item.Amount += tok.Text
			case ColTaxRate:
				item.TaxRate += tok.Text
			case ColTax:
				item.Tax += tok.Text
			}
		}

		if item.Name == "" && item.Spec == "" {
			continue
		}
		item.Spec = normalizeSpec(item.Spec)

		if isContinuationRow(item.LineItem) {
			if len(items) == 0 {
				log.Printf("[Layout] dropped row at y=%.1f: continuation without a previous item", row.Y)
				continue
			}
			prev := &items[len(items)-1]
			prev.Name = joinSpaced(prev.Name, item.Name)
			prev.Spec = joinSpaced(prev.Spec, item.Spec)
			used.add(placed...)
			log.Printf("[Layout] row at y=%.1f continues item %q", row.Y, prev.Name)
			continue
		}

		if item.Name == "" {
			log.Printf("[Layout] skipped row at y=%.1f: no item name", row.Y)
			continue
		}
		if model.IsSummaryName(item.Name) {
			continue
		}

		used.add(placed...)
		items = append(items, item)
	}

	return items
}

// isContinuationRow reports whether name and spec are the only filled fields.
func isContinuationRow(li model.LineItem) bool {
	return li.Unit == "" && li.Quantity == "" && li.Price == "" &&
		li.Amount == "" && li.TaxRate == "" && li.Tax == ""
}

func joinSpaced(a, b string) string {
	switch {
	case b == "":
		return a
	case a == "":
		return b
	default:
		return a + " " + b
	}
}
