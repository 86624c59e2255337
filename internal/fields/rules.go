package fields

import (
	"regexp"

	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

// fieldRule captures a single header field. Patterns are tried in order and
// the first capture that survives cleaning wins.
type fieldRule struct {
	Name     string
	Patterns []string
	set      func(h *model.HeaderFields, v string)
	compiled []*regexp.Regexp
}

// pairRule captures two fields from one combined pattern, falling back to a
// separate pattern list for each field.
type pairRule struct {
	Name     string
	Combined string
	First    []string
	Second   []string
	set      func(h *model.HeaderFields, first, second string)
}

// getDefaultRules returns the simple single capture rules. Invoice number,
// date, tax IDs and bank details need bespoke handling and live in fields.go.
func getDefaultRules() []fieldRule {
	return []fieldRule{
		{
			Name: "buyer",
			Patterns: []string{
				`购\s*名称[：:]\s*([^\n销]+)`,
				`购买方名称[：:]\s*([^\n]+)`,
			},
			set: func(h *model.HeaderFields, v string) { h.Buyer = v },
		},
		{
			Name: "seller",
			Patterns: []string{
				`销\s*名称[：:]\s*([^\n]+)`,
				`销售方名称[：:]\s*([^\n]+)`,
			},
			set: func(h *model.HeaderFields, v string) { h.Seller = v },
		},
		{
			Name:     "amount",
			Patterns: []string{`[（(]小写[）)][:：]?\s*([¥￥]\s*[\d,.]+)`},
			set:      func(h *model.HeaderFields, v string) { h.Amount = v },
		},
		{
			Name:     "amountInWords",
			Patterns: []string{`[（(]大写[）)][:：]?\s*([^（(\n]+)`},
			set:      func(h *model.HeaderFields, v string) { h.AmountInWords = v },
		},
		{
			// 项目名称 needs a colon so the goods table header never matches.
			Name: "project",
			Patterns: []string{
				`工程名称[：:]\s*([^\n]+)`,
				`项目名称[：:]\s*([^\n]+)`,
				`工程项目[：:]\s*([^\n]+)`,
			},
			set: func(h *model.HeaderFields, v string) { h.Project = v },
		},
		{
			Name: "projectAddress",
			Patterns: []string{
				`工程地址[：:]\s*([^\n]+)`,
				`项目地址[：:]\s*([^\n]+)`,
			},
			set: func(h *model.HeaderFields, v string) { h.ProjectAddress = v },
		},
		{
			Name:     "issuer",
			Patterns: []string{`开票人[：:]\s*([^\n]+)`},
			set:      func(h *model.HeaderFields, v string) { h.Issuer = v },
		},
	}
}

func getBankRules() []pairRule {
	return []pairRule{
		{
			Name:     "sellerBank",
			Combined: `销方开户银行[：:]\s*([^;；\n]+)[;；]?\s*银行账号[：:]\s*([^;；\n]+)`,
			First:    []string{`销方开户银行[：:]\s*([^;；\n]+)`},
			Second:   []string{`销方银行账号[：:]\s*([^;；\n]+)`, `销方开户银行[^\n]*?银行账号[：:]\s*([^;；\n]+)`},
			set: func(h *model.HeaderFields, bank, account string) {
				h.SellerBank, h.SellerBankAccount = bank, account
			},
		},
		{
			Name:     "buyerBank",
			Combined: `购方开户银行[：:]\s*([^;；\n]+)[;；]?\s*银行账号[：:]\s*([^;；\n]+)`,
			First:    []string{`购方开户银行[：:]\s*([^;；\n]+)`},
			Second:   []string{`购方银行账号[：:]\s*([^;；\n]+)`, `购方开户银行[^\n]*?银行账号[：:]\s*([^;；\n]+)`},
			set: func(h *model.HeaderFields, bank, account string) {
				h.BuyerBank, h.BuyerBankAccount = bank, account
			},
		},
	}
}
