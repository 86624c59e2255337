// Package fields pulls the invoice header fields (number, date, parties,
// amounts, project and bank details) out of a page's reconstructed text.
package fields

import (
	"regexp"
	"strings"

	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

const (
	invoiceNumberKey = "发票号码"
	dateKey          = "开票日期"
	buyerKey         = "购"
	taxIDLabel       = `统一社会信用代码/纳税人识别号[：:]\s*([A-Za-z0-9]+)`
)

var (
	digitsRe        = regexp.MustCompile(`\d+`)
	invoiceNumberRe = regexp.MustCompile(`发票号码[：:]\s*(\d+)`)
	dateRe          = regexp.MustCompile(`\d{4}年\d{1,2}月\d{1,2}日`)
	taxIDRe         = regexp.MustCompile(taxIDLabel)
	buyerTaxIDRe    = regexp.MustCompile(`买[^\n]{0,30}?纳税人识别号[：:]\s*([A-Za-z0-9]+)`)
	sellerTaxIDRe   = regexp.MustCompile(`售[^\n]{0,30}?纳税人识别号[：:]\s*([A-Za-z0-9]+)`)
)

// Extractor applies the header rules to full page text. It is safe for
// concurrent use.
type Extractor struct {
	rules []fieldRule
	banks []compiledPair
}

type compiledPair struct {
	rule     pairRule
	combined *regexp.Regexp
	first    []*regexp.Regexp
	second   []*regexp.Regexp
}

// NewExtractor compiles the default rule set.
func NewExtractor() *Extractor {
	e := &Extractor{}
	for _, r := range getDefaultRules() {
		r.compiled = mustCompileAll(r.Patterns)
		e.rules = append(e.rules, r)
	}
	for _, r := range getBankRules() {
		e.banks = append(e.banks, compiledPair{
			rule:     r,
			combined: regexp.MustCompile(r.Combined),
			first:    mustCompileAll(r.First),
			second:   mustCompileAll(r.Second),
		})
	}
	return e
}

var defaultExtractor = NewExtractor()

// Extract runs the default extractor over text.
func Extract(text string) model.HeaderFields {
	return defaultExtractor.Extract(text)
}

// Extract returns every header field it can find. Fields that no pattern
// matches are left empty.
func (e *Extractor) Extract(text string) model.HeaderFields {
	var h model.HeaderFields

	h.InvoiceNumber = invoiceNumber(text)
	h.Date = invoiceDate(text)
	h.BuyerTaxID, h.SellerTaxID = taxIDs(text)

	for _, r := range e.rules {
		if v := firstMatch(text, r.compiled); v != "" {
			r.set(&h, v)
		}
	}

	for _, p := range e.banks {
		var first, second string
		if m := p.combined.FindStringSubmatch(text); m != nil {
			first, second = cleanValue(m[1]), cleanValue(m[2])
		}
		if first == "" {
			first = firstMatch(text, p.first)
		}
		if second == "" {
			second = firstMatch(text, p.second)
		}
		p.rule.set(&h, first, second)
	}

	return h
}

func invoiceNumber(text string) string {
	if between, ok := textBetween(text, invoiceNumberKey, dateKey); ok {
		if n := digitsRe.FindString(between); n != "" {
			return n
		}
	}
	return firstMatch(text, []*regexp.Regexp{invoiceNumberRe})
}

func invoiceDate(text string) string {
	if between, ok := textBetween(text, dateKey, buyerKey); ok {
		d := cleanValue(strings.NewReplacer("：", "", ":", "").Replace(between))
		if d != "" && !strings.Contains(d, "\n") {
			return d
		}
		if m := dateRe.FindString(between); m != "" {
			return m
		}
	}
	return dateRe.FindString(text)
}

// taxIDs returns buyer and seller IDs. The combined label appears once per
// party, buyer first.
func taxIDs(text string) (buyer, seller string) {
	matches := taxIDRe.FindAllStringSubmatch(text, 2)
	if len(matches) == 2 {
		return matches[0][1], matches[1][1]
	}
	buyer = firstMatch(text, []*regexp.Regexp{buyerTaxIDRe})
	seller = firstMatch(text, []*regexp.Regexp{sellerTaxIDRe})
	if buyer == "" && len(matches) == 1 {
		buyer = matches[0][1]
	}
	return buyer, seller
}

// textBetween returns the text after the first start key up to the next end
// key, or to the end of text when the end key is missing.
func textBetween(text, start, end string) (string, bool) {
	i := strings.Index(text, start)
	if i < 0 {
		return "", false
	}
	rest := text[i+len(start):]
	if j := strings.Index(rest, end); j >= 0 {
		rest = rest[:j]
	}
	return rest, true
}

func firstMatch(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil || len(m) < 2 {
			continue
		}
		if v := cleanValue(m[1]); v != "" {
			return v
		}
	}
	return ""
}

// cleanValue trims whitespace, separators and the cross mark printed in
// front of the amount in words.
func cleanValue(s string) string {
	return strings.Trim(strings.TrimSpace(s), " \t\r\n:：;；ⓧ⊗")
}

func mustCompileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}
