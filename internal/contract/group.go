// Package contract groups extracted invoices into contracts and prepares the
// flat data a contract template is filled with.
package contract

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/a3tai/mcp-invoice-contract/internal/amount"
	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

// ErrMalformedInvoiceList is returned when the invoice list contains a nil
// record.
var ErrMalformedInvoiceList = errors.New("malformed invoice list")

// Options controls grouping and template generation.
type Options struct {
	// Date is the contract date. The zero value means today.
	Date time.Time
	// Logger receives notes about unparseable amounts. Nil means log.Default().
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

func (o Options) date() time.Time {
	if o.Date.IsZero() {
		return time.Now()
	}
	return o.Date
}

// Key returns the grouping key of a record: project, buyer and seller, each
// normalized. Tax IDs identify a party when present, names otherwise.
func Key(h model.HeaderFields) string {
	return strings.Join([]string{
		normalize(h.Project),
		normalize(firstNonEmpty(h.BuyerTaxID, h.Buyer)),
		normalize(firstNonEmpty(h.SellerTaxID, h.Seller)),
	}, "|")
}

func normalize(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// GroupID derives a stable identifier from a grouping key.
func GroupID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

// Group partitions records by Key and aggregates each partition. Groups are
// ordered by key and member invoices by source name, so the result does not
// depend on input order.
func Group(records []*model.InvoiceRecord, opts Options) ([]*model.ContractGroup, error) {
	buckets := map[string][]*model.InvoiceRecord{}
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("%w: nil record at index %d", ErrMalformedInvoiceList, i)
		}
		k := Key(rec.HeaderFields)
		buckets[k] = append(buckets[k], rec)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]*model.ContractGroup, 0, len(keys))
	for _, k := range keys {
		members := buckets[k]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Source < members[j].Source
		})
		groups = append(groups, aggregate(k, members, opts.logger()))
	}
	return groups, nil
}

func aggregate(key string, members []*model.InvoiceRecord, logger *log.Logger) *model.ContractGroup {
	g := &model.ContractGroup{
		ID:       GroupID(key),
		Key:      key,
		Invoices: make([]string, 0, len(members)),
		Items:    []model.LineItem{},
	}

	totalAmount := decimal.Zero
	totalTax := decimal.Zero

	for _, rec := range members {
		g.Invoices = append(g.Invoices, rec.Source)
		fillIdentity(g, rec.HeaderFields)

		for _, it := range rec.Items {
			if model.IsSummaryName(it.Name) {
				continue
			}
			amt, err := amount.ParseCurrency(it.Amount)
			if err != nil {
				logger.Printf("[Contract] %s: item %q amount %q counted as 0: %v", rec.Source, it.Name, it.Amount, err)
				amt = decimal.Zero
			}
			totalAmount = totalAmount.Add(amt)

			if strings.TrimSpace(it.Tax) != "" {
				tax, err := amount.ParseCurrency(it.Tax)
				if err != nil {
					logger.Printf("[Contract] %s: item %q tax %q counted as 0: %v", rec.Source, it.Name, it.Tax, err)
					tax = decimal.Zero
				}
				totalTax = totalTax.Add(tax)
				g.Items = append(g.Items, it)
				continue
			}

			rate, err := amount.ParseRate(it.TaxRate)
			if err != nil {
				logger.Printf("[Contract] %s: item %q has no usable tax or rate", rec.Source, it.Name)
			} else {
				tax := amt.Mul(rate).Round(2)
				it.Tax = amount.Format2(tax)
				totalTax = totalTax.Add(tax)
			}
			g.Items = append(g.Items, it)
		}
	}

	g.TotalAmount = amount.Format2(totalAmount)
	g.TotalTax = amount.Format2(totalTax)
	g.TotalWithTax = amount.Format2(totalAmount.Add(totalTax))
	return g
}

// fillIdentity copies header fields the group does not have yet.
func fillIdentity(g *model.ContractGroup, h model.HeaderFields) {
	set := func(dst *string, v string) {
		if *dst == "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&g.Project, h.Project)
	set(&g.ProjectAddress, h.ProjectAddress)
	set(&g.Buyer, h.Buyer)
	set(&g.BuyerTaxID, h.BuyerTaxID)
	set(&g.BuyerBank, h.BuyerBank)
	set(&g.BuyerBankAccount, h.BuyerBankAccount)
	set(&g.Seller, h.Seller)
	set(&g.SellerTaxID, h.SellerTaxID)
	set(&g.SellerBank, h.SellerBank)
	set(&g.SellerBankAccount, h.SellerBankAccount)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
