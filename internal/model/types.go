package model

import "strings"

// LineItem is one logical row of the invoice goods table. Values are kept as
// the raw strings printed on the invoice; only the aggregator parses them.
type LineItem struct {
	Name     string `json:"name"`
	Spec     string `json:"spec"`
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Amount   string `json:"amount"`
	TaxRate  string `json:"taxRate"`
	Tax      string `json:"tax"`
}

// HasDetail reports whether the item carries anything besides its name.
func (li LineItem) HasDetail() bool {
	return li.Spec != "" || li.Unit != "" || li.Quantity != "" || li.Price != "" || li.Amount != ""
}

// HeaderFields are the scalar values printed around the goods table.
type HeaderFields struct {
	InvoiceNumber     string `json:"invoiceNumber"`
	Date              string `json:"date"`
	Buyer             string `json:"buyer"`
	BuyerTaxID        string `json:"buyerTaxID"`
	BuyerBank         string `json:"buyerBank"`
	BuyerBankAccount  string `json:"buyerBankAccount"`
	Seller            string `json:"seller"`
	SellerTaxID       string `json:"sellerTaxID"`
	SellerBank        string `json:"sellerBank"`
	SellerBankAccount string `json:"sellerBankAccount"`
	Amount            string `json:"amount"`
	AmountInWords     string `json:"amountInWords"`
	Project           string `json:"project"`
	ProjectAddress    string `json:"projectAddress"`
	Issuer            string `json:"issuer"`
}

// Item extraction strategies recorded on an InvoiceRecord.
const (
	StrategyHeader   = "header"
	StrategyFallback = "fallback"
	StrategyNone     = "none"
)

// InvoiceRecord is everything extracted from one invoice PDF.
type InvoiceRecord struct {
	Source string `json:"source"`
	HeaderFields
	Items      []LineItem `json:"items"`
	ItemsTable string     `json:"itemsTable"`
	FullText   string     `json:"fullText"`
	Pages      int        `json:"pages"`
	Strategy   string     `json:"strategy"`
	Warnings   []string   `json:"warnings,omitempty"`
}

var summaryMarkers = []string{"合计", "价税合计", "不含税金额", "价税合"}

// IsSummaryName reports whether an item name is really a totals line.
func IsSummaryName(name string) bool {
	compact := strings.Join(strings.Fields(name), "")
	if compact == "" {
		return false
	}
	for _, marker := range summaryMarkers {
		if strings.Contains(compact, marker) {
			return true
		}
	}
	return false
}

// ItemsTableHeader is the first line of the tab separated items table.
const ItemsTableHeader = "项目名称\t规格型号\t单位\t数量\t单价\t金额\t税率\t税额"

// ItemsTable renders items as tab separated text, one line per item.
func ItemsTable(items []LineItem) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(ItemsTableHeader)
	for _, it := range items {
		b.WriteByte('\n')
		b.WriteString(strings.Join([]string{
			it.Name, it.Spec, it.Unit, it.Quantity, it.Price, it.Amount, it.TaxRate, it.Tax,
		}, "\t"))
	}
	return b.String()
}

// ContractGroup is a set of invoices for the same project, buyer and seller.
// Totals are two decimal strings and TotalWithTax = TotalAmount + TotalTax.
type ContractGroup struct {
	ID                string     `json:"id"`
	Key               string     `json:"key"`
	Project           string     `json:"project"`
	ProjectAddress    string     `json:"projectAddress"`
	Buyer             string     `json:"buyer"`
	BuyerTaxID        string     `json:"buyerTaxID"`
	BuyerBank         string     `json:"buyerBank"`
	BuyerBankAccount  string     `json:"buyerBankAccount"`
	Seller            string     `json:"seller"`
	SellerTaxID       string     `json:"sellerTaxID"`
	SellerBank        string     `json:"sellerBank"`
	SellerBankAccount string     `json:"sellerBankAccount"`
	Invoices          []string   `json:"invoices"`
	Items             []LineItem `json:"items"`
	TotalAmount       string     `json:"totalAmount"`
	TotalTax          string     `json:"totalTax"`
	TotalWithTax      string     `json:"totalWithTax"`
}
