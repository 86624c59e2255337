package contract

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/a3tai/mcp-invoice-contract/internal/amount"
	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

// DefaultTaxRate is used for firstItemTaxRate when no item carries a rate.
const DefaultTaxRate = "3%"

// TemplateData is the flat field set a contract template is rendered with.
// Every field is always present in JSON, empty or not.
type TemplateData struct {
	ContractNo        string `json:"contractNo"`
	ContractDate      string `json:"contractDate"`
	BuyerName         string `json:"buyerName"`
	BuyerTaxID        string `json:"buyerTaxID"`
	SellerName        string `json:"sellerName"`
	SellerTaxID       string `json:"sellerTaxID"`
	BuyerBank         string `json:"buyerBank"`
	BuyerBankAccount  string `json:"buyerBankAccount"`
	SellerBank        string `json:"sellerBank"`
	SellerBankAccount string `json:"sellerBankAccount"`
	ProjectName       string `json:"projectName"`
	ProjectAddress    string `json:"projectAddress"`
	TotalAmount       string `json:"totalAmount"`
	TotalTax          string `json:"totalTax"`
	TotalWithTax      string `json:"totalWithTax"`
	// Display forms of the three totals with thousands separators.
	TotalAmountFormatted  string         `json:"totalAmountFormatted"`
	TotalTaxFormatted     string         `json:"totalTaxFormatted"`
	TotalWithTaxFormatted string         `json:"totalWithTaxFormatted"`
	AmountInWords         string         `json:"amountInWords"`
	TaxInWords            string         `json:"taxInWords"`
	TotalWithTaxInWords   string         `json:"totalWithTaxInWords"`
	FirstItemTaxRate      string         `json:"firstItemTaxRate"`
	Items                 []TemplateItem `json:"items"`
}

// TemplateItem is one table row of the contract.
type TemplateItem struct {
	Index         string `json:"index"`
	Name          string `json:"name"`
	Spec          string `json:"spec"`
	Unit          string `json:"unit"`
	Quantity      string `json:"quantity"`
	Price         string `json:"price"`
	Amount        string `json:"amount"`
	TaxRate       string `json:"taxRate"`
	Tax           string `json:"tax"`
	PriceWithTax  string `json:"priceWithTax"`
	AmountWithTax string `json:"amountWithTax"`
}

// BuildTemplateData maps a group onto template fields.
func BuildTemplateData(g *model.ContractGroup, opts Options) TemplateData {
	date := opts.date()

	td := TemplateData{
		ContractNo:            contractNo(g, date.Format("20060102")),
		ContractDate:          date.Format("2006年01月02日"),
		BuyerName:             g.Buyer,
		BuyerTaxID:            g.BuyerTaxID,
		SellerName:            g.Seller,
		SellerTaxID:           g.SellerTaxID,
		BuyerBank:             g.BuyerBank,
		BuyerBankAccount:      g.BuyerBankAccount,
		SellerBank:            g.SellerBank,
		SellerBankAccount:     g.SellerBankAccount,
		ProjectName:           g.Project,
		ProjectAddress:        g.ProjectAddress,
		TotalAmount:           orZero(g.TotalAmount),
		TotalTax:              orZero(g.TotalTax),
		TotalWithTax:          orZero(g.TotalWithTax),
		TotalAmountFormatted:  thousands(g.TotalAmount),
		TotalTaxFormatted:     thousands(g.TotalTax),
		TotalWithTaxFormatted: thousands(g.TotalWithTax),
		AmountInWords:         amount.ToWords(orZero(g.TotalAmount)),
		TaxInWords:            amount.ToWords(orZero(g.TotalTax)),
		TotalWithTaxInWords:   amount.ToWords(orZero(g.TotalWithTax)),
		FirstItemTaxRate:      firstRate(g.Items),
		Items:                 make([]TemplateItem, 0, len(g.Items)),
	}

	for i, it := range g.Items {
		td.Items = append(td.Items, TemplateItem{
			Index:         strconv.Itoa(i + 1),
			Name:          it.Name,
			Spec:          it.Spec,
			Unit:          it.Unit,
			Quantity:      it.Quantity,
			Price:         it.Price,
			Amount:        it.Amount,
			TaxRate:       it.TaxRate,
			Tax:           it.Tax,
			PriceWithTax:  withTax(it.Price, it.TaxRate),
			AmountWithTax: withTax(it.Amount, it.TaxRate),
		})
	}
	return td
}

func firstRate(items []model.LineItem) string {
	for _, it := range items {
		if r := strings.TrimSpace(it.TaxRate); r != "" {
			return r
		}
	}
	return DefaultTaxRate
}

// withTax returns value × (1 + rate) with two decimals, or "" when either
// side does not parse.
func withTax(value, rate string) string {
	v, err := amount.ParseCurrency(value)
	if err != nil {
		return ""
	}
	r, err := amount.ParseRate(rate)
	if err != nil {
		return ""
	}
	return amount.Format2(v.Mul(decimal.NewFromInt(1).Add(r)).Round(2))
}

func contractNo(g *model.ContractGroup, day string) string {
	if p := strings.TrimSpace(g.Project); p != "" {
		return p + "-" + day
	}
	return "HT" + day + "-" + shortID(g.ID)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// thousands formats a total for display, keeping s as is when it does not parse.
func thousands(s string) string {
	d, err := amount.ParseCurrency(orZero(s))
	if err != nil {
		return s
	}
	return amount.FormatThousands(d)
}

func orZero(s string) string {
	if s == "" {
		return "0.00"
	}
	return s
}

var unsafeFileChars = strings.NewReplacer(
	`\`, "_", "/", "_", ":", "_", "*", "_", "?", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
)

// FileName returns the document name for a group's contract.
func FileName(g *model.ContractGroup) string {
	if p := strings.TrimSpace(g.Project); p != "" {
		return unsafeFileChars.Replace(p) + "-合同.docx"
	}
	return "合同-" + shortID(g.ID) + ".docx"
}
