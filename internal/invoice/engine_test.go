package invoice

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-invoice-contract/internal/contract"
	"github.com/a3tai/mcp-invoice-contract/internal/layout"
	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

func tk(text string, x, y, w float64) layout.Token {
	return layout.Token{Text: text, X: x, Y: y, Width: w, Height: 9}
}

func goodsTable(top float64, name, spec, amount, tax string) []layout.Token {
	return []layout.Token{
		tk("项目名称", 40, top, 40), tk("规格型号", 120, top, 40), tk("单位", 190, top, 20),
		tk("数量", 260, top, 20), tk("单价", 320, top, 20), tk("金额", 400, top, 20),
		tk("税率/征收率", 470, top, 50), tk("税额", 550, top, 20),

		tk(name, 20, top+20, 75), tk(spec, 125, top+20, 40), tk("米", 195, top+20, 10),
		tk("1", 262, top+20, 20), tk(amount, 330, top+20, 30), tk(amount, 405, top+20, 40),
		tk("13%", 480, top+20, 20), tk(tax, 555, top+20, 30),

		tk("合计", 40, top+60, 20), tk("¥"+amount, 405, top+60, 45), tk("¥"+tax, 555, top+60, 45),
	}
}

func invoicePage() []layout.Token {
	tokens := []layout.Token{
		tk("发票号码：", 380, 40, 40), tk("24312000000012345678", 425, 40, 90),
		tk("开票日期：", 380, 55, 40), tk("2024年01月02日", 425, 55, 90),
		tk("购", 20, 80, 10), tk("名称：甲建设有限公司", 35, 80, 120),
		tk("销", 300, 80, 10), tk("名称：乙电缆有限公司", 315, 80, 120),
	}
	tokens = append(tokens, goodsTable(200, "*电线电缆*电力电缆", "YJV-3*95", "5000.00", "650.00")...)
	tokens = append(tokens,
		tk("价税合计（大写）", 20, 300, 80), tk("伍仟陆佰伍拾元整", 150, 300, 100),
		tk("（小写）¥5650.00", 400, 300, 80),
		tk("工程名称：城东变电站", 20, 320, 120),
		tk("开票人：王五", 20, 360, 60),
	)
	return tokens
}

func quietEngine() *Engine {
	return NewEngine(layout.DefaultConfig(), log.New(&bytes.Buffer{}, "", 0))
}

func TestEngineExtract(t *testing.T) {
	rec, err := quietEngine().Extract("a.pdf", [][]layout.Token{invoicePage()})
	require.NoError(t, err)

	assert.Equal(t, "a.pdf", rec.Source)
	assert.Equal(t, 1, rec.Pages)
	assert.Equal(t, model.StrategyHeader, rec.Strategy)
	assert.Empty(t, rec.Warnings)

	assert.Equal(t, "24312000000012345678", rec.InvoiceNumber)
	assert.Equal(t, "2024年01月02日", rec.Date)
	assert.Equal(t, "甲建设有限公司", rec.Buyer)
	assert.Equal(t, "乙电缆有限公司", rec.Seller)
	assert.Equal(t, "¥5650.00", rec.Amount)
	assert.Equal(t, "伍仟陆佰伍拾元整", rec.AmountInWords)
	assert.Equal(t, "城东变电站", rec.Project)
	assert.Equal(t, "王五", rec.Issuer)

	require.Len(t, rec.Items, 1)
	assert.Equal(t, model.LineItem{
		Name: "*电线电缆*电力电缆", Spec: "YJV-3*95", Unit: "米", Quantity: "1",
		Price: "5000.00", Amount: "5000.00", TaxRate: "13%", Tax: "650.00",
	}, rec.Items[0])
	assert.Equal(t, model.ItemsTableHeader+"\n*电线电缆*电力电缆\tYJV-3*95\t米\t1\t5000.00\t5000.00\t13%\t650.00", rec.ItemsTable)
	assert.Contains(t, rec.FullText, "发票号码： 24312000000012345678")
}

func TestEngineExtractMultiPage(t *testing.T) {
	second := goodsTable(100, "*电线电缆*控制电缆", "KVV-4*2.5", "2000.00", "260.00")
	rec, err := quietEngine().Extract("a.pdf", [][]layout.Token{invoicePage(), nil, second})
	require.NoError(t, err)

	assert.Equal(t, 3, rec.Pages)
	require.Len(t, rec.Items, 2)
	assert.Equal(t, "*电线电缆*电力电缆", rec.Items[0].Name)
	assert.Equal(t, "*电线电缆*控制电缆", rec.Items[1].Name)
}

func TestEngineExtractNoTable(t *testing.T) {
	rec, err := quietEngine().Extract("memo.pdf", [][]layout.Token{{tk("发票号码：123", 0, 0, 50)}})
	require.NoError(t, err)
	assert.Equal(t, model.StrategyNone, rec.Strategy)
	assert.Equal(t, "123", rec.InvoiceNumber)
	assert.NotNil(t, rec.Items)
	assert.Empty(t, rec.Items)
	assert.Empty(t, rec.ItemsTable)
	assert.Equal(t, []string{"no goods table found"}, rec.Warnings)
}

func TestEngineExtractNoTokens(t *testing.T) {
	for _, pages := range [][][]layout.Token{nil, {}, {nil, {}}} {
		rec, err := quietEngine().Extract("blank.pdf", pages)
		assert.Nil(t, rec)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoTokens))
		assert.Equal(t, ErrorTypeNoTokens, TypeOf(err))
		assert.Contains(t, err.Error(), "[NO_TOKENS] blank.pdf")
	}
}

func TestEngineGroup(t *testing.T) {
	e := quietEngine()
	a, err := e.Extract("a.pdf", [][]layout.Token{invoicePage()})
	require.NoError(t, err)
	b, err := e.Extract("b.pdf", [][]layout.Token{invoicePage()})
	require.NoError(t, err)

	groups, err := e.Group([]*model.InvoiceRecord{b, a}, contract.Options{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, groups[0].Invoices)
	assert.Equal(t, "10000.00", groups[0].TotalAmount)
	assert.Equal(t, "1300.00", groups[0].TotalTax)
	assert.Equal(t, "11300.00", groups[0].TotalWithTax)

	_, err = e.Group([]*model.InvoiceRecord{a, nil}, contract.Options{})
	assert.ErrorIs(t, err, ErrMalformedInvoiceList)
	assert.Equal(t, ErrorTypeMalformedInput, TypeOf(err))
}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "PDF_READ", ErrorTypePDFRead.String())
	assert.Equal(t, "VALIDATION", ErrorTypeValidation.String())
	assert.Equal(t, "UNKNOWN", ErrorType(99).String())
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
}
