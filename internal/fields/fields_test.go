package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

const sampleInvoice = `电子发票（增值税专用发票）
发票号码： 24312000000012345678 开票日期： 2024年01月02日
购 名称：甲建设有限公司 销 名称：乙电缆有限公司
统一社会信用代码/纳税人识别号：91310000AAAA11111X 统一社会信用代码/纳税人识别号：91320000BBBB22222Y
项目名称 规格型号 单位 数量 单价 金额 税率/征收率 税额
*电线电缆*电力电缆 YJV-3*95 米 100 50.00 5000.00 13% 650.00
合 计 ¥5000.00 ¥650.00
价税合计（大写） ⓧ伍仟陆佰伍拾元整 （小写）¥5650.00
备注 工程名称：城东变电站改造工程
工程地址：上海市浦东新区某路1号
销方开户银行：中国银行上海分行; 银行账号：6222000011112222
开票人：王五`

func TestExtract(t *testing.T) {
	got := Extract(sampleInvoice)

	assert.Equal(t, model.HeaderFields{
		InvoiceNumber:     "24312000000012345678",
		Date:              "2024年01月02日",
		Buyer:             "甲建设有限公司",
		BuyerTaxID:        "91310000AAAA11111X",
		Seller:            "乙电缆有限公司",
		SellerTaxID:       "91320000BBBB22222Y",
		SellerBank:        "中国银行上海分行",
		SellerBankAccount: "6222000011112222",
		Amount:            "¥5650.00",
		AmountInWords:     "伍仟陆佰伍拾元整",
		Project:           "城东变电站改造工程",
		ProjectAddress:    "上海市浦东新区某路1号",
		Issuer:            "王五",
	}, got)
}

func TestExtractEmpty(t *testing.T) {
	assert.Equal(t, model.HeaderFields{}, Extract(""))
	assert.Equal(t, model.HeaderFields{}, Extract("无关文本\n第二行"))
}

func TestExtractFallbackPatterns(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, h model.HeaderFields)
	}{
		{
			name: "invoice number without date label",
			text: "发票号码：12345678",
			check: func(t *testing.T, h model.HeaderFields) {
				assert.Equal(t, "12345678", h.InvoiceNumber)
			},
		},
		{
			name: "date far from buyer block",
			text: "开票日期：2023年12月31日\n其他\n购 名称：甲",
			check: func(t *testing.T, h model.HeaderFields) {
				assert.Equal(t, "2023年12月31日", h.Date)
			},
		},
		{
			name: "party names with long labels",
			text: "购买方名称：甲公司\n销售方名称：乙公司",
			check: func(t *testing.T, h model.HeaderFields) {
				assert.Equal(t, "甲公司", h.Buyer)
				assert.Equal(t, "乙公司", h.Seller)
			},
		},
		{
			name: "tax ids by party prefix",
			text: "购买方纳税人识别号：AAA111\n销售方纳税人识别号：BBB222",
			check: func(t *testing.T, h model.HeaderFields) {
				assert.Equal(t, "AAA111", h.BuyerTaxID)
				assert.Equal(t, "BBB222", h.SellerTaxID)
			},
		},
		{
			name: "project name label with colon",
			text: "项目名称 规格型号 单位\n项目名称：二号楼配电",
			check: func(t *testing.T, h model.HeaderFields) {
				assert.Equal(t, "二号楼配电", h.Project)
			},
		},
		{
			name: "table header alone is not a project",
			text: "项目名称 规格型号 单位 数量",
			check: func(t *testing.T, h model.HeaderFields) {
				assert.Empty(t, h.Project)
			},
		},
		{
			name: "bank fields on separate lines",
			text: "购方开户银行：工商银行\n购方银行账号：1001",
			check: func(t *testing.T, h model.HeaderFields) {
				assert.Equal(t, "工商银行", h.BuyerBank)
				assert.Equal(t, "1001", h.BuyerBankAccount)
				assert.Empty(t, h.SellerBank)
			},
		},
		{
			name: "full width parentheses and yen sign",
			text: "(小写)：￥ 1,200.50",
			check: func(t *testing.T, h model.HeaderFields) {
				assert.Equal(t, "￥ 1,200.50", h.Amount)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Extract(tt.text))
		})
	}
}

func TestCleanValue(t *testing.T) {
	assert.Equal(t, "甲公司", cleanValue(" ：甲公司； "))
	assert.Equal(t, "壹元整", cleanValue("ⓧ壹元整"))
	assert.Empty(t, cleanValue(" : "))
}
