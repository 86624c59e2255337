// Package export writes contract groups to an Excel workbook.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/mcp-invoice-contract/internal/contract"
	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

// Sheet names.
const (
	SummarySheet = "合同汇总"
	ItemsSheet   = "合同明细"
)

var summaryHeaders = []string{
	"合同编号", "合同日期", "项目名称", "工程地址", "购买方", "购买方税号",
	"销售方", "销售方税号", "发票", "不含税金额", "税额", "价税合计", "价税合计大写", "合同文件",
}

var itemHeaders = []string{
	"合同编号", "序号", "项目名称", "规格型号", "单位", "数量", "单价",
	"金额", "税率", "税额", "含税单价", "含税金额",
}

// Exporter builds workbooks from contract groups.
type Exporter struct {
	opts contract.Options
}

// NewExporter returns an exporter using opts for contract numbers and dates.
func NewExporter(opts contract.Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export returns a workbook with one summary row per group and one item row
// per group item. The caller owns the returned file and must close it.
func (e *Exporter) Export(groups []*model.ContractGroup) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := e.fill(f, groups); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// WriteFile exports groups and saves the workbook to path.
func (e *Exporter) WriteFile(path string, groups []*model.ContractGroup) error {
	f, err := e.Export(groups)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func (e *Exporter) fill(f *excelize.File, groups []*model.ContractGroup) error {
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ItemsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, SummarySheet, 1, toCells(summaryHeaders)); err != nil {
		return err
	}
	if err := writeRow(f, ItemsSheet, 1, toCells(itemHeaders)); err != nil {
		return err
	}
	for _, sheet := range []string{SummarySheet, ItemsSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %s: %w", sheet, err)
		}
	}

	itemRow := 2
	for i, g := range groups {
		td := contract.BuildTemplateData(g, e.opts)

		summary := []interface{}{
			td.ContractNo, td.ContractDate, td.ProjectName, td.ProjectAddress,
			td.BuyerName, td.BuyerTaxID, td.SellerName, td.SellerTaxID,
			strings.Join(g.Invoices, "\n"),
			number(td.TotalAmount), number(td.TotalTax), number(td.TotalWithTax),
			td.TotalWithTaxInWords, contract.FileName(g),
		}
		if err := writeRow(f, SummarySheet, i+2, summary); err != nil {
			return err
		}

		for _, it := range td.Items {
			row := []interface{}{
				td.ContractNo, it.Index, it.Name, it.Spec, it.Unit, number(it.Quantity),
				number(it.Price), number(it.Amount), it.TaxRate, number(it.Tax),
				number(it.PriceWithTax), number(it.AmountWithTax),
			}
			if err := writeRow(f, ItemsSheet, itemRow, row); err != nil {
				return err
			}
			itemRow++
		}
	}

	widths := []struct {
		sheet, from, to string
		width           float64
	}{
		{SummarySheet, "A", "B", 22},
		{SummarySheet, "C", "H", 28},
		{SummarySheet, "I", "I", 30},
		{SummarySheet, "J", "L", 15},
		{SummarySheet, "M", "N", 30},
		{ItemsSheet, "A", "A", 22},
		{ItemsSheet, "C", "D", 30},
		{ItemsSheet, "E", "L", 12},
	}
	for _, w := range widths {
		if err := f.SetColWidth(w.sheet, w.from, w.to, w.width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// number writes parseable amounts as numeric cells and leaves other text as is.
func number(s string) interface{} {
	if s == "" {
		return ""
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return d.InexactFloat64()
}
