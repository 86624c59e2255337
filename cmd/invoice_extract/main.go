package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/a3tai/mcp-invoice-contract/internal/contract"
	"github.com/a3tai/mcp-invoice-contract/internal/export"
	"github.com/a3tai/mcp-invoice-contract/internal/invoice"
	"github.com/a3tai/mcp-invoice-contract/internal/layout"
	"github.com/a3tai/mcp-invoice-contract/internal/model"
	"github.com/a3tai/mcp-invoice-contract/internal/pdf"
)

// options holds the parsed command line
type options struct {
	format       string
	xlsx         string
	diagnostic   bool
	contractDate string
	wordGap      float64
	help         bool
	inputs       []string
}

// ExtractionResult is the complete output of one run
type ExtractionResult struct {
	Records   []*model.InvoiceRecord `json:"records"`
	Contracts []ContractOutput       `json:"contracts"`
	Failures  []pdf.FileFailure      `json:"failures,omitempty"`
}

// ContractOutput pairs a group with its template data
type ContractOutput struct {
	FileName string                `json:"fileName"`
	Group    *model.ContractGroup  `json:"group"`
	Template contract.TemplateData `json:"template"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		printUsage(stderr)
		return 2
	}
	if opts.help {
		printHelp(stdout)
		return 0
	}

	result, err := extract(opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.xlsx != "" {
		exporter := export.NewExporter(contractOptions(opts, stderr))
		groups := make([]*model.ContractGroup, 0, len(result.Contracts))
		for _, c := range result.Contracts {
			groups = append(groups, c.Group)
		}
		if err := exporter.WriteFile(opts.xlsx, groups); err != nil {
			fmt.Fprintf(stderr, "Error writing workbook: %v\n", err)
			return 1
		}
	}

	if err := outputResults(stdout, opts.format, result); err != nil {
		fmt.Fprintf(stderr, "Error outputting results: %v\n", err)
		return 1
	}
	if len(result.Records) == 0 {
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("invoice_extract", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.format, "format", "text", "Output format: text, json")
	fs.StringVar(&opts.xlsx, "xlsx", "", "Also write the contracts to this workbook")
	fs.BoolVar(&opts.diagnostic, "diagnostic", false, "Log layout decisions to stderr")
	fs.StringVar(&opts.contractDate, "contractdate", "", "Date printed on contracts (yyyy-mm-dd, default today)")
	fs.Float64Var(&opts.wordGap, "word-gap", pdf.DefaultWordGap, "Widest gap in points between glyphs of one word")
	fs.BoolVarP(&opts.help, "help", "h", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.help {
		return opts, nil
	}
	if opts.format != "text" && opts.format != "json" {
		return nil, fmt.Errorf("unsupported output format: %s", opts.format)
	}
	if opts.contractDate != "" {
		if _, err := time.ParseInLocation("2006-01-02", opts.contractDate, time.Local); err != nil {
			return nil, fmt.Errorf("invalid contract date %q", opts.contractDate)
		}
	}
	opts.inputs = fs.Args()
	if len(opts.inputs) == 0 {
		return nil, fmt.Errorf("at least one PDF file or directory is required")
	}
	return opts, nil
}

func contractOptions(opts *options, stderr io.Writer) contract.Options {
	// parseArgs has already rejected malformed dates; empty means today
	date, _ := time.ParseInLocation("2006-01-02", opts.contractDate, time.Local)
	return contract.Options{Date: date, Logger: log.New(stderr, "", 0)}
}

// expandInputs replaces directories by the PDFs below them
func expandInputs(inputs []string) ([]string, error) {
	search := pdf.NewSearch(0)
	var paths []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("file not found: %s", in)
		}
		if !info.IsDir() {
			paths = append(paths, in)
			continue
		}
		files, err := search.FindPDFsInDirectoryLimited(in, 0)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}
	return paths, nil
}

func extract(opts *options, stderr io.Writer) (*ExtractionResult, error) {
	paths, err := expandInputs(opts.inputs)
	if err != nil {
		return nil, err
	}

	logger := log.New(stderr, "", 0)
	cfg := layout.DefaultConfig()
	cfg.Debug = opts.diagnostic
	reader := pdf.NewTokenReader(0, opts.wordGap, logger, opts.diagnostic)
	engine := invoice.NewEngine(cfg, logger)

	result := &ExtractionResult{Records: []*model.InvoiceRecord{}, Contracts: []ContractOutput{}}
	for _, path := range paths {
		pages, err := reader.ReadTokens(path)
		if err == nil {
			var rec *model.InvoiceRecord
			if rec, err = engine.Extract(path, pages); err == nil {
				result.Records = append(result.Records, rec)
				continue
			}
		}
		result.Failures = append(result.Failures, pdf.FileFailure{
			Path:  path,
			Type:  invoice.TypeOf(err).String(),
			Error: err.Error(),
		})
	}

	copts := contractOptions(opts, stderr)
	groups, err := engine.Group(result.Records, copts)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		result.Contracts = append(result.Contracts, ContractOutput{
			FileName: contract.FileName(g),
			Group:    g,
			Template: contract.BuildTemplateData(g, copts),
		})
	}
	return result, nil
}

func outputResults(w io.Writer, format string, result *ExtractionResult) error {
	switch format {
	case "json":
		return outputJSON(w, result)
	case "text":
		return outputText(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputJSON(w io.Writer, result *ExtractionResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputText(w io.Writer, result *ExtractionResult) error {
	for _, f := range result.Failures {
		fmt.Fprintf(w, "❌ %s: %s\n", f.Path, f.Error)
	}
	if len(result.Records) == 0 {
		fmt.Fprintln(w, "⚠️  No invoices extracted")
		return nil
	}

	for _, rec := range result.Records {
		fmt.Fprintf(w, "📄 %s\n", rec.Source)
		printField(w, "发票号码", rec.InvoiceNumber)
		printField(w, "开票日期", rec.Date)
		printField(w, "购买方", rec.Buyer)
		printField(w, "销售方", rec.Seller)
		printField(w, "工程名称", rec.Project)
		printField(w, "价税合计", rec.Amount)
		fmt.Fprintf(w, "    Items: %d (strategy %s)\n", len(rec.Items), rec.Strategy)
		for _, warning := range rec.Warnings {
			fmt.Fprintf(w, "    ⚠️  %s\n", warning)
		}
		if len(rec.Items) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, rec.ItemsTable)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "📋 %d contract(s)\n", len(result.Contracts))
	for i, c := range result.Contracts {
		fmt.Fprintf(w, "[%d] %s\n", i+1, c.FileName)
		fmt.Fprintf(w, "    No: %s\n", c.Template.ContractNo)
		fmt.Fprintf(w, "    Invoices: %d, Items: %d\n", len(c.Group.Invoices), len(c.Group.Items))
		fmt.Fprintf(w, "    Total: %s + %s = %s\n", c.Template.TotalAmountFormatted, c.Template.TotalTaxFormatted, c.Template.TotalWithTaxFormatted)
		fmt.Fprintf(w, "    大写: %s\n", c.Template.TotalWithTaxInWords)
	}
	return nil
}

func printField(w io.Writer, label, value string) {
	if value != "" {
		fmt.Fprintf(w, "    %s: %s\n", label, value)
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Invoice Extract - Extract VAT invoices and build contract data")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Reads the positioned text of each invoice PDF, rebuilds the goods table,")
	fmt.Fprintln(w, "extracts header fields and groups the invoices into contracts.")
	fmt.Fprintln(w)
	printUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprintln(w, "  --format         Output format: text (default), json")
	fmt.Fprintln(w, "  --xlsx           Also write the contracts to this workbook")
	fmt.Fprintln(w, "  --diagnostic     Log row, column and continuation decisions to stderr")
	fmt.Fprintln(w, "  --contractdate   Date printed on contracts (yyyy-mm-dd)")
	fmt.Fprintln(w, "  --word-gap       Widest gap in points between glyphs of one word")
	fmt.Fprintln(w, "  --help           Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "  invoice_extract invoice.pdf")
	fmt.Fprintln(w, "  invoice_extract --format json invoices/")
	fmt.Fprintln(w, "  invoice_extract --xlsx contracts.xlsx --contractdate 2024-03-05 invoices/")
	fmt.Fprintln(w, "  invoice_extract --diagnostic hard-case.pdf")
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  invoice_extract [OPTIONS] <pdf|dir>...")
}
