package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	InvoiceExtractFileDescription = `Extract header fields and goods line items from one VAT invoice PDF.

**When to use:** Need the structured content of a single invoice: invoice number, date, buyer and seller identity, bank details, totals and every line of the goods table.

**Why it's useful:** Rebuilds the goods table from positioned text, so wrapped names, split specifications and voltage ratings printed on their own row are merged back into the item they belong to.

**Examples:**
• Check one invoice: "Extract invoices/2024-03/dzfp_0012.pdf and list its items"
• Verify totals: "Read invoice.pdf and compare the amount with the tax-inclusive total"

**Common workflows:**
1. Spot check: invoice_validate_file → invoice_extract_file → review warnings
2. Debugging: invoice_extract_file → inspect strategy and warnings → adjust heuristics

**Best practices:** Look at the strategy field. "fallback" means no table header was found and items were recovered from row shapes, so review them.`

	InvoiceExtractDirectoryDescription = `Extract every invoice PDF in a directory in parallel.

**When to use:** Processing a batch of invoices from one folder.

**Why it's useful:** Runs extraction on a bounded worker pool and reports unreadable files next to the records instead of failing the batch.

**Examples:**
• Monthly batch: "Extract all invoices in /data/invoices/2024-03"
• Filtered batch: "Extract invoices whose file name matches 城东"

**Common workflows:**
1. Review: invoice_extract_directory → check failures → re-run single files

**Best practices:** Use the query parameter to narrow large folders. Records are returned in path order.`

	ContractBuildDescription = `Group invoices into contracts and build the data for contract templates.

**When to use:** Need one purchase contract per project, buyer and seller from a set of invoices.

**Why it's useful:** Merges the line items of every invoice in a group, totals amount and tax with exact decimal arithmetic and spells the totals in capitalized Chinese numerals.

**Examples:**
• Build contracts: "Build contracts from the invoices in /data/invoices/2024-03"
• Selected files: "Build a contract from a.pdf and b.pdf"

**Common workflows:**
1. Contract drafting: contract_build → review template data → fill contract template

**Best practices:** Pass explicit paths when a folder mixes unrelated invoices. Group ids are stable across runs.`

	ContractExportXLSXDescription = `Build contracts and write them to an Excel workbook.

**When to use:** Need a spreadsheet of contracts and their items for review or import.

**Why it's useful:** Writes a summary sheet with one row per contract and a detail sheet with every item, with numbers stored as numbers.

**Examples:**
• Export: "Export contracts from /data/invoices/2024-03 to /data/out/contracts.xlsx"

**Best practices:** The output path must be inside the configured directory.`

	AmountToWordsDescription = `Convert an amount to capitalized Chinese numerals as printed on invoices and contracts.

**When to use:** Need the 大写 form of an amount, for example 309.00 → 叁佰零玖元整.

**Examples:**
• "Convert 1234.56 to words" → 壹仟贰佰叁拾肆元伍角陆分

**Best practices:** Fractions beyond the fen are dropped. Currency symbols and thousands separators are accepted.`

	InvoiceValidateFileDescription = `Verify that a file is a readable PDF before extracting it.

**When to use:** Before extraction in automated workflows or when handling uploads.

**Why it's useful:** Identifies corrupted or non-PDF files early and reports the page count. Platform issued e-invoices also report their producer from the document information dictionary.

**Examples:**
• "Validate upload.pdf before extracting it"

**Best practices:** Run this first on files from unknown sources.`

	InvoiceSearchDirectoryDescription = `Find invoice PDFs in a directory with fuzzy file name matching.

**When to use:** Locating invoices by buyer, project or number in the file name.

**Examples:**
• "Find PDFs in /data/invoices matching 城东 变电站"

**Best practices:** Leave the directory empty to search the configured directory.`

	InvoiceServerInfoDescription = `Get server capabilities, configuration and the current directory contents.

**When to use:** Starting work with the server or troubleshooting.

**Why it's useful:** Shows the configured directory, limits, worker count, record cache usage and the available tools with guidance on the order to use them.

**Best practices:** Call this first in a new session.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"invoice_extract_file":      InvoiceExtractFileDescription,
	"invoice_extract_directory": InvoiceExtractDirectoryDescription,
	"contract_build":            ContractBuildDescription,
	"contract_export_xlsx":      ContractExportXLSXDescription,
	"amount_to_words":           AmountToWordsDescription,
	"invoice_validate_file":     InvoiceValidateFileDescription,
	"invoice_search_directory":  InvoiceSearchDirectoryDescription,
	"invoice_server_info":       InvoiceServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns all tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
