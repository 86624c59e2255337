package pdf

import (
	"github.com/a3tai/mcp-invoice-contract/internal/contract"
	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// FileFailure records a file that produced no record.
type FileFailure struct {
	Path  string `json:"path"`
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Request Types

// InvoiceExtractFileRequest represents a request to extract one invoice
type InvoiceExtractFileRequest struct {
	Path string `json:"path"`
}

// InvoiceExtractDirectoryRequest represents a request to extract every
// invoice in a directory
type InvoiceExtractDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// InvoiceValidateFileRequest represents a request to validate a PDF file
type InvoiceValidateFileRequest struct {
	Path string `json:"path"`
}

// InvoiceSearchDirectoryRequest represents a request to search for PDF files in a directory
type InvoiceSearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// ContractBuildRequest selects invoices either by explicit paths or by
// directory and optional file name query.
type ContractBuildRequest struct {
	Directory string   `json:"directory"`
	Query     string   `json:"query"`
	Paths     []string `json:"paths"`
}

// ContractExportRequest builds contracts and writes them to a workbook.
type ContractExportRequest struct {
	ContractBuildRequest
	Output string `json:"output"`
}

// InvoiceServerInfoRequest represents a request to get server information and capabilities
type InvoiceServerInfoRequest struct{}

// Response Types

// InvoiceExtractDirectoryResult holds the records of a directory, sorted by
// path, and the files that failed.
type InvoiceExtractDirectoryResult struct {
	Directory  string                 `json:"directory"`
	Records    []*model.InvoiceRecord `json:"records"`
	Failures   []FileFailure          `json:"failures,omitempty"`
	TotalCount int                    `json:"total_count"`
}

// InvoiceValidateFileResult represents the result of a PDF validation operation
type InvoiceValidateFileResult struct {
	Valid   bool          `json:"valid"`
	Path    string        `json:"path"`
	Pages   int           `json:"pages,omitempty"`
	Message string        `json:"message,omitempty"`
	Info    *DocumentInfo `json:"info,omitempty"`
}

// InvoiceSearchDirectoryResult represents the result of a PDF search operation
type InvoiceSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// Contract is one contract group with its template data.
type Contract struct {
	Group    *model.ContractGroup  `json:"group"`
	Template contract.TemplateData `json:"template"`
	FileName string                `json:"file_name"`
}

// ContractBuildResult represents the result of grouping invoices into contracts
type ContractBuildResult struct {
	Contracts    []Contract    `json:"contracts"`
	InvoiceCount int           `json:"invoice_count"`
	Failures     []FileFailure `json:"failures,omitempty"`
}

// ContractExportResult represents the result of a workbook export
type ContractExportResult struct {
	Output        string        `json:"output"`
	ContractCount int           `json:"contract_count"`
	ItemCount     int           `json:"item_count"`
	Failures      []FileFailure `json:"failures,omitempty"`
}

// InvoiceServerInfoResult represents server information and usage guidance
type InvoiceServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	Workers           int        `json:"workers"`
	Cache             CacheStats `json:"cache"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
