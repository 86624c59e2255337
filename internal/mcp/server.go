package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-invoice-contract/internal/config"
	"github.com/a3tai/mcp-invoice-contract/internal/descriptions"
	"github.com/a3tai/mcp-invoice-contract/internal/model"
	"github.com/a3tai/mcp-invoice-contract/internal/pdf"
)

const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	service    *pdf.Service
	serverInfo *pdf.InvoiceServerInfo
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		service:    service,
		serverInfo: pdf.NewInvoiceServerInfo(service),
		mcpServer:  mcpServer,
	}
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	pathArg := mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the invoice PDF, absolute or relative to the configured directory"),
	)
	directoryArg := mcp.WithString("directory",
		mcp.Description("Directory to scan (uses the configured directory if empty)"),
	)
	queryArg := mcp.WithString("query",
		mcp.Description("Optional fuzzy file name filter"),
	)
	pathsArg := mcp.WithArray("paths",
		mcp.Description("Explicit invoice PDFs; when given, directory and query are ignored"),
		mcp.Items(map[string]any{"type": "string"}),
	)

	s.mcpServer.AddTool(mcp.NewTool("invoice_extract_file",
		mcp.WithDescription(descriptions.GetToolDescription("invoice_extract_file")),
		pathArg,
	), s.handleInvoiceExtractFile)

	s.mcpServer.AddTool(mcp.NewTool("invoice_extract_directory",
		mcp.WithDescription(descriptions.GetToolDescription("invoice_extract_directory")),
		directoryArg,
		queryArg,
	), s.handleInvoiceExtractDirectory)

	s.mcpServer.AddTool(mcp.NewTool("contract_build",
		mcp.WithDescription(descriptions.GetToolDescription("contract_build")),
		directoryArg,
		queryArg,
		pathsArg,
	), s.handleContractBuild)

	s.mcpServer.AddTool(mcp.NewTool("contract_export_xlsx",
		mcp.WithDescription(descriptions.GetToolDescription("contract_export_xlsx")),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Workbook path inside the configured directory"),
		),
		directoryArg,
		queryArg,
		pathsArg,
	), s.handleContractExportXLSX)

	s.mcpServer.AddTool(mcp.NewTool("amount_to_words",
		mcp.WithDescription(descriptions.GetToolDescription("amount_to_words")),
		mcp.WithString("amount",
			mcp.Required(),
			mcp.Description("Decimal amount, for example 309.00 or ¥1,234.56"),
		),
	), s.handleAmountToWords)

	s.mcpServer.AddTool(mcp.NewTool("invoice_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("invoice_validate_file")),
		pathArg,
	), s.handleInvoiceValidateFile)

	s.mcpServer.AddTool(mcp.NewTool("invoice_search_directory",
		mcp.WithDescription(descriptions.GetToolDescription("invoice_search_directory")),
		directoryArg,
		queryArg,
	), s.handleInvoiceSearchDirectory)

	s.mcpServer.AddTool(mcp.NewTool("invoice_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("invoice_server_info")),
	), s.handleInvoiceServerInfo)
}

// Handler functions
func (s *Server) handleInvoiceExtractFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rec, err := s.service.ExtractFile(pdf.InvoiceExtractFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(formatRecordSummary(rec), rec)
}

func (s *Server) handleInvoiceExtractDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	directory, query := stringArg(request, "directory"), stringArg(request, "query")

	result, err := s.service.ExtractDirectory(ctx, pdf.InvoiceExtractDirectoryRequest{
		Directory: directory,
		Query:     query,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary := fmt.Sprintf("Extracted %d invoice(s) from %s", result.TotalCount, result.Directory)
	if len(result.Failures) > 0 {
		summary += fmt.Sprintf(", %d file(s) failed", len(result.Failures))
	}
	return jsonResult(summary, result)
}

func (s *Server) handleContractBuild(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := buildRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.BuildContracts(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary := fmt.Sprintf("Built %d contract(s) from %d invoice(s)", len(result.Contracts), result.InvoiceCount)
	for i, c := range result.Contracts {
		summary += fmt.Sprintf("\n%d. %s: %d invoice(s), %d item(s), total %s",
			i+1, c.FileName, len(c.Group.Invoices), len(c.Group.Items), c.Template.TotalWithTax)
	}
	return jsonResult(summary, result)
}

func (s *Server) handleContractExportXLSX(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	output, err := request.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req, err := buildRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.ExportContracts(ctx, pdf.ContractExportRequest{ContractBuildRequest: req, Output: output})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Wrote %d contract(s) with %d item(s) to %s", result.ContractCount, result.ItemCount, result.Output)
	for _, f := range result.Failures {
		text += fmt.Sprintf("\nSkipped %s: %s", f.Path, f.Error)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleAmountToWords(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	amount, err := request.RequireString("amount")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	words := s.service.AmountToWords(amount)
	if words == "" {
		return mcp.NewToolResultError(fmt.Sprintf("amount %s is too large to convert", amount)), nil
	}
	return mcp.NewToolResultText(words), nil
}

func (s *Server) handleInvoiceValidateFile(_ context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.ValidateFile(pdf.InvoiceValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !result.Valid {
		return mcp.NewToolResultText(fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)), nil
	}
	text := fmt.Sprintf("PDF file %s is valid and readable (%d pages)", result.Path, result.Pages)
	if result.Info != nil && result.Info.Producer != "" {
		text += fmt.Sprintf("\nProducer: %s", result.Info.Producer)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleInvoiceSearchDirectory(_ context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	result, err := s.service.SearchDirectory(pdf.InvoiceSearchDirectoryRequest{
		Directory: stringArg(request, "directory"),
		Query:     stringArg(request, "query"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if result.TotalCount == 0 {
		text := fmt.Sprintf("No PDF files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			text += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
		return mcp.NewToolResultText(text), nil
	}
	return mcp.NewToolResultText(formatSearchResult(result)), nil
}

func (s *Server) handleInvoiceServerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.serverInfo.GetServerInfo(ctx, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatServerInfo(result)), nil
}

// stringArg returns an optional string argument or ""
func stringArg(request mcp.CallToolRequest, key string) string {
	if v, ok := request.GetArguments()[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// buildRequest reads directory, query and paths. paths may be a JSON array or
// a comma or newline separated string.
func buildRequest(request mcp.CallToolRequest) (pdf.ContractBuildRequest, error) {
	req := pdf.ContractBuildRequest{
		Directory: stringArg(request, "directory"),
		Query:     stringArg(request, "query"),
	}

	switch v := request.GetArguments()["paths"].(type) {
	case nil:
	case string:
		for _, p := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '\n' }) {
			if p = strings.TrimSpace(p); p != "" {
				req.Paths = append(req.Paths, p)
			}
		}
	case []any:
		for i, item := range v {
			p, ok := item.(string)
			if !ok {
				return req, fmt.Errorf("paths[%d] must be a string", i)
			}
			req.Paths = append(req.Paths, p)
		}
	default:
		return req, fmt.Errorf("paths must be an array of strings")
	}
	return req, nil
}

// jsonResult returns the summary line followed by v as indented JSON
func jsonResult(summary string, v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(summary + "\n\n" + string(data)), nil
}

// Formatting methods
func formatRecordSummary(rec *model.InvoiceRecord) string {
	text := fmt.Sprintf("Invoice %s", rec.Source)
	if rec.InvoiceNumber != "" {
		text += fmt.Sprintf("\nNumber: %s", rec.InvoiceNumber)
	}
	if rec.Date != "" {
		text += fmt.Sprintf("\nDate: %s", rec.Date)
	}
	text += fmt.Sprintf("\nItems: %d (strategy %s)", len(rec.Items), rec.Strategy)
	for _, w := range rec.Warnings {
		text += "\nWarning: " + w
	}
	return text
}

func formatSearchResult(result *pdf.InvoiceSearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
	}
	return text
}

func formatServerInfo(result *pdf.InvoiceServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("⚙️  Workers: %d\n", result.Workers)
	text += fmt.Sprintf("🗃️  Cached invoices: %d/%d (%d hits)\n\n", result.Cache.Size, result.Cache.Capacity, result.Cache.Hits)

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 {
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No PDF files found in default directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance
	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	switch s.config.Mode {
	case config.ModeServer:
		return s.runServerMode(ctx)
	case config.ModeStdio:
		return s.runStdioMode(ctx)
	default:
		return fmt.Errorf("unsupported mode: %s", s.config.Mode)
	}
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting invoice MCP server in stdio mode")
		log.Printf("Invoice directory: %s", s.config.InvoiceDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over SSE until ctx is cancelled
func (s *Server) runServerMode(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("server not started: %w", err)
	}

	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting invoice MCP server on %s (SSE)", addr)
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve SSE: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down SSE server: %w", err)
		}
		return nil
	}
}
