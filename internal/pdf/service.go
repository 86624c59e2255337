package pdf

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/a3tai/mcp-invoice-contract/internal/amount"
	"github.com/a3tai/mcp-invoice-contract/internal/contract"
	"github.com/a3tai/mcp-invoice-contract/internal/export"
	"github.com/a3tai/mcp-invoice-contract/internal/invoice"
	"github.com/a3tai/mcp-invoice-contract/internal/layout"
	"github.com/a3tai/mcp-invoice-contract/internal/model"
	"github.com/a3tai/mcp-invoice-contract/internal/pdf/security"
)

// ServiceConfig configures a Service.
type ServiceConfig struct {
	MaxFileSize int64
	Directory   string
	Workers     int
	// CacheSize bounds the record cache; 0 disables it
	CacheSize int
	WordGap   float64
	Layout    layout.Config
	// ContractDate fixes the contract date. The zero value means today.
	ContractDate time.Time
	Logger       *log.Logger
}

// Service handles invoice operations by orchestrating the PDF reader, the
// extraction engine and the contract builders
type Service struct {
	maxFileSize   int64
	workers       int
	contractOpts  contract.Options
	tokens        *TokenReader
	engine        *invoice.Engine
	validator     *Validator
	search        *Search
	exporter      *export.Exporter
	cache         *RecordCache
	pathValidator *security.PathValidator
	logger        *log.Logger
}

// NewService creates a new invoice service with all components
func NewService(cfg ServiceConfig) (*Service, error) {
	pathValidator, err := security.NewPathValidator(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}
	if err := cfg.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout configuration: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	opts := contract.Options{Date: cfg.ContractDate, Logger: logger}

	return &Service{
		maxFileSize:   cfg.MaxFileSize,
		workers:       workers,
		contractOpts:  opts,
		tokens:        NewTokenReader(cfg.MaxFileSize, cfg.WordGap, logger, cfg.Layout.Debug),
		engine:        invoice.NewEngine(cfg.Layout, logger),
		validator:     NewValidator(cfg.MaxFileSize),
		search:        NewSearch(cfg.MaxFileSize),
		exporter:      export.NewExporter(opts),
		cache:         NewRecordCache(cfg.CacheSize),
		pathValidator: pathValidator,
		logger:        logger,
	}, nil
}

// ExtractFile extracts one invoice
func (s *Service) ExtractFile(req InvoiceExtractFileRequest) (*model.InvoiceRecord, error) {
	path, err := s.checkPath(req.Path)
	if err != nil {
		return nil, err
	}
	return s.extractPath(path)
}

// checkPath resolves path against the configured directory and rejects
// anything outside it.
func (s *Service) checkPath(path string) (string, error) {
	resolved, err := s.pathValidator.ResolvePath(path)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.pathValidator.ValidatePath(resolved); err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return resolved, nil
}

func (s *Service) extractPath(path string) (*model.InvoiceRecord, error) {
	info, statErr := os.Stat(path)
	if statErr == nil {
		if rec, ok := s.cache.Get(path, info); ok {
			return rec, nil
		}
	}

	pages, err := s.tokens.ReadTokens(path)
	if err != nil {
		return nil, err
	}
	rec, err := s.engine.Extract(path, pages)
	if err != nil {
		return nil, err
	}
	if statErr == nil {
		s.cache.Put(path, info, rec)
	}
	return rec, nil
}

// ExtractDirectory extracts every invoice PDF in a directory using a bounded
// pool of workers. Files that fail are reported, not fatal.
func (s *Service) ExtractDirectory(ctx context.Context, req InvoiceExtractDirectoryRequest) (*InvoiceExtractDirectoryResult, error) {
	files, dir, err := s.listDirectory(req.Directory, req.Query)
	if err != nil {
		return nil, err
	}

	records, failures, err := s.extractAll(ctx, files)
	if err != nil {
		return nil, err
	}
	return &InvoiceExtractDirectoryResult{
		Directory:  dir,
		Records:    records,
		Failures:   failures,
		TotalCount: len(records),
	}, nil
}

// BuildContracts extracts the selected invoices and groups them into
// contracts with template data.
func (s *Service) BuildContracts(ctx context.Context, req ContractBuildRequest) (*ContractBuildResult, error) {
	groups, count, failures, err := s.group(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &ContractBuildResult{
		Contracts:    make([]Contract, 0, len(groups)),
		InvoiceCount: count,
		Failures:     failures,
	}
	for _, g := range groups {
		result.Contracts = append(result.Contracts, Contract{
			Group:    g,
			Template: contract.BuildTemplateData(g, s.contractOpts),
			FileName: contract.FileName(g),
		})
	}
	return result, nil
}

// ExportContracts builds contracts and writes them to req.Output as a
// workbook.
func (s *Service) ExportContracts(ctx context.Context, req ContractExportRequest) (*ContractExportResult, error) {
	if req.Output == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}
	output, err := s.checkPath(req.Output)
	if err != nil {
		return nil, err
	}

	groups, _, failures, err := s.group(ctx, req.ContractBuildRequest)
	if err != nil {
		return nil, err
	}
	if err := s.exporter.WriteFile(output, groups); err != nil {
		return nil, err
	}

	items := 0
	for _, g := range groups {
		items += len(g.Items)
	}
	return &ContractExportResult{
		Output:        output,
		ContractCount: len(groups),
		ItemCount:     items,
		Failures:      failures,
	}, nil
}

func (s *Service) group(ctx context.Context, req ContractBuildRequest) ([]*model.ContractGroup, int, []FileFailure, error) {
	var paths []string
	if len(req.Paths) == 0 {
		var err error
		paths, _, err = s.listDirectory(req.Directory, req.Query)
		if err != nil {
			return nil, 0, nil, err
		}
	} else {
		for _, p := range req.Paths {
			resolved, err := s.checkPath(p)
			if err != nil {
				return nil, 0, nil, err
			}
			paths = append(paths, resolved)
		}
	}

	records, failures, err := s.extractAll(ctx, paths)
	if err != nil {
		return nil, 0, nil, err
	}
	groups, err := s.engine.Group(records, s.contractOpts)
	if err != nil {
		return nil, 0, nil, err
	}
	return groups, len(records), failures, nil
}

func (s *Service) checkDirectory(directory string) (string, error) {
	if directory == "" {
		directory = s.pathValidator.GetConfiguredDirectory()
	}
	resolved, err := s.pathValidator.ResolvePath(directory)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.pathValidator.ValidateDirectory(resolved); err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return resolved, nil
}

func (s *Service) listDirectory(directory, query string) ([]string, string, error) {
	directory, err := s.checkDirectory(directory)
	if err != nil {
		return nil, "", err
	}

	found, err := s.search.SearchDirectory(InvoiceSearchDirectoryRequest{Directory: directory, Query: query})
	if err != nil {
		return nil, "", err
	}
	paths := make([]string, 0, len(found.Files))
	for _, f := range found.Files {
		paths = append(paths, f.Path)
	}
	return paths, found.Directory, nil
}

// extractAll extracts paths concurrently. Output order follows input order.
// Cancelling ctx stops scheduling and discards the partial result.
func (s *Service) extractAll(ctx context.Context, paths []string) ([]*model.InvoiceRecord, []FileFailure, error) {
	results := make([]*model.InvoiceRecord, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = s.safeExtract(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	records := make([]*model.InvoiceRecord, 0, len(paths))
	var failures []FileFailure
	for i, path := range paths {
		if errs[i] != nil {
			failures = append(failures, FileFailure{
				Path:  path,
				Type:  invoice.TypeOf(errs[i]).String(),
				Error: errs[i].Error(),
			})
			s.logger.Printf("[InvoiceService] skipped %s: %v", path, errs[i])
			continue
		}
		records = append(records, results[i])
	}
	return records, failures, nil
}

func (s *Service) safeExtract(path string) (rec *model.InvoiceRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "[InvoiceService] Panic extracting %s: %v\n", path, r)
			rec, err = nil, invoice.NewExtractError(invoice.ErrorTypePDFRead, path, fmt.Errorf("panic: %v", r))
		}
	}()
	return s.extractPath(path)
}

// ValidateFile performs validation on a PDF file
func (s *Service) ValidateFile(req InvoiceValidateFileRequest) (*InvoiceValidateFileResult, error) {
	path, err := s.checkPath(req.Path)
	if err != nil {
		return nil, err
	}
	req.Path = path
	return s.validator.ValidateFile(req)
}

// SearchDirectory searches for PDF files in a directory
func (s *Service) SearchDirectory(req InvoiceSearchDirectoryRequest) (*InvoiceSearchDirectoryResult, error) {
	dir, err := s.checkDirectory(req.Directory)
	if err != nil {
		return nil, err
	}
	req.Directory = dir
	return s.search.SearchDirectory(req)
}

// AmountToWords spells an amount in capitalized Chinese numerals
func (s *Service) AmountToWords(value string) string {
	return amount.ToWords(value)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// CacheStats reports record cache usage
func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}

// Workers returns the size of the extraction worker pool
func (s *Service) Workers() int {
	return s.workers
}

// ConfiguredDirectory returns the directory all paths are restricted to
func (s *Service) ConfiguredDirectory() string {
	return s.pathValidator.GetConfiguredDirectory()
}
