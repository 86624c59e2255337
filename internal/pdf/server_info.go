package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/a3tai/mcp-invoice-contract/internal/descriptions"
)

const (
	serverInfoCacheTTL = 5 * time.Minute
	scanMaxDepth       = 5
	scanFileLimit      = 100
	scanTimeLimit      = 3 * time.Second
)

// DirectoryCache provides TTL-based caching for directory contents
type DirectoryCache struct {
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
}

type cacheEntry struct {
	files      []FileInfo
	lastUpdate time.Time
}

// NewDirectoryCache creates a new directory cache with specified TTL
func NewDirectoryCache(ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns cached directory contents if they have not expired
func (c *DirectoryCache) Get(path string) ([]FileInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	if !ok || c.now().Sub(entry.lastUpdate) > c.ttl {
		return nil, false
	}
	return entry.files, true
}

// Set stores directory contents in cache
func (c *DirectoryCache) Set(path string, files []FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry{files: files, lastUpdate: c.now()}
}

// Clear removes expired entries from cache
func (c *DirectoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for path, entry := range c.entries {
		if now.Sub(entry.lastUpdate) > c.ttl {
			delete(c.entries, path)
		}
	}
}

// Len returns the number of entries, expired ones included
func (c *DirectoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// LazyDirectoryScanner lists PDFs with depth, count and time limits so server
// info stays fast on large trees.
type LazyDirectoryScanner struct {
	maxDepth  int
	fileLimit int
	timeLimit time.Duration
}

// NewLazyDirectoryScanner creates a new lazy directory scanner
func NewLazyDirectoryScanner(maxDepth, fileLimit int, timeLimit time.Duration) *LazyDirectoryScanner {
	return &LazyDirectoryScanner{maxDepth: maxDepth, fileLimit: fileLimit, timeLimit: timeLimit}
}

// ScanDirectory scans root and reports whether the result was truncated
func (s *LazyDirectoryScanner) ScanDirectory(ctx context.Context, root string) ([]FileInfo, bool, error) {
	start := time.Now()
	var files []FileInfo
	truncated := false
	err := s.scan(ctx, root, 0, start, &files, &truncated)
	return files, truncated, err
}

func (s *LazyDirectoryScanner) scan(ctx context.Context, dir string, depth int, start time.Time, files *[]FileInfo, truncated *bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.maxDepth > 0 && depth >= s.maxDepth {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil // unreadable directories are skipped
	}

	for _, entry := range entries {
		if s.fileLimit > 0 && len(*files) >= s.fileLimit {
			*truncated = true
			return nil
		}
		if s.timeLimit > 0 && time.Since(start) > s.timeLimit {
			*truncated = true
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") || entry.Type()&os.ModeSymlink != 0 {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := s.scan(ctx, path, depth+1, start, files, truncated); err != nil {
				return err
			}
			continue
		}
		if !isPDFName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		*files = append(*files, FileInfo{
			Path:         path,
			Name:         entry.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
	}
	return nil
}

// InvoiceServerInfo answers server info requests from a cached directory scan
type InvoiceServerInfo struct {
	cache   *DirectoryCache
	scanner *LazyDirectoryScanner
	service *Service
}

// NewInvoiceServerInfo creates a server info handler for service
func NewInvoiceServerInfo(service *Service) *InvoiceServerInfo {
	return &InvoiceServerInfo{
		cache:   NewDirectoryCache(serverInfoCacheTTL),
		scanner: NewLazyDirectoryScanner(scanMaxDepth, scanFileLimit, scanTimeLimit),
		service: service,
	}
}

// GetServerInfo returns capabilities and the contents of the configured directory
func (p *InvoiceServerInfo) GetServerInfo(ctx context.Context, serverName, version string) (*InvoiceServerInfoResult, error) {
	dir := p.service.ConfiguredDirectory()

	files, ok := p.cache.Get(dir)
	if !ok {
		scanned, _, err := p.scanner.ScanDirectory(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		if scanned == nil {
			scanned = []FileInfo{}
		}
		p.cache.Set(dir, scanned)
		files = scanned
	}

	return &InvoiceServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  dir,
		MaxFileSize:       p.service.GetMaxFileSize(),
		Workers:           p.service.Workers(),
		Cache:             p.service.CacheStats(),
		AvailableTools:    availableTools(),
		DirectoryContents: files,
		UsageGuidance:     p.usageGuidance(),
	}, nil
}

// ClearCache clears expired cache entries
func (p *InvoiceServerInfo) ClearCache() {
	p.cache.Clear()
}

func availableTools() []ToolInfo {
	const pathParam = "path (required): Full path to the invoice PDF (absolute or relative to the configured directory)"
	const selectParams = "directory (optional): Directory to scan, query (optional): fuzzy file name filter, " +
		"paths (optional): explicit list of invoice PDFs, used instead of the directory"

	return []ToolInfo{
		{
			Name:        "invoice_extract_file",
			Description: descriptions.GetToolDescription("invoice_extract_file"),
			Usage:       "Extract header fields and goods items from one invoice.",
			Parameters:  pathParam,
		},
		{
			Name:        "invoice_extract_directory",
			Description: descriptions.GetToolDescription("invoice_extract_directory"),
			Usage:       "Extract every invoice in a directory in parallel.",
			Parameters:  "directory (optional): Directory to scan, query (optional): fuzzy file name filter",
		},
		{
			Name:        "contract_build",
			Description: descriptions.GetToolDescription("contract_build"),
			Usage:       "Group invoices into contracts and build template data.",
			Parameters:  selectParams,
		},
		{
			Name:        "contract_export_xlsx",
			Description: descriptions.GetToolDescription("contract_export_xlsx"),
			Usage:       "Write grouped contracts and their items to an Excel workbook.",
			Parameters:  "output (required): Workbook path inside the configured directory, " + selectParams,
		},
		{
			Name:        "amount_to_words",
			Description: descriptions.GetToolDescription("amount_to_words"),
			Usage:       "Spell an amount in capitalized Chinese numerals.",
			Parameters:  "amount (required): Decimal amount, currency symbols and separators allowed",
		},
		{
			Name:        "invoice_validate_file",
			Description: descriptions.GetToolDescription("invoice_validate_file"),
			Usage:       "Check that a file is a readable PDF before extracting it.",
			Parameters:  pathParam,
		},
		{
			Name:        "invoice_search_directory",
			Description: descriptions.GetToolDescription("invoice_search_directory"),
			Usage:       "Find invoice PDFs by file name.",
			Parameters:  "directory (optional): Directory to search, query (optional): fuzzy file name filter",
		},
		{
			Name:        "invoice_server_info",
			Description: descriptions.GetToolDescription("invoice_server_info"),
			Usage:       "Show server capabilities and directory contents.",
			Parameters:  "No parameters required",
		},
	}
}

func (p *InvoiceServerInfo) usageGuidance() string {
	maxFileSizeMB := p.service.GetMaxFileSize() / (1024 * 1024)

	return fmt.Sprintf(`Invoice MCP Server Usage Guide:

1. DISCOVER:
   - Use 'invoice_search_directory' to find invoice PDFs
   - Use 'invoice_validate_file' on files from unknown sources

2. EXTRACT:
   - Use 'invoice_extract_file' for one invoice
   - Use 'invoice_extract_directory' for a batch (%d workers)
   - Check 'strategy': "header" means the goods table was located by its
     header row, "fallback" means items were recovered from row shapes

3. BUILD CONTRACTS:
   - Use 'contract_build' to group invoices by project, buyer and seller
   - Use 'contract_export_xlsx' to write the contracts to a workbook
   - Use 'amount_to_words' to spell any amount in capitalized numerals

IMPORTANT NOTES:
- All paths must be inside the configured directory
- Files up to %dMB are processed
- Scanned invoices without a text layer yield no tokens and are reported as failures
- Extracted invoices are cached until the file changes
- Directory contents below are cached for 5 minutes and limited to 100 files`, p.service.Workers(), maxFileSizeMB)
}
