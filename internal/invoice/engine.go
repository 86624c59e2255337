// Package invoice turns the positioned text tokens of an invoice into an
// InvoiceRecord and groups records into contracts.
package invoice

import (
	"fmt"
	"log"
	"strings"

	"github.com/a3tai/mcp-invoice-contract/internal/contract"
	"github.com/a3tai/mcp-invoice-contract/internal/fields"
	"github.com/a3tai/mcp-invoice-contract/internal/layout"
	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

// Engine extracts records from token pages. It holds no per call state and
// is safe for concurrent use.
type Engine struct {
	cfg       layout.Config
	extractor *layout.Extractor
	fields    *fields.Extractor
	logger    *log.Logger
}

// NewEngine returns an engine using cfg. A nil logger means log.Default().
func NewEngine(cfg layout.Config, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		cfg:       cfg,
		extractor: layout.NewExtractor(cfg, logger),
		fields:    fields.NewExtractor(),
		logger:    logger,
	}
}

// Config returns the layout configuration in use.
func (e *Engine) Config() layout.Config {
	return e.cfg
}

// Extract builds a record from the tokens of each page of source. Pages are
// processed independently and their items concatenated in page order.
func (e *Engine) Extract(source string, pages [][]layout.Token) (*model.InvoiceRecord, error) {
	total := 0
	for _, p := range pages {
		total += len(p)
	}
	if total == 0 {
		return nil, NewExtractError(ErrorTypeNoTokens, source, ErrNoTokens)
	}

	rec := &model.InvoiceRecord{
		Source:   source,
		Items:    []model.LineItem{},
		Pages:    len(pages),
		Strategy: model.StrategyNone,
	}

	texts := make([]string, 0, len(pages))
	for i, tokens := range pages {
		page := layout.NewPage(i+1, tokens, e.cfg)
		if text := layout.FullText(page.Rows); text != "" {
			texts = append(texts, text)
		}
		if len(tokens) == 0 {
			continue
		}

		res, strategy := e.extractor.Extract(page)
		if rec.Strategy == model.StrategyNone {
			rec.Strategy = strategy
		}
		rec.Items = append(rec.Items, res.Items...)
		for _, w := range res.Warnings {
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("page %d: %s", page.Number, w))
		}
		if e.cfg.Debug {
			e.logger.Printf("[Invoice] %s page %d: %d rows, %d items via %s",
				source, page.Number, len(page.Rows), len(res.Items), strategy)
		}
	}

	if rec.Strategy == model.StrategyNone {
		rec.Warnings = append(rec.Warnings, "no goods table found")
	}

	rec.FullText = strings.Join(texts, "\n")
	rec.HeaderFields = e.fields.Extract(rec.FullText)
	rec.ItemsTable = model.ItemsTable(rec.Items)
	return rec, nil
}

// Group groups records into contracts. See contract.Group.
func (e *Engine) Group(records []*model.InvoiceRecord, opts contract.Options) ([]*model.ContractGroup, error) {
	if opts.Logger == nil {
		opts.Logger = e.logger
	}
	groups, err := contract.Group(records, opts)
	if err != nil {
		return nil, NewExtractError(ErrorTypeMalformedInput, "", err)
	}
	return groups, nil
}
