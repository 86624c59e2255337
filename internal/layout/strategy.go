package layout

import (
	"log"

	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

// debugLog forwards to a logger only when debugging is enabled.
type debugLog struct {
	logger *log.Logger
	on     bool
}

func (d debugLog) Printf(format string, args ...any) {
	if d.on && d.logger != nil {
		d.logger.Printf(format, args...)
	}
}

// Page is one page of tokens with its rows already grouped.
type Page struct {
	Number int
	Tokens []Token
	Rows   []Row
}

// NewPage groups tokens into rows using cfg.RowTolerance.
func NewPage(number int, tokens []Token, cfg Config) Page {
	return Page{Number: number, Tokens: tokens, Rows: GroupRows(tokens, cfg.RowTolerance)}
}

// Result is the output of an item strategy for one page.
type Result struct {
	Items    []model.LineItem
	Warnings []string
}

// ItemStrategy extracts line items from a page. Applicable is a cheap
// capability check used to choose between strategies.
type ItemStrategy interface {
	Name() string
	Applicable(p Page) bool
	Extract(p Page) Result
}

// HeaderStrategy derives columns from the table header row.
type HeaderStrategy struct {
	cfg Config
	log debugLog
}

// NewHeaderStrategy returns a header driven strategy. A nil logger disables
// diagnostics.
func NewHeaderStrategy(cfg Config, logger *log.Logger) *HeaderStrategy {
	return &HeaderStrategy{cfg: cfg, log: debugLog{logger: logger, on: cfg.Debug}}
}

// Name implements ItemStrategy.
func (s *HeaderStrategy) Name() string { return model.StrategyHeader }

// Applicable reports whether both header and total rows exist.
func (s *HeaderStrategy) Applicable(p Page) bool {
	_, ok := LocateTable(p.Rows)
	return ok
}

// Extract implements ItemStrategy.
func (s *HeaderStrategy) Extract(p Page) Result {
	region, ok := LocateTable(p.Rows)
	if !ok {
		return Result{}
	}

	header := p.Rows[region.Header]
	cols := MapColumns(header, s.cfg.ColumnMargin)
	res := Result{Warnings: cols.Review(s.cfg.ColumnBounds)}

	used := tokenSet{}
	used.add(header.Tokens...)
	used.add(p.Rows[region.Total].Tokens...)

	var body []Token
	for _, r := range region.Body(p.Rows) {
		body = append(body, r.Tokens...)
	}

	placed := assembleItems(body, cols, s.cfg.TableRowTolerance, used, s.log)
	res.Items = mergeContinuations(placed, p.Tokens, used, s.cfg, s.log)
	return res
}

// Extractor runs the first applicable strategy on each page.
type Extractor struct {
	strategies []ItemStrategy
}

// NewExtractor returns an extractor trying the header strategy first and the
// fallback strategy second. A nil logger disables diagnostics.
func NewExtractor(cfg Config, logger *log.Logger) *Extractor {
	return &Extractor{strategies: []ItemStrategy{
		NewHeaderStrategy(cfg, logger),
		NewFallbackStrategy(cfg, logger),
	}}
}

// Extract returns the items of a page and the name of the strategy used.
func (e *Extractor) Extract(p Page) (Result, string) {
	for _, s := range e.strategies {
		if s.Applicable(p) {
			return s.Extract(p), s.Name()
		}
	}
	return Result{}, model.StrategyNone
}
