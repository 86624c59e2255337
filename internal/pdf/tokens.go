package pdf

import (
	"fmt"
	"log"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/a3tai/mcp-invoice-contract/internal/invoice"
	"github.com/a3tai/mcp-invoice-contract/internal/layout"
)

// DefaultPageHeight is used when a page has no readable MediaBox.
const DefaultPageHeight = 792.0

// DefaultWordGap is the widest horizontal gap, in points, inside one word.
const DefaultWordGap = 3.0

// TokenReader reads positioned word tokens from PDF files.
type TokenReader struct {
	validator *Validator
	wordGap   float64
	logger    *log.Logger
	debug     bool
}

// NewTokenReader creates a token reader. A non-positive wordGap selects
// DefaultWordGap.
func NewTokenReader(maxFileSize int64, wordGap float64, logger *log.Logger, debug bool) *TokenReader {
	if wordGap <= 0 {
		wordGap = DefaultWordGap
	}
	if logger == nil {
		logger = log.Default()
	}
	return &TokenReader{
		validator: NewValidator(maxFileSize),
		wordGap:   wordGap,
		logger:    logger,
		debug:     debug,
	}
}

// ReadTokens returns the tokens of every page of path, in page order. Pages
// the decoder cannot handle come back empty.
func (r *TokenReader) ReadTokens(path string) ([][]layout.Token, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, invoice.NewExtractError(invoice.ErrorTypePDFRead, path, fmt.Errorf("cannot access file: %w", err))
	}
	if err := r.validator.ValidateFileInfo(path, info); err != nil {
		return nil, invoice.NewExtractError(invoice.ErrorTypeValidation, path, err)
	}

	heights, err := pageHeights(path)
	if err != nil && r.debug {
		r.logger.Printf("[InvoiceService] %s: page sizes unavailable, using %.0fpt: %v", path, DefaultPageHeight, err)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, invoice.NewExtractError(invoice.ErrorTypePDFRead, path,
			&LibraryError{Library: LibraryLedongthuc, Op: "open", Err: err})
	}
	defer f.Close()

	pages := make([][]layout.Token, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		height, ok := heights[i]
		if !ok {
			height = DefaultPageHeight
		}
		tokens := r.readPage(path, reader, i, height)
		if r.debug {
			r.logger.Printf("[InvoiceService] %s page %d: %d tokens", path, i, len(tokens))
		}
		pages = append(pages, tokens)
	}
	return pages, nil
}

func (r *TokenReader) readPage(path string, reader *pdf.Reader, number int, height float64) (tokens []layout.Token) {
	defer func() {
		if rec := recover(); rec != nil {
			fmt.Fprintf(os.Stderr, "[InvoiceService] Panic reading page %d of %s: %v\n", number, path, rec)
			tokens = nil
		}
	}()

	page := reader.Page(number)
	if page.V.IsNull() {
		return nil
	}
	var glyphs []Glyph
	for _, t := range page.Content().Text {
		glyphs = append(glyphs, splitText(t)...)
	}
	return MergeGlyphs(glyphs, height, r.wordGap)
}

// splitText divides a text run evenly into per character glyphs.
func splitText(t pdf.Text) []Glyph {
	runes := []rune(t.S)
	if len(runes) == 0 {
		return nil
	}
	width := t.W / float64(len(runes))
	out := make([]Glyph, 0, len(runes))
	x := t.X
	for _, ch := range runes {
		out = append(out, Glyph{Text: string(ch), X: x, Baseline: t.Y, Width: width, FontSize: t.FontSize})
		x += width
	}
	return out
}

// pageHeights reads each page's MediaBox height with pdfcpu.
func pageHeights(path string) (map[int]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, &LibraryError{Library: LibraryPDFCPU, Op: "read_context", Err: err}
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &LibraryError{Library: LibraryPDFCPU, Op: "page_count", Err: err}
	}

	heights := make(map[int]float64, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		_, _, attrs, err := ctx.PageDict(i, false)
		if err != nil || attrs == nil || attrs.MediaBox == nil {
			continue
		}
		if h := attrs.MediaBox.Height(); h > 0 {
			heights[i] = h
		}
	}
	return heights, nil
}
