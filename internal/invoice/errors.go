package invoice

import (
	"errors"
	"fmt"

	"github.com/a3tai/mcp-invoice-contract/internal/contract"
)

// Sentinel errors. Use errors.Is to test for them.
var (
	ErrNoTokens             = errors.New("no text tokens on any page")
	ErrMalformedInvoiceList = contract.ErrMalformedInvoiceList
)

// ErrorType categorizes extraction failures.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeNoTokens
	ErrorTypeMalformedInput
	ErrorTypePDFRead
	ErrorTypeValidation
)

// String returns the upper case name of the error type.
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeNoTokens:
		return "NO_TOKENS"
	case ErrorTypeMalformedInput:
		return "MALFORMED_INPUT"
	case ErrorTypePDFRead:
		return "PDF_READ"
	case ErrorTypeValidation:
		return "VALIDATION"
	default:
		return "UNKNOWN"
	}
}

// ExtractError is returned for a source that could not be turned into a
// record.
type ExtractError struct {
	Type   ErrorType `json:"type"`
	Source string    `json:"source,omitempty"`
	Err    error     `json:"-"`
}

// NewExtractError wraps err with a type and source.
func NewExtractError(t ErrorType, source string, err error) *ExtractError {
	return &ExtractError{Type: t, Source: source, Err: err}
}

// Error implements the error interface
func (e *ExtractError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Source, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// TypeOf returns the ErrorType of the first ExtractError in err's chain.
func TypeOf(err error) ErrorType {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Type
	}
	return ErrorTypeUnknown
}
