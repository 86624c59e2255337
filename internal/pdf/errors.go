package pdf

import "fmt"

// Library names used in LibraryError.
const (
	LibraryLedongthuc = "ledongthuc"
	LibraryPDFCPU     = "pdfcpu"
)

// LibraryError records which PDF library failed and during which operation.
type LibraryError struct {
	Library string
	Op      string
	Err     error
}

func (e *LibraryError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Library, e.Op, e.Err)
}

func (e *LibraryError) Unwrap() error {
	return e.Err
}
