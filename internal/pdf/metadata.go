package pdf

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DocumentInfo is the document information dictionary of a PDF. Invoices
// issued by the national e-invoice platform name it in Producer.
type DocumentInfo struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreationDate string `json:"creationDate,omitempty"`
}

// IsEmpty reports whether no entry was found.
func (d DocumentInfo) IsEmpty() bool {
	return d == DocumentInfo{}
}

// ReadDocumentInfo reads the Info dictionary referenced by the trailer.
// A file without one yields an empty DocumentInfo.
func ReadDocumentInfo(path string) (info DocumentInfo, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return info, &LibraryError{Library: LibraryLedongthuc, Op: "open", Err: err}
	}
	defer f.Close()

	// ledongthuc panics on some malformed dictionaries
	defer func() {
		if rec := recover(); rec != nil {
			info = DocumentInfo{}
			err = &LibraryError{Library: LibraryLedongthuc, Op: "info", Err: fmt.Errorf("%v", rec)}
		}
	}()

	dict := r.Trailer().Key("Info")
	if dict.IsNull() {
		return info, nil
	}

	info.Title = infoText(dict, "Title")
	info.Author = infoText(dict, "Author")
	info.Subject = infoText(dict, "Subject")
	info.Creator = infoText(dict, "Creator")
	info.Producer = infoText(dict, "Producer")
	info.CreationDate = strings.TrimSpace(dict.Key("CreationDate").RawString())
	return info, nil
}

func infoText(dict pdf.Value, key string) string {
	v := dict.Key(key)
	if v.Kind() != pdf.String {
		return ""
	}
	return strings.TrimSpace(v.Text())
}
