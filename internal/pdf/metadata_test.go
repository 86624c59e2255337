package pdf

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDocumentInfo(t *testing.T) {
	dir := t.TempDir()

	t.Run("info dictionary", func(t *testing.T) {
		path := filepath.Join(dir, "issued.pdf")
		writeTextPDFWithInfo(t, path, map[string]string{
			"Title":        "Invoice 24110000000000000001",
			"Producer":     "E-Invoice Platform",
			"CreationDate": "D:20240105093000+08'00'",
		}, "Invoice")

		info, err := ReadDocumentInfo(path)
		require.NoError(t, err)
		assert.Equal(t, DocumentInfo{
			Title:        "Invoice 24110000000000000001",
			Producer:     "E-Invoice Platform",
			CreationDate: "D:20240105093000+08'00'",
		}, info)
		assert.False(t, info.IsEmpty())
	})

	t.Run("no info dictionary", func(t *testing.T) {
		path := filepath.Join(dir, "plain.pdf")
		writeTextPDF(t, path, "Invoice")

		info, err := ReadDocumentInfo(path)
		require.NoError(t, err)
		assert.True(t, info.IsEmpty())
	})

	t.Run("unreadable file", func(t *testing.T) {
		path := filepath.Join(dir, "broken.pdf")
		writeFile(t, path, []byte("not a pdf"))

		_, err := ReadDocumentInfo(path)
		var libErr *LibraryError
		require.ErrorAs(t, err, &libErr)
		assert.Equal(t, LibraryLedongthuc, libErr.Library)
	})
}
