package pdf

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string][]byte{
		"城东变电站_发票_001.pdf":      make([]byte, 64),
		"2024/西区配电房-发票.pdf":     make([]byte, 64),
		"2024/03/dzfp_0012.pdf": make([]byte, 64),
		".cache/hidden.pdf":     make([]byte, 64),
		"notes.txt":             make([]byte, 64),
		"empty.pdf":             {},
		"huge.pdf":              make([]byte, 4096),
	}
	for name, data := range files {
		writeFile(t, filepath.Join(dir, name), data)
	}
	return dir
}

func names(files []FileInfo) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Name)
	}
	return out
}

func TestSearch_SearchDirectory(t *testing.T) {
	dir := searchFixture(t)
	search := NewSearch(1024)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all readable pdfs sorted by path", "", []string{"dzfp_0012.pdf", "西区配电房-发票.pdf", "城东变电站_发票_001.pdf"}},
		{"substring", "城东", []string{"城东变电站_发票_001.pdf"}},
		{"every word must match", "发票 西区", []string{"西区配电房-发票.pdf"}},
		{"case insensitive", "DZFP", []string{"dzfp_0012.pdf"}},
		{"no match", "合同", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := search.SearchDirectory(InvoiceSearchDirectoryRequest{Directory: dir, Query: tt.query})
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(res.Files))
			assert.Equal(t, len(tt.want), res.TotalCount)
			assert.Equal(t, tt.query, res.SearchQuery)
		})
	}
}

func TestSearch_Errors(t *testing.T) {
	search := NewSearch(0)

	_, err := search.SearchDirectory(InvoiceSearchDirectoryRequest{})
	assert.ErrorContains(t, err, "directory cannot be empty")

	_, err = search.SearchDirectory(InvoiceSearchDirectoryRequest{Directory: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorContains(t, err, "directory does not exist")
}

func TestSearch_FindPDFsInDirectoryLimited(t *testing.T) {
	dir := searchFixture(t)

	files, err := NewSearch(1024).FindPDFsInDirectoryLimited(dir, 2)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, err = NewSearch(0).FindPDFsInDirectoryLimited(dir, 0)
	require.NoError(t, err)
	assert.Len(t, files, 4)
}

func TestMatchesQuery(t *testing.T) {
	assert.True(t, matchesQuery("Invoice_2024.PDF", "invoice"))
	assert.True(t, matchesQuery("城东（二期）发票.pdf", "二期 城东"))
	assert.False(t, matchesQuery("invoice.pdf", "pdf"))
	assert.False(t, matchesQuery("城东发票.pdf", "城东 合同"))
}
