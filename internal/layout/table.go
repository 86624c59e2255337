package layout

import "strings"

const itemNameMarker = "项目名称"

// headerMarkerGroups must match at least minHeaderMarkers times, besides the
// item name marker, for a row to count as the table header.
var headerMarkerGroups = [][]string{
	{"规格", "型号"},
	{"单位"},
	{"数量"},
	{"金额"},
	{"税率", "税额"},
}

const minHeaderMarkers = 3

var totalMarkers = []string{"合计", "合 计"}

// Region holds the row indexes of the table header and total rows.
type Region struct {
	Header int
	Total  int
}

// Body returns the rows strictly between header and total.
func (r Region) Body(rows []Row) []Row {
	if r.Header+1 > r.Total || r.Total > len(rows) {
		return nil
	}
	return rows[r.Header+1 : r.Total]
}

// IsHeaderRow reports whether a row's text names the goods table columns.
func IsHeaderRow(text string) bool {
	c := compact(text)
	if !strings.Contains(c, itemNameMarker) {
		return false
	}
	hits := 0
	for _, group := range headerMarkerGroups {
		for _, marker := range group {
			if strings.Contains(c, marker) {
				hits++
				break
			}
		}
	}
	return hits >= minHeaderMarkers
}

// IsTotalRow reports whether a row's text is the table's total line.
func IsTotalRow(text string) bool {
	for _, marker := range totalMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// LocateTable finds the header row and the first total row after it.
func LocateTable(rows []Row) (Region, bool) {
	header := -1
	for i, r := range rows {
		if IsHeaderRow(r.Text()) {
			header = i
			break
		}
	}
	if header < 0 {
		return Region{}, false
	}
	for i := header + 1; i < len(rows); i++ {
		if IsTotalRow(rows[i].Text()) {
			return Region{Header: header, Total: i}, true
		}
	}
	return Region{}, false
}
