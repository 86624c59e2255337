package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHeaderRow(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"full header", "项目名称 规格型号 单位 数量 单价 金额 税率/征收率 税额", true},
		{"spaced labels", "项目名称 规格 单 位 数 量 金 额", true},
		{"three markers", "项目名称 单位 数量 金额", true},
		{"two markers", "项目名称 数量 金额", false},
		{"no item name", "规格型号 单位 数量 金额 税率", false},
		{"field label", "项目名称：某某工程", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHeaderRow(tt.text))
		})
	}
}

func TestLocateTable(t *testing.T) {
	rows := GroupRows(tablePage(), 5)

	region, ok := LocateTable(rows)
	require.True(t, ok)
	assert.True(t, IsHeaderRow(rows[region.Header].Text()))
	assert.Equal(t, "合 计 ¥9500.00 ¥1235.00", rows[region.Total].Text())

	body := region.Body(rows)
	require.Len(t, body, 4)
	assert.Equal(t, 220.0, body[0].Y)
}

func TestLocateTableNotFound(t *testing.T) {
	t.Run("no total row", func(t *testing.T) {
		_, ok := LocateTable(GroupRows(looseTablePage(), 5))
		assert.False(t, ok)
	})

	t.Run("total before header is ignored", func(t *testing.T) {
		var tokens []Token
		tokens = append(tokens, tok("合计", 20, 10, 20))
		tokens = append(tokens, headerRow(50)...)
		_, ok := LocateTable(GroupRows(tokens, 5))
		assert.False(t, ok)
	})

	t.Run("no rows", func(t *testing.T) {
		_, ok := LocateTable(nil)
		assert.False(t, ok)
	})
}
