package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

func placed(name, spec string, y float64) PlacedItem {
	return PlacedItem{LineItem: model.LineItem{Name: name, Spec: spec, Unit: "米"}, Y: y}
}

func TestMergeContinuationsConsumesTokenOnce(t *testing.T) {
	items := []PlacedItem{placed("电缆", "", 100), placed("桥架", "", 105)}
	wrap := tok("（铜芯）", 20, 110, 30)

	used := tokenSet{}
	out := mergeContinuations(items, []Token{wrap}, used, DefaultConfig(), debugLog{})

	require.Len(t, out, 2)
	assert.Equal(t, "电缆 （铜芯）", out[0].Name)
	assert.Equal(t, "桥架", out[1].Name)
	assert.True(t, used.has(wrap))
}

func TestMergeContinuationsSpec(t *testing.T) {
	items := []PlacedItem{placed("电缆", "YJV 4", 100)}
	tokens := []Token{tok("* 95", 130, 112, 20)}

	out := mergeContinuations(items, tokens, tokenSet{}, DefaultConfig(), debugLog{})
	assert.Equal(t, "YJV 4*95", out[0].Spec)
}

func TestMergeContinuationsRespectsWindowAndUsed(t *testing.T) {
	cfg := DefaultConfig()
	items := []PlacedItem{placed("电缆", "", 100)}
	far := tok("远处文字", 20, 100+cfg.ContinuationWindow+1, 30)
	claimed := tok("已占用", 20, 110, 30)
	footer := tok("备注", 20, 112, 20)

	used := tokenSet{}
	used.add(claimed)
	out := mergeContinuations(items, []Token{far, claimed, footer}, used, cfg, debugLog{})
	assert.Equal(t, "电缆", out[0].Name)
}

func TestAttachRatings(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("nearest item above within distance", func(t *testing.T) {
		items := []PlacedItem{placed("电缆A", "", 100), placed("电缆B", "", 140)}
		out := mergeContinuations(items, []Token{tok("8.7/15kV", 200, 150, 30)}, tokenSet{}, cfg, debugLog{})
		assert.Equal(t, "电缆A", out[0].Name)
		assert.Equal(t, "电缆B 8.7/15kV", out[1].Name)
	})

	t.Run("too far away", func(t *testing.T) {
		items := []PlacedItem{placed("电缆", "", 100)}
		out := mergeContinuations(items, []Token{tok("0.6/1KV", 20, 100+cfg.VoltageMaxDistance, 30)}, tokenSet{}, cfg, debugLog{})
		assert.Equal(t, "电缆", out[0].Name)
	})

	t.Run("already present", func(t *testing.T) {
		items := []PlacedItem{placed("电缆 0.6/1kV", "", 100)}
		out := mergeContinuations(items, []Token{tok("0.6/1kV", 20, 110, 30)}, tokenSet{}, cfg, debugLog{})
		assert.Equal(t, "电缆 0.6/1kV", out[0].Name)
	})
}

func TestPropagateRatings(t *testing.T) {
	items := []PlacedItem{
		placed("电力电缆", "", 100),
		placed("电力电缆 0.6/1kV", "", 200),
		placed("控制电缆", "", 300),
	}
	propagateRatings(items)
	assert.Equal(t, "电力电缆 0.6/1kV", items[0].Name)
	assert.Equal(t, "电力电缆 0.6/1kV", items[1].Name)
	assert.Equal(t, "控制电缆", items[2].Name)
}

func TestIsVoltageRating(t *testing.T) {
	assert.True(t, IsVoltageRating("0.6/1kV"))
	assert.True(t, IsVoltageRating("8.7/15KV"))
	assert.True(t, IsVoltageRating("26/35Kv"))
	assert.False(t, IsVoltageRating("0.6/1"))
	assert.False(t, IsVoltageRating("电缆 0.6/1kV"))
}

func TestAssembleItems(t *testing.T) {
	cols := MapColumns(Row{Tokens: headerRow(0)}, DefaultConfig().ColumnMargin)

	t.Run("summary and nameless rows are dropped", func(t *testing.T) {
		var body []Token
		body = append(body, itemRow(20, "电缆", "YJV", "米", "1", "2", "2", "3%", "0.06")...)
		body = append(body, tok("¥2.00", 405, 40, 30))
		body = append(body, tok("合计", 20, 60, 20), tok("¥2.00", 405, 60, 30))

		used := tokenSet{}
		items := assembleItems(body, cols, 5, used, debugLog{})
		require.Len(t, items, 1)
		assert.Equal(t, "电缆", items[0].Name)
		assert.Equal(t, 20.0, items[0].Y)
		assert.Len(t, used, 8)
	})

	t.Run("service row without unit is not a continuation", func(t *testing.T) {
		body := []Token{
			tok("技术服务费", 20, 20, 50), tok("1000.00", 405, 20, 40), tok("6%", 480, 20, 15), tok("60.00", 555, 20, 30),
			tok("安装费", 20, 40, 30), tok("500.00", 405, 40, 40), tok("6%", 480, 40, 15), tok("30.00", 555, 40, 30),
		}
		items := assembleItems(body, cols, 5, tokenSet{}, debugLog{})
		require.Len(t, items, 2)
		assert.Equal(t, "安装费", items[1].Name)
	})

	t.Run("continuation row without a previous item is dropped", func(t *testing.T) {
		var body []Token
		body = append(body, tok("（铜芯）", 20, 20, 30))
		body = append(body, itemRow(40, "电缆", "YJV", "米", "1", "2", "2", "3%", "0.06")...)

		used := tokenSet{}
		items := assembleItems(body, cols, 5, used, debugLog{})
		require.Len(t, items, 1)
		assert.Equal(t, "电缆", items[0].Name)
		assert.False(t, used.has(body[0]))
	})

	t.Run("tokens sharing a column are space joined", func(t *testing.T) {
		body := []Token{
			tok("*电线电缆*", 20, 20, 40), tok("电力电缆", 62, 20, 36),
			tok("YJV", 122, 20, 15), tok("4 * 95", 140, 20, 25),
			tok("米", 195, 20, 10), tok("10", 262, 20, 10), tok("5.00", 330, 20, 20),
			tok("50.00", 405, 20, 25), tok("13%", 480, 20, 15), tok("6.50", 555, 20, 20),
		}
		items := assembleItems(body, cols, 5, tokenSet{}, debugLog{})
		require.Len(t, items, 1)
		assert.Equal(t, "*电线电缆* 电力电缆", items[0].Name)
		assert.Equal(t, "YJV 4*95", items[0].Spec)
	})

	t.Run("tokens outside every column are dropped", func(t *testing.T) {
		body := append([]Token{tok("1", 5, 20, 5)},
			itemRow(20, "电缆", "YJV", "米", "1", "2", "2", "3%", "0.06")...)
		body = append(body, tok("※", 640, 20, 5))

		used := tokenSet{}
		items := assembleItems(body, cols, 5, used, debugLog{})
		require.Len(t, items, 1)
		assert.Equal(t, "电缆", items[0].Name)
		assert.Equal(t, "0.06", items[0].Tax)
		assert.False(t, used.has(body[0]))
		assert.Len(t, used, 8)
	})
}
