package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRows(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		rows := GroupRows(nil, 5)
		require.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("tokens within tolerance share a row sorted by x", func(t *testing.T) {
		rows := GroupRows([]Token{
			tok("c", 300, 102, 10),
			tok("a", 10, 100, 10),
			tok("b", 150, 104, 10),
			tok("d", 10, 120, 10),
		}, 5)
		require.Len(t, rows, 2)
		assert.Equal(t, "a b c", rows[0].Text())
		assert.Equal(t, "d", rows[1].Text())
	})

	t.Run("reference y is the first token of the row", func(t *testing.T) {
		// 104 is within 5 of 100, 108 is within 5 of 104 but not of 100.
		rows := GroupRows([]Token{
			tok("a", 0, 100, 10),
			tok("b", 20, 104, 10),
			tok("c", 40, 108, 10),
		}, 5)
		require.Len(t, rows, 2)
		assert.Equal(t, "a b", rows[0].Text())
		assert.Equal(t, "c", rows[1].Text())
	})

	t.Run("result does not depend on input order", func(t *testing.T) {
		tokens := tablePage()
		reversed := make([]Token, len(tokens))
		for i, tk := range tokens {
			reversed[len(tokens)-1-i] = tk
		}
		assert.Equal(t, GroupRows(tokens, 5), GroupRows(reversed, 5))
	})

	t.Run("input slice is not reordered", func(t *testing.T) {
		tokens := []Token{tok("b", 50, 10, 5), tok("a", 0, 10, 5)}
		GroupRows(tokens, 5)
		assert.Equal(t, "b", tokens[0].Text)
	})
}

func TestFullText(t *testing.T) {
	rows := []Row{
		{Tokens: []Token{tok("发票号码：", 0, 0, 0), tok("123", 50, 0, 0)}},
		{Tokens: []Token{tok(" ", 0, 10, 0)}},
		{Tokens: []Token{tok("开票日期：2024年01月02日", 0, 20, 0)}},
	}
	assert.Equal(t, "发票号码： 123\n开票日期：2024年01月02日", FullText(rows))
	assert.Empty(t, FullText(nil))
}
