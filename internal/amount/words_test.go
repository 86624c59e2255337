package amount

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToWords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "零元整"},
		{"0.00", "零元整"},
		{"100", "壹佰元整"},
		{"1024.5", "壹仟零贰拾肆元伍角"},
		{"100000", "壹拾万元整"},
		{"20", "贰拾元整"},
		{"309.00", "叁佰零玖元整"},
		{"0.05", "零元伍分"},
		{"0.5", "零元伍角"},
		{"1.05", "壹元伍分"},
		{"10.50", "壹拾元伍角"},
		{"¥1,234.56", "壹仟贰佰叁拾肆元伍角陆分"},
		{"10010", "壹万零壹拾元整"},
		{"100010000", "壹亿零壹万元整"},
		{"1000000001", "壹拾亿零壹元整"},
		{"12.349", "壹拾贰元叁角肆分"},
		{"-100", "负壹佰元整"},
		{"abc", "零元整"},
		{"", "零元整"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ToWords(tt.in))
		})
	}
}

func TestToWordsIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, "壹仟零贰拾肆元伍角", ToWords("1024.5"))
	}
}

func TestToWordsDecimal(t *testing.T) {
	assert.Equal(t, "叁佰零玖元整", ToWordsDecimal(decimal.RequireFromString("309")))
	assert.Equal(t, "玖元整", ToWordsDecimal(decimal.NewFromInt(9)))
}

func TestParseCurrency(t *testing.T) {
	d, err := ParseCurrency("¥ 1,024.50")
	assert.NoError(t, err)
	assert.Equal(t, "1024.50", Format2(d))

	_, err = ParseCurrency("免税")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = ParseCurrency("1.2.3")
	assert.Error(t, err)
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3%", "0.03"},
		{"13%", "0.13"},
		{"3", "0.03"},
		{"0.03", "0.03"},
		{"1", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRate(tt.in)
			assert.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	_, err := ParseRate("免税")
	assert.Error(t, err)
}

func TestFormatThousands(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"999", "999.00"},
		{"1000", "1,000.00"},
		{"5759", "5,759.00"},
		{"1234567.5", "1,234,567.50"},
		{"-1234", "-1,234.00"},
		{"-0.001", "0.00"},
		{"100000.005", "100,000.01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatThousands(decimal.RequireFromString(tt.in)))
		})
	}
}
