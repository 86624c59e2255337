package layout

func tok(text string, x, y, w float64) Token {
	return Token{Text: text, X: x, Y: y, Width: w, Height: 9}
}

// headerRow is a goods table header laid out like a common A4 invoice.
func headerRow(y float64) []Token {
	return []Token{
		tok("项目名称", 40, y, 40),
		tok("规格型号", 120, y, 40),
		tok("单位", 190, y, 20),
		tok("数量", 260, y, 20),
		tok("单价", 320, y, 20),
		tok("金额", 400, y, 20),
		tok("税率/征收率", 470, y, 50),
		tok("税额", 550, y, 20),
	}
}

func itemRow(y float64, name, spec, unit, qty, price, amount, rate, tax string) []Token {
	return []Token{
		tok(name, 20, y, 75),
		tok(spec, 125, y, 40),
		tok(unit, 195, y, 10),
		tok(qty, 262, y, 20),
		tok(price, 330, y, 30),
		tok(amount, 405, y, 40),
		tok(rate, 480, y, 20),
		tok(tax, 555, y, 30),
	}
}

// tablePage builds a page with a header row, three items (one wrapped onto a
// second line with a voltage rating) and a total row.
func tablePage() []Token {
	var tokens []Token
	tokens = append(tokens,
		tok("发票号码：", 380, 40, 40), tok("24312000000012345678", 425, 40, 90),
		tok("购", 20, 80, 10), tok("名称：甲建设有限公司", 35, 80, 120),
		tok("销", 300, 80, 10), tok("名称：乙电缆有限公司", 315, 80, 120),
	)
	tokens = append(tokens, headerRow(200)...)
	tokens = append(tokens, itemRow(220, "*电线电缆*电力电缆", "YJV-3", "米", "100", "50.00", "5000.00", "13%", "650.00")...)
	tokens = append(tokens, tok("0.6/1kV", 20, 232, 30), tok("*95", 125, 232, 15))
	tokens = append(tokens, itemRow(250, "*电线电缆*控制电缆", "KVV-4*2.5", "米", "200", "10.00", "2000.00", "13%", "260.00")...)
	tokens = append(tokens, itemRow(265, "*电线电缆*电力电缆", "YJV-3*70", "米", "50", "50.00", "2500.00", "13%", "325.00")...)
	tokens = append(tokens,
		tok("合", 40, 300, 10), tok("计", 60, 300, 10),
		tok("¥9500.00", 405, 300, 45), tok("¥1235.00", 555, 300, 45),
		tok("价税合计（大写）", 20, 320, 80), tok("壹万零柒佰叁拾伍元整", 150, 320, 100),
		tok("备注", 20, 340, 20),
	)
	return tokens
}

// looseTablePage has the header labels but no total row, so only the
// fallback strategy applies.
func looseTablePage() []Token {
	var tokens []Token
	tokens = append(tokens, headerRow(200)...)
	tokens = append(tokens,
		tok("*电线电缆*电力电缆", 20, 220, 75),
		tok("YJV-3*95", 110, 220, 30),
		tok("米", 190, 221, 10),
		tok("100", 260, 220, 20),
		tok("50.00", 300, 219, 30),
		tok("5000.00", 400, 220, 40),
		tok("13%", 470, 220, 20),
		tok("650.00", 540, 220, 30),
		tok("0.6/1kV", 20, 235, 30),
		tok("开票人：王五", 20, 320, 60),
	)
	return tokens
}
