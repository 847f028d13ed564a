package lexer

// ASCII character lookup tables. Use with an inline bounds check:
//
//	if ch < 128 && isValue[ch] { ... }
//
// Non-ASCII input is always ILLEGAL.
var (
	isWhitespace [128]bool // Space, tab, carriage return, newline, form feed
	isDigit      [128]bool // 0-9
	isValue      [128]bool // 0-9, a-z except p and x
	isUpper      [128]bool // A-Z
	punctuation  [128]TokenType
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)

		isWhitespace[i] = ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
		isDigit[i] = '0' <= ch && ch <= '9'
		isValue[i] = isDigit[i] || ('a' <= ch && ch <= 'z' && ch != 'p' && ch != 'x')
		isUpper[i] = 'A' <= ch && ch <= 'Z'
		punctuation[i] = ILLEGAL
	}

	punctuation['('] = LPAREN
	punctuation[')'] = RPAREN
	punctuation['['] = LSQUARE
	punctuation[']'] = RSQUARE
	punctuation['<'] = LANGLE
	punctuation['>'] = RANGLE
	punctuation['|'] = PIPE
	punctuation[','] = COMMA
	punctuation['!'] = BANG
	punctuation['*'] = STAR
	punctuation['^'] = CARET
	punctuation['?'] = QUESTION
	punctuation['x'] = CROSS
	punctuation['X'] = CROSS
	punctuation['p'] = PASS
	punctuation['P'] = PASS
}

// ValueOf returns the throw value of a single value character, or -1.
func ValueOf(ch byte) int {
	switch {
	case ch < 128 && isDigit[ch]:
		return int(ch - '0')
	case ch < 128 && isValue[ch]:
		return int(ch-'a') + 10
	default:
		return -1
	}
}
