package lexer

import (
	"fmt"
	"strconv"
)

// TokenType represents lexical tokens of siteswap notation.
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Throws
	VALUE  // 0-9, a-z (except p, x), {n}
	CROSS  // x
	PASS   // p
	LETTER // A-Z: hand specs (R, L) and modifiers (H, T, B, F, L)

	// Brackets
	LPAREN  // (
	RPAREN  // )
	LSQUARE // [
	RSQUARE // ]
	LANGLE  // <
	RANGLE  // >

	// Punctuation
	PIPE     // |
	COMMA    // ,
	BANG     // !
	STAR     // *
	CARET    // ^
	QUESTION // ?
)

var tokenNames = [...]string{
	EOF:      "EOF",
	ILLEGAL:  "ILLEGAL",
	VALUE:    "VALUE",
	CROSS:    "CROSS",
	PASS:     "PASS",
	LETTER:   "LETTER",
	LPAREN:   "LPAREN",
	RPAREN:   "RPAREN",
	LSQUARE:  "LSQUARE",
	RSQUARE:  "RSQUARE",
	LANGLE:   "LANGLE",
	RANGLE:   "RANGLE",
	PIPE:     "PIPE",
	COMMA:    "COMMA",
	BANG:     "BANG",
	STAR:     "STAR",
	CARET:    "CARET",
	QUESTION: "QUESTION",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token.
type Token struct {
	Type TokenType
	Text string
	Pos  int // byte offset in the source
}

func (t Token) String() string {
	if t.Type == EOF {
		return "end of input"
	}
	return t.Text
}

// Value returns the throw value of a VALUE token: a single character or a
// braced decimal such as "{40}".
func (t Token) Value() int {
	if t.Type != VALUE || t.Text == "" {
		return -1
	}
	if t.Text[0] == '{' {
		n, err := strconv.Atoi(t.Text[1 : len(t.Text)-1])
		if err != nil {
			return -1
		}
		return n
	}
	return ValueOf(t.Text[0])
}

// IsDigit reports whether t is a VALUE token holding a single decimal digit.
func (t Token) IsDigit() bool {
	return t.Type == VALUE && len(t.Text) == 1 && isDigit[t.Text[0]]
}
