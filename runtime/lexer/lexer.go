// Package lexer tokenizes siteswap notation.
//
// Every token is one character except braced values ("{40}"). Whitespace
// is skipped; its only effect is that tokens carry their true byte offset.
package lexer

import (
	"github.com/rs/zerolog"
)

// LexerOpt configures a Lexer.
type LexerOpt func(*Lexer)

// WithLogger traces every token at debug level.
func WithLogger(logger zerolog.Logger) LexerOpt {
	return func(l *Lexer) {
		l.logger = logger
	}
}

// Lexer converts siteswap source into tokens.
type Lexer struct {
	input  []byte
	pos    int
	logger zerolog.Logger
}

// NewLexer creates a lexer. Call Init before reading tokens.
func NewLexer(opts ...LexerOpt) *Lexer {
	l := &Lexer{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Init resets the lexer to the start of input.
func (l *Lexer) Init(input []byte) {
	l.input = input
	l.pos = 0
}

// GetTokens returns all remaining tokens, ending with EOF.
func (l *Lexer) GetTokens() []Token {
	tokens := make([]Token, 0, len(l.input)+1)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	tok := l.next()
	l.logger.Debug().
		Str("type", tok.Type.String()).
		Str("text", tok.Text).
		Int("pos", tok.Pos).
		Msg("token")
	return tok
}

func (l *Lexer) next() Token {
	for l.pos < len(l.input) && l.input[l.pos] < 128 && isWhitespace[l.input[l.pos]] {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return Token{Type: EOF, Pos: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]

	switch {
	case ch >= 128:
		return l.illegal(start)
	case ch == '{':
		return l.lexBracedValue(start)
	case isValue[ch]:
		l.pos++
		return Token{Type: VALUE, Text: string(ch), Pos: start}
	case punctuation[ch] != ILLEGAL:
		l.pos++
		return Token{Type: punctuation[ch], Text: string(ch), Pos: start}
	case isUpper[ch]:
		l.pos++
		return Token{Type: LETTER, Text: string(ch), Pos: start}
	default:
		return l.illegal(start)
	}
}

// lexBracedValue reads "{digits}".
func (l *Lexer) lexBracedValue(start int) Token {
	end := start + 1
	for end < len(l.input) && l.input[end] < 128 && isDigit[l.input[end]] {
		end++
	}
	if end == start+1 || end >= len(l.input) || l.input[end] != '}' {
		l.pos = start + 1
		return Token{Type: ILLEGAL, Text: "{", Pos: start}
	}
	l.pos = end + 1
	return Token{Type: VALUE, Text: string(l.input[start:l.pos]), Pos: start}
}

// illegal consumes one (possibly multi-byte) character.
func (l *Lexer) illegal(start int) Token {
	l.pos++
	for l.pos < len(l.input) && l.input[l.pos]&0xC0 == 0x80 {
		l.pos++
	}
	return Token{Type: ILLEGAL, Text: string(l.input[start:l.pos]), Pos: start}
}
