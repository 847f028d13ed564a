// Package parser builds a notation tree from siteswap source.
//
// The parser is recursive descent over the token stream produced by the
// lexer. It stops at the first error and reports it as a diag.UserError
// pointing at the offending character.
package parser

import (
	"fmt"
	"time"

	"github.com/aledsdavies/jugglec/core/diag"
	"github.com/aledsdavies/jugglec/core/notation"
	"github.com/aledsdavies/jugglec/runtime/lexer"
)

// ParseTree is the result of parsing one siteswap.
type ParseTree struct {
	Source      string
	Pattern     *notation.Pattern
	Tokens      []lexer.Token
	Telemetry   *ParseTelemetry // nil unless telemetry was requested
	DebugEvents []DebugEvent    // nil unless debug tracing was requested
}

// Parse parses source into a notation tree.
func Parse(source string, opts ...ParserOpt) (*ParseTree, error) {
	config := &ParserConfig{}
	for _, opt := range opts {
		opt(config)
	}

	var telemetry *ParseTelemetry
	var startTotal time.Time
	if config.telemetry >= TelemetryBasic {
		telemetry = &ParseTelemetry{}
		if config.telemetry >= TelemetryTiming {
			startTotal = time.Now()
		}
	}

	var debugEvents []DebugEvent
	if config.debug > DebugOff {
		debugEvents = make([]DebugEvent, 0, 32)
	}

	var startLex time.Time
	if config.telemetry >= TelemetryTiming {
		startLex = time.Now()
	}

	var lexOpts []lexer.LexerOpt
	if config.hasLogger && config.debug >= DebugDetailed {
		lexOpts = append(lexOpts, lexer.WithLogger(config.logger))
	}
	lex := lexer.NewLexer(lexOpts...)
	lex.Init([]byte(source))
	tokens := lex.GetTokens()

	if telemetry != nil {
		telemetry.TokenCount = len(tokens)
		if config.telemetry >= TelemetryTiming {
			telemetry.LexTime = time.Since(startLex)
		}
	}

	p := &parser{
		source:      source,
		tokens:      tokens,
		config:      config,
		debugEvents: debugEvents,
	}

	var startParse time.Time
	if config.telemetry >= TelemetryTiming {
		startParse = time.Now()
	}

	root, err := p.pattern()

	tree := &ParseTree{
		Source:      source,
		Pattern:     root,
		Tokens:      tokens,
		Telemetry:   telemetry,
		DebugEvents: p.debugEvents,
	}

	if telemetry != nil {
		if root != nil {
			notation.Walk(root, func(notation.Node) bool {
				telemetry.NodeCount++
				return true
			})
		}
		if config.telemetry >= TelemetryTiming {
			telemetry.ParseTime = time.Since(startParse)
			telemetry.TotalTime = time.Since(startTotal)
		}
	}

	if err != nil {
		tree.Pattern = nil
		return tree, err
	}
	return tree, nil
}

// parser is the internal parser state
type parser struct {
	source      string
	tokens      []lexer.Token
	pos         int
	config      *ParserConfig
	debugEvents []DebugEvent
}

// recordDebugEvent records debug events when debug tracing is enabled
func (p *parser) recordDebugEvent(event, context string) {
	if p.config.debug == DebugOff {
		return
	}

	evt := DebugEvent{
		Timestamp: time.Now(),
		Event:     event,
		TokenPos:  p.peek().Pos,
		Context:   context,
	}
	p.debugEvents = append(p.debugEvents, evt)

	if p.config.hasLogger {
		p.config.logger.Debug().
			Str("event", evt.Event).
			Int("pos", evt.TokenPos).
			Str("context", evt.Context).
			Msg("parse")
	}
}

func (p *parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *parser) at(tt lexer.TokenType) bool {
	return p.peek().Type == tt
}

func (p *parser) atLetter(letters string) bool {
	tok := p.peek()
	if tok.Type != lexer.LETTER {
		return false
	}
	for i := 0; i < len(letters); i++ {
		if tok.Text[0] == letters[i] {
			return true
		}
	}
	return false
}

func (p *parser) errorAt(tok lexer.Token, format string, args ...interface{}) *diag.UserError {
	return diag.UserAt(diag.StageParse, p.source, tok.Pos, format, args...)
}

// unexpected reports tok in a context that wanted something else.
func (p *parser) unexpected(tok lexer.Token, want string) *diag.UserError {
	switch tok.Type {
	case lexer.EOF:
		return p.errorAt(tok, "unexpected end of input, expected %s", want)
	case lexer.ILLEGAL:
		return p.errorAt(tok, "unexpected character %q", tok.Text)
	case lexer.PASS, lexer.CROSS:
		return p.errorAt(tok, "%q must follow a throw value", tok.Text)
	case lexer.BANG:
		return p.errorAt(tok, "'!' may only follow a synchronous throw").
			WithSuggestion("write (a,b)! for a one-beat synchronous throw")
	case lexer.LETTER:
		return p.errorAt(tok, "unexpected %q, expected %s", tok.Text, want).
			WithSuggestion("R and L select a hand; H, T and B modifiers follow a throw value")
	default:
		return p.errorAt(tok, "unexpected %q, expected %s", tok.Text, want)
	}
}

// expectClose consumes the closing token for open.
func (p *parser) expectClose(tt lexer.TokenType, open lexer.Token, closer string) error {
	if !p.at(tt) {
		return p.errorAt(p.peek(), "expected %q to close %q at position %d", closer, open.Text, open.Pos+1)
	}
	p.advance()
	return nil
}

// isPaired reports whether the '(' at the current position opens a
// synchronous throw: it contains a comma at its own nesting level.
func (p *parser) isPaired() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case lexer.LPAREN, lexer.LSQUARE, lexer.LANGLE:
			depth++
		case lexer.RPAREN, lexer.RSQUARE, lexer.RANGLE:
			depth--
			if depth == 0 {
				return false
			}
		case lexer.COMMA:
			if depth == 1 {
				return true
			}
		case lexer.EOF:
			return false
		}
	}
	return false
}

// pattern := item+ [ '*' ]
func (p *parser) pattern() (*notation.Pattern, error) {
	p.recordDebugEvent("enter_pattern", "")

	root := &notation.Pattern{Offset: p.peek().Pos}
	items, err := p.patternItems()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		if p.at(lexer.EOF) {
			return nil, p.errorAt(p.peek(), "empty pattern")
		}
		return nil, p.unexpected(p.peek(), "a throw")
	}
	root.Items = items

	if p.at(lexer.STAR) {
		p.advance()
		root.SwitchRepeat = true
	}
	if !p.at(lexer.EOF) {
		tok := p.peek()
		if tok.Type == lexer.STAR || root.SwitchRepeat {
			return nil, p.errorAt(tok, "'*' must be the last character of the pattern")
		}
		if tok.Type == lexer.RPAREN {
			return nil, p.errorAt(tok, "unmatched ')'")
		}
		return nil, p.unexpected(tok, "a throw")
	}

	p.recordDebugEvent("exit_pattern", fmt.Sprintf("items=%d", len(root.Items)))
	return root, nil
}

// patternItems parses items until EOF, '*' or ')'.
// Consecutive solo beats are collected into one SoloSequence and consecutive
// passing groups into one PassingSequence.
func (p *parser) patternItems() ([]notation.Node, error) {
	var items []notation.Node
	var solo *notation.SoloSequence
	var passing *notation.PassingSequence

	flush := func() {
		if solo != nil {
			items = append(items, solo)
			solo = nil
		}
		if passing != nil {
			items = append(items, passing)
			passing = nil
		}
	}
	addSolo := func(n notation.Node) {
		if passing != nil {
			flush()
		}
		if solo == nil {
			solo = &notation.SoloSequence{Offset: n.Pos()}
		}
		solo.Items = append(solo.Items, n)
	}

	for {
		tok := p.peek()
		switch {
		case tok.Type == lexer.EOF || tok.Type == lexer.STAR:
			flush()
			return items, nil

		case tok.Type == lexer.RPAREN:
			flush()
			return items, nil

		case tok.Type == lexer.LPAREN && p.isPaired():
			beat, err := p.soloPaired()
			if err != nil {
				return nil, err
			}
			addSolo(beat)

		case tok.Type == lexer.LPAREN:
			flush()
			group, err := p.grouped(false)
			if err != nil {
				return nil, err
			}
			items = append(items, group)

		case tok.Type == lexer.VALUE || tok.Type == lexer.LSQUARE:
			beat, err := p.soloMulti()
			if err != nil {
				return nil, err
			}
			addSolo(beat)

		case p.atLetter("RL"):
			addSolo(p.handSpec())

		case tok.Type == lexer.LANGLE:
			if solo != nil {
				flush()
			}
			group, err := p.passingGroup()
			if err != nil {
				return nil, err
			}
			if passing == nil {
				passing = &notation.PassingSequence{Offset: group.Offset}
			}
			passing.Groups = append(passing.Groups, group)

		case tok.Type == lexer.QUESTION:
			flush()
			p.advance()
			items = append(items, &notation.Wildcard{Offset: tok.Pos})

		default:
			return nil, p.unexpected(tok, "a throw")
		}
	}
}

// grouped := '(' items ')' '^' number
func (p *parser) grouped(inPassing bool) (*notation.GroupedPattern, error) {
	p.recordDebugEvent("enter_grouped", "")

	open := p.advance()
	group := &notation.GroupedPattern{Offset: open.Pos}

	var items []notation.Node
	var err error
	if inPassing {
		items, err = p.passingItems(true)
	} else {
		items, err = p.patternItems()
	}
	if err != nil {
		return nil, err
	}
	if err := p.expectClose(lexer.RPAREN, open, ")"); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, p.errorAt(open, "empty group")
	}
	group.Items = items

	if !p.at(lexer.CARET) {
		return nil, p.errorAt(p.peek(), "expected '^' and a repeat count after group").
			WithSuggestion("write (...)^2 to repeat, or (a,b) for a synchronous throw")
	}
	p.advance()

	countTok := p.peek()
	if !countTok.IsDigit() {
		return nil, p.unexpected(countTok, "a repeat count")
	}
	count := 0
	end := countTok.Pos
	for tok := p.peek(); tok.IsDigit() && tok.Pos == end; tok = p.peek() {
		count = count*10 + p.advance().Value()
		end++
		if count > 1_000_000 {
			return nil, p.errorAt(countTok, "repeat count too large")
		}
	}
	if count < 1 {
		return nil, p.errorAt(countTok, "repeat count must be at least 1")
	}
	group.Repeats = count

	p.recordDebugEvent("exit_grouped", fmt.Sprintf("repeats=%d", count))
	return group, nil
}

func (p *parser) handSpec() *notation.HandSpec {
	tok := p.advance()
	return &notation.HandSpec{Left: tok.Text == "L", Offset: tok.Pos}
}

// modifier := 'H' | 'T' | 'B' [ 'H' ] [ 'F' | 'L' ]
func (p *parser) modifier() string {
	switch {
	case p.atLetter("HT"):
		return p.advance().Text
	case p.atLetter("B"):
		mod := p.advance().Text
		if p.atLetter("H") {
			mod += p.advance().Text
		}
		if p.atLetter("FL") {
			mod += p.advance().Text
		}
		return mod
	default:
		return ""
	}
}

func (p *parser) value() (int, lexer.Token, error) {
	tok := p.peek()
	if tok.Type != lexer.VALUE {
		return 0, tok, p.unexpected(tok, "a throw value")
	}
	p.advance()
	return tok.Value(), tok, nil
}

// solo_paired := '(' solo_multi ',' solo_multi ')' [ '!' ]
func (p *parser) soloPaired() (*notation.SoloPairedThrow, error) {
	open := p.advance()
	left, err := p.soloMulti()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.COMMA) {
		return nil, p.unexpected(p.peek(), "','")
	}
	p.advance()
	right, err := p.soloMulti()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.COMMA) {
		return nil, p.errorAt(p.peek(), "a synchronous throw has exactly two hands")
	}
	if err := p.expectClose(lexer.RPAREN, open, ")"); err != nil {
		return nil, err
	}

	beat := &notation.SoloPairedThrow{Left: left, Right: right, Offset: open.Pos}
	if p.at(lexer.BANG) {
		p.advance()
		beat.Bang = true
	}
	return beat, nil
}

// solo_multi := solo_single | '[' solo_single+ ']'
func (p *parser) soloMulti() (*notation.SoloMultiThrow, error) {
	tok := p.peek()
	multi := &notation.SoloMultiThrow{Offset: tok.Pos}

	if tok.Type != lexer.LSQUARE {
		throw, err := p.soloSingle()
		if err != nil {
			return nil, err
		}
		multi.Throws = append(multi.Throws, throw)
		return multi, nil
	}

	open := p.advance()
	for !p.at(lexer.RSQUARE) {
		if p.at(lexer.EOF) {
			return nil, p.expectClose(lexer.RSQUARE, open, "]")
		}
		if p.at(lexer.LSQUARE) {
			return nil, p.errorAt(p.peek(), "multiplexes cannot be nested")
		}
		throw, err := p.soloSingle()
		if err != nil {
			return nil, err
		}
		multi.Throws = append(multi.Throws, throw)
	}
	p.advance()

	if len(multi.Throws) == 0 {
		return nil, p.errorAt(open, "empty multiplex")
	}
	return multi, nil
}

// solo_single := value [ 'x' ] [ modifier ]
func (p *parser) soloSingle() (*notation.SoloSingleThrow, error) {
	v, tok, err := p.value()
	if err != nil {
		return nil, err
	}
	throw := &notation.SoloSingleThrow{Value: v, Offset: tok.Pos}
	if p.at(lexer.CROSS) {
		p.advance()
		throw.Crossing = true
	}
	if p.at(lexer.PASS) {
		return nil, p.errorAt(p.peek(), "passes are only allowed inside a passing group").
			WithSuggestion("write <3p|3p> for a two-juggler pattern")
	}
	throw.Modifier = p.modifier()
	return throw, nil
}

// passing_group := '<' juggler_part ( '|' juggler_part )+ '>'
func (p *parser) passingGroup() (*notation.PassingGroup, error) {
	p.recordDebugEvent("enter_passingGroup", "")

	open := p.advance()
	group := &notation.PassingGroup{Offset: open.Pos}

	for {
		part, err := p.passingThrows()
		if err != nil {
			return nil, err
		}
		group.Parts = append(group.Parts, part)

		if p.at(lexer.PIPE) {
			p.advance()
			continue
		}
		if err := p.expectClose(lexer.RANGLE, open, ">"); err != nil {
			return nil, err
		}
		break
	}

	if len(group.Parts) < 2 {
		return nil, p.errorAt(open, "a passing group needs at least two jugglers").
			WithSuggestion("separate each juggler's throws with '|'")
	}

	p.recordDebugEvent("exit_passingGroup", fmt.Sprintf("jugglers=%d", len(group.Parts)))
	return group, nil
}

// juggler_part := ( pass_beat | hand_spec | pass_grouped )+
func (p *parser) passingThrows() (*notation.PassingThrows, error) {
	start := p.peek()
	items, err := p.passingItems(false)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, p.unexpected(p.peek(), "a throw")
	}
	return &notation.PassingThrows{Items: items, Offset: start.Pos}, nil
}

// passingItems parses one juggler's beats up to '|', '>' or, inside a
// group, ')'.
func (p *parser) passingItems(inGroup bool) ([]notation.Node, error) {
	var items []notation.Node
	for {
		tok := p.peek()
		switch {
		case tok.Type == lexer.PIPE || tok.Type == lexer.RANGLE || tok.Type == lexer.EOF:
			return items, nil

		case tok.Type == lexer.RPAREN:
			if inGroup {
				return items, nil
			}
			return nil, p.errorAt(tok, "unmatched ')'")

		case tok.Type == lexer.LPAREN && p.isPaired():
			beat, err := p.passPaired()
			if err != nil {
				return nil, err
			}
			items = append(items, beat)

		case tok.Type == lexer.LPAREN:
			if inGroup {
				return nil, p.errorAt(tok, "groups cannot be nested inside a juggler's part")
			}
			group, err := p.grouped(true)
			if err != nil {
				return nil, err
			}
			items = append(items, group)

		case tok.Type == lexer.VALUE || tok.Type == lexer.LSQUARE:
			beat, err := p.passMulti()
			if err != nil {
				return nil, err
			}
			items = append(items, beat)

		case p.atLetter("RL"):
			items = append(items, p.handSpec())

		case tok.Type == lexer.LANGLE:
			return nil, p.errorAt(tok, "passing groups cannot be nested")

		default:
			return nil, p.unexpected(tok, "a throw")
		}
	}
}

// pass_paired := '(' pass_multi ',' pass_multi ')' [ '!' ]
func (p *parser) passPaired() (*notation.PassingPairedThrow, error) {
	open := p.advance()
	left, err := p.passMulti()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.COMMA) {
		return nil, p.unexpected(p.peek(), "','")
	}
	p.advance()
	right, err := p.passMulti()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.COMMA) {
		return nil, p.errorAt(p.peek(), "a synchronous throw has exactly two hands")
	}
	if err := p.expectClose(lexer.RPAREN, open, ")"); err != nil {
		return nil, err
	}

	beat := &notation.PassingPairedThrow{Left: left, Right: right, Offset: open.Pos}
	if p.at(lexer.BANG) {
		p.advance()
		beat.Bang = true
	}
	return beat, nil
}

// pass_multi := pass_single | '[' pass_single+ ']'
func (p *parser) passMulti() (*notation.PassingMultiThrow, error) {
	tok := p.peek()
	multi := &notation.PassingMultiThrow{Offset: tok.Pos}

	if tok.Type != lexer.LSQUARE {
		throw, err := p.passSingle()
		if err != nil {
			return nil, err
		}
		multi.Throws = append(multi.Throws, throw)
		return multi, nil
	}

	open := p.advance()
	for !p.at(lexer.RSQUARE) {
		if p.at(lexer.EOF) {
			return nil, p.expectClose(lexer.RSQUARE, open, "]")
		}
		if p.at(lexer.LSQUARE) {
			return nil, p.errorAt(p.peek(), "multiplexes cannot be nested")
		}
		throw, err := p.passSingle()
		if err != nil {
			return nil, err
		}
		multi.Throws = append(multi.Throws, throw)
	}
	p.advance()

	if len(multi.Throws) == 0 {
		return nil, p.errorAt(open, "empty multiplex")
	}
	return multi, nil
}

// pass_single := value [ 'x' ] [ 'p' [ digit ] ] [ 'x' ] [ modifier ]
func (p *parser) passSingle() (*notation.PassingSingleThrow, error) {
	v, tok, err := p.value()
	if err != nil {
		return nil, err
	}
	throw := &notation.PassingSingleThrow{Value: v, Offset: tok.Pos}

	if p.at(lexer.CROSS) {
		p.advance()
		throw.Crossing = true
	}
	if p.at(lexer.PASS) {
		pass := p.advance()
		throw.Pass = true
		// the destination digit must touch the 'p'; "3p 1" is a pass and a 1
		if next := p.peek(); next.IsDigit() && next.Value() > 0 && next.Pos == pass.Pos+1 {
			p.advance()
			throw.DestJuggler = next.Value()
		}
		if p.at(lexer.CROSS) {
			if throw.Crossing {
				return nil, p.errorAt(p.peek(), "duplicate 'x'")
			}
			p.advance()
			throw.Crossing = true
		}
	}
	throw.Modifier = p.modifier()
	return throw, nil
}
