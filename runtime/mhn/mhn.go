// Package mhn parses the hand and body movement strings of a pattern
// configuration into per-juggler path specs.
//
// Both strings list jugglers separated by '|' or '!', and each juggler's
// beats separated by '.'. A beat is a run of tokens:
//
//	(x,y,z)  a coordinate; missing components default
//	-        a placeholder interpolated at render time
//	T        the throw instant (hands only, first token)
//	C        the catch instant, marking the previous token
//
// "(...)^N" repeats its contents N times. The characters "<>{}" are
// decoration and ignored.
package mhn

import (
	"strconv"
	"strings"

	"github.com/aledsdavies/jugglec/core/diag"
	"github.com/aledsdavies/jugglec/core/matrixfmt"
)

// DefaultBodyZ is the body height used when a body coordinate omits z.
const DefaultBodyZ = 100.0

type kind uint8

const (
	hands kind = iota
	body
)

func (k kind) stage() diag.Stage {
	if k == hands {
		return diag.StageHands
	}
	return diag.StageBody
}

// ParseHands parses a hand movement string. Coordinates are written
// (x,z,y) and stored as (x,y,z). Every beat needs at least two tokens, a
// concrete throw position first and a concrete catch position.
func ParseHands(s string) ([]matrixfmt.PathSpec, error) {
	return parse(s, hands)
}

// ParseBody parses a body movement string. Coordinates are (x,y,z) with z
// defaulting to DefaultBodyZ; an empty beat is a single placeholder.
func ParseBody(s string) ([]matrixfmt.PathSpec, error) {
	return parse(s, body)
}

func parse(s string, k kind) ([]matrixfmt.PathSpec, error) {
	expanded, err := expandRepeats(s, k.stage())
	if err != nil {
		return nil, err
	}
	p := &parser{input: expanded, kind: k}

	var specs []matrixfmt.PathSpec
	start, depth := 0, 0
	for i := 0; i <= len(expanded); i++ {
		if i < len(expanded) {
			depth = nesting(depth, expanded[i])
			if depth > 0 || (expanded[i] != '|' && expanded[i] != '!') {
				continue
			}
		}
		spec, err := p.section(start, i, len(specs))
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
		start = i + 1
	}
	return specs, nil
}

type parser struct {
	input string
	kind  kind
}

func (p *parser) errorf(offset int, format string, args ...interface{}) *diag.UserError {
	return diag.UserAt(p.kind.stage(), p.input, offset, format, args...)
}

// section parses input[start:end] as one juggler's beats.
func (p *parser) section(start, end, juggler int) (matrixfmt.PathSpec, error) {
	spec := matrixfmt.PathSpec{Juggler: juggler}

	beatStart, depth := start, 0
	for i := start; i <= end; i++ {
		if i < end {
			// '.' inside a coordinate is a decimal point
			depth = nesting(depth, p.input[i])
			if depth > 0 || p.input[i] != '.' {
				continue
			}
		}
		// a trailing '.' ends the last beat instead of opening an empty one
		if i == end && len(spec.Beats) > 0 && strings.TrimSpace(p.strip(beatStart, i)) == "" {
			break
		}
		beat, err := p.beat(beatStart, i)
		if err != nil {
			return spec, err
		}
		spec.Beats = append(spec.Beats, beat)
		beatStart = i + 1
	}
	return spec, nil
}

// nesting returns the parenthesis depth after ch. An unmatched ')' does not
// go below zero; beat reports it.
func nesting(depth int, ch byte) int {
	switch ch {
	case '(':
		return depth + 1
	case ')':
		if depth > 0 {
			return depth - 1
		}
	}
	return depth
}

// strip returns input[start:end] with decoration characters blanked.
func (p *parser) strip(start, end int) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune("<>{}", r) {
			return ' '
		}
		return r
	}, p.input[start:end])
}

func (p *parser) beat(start, end int) (matrixfmt.PathBeat, error) {
	beat := matrixfmt.PathBeat{CatchIndex: -1}
	seenThrow := false
	text := p.strip(start, end)

	for i := 0; i < len(text); i++ {
		at := start + i
		switch ch := text[i]; {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
		case ch == '(':
			closing := strings.IndexByte(text[i:], ')')
			if closing < 0 {
				return beat, p.errorf(at, "unterminated '('")
			}
			c, err := p.coordinate(text[i+1:i+closing], at+1)
			if err != nil {
				return beat, err
			}
			beat.Coords = append(beat.Coords, c)
			i += closing
		case ch == '-':
			beat.Coords = append(beat.Coords, nil)
		case (ch == 'T' || ch == 't') && p.kind == hands:
			if seenThrow {
				return beat, p.errorf(at, "duplicate throw marker")
			}
			if len(beat.Coords) > 0 {
				return beat, p.errorf(at, "throw marker must be the first token of a beat")
			}
			seenThrow = true
		case ch == 'C' || ch == 'c':
			if beat.CatchIndex >= 0 {
				return beat, p.errorf(at, "duplicate catch marker")
			}
			if len(beat.Coords) == 0 {
				return beat, p.errorf(at, "catch marker before any coordinate")
			}
			beat.CatchIndex = len(beat.Coords) - 1
		default:
			return beat, p.errorf(at, "unexpected character %q", ch)
		}
	}

	if p.kind == body && len(beat.Coords) == 0 {
		beat.Coords = []*matrixfmt.Coordinate{nil}
	}
	if beat.CatchIndex < 0 {
		beat.CatchIndex = len(beat.Coords) - 1
	}

	if p.kind == hands {
		switch {
		case len(beat.Coords) < 2:
			return beat, p.errorf(start, "too few coordinates: a hand beat needs at least 2, got %d", len(beat.Coords))
		case beat.Coords[0] == nil:
			return beat, p.errorf(start, "missing throw coordinate: the first token must be a position")
		case beat.Coords[beat.CatchIndex] == nil:
			return beat, p.errorf(start, "missing catch coordinate: token %d is a placeholder", beat.CatchIndex+1)
		}
	}
	return beat, nil
}

// coordinate parses the inside of "(...)"; offset is where it starts.
func (p *parser) coordinate(s string, offset int) (*matrixfmt.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) > 3 {
		return nil, p.errorf(offset, "too many components in coordinate (%s)", s)
	}

	var v [3]float64
	pos := offset
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, p.errorf(pos, "malformed number %q", strings.TrimSpace(part))
		}
		v[i] = f
		pos += len(part) + 1
	}

	if p.kind == hands {
		// written (x,z,y)
		return &matrixfmt.Coordinate{X: v[0], Y: v[2], Z: v[1]}, nil
	}
	c := &matrixfmt.Coordinate{X: v[0], Y: v[1], Z: DefaultBodyZ}
	if len(parts) == 3 {
		c.Z = v[2]
	}
	return c, nil
}
