package hss

import (
	"github.com/aledsdavies/jugglec/core/diag"
)

// objectThrow is one object thrown on a beat of the object pattern.
type objectThrow struct {
	value  int
	bounce string // "", "B", "BF", "BL", "BH", "BHF" or "BHL"
	offset int
}

// objectBeat is one beat of the object pattern; more than one throw is a
// multiplex.
type objectBeat struct {
	throws []objectThrow
	offset int
}

func (b objectBeat) values() []int {
	out := make([]int, len(b.throws))
	for i, t := range b.throws {
		out[i] = t.value
	}
	return out
}

// 'p' and 'x' are pass and crossing markers in the synthesized notation, so
// 25 and 33 have no letter.
func objectValue(ch byte) (int, bool) {
	switch {
	case '0' <= ch && ch <= '9':
		return int(ch - '0'), true
	case ch == 'p' || ch == 'x':
		return 0, false
	case 'a' <= ch && ch <= 'z':
		return int(ch-'a') + 10, true
	}
	return 0, false
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// parseObjects reads an object pattern: throw values 0-9 and a-z, "[...]"
// multiplexes and bounce suffixes on each throw.
func parseObjects(s string) ([]objectBeat, error) {
	var beats []objectBeat
	multiplex := -1 // offset of the open '[', -1 outside a multiplex
	canBounce := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case isSpace(ch):
			canBounce = false
		case ch == '[':
			if multiplex >= 0 {
				return nil, diag.UserAt(diag.StageHSS, s, i, "nested multiplex in object pattern")
			}
			multiplex = i
			beats = append(beats, objectBeat{offset: i})
			canBounce = false
		case ch == ']':
			if multiplex < 0 {
				return nil, diag.UserAt(diag.StageHSS, s, i, "unexpected ']' in object pattern")
			}
			if len(beats[len(beats)-1].throws) == 0 {
				return nil, diag.UserAt(diag.StageHSS, s, multiplex, "empty multiplex in object pattern")
			}
			multiplex = -1
			canBounce = false
		case ch == 'B':
			if !canBounce {
				return nil, diag.UserAt(diag.StageHSS, s, i, "bounce modifier must follow a throw value")
			}
			j := i + 1
			if j < len(s) && s[j] == 'H' {
				j++
			}
			if j < len(s) && (s[j] == 'F' || s[j] == 'L') {
				j++
			}
			beat := &beats[len(beats)-1]
			beat.throws[len(beat.throws)-1].bounce = s[i:j]
			i = j - 1
			canBounce = false
		default:
			v, ok := objectValue(ch)
			if !ok {
				return nil, diag.UserAt(diag.StageHSS, s, i, "unexpected character %q in object pattern", ch)
			}
			if multiplex < 0 {
				beats = append(beats, objectBeat{offset: i})
			}
			beat := &beats[len(beats)-1]
			beat.throws = append(beat.throws, objectThrow{value: v, offset: i})
			canBounce = true
		}
	}

	if multiplex >= 0 {
		return nil, diag.UserAt(diag.StageHSS, s, multiplex, "unterminated multiplex in object pattern")
	}
	if len(beats) == 0 {
		return nil, diag.Userf(diag.StageHSS, "empty object pattern")
	}
	return beats, nil
}

// parseHands reads a hand pattern: one digit per beat.
func parseHands(s string) (values, offsets []int, err error) {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case isSpace(ch):
		case '0' <= ch && ch <= '9':
			values = append(values, int(ch-'0'))
			offsets = append(offsets, i)
		default:
			return nil, nil, diag.UserAt(diag.StageHSS, s, i, "hand pattern accepts digits only, got %q", ch)
		}
	}
	if len(values) == 0 {
		return nil, nil, diag.Userf(diag.StageHSS, "empty hand pattern")
	}
	return values, offsets, nil
}
