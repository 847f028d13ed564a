package hss

import (
	"strconv"

	"github.com/aledsdavies/jugglec/core/diag"
	"github.com/aledsdavies/jugglec/core/matrixfmt"
)

// maxJugglers is the most jugglers a synthesized pass can address.
const maxJugglers = 9

// HandAssignment places one hand of the hand pattern on a juggler.
type HandAssignment struct {
	Hand    int // 1-based hand id, numbered in order of first use
	Juggler int // 0-based
	Side    matrixfmt.Hand
}

// defaultHandSpec gives hands 1..ceil(n/2) to the right hands of jugglers
// 1..ceil(n/2) and the remaining hands to their left hands, in order.
func defaultHandSpec(n int) ([]HandAssignment, int) {
	jugglers := (n + 1) / 2
	out := make([]HandAssignment, n)
	for h := 0; h < n; h++ {
		if h < jugglers {
			out[h] = HandAssignment{Hand: h + 1, Juggler: h, Side: matrixfmt.Right}
		} else {
			out[h] = HandAssignment{Hand: h + 1, Juggler: h - jugglers, Side: matrixfmt.Left}
		}
	}
	return out, jugglers
}

// parseHandSpec reads "(l,r)(l,r)...": group i holds juggler i's left and
// right hand ids. Every hand 1..n must be assigned exactly once.
func parseHandSpec(s string, n int) ([]HandAssignment, int, error) {
	out := make([]HandAssignment, n)
	assigned := make([]bool, n)
	jugglers := 0

	i := 0
	skip := func() {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
	}
	number := func() (int, int, bool) {
		skip()
		start := i
		for i < len(s) && '0' <= s[i] && s[i] <= '9' {
			i++
		}
		if start == i {
			return 0, start, false
		}
		v, err := strconv.Atoi(s[start:i])
		if err != nil {
			return -1, start, true
		}
		return v, start, true
	}
	assign := func(hand, offset int, side matrixfmt.Hand) error {
		if hand < 1 || hand > n {
			return diag.UserAt(diag.StageHandspec, s, offset,
				"hand %d out of range: the hand pattern has %d hands", hand, n)
		}
		if assigned[hand-1] {
			return diag.UserAt(diag.StageHandspec, s, offset, "hand %d is assigned twice", hand)
		}
		assigned[hand-1] = true
		out[hand-1] = HandAssignment{Hand: hand, Juggler: jugglers, Side: side}
		return nil
	}

	for skip(); i < len(s); skip() {
		open := i
		if s[i] != '(' {
			return nil, 0, diag.UserAt(diag.StageHandspec, s, i, "expected '(' in handspec, got %q", s[i])
		}
		i++

		left, leftAt, hasLeft := number()
		skip()
		if i >= len(s) {
			return nil, 0, diag.UserAt(diag.StageHandspec, s, open, "unterminated handspec group")
		}
		if s[i] != ',' {
			return nil, 0, diag.UserAt(diag.StageHandspec, s, i, "expected ',' in handspec, got %q", s[i])
		}
		i++
		right, rightAt, hasRight := number()
		skip()
		if i >= len(s) {
			return nil, 0, diag.UserAt(diag.StageHandspec, s, open, "unterminated handspec group")
		}
		if s[i] != ')' {
			return nil, 0, diag.UserAt(diag.StageHandspec, s, i, "expected ')' in handspec, got %q", s[i])
		}
		i++

		if !hasLeft && !hasRight {
			return nil, 0, diag.UserAt(diag.StageHandspec, s, open, "juggler %d has no hands", jugglers+1)
		}
		if hasLeft {
			if err := assign(left, leftAt, matrixfmt.Left); err != nil {
				return nil, 0, err
			}
		}
		if hasRight {
			if err := assign(right, rightAt, matrixfmt.Right); err != nil {
				return nil, 0, err
			}
		}
		jugglers++
	}

	for h, ok := range assigned {
		if !ok {
			return nil, 0, diag.Userf(diag.StageHandspec, "hand %d is not assigned to a juggler", h+1).
				WithSuggestion("the hand pattern has %d hands; list each once", n)
		}
	}
	return out, jugglers, nil
}
