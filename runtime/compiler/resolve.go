package compiler

import "github.com/aledsdavies/jugglec/core/matrixfmt"

// resolve settles every Unresolved throw in m and returns how many it
// changed. A same-hand 2 is a throw when the hand throws anything nonzero
// on the next beat (it must be empty to keep holding), otherwise a hold.
// Lookahead past the matrix wraps back one period. Running resolve twice
// changes nothing the second time.
func resolve(m *matrixfmt.Matrix, period int) int {
	resolved := 0
	m.Each(func(t *matrixfmt.Throw) {
		if t.Mod.Kind != matrixfmt.Unresolved {
			return
		}
		next := t.Beat + 1
		if next >= m.Indexes {
			next -= period
		}

		kind := matrixfmt.Hold
		if next >= 0 {
			for _, n := range m.Throws(t.SourceJuggler, t.SourceHand, next) {
				if n.TargetBeat != next {
					kind = matrixfmt.Thrown
					break
				}
			}
		}
		t.Mod.Kind = kind
		resolved++
	})
	return resolved
}
