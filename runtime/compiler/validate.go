package compiler

import (
	"github.com/aledsdavies/jugglec/core/diag"
	"github.com/aledsdavies/jugglec/core/matrixfmt"
)

// checkLandings verifies that every hand catches, on each beat of the
// period, exactly as many objects as it throws. Zero throws are ignored.
func checkLandings(m *matrixfmt.Matrix, period int) error {
	type key struct {
		juggler int
		hand    matrixfmt.Hand
		beat    int
	}
	out := make(map[key]int)
	in := make(map[key]int)

	m.Each(func(t *matrixfmt.Throw) {
		if t.Beat >= period || t.Value == 0 {
			return
		}
		out[key{t.SourceJuggler, t.SourceHand, t.Beat}]++
		in[key{t.DestJuggler, t.DestHand, t.TargetBeat % period}]++
	})

	for j := 0; j < m.Jugglers; j++ {
		for _, h := range []matrixfmt.Hand{matrixfmt.Left, matrixfmt.Right} {
			for beat := 0; beat < period; beat++ {
				k := key{j, h, beat}
				if out[k] == in[k] {
					continue
				}
				return diag.Userf(diag.StageCompile,
					"objects collide: juggler %d's %s hand catches %d on beat %d but throws %d",
					j+1, handName(h), in[k], beat+1, out[k]).
					WithSuggestion("check that the throws form a valid siteswap")
			}
		}
	}
	return nil
}

func handName(h matrixfmt.Hand) string {
	if h == matrixfmt.Left {
		return "left"
	}
	return "right"
}
