package compiler

import "github.com/aledsdavies/jugglec/core/matrixfmt"

// layout fixes the dimensions emission writes into.
type layout struct {
	period      int   // beats per period, doubled when switch-repeated
	indexes     int   // beats stored, period plus lookahead
	handPeriods []int // per juggler; nil without hand paths
}

// emit produces the throws of every leaf under root, repeated every period
// from the leaf's beat plus beatOffset up to the end of the matrix. When
// switched is set, every hand is mirrored. emit does not touch any shared
// state.
func emit(root *anode, switched bool, beatOffset int, l layout) []*matrixfmt.Throw {
	var out []*matrixfmt.Throw
	var visit func(n *anode)
	visit = func(n *anode) {
		if !n.leaf {
			for _, c := range n.children {
				visit(c)
			}
			return
		}
		src := matrixfmt.HandFromLeft(n.left != switched)
		for beat := n.beat + beatOffset; beat < l.indexes; beat += l.period {
			for slot, t := range n.throws {
				out = append(out, emitThrow(n, t, src, beat, slot, l))
			}
		}
	}
	visit(root)
	return out
}

func emitThrow(n *anode, t athrow, src matrixfmt.Hand, beat, slot int, l layout) *matrixfmt.Throw {
	dest := src
	if t.value%2 == 1 {
		dest = dest.Opposite()
	}
	if t.crossing {
		dest = dest.Opposite()
	}

	return &matrixfmt.Throw{
		SourceJuggler: n.juggler,
		SourceHand:    src,
		Beat:          beat,
		Slot:          slot,
		Value:         t.value,
		DestJuggler:   t.destJuggler,
		DestHand:      dest,
		TargetBeat:    beat + t.value,
		Sync:          n.sync,
		HandsIndex:    handsIndex(n, src, beat, l),
		Mod:           modifierFor(t, n.juggler, src, dest),
	}
}

// modifierFor applies an explicit modifier, or infers one. A same-hand
// throw of 0 or 1 is a hold; a same-hand 2 depends on the next beat.
func modifierFor(t athrow, juggler int, src, dest matrixfmt.Hand) matrixfmt.Modifier {
	switch t.modifier {
	case "H":
		return matrixfmt.Modifier{Kind: matrixfmt.Hold}
	case "T":
		return matrixfmt.Modifier{Kind: matrixfmt.Thrown}
	case "":
	default:
		return matrixfmt.Modifier{Kind: matrixfmt.Thrown, Tag: t.modifier}
	}

	sameHand := t.destJuggler == juggler && dest == src
	switch {
	case sameHand && t.value <= 1:
		return matrixfmt.Modifier{Kind: matrixfmt.Hold}
	case sameHand && t.value == 2:
		return matrixfmt.Modifier{Kind: matrixfmt.Unresolved}
	default:
		return matrixfmt.Modifier{Kind: matrixfmt.Thrown}
	}
}

// handsIndex locates the throw on the juggler's hand path. The right hand
// of a synchronous beat uses the following path beat.
func handsIndex(n *anode, src matrixfmt.Hand, beat int, l layout) int {
	if l.handPeriods == nil {
		return -1
	}
	period := l.handPeriods[n.juggler%len(l.handPeriods)]
	if period <= 0 {
		return -1
	}
	if n.sync && src == matrixfmt.Right {
		beat++
	}
	return beat % period
}
