package notation

// Walk visits node and its descendants depth-first, left to right. If fn
// returns false the children of that node are skipped.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Walk(child, fn)
	}
}

// Children returns the direct children of node in source order.
func Children(node Node) []Node {
	switch n := node.(type) {
	case *Pattern:
		return n.Items
	case *GroupedPattern:
		return n.Items
	case *SoloSequence:
		return n.Items
	case *SoloPairedThrow:
		return []Node{n.Left, n.Right}
	case *SoloMultiThrow:
		out := make([]Node, len(n.Throws))
		for i, t := range n.Throws {
			out[i] = t
		}
		return out
	case *PassingSequence:
		out := make([]Node, len(n.Groups))
		for i, g := range n.Groups {
			out[i] = g
		}
		return out
	case *PassingGroup:
		out := make([]Node, len(n.Parts))
		for i, p := range n.Parts {
			out[i] = p
		}
		return out
	case *PassingThrows:
		return n.Items
	case *PassingPairedThrow:
		return []Node{n.Left, n.Right}
	case *PassingMultiThrow:
		out := make([]Node, len(n.Throws))
		for i, t := range n.Throws {
			out[i] = t
		}
		return out
	default:
		return nil
	}
}

// CountKind returns how many nodes of kind k appear under node (inclusive).
func CountKind(node Node, k Kind) int {
	count := 0
	Walk(node, func(n Node) bool {
		if n.Kind() == k {
			count++
		}
		return true
	})
	return count
}
