package compiler

import (
	"fmt"

	"github.com/aledsdavies/jugglec/core/diag"
	"github.com/aledsdavies/jugglec/core/invariant"
	"github.com/aledsdavies/jugglec/core/notation"
)

// anode is a node of the annotated tree. Grouped repeats are unrolled, so
// every multi-throw leaf occurs once and knows its absolute beat.
type anode struct {
	src      notation.Node
	beats    int
	throwSum int
	vanilla  bool // only plain alternating async single throws below
	children []*anode

	// Set on multi-throw leaves only.
	leaf    bool
	juggler int
	beat    int
	left    bool
	sync    bool
	throws  []athrow
}

// athrow is one throw of a multi-throw leaf.
type athrow struct {
	value       int
	crossing    bool
	destJuggler int // 0-based, already resolved
	modifier    string
	offset      int
}

// annotation is the output of the first pass.
type annotation struct {
	root         *anode
	period       int
	throwSum     int
	maxThrow     int
	maxOccupancy int
	jugglers     int
	switchRepeat bool
	nodes        int
}

// handContext carries each juggler's async hand parity through the walk.
// The hand at beat b is right when (b + parity) is even.
type handContext struct {
	parity []int
}

func newHandContext(jugglers int) *handContext {
	return &handContext{parity: make([]int, jugglers)}
}

func (h *handContext) leftAt(juggler, beat int) bool {
	return (beat+h.parity[juggler])%2 == 1
}

// force makes the hand at beat the requested one from beat onward.
func (h *handContext) force(juggler, beat int, left bool) {
	if left {
		h.parity[juggler] = (beat + 1) % 2
	} else {
		h.parity[juggler] = beat % 2
	}
}

type annotator struct {
	source       string
	hands        *handContext
	jugglers     int
	maxThrow     int
	maxOccupancy int
	nodes        int
	trace        func(event, context string)
}

// annotate runs the first pass over tree.
func annotate(tree *notation.Pattern, source string, trace func(event, context string)) (*annotation, error) {
	jugglers, err := scan(tree, source)
	if err != nil {
		return nil, err
	}

	a := &annotator{
		source:   source,
		hands:    newHandContext(jugglers),
		jugglers: jugglers,
		trace:    trace,
	}

	root, err := a.items(tree, tree.Items, 0)
	if err != nil {
		return nil, err
	}

	if root.beats == 0 {
		return nil, diag.UserAt(diag.StageCompile, source, tree.Offset, "pattern has no beats").
			WithSuggestion("a hand specifier (R or L) must be followed by a throw")
	}
	if root.throwSum%root.beats != 0 {
		return nil, diag.Userf(diag.StageCompile, "bad average: throw values sum to %d over %d beats", root.throwSum, root.beats).
			WithSuggestion("the sum of the throws must be a multiple of the period; try %s", averageHint(root.throwSum, root.beats))
	}
	if root.throwSum == 0 {
		return nil, diag.Userf(diag.StageCompile, "pattern has no objects")
	}

	ann := &annotation{
		root:         root,
		period:       root.beats,
		throwSum:     root.throwSum,
		maxThrow:     a.maxThrow,
		maxOccupancy: a.maxOccupancy,
		jugglers:     jugglers,
		nodes:        a.nodes,
	}

	if tree.SwitchRepeat || (root.vanilla && root.beats%2 == 1) {
		ann.switchRepeat = true
		ann.period *= 2
		ann.throwSum *= 2
	}

	a.trace("annotated", fmt.Sprintf("period=%d throwSum=%d switchRepeat=%v", ann.period, ann.throwSum, ann.switchRepeat))
	return ann, nil
}

func averageHint(sum, beats int) string {
	return fmt.Sprintf("changing one throw by %d or %d", -(sum % beats), beats-sum%beats)
}

// scan checks the shape of the whole tree before annotation: wildcards,
// mixing solo and passing notation, and a consistent juggler count.
func scan(tree *notation.Pattern, source string) (int, error) {
	var firstSolo, firstPassing notation.Node
	var wildcard *notation.Wildcard
	jugglers := 0
	var groupErr error

	notation.Walk(tree, func(n notation.Node) bool {
		switch n := n.(type) {
		case *notation.Wildcard:
			if wildcard == nil {
				wildcard = n
			}
		case *notation.SoloSequence:
			if firstSolo == nil {
				firstSolo = n
			}
			return false
		case *notation.PassingSequence:
			if firstPassing == nil {
				firstPassing = n
			}
		case *notation.PassingGroup:
			if jugglers == 0 {
				jugglers = len(n.Parts)
			} else if len(n.Parts) != jugglers && groupErr == nil {
				groupErr = diag.UserAt(diag.StageCompile, source, n.Offset,
					"passing group has %d jugglers, expected %d", len(n.Parts), jugglers)
			}
			return false
		}
		return true
	})

	if wildcard != nil {
		return 0, diag.Internalf(diag.StageCompile, "wildcard transitions are not implemented (at position %d)", wildcard.Offset+1)
	}
	if firstSolo != nil && firstPassing != nil {
		second := firstPassing
		if firstPassing.Pos() < firstSolo.Pos() {
			second = firstSolo
		}
		return 0, diag.UserAt(diag.StageCompile, source, second.Pos(),
			"a pattern cannot mix solo throws with passing groups").
			WithSuggestion("write every beat as a <...|...> group")
	}
	if groupErr != nil {
		return 0, groupErr
	}
	if jugglers == 0 {
		jugglers = 1
	}
	return jugglers, nil
}

// items annotates pattern-level items starting at beat.
func (a *annotator) items(src notation.Node, items []notation.Node, beat int) (*anode, error) {
	node := &anode{src: src, vanilla: true}
	a.nodes++

	for _, item := range items {
		var child *anode
		var err error

		switch n := item.(type) {
		case *notation.SoloSequence:
			child, err = a.soloSequence(n, beat)
		case *notation.PassingSequence:
			child, err = a.passingSequence(n, beat)
		case *notation.GroupedPattern:
			child, err = a.grouped(n, beat, func(b int) (*anode, error) {
				return a.items(n, n.Items, b)
			})
		default:
			invariant.Invariant(false, "unexpected pattern item %s", item.Kind())
		}
		if err != nil {
			return nil, err
		}
		node.add(child)
		beat += child.beats
	}
	return node, nil
}

// Limits on unrolled repeats. Nested counts multiply, so each level's own
// cap does not bound the tree.
const (
	maxUnrolledBeats = 1 << 16
	maxUnrolledNodes = 1 << 20
)

// grouped unrolls a repeat, annotating the body once per repetition.
func (a *annotator) grouped(n *notation.GroupedPattern, beat int, body func(beat int) (*anode, error)) (*anode, error) {
	invariant.Positive(n.Repeats, "repeats")
	node := &anode{src: n, vanilla: true}
	a.nodes++
	for i := 0; i < n.Repeats; i++ {
		switch {
		case beat > maxUnrolledBeats:
			return nil, diag.UserAt(diag.StageCompile, a.source, n.Offset,
				"repeats unroll to more than %d beats", maxUnrolledBeats).
				WithSuggestion("lower the repeat counts of nested groups")
		case a.nodes > maxUnrolledNodes:
			return nil, diag.UserAt(diag.StageCompile, a.source, n.Offset,
				"repeats unroll to more than %d nodes", maxUnrolledNodes).
				WithSuggestion("lower the repeat counts of nested groups")
		}
		child, err := body(beat)
		if err != nil {
			return nil, err
		}
		node.add(child)
		beat += child.beats
	}
	return node, nil
}

func (n *anode) add(child *anode) {
	n.children = append(n.children, child)
	n.beats += child.beats
	n.throwSum += child.throwSum
	n.vanilla = n.vanilla && child.vanilla
}

func (a *annotator) soloSequence(n *notation.SoloSequence, beat int) (*anode, error) {
	node := &anode{src: n, vanilla: true}
	a.nodes++

	for _, item := range n.Items {
		switch it := item.(type) {
		case *notation.HandSpec:
			a.hands.force(0, beat, it.Left)
			if beat > 0 {
				node.vanilla = false
			}
		case *notation.SoloMultiThrow:
			leaf, err := a.leaf(it, 0, beat, a.hands.leftAt(0, beat), false, soloThrows(it))
			if err != nil {
				return nil, err
			}
			node.add(leaf)
			beat++
		case *notation.SoloPairedThrow:
			paired, err := a.paired(it, 0, beat, it.Bang,
				func(b int) (*anode, error) { return a.leaf(it.Left, 0, b, true, true, soloThrows(it.Left)) },
				func(b int) (*anode, error) { return a.leaf(it.Right, 0, b, false, true, soloThrows(it.Right)) })
			if err != nil {
				return nil, err
			}
			node.add(paired)
			beat += paired.beats
		default:
			invariant.Invariant(false, "unexpected solo item %s", item.Kind())
		}
	}
	return node, nil
}

// paired annotates a synchronous beat: both hands throw on beat, which
// lasts two beats or one with '!'.
func (a *annotator) paired(src notation.Node, juggler, beat int, bang bool, left, right func(int) (*anode, error)) (*anode, error) {
	node := &anode{src: src}
	a.nodes++

	l, err := left(beat)
	if err != nil {
		return nil, err
	}
	r, err := right(beat)
	if err != nil {
		return nil, err
	}
	node.children = []*anode{l, r}
	node.throwSum = l.throwSum + r.throwSum
	node.beats = 2
	if bang {
		node.beats = 1
	}
	return node, nil
}

func (a *annotator) passingSequence(n *notation.PassingSequence, beat int) (*anode, error) {
	node := &anode{src: n, vanilla: true}
	a.nodes++

	for _, group := range n.Groups {
		gnode := &anode{src: group, vanilla: true}
		a.nodes++

		beats := -1
		for j, part := range group.Parts {
			pnode, err := a.passingItems(part, part.Items, j, beat)
			if err != nil {
				return nil, err
			}
			if beats >= 0 && pnode.beats != beats {
				return nil, diag.UserAt(diag.StageCompile, a.source, part.Offset,
					"juggler %d's throws span %d beats, but juggler 1's span %d", j+1, pnode.beats, beats).
					WithSuggestion("every juggler in a passing group must throw for the same number of beats")
			}
			beats = pnode.beats
			gnode.children = append(gnode.children, pnode)
			gnode.throwSum += pnode.throwSum
			gnode.vanilla = gnode.vanilla && pnode.vanilla
		}
		gnode.beats = beats

		node.add(gnode)
		beat += beats
	}
	return node, nil
}

func (a *annotator) passingItems(src notation.Node, items []notation.Node, juggler, beat int) (*anode, error) {
	node := &anode{src: src, vanilla: true}
	a.nodes++

	for _, item := range items {
		switch it := item.(type) {
		case *notation.HandSpec:
			a.hands.force(juggler, beat, it.Left)
			if beat > 0 {
				node.vanilla = false
			}
		case *notation.PassingMultiThrow:
			throws, err := a.passingThrows(it, juggler)
			if err != nil {
				return nil, err
			}
			leaf, err := a.leaf(it, juggler, beat, a.hands.leftAt(juggler, beat), false, throws)
			if err != nil {
				return nil, err
			}
			node.add(leaf)
			beat++
		case *notation.PassingPairedThrow:
			left, err := a.passingThrows(it.Left, juggler)
			if err != nil {
				return nil, err
			}
			right, err := a.passingThrows(it.Right, juggler)
			if err != nil {
				return nil, err
			}
			paired, err := a.paired(it, juggler, beat, it.Bang,
				func(b int) (*anode, error) { return a.leaf(it.Left, juggler, b, true, true, left) },
				func(b int) (*anode, error) { return a.leaf(it.Right, juggler, b, false, true, right) })
			if err != nil {
				return nil, err
			}
			node.add(paired)
			beat += paired.beats
		case *notation.GroupedPattern:
			g, err := a.grouped(it, beat, func(b int) (*anode, error) {
				return a.passingItems(it, it.Items, juggler, b)
			})
			if err != nil {
				return nil, err
			}
			node.add(g)
			beat += g.beats
		default:
			invariant.Invariant(false, "unexpected passing item %s", item.Kind())
		}
	}
	return node, nil
}

func soloThrows(n *notation.SoloMultiThrow) []athrow {
	out := make([]athrow, len(n.Throws))
	for i, t := range n.Throws {
		out[i] = athrow{
			value:    t.Value,
			crossing: t.Crossing,
			modifier: t.Modifier,
			offset:   t.Offset,
		}
	}
	return out
}

// passingThrows resolves pass destinations; destJuggler is filled in
// relative to juggler.
func (a *annotator) passingThrows(n *notation.PassingMultiThrow, juggler int) ([]athrow, error) {
	out := make([]athrow, len(n.Throws))
	for i, t := range n.Throws {
		dest := juggler
		if t.Pass {
			switch {
			case t.DestJuggler == 0:
				dest = (juggler + 1) % a.jugglers
			case t.DestJuggler > a.jugglers:
				return nil, diag.UserAt(diag.StageCompile, a.source, t.Offset,
					"pass to juggler %d, but the pattern has %d jugglers", t.DestJuggler, a.jugglers)
			default:
				dest = t.DestJuggler - 1
			}
		}
		out[i] = athrow{
			value:       t.Value,
			crossing:    t.Crossing,
			destJuggler: dest,
			modifier:    t.Modifier,
			offset:      t.Offset,
		}
	}
	return out, nil
}

// leaf annotates one hand's throws on one beat. Solo throws are passed with
// destJuggler already set to the thrower.
func (a *annotator) leaf(src notation.Node, juggler, beat int, left, sync bool, throws []athrow) (*anode, error) {
	invariant.Precondition(len(throws) > 0, "multi-throw without throws")
	a.nodes++

	node := &anode{
		src:     src,
		beats:   1,
		leaf:    true,
		juggler: juggler,
		beat:    beat,
		left:    left,
		sync:    sync,
		throws:  throws,
		vanilla: !sync && len(throws) == 1,
	}
	for i := range throws {
		t := &throws[i]
		if _, isSolo := src.(*notation.SoloMultiThrow); isSolo {
			t.destJuggler = juggler
		}
		node.throwSum += t.value
		if t.value > a.maxThrow {
			a.maxThrow = t.value
		}
		if t.crossing || t.modifier != "" {
			node.vanilla = false
		}
	}
	if len(throws) > a.maxOccupancy {
		a.maxOccupancy = len(throws)
	}
	return node, nil
}
