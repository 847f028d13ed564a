// Package notation defines the siteswap parse tree.
//
// Each node kind is its own Go type carrying exactly the fields meaningful to
// it. The parser guarantees well-formed child kinds (a SoloPairedThrow always
// holds two SoloMultiThrows, a PassingGroup only PassingThrows, ...); the
// compiler relies on that and does not re-check it.
package notation

import (
	"strconv"
	"strings"
)

// Kind identifies a node type.
type Kind uint8

const (
	KindPattern Kind = iota
	KindGroupedPattern
	KindSoloSequence
	KindSoloPairedThrow
	KindSoloMultiThrow
	KindSoloSingleThrow
	KindPassingSequence
	KindPassingGroup
	KindPassingThrows
	KindPassingPairedThrow
	KindPassingMultiThrow
	KindPassingSingleThrow
	KindWildcard
	KindHandSpec
)

var kindNames = [...]string{
	KindPattern:            "Pattern",
	KindGroupedPattern:     "GroupedPattern",
	KindSoloSequence:       "SoloSequence",
	KindSoloPairedThrow:    "SoloPairedThrow",
	KindSoloMultiThrow:     "SoloMultiThrow",
	KindSoloSingleThrow:    "SoloSingleThrow",
	KindPassingSequence:    "PassingSequence",
	KindPassingGroup:       "PassingGroup",
	KindPassingThrows:      "PassingThrows",
	KindPassingPairedThrow: "PassingPairedThrow",
	KindPassingMultiThrow:  "PassingMultiThrow",
	KindPassingSingleThrow: "PassingSingleThrow",
	KindWildcard:           "Wildcard",
	KindHandSpec:           "HandSpec",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Node is implemented by every tree node.
type Node interface {
	Kind() Kind
	Pos() int // byte offset of the node's first character in the source
	String() string
}

// Pattern is the root of a parsed siteswap.
type Pattern struct {
	Items        []Node // *GroupedPattern, *SoloSequence, *PassingSequence, *Wildcard
	SwitchRepeat bool   // trailing '*'
	Offset       int
}

// GroupedPattern is "(...)^n". At pattern level its items are the same kinds
// as Pattern.Items; inside a juggler's part of a passing group they are that
// part's beats.
type GroupedPattern struct {
	Items   []Node
	Repeats int
	Offset  int
}

// SoloSequence is a run of consecutive one-juggler beats.
type SoloSequence struct {
	Items  []Node // *SoloPairedThrow, *SoloMultiThrow, *HandSpec
	Offset int
}

// SoloPairedThrow is a synchronous "(left,right)" beat.
type SoloPairedThrow struct {
	Left   *SoloMultiThrow
	Right  *SoloMultiThrow
	Bang   bool // "!" suffix: the beat lasts one beat instead of two
	Offset int
}

// SoloMultiThrow is one hand's throws on one beat; more than one is a multiplex.
type SoloMultiThrow struct {
	Throws []*SoloSingleThrow
	Offset int
}

// SoloSingleThrow is a single solo throw.
type SoloSingleThrow struct {
	Value    int
	Crossing bool
	Modifier string
	Offset   int
}

// PassingSequence is a run of consecutive "<...|...>" groups.
type PassingSequence struct {
	Groups []*PassingGroup
	Offset int
}

// PassingGroup is one "<a|b|...>" group; Parts[i] belongs to juggler i+1.
type PassingGroup struct {
	Parts  []*PassingThrows
	Offset int
}

// PassingThrows is one juggler's beats inside a passing group.
type PassingThrows struct {
	Items  []Node // *PassingPairedThrow, *PassingMultiThrow, *HandSpec, *GroupedPattern
	Offset int
}

// PassingPairedThrow is a synchronous beat inside a passing group.
type PassingPairedThrow struct {
	Left   *PassingMultiThrow
	Right  *PassingMultiThrow
	Bang   bool
	Offset int
}

// PassingMultiThrow is one hand's throws on one beat of a passing pattern.
type PassingMultiThrow struct {
	Throws []*PassingSingleThrow
	Offset int
}

// PassingSingleThrow is a single throw in a passing pattern.
type PassingSingleThrow struct {
	Value       int
	Crossing    bool
	Pass        bool
	DestJuggler int // 1-based; 0 means "next juggler"
	Modifier    string
	Offset      int
}

// Wildcard is a "?" transition placeholder. It parses but does not compile.
type Wildcard struct {
	Offset int
}

// HandSpec forces the hand of the following async beat.
type HandSpec struct {
	Left   bool
	Offset int
}

func (*Pattern) Kind() Kind            { return KindPattern }
func (*GroupedPattern) Kind() Kind     { return KindGroupedPattern }
func (*SoloSequence) Kind() Kind       { return KindSoloSequence }
func (*SoloPairedThrow) Kind() Kind    { return KindSoloPairedThrow }
func (*SoloMultiThrow) Kind() Kind     { return KindSoloMultiThrow }
func (*SoloSingleThrow) Kind() Kind    { return KindSoloSingleThrow }
func (*PassingSequence) Kind() Kind    { return KindPassingSequence }
func (*PassingGroup) Kind() Kind       { return KindPassingGroup }
func (*PassingThrows) Kind() Kind      { return KindPassingThrows }
func (*PassingPairedThrow) Kind() Kind { return KindPassingPairedThrow }
func (*PassingMultiThrow) Kind() Kind  { return KindPassingMultiThrow }
func (*PassingSingleThrow) Kind() Kind { return KindPassingSingleThrow }
func (*Wildcard) Kind() Kind           { return KindWildcard }
func (*HandSpec) Kind() Kind           { return KindHandSpec }

func (n *Pattern) Pos() int            { return n.Offset }
func (n *GroupedPattern) Pos() int     { return n.Offset }
func (n *SoloSequence) Pos() int       { return n.Offset }
func (n *SoloPairedThrow) Pos() int    { return n.Offset }
func (n *SoloMultiThrow) Pos() int     { return n.Offset }
func (n *SoloSingleThrow) Pos() int    { return n.Offset }
func (n *PassingSequence) Pos() int    { return n.Offset }
func (n *PassingGroup) Pos() int       { return n.Offset }
func (n *PassingThrows) Pos() int      { return n.Offset }
func (n *PassingPairedThrow) Pos() int { return n.Offset }
func (n *PassingMultiThrow) Pos() int  { return n.Offset }
func (n *PassingSingleThrow) Pos() int { return n.Offset }
func (n *Wildcard) Pos() int           { return n.Offset }
func (n *HandSpec) Pos() int           { return n.Offset }

// ValueChar renders a throw value as a single character (10 = 'a'). Values
// whose letter is 'p' or 'x', and values past 'z', are braced: "{25}".
func ValueChar(v int) string {
	if v >= 0 && v < 10 {
		return string(rune('0' + v))
	}
	if v >= 10 && v < 36 && v != 25 && v != 33 {
		return string(rune('a' + v - 10))
	}
	return "{" + strconv.Itoa(v) + "}"
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return joinRendered(parts)
}

// joinRendered concatenates rendered nodes, inserting a space where plain
// concatenation would reparse differently: a repeat count or a bare pass
// followed by a digit.
func joinRendered(parts []string) string {
	var b strings.Builder
	prev := ""
	for _, s := range parts {
		if needsSeparator(prev, s) {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		prev = s
	}
	return b.String()
}

func needsSeparator(prev, next string) bool {
	if prev == "" || next == "" || next[0] < '0' || next[0] > '9' {
		return false
	}
	if strings.HasSuffix(prev, "p") {
		return true
	}
	i := strings.LastIndexByte(prev, '^')
	if i < 0 || i == len(prev)-1 {
		return false
	}
	for _, c := range prev[i+1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (n *Pattern) String() string {
	s := joinNodes(n.Items)
	if n.SwitchRepeat {
		s += "*"
	}
	return s
}

func (n *GroupedPattern) String() string {
	return "(" + joinNodes(n.Items) + ")^" + strconv.Itoa(n.Repeats)
}

func (n *SoloSequence) String() string { return joinNodes(n.Items) }

func (n *SoloPairedThrow) String() string {
	s := "(" + n.Left.String() + "," + n.Right.String() + ")"
	if n.Bang {
		s += "!"
	}
	return s
}

func (n *SoloMultiThrow) String() string {
	if len(n.Throws) == 1 {
		return n.Throws[0].String()
	}
	var b strings.Builder
	b.WriteString("[")
	for _, t := range n.Throws {
		b.WriteString(t.String())
	}
	b.WriteString("]")
	return b.String()
}

func (n *SoloSingleThrow) String() string {
	s := ValueChar(n.Value)
	if n.Crossing {
		s += "x"
	}
	return s + n.Modifier
}

func (n *PassingSequence) String() string {
	var b strings.Builder
	for _, g := range n.Groups {
		b.WriteString(g.String())
	}
	return b.String()
}

func (n *PassingGroup) String() string {
	parts := make([]string, len(n.Parts))
	for i, p := range n.Parts {
		parts[i] = p.String()
	}
	return "<" + strings.Join(parts, "|") + ">"
}

func (n *PassingThrows) String() string { return joinNodes(n.Items) }

func (n *PassingPairedThrow) String() string {
	s := "(" + n.Left.String() + "," + n.Right.String() + ")"
	if n.Bang {
		s += "!"
	}
	return s
}

func (n *PassingMultiThrow) String() string {
	if len(n.Throws) == 1 {
		return n.Throws[0].String()
	}
	parts := make([]string, len(n.Throws))
	for i, t := range n.Throws {
		parts[i] = t.String()
	}
	return "[" + joinRendered(parts) + "]"
}

func (n *PassingSingleThrow) String() string {
	s := ValueChar(n.Value)
	if n.Crossing {
		s += "x"
	}
	if n.Pass {
		s += "p"
		if n.DestJuggler > 0 {
			s += strconv.Itoa(n.DestJuggler)
		}
	}
	return s + n.Modifier
}

func (n *Wildcard) String() string { return "?" }

func (n *HandSpec) String() string {
	if n.Left {
		return "L"
	}
	return "R"
}
