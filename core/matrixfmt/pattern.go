// Package matrixfmt defines the compiled form of a juggling pattern: the
// time-indexed throw matrix, its symmetries and the hand/body path specs.
//
// These types are the contract handed to layout and animation. A Pattern is
// immutable once the compiler returns it and may be read concurrently.
package matrixfmt

import (
	"fmt"
	"strings"
)

// Hand is a juggler's hand.
type Hand uint8

const (
	Left Hand = iota
	Right
)

// Opposite returns the other hand.
func (h Hand) Opposite() Hand {
	if h == Left {
		return Right
	}
	return Left
}

func (h Hand) String() string {
	if h == Left {
		return "L"
	}
	return "R"
}

// HandFromLeft converts a left flag into a Hand.
func HandFromLeft(left bool) Hand {
	if left {
		return Left
	}
	return Right
}

// ModifierKind distinguishes held objects from thrown ones.
type ModifierKind uint8

const (
	// Unresolved marks a same-hand 2 whose hold-or-throw nature depends on
	// the next beat. No Unresolved modifier survives compilation.
	Unresolved ModifierKind = iota
	Hold
	Thrown
)

func (k ModifierKind) String() string {
	switch k {
	case Hold:
		return "hold"
	case Thrown:
		return "throw"
	default:
		return "unresolved"
	}
}

// Modifier is a throw's hold/throw kind plus an optional tag such as "B"
// (bounce) carried through from the notation.
type Modifier struct {
	Kind ModifierKind
	Tag  string
}

func (m Modifier) String() string {
	if m.Tag == "" {
		return m.Kind.String()
	}
	return m.Kind.String() + ":" + m.Tag
}

// Throw is one object leaving (or staying in) a hand at a beat.
type Throw struct {
	SourceJuggler int // 0-based
	SourceHand    Hand
	Beat          int
	Slot          int // position within a multiplex
	Value         int
	DestJuggler   int
	DestHand      Hand
	TargetBeat    int
	Sync          bool // thrown as part of a paired (synchronous) beat
	HandsIndex    int  // beat of the juggler's hand path, -1 without hand paths
	Mod           Modifier
}

func (t *Throw) String() string {
	return fmt.Sprintf("J%d%s@%d[%d] %s -> J%d%s@%d (%s)",
		t.SourceJuggler+1, t.SourceHand, t.Beat, t.Slot,
		valueString(t.Value), t.DestJuggler+1, t.DestHand, t.TargetBeat, t.Mod)
}

func valueString(v int) string {
	if v >= 10 && v < 36 {
		return string(rune('a' + v - 10))
	}
	return fmt.Sprint(v)
}

// SymmetryKind names a pattern symmetry.
type SymmetryKind uint8

const (
	Delay SymmetryKind = iota
	Switch
	SwitchDelay
)

func (k SymmetryKind) String() string {
	switch k {
	case Delay:
		return "delay"
	case Switch:
		return "switch"
	case SwitchDelay:
		return "switchdelay"
	default:
		return fmt.Sprintf("SymmetryKind(%d)", k)
	}
}

// Symmetry maps the pattern onto itself after Period beats, permuting
// jugglers according to JugglerPerm ("(1)(2)" is the identity on two).
type Symmetry struct {
	Kind        SymmetryKind
	JugglerPerm string
	Period      int
}

// IdentityPerm returns the identity juggler permutation on n jugglers.
func IdentityPerm(n int) string {
	var b strings.Builder
	for j := 1; j <= n; j++ {
		fmt.Fprintf(&b, "(%d)", j)
	}
	return b.String()
}

// Coordinate is a point in pattern space (centimetres).
type Coordinate struct {
	X, Y, Z float64
}

// PathBeat is one beat of a hand or body path. A nil coordinate is
// interpolated at render time.
type PathBeat struct {
	Coords     []*Coordinate
	ThrowIndex int
	CatchIndex int
}

// PathSpec is the periodic hand or body movement of one juggler.
type PathSpec struct {
	Juggler int // 0-based
	Beats   []PathBeat
}

// Period returns the number of beats before the path repeats.
func (p PathSpec) Period() int {
	return len(p.Beats)
}

// Pattern is a fully compiled juggling pattern.
type Pattern struct {
	Source       string // siteswap actually compiled (synthesized when HSS was used)
	NumJugglers  int
	NumPaths     int
	Period       int
	MaxThrow     int
	MaxOccupancy int
	SwitchRepeat bool
	Matrix       *Matrix
	Symmetries   []Symmetry
	HandPaths    []PathSpec
	BodyPaths    []PathSpec
	Dwell        []float64 // per beat of the period; a single entry applies to every beat
	BPS          float64   // 0 when unspecified
	Title        string
	Warnings     []string
}

// DwellAt returns the dwell time (in beats) for beat.
func (p *Pattern) DwellAt(beat int) float64 {
	if len(p.Dwell) == 0 {
		return DefaultDwell
	}
	return p.Dwell[beat%len(p.Dwell)]
}

// DefaultDwell is the fraction of a beat a hand holds a prop before release.
const DefaultDwell = 0.3
