package matrixfmt

import "github.com/aledsdavies/jugglec/core/invariant"

// Matrix is the 4-D throw table [juggler][hand][beat][slot]. It spans
// Indexes beats so that lookahead past one period stays in bounds.
type Matrix struct {
	Jugglers int
	Indexes  int
	Slots    int
	cells    []*Throw
}

// NewMatrix allocates an empty matrix.
func NewMatrix(jugglers, indexes, slots int) *Matrix {
	invariant.Positive(jugglers, "jugglers")
	invariant.Positive(indexes, "indexes")
	invariant.Positive(slots, "slots")
	return &Matrix{
		Jugglers: jugglers,
		Indexes:  indexes,
		Slots:    slots,
		cells:    make([]*Throw, jugglers*2*indexes*slots),
	}
}

func (m *Matrix) offset(juggler int, hand Hand, beat, slot int) int {
	invariant.InRange(juggler, 0, m.Jugglers-1, "juggler")
	invariant.InRange(int(hand), 0, 1, "hand")
	invariant.InRange(beat, 0, m.Indexes-1, "beat")
	invariant.InRange(slot, 0, m.Slots-1, "slot")
	return ((juggler*2+int(hand))*m.Indexes+beat)*m.Slots + slot
}

// InBounds reports whether beat is a valid beat index.
func (m *Matrix) InBounds(beat int) bool {
	return beat >= 0 && beat < m.Indexes
}

// At returns the throw in a cell, or nil.
func (m *Matrix) At(juggler int, hand Hand, beat, slot int) *Throw {
	return m.cells[m.offset(juggler, hand, beat, slot)]
}

// Set stores t at its own coordinates.
func (m *Matrix) Set(t *Throw) {
	invariant.NotNil(t, "throw")
	m.cells[m.offset(t.SourceJuggler, t.SourceHand, t.Beat, t.Slot)] = t
}

// Throws returns the non-empty slots of one hand on one beat.
func (m *Matrix) Throws(juggler int, hand Hand, beat int) []*Throw {
	var out []*Throw
	for slot := 0; slot < m.Slots; slot++ {
		if t := m.At(juggler, hand, beat, slot); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Each calls fn for every stored throw in juggler, hand, beat, slot order.
func (m *Matrix) Each(fn func(*Throw)) {
	for _, t := range m.cells {
		if t != nil {
			fn(t)
		}
	}
}

// Len returns the number of stored throws.
func (m *Matrix) Len() int {
	n := 0
	m.Each(func(*Throw) { n++ })
	return n
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{
		Jugglers: m.Jugglers,
		Indexes:  m.Indexes,
		Slots:    m.Slots,
		cells:    make([]*Throw, len(m.cells)),
	}
	for i, t := range m.cells {
		if t != nil {
			dup := *t
			c.cells[i] = &dup
		}
	}
	return c
}
