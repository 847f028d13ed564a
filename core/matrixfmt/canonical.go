package matrixfmt

import (
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// CanonicalMatrix is the deterministic form of a compiled pattern used for
// hashing and comparison. It keeps what a juggler would observe (which object
// goes where, when, held or thrown) and drops how the pattern was written:
// zero-value placeholders, the synchronous flag, hand path indexes and the
// symmetry list. Two notations of the same pattern canonicalize identically.
type CanonicalMatrix struct {
	Version      uint8
	Jugglers     int
	Paths        int
	Period       int
	MaxOccupancy int
	Throws       []CanonicalThrow
}

// CanonicalThrow is a throw in canonical form.
type CanonicalThrow struct {
	Juggler     int
	Hand        uint8
	Beat        int
	Slot        int
	Value       int
	DestJuggler int
	DestHand    uint8
	Target      int
	Mod         uint8
	Tag         string
}

// Canonicalize converts p into canonical form. Throws are limited to the
// first period and re-slotted densely so multiplex placeholder positions do
// not matter.
func (p *Pattern) Canonicalize() (*CanonicalMatrix, error) {
	if p.Matrix == nil {
		return nil, fmt.Errorf("pattern has no throw matrix")
	}

	cm := &CanonicalMatrix{
		Version:  1,
		Jugglers: p.NumJugglers,
		Paths:    p.NumPaths,
		Period:   p.Period,
	}

	for j := 0; j < p.Matrix.Jugglers; j++ {
		for _, h := range []Hand{Left, Right} {
			for beat := 0; beat < p.Period && beat < p.Matrix.Indexes; beat++ {
				var cell []CanonicalThrow
				for _, t := range p.Matrix.Throws(j, h, beat) {
					if t.Value == 0 {
						continue
					}
					cell = append(cell, CanonicalThrow{
						Juggler:     t.SourceJuggler,
						Hand:        uint8(t.SourceHand),
						Beat:        t.Beat,
						Value:       t.Value,
						DestJuggler: t.DestJuggler,
						DestHand:    uint8(t.DestHand),
						Target:      t.TargetBeat,
						Mod:         uint8(t.Mod.Kind),
						Tag:         t.Mod.Tag,
					})
				}
				sort.SliceStable(cell, func(a, b int) bool {
					return lessThrow(cell[a], cell[b])
				})
				for i := range cell {
					cell[i].Slot = i
				}
				if len(cell) > cm.MaxOccupancy {
					cm.MaxOccupancy = len(cell)
				}
				cm.Throws = append(cm.Throws, cell...)
			}
		}
	}

	return cm, nil
}

func lessThrow(a, b CanonicalThrow) bool {
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	if a.DestJuggler != b.DestJuggler {
		return a.DestJuggler < b.DestJuggler
	}
	if a.DestHand != b.DestHand {
		return a.DestHand < b.DestHand
	}
	if a.Mod != b.Mod {
		return a.Mod < b.Mod
	}
	return a.Tag < b.Tag
}

// MarshalBinary produces the deterministic CBOR encoding of cm.
func (cm *CanonicalMatrix) MarshalBinary() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}

	// alias type so cbor does not call MarshalBinary recursively
	type canonicalMatrixAlias CanonicalMatrix
	data, err := encMode.Marshal((*canonicalMatrixAlias)(cm))
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	return data, nil
}

// Hash returns the BLAKE2b-256 hash of the canonical encoding.
func (cm *CanonicalMatrix) Hash() ([32]byte, error) {
	data, err := cm.MarshalBinary()
	if err != nil {
		return [32]byte{}, err
	}
	return blake2b.Sum256(data), nil
}

// Digest returns "blake2b:<hex>" identifying the pattern's throw matrix.
func (p *Pattern) Digest() (string, error) {
	cm, err := p.Canonicalize()
	if err != nil {
		return "", err
	}
	sum, err := cm.Hash()
	if err != nil {
		return "", fmt.Errorf("failed to hash canonical matrix: %w", err)
	}
	return fmt.Sprintf("blake2b:%x", sum), nil
}
