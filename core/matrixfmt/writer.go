package matrixfmt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

const (
	// Magic is the file magic number "JGLM" (4 bytes)
	Magic = "JGLM"

	// Version is the format version (uint16, little-endian)
	Version uint16 = 0x0001

	preambleLen = 16 // MAGIC(4) | VERSION(2) | FLAGS(2) | BODY_LEN(8)
)

// wirePattern is the serialized form of a Pattern. The matrix is flattened
// to its stored throws.
type wirePattern struct {
	Source       string
	NumJugglers  int
	NumPaths     int
	Period       int
	MaxThrow     int
	MaxOccupancy int
	SwitchRepeat bool
	Indexes      int
	Slots        int
	Throws       []Throw
	Symmetries   []Symmetry
	HandPaths    []PathSpec
	BodyPaths    []PathSpec
	Dwell        []float64
	BPS          float64
	Title        string
	Warnings     []string
}

// Write writes p to w and returns the BLAKE2b-256 hash of the body.
//
// Format: MAGIC(4) | VERSION(2) | FLAGS(2) | BODY_LEN(8) | BODY (CBOR) | HASH(32)
func Write(w io.Writer, p *Pattern) ([32]byte, error) {
	if p.Matrix == nil {
		return [32]byte{}, fmt.Errorf("pattern has no throw matrix")
	}

	wp := wirePattern{
		Source:       p.Source,
		NumJugglers:  p.NumJugglers,
		NumPaths:     p.NumPaths,
		Period:       p.Period,
		MaxThrow:     p.MaxThrow,
		MaxOccupancy: p.MaxOccupancy,
		SwitchRepeat: p.SwitchRepeat,
		Indexes:      p.Matrix.Indexes,
		Slots:        p.Matrix.Slots,
		Symmetries:   p.Symmetries,
		HandPaths:    p.HandPaths,
		BodyPaths:    p.BodyPaths,
		Dwell:        p.Dwell,
		BPS:          p.BPS,
		Title:        p.Title,
		Warnings:     p.Warnings,
	}
	p.Matrix.Each(func(t *Throw) {
		wp.Throws = append(wp.Throws, *t)
	})

	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}
	body, err := encMode.Marshal(&wp)
	if err != nil {
		return [32]byte{}, fmt.Errorf("CBOR encoding failed: %w", err)
	}

	digest := blake2b.Sum256(body)

	var buf bytes.Buffer
	buf.WriteString(Magic)
	_ = binary.Write(&buf, binary.LittleEndian, Version)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
	_ = binary.Write(&buf, binary.LittleEndian, uint64(len(body)))
	buf.Write(body)
	buf.Write(digest[:])

	if _, err := w.Write(buf.Bytes()); err != nil {
		return [32]byte{}, err
	}
	return digest, nil
}
