package matrixfmt

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// maxBodyLen bounds the body so a corrupt length cannot exhaust memory.
const maxBodyLen = 16 * 1024 * 1024

// Read reads a pattern written by Write and returns it with its body hash.
func Read(r io.Reader) (*Pattern, [32]byte, error) {
	var preamble [preambleLen]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read preamble: %w", err)
	}

	if magic := string(preamble[0:4]); magic != Magic {
		return nil, [32]byte{}, fmt.Errorf("invalid magic: got %q, expected %q", magic, Magic)
	}
	if version := binary.LittleEndian.Uint16(preamble[4:6]); version != Version {
		return nil, [32]byte{}, fmt.Errorf("unsupported version: got 0x%04x, expected 0x%04x", version, Version)
	}
	if flags := binary.LittleEndian.Uint16(preamble[6:8]); flags != 0 {
		return nil, [32]byte{}, fmt.Errorf("unsupported flags: 0x%04x", flags)
	}

	bodyLen := binary.LittleEndian.Uint64(preamble[8:16])
	if bodyLen > maxBodyLen {
		return nil, [32]byte{}, fmt.Errorf("body length %d exceeds maximum %d", bodyLen, maxBodyLen)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read body: %w", err)
	}

	var stored [32]byte
	if _, err := io.ReadFull(r, stored[:]); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read hash: %w", err)
	}
	digest := blake2b.Sum256(body)
	if digest != stored {
		return nil, [32]byte{}, fmt.Errorf("hash mismatch: body hashes to %x, file records %x", digest, stored)
	}

	var wp wirePattern
	if err := cbor.Unmarshal(body, &wp); err != nil {
		return nil, [32]byte{}, fmt.Errorf("decode body: %w", err)
	}
	if wp.NumJugglers <= 0 || wp.Indexes <= 0 || wp.Slots <= 0 {
		return nil, [32]byte{}, fmt.Errorf("invalid matrix dimensions %dx%dx%d", wp.NumJugglers, wp.Indexes, wp.Slots)
	}

	m := NewMatrix(wp.NumJugglers, wp.Indexes, wp.Slots)
	for i := range wp.Throws {
		t := wp.Throws[i]
		if t.SourceJuggler < 0 || t.SourceJuggler >= wp.NumJugglers || t.SourceHand > Right ||
			!m.InBounds(t.Beat) || t.Slot < 0 || t.Slot >= wp.Slots {
			return nil, [32]byte{}, fmt.Errorf("throw %d out of matrix bounds", i)
		}
		m.Set(&t)
	}

	return &Pattern{
		Source:       wp.Source,
		NumJugglers:  wp.NumJugglers,
		NumPaths:     wp.NumPaths,
		Period:       wp.Period,
		MaxThrow:     wp.MaxThrow,
		MaxOccupancy: wp.MaxOccupancy,
		SwitchRepeat: wp.SwitchRepeat,
		Matrix:       m,
		Symmetries:   wp.Symmetries,
		HandPaths:    wp.HandPaths,
		BodyPaths:    wp.BodyPaths,
		Dwell:        wp.Dwell,
		BPS:          wp.BPS,
		Title:        wp.Title,
		Warnings:     wp.Warnings,
	}, digest, nil
}
