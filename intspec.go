// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Defines the shape of wire integers: how many octets they occupy and in
// which octet order they travel.

package binspec

import (
	"encoding/binary"
	"fmt"

	"github.com/siemens/binspec/chunked"
)

// IntSpec describes a single unsigned wire integer by its octet count (1 up
// to 8) and its octet order. IntSpec values are immutable and compare by
// their (length, endianness) structure.
type IntSpec struct {
	// Number of octets this integer occupies on the wire, 1..8.
	Length uint
	// Octet order on the wire, either binary.BigEndian or
	// binary.LittleEndian.
	Endian binary.ByteOrder
}

// U8 returns the spec of a single-octet integer; for a single octet, octet
// order doesn't matter, so U8 arbitrarily uses the little-endian flavor.
func U8() IntSpec { return IntSpec{Length: 1, Endian: binary.LittleEndian} }

// BE returns the spec of a big-endian integer occupying length octets.
func BE(length uint) IntSpec { return IntSpec{Length: length, Endian: binary.BigEndian} }

// LE returns the spec of a little-endian integer occupying length octets.
func LE(length uint) IntSpec { return IntSpec{Length: length, Endian: binary.LittleEndian} }

// Encode renders v into exactly Length octets in the declared octet order,
// that is, the Length least-significant octets of v. Any more-significant
// bits of v silently fall by the wayside.
func (s IntSpec) Encode(v uint64) *chunked.Bytes {
	s.validate()
	var scratch [8]byte
	s.Endian.PutUint64(scratch[:], v)
	octets := make([]byte, s.Length)
	if s.Endian == binary.ByteOrder(binary.BigEndian) {
		copy(octets, scratch[8-s.Length:])
	} else {
		copy(octets, scratch[:s.Length])
	}
	return chunked.New(octets)
}

// Decode is the inverse of Encode: it reads a buffer of exactly Length
// octets back into an unsigned integer, zero-extended to 64 bits.
func (s IntSpec) Decode(b *chunked.Bytes) uint64 {
	s.validate()
	if b.Len() != uint64(s.Length) {
		panic(fmt.Sprintf("binspec: decoding a %d octet integer from %d octets", s.Length, b.Len()))
	}
	var scratch [8]byte
	if s.Endian == binary.ByteOrder(binary.BigEndian) {
		copy(scratch[8-s.Length:], b.Octets())
	} else {
		copy(scratch[:s.Length], b.Octets())
	}
	return s.Endian.Uint64(scratch[:])
}

// String renders the integer shape for diagnostics, such as "uint32be".
func (s IntSpec) String() string {
	e := "le"
	if s.Endian == binary.ByteOrder(binary.BigEndian) {
		e = "be"
	}
	return fmt.Sprintf("uint%d%s", s.Length*8, e)
}

// validate aborts on integer shapes outside the 1..8 octet range; such
// specs cannot come out of the format compiler, only out of hand-assembled
// spec trees, so this is a programmer error.
func (s IntSpec) validate() {
	if s.Length < 1 || s.Length > 8 {
		panic(fmt.Sprintf("binspec: invalid integer octet count %d", s.Length))
	}
}
