// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// The encoder walks a Spec together with a matching decoded value tree and
// composes the wire octets, which a fresh parser would decode back into
// the very same tree. Handing it a value tree of the wrong shape is a
// programmer error and aborts; see the Encode contract.

package binspec

import (
	"fmt"

	"github.com/siemens/binspec/chunked"
)

// Encode lowers a decoded value tree into its wire octets under the given
// layout spec. Variables are bound left to right while encoding, exactly
// as during parsing, so integer values driving later lengths, counts, and
// switch selectors must be filled in correctly by the caller. Any mismatch
// between the spec and the shape of the value tree -- wrong variant, wrong
// sequence or octet-string length, an unbound variable reference -- is a
// bug in the caller and aborts with a panic rather than an error.
func Encode(spec Spec, v Value) *chunked.Bytes {
	e := &encoder{env: map[string]uint64{}}
	return e.encode(spec, v)
}

// encoder carries the variable environment of one Encode traversal.
type encoder struct {
	env map[string]uint64
}

func (e *encoder) encode(s Spec, v Value) *chunked.Bytes {
	switch s := s.(type) {
	case Skip:
		e.require(v, KindEmpty, s)
		return chunked.ZeroFill(uint64(s.N))
	case Integer:
		e.require(v, KindInteger, s)
		return s.Int.Encode(v.num)
	case Variable:
		e.require(v, KindInteger, s)
		e.env[s.Name] = v.num
		return s.Int.Encode(v.num)
	case Bytes:
		e.require(v, KindBytes, s)
		if n := e.lookup(s.Name); v.data.Len() != n {
			panic(fmt.Sprintf("binspec: octet string of %d octets where %s = %d",
				v.data.Len(), s.Name, n))
		}
		return v.data
	case Seq:
		e.require(v, KindSeq, s)
		if len(v.seq) != len(s) {
			panic(fmt.Sprintf("binspec: %d values for a sequence of %d elements",
				len(v.seq), len(s)))
		}
		octets := chunked.New()
		for i, child := range s {
			octets.Extend(e.encode(child, v.seq[i]))
		}
		return octets
	case Until:
		e.require(v, KindSeq, s)
		// The sub-stream window has its own variable scope, mirroring the
		// sub-parser; the window length itself is an outer variable.
		sub := &encoder{env: map[string]uint64{}}
		octets := chunked.New()
		for _, child := range v.seq {
			octets.Extend(sub.encode(s.Inner, child))
		}
		return octets.Resize(e.lookup(s.Name))
	case Repeat:
		e.require(v, KindSeq, s)
		if n := e.lookup(s.Name); uint64(len(v.seq)) != n {
			panic(fmt.Sprintf("binspec: %d values for a repetition where %s = %d",
				len(v.seq), s.Name, n))
		}
		octets := chunked.New()
		for _, child := range v.seq {
			octets.Extend(e.encode(s.Inner, child))
		}
		return octets
	case Switch:
		return e.encode(s.branch(e.lookup(s.Selector)), v)
	}
	panic(fmt.Sprintf("binspec: cannot encode %s as %s", v, s))
}

// require aborts on a value variant the layout element cannot represent.
func (e *encoder) require(v Value, kind ValueKind, s Spec) {
	if v.kind != kind {
		panic(fmt.Sprintf("binspec: cannot encode %s as %s", v, s))
	}
}

// lookup resolves a variable reference; an unbound one is a bug in the
// caller-supplied spec or value ordering and aborts.
func (e *encoder) lookup(name string) uint64 {
	n, ok := e.env[name]
	if !ok {
		panic(fmt.Sprintf("binspec: unbound variable %q", name))
	}
	return n
}
