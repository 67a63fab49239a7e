// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Decoded values form the tree a parser produces and an encoder accepts.
// Value is a tagged union; asking a value for the contents of a different
// variant than it actually is counts as a programmer error and aborts.

package binspec

import (
	"fmt"
	"strings"

	"github.com/siemens/binspec/chunked"
)

// ValueKind identifies the variant of a Value.
type ValueKind uint8

const (
	// KindEmpty is the value of a skipped octet run.
	KindEmpty ValueKind = iota
	// KindInteger is a decoded unsigned integer.
	KindInteger
	// KindBytes is a decoded octet string.
	KindBytes
	// KindSeq is a decoded sequence of child values.
	KindSeq
	// KindStop is a stream-rejection marker.
	KindStop
)

// Value is one node in a decoded tree: either empty (from Skip), an
// unsigned integer widened to 64 bits (from Integer and Variable), an
// octet string (from Bytes), a sequence of child values (from Seq, Until,
// and Repeat), or a stop marker recording why the stream was rejected.
type Value struct {
	kind ValueKind
	num  uint64
	data *chunked.Bytes
	seq  []Value
	spec Spec // the rejecting layout element, stop values only
}

// EmptyValue returns the value of a successfully skipped octet run.
func EmptyValue() Value { return Value{kind: KindEmpty} }

// IntegerValue returns a decoded integer value.
func IntegerValue(v uint64) Value { return Value{kind: KindInteger, num: v} }

// BytesValue returns a decoded octet string value.
func BytesValue(b *chunked.Bytes) Value { return Value{kind: KindBytes, data: b} }

// SeqValue returns a decoded sequence of the given child values.
func SeqValue(children ...Value) Value {
	if children == nil {
		children = []Value{}
	}
	return Value{kind: KindSeq, seq: children}
}

// StopValue returns a stream-rejection marker, recording the layout element
// that rejected the stream together with the offending selector value.
func StopValue(spec Spec, selector uint64) Value {
	return Value{kind: KindStop, num: selector, spec: spec}
}

// Kind returns the variant of this value.
func (v Value) Kind() ValueKind { return v.kind }

// IsStop returns true if this value is a stream-rejection marker.
func (v Value) IsStop() bool { return v.kind == KindStop }

// Integer returns the decoded integer; it aborts when called on any other
// variant.
func (v Value) Integer() uint64 {
	v.mustBe(KindInteger, "integer")
	return v.num
}

// Bytes returns the decoded octet string; it aborts when called on any
// other variant.
func (v Value) Bytes() *chunked.Bytes {
	v.mustBe(KindBytes, "bytes")
	return v.data
}

// Seq returns the decoded child values; it aborts when called on any other
// variant.
func (v Value) Seq() []Value {
	v.mustBe(KindSeq, "seq")
	return v.seq
}

// Index returns the i-th child of a sequence value; it aborts when called
// on any other variant.
func (v Value) Index(i int) Value {
	v.mustBe(KindSeq, "seq")
	return v.seq[i]
}

// StopCause returns the layout element and selector value recorded in a
// stream-rejection marker; it aborts when called on any other variant.
func (v Value) StopCause() (Spec, uint64) {
	v.mustBe(KindStop, "stop")
	return v.spec, v.num
}

// Equal compares two decoded trees structurally; octet strings compare by
// their octet sequences, regardless of chunking.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindEmpty:
		return true
	case KindInteger:
		return v.num == o.num
	case KindBytes:
		return v.data.Equal(o.data)
	case KindSeq:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	case KindStop:
		return v.num == o.num
	}
	return false
}

// String renders the decoded tree for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindEmpty:
		return "empty"
	case KindInteger:
		return fmt.Sprintf("%d", v.num)
	case KindBytes:
		return fmt.Sprintf("0x%x", v.data.Octets())
	case KindSeq:
		elems := make([]string, len(v.seq))
		for i, child := range v.seq {
			elems[i] = child.String()
		}
		return "[" + strings.Join(elems, " ") + "]"
	case KindStop:
		return fmt.Sprintf("stop(%d)", v.num)
	}
	return "?"
}

// mustBe aborts unless the value is of the wanted variant: asking an
// integer for its octets is a bug in the caller, not a stream anomaly.
func (v Value) mustBe(kind ValueKind, what string) {
	if v.kind != kind {
		panic(fmt.Sprintf("binspec: %s is not a %s value", v, what))
	}
}
