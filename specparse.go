// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Compiles the textual binspec format notation into a Spec tree. The
// notation is deliberately terse, in the tradition of pack-style format
// strings; see ParseSpec for the vocabulary.

package binspec

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// ParseSpec compiles a format string into a Spec tree. Whitespace and
// letter case are insignificant. The vocabulary:
//
//	>    switch to big-endian integers (the initial setting)
//	<    switch to little-endian integers
//	B    1-octet integer            H    2-octet integer
//	T    3-octet integer            I    4-octet integer
//	Q    8-octet integer
//	N X  N times the integer token X, as a sequence
//	N x  skip N octets
//	% X  integer token X bound to the next auto-allocated variable
//	s    octet string as long as the oldest unclaimed variable
//	(…)  sub-stream as long as the oldest unclaimed variable, with the
//	     bracketed layout applied repeatedly until the sub-stream is spent
//	{…}  switch on the oldest unclaimed variable, with cases "N=…" and an
//	     optional default "*=…"; without a default, unmatched selectors
//	     reject the stream
//
// Numbers are decimal or 0x-prefixed hex. Auto-allocated variables are
// named prefix0, prefix1, and so on, in the order their "%" appears; each
// consumer ("s", "(…)", "{…}") claims the oldest variable no consumer has
// claimed yet. Referring to a variable that hasn't been declared, unknown
// characters, unbalanced brackets, and a count without a following
// repeatable token all make the compilation fail.
func ParseSpec(format string, prefix string) (Spec, error) {
	c := &specCompiler{
		format: format,
		prefix: prefix,
		endian: binary.BigEndian,
	}
	items, err := c.seq("")
	if err != nil {
		return nil, err
	}
	if c.pos < len(c.format) {
		return nil, c.errorf("unbalanced %q", c.format[c.pos])
	}
	return wrapSeq(items), nil
}

// intWidths maps the integer format letters to their octet counts.
var intWidths = map[byte]uint{'b': 1, 'h': 2, 't': 3, 'i': 4, 'q': 8}

// specCompiler is the single-pass state of one ParseSpec run: a cursor
// into the format text, the currently selected endianness, and the two
// counters realizing the auto-naming of variables.
type specCompiler struct {
	format string
	pos    int
	prefix string
	endian binary.ByteOrder
	// Number of variables declared via "%" so far.
	declared int
	// Number of variables already claimed by a consumer; always trails
	// declared in a well-formed format.
	claimed int
}

// seq parses layout elements until the end of the format text or until one
// of the terminator characters shows up, which is left for the caller to
// consume.
func (c *specCompiler) seq(terminators string) ([]Spec, error) {
	items := []Spec{}
	for {
		c.skipSpace()
		if c.pos >= len(c.format) {
			return items, nil
		}
		ch := lower(c.format[c.pos])
		if strings.IndexByte(terminators, ch) >= 0 {
			return items, nil
		}
		switch {
		case ch == '>':
			c.pos++
			c.endian = binary.BigEndian
		case ch == '<':
			c.pos++
			c.endian = binary.LittleEndian
		case ch >= '0' && ch <= '9':
			item, err := c.counted()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		case intWidths[ch] != 0:
			c.pos++
			items = append(items, Integer{Int: IntSpec{Length: intWidths[ch], Endian: c.endian}})
		case ch == '%':
			c.pos++
			item, err := c.variable()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		case ch == 's':
			c.pos++
			name, err := c.claim()
			if err != nil {
				return nil, err
			}
			items = append(items, Bytes{Name: name})
		case ch == '(':
			c.pos++
			item, err := c.until()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		case ch == '{':
			c.pos++
			item, err := c.swtch()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		default:
			return nil, c.errorf("unknown character %q", c.format[c.pos])
		}
	}
}

// counted parses a number followed by either the skip token "x", yielding
// a skip, or an integer token, yielding the integer repeated count times.
func (c *specCompiler) counted() (Spec, error) {
	n, err := c.number()
	if err != nil {
		return nil, err
	}
	c.skipSpace()
	if c.pos >= len(c.format) {
		return nil, c.errorf("count %d without a repeatable token", n)
	}
	ch := lower(c.format[c.pos])
	if ch == 'x' {
		c.pos++
		return Skip{N: uint32(n)}, nil
	}
	width := intWidths[ch]
	if width == 0 {
		return nil, c.errorf("count %d without a repeatable token", n)
	}
	c.pos++
	repeated := make(Seq, n)
	for i := range repeated {
		repeated[i] = Integer{Int: IntSpec{Length: width, Endian: c.endian}}
	}
	return repeated, nil
}

// variable parses the integer token following a "%" and allocates the next
// variable name for it.
func (c *specCompiler) variable() (Spec, error) {
	c.skipSpace()
	if c.pos < len(c.format) {
		if width := intWidths[lower(c.format[c.pos])]; width != 0 {
			c.pos++
			name := fmt.Sprintf("%s%d", c.prefix, c.declared)
			c.declared++
			return Variable{Int: IntSpec{Length: width, Endian: c.endian}, Name: name}, nil
		}
	}
	return nil, c.errorf("%% without an integer token")
}

// claim hands out the oldest declared-but-unclaimed variable name to a
// consuming layout element.
func (c *specCompiler) claim() (string, error) {
	if c.claimed >= c.declared {
		return "", c.errorf("no declared variable left to refer to")
	}
	name := fmt.Sprintf("%s%d", c.prefix, c.claimed)
	c.claimed++
	return name, nil
}

// until parses the bracketed inner layout of a "(…)" sub-stream element.
func (c *specCompiler) until() (Spec, error) {
	name, err := c.claim()
	if err != nil {
		return nil, err
	}
	inner, err := c.seq(")")
	if err != nil {
		return nil, err
	}
	if c.pos >= len(c.format) || c.format[c.pos] != ')' {
		return nil, c.errorf("unbalanced \"(\"")
	}
	c.pos++
	return Until{Name: name, Inner: wrapSeq(inner)}, nil
}

// swtch parses the "{…}" case list into a Switch element.
func (c *specCompiler) swtch() (Spec, error) {
	name, err := c.claim()
	if err != nil {
		return nil, err
	}
	sw := Switch{Selector: name, Cases: map[uint64]Spec{}}
	for {
		c.skipSpace()
		if c.pos >= len(c.format) {
			return nil, c.errorf("unbalanced \"{\"")
		}
		if c.format[c.pos] == '}' {
			c.pos++
			return sw, nil
		}
		isDefault := false
		var selector uint64
		if c.format[c.pos] == '*' {
			c.pos++
			isDefault = true
		} else {
			selector, err = c.number()
			if err != nil {
				return nil, err
			}
		}
		c.skipSpace()
		if c.pos >= len(c.format) || c.format[c.pos] != '=' {
			return nil, c.errorf("switch case without \"=\"")
		}
		c.pos++
		caseItems, err := c.seq(",}")
		if err != nil {
			return nil, err
		}
		caseSpec := wrapSeq(caseItems)
		if isDefault {
			if sw.Default != nil {
				return nil, c.errorf("more than one default switch case")
			}
			sw.Default = caseSpec
		} else {
			if _, ok := sw.Cases[selector]; ok {
				return nil, c.errorf("duplicate switch case %d", selector)
			}
			sw.Cases[selector] = caseSpec
		}
		c.skipSpace()
		if c.pos < len(c.format) && c.format[c.pos] == ',' {
			c.pos++
		}
	}
}

// number parses a decimal or 0x-prefixed hex literal.
func (c *specCompiler) number() (uint64, error) {
	start := c.pos
	if c.pos+2 < len(c.format) && c.format[c.pos] == '0' &&
		lower(c.format[c.pos+1]) == 'x' && isHexDigit(c.format[c.pos+2]) {
		c.pos += 2
		var n uint64
		for c.pos < len(c.format) && isHexDigit(c.format[c.pos]) {
			n = n*16 + uint64(hexDigit(c.format[c.pos]))
			c.pos++
		}
		return n, nil
	}
	var n uint64
	for c.pos < len(c.format) && c.format[c.pos] >= '0' && c.format[c.pos] <= '9' {
		n = n*10 + uint64(c.format[c.pos]-'0')
		c.pos++
	}
	if c.pos == start {
		return 0, c.errorf("number expected")
	}
	return n, nil
}

func (c *specCompiler) skipSpace() {
	for c.pos < len(c.format) {
		switch c.format[c.pos] {
		case ' ', '\t', '\n', '\r':
			c.pos++
		default:
			return
		}
	}
}

// errorf reports a compilation failure with the offset into the format
// text where things went south.
func (c *specCompiler) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("invalid format at offset %d: %s", c.pos, fmt.Sprintf(format, args...))
}

// wrapSeq avoids gratuitous single-element sequences.
func wrapSeq(items []Spec) Spec {
	if len(items) == 1 {
		return items[0]
	}
	return Seq(items)
}

func lower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}

func isHexDigit(ch byte) bool {
	ch = lower(ch)
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f')
}

func hexDigit(ch byte) byte {
	ch = lower(ch)
	if ch >= 'a' {
		return ch - 'a' + 10
	}
	return ch - '0'
}
