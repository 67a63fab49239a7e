// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// The Spec tree declaratively describes a binary layout. Specs are
// immutable once built, either by hand or by compiling the textual format
// notation, and a single Spec can drive any number of parsers and encoders
// at the same time.

package binspec

import (
	"fmt"
	"sort"
	"strings"
)

// Spec describes the layout of (part of) a binary structure. The concrete
// layout elements are Skip, Stop, Integer, Variable, Bytes, Seq, Until,
// Repeat, and Switch; nothing else implements Spec.
type Spec interface {
	fmt.Stringer
	isSpec()
}

// Skip consumes a fixed number of octets and discards them, decoding to an
// empty value. Encoding emits the same number of zero octets.
type Skip struct {
	// Number of octets to consume.
	N uint32
}

// Stop rejects the stream: parsing unwinds and reports a stop value instead
// of a decoded structure. See Until for the absorption boundary.
type Stop struct{}

// Integer reads a single unsigned wire integer.
type Integer struct {
	Int IntSpec
}

// Variable reads a single unsigned wire integer, like Integer, and
// additionally binds it to Name in the variable environment, so that later
// Bytes, Until, Repeat, and Switch elements can refer to it.
type Variable struct {
	Int  IntSpec
	Name string
}

// Bytes reads as many octets as the variable Name was previously bound to.
type Bytes struct {
	Name string
}

// Seq parses its child layouts in order, decoding to the sequence of their
// values.
type Seq []Spec

// Until carves out a sub-stream of as many octets as the variable Name was
// bound to, then parses Inner against that sub-stream over and over until
// it is used up. A Stop raised inside the sub-stream is absorbed at this
// boundary and simply ends up as the final element of the decoded
// sequence. Variables bound inside the sub-stream are not visible outside.
type Until struct {
	Name  string
	Inner Spec
}

// Repeat parses Inner exactly as many times as the variable Name was bound
// to, decoding to the sequence of the individual values.
type Repeat struct {
	Name  string
	Inner Spec
}

// Switch selects one of several alternative layouts by the value the
// variable Selector was bound to: the matching entry of Cases, or Default
// if no case matches. A nil Default rejects unmatched selectors like an
// explicit Stop does.
type Switch struct {
	Selector string
	Cases    map[uint64]Spec
	Default  Spec
}

func (Skip) isSpec()     {}
func (Stop) isSpec()     {}
func (Integer) isSpec()  {}
func (Variable) isSpec() {}
func (Bytes) isSpec()    {}
func (Seq) isSpec()      {}
func (Until) isSpec()    {}
func (Repeat) isSpec()   {}
func (Switch) isSpec()   {}

func (s Skip) String() string     { return fmt.Sprintf("skip(%d)", s.N) }
func (Stop) String() string       { return "stop" }
func (s Integer) String() string  { return s.Int.String() }
func (s Variable) String() string { return fmt.Sprintf("%s=%s", s.Name, s.Int) }
func (s Bytes) String() string    { return fmt.Sprintf("bytes(%s)", s.Name) }

func (s Seq) String() string {
	elems := make([]string, len(s))
	for i, child := range s {
		elems[i] = child.String()
	}
	return "[" + strings.Join(elems, " ") + "]"
}

func (s Until) String() string  { return fmt.Sprintf("until(%s %s)", s.Name, s.Inner) }
func (s Repeat) String() string { return fmt.Sprintf("repeat(%s %s)", s.Name, s.Inner) }

func (s Switch) String() string {
	selectors := make([]uint64, 0, len(s.Cases))
	for sel := range s.Cases {
		selectors = append(selectors, sel)
	}
	sort.Slice(selectors, func(i, j int) bool { return selectors[i] < selectors[j] })
	cases := make([]string, 0, len(s.Cases)+1)
	for _, sel := range selectors {
		cases = append(cases, fmt.Sprintf("%d:%s", sel, s.Cases[sel]))
	}
	if s.Default != nil {
		cases = append(cases, "*:"+s.Default.String())
	}
	return fmt.Sprintf("switch(%s %s)", s.Selector, strings.Join(cases, " "))
}

// branch returns the layout a Switch selects for the given selector value:
// the matching case, or the default, where a missing default acts as Stop.
func (s Switch) branch(sel uint64) Spec {
	if c, ok := s.Cases[sel]; ok {
		return c
	}
	if s.Default == nil {
		return Stop{}
	}
	return s.Default
}
