// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// The incremental parser: a resumable state machine that consumes a
// chunked byte stream against a Spec and produces decoded value trees.
// Instead of recursing over the spec tree, the parser keeps an explicit
// frame stack, so that running out of input simply returns early, with all
// state kept intact for resumption once more octets have arrived.

package binspec

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/siemens/binspec/chunked"
)

// Parser incrementally decodes a byte stream against a fixed Spec. Octets
// are queued in arbitrary portions via Supply; Next then either produces
// the next complete value tree or reports how many octets are at least
// missing, as a *chunked.Shortfall. A Parser must not be used from
// multiple goroutines at the same time; use one parser per stream.
type Parser struct {
	spec  Spec
	input *chunked.Bytes
	stack []frame
	env   map[string]uint64
}

// frameKind discriminates the parser stack frame variants.
type frameKind uint8

const (
	// A layout element not yet started.
	preparedFrame frameKind = iota
	// The finished value; only ever the sole, bottommost frame.
	doneFrame
	// A sequence with some children decoded and some still ahead.
	partialSeqFrame
	// A repetition with some rounds decoded and some still ahead.
	partialRepeatFrame
)

// frame is one entry of the parser stack.
type frame struct {
	kind  frameKind
	spec  Spec    // prepared: the element; partial repetition: the inner element
	value Value   // done only
	done  []Value // partials: children decoded so far
	rest  []Spec  // partial sequence: children still ahead
	count uint64  // partial repetition: rounds still to start
}

// stopSignal travels up the frame stack when a Stop element or a rejecting
// Switch aborts the stream.
type stopSignal struct {
	spec     Spec
	selector uint64
}

func (s *stopSignal) Error() string {
	return fmt.Sprintf("parsing stopped on selector %d", s.selector)
}

// NewParser returns a parser decoding a byte stream against the given
// layout spec, with an empty input buffer.
func NewParser(spec Spec) *Parser {
	return &Parser{
		spec:  spec,
		input: chunked.New(),
		stack: []frame{{kind: preparedFrame, spec: spec}},
		env:   map[string]uint64{},
	}
}

// Supply queues further stream octets for parsing. The slice is referenced
// rather than copied, so the caller must not modify it afterwards.
func (p *Parser) Supply(b []byte) {
	p.input.Append(b)
}

// Remaining returns the input buffer with the octets not yet consumed;
// octets are discarded from it as parsing proceeds.
func (p *Parser) Remaining() *chunked.Bytes {
	return p.input
}

// Reset winds the parser back to the start of its spec for decoding the
// next value: the frame stack and the variable environment are cleared,
// while the input buffer with any unconsumed octets stays put.
func (p *Parser) Reset() {
	p.stack = []frame{{kind: preparedFrame, spec: p.spec}}
	p.env = map[string]uint64{}
}

// Next performs parsing steps until either a complete value tree has been
// decoded or the queued input is spent. In the latter case Next returns a
// *chunked.Shortfall with a lower bound on the octets still missing;
// calling Next again without new input just reproduces the same shortfall,
// and supplying more octets resumes exactly where parsing was suspended. A
// rejected stream is reported as a regular value for which IsStop is true.
func (p *Parser) Next() (Value, error) {
	for {
		top := p.stack[len(p.stack)-1]
		if top.kind == doneFrame {
			return top.value, nil
		}
		p.stack = p.stack[:len(p.stack)-1]
		if err := p.step(top); err != nil {
			if short, ok := err.(*chunked.Shortfall); ok {
				// Underfed: put the frame back untouched and suspend.
				p.stack = append(p.stack, top)
				return Value{}, short
			}
			stop := err.(*stopSignal)
			log.Debugf("stream rejected on selector %d", stop.selector)
			v := StopValue(stop.spec, stop.selector)
			p.stack = []frame{{kind: doneFrame, value: v}}
			return v, nil
		}
	}
}

// ParseAll decodes value after value, resetting in between, until the
// input is spent or the stream is rejected; a rejection ends the batch and
// is not part of it.
func (p *Parser) ParseAll() []Value {
	values := []Value{}
	for {
		v, err := p.Next()
		if err != nil || v.IsStop() {
			return values
		}
		values = append(values, v)
		p.Reset()
	}
}

// step dispatches on a single popped frame. It either fills the hole in
// the frame below with a finished value, or pushes the frames for the next
// round of work, or reports a shortfall or stop signal.
func (p *Parser) step(f frame) error {
	switch f.kind {
	case partialSeqFrame:
		if len(f.rest) == 0 {
			p.fill(SeqValue(f.done...))
			return nil
		}
		p.push(frame{kind: partialSeqFrame, done: f.done, rest: f.rest[1:]})
		p.push(frame{kind: preparedFrame, spec: f.rest[0]})
		return nil
	case partialRepeatFrame:
		if f.count == 0 {
			p.fill(SeqValue(f.done...))
			return nil
		}
		p.push(frame{kind: partialRepeatFrame, spec: f.spec, done: f.done, count: f.count - 1})
		p.push(frame{kind: preparedFrame, spec: f.spec})
		return nil
	}
	return p.prepared(f.spec)
}

// prepared starts a not-yet-started layout element.
func (p *Parser) prepared(s Spec) error {
	switch s := s.(type) {
	case Skip:
		if _, err := p.input.SplitPrefix(uint64(s.N)); err != nil {
			return err
		}
		p.fill(EmptyValue())
	case Stop:
		return &stopSignal{spec: s}
	case Integer:
		octets, err := p.input.SplitPrefix(uint64(s.Int.Length))
		if err != nil {
			return err
		}
		p.fill(IntegerValue(s.Int.Decode(octets)))
	case Variable:
		octets, err := p.input.SplitPrefix(uint64(s.Int.Length))
		if err != nil {
			return err
		}
		v := s.Int.Decode(octets)
		p.env[s.Name] = v
		log.Debugf("bound variable %s := %d", s.Name, v)
		p.fill(IntegerValue(v))
	case Bytes:
		octets, err := p.input.SplitPrefix(p.lookup(s.Name))
		if err != nil {
			return err
		}
		p.fill(BytesValue(octets))
	case Seq:
		p.push(frame{kind: partialSeqFrame, done: []Value{}, rest: s})
	case Repeat:
		p.push(frame{kind: partialRepeatFrame, spec: s.Inner, done: []Value{}, count: p.lookup(s.Name)})
	case Until:
		window, err := p.input.SplitPrefix(p.lookup(s.Name))
		if err != nil {
			return err
		}
		p.fill(SeqValue(p.subParse(s.Inner, window)...))
	case Switch:
		sel := p.lookup(s.Selector)
		chosen := s.branch(sel)
		if _, isStop := chosen.(Stop); isStop {
			return &stopSignal{spec: s, selector: sel}
		}
		log.Debugf("switch %s selects case %d", s.Selector, sel)
		p.push(frame{kind: preparedFrame, spec: chosen})
	default:
		panic(fmt.Sprintf("binspec: unknown layout element %T", s))
	}
	return nil
}

// subParse decodes a bounded sub-stream window, as carved out by an Until
// element, by running a fresh parser over it: variables bound inside stay
// inside, and a stop raised inside is absorbed here, ending up as the
// final element of the decoded sequence. A trailing window fragment too
// short for one more value is silently discarded.
func (p *Parser) subParse(inner Spec, window *chunked.Bytes) []Value {
	sub := NewParser(inner)
	sub.input = window
	values := []Value{}
	for !sub.input.IsEmpty() {
		before := sub.input.Len()
		v, err := sub.Next()
		if err != nil {
			log.Debugf("discarding %d trailing octets of sub-stream", sub.input.Len())
			break
		}
		values = append(values, v)
		if v.IsStop() || sub.input.Len() == before {
			// A rejected sub-stream ends here; so does a layout that
			// consumed nothing, as it would never exhaust the window.
			break
		}
		sub.Reset()
	}
	return values
}

// fill appends a finished value into the partial frame below, or installs
// the terminal done frame if the stack has run empty.
func (p *Parser) fill(v Value) {
	if len(p.stack) == 0 {
		p.stack = []frame{{kind: doneFrame, value: v}}
		return
	}
	top := &p.stack[len(p.stack)-1]
	top.done = append(top.done, v)
}

func (p *Parser) push(f frame) {
	p.stack = append(p.stack, f)
}

// lookup resolves a variable reference; referring to a variable that no
// Variable element has bound is a bug in the spec and aborts.
func (p *Parser) lookup(name string) uint64 {
	v, ok := p.env[name]
	if !ok {
		panic(fmt.Sprintf("binspec: unbound variable %q", name))
	}
	return v
}
