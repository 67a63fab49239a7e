// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package binspec

import (
	"github.com/siemens/binspec/chunked"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// adbFrame is the wire image of an ADB-like frame for the "<3I%I2Is"
// layout: three little-endian u32s, the payload length, two more u32s,
// and then the payload octets.
func adbFrame(payload string) []byte {
	wire := []byte{}
	for _, u := range []uint64{1, 2, 3, uint64(len(payload)), 4, 5} {
		wire = append(wire, LE(4).Encode(u).Octets()...)
	}
	return append(wire, payload...)
}

// adbValue is the decoded tree the "<3I%I2Is" layout produces for an
// ADB-like frame with the given payload.
func adbValue(payload string) Value {
	return SeqValue(
		SeqValue(IntegerValue(1), IntegerValue(2), IntegerValue(3)),
		IntegerValue(uint64(len(payload))),
		SeqValue(IntegerValue(4), IntegerValue(5)),
		BytesValue(chunked.New([]byte(payload))),
	)
}

var _ = ginkgo.Describe("incremental parser", func() {

	ginkgo.It("decodes an ADB-like frame supplied in one go", func() {
		spec, err := ParseSpec("<3I%I2Is", "v")
		Expect(err).NotTo(HaveOccurred())
		p := NewParser(spec)
		p.Supply(adbFrame("hello"))
		v, err := p.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Equal(adbValue("hello"))).To(BeTrue(), "got %s", v)
		Expect(p.Remaining().IsEmpty()).To(BeTrue())
	})

	ginkgo.It("decodes identically regardless of chunking", func() {
		spec, err := ParseSpec("<3I%I2Is", "v")
		Expect(err).NotTo(HaveOccurred())
		wire := adbFrame("chunky")

		for _, stride := range []int{1, 3, 7, len(wire)} {
			p := NewParser(spec)
			var v Value
			for from := 0; from < len(wire); from += stride {
				to := from + stride
				if to > len(wire) {
					to = len(wire)
				}
				p.Supply(wire[from:to])
				v, err = p.Next()
				if to < len(wire) {
					Expect(err).To(BeAssignableToTypeOf(&chunked.Shortfall{}),
						"stride %d, offset %d", stride, to)
				}
			}
			Expect(err).NotTo(HaveOccurred(), "stride %d", stride)
			Expect(v.Equal(adbValue("chunky"))).To(BeTrue(), "stride %d: got %s", stride, v)
			Expect(p.Remaining().IsEmpty()).To(BeTrue())
		}
	})

	ginkgo.It("reports the exact shortfall of a truncated payload", func() {
		spec, err := ParseSpec(">%TBBIs", "v")
		Expect(err).NotTo(HaveOccurred())
		p := NewParser(spec)
		p.Supply([]byte{
			0x00, 0x00, 0x04, // payload length 4
			0xaa, 0xbb, // two single octets
			0x01, 0x02, 0x03, 0x04, // a u32
			0xde, 0xad, // only half the payload
		})
		_, err = p.Next()
		Expect(err).To(Equal(&chunked.Shortfall{Missing: 2}))

		p.Supply([]byte{0xbe, 0xef})
		v, err := p.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Equal(SeqValue(
			IntegerValue(4),
			IntegerValue(0xaa), IntegerValue(0xbb),
			IntegerValue(0x01020304),
			BytesValue(chunked.New([]byte{0xde, 0xad, 0xbe, 0xef})),
		))).To(BeTrue(), "got %s", v)
	})

	ginkgo.It("suspends idempotently", func() {
		p := NewParser(Integer{Int: BE(4)})
		p.Supply([]byte{0x01})
		for i := 0; i < 3; i++ {
			_, err := p.Next()
			Expect(err).To(Equal(&chunked.Shortfall{Missing: 3}))
		}
		p.Supply([]byte{0x02, 0x03, 0x04})
		v, err := p.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Integer()).To(Equal(uint64(0x01020304)))
	})

	ginkgo.It("rejects streams on unmatched switch selectors", func() {
		sw := Switch{
			Selector: "sel",
			Cases:    map[uint64]Spec{1: Integer{Int: BE(2)}, 2: Skip{N: 4}},
			Default:  Stop{},
		}
		spec := Seq{Variable{Int: U8(), Name: "sel"}, sw}

		p := NewParser(spec)
		p.Supply([]byte{3})
		v, err := p.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.IsStop()).To(BeTrue())
		cause, selector := v.StopCause()
		Expect(cause).To(Equal(Spec(sw)))
		Expect(selector).To(Equal(uint64(3)))

		p = NewParser(spec)
		p.Supply([]byte{1, 0x12, 0x34})
		v, err = p.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Equal(SeqValue(IntegerValue(1), IntegerValue(0x1234)))).To(BeTrue())

		p = NewParser(spec)
		p.Supply([]byte{2, 0, 0, 0, 0})
		v, err = p.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Equal(SeqValue(IntegerValue(2), EmptyValue()))).To(BeTrue())
	})

	ginkgo.It("absorbs stops at sub-stream boundaries", func() {
		inner := Seq{
			Variable{Int: U8(), Name: "s0"},
			Switch{Selector: "s0", Cases: map[uint64]Spec{1: Integer{Int: U8()}}},
		}
		spec := Seq{
			Variable{Int: U8(), Name: "len"},
			Until{Name: "len", Inner: inner},
		}
		p := NewParser(spec)
		p.Supply([]byte{4, 1, 0xaa, 3, 0x99})
		v, err := p.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.IsStop()).To(BeFalse())
		window := v.Index(1)
		Expect(window.Seq()).To(HaveLen(2))
		Expect(window.Index(0).Equal(SeqValue(IntegerValue(1), IntegerValue(0xaa)))).To(BeTrue())
		Expect(window.Index(1).IsStop()).To(BeTrue())
		// The rejection stays confined to the sub-stream; the remaining
		// outer stream octets are not affected.
		Expect(p.Remaining().IsEmpty()).To(BeTrue())
	})

	ginkgo.It("scopes sub-stream variables to their window", func() {
		spec := Seq{
			Variable{Int: U8(), Name: "len"},
			Until{Name: "len", Inner: Seq{Variable{Int: U8(), Name: "n"}, Bytes{Name: "n"}}},
			Bytes{Name: "n"},
		}
		p := NewParser(spec)
		p.Supply([]byte{3, 2, 0xca, 0xfe, 0xff})
		Expect(func() { p.Next() }).To(Panic())
	})

	ginkgo.It("decodes zero-length windows and repetitions without consuming", func() {
		spec := Seq{
			Variable{Int: U8(), Name: "n"},
			Repeat{Name: "n", Inner: Integer{Int: U8()}},
		}
		p := NewParser(spec)
		p.Supply([]byte{0, 0x42})
		v, err := p.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Equal(SeqValue(IntegerValue(0), SeqValue()))).To(BeTrue())
		Expect(p.Remaining().Len()).To(Equal(uint64(1)))

		spec = Seq{
			Variable{Int: U8(), Name: "len"},
			Until{Name: "len", Inner: Integer{Int: U8()}},
		}
		p = NewParser(spec)
		p.Supply([]byte{0})
		v, err = p.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Equal(SeqValue(IntegerValue(0), SeqValue()))).To(BeTrue())
	})

	ginkgo.It("decodes repetitions element by element", func() {
		spec := Seq{
			Variable{Int: U8(), Name: "n"},
			Repeat{Name: "n", Inner: Integer{Int: BE(2)}},
		}
		p := NewParser(spec)
		p.Supply([]byte{2, 0x01, 0x02})
		_, err := p.Next()
		Expect(err).To(Equal(&chunked.Shortfall{Missing: 2}))
		p.Supply([]byte{0x03, 0x04})
		v, err := p.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Equal(SeqValue(
			IntegerValue(2),
			SeqValue(IntegerValue(0x0102), IntegerValue(0x0304)),
		))).To(BeTrue())
	})

	ginkgo.It("decodes an empty sequence without any input", func() {
		p := NewParser(Seq{})
		v, err := p.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Equal(SeqValue())).To(BeTrue())
	})

	ginkgo.It("resets interpretive state but keeps the buffer", func() {
		spec, err := ParseSpec("%Bs", "v")
		Expect(err).NotTo(HaveOccurred())
		p := NewParser(spec)
		p.Supply([]byte{2, 0xaa, 0xbb, 1, 0xcc})

		v, err := p.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Equal(SeqValue(IntegerValue(2),
			BytesValue(chunked.New([]byte{0xaa, 0xbb}))))).To(BeTrue())

		p.Reset()
		v, err = p.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Equal(SeqValue(IntegerValue(1),
			BytesValue(chunked.New([]byte{0xcc}))))).To(BeTrue())
		Expect(p.Remaining().IsEmpty()).To(BeTrue())
	})

	ginkgo.It("parses batches up to shortfall", func() {
		spec, err := ParseSpec("%Bs", "v")
		Expect(err).NotTo(HaveOccurred())
		p := NewParser(spec)
		p.Supply([]byte{1, 0xaa, 2, 0xbb, 0xcc, 3, 0xdd})
		vs := p.ParseAll()
		Expect(vs).To(HaveLen(2))
		Expect(vs[0].Equal(SeqValue(IntegerValue(1),
			BytesValue(chunked.New([]byte{0xaa}))))).To(BeTrue())
		Expect(vs[1].Equal(SeqValue(IntegerValue(2),
			BytesValue(chunked.New([]byte{0xbb, 0xcc}))))).To(BeTrue())
		// The unfinished trailing value stays in the buffer.
		Expect(p.Remaining().Len()).To(Equal(uint64(2)))
	})

	ginkgo.It("ends batches on stream rejection", func() {
		spec, err := ParseSpec("%B{1=B}", "v")
		Expect(err).NotTo(HaveOccurred())
		p := NewParser(spec)
		p.Supply([]byte{1, 0x42, 7, 1, 0x43})
		vs := p.ParseAll()
		Expect(vs).To(HaveLen(1))
		Expect(vs[0].Equal(SeqValue(IntegerValue(1), IntegerValue(0x42)))).To(BeTrue())
	})

	ginkgo.It("aborts on references to unbound variables", func() {
		p := NewParser(Bytes{Name: "nothere"})
		p.Supply([]byte{1, 2, 3})
		Expect(func() { p.Next() }).To(Panic())
	})

})
