// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package chunked

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// iota16 returns the octets first..last as a slice, for building test
// buffers without typing out all the literals.
func iota16(first, last byte) []byte {
	octets := make([]byte, 0, last-first+1)
	for o := first; o <= last; o++ {
		octets = append(octets, o)
	}
	return octets
}

var _ = Describe("chunked bytes", func() {

	It("appends and counts octets", func() {
		b := New()
		Expect(b.IsEmpty()).To(BeTrue())
		b.Append([]byte{1, 2, 3})
		b.Append([]byte{})
		b.Append([]byte{4})
		Expect(b.Len()).To(Equal(uint64(4)))
		Expect(b.IsEmpty()).To(BeFalse())
		Expect(b.Octets()).To(Equal([]byte{1, 2, 3, 4}))

		o := New([]byte{5, 6})
		b.Extend(o)
		Expect(b.Octets()).To(Equal([]byte{1, 2, 3, 4, 5, 6}))
		Expect(o.Len()).To(Equal(uint64(2)))
	})

	It("compares by octet content across re-chunkings", func() {
		chopped := New(iota16(1, 5), []byte{6, 7}, []byte{8}, []byte{9, 10}, iota16(11, 16))
		rechopped := New([]byte{1, 2, 3, 4}, []byte{5, 6, 7}, iota16(8, 16))
		solid := New(iota16(1, 16))
		longer := New(append(iota16(1, 16), 17))

		Expect(chopped.Equal(rechopped)).To(BeTrue())
		Expect(rechopped.Equal(chopped)).To(BeTrue())
		Expect(chopped.Equal(solid)).To(BeTrue())
		Expect(rechopped.Equal(solid)).To(BeTrue())
		Expect(chopped.Equal(longer)).To(BeFalse())
		Expect(solid.Equal(longer)).To(BeFalse())
	})

	It("extracts prefixes across chunk boundaries", func() {
		b := New(iota16(1, 5), []byte{6, 7}, []byte{8}, []byte{9, 10}, iota16(11, 16))

		p, err := b.SplitPrefix(4)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Equal(New(iota16(1, 4)))).To(BeTrue())

		p, err = b.SplitPrefix(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Equal(New([]byte{5}))).To(BeTrue())

		p, err = b.SplitPrefix(4)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Equal(New(iota16(6, 9)))).To(BeTrue())

		p, err = b.SplitPrefix(7)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Equal(New(iota16(10, 16)))).To(BeTrue())

		Expect(b.IsEmpty()).To(BeTrue())
		_, err = b.SplitPrefix(4)
		Expect(err).To(Equal(&Shortfall{Missing: 4}))
	})

	It("keeps the buffer untouched on underflow", func() {
		b := New([]byte{1, 2, 3}, []byte{4, 5, 6})

		_, err := b.SplitPrefix(20)
		Expect(err).To(Equal(&Shortfall{Missing: 14}))
		Expect(b.Equal(New(iota16(1, 6)))).To(BeTrue())

		p, err := b.SplitPrefix(4)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Equal(New(iota16(1, 4)))).To(BeTrue())
		Expect(b.Equal(New([]byte{5, 6}))).To(BeTrue())

		_, err = b.SplitPrefix(4)
		Expect(err).To(Equal(&Shortfall{Missing: 2}))
		Expect(b.Equal(New([]byte{5, 6}))).To(BeTrue())
	})

	It("rejoins split prefixes into the original content", func() {
		b := New([]byte{1, 2, 3}, []byte{4, 5})
		p, err := b.SplitPrefix(2)
		Expect(err).NotTo(HaveOccurred())
		p.Extend(b)
		Expect(p.Equal(New(iota16(1, 5)))).To(BeTrue())
	})

	It("zero-fills", func() {
		Expect(ZeroFill(0).IsEmpty()).To(BeTrue())
		Expect(ZeroFill(3).Octets()).To(Equal([]byte{0, 0, 0}))
	})

	It("resizes by padding and truncating", func() {
		b := New([]byte{1, 2}, []byte{3})
		Expect(b.Resize(5).Octets()).To(Equal([]byte{1, 2, 3, 0, 0}))
		Expect(b.Resize(2).Octets()).To(Equal([]byte{1, 2}))
		Expect(b.Resize(3).Octets()).To(Equal([]byte{1, 2, 3}))
		Expect(b.Resize(0).IsEmpty()).To(BeTrue())
		// ...and the resized-from buffer stays as it was.
		Expect(b.Octets()).To(Equal([]byte{1, 2, 3}))
	})

})
