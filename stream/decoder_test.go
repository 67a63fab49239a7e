// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package stream

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/siemens/binspec"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// collector is a sink gathering decoded value trees for inspection after
// the decode has terminated.
type collector struct {
	m      sync.Mutex
	values []binspec.Value
}

func (c *collector) sink(v binspec.Value) {
	c.m.Lock()
	defer c.m.Unlock()
	c.values = append(c.values, v)
}

func (c *collector) collected() []binspec.Value {
	c.m.Lock()
	defer c.m.Unlock()
	return c.values
}

// frameSpec is a simple length-prefixed framing: a single length octet,
// followed by that many payload octets.
func frameSpec() binspec.Spec {
	spec, err := binspec.ParseSpec("%Bs", "v")
	Expect(err).NotTo(HaveOccurred())
	return spec
}

var _ = Describe("stream decoder", func() {

	It("decodes a finite stream to its end", func() {
		wire := []byte{1, 0xaa, 3, 0xbb, 0xcc, 0xdd, 2, 0xee, 0xff}
		c := &collector{}
		d := NewDecoder(frameSpec(), NewReaderSource(bytes.NewReader(wire)), c.sink)
		d.Wait()
		values := c.collected()
		Expect(values).To(HaveLen(3))
		Expect(values[0].Index(1).Bytes().Octets()).To(Equal([]byte{0xaa}))
		Expect(values[1].Index(1).Bytes().Octets()).To(Equal([]byte{0xbb, 0xcc, 0xdd}))
		Expect(values[2].Index(1).Bytes().Octets()).To(Equal([]byte{0xee, 0xff}))
	})

	It("decodes across dribbling chunk deliveries", func() {
		r, w := io.Pipe()
		c := &collector{}
		d := NewDecoder(frameSpec(), NewReaderSource(r), c.sink)
		go func() {
			defer w.Close()
			for _, o := range []byte{2, 0xca, 0xfe, 1, 0x42} {
				w.Write([]byte{o})
				time.Sleep(time.Millisecond)
			}
		}()
		d.Wait()
		values := c.collected()
		Expect(values).To(HaveLen(2))
		Expect(values[0].Index(1).Bytes().Octets()).To(Equal([]byte{0xca, 0xfe}))
		Expect(values[1].Index(1).Bytes().Octets()).To(Equal([]byte{0x42}))
	})

	It("leaves an unfinished trailing value undelivered", func() {
		wire := []byte{2, 0xaa, 0xbb, 5, 0xcc}
		c := &collector{}
		d := NewDecoder(frameSpec(), NewReaderSource(bytes.NewReader(wire)), c.sink)
		d.Wait()
		Expect(c.collected()).To(HaveLen(1))
	})

	It("terminates on stream rejection, delivering the stop value last", func() {
		spec, err := binspec.ParseSpec("%B{1=B}", "v")
		Expect(err).NotTo(HaveOccurred())
		// An endless pipe: only the rejection may end this decode.
		r, w := io.Pipe()
		go func() {
			w.Write([]byte{1, 0x42, 7})
		}()
		c := &collector{}
		d := NewDecoder(spec, NewReaderSource(r), c.sink)
		d.Wait()
		values := c.collected()
		Expect(values).To(HaveLen(2))
		Expect(values[0].IsStop()).To(BeFalse())
		Expect(values[1].IsStop()).To(BeTrue())
		w.Close()
	})

	It("stops on request", func() {
		r, w := io.Pipe()
		defer w.Close()
		c := &collector{}
		d := NewDecoder(frameSpec(), NewReaderSource(r), c.sink)
		go d.Stop()
		d.Wait()
		Expect(c.collected()).To(BeEmpty())
	})

	It("stops after a deadline", func() {
		r, w := io.Pipe()
		defer w.Close()
		c := &collector{}
		d := NewDecoder(frameSpec(), NewReaderSource(r), c.sink)
		start := time.Now()
		d.StopAfter(50 * time.Millisecond)
		Expect(time.Since(start)).To(BeNumerically(">=", 50*time.Millisecond))
		d.Wait()
	})

})
