// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Provides the chunked byte buffer underlying the binspec parser and
// encoder: an ordered queue of byte slices that supports cheap append and
// prefix extraction without ever gluing the chunks together.

package chunked

import "fmt"

// Bytes is an ordered queue of byte slices together with the cached total
// octet count. Appending more octets and carving off a prefix are cheap and
// never copy or flatten the already-queued chunks. The queued slices are
// treated as immutable: a split hands out references to the shared
// underlying arrays, so callers must not scribble over slices they have
// passed in.
type Bytes struct {
	chunks [][]byte
	length uint64
}

// New returns a fresh chunked byte buffer queueing the given slices in
// order. Empty slices are dropped on the floor as they don't contribute any
// octets anyway.
func New(chunks ...[]byte) *Bytes {
	b := &Bytes{}
	for _, c := range chunks {
		b.Append(c)
	}
	return b
}

// ZeroFill returns a chunked byte buffer consisting of n zero octets.
func ZeroFill(n uint64) *Bytes {
	if n == 0 {
		return New()
	}
	return New(make([]byte, n))
}

// Append queues another byte slice at the end of this buffer. The slice is
// referenced, not copied.
func (b *Bytes) Append(c []byte) {
	if len(c) == 0 {
		return
	}
	b.chunks = append(b.chunks, c)
	b.length += uint64(len(c))
}

// Extend queues all chunks of another buffer at the end of this buffer,
// again without copying any octets. The other buffer is left untouched.
func (b *Bytes) Extend(o *Bytes) {
	b.chunks = append(b.chunks, o.chunks...)
	b.length += o.length
}

// Len returns the total number of octets queued in this buffer.
func (b *Bytes) Len() uint64 {
	return b.length
}

// IsEmpty returns true if this buffer doesn't hold any octets at all.
func (b *Bytes) IsEmpty() bool {
	return b.length == 0
}

// SplitPrefix carves the first n octets off this buffer and returns them as
// a new buffer, leaving only the remaining octets behind. If fewer than n
// octets are queued, then SplitPrefix returns a Shortfall telling how many
// octets are missing and leaves the buffer exactly as it was.
func (b *Bytes) SplitPrefix(n uint64) (*Bytes, error) {
	if b.length < n {
		return nil, &Shortfall{Missing: n - b.length}
	}
	prefix := &Bytes{}
	remaining := n
	for remaining > 0 {
		c := b.chunks[0]
		if uint64(len(c)) <= remaining {
			prefix.Append(c)
			b.chunks = b.chunks[1:]
			b.length -= uint64(len(c))
			remaining -= uint64(len(c))
			continue
		}
		// The split point lies inside this chunk, so both sides share its
		// underlying array.
		prefix.Append(c[:remaining])
		b.chunks[0] = c[remaining:]
		b.length -= remaining
		remaining = 0
	}
	return prefix, nil
}

// Resize returns a new buffer of exactly n octets: the contents of this
// buffer padded with zero octets if it is too short, or cut off after n
// octets if it is too long. This buffer is left untouched.
func (b *Bytes) Resize(n uint64) *Bytes {
	resized := &Bytes{}
	remaining := n
	for _, c := range b.chunks {
		if remaining == 0 {
			break
		}
		if uint64(len(c)) > remaining {
			c = c[:remaining]
		}
		resized.Append(c)
		remaining -= uint64(len(c))
	}
	if remaining > 0 {
		resized.Append(make([]byte, remaining))
	}
	return resized
}

// Equal returns true if both buffers queue the identical octet sequence,
// regardless of how that sequence happens to be chopped into chunks.
func (b *Bytes) Equal(o *Bytes) bool {
	if b.length != o.length {
		return false
	}
	bi, oi := 0, 0 // chunk indices
	bo, oo := 0, 0 // intra-chunk offsets
	for bi < len(b.chunks) && oi < len(o.chunks) {
		bc, oc := b.chunks[bi][bo:], o.chunks[oi][oo:]
		n := len(bc)
		if len(oc) < n {
			n = len(oc)
		}
		for i := 0; i < n; i++ {
			if bc[i] != oc[i] {
				return false
			}
		}
		if bo += n; bo == len(b.chunks[bi]) {
			bi, bo = bi+1, 0
		}
		if oo += n; oo == len(o.chunks[oi]) {
			oi, oo = oi+1, 0
		}
	}
	return true
}

// Octets returns the buffer contents as a single contiguous byte slice.
// This is the only operation that flattens, so it is meant for small reads
// (such as decoding an integer field) and for final results, not for
// shuffling buffers around.
func (b *Bytes) Octets() []byte {
	flat := make([]byte, 0, b.length)
	for _, c := range b.chunks {
		flat = append(flat, c...)
	}
	return flat
}

// String renders the buffer contents for diagnostics.
func (b *Bytes) String() string {
	return fmt.Sprintf("chunked.Bytes(% x)", b.Octets())
}

// Shortfall reports that a buffer operation would have needed more octets
// than are currently queued. It is the one recoverable error in binspec:
// callers queue at least Missing further octets and simply retry.
type Shortfall struct {
	// Number of octets missing for the failed operation to succeed.
	Missing uint64
}

// Error returns the shortfall in human-readable form.
func (s *Shortfall) Error() string {
	return fmt.Sprintf("chunked: need at least %d more octets", s.Missing)
}
