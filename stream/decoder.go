// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Declares the interface to running stream decodes as well as the decoder
// pump connecting a byte stream source to an incremental parser.

package stream

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/siemens/binspec"
	"github.com/siemens/binspec/chunked"
)

// Sink receives the decoded value trees of a stream, one call per value,
// in stream order. It is called from the decoder's pump goroutine, so a
// slow sink applies back pressure on the stream.
type Sink func(binspec.Value)

// Streamer gives control over an individual background stream decode.
type Streamer interface {
	// Stop this stream decode in an orderly manner. This operation will
	// block until the decode has finally terminated. It is also
	// idempotent.
	Stop()
	// Wait for the stream decode to terminate, but do not initiate the
	// termination.
	Wait()
	// StopAfter waits the specified duration for the stream decode to
	// terminate, and terminates it after the duration if necessary.
	StopAfter(d time.Duration)
}

// Decoder implements the Streamer interface: it pumps chunks from a byte
// stream source through an incremental parser in a background goroutine,
// handing each decoded value tree to the sink.
type Decoder struct {
	src  ChunkSource
	sink Sink
	// Signals that the decode (and the byte stream) finally has ended.
	done chan struct{}
}

// NewDecoder starts decoding the byte stream supplied by the given source
// against a layout spec, handing the decoded value trees to the sink. The
// returned Decoder controls the background decode. Decoding ends when the
// source ends, when the layout rejects the stream -- the rejection value is
// the last one the sink sees -- or when Stop is called.
func NewDecoder(spec binspec.Spec, src ChunkSource, sink Sink) *Decoder {
	d := &Decoder{
		src:  src,
		sink: sink,
		done: make(chan struct{}),
	}
	go d.pump(binspec.NewParser(spec))
	return d
}

// Stop the stream decode and wait for it to gracefully terminate. See also
// Wait for the usecase where a go routine needs to wait for the decode to
// terminate, but will not initiate the termination itself.
func (d *Decoder) Stop() {
	d.src.Close()
	<-d.done
}

// Wait for the stream decode to terminate, without initiating it. See also
// Stop.
func (d *Decoder) Wait() {
	<-d.done
}

// StopAfter waits for the stream decode to terminate and terminates it
// after the specified duration if necessary.
func (d *Decoder) StopAfter(duration time.Duration) {
	select {
	case <-d.done:
		// We're toast.
	case <-time.After(duration):
		d.Stop()
	}
}

// pump shovels chunks from the source into the parser and decoded values
// out of the parser into the sink, until either side is done.
func (d *Decoder) pump(parser *binspec.Parser) {
	defer close(d.done)
	for {
		before := parser.Remaining().Len()
		v, err := parser.Next()
		if err == nil {
			d.sink(v)
			if v.IsStop() {
				log.Debug("stream rejected by layout, closing source")
				d.src.Close()
				return
			}
			if parser.Remaining().Len() == before {
				// A layout consuming no octets at all would keep producing
				// values forever without ever draining the stream.
				log.Error("layout does not consume any stream octets, giving up")
				d.src.Close()
				return
			}
			parser.Reset()
			continue
		}
		// Underfed, so wait for more stream octets to arrive, or for the
		// stream to end or break.
		short := err.(*chunked.Shortfall)
		chunk, rerr := d.src.Read()
		if rerr != nil {
			if left := parser.Remaining().Len(); left > 0 {
				log.Debugf("stream ended with %d undecoded trailing octets, "+
					"at least %d more needed", left, short.Missing)
			} else {
				log.Debugf("stream ended: %s", rerr.Error())
			}
			return
		}
		parser.Supply(chunk)
	}
}
