/*
Package binspec is a declarative engine for structured byte layouts: a
small language describing length-prefixed, variable-width, and conditional
binary formats, an incremental streaming parser, and the matching encoder.
Describe a wire format once -- as a terse format string or as a hand-built
Spec tree -- and decode octets arriving in arbitrary portions into value
trees, or turn such trees back into the exact wire representation. No
hand-rolled codec per protocol frame required.

The parser is resumable: whenever the octets queued so far don't cover the
next field, it suspends, reporting a lower bound on the octets still
missing, and later picks up exactly where it left off. This makes it a
natural fit for framed network protocols, where data trickles in at the
mercy of the transport; the stream subpackage supplies the glue for
pumping websocket or io.Reader streams through a parser in the background.

Layouts can skip padding, read integers of one to eight octets in either
octet order, bind length and selector variables, carve out bounded
sub-streams, repeat elements, and branch on previously read selectors --
including rejecting a stream outright on an unexpected selector.
*/
package binspec
