/*
Package stream pumps byte streams through incremental binspec parsers in
the background. A Decoder reads chunk after chunk from a ChunkSource --
an io.Reader or a websocket connection -- feeds them to a parser, and hands
every decoded value tree to a sink callback as soon as enough octets have
arrived. Decoding goes on until the source ends, the stream is rejected by
the layout spec, or the Decoder is stopped.

DecodeURL additionally takes care of reaching a remote byte stream served
over a websocket: scheme juggling, handshake time limits, bearer token
authentication, and the graceful websocket close dance.
*/
package stream
