// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package stream

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// gracefulCloseTimeout bounds how long a websocket close is allowed to
// stay graceful before the underlying transport gets yanked.
const gracefulCloseTimeout = 10 * time.Second

// WebsocketSource is a byte stream source reading binary messages from a
// (client) websocket, with graceful handling of the websocket closing
// procedure on either side.
type WebsocketSource struct {
	conn    *websocket.Conn
	closing bool       // Are we in the process of gracefully closing?
	m       sync.Mutex // Synchronize access to the closing state.
	// Signals that the websocket is closed, by closing (sic!)
	// this channel.
	closed chan struct{}
}

// NewWebsocketSource returns a byte stream source wrapping an already
// connected gorilla websocket, taking over the graceful close handling.
func NewWebsocketSource(conn *websocket.Conn) *WebsocketSource {
	return &WebsocketSource{
		conn:   conn,
		closed: make(chan struct{}),
	}
}

// Read returns the payload of the next binary websocket message. It
// correctly handles gracefully closing the websocket when the peer
// (server) signals to do so; the client side can trigger a close itself
// using the Close method. When the websocket has been gracefully closed,
// Read returns a websocket.CloseError with the peer's close code and
// text.
func (ws *WebsocketSource) Read() (data []byte, err error) {
	msgType, data, err := ws.conn.ReadMessage()
	if err == nil {
		if msgType == websocket.BinaryMessage {
			return data, nil
		}
		return nil, fmt.Errorf("unexpected websocket text message received")
	}
	// All non-close errors get reported immediately; a close control
	// message instead needs some handling to carry out the graceful close
	// procedure correctly.
	cerr, ok := err.(*websocket.CloseError)
	if !ok {
		return nil, err
	}
	// If the peer sent its close in response to us sending one beforehand,
	// then both sides are done. Otherwise the peer is closing first and we
	// need to acknowledge with our own close control message.
	ws.m.Lock()
	defer ws.m.Unlock()
	if !ws.closing {
		ws.closing = true
		log.Debug("server closes websocket stream, acknowledging close")
		ws.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "ciao"))
	} else {
		log.Debug("server acknowledged websocket stream close")
	}
	ws.conn.Close()
	close(ws.closed)
	return nil, cerr
}

// Close gracefully closes this websocket stream source and waits for the
// close to complete. The waiting is time limited, so a non-responsive peer
// won't block us forever: after a "graceful" timeout the underlying
// transport connection gets closed in any case.
func (ws *WebsocketSource) Close() error {
	ws.m.Lock()
	func() { // locked section
		defer ws.m.Unlock()
		// Don't send a close control message when the close dance is
		// already in progress, regardless of which side started it.
		if !ws.closing {
			ws.closing = true
			log.Debug("initiating graceful websocket stream close")
			ws.conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "ciao"))
		}
	}()
	log.Debug("waiting for graceful close to be finished...")
	select {
	case <-time.After(gracefulCloseTimeout):
		// Force the transport connection to close in case the peer hangs,
		// not proceeding in the graceful websocket close.
		log.Debug("graceful websocket close timeout; forced closed")
		ws.conn.Close()
		close(ws.closed)
	case <-ws.closed:
		// Done: either just gracefully closed or already closed.
	}
	log.Debug("websocket stream closed")
	return nil
}
