// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Implements reaching remote byte streams served over websockets, hiding
// the details of scheme juggling, handshake time limits, and
// authentication.

package stream

import (
	"crypto/tls"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/siemens/binspec"
)

// DecodeURL connects to a byte stream served over a websocket at the
// given URL and starts decoding it against the layout spec in the
// background, handing the decoded value trees to the sink. The URL may
// use the http/https schemes as an alias for ws/wss, and a bare
// host[:port][/path] defaults to ws. The returned Streamer controls the
// running decode.
func DecodeURL(streamurl string, spec binspec.Spec, sink Sink, opts *Options) (Streamer, error) {
	src, err := DialSource(streamurl, opts)
	if err != nil {
		return nil, err
	}
	return NewDecoder(spec, src, sink), nil
}

// DialSource connects to a byte stream served over a websocket at the
// given URL and returns it as a byte stream source, for feeding a decoder
// of the caller's choosing. See DecodeURL for the accepted URL schemes.
func DialSource(streamurl string, opts *Options) (ChunkSource, error) {
	if opts == nil {
		opts = &Options{}
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultServiceTimeout
	}
	surl, err := parseStreamURL(streamurl)
	if err != nil {
		return nil, err
	}
	wsheaders := http.Header{}
	if opts.BearerToken != "" {
		wsheaders.Set("Authorization", "Bearer "+opts.BearerToken)
	}
	log.Debugf("connecting to stream service %q, time limit %s", surl.String(), timeout)
	wsd := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: timeout,
	}
	if opts.InsecureSkipVerify && surl.Scheme == "wss" {
		wsd.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	wscon, resp, err := wsd.Dial(surl.String(), wsheaders)
	if err != nil {
		log.Errorf("cannot contact stream service via websocket: %s", err.Error())
		return nil, err
	}
	log.Debugf("stream service initial HTTP response: %+v", *resp)
	return NewWebsocketSource(wscon), nil
}

// parseStreamURL normalizes a stream service URL onto the ws/wss schemes
// and rejects URL elements that have no place in a stream service
// address.
func parseStreamURL(streamurl string) (*url.URL, error) {
	if !strings.Contains(streamurl, "://") {
		streamurl = "ws://" + streamurl
	}
	surl, err := url.Parse(streamurl)
	if err != nil {
		return nil, err
	}
	switch surl.Scheme {
	case "http":
		surl.Scheme = "ws"
	case "https":
		surl.Scheme = "wss"
	case "ws", "wss":
		// ...already fine as it is.
	default:
		return nil, errors.New("only ws, wss, http, and https stream URLs allowed")
	}
	if surl.User != nil || surl.Opaque != "" || surl.Fragment != "" {
		return nil, errors.New("only host name, optional port number, and path allowed")
	}
	return surl, nil
}
