// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Defines the options common to reaching remote byte streams -- not that
// there are that many, but this way we make explicit what applies to any
// remote stream regardless of the transport details.

package stream

import "time"

// DefaultServiceTimeout specifies the time limit for establishing a
// stream connection to a remote byte stream service, including the
// websocket handshake phase.
const DefaultServiceTimeout = 30 * time.Second

// Options gives some degree of control over how to reach a remote byte
// stream.
type Options struct {
	// BearerToken optionally specifies the bearer token to use when
	// connecting to the remote stream service.
	BearerToken string
	// Timeout specifies a time limit for establishing the stream
	// connection, including the websocket handshake phase; zero means
	// DefaultServiceTimeout.
	Timeout time.Duration
	// InsecureSkipVerify skips the verification of the server certificate
	// when connecting via TLS. Dangerous, only for lab setups.
	InsecureSkipVerify bool
}
