// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package remote

import (
	"github.com/siemens/binspec/cli"
	"github.com/siemens/binspec/cli/command"
	"github.com/siemens/binspec/stream"
	"github.com/spf13/cobra"
	"github.com/thediveo/go-plugger/v3"
)

// StreamURL specifies the URL of a remote service streaming the bytes to
// decode over a websocket.
var StreamURL string

// Insecure skips invalid server certificates.
var Insecure bool

func init() {
	plugger.Group[cli.SetupCLI]().Register(
		RemoteSetupCLI, plugger.WithPlugin("remote"))
	plugger.Group[cli.NewSource]().Register(
		NewRemoteSource, plugger.WithPlugin("remote"))
	plugger.Group[cli.CommandExamples]().Register(
		func() map[string]string {
			return map[string]string{
				"decode": `# Decode frames streamed live from a remote websocket service.
binspec --url wss://streamer:5002/raw decode '<3I%I2Is'

# The same, but piping the decoded values into jq.
binspec --url streamer:5002/raw decode -o json '<3I%I2Is' | jq .`,
			}
		},
		plugger.WithPlugin("remote"), plugger.WithPlacement("<"))
}

// RemoteSetupCLI registers the remote byte stream CLI flags.
func RemoteSetupCLI(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&StreamURL, "url", "",
		`[ws://|wss://]hostname[:port][/path] of a remote service streaming
the bytes to decode over a websocket`)
	command.Annotate(pf, "url", command.MutualFlagGroupAnnotation, command.SourceGroup)
	pf.BoolVarP(&Insecure, "insecure", "k", false,
		"Danger: skip invalid server certificates when connecting to a remote stream service")
}

// NewRemoteSource returns a websocket byte stream source when a remote
// stream URL was specified on the command line.
func NewRemoteSource() (stream.ChunkSource, error) {
	// --url for decoding a remotely served byte stream...
	if StreamURL != "" {
		opts := &stream.Options{
			BearerToken:        command.BearerToken,
			Timeout:            command.ReqTimeout,
			InsecureSkipVerify: Insecure,
		}
		return stream.DialSource(StreamURL, opts)
	}
	return nil, nil
}
