// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Provides the "binspec encode" command: the inverse of decoding, turning
// a value document back into its wire bytes.

package command

import (
	"fmt"
	"io"
	"os"

	"github.com/siemens/binspec"
	"github.com/siemens/binspec/api"
	"github.com/siemens/binspec/chunked"
	"github.com/siemens/binspec/cli"
	"github.com/thediveo/go-plugger/v3"
	"gopkg.in/yaml.v3"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// encodeCmd defines the "binspec encode" command.
var encodeCmd = &cobra.Command{
	Use:   "encode [flags] FORMAT",
	Short: "Encode a value document into its wire bytes.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return encode(cmd, args[0])
	},
}

func init() {
	plugger.Group[cli.SetupCLI]().Register(EncodeSetupCLI, plugger.WithPlugin("encode"))
	plugger.Group[cli.CommandExamples]().Register(
		func() map[string]string {
			return map[string]string{
				"encode": `# Encode a value document into ADB-like frame bytes.
binspec encode -r frame.yaml -w frame.bin '<3I%I2Is'`,
			}
		},
		plugger.WithPlugin("encode"))
}

// EncodeSetupCLI adds the "encode" command.
func EncodeSetupCLI(cmd *cobra.Command) {
	cmd.AddCommand(encodeCmd)
	f := encodeCmd.Flags()
	f.StringP("read", "r", "-",
		"Read the value document from file. Use \"-\" for stdin.")
	f.StringP("write", "w", "-",
		"Write the wire bytes to file. Use \"-\" for stdout.")
}

// encode reads a value document and writes out its wire bytes under the
// specified format.
func encode(cmd *cobra.Command, format string) error {
	spec, err := ResolveFormat(format)
	if err != nil {
		return err
	}
	// Read and understand the value document...
	in := io.Reader(os.Stdin)
	if rname := mustString(cmd, "read"); rname != "-" {
		f, err := os.Open(rname)
		if err != nil {
			return fmt.Errorf("cannot read value document: %w", err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("cannot read value document: %w", err)
	}
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid value document: %w", err)
	}
	value, err := api.FromDocument(doc)
	if err != nil {
		return fmt.Errorf("invalid value document: %w", err)
	}
	// ...then lower it onto the wire.
	octets, err := safeEncode(spec, value)
	if err != nil {
		return err
	}
	out := os.Stdout
	if wname := mustString(cmd, "write"); wname != "-" {
		var err error // ...oh, the joy of shady variable shadowing when misusing ":="!
		out, err = os.OpenFile(wname, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
		if err != nil {
			return fmt.Errorf("cannot create wire bytes file: %w", err)
		}
		defer out.Close()
	}
	wire := octets.Octets()
	if _, err := out.Write(wire); err != nil {
		return fmt.Errorf("cannot write wire bytes: %w", err)
	}
	log.Debugf("encoded %d wire bytes", len(wire))
	return nil
}

// safeEncode turns the encoder's abort-on-misuse panics into ordinary
// errors: at the CLI boundary a mismatch between value document and
// format is user input trouble, not a bug of ours.
func safeEncode(spec binspec.Spec, value binspec.Value) (octets *chunked.Bytes, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cannot encode value document: %v", r)
		}
	}()
	return binspec.Encode(spec, value), nil
}
