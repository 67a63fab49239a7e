// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Provides the "binspec decode" command for decoding binary byte streams
// from files, stdin, or remote stream services into value documents.

package command

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/siemens/binspec"
	"github.com/siemens/binspec/api"
	"github.com/siemens/binspec/cli"
	"github.com/siemens/binspec/stream"
	"github.com/thediveo/go-plugger/v3"
	"github.com/thediveo/klo"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// decodeCmd defines the "binspec decode" command.
var decodeCmd = &cobra.Command{
	Use:   "decode [flags] FORMAT",
	Short: "Decode a binary byte stream into value documents.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decode(cmd, args[0])
	},
}

func init() {
	plugger.Group[cli.SetupCLI]().Register(DecodeSetupCLI, plugger.WithPlugin("decode"))
	plugger.Group[cli.CommandExamples]().Register(
		func() map[string]string {
			return map[string]string{
				"decode": `# Decode ADB-like frames from a capture file.
binspec decode -r frames.bin '<3I%I2Is'

# Decode the first HTTP/2-ish frame from stdin as JSON.
cat frames.bin | binspec decode -n 1 -o json '>%TBBIs'

# Decode using a named format from a catalog.
binspec -c formats.yaml decode -r frames.bin adb`,
			}
		},
		plugger.WithPlugin("decode"))
}

// DecodeSetupCLI adds the "decode" command.
func DecodeSetupCLI(cmd *cobra.Command) {
	cmd.AddCommand(decodeCmd)
	f := decodeCmd.Flags()
	f.StringP("read", "r", "-",
		"Read the byte stream from file. Use \"-\" for stdin.")
	f.Uint64P("max", "n", 0,
		"Stop after decoding this many values; 0 decodes until the stream ends.")
	f.StringP("output", "o", "yaml",
		"Output format. One of: json|yaml|jsonpath=...|jsonpath-file=...")
}

// decode a byte stream using the specified format and dump the decoded
// value documents.
func decode(cmd *cobra.Command, format string) error {
	spec, err := ResolveFormat(format)
	if err != nil {
		return err
	}
	log.Debugf("decoding with layout %s", spec)
	prn, err := klo.PrinterFromFlag(
		mustString(cmd, "output"), &klo.Specs{DefaultColumnSpec: "VALUE:{}"})
	if err != nil {
		return err
	}
	filename := mustString(cmd, "read")
	src, err := NewSource(filename)
	if err != nil {
		return fmt.Errorf("cannot open byte stream: %w", err)
	}
	max := mustUint64(cmd, "max")
	// Collect the decoded value trees as plain documents; the sink runs
	// on the decoder's pump goroutine, with the final Wait ordering the
	// collected documents before our reading of them.
	docs := []interface{}{}
	var decoder stream.Streamer
	ready := make(chan struct{})
	var stopOnce sync.Once
	decoder = stream.NewDecoder(spec, src, func(v binspec.Value) {
		docs = append(docs, api.ToDocument(v))
		if max != 0 && uint64(len(docs)) >= max {
			// Stop blocks until the pump -- that is, we ourselves -- has
			// terminated, so it must be triggered from the outside; and
			// only after the decoder is surely in place.
			stopOnce.Do(func() {
				go func() {
					<-ready
					decoder.Stop()
				}()
			})
		}
	})
	close(ready)
	// Keep decoding until the stream ends or we got told to call it a
	// day... because this CLI tool was SIGINT'ed or SIGTERM'ed.
	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupted
		log.Debug("interrupted; closing byte stream...")
		decoder.Stop()
	}()
	decoder.Wait()
	signal.Stop(interrupted)
	if max != 0 && uint64(len(docs)) > max {
		docs = docs[:max]
	}
	prn.Fprint(os.Stdout, docs)
	return nil
}

// mustString returns the string value of a flag that is known to exist.
func mustString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(err)
	}
	return v
}

// mustUint64 returns the uint64 value of a flag that is known to exist.
func mustUint64(cmd *cobra.Command, name string) uint64 {
	v, err := cmd.Flags().GetUint64(name)
	if err != nil {
		panic(err)
	}
	return v
}
