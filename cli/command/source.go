// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package command

import (
	"os"

	"github.com/siemens/binspec/cli"
	"github.com/siemens/binspec/stream"
	"github.com/thediveo/go-plugger/v3"
)

// NewSource returns a suitable byte stream source by asking the
// registered source factories one after another until the first one
// returns a source or an error. When no factory feels responsible, the
// named file serves as the source, with "-" meaning stdin.
func NewSource(filename string) (stream.ChunkSource, error) {
	for _, newSource := range plugger.Group[cli.NewSource]().Symbols() {
		src, err := newSource()
		if err != nil {
			return nil, err
		}
		if src != nil {
			return src, nil
		}
	}
	if filename == "" || filename == "-" {
		return stream.NewReaderSource(os.Stdin), nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	return stream.NewReaderSource(f), nil
}
