// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package cli

import (
	"strings"

	"github.com/thediveo/go-plugger/v3"
)

// Examples collects the example sections all registered plugins supply
// for the specified command, in plugin order. The individual example
// blocks end up separated by empty lines, without a trailing newline for
// the overall section, as that is what cobra wants.
func Examples(command string) string {
	blocks := []string{}
	for _, example := range plugger.Group[CommandExamples]().Symbols() {
		text := strings.TrimSuffix(example()[command], "\n")
		if text == "" {
			continue
		}
		blocks = append(blocks, text)
	}
	return strings.Join(blocks, "\n\n")
}
