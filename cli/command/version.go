// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package command

import (
	"fmt"
	"strings"

	"github.com/siemens/binspec"
	"github.com/siemens/binspec/cli"
	"github.com/spf13/cobra"
	"github.com/thediveo/go-plugger/v3"
)

// Provides the “binspec version” command. The semantic version is the one
// defined for the main binspec library package, so there's no separate
// version number for the binspec CLI command. In addition, the version
// command lists the included byte stream source types.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version (with integrated byte stream sources).",
	Run: func(cmd *cobra.Command, args []string) {
		semver := binspec.SemVersion
		for _, pluginsemver := range plugger.Group[cli.SemVer]().Symbols() {
			semver = pluginsemver()
			break
		}
		fmt.Printf("%s version %s (byte stream sources: %s)\n",
			cmd.Parent().Name(),
			semver,
			strings.Join(plugger.Group[cli.NewSource]().Plugins(), ", "))
	},
}

func init() {
	plugger.Group[cli.SetupCLI]().Register(
		VersionSetupCLI, plugger.WithPlugin("version"))
}

// VersionSetupCLI adds the “version” command.
func VersionSetupCLI(cmd *cobra.Command) {
	cmd.AddCommand(versionCmd)
}
