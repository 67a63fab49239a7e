// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Maintains the format catalog(s) loaded via the "--catalog" CLI flag and
// resolves the FORMAT argument of commands into compiled layout specs.

package command

import (
	"fmt"

	"github.com/siemens/binspec"
	"github.com/siemens/binspec/api"
	"github.com/siemens/binspec/cli"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thediveo/go-plugger/v3"
)

// catalogFiles lists the format catalog files to load, as specified via
// the "--catalog" CLI flag.
var catalogFiles []string

// formats caches the formats of all loaded catalogs, indexed by name.
// Catalogs load in CLI flag order, so a later catalog overrides
// same-named formats of an earlier one.
var formats api.FormatCache

func init() {
	plugger.Group[cli.SetupCLI]().Register(CatalogSetupCLI, plugger.WithPlugin("catalog"))
	plugger.Group[cli.BeforeCommand]().Register(CatalogBeforeCommand, plugger.WithPlugin("catalog"))
}

// CatalogSetupCLI registers the “--catalog” CLI flag.
func CatalogSetupCLI(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringArrayVarP(&catalogFiles, "catalog", "c", []string{},
		"Format catalog YAML file with named formats. Can be specified multiple times.")
}

// CatalogBeforeCommand loads the format catalog files specified on the
// command line, so commands can refer to formats by name.
func CatalogBeforeCommand(*cobra.Command) error {
	formats.Clear()
	for _, path := range catalogFiles {
		catalog, err := api.LoadCatalog(path)
		if err != nil {
			return err
		}
		log.Debugf("loaded %d format(s) from catalog %q", len(catalog.Formats), path)
		formats.Add(catalog.Formats)
	}
	return nil
}

// Formats returns the formats of all loaded catalogs.
func Formats() api.Formats {
	return formats.Formats()
}

// ResolveFormat resolves the FORMAT argument of a command into a compiled
// layout spec: the name of a catalog format, or otherwise the layout in
// textual format notation.
func ResolveFormat(arg string) (binspec.Spec, error) {
	if f, ok := formats.ByName(arg); ok {
		log.Debugf("using catalog format %q: %q", f.Name, f.Spec)
		return f.Compile()
	}
	spec, err := binspec.ParseSpec(arg, binspec.DefaultVariablePrefix)
	if err != nil {
		return nil, fmt.Errorf("%q is neither a catalog format name nor a valid format: %w",
			arg, err)
	}
	return spec, nil
}
