// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Provides the "binspec formats" command for listing the named formats
// available from the loaded format catalogs.

package command

import (
	"fmt"
	"os"

	"github.com/siemens/binspec/cli"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thediveo/go-plugger/v3"
	"github.com/thediveo/klo"
)

// Builtin custom-columns templates
const (
	// FormatListTemplate defines the custom columns when listing catalog
	// formats.
	FormatListTemplate = "FORMAT:{.Name},SPEC:{.Spec}"
	// FormatWideListTemplate is like FormatListTemplate, but additionally
	// tacks on a column with the format descriptions.
	FormatWideListTemplate = "FORMAT:{.Name},SPEC:{.Spec},DESCRIPTION:{.Description}"

	// NameListTemplate for handling "-o name" and only showing a custom
	// "name" column; this template should be used with no headers shown,
	// as kubectl and others do.
	NameListTemplate = "NAME:{.Name}"
)

// formatsCmd defines the "binspec formats" command.
var formatsCmd = &cobra.Command{
	Use:     "formats [flags]",
	Aliases: []string{"fmts"},
	Short:   "List named formats from the loaded format catalogs",
	RunE:    formatslist,
}

func init() {
	plugger.Group[cli.SetupCLI]().Register(FormatsSetupCLI, plugger.WithPlugin("formats"))
}

// FormatsSetupCLI adds the “formats” command.
func FormatsSetupCLI(cmd *cobra.Command) {
	cmd.AddCommand(formatsCmd)
	formatsCmd.Flags().StringP("output", "o", "",
		"Output format. One of: json|yaml|wide|custom-columns=...|custom-columns-file=...|jsonpath=...|jsonpath-file=...")
	formatsCmd.Flags().Bool("no-headers", false, "When using the default or custom-column output format, don't print headers (default print headers).")
	formatsCmd.Flags().String("sort-by", "{.Name}",
		"If non-empty, sort custom-columns using this field specification. The field specification is expressed as a JSONPath expression (e.g. '{.Name}').")
}

// formatslist prints the named formats of all loaded catalogs using a
// template.
func formatslist(cmd *cobra.Command, args []string) error {
	// Get the output CLI flag and prepare a suitable object printer.
	prn, err := getPrinter(cmd)
	if err != nil {
		return err
	}
	// ...throwing in sorting, if not explicitly forbidden. It depends on
	// the object printer if it will honor the sorted data or will just
	// impose its own order anyway.
	if sortby, err := cmd.LocalFlags().GetString("sort-by"); err == nil && sortby != "" {
		var err error
		prn, err = klo.NewSortingPrinter(sortby, prn)
		if err != nil {
			return nil
		}
	}
	fs := Formats()
	if len(fs) == 0 {
		return fmt.Errorf("no format catalog loaded; use --catalog to load one")
	}
	for _, f := range fs {
		log.Debugf("catalog format %q: %q", f.Name, f.Spec)
	}
	prn.Fprint(os.Stdout, fs)
	return nil
}

// getPrinter returns a value printer configured according to the output
// format chosen by the user, and some more optional output configuration
// flags.
func getPrinter(cmd *cobra.Command) (prn klo.ValuePrinter, err error) {
	outfmt, err := cmd.LocalFlags().GetString("output")
	if err != nil {
		return
	}
	if outfmt == "name" {
		// Support "-o name" output format which uses our builtin
		// custom-columns template to only show format names, and hide the
		// column header.
		prn, err = klo.PrinterFromFlag("custom-columns="+NameListTemplate, nil)
		if err != nil {
			panic(err)
		}
		prn.(*klo.CustomColumnsPrinter).HideHeaders = true
	} else {
		// For the other output format options, let the kubectl-like
		// output package handle the details and give us just the printer
		// suitable for dumping the format list onto our users.
		prn, err = klo.PrinterFromFlag(outfmt, &klo.Specs{
			DefaultColumnSpec: FormatListTemplate,
			WideColumnSpec:    FormatWideListTemplate,
		})
		if err != nil {
			return
		}
		if ccprn, ok := prn.(*klo.CustomColumnsPrinter); ok {
			ccprn.Padding = 3
			if noheaders, err := cmd.LocalFlags().GetBool("no-headers"); err == nil {
				ccprn.HideHeaders = noheaders
			}
		}
	}
	return
}
