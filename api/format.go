// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// This statically typed data model describes named binary formats as they
// are exchanged in format catalog files and between tooling: each format
// pairs a name with the textual layout notation, so that CLI users and
// services can refer to well-known framings by name instead of pasting
// format strings around.

package api

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/siemens/binspec"
)

// Formats is a list of named binary format descriptions.
type Formats []*Format

// Format describes a single named binary format.
type Format struct {
	// Name under which this format is registered, such as "adb" or
	// "http2-frame".
	Name string `json:"name" yaml:"name"`
	// The layout in textual binspec format notation.
	Spec string `json:"spec" yaml:"spec"`
	// Optional prefix for the auto-allocated variable names of this
	// format; defaults to binspec.DefaultVariablePrefix.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	// Optional human-oriented description of the format.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Compile compiles the textual layout notation of this format description
// into its Spec tree.
func (f *Format) Compile() (binspec.Spec, error) {
	prefix := f.Prefix
	if prefix == "" {
		prefix = binspec.DefaultVariablePrefix
	}
	spec, err := binspec.ParseSpec(f.Spec, prefix)
	if err != nil {
		return nil, fmt.Errorf("format %q: %w", f.Name, err)
	}
	return spec, nil
}

// Catalog is the document structure of a format catalog file: just the
// list of named formats.
type Catalog struct {
	Formats Formats `json:"formats" yaml:"formats"`
}

// ParseCatalog decodes a YAML format catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("invalid format catalog: %w", err)
	}
	for _, f := range c.Formats {
		if f.Name == "" {
			return nil, fmt.Errorf("invalid format catalog: format without a name")
		}
		if _, err := f.Compile(); err != nil {
			return nil, fmt.Errorf("invalid format catalog: %w", err)
		}
	}
	return c, nil
}

// LoadCatalog reads and decodes a YAML format catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read format catalog: %w", err)
	}
	return ParseCatalog(data)
}
