// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package binspec

// DefaultVariablePrefix is the prefix used for auto-allocated variable
// names when compiling format strings and no other prefix was requested.
const DefaultVariablePrefix = "var"
