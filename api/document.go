// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Bridges decoded value trees and plain YAML/JSON documents, so that
// tooling can print decoded streams as structured documents and read value
// trees back in for encoding. Integers stay integers, octet strings
// travel hex-encoded, sequences become lists.

package api

import (
	"encoding/hex"
	"fmt"

	"github.com/siemens/binspec"
	"github.com/siemens/binspec/chunked"
)

// ToDocument renders a decoded value tree as a plain document made of
// nils, unsigned integers, hex strings, lists, and -- for stream-rejection
// markers -- a single-key "stop" mapping with the offending selector.
func ToDocument(v binspec.Value) interface{} {
	switch v.Kind() {
	case binspec.KindEmpty:
		return nil
	case binspec.KindInteger:
		return v.Integer()
	case binspec.KindBytes:
		return hex.EncodeToString(v.Bytes().Octets())
	case binspec.KindStop:
		_, selector := v.StopCause()
		return map[string]interface{}{"stop": selector}
	}
	children := v.Seq()
	doc := make([]interface{}, len(children))
	for i, child := range children {
		doc[i] = ToDocument(child)
	}
	return doc
}

// FromDocument is the inverse of ToDocument, building a value tree from a
// plain document as decoded from YAML or JSON: nils become empty values,
// non-negative integers stay integers, strings are read as hex octet
// strings, and lists become sequences. Anything else -- including "stop"
// mappings, as a rejected stream cannot be encoded -- fails.
func FromDocument(doc interface{}) (binspec.Value, error) {
	switch doc := doc.(type) {
	case nil:
		return binspec.EmptyValue(), nil
	case int:
		if doc < 0 {
			return binspec.Value{}, fmt.Errorf("negative integer %d in value document", doc)
		}
		return binspec.IntegerValue(uint64(doc)), nil
	case int64:
		if doc < 0 {
			return binspec.Value{}, fmt.Errorf("negative integer %d in value document", doc)
		}
		return binspec.IntegerValue(uint64(doc)), nil
	case uint64:
		return binspec.IntegerValue(doc), nil
	case string:
		octets, err := hex.DecodeString(doc)
		if err != nil {
			return binspec.Value{}, fmt.Errorf("invalid hex octet string %q in value document", doc)
		}
		return binspec.BytesValue(chunked.New(octets)), nil
	case []interface{}:
		children := make([]binspec.Value, len(doc))
		for i, childdoc := range doc {
			child, err := FromDocument(childdoc)
			if err != nil {
				return binspec.Value{}, err
			}
			children[i] = child
		}
		return binspec.SeqValue(children...), nil
	}
	return binspec.Value{}, fmt.Errorf("cannot build a value from %T in value document", doc)
}
