// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Provides caching format descriptions and looking them up again.

package api

import "sync"

// FormatCache caches and indexes a set of named format descriptions. It
// can safely be accessed simultaneously by multiple go routines.
type FormatCache struct {
	// The list of format descriptions, in registration order.
	formats Formats
	// Index from format name to its description. Names are unique; later
	// registrations of an already indexed name win, as that is what users
	// loading a personal catalog over a builtin one expect.
	index map[string]*Format
	m     sync.Mutex
}

// IsEmpty returns true if the cache is empty, otherwise false.
func (fc *FormatCache) IsEmpty() bool {
	fc.m.Lock()
	defer fc.m.Unlock()
	return len(fc.formats) == 0
}

// Formats returns the list of cached format descriptions.
func (fc *FormatCache) Formats() Formats {
	fc.m.Lock()
	defer fc.m.Unlock()
	return fc.formats
}

// ByName returns the format description registered under the given name.
func (fc *FormatCache) ByName(name string) (*Format, bool) {
	fc.m.Lock()
	defer fc.m.Unlock()
	f, ok := fc.index[name]
	return f, ok
}

// Set replaces the cached format descriptions with the given set.
func (fc *FormatCache) Set(formats Formats) {
	fc.m.Lock()
	defer fc.m.Unlock()
	fc.formats = formats
	fc.index = make(map[string]*Format, len(formats))
	for _, f := range formats {
		fc.index[f.Name] = f
	}
}

// Add registers further format descriptions on top of the already cached
// ones, overriding formats of the same name.
func (fc *FormatCache) Add(formats Formats) {
	fc.m.Lock()
	defer fc.m.Unlock()
	if fc.index == nil {
		fc.index = make(map[string]*Format, len(formats))
	}
	for _, f := range formats {
		if _, ok := fc.index[f.Name]; !ok {
			fc.formats = append(fc.formats, f)
		} else {
			for i, old := range fc.formats {
				if old.Name == f.Name {
					fc.formats[i] = f
					break
				}
			}
		}
		fc.index[f.Name] = f
	}
}

// Clear the cached format descriptions.
func (fc *FormatCache) Clear() {
	fc.m.Lock()
	defer fc.m.Unlock()
	fc.formats = Formats{}
	fc.index = nil
}
