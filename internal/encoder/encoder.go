// Package encoder maps categorical values to integer codes for the model.
package encoder

import (
	"sort"
)

// Fallback is the code returned for values not seen at fit time
const Fallback = 0

// Encoder is a frozen value to code mapping. Codes follow the lexicographic
// order of the distinct values seen by Fit.
type Encoder struct {
	classes []string
	codes   map[string]int
}

// Fit builds an encoder from the observed values
func Fit(values []string) *Encoder {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}

	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)

	codes := make(map[string]int, len(classes))
	for i, v := range classes {
		codes[v] = i
	}
	return &Encoder{classes: classes, codes: codes}
}

// Transform returns the code of value, or Fallback when it was never seen.
// A nil encoder maps everything to Fallback.
func (e *Encoder) Transform(value string) int {
	if e == nil {
		return Fallback
	}
	if code, ok := e.codes[value]; ok {
		return code
	}
	return Fallback
}

// Known reports whether value was seen at fit time
func (e *Encoder) Known(value string) bool {
	if e == nil {
		return false
	}
	_, ok := e.codes[value]
	return ok
}

// Len returns the number of distinct classes
func (e *Encoder) Len() int {
	if e == nil {
		return 0
	}
	return len(e.classes)
}

// Classes returns a copy of the classes in code order
func (e *Encoder) Classes() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// Mapping returns a copy of the value to code mapping
func (e *Encoder) Mapping() map[string]int {
	out := make(map[string]int, e.Len())
	if e == nil {
		return out
	}
	for k, v := range e.codes {
		out[k] = v
	}
	return out
}
