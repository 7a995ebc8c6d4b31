package encoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// Version is the current encoder document version
const Version = 1

// Column names used in the persisted document
const (
	ColumnAirline = "Airline"
	ColumnOrigin  = "Origin"
	ColumnDest    = "Dest"
)

var (
	// ErrVersion is returned when decoding a document of an unknown version
	ErrVersion = errors.New("unsupported encoder version")
	// ErrCorrupt is returned when a stored mapping is not a dense 0..k-1 code range
	ErrCorrupt = errors.New("corrupt encoder mapping")
)

// Set groups the encoders of the three categorical columns
type Set struct {
	Airline *Encoder
	Origin  *Encoder
	Dest    *Encoder
}

// FitSet fits one encoder per categorical column
func FitSet(airlines, origins, dests []string) *Set {
	return &Set{
		Airline: Fit(airlines),
		Origin:  Fit(origins),
		Dest:    Fit(dests),
	}
}

// Codes returns the airline, origin and destination codes. Safe on a nil set.
func (s *Set) Codes(airline, origin, dest string) (int, int, int) {
	if s == nil {
		return Fallback, Fallback, Fallback
	}
	return s.Airline.Transform(airline), s.Origin.Transform(origin), s.Dest.Transform(dest)
}

type document struct {
	Version int                       `json:"version"`
	Columns map[string]map[string]int `json:"columns"`
}

// MarshalJSON encodes the set as a versioned document
func (s *Set) MarshalJSON() ([]byte, error) {
	doc := document{
		Version: Version,
		Columns: map[string]map[string]int{
			ColumnAirline: s.Airline.Mapping(),
			ColumnOrigin:  s.Origin.Mapping(),
			ColumnDest:    s.Dest.Mapping(),
		},
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes a versioned document
func (s *Set) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Version != Version {
		return fmt.Errorf("%w: %d", ErrVersion, doc.Version)
	}

	var err error
	if s.Airline, err = fromMapping(doc.Columns, ColumnAirline); err != nil {
		return err
	}
	if s.Origin, err = fromMapping(doc.Columns, ColumnOrigin); err != nil {
		return err
	}
	if s.Dest, err = fromMapping(doc.Columns, ColumnDest); err != nil {
		return err
	}
	return nil
}

func fromMapping(columns map[string]map[string]int, name string) (*Encoder, error) {
	mapping, ok := columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: column %s missing", ErrCorrupt, name)
	}

	classes := make([]string, len(mapping))
	filled := make([]bool, len(mapping))
	for value, code := range mapping {
		if code < 0 || code >= len(mapping) || filled[code] {
			return nil, fmt.Errorf("%w: column %s code %d", ErrCorrupt, name, code)
		}
		classes[code] = value
		filled[code] = true
	}
	if !sort.StringsAreSorted(classes) {
		return nil, fmt.Errorf("%w: column %s codes out of order", ErrCorrupt, name)
	}

	codes := make(map[string]int, len(mapping))
	for k, v := range mapping {
		codes[k] = v
	}
	return &Encoder{classes: classes, codes: codes}, nil
}

// Write encodes the set to w
func (s *Set) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Read decodes a set from r
func Read(r io.Reader) (*Set, error) {
	var s Set
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode encoders: %w", err)
	}
	return &s, nil
}
