package encoder

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitSortsClasses(t *testing.T) {
	e := Fit([]string{"UA", "AA", "DL", "AA", "UA"})

	assert.Equal(t, []string{"AA", "DL", "UA"}, e.Classes())
	assert.Equal(t, 0, e.Transform("AA"))
	assert.Equal(t, 1, e.Transform("DL"))
	assert.Equal(t, 2, e.Transform("UA"))
	assert.Equal(t, 3, e.Len())
}

func TestTransformUnseenReturnsFallback(t *testing.T) {
	e := Fit([]string{"ATL", "ORD"})

	assert.Equal(t, Fallback, e.Transform("XYZ"))
	assert.Equal(t, Fallback, e.Transform(""))
	assert.False(t, e.Known("XYZ"))

	var nilEncoder *Encoder
	assert.Equal(t, Fallback, nilEncoder.Transform("ATL"))
}

func TestFitDoesNotShareState(t *testing.T) {
	first := Fit([]string{"B", "C"})
	second := Fit([]string{"A", "B", "C"})

	assert.Equal(t, 0, first.Transform("B"))
	assert.Equal(t, 1, second.Transform("B"))

	m := first.Mapping()
	m["B"] = 42
	assert.Equal(t, 0, first.Transform("B"))
}

func TestSetCodesNil(t *testing.T) {
	var s *Set
	a, o, d := s.Codes("AA", "ATL", "ORD")
	assert.Equal(t, []int{0, 0, 0}, []int{a, o, d})
}

func TestSetRoundTrip(t *testing.T) {
	s := FitSet(
		[]string{"DL", "AA", "UA"},
		[]string{"ATL", "JFK"},
		[]string{"ORD", "LAX", "SEA"},
	)

	var buf bytes.Buffer
	require.NoError(t, s.Write(&buf))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.EqualValues(t, 1, raw["version"])

	loaded, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, s.Airline.Classes(), loaded.Airline.Classes())
	assert.Equal(t, s.Origin.Mapping(), loaded.Origin.Mapping())
	assert.Equal(t, 2, loaded.Dest.Transform("SEA"))
	assert.Equal(t, Fallback, loaded.Dest.Transform("BOS"))
}

func TestSetRejectsUnknownVersion(t *testing.T) {
	doc := `{"version":2,"columns":{"Airline":{},"Origin":{},"Dest":{}}}`

	_, err := Read(bytes.NewBufferString(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersion)
}

func TestSetRejectsCorruptMapping(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing column", `{"version":1,"columns":{"Airline":{},"Origin":{}}}`},
		{"gap in codes", `{"version":1,"columns":{"Airline":{"AA":0,"DL":2},"Origin":{},"Dest":{}}}`},
		{"duplicate code", `{"version":1,"columns":{"Airline":{"AA":0,"DL":0},"Origin":{},"Dest":{}}}`},
		{"unsorted", `{"version":1,"columns":{"Airline":{"AA":1,"DL":0},"Origin":{},"Dest":{}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewBufferString(tt.doc))
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}
