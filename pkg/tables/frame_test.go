package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrame(t *testing.T) {
	table := FromTexts(2, [][]string{
		{"AT Turbo\r116cv", "", "Unnamed: 2", "Price"},
		{"1.0", "x", "y", "100"},
		{"1.2", "x", "y", "120"},
	})

	frame, ok := NewFrame(table)
	require.True(t, ok)
	assert.Equal(t, 2, frame.PageNumber)
	assert.Equal(t, []string{"AT Turbo 116cv", "Price"}, frame.Columns)
	assert.Equal(t, [][]string{{"1.0", "100"}, {"1.2", "120"}}, frame.Records)
}

func TestNewFrameRejects(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
	}{
		{"header only", [][]string{{"A", "B"}}},
		{"empty", nil},
		{"single column", [][]string{{"A", ""}, {"1", "2"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := NewFrame(FromTexts(1, tt.rows))
			assert.False(t, ok)
		})
	}
}

func TestNewFrames(t *testing.T) {
	frames := NewFrames([]*Table{
		FromTexts(1, [][]string{{"A"}}),
		FromTexts(1, [][]string{{"A", "B"}, {"1", "2"}}),
	})
	require.Len(t, frames, 1)
	assert.Equal(t, []string{"A", "B"}, frames[0].Columns)
}

func TestFrameLookup(t *testing.T) {
	frame := &Frame{
		Columns: []string{"AT Turbo 116 cv", "Price", "Prices"},
		Records: [][]string{{"yes", "100", "many"}},
	}

	assert.Equal(t, "yes", frame.Lookup("at turbo 116cv", 0))
	assert.Equal(t, "100", frame.Lookup("PRICE", 0))
	assert.Equal(t, "many", frame.Lookup("prices", 0))
	assert.Equal(t, "", frame.Lookup("Engine", 0))
	assert.Equal(t, "", frame.Lookup("Price", 1))
	assert.Equal(t, "", frame.Lookup("Price", -1))
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 100},
		{"abc", "abc", 100},
		{"kitten", "sitting", 62},
		{"abc", "xyz", 0},
		{"abc", "", 0},
		// an added suffix only costs insertions
		{"power", "power cv", 77},
		{"model", "modelo", 91},
		// counts runes, not bytes
		{"a\u00e7\u00e3o", "ac\u00e3o", 75},
		// 12.5 rounds half to even
		{"a", "abcdefghijklmno", 12},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Ratio(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.want, Ratio(tt.b, tt.a), "%q vs %q", tt.b, tt.a)
	}
}

func TestFrameLookupSuffixedColumn(t *testing.T) {
	frame := &Frame{
		Columns: []string{"Power cv", "Engine"},
		Records: [][]string{{"82", "1.0"}},
	}

	assert.Equal(t, "82", frame.Lookup("Power", 0))
	assert.Equal(t, 0, frame.Column("power"))
	assert.Equal(t, "1.0", frame.Lookup("engines", 0))
}

func TestGroupFrames(t *testing.T) {
	intro := &Frame{Columns: []string{"A", "B"}}
	introMore := &Frame{Columns: []string{"B", "A"}}
	config := &Frame{Columns: []string{"Version", "Engine"}}
	spec := &Frame{Columns: []string{"Item", "Value"}}
	specMore := &Frame{Columns: []string{"Value", "Item"}}
	extra := &Frame{Columns: []string{"X", "Y"}}
	overflow := &Frame{Columns: []string{"P", "Q"}}

	catalog := GroupFrames(
		[]*Frame{intro, introMore, config, spec, specMore, extra, overflow},
		[]string{"Introduction", "Configuration", "Specification", "Accessories"})

	assert.Equal(t, []*Frame{intro, introMore}, catalog.Group("Introduction"))
	assert.Equal(t, []*Frame{config}, catalog.Group("Configuration"))
	assert.Equal(t, []*Frame{spec, specMore}, catalog.Group("Specification"))
	assert.Equal(t, []*Frame{extra, overflow}, catalog.Group("Accessories"))
	assert.Equal(t, []string{"Introduction", "Configuration", "Specification", "Accessories"}, catalog.Names())
}

func TestGroupFramesColumnCountChange(t *testing.T) {
	intro := &Frame{Columns: []string{"A", "B"}}
	wide := &Frame{Columns: []string{"Version", "Engine", "Price"}}
	next := &Frame{Columns: []string{"Version", "Engine", "Price"}}
	after := &Frame{Columns: []string{"Item", "Value", "Unit"}}

	catalog := GroupFrames(
		[]*Frame{intro, wide, next, after},
		[]string{"Introduction", "Configuration", "Specification"})

	// the wider frame stays with the group it closes
	assert.Equal(t, []*Frame{intro, wide}, catalog.Group("Introduction"))
	assert.Equal(t, []*Frame{next}, catalog.Group("Configuration"))
	assert.Equal(t, []*Frame{after}, catalog.Group("Specification"))
}

func TestGroupFramesLastGroupKeepsCountChanges(t *testing.T) {
	first := &Frame{Columns: []string{"A", "B"}}
	second := &Frame{Columns: []string{"C", "D"}}
	wide := &Frame{Columns: []string{"E", "F", "G"}}
	narrow := &Frame{Columns: []string{"H", "I"}}

	catalog := GroupFrames([]*Frame{first, second, wide, narrow}, []string{"Prices", "Specs"})

	assert.Equal(t, []*Frame{first}, catalog.Group("Prices"))
	assert.Equal(t, []*Frame{second, wide, narrow}, catalog.Group("Specs"))
}

func TestGroupFramesWithoutNames(t *testing.T) {
	catalog := GroupFrames([]*Frame{{Columns: []string{"A", "B"}}}, nil)
	assert.Empty(t, catalog.Names())
	assert.Equal(t, "", catalog.Value("Introduction", 0, "A", 0))
}

func TestCatalogValue(t *testing.T) {
	frames := NewFrames([]*Table{
		FromTexts(1, [][]string{{"Code", "Name"}, {"1", "One"}}),
		FromTexts(1, [][]string{{"Version", "AT Turbo 116cv"}, {"LT", "R$ 100"}, {"LTZ", "R$ 120"}}),
	})
	catalog := GroupFrames(frames, []string{"Introduction", "Configuration"})

	assert.Equal(t, "R$ 100", catalog.Value("Configuration", 0, "AT Turbo 116cv", 0))
	assert.Equal(t, "R$ 120", catalog.Value("Configuration", 0, "at turbo 116 cv", 1))
	assert.Equal(t, "One", catalog.Value("Introduction", 0, "name", 0))
	assert.Equal(t, "", catalog.Value("Accessories", 0, "Name", 0))
	assert.Equal(t, "", catalog.Value("Configuration", 1, "Version", 0))
	assert.Equal(t, "", catalog.Value("Configuration", 0, "Version", 2))
}
