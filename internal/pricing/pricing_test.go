package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Bed Sheets ":      "bed sheet",
		"PILLOW-CASES":       "pillow case",
		"Table  Cloths":      "table cloth",
		"Dresses":            "dress",
		"Glass":              "glass",
		"Hand_Towels (Blue)": "hand towel blue",
		"":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestLookup(t *testing.T) {
	table := DefaultTable(0)

	tests := []struct {
		name  string
		want  float64
		found bool
	}{
		{"Bed Sheet", 15.50, true},
		{"bed sheets", 15.50, true},
		{"Pillowcases", 8.75, true},
		{"Serviette", 3.50, true},
		{"King Size Bed Sheet", 15.50, true},
		{"Bath Towels", 12.00, true},
		{"Hand towel", 6.50, true},
		{"Kitchen Towel", 12.00, true},
		{"Large duvet", 25.00, true},
		{"Mop Head", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, ok := table.Lookup(tt.name)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, price)
		})
	}
}

func TestResolve(t *testing.T) {
	table := DefaultTable(0)
	explicit := 19.99
	zero := 0.0

	t.Run("explicit price wins", func(t *testing.T) {
		res := table.Resolve(&explicit, 15.50, 14.00, "Bed Sheet")
		assert.Equal(t, Resolution{Price: 19.99, Source: SourceExplicit}, res)
	})

	t.Run("stored snapshot before category price", func(t *testing.T) {
		res := table.Resolve(&zero, 15.50, 14.00, "Bed Sheet")
		assert.Equal(t, Resolution{Price: 15.50, Source: SourceStored}, res)
	})

	t.Run("category price when nothing stored", func(t *testing.T) {
		res := table.Resolve(nil, 0, 14.00, "Bed Sheet")
		assert.Equal(t, Resolution{Price: 14.00, Source: SourceCategory}, res)
	})

	t.Run("table lookup by category name", func(t *testing.T) {
		res := table.Resolve(nil, 0, 0, "napkins")
		assert.Equal(t, Resolution{Price: 3.50, Source: SourceTable}, res)
	})

	t.Run("fixed fallback", func(t *testing.T) {
		res := table.Resolve(nil, 0, 0, "Mop Head")
		assert.Equal(t, DefaultUnitPrice, res.Price)
		assert.True(t, res.Fallback())
	})

	t.Run("configured fallback", func(t *testing.T) {
		res := DefaultTable(12.5).Resolve(nil, 0, 0, "unknown")
		assert.Equal(t, 12.5, res.Price)
		assert.True(t, res.Fallback())
	})
}
