package materials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupAliases(t *testing.T) {
	tests := map[string]string{
		"aluminum":            "Aluminum 6061-T6",
		"Aluminium":           "Aluminum 6061-T6",
		"Aluminum 6061-T6":    "Aluminum 6061-T6",
		"steel":               "Steel 1018",
		"STAINLESS":           "Stainless Steel 304",
		"titanium":            "Titanium Ti-6Al-4V",
		" pla ":               "PLA",
		"carbon fibre":        "Carbon Fiber",
		"stainless steel 304": "Stainless Steel 304",
	}
	for in, want := range tests {
		m, ok := Lookup(in)
		require.True(t, ok, in)
		assert.Equal(t, want, m.Name, in)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	m, found := Resolve("unobtainium")
	assert.False(t, found)
	assert.Equal(t, Default, m.Name)

	m, found = Resolve("steel")
	assert.True(t, found)
	assert.Equal(t, "Steel 1018", m.Name)
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "Brass C360", Canonical("brass"))
	assert.Equal(t, "", Canonical("wood"))
}

func TestModulusMPa(t *testing.T) {
	m, _ := Lookup("6061")
	assert.InDelta(t, 68900.0, m.ModulusMPa(), 1e-9)
}

func TestLibraryIsSane(t *testing.T) {
	for _, m := range All() {
		assert.Positive(t, m.Density, m.Name)
		assert.Positive(t, m.YieldStrength, m.Name)
		assert.Positive(t, m.ElasticModulus, m.Name)
		assert.GreaterOrEqual(t, m.CostScore, 1.0, m.Name)
		assert.LessOrEqual(t, m.CostScore, 10.0, m.Name)
	}
	assert.Len(t, Names(), len(All()))
}

func TestThermal(t *testing.T) {
	tests := []struct {
		k    float64
		want ThermalRating
	}{
		{167, ThermalExcellent},
		{100, ThermalExcellent},
		{51.9, ThermalGood},
		{16.2, ThermalModerate},
		{1, ThermalModerate},
		{0.17, ThermalPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Thermal(tt.k), "k=%v", tt.k)
	}
}
