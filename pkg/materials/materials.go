// Package materials is the material property library shared by the parser,
// the simulation engine and the estimator.
package materials

import (
	"sort"
	"strings"
)

// Default is the material assumed when a request names none or names one
// that is not in the library.
const Default = "Aluminum 6061-T6"

// Category groups materials for rule decks and fabrication guidance.
type Category string

const (
	Metal     Category = "metal"
	Polymer   Category = "polymer"
	Composite Category = "composite"
)

// Material holds the properties the analytic models need. Units: density
// g/cm^3, strengths MPa, modulus GPa, conductivity W/(m*K).
type Material struct {
	Name                string   `json:"name" yaml:"name"`
	Category            Category `json:"category" yaml:"category"`
	Density             float64  `json:"density" yaml:"density"`
	YieldStrength       float64  `json:"yieldStrength" yaml:"yieldStrength"`
	ElasticModulus      float64  `json:"elasticModulus" yaml:"elasticModulus"`
	ThermalConductivity float64  `json:"thermalConductivity" yaml:"thermalConductivity"`
	CostScore           float64  `json:"costScore" yaml:"costScore"` // 1 (cheap) .. 10 (expensive)
	CostPerKg           float64  `json:"costPerKg" yaml:"costPerKg"` // USD
	CO2PerKg            float64  `json:"co2PerKg" yaml:"co2PerKg"`   // kg CO2e
	Machinable          bool     `json:"machinable" yaml:"machinable"`
	Aliases             []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// ModulusMPa returns the elastic modulus in MPa.
func (m Material) ModulusMPa() float64 { return m.ElasticModulus * 1000 }

var library = []Material{
	{
		Name: "Aluminum 6061-T6", Category: Metal,
		Density: 2.70, YieldStrength: 276, ElasticModulus: 68.9, ThermalConductivity: 167,
		CostScore: 4, CostPerKg: 4.0, CO2PerKg: 8.2, Machinable: true,
		Aliases: []string{"aluminum", "aluminium", "al", "6061", "alu"},
	},
	{
		Name: "Aluminum 7075-T6", Category: Metal,
		Density: 2.81, YieldStrength: 503, ElasticModulus: 71.7, ThermalConductivity: 130,
		CostScore: 6, CostPerKg: 7.5, CO2PerKg: 9.0, Machinable: true,
		Aliases: []string{"7075", "aircraft aluminum"},
	},
	{
		Name: "Steel 1018", Category: Metal,
		Density: 7.87, YieldStrength: 370, ElasticModulus: 205, ThermalConductivity: 51.9,
		CostScore: 2, CostPerKg: 1.2, CO2PerKg: 1.9, Machinable: true,
		Aliases: []string{"steel", "mild steel", "carbon steel", "1018"},
	},
	{
		Name: "Stainless Steel 304", Category: Metal,
		Density: 8.00, YieldStrength: 215, ElasticModulus: 193, ThermalConductivity: 16.2,
		CostScore: 5, CostPerKg: 3.5, CO2PerKg: 6.2, Machinable: true,
		Aliases: []string{"stainless", "stainless steel", "ss", "304", "inox"},
	},
	{
		Name: "Titanium Ti-6Al-4V", Category: Metal,
		Density: 4.43, YieldStrength: 880, ElasticModulus: 113.8, ThermalConductivity: 6.7,
		CostScore: 10, CostPerKg: 35, CO2PerKg: 35, Machinable: true,
		Aliases: []string{"titanium", "ti", "ti64", "grade 5"},
	},
	{
		Name: "Brass C360", Category: Metal,
		Density: 8.50, YieldStrength: 310, ElasticModulus: 97, ThermalConductivity: 115,
		CostScore: 6, CostPerKg: 6.5, CO2PerKg: 4.0, Machinable: true,
		Aliases: []string{"brass", "c360"},
	},
	{
		Name: "ABS", Category: Polymer,
		Density: 1.04, YieldStrength: 40, ElasticModulus: 2.3, ThermalConductivity: 0.17,
		CostScore: 1, CostPerKg: 2.5, CO2PerKg: 3.1, Machinable: true,
		Aliases: []string{"abs"},
	},
	{
		Name: "PLA", Category: Polymer,
		Density: 1.24, YieldStrength: 50, ElasticModulus: 3.5, ThermalConductivity: 0.13,
		CostScore: 1, CostPerKg: 2.0, CO2PerKg: 2.0, Machinable: false,
		Aliases: []string{"pla", "plastic"},
	},
	{
		Name: "PETG", Category: Polymer,
		Density: 1.27, YieldStrength: 50, ElasticModulus: 2.1, ThermalConductivity: 0.29,
		CostScore: 2, CostPerKg: 2.5, CO2PerKg: 2.8, Machinable: false,
		Aliases: []string{"petg"},
	},
	{
		Name: "Nylon PA12", Category: Polymer,
		Density: 1.01, YieldStrength: 48, ElasticModulus: 1.7, ThermalConductivity: 0.25,
		CostScore: 3, CostPerKg: 6.0, CO2PerKg: 6.5, Machinable: true,
		Aliases: []string{"nylon", "pa12", "polyamide"},
	},
	{
		Name: "Carbon Fiber", Category: Composite,
		Density: 1.55, YieldStrength: 600, ElasticModulus: 70, ThermalConductivity: 5,
		CostScore: 9, CostPerKg: 30, CO2PerKg: 29, Machinable: false,
		Aliases: []string{"carbon fiber", "carbon fibre", "cfrp", "carbon"},
	},
}

var byName = func() map[string]Material {
	m := make(map[string]Material, len(library)*4)
	for _, mat := range library {
		m[strings.ToLower(mat.Name)] = mat
		for _, a := range mat.Aliases {
			m[strings.ToLower(a)] = mat
		}
	}
	return m
}()

// Lookup resolves a canonical name or alias, case-insensitively.
func Lookup(name string) (Material, bool) {
	m, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// Resolve is Lookup with the default material substituted on a miss. found
// reports whether name itself resolved.
func Resolve(name string) (m Material, found bool) {
	if m, ok := Lookup(name); ok {
		return m, true
	}
	m, _ = Lookup(Default)
	return m, false
}

// Canonical returns the canonical name for name, or "" if unknown.
func Canonical(name string) string {
	if m, ok := Lookup(name); ok {
		return m.Name
	}
	return ""
}

// All returns every material in library order.
func All() []Material {
	out := make([]Material, len(library))
	copy(out, library)
	return out
}

// Names returns the canonical names sorted alphabetically.
func Names() []string {
	out := make([]string, 0, len(library))
	for _, m := range library {
		out = append(out, m.Name)
	}
	sort.Strings(out)
	return out
}

// ThermalRating buckets thermal conductivity.
type ThermalRating string

const (
	ThermalExcellent ThermalRating = "Excellent"
	ThermalGood      ThermalRating = "Good"
	ThermalModerate  ThermalRating = "Moderate"
	ThermalPoor      ThermalRating = "Poor"
)

// Thermal returns the qualitative thermal performance for a conductivity in
// W/(m*K).
func Thermal(conductivity float64) ThermalRating {
	switch {
	case conductivity >= 100:
		return ThermalExcellent
	case conductivity >= 20:
		return ThermalGood
	case conductivity >= 1:
		return ThermalModerate
	default:
		return ThermalPoor
	}
}
