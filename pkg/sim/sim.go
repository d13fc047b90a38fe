// Package sim is the structural simulation proxy: a cantilever of
// rectangular section loaded at its tip, evaluated once per candidate
// material. It is an analytic estimate, not a finite-element analysis.
package sim

import (
	"fmt"
	"math"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/materials"
)

const (
	// Epsilon replaces a zero second moment, section modulus or stress.
	Epsilon = 1e-9
	// MaxSafetyFactor caps the safety factor of an unloaded part.
	MaxSafetyFactor = 1000.0
)

// Input is the loaded geometry. Lengths in mm, load in N. VolumeMM3, when
// set, overrides the L*W*T volume used for mass.
type Input struct {
	LengthMM    float64 `json:"lengthMm"`
	WidthMM     float64 `json:"widthMm"`
	ThicknessMM float64 `json:"thicknessMm"`
	LoadN       float64 `json:"loadN"`
	VolumeMM3   float64 `json:"volumeMm3,omitempty"`
}

// FromParams reads a cantilever from a design's parameters: the span is
// length (or leg A), the section is width x thickness (falling back to wall
// thickness, then height).
func FromParams(p intent.Params) Input {
	first := func(keys ...string) float64 {
		for _, k := range keys {
			if v := p.Number(k, 0); v > 0 {
				return v
			}
		}
		return 0
	}
	return Input{
		LengthMM:    first(intent.KeyLength, intent.KeyLegA, intent.KeyDiameter),
		WidthMM:     first(intent.KeyWidth, intent.KeyDiameter),
		ThicknessMM: first(intent.KeyThickness, intent.KeyWallThickness, intent.KeyHeight),
		LoadN:       p.Number(intent.KeyLoad, 0),
	}
}

// Result is the outcome for one material.
type Result struct {
	Material     string                  `json:"material"`
	MassG        float64                 `json:"massG"`
	StressMPa    float64                 `json:"stressMpa"`
	SafetyFactor float64                 `json:"safetyFactor"`
	DeflectionMM float64                 `json:"deflectionMm"`
	CostScore    float64                 `json:"costScore"`
	Thermal      materials.ThermalRating `json:"thermal"`
	Notes        []string                `json:"notes,omitempty"`
}

// SecondMoment is b*h^3/12 for a rectangle, never below Epsilon.
func SecondMoment(b, h float64) float64 {
	return math.Max(b*h*h*h/12, Epsilon)
}

// SectionModulus is b*h^2/6 for a rectangle, never below Epsilon. A
// degenerate section therefore fails under any load.
func SectionModulus(b, h float64) float64 {
	return math.Max(b*h*h/6, Epsilon)
}

// Run evaluates one material.
func Run(in Input, m materials.Material) Result {
	f := math.Abs(in.LoadN)
	l := math.Max(in.LengthMM, 0)
	t := math.Max(in.ThicknessMM, 0)

	i := SecondMoment(in.WidthMM, t)
	moment := f * l
	stress := moment / SectionModulus(in.WidthMM, t)

	sf := MaxSafetyFactor
	if stress > Epsilon {
		sf = math.Min(m.YieldStrength/stress, MaxSafetyFactor)
	}
	e := math.Max(m.ModulusMPa(), Epsilon)
	deflection := f * l * l * l / (3 * e * i)

	volume := in.VolumeMM3
	if volume <= 0 {
		volume = l * math.Max(in.WidthMM, 0) * t
	}
	mass := volume / 1000 * m.Density

	return Result{
		Material:     m.Name,
		MassG:        mass,
		StressMPa:    stress,
		SafetyFactor: sf,
		DeflectionMM: deflection,
		CostScore:    CostScore(m, mass),
		Thermal:      materials.Thermal(m.ThermalConductivity),
	}
}

// RunAll evaluates each named material in order. Unknown names are
// simulated as the default material and say so in Notes.
func RunAll(in Input, names []string) []Result {
	if len(names) == 0 {
		names = []string{materials.Default}
	}
	out := make([]Result, 0, len(names))
	for _, name := range names {
		m, found := materials.Resolve(name)
		r := Run(in, m)
		if !found {
			r.Notes = append(r.Notes, fmt.Sprintf("unknown material %q; %s assumed", name, m.Name))
		}
		out = append(out, r)
	}
	return out
}

// CostScore scales the material's 1-10 price rank by part mass: every
// decade above 100 g adds a point. The result stays within 1..10.
func CostScore(m materials.Material, massG float64) float64 {
	score := m.CostScore
	if massG > 0 {
		score += math.Log10(massG / 100)
	}
	return math.Round(math.Min(math.Max(score, 1), 10)*10) / 10
}
