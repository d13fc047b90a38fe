// Package variants derives strategy-biased alternatives of a design and
// ranks per-material simulation outcomes on a Pareto front.
package variants

import (
	"fmt"
	"math"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/materials"
	"github.com/chazu/partforge/pkg/normalize"
	"github.com/chazu/partforge/pkg/sim"
	"github.com/chazu/partforge/pkg/synth"
	"github.com/samber/lo"
)

// Strategy is the bias a variant is derived under.
type Strategy string

const (
	Strength Strategy = "strength"
	Weight   Strategy = "weight"
	Cost     Strategy = "cost"
	Balanced Strategy = "balanced"
	Compact  Strategy = "compact"
)

// AllStrategies is the full set; CoreStrategies the reduced triad used when
// a design has no load case to balance against.
var (
	AllStrategies  = []Strategy{Strength, Weight, Cost, Balanced, Compact}
	CoreStrategies = []Strategy{Strength, Weight, Cost}
)

// KeyEdgeFinish is the parameter a variant records its edge finish under.
const KeyEdgeFinish = "edgeFinish"

type bias struct {
	thickness float64
	size      float64
	fillet    float64 // preferred fillet radius, 0 for sharp edges
	finish    string
}

var biases = map[Strategy]bias{
	Strength: {thickness: 1.5, size: 1.0, fillet: 3, finish: "deburred"},
	Weight:   {thickness: 0.7, size: 1.0, fillet: 1, finish: "bead blasted"},
	Cost:     {thickness: 1.0, size: 1.0, fillet: 0, finish: "as machined"},
	Balanced: {thickness: 1.15, size: 1.0, fillet: 2, finish: "deburred"},
	Compact:  {thickness: 1.25, size: 0.8, fillet: 1, finish: "anodized"},
}

var finishCost = map[string]float64{
	"as machined":  0,
	"deburred":     0.3,
	"bead blasted": 0.5,
	"anodized":     1,
}

var (
	thicknessKeys = []string{intent.KeyThickness, intent.KeyWallThickness}
	sizeKeys      = []string{intent.KeyLength, intent.KeyWidth, intent.KeyDiameter, intent.KeyLegA, intent.KeyLegB}
)

// RiskLevel grades a variant against the design's acceptance thresholds.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Insights flags threshold misses and suggests follow-up changes.
type Insights struct {
	Risk                   RiskLevel `json:"risk"`
	MassOverBudget         bool      `json:"massOverBudget"`
	StrengthUnderThreshold bool      `json:"strengthUnderThreshold"`
	Suggestions            []string  `json:"suggestions,omitempty"`
}

// Variant is one strategy-biased derivation of a design.
type Variant struct {
	Strategy   Strategy      `json:"type"`
	Parameters intent.Params `json:"parameters"`
	Material   string        `json:"material"`
	MassG      float64       `json:"massG"`
	CostScore  float64       `json:"costScore"`
	// StrengthScore is bending capacity relative to the base design, which
	// scores 100.
	StrengthScore float64  `json:"strengthScore"`
	SafetyFactor  float64  `json:"safetyFactor,omitempty"`
	Guidance      []string `json:"guidance"`
	Insights      Insights `json:"insights"`
}

// Generate derives one variant per strategy, AllStrategies when none are
// given. The design is not modified.
func Generate(d intent.DesignIntent, strategies ...Strategy) []Variant {
	if len(strategies) == 0 {
		strategies = AllStrategies
	}
	base := d.Clone()
	base.Parameters = base.Parameters.Canonical()
	baseCapacity := capacity(base.Parameters)
	return lo.Map(strategies, func(s Strategy, _ int) Variant {
		return derive(base, s, baseCapacity)
	})
}

// Apply rescales a design's parameters under a strategy's bias.
func Apply(params intent.Params, s Strategy) intent.Params {
	b, ok := biases[s]
	if !ok {
		b = biases[Balanced]
	}
	out := params.Clone()
	for _, k := range thicknessKeys {
		if out.HasNumber(k) {
			out.SetNumber(k, round2(out.Number(k, 0)*b.thickness))
		}
	}
	for _, k := range sizeKeys {
		if out.HasNumber(k) {
			out.SetNumber(k, round2(out.Number(k, 0)*b.size))
		}
	}
	if b.fillet > 0 {
		out.SetNumber(intent.KeyFilletRadius, b.fillet)
	} else {
		delete(out, intent.KeyFilletRadius)
	}
	out.SetString(KeyEdgeFinish, b.finish)
	return out
}

func derive(base intent.DesignIntent, s Strategy, baseCapacity float64) Variant {
	d := base.Clone()
	d.Parameters = Apply(base.Parameters, s)

	spec := normalize.Normalize(normalize.FromDesignIntent(d))
	g := synth.Measure(spec)
	mat, _ := materials.Resolve(d.PrimaryMaterial())

	v := Variant{
		Strategy:   s,
		Parameters: d.Parameters,
		Material:   mat.Name,
		MassG:      g.Metadata.MassG,
	}
	v.CostScore = math.Min(10, sim.CostScore(mat, v.MassG)+finishCost[d.Parameters.String(KeyEdgeFinish, "")])
	v.StrengthScore = 100
	if baseCapacity > 0 {
		v.StrengthScore = round2(100 * capacity(d.Parameters) / baseCapacity)
	}

	in := sim.FromParams(d.Parameters)
	if in.LoadN > 0 {
		in.VolumeMM3 = g.Metadata.VolumeMM3
		v.SafetyFactor = round2(sim.Run(in, mat).SafetyFactor)
	}
	v.Guidance = Guidance(spec, s, d.Parameters)
	v.Insights = assess(d, v)
	return v
}

// capacity is the section modulus width*t^2 of the loaded section.
func capacity(p intent.Params) float64 {
	in := sim.FromParams(p)
	return in.WidthMM * in.ThicknessMM * in.ThicknessMM
}

func assess(d intent.DesignIntent, v Variant) Insights {
	acc := d.Acceptance
	in := Insights{Risk: RiskLow}
	t := sim.FromParams(d.Parameters).ThicknessMM

	if acc.MaxMassG > 0 && v.MassG > acc.MaxMassG {
		in.MassOverBudget = true
		if t > 0 {
			in.Suggestions = append(in.Suggestions, fmt.Sprintf("reduce thickness to %.1f mm to meet %.0f g", t*acc.MaxMassG/v.MassG, acc.MaxMassG))
		}
		in.Suggestions = append(in.Suggestions, "consider a lower-density material")
	}
	if acc.MinSafetyFactor > 0 && v.SafetyFactor > 0 && v.SafetyFactor < acc.MinSafetyFactor {
		in.StrengthUnderThreshold = true
		if t > 0 {
			in.Suggestions = append(in.Suggestions, fmt.Sprintf("increase thickness to %.1f mm for SF %.2f", t*math.Sqrt(acc.MinSafetyFactor/v.SafetyFactor), acc.MinSafetyFactor))
		}
		in.Suggestions = append(in.Suggestions, "consider a higher-yield material")
	}
	switch {
	case in.MassOverBudget && in.StrengthUnderThreshold:
		in.Risk = RiskHigh
	case in.MassOverBudget || in.StrengthUnderThreshold:
		in.Risk = RiskMedium
	}
	return in
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
