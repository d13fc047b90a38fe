package variants

import (
	"strings"
	"testing"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plateIntent() intent.DesignIntent {
	d := intent.NewDesignIntent("plate")
	d.Parameters.SetNumber(intent.KeyLength, 100)
	d.Parameters.SetNumber(intent.KeyWidth, 50)
	d.Parameters.SetNumber(intent.KeyThickness, 5)
	d.Parameters.SetNumber(intent.KeyLoad, 500)
	d.Acceptance = intent.Acceptance{MaxMassG: 50, MinSafetyFactor: 1.5}
	return d
}

func byStrategy(vs []Variant) map[Strategy]Variant {
	out := map[Strategy]Variant{}
	for _, v := range vs {
		out[v.Strategy] = v
	}
	return out
}

func TestGenerateAllStrategies(t *testing.T) {
	vs := byStrategy(Generate(plateIntent()))
	require.Len(t, vs, 5)

	strength := vs[Strength]
	assert.Equal(t, 7.5, strength.Parameters.Number(intent.KeyThickness, 0))
	assert.Equal(t, 225.0, strength.StrengthScore)
	assert.InDelta(t, 2.59, strength.SafetyFactor, 0.01)
	assert.True(t, strength.Insights.MassOverBudget)
	assert.False(t, strength.Insights.StrengthUnderThreshold)
	assert.Equal(t, RiskMedium, strength.Insights.Risk)

	weight := vs[Weight]
	assert.Equal(t, 3.5, weight.Parameters.Number(intent.KeyThickness, 0))
	assert.Less(t, weight.MassG, strength.MassG)
	assert.False(t, weight.Insights.MassOverBudget)
	assert.True(t, weight.Insights.StrengthUnderThreshold)
	assert.Equal(t, RiskMedium, weight.Insights.Risk)

	cost := vs[Cost]
	assert.False(t, cost.Parameters.Has(intent.KeyFilletRadius))
	assert.Equal(t, "as machined", cost.Parameters.String(KeyEdgeFinish, ""))
	assert.Equal(t, RiskHigh, cost.Insights.Risk)
	assert.NotEmpty(t, cost.Insights.Suggestions)

	compact := vs[Compact]
	assert.Equal(t, 80.0, compact.Parameters.Number(intent.KeyLength, 0))
	assert.Equal(t, 125.0, compact.StrengthScore)

	for _, v := range vs {
		assert.Equal(t, "Aluminum 6061-T6", v.Material)
		assert.Positive(t, v.MassG)
		assert.GreaterOrEqual(t, v.CostScore, 1.0)
		assert.LessOrEqual(t, v.CostScore, 10.0)
	}
}

func TestGenerateDoesNotMutate(t *testing.T) {
	d := plateIntent()
	Generate(d, CoreStrategies...)
	assert.Equal(t, 5.0, d.Parameters.Number(intent.KeyThickness, 0))
	assert.False(t, d.Parameters.Has(KeyEdgeFinish))
}

func TestCoreStrategies(t *testing.T) {
	vs := Generate(plateIntent(), CoreStrategies...)
	require.Len(t, vs, 3)
	assert.Equal(t, []Strategy{Strength, Weight, Cost}, []Strategy{vs[0].Strategy, vs[1].Strategy, vs[2].Strategy})
}

func TestNoThresholdsIsLowRisk(t *testing.T) {
	d := plateIntent()
	d.Acceptance = intent.Acceptance{}
	for _, v := range Generate(d) {
		assert.Equal(t, RiskLow, v.Insights.Risk, v.Strategy)
		assert.Empty(t, v.Insights.Suggestions)
	}
}

func TestGuidanceOrder(t *testing.T) {
	d := plateIntent()
	d.Parameters.SetNumber(intent.KeyHoleCount, 4)
	d.Parameters.SetNumber(intent.KeyHoleDiameter, 4.5)
	for _, v := range Generate(d) {
		g := v.Guidance
		require.GreaterOrEqual(t, len(g), 5, v.Strategy)
		assert.True(t, strings.HasPrefix(g[0], "Sketch"), g[0])
		assert.True(t, strings.HasPrefix(g[1], "Extrude"), g[1])
		assert.Equal(t, strategyStep[v.Strategy], g[2])
		assert.True(t, strings.HasPrefix(g[len(g)-1], "Verify"), g[len(g)-1])
		assert.Contains(t, strings.Join(g, "\n"), "Drill 4x Ø4.5 mm holes")
	}
}

func TestGuidanceForRoundParts(t *testing.T) {
	d := intent.NewDesignIntent("shaft")
	d.Parameters.SetNumber(intent.KeyDiameter, 12)
	d.Parameters.SetNumber(intent.KeyLength, 80)
	v := Generate(d, Cost)[0]
	assert.Equal(t, "Sketch the base circle: Ø12 mm", v.Guidance[0])
	assert.Contains(t, v.Guidance[1], "Turn or revolve")
}

// ----------------------------------------------------------------------------
// Trade-off

func TestDominates(t *testing.T) {
	base := Metrics{MassG: 100, Stiffness: 50, Cost: 5, SafetyFactor: 2}
	tests := []struct {
		name string
		a    Metrics
		want bool
	}{
		{"identical", base, false},
		{"lighter", Metrics{MassG: 90, Stiffness: 50, Cost: 5, SafetyFactor: 2}, true},
		{"stiffer", Metrics{MassG: 100, Stiffness: 60, Cost: 5, SafetyFactor: 2}, true},
		{"cheaper", Metrics{MassG: 100, Stiffness: 50, Cost: 4, SafetyFactor: 2}, true},
		{"safer", Metrics{MassG: 100, Stiffness: 50, Cost: 5, SafetyFactor: 3}, true},
		{"lighter but weaker", Metrics{MassG: 90, Stiffness: 50, Cost: 5, SafetyFactor: 1}, false},
		{"worse everywhere", Metrics{MassG: 110, Stiffness: 40, Cost: 6, SafetyFactor: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dominates(tt.a, base))
		})
	}
}

func TestParetoSoundness(t *testing.T) {
	var ms []Metrics
	for i := 0; i < 6; i++ {
		for j := 0; j < 4; j++ {
			ms = append(ms, Metrics{
				MassG:        float64(50 + 10*i),
				Stiffness:    float64(10 + 7*((i*3+j)%5)),
				Cost:         float64(1 + (i+2*j)%7),
				SafetyFactor: float64(1+j) * 0.5,
			})
		}
	}
	front := ParetoFront(ms)
	require.Contains(t, front, true)
	for i, ok := range front {
		if !ok {
			continue
		}
		for j := range ms {
			assert.False(t, Dominates(ms[j], ms[i]), "pareto scenario %d dominated by %d", i, j)
		}
	}
}

func scenarios() []Scenario {
	return []Scenario{
		{Name: "Steel 1018", Metrics: Metrics{MassG: 390, Stiffness: 300, Cost: 2, SafetyFactor: 1.6}},
		{Name: "Aluminum 6061-T6", Metrics: Metrics{MassG: 135, Stiffness: 100, Cost: 4, SafetyFactor: 1.2}},
		{Name: "Titanium Ti-6Al-4V", Metrics: Metrics{MassG: 220, Stiffness: 165, Cost: 10, SafetyFactor: 3.8}},
		{Name: "Stainless Steel 304", Metrics: Metrics{MassG: 400, Stiffness: 280, Cost: 5, SafetyFactor: 0.9}},
	}
}

func TestAnalyzeScenarios(t *testing.T) {
	a := AnalyzeScenarios(scenarios(), intent.Acceptance{})
	pareto := map[string]bool{}
	for _, s := range a.Scenarios {
		pareto[s.Name] = s.ParetoOptimal
	}
	assert.Equal(t, map[string]bool{
		"Steel 1018":          true,
		"Aluminum 6061-T6":    true,
		"Titanium Ti-6Al-4V":  true,
		"Stainless Steel 304": false,
	}, pareto)
	assert.Equal(t, "Steel 1018", a.Recommended)
	assert.False(t, a.FellBack)
	assert.Contains(t, a.Conflicts, [2]string{"mass", "stiffness"})
	assert.Contains(t, a.Conflicts, [2]string{"mass", "cost"})
}

func TestAnalyzeRespectsThresholds(t *testing.T) {
	a := AnalyzeScenarios(scenarios(), intent.Acceptance{MaxMassG: 300, MinSafetyFactor: 1.5})
	assert.Equal(t, "Titanium Ti-6Al-4V", a.Recommended)
	assert.False(t, a.FellBack)
}

func TestAnalyzeFallsBackToCheapestPareto(t *testing.T) {
	a := AnalyzeScenarios(scenarios(), intent.Acceptance{MinSafetyFactor: 10})
	assert.True(t, a.FellBack)
	assert.Equal(t, "Steel 1018", a.Recommended)
	for _, s := range a.Scenarios {
		assert.False(t, s.MeetsThresholds)
	}
}

func TestRecommendationTies(t *testing.T) {
	ss := []Scenario{
		{Name: "b", Metrics: Metrics{MassG: 100, Stiffness: 10, Cost: 3, SafetyFactor: 2}},
		{Name: "a", Metrics: Metrics{MassG: 90, Stiffness: 10, Cost: 3, SafetyFactor: 1}},
		{Name: "c", Metrics: Metrics{MassG: 80, Stiffness: 10, Cost: 3, SafetyFactor: 1}},
	}
	// a is dominated by c; b and c tie on cost and b has the higher SF
	assert.Equal(t, "b", AnalyzeScenarios(ss, intent.Acceptance{}).Recommended)

	ss[0].Metrics.SafetyFactor = 1
	ss[0].Metrics.MassG = 80
	ss[0].Name = "d"
	assert.Equal(t, "c", AnalyzeScenarios(ss, intent.Acceptance{}).Recommended)
}

func TestAnalyzeFromSimulation(t *testing.T) {
	in := sim.Input{LengthMM: 100, WidthMM: 50, ThicknessMM: 5, LoadN: 500}
	rs := sim.RunAll(in, []string{"aluminum", "steel", "titanium", "PLA"})
	a := Analyze(rs, in.LoadN, intent.Acceptance{MinSafetyFactor: 1.5})
	require.Len(t, a.Scenarios, 4)
	assert.NotEmpty(t, a.Recommended)
	for _, s := range a.Scenarios {
		assert.Positive(t, s.Metrics.Stiffness)
	}
	for _, s := range a.Scenarios {
		if s.Name == a.Recommended {
			assert.True(t, s.ParetoOptimal)
		}
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	a := AnalyzeScenarios(nil, intent.Acceptance{})
	assert.Empty(t, a.Recommended)
	assert.Empty(t, a.Scenarios)
}
