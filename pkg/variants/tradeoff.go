package variants

import (
	"math"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/sim"
	"github.com/samber/lo"
)

// Metrics is the tuple scenarios are compared on. Lower mass and cost are
// better; higher stiffness and safety factor are better.
type Metrics struct {
	MassG        float64 `json:"massG"`
	Stiffness    float64 `json:"stiffness"`
	Cost         float64 `json:"cost"`
	SafetyFactor float64 `json:"safetyFactor"`
}

// Scenario is one named option in a trade-off analysis.
type Scenario struct {
	Name            string  `json:"name"`
	Metrics         Metrics `json:"metrics"`
	ParetoOptimal   bool    `json:"isParetoOptimal"`
	MeetsThresholds bool    `json:"meetsThresholds"`
}

// TradeoffAnalysis is the Pareto ranking of a set of scenarios.
type TradeoffAnalysis struct {
	Scenarios   []Scenario `json:"scenarios"`
	Recommended string     `json:"recommended"`
	// FellBack is set when no Pareto scenario met the thresholds and the
	// recommendation ignores them.
	FellBack  bool        `json:"fellBack,omitempty"`
	Conflicts [][2]string `json:"conflicts,omitempty"`
}

// Dominates reports whether a dominates b: no worse on every metric and
// strictly better on at least one.
func Dominates(a, b Metrics) bool {
	av, bv := a.scores(), b.scores()
	better := false
	for i := range av {
		if av[i] < bv[i] {
			return false
		}
		if av[i] > bv[i] {
			better = true
		}
	}
	return better
}

var metricNames = [4]string{"mass", "stiffness", "cost", "safety factor"}

// scores orients every metric so that higher is better.
func (m Metrics) scores() [4]float64 {
	return [4]float64{-m.MassG, m.Stiffness, -m.Cost, m.SafetyFactor}
}

// ParetoFront marks the scenarios no other scenario dominates.
func ParetoFront(ms []Metrics) []bool {
	out := make([]bool, len(ms))
	for i := range ms {
		out[i] = true
		for j := range ms {
			if i != j && Dominates(ms[j], ms[i]) {
				out[i] = false
				break
			}
		}
	}
	return out
}

// ScenarioFromSimulation names a scenario after its material. Stiffness is
// tip stiffness in N/mm; an unloaded result counts as infinitely stiff and
// is capped.
func ScenarioFromSimulation(r sim.Result, loadN float64) Scenario {
	stiffness := 1 / sim.Epsilon
	if r.DeflectionMM > sim.Epsilon && loadN != 0 {
		stiffness = math.Abs(loadN) / r.DeflectionMM
	}
	return Scenario{
		Name: r.Material,
		Metrics: Metrics{
			MassG:        r.MassG,
			Stiffness:    stiffness,
			Cost:         r.CostScore,
			SafetyFactor: r.SafetyFactor,
		},
	}
}

// Analyze ranks per-material simulation results for a design with the given
// acceptance thresholds.
func Analyze(results []sim.Result, loadN float64, acc intent.Acceptance) TradeoffAnalysis {
	scenarios := lo.Map(results, func(r sim.Result, _ int) Scenario {
		return ScenarioFromSimulation(r, loadN)
	})
	return AnalyzeScenarios(scenarios, acc)
}

// AnalyzeScenarios flags the Pareto set and picks the recommendation: the
// cheapest Pareto scenario that meets the thresholds, or failing that the
// cheapest Pareto scenario. Cost ties go to the higher safety factor, then
// to the name.
func AnalyzeScenarios(scenarios []Scenario, acc intent.Acceptance) TradeoffAnalysis {
	out := TradeoffAnalysis{Scenarios: append([]Scenario(nil), scenarios...)}
	front := ParetoFront(lo.Map(out.Scenarios, func(s Scenario, _ int) Metrics { return s.Metrics }))
	for i := range out.Scenarios {
		out.Scenarios[i].ParetoOptimal = front[i]
		out.Scenarios[i].MeetsThresholds = meets(out.Scenarios[i].Metrics, acc)
	}

	pareto := lo.Filter(out.Scenarios, func(s Scenario, _ int) bool { return s.ParetoOptimal })
	if len(pareto) == 0 {
		return out
	}
	candidates := lo.Filter(pareto, func(s Scenario, _ int) bool { return s.MeetsThresholds })
	if len(candidates) == 0 {
		candidates, out.FellBack = pareto, true
	}
	out.Recommended = lo.MinBy(candidates, cheaper).Name
	out.Conflicts = conflicts(pareto)
	return out
}

func cheaper(a, b Scenario) bool {
	if a.Metrics.Cost != b.Metrics.Cost {
		return a.Metrics.Cost < b.Metrics.Cost
	}
	if a.Metrics.SafetyFactor != b.Metrics.SafetyFactor {
		return a.Metrics.SafetyFactor > b.Metrics.SafetyFactor
	}
	return a.Name < b.Name
}

func meets(m Metrics, acc intent.Acceptance) bool {
	if acc.MaxMassG > 0 && m.MassG > acc.MaxMassG {
		return false
	}
	if acc.MinSafetyFactor > 0 && m.SafetyFactor < acc.MinSafetyFactor {
		return false
	}
	return true
}

// conflicts lists metric pairs that pull in opposite directions somewhere
// on the Pareto front: one scenario is better on the first and worse on the
// second.
func conflicts(front []Scenario) [][2]string {
	var out [][2]string
	for a := 0; a < len(metricNames); a++ {
		for b := a + 1; b < len(metricNames); b++ {
			if opposed(front, a, b) {
				out = append(out, [2]string{metricNames[a], metricNames[b]})
			}
		}
	}
	return out
}

func opposed(front []Scenario, a, b int) bool {
	for i := range front {
		si := front[i].Metrics.scores()
		for j := range front {
			sj := front[j].Metrics.scores()
			if si[a] > sj[a] && si[b] < sj[b] {
				return true
			}
		}
	}
	return false
}
