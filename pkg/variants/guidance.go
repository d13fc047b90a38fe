package variants

import (
	"fmt"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/normalize"
)

var strategyStep = map[Strategy]string{
	Strength: "Reinforce: add R3 fillets at every internal corner and a rib along the load path",
	Weight:   "Lighten: pocket the non-load-bearing faces, leaving a perimeter rim",
	Cost:     "Simplify: keep sharp external edges and standard drill sizes; skip secondary ops",
	Balanced: "Relieve stress: add R2 fillets at the load-bearing corners",
	Compact:  "Condense: shrink the footprint and carry the load in the thicker section",
}

// Guidance lists fabrication steps: base sketch, primary operation, the
// strategy's own step, features, finish, and verification.
func Guidance(spec normalize.GeometrySpec, s Strategy, p intent.Params) []string {
	var steps []string
	if spec.ShapeType.Diametral() {
		steps = append(steps,
			fmt.Sprintf("Sketch the base circle: Ø%g mm", spec.Dim(intent.KeyDiameter, 0)),
			fmt.Sprintf("Turn or revolve the %s profile", spec.ShapeType),
		)
	} else {
		steps = append(steps,
			fmt.Sprintf("Sketch the base rectangle: %g x %g mm", spec.Dim(intent.KeyLength, 0), spec.Dim(intent.KeyWidth, 0)),
			fmt.Sprintf("Extrude the %s to %g mm", spec.ShapeType, firstDim(spec, intent.KeyThickness, intent.KeyHeight)),
		)
	}
	if step, ok := strategyStep[s]; ok {
		steps = append(steps, step)
	}
	if n := spec.Dim(intent.KeyHoleCount, 0); n > 0 {
		if d := spec.Dim(intent.KeyHoleDiameter, 0); d > 0 {
			steps = append(steps, fmt.Sprintf("Drill %gx Ø%g mm holes", n, d))
		} else {
			steps = append(steps, fmt.Sprintf("Drill %g holes", n))
		}
	}
	if r := spec.Dim(intent.KeyFilletRadius, 0); r > 0 && s != Strength && s != Balanced {
		steps = append(steps, fmt.Sprintf("Break edges with R%g fillets", r))
	}
	if f := p.String(KeyEdgeFinish, ""); f != "" {
		steps = append(steps, "Finish: "+f)
	}
	if load := p.Number(intent.KeyLoad, 0); load > 0 {
		steps = append(steps, fmt.Sprintf("Verify: rule check, then simulate at %g N", load))
	} else {
		steps = append(steps, "Verify: rule check and dimensional inspection")
	}
	return steps
}

func firstDim(spec normalize.GeometrySpec, keys ...string) float64 {
	for _, k := range keys {
		if spec.Has(k) {
			return spec.Dims[k]
		}
	}
	return 0
}
