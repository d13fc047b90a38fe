package rules

import (
	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/materials"
)

var builtinHandlers = map[string]Handler{
	"hole_edge_distance_ratio": holeEdgeDistanceRatio,
	"hole_depth_ratio":         holeDepthRatio,
	"corner_radius":            cornerRadius,
	"material_machinable":      materialMachinable,
	"polymer_wall_thickness":   polymerWallThickness,
}

func hasHoles(p intent.Params) bool {
	return p.Number(intent.KeyHoleCount, 0) > 0 && p.Number(intent.KeyHoleDiameter, 0) > 0
}

// holeEdgeDistanceRatio is edge distance over hole diameter.
func holeEdgeDistanceRatio(p intent.Params) (float64, bool) {
	if !hasHoles(p) || !p.HasNumber(intent.KeyHoleEdgeDistance) {
		return 0, false
	}
	return p.Number(intent.KeyHoleEdgeDistance, 0) / p.Number(intent.KeyHoleDiameter, 0), true
}

// holeDepthRatio is hole depth over diameter. Without an explicit depth the
// holes are taken to run through the stock.
func holeDepthRatio(p intent.Params) (float64, bool) {
	if !hasHoles(p) {
		return 0, false
	}
	depth := p.Number(intent.KeyHoleDepth, 0)
	for _, k := range []string{intent.KeyThickness, intent.KeyHeight} {
		if depth > 0 {
			break
		}
		depth = p.Number(k, 0)
	}
	if depth <= 0 {
		return 0, false
	}
	return depth / p.Number(intent.KeyHoleDiameter, 0), true
}

// cornerRadius applies to parts with a milled cavity and yields the
// internal corner radius, zero when none is given.
func cornerRadius(p intent.Params) (float64, bool) {
	if !p.HasNumber(intent.KeyWallThickness) {
		return 0, false
	}
	return p.Number(intent.KeyFilletRadius, 0), true
}

func materialMachinable(p intent.Params) (float64, bool) {
	m, ok := materials.Lookup(p.String(intent.KeyMaterial, ""))
	if !ok {
		return 0, false
	}
	if m.Machinable {
		return 1, true
	}
	return 0, true
}

func polymerWallThickness(p intent.Params) (float64, bool) {
	m, ok := materials.Lookup(p.String(intent.KeyMaterial, ""))
	if !ok || m.Category != materials.Polymer {
		return 0, false
	}
	for _, k := range []string{intent.KeyWallThickness, intent.KeyThickness} {
		if p.HasNumber(k) {
			return p.Number(k, 0), true
		}
	}
	return 0, false
}
