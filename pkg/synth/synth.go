// Package synth is the geometry synthesis engine. It turns a normalized
// GeometrySpec into a centred solid assembly, meshes it through a geometry
// kernel, and reports closed-form volume and mass.
//
// Volume and mass never come from the mesh, so they do not depend on
// tessellation resolution. Synthesis never fails: a generator that panics is
// replaced by an envelope solid and the fallback is recorded in the
// metadata feature list.
package synth

import (
	"fmt"
	"math"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/kernel"
	"github.com/chazu/partforge/pkg/materials"
	"github.com/chazu/partforge/pkg/normalize"
	"github.com/chazu/partforge/pkg/tessellate"
)

// Metadata carries the derived properties of a synthesized part.
type Metadata struct {
	VolumeMM3 float64  `json:"volume_mm3"`
	MassG     float64  `json:"mass_g"`
	Material  string   `json:"material"`
	Features  []string `json:"features"`
	// Degraded is set when the geometry is a stand-in for a failed
	// generator.
	Degraded bool `json:"degraded,omitempty"`
}

// GeneratedGeometry is the result of one synthesis call. Meshes are centred
// on the origin as a whole; Dimensions are in the spec's units.
type GeneratedGeometry struct {
	Family     intent.Primitive   `json:"family"`
	Meshes     []*kernel.Mesh     `json:"meshes,omitempty"`
	Dimensions map[string]float64 `json:"dimensions"`
	Units      string             `json:"units"`
	Metadata   Metadata           `json:"metadata"`

	Shape Shape `json:"-"`
}

// unitless envelope keys are never rescaled.
var unitless = map[string]bool{
	intent.KeyTeeth:    true,
	intent.KeyRingSize: true,
	KeySides:           true,
	KeyBendAngle:       true,
}

// Measure resolves the shape and its closed-form properties without
// building any geometry.
func Measure(spec normalize.GeometrySpec) GeneratedGeometry {
	shape, features := FromSpec(spec)
	return measure(spec, shape, features)
}

func measure(spec normalize.GeometrySpec, shape Shape, features []string) GeneratedGeometry {
	units := spec.Units
	if units == "" {
		units = "mm"
	}
	scale := unitScale(units)
	dims := make(map[string]float64)
	for k, v := range shape.Envelope() {
		if !unitless[k] {
			v /= scale
		}
		dims[k] = round2(v)
	}

	mat, found := materials.Resolve(spec.Material)
	if !found && spec.Material != "" {
		features = append(features, fmt.Sprintf("unknown material %q; %s assumed", spec.Material, mat.Name))
	}
	volume := math.Max(shape.Volume(), 0)
	return GeneratedGeometry{
		Family:     shape.Family(),
		Dimensions: dims,
		Units:      units,
		Metadata: Metadata{
			VolumeMM3: round2(volume),
			MassG:     round2(volume / 1000 * mat.Density),
			Material:  mat.Name,
			Features:  features,
		},
		Shape: shape,
	}
}

// Synthesize builds, centres and meshes the part described by spec.
func Synthesize(spec normalize.GeometrySpec, k kernel.Kernel) GeneratedGeometry {
	g := Measure(spec)

	var root *tessellate.Node
	if err := guard(func() { root = build(k, g.Shape) }); err != nil {
		g.Metadata.Degraded = true
		g.Metadata.Features = append(g.Metadata.Features, fmt.Sprintf("geometry fallback: %v", err))
		root = envelope(k, g.Shape)
	}

	var meshes []*kernel.Mesh
	err := guard(func() {
		var merr error
		if meshes, merr = tessellate.Tessellate(root, k); merr != nil {
			panic(merr)
		}
	})
	if err != nil {
		g.Metadata.Degraded = true
		g.Metadata.Features = append(g.Metadata.Features, fmt.Sprintf("mesh unavailable: %v", err))
	}
	CentreMeshes(meshes)
	g.Meshes = meshes
	return g
}

// CentreMeshes translates an assembly so the bounding box of all its meshes
// is centred on the origin.
func CentreMeshes(meshes []*kernel.Mesh) {
	var lo, hi [3]float32
	seen := false
	for _, m := range meshes {
		if m == nil || m.IsEmpty() {
			continue
		}
		mn, mx := m.Bounds()
		for a := 0; a < 3; a++ {
			if !seen || mn[a] < lo[a] {
				lo[a] = mn[a]
			}
			if !seen || mx[a] > hi[a] {
				hi[a] = mx[a]
			}
		}
		seen = true
	}
	if !seen {
		return
	}
	dx, dy, dz := -(lo[0]+hi[0])/2, -(lo[1]+hi[1])/2, -(lo[2]+hi[2])/2
	for _, m := range meshes {
		if m != nil {
			m.Translate(dx, dy, dz)
		}
	}
}

// guard runs fn and converts a panic into an error.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	fn()
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
