package synth

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/kernel"
	"github.com/chazu/partforge/pkg/kernel/sdfx"
	"github.com/chazu/partforge/pkg/normalize"
)

func testKernel() *sdfx.SdfxKernel {
	return sdfx.New(sdfx.WithMeshCells(24))
}

func spec(prim intent.Primitive, dims map[string]float64, mods ...intent.Modifier) normalize.GeometrySpec {
	var ms intent.Modifiers
	for _, m := range mods {
		ms = ms.With(m)
	}
	return normalize.GeometrySpec{
		ShapeType: prim,
		Dims:      dims,
		Units:     "mm",
		Material:  "Aluminum 6061-T6",
		Modifiers: ms,
	}
}

func hasFeature(features []string, substr string) bool {
	for _, f := range features {
		if strings.Contains(f, substr) {
			return true
		}
	}
	return false
}

func approx(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %f, want %f", name, got, want)
	}
}

// ----------------------------------------------------------------------------
// Closed-form properties

func TestMeasureVolumes(t *testing.T) {
	tests := []struct {
		name string
		spec normalize.GeometrySpec
		want float64
	}{
		{"box", spec(intent.Box, map[string]float64{"length": 100, "width": 50, "height": 25}), 125000},
		{"plate", spec(intent.Plate, map[string]float64{"length": 100, "width": 50, "thickness": 5}), 25000},
		{"cylinder", spec(intent.Cylinder, map[string]float64{"diameter": 20, "height": 50}), math.Pi * 100 * 50},
		{"tube", spec(intent.Tube, map[string]float64{"diameter": 50, "height": 100, "wallThickness": 3}), math.Pi / 4 * (2500 - 44*44) * 100},
		{"sphere", spec(intent.Sphere, map[string]float64{"diameter": 50}), 4.0 / 3.0 * math.Pi * 25 * 25 * 25},
		{"dome", spec(intent.Dome, map[string]float64{"diameter": 50}), 2.0 / 3.0 * math.Pi * 25 * 25 * 25},
		{"cone", spec(intent.Cone, map[string]float64{"diameter": 50, "height": 60}), math.Pi * 625 * 60 / 3},
		{"torus", spec(intent.Torus, map[string]float64{"diameter": 60, "thickness": 15}), 2 * math.Pi * math.Pi * 22.5 * 7.5 * 7.5},
		{"capsule", spec(intent.Capsule, map[string]float64{"diameter": 20, "height": 60}), math.Pi*100*40 + 4.0/3.0*math.Pi*1000},
		{"wedge", spec(intent.Wedge, map[string]float64{"length": 60, "width": 40, "height": 30}), 36000},
		{"pyramid", spec(intent.Pyramid, map[string]float64{"length": 50, "width": 50, "height": 40}), 100000.0 / 3},
		{"i-beam", spec(intent.IBeam, map[string]float64{"length": 200, "width": 50, "height": 100, "thickness": 6}), (2*50*6 + 88*6) * 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Measure(tt.spec)
			approx(t, "volume", g.Metadata.VolumeMM3, tt.want, 0.01)
		})
	}
}

func TestMassFromDensity(t *testing.T) {
	s := spec(intent.Box, map[string]float64{"length": 100, "width": 50, "height": 25})
	g := Measure(s)
	approx(t, "aluminium mass", g.Metadata.MassG, 337.5, 0.01)

	s.Material = "Steel 1018"
	g = Measure(s)
	approx(t, "steel mass", g.Metadata.MassG, 983.75, 0.01)
	if g.Metadata.Material != "Steel 1018" {
		t.Errorf("Material = %q", g.Metadata.Material)
	}
}

func TestUnknownMaterialIsNoted(t *testing.T) {
	s := spec(intent.Box, map[string]float64{"length": 10, "width": 10, "height": 10})
	s.Material = "unobtanium"
	g := Measure(s)
	if !hasFeature(g.Metadata.Features, "unknown material") {
		t.Errorf("features %v missing unknown material note", g.Metadata.Features)
	}
	if g.Metadata.MassG <= 0 {
		t.Errorf("mass = %f, want default material mass", g.Metadata.MassG)
	}
}

func TestRevolvedVolumeOfRectangleIsCylinder(t *testing.T) {
	rect := []kernel.Point2{{0, 0}, {10, 0}, {10, 30}, {0, 30}}
	approx(t, "revolved", revolvedVolume(rect), math.Pi*100*30, 1e-6)

	ring := []kernel.Point2{{5, 0}, {10, 0}, {10, 30}, {5, 30}}
	approx(t, "revolved ring", revolvedVolume(ring), math.Pi*(100-25)*30, 1e-6)
}

func TestRoundedBoxVolume(t *testing.T) {
	approx(t, "sharp", roundedBoxVolume(10, 20, 30, 0), 6000, 1e-9)
	// fully rounded cube of side 2r is a sphere
	approx(t, "sphere", roundedBoxVolume(10, 10, 10, 5), 4.0/3.0*math.Pi*125, 1e-9)
	if v := roundedBoxVolume(10, 20, 30, 2); v >= 6000 {
		t.Errorf("rounded volume %f should be below the sharp box", v)
	}
}

func TestUnitScaling(t *testing.T) {
	s := spec(intent.Box, map[string]float64{"length": 10, "width": 5, "height": 2.5})
	s.Units = "cm"
	g := Measure(s)
	approx(t, "volume", g.Metadata.VolumeMM3, 125000, 0.01)
	if g.Units != "cm" {
		t.Errorf("Units = %q, want cm", g.Units)
	}
	approx(t, "length", g.Dimensions["length"], 10, 1e-9)
	approx(t, "height", g.Dimensions["height"], 2.5, 1e-9)
}

// ----------------------------------------------------------------------------
// Clamping and substitution

func TestWallClampsToSolid(t *testing.T) {
	box := Measure(spec(intent.Box, map[string]float64{"length": 100, "width": 50, "height": 25, "wallThickness": 20}, intent.Hollow))
	approx(t, "box volume", box.Metadata.VolumeMM3, 125000, 0.01)
	if !hasFeature(box.Metadata.Features, "built solid") {
		t.Errorf("box features %v missing solid note", box.Metadata.Features)
	}

	tube := Measure(spec(intent.Tube, map[string]float64{"diameter": 50, "height": 100, "wallThickness": 30}))
	approx(t, "tube volume", tube.Metadata.VolumeMM3, math.Pi*625*100, 0.01)
	if !hasFeature(tube.Metadata.Features, "built solid") {
		t.Errorf("tube features %v missing solid note", tube.Metadata.Features)
	}
}

func TestHollowBoxSubtractsCavity(t *testing.T) {
	g := Measure(spec(intent.Box, map[string]float64{"length": 100, "width": 50, "height": 25, "wallThickness": 2}, intent.Hollow))
	approx(t, "volume", g.Metadata.VolumeMM3, 125000-96*46*21, 0.01)
}

func TestHollowSphereIsNoted(t *testing.T) {
	g := Measure(spec(intent.Sphere, map[string]float64{"diameter": 50}, intent.Hollow))
	approx(t, "volume", g.Metadata.VolumeMM3, 4.0/3.0*math.Pi*25*25*25, 0.01)
	if !hasFeature(g.Metadata.Features, "hollow ignored") {
		t.Errorf("features %v missing hollow note", g.Metadata.Features)
	}
}

func TestMotorMountFeatureSubstitutesPlate(t *testing.T) {
	s := spec(intent.Plate, map[string]float64{"length": 100, "width": 50, "thickness": 5})
	s.Features = []intent.Feature{{Kind: intent.FeatureMotorMount, Value: "NEMA17"}}
	g := Measure(s)

	plate, ok := g.Shape.(MotorPlate)
	if !ok {
		t.Fatalf("shape = %T, want MotorPlate", g.Shape)
	}
	if g.Family != intent.MotorMount {
		t.Errorf("Family = %q", g.Family)
	}
	if plate.ClearanceHole != 3.4 {
		t.Errorf("ClearanceHole = %g, want M3 clearance 3.4", plate.ClearanceHole)
	}
	want := (100*50 - math.Pi/4*22*22 - 4*math.Pi/4*3.4*3.4) * 5
	approx(t, "volume", g.Metadata.VolumeMM3, want, 0.01)
	if !hasFeature(g.Metadata.Features, "NEMA17 mount") {
		t.Errorf("features %v missing mount note", g.Metadata.Features)
	}
}

func TestMotorMountFamilyDefaultsToNEMA17(t *testing.T) {
	g := Measure(spec(intent.MotorMount, map[string]float64{}))
	plate, ok := g.Shape.(MotorPlate)
	if !ok {
		t.Fatalf("shape = %T, want MotorPlate", g.Shape)
	}
	if plate.Mount.Designation != "NEMA17" {
		t.Errorf("mount = %q", plate.Mount.Designation)
	}
	if plate.Length < plate.Mount.FrameSize || plate.Width < plate.Mount.FrameSize {
		t.Errorf("plate %gx%g smaller than the motor face", plate.Length, plate.Width)
	}
}

func TestMountingBracket(t *testing.T) {
	s := spec(intent.Bracket, map[string]float64{
		"length":        150,
		"width":         20,
		"height":        80,
		"wallThickness": 2,
		"holeCount":     4,
		"holeDiameter":  4.5,
	})
	g := Measure(s)
	b, ok := g.Shape.(Bracket)
	if !ok {
		t.Fatalf("shape = %T, want Bracket", g.Shape)
	}
	if b.LegA != 150 || b.LegB != 80 || b.Width != 20 || b.Thickness != 2 {
		t.Errorf("bracket = %+v", b)
	}
	if b.Holes.Count != 4 || b.Holes.Diameter != 4.5 {
		t.Errorf("holes = %+v", b.Holes)
	}
	want := (150*2+78*2)*20 - 4*math.Pi/4*4.5*4.5*2
	approx(t, "volume", g.Metadata.VolumeMM3, want, 0.01)
}

func TestBoltFromDesignation(t *testing.T) {
	s := spec(intent.Bolt, map[string]float64{"length": 40})
	s.Designation = "M10"
	g := Measure(s)
	f, ok := g.Shape.(Fastener)
	if !ok {
		t.Fatalf("shape = %T, want Fastener", g.Shape)
	}
	if f.Thread.MajorDia != 10 || f.Length != 40 {
		t.Errorf("fastener = %+v", f)
	}
	if !hasFeature(g.Metadata.Features, "M10x1.5 thread (cosmetic)") {
		t.Errorf("features %v missing thread note", g.Metadata.Features)
	}
}

func TestGearMinimumTeeth(t *testing.T) {
	g := Measure(spec(intent.Gear, map[string]float64{"teeth": 3, "module": 2, "height": 10}))
	if gear := g.Shape.(Gear); gear.Teeth != minGearTeeth {
		t.Errorf("Teeth = %d, want %d", gear.Teeth, minGearTeeth)
	}
	if !hasFeature(g.Metadata.Features, "tooth count raised") {
		t.Errorf("features %v missing tooth note", g.Metadata.Features)
	}
}

func TestTaperedCylinderIsCone(t *testing.T) {
	g := Measure(spec(intent.Cylinder, map[string]float64{"diameter": 50, "height": 100}, intent.Tapered))
	c, ok := g.Shape.(Cone)
	if !ok {
		t.Fatalf("shape = %T, want Cone", g.Shape)
	}
	if c.TopDiameter != 30 {
		t.Errorf("TopDiameter = %g, want 30", c.TopDiameter)
	}
}

// ----------------------------------------------------------------------------
// Geometry

func assemblyBounds(meshes []*kernel.Mesh) (lo, hi [3]float32) {
	first := true
	for _, m := range meshes {
		if m.IsEmpty() {
			continue
		}
		mn, mx := m.Bounds()
		for a := 0; a < 3; a++ {
			if first || mn[a] < lo[a] {
				lo[a] = mn[a]
			}
			if first || mx[a] > hi[a] {
				hi[a] = mx[a]
			}
		}
		first = false
	}
	return lo, hi
}

func TestSynthesizeIsCentred(t *testing.T) {
	k := testKernel()
	specs := map[string]normalize.GeometrySpec{
		"box":     spec(intent.Box, map[string]float64{"length": 100, "width": 50, "height": 25}),
		"bracket": spec(intent.Bracket, map[string]float64{"length": 60, "width": 30, "height": 40, "thickness": 4}),
		"dome":    spec(intent.Dome, map[string]float64{"diameter": 60}),
		"bolt":    spec(intent.Bolt, map[string]float64{"diameter": 10, "length": 40}),
		"gear":    spec(intent.Gear, map[string]float64{"teeth": 20, "module": 2, "height": 10}),
	}
	for name, s := range specs {
		t.Run(name, func(t *testing.T) {
			g := Synthesize(s, k)
			if g.Metadata.Degraded {
				t.Fatalf("degraded: %v", g.Metadata.Features)
			}
			if len(g.Meshes) == 0 {
				t.Fatal("no meshes")
			}
			lo, hi := assemblyBounds(g.Meshes)
			for a := 0; a < 3; a++ {
				if c := (lo[a] + hi[a]) / 2; math.Abs(float64(c)) > 1e-3 {
					t.Errorf("axis %d centre = %f", a, c)
				}
			}
		})
	}
}

func TestBoltIsAnAssembly(t *testing.T) {
	g := Synthesize(spec(intent.Bolt, map[string]float64{"diameter": 10, "length": 40}), testKernel())
	if len(g.Meshes) != 2 {
		t.Fatalf("got %d meshes, want shank and head", len(g.Meshes))
	}
	if g.Meshes[0].PartName == g.Meshes[1].PartName {
		t.Errorf("parts share name %q", g.Meshes[0].PartName)
	}
}

func TestVolumeIndependentOfResolution(t *testing.T) {
	s := spec(intent.Flange, map[string]float64{"diameter": 100, "innerDiameter": 30, "thickness": 12, "holeCount": 4})
	coarse := Synthesize(s, sdfx.New(sdfx.WithMeshCells(12)))
	fine := Synthesize(s, sdfx.New(sdfx.WithMeshCells(32)))
	if coarse.Metadata.VolumeMM3 != fine.Metadata.VolumeMM3 {
		t.Errorf("volume changed with resolution: %f vs %f", coarse.Metadata.VolumeMM3, fine.Metadata.VolumeMM3)
	}
}

func TestEveryFamilySynthesizes(t *testing.T) {
	k := testKernel()
	for _, prim := range intent.Primitives {
		t.Run(string(prim), func(t *testing.T) {
			g := Synthesize(spec(prim, intent.DefaultDimensions(prim)), k)
			if g.Metadata.Degraded {
				t.Errorf("degraded: %v", g.Metadata.Features)
			}
			if g.Metadata.VolumeMM3 <= 0 {
				t.Errorf("volume = %f", g.Metadata.VolumeMM3)
			}
			if len(g.Dimensions) == 0 {
				t.Error("no dimensions")
			}
			if len(g.Meshes) == 0 {
				t.Error("no meshes")
			}
		})
	}
}

// gearlessKernel fails every gear request.
type gearlessKernel struct {
	*sdfx.SdfxKernel
}

func (gearlessKernel) Gear(int, float64, float64, float64) kernel.Solid {
	panic("gear profile failed")
}

func TestGeneratorFailureFallsBackToEnvelope(t *testing.T) {
	g := Synthesize(spec(intent.Gear, map[string]float64{"teeth": 20, "module": 2, "height": 10}), gearlessKernel{testKernel()})
	if !g.Metadata.Degraded {
		t.Fatal("expected degraded geometry")
	}
	if !hasFeature(g.Metadata.Features, "geometry fallback") {
		t.Errorf("features %v missing fallback note", g.Metadata.Features)
	}
	if len(g.Meshes) != 1 || g.Meshes[0].IsEmpty() {
		t.Fatal("expected an envelope mesh")
	}
	lo, hi := assemblyBounds(g.Meshes)
	// envelope is the tip-circle cylinder: 2*(20+2) = 44mm
	if w := hi[0] - lo[0]; w < 40 || w > 48 {
		t.Errorf("envelope width = %f", w)
	}
	if g.Metadata.VolumeMM3 <= 0 {
		t.Error("closed-form volume lost on fallback")
	}
}
