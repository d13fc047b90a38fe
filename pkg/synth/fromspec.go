package synth

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/normalize"
	"github.com/chazu/partforge/pkg/standards"
)

// Keys for optional family parameters that the parser never emits but a
// directly authored intent may carry.
const (
	KeySides       = "sides"
	KeyTopDiameter = "topDiameter"
	KeyBendAngle   = "bendAngle"
	KeyGemDiameter = "gemDiameter"
)

const (
	defaultFillet     = 2.0
	defaultChamfer    = 1.0
	defaultWall       = 2.0
	defaultBendDeg    = 90.0
	helixAngleDeg     = 20.0
	minFeature        = 0.5
	bossDiameter      = 6.0
	bossHole          = 2.5
	minGearTeeth      = 6
	defaultPrismSides = 6
)

// unitScale converts a length in unit to millimetres.
func unitScale(unit string) float64 {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "cm":
		return 10
	case "m":
		return 1000
	case "in", "inch", "inches":
		return 25.4
	default:
		return 1
	}
}

// shaper turns a GeometrySpec into a Shape, collecting human-readable
// feature tags and degradation notes on the way.
type shaper struct {
	spec     normalize.GeometrySpec
	scale    float64
	defaults map[string]float64
	features []string
}

// FromSpec selects the generator for spec and resolves its parameters in
// millimetres. It never fails: unusable values are clamped or dropped and
// the reason recorded in the returned feature list.
func FromSpec(spec normalize.GeometrySpec) (Shape, []string) {
	s := &shaper{
		spec:     spec,
		scale:    unitScale(spec.Units),
		defaults: intent.DefaultDimensions(spec.ShapeType),
	}
	return s.shape(), s.features
}

func (s *shaper) note(format string, args ...any) {
	s.features = append(s.features, fmt.Sprintf(format, args...))
}

// mm returns a length dimension in millimetres, falling back to the family
// default and then to def.
func (s *shaper) mm(key string, def float64) float64 {
	if v, ok := s.spec.Dims[key]; ok && v > 0 {
		return v * s.scale
	}
	if v, ok := s.defaults[key]; ok {
		return v
	}
	return def
}

// first returns the first present key in millimetres.
func (s *shaper) first(def float64, keys ...string) float64 {
	for _, k := range keys {
		if s.spec.Has(k) {
			return s.mm(k, def)
		}
	}
	for _, k := range keys {
		if v, ok := s.defaults[k]; ok {
			return v
		}
	}
	return def
}

// count returns a unitless dimension.
func (s *shaper) count(key string, def float64) float64 {
	if v, ok := s.spec.Dims[key]; ok && v > 0 {
		return v
	}
	if v, ok := s.defaults[key]; ok {
		return v
	}
	return def
}

func (s *shaper) has(m intent.Modifier) bool { return s.spec.Modifiers.Has(m) }

func (s *shaper) shape() Shape {
	switch s.spec.ShapeType {
	case intent.Box, intent.Cube, intent.Plate:
		if mount, ok := s.motorMount(); ok {
			return s.motorPlate(mount)
		}
		return s.block()
	case intent.MotorMount:
		mount, ok := s.motorMount()
		if !ok {
			mount, _ = standards.MotorMount("NEMA17")
			s.note("no motor designation; NEMA17 footprint assumed")
		}
		return s.motorPlate(mount)
	case intent.Enclosure:
		return s.enclosure()
	case intent.Wedge:
		return Wedge{Length: s.mm(intent.KeyLength, 60), Width: s.mm(intent.KeyWidth, 40), Height: s.mm(intent.KeyHeight, 30)}
	case intent.Pyramid:
		return Pyramid{Length: s.mm(intent.KeyLength, 50), Width: s.mm(intent.KeyWidth, 50), Height: s.mm(intent.KeyHeight, 40)}
	case intent.Prism:
		sides := int(math.Round(s.count(KeySides, defaultPrismSides)))
		if sides < 3 {
			sides = 3
		}
		s.note("%d-sided prism", sides)
		return Prism{Sides: sides, Diameter: s.mm(intent.KeyDiameter, 40), Height: s.first(50, intent.KeyHeight, intent.KeyLength)}
	case intent.Bracket:
		return s.bracket()
	case intent.IBeam, intent.TBeam, intent.CChannel:
		return s.beam()
	case intent.Cylinder, intent.Tube, intent.Shaft, intent.Spacer, intent.Washer, intent.Flange:
		return s.cylinder()
	case intent.Pipe, intent.BentPipe:
		return s.pipe()
	case intent.Capsule:
		d := s.mm(intent.KeyDiameter, 20)
		return Capsule{Diameter: d, Height: math.Max(s.first(60, intent.KeyHeight, intent.KeyLength), d)}
	case intent.Sphere, intent.Dome:
		if s.has(intent.Hollow) {
			s.note("hollow ignored: %s built solid", s.spec.ShapeType)
		}
		return Sphere{Diameter: s.mm(intent.KeyDiameter, 50), Dome: s.spec.ShapeType == intent.Dome}
	case intent.Cone:
		if s.has(intent.Hollow) {
			s.note("hollow ignored: cone built solid")
		}
		d := s.mm(intent.KeyDiameter, 50)
		top := math.Min(s.mm(KeyTopDiameter, 0), d)
		return Cone{Kind: intent.Cone, BottomDiameter: d, TopDiameter: top, Height: s.first(60, intent.KeyHeight, intent.KeyLength)}
	case intent.Torus:
		return s.torus()
	case intent.Gear:
		return s.gear()
	case intent.Bolt, intent.Nut, intent.Stud:
		return s.fastener()
	case intent.Vase, intent.Bowl, intent.Pulley, intent.Knob:
		return s.lathe()
	case intent.Ring:
		return s.ring()
	}
	s.note("no generator for %q; envelope box built", s.spec.ShapeType)
	return Block{
		Kind:   intent.Box,
		Length: s.mm(intent.KeyLength, 100),
		Width:  s.mm(intent.KeyWidth, 50),
		Height: s.mm(intent.KeyHeight, 25),
	}
}

// ----------------------------------------------------------------------------
// Prismatic families

func (s *shaper) motorMount() (standards.MotorMountSpec, bool) {
	if f, ok := s.spec.Feature(intent.FeatureMotorMount); ok {
		if m, ok := standards.MotorMount(f.Value); ok {
			return m, true
		}
	}
	return standards.MotorMount(s.spec.Designation)
}

func (s *shaper) motorPlate(mount standards.MotorMountSpec) Shape {
	clearance := mount.FrameSize * 0.08
	if t, ok := standards.Thread(mount.ScrewThread); ok {
		clearance = t.ClearanceHole
	}
	l := math.Max(s.mm(intent.KeyLength, 60), mount.FrameSize)
	w := math.Max(s.mm(intent.KeyWidth, 60), mount.FrameSize)
	t := s.first(5, intent.KeyThickness)
	s.note("%s mount: pilot Ø%g, %dx %s on %gmm square", mount.Designation, mount.PilotDia, mount.HoleCount, mount.ScrewThread, mount.BoltSpacing)
	return MotorPlate{Length: l, Width: w, Thickness: t, Mount: mount, ClearanceHole: clearance}
}

func (s *shaper) block() Shape {
	b := Block{
		Kind:   s.spec.ShapeType,
		Length: s.mm(intent.KeyLength, 100),
		Width:  s.mm(intent.KeyWidth, 50),
		Height: s.mm(intent.KeyHeight, 25),
	}
	if b.Kind == intent.Plate {
		b.Height = s.first(5, intent.KeyThickness, intent.KeyHeight)
	}
	smallest := math.Min(b.Length, math.Min(b.Width, b.Height))

	switch {
	case s.has(intent.Rounded) || s.spec.Has(intent.KeyFilletRadius):
		b.Round = s.mm(intent.KeyFilletRadius, defaultFillet)
		s.note("fillet %gmm", b.Round)
	case s.has(intent.Chamfered) || s.spec.Has(intent.KeyChamferSize):
		b.Round = s.mm(intent.KeyChamferSize, defaultChamfer)
		s.note("chamfer %gmm approximated by an edge round", b.Round)
	}
	if b.Round > 0.49*smallest {
		b.Round = 0.49 * smallest
		s.note("edge round limited to %.2fmm", b.Round)
	}

	if s.has(intent.Hollow) && !s.has(intent.Solid) {
		wall := s.mm(intent.KeyWallThickness, defaultWall)
		if smallest-2*wall <= 0 {
			s.note("wall %gmm leaves no cavity; built solid", wall)
		} else {
			b.Wall = wall
			// the cavity is a sharp box; keep the outer round inside the wall
			b.Round = math.Min(b.Round, wall)
			s.note("hollow, wall %gmm", wall)
		}
	}
	if s.has(intent.Slotted) {
		s.note("slotted ignored for %s", b.Kind)
	}
	b.Holes = s.holes(b.Length, b.Width)
	return b
}

// holes lays holeCount through holes along the two long edges of an l x w
// face. Holes that cannot fit are dropped with a note.
func (s *shaper) holes(l, w float64) HolePattern {
	n := int(math.Round(s.count(intent.KeyHoleCount, 0)))
	if n <= 0 {
		return HolePattern{}
	}
	d := s.holeDiameter(5)
	inset := s.mm(intent.KeyHoleEdgeDistance, 1.5*d)
	inset = math.Max(inset, d/2+minFeature)
	if 2*inset >= math.Min(l, w) || d >= math.Min(l, w)/2 {
		s.note("%dx Ø%g holes do not fit a %gx%g face; omitted", n, d, l, w)
		return HolePattern{}
	}
	s.note("%dx Ø%g through holes", n, d)
	return HolePattern{Count: n, Diameter: d, Inset: inset}
}

// holeDiameter prefers an explicit hole size, then a thread clearance hole.
func (s *shaper) holeDiameter(def float64) float64 {
	if s.spec.Has(intent.KeyHoleDiameter) {
		return s.mm(intent.KeyHoleDiameter, def)
	}
	if f, ok := s.spec.Feature(intent.FeatureThread); ok {
		if t, ok := standards.Thread(f.Value); ok {
			return t.ClearanceHole
		}
	}
	if t, ok := standards.Thread(s.spec.Designation); ok {
		return t.ClearanceHole
	}
	return def
}

func (s *shaper) enclosure() Shape {
	e := Enclosure{
		Length: s.mm(intent.KeyLength, 120),
		Width:  s.mm(intent.KeyWidth, 80),
		Height: s.mm(intent.KeyHeight, 40),
		Wall:   s.first(defaultWall, intent.KeyWallThickness, intent.KeyThickness),
	}
	if e.Length-2*e.Wall <= 0 || e.Width-2*e.Wall <= 0 || e.Height-e.Wall <= 0 {
		s.note("wall %gmm leaves no cavity; built solid", e.Wall)
		return Block{Kind: intent.Box, Length: e.Length, Width: e.Width, Height: e.Height}
	}
	if math.Min(e.Length, e.Width)-2*e.Wall >= 3*bossDiameter {
		e.BossDiameter, e.BossHole = bossDiameter, bossHole
		s.note("4x Ø%g screw bosses", bossDiameter)
	} else {
		s.note("cavity too small for screw bosses")
	}
	s.note("open top, wall %gmm", e.Wall)
	return e
}

func (s *shaper) bracket() Shape {
	b := Bracket{
		LegA:  s.first(50, intent.KeyLegA, intent.KeyLength),
		LegB:  s.first(50, intent.KeyLegB, intent.KeyHeight),
		Width: s.mm(intent.KeyWidth, 40),
	}
	// sheet gauge: a stated wall wins over the family thickness default
	if s.spec.Has(intent.KeyWallThickness) {
		b.Thickness = s.mm(intent.KeyWallThickness, 3)
	} else {
		b.Thickness = s.mm(intent.KeyThickness, 3)
	}
	if limit := 0.5 * math.Min(b.LegA, b.LegB); b.Thickness > limit {
		b.Thickness = limit
		s.note("thickness limited to %gmm by leg length", limit)
	}
	if s.has(intent.Reinforced) {
		b.Gusset = 0.4 * (math.Min(b.LegA, b.LegB) - b.Thickness)
		s.note("corner gusset %.1fmm", b.Gusset)
	}

	n := int(math.Round(s.count(intent.KeyHoleCount, 0)))
	if n > 0 {
		d := s.holeDiameter(5)
		room := math.Min(b.LegA, b.LegB) - b.Thickness
		perLeg := (n + 1) / 2
		if d+2*minFeature >= room || float64(perLeg)*(d+minFeature) >= b.Width {
			s.note("%dx Ø%g holes do not fit the bracket legs; omitted", n, d)
		} else {
			b.Holes = HolePattern{Count: n, Diameter: d, Inset: b.Width / float64(2*perLeg)}
			s.note("%dx Ø%g holes split across both legs", n, d)
		}
	}
	return b
}

func (s *shaper) beam() Shape {
	b := Beam{
		Kind:   s.spec.ShapeType,
		Length: s.mm(intent.KeyLength, 200),
		Flange: s.mm(intent.KeyWidth, 50),
		Depth:  s.mm(intent.KeyHeight, 100),
		T:      s.first(5, intent.KeyThickness, intent.KeyWallThickness),
	}
	webRoom := b.Depth - 2*b.T
	if b.Kind == intent.TBeam {
		webRoom = b.Depth - b.T
	}
	if webRoom <= 0 || b.T >= b.Flange {
		b.Solid = true
		s.note("section thickness %gmm fills the profile; built solid", b.T)
	} else {
		s.note("%s profile %gx%g, t=%g", strings.ReplaceAll(string(b.Kind), "_", "-"), b.Depth, b.Flange, b.T)
	}
	return b
}

// ----------------------------------------------------------------------------
// Round families

func (s *shaper) cylinder() Shape {
	kind := s.spec.ShapeType
	c := Cylinder{Kind: kind, Diameter: s.mm(intent.KeyDiameter, 50)}
	switch kind {
	case intent.Shaft:
		c.Height = s.first(100, intent.KeyLength, intent.KeyHeight)
	case intent.Washer, intent.Flange:
		c.Height = s.first(2, intent.KeyThickness, intent.KeyHeight)
	default:
		c.Height = s.first(100, intent.KeyHeight, intent.KeyLength)
	}

	switch {
	case s.spec.Has(intent.KeyInnerDiameter) || kind == intent.Spacer || kind == intent.Washer || kind == intent.Flange:
		c.Bore = s.mm(intent.KeyInnerDiameter, c.Diameter/2)
	case kind == intent.Tube && !s.has(intent.Solid), s.has(intent.Hollow):
		c.Bore = c.Diameter - 2*s.mm(intent.KeyWallThickness, defaultWall)
	}
	if c.Bore != 0 && (c.Bore < minFeature || c.Bore >= c.Diameter-minFeature) {
		s.note("bore Ø%g leaves no wall; built solid", c.Bore)
		c.Bore = 0
	}
	if c.Bore > 0 {
		s.note("bore Ø%g", c.Bore)
	}

	if kind == intent.Flange {
		c.Bolts = s.boltCircle(c.Diameter, c.Bore)
	}
	if kind == intent.Cylinder && s.has(intent.Tapered) && c.Bore == 0 {
		s.note("tapered to Ø%g", 0.6*c.Diameter)
		return Cone{Kind: kind, BottomDiameter: c.Diameter, TopDiameter: 0.6 * c.Diameter, Height: c.Height}
	}
	if s.has(intent.Knurled) {
		s.note("knurl is cosmetic and not modelled")
	}
	if s.has(intent.Threaded) {
		s.note("thread is cosmetic and not modelled")
	}
	return c
}

func (s *shaper) boltCircle(od, bore float64) BoltCircle {
	n := int(math.Round(s.count(intent.KeyHoleCount, 4)))
	if n <= 0 {
		return BoltCircle{}
	}
	d := s.holeDiameter(0.08 * od)
	pcd := (od + bore) / 2
	ring := (od - bore) / 2
	spacing := math.Pi * pcd / float64(n)
	if d+2*minFeature >= ring || d+minFeature >= spacing {
		s.note("%dx Ø%g bolt holes do not fit the flange; omitted", n, d)
		return BoltCircle{}
	}
	s.note("%dx Ø%g on PCD %g", n, d, pcd)
	return BoltCircle{Count: n, Diameter: d, PitchDiameter: pcd}
}

func (s *shaper) pipe() Shape {
	p := Pipe{
		Kind:     s.spec.ShapeType,
		Diameter: s.mm(intent.KeyDiameter, 25),
		Length:   s.first(100, intent.KeyLength, intent.KeyHeight),
		Wall:     s.first(defaultWall, intent.KeyWallThickness, intent.KeyThickness),
	}
	if s.spec.Has(intent.KeyInnerDiameter) {
		p.Wall = (p.Diameter - s.mm(intent.KeyInnerDiameter, 0)) / 2
	}
	if p.Wall <= 0 || p.Diameter-2*p.Wall < minFeature || s.has(intent.Solid) {
		s.note("wall %gmm leaves no bore; built solid", p.Wall)
		p.Wall = p.Diameter / 2
	}
	if p.Kind == intent.BentPipe {
		p.Angle = math.Min(s.count(KeyBendAngle, defaultBendDeg), 359)
		rad := p.Angle * math.Pi / 180
		p.BendRadius = p.Length / rad
		if p.BendRadius < p.Diameter {
			p.BendRadius = p.Diameter
			p.Length = p.BendRadius * rad
			s.note("bend radius raised to %gmm", p.BendRadius)
		}
		s.note("%g° bend", p.Angle)
	}
	return p
}

func (s *shaper) torus() Shape {
	d := s.mm(intent.KeyDiameter, 60)
	minor := s.first(15, intent.KeyThickness, intent.KeyWidth) / 2
	major := d/2 - minor
	if major <= minor {
		major = minor * 1.05
		s.note("tube too thick for Ø%g; major radius raised to %.2fmm", d, major)
	}
	return Torus{MajorRadius: major, MinorRadius: minor}
}

func (s *shaper) gear() Shape {
	g := Gear{
		Teeth:     int(math.Round(s.count(intent.KeyTeeth, 20))),
		Module:    s.mm(intent.KeyModule, 2),
		FaceWidth: s.first(10, intent.KeyHeight, intent.KeyThickness, intent.KeyWidth),
	}
	if g.Teeth < minGearTeeth {
		s.note("tooth count raised from %d to %d", g.Teeth, minGearTeeth)
		g.Teeth = minGearTeeth
	}
	root := g.Module * (float64(g.Teeth) - 2.5)
	g.Bore = s.mm(intent.KeyInnerDiameter, 0)
	if g.Bore > 0.6*root {
		g.Bore = 0.6 * root
		s.note("bore limited to Ø%.2f", g.Bore)
	}
	s.note("involute %dT m%g", g.Teeth, g.Module)
	if s.has(intent.Helical) {
		g.Twist = g.FaceWidth * math.Tan(helixAngleDeg*math.Pi/180) / (g.PitchDiameter() / 2) * 180 / math.Pi
		s.note("helical %g°", helixAngleDeg)
	}
	return g
}

func (s *shaper) fastener() Shape {
	f := Fastener{Kind: s.spec.ShapeType, Length: s.first(40, intent.KeyLength, intent.KeyHeight)}
	d := s.mm(intent.KeyDiameter, 10)
	switch t, ok := s.thread(); {
	case ok:
		f.Thread = t
	case standards.NearestThread(d).MajorDia == d:
		f.Thread = standards.NearestThread(d)
	default:
		f.Thread = standards.ApproxThread(d)
		s.note("non-standard Ø%g; thread approximated", d)
	}
	s.note("%sx%g thread (cosmetic)", f.Thread.Designation, f.Thread.Pitch)
	return f
}

func (s *shaper) thread() (standards.ThreadSpec, bool) {
	if t, ok := standards.Thread(s.spec.Designation); ok {
		return t, true
	}
	if f, ok := s.spec.Feature(intent.FeatureThread); ok {
		return standards.Thread(f.Value)
	}
	return standards.ThreadSpec{}, false
}

func (s *shaper) lathe() Shape {
	kind := s.spec.ShapeType
	d := s.mm(intent.KeyDiameter, 100)
	h := s.first(60, intent.KeyHeight, intent.KeyLength, intent.KeyWidth)
	r := d / 2
	l := Lathe{Kind: kind, Diameter: d, Height: h}

	switch kind {
	case intent.Vase:
		w := s.mm(intent.KeyWallThickness, 3)
		outer := []pt{{0, 0}, {0.7 * r, 0}, {r, 0.35 * h}, {0.6 * r, 0.85 * h}, {0.7 * r, h}}
		if 0.6*r-w <= minFeature || h <= 2*w {
			s.note("wall %gmm leaves no cavity; built solid", w)
			l.Profile = append(outer, pt{0, h})
			break
		}
		inner := []pt{{0.7*r - w, h}, {0.6*r - w, 0.85 * h}, {r - w, 0.35 * h}, {0.7*r - w, w}, {0, w}}
		l.Profile = append(outer, inner...)
	case intent.Bowl:
		w := s.mm(intent.KeyWallThickness, 3)
		outer := []pt{{0, 0}, {0.5 * r, 0}, {r, h}}
		if 0.5*r-w <= minFeature || h <= 2*w {
			s.note("wall %gmm leaves no cavity; built solid", w)
			l.Profile = append(outer, pt{0, h})
			break
		}
		l.Profile = append(outer, pt{r - w, h}, pt{0.5*r - w, w}, pt{0, w})
	case intent.Pulley:
		bore := math.Min(s.mm(intent.KeyInnerDiameter, 8), 0.5*d)
		groove := math.Min(0.12*d, 0.4*(r-bore/2))
		l.Profile = []pt{
			{bore / 2, 0}, {r, 0}, {r, 0.2 * h}, {r - groove, 0.5 * h},
			{r, 0.8 * h}, {r, h}, {bore / 2, h},
		}
		s.note("V-groove %.1fmm deep, bore Ø%g", groove, bore)
	case intent.Knob:
		l.Profile = []pt{{0, 0}, {r, 0}, {r, 0.7 * h}, {0.8 * r, h}, {0, h}}
		if s.has(intent.Knurled) {
			s.note("knurl is cosmetic and not modelled")
		}
	}
	s.note("revolved %s profile", kind)
	return l
}

func (s *shaper) ring() Shape {
	size := s.count(intent.KeyRingSize, 7)
	r := Ring{
		Size:          size,
		InnerDiameter: ringInnerDiameter(size),
		Width:         s.mm(intent.KeyWidth, 4),
		Thickness:     s.mm(intent.KeyThickness, 2),
	}
	if s.spec.Has(intent.KeyInnerDiameter) {
		r.InnerDiameter = s.mm(intent.KeyInnerDiameter, r.InnerDiameter)
	}
	r.GemDiameter = s.mm(KeyGemDiameter, 1.25*r.Width)
	s.note("ring size %g (Ø%.2f inner) with Ø%g gem", r.Size, r.InnerDiameter, r.GemDiameter)
	return r
}
