package synth

import (
	"fmt"
	"math"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/kernel"
	"github.com/chazu/partforge/pkg/tessellate"
)

// build dispatches a shape to its generator. Every Shape must have a case.
func build(k kernel.Kernel, shape Shape) *tessellate.Node {
	switch s := shape.(type) {
	case Block:
		return buildBlock(k, s)
	case Enclosure:
		return buildEnclosure(k, s)
	case MotorPlate:
		return buildMotorPlate(k, s)
	case Wedge:
		return tessellate.Leaf("wedge", buildWedge(k, s))
	case Pyramid:
		return tessellate.Leaf("pyramid", buildPyramid(k, s))
	case Prism:
		return tessellate.Leaf("prism", k.Extrude(regularPolygon(s.Sides, s.Diameter/2, 90), s.Height, 0))
	case Bracket:
		return buildBracket(k, s)
	case Beam:
		return tessellate.Leaf(string(s.Kind), buildBeam(k, s))
	case Cylinder:
		return tessellate.Leaf(string(s.Kind), buildCylinder(k, s))
	case Capsule:
		return tessellate.Leaf("capsule", buildCapsule(k, s))
	case Sphere:
		return tessellate.Leaf(string(s.Family()), buildSphere(k, s))
	case Cone:
		return tessellate.Leaf("cone", k.Cone(s.Height, s.BottomDiameter/2, s.TopDiameter/2))
	case Torus:
		return tessellate.Leaf("torus", k.Torus(s.MajorRadius, s.MinorRadius))
	case Gear:
		return tessellate.Leaf("gear", buildGear(k, s))
	case Fastener:
		return buildFastener(k, s)
	case Pipe:
		return tessellate.Leaf(string(s.Kind), buildPipe(k, s))
	case Lathe:
		return tessellate.Leaf(string(s.Kind), k.Revolve(s.Profile, 360))
	case Ring:
		return buildRing(k, s)
	}
	panic(fmt.Sprintf("synth: no generator for %T", shape))
}

// envelope builds a plain box the size of the shape's envelope. It stands in
// when a generator fails.
func envelope(k kernel.Kernel, shape Shape) *tessellate.Node {
	e := shape.Envelope()
	if d, ok := e[intent.KeyDiameter]; ok {
		h := e[intent.KeyHeight]
		if h == 0 {
			h = math.Max(e[intent.KeyLength], d)
		}
		return tessellate.Leaf("envelope", k.Cylinder(h, d/2))
	}
	l := math.Max(e[intent.KeyLength], e[intent.KeyLegA])
	h := math.Max(e[intent.KeyHeight], math.Max(e[intent.KeyThickness], e[intent.KeyLegB]))
	return tessellate.Leaf("envelope", k.Box(l, e[intent.KeyWidth], h))
}

// ----------------------------------------------------------------------------
// Prismatic

// positions lays holes in two rows along X, inset from the edges of an
// l x w face centred on the origin.
func (h HolePattern) positions(l, w float64) [][2]float64 {
	switch h.Count {
	case 0:
		return nil
	case 1:
		return [][2]float64{{0, 0}}
	}
	x0, y0 := l/2-h.Inset, w/2-h.Inset
	top := (h.Count + 1) / 2
	out := make([][2]float64, 0, h.Count)
	out = append(out, row(top, x0, y0)...)
	out = append(out, row(h.Count-top, x0, -y0)...)
	return out
}

func row(n int, x0, y float64) [][2]float64 {
	if n == 1 {
		return [][2]float64{{0, y}}
	}
	out := make([][2]float64, n)
	for i := range out {
		out[i] = [2]float64{-x0 + 2*x0*float64(i)/float64(n-1), y}
	}
	return out
}

func drill(k kernel.Kernel, at [][2]float64, d, depth float64) []kernel.Solid {
	cuts := make([]kernel.Solid, len(at))
	for i, p := range at {
		cuts[i] = k.Translate(k.Cylinder(depth+2, d/2), p[0], p[1], 0)
	}
	return cuts
}

func buildBlock(k kernel.Kernel, b Block) *tessellate.Node {
	body := k.RoundedBox(b.Length, b.Width, b.Height, b.Round)
	if b.Wall > 0 {
		body = k.Difference(body, k.Box(b.Length-2*b.Wall, b.Width-2*b.Wall, b.Height-2*b.Wall))
	}
	if cuts := drill(k, b.Holes.positions(b.Length, b.Width), b.Holes.Diameter, b.Height); len(cuts) > 0 {
		body = k.Difference(body, cuts...)
	}
	return tessellate.Leaf(string(b.Kind), body)
}

func buildEnclosure(k kernel.Kernel, e Enclosure) *tessellate.Node {
	// the cavity overshoots the rim so the top is open
	cavityH := e.Height - e.Wall + 1
	cavity := k.Translate(k.Box(e.Length-2*e.Wall, e.Width-2*e.Wall, cavityH), 0, 0, e.Wall/2+0.5)
	body := k.Difference(k.Box(e.Length, e.Width, e.Height), cavity)
	if e.BossDiameter > 0 {
		bh := e.Height - e.Wall
		x := e.Length/2 - e.Wall - e.BossDiameter/2
		y := e.Width/2 - e.Wall - e.BossDiameter/2
		bosses := []kernel.Solid{body}
		var holes []kernel.Solid
		for _, c := range [][2]float64{{x, y}, {-x, y}, {x, -y}, {-x, -y}} {
			bosses = append(bosses, k.Translate(k.Cylinder(bh, e.BossDiameter/2), c[0], c[1], e.Wall/2))
			holes = append(holes, k.Translate(k.Cylinder(bh+1, e.BossHole/2), c[0], c[1], e.Wall/2+0.5))
		}
		body = k.Difference(k.Union(bosses...), holes...)
	}
	return tessellate.Leaf("enclosure", body)
}

func buildMotorPlate(k kernel.Kernel, m MotorPlate) *tessellate.Node {
	s := m.Mount.BoltSpacing / 2
	corners := [][2]float64{{s, s}, {-s, s}, {-s, -s}, {s, -s}}
	if m.Mount.HoleCount < len(corners) {
		corners = corners[:m.Mount.HoleCount]
	}
	cuts := append(drill(k, corners, m.ClearanceHole, m.Thickness), k.Cylinder(m.Thickness+2, m.Mount.PilotDia/2))
	return tessellate.Leaf("motor_mount", k.Difference(k.Box(m.Length, m.Width, m.Thickness), cuts...))
}

// flat turns a profile drawn in XY into a prism lying in the XZ plane,
// extruded symmetrically along Y.
func flat(k kernel.Kernel, profile []kernel.Point2, depth float64) kernel.Solid {
	return k.Rotate(k.Extrude(profile, depth, 0), 90, 0, 0)
}

func buildWedge(k kernel.Kernel, w Wedge) kernel.Solid {
	l, h := w.Length/2, w.Height/2
	return flat(k, []kernel.Point2{{-l, -h}, {l, -h}, {-l, h}}, w.Width)
}

// buildPyramid intersects two triangular prisms whose ridges cross at the
// apex.
func buildPyramid(k kernel.Kernel, p Pyramid) kernel.Solid {
	h := p.Height / 2
	alongY := flat(k, []kernel.Point2{{-p.Length / 2, -h}, {p.Length / 2, -h}, {0, h}}, p.Width)
	alongX := k.Rotate(k.Extrude([]kernel.Point2{{-p.Width / 2, -h}, {p.Width / 2, -h}, {0, h}}, p.Length, 0), 90, 0, 90)
	return k.Intersection(alongY, alongX)
}

// buildBracket puts the bend corner at the origin: leg A runs along +X on
// the XY plane, leg B rises along +Z.
func buildBracket(k kernel.Kernel, b Bracket) *tessellate.Node {
	t := b.Thickness
	legA := k.Translate(k.Box(b.LegA, b.Width, t), b.LegA/2, 0, t/2)
	legB := k.Translate(k.Box(t, b.Width, b.LegB), t/2, 0, b.LegB/2)
	solids := []kernel.Solid{legA, legB}
	if b.Gusset > 0 {
		g := b.Gusset
		solids = append(solids, flat(k, []kernel.Point2{{t, t}, {t + g, t}, {t, t + g}}, t))
	}
	body := k.Union(solids...)

	if b.Holes.Count > 0 {
		nA := (b.Holes.Count + 1) / 2
		nB := b.Holes.Count - nA
		var cuts []kernel.Solid
		for _, y := range spread(nA, b.Width) {
			cuts = append(cuts, k.Translate(k.Cylinder(t+2, b.Holes.Diameter/2), t+(b.LegA-t)/2, y, t/2))
		}
		for _, y := range spread(nB, b.Width) {
			hole := k.Rotate(k.Cylinder(t+2, b.Holes.Diameter/2), 0, 90, 0)
			cuts = append(cuts, k.Translate(hole, t/2, y, t+(b.LegB-t)/2))
		}
		body = k.Difference(body, cuts...)
	}
	return tessellate.Leaf("bracket", body)
}

// spread places n points evenly across a span centred on zero.
func spread(n int, span float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = -span/2 + (float64(i)+0.5)*span/float64(n)
	}
	return out
}

// buildBeam runs the profile along X with the web vertical.
func buildBeam(k kernel.Kernel, b Beam) kernel.Solid {
	if b.Solid {
		return k.Box(b.Length, b.Flange, b.Depth)
	}
	flangeZ := b.Depth/2 - b.T/2
	top := k.Translate(k.Box(b.Length, b.Flange, b.T), 0, 0, flangeZ)
	switch b.Kind {
	case intent.TBeam:
		web := k.Translate(k.Box(b.Length, b.T, b.Depth-b.T), 0, 0, -b.T/2)
		return k.Union(top, web)
	case intent.CChannel:
		bottom := k.Translate(k.Box(b.Length, b.Flange, b.T), 0, 0, -flangeZ)
		web := k.Translate(k.Box(b.Length, b.T, b.Depth), 0, -b.Flange/2+b.T/2, 0)
		return k.Union(top, bottom, web)
	default:
		bottom := k.Translate(k.Box(b.Length, b.Flange, b.T), 0, 0, -flangeZ)
		web := k.Box(b.Length, b.T, b.Depth-2*b.T)
		return k.Union(top, bottom, web)
	}
}

// ----------------------------------------------------------------------------
// Round

func buildCylinder(k kernel.Kernel, c Cylinder) kernel.Solid {
	body := k.Cylinder(c.Height, c.Diameter/2)
	var cuts []kernel.Solid
	if c.Bore > 0 {
		cuts = append(cuts, k.Cylinder(c.Height+2, c.Bore/2))
	}
	for i := 0; i < c.Bolts.Count; i++ {
		a := 2 * math.Pi * float64(i) / float64(c.Bolts.Count)
		r := c.Bolts.PitchDiameter / 2
		cuts = append(cuts, k.Translate(k.Cylinder(c.Height+2, c.Bolts.Diameter/2), r*math.Cos(a), r*math.Sin(a), 0))
	}
	return k.Difference(body, cuts...)
}

func buildCapsule(k kernel.Kernel, c Capsule) kernel.Solid {
	r := c.Diameter / 2
	body := c.Height - c.Diameter
	if body <= 0 {
		return k.Sphere(r)
	}
	return k.Union(
		k.Cylinder(body, r),
		k.Translate(k.Sphere(r), 0, 0, body/2),
		k.Translate(k.Sphere(r), 0, 0, -body/2),
	)
}

func buildSphere(k kernel.Kernel, s Sphere) kernel.Solid {
	r := s.Diameter / 2
	ball := k.Sphere(r)
	if !s.Dome {
		return ball
	}
	// the half-space box goes first so it bounds the result
	return k.Intersection(k.Translate(k.Box(s.Diameter, s.Diameter, r), 0, 0, r/2), ball)
}

func buildGear(k kernel.Kernel, g Gear) kernel.Solid {
	body := k.Gear(g.Teeth, g.Module, g.FaceWidth, g.Twist)
	if g.Bore > 0 {
		body = k.Difference(body, k.Cylinder(g.FaceWidth+2, g.Bore/2))
	}
	return body
}

func buildFastener(k kernel.Kernel, f Fastener) *tessellate.Node {
	d := f.Thread.MajorDia
	switch f.Kind {
	case intent.Nut:
		h := f.Thread.NutHeight
		nut := k.Difference(k.Extrude(hexagon(f.Thread.HeadAcrossFlats), h, 0), k.Cylinder(h+2, d/2))
		return tessellate.Leaf("nut", nut)
	case intent.Bolt:
		head := f.Thread.HeadHeight
		return tessellate.Group("bolt",
			tessellate.Leaf("shank", k.Cylinder(f.Length, d/2)),
			tessellate.Leaf("head", k.Extrude(hexagon(f.Thread.HeadAcrossFlats), head, 0)).Move(0, 0, f.Length/2+head/2),
		)
	default:
		return tessellate.Leaf("stud", k.Cylinder(f.Length, d/2))
	}
}

// circleProfile approximates a circle of radius r centred at (cx, 0).
func circleProfile(r, cx float64) []kernel.Point2 {
	pts := regularPolygon(48, r, 0)
	for i := range pts {
		pts[i][0] += cx
	}
	return pts
}

func buildPipe(k kernel.Kernel, p Pipe) kernel.Solid {
	bore := p.Diameter - 2*p.Wall
	if p.Angle == 0 {
		body := k.Cylinder(p.Length, p.Diameter/2)
		if bore <= 0 {
			return body
		}
		return k.Difference(body, k.Cylinder(p.Length+2, bore/2))
	}
	outer := k.Revolve(circleProfile(p.Diameter/2, p.BendRadius), p.Angle)
	if bore <= 0 {
		return outer
	}
	// the inner sweep runs slightly past both ends so the bore stays open
	inner := k.Rotate(k.Revolve(circleProfile(bore/2, p.BendRadius), math.Min(p.Angle+2, 359.9)), 0, 0, -1)
	return k.Difference(outer, inner)
}

func buildRing(k kernel.Kernel, r Ring) *tessellate.Node {
	ri := r.InnerDiameter / 2
	band := k.Difference(k.Cylinder(r.Width, ri+r.Thickness), k.Cylinder(r.Width+2, ri))
	// finger axis along Y, gem on top
	band = k.Rotate(band, 90, 0, 0)
	seat := ri + r.Thickness + 0.35*r.GemDiameter
	return tessellate.Group("ring",
		tessellate.Leaf("band", band),
		tessellate.Leaf("gem", k.Sphere(r.GemDiameter/2)).Move(0, 0, seat),
	)
}
