package synth

import (
	"math"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/kernel"
	"github.com/chazu/partforge/pkg/standards"
)

// Shape is the closed set of parametric families the synthesizer can build.
// Every implementation lives in this file; build switches over all of them.
// All lengths are millimetres.
type Shape interface {
	// Family is the primitive the shape was derived from.
	Family() intent.Primitive
	// Volume is the closed-form solid volume in mm^3.
	Volume() float64
	// Envelope summarises the overall dimensions.
	Envelope() map[string]float64

	isShape()
}

// HolePattern is a set of through holes along the two long edges of a face.
type HolePattern struct {
	Count    int
	Diameter float64
	Inset    float64
}

func (h HolePattern) area() float64 {
	return float64(h.Count) * circleArea(h.Diameter)
}

// BoltCircle is a ring of through holes on a pitch circle.
type BoltCircle struct {
	Count         int
	Diameter      float64
	PitchDiameter float64
}

// ----------------------------------------------------------------------------
// Prismatic

// Block is a box, cube or plate, optionally rounded, shelled and drilled.
type Block struct {
	Kind                  intent.Primitive
	Length, Width, Height float64
	Round                 float64
	Wall                  float64 // 0 means solid
	Holes                 HolePattern
}

func (b Block) Family() intent.Primitive { return b.Kind }

func (b Block) Volume() float64 {
	v := roundedBoxVolume(b.Length, b.Width, b.Height, b.Round)
	if b.Wall > 0 {
		v -= (b.Length - 2*b.Wall) * (b.Width - 2*b.Wall) * (b.Height - 2*b.Wall)
		return v - b.Holes.area()*2*b.Wall
	}
	return v - b.Holes.area()*b.Height
}

func (b Block) Envelope() map[string]float64 {
	return map[string]float64{intent.KeyLength: b.Length, intent.KeyWidth: b.Width, intent.KeyHeight: b.Height}
}

// Enclosure is an open-top box with a floor and four screw bosses.
type Enclosure struct {
	Length, Width, Height float64
	Wall                  float64
	BossDiameter          float64 // 0 when the cavity is too small for bosses
	BossHole              float64
}

func (e Enclosure) Family() intent.Primitive { return intent.Enclosure }

func (e Enclosure) Volume() float64 {
	cavity := (e.Length - 2*e.Wall) * (e.Width - 2*e.Wall) * (e.Height - e.Wall)
	v := e.Length*e.Width*e.Height - cavity
	if e.BossDiameter > 0 {
		v += 4 * (circleArea(e.BossDiameter) - circleArea(e.BossHole)) * (e.Height - e.Wall)
	}
	return v
}

func (e Enclosure) Envelope() map[string]float64 {
	return map[string]float64{
		intent.KeyLength:        e.Length,
		intent.KeyWidth:         e.Width,
		intent.KeyHeight:        e.Height,
		intent.KeyWallThickness: e.Wall,
	}
}

// MotorPlate is a flat plate laid out for a standard motor face: a pilot
// bore and clearance holes on the standard bolt square.
type MotorPlate struct {
	Length, Width, Thickness float64
	Mount                    standards.MotorMountSpec
	ClearanceHole            float64
}

func (m MotorPlate) Family() intent.Primitive { return intent.MotorMount }

func (m MotorPlate) Volume() float64 {
	cut := circleArea(m.Mount.PilotDia) + float64(m.Mount.HoleCount)*circleArea(m.ClearanceHole)
	return (m.Length*m.Width - cut) * m.Thickness
}

func (m MotorPlate) Envelope() map[string]float64 {
	return map[string]float64{
		intent.KeyLength:    m.Length,
		intent.KeyWidth:     m.Width,
		intent.KeyThickness: m.Thickness,
		"boltSpacing":       m.Mount.BoltSpacing,
		"pilotDiameter":     m.Mount.PilotDia,
	}
}

// Wedge is a right-triangle prism: full height at one end, zero at the other.
type Wedge struct {
	Length, Width, Height float64
}

func (w Wedge) Family() intent.Primitive { return intent.Wedge }
func (w Wedge) Volume() float64          { return w.Length * w.Width * w.Height / 2 }

func (w Wedge) Envelope() map[string]float64 {
	return map[string]float64{intent.KeyLength: w.Length, intent.KeyWidth: w.Width, intent.KeyHeight: w.Height}
}

// Pyramid is a rectangular-based pyramid.
type Pyramid struct {
	Length, Width, Height float64
}

func (p Pyramid) Family() intent.Primitive { return intent.Pyramid }
func (p Pyramid) Volume() float64          { return p.Length * p.Width * p.Height / 3 }

func (p Pyramid) Envelope() map[string]float64 {
	return map[string]float64{intent.KeyLength: p.Length, intent.KeyWidth: p.Width, intent.KeyHeight: p.Height}
}

// Prism is a regular n-gon extruded along Z. Diameter is across corners.
type Prism struct {
	Sides            int
	Diameter, Height float64
}

func (p Prism) Family() intent.Primitive { return intent.Prism }

func (p Prism) Volume() float64 {
	return regularPolygonArea(p.Sides, p.Diameter/2) * p.Height
}

func (p Prism) Envelope() map[string]float64 {
	return map[string]float64{intent.KeyDiameter: p.Diameter, intent.KeyHeight: p.Height, KeySides: float64(p.Sides)}
}

// Bracket is an L-bend sheet bracket: a horizontal leg A and a vertical leg
// B sharing a bend corner, optionally with a corner gusset.
type Bracket struct {
	LegA, LegB, Width, Thickness float64
	Gusset                       float64 // gusset leg length, 0 for none
	Holes                        HolePattern
}

func (b Bracket) Family() intent.Primitive { return intent.Bracket }

func (b Bracket) Volume() float64 {
	section := b.LegA*b.Thickness + (b.LegB-b.Thickness)*b.Thickness
	v := section*b.Width - b.Holes.area()*b.Thickness
	if b.Gusset > 0 {
		v += b.Gusset * b.Gusset / 2 * b.Thickness
	}
	return v
}

func (b Bracket) Envelope() map[string]float64 {
	return map[string]float64{
		intent.KeyLegA:      b.LegA,
		intent.KeyLegB:      b.LegB,
		intent.KeyWidth:     b.Width,
		intent.KeyThickness: b.Thickness,
	}
}

// Beam is a structural profile (I, T, or C) extruded along its length.
// Solid is set when the thickness consumes the whole section.
type Beam struct {
	Kind                     intent.Primitive
	Length, Flange, Depth, T float64
	Solid                    bool
}

func (b Beam) Family() intent.Primitive { return b.Kind }

func (b Beam) Volume() float64 {
	return b.sectionArea() * b.Length
}

func (b Beam) sectionArea() float64 {
	if b.Solid {
		return b.Flange * b.Depth
	}
	switch b.Kind {
	case intent.TBeam:
		return b.Flange*b.T + (b.Depth-b.T)*b.T
	default:
		return 2*b.Flange*b.T + (b.Depth-2*b.T)*b.T
	}
}

func (b Beam) Envelope() map[string]float64 {
	return map[string]float64{
		intent.KeyLength:    b.Length,
		intent.KeyWidth:     b.Flange,
		intent.KeyHeight:    b.Depth,
		intent.KeyThickness: b.T,
	}
}

// ----------------------------------------------------------------------------
// Round

// Cylinder covers solid rods, tubes, shafts, spacers, washers, flanges and
// straight pipes: a Z-axis cylinder with an optional bore and bolt circle.
type Cylinder struct {
	Kind             intent.Primitive
	Diameter, Height float64
	Bore             float64
	Bolts            BoltCircle
}

func (c Cylinder) Family() intent.Primitive { return c.Kind }

func (c Cylinder) Volume() float64 {
	area := circleArea(c.Diameter) - circleArea(c.Bore) - float64(c.Bolts.Count)*circleArea(c.Bolts.Diameter)
	return area * c.Height
}

func (c Cylinder) Envelope() map[string]float64 {
	out := map[string]float64{intent.KeyDiameter: c.Diameter, intent.KeyHeight: c.Height}
	if c.Bore > 0 {
		out[intent.KeyInnerDiameter] = c.Bore
	}
	return out
}

// Capsule is a cylinder capped by two hemispheres; Height is overall.
type Capsule struct {
	Diameter, Height float64
}

func (c Capsule) Family() intent.Primitive { return intent.Capsule }

func (c Capsule) Volume() float64 {
	r := c.Diameter / 2
	return math.Pi*r*r*(c.Height-2*r) + 4.0/3.0*math.Pi*r*r*r
}

func (c Capsule) Envelope() map[string]float64 {
	return map[string]float64{intent.KeyDiameter: c.Diameter, intent.KeyHeight: c.Height}
}

// Sphere is a full sphere, or a dome (upper hemisphere).
type Sphere struct {
	Diameter float64
	Dome     bool
}

func (s Sphere) Family() intent.Primitive {
	if s.Dome {
		return intent.Dome
	}
	return intent.Sphere
}

func (s Sphere) Volume() float64 {
	r := s.Diameter / 2
	v := 4.0 / 3.0 * math.Pi * r * r * r
	if s.Dome {
		return v / 2
	}
	return v
}

func (s Sphere) Envelope() map[string]float64 {
	h := s.Diameter
	if s.Dome {
		h = s.Diameter / 2
	}
	return map[string]float64{intent.KeyDiameter: s.Diameter, intent.KeyHeight: h}
}

// Cone is a (possibly truncated) cone along Z.
type Cone struct {
	Kind                        intent.Primitive
	BottomDiameter, TopDiameter float64
	Height                      float64
}

func (c Cone) Family() intent.Primitive { return c.Kind }

func (c Cone) Volume() float64 {
	r0, r1 := c.BottomDiameter/2, c.TopDiameter/2
	return math.Pi * c.Height / 3 * (r0*r0 + r0*r1 + r1*r1)
}

func (c Cone) Envelope() map[string]float64 {
	return map[string]float64{intent.KeyDiameter: c.BottomDiameter, "topDiameter": c.TopDiameter, intent.KeyHeight: c.Height}
}

// Torus lies in the XY plane.
type Torus struct {
	MajorRadius, MinorRadius float64
}

func (t Torus) Family() intent.Primitive { return intent.Torus }

func (t Torus) Volume() float64 {
	return 2 * math.Pi * math.Pi * t.MajorRadius * t.MinorRadius * t.MinorRadius
}

func (t Torus) Envelope() map[string]float64 {
	return map[string]float64{
		intent.KeyDiameter:  2 * (t.MajorRadius + t.MinorRadius),
		intent.KeyThickness: 2 * t.MinorRadius,
	}
}

// Gear is an involute spur gear, helical when Twist is non-zero.
type Gear struct {
	Teeth     int
	Module    float64
	FaceWidth float64
	Bore      float64
	Twist     float64 // degrees across the face
}

func (g Gear) Family() intent.Primitive { return intent.Gear }

func (g Gear) PitchDiameter() float64 { return float64(g.Teeth) * g.Module }
func (g Gear) TipDiameter() float64   { return float64(g.Teeth+2) * g.Module }

// Volume takes the pitch circle as the tooth-band area: addendum material
// and dedendum gaps cancel to first order.
func (g Gear) Volume() float64 {
	return (circleArea(g.PitchDiameter()) - circleArea(g.Bore)) * g.FaceWidth
}

func (g Gear) Envelope() map[string]float64 {
	return map[string]float64{
		intent.KeyDiameter: g.TipDiameter(),
		"pitchDiameter":    g.PitchDiameter(),
		intent.KeyHeight:   g.FaceWidth,
		intent.KeyTeeth:    float64(g.Teeth),
		intent.KeyModule:   g.Module,
	}
}

// Fastener is a hex bolt, hex nut, or plain stud sized from a thread spec.
type Fastener struct {
	Kind   intent.Primitive
	Thread standards.ThreadSpec
	Length float64 // shank length; unused for nuts
}

func (f Fastener) Family() intent.Primitive { return f.Kind }

func (f Fastener) Volume() float64 {
	d := f.Thread.MajorDia
	switch f.Kind {
	case intent.Nut:
		return (hexArea(f.Thread.HeadAcrossFlats) - circleArea(d)) * f.Thread.NutHeight
	case intent.Bolt:
		return hexArea(f.Thread.HeadAcrossFlats)*f.Thread.HeadHeight + circleArea(d)*f.Length
	default:
		return circleArea(d) * f.Length
	}
}

func (f Fastener) Envelope() map[string]float64 {
	d := f.Thread.MajorDia
	switch f.Kind {
	case intent.Nut:
		return map[string]float64{intent.KeyDiameter: f.Thread.HeadAcrossFlats, intent.KeyHeight: f.Thread.NutHeight, intent.KeyInnerDiameter: d}
	case intent.Bolt:
		return map[string]float64{intent.KeyDiameter: d, intent.KeyLength: f.Length, intent.KeyHeight: f.Length + f.Thread.HeadHeight}
	default:
		return map[string]float64{intent.KeyDiameter: d, intent.KeyLength: f.Length}
	}
}

// Pipe is a tube, straight along Z or bent through Angle degrees about a
// bend radius measured to the centreline.
type Pipe struct {
	Kind       intent.Primitive
	Diameter   float64
	Wall       float64
	Length     float64 // centreline length
	Angle      float64
	BendRadius float64
}

func (p Pipe) Family() intent.Primitive { return p.Kind }

func (p Pipe) Volume() float64 {
	return (circleArea(p.Diameter) - circleArea(p.Diameter-2*p.Wall)) * p.Length
}

func (p Pipe) Envelope() map[string]float64 {
	out := map[string]float64{intent.KeyDiameter: p.Diameter, intent.KeyLength: p.Length, intent.KeyWallThickness: p.Wall}
	if p.Angle > 0 {
		out["bendAngle"] = p.Angle
		out["bendRadius"] = p.BendRadius
	}
	return out
}

// Lathe is any revolved profile: vases, bowls, pulleys and knobs. The
// profile lies in the XY plane with x as radius.
type Lathe struct {
	Kind             intent.Primitive
	Profile          []kernel.Point2
	Diameter, Height float64
}

func (l Lathe) Family() intent.Primitive { return l.Kind }
func (l Lathe) Volume() float64          { return revolvedVolume(l.Profile) }

func (l Lathe) Envelope() map[string]float64 {
	return map[string]float64{intent.KeyDiameter: l.Diameter, intent.KeyHeight: l.Height}
}

// Ring is a finger ring band with an optional gem seated on top.
type Ring struct {
	Size          float64
	InnerDiameter float64
	Width         float64
	Thickness     float64
	GemDiameter   float64
}

func (r Ring) Family() intent.Primitive { return intent.Ring }

// Volume is band plus gem; the seat overlap is ignored.
func (r Ring) Volume() float64 {
	band := (circleArea(r.InnerDiameter+2*r.Thickness) - circleArea(r.InnerDiameter)) * r.Width
	g := r.GemDiameter / 2
	return band + 4.0/3.0*math.Pi*g*g*g
}

func (r Ring) Envelope() map[string]float64 {
	return map[string]float64{
		intent.KeyRingSize:      r.Size,
		intent.KeyInnerDiameter: r.InnerDiameter,
		intent.KeyDiameter:      r.InnerDiameter + 2*r.Thickness,
		intent.KeyWidth:         r.Width,
		intent.KeyThickness:     r.Thickness,
	}
}

func (Block) isShape()      {}
func (Enclosure) isShape()  {}
func (MotorPlate) isShape() {}
func (Wedge) isShape()      {}
func (Pyramid) isShape()    {}
func (Prism) isShape()      {}
func (Bracket) isShape()    {}
func (Beam) isShape()       {}
func (Cylinder) isShape()   {}
func (Capsule) isShape()    {}
func (Sphere) isShape()     {}
func (Cone) isShape()       {}
func (Torus) isShape()      {}
func (Gear) isShape()       {}
func (Fastener) isShape()   {}
func (Pipe) isShape()       {}
func (Lathe) isShape()      {}
func (Ring) isShape()       {}
