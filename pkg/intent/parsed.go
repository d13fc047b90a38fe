package intent

import (
	"sort"
	"strings"
)

// Primitive is the canonical shape family a request resolves to.
type Primitive string

const (
	Box        Primitive = "box"
	Plate      Primitive = "plate"
	Cube       Primitive = "cube"
	Cylinder   Primitive = "cylinder"
	Tube       Primitive = "tube"
	Capsule    Primitive = "capsule"
	Sphere     Primitive = "sphere"
	Dome       Primitive = "dome"
	Cone       Primitive = "cone"
	Torus      Primitive = "torus"
	Wedge      Primitive = "wedge"
	Prism      Primitive = "prism"
	Pyramid    Primitive = "pyramid"
	Bracket    Primitive = "l_bracket"
	IBeam      Primitive = "i_beam"
	TBeam      Primitive = "t_beam"
	CChannel   Primitive = "c_channel"
	Gear       Primitive = "gear"
	Bolt       Primitive = "bolt"
	Nut        Primitive = "nut"
	Stud       Primitive = "stud"
	Washer     Primitive = "washer"
	Spacer     Primitive = "spacer"
	Shaft      Primitive = "shaft"
	Flange     Primitive = "flange"
	Pulley     Primitive = "pulley"
	Knob       Primitive = "knob"
	Enclosure  Primitive = "enclosure"
	Pipe       Primitive = "pipe"
	BentPipe   Primitive = "bent_pipe"
	Vase       Primitive = "vase"
	Bowl       Primitive = "bowl"
	Ring       Primitive = "ring"
	MotorMount Primitive = "motor_mount"
)

// Primitives lists every shape family.
var Primitives = []Primitive{
	Box, Plate, Cube, Cylinder, Tube, Capsule, Sphere, Dome, Cone, Torus,
	Wedge, Prism, Pyramid, Bracket, IBeam, TBeam, CChannel, Gear, Bolt, Nut,
	Stud, Washer, Spacer, Shaft, Flange, Pulley, Knob, Enclosure, Pipe,
	BentPipe, Vase, Bowl, Ring, MotorMount,
}

// Diametral reports whether the family is sized by a diameter rather than a
// length/width pair.
func (p Primitive) Diametral() bool {
	switch p {
	case Cylinder, Tube, Capsule, Sphere, Dome, Cone, Torus, Gear, Bolt, Nut,
		Stud, Washer, Spacer, Shaft, Flange, Pulley, Knob, Pipe, BentPipe,
		Vase, Bowl, Ring, Prism:
		return true
	}
	return false
}

// Fastener reports whether the family is threaded hardware whose diameter is
// set by a thread designation.
func (p Primitive) Fastener() bool {
	return p == Bolt || p == Nut || p == Stud
}

// Modifier is a qualitative shape modifier.
type Modifier string

const (
	Hollow     Modifier = "hollow"
	Solid      Modifier = "solid"
	Rounded    Modifier = "rounded"
	Chamfered  Modifier = "chamfered"
	Threaded   Modifier = "threaded"
	Knurled    Modifier = "knurled"
	Slotted    Modifier = "slotted"
	Tapered    Modifier = "tapered"
	Helical    Modifier = "helical"
	Reinforced Modifier = "reinforced"
)

// Modifiers is a set of modifiers kept sorted and free of duplicates.
type Modifiers []Modifier

// Has reports whether m is in the set.
func (ms Modifiers) Has(m Modifier) bool {
	for _, x := range ms {
		if x == m {
			return true
		}
	}
	return false
}

// With returns the set with m added.
func (ms Modifiers) With(m Modifier) Modifiers {
	if ms.Has(m) {
		return ms
	}
	out := append(append(Modifiers(nil), ms...), m)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String joins the set with commas.
func (ms Modifiers) String() string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = string(m)
	}
	return strings.Join(parts, ",")
}

// ParseModifiers is the inverse of Modifiers.String.
func ParseModifiers(s string) Modifiers {
	var out Modifiers
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = out.With(Modifier(part))
		}
	}
	return out
}

// FeatureKind names a discrete detected feature.
type FeatureKind string

const (
	FeatureHoles      FeatureKind = "holes"
	FeatureThread     FeatureKind = "thread"
	FeatureFillet     FeatureKind = "fillet"
	FeatureChamfer    FeatureKind = "chamfer"
	FeatureMotorMount FeatureKind = "motor_mount"
	FeatureBearing    FeatureKind = "bearing"
)

// Feature is one discrete feature found in a request: "4 holes", "thread
// M4", "fillet 2mm", "NEMA17 mount".
type Feature struct {
	Kind   FeatureKind `json:"kind"`
	Value  string      `json:"value,omitempty"`
	Amount float64     `json:"amount,omitempty"`
}

// Context carries the non-geometric facts extracted from a request.
type Context struct {
	Purpose      string   `json:"purpose,omitempty"`
	Environment  string   `json:"environment,omitempty"`
	SizeCategory string   `json:"sizeCategory"`
	Quantity     int      `json:"quantity"`
	LoadN        float64  `json:"load,omitempty"`
	Aesthetics   []string `json:"aesthetics,omitempty"`
	Constraints  []string `json:"constraints,omitempty"`
}

// ParsedIntent is the structured result of parsing free text. Dimensions are
// millimetres; diameter is always twice radius when either is present.
type ParsedIntent struct {
	Primitive           Primitive          `json:"primitiveType"`
	Dimensions          map[string]float64 `json:"dimensions"`
	Modifiers           Modifiers          `json:"modifiers,omitempty"`
	Material            string             `json:"material"`
	Features            []Feature          `json:"features,omitempty"`
	Context             Context            `json:"context"`
	Confidence          float64            `json:"confidence"`
	StandardDesignation string             `json:"standardDesignation,omitempty"`
	ThreadDesignation   string             `json:"threadDesignation,omitempty"`
	// Acceptance carries "weigh less than 500g" and "safety factor 2".
	Acceptance Acceptance `json:"acceptance"`

	// Explicit names the dimensions that came from the text rather than from
	// defaults.
	Explicit map[string]bool `json:"-"`
}

// Feature returns the first feature of the given kind.
func (p ParsedIntent) Feature(kind FeatureKind) (Feature, bool) {
	for _, f := range p.Features {
		if f.Kind == kind {
			return f, true
		}
	}
	return Feature{}, false
}

// ToDesignIntent lifts a parse result into a fresh DesignIntent. Dimensions
// become numeric parameters; designation, modifiers, and features ride along
// as string and nested parameters.
func (p ParsedIntent) ToDesignIntent() DesignIntent {
	d := NewDesignIntent(string(p.Primitive))
	for k, v := range p.Dimensions {
		d.Parameters.SetNumber(k, v)
	}
	if p.Material != "" {
		d.Materials = []string{p.Material}
		d.Parameters.SetString(KeyMaterial, p.Material)
	}
	if p.Context.LoadN > 0 {
		d.Parameters.SetNumber(KeyLoad, p.Context.LoadN)
	}
	d.Acceptance.MaxMassG = p.Acceptance.MaxMassG
	d.Acceptance.MinSafetyFactor = p.Acceptance.MinSafetyFactor
	if p.StandardDesignation != "" {
		d.Parameters.SetString(KeyDesignation, p.StandardDesignation)
	}
	if len(p.Modifiers) > 0 {
		d.Parameters.SetString(KeyModifiers, p.Modifiers.String())
	}
	if len(p.Features) > 0 {
		fs := Params{}
		for _, f := range p.Features {
			if f.Value != "" {
				fs.SetString(string(f.Kind), f.Value)
			} else {
				fs.SetNumber(string(f.Kind), f.Amount)
			}
		}
		d.Parameters[KeyFeatures] = Nested(fs)
	}
	return d
}
