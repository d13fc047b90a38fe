// Package normalize reconciles the different ways a design can name its
// shape and dimensions into one canonical GeometrySpec.
//
// Classification is two-tier and the order is a contract: an explicit type
// or profile string always outranks structural guessing from parameter keys.
package normalize

import (
	"sort"
	"strings"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/materials"
)

// Source is an intent-like structure whose field names may disagree with
// each other: a type, a profile, a profile inside the parameter bag, or only
// raw geometry keys.
type Source struct {
	Type        string
	Profile     string
	Params      intent.Params
	Material    string
	Modifiers   intent.Modifiers
	Features    []intent.Feature
	Designation string
}

// GeometrySpec is the single view synthesis works from.
type GeometrySpec struct {
	ShapeType   intent.Primitive   `json:"shapeType"`
	Dims        map[string]float64 `json:"dims"`
	Units       string             `json:"units"`
	Material    string             `json:"material"`
	Modifiers   intent.Modifiers   `json:"modifiers,omitempty"`
	Features    []intent.Feature   `json:"features,omitempty"`
	Designation string             `json:"designation,omitempty"`
	// ClassifiedBy records which tier picked ShapeType: "explicit",
	// "heuristic", or "default".
	ClassifiedBy string `json:"classifiedBy"`
}

// Dim returns a dimension or def when it is missing or non-positive.
func (g GeometrySpec) Dim(key string, def float64) float64 {
	if v, ok := g.Dims[key]; ok && v > 0 {
		return v
	}
	return def
}

// Has reports whether a positive dimension is present.
func (g GeometrySpec) Has(key string) bool {
	v, ok := g.Dims[key]
	return ok && v > 0
}

// Feature returns the first feature of the given kind.
func (g GeometrySpec) Feature(kind intent.FeatureKind) (intent.Feature, bool) {
	for _, f := range g.Features {
		if f.Kind == kind {
			return f, true
		}
	}
	return intent.Feature{}, false
}

// FromDesignIntent builds a Source from a stored intent. Modifiers and
// features the parser packed into the parameter bag are unpacked again.
func FromDesignIntent(d intent.DesignIntent) Source {
	src := Source{
		Type:        d.PartClass,
		Profile:     d.Profile,
		Params:      d.Parameters,
		Material:    d.PrimaryMaterial(),
		Modifiers:   intent.ParseModifiers(d.Parameters.String(intent.KeyModifiers, "")),
		Designation: d.Parameters.String(intent.KeyDesignation, ""),
	}
	fs := d.Parameters.Nested(intent.KeyFeatures)
	for _, k := range fs.Keys() {
		v := fs[k]
		f := intent.Feature{Kind: intent.FeatureKind(k)}
		if v.Kind() == intent.KindString {
			f.Value = v.String()
		} else {
			f.Amount, _ = v.Float()
		}
		src.Features = append(src.Features, f)
	}
	return src
}

// FromParsed builds a Source straight from a parse result.
func FromParsed(p intent.ParsedIntent) Source {
	params := intent.Params{}
	for k, v := range p.Dimensions {
		params.SetNumber(k, v)
	}
	return Source{
		Type:        string(p.Primitive),
		Params:      params,
		Material:    p.Material,
		Modifiers:   p.Modifiers,
		Features:    p.Features,
		Designation: p.StandardDesignation,
	}
}

// Normalize classifies src and canonicalises its dimensions.
func Normalize(src Source) GeometrySpec {
	params := src.Params.Canonical()
	spec := GeometrySpec{
		Dims:        map[string]float64{},
		Units:       "mm",
		Material:    materials.Canonical(src.Material),
		Modifiers:   src.Modifiers,
		Features:    append([]intent.Feature(nil), src.Features...),
		Designation: src.Designation,
	}
	if spec.Material == "" {
		spec.Material = materials.Default
	}
	for k, v := range params.Numbers() {
		spec.Dims[k] = v
	}

	candidates := []string{
		src.Type,
		src.Profile,
		params.String(intent.KeyProfile, ""),
		params.String(intent.KeyType, ""),
	}
	if prim, ok := classifyExplicit(candidates...); ok {
		spec.ShapeType, spec.ClassifiedBy = prim, "explicit"
	} else if prim, ok := classifyHeuristic(params); ok {
		spec.ShapeType, spec.ClassifiedBy = prim, "heuristic"
	} else {
		spec.ShapeType, spec.ClassifiedBy = intent.Plate, "default"
	}

	syncRadius(spec.Dims)
	return spec
}

// synonym maps a type/profile spelling onto a family. Entries are matched by
// containment and the longest matching synonym wins, so "i-beam" beats the
// generic "beam".
type synonym struct {
	text string
	prim intent.Primitive
}

var synonyms = func() []synonym {
	s := []synonym{
		{"box", intent.Box}, {"block", intent.Box}, {"cuboid", intent.Box},
		{"cube", intent.Cube},
		{"plate", intent.Plate}, {"baseplate", intent.Plate}, {"base plate", intent.Plate},
		{"panel", intent.Plate}, {"sheet", intent.Plate},
		{"cylinder", intent.Cylinder}, {"disc", intent.Cylinder}, {"disk", intent.Cylinder},
		{"rod", intent.Shaft}, {"shaft", intent.Shaft}, {"axle", intent.Shaft},
		{"tube", intent.Tube}, {"hollow cylinder", intent.Tube},
		{"capsule", intent.Capsule},
		{"sphere", intent.Sphere}, {"ball", intent.Sphere},
		{"dome", intent.Dome}, {"hemisphere", intent.Dome},
		{"cone", intent.Cone},
		{"torus", intent.Torus}, {"o-ring", intent.Torus}, {"donut", intent.Torus},
		{"wedge", intent.Wedge},
		{"prism", intent.Prism}, {"hex prism", intent.Prism},
		{"pyramid", intent.Pyramid},
		{"bracket", intent.Bracket}, {"l_bracket", intent.Bracket}, {"l-bracket", intent.Bracket},
		{"l bracket", intent.Bracket}, {"angle", intent.Bracket}, {"l-bend", intent.Bracket},
		{"sheet metal bracket", intent.Bracket},
		{"beam", intent.IBeam}, {"i-beam", intent.IBeam}, {"i_beam", intent.IBeam}, {"i beam", intent.IBeam},
		{"h-beam", intent.IBeam},
		{"t-beam", intent.TBeam}, {"t_beam", intent.TBeam}, {"t beam", intent.TBeam}, {"tee", intent.TBeam},
		{"channel", intent.CChannel}, {"c-channel", intent.CChannel}, {"c_channel", intent.CChannel},
		{"u-channel", intent.CChannel},
		{"gear", intent.Gear}, {"spur gear", intent.Gear}, {"helical gear", intent.Gear},
		{"bolt", intent.Bolt}, {"screw", intent.Bolt},
		{"nut", intent.Nut}, {"hex nut", intent.Nut},
		{"stud", intent.Stud}, {"threaded rod", intent.Stud},
		{"washer", intent.Washer},
		{"spacer", intent.Spacer}, {"standoff", intent.Spacer},
		{"flange", intent.Flange},
		{"pulley", intent.Pulley},
		{"knob", intent.Knob},
		{"enclosure", intent.Enclosure}, {"housing", intent.Enclosure}, {"case", intent.Enclosure},
		{"pipe", intent.Pipe}, {"bent pipe", intent.BentPipe}, {"bent_pipe", intent.BentPipe},
		{"elbow", intent.BentPipe},
		{"vase", intent.Vase}, {"bowl", intent.Bowl},
		{"ring", intent.Ring},
		{"motor mount", intent.MotorMount}, {"motor_mount", intent.MotorMount},
	}
	for _, p := range intent.Primitives {
		s = append(s, synonym{string(p), p})
	}
	sort.SliceStable(s, func(i, j int) bool { return len(s[i].text) > len(s[j].text) })
	return s
}()

// classifyExplicit matches the first non-empty candidate that names a known
// family.
func classifyExplicit(candidates ...string) (intent.Primitive, bool) {
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		padded := " " + strings.NewReplacer("-", " ", "_", " ").Replace(c) + " "
		for _, s := range synonyms {
			needle := " " + strings.NewReplacer("-", " ", "_", " ").Replace(s.text) + " "
			if c == s.text || strings.Contains(padded, needle) {
				return s.prim, true
			}
		}
	}
	return "", false
}

// classifyHeuristic guesses from structural keys alone.
func classifyHeuristic(p intent.Params) (intent.Primitive, bool) {
	switch {
	case p.HasNumber(intent.KeyLegA) || p.HasNumber(intent.KeyLegB):
		return intent.Bracket, true
	case p.HasNumber(intent.KeyRingSize):
		return intent.Ring, true
	case p.HasNumber(intent.KeyTeeth) && p.HasNumber(intent.KeyModule):
		return intent.Gear, true
	}
	d := p.Number(intent.KeyDiameter, 2*p.Number(intent.KeyRadius, 0))
	if d > 0 {
		if h := p.Number(intent.KeyHeight, p.Number(intent.KeyLength, 0)); h > 1.5*d {
			return intent.Cylinder, true
		}
	}
	return "", false
}

func syncRadius(dims map[string]float64) {
	if d, ok := dims[intent.KeyDiameter]; ok && d > 0 {
		dims[intent.KeyRadius] = d / 2
	} else if r, ok := dims[intent.KeyRadius]; ok && r > 0 {
		dims[intent.KeyDiameter] = 2 * r
	}
}
