package intent

import (
	"github.com/chazu/partforge/pkg/materials"
	"github.com/google/uuid"
)

// Canonical parameter names. Every stage downstream of the parser reads
// parameters through these keys (see CanonicalKey).
const (
	KeyLength           = "length"
	KeyWidth            = "width"
	KeyHeight           = "height"
	KeyThickness        = "thickness"
	KeyWallThickness    = "wallThickness"
	KeyDiameter         = "diameter"
	KeyRadius           = "radius"
	KeyInnerDiameter    = "innerDiameter"
	KeyFilletRadius     = "filletRadius"
	KeyChamferSize      = "chamferSize"
	KeyHoleCount        = "holeCount"
	KeyHoleDiameter     = "holeDiameter"
	KeyHoleDepth        = "holeDepth"
	KeyHoleEdgeDistance = "holeEdgeDistance"
	KeyTeeth            = "teeth"
	KeyModule           = "module"
	KeyLegA             = "legA"
	KeyLegB             = "legB"
	KeyRingSize         = "ringSize"
	KeyLoad             = "load" // newtons
	KeyMassG            = "massG"
	KeyMaterial         = "material"
	KeyProfile          = "profile"
	KeyType             = "type"
	KeyDesignation      = "designation"
	KeyUnitSystem       = "unitSystem"
	KeyModifiers        = "modifiers"
	KeyFeatures         = "features"
)

// Severity classifies constraints and rule findings.
type Severity string

const (
	SeverityBlocker Severity = "blocker"
	SeverityWarn    Severity = "warn"
	SeverityInfo    Severity = "info"
)

// ConstraintKind distinguishes the three constraint shapes a design carries.
type ConstraintKind string

const (
	ConstraintBound     ConstraintKind = "bound"
	ConstraintTolerance ConstraintKind = "tolerance"
	ConstraintInterface ConstraintKind = "interface"
)

// Constraint is a typed restriction on one parameter. Bound uses Min/Max,
// tolerance uses Nominal/PlusMinus, interface names the mating standard.
type Constraint struct {
	Kind      ConstraintKind `json:"kind"`
	Parameter string         `json:"parameter"`
	Min       *float64       `json:"min,omitempty"`
	Max       *float64       `json:"max,omitempty"`
	Nominal   float64        `json:"nominal,omitempty"`
	PlusMinus float64        `json:"plusMinus,omitempty"`
	Interface string         `json:"interface,omitempty"`
	Severity  Severity       `json:"severity"`
	Note      string         `json:"note,omitempty"`
}

// Objective is one optimisation goal, e.g. minimize mass.
type Objective struct {
	Metric    string  `json:"metric"`
	Direction string  `json:"direction"` // "minimize" or "maximize"
	Weight    float64 `json:"weight,omitempty"`
}

// Acceptance holds the thresholds a design must meet. A zero value means
// "no threshold". Extra carries thresholds the core does not interpret.
type Acceptance struct {
	MaxMassG        float64            `json:"maxMassG,omitempty"`
	MinSafetyFactor float64            `json:"minSafetyFactor,omitempty"`
	Extra           map[string]float64 `json:"extra,omitempty"`
}

// DesignIntent is the authoritative description of what is to be built. The
// compiler never mutates one in place; it returns new values (see Apply).
type DesignIntent struct {
	ID          string       `json:"id"`
	Revision    int          `json:"revision"`
	PartClass   string       `json:"partClass"`
	Profile     string       `json:"profile,omitempty"`
	Materials   []string     `json:"materials"`
	Parameters  Params       `json:"parameters"`
	Constraints []Constraint `json:"constraints,omitempty"`
	Objectives  []Objective  `json:"objectives,omitempty"`
	Acceptance  Acceptance   `json:"acceptance"`
}

// NewDesignIntent returns revision 1 of an empty design of the given class
// with a fresh identifier and the default material.
func NewDesignIntent(partClass string) DesignIntent {
	return DesignIntent{
		ID:         uuid.NewString(),
		Revision:   1,
		PartClass:  partClass,
		Materials:  []string{materials.Default},
		Parameters: Params{},
	}
}

// PrimaryMaterial returns the first listed material, or the default.
func (d DesignIntent) PrimaryMaterial() string {
	if len(d.Materials) > 0 && d.Materials[0] != "" {
		return d.Materials[0]
	}
	if s := d.Parameters.String(KeyMaterial, ""); s != "" {
		return s
	}
	return materials.Default
}

// Clone returns a deep copy.
func (d DesignIntent) Clone() DesignIntent {
	out := d
	out.Materials = append([]string(nil), d.Materials...)
	out.Parameters = d.Parameters.Clone()
	out.Constraints = make([]Constraint, len(d.Constraints))
	for i, c := range d.Constraints {
		if c.Min != nil {
			v := *c.Min
			c.Min = &v
		}
		if c.Max != nil {
			v := *c.Max
			c.Max = &v
		}
		out.Constraints[i] = c
	}
	out.Objectives = append([]Objective(nil), d.Objectives...)
	if d.Acceptance.Extra != nil {
		out.Acceptance.Extra = make(map[string]float64, len(d.Acceptance.Extra))
		for k, v := range d.Acceptance.Extra {
			out.Acceptance.Extra[k] = v
		}
	}
	return out
}

// Action tells the caller which downstream stage a follow-up command should
// re-invoke.
type Action string

const (
	ActionNone               Action = "none"
	ActionSolve              Action = "solve"
	ActionSimulate           Action = "simulate"
	ActionRegenerateVariants Action = "regenerate_variants"
)

// Delta is a partial change to a DesignIntent resolved from a follow-up
// command.
type Delta struct {
	Patch    Params `json:"patch,omitempty"`
	Material string `json:"material,omitempty"`
	Action   Action `json:"action"`
	// Class is the component a solve asks for ("which bolt"), Bolt or
	// Plate; empty means the design's own shape decides.
	Class  Primitive `json:"class,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

// IsEmpty reports whether applying d would change nothing.
func (d Delta) IsEmpty() bool {
	return len(d.Patch) == 0 && d.Material == ""
}

// Apply returns a new intent with delta applied and the revision bumped. The
// receiver is left untouched.
func (d DesignIntent) Apply(delta Delta) DesignIntent {
	out := d.Clone()
	out.Parameters = out.Parameters.Merge(delta.Patch)
	if delta.Material != "" {
		rest := make([]string, 0, len(out.Materials))
		for _, m := range out.Materials {
			if m != delta.Material {
				rest = append(rest, m)
			}
		}
		out.Materials = append([]string{delta.Material}, rest...)
		out.Parameters.SetString(KeyMaterial, delta.Material)
	}
	out.Revision++
	return out
}
