// Package solver searches a standards catalog, or a stepped dimension, for
// the smallest component that reaches a target safety factor.
//
// The iteration log is part of the result: it is the audit trail for the
// recommendation and is deterministic for identical inputs.
package solver

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/partforge/pkg/materials"
	"github.com/chazu/partforge/pkg/sim"
	"github.com/chazu/partforge/pkg/standards"
)

// None is the designation reported when nothing in the search range meets
// the target.
const None = "None"

// Component classes.
const (
	ClassBolt  = "bolt"
	ClassPlate = "plate"
)

// Search geometry.
const (
	// BoltLeverArmMM is the distance from the clamp face to the load line
	// of a bolt loaded in shear-bending.
	BoltLeverArmMM = 20.0
	// PlateLengthMM and PlateWidthMM size the cantilever a plate search
	// varies the thickness of.
	PlateLengthMM       = 100.0
	PlateWidthMM        = 50.0
	MinPlateThicknessMM = 1.0
	MaxPlateThicknessMM = 25.0
	PlateStepMM         = 1.0

	DefaultTargetSF = 1.5
)

// Request describes one search.
type Request struct {
	Class    string  `json:"class"`
	LoadN    float64 `json:"loadN"`
	Material string  `json:"material"`
	TargetSF float64 `json:"targetSf"`
}

// Result is the outcome of a search. Iterations is the 1-based index of the
// selected candidate, or the number of candidates tried when none passed.
type Result struct {
	Class        string   `json:"class"`
	Designation  string   `json:"designation"`
	Found        bool     `json:"found"`
	Material     string   `json:"material"`
	TargetSF     float64  `json:"targetSf"`
	SafetyFactor float64  `json:"safetyFactor"`
	MassG        float64  `json:"massG"`
	Iterations   int      `json:"iterations"`
	Log          []string `json:"log"`
	Notes        []string `json:"notes,omitempty"`
}

var classes = map[string]string{
	ClassBolt:   ClassBolt,
	"screw":     ClassBolt,
	"fastener":  ClassBolt,
	ClassPlate:  ClassPlate,
	"bracket":   ClassPlate,
	"l_bracket": ClassPlate,
}

// Supports reports whether Solve has a search for class.
func Supports(class string) bool {
	_, ok := classes[strings.ToLower(strings.TrimSpace(class))]
	return ok
}

// Solve dispatches on the component class. "bracket" searches like a plate.
// An unsupported class yields a None result explaining why.
func Solve(req Request) Result {
	switch classes[strings.ToLower(strings.TrimSpace(req.Class))] {
	case ClassBolt:
		return SolveBolt(req.LoadN, req.Material, req.TargetSF)
	case ClassPlate:
		return SolvePlate(req.LoadN, req.Material, req.TargetSF)
	}
	return Result{
		Class:       req.Class,
		Designation: None,
		TargetSF:    target(req.TargetSF),
		Log:         []string{fmt.Sprintf("unsupported component class %q", req.Class)},
	}
}

func target(sf float64) float64 {
	if sf <= 0 {
		return DefaultTargetSF
	}
	return sf
}

func newResult(class, material string, targetSF float64) (Result, materials.Material) {
	m, found := materials.Resolve(material)
	r := Result{
		Class:       class,
		Designation: None,
		Material:    m.Name,
		TargetSF:    target(targetSF),
	}
	if !found && material != "" {
		r.Notes = append(r.Notes, fmt.Sprintf("unknown material %q; %s assumed", material, m.Name))
	}
	return r, m
}

// candidate records one tested size and reports whether it passed.
func (r *Result) candidate(name string, res sim.Result) bool {
	r.Iterations++
	pass := res.SafetyFactor >= r.TargetSF
	op := "<"
	if pass {
		op = ">="
	}
	line := fmt.Sprintf("%d. %s: SF %.2f %s %.2f, mass %.1f g", r.Iterations, name, res.SafetyFactor, op, r.TargetSF, res.MassG)
	if pass {
		line += " -> selected"
		r.Designation = name
		r.Found = true
		r.SafetyFactor = res.SafetyFactor
		r.MassG = res.MassG
	}
	r.Log = append(r.Log, line)
	return pass
}

func (r *Result) exhausted() {
	r.Log = append(r.Log, fmt.Sprintf("no candidate reached SF %.2f; result %s", r.TargetSF, None))
}

// SolveBolt walks the metric thread table in ascending diameter. Each bolt
// is a cantilever of square section with side equal to the thread minor
// diameter, loaded at BoltLeverArmMM.
func SolveBolt(loadN float64, material string, targetSF float64) Result {
	r, m := newResult(ClassBolt, material, targetSF)
	for _, t := range standards.Threads() {
		s := t.MinorDia
		res := sim.Run(sim.Input{
			LengthMM:    BoltLeverArmMM,
			WidthMM:     s,
			ThicknessMM: s,
			LoadN:       loadN,
			// mass of a shank twice the lever arm long
			VolumeMM3: math.Pi / 4 * t.MajorDia * t.MajorDia * 2 * BoltLeverArmMM,
		}, m)
		if r.candidate(t.Designation, res) {
			return r
		}
	}
	r.exhausted()
	return r
}

// SolvePlate steps the thickness of a PlateLengthMM x PlateWidthMM
// cantilever from MinPlateThicknessMM to MaxPlateThicknessMM.
func SolvePlate(loadN float64, material string, targetSF float64) Result {
	r, m := newResult(ClassPlate, material, targetSF)
	steps := int(math.Round((MaxPlateThicknessMM-MinPlateThicknessMM)/PlateStepMM)) + 1
	for i := 0; i < steps; i++ {
		t := MinPlateThicknessMM + float64(i)*PlateStepMM
		res := sim.Run(sim.Input{
			LengthMM:    PlateLengthMM,
			WidthMM:     PlateWidthMM,
			ThicknessMM: t,
			LoadN:       loadN,
		}, m)
		if r.candidate(fmt.Sprintf("%gmm", t), res) {
			return r
		}
	}
	r.exhausted()
	return r
}
