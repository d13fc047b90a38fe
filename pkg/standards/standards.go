// Package standards holds static catalogs of industry component designations
// (ISO metric threads, deep-groove ball bearings, NEMA stepper motor mounts)
// and lookup helpers. Every lookup is tolerant of casing and spacing and
// reports a miss with ok=false; callers are expected to fall back to a
// numeric approximation rather than fail.
package standards

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// MinorDiameterRatio approximates a metric thread's minor diameter from its
// major diameter when the designation is not in the catalog.
const MinorDiameterRatio = 0.82

// ---------------------------------------------------------------------------
// Threads
// ---------------------------------------------------------------------------

// ThreadSpec describes an ISO metric coarse thread and the hex hardware that
// goes with it. All lengths in mm.
type ThreadSpec struct {
	Designation     string  `json:"designation"`
	MajorDia        float64 `json:"majorDia"`
	Pitch           float64 `json:"pitch"`
	MinorDia        float64 `json:"minorDia"`
	TapDrill        float64 `json:"tapDrill"`
	ClearanceHole   float64 `json:"clearanceHole"` // medium fit
	HeadAcrossFlats float64 `json:"headAcrossFlats"`
	HeadHeight      float64 `json:"headHeight"`
	NutHeight       float64 `json:"nutHeight"`
}

// StressArea returns the tensile stress area in mm^2 (ISO 898-1).
func (t ThreadSpec) StressArea() float64 {
	d := t.MajorDia - 0.9382*t.Pitch
	return math.Pi / 4 * d * d
}

func thread(d, p, clearance, af, head, nut float64) ThreadSpec {
	return ThreadSpec{
		Designation:     "M" + strconv.FormatFloat(d, 'f', -1, 64),
		MajorDia:        d,
		Pitch:           p,
		MinorDia:        math.Round((d-1.22687*p)*1000) / 1000,
		TapDrill:        math.Round((d-p)*100) / 100,
		ClearanceHole:   clearance,
		HeadAcrossFlats: af,
		HeadHeight:      head,
		NutHeight:       nut,
	}
}

// threadTable is kept in ascending major-diameter order.
var threadTable = []ThreadSpec{
	thread(2, 0.4, 2.4, 4, 1.4, 1.6),
	thread(2.5, 0.45, 2.9, 5, 1.7, 2),
	thread(3, 0.5, 3.4, 5.5, 2, 2.4),
	thread(4, 0.7, 4.5, 7, 2.8, 3.2),
	thread(5, 0.8, 5.5, 8, 3.5, 4.7),
	thread(6, 1.0, 6.6, 10, 4, 5.2),
	thread(8, 1.25, 9, 13, 5.3, 6.8),
	thread(10, 1.5, 11, 16, 6.4, 8.4),
	thread(12, 1.75, 13.5, 18, 7.5, 10.8),
	thread(14, 2.0, 15.5, 21, 8.8, 12.8),
	thread(16, 2.0, 17.5, 24, 10, 14.8),
	thread(20, 2.5, 22, 30, 12.5, 18),
	thread(24, 3.0, 26, 36, 15, 21.5),
	thread(30, 3.5, 33, 46, 18.7, 25.6),
	thread(36, 4.0, 39, 55, 22.5, 31),
}

var threadIndex = func() map[string]ThreadSpec {
	m := make(map[string]ThreadSpec, len(threadTable))
	for _, t := range threadTable {
		m[t.Designation] = t
	}
	return m
}()

// threadPattern accepts "M10", "m10", "M 10", "M10x1.5", "10".
var threadPattern = regexp.MustCompile(`^M?\s*(\d+(?:\.\d+)?)(?:\s*X\s*\d+(?:\.\d+)?)?$`)

// NormalizeThread canonicalises a thread designation to "M<d>". It returns
// "" when the string is not a metric thread designation at all.
func NormalizeThread(designation string) string {
	s := strings.ToUpper(strings.TrimSpace(designation))
	m := threadPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	d, err := strconv.ParseFloat(m[1], 64)
	if err != nil || d <= 0 {
		return ""
	}
	return "M" + strconv.FormatFloat(d, 'f', -1, 64)
}

// Thread looks a thread up by designation.
func Thread(designation string) (ThreadSpec, bool) {
	t, ok := threadIndex[NormalizeThread(designation)]
	return t, ok
}

// NearestThread returns the catalog thread whose major diameter is closest
// to majorDia. Ties resolve to the larger size.
func NearestThread(majorDia float64) ThreadSpec {
	best := threadTable[0]
	bestDelta := math.Inf(1)
	for _, t := range threadTable {
		delta := math.Abs(t.MajorDia - majorDia)
		if delta <= bestDelta {
			best, bestDelta = t, delta
		}
	}
	return best
}

// Threads returns a copy of the thread catalog in ascending major-diameter
// order.
func Threads() []ThreadSpec {
	out := make([]ThreadSpec, len(threadTable))
	copy(out, threadTable)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MajorDia < out[j].MajorDia })
	return out
}

// ApproxThread synthesises a thread spec for a diameter that is not in the
// catalog, using the minor-diameter ratio and proportional hardware sizes.
func ApproxThread(majorDia float64) ThreadSpec {
	if t, ok := Thread(strconv.FormatFloat(majorDia, 'f', -1, 64)); ok {
		return t
	}
	return ThreadSpec{
		Designation:     "M" + strconv.FormatFloat(majorDia, 'f', -1, 64),
		MajorDia:        majorDia,
		Pitch:           NearestThread(majorDia).Pitch,
		MinorDia:        majorDia * MinorDiameterRatio,
		TapDrill:        majorDia * 0.85,
		ClearanceHole:   majorDia * 1.1,
		HeadAcrossFlats: majorDia * 1.6,
		HeadHeight:      majorDia * 0.65,
		NutHeight:       majorDia * 0.85,
	}
}

// ---------------------------------------------------------------------------
// Bearings
// ---------------------------------------------------------------------------

// BearingSpec describes a deep-groove ball bearing.
type BearingSpec struct {
	Designation   string  `json:"designation"`
	Bore          float64 `json:"bore"`
	OuterDia      float64 `json:"outerDia"`
	Width         float64 `json:"width"`
	DynamicLoadKN float64 `json:"dynamicLoadKN"`
}

var bearingTable = map[string]BearingSpec{
	"623":  {Designation: "623", Bore: 3, OuterDia: 10, Width: 4, DynamicLoadKN: 0.63},
	"625":  {Designation: "625", Bore: 5, OuterDia: 16, Width: 5, DynamicLoadKN: 1.76},
	"688":  {Designation: "688", Bore: 8, OuterDia: 16, Width: 5, DynamicLoadKN: 1.33},
	"608":  {Designation: "608", Bore: 8, OuterDia: 22, Width: 7, DynamicLoadKN: 3.45},
	"6800": {Designation: "6800", Bore: 10, OuterDia: 19, Width: 5, DynamicLoadKN: 1.72},
	"6000": {Designation: "6000", Bore: 10, OuterDia: 26, Width: 8, DynamicLoadKN: 4.75},
	"6001": {Designation: "6001", Bore: 12, OuterDia: 28, Width: 8, DynamicLoadKN: 5.4},
	"6002": {Designation: "6002", Bore: 15, OuterDia: 32, Width: 9, DynamicLoadKN: 5.85},
	"6200": {Designation: "6200", Bore: 10, OuterDia: 30, Width: 9, DynamicLoadKN: 5.4},
	"6201": {Designation: "6201", Bore: 12, OuterDia: 32, Width: 10, DynamicLoadKN: 7.28},
	"6202": {Designation: "6202", Bore: 15, OuterDia: 35, Width: 11, DynamicLoadKN: 8.06},
	"6203": {Designation: "6203", Bore: 17, OuterDia: 40, Width: 12, DynamicLoadKN: 9.95},
	"6204": {Designation: "6204", Bore: 20, OuterDia: 47, Width: 14, DynamicLoadKN: 13.5},
	"6205": {Designation: "6205", Bore: 25, OuterDia: 52, Width: 15, DynamicLoadKN: 14.8},
}

var bearingSuffix = regexp.MustCompile(`(?:-?2RS1?|-?2Z|ZZ|-?RS|-?Z)$`)

// NormalizeBearing strips seal/shield suffixes ("608ZZ", "6204-2RS") and
// whitespace.
func NormalizeBearing(designation string) string {
	s := strings.ToUpper(strings.Join(strings.Fields(designation), ""))
	s = strings.TrimPrefix(s, "BEARING")
	return bearingSuffix.ReplaceAllString(s, "")
}

// Bearing looks a bearing up by designation.
func Bearing(designation string) (BearingSpec, bool) {
	b, ok := bearingTable[NormalizeBearing(designation)]
	return b, ok
}

// NearestBearing returns the smallest catalog bearing whose bore is at least
// shaftDia. ok is false when the shaft is larger than every catalog bore.
func NearestBearing(shaftDia float64) (BearingSpec, bool) {
	var best BearingSpec
	found := false
	for _, b := range bearingTable {
		if b.Bore < shaftDia {
			continue
		}
		if !found || b.Bore < best.Bore || (b.Bore == best.Bore && b.OuterDia < best.OuterDia) {
			best, found = b, true
		}
	}
	return best, found
}

// ---------------------------------------------------------------------------
// Motor mounts
// ---------------------------------------------------------------------------

// MotorMountSpec is the front-face footprint of a NEMA stepper motor.
type MotorMountSpec struct {
	Designation string  `json:"designation"`
	FrameSize   float64 `json:"frameSize"`   // square face, mm
	BoltSpacing float64 `json:"boltSpacing"` // hole centre-to-centre, mm
	PilotDia    float64 `json:"pilotDia"`    // centring boss diameter, mm
	ScrewThread string  `json:"screwThread"` // mounting screw designation
	HoleCount   int     `json:"holeCount"`
}

var motorTable = map[string]MotorMountSpec{
	"NEMA8":  {Designation: "NEMA8", FrameSize: 20.3, BoltSpacing: 15.4, PilotDia: 15, ScrewThread: "M2", HoleCount: 4},
	"NEMA11": {Designation: "NEMA11", FrameSize: 28.2, BoltSpacing: 23, PilotDia: 22, ScrewThread: "M2.5", HoleCount: 4},
	"NEMA14": {Designation: "NEMA14", FrameSize: 35.2, BoltSpacing: 26, PilotDia: 22, ScrewThread: "M3", HoleCount: 4},
	"NEMA17": {Designation: "NEMA17", FrameSize: 42.3, BoltSpacing: 31, PilotDia: 22, ScrewThread: "M3", HoleCount: 4},
	"NEMA23": {Designation: "NEMA23", FrameSize: 56.4, BoltSpacing: 47.14, PilotDia: 38.1, ScrewThread: "M5", HoleCount: 4},
	"NEMA34": {Designation: "NEMA34", FrameSize: 86, BoltSpacing: 69.6, PilotDia: 73, ScrewThread: "M6", HoleCount: 4},
}

var motorPattern = regexp.MustCompile(`^(?:NEMA)?[\s\-_]*(\d{1,2})$`)

// NormalizeMotorMount canonicalises "NEMA 17", "Nema17", "nema-17" and "17"
// to "NEMA17". It returns "" for anything else.
func NormalizeMotorMount(designation string) string {
	s := strings.ToUpper(strings.TrimSpace(designation))
	m := motorPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return "NEMA" + strings.TrimLeft(m[1], "0")
}

// MotorMount looks a NEMA footprint up by designation.
func MotorMount(designation string) (MotorMountSpec, bool) {
	m, ok := motorTable[NormalizeMotorMount(designation)]
	return m, ok
}

// BoltCircleDiameter returns the diameter of the circle through the four
// corner holes of a motor mount.
func (m MotorMountSpec) BoltCircleDiameter() float64 {
	return m.BoltSpacing * math.Sqrt2
}
