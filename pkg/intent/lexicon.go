package intent

import (
	"regexp"
	"sort"
	"strings"

	"github.com/chazu/partforge/pkg/materials"
)

// shapeEntry maps a phrase to a shape family. Higher priority wins when the
// text mentions several shapes.
type shapeEntry struct {
	phrase    string
	primitive Primitive
	priority  int
}

// shapeLexicon is sorted at init so multi-word phrases are checked first;
// within a word count the declaration order is kept.
var shapeLexicon = sortByWords([]shapeEntry{
	{"nema motor mount", MotorMount, 10},
	{"motor mount", MotorMount, 9},
	{"stepper mount", MotorMount, 9},
	{"motor plate", MotorMount, 9},
	{"i beam", IBeam, 8},
	{"h beam", IBeam, 8},
	{"t beam", TBeam, 8},
	{"t slot", TBeam, 7},
	{"c channel", CChannel, 8},
	{"u channel", CChannel, 8},
	{"l bracket", Bracket, 8},
	{"angle bracket", Bracket, 8},
	{"corner bracket", Bracket, 8},
	{"mounting bracket", Bracket, 7},
	{"bent pipe", BentPipe, 8},
	{"pipe elbow", BentPipe, 8},
	{"spur gear", Gear, 8},
	{"helical gear", Gear, 8},
	{"hex nut", Nut, 8},
	{"lock nut", Nut, 8},
	{"threaded rod", Stud, 8},
	{"base plate", Plate, 5},
	{"mounting plate", Plate, 5},
	{"project box", Enclosure, 7},
	{"electronics box", Enclosure, 7},
	{"flower pot", Vase, 6},
	{"bracket", Bracket, 6},
	{"angle", Bracket, 3},
	{"beam", IBeam, 5},
	{"girder", IBeam, 6},
	{"channel", CChannel, 5},
	{"gear", Gear, 7},
	{"cog", Gear, 6},
	{"sprocket", Gear, 6},
	{"bolt", Bolt, 7},
	{"screw", Bolt, 7},
	{"nut", Nut, 7},
	{"stud", Stud, 7},
	{"washer", Washer, 7},
	{"spacer", Spacer, 7},
	{"standoff", Spacer, 7},
	{"bushing", Spacer, 6},
	{"shaft", Shaft, 6},
	{"axle", Shaft, 6},
	{"rod", Shaft, 5},
	{"pin", Shaft, 4},
	{"flange", Flange, 7},
	{"pulley", Pulley, 7},
	{"knob", Knob, 7},
	{"handle", Knob, 4},
	{"enclosure", Enclosure, 7},
	{"housing", Enclosure, 6},
	{"case", Enclosure, 5},
	{"pipe", Pipe, 6},
	{"tube", Tube, 6},
	{"sleeve", Tube, 5},
	{"elbow", BentPipe, 6},
	{"vase", Vase, 6},
	{"bottle", Vase, 5},
	{"bowl", Bowl, 6},
	{"cup", Bowl, 5},
	{"ring", Ring, 6},
	{"band", Ring, 4},
	{"torus", Torus, 6},
	{"donut", Torus, 6},
	{"doughnut", Torus, 6},
	{"o ring", Torus, 8},
	{"cone", Cone, 6},
	{"funnel", Cone, 5},
	{"sphere", Sphere, 6},
	{"ball", Sphere, 5},
	{"dome", Dome, 6},
	{"hemisphere", Dome, 6},
	{"wedge", Wedge, 6},
	{"ramp", Wedge, 5},
	{"shim", Wedge, 4},
	{"prism", Prism, 6},
	{"hexagon", Prism, 5},
	{"pyramid", Pyramid, 6},
	{"capsule", Capsule, 6},
	{"pill", Capsule, 5},
	{"cylinder", Cylinder, 5},
	{"puck", Cylinder, 4},
	{"disc", Cylinder, 4},
	{"disk", Cylinder, 4},
	{"plate", Plate, 4},
	{"panel", Plate, 3},
	{"sheet", Plate, 3},
	{"cube", Cube, 4},
	{"box", Box, 3},
	{"block", Box, 2},
	{"brick", Box, 2},
	{"part", Box, 1},
})

type modifierEntry struct {
	phrase   string
	modifier Modifier
}

var modifierLexicon = sortByWords([]modifierEntry{
	{"with fillets", Rounded},
	{"rounded edges", Rounded},
	{"hollow", Hollow},
	{"shelled", Hollow},
	{"solid", Solid},
	{"rounded", Rounded},
	{"filleted", Rounded},
	{"fillet", Rounded},
	{"chamfered", Chamfered},
	{"chamfer", Chamfered},
	{"beveled", Chamfered},
	{"bevelled", Chamfered},
	{"threaded", Threaded},
	{"tapped", Threaded},
	{"knurled", Knurled},
	{"slotted", Slotted},
	{"tapered", Tapered},
	{"helical", Helical},
	{"twisted", Helical},
	{"reinforced", Reinforced},
	{"ribbed", Reinforced},
	{"gusseted", Reinforced},
})

// SizeClass is the dimension category a size adjective scales.
type SizeClass string

const (
	SizeOverall   SizeClass = "overall"
	SizeThickness SizeClass = "thickness"
	SizeLength    SizeClass = "length"
	SizeWidth     SizeClass = "width"
	SizeHeight    SizeClass = "height"
)

type sizeEntry struct {
	phrase     string
	multiplier float64
	class      SizeClass
	category   string
}

var sizeLexicon = sortByWords([]sizeEntry{
	{"extra large", 2.0, SizeOverall, "extra-large"},
	{"heavy duty", 1.5, SizeThickness, ""},
	{"huge", 2.0, SizeOverall, "extra-large"},
	{"giant", 2.5, SizeOverall, "extra-large"},
	{"large", 1.5, SizeOverall, "large"},
	{"big", 1.5, SizeOverall, "large"},
	{"medium", 1.0, SizeOverall, "medium"},
	{"small", 0.6, SizeOverall, "small"},
	{"little", 0.6, SizeOverall, "small"},
	{"mini", 0.5, SizeOverall, "small"},
	{"miniature", 0.4, SizeOverall, "tiny"},
	{"tiny", 0.4, SizeOverall, "tiny"},
	{"compact", 0.75, SizeOverall, "small"},
	{"thick", 1.5, SizeThickness, ""},
	{"chunky", 1.5, SizeThickness, ""},
	{"thin", 0.6, SizeThickness, ""},
	{"slim", 0.7, SizeThickness, ""},
	{"long", 1.5, SizeLength, ""},
	{"short", 0.6, SizeLength, ""},
	{"wide", 1.5, SizeWidth, ""},
	{"narrow", 0.6, SizeWidth, ""},
	{"tall", 1.5, SizeHeight, ""},
})

// sizeClassKeys lists the dimensions each size class scales.
var sizeClassKeys = map[SizeClass][]string{
	SizeOverall:   {KeyLength, KeyWidth, KeyHeight, KeyDiameter},
	SizeThickness: {KeyThickness, KeyWallThickness},
	SizeLength:    {KeyLength},
	SizeWidth:     {KeyWidth},
	SizeHeight:    {KeyHeight},
}

type contextField int

const (
	ctxPurpose contextField = iota
	ctxEnvironment
	ctxAesthetic
	ctxConstraint
)

type contextEntry struct {
	phrase string
	field  contextField
	tag    string
}

var contextLexicon = sortByWords([]contextEntry{
	{"heat sink", ctxPurpose, "thermal management"},
	{"high temperature", ctxEnvironment, "high temperature"},
	{"food safe", ctxEnvironment, "food contact"},
	{"low cost", ctxConstraint, "low cost"},
	{"heavy duty", ctxConstraint, "high strength"},
	{"3d print", ctxConstraint, "additive"},
	{"3d printed", ctxConstraint, "additive"},
	{"mount", ctxPurpose, "mounting"},
	{"mounting", ctxPurpose, "mounting"},
	{"support", ctxPurpose, "structural support"},
	{"hold", ctxPurpose, "holding"},
	{"holder", ctxPurpose, "holding"},
	{"connect", ctxPurpose, "connection"},
	{"connector", ctxPurpose, "connection"},
	{"fasten", ctxPurpose, "fastening"},
	{"enclose", ctxPurpose, "housing"},
	{"protect", ctxPurpose, "protection"},
	{"transmit", ctxPurpose, "power transmission"},
	{"drive", ctxPurpose, "power transmission"},
	{"decorative", ctxPurpose, "decorative"},
	{"jewelry", ctxPurpose, "decorative"},
	{"outdoor", ctxEnvironment, "outdoor"},
	{"marine", ctxEnvironment, "marine"},
	{"underwater", ctxEnvironment, "marine"},
	{"indoor", ctxEnvironment, "indoor"},
	{"automotive", ctxEnvironment, "automotive"},
	{"aerospace", ctxEnvironment, "aerospace"},
	{"sleek", ctxAesthetic, "sleek"},
	{"modern", ctxAesthetic, "modern"},
	{"minimal", ctxAesthetic, "minimal"},
	{"minimalist", ctxAesthetic, "minimal"},
	{"industrial", ctxAesthetic, "industrial"},
	{"organic", ctxAesthetic, "organic"},
	{"smooth", ctxAesthetic, "smooth"},
	{"elegant", ctxAesthetic, "elegant"},
	{"lightweight", ctxConstraint, "lightweight"},
	{"light", ctxConstraint, "lightweight"},
	{"cheap", ctxConstraint, "low cost"},
	{"inexpensive", ctxConstraint, "low cost"},
	{"strong", ctxConstraint, "high strength"},
	{"rigid", ctxConstraint, "high stiffness"},
	{"stiff", ctxConstraint, "high stiffness"},
	{"waterproof", ctxConstraint, "sealed"},
	{"sealed", ctxConstraint, "sealed"},
	{"printable", ctxConstraint, "additive"},
	{"machinable", ctxConstraint, "subtractive"},
})

type materialEntry struct {
	phrase string
	name   string
}

// materialLexicon is built from the material library: canonical names and
// aliases, longest phrase first so "stainless steel" beats "steel".
var materialLexicon = func() []materialEntry {
	var out []materialEntry
	for _, m := range materials.All() {
		out = append(out, materialEntry{phrase: normalizePhrase(m.Name), name: m.Name})
		for _, a := range m.Aliases {
			out = append(out, materialEntry{phrase: normalizePhrase(a), name: m.Name})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		wi, wj := wordCount(out[i].phrase), wordCount(out[j].phrase)
		if wi != wj {
			return wi > wj
		}
		return len(out[i].phrase) > len(out[j].phrase)
	})
	return out
}()

type phrased interface {
	shapeEntry | modifierEntry | sizeEntry | contextEntry
}

func phraseOf[E phrased](e E) string {
	switch x := any(e).(type) {
	case shapeEntry:
		return x.phrase
	case modifierEntry:
		return x.phrase
	case sizeEntry:
		return x.phrase
	case contextEntry:
		return x.phrase
	}
	return ""
}

// sortByWords orders entries by descending word count, keeping declaration
// order within a count.
func sortByWords[E phrased](entries []E) []E {
	sort.SliceStable(entries, func(i, j int) bool {
		return wordCount(phraseOf(entries[i])) > wordCount(phraseOf(entries[j]))
	})
	return entries
}

func wordCount(s string) int { return len(strings.Fields(s)) }

var tokenRE = regexp.MustCompile(`[a-z0-9]+(?:\.[0-9]+)?`)

// tokenize lowercases s and splits it into alphanumeric words.
func tokenize(s string) []string {
	return tokenRE.FindAllString(strings.ToLower(s), -1)
}

// normalizePhrase runs a lexicon phrase through the same tokenizer as the
// input so "i-beam" and "I beam" compare equal.
func normalizePhrase(s string) string {
	return strings.Join(tokenize(s), " ")
}

// haystack is the tokenized text padded for whole-word phrase search.
type haystack string

func newHaystack(text string) haystack {
	return haystack(" " + strings.Join(tokenize(text), " ") + " ")
}

// contains reports whether phrase occurs as whole words, allowing a plural
// "s" on the last word.
func (h haystack) contains(phrase string) bool {
	p := normalizePhrase(phrase)
	if p == "" {
		return false
	}
	return strings.Contains(string(h), " "+p+" ") || strings.Contains(string(h), " "+p+"s ")
}
