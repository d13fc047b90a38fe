package intent

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// scaleRule scales the current value of a group of parameters when a
// comparative word appears in a follow-up ("thicker", "lighter").
type scaleRule struct {
	words  []string
	keys   []string
	factor float64
}

var (
	thicknessKeys = []string{KeyThickness, KeyWallThickness}
	sizeKeys      = []string{KeyLength, KeyWidth, KeyHeight, KeyDiameter}
)

var scaleRules = []scaleRule{
	{[]string{"thicker", "beefier"}, thicknessKeys, 1.25},
	{[]string{"thinner"}, thicknessKeys, 0.8},
	{[]string{"stronger", "stiffer", "sturdier"}, thicknessKeys, 1.25},
	{[]string{"weaker"}, thicknessKeys, 0.8},
	{[]string{"lighter"}, thicknessKeys, 0.85},
	{[]string{"heavier"}, thicknessKeys, 1.15},
	{[]string{"bigger", "larger"}, sizeKeys, 1.25},
	{[]string{"smaller"}, sizeKeys, 0.8},
	{[]string{"longer"}, []string{KeyLength}, 1.25},
	{[]string{"shorter"}, []string{KeyLength}, 0.8},
	{[]string{"wider"}, []string{KeyWidth}, 1.25},
	{[]string{"narrower"}, []string{KeyWidth}, 0.8},
	{[]string{"taller"}, []string{KeyHeight}, 1.25},
}

var (
	setParamRE    = regexp.MustCompile(`\bset\s+(?:the\s+)?([a-z][a-z _-]*?)\s+(?:to|=)\s*` + numRE + unitRE)
	solveWords    = []string{"solve", "find", "recommend", "what size", "which size", "which bolt", "what bolt", "survive", "survives"}
	variantWords  = []string{"alternative", "alternatives", "variant", "variants", "option", "options", "compare", "trade off", "tradeoff", "tradeoffs"}
	materialVerbs = []string{"change", "switch", "use", "swap", "make it", "in", "out of", "try"}
	boltWords     = []string{"bolt", "screw", "fastener"}
	plateWords    = []string{"plate", "bracket"}
)

// ResolveCommand resolves a natural-language follow-up against the current
// intent into a partial patch and the stage to re-run. Comparative words are
// resolved to absolute values using current, so the patch is self-contained.
// Unrecognised text yields an empty delta with ActionNone.
func ResolveCommand(text string, current DesignIntent) Delta {
	hay := newHaystack(text)
	work := []byte(strings.ToLower(text))
	d := Delta{Patch: Params{}, Action: ActionNone}
	var reasons []string

	if load := parseLoad(work); load > 0 {
		d.Patch.SetNumber(KeyLoad, round2(load))
		reasons = append(reasons, fmt.Sprintf("load %gN", round2(load)))
	}

	for _, m := range setParamRE.FindAllSubmatch(work, -1) {
		key := CanonicalKey(string(m[1]))
		v, err := strconv.ParseFloat(string(m[2]), 64)
		if key == "" || err != nil {
			continue
		}
		if key != KeyLoad {
			v = toMM(v, string(m[3]))
		}
		d.Patch.SetNumber(key, v)
		reasons = append(reasons, fmt.Sprintf("%s=%g", key, v))
	}

	for _, rule := range scaleRules {
		if !containsAny(hay, rule.words) {
			continue
		}
		for _, k := range rule.keys {
			if d.Patch.Has(k) || !current.Parameters.HasNumber(k) {
				continue
			}
			v := round2(current.Parameters.Number(k, 0) * rule.factor)
			d.Patch.SetNumber(k, v)
			reasons = append(reasons, fmt.Sprintf("%s x%g", k, rule.factor))
		}
	}
	if d.Patch.HasNumber(KeyDiameter) {
		d.Patch.SetNumber(KeyRadius, d.Patch.Number(KeyDiameter, 0)/2)
	} else if d.Patch.HasNumber(KeyRadius) {
		d.Patch.SetNumber(KeyDiameter, 2*d.Patch.Number(KeyRadius, 0))
	}

	if containsAny(hay, materialVerbs) || hay.contains("material") {
		for _, e := range materialLexicon {
			if hay.contains(e.phrase) {
				d.Material = e.name
				reasons = append(reasons, "material "+e.name)
				break
			}
		}
	}

	switch {
	case containsAny(hay, solveWords) || d.Patch.Has(KeyLoad):
		d.Action = ActionSolve
		switch {
		case containsAny(hay, boltWords):
			d.Class = Bolt
		case containsAny(hay, plateWords):
			d.Class = Plate
		}
	case containsAny(hay, variantWords):
		d.Action = ActionRegenerateVariants
	case !d.IsEmpty():
		d.Action = ActionSimulate
	}
	if len(d.Patch) == 0 {
		d.Patch = nil
	}
	d.Reason = strings.Join(reasons, "; ")
	return d
}

func containsAny(h haystack, words []string) bool {
	for _, w := range words {
		if h.contains(w) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
