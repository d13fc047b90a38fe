package intent

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/chazu/partforge/pkg/materials"
	"github.com/chazu/partforge/pkg/standards"
)

const (
	// ConfidenceFloor is the confidence of a parse that matched nothing.
	ConfidenceFloor = 0.3
	// ConfidenceCap bounds every parse.
	ConfidenceCap = 0.95

	maxDimension = 10000.0
)

const (
	numRE  = `(\d+(?:\.\d+)?)`
	unitRE = `\s*(?:(mm|cm|inches|inch|in|m)\b)?`
	sepRE  = `\s*(?:of|is|=|:)?\s*`
)

// dimExtractor is one entry of the ordered extraction cascade. Capture
// groups map onto keys; with units set, every number is followed by a unit
// group.
type dimExtractor struct {
	keys  []string
	units bool
	re    *regexp.Regexp
}

func named(key string, patterns ...string) []dimExtractor {
	out := make([]dimExtractor, len(patterns))
	for i, p := range patterns {
		out[i] = dimExtractor{keys: []string{key}, units: true, re: regexp.MustCompile(p)}
	}
	return out
}

func counted(key string, patterns ...string) []dimExtractor {
	out := make([]dimExtractor, len(patterns))
	for i, p := range patterns {
		out[i] = dimExtractor{keys: []string{key}, re: regexp.MustCompile(p)}
	}
	return out
}

// dimExtractors run in order. A dimension set by an earlier extractor is
// never overwritten by a later one, and matched text is consumed so that a
// phrase like "wall thickness 2" cannot also feed "thickness".
var dimExtractors = concat(
	[]dimExtractor{{
		keys:  []string{KeyLength, KeyWidth, KeyHeight},
		units: true,
		re:    regexp.MustCompile(numRE + unitRE + `\s*[x×*]\s*` + numRE + unitRE + `\s*[x×*]\s*` + numRE + unitRE),
	}},
	[]dimExtractor{{
		keys:  []string{KeyLegA, KeyLegB},
		units: true,
		re:    regexp.MustCompile(`\blegs?` + sepRE + numRE + unitRE + `\s*(?:x|and|by|/)\s*` + numRE + unitRE),
	}},
	[]dimExtractor{{
		keys:  []string{KeyLength, KeyWidth},
		units: true,
		re:    regexp.MustCompile(numRE + unitRE + `\s*[x×*]\s*` + numRE + unitRE),
	}},
	named(KeyFilletRadius,
		`\bfillets?(?:\s*radius)?`+sepRE+numRE+unitRE,
		numRE+unitRE+`\s*(?:radius\s+)?(?:fillets?|rounds?)\b`),
	named(KeyChamferSize,
		`\bchamfers?`+sepRE+numRE+unitRE,
		numRE+unitRE+`\s*chamfers?\b`),
	named(KeyHoleDiameter,
		`\bholes?\s*(?:diameter|dia|size)`+sepRE+numRE+unitRE,
		numRE+`\s*(mm|cm|in)\s*(?:diameter\s+|dia\s+)?(?:through\s+|clearance\s+)?holes?\b`),
	named(KeyHoleDepth,
		`\bholes?\s*depth`+sepRE+numRE+unitRE,
		numRE+unitRE+`\s*deep\b`),
	counted(KeyHoleCount,
		`(\d+)\s*(?:x\s*)?(?:m\d+(?:\.\d+)?\s*)?(?:mounting\s+|clearance\s+|bolt\s+|through\s+|screw\s+|corner\s+)?holes?\b`,
		`\bholes?\s*[:=]\s*(\d+)`),
	named(KeyWallThickness,
		`\bwalls?(?:\s*thickness)?`+sepRE+numRE+unitRE,
		numRE+unitRE+`\s*(?:thick\s+)?walls?\b`),
	named(KeyThickness,
		`\bthickness`+sepRE+numRE+unitRE,
		numRE+unitRE+`\s*thick\b`),
	named(KeyLength,
		`\blength`+sepRE+numRE+unitRE,
		numRE+unitRE+`\s*(?:long|in length)\b`),
	named(KeyWidth,
		`\bwidth`+sepRE+numRE+unitRE,
		numRE+unitRE+`\s*(?:wide|in width)\b`),
	named(KeyHeight,
		`\bheight`+sepRE+numRE+unitRE,
		numRE+unitRE+`\s*(?:tall|high|in height)\b`),
	named(KeyInnerDiameter,
		`\b(?:inner|inside|internal)\s*(?:diameter|dia)`+sepRE+numRE+unitRE,
		`\b(?:bore|id)`+sepRE+numRE+unitRE,
		numRE+unitRE+`\s*(?:bore|id|inner diameter)\b`),
	named(KeyDiameter,
		`(?:\b(?:diameter|dia|od)|ø|⌀)`+sepRE+numRE+unitRE,
		numRE+unitRE+`\s*(?:diameter|dia|od)\b`,
		`\bd\s*=\s*`+numRE+unitRE),
	named(KeyRadius,
		`\bradius`+sepRE+numRE+unitRE,
		numRE+unitRE+`\s*radius\b`,
		`\br\s*=\s*`+numRE+unitRE),
	counted(KeyTeeth,
		`(\d+)\s*(?:teeth|tooth)\b`,
		`\bteeth`+sepRE+`(\d+)`),
	counted(KeyModule,
		`\bmodule`+sepRE+numRE,
		numRE+`\s*module\b`),
	counted(KeyRingSize,
		`\bring\s*size`+sepRE+numRE,
		`\bsize\s*`+numRE+`\s*ring\b`),
)

func concat(groups ...[]dimExtractor) []dimExtractor {
	var out []dimExtractor
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var (
	threadRE  = regexp.MustCompile(`\bm(\d+(?:\.\d+)?)(?:\s*x\s*\d+(?:\.\d+)?)?\b`)
	nemaRE    = regexp.MustCompile(`\bnema\s*[-_]?\s*(\d{1,2})\b`)
	bearingRE = regexp.MustCompile(`\b(\d{3,4}(?:-?2rs1?|zz|-?2z)?)\s*(?:ball\s+)?bearings?\b|\bbearings?\s*(\d{3,4}(?:-?2rs1?|zz|-?2z)?)\b`)

	loadUnitRE = regexp.MustCompile(numRE + `\s*(kn|kgf|kg|kilograms?|kilos?|lbf|lbs?|pounds?|newtons?|n)\b`)
	loadKeyRE  = regexp.MustCompile(`\b(?:load|force)` + sepRE + numRE)

	massLimitRE = regexp.MustCompile(`\b(?:weighs?|weighing|weight|mass)\s*(?:of\s+|is\s+)?(?:less than|under|below|at most|no more than|max(?:imum)?|<=?)?\s*` + numRE + `\s*(kg|kilograms?|g|grams?)\b` +
		`|\bmax(?:imum)?\s*(?:weight|mass)` + sepRE + numRE + `\s*(kg|kilograms?|g|grams?)\b`)
	gramsRE  = regexp.MustCompile(numRE + `\s*(?:g|grams?)\b`)
	safetyRE = regexp.MustCompile(`\b(?:safety factor|factor of safety|sf|fos)` + sepRE + `(?:of\s+|at least\s+)?` + numRE)

	quantityRE = regexp.MustCompile(`\b(?:qty|quantity)` + sepRE + `(\d+)|(\d+)\s*(?:pcs|pieces|units|copies|off)\b|\bset of (\d+)`)
	bareNumRE  = regexp.MustCompile(numRE)
)

// Parse turns free text into a ParsedIntent. It never fails: unrecognised
// input yields a default box at the confidence floor.
func Parse(text string) ParsedIntent {
	lower := strings.ToLower(text)
	hay := newHaystack(text)
	work := []byte(lower)

	p := ParsedIntent{
		Primitive:  Box,
		Dimensions: map[string]float64{},
		Explicit:   map[string]bool{},
		Context:    Context{SizeCategory: "medium", Quantity: 1},
	}

	priority := 0
	for _, e := range shapeLexicon {
		if e.priority > priority && hay.contains(e.phrase) {
			p.Primitive, priority = e.primitive, e.priority
		}
	}

	for _, e := range modifierLexicon {
		if hay.contains(e.phrase) {
			p.Modifiers = p.Modifiers.With(e.modifier)
		}
	}

	materialMatched := false
	for _, e := range materialLexicon {
		if hay.contains(e.phrase) {
			p.Material, materialMatched = e.name, true
			break
		}
	}
	if !materialMatched {
		p.Material = materials.Default
	}

	if materialMatched {
		consumeMaterial(work, p.Material)
	}

	parseContext(&p, hay)
	// mass limits before loads: "under 2kg" is a weight, not a force
	p.Acceptance = parseAcceptance(work)
	p.Context.LoadN = parseLoad(work)
	p.Context.Quantity = parseQuantity(work)

	thread, nema, bearing := parseDesignations(work)

	extractDimensions(&p, work)
	if !anyExplicit(p.Explicit, envelopeKeys) {
		extractBareNumbers(&p, work)
	}
	// a plate's third dimension is its thickness
	if p.Primitive == Plate && p.Explicit[KeyHeight] && !p.Explicit[KeyThickness] {
		p.Dimensions[KeyThickness] = p.Dimensions[KeyHeight]
		p.Explicit[KeyThickness] = true
		delete(p.Dimensions, KeyHeight)
		delete(p.Explicit, KeyHeight)
	}
	applyDefaults(&p)
	// dimension phrases are consumed by now, so "3mm thick" is not also
	// read as the adjective "thick"
	applySizeAdjectives(&p, newHaystack(string(work)))
	applyDesignations(&p, thread, nema, bearing)

	if t, m := p.Dimensions[KeyTeeth], p.Dimensions[KeyModule]; t > 0 && m > 0 && !p.Explicit[KeyDiameter] && !p.Explicit[KeyRadius] {
		p.Dimensions[KeyDiameter] = t * m
	}
	syncRadius(p.Dimensions, p.Explicit)
	collectFeatures(&p)

	conf := ConfidenceFloor + 0.06*float64(priority)
	if len(p.Explicit) > 0 {
		conf += 0.1
	}
	if materialMatched {
		conf += 0.05
	}
	p.Confidence = math.Min(ConfidenceCap, math.Max(ConfidenceFloor, conf))
	return p
}

// consume blanks a matched span so later patterns cannot reuse it.
func consume(work []byte, start, end int) {
	for i := start; i < end; i++ {
		work[i] = ' '
	}
}

// precededByLetter rejects numbers glued to a word ("m10", "nema17").
func precededByLetter(work []byte, idx int) bool {
	if idx <= 0 {
		return false
	}
	c := work[idx-1]
	return c >= 'a' && c <= 'z'
}

func toMM(v float64, unit string) float64 {
	switch unit {
	case "cm":
		return v * 10
	case "m":
		return v * 1000
	case "in", "inch", "inches":
		return v * 25.4
	}
	return v
}

func extractDimensions(p *ParsedIntent, work []byte) {
	for _, ex := range dimExtractors {
		if anySet(p.Dimensions, ex.keys) {
			continue
		}
		for _, loc := range ex.re.FindAllSubmatchIndex(work, -1) {
			if loc[2] < 0 || precededByLetter(work, loc[2]) {
				continue
			}
			vals, ok := ex.values(work, loc)
			if !ok {
				continue
			}
			for i, k := range ex.keys {
				p.Dimensions[k] = vals[i]
				p.Explicit[k] = true
			}
			consume(work, loc[0], loc[1])
			break
		}
	}
}

// values decodes the capture groups of one match. Numbers without their own
// unit take the last unit given in the match ("150x80x20mm").
func (ex dimExtractor) values(work []byte, loc []int) ([]float64, bool) {
	group := func(i int) string {
		if 2*i+1 >= len(loc) || loc[2*i] < 0 {
			return ""
		}
		return string(work[loc[2*i]:loc[2*i+1]])
	}
	stride := 1
	if ex.units {
		stride = 2
	}
	shared := ""
	if ex.units {
		for i := len(ex.keys) - 1; i >= 0; i-- {
			if u := group(1 + i*stride + 1); u != "" {
				shared = u
				break
			}
		}
	}
	out := make([]float64, len(ex.keys))
	for i := range ex.keys {
		v, err := strconv.ParseFloat(group(1+i*stride), 64)
		if err != nil {
			return nil, false
		}
		if ex.units {
			unit := group(1 + i*stride + 1)
			if unit == "" {
				unit = shared
			}
			v = toMM(v, unit)
		}
		if v <= 0 || v >= maxDimension {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func anySet(dims map[string]float64, keys []string) bool {
	for _, k := range keys {
		if _, ok := dims[k]; ok {
			return true
		}
	}
	return false
}

// envelopeKeys are the sizes that, once stated, switch off the positional
// fallback. Counts like holes or teeth do not.
var envelopeKeys = []string{
	KeyLength, KeyWidth, KeyHeight, KeyThickness,
	KeyDiameter, KeyRadius, KeyLegA, KeyLegB,
}

func anyExplicit(explicit map[string]bool, keys []string) bool {
	for _, k := range keys {
		if explicit[k] {
			return true
		}
	}
	return false
}

// extractBareNumbers assigns unlabelled numbers positionally, largest first.
func extractBareNumbers(p *ParsedIntent, work []byte) {
	seen := map[float64]bool{}
	var nums []float64
	for _, loc := range bareNumRE.FindAllSubmatchIndex(work, -1) {
		if precededByLetter(work, loc[0]) {
			continue
		}
		v, err := strconv.ParseFloat(string(work[loc[2]:loc[3]]), 64)
		if err != nil || v <= 0 || v >= maxDimension || seen[v] {
			continue
		}
		seen[v] = true
		nums = append(nums, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(nums)))

	keys := []string{KeyLength, KeyWidth, KeyHeight}
	if p.Primitive.Diametral() {
		keys = []string{KeyDiameter, KeyHeight}
	}
	for i, v := range nums {
		if i >= len(keys) {
			break
		}
		p.Dimensions[keys[i]] = v
		p.Explicit[keys[i]] = true
	}
}

// defaultDimensions fills whatever the text left out, per family.
var defaultDimensions = map[Primitive]map[string]float64{
	Box:        {KeyLength: 100, KeyWidth: 50, KeyHeight: 25},
	Cube:       {KeyLength: 50, KeyWidth: 50, KeyHeight: 50},
	Plate:      {KeyLength: 100, KeyWidth: 50, KeyThickness: 5},
	Bracket:    {KeyLength: 50, KeyWidth: 40, KeyHeight: 50, KeyThickness: 3},
	MotorMount: {KeyLength: 60, KeyWidth: 60, KeyThickness: 5},
	Enclosure:  {KeyLength: 120, KeyWidth: 80, KeyHeight: 40, KeyWallThickness: 2},
	Wedge:      {KeyLength: 60, KeyWidth: 40, KeyHeight: 30},
	Pyramid:    {KeyLength: 50, KeyWidth: 50, KeyHeight: 40},
	IBeam:      {KeyLength: 200, KeyWidth: 50, KeyHeight: 100, KeyThickness: 6},
	TBeam:      {KeyLength: 200, KeyWidth: 50, KeyHeight: 50, KeyThickness: 5},
	CChannel:   {KeyLength: 200, KeyWidth: 40, KeyHeight: 80, KeyThickness: 4},
	Cylinder:   {KeyDiameter: 50, KeyHeight: 100},
	Tube:       {KeyDiameter: 50, KeyHeight: 100, KeyWallThickness: 3},
	Capsule:    {KeyDiameter: 20, KeyHeight: 60},
	Sphere:     {KeyDiameter: 50},
	Dome:       {KeyDiameter: 80},
	Cone:       {KeyDiameter: 50, KeyHeight: 60},
	Torus:      {KeyDiameter: 60, KeyThickness: 15},
	Prism:      {KeyDiameter: 40, KeyHeight: 50},
	Gear:       {KeyTeeth: 20, KeyModule: 2, KeyHeight: 10, KeyInnerDiameter: 8},
	Bolt:       {KeyDiameter: 10, KeyLength: 40},
	Nut:        {KeyDiameter: 10},
	Stud:       {KeyDiameter: 10, KeyLength: 60},
	Washer:     {KeyDiameter: 20, KeyInnerDiameter: 10.5, KeyThickness: 2},
	Spacer:     {KeyDiameter: 12, KeyInnerDiameter: 6.5, KeyHeight: 10},
	Shaft:      {KeyDiameter: 10, KeyLength: 100},
	Flange:     {KeyDiameter: 100, KeyInnerDiameter: 30, KeyThickness: 12, KeyHoleCount: 4},
	Pulley:     {KeyDiameter: 60, KeyHeight: 20, KeyInnerDiameter: 8},
	Knob:       {KeyDiameter: 30, KeyHeight: 20},
	Pipe:       {KeyDiameter: 25, KeyLength: 200, KeyWallThickness: 2},
	BentPipe:   {KeyDiameter: 25, KeyLength: 100, KeyWallThickness: 2},
	Vase:       {KeyDiameter: 100, KeyHeight: 200, KeyWallThickness: 3},
	Bowl:       {KeyDiameter: 150, KeyHeight: 60, KeyWallThickness: 3},
	Ring:       {KeyRingSize: 7, KeyWidth: 4, KeyThickness: 2},
}

// DefaultDimensions returns a copy of the defaults for a family.
func DefaultDimensions(prim Primitive) map[string]float64 {
	src, ok := defaultDimensions[prim]
	if !ok {
		src = defaultDimensions[Box]
	}
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func applyDefaults(p *ParsedIntent) {
	for k, v := range DefaultDimensions(p.Primitive) {
		if _, ok := p.Dimensions[k]; ok {
			continue
		}
		// a radius in the text stands in for the default diameter
		if k == KeyDiameter && p.Explicit[KeyRadius] {
			continue
		}
		p.Dimensions[k] = v
	}
}

// applySizeAdjectives scales only dimensions the text did not state.
func applySizeAdjectives(p *ParsedIntent, hay haystack) {
	categorised := false
	for _, e := range sizeLexicon {
		if !hay.contains(e.phrase) {
			continue
		}
		if e.category != "" && !categorised {
			p.Context.SizeCategory = e.category
			categorised = true
		}
		for _, k := range sizeClassKeys[e.class] {
			if v, ok := p.Dimensions[k]; ok && !p.Explicit[k] {
				p.Dimensions[k] = v * e.multiplier
			}
		}
	}
}

func parseContext(p *ParsedIntent, hay haystack) {
	seenAesthetic := map[string]bool{}
	seenConstraint := map[string]bool{}
	for _, e := range contextLexicon {
		if !hay.contains(e.phrase) {
			continue
		}
		switch e.field {
		case ctxPurpose:
			if p.Context.Purpose == "" {
				p.Context.Purpose = e.tag
			}
		case ctxEnvironment:
			if p.Context.Environment == "" {
				p.Context.Environment = e.tag
			}
		case ctxAesthetic:
			if !seenAesthetic[e.tag] {
				seenAesthetic[e.tag] = true
				p.Context.Aesthetics = append(p.Context.Aesthetics, e.tag)
			}
		case ctxConstraint:
			if !seenConstraint[e.tag] {
				seenConstraint[e.tag] = true
				p.Context.Constraints = append(p.Context.Constraints, e.tag)
			}
		}
	}
}

// parseLoad returns the first load expression in newtons and consumes it.
func parseLoad(work []byte) float64 {
	if loc := loadUnitRE.FindSubmatchIndex(work); loc != nil && !precededByLetter(work, loc[2]) {
		v, _ := strconv.ParseFloat(string(work[loc[2]:loc[3]]), 64)
		unit := string(work[loc[4]:loc[5]])
		consume(work, loc[0], loc[1])
		return v * loadFactor(unit)
	}
	if loc := loadKeyRE.FindSubmatchIndex(work); loc != nil {
		v, _ := strconv.ParseFloat(string(work[loc[2]:loc[3]]), 64)
		consume(work, loc[0], loc[1])
		return v
	}
	return 0
}

// consumeMaterial blanks every name or alias of the matched material, so
// grade numbers like "6061" are not read as dimensions.
func consumeMaterial(work []byte, name string) {
	m, ok := materials.Lookup(name)
	if !ok {
		return
	}
	for _, phrase := range append([]string{m.Name}, m.Aliases...) {
		words := tokenize(phrase)
		if len(words) == 0 {
			continue
		}
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		re, err := regexp.Compile(`\b` + strings.Join(words, `[^a-z0-9]+`) + `s?\b`)
		if err != nil {
			continue
		}
		for _, loc := range re.FindAllIndex(work, -1) {
			consume(work, loc[0], loc[1])
		}
	}
}

// parseAcceptance reads a mass limit and a minimum safety factor, consuming
// them. Gram figures outside a weight phrase are consumed and ignored.
func parseAcceptance(work []byte) Acceptance {
	var a Acceptance
	if m := massLimitRE.FindSubmatchIndex(work); m != nil {
		num, unit := 2, 4
		if m[num] < 0 {
			num, unit = 6, 8
		}
		v, err := strconv.ParseFloat(string(work[m[num]:m[num+1]]), 64)
		if err == nil && v > 0 {
			if strings.HasPrefix(string(work[m[unit]:m[unit+1]]), "k") {
				v *= 1000
			}
			a.MaxMassG = v
		}
		consume(work, m[0], m[1])
	}
	for _, loc := range gramsRE.FindAllIndex(work, -1) {
		if !precededByLetter(work, loc[0]) {
			consume(work, loc[0], loc[1])
		}
	}
	if m := safetyRE.FindSubmatchIndex(work); m != nil {
		if v, err := strconv.ParseFloat(string(work[m[2]:m[3]]), 64); err == nil && v > 0 {
			a.MinSafetyFactor = v
		}
		consume(work, m[0], m[1])
	}
	return a
}

// LoadToNewtons converts a load in the given unit ("kN", "kg", "lbs", "N").
func LoadToNewtons(v float64, unit string) float64 {
	return v * loadFactor(strings.ToLower(unit))
}

func loadFactor(unit string) float64 {
	switch {
	case unit == "kn":
		return 1000
	case strings.HasPrefix(unit, "kg"), strings.HasPrefix(unit, "kilo"):
		return 9.81
	case strings.HasPrefix(unit, "lb"), strings.HasPrefix(unit, "pound"):
		return 4.448
	}
	return 1
}

func parseQuantity(work []byte) int {
	m := quantityRE.FindSubmatchIndex(work)
	if m == nil {
		return 1
	}
	for g := 1; g <= 3; g++ {
		if m[2*g] >= 0 {
			n, err := strconv.Atoi(string(work[m[2*g]:m[2*g+1]]))
			consume(work, m[0], m[1])
			if err != nil || n < 1 {
				return 1
			}
			return n
		}
	}
	return 1
}

// parseDesignations finds and consumes standards designations. Each return
// value is the normalized designation, or "" when absent.
func parseDesignations(work []byte) (thread, nema, bearing string) {
	if loc := nemaRE.FindSubmatchIndex(work); loc != nil {
		nema = standards.NormalizeMotorMount(string(work[loc[2]:loc[3]]))
		consume(work, loc[0], loc[1])
	}
	if loc := threadRE.FindSubmatchIndex(work); loc != nil {
		thread = standards.NormalizeThread(string(work[loc[2]:loc[3]]))
		consume(work, loc[0], loc[1])
	}
	if loc := bearingRE.FindSubmatchIndex(work); loc != nil {
		raw := ""
		if loc[2] >= 0 {
			raw = string(work[loc[2]:loc[3]])
		} else if loc[4] >= 0 {
			raw = string(work[loc[4]:loc[5]])
		}
		if _, ok := standards.Bearing(raw); ok {
			bearing = standards.NormalizeBearing(raw)
			consume(work, loc[0], loc[1])
		}
	}
	return thread, nema, bearing
}

// applyDesignations resolves designations against the standards registry.
// A thread on a fastener overrides its diameter; on anything else it sizes
// the clearance holes. Unknown threads fall back to the approximate formula.
func applyDesignations(p *ParsedIntent, thread, nema, bearing string) {
	if thread != "" {
		spec, ok := standards.Thread(thread)
		if !ok {
			major, _ := strconv.ParseFloat(strings.TrimPrefix(thread, "M"), 64)
			spec = standards.ApproxThread(major)
		}
		p.ThreadDesignation = spec.Designation
		p.StandardDesignation = spec.Designation
		if p.Primitive.Fastener() {
			p.Dimensions[KeyDiameter] = spec.MajorDia
			p.Dimensions[KeyRadius] = spec.MajorDia / 2
			p.Explicit[KeyDiameter] = true
			p.Explicit[KeyRadius] = true
			p.Modifiers = p.Modifiers.With(Threaded)
		} else if !p.Explicit[KeyHoleDiameter] {
			p.Dimensions[KeyHoleDiameter] = spec.ClearanceHole
		}
		p.Features = append(p.Features, Feature{Kind: FeatureThread, Value: spec.Designation, Amount: spec.MajorDia})
	}
	if nema != "" {
		if mm, ok := standards.MotorMount(nema); ok {
			p.Features = append(p.Features, Feature{Kind: FeatureMotorMount, Value: mm.Designation, Amount: mm.BoltSpacing})
			if p.StandardDesignation == "" {
				p.StandardDesignation = mm.Designation
			}
		}
	}
	if bearing != "" {
		if b, ok := standards.Bearing(bearing); ok {
			p.Features = append(p.Features, Feature{Kind: FeatureBearing, Value: b.Designation, Amount: b.Bore})
			if p.StandardDesignation == "" {
				p.StandardDesignation = b.Designation
			}
			if p.Primitive == Shaft {
				p.Dimensions[KeyDiameter] = b.Bore
				p.Explicit[KeyDiameter] = true
				delete(p.Dimensions, KeyRadius)
			} else if !p.Explicit[KeyInnerDiameter] {
				p.Dimensions[KeyInnerDiameter] = b.OuterDia
			}
		}
	}
}

// syncRadius enforces diameter == 2*radius. A stated diameter wins over a
// stated radius.
func syncRadius(dims map[string]float64, explicit map[string]bool) {
	d, hasD := dims[KeyDiameter]
	r, hasR := dims[KeyRadius]
	switch {
	case hasD && hasR && explicit[KeyRadius] && !explicit[KeyDiameter]:
		dims[KeyDiameter] = 2 * r
	case hasD:
		dims[KeyRadius] = d / 2
	case hasR:
		dims[KeyDiameter] = 2 * r
	}
}

func collectFeatures(p *ParsedIntent) {
	if n := p.Dimensions[KeyHoleCount]; n > 0 {
		p.Features = append(p.Features, Feature{Kind: FeatureHoles, Amount: n})
	}
	if r := p.Dimensions[KeyFilletRadius]; r > 0 {
		p.Features = append(p.Features, Feature{Kind: FeatureFillet, Amount: r})
		p.Modifiers = p.Modifiers.With(Rounded)
	}
	if c := p.Dimensions[KeyChamferSize]; c > 0 {
		p.Features = append(p.Features, Feature{Kind: FeatureChamfer, Amount: c})
		p.Modifiers = p.Modifiers.With(Chamfered)
	}
}
