package intent

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestParseEmptyYieldsDefaultBox(t *testing.T) {
	for _, in := range []string{"", "   ", "qwerty zxcv"} {
		t.Run(in, func(t *testing.T) {
			p := Parse(in)
			if p.Primitive != Box {
				t.Errorf("Primitive = %q, want box", p.Primitive)
			}
			if p.Confidence != ConfidenceFloor {
				t.Errorf("Confidence = %v, want %v", p.Confidence, ConfidenceFloor)
			}
			for _, k := range []string{KeyLength, KeyWidth, KeyHeight} {
				if v := p.Dimensions[k]; v <= 0 {
					t.Errorf("%s = %v, want positive default", k, v)
				}
			}
		})
	}
}

func TestParseMountingBracket(t *testing.T) {
	p := Parse("Mounting bracket 150x80x20mm with 4 M4 holes at corners, 2mm wall, aluminum")

	if p.Primitive != Bracket && p.Primitive != Box && p.Primitive != Plate {
		t.Errorf("Primitive = %q, want box/bracket family", p.Primitive)
	}
	want := map[string]float64{
		KeyLength:        150,
		KeyWidth:         80,
		KeyHeight:        20,
		KeyWallThickness: 2,
		KeyHoleCount:     4,
	}
	for k, v := range want {
		if got := p.Dimensions[k]; !approx(got, v) {
			t.Errorf("%s = %v, want %v", k, got, v)
		}
	}
	if p.ThreadDesignation != "M4" {
		t.Errorf("ThreadDesignation = %q, want M4", p.ThreadDesignation)
	}
	if p.Material != "Aluminum 6061-T6" {
		t.Errorf("Material = %q", p.Material)
	}
	if p.Confidence < 0.6 {
		t.Errorf("Confidence = %v, want >= 0.6", p.Confidence)
	}
	// M4 on a bracket sizes clearance holes instead of the part
	if got := p.Dimensions[KeyHoleDiameter]; !approx(got, 4.5) {
		t.Errorf("holeDiameter = %v, want 4.5", got)
	}
	if _, ok := p.Dimensions[KeyDiameter]; ok {
		t.Error("bracket should not pick up a diameter from M4")
	}
}

func TestParseGenericBolt(t *testing.T) {
	p := Parse("Design a generic M10 bolt")
	if p.Primitive != Bolt {
		t.Fatalf("Primitive = %q, want bolt", p.Primitive)
	}
	if p.StandardDesignation != "M10" {
		t.Errorf("StandardDesignation = %q, want M10", p.StandardDesignation)
	}
	if !approx(p.Dimensions[KeyDiameter], 10) || !approx(p.Dimensions[KeyRadius], 5) {
		t.Errorf("diameter/radius = %v/%v, want 10/5", p.Dimensions[KeyDiameter], p.Dimensions[KeyRadius])
	}
	if !p.Modifiers.Has(Threaded) {
		t.Error("bolt with a thread designation should be threaded")
	}
}

func TestParseDesignationOverridesDiameter(t *testing.T) {
	p := Parse("bolt diameter 7mm M12 length 60")
	if !approx(p.Dimensions[KeyDiameter], 12) {
		t.Errorf("diameter = %v, want 12 from M12", p.Dimensions[KeyDiameter])
	}
	if !approx(p.Dimensions[KeyLength], 60) {
		t.Errorf("length = %v, want 60", p.Dimensions[KeyLength])
	}
}

func TestParseUnknownThreadFallsBack(t *testing.T) {
	p := Parse("M11 bolt")
	if p.StandardDesignation != "M11" {
		t.Fatalf("StandardDesignation = %q", p.StandardDesignation)
	}
	if !approx(p.Dimensions[KeyDiameter], 11) {
		t.Errorf("diameter = %v, want 11", p.Dimensions[KeyDiameter])
	}
}

func TestParseDiameterRadiusInvariant(t *testing.T) {
	inputs := []string{
		"cylinder radius 12 height 40",
		"cylinder diameter 30mm 80 tall",
		"sphere r=7",
		"large gear 30 teeth module 1.5",
		"tube",
		"bowl 2 cm diameter",
		"radius 5 diameter 30 disc",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			p := Parse(in)
			d, hasD := p.Dimensions[KeyDiameter]
			r, hasR := p.Dimensions[KeyRadius]
			if hasD != hasR {
				t.Fatalf("diameter present=%v radius present=%v", hasD, hasR)
			}
			if hasD && !approx(d, 2*r) {
				t.Errorf("diameter %v != 2*radius %v", d, r)
			}
		})
	}
}

func TestParseRadiusOnly(t *testing.T) {
	p := Parse("cylinder radius 12 height 40")
	if !approx(p.Dimensions[KeyDiameter], 24) {
		t.Errorf("diameter = %v, want 24", p.Dimensions[KeyDiameter])
	}
	if !approx(p.Dimensions[KeyHeight], 40) {
		t.Errorf("height = %v, want 40", p.Dimensions[KeyHeight])
	}
}

func TestParseFirstMatchWins(t *testing.T) {
	// "length 120" is matched by the named pattern; the later "length 80" must
	// not overwrite it.
	p := Parse("plate length 120 width 60, actually length 80")
	if !approx(p.Dimensions[KeyLength], 120) {
		t.Errorf("length = %v, want 120", p.Dimensions[KeyLength])
	}
	// LxWxH beats a named length that comes later
	p = Parse("box 10x20x30 length 99")
	if !approx(p.Dimensions[KeyLength], 10) {
		t.Errorf("length = %v, want 10", p.Dimensions[KeyLength])
	}
}

func TestParsePlateThirdDimensionIsThickness(t *testing.T) {
	p := Parse("plate 200x100x6")
	if p.Primitive != Plate {
		t.Fatalf("primitive = %q, want plate", p.Primitive)
	}
	if !approx(p.Dimensions[KeyThickness], 6) {
		t.Errorf("thickness = %v, want 6", p.Dimensions[KeyThickness])
	}
	if _, ok := p.Dimensions[KeyHeight]; ok {
		t.Errorf("height should not be set on a plate, got %v", p.Dimensions[KeyHeight])
	}
}

func TestParseUnits(t *testing.T) {
	p := Parse("box 2 x 3 x 4 cm")
	for k, v := range map[string]float64{KeyLength: 20, KeyWidth: 30, KeyHeight: 40} {
		if !approx(p.Dimensions[k], v) {
			t.Errorf("%s = %v, want %v", k, p.Dimensions[k], v)
		}
	}
	p = Parse("shaft diameter 1 in")
	if !approx(p.Dimensions[KeyDiameter], 25.4) {
		t.Errorf("diameter = %v, want 25.4", p.Dimensions[KeyDiameter])
	}
}

func TestParseWallThicknessNotThickness(t *testing.T) {
	p := Parse("enclosure wall thickness 3mm")
	if !approx(p.Dimensions[KeyWallThickness], 3) {
		t.Errorf("wallThickness = %v, want 3", p.Dimensions[KeyWallThickness])
	}
	if p.Explicit[KeyThickness] {
		t.Error("thickness must not be read from the wall phrase")
	}
}

func TestParseBareNumberFallback(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]float64
	}{
		{"box 20 100 50", map[string]float64{KeyLength: 100, KeyWidth: 50, KeyHeight: 20}},
		{"cylinder 20 100", map[string]float64{KeyDiameter: 100, KeyHeight: 20}},
		{"block 30 30 10", map[string]float64{KeyLength: 30, KeyWidth: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p := Parse(tt.in)
			for k, v := range tt.want {
				if !approx(p.Dimensions[k], v) {
					t.Errorf("%s = %v, want %v", k, p.Dimensions[k], v)
				}
			}
		})
	}
}

func TestParseBareNumbersWithHoleCount(t *testing.T) {
	p := Parse("box 200 by 100 by 60 with 4 holes")
	want := map[string]float64{KeyLength: 200, KeyWidth: 100, KeyHeight: 60, KeyHoleCount: 4}
	for k, v := range want {
		if !approx(p.Dimensions[k], v) {
			t.Errorf("%s = %v, want %v", k, p.Dimensions[k], v)
		}
	}
}

func TestParseAcceptance(t *testing.T) {
	p := Parse("We need a drone arm that can hold 1000N, made of Aluminium 6061. It must weigh less than 500g, safety factor 2")
	if p.Material != "Aluminum 6061-T6" {
		t.Errorf("Material = %q", p.Material)
	}
	if !approx(p.Context.LoadN, 1000) {
		t.Errorf("LoadN = %v, want 1000", p.Context.LoadN)
	}
	if !approx(p.Acceptance.MaxMassG, 500) {
		t.Errorf("MaxMassG = %v, want 500", p.Acceptance.MaxMassG)
	}
	if !approx(p.Acceptance.MinSafetyFactor, 2) {
		t.Errorf("MinSafetyFactor = %v, want 2", p.Acceptance.MinSafetyFactor)
	}
	// grade, mass and safety factor are not dimensions
	for k, v := range DefaultDimensions(p.Primitive) {
		if !approx(p.Dimensions[k], v) {
			t.Errorf("%s = %v, want default %v", k, p.Dimensions[k], v)
		}
	}

	d := p.ToDesignIntent()
	if d.Acceptance.MaxMassG != 500 || d.Acceptance.MinSafetyFactor != 2 {
		t.Errorf("design acceptance = %+v", d.Acceptance)
	}
}

func TestParseAcceptanceForms(t *testing.T) {
	tests := []struct {
		in     string
		mass   float64
		sf     float64
		length float64
	}{
		{"plate 120x60x6, max weight 1.2kg", 1200, 0, 120},
		{"bracket weighing under 250 grams with SF 3", 250, 3, 50},
		{"box 80 40 20, factor of safety of 1.5", 0, 1.5, 80},
		{"300g steel box 90 45 30", 0, 0, 90},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p := Parse(tt.in)
			if !approx(p.Acceptance.MaxMassG, tt.mass) {
				t.Errorf("MaxMassG = %v, want %v", p.Acceptance.MaxMassG, tt.mass)
			}
			if !approx(p.Acceptance.MinSafetyFactor, tt.sf) {
				t.Errorf("MinSafetyFactor = %v, want %v", p.Acceptance.MinSafetyFactor, tt.sf)
			}
			if !approx(p.Dimensions[KeyLength], tt.length) {
				t.Errorf("length = %v, want %v", p.Dimensions[KeyLength], tt.length)
			}
			if p.Context.LoadN != 0 {
				t.Errorf("LoadN = %v, a weight limit is not a load", p.Context.LoadN)
			}
		})
	}
}

func TestParseShapePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Primitive
	}{
		{"i-beam", IBeam},
		{"a steel beam", IBeam},
		{"T beam 200 long", TBeam},
		{"box for a gear", Gear},
		{"NEMA 17 motor mount", MotorMount},
		{"hex nut M8", Nut},
		{"spur gear with 24 teeth", Gear},
		{"o-ring", Torus},
		{"flower pot", Vase},
		{"project box", Enclosure},
		{"pipe elbow", BentPipe},
		{"ring size 7", Ring},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Parse(tt.in).Primitive; got != tt.want {
				t.Errorf("Primitive = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMaterial(t *testing.T) {
	tests := map[string]string{
		"stainless steel bracket": "Stainless Steel 304",
		"steel bracket":           "Steel 1018",
		"titanium ring":           "Titanium Ti-6Al-4V",
		"Aluminum 6061-T6 plate":  "Aluminum 6061-T6",
		"carbon steel shaft":      "Steel 1018",
		"bracket":                 "Aluminum 6061-T6",
		"pla enclosure for a pi":  "PLA",
	}
	for in, want := range tests {
		if got := Parse(in).Material; got != want {
			t.Errorf("Parse(%q).Material = %q, want %q", in, got, want)
		}
	}
}

func TestParseLoad(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"bracket that holds 10kN", 10000},
		{"shelf to hold 5kg", 5 * 9.81},
		{"hook for 20 lbs", 20 * 4.448},
		{"plate 500 N", 500},
		{"plate with a load of 250", 250},
		{"plate", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Parse(tt.in).Context.LoadN; !approx(got, tt.want) {
				t.Errorf("LoadN = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLoadDoesNotBecomeDimension(t *testing.T) {
	p := Parse("plate to hold 10kN")
	if p.Explicit[KeyLength] {
		t.Errorf("load number leaked into length: %v", p.Dimensions[KeyLength])
	}
}

func TestParseSizeAdjectives(t *testing.T) {
	base := Parse("box")
	large := Parse("large box")
	if !approx(large.Dimensions[KeyLength], base.Dimensions[KeyLength]*1.5) {
		t.Errorf("large length = %v, want %v", large.Dimensions[KeyLength], base.Dimensions[KeyLength]*1.5)
	}
	if large.Context.SizeCategory != "large" {
		t.Errorf("SizeCategory = %q", large.Context.SizeCategory)
	}

	// explicit dimensions are not scaled
	p := Parse("large box 10x10x10")
	if !approx(p.Dimensions[KeyLength], 10) {
		t.Errorf("explicit length scaled to %v", p.Dimensions[KeyLength])
	}

	// thickness adjectives leave length alone
	thin := Parse("thin plate")
	basePlate := Parse("plate")
	if !approx(thin.Dimensions[KeyThickness], basePlate.Dimensions[KeyThickness]*0.6) {
		t.Errorf("thin thickness = %v", thin.Dimensions[KeyThickness])
	}
	if !approx(thin.Dimensions[KeyLength], basePlate.Dimensions[KeyLength]) {
		t.Errorf("thin changed length to %v", thin.Dimensions[KeyLength])
	}
}

func TestParseMotorMountFeature(t *testing.T) {
	p := Parse("plate for a NEMA 17 stepper")
	f, ok := p.Feature(FeatureMotorMount)
	if !ok {
		t.Fatal("missing motor mount feature")
	}
	if f.Value != "NEMA17" {
		t.Errorf("feature value = %q", f.Value)
	}
	if p.StandardDesignation != "NEMA17" {
		t.Errorf("StandardDesignation = %q", p.StandardDesignation)
	}
	if p.Explicit[KeyLength] {
		t.Error("NEMA size leaked into dimensions")
	}
}

func TestParseBearing(t *testing.T) {
	p := Parse("housing for a 608ZZ bearing")
	f, ok := p.Feature(FeatureBearing)
	if !ok || f.Value != "608" {
		t.Fatalf("bearing feature = %+v, %v", f, ok)
	}
	if !approx(p.Dimensions[KeyInnerDiameter], 22) {
		t.Errorf("innerDiameter = %v, want bearing OD 22", p.Dimensions[KeyInnerDiameter])
	}
}

func TestParseGearPitchDiameter(t *testing.T) {
	p := Parse("spur gear 30 teeth module 1.5")
	if !approx(p.Dimensions[KeyTeeth], 30) || !approx(p.Dimensions[KeyModule], 1.5) {
		t.Fatalf("teeth/module = %v/%v", p.Dimensions[KeyTeeth], p.Dimensions[KeyModule])
	}
	if !approx(p.Dimensions[KeyDiameter], 45) {
		t.Errorf("diameter = %v, want 45", p.Dimensions[KeyDiameter])
	}
}

func TestParseFilletAndChamfer(t *testing.T) {
	p := Parse("block 40x40x10 with 3mm fillet and chamfer 1")
	if !approx(p.Dimensions[KeyFilletRadius], 3) {
		t.Errorf("filletRadius = %v", p.Dimensions[KeyFilletRadius])
	}
	if !approx(p.Dimensions[KeyChamferSize], 1) {
		t.Errorf("chamferSize = %v", p.Dimensions[KeyChamferSize])
	}
	if !p.Modifiers.Has(Rounded) || !p.Modifiers.Has(Chamfered) {
		t.Errorf("modifiers = %v", p.Modifiers)
	}
}

func TestParseContext(t *testing.T) {
	p := Parse("sleek modern lightweight outdoor mount, qty 25")
	if p.Context.Purpose != "mounting" {
		t.Errorf("Purpose = %q", p.Context.Purpose)
	}
	if p.Context.Environment != "outdoor" {
		t.Errorf("Environment = %q", p.Context.Environment)
	}
	if p.Context.Quantity != 25 {
		t.Errorf("Quantity = %d", p.Context.Quantity)
	}
	if len(p.Context.Aesthetics) != 2 {
		t.Errorf("Aesthetics = %v", p.Context.Aesthetics)
	}
	if len(p.Context.Constraints) != 1 || p.Context.Constraints[0] != "lightweight" {
		t.Errorf("Constraints = %v", p.Context.Constraints)
	}
}

func TestParseConfidenceBounds(t *testing.T) {
	inputs := []string{
		"NEMA 17 motor mount 60x60x5 aluminum",
		"part",
		"gear",
		"something",
	}
	for _, in := range inputs {
		c := Parse(in).Confidence
		if c < ConfidenceFloor || c > ConfidenceCap {
			t.Errorf("Parse(%q).Confidence = %v out of bounds", in, c)
		}
	}
	if Parse("gear").Confidence <= Parse("part").Confidence {
		t.Error("a higher-priority shape should raise confidence")
	}
}

func TestToDesignIntent(t *testing.T) {
	p := Parse("steel bolt M8 length 30 to hold 2kN")
	d := p.ToDesignIntent()
	if d.ID == "" || d.Revision != 1 {
		t.Errorf("ID/Revision = %q/%d", d.ID, d.Revision)
	}
	if d.PartClass != string(Bolt) {
		t.Errorf("PartClass = %q", d.PartClass)
	}
	if d.PrimaryMaterial() != "Steel 1018" {
		t.Errorf("material = %q", d.PrimaryMaterial())
	}
	if got := d.Parameters.Number(KeyLoad, 0); !approx(got, 2000) {
		t.Errorf("load = %v", got)
	}
	if got := d.Parameters.String(KeyDesignation, ""); got != "M8" {
		t.Errorf("designation = %q", got)
	}
	if got := d.Parameters.Nested(KeyFeatures).String(string(FeatureThread), ""); got != "M8" {
		t.Errorf("features.thread = %q", got)
	}
}
