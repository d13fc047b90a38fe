package engine

import (
	"strings"
	"testing"

	"github.com/chazu/partforge/pkg/intent"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(design "plate" :profile "cnc")`,
			expect: `(design "plate" "__kw_profile" "cnc")`,
		},
		{
			name:   "multiple keywords",
			input:  `(param :length 400 :width 200)`,
			expect: `(param "__kw_length" 400 "__kw_width" 200)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(interface-fit "hole" :plus-minus 1)`,
			expect: `(interface_fit "hole" "__kw_plus-minus" 1)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:max-mass-g`,
			expect: `"__kw_max-mass-g"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Authoring forms
// ---------------------------------------------------------------------------

func mustEval(t *testing.T, source string) EvalResult {
	t.Helper()
	res, err := NewEngine().EvaluateFull(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("eval errors: %v", res.Errors)
	}
	if res.Design == nil {
		t.Fatal("expected non-nil design")
	}
	return res
}

func TestFullDesign(t *testing.T) {
	source := `
;; wall bracket for a 500 N shelf load
(design "bracket" :profile "cnc" :id "br-1" :revision 3)
(materials "aluminum" "steel")
(def t 5)
(param :length 150 :width 80 :thickness t :load 500 :unit-system :MMGS)
(param :wall_thickness_mm (* t 0.5))
(bound "thickness" :min 2 :max 10 :note "stock plate")
(tolerance "hole-diameter" :nominal 6.6 :plus-minus -0.1)
(interface-fit "holeDiameter" :standard "M6" :severity :info)
(objective :minimize "mass" :weight 2)
(objective :maximize "safetyFactor")
(accept :max-mass-g 200 :min-safety-factor 2 :max-cost 10)
`
	res := mustEval(t, source)
	d := res.Design

	if d.ID != "br-1" || d.Revision != 3 {
		t.Errorf("id/revision = %s/%d, want br-1/3", d.ID, d.Revision)
	}
	if d.PartClass != "bracket" || d.Profile != "cnc" {
		t.Errorf("class/profile = %s/%s", d.PartClass, d.Profile)
	}
	if len(d.Materials) != 2 || d.Materials[0] != "Aluminum 6061-T6" || d.Materials[1] != "Steel 1018" {
		t.Errorf("materials = %v", d.Materials)
	}
	if got := d.Parameters.String(intent.KeyMaterial, ""); got != "Aluminum 6061-T6" {
		t.Errorf("material param = %q", got)
	}

	nums := map[string]float64{
		intent.KeyLength:        150,
		intent.KeyWidth:         80,
		intent.KeyThickness:     5,
		intent.KeyLoad:          500,
		intent.KeyWallThickness: 2.5,
	}
	for k, want := range nums {
		if got := d.Parameters.Number(k, -1); got != want {
			t.Errorf("%s = %g, want %g", k, got, want)
		}
	}
	if got := d.Parameters.String(intent.KeyUnitSystem, ""); got != "MMGS" {
		t.Errorf("unitSystem = %q, want MMGS", got)
	}

	if len(d.Constraints) != 3 {
		t.Fatalf("expected 3 constraints, got %d", len(d.Constraints))
	}
	b := d.Constraints[0]
	if b.Kind != intent.ConstraintBound || b.Parameter != intent.KeyThickness || *b.Min != 2 || *b.Max != 10 {
		t.Errorf("bound = %+v", b)
	}
	if b.Severity != intent.SeverityBlocker || b.Note != "stock plate" {
		t.Errorf("bound severity/note = %s/%q", b.Severity, b.Note)
	}
	tol := d.Constraints[1]
	if tol.Parameter != intent.KeyHoleDiameter || tol.Nominal != 6.6 || tol.PlusMinus != 0.1 || tol.Severity != intent.SeverityWarn {
		t.Errorf("tolerance = %+v", tol)
	}
	fit := d.Constraints[2]
	if fit.Kind != intent.ConstraintInterface || fit.Interface != "M6" || fit.Severity != intent.SeverityInfo {
		t.Errorf("interface = %+v", fit)
	}

	if len(d.Objectives) != 2 {
		t.Fatalf("expected 2 objectives, got %d", len(d.Objectives))
	}
	if o := d.Objectives[0]; o.Metric != "mass" || o.Direction != "minimize" || o.Weight != 2 {
		t.Errorf("objective 0 = %+v", o)
	}
	if o := d.Objectives[1]; o.Metric != "safetyFactor" || o.Direction != "maximize" {
		t.Errorf("objective 1 = %+v", o)
	}

	if d.Acceptance.MaxMassG != 200 || d.Acceptance.MinSafetyFactor != 2 {
		t.Errorf("acceptance = %+v", d.Acceptance)
	}
	if d.Acceptance.Extra["maxCost"] != 10 {
		t.Errorf("extra acceptance = %v", d.Acceptance.Extra)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestParamValue(t *testing.T) {
	source := `
(design "plate")
(param :length 120)
(param :width (/ (param-value "length") 2))
`
	d := mustEval(t, source).Design
	if got := d.Parameters.Number(intent.KeyWidth, 0); got != 60 {
		t.Errorf("width = %g, want 60", got)
	}
}

func TestMaterialsList(t *testing.T) {
	d := mustEval(t, `(design "plate") (materials (list "titanium" "PLA"))`).Design
	if len(d.Materials) != 2 || d.Materials[0] != "Titanium Ti-6Al-4V" || d.Materials[1] != "PLA" {
		t.Errorf("materials = %v", d.Materials)
	}
}

func TestUnknownMaterialWarns(t *testing.T) {
	res := mustEval(t, `(design "plate") (materials "mithril")`)
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0].Message, "mithril") {
		t.Fatalf("expected a mithril warning, got %v", res.Warnings)
	}
	if res.Design.Materials[0] != "mithril" {
		t.Errorf("unknown material should be kept as written, got %v", res.Design.Materials)
	}
}

func TestDefaultsWithoutMaterials(t *testing.T) {
	d := mustEval(t, `(design "plate")`).Design
	if d.Revision != 1 || d.ID == "" {
		t.Errorf("expected a fresh revision 1 design, got %s/%d", d.ID, d.Revision)
	}
	if d.PrimaryMaterial() != "Aluminum 6061-T6" {
		t.Errorf("primary material = %q", d.PrimaryMaterial())
	}
}

func TestFormErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"design without class", `(design)`, "part class"},
		{"bound without limits", `(bound "thickness")`, "requires :min or :max"},
		{"bound inverted", `(bound "thickness" :min 10 :max 2)`, "exceeds max"},
		{"tolerance without nominal", `(tolerance "holeDiameter" :plus-minus 0.1)`, "requires :nominal"},
		{"interface without standard", `(interface-fit "holeDiameter")`, "requires :standard"},
		{"bad severity", `(bound "thickness" :min 1 :severity :fatal)`, "invalid severity"},
		{"objective without direction", `(objective :weight 1)`, "requires :minimize or :maximize"},
		{"param positional", `(param 5)`, "keyword arguments only"},
		{"param-value missing", `(param-value "length")`, "no parameter named"},
		{"accept non-number", `(accept :max-mass-g "heavy")`, "expected number"},
		{"revision zero", `(design "plate" :revision 0)`, "at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if d != nil {
				t.Fatal("expected nil design on eval error")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected an eval error")
			}
			if !strings.Contains(evalErrs[0].Message, tt.want) {
				t.Errorf("message = %q, want containing %q", evalErrs[0].Message, tt.want)
			}
		})
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	d := mustEval(t, `(design "plate") (param :length (+ 100 (* 2 25)))`).Design
	if got := d.Parameters.Number(intent.KeyLength, 0); got != 150 {
		t.Errorf("length = %g, want 150", got)
	}
}
