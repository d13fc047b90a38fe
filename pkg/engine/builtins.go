package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/materials"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms authoring source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: my-wall -> my_wall
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: a flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toValue converts a number, string or keyword into a parameter value.
func toValue(s zygo.Sexp) (intent.Value, error) {
	if f, err := toFloat64(s); err == nil {
		return intent.Num(f), nil
	}
	str, err := toKeywordString(s)
	if err != nil {
		return intent.Value{}, fmt.Errorf("expected number or string, got %T (%s)", s, s.SexpString(nil))
	}
	return intent.Str(str), nil
}

// toSeverity converts :blocker, :warn or :info.
func toSeverity(s zygo.Sexp) (intent.Severity, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", err
	}
	switch sev := intent.Severity(strings.ToLower(name)); sev {
	case intent.SeverityBlocker, intent.SeverityWarn, intent.SeverityInfo:
		return sev, nil
	}
	return "", fmt.Errorf("invalid severity %q, expected blocker, warn, or info", name)
}

// sortedKW returns keyword names in order so that errors are reported
// deterministically.
func sortedKW(kw map[string]zygo.Sexp) []string {
	keys := make([]string, 0, len(kw))
	for k := range kw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ---------------------------------------------------------------------------
// Design builder
// ---------------------------------------------------------------------------

// builder accumulates the design a script declares.
type builder struct {
	d        intent.DesignIntent
	declared bool
	warnings []EvalWarning
}

func newBuilder() *builder {
	return &builder{d: intent.NewDesignIntent("")}
}

func (b *builder) warn(form, format string, args ...any) {
	b.warnings = append(b.warnings, EvalWarning{Form: form, Message: fmt.Sprintf(format, args...)})
}

func (b *builder) finish() *intent.DesignIntent {
	d := b.d.Clone()
	return &d
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the authoring forms into a zygomys environment.
// The builtins populate b during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (design "bracket" :profile "cnc" :id "br-1" :revision 2)
	// -----------------------------------------------------------------------
	env.AddFunction("design", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("design requires a part class")
		}
		class, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("design: part class: %w", err)
		}
		b.d.PartClass = strings.TrimSpace(class)
		b.declared = true

		if v, ok := pa.kw["profile"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("design: profile: %w", err)
			}
			b.d.Profile = s
		}
		if v, ok := pa.kw["id"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("design: id: %w", err)
			}
			b.d.ID = s
		}
		if v, ok := pa.kw["revision"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("design: revision: %w", err)
			}
			if f < 1 {
				return zygo.SexpNull, fmt.Errorf("design: revision must be at least 1, got %g", f)
			}
			b.d.Revision = int(f)
		}
		return &zygo.SexpStr{S: b.d.PartClass}, nil
	})

	// -----------------------------------------------------------------------
	// (materials "aluminum" "steel")
	// -----------------------------------------------------------------------
	env.AddFunction("materials", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		// (materials (list "a" "b")) is accepted as well.
		if len(args) == 1 {
			if items, err := sexpListToSlice(args[0]); err == nil {
				args = items
			}
		}
		var names []string
		for i, a := range args {
			s, err := toString(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("materials: entry %d: %w", i, err)
			}
			if c := materials.Canonical(s); c != "" {
				s = c
			} else {
				b.warn("materials", "unknown material %q; the default is simulated in its place", s)
			}
			names = append(names, s)
		}
		if len(names) == 0 {
			return zygo.SexpNull, fmt.Errorf("materials requires at least one name")
		}
		b.d.Materials = names
		b.d.Parameters.SetString(intent.KeyMaterial, names[0])
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (param :length 150 :wall-thickness 3 :unit-system :MMGS)
	// -----------------------------------------------------------------------
	env.AddFunction("param", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("param takes keyword arguments only, got %s", pa.positional[0].SexpString(nil))
		}
		for _, k := range sortedKW(pa.kw) {
			v, err := toValue(pa.kw[k])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("param: %s: %w", k, err)
			}
			b.d.Parameters[intent.CanonicalKey(k)] = v
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (param-value "length")
	//
	// Registered as "param_value"; the preprocessor converts the kebab-case
	// spelling in the source.
	// -----------------------------------------------------------------------
	env.AddFunction("param_value", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("param-value requires exactly 1 argument, got %d", len(args))
		}
		key, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("param-value: %w", err)
		}
		v, ok := b.d.Parameters[intent.CanonicalKey(key)]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("param-value: no parameter named %q", key)
		}
		if f, ok := v.Float(); ok && v.Kind() == intent.KindNumber {
			return &zygo.SexpFloat{Val: f}, nil
		}
		return &zygo.SexpStr{S: v.String()}, nil
	})

	// -----------------------------------------------------------------------
	// (bound "thickness" :min 2 :max 10 :severity :blocker :note "stock")
	// -----------------------------------------------------------------------
	env.AddFunction("bound", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, pa, err := constraintHead("bound", intent.ConstraintBound, intent.SeverityBlocker, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["min"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bound: min: %w", err)
			}
			c.Min = &f
		}
		if v, ok := pa.kw["max"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bound: max: %w", err)
			}
			c.Max = &f
		}
		if c.Min == nil && c.Max == nil {
			return zygo.SexpNull, fmt.Errorf("bound: %s: requires :min or :max", c.Parameter)
		}
		if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
			return zygo.SexpNull, fmt.Errorf("bound: %s: min %g exceeds max %g", c.Parameter, *c.Min, *c.Max)
		}
		b.d.Constraints = append(b.d.Constraints, c)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (tolerance "holeDiameter" :nominal 6.6 :plus-minus 0.1)
	// -----------------------------------------------------------------------
	env.AddFunction("tolerance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, pa, err := constraintHead("tolerance", intent.ConstraintTolerance, intent.SeverityWarn, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		v, ok := pa.kw["nominal"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("tolerance: %s: requires :nominal", c.Parameter)
		}
		if c.Nominal, err = toFloat64(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("tolerance: nominal: %w", err)
		}
		if v, ok := pa.kw["plus-minus"]; ok {
			if c.PlusMinus, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("tolerance: plus-minus: %w", err)
			}
			if c.PlusMinus < 0 {
				c.PlusMinus = -c.PlusMinus
			}
		}
		b.d.Constraints = append(b.d.Constraints, c)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (interface-fit "holeDiameter" :standard "M6")
	// -----------------------------------------------------------------------
	env.AddFunction("interface_fit", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, pa, err := constraintHead("interface-fit", intent.ConstraintInterface, intent.SeverityWarn, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		v, ok := pa.kw["standard"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("interface-fit: %s: requires :standard", c.Parameter)
		}
		if c.Interface, err = toKeywordString(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("interface-fit: standard: %w", err)
		}
		b.d.Constraints = append(b.d.Constraints, c)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (objective :minimize "mass" :weight 2)
	// -----------------------------------------------------------------------
	env.AddFunction("objective", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var o intent.Objective
		for _, dir := range []string{"minimize", "maximize"} {
			v, ok := pa.kw[dir]
			if !ok {
				continue
			}
			if o.Direction != "" {
				return zygo.SexpNull, fmt.Errorf("objective: give either :minimize or :maximize, not both")
			}
			metric, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("objective: %s: %w", dir, err)
			}
			o.Direction, o.Metric = dir, metric
		}
		if o.Direction == "" {
			return zygo.SexpNull, fmt.Errorf("objective requires :minimize or :maximize")
		}
		if v, ok := pa.kw["weight"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("objective: weight: %w", err)
			}
			o.Weight = f
		}
		b.d.Objectives = append(b.d.Objectives, o)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (accept :max-mass-g 200 :min-safety-factor 2 :max-cost 10)
	// -----------------------------------------------------------------------
	env.AddFunction("accept", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		for _, k := range sortedKW(pa.kw) {
			f, err := toFloat64(pa.kw[k])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("accept: %s: %w", k, err)
			}
			switch k {
			case "max-mass-g", "max-mass":
				b.d.Acceptance.MaxMassG = f
			case "min-safety-factor", "min-sf":
				b.d.Acceptance.MinSafetyFactor = f
			default:
				if b.d.Acceptance.Extra == nil {
					b.d.Acceptance.Extra = map[string]float64{}
				}
				b.d.Acceptance.Extra[intent.CanonicalKey(k)] = f
			}
		}
		return zygo.SexpNull, nil
	})
}

// constraintHead parses the parameter name, :severity and :note shared by
// every constraint form.
func constraintHead(form string, kind intent.ConstraintKind, def intent.Severity, args []zygo.Sexp) (intent.Constraint, kwArgs, error) {
	pa := parseArgs(args)
	if len(pa.positional) < 1 {
		return intent.Constraint{}, pa, fmt.Errorf("%s requires a parameter name", form)
	}
	param, err := toString(pa.positional[0])
	if err != nil {
		return intent.Constraint{}, pa, fmt.Errorf("%s: parameter: %w", form, err)
	}
	c := intent.Constraint{Kind: kind, Parameter: intent.CanonicalKey(param), Severity: def}
	if v, ok := pa.kw["severity"]; ok {
		if c.Severity, err = toSeverity(v); err != nil {
			return intent.Constraint{}, pa, fmt.Errorf("%s: severity: %w", form, err)
		}
	}
	if v, ok := pa.kw["note"]; ok {
		if c.Note, err = toString(v); err != nil {
			return intent.Constraint{}, pa, fmt.Errorf("%s: note: %w", form, err)
		}
	}
	return c, pa, nil
}
