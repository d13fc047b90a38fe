// Package rules evaluates deterministic manufacturability and material rule
// decks against a design's parameter map.
//
// A rule is either a simple (parameter, operator, threshold) test or a named
// expression computed by a built-in handler and then compared the same way.
// Rules whose parameter is absent do not apply. Rules the engine cannot
// evaluate (unknown expression or operator) pass and are listed in
// Result.Unevaluated so the caller can log them as configuration issues.
package rules

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/chazu/partforge/pkg/intent"
	"gopkg.in/yaml.v3"
)

//go:embed decks/*.yaml
var builtinDecks embed.FS

// Rule is one deck entry.
type Rule struct {
	ID         string          `yaml:"id" json:"id"`
	Title      string          `yaml:"title" json:"title"`
	Severity   intent.Severity `yaml:"severity" json:"severity"`
	Parameter  string          `yaml:"parameter,omitempty" json:"parameter,omitempty"`
	Expression string          `yaml:"expression,omitempty" json:"expression,omitempty"`
	Operator   string          `yaml:"operator" json:"operator"`
	Threshold  float64         `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	// Equals makes the rule a string comparison; Threshold is ignored.
	Equals    string `yaml:"equals,omitempty" json:"equals,omitempty"`
	Rationale string `yaml:"rationale" json:"rationale"`
	Citation  string `yaml:"citation,omitempty" json:"citation,omitempty"`
}

// Expected renders the passing condition, e.g. ">= 1.5".
func (r Rule) Expected() string {
	if r.Equals != "" {
		return fmt.Sprintf("%s %s", r.Operator, r.Equals)
	}
	return fmt.Sprintf("%s %g", r.Operator, r.Threshold)
}

// Deck is a named, versioned rule set.
type Deck struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
	Title   string `yaml:"title" json:"title"`
	Rules   []Rule `yaml:"rules" json:"rules"`
}

// ParseDeck decodes and validates a YAML deck. Parameter names are
// canonicalised so decks may use snake_case keys such as wall_thickness_mm.
func ParseDeck(data []byte) (Deck, error) {
	var d Deck
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Deck{}, fmt.Errorf("rules: decode deck: %w", err)
	}
	if d.Name == "" {
		return Deck{}, fmt.Errorf("rules: deck has no name")
	}
	seen := make(map[string]bool, len(d.Rules))
	for i := range d.Rules {
		r := &d.Rules[i]
		if r.ID == "" {
			return Deck{}, fmt.Errorf("rules: deck %s: rule %d has no id", d.Name, i)
		}
		if seen[r.ID] {
			return Deck{}, fmt.Errorf("rules: deck %s: duplicate rule %s", d.Name, r.ID)
		}
		seen[r.ID] = true
		switch r.Severity {
		case intent.SeverityBlocker, intent.SeverityWarn, intent.SeverityInfo:
		default:
			return Deck{}, fmt.Errorf("rules: deck %s: rule %s: unknown severity %q", d.Name, r.ID, r.Severity)
		}
		if (r.Parameter == "") == (r.Expression == "") {
			return Deck{}, fmt.Errorf("rules: deck %s: rule %s needs exactly one of parameter or expression", d.Name, r.ID)
		}
		if r.Parameter != "" {
			r.Parameter = intent.CanonicalKey(r.Parameter)
		}
		r.Expression = strings.TrimSpace(r.Expression)
	}
	return d, nil
}

// BuiltinDecks loads the decks compiled into the binary, keyed by name.
func BuiltinDecks() (map[string]Deck, error) {
	entries, err := builtinDecks.ReadDir("decks")
	if err != nil {
		return nil, fmt.Errorf("rules: read builtin decks: %w", err)
	}
	out := make(map[string]Deck, len(entries))
	for _, e := range entries {
		data, err := builtinDecks.ReadFile(path.Join("decks", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("rules: read %s: %w", e.Name(), err)
		}
		d, err := ParseDeck(data)
		if err != nil {
			return nil, fmt.Errorf("rules: %s: %w", e.Name(), err)
		}
		out[d.Name] = d
	}
	return out, nil
}

// FromConstraints turns a design's own bound and tolerance constraints into
// a deck named "constraints". Interface constraints become expression rules
// the engine cannot evaluate, so they fail open.
func FromConstraints(cs []intent.Constraint) Deck {
	d := Deck{Name: "constraints", Version: "intent", Title: "Design constraints"}
	for i, c := range cs {
		param := intent.CanonicalKey(c.Parameter)
		id := fmt.Sprintf("CON-%03d", i+1)
		sev := c.Severity
		if sev == "" {
			sev = intent.SeverityBlocker
		}
		add := func(suffix, op string, threshold float64) {
			d.Rules = append(d.Rules, Rule{
				ID:        id + suffix,
				Title:     fmt.Sprintf("%s %s", param, c.Kind),
				Severity:  sev,
				Parameter: param,
				Operator:  op,
				Threshold: threshold,
				Rationale: c.Note,
			})
		}
		switch c.Kind {
		case intent.ConstraintBound:
			if c.Min != nil {
				add("-min", ">=", *c.Min)
			}
			if c.Max != nil {
				add("-max", "<=", *c.Max)
			}
		case intent.ConstraintTolerance:
			add("-lo", ">=", c.Nominal-c.PlusMinus)
			add("-hi", "<=", c.Nominal+c.PlusMinus)
		case intent.ConstraintInterface:
			d.Rules = append(d.Rules, Rule{
				ID:         id,
				Title:      fmt.Sprintf("%s interface", param),
				Severity:   sev,
				Expression: "interface:" + c.Interface,
				Operator:   "==",
				Threshold:  1,
				Rationale:  c.Note,
			})
		}
	}
	return d
}

func sortedNames(decks map[string]Deck) []string {
	names := make([]string, 0, len(decks))
	for n := range decks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
