package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/partforge/pkg/intent"
)

// Handler computes the value of a named expression. ok is false when the
// expression does not apply to the parameters (the rule is skipped).
type Handler func(p intent.Params) (value float64, ok bool)

// Finding is one failed rule.
type Finding struct {
	RuleID    string          `json:"ruleId"`
	Deck      string          `json:"deck"`
	Title     string          `json:"title"`
	Severity  intent.Severity `json:"severity"`
	Actual    string          `json:"actual"`
	Expected  string          `json:"expected"`
	Rationale string          `json:"rationale"`
	Citation  string          `json:"citation,omitempty"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s %s: %s (actual %s, expected %s)", f.Severity, f.RuleID, f.Title, f.Actual, f.Expected)
}

// Result buckets findings by severity.
type Result struct {
	Blockers []Finding `json:"blockers"`
	Warnings []Finding `json:"warnings"`
	Info     []Finding `json:"info"`
	// Evaluated counts rules that applied and were decided.
	Evaluated int `json:"evaluated"`
	// Unevaluated lists rules (or decks) that failed open.
	Unevaluated []string `json:"unevaluated,omitempty"`
}

// Compliant reports whether no blocker fired.
func (r Result) Compliant() bool { return len(r.Blockers) == 0 }

// Violations is the number of blockers and warnings.
func (r Result) Violations() int { return len(r.Blockers) + len(r.Warnings) }

// All returns every finding, blockers first.
func (r Result) All() []Finding {
	out := make([]Finding, 0, len(r.Blockers)+len(r.Warnings)+len(r.Info))
	out = append(out, r.Blockers...)
	out = append(out, r.Warnings...)
	return append(out, r.Info...)
}

// Merge returns r with other's findings and counts appended.
func (r Result) Merge(other Result) Result {
	out := Result{
		Blockers:  append(append([]Finding(nil), r.Blockers...), other.Blockers...),
		Warnings:  append(append([]Finding(nil), r.Warnings...), other.Warnings...),
		Info:      append(append([]Finding(nil), r.Info...), other.Info...),
		Evaluated: r.Evaluated + other.Evaluated,
	}
	out.Unevaluated = append(append(out.Unevaluated, r.Unevaluated...), other.Unevaluated...)
	return out
}

func (r *Result) add(f Finding) {
	switch f.Severity {
	case intent.SeverityBlocker:
		r.Blockers = append(r.Blockers, f)
	case intent.SeverityWarn:
		r.Warnings = append(r.Warnings, f)
	default:
		r.Info = append(r.Info, f)
	}
}

// Engine holds decks and expression handlers. It is safe for concurrent
// Evaluate calls once configured.
type Engine struct {
	decks    map[string]Deck
	handlers map[string]Handler
}

// New returns an engine with the builtin decks and handlers.
func New() (*Engine, error) {
	decks, err := BuiltinDecks()
	if err != nil {
		return nil, err
	}
	e := &Engine{decks: decks, handlers: map[string]Handler{}}
	for name, h := range builtinHandlers {
		e.handlers[name] = h
	}
	return e, nil
}

// AddDeck registers or replaces a deck.
func (e *Engine) AddDeck(d Deck) { e.decks[d.Name] = d }

// Register adds an expression handler.
func (e *Engine) Register(name string, h Handler) { e.handlers[name] = h }

// Decks returns the registered deck names in order.
func (e *Engine) Decks() []string { return sortedNames(e.decks) }

// Deck returns a registered deck.
func (e *Engine) Deck(name string) (Deck, bool) {
	d, ok := e.decks[name]
	return d, ok
}

// Evaluate runs the named decks, or every deck when none are named, against
// params. It never fails: unknown decks, expressions and operators are
// recorded in Unevaluated and otherwise treated as passed.
func (e *Engine) Evaluate(params intent.Params, decks ...string) Result {
	if len(decks) == 0 {
		decks = e.Decks()
	}
	params = params.Canonical()
	res := Result{}
	for _, name := range decks {
		d, ok := e.decks[name]
		if !ok {
			res.Unevaluated = append(res.Unevaluated, "deck:"+name)
			continue
		}
		for _, r := range d.Rules {
			e.check(&res, d.Name, r, params)
		}
	}
	return res
}

// EvaluateDeck runs a single deck that need not be registered.
func (e *Engine) EvaluateDeck(params intent.Params, d Deck) Result {
	params = params.Canonical()
	res := Result{}
	for _, r := range d.Rules {
		e.check(&res, d.Name, r, params)
	}
	return res
}

func (e *Engine) check(res *Result, deck string, r Rule, params intent.Params) {
	finding := func(actual string) Finding {
		return Finding{
			RuleID:    r.ID,
			Deck:      deck,
			Title:     r.Title,
			Severity:  r.Severity,
			Actual:    actual,
			Expected:  r.Expected(),
			Rationale: r.Rationale,
			Citation:  r.Citation,
		}
	}

	if r.Equals != "" {
		if !params.Has(r.Parameter) {
			return
		}
		actual := params.String(r.Parameter, "")
		pass, known := compareString(actual, r.Operator, r.Equals)
		if !known {
			res.Unevaluated = append(res.Unevaluated, r.ID)
			return
		}
		res.Evaluated++
		if !pass {
			res.add(finding(actual))
		}
		return
	}

	var actual float64
	if r.Expression != "" {
		h, ok := e.handlers[r.Expression]
		if !ok {
			res.Unevaluated = append(res.Unevaluated, r.ID)
			return
		}
		if actual, ok = h(params); !ok {
			return
		}
	} else {
		if !params.HasNumber(r.Parameter) {
			return
		}
		actual = params.Number(r.Parameter, 0)
	}
	pass, known := compare(actual, r.Operator, r.Threshold)
	if !known {
		res.Unevaluated = append(res.Unevaluated, r.ID)
		return
	}
	res.Evaluated++
	if !pass {
		res.add(finding(strconv.FormatFloat(actual, 'g', 4, 64)))
	}
}

// compare reports whether actual op threshold holds. known is false for an
// unsupported operator.
func compare(actual float64, op string, threshold float64) (pass, known bool) {
	switch strings.TrimSpace(op) {
	case ">=":
		return actual >= threshold, true
	case ">":
		return actual > threshold, true
	case "<=":
		return actual <= threshold, true
	case "<":
		return actual < threshold, true
	case "==", "=":
		return actual == threshold, true
	case "!=":
		return actual != threshold, true
	}
	return false, false
}

func compareString(actual, op, want string) (pass, known bool) {
	eq := strings.EqualFold(strings.TrimSpace(actual), strings.TrimSpace(want))
	switch strings.TrimSpace(op) {
	case "==", "=", "":
		return eq, true
	case "!=":
		return !eq, true
	}
	return false, false
}
