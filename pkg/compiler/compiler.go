// Package compiler runs the design-intent pipeline: parse, normalize,
// synthesize, then rule checking and simulation side by side, and finally
// trade-off ranking, variants and component solving on request.
//
// Engineering ambiguity never fails a compilation. Errors are returned only
// for a cancelled context or a script that does not evaluate.
package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/chazu/partforge/pkg/config"
	"github.com/chazu/partforge/pkg/engine"
	"github.com/chazu/partforge/pkg/estimate"
	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/kernel"
	"github.com/chazu/partforge/pkg/kernel/sdfx"
	"github.com/chazu/partforge/pkg/logging"
	"github.com/chazu/partforge/pkg/materials"
	"github.com/chazu/partforge/pkg/metrics"
	"github.com/chazu/partforge/pkg/normalize"
	"github.com/chazu/partforge/pkg/rules"
	"github.com/chazu/partforge/pkg/sim"
	"github.com/chazu/partforge/pkg/solver"
	"github.com/chazu/partforge/pkg/synth"
	"github.com/chazu/partforge/pkg/variants"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// DefaultRemovalRate is the material removal rate, in mm^3/min, used for
// machining-time estimates.
const DefaultRemovalRate = 1200.0

// Result is everything one compilation produced.
type Result struct {
	// Parsed is set when the design came from text.
	Parsed   *intent.ParsedIntent    `json:"parsed,omitempty"`
	Design   intent.DesignIntent     `json:"design"`
	Spec     normalize.GeometrySpec  `json:"spec"`
	Geometry synth.GeneratedGeometry `json:"geometry"`
	Rules    rules.Result            `json:"rules"`
	// Simulation holds one result per candidate material, the design's
	// primary material first.
	Simulation []sim.Result              `json:"simulation"`
	Tradeoff   variants.TradeoffAnalysis `json:"tradeoff"`
	Estimate   estimate.Estimate         `json:"estimate"`
	Machining  float64                   `json:"machiningMinutes,omitempty"`
	Variants   []variants.Variant        `json:"variants,omitempty"`
	Solver     *solver.Result            `json:"solver,omitempty"`
	Delta      *intent.Delta             `json:"delta,omitempty"`
	Warnings   []engine.EvalWarning      `json:"-"`
}

// Primary returns the simulation result of the design's primary material.
func (r Result) Primary() (sim.Result, bool) {
	if len(r.Simulation) == 0 {
		return sim.Result{}, false
	}
	return r.Simulation[0], true
}

// Compiler holds the long-lived pieces of the pipeline. It is safe for
// concurrent use. Follow-ups share one slot: concurrent follow-ups are
// serialized by it but not reconciled, so give each session its own
// Compiler.
type Compiler struct {
	cfg     config.Config
	kernel  kernel.Kernel
	rules   *rules.Engine
	cache   *geometryCache
	log     *slog.Logger
	metrics *metrics.Pipeline
	slot    intent.Slot
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithKernel replaces the sdfx kernel.
func WithKernel(k kernel.Kernel) Option {
	return func(c *Compiler) { c.kernel = k }
}

// WithLogger sets the logger; the default logger is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) { c.log = l }
}

// WithMetrics sets the instrument set.
func WithMetrics(m *metrics.Pipeline) Option {
	return func(c *Compiler) { c.metrics = m }
}

// WithRules replaces the rule engine, e.g. one with extra decks.
func WithRules(e *rules.Engine) Option {
	return func(c *Compiler) { c.rules = e }
}

// New builds a compiler from cfg.
func New(cfg config.Config, opts ...Option) (*Compiler, error) {
	c := &Compiler{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.kernel == nil {
		c.kernel = sdfx.New(sdfx.WithMeshCells(cfg.MeshCells))
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.rules == nil {
		e, err := rules.New()
		if err != nil {
			return nil, fmt.Errorf("compiler: rules: %w", err)
		}
		c.rules = e
	}
	if c.metrics == nil {
		m, err := metrics.New()
		if err != nil {
			return nil, fmt.Errorf("compiler: metrics: %w", err)
		}
		c.metrics = m
	}
	cache, err := newGeometryCache(cfg.GeometryCache)
	if err != nil {
		return nil, fmt.Errorf("compiler: geometry cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

// CompileText parses a free-text request and compiles it. The resulting
// design becomes the target of later follow-ups.
func (c *Compiler) CompileText(ctx context.Context, text string) (Result, error) {
	c.metrics.RecordCompile(ctx, "text")
	done := c.metrics.Time(ctx, "parse")
	p := intent.Parse(text)
	done()

	d := p.ToDesignIntent()
	c.log.DebugContext(ctx, "parsed request",
		"primitive", p.Primitive,
		"confidence", p.Confidence,
		"material", p.Material,
	)
	res, err := c.compile(ctx, d)
	if err != nil {
		return Result{}, err
	}
	res.Parsed = &p
	c.slot.Set(res.Design)
	return res, nil
}

// Compile runs the pipeline over an authored design and makes it the
// target of later follow-ups.
func (c *Compiler) Compile(ctx context.Context, d intent.DesignIntent) (Result, error) {
	c.metrics.RecordCompile(ctx, "intent")
	res, err := c.compile(ctx, d)
	if err != nil {
		return Result{}, err
	}
	c.slot.Set(res.Design)
	return res, nil
}

// CompileScript evaluates an authoring script and compiles the design it
// declares. Script errors are returned as the engine reports them.
func (c *Compiler) CompileScript(ctx context.Context, source string) (Result, []engine.EvalError, error) {
	c.metrics.RecordCompile(ctx, "script")
	done := c.metrics.Time(ctx, "evaluate")
	// an engine only returns its newest evaluation, so each call gets its own
	ev, err := engine.NewEngine().EvaluateFull(source)
	done()
	if err != nil {
		return Result{}, nil, fmt.Errorf("compiler: %w", err)
	}
	if len(ev.Errors) > 0 {
		return Result{}, ev.Errors, nil
	}
	for _, w := range ev.Warnings {
		c.log.WarnContext(ctx, "script warning", "form", w.Form, "message", w.Message)
	}
	res, err := c.compile(ctx, *ev.Design)
	if err != nil {
		return Result{}, nil, err
	}
	res.Warnings = ev.Warnings
	c.slot.Set(res.Design)
	return res, nil, nil
}

// Previous returns the design follow-ups apply to.
func (c *Compiler) Previous() (intent.DesignIntent, bool) { return c.slot.Get() }

// Reset forgets the previous design.
func (c *Compiler) Reset() { c.slot.Clear() }

func (c *Compiler) compile(ctx context.Context, d intent.DesignIntent) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	d = d.Clone()
	d.Parameters = d.Parameters.Canonical()
	ctx = logging.WithFields(ctx, logging.Fields{
		DesignID:  d.ID,
		Revision:  d.Revision,
		Component: "partforge.compiler",
	})

	res := Result{Design: d}

	done := c.metrics.Time(ctx, "normalize")
	res.Spec = normalize.Normalize(normalize.FromDesignIntent(d))
	done()
	c.log.DebugContext(logging.WithFields(ctx, logging.Fields{Stage: "normalize"}), "classified shape",
		"shape", res.Spec.ShapeType, "by", res.Spec.ClassifiedBy)

	done = c.metrics.Time(ctx, "synthesize")
	res.Geometry = c.synthesize(ctx, res.Spec)
	done()
	if res.Geometry.Metadata.Degraded {
		c.log.WarnContext(ctx, "geometry degraded", "features", res.Geometry.Metadata.Features)
	}

	params := ruleParams(d, res.Spec)
	in := sim.FromParams(params)
	in.VolumeMM3 = res.Geometry.Metadata.VolumeMM3
	candidates := c.candidates(d)

	// rules and simulation read the same snapshot and share nothing else
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer c.metrics.Time(gctx, "rules")()
		res.Rules = c.checkRules(gctx, d, params)
		return nil
	})
	g.Go(func() error {
		defer c.metrics.Time(gctx, "simulate")()
		res.Simulation = sim.RunAll(in, candidates)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	done = c.metrics.Time(ctx, "tradeoff")
	res.Tradeoff = variants.Analyze(res.Simulation, in.LoadN, d.Acceptance)
	done()

	mat, _ := materials.Resolve(d.PrimaryMaterial())
	res.Estimate = estimate.ImpactOf(mat, res.Geometry.Metadata.VolumeMM3)
	if mat.Machinable {
		removed := estimate.RemovedVolume(stockVolume(res.Geometry), res.Geometry.Metadata.VolumeMM3)
		res.Machining = round2(estimate.MachiningTime(removed, DefaultRemovalRate))
	}

	c.log.InfoContext(ctx, "compiled design",
		"shape", res.Spec.ShapeType,
		"volume_mm3", res.Geometry.Metadata.VolumeMM3,
		"mass_g", res.Geometry.Metadata.MassG,
		"blockers", len(res.Rules.Blockers),
		"warnings", len(res.Rules.Warnings),
		"recommended", res.Tradeoff.Recommended,
	)
	return res, ctx.Err()
}

func (c *Compiler) synthesize(ctx context.Context, spec normalize.GeometrySpec) synth.GeneratedGeometry {
	key := fingerprint(spec)
	if key == "" {
		return synth.Synthesize(spec, c.kernel)
	}
	if g, ok := c.cache.get(key); ok {
		c.metrics.RecordCacheLookup(ctx, true)
		return g
	}
	c.metrics.RecordCacheLookup(ctx, false)
	g := synth.Synthesize(spec, c.kernel)
	c.cache.add(key, g)
	return g
}

func (c *Compiler) checkRules(ctx context.Context, d intent.DesignIntent, params intent.Params) rules.Result {
	decks := append([]string(nil), c.cfg.RuleDecks...)
	if d.Profile != "" {
		if _, ok := c.rules.Deck(d.Profile); ok && !lo.Contains(decks, d.Profile) {
			decks = append(decks, d.Profile)
		}
	}
	res := c.rules.Evaluate(params, decks...)
	if len(d.Constraints) > 0 {
		res = res.Merge(c.rules.EvaluateDeck(params, rules.FromConstraints(d.Constraints)))
	}
	if len(res.Unevaluated) > 0 {
		c.log.WarnContext(logging.WithFields(ctx, logging.Fields{Stage: "rules"}),
			"rules failed open; check the deck configuration", "rules", res.Unevaluated)
	}
	c.metrics.RecordViolations(ctx, len(res.Blockers), len(res.Warnings))
	return res
}

// candidates lists the materials to simulate: the design's own, topped up
// with the configured set when it names only one.
func (c *Compiler) candidates(d intent.DesignIntent) []string {
	var out []string
	seen := map[string]bool{}
	add := func(name string) {
		key := materials.Canonical(name)
		if key == "" {
			key = name
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, name)
		}
	}
	add(d.PrimaryMaterial())
	for _, m := range d.Materials {
		add(m)
	}
	if len(out) < 2 {
		for _, m := range c.cfg.Materials {
			add(m)
		}
	}
	return out
}

// ruleParams is the parameter snapshot rules and simulation read: the
// design's parameters, topped up with the normalized dimensions, with the
// primary material resolved.
func ruleParams(d intent.DesignIntent, spec normalize.GeometrySpec) intent.Params {
	p := d.Parameters.Clone()
	for k, v := range spec.Dims {
		if !p.Has(k) {
			p.SetNumber(k, v)
		}
	}
	if m := materials.Canonical(d.PrimaryMaterial()); m != "" {
		p.SetString(intent.KeyMaterial, m)
	} else {
		p.SetString(intent.KeyMaterial, d.PrimaryMaterial())
	}
	return p
}

// stockVolume is the bounding-box billet of the meshed part.
func stockVolume(g synth.GeneratedGeometry) float64 {
	var lo, hi [3]float32
	seen := false
	for _, m := range g.Meshes {
		if m == nil || m.IsEmpty() {
			continue
		}
		mn, mx := m.Bounds()
		for a := 0; a < 3; a++ {
			if !seen || mn[a] < lo[a] {
				lo[a] = mn[a]
			}
			if !seen || mx[a] > hi[a] {
				hi[a] = mx[a]
			}
		}
		seen = true
	}
	if !seen {
		return g.Metadata.VolumeMM3
	}
	return float64(hi[0]-lo[0]) * float64(hi[1]-lo[1]) * float64(hi[2]-lo[2])
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
