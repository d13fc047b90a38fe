package compiler

import (
	"context"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/logging"
	"github.com/chazu/partforge/pkg/solver"
	"github.com/chazu/partforge/pkg/variants"
)

// FollowUp resolves a follow-up command ("make it lighter", "change to
// steel", "find a bolt for 2kN") against the previous design, merges the
// change, recompiles, and runs whatever stage the command asks for. With no
// previous design the change applies to a default box.
//
// Text the resolver does not recognise leaves the design unchanged; the
// previous design is recompiled and the returned Delta is empty. The slot
// only advances when the compile succeeds.
//
// A solve on a shape with no component search falls back to simulation.
func (c *Compiler) FollowUp(ctx context.Context, text string) (Result, error) {
	c.metrics.RecordCompile(ctx, "follow_up")
	prev, ok := c.slot.Get()
	delta := intent.ResolveCommand(text, prev)

	d := prev
	if !delta.IsEmpty() || !ok {
		d = c.slot.Preview(delta)
	}
	fctx := logging.WithFields(ctx, logging.Fields{DesignID: d.ID, Revision: d.Revision})
	c.log.InfoContext(fctx, "follow-up resolved", "text", text, "action", delta.Action, "reason", delta.Reason)

	res, err := c.compile(ctx, d)
	if err != nil {
		return Result{}, err
	}
	c.slot.Set(res.Design)
	res.Delta = &delta

	if delta.Action == intent.ActionSolve && !solver.Supports(solverClass(res)) {
		c.log.InfoContext(fctx, "no component search for shape; simulating instead", "shape", res.Spec.ShapeType)
		delta.Action = intent.ActionSimulate
	}
	switch delta.Action {
	case intent.ActionSolve:
		sr := c.Solve(ctx, SolveRequestFor(res))
		res.Solver = &sr
	case intent.ActionRegenerateVariants:
		res.Variants = c.Variants(ctx, res.Design)
	}
	return res, nil
}

// SolveRequestFor derives a solver request from a compiled design: the
// component class the follow-up named or else the one its shape implies,
// its load and primary material, and its acceptance safety factor.
func SolveRequestFor(res Result) solver.Request {
	return solver.Request{
		Class:    solverClass(res),
		LoadN:    res.Design.Parameters.Number(intent.KeyLoad, 0),
		Material: res.Design.PrimaryMaterial(),
		TargetSF: res.Design.Acceptance.MinSafetyFactor,
	}
}

func solverClass(res Result) string {
	if res.Delta != nil && res.Delta.Class != "" {
		return string(res.Delta.Class)
	}
	switch res.Spec.ShapeType {
	case intent.Bolt, intent.Stud:
		return solver.ClassBolt
	// load-bearing prismatic parts are sized like a plate
	case intent.Plate, intent.Bracket, intent.Box, intent.Cube, intent.MotorMount,
		intent.Wedge, intent.IBeam, intent.TBeam, intent.CChannel, intent.Enclosure:
		return solver.ClassPlate
	}
	if d := res.Design; d.PartClass != "" {
		return d.PartClass
	}
	return string(res.Spec.ShapeType)
}

// Solve runs the standard-component search. A zero target safety factor
// uses the configured one.
func (c *Compiler) Solve(ctx context.Context, req solver.Request) solver.Result {
	if req.TargetSF <= 0 {
		req.TargetSF = c.cfg.TargetSF
	}
	done := c.metrics.Time(ctx, "solve")
	r := solver.Solve(req)
	done()
	c.metrics.RecordSolver(ctx, r.Class, r.Iterations, r.Found)
	c.log.InfoContext(logging.WithFields(ctx, logging.Fields{Stage: "solve"}), "solver finished",
		"class", r.Class,
		"designation", r.Designation,
		"safety_factor", r.SafetyFactor,
		"iterations", r.Iterations,
	)
	return r
}

// Variants derives strategy variants of d. Without strategies, a design
// carrying a load gets every strategy and one without gets the core three.
func (c *Compiler) Variants(ctx context.Context, d intent.DesignIntent, strategies ...variants.Strategy) []variants.Variant {
	if len(strategies) == 0 {
		strategies = variants.CoreStrategies
		if d.Parameters.Number(intent.KeyLoad, 0) > 0 {
			strategies = variants.AllStrategies
		}
	}
	defer c.metrics.Time(ctx, "variants")()
	return variants.Generate(d, strategies...)
}
