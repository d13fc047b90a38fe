package main

import (
	"context"
	"log/slog"

	"github.com/chazu/partforge/pkg/compiler"
	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/kernel"
	"github.com/chazu/partforge/pkg/report"
	"github.com/chazu/partforge/pkg/store"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the compiler to persistence. Every successful compilation is
// stored under its design id.
type App struct {
	compiler *compiler.Compiler
	store    store.Store
	log      *slog.Logger
}

// MeshData is the JSON-serializable mesh format written for viewers.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable script error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// AppResult is what one command produced. Result is nil when the input did
// not compile.
type AppResult struct {
	Result   *compiler.Result `json:"result,omitempty"`
	Summary  *report.Summary  `json:"summary,omitempty"`
	Meshes   []MeshData       `json:"meshes"`
	Errors   []EvalErrorData  `json:"errors"`
	Warnings []string         `json:"warnings"`
}

// NewApp wires a compiler to a store.
func NewApp(c *compiler.Compiler, s store.Store, log *slog.Logger) *App {
	return &App{compiler: c, store: s, log: log}
}

// Evaluate compiles an authoring script.
func (a *App) Evaluate(ctx context.Context, source string) AppResult {
	res, evalErrs, err := a.compiler.CompileScript(ctx, source)
	if err != nil {
		a.log.ErrorContext(ctx, "evaluate failed", "error", err)
		return failed(EvalErrorData{Message: err.Error()})
	}
	if len(evalErrs) > 0 {
		out := failed()
		for _, e := range evalErrs {
			out.Errors = append(out.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return out
	}
	out := a.finish(ctx, res)
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out
}

// Describe compiles a free-text request.
func (a *App) Describe(ctx context.Context, text string) AppResult {
	res, err := a.compiler.CompileText(ctx, text)
	if err != nil {
		return failed(EvalErrorData{Message: err.Error()})
	}
	return a.finish(ctx, res)
}

// Design compiles an already structured design, e.g. one imported from a
// parameter table.
func (a *App) Design(ctx context.Context, d intent.DesignIntent) AppResult {
	res, err := a.compiler.Compile(ctx, d)
	if err != nil {
		return failed(EvalErrorData{Message: err.Error()})
	}
	return a.finish(ctx, res)
}

// FollowUp applies a follow-up command to the previous design.
func (a *App) FollowUp(ctx context.Context, text string) AppResult {
	res, err := a.compiler.FollowUp(ctx, text)
	if err != nil {
		return failed(EvalErrorData{Message: err.Error()})
	}
	out := a.finish(ctx, res)
	if res.Delta != nil && res.Delta.IsEmpty() {
		out.Warnings = append(out.Warnings, "follow-up not understood; design unchanged")
	}
	return out
}

func (a *App) finish(ctx context.Context, res compiler.Result) AppResult {
	out := AppResult{
		Meshes:   meshData(res.Geometry.Meshes),
		Errors:   []EvalErrorData{},
		Warnings: []string{},
	}
	if res.Geometry.Metadata.Degraded {
		out.Warnings = append(out.Warnings, res.Geometry.Metadata.Features...)
	}
	if err := a.store.Put(ctx, res.Design); err != nil {
		a.log.WarnContext(ctx, "design not stored", "design_id", res.Design.ID, "error", err)
		out.Warnings = append(out.Warnings, "design not stored: "+err.Error())
	}
	sum := report.Summarize(res)
	out.Result = &res
	out.Summary = &sum
	return out
}

func failed(errs ...EvalErrorData) AppResult {
	return AppResult{Meshes: []MeshData{}, Errors: append([]EvalErrorData{}, errs...), Warnings: []string{}}
}

func meshData(meshes []*kernel.Mesh) []MeshData {
	out := []MeshData{}
	for i, m := range meshes {
		if m == nil {
			continue
		}
		out = append(out, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return out
}
