// Command partforge compiles a design request end to end: free text, an
// authoring script or a parameter table goes in; rule findings, per-material
// simulation, a recommendation and optional PDF, workbook and mesh files
// come out. Follow-up commands refine the design in the same run.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chazu/partforge/pkg/compiler"
	"github.com/chazu/partforge/pkg/config"
	"github.com/chazu/partforge/pkg/logging"
	"github.com/chazu/partforge/pkg/metrics"
	"github.com/chazu/partforge/pkg/report"
	"github.com/chazu/partforge/pkg/store"
	"github.com/chazu/partforge/pkg/workbook"
)

type followUps []string

func (f *followUps) String() string     { return strings.Join(*f, "; ") }
func (f *followUps) Set(v string) error { *f = append(*f, v); return nil }

type options struct {
	text      string
	script    string
	params    string
	followUps followUps
	pdf       string
	xlsx      string
	meshes    string
	asJSON    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.text, "text", "", "free-text design request")
	flag.StringVar(&opts.script, "script", "", "authoring script file")
	flag.StringVar(&opts.params, "params", "", "parameter table (.xlsx)")
	flag.Var(&opts.followUps, "then", "follow-up command (repeatable)")
	flag.StringVar(&opts.pdf, "pdf", "", "write a compliance report to this file")
	flag.StringVar(&opts.xlsx, "xlsx", "", "write a comparison workbook to this file")
	flag.StringVar(&opts.meshes, "meshes", "", "write meshes as JSON to this file")
	flag.BoolVar(&opts.asJSON, "json", false, "print the final result as JSON")
	flag.Parse()
	if opts.text == "" && flag.NArg() > 0 {
		opts.text = strings.Join(flag.Args(), " ")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "partforge:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.Setup(cfg)

	m, err := metrics.New()
	if err != nil {
		return err
	}
	c, err := compiler.New(cfg, compiler.WithLogger(log), compiler.WithMetrics(m))
	if err != nil {
		return err
	}
	s, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer s.Close()
	app := NewApp(c, s, log)

	out, err := first(ctx, app, opts)
	if err != nil {
		return err
	}
	if len(out.Errors) > 0 {
		for _, e := range out.Errors {
			fmt.Fprintf(stdout, "error (line %d): %s\n", e.Line, e.Message)
		}
		return errors.New("input did not compile")
	}
	printSummary(stdout, "", out)

	for _, text := range opts.followUps {
		next := app.FollowUp(ctx, text)
		if len(next.Errors) > 0 {
			return fmt.Errorf("follow-up %q: %s", text, next.Errors[0].Message)
		}
		out = next
		printSummary(stdout, text, out)
	}

	res := *out.Result
	if len(res.Variants) == 0 {
		res.Variants = c.Variants(ctx, res.Design)
	}
	return writeOutputs(opts, res, out, stdout)
}

func first(ctx context.Context, app *App, opts options) (AppResult, error) {
	switch {
	case opts.script != "":
		src, err := os.ReadFile(opts.script)
		if err != nil {
			return AppResult{}, err
		}
		return app.Evaluate(ctx, string(src)), nil
	case opts.params != "":
		f, err := os.Open(opts.params)
		if err != nil {
			return AppResult{}, err
		}
		defer f.Close()
		d, err := workbook.ImportParameters(f)
		if err != nil {
			return AppResult{}, err
		}
		return app.Design(ctx, d), nil
	case opts.text != "":
		return app.Describe(ctx, opts.text), nil
	}
	return AppResult{}, errors.New("nothing to compile: pass -text, -script or -params")
}

func printSummary(w io.Writer, followUp string, out AppResult) {
	res := out.Result
	if followUp != "" {
		fmt.Fprintf(w, "\n> %s\n", followUp)
	}
	fmt.Fprintf(w, "design %s rev %d: %s, %.0f mm3, %.1f g\n",
		res.Design.ID, res.Design.Revision, res.Spec.ShapeType,
		res.Geometry.Metadata.VolumeMM3, res.Geometry.Metadata.MassG)
	fmt.Fprintf(w, "compliance: %t, risk %.1f, %d violation(s)\n",
		out.Summary.Compliant, out.Summary.RiskScore, out.Summary.Violations)
	for _, f := range res.Rules.All() {
		fmt.Fprintf(w, "  %s\n", f)
	}
	for _, s := range res.Simulation {
		fmt.Fprintf(w, "  %-22s SF %6.2f  mass %8.1f g  defl %.3f mm\n", s.Material, s.SafetyFactor, s.MassG, s.DeflectionMM)
	}
	if res.Tradeoff.Recommended != "" {
		fmt.Fprintf(w, "recommended: %s\n", res.Tradeoff.Recommended)
	}
	if res.Solver != nil {
		fmt.Fprintf(w, "solver: %s %s (SF %.2f after %d tries)\n", res.Solver.Class, res.Solver.Designation, res.Solver.SafetyFactor, res.Solver.Iterations)
	}
	for _, v := range res.Variants {
		fmt.Fprintf(w, "  variant %-9s mass %7.1f g  strength %6.1f  risk %s\n", v.Strategy, v.MassG, v.StrengthScore, v.Insights.Risk)
	}
	for _, warn := range out.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}

func writeOutputs(opts options, res compiler.Result, out AppResult, stdout io.Writer) error {
	if opts.pdf != "" {
		if err := writeFile(opts.pdf, func(w io.Writer) error {
			return report.Write(w, res, report.Options{Project: res.Design.PartClass})
		}); err != nil {
			return err
		}
	}
	if opts.xlsx != "" {
		if err := writeFile(opts.xlsx, func(w io.Writer) error {
			return workbook.WriteComparison(w, res)
		}); err != nil {
			return err
		}
	}
	if opts.meshes != "" {
		if err := writeFile(opts.meshes, func(w io.Writer) error {
			return json.NewEncoder(w).Encode(out.Meshes)
		}); err != nil {
			return err
		}
	}
	if opts.asJSON {
		res.Geometry.Meshes = nil
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
