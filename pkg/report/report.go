// Package report renders a compiled design as a PDF compliance report.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chazu/partforge/pkg/compiler"
	"github.com/chazu/partforge/pkg/rules"
	"github.com/phpdave11/gofpdf"
)

// Risk scores reported with and without rule violations.
const (
	RiskWithViolations = 0.8
	RiskClean          = 0.2
)

// Summary is the executive block at the top of a report.
type Summary struct {
	Compliant   bool     `json:"compliance"`
	RiskScore   float64  `json:"riskScore"`
	Violations  int      `json:"violations"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Summarize grades a result. Compliance means no blocker fired; any blocker
// or warning raises the risk score.
func Summarize(res compiler.Result) Summary {
	s := Summary{
		Compliant:  res.Rules.Compliant(),
		Violations: res.Rules.Violations(),
		RiskScore:  RiskClean,
	}
	if s.Violations > 0 {
		s.RiskScore = RiskWithViolations
	}
	findings := append(append([]rules.Finding(nil), res.Rules.Blockers...), res.Rules.Warnings...)
	for _, f := range findings {
		s.Suggestions = append(s.Suggestions, fmt.Sprintf("%s: %s is %s, needs %s", f.RuleID, f.Title, f.Actual, f.Expected))
	}
	return s
}

// Options labels the report.
type Options struct {
	Project string
	Author  string
	// Now stamps the report; time.Now when nil.
	Now func() time.Time
	// Uncompressed leaves page streams readable, for inspection and tests.
	Uncompressed bool
}

// Write renders res as an A4 PDF.
func Write(w io.Writer, res compiler.Result, opts Options) error {
	if opts.Project == "" {
		opts.Project = res.Design.PartClass
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(!opts.Uncompressed)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	r := &renderer{pdf: pdf, tr: tr}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Engineering Compliance Report")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	r.line(fmt.Sprintf("Project: %s", opts.Project))
	if opts.Author != "" {
		r.line(fmt.Sprintf("Author: %s", opts.Author))
	}
	r.line(fmt.Sprintf("Design: %s rev %d", res.Design.ID, res.Design.Revision))
	r.line(fmt.Sprintf("Date: %s", now().Format("2006-01-02")))
	pdf.Ln(4)

	sum := Summarize(res)
	r.heading("Summary")
	r.line(fmt.Sprintf("Compliance: %s", yesNo(sum.Compliant)))
	r.line(fmt.Sprintf("Risk score: %.1f", sum.RiskScore))
	r.line(fmt.Sprintf("Shape: %s, volume %.0f mm3, mass %.1f g", res.Spec.ShapeType, res.Geometry.Metadata.VolumeMM3, res.Geometry.Metadata.MassG))
	if e := res.Estimate; e.Material != "" {
		r.line(fmt.Sprintf("Estimate (%s): $%.2f, %.2f kg CO2e", e.Material, e.CostUSD, e.CarbonKg))
	}
	if res.Machining > 0 {
		r.line(fmt.Sprintf("Machining time: %.1f min", res.Machining))
	}
	if res.Geometry.Metadata.Degraded {
		r.line("Geometry: degraded to a bounding solid")
	}

	r.heading("Rule findings")
	if findings := res.Rules.All(); len(findings) == 0 {
		r.line("No violations detected.")
	} else {
		rows := make([][]string, 0, len(findings))
		for _, f := range findings {
			rows = append(rows, []string{f.RuleID, string(f.Severity), f.Title, f.Actual, f.Expected})
		}
		r.table([]string{"Rule", "Severity", "Title", "Actual", "Expected"}, []float64{30, 22, 68, 30, 30}, rows)
	}
	if len(res.Rules.Unevaluated) > 0 {
		r.line("Not evaluated: " + strings.Join(res.Rules.Unevaluated, ", "))
	}

	if len(res.Simulation) > 0 {
		r.heading("Simulation")
		rows := make([][]string, 0, len(res.Simulation))
		for _, s := range res.Simulation {
			rows = append(rows, []string{s.Material, f1(s.MassG), f1(s.StressMPa), f2(s.SafetyFactor), f2(s.DeflectionMM), f1(s.CostScore)})
		}
		r.table([]string{"Material", "Mass g", "Stress MPa", "SF", "Defl. mm", "Cost"}, []float64{50, 25, 28, 22, 28, 22}, rows)
	}

	if res.Tradeoff.Recommended != "" {
		r.heading("Recommendation")
		line := "Recommended material: " + res.Tradeoff.Recommended
		if res.Tradeoff.FellBack {
			line += " (no option meets every threshold)"
		}
		r.line(line)
		for _, c := range res.Tradeoff.Conflicts {
			r.line(fmt.Sprintf("Trade-off: %s vs %s", c[0], c[1]))
		}
	}

	if s := res.Solver; s != nil {
		r.heading("Component search")
		r.line(fmt.Sprintf("%s in %s at SF %.2f: %s", s.Class, s.Material, s.TargetSF, s.Designation))
		pdf.SetFont("Courier", "", 9)
		for _, l := range s.Log {
			r.line(l)
		}
		pdf.SetFont("Helvetica", "", 11)
	}

	if len(res.Variants) > 0 {
		r.heading("Variants")
		rows := make([][]string, 0, len(res.Variants))
		for _, v := range res.Variants {
			rows = append(rows, []string{string(v.Strategy), f1(v.MassG), f1(v.CostScore), f1(v.StrengthScore), f2(v.SafetyFactor), string(v.Insights.Risk)})
		}
		r.table([]string{"Strategy", "Mass g", "Cost", "Strength", "SF", "Risk"}, []float64{35, 28, 25, 28, 22, 25}, rows)
	}

	if len(sum.Suggestions) > 0 {
		r.heading("Suggested changes")
		for _, s := range sum.Suggestions {
			r.line("- " + s)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

type renderer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (r *renderer) heading(s string) {
	r.pdf.Ln(4)
	r.pdf.SetFont("Helvetica", "B", 13)
	r.pdf.Cell(0, 8, r.tr(s))
	r.pdf.Ln(9)
	r.pdf.SetFont("Helvetica", "", 11)
}

func (r *renderer) line(s string) {
	r.pdf.MultiCell(0, 6, r.tr(s), "", "L", false)
}

func (r *renderer) table(header []string, widths []float64, rows [][]string) {
	r.pdf.SetFont("Helvetica", "B", 10)
	for i, h := range header {
		r.pdf.CellFormat(widths[i], 7, r.tr(h), "1", 0, "L", false, 0, "")
	}
	r.pdf.Ln(-1)
	r.pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		for i, c := range row {
			r.pdf.CellFormat(widths[i], 6, r.tr(c), "1", 0, "L", false, 0, "")
		}
		r.pdf.Ln(-1)
	}
	r.pdf.SetFont("Helvetica", "", 11)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func f1(v float64) string { return fmt.Sprintf("%.1f", v) }
func f2(v float64) string { return fmt.Sprintf("%.2f", v) }
