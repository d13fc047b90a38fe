// Package workbook moves designs in and out of spreadsheets: a partially
// filled two-column parameter table becomes a DesignIntent, and a compiled
// result becomes a comparison workbook.
package workbook

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/partforge/pkg/compiler"
	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/materials"
	"github.com/xuri/excelize/v2"
)

// Row keys with a meaning beyond a plain parameter.
const (
	KeyMaterials       = "materials"
	KeyMaxMassG        = "max_mass_g"
	KeyMinSafetyFactor = "min_safety_factor"
	KeyPartClass       = "part_class"
	KeyProfile         = "profile"
)

// ImportParameters reads the first sheet of an .xlsx as (parameter, value)
// rows. A header row whose first cell is "parameter" is skipped, as is any
// row with a blank name or value. Numeric values become numbers, anything
// else a string.
func ImportParameters(r io.Reader) (intent.DesignIntent, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return intent.DesignIntent{}, fmt.Errorf("workbook: open: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return intent.DesignIntent{}, fmt.Errorf("workbook: read rows: %w", err)
	}

	d := intent.NewDesignIntent("")
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		name, value := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if i == 0 && strings.EqualFold(name, "parameter") {
			continue
		}
		if name == "" || value == "" {
			continue
		}
		if err := apply(&d, name, value); err != nil {
			return intent.DesignIntent{}, fmt.Errorf("workbook: row %d: %w", i+1, err)
		}
	}
	return d, nil
}

func apply(d *intent.DesignIntent, name, value string) error {
	switch strings.ToLower(name) {
	case intent.KeyMaterial:
		m := canonicalMaterial(value)
		d.Materials = append([]string{m}, without(d.Materials, m, materials.Default)...)
		d.Parameters.SetString(intent.KeyMaterial, m)
	case KeyMaterials:
		var ms []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ms = append(ms, canonicalMaterial(part))
			}
		}
		if len(ms) > 0 {
			d.Materials = ms
		}
	case KeyMaxMassG:
		v, err := number(name, value)
		if err != nil {
			return err
		}
		d.Acceptance.MaxMassG = v
	case KeyMinSafetyFactor:
		v, err := number(name, value)
		if err != nil {
			return err
		}
		d.Acceptance.MinSafetyFactor = v
	case KeyPartClass:
		d.PartClass = value
	case KeyProfile:
		d.Profile = value
	default:
		key := intent.CanonicalKey(name)
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			d.Parameters.SetNumber(key, v)
		} else {
			d.Parameters.SetString(key, value)
		}
	}
	return nil
}

func number(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, value)
	}
	return v, nil
}

func canonicalMaterial(name string) string {
	if c := materials.Canonical(name); c != "" {
		return c
	}
	return name
}

func without(list []string, drop ...string) []string {
	var out []string
	for _, s := range list {
		keep := true
		for _, d := range drop {
			if s == d {
				keep = false
			}
		}
		if keep {
			out = append(out, s)
		}
	}
	return out
}

// ----------------------------------------------------------------------------
// Comparison export

// Sheet names written by WriteComparison, in order.
const (
	SheetParameters = "Parameters"
	SheetSimulation = "Simulation"
	SheetVariants   = "Variants"
	SheetTradeoff   = "Tradeoff"
	SheetRules      = "Rules"
)

// WriteComparison writes a compiled result as an .xlsx. The Parameters
// sheet comes first and has the layout ImportParameters reads.
func WriteComparison(w io.Writer, res compiler.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("workbook: style: %w", err)
	}
	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetParameters, parameterRows(res.Design)},
		{SheetSimulation, simulationRows(res)},
		{SheetVariants, variantRows(res)},
		{SheetTradeoff, tradeoffRows(res)},
		{SheetRules, ruleRows(res)},
	}
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("workbook: %s: %w", s.name, err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("workbook: %s: %w", s.name, err)
		}
		if err := writeRows(f, s.name, s.rows); err != nil {
			return fmt.Errorf("workbook: %s: %w", s.name, err)
		}
		if err := f.SetRowStyle(s.name, 1, 1, bold); err != nil {
			return fmt.Errorf("workbook: %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("workbook: write: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func parameterRows(d intent.DesignIntent) [][]any {
	rows := [][]any{{"parameter", "value"}}
	if d.PartClass != "" {
		rows = append(rows, []any{KeyPartClass, d.PartClass})
	}
	if d.Profile != "" {
		rows = append(rows, []any{KeyProfile, d.Profile})
	}
	if len(d.Materials) > 0 {
		rows = append(rows, []any{KeyMaterials, strings.Join(d.Materials, ", ")})
	}
	if d.Acceptance.MaxMassG > 0 {
		rows = append(rows, []any{KeyMaxMassG, d.Acceptance.MaxMassG})
	}
	if d.Acceptance.MinSafetyFactor > 0 {
		rows = append(rows, []any{KeyMinSafetyFactor, d.Acceptance.MinSafetyFactor})
	}
	for _, k := range d.Parameters.Keys() {
		v := d.Parameters[k]
		switch v.Kind() {
		case intent.KindNumber:
			f, _ := v.Float()
			rows = append(rows, []any{k, f})
		case intent.KindString:
			if k != intent.KeyMaterial {
				rows = append(rows, []any{k, v.String()})
			}
		}
	}
	return rows
}

func simulationRows(res compiler.Result) [][]any {
	rows := [][]any{{"material", "mass_g", "stress_mpa", "safety_factor", "deflection_mm", "cost_score", "thermal", "notes"}}
	for _, s := range res.Simulation {
		rows = append(rows, []any{s.Material, s.MassG, s.StressMPa, s.SafetyFactor, s.DeflectionMM, s.CostScore, string(s.Thermal), strings.Join(s.Notes, "; ")})
	}
	return rows
}

func variantRows(res compiler.Result) [][]any {
	rows := [][]any{{"strategy", "material", "mass_g", "cost_score", "strength_score", "safety_factor", "risk", "suggestions"}}
	for _, v := range res.Variants {
		rows = append(rows, []any{string(v.Strategy), v.Material, v.MassG, v.CostScore, v.StrengthScore, v.SafetyFactor, string(v.Insights.Risk), strings.Join(v.Insights.Suggestions, "; ")})
	}
	return rows
}

func tradeoffRows(res compiler.Result) [][]any {
	rows := [][]any{{"scenario", "mass_g", "stiffness_n_per_mm", "cost", "safety_factor", "pareto_optimal", "meets_thresholds", "recommended"}}
	for _, s := range res.Tradeoff.Scenarios {
		m := s.Metrics
		rows = append(rows, []any{s.Name, m.MassG, m.Stiffness, m.Cost, m.SafetyFactor, s.ParetoOptimal, s.MeetsThresholds, s.Name == res.Tradeoff.Recommended})
	}
	return rows
}

func ruleRows(res compiler.Result) [][]any {
	rows := [][]any{{"rule", "deck", "severity", "title", "actual", "expected", "rationale"}}
	for _, f := range res.Rules.All() {
		rows = append(rows, []any{f.RuleID, f.Deck, string(f.Severity), f.Title, f.Actual, f.Expected, f.Rationale})
	}
	return rows
}
