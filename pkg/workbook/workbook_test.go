package workbook

import (
	"bytes"
	"testing"

	"github.com/chazu/partforge/pkg/compiler"
	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/rules"
	"github.com/chazu/partforge/pkg/sim"
	"github.com/chazu/partforge/pkg/variants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sheet(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, writeRows(f, f.GetSheetName(0), rows))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

func TestImportParameters(t *testing.T) {
	buf := sheet(t, [][]any{
		{"parameter", "value"},
		{"part_class", "bracket"},
		{"profile", "cnc"},
		{"Length", 150},
		{"wall thickness", 2.5},
		{"width", ""},
		{"", 99},
		{"finish", "anodized"},
		{"material", "aluminium"},
		{"max_mass_g", 300},
		{"min_safety_factor", 1.5},
	})

	d, err := ImportParameters(buf)
	require.NoError(t, err)
	assert.Equal(t, "bracket", d.PartClass)
	assert.Equal(t, "cnc", d.Profile)
	assert.Equal(t, 150.0, d.Parameters.Number(intent.KeyLength, 0))
	assert.Equal(t, 2.5, d.Parameters.Number(intent.KeyWallThickness, 0))
	assert.False(t, d.Parameters.Has(intent.KeyWidth), "blank cells are skipped")
	assert.Equal(t, "anodized", d.Parameters.String("finish", ""))
	assert.Equal(t, []string{"Aluminum 6061-T6"}, d.Materials)
	assert.Equal(t, 300.0, d.Acceptance.MaxMassG)
	assert.Equal(t, 1.5, d.Acceptance.MinSafetyFactor)
	assert.NotEmpty(t, d.ID)
}

func TestImportMaterialsList(t *testing.T) {
	d, err := ImportParameters(sheet(t, [][]any{
		{"materials", "steel, titanium,unobtainium"},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Steel 1018", "Titanium Ti-6Al-4V", "unobtainium"}, d.Materials)
}

func TestImportMaterialKeepsOthers(t *testing.T) {
	d, err := ImportParameters(sheet(t, [][]any{
		{"materials", "steel, PLA"},
		{"material", "PLA"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "PLA", d.PrimaryMaterial())
	assert.Equal(t, []string{"PLA", "Steel 1018"}, d.Materials)
}

func TestImportBadThreshold(t *testing.T) {
	_, err := ImportParameters(sheet(t, [][]any{
		{"parameter", "value"},
		{"max_mass_g", "heavy"},
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "max_mass_g")
}

func TestImportNotAWorkbook(t *testing.T) {
	_, err := ImportParameters(bytes.NewBufferString("length,100\n"))
	assert.Error(t, err)
}

func result() compiler.Result {
	d := intent.NewDesignIntent("plate")
	d.Parameters.SetNumber(intent.KeyLength, 100)
	d.Parameters.SetNumber(intent.KeyThickness, 5)
	d.Acceptance.MinSafetyFactor = 1.5
	return compiler.Result{
		Design: d,
		Simulation: []sim.Result{
			{Material: "Aluminum 6061-T6", MassG: 67.5, SafetyFactor: 1.15},
			{Material: "Steel 1018", MassG: 196.25, SafetyFactor: 1.55},
		},
		Variants: []variants.Variant{
			{Strategy: variants.Strength, Material: "Aluminum 6061-T6", MassG: 101.25, Insights: variants.Insights{Risk: variants.RiskLow}},
		},
		Tradeoff: variants.TradeoffAnalysis{
			Scenarios: []variants.Scenario{
				{Name: "Aluminum 6061-T6", ParetoOptimal: true},
				{Name: "Steel 1018", ParetoOptimal: true, MeetsThresholds: true},
			},
			Recommended: "Steel 1018",
		},
		Rules: rules.Result{
			Warnings: []rules.Finding{{RuleID: "CNC-002", Severity: intent.SeverityWarn, Title: "fillet radius"}},
			Blockers: []rules.Finding{{RuleID: "CON-001-min", Severity: intent.SeverityBlocker, Title: "thickness bound"}},
		},
	}
}

func TestWriteComparison(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, result()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetParameters, SheetSimulation, SheetVariants, SheetTradeoff, SheetRules}, f.GetSheetList())

	simRows, err := f.GetRows(SheetSimulation)
	require.NoError(t, err)
	require.Len(t, simRows, 3)
	assert.Equal(t, "material", simRows[0][0])
	assert.Equal(t, "Steel 1018", simRows[2][0])

	trade, err := f.GetRows(SheetTradeoff)
	require.NoError(t, err)
	require.Len(t, trade, 3)
	assert.Equal(t, "TRUE", trade[2][7])
	assert.Equal(t, "FALSE", trade[1][7])

	ruleRows, err := f.GetRows(SheetRules)
	require.NoError(t, err)
	require.Len(t, ruleRows, 3)
	assert.Equal(t, "CON-001-min", ruleRows[1][0], "blockers come first")

	variantRows, err := f.GetRows(SheetVariants)
	require.NoError(t, err)
	assert.Equal(t, "strength", variantRows[1][0])
}

func TestComparisonReimports(t *testing.T) {
	res := result()
	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, res))

	d, err := ImportParameters(&buf)
	require.NoError(t, err)
	assert.Equal(t, "plate", d.PartClass)
	assert.Equal(t, 100.0, d.Parameters.Number(intent.KeyLength, 0))
	assert.Equal(t, 5.0, d.Parameters.Number(intent.KeyThickness, 0))
	assert.Equal(t, res.Design.Materials, d.Materials)
	assert.Equal(t, 1.5, d.Acceptance.MinSafetyFactor)
}
