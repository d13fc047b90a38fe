package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/chazu/partforge/pkg/compiler"
	"github.com/chazu/partforge/pkg/intent"
	"github.com/chazu/partforge/pkg/rules"
	"github.com/chazu/partforge/pkg/sim"
	"github.com/chazu/partforge/pkg/solver"
	"github.com/chazu/partforge/pkg/variants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }

func compiled() compiler.Result {
	d := intent.NewDesignIntent("bracket")
	return compiler.Result{
		Design: d,
		Simulation: []sim.Result{
			{Material: "Aluminum 6061-T6", MassG: 67.5, StressMPa: 240, SafetyFactor: 1.15},
			{Material: "Steel 1018", MassG: 196.25, StressMPa: 240, SafetyFactor: 1.55},
		},
		Tradeoff: variants.TradeoffAnalysis{Recommended: "Steel 1018", Conflicts: [][2]string{{"mass", "cost"}}},
		Solver: &solver.Result{
			Class: "bolt", Designation: "M14", Material: "Steel 1018", TargetSF: 1.5, Found: true,
			Log: []string{"M12: SF 1.32", "M14: SF 1.71 -> selected"},
		},
		Variants: []variants.Variant{{Strategy: variants.Weight, MassG: 47.25, Insights: variants.Insights{Risk: variants.RiskMedium}}},
	}
}

func TestSummarize(t *testing.T) {
	clean := Summarize(compiled())
	assert.True(t, clean.Compliant)
	assert.Equal(t, RiskClean, clean.RiskScore)
	assert.Zero(t, clean.Violations)
	assert.Empty(t, clean.Suggestions)

	res := compiled()
	res.Rules = rules.Result{
		Warnings: []rules.Finding{{RuleID: "CNC-002", Title: "fillet radius", Actual: "0.2", Expected: ">= 0.5", Severity: intent.SeverityWarn}},
	}
	warned := Summarize(res)
	assert.True(t, warned.Compliant, "warnings do not break compliance")
	assert.Equal(t, RiskWithViolations, warned.RiskScore)

	res.Rules.Blockers = []rules.Finding{{RuleID: "CNC-001", Title: "wall thickness", Actual: "1", Expected: ">= 1.5", Severity: intent.SeverityBlocker}}
	blocked := Summarize(res)
	assert.False(t, blocked.Compliant)
	assert.Equal(t, 2, blocked.Violations)
	require.Len(t, blocked.Suggestions, 2)
	assert.Equal(t, "CNC-001: wall thickness is 1, needs >= 1.5", blocked.Suggestions[0])
}

func TestWrite(t *testing.T) {
	res := compiled()
	res.Rules.Blockers = []rules.Finding{{RuleID: "CON-001-min", Title: "thickness bound", Actual: "5", Expected: ">= 6", Severity: intent.SeverityBlocker}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res, Options{Project: "Mount", Author: "QA", Now: fixed, Uncompressed: true}))

	out := buf.String()
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	for _, want := range []string{
		"Project: Mount",
		"Date: 2026-03-14",
		"Compliance: no",
		"Risk score: 0.8",
		"CON-001-min",
		"Recommended material: Steel 1018",
		"M14: SF 1.71 -> selected",
		"weight",
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteDefaultsProjectToPartClass(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, compiled(), Options{Now: fixed, Uncompressed: true}))
	assert.Contains(t, buf.String(), "Project: bracket")
	assert.Contains(t, buf.String(), "No violations detected.")
}

func TestWriteCompressed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, compiled(), Options{Now: fixed}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.NotContains(t, buf.String(), "Recommended material")
}
