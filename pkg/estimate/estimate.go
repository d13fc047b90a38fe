// Package estimate prices a part and its carbon footprint from material and
// volume, and estimates machining time.
package estimate

import (
	"math"

	"github.com/chazu/partforge/pkg/materials"
)

// Epsilon replaces a zero or negative removal rate.
const Epsilon = 1e-9

// ManufacturingFactor is manufacturing cost as a multiple of material cost.
const ManufacturingFactor = 3.0

// Estimate is the cost and environmental impact of one part.
type Estimate struct {
	Material          string  `json:"material"`
	MassG             float64 `json:"massG"`
	MaterialCost      float64 `json:"materialCostUsd"`
	ManufacturingCost float64 `json:"manufacturingCostUsd"`
	CostUSD           float64 `json:"costUsd"`
	CarbonKg          float64 `json:"carbonKg"`
}

// Impact estimates a part of volumeMM3 in the named material. It reports
// false when the material is unknown.
func Impact(material string, volumeMM3 float64) (Estimate, bool) {
	m, ok := materials.Lookup(material)
	if !ok {
		return Estimate{}, false
	}
	return ImpactOf(m, volumeMM3), true
}

// ImpactOf is Impact for a resolved material.
func ImpactOf(m materials.Material, volumeMM3 float64) Estimate {
	massG := math.Max(volumeMM3, 0) / 1000 * m.Density
	massKg := massG / 1000
	mat := massKg * m.CostPerKg
	mfg := mat * ManufacturingFactor
	return Estimate{
		Material:          m.Name,
		MassG:             round(massG, 2),
		MaterialCost:      round(mat, 2),
		ManufacturingCost: round(mfg, 2),
		CostUSD:           round(mat+mfg, 2),
		CarbonKg:          round(massKg*m.CO2PerKg, 2),
	}
}

// MachiningTime is the minutes needed to remove removedMM3 at
// rateMM3PerMin.
func MachiningTime(removedMM3, rateMM3PerMin float64) float64 {
	if rateMM3PerMin <= 0 {
		rateMM3PerMin = Epsilon
	}
	return math.Max(removedMM3, 0) / rateMM3PerMin
}

// RemovedVolume is the stock removed when a part of volumeMM3 is cut from
// its bounding-box billet.
func RemovedVolume(stockMM3, volumeMM3 float64) float64 {
	return math.Max(stockMM3-volumeMM3, 0)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
