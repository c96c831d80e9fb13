package estimate

import (
	"fmt"
	"math"
)

// Quantity thumb rules per sq ft per floor, and the fixed price bands of the
// synthesized core materials.
const (
	cementBagsPerSqft = 0.12
	steelKgPerSqft    = 2.8
	sandTonsPerSqft   = 0.015
)

// MockEstimate synthesizes a deterministic estimate from the form alone. It
// backs the pipeline whenever the remote path fails at any stage, so it has
// no failure mode of its own.
func MockEstimate(form FormData, brands BrandTable) EstimateData {
	area := float64(form.TotalAreaSqft) * float64(form.Floors)

	materials := []Material{
		mockMaterial("1", "Cement", area*cementBagsPerSqft, "bags", 450, 520, "OPC 53 grade cement", brands),
		mockMaterial("2", "Steel (TMT)", area*steelKgPerSqft, "kg", 60, 70, "Fe 500D TMT bars", brands),
		mockMaterial("3", "Sand", area*sandTonsPerSqft, "tons", 2250, 3000, "River sand / M-sand (fine aggregate)", brands),
	}

	totals := SelectedTotals(materials)
	return EstimateData{
		TotalLow:   totals.Low,
		TotalHigh:  totals.High,
		Confidence: FallbackConfidence,
		Materials:  materials,
		Reasoning:  fmt.Sprintf("Fallback estimate for the %s stage — %d sq ft across %d floors", form.Stage, form.TotalAreaSqft, form.Floors),
	}
}

func mockMaterial(id, category string, qty float64, unit string, priceLow, priceHigh float64, description string, brands BrandTable) Material {
	available := brands.BrandsFor(category)
	return Material{
		ID:              id,
		Category:        category,
		Qty:             math.Max(1, math.Round(qty)),
		Unit:            unit,
		PriceLow:        priceLow,
		PriceHigh:       priceHigh,
		Selected:        true,
		AvailableBrands: available,
		SelectedBrand:   available[0],
		Description:     description,
	}
}
