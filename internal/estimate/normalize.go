package estimate

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// UnknownCategory replaces a missing or non-string category label.
	UnknownCategory = "Unknown Material"
	// DefaultUnit replaces a missing unit label.
	DefaultUnit = "units"

	defaultReasoning = "AI-generated estimate based on project requirements"
)

// Normalize coerces an untrusted parsed completion into a well-formed
// EstimateData. Every per-material field degrades to a safe default; the only
// hard failure is a payload with no array-valued "materials" field, which
// surfaces as a schema failure and sends the caller to the fallback path.
func Normalize(data []byte, brands BrandTable) (EstimateData, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return EstimateData{}, newParseError(err)
	}

	rawMaterials, ok := payload["materials"].([]any)
	if !ok {
		return EstimateData{}, newSchemaError("response has no materials array")
	}

	materials := make([]Material, 0, len(rawMaterials))
	for i, raw := range rawMaterials {
		item, _ := raw.(map[string]any)
		materials = append(materials, normalizeMaterial(item, i, brands))
	}

	est := EstimateData{Materials: materials}

	// Model-supplied totals are trusted when they are sane numbers;
	// otherwise totals are recomputed over the selected materials, the same
	// rule every other totals computation in this package uses.
	totalLow, lowOK := positiveNumber(payload["totalLow"])
	totalHigh, highOK := positiveNumber(payload["totalHigh"])
	if lowOK && highOK {
		est.TotalLow, est.TotalHigh = totalLow, totalHigh
	} else {
		totals := SelectedTotals(materials)
		est.TotalLow, est.TotalHigh = totals.Low, totals.High
	}

	est.Confidence = normalizeConfidence(payload["confidence"])

	if reasoning, ok := payload["reasoning"].(string); ok && strings.TrimSpace(reasoning) != "" {
		est.Reasoning = reasoning
	} else {
		est.Reasoning = defaultReasoning
	}

	return est, nil
}

func normalizeMaterial(item map[string]any, index int, brands BrandTable) Material {
	m := Material{
		ID:       strconv.Itoa(index + 1),
		Category: UnknownCategory,
		Qty:      1,
		Unit:     DefaultUnit,
	}
	if item == nil {
		m.AvailableBrands = brands.BrandsFor(m.Category)
		m.SelectedBrand = m.AvailableBrands[0]
		return m
	}

	if s, ok := item["category"].(string); ok && strings.TrimSpace(s) != "" {
		m.Category = s
	}
	if qty, ok := positiveNumber(item["qty"]); ok {
		m.Qty = qty
	}
	if s, ok := item["unit"].(string); ok && strings.TrimSpace(s) != "" {
		m.Unit = s
	}
	if price, ok := nonNegativeNumber(item["priceLow"]); ok {
		m.PriceLow = price
	}
	if price, ok := nonNegativeNumber(item["priceHigh"]); ok {
		m.PriceHigh = price
	}

	priority, _ := item["priority"].(string)
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "high", "medium":
		m.Selected = true
	}

	if s, ok := item["description"].(string); ok {
		m.Description = s
	}

	m.AvailableBrands = brands.BrandsFor(m.Category)
	m.SelectedBrand = m.AvailableBrands[0]
	return m
}

// normalizeConfidence maps the model's confidence onto the 0-100 scale the
// views use. The prompt asks for [0,1], so fractional values are rescaled.
func normalizeConfidence(v any) float64 {
	c, ok := asNumber(v)
	if !ok || c < 0 {
		return DefaultConfidence
	}
	if c <= 1 {
		c = math.Round(c * 100)
	}
	return math.Min(c, 100)
}

func positiveNumber(v any) (float64, bool) {
	n, ok := asNumber(v)
	if !ok || n <= 0 {
		return 0, false
	}
	return n, true
}

func nonNegativeNumber(v any) (float64, bool) {
	n, ok := asNumber(v)
	if !ok || n < 0 {
		return 0, false
	}
	return n, true
}

// asNumber accepts JSON numbers and numeric strings, rejecting NaN and
// infinities.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
