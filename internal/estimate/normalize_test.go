package estimate

import (
	"errors"
	"testing"
)

func TestNormalizeDefaultsForEmptyMaterial(t *testing.T) {
	est, err := Normalize([]byte(`{"materials": [{}]}`), DefaultBrandTable())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(est.Materials) != 1 {
		t.Fatalf("got %d materials, want 1", len(est.Materials))
	}
	m := est.Materials[0]
	if m.Category != "Unknown Material" {
		t.Errorf("category = %q, want Unknown Material", m.Category)
	}
	if m.Qty != 1 {
		t.Errorf("qty = %v, want 1", m.Qty)
	}
	if m.Unit != "units" {
		t.Errorf("unit = %q, want units", m.Unit)
	}
	if m.PriceLow != 0 || m.PriceHigh != 0 {
		t.Errorf("prices = %v/%v, want 0/0", m.PriceLow, m.PriceHigh)
	}
	if m.Selected {
		t.Error("material with no priority should not be selected")
	}
	if len(m.AvailableBrands) == 0 {
		t.Error("available brands must never be empty")
	}
	if m.SelectedBrand != m.AvailableBrands[0] {
		t.Errorf("selected brand = %q, want first available %q", m.SelectedBrand, m.AvailableBrands[0])
	}
	if m.ID != "1" {
		t.Errorf("id = %q, want insertion-order 1", m.ID)
	}
}

func TestNormalizePriorityDrivesSelection(t *testing.T) {
	blob := []byte(`{"materials": [
		{"category": "Cement", "priority": "high"},
		{"category": "Primer", "priority": "medium"},
		{"category": "Decor", "priority": "low"},
		{"category": "Misc"}
	]}`)
	est, err := Normalize(blob, DefaultBrandTable())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []bool{true, true, false, false}
	for i, m := range est.Materials {
		if m.Selected != want[i] {
			t.Errorf("material %d (%s) selected = %v, want %v", i, m.Category, m.Selected, want[i])
		}
	}
}

func TestNormalizeCoercions(t *testing.T) {
	blob := []byte(`{"materials": [
		{"category": "Steel (TMT)", "qty": "5600", "unit": "kg", "priceLow": 60, "priceHigh": "70", "priority": "high", "description": "Fe 500D"}
	]}`)
	est, err := Normalize(blob, DefaultBrandTable())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	m := est.Materials[0]
	if m.Qty != 5600 {
		t.Errorf("qty = %v, want numeric-string coercion to 5600", m.Qty)
	}
	if m.PriceHigh != 70 {
		t.Errorf("priceHigh = %v, want 70", m.PriceHigh)
	}
	if m.Description != "Fe 500D" {
		t.Errorf("description = %q", m.Description)
	}
	if m.AvailableBrands[0] != "Tata Tiscon" {
		t.Errorf("brand resolution for Steel (TMT) gave %q", m.AvailableBrands[0])
	}
}

func TestNormalizeInvalidNumbersDefault(t *testing.T) {
	blob := []byte(`{"materials": [
		{"category": "Sand", "qty": -3, "priceLow": "abc", "priceHigh": -1, "priority": "high"}
	]}`)
	est, err := Normalize(blob, DefaultBrandTable())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	m := est.Materials[0]
	if m.Qty != 1 {
		t.Errorf("negative qty should default to 1, got %v", m.Qty)
	}
	if m.PriceLow != 0 || m.PriceHigh != 0 {
		t.Errorf("invalid prices should default to 0, got %v/%v", m.PriceLow, m.PriceHigh)
	}
}

func TestNormalizeTotals(t *testing.T) {
	// Valid provided totals are trusted.
	blob := []byte(`{"materials": [{"category": "Cement", "qty": 10, "priceLow": 100, "priceHigh": 120, "priority": "high"}],
		"totalLow": 999, "totalHigh": 1234}`)
	est, err := Normalize(blob, DefaultBrandTable())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if est.TotalLow != 999 || est.TotalHigh != 1234 {
		t.Errorf("provided totals not kept: %v/%v", est.TotalLow, est.TotalHigh)
	}

	// Missing totals are recomputed over selected materials only.
	blob = []byte(`{"materials": [
		{"category": "Cement", "qty": 10, "priceLow": 100, "priceHigh": 120, "priority": "high"},
		{"category": "Decor", "qty": 5, "priceLow": 50, "priceHigh": 60, "priority": "low"}
	]}`)
	est, err = Normalize(blob, DefaultBrandTable())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if est.TotalLow != 1000 || est.TotalHigh != 1200 {
		t.Errorf("recomputed totals = %v/%v, want 1000/1200 (selected only)", est.TotalLow, est.TotalHigh)
	}
}

func TestNormalizeConfidence(t *testing.T) {
	cases := []struct {
		name string
		blob string
		want float64
	}{
		{"missing defaults", `{"materials": []}`, 85},
		{"fractional rescaled", `{"materials": [], "confidence": 0.92}`, 92},
		{"percent passthrough", `{"materials": [], "confidence": 88}`, 88},
		{"clamped", `{"materials": [], "confidence": 250}`, 100},
		{"negative defaults", `{"materials": [], "confidence": -4}`, 85},
		{"garbage defaults", `{"materials": [], "confidence": "very sure"}`, 85},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			est, err := Normalize([]byte(tc.blob), DefaultBrandTable())
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if est.Confidence != tc.want {
				t.Errorf("confidence = %v, want %v", est.Confidence, tc.want)
			}
		})
	}
}

func TestNormalizeReasoningDefault(t *testing.T) {
	est, err := Normalize([]byte(`{"materials": []}`), DefaultBrandTable())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if est.Reasoning == "" {
		t.Error("reasoning should default to a fixed phrase")
	}

	est, err = Normalize([]byte(`{"materials": [], "reasoning": "rates from Q3"}`), DefaultBrandTable())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if est.Reasoning != "rates from Q3" {
		t.Errorf("reasoning = %q", est.Reasoning)
	}
}

func TestNormalizeSchemaError(t *testing.T) {
	cases := []string{
		`{"items": []}`,
		`{"materials": "not an array"}`,
		`{"materials": 42}`,
		`{}`,
		`[1, 2, 3]`,
	}
	for _, blob := range cases {
		_, err := Normalize([]byte(blob), DefaultBrandTable())
		if err == nil {
			t.Errorf("Normalize(%s) should fail", blob)
			continue
		}
		var pe *PipelineError
		if !errors.As(err, &pe) {
			t.Errorf("Normalize(%s) error %v is not a pipeline error", blob, err)
		}
	}
}
