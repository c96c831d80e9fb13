package estimate

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestExtractJSONRoundTripWithProse(t *testing.T) {
	original := map[string]any{
		"materials": []any{
			map[string]any{"category": "Cement", "qty": float64(240)},
		},
		"totalLow": float64(108000),
	}
	blob, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}
	raw := "Sure! " + string(blob) + " Hope that helps."

	extracted, err := ExtractJSON(raw)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(extracted, &got); err != nil {
		t.Fatalf("unmarshal extracted span: %v", err)
	}
	if !reflect.DeepEqual(got, original) {
		t.Fatalf("round trip mismatch: got %v, want %v", got, original)
	}
}

func TestExtractJSONBareObject(t *testing.T) {
	if _, err := ExtractJSON(`  {"materials": []}  `); err != nil {
		t.Fatalf("ExtractJSON on bare object: %v", err)
	}
}

func TestExtractJSONCodeFence(t *testing.T) {
	raw := "```json\n{\"materials\": [{\"category\": \"Steel\"}]}\n```"
	extracted, err := ExtractJSON(raw)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(extracted, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
}

func TestExtractJSONFailures(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"no json", "no json here"},
		{"unbalanced braces", "{ this is { not json"},
		{"empty", ""},
		{"prose with stray brace", "result } { broken"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractJSON(tc.raw)
			if err == nil {
				t.Fatal("expected a parse failure")
			}
			var pe *PipelineError
			if !errors.As(err, &pe) || pe.Kind != FailureParse {
				t.Fatalf("expected parse failure kind, got %v", err)
			}
		})
	}
}

func TestExtractJSONGreedySpan(t *testing.T) {
	// The outermost braces win even when the prose contains extras.
	raw := `prefix {"outer": {"inner": 1}} suffix`
	extracted, err := ExtractJSON(raw)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	if string(extracted) != `{"outer": {"inner": 1}}` {
		t.Fatalf("extracted %q", extracted)
	}
}
