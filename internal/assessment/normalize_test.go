package assessment

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

// decode mimics the wire path: the oracle reply is parsed with encoding/json
// before the normalizer ever sees it.
func decode(t *testing.T, doc string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		t.Fatalf("bad test document: %v", err)
	}
	return m
}

func TestNormalizeRejectsNonObjects(t *testing.T) {
	for _, v := range []any{nil, "text", 42, 3.14, []any{"a"}, true} {
		_, err := Normalize(v)
		if !errors.Is(err, ErrInvalidAssessment) {
			t.Errorf("Normalize(%v): expected ErrInvalidAssessment, got %v", v, err)
		}
	}
}

func TestNormalizeDefaultsAllLists(t *testing.T) {
	// corrections entirely absent, primary_patterns explicitly null
	ra, err := Normalize(decode(t, `{
		"modality": "text",
		"domain": "sales_message",
		"relational_state": "one_sided",
		"diagnostics": {"primary_patterns": null}
	}`))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if ra.Dimensions == nil || len(ra.Dimensions) != 0 {
		t.Errorf("expected empty dimensions, got %v", ra.Dimensions)
	}
	if ra.Diagnostics.PrimaryPatterns == nil || len(ra.Diagnostics.PrimaryPatterns) != 0 {
		t.Errorf("expected empty primary_patterns, got %v", ra.Diagnostics.PrimaryPatterns)
	}
	if ra.Diagnostics.SupportingEvidence == nil {
		t.Error("supporting_evidence must be non-nil")
	}
	if ra.Corrections.TopShifts == nil || ra.Corrections.SampleRewrites == nil {
		t.Errorf("corrections lists must be non-nil, got %+v", ra.Corrections)
	}
}

func TestNormalizeDefaultsNestedLists(t *testing.T) {
	ra, err := Normalize(decode(t, `{
		"corrections": {
			"top_shifts": [
				{"dimension_id": "conviction", "shift": 2},
				{"dimension_id": "composure", "shift": 1, "protocol_steps": ["pause before replying"]}
			]
		}
	}`))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(ra.Corrections.TopShifts) != 2 {
		t.Fatalf("expected 2 top shifts, got %d", len(ra.Corrections.TopShifts))
	}
	if ra.Corrections.TopShifts[0].ProtocolSteps == nil || len(ra.Corrections.TopShifts[0].ProtocolSteps) != 0 {
		t.Errorf("missing protocol_steps must default to [], got %v", ra.Corrections.TopShifts[0].ProtocolSteps)
	}
	if got := ra.Corrections.TopShifts[1].ProtocolSteps; len(got) != 1 || got[0] != "pause before replying" {
		t.Errorf("present protocol_steps must pass through, got %v", got)
	}
}

func TestNormalizeScalarDefaults(t *testing.T) {
	ra, err := Normalize(map[string]any{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if ra.Modality != DefaultModality {
		t.Errorf("expected modality %q, got %q", DefaultModality, ra.Modality)
	}
	if ra.Domain != DefaultDomain {
		t.Errorf("expected domain %q, got %q", DefaultDomain, ra.Domain)
	}
	if ra.RelationalState != DefaultRelationalState {
		t.Errorf("expected relational state %q, got %q", DefaultRelationalState, ra.RelationalState)
	}
	if ra.Label != DefaultLabel {
		t.Errorf("expected label %q, got %q", DefaultLabel, ra.Label)
	}
}

func TestNormalizeWrongTypedFieldsTreatedAsAbsent(t *testing.T) {
	ra, err := Normalize(decode(t, `{
		"modality": 7,
		"domain": ["sales_message"],
		"dimensions": "not a list",
		"diagnostics": {"primary_patterns": "frame drops", "supporting_evidence": [1, "quote", 2]},
		"corrections": {"top_shifts": {"dimension_id": "x"}}
	}`))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if ra.Modality != DefaultModality || ra.Domain != DefaultDomain {
		t.Errorf("wrong-typed scalars must default, got %q/%q", ra.Modality, ra.Domain)
	}
	if len(ra.Dimensions) != 0 {
		t.Errorf("wrong-typed dimensions must default to [], got %v", ra.Dimensions)
	}
	if len(ra.Diagnostics.PrimaryPatterns) != 0 {
		t.Errorf("wrong-typed list must default to [], got %v", ra.Diagnostics.PrimaryPatterns)
	}
	// non-string elements are dropped, string elements survive
	if !reflect.DeepEqual(ra.Diagnostics.SupportingEvidence, []string{"quote"}) {
		t.Errorf("expected [quote], got %v", ra.Diagnostics.SupportingEvidence)
	}
	if len(ra.Corrections.TopShifts) != 0 {
		t.Errorf("wrong-typed top_shifts must default to [], got %v", ra.Corrections.TopShifts)
	}
}

func TestNormalizeRecomputesBands(t *testing.T) {
	ra, err := Normalize(decode(t, `{
		"dimensions": [
			{"dimension_id": "frame_control", "score": -3, "band": "mild_positive"},
			{"dimension_id": "conviction", "score": -1},
			{"dimension_id": "composure", "score": 0},
			{"dimension_id": "decisiveness", "score": 2},
			{"dimension_id": "vision_casting", "score": 3}
		]
	}`))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	want := []Band{BandStrongNegative, BandMildNegative, BandNeutral, BandMildPositive, BandStrongPositive}
	for i, d := range ra.Dimensions {
		if d.Band != want[i] {
			t.Errorf("dimension %s: band %s, want %s", d.DimensionID, d.Band, want[i])
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	docs := []string{
		`{}`,
		`{"modality": "image", "domain": "profile_image", "relational_state": "fully_aligned"}`,
		`{"dimensions": [{"dimension_id": "conviction", "score": 2, "notes": "assertive close"}],
		  "diagnostics": {"primary_patterns": ["direct asks"], "supporting_evidence": []},
		  "corrections": {"top_shifts": [{"dimension_id": "composure", "shift": 1, "protocol_steps": []}],
		                  "sample_rewrites": ["Try: ..."]}}`,
	}
	for _, doc := range docs {
		once, err := Normalize(decode(t, doc))
		if err != nil {
			t.Fatalf("first Normalize failed: %v", err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("second Normalize failed: %v", err)
		}
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("normalize not idempotent for %s:\nonce:  %+v\ntwice: %+v", doc, once, twice)
		}
	}
}

func TestRepairReportsDefaults(t *testing.T) {
	_, repairs, err := Repair(map[string]any{})
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if len(repairs) == 0 {
		t.Fatal("expected repairs for empty object")
	}

	full, err := Normalize(decode(t, `{
		"modality": "text", "domain": "general", "relational_state": "neutral", "label": "mixed",
		"dimensions": [],
		"diagnostics": {"primary_patterns": [], "supporting_evidence": []},
		"corrections": {"top_shifts": [], "sample_rewrites": []}
	}`))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	_, repairs, err = Repair(full)
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if len(repairs) != 0 {
		t.Errorf("fully normalized input should need no repairs, got %v", repairs)
	}
}

func TestIsNormalized(t *testing.T) {
	if IsNormalized(map[string]any{}) {
		t.Error("raw map must not count as normalized")
	}
	if IsNormalized(&RawAssessment{}) {
		t.Error("zero value must not count as normalized")
	}

	ra, err := Normalize(decode(t, `{"dimensions": [{"dimension_id": "conviction", "score": 1}]}`))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !IsNormalized(ra) {
		t.Error("normalizer output must satisfy IsNormalized")
	}

	broken := *ra
	broken.Corrections.TopShifts = append([]TopShift{}, TopShift{DimensionID: "composure"})
	if IsNormalized(&broken) {
		t.Error("nil nested protocol_steps must fail IsNormalized")
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		score int
		want  Band
	}{
		{-5, BandStrongNegative},
		{-3, BandStrongNegative},
		{-2, BandMildNegative},
		{-1, BandMildNegative},
		{0, BandNeutral},
		{1, BandMildPositive},
		{2, BandMildPositive},
		{3, BandStrongPositive},
		{6, BandStrongPositive},
	}
	for _, tt := range tests {
		if got := BandFor(tt.score); got != tt.want {
			t.Errorf("BandFor(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := &RawAssessment{
		Modality:        ModalityText,
		Domain:          "general",
		RelationalState: RelationalNeutral,
		Dimensions:      []DimensionScore{{DimensionID: "conviction", Score: 2}},
	}
	out, err := Normalize(in)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if in.Dimensions[0].Band != "" {
		t.Error("input band was mutated")
	}
	if out.Dimensions[0].Band != BandMildPositive {
		t.Errorf("output band not recomputed, got %s", out.Dimensions[0].Band)
	}
	if in.Diagnostics.PrimaryPatterns != nil {
		t.Error("input diagnostics were mutated")
	}
}
