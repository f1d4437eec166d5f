package assessment

import (
	"errors"
	"fmt"
)

// ErrInvalidAssessment is returned when the supposed assessment is not an
// object at all. Nothing is recoverable from a scalar or a list; every other
// structural defect is repaired silently.
var ErrInvalidAssessment = errors.New("assessment is not an object")

// Scalar defaults applied when the model omits a field entirely. The system
// prefers a labeled degraded result over an exception.
const (
	DefaultModality        = ModalityText
	DefaultDomain          = "general"
	DefaultRelationalState = RelationalNeutral
	DefaultLabel           = "mixed"
)

// Normalize repairs an arbitrary value claiming to be a Raw Assessment into
// the canonical shape. It is idempotent: feeding its own output back in
// yields an equal value. It never mutates its input.
func Normalize(v any) (*RawAssessment, error) {
	ra, _, err := Repair(v)
	return ra, err
}

// Repair is Normalize plus a report of every field it had to default, for
// metrics and degraded-result events. An empty report means the input was
// already fully normalized.
func Repair(v any) (*RawAssessment, []string, error) {
	switch t := v.(type) {
	case *RawAssessment:
		if t == nil {
			return nil, nil, fmt.Errorf("%w: nil assessment", ErrInvalidAssessment)
		}
		ra, repairs := repairStruct(*t)
		return ra, repairs, nil
	case RawAssessment:
		ra, repairs := repairStruct(t)
		return ra, repairs, nil
	case map[string]any:
		ra, repairs := repairMap(t)
		return ra, repairs, nil
	case nil:
		return nil, nil, fmt.Errorf("%w: nil input", ErrInvalidAssessment)
	default:
		return nil, nil, fmt.Errorf("%w: got %T", ErrInvalidAssessment, v)
	}
}

// IsNormalized reports whether v is already a fully normalized Raw
// Assessment: every list present (possibly empty), every nested list present,
// every scalar filled, every band consistent with its score. Used for
// assertions and tests, not for control flow in the pipeline.
func IsNormalized(v any) bool {
	var ra RawAssessment
	switch t := v.(type) {
	case *RawAssessment:
		if t == nil {
			return false
		}
		ra = *t
	case RawAssessment:
		ra = t
	default:
		return false
	}

	if ra.Modality == "" || ra.Domain == "" || ra.RelationalState == "" || ra.Label == "" {
		return false
	}
	if ra.Dimensions == nil ||
		ra.Diagnostics.PrimaryPatterns == nil ||
		ra.Diagnostics.SupportingEvidence == nil ||
		ra.Corrections.TopShifts == nil ||
		ra.Corrections.SampleRewrites == nil {
		return false
	}
	for _, d := range ra.Dimensions {
		if d.Band != BandFor(d.Score) {
			return false
		}
	}
	for _, s := range ra.Corrections.TopShifts {
		if s.ProtocolSteps == nil {
			return false
		}
	}
	return true
}

// repairStruct re-normalizes an already-typed assessment: fills nil slices,
// defaults empty scalars, recomputes bands. Slices are copied so the caller's
// value is never aliased.
func repairStruct(in RawAssessment) (*RawAssessment, []string) {
	var repairs []string
	out := in

	if out.Modality == "" {
		out.Modality = DefaultModality
		repairs = append(repairs, "modality defaulted to "+DefaultModality)
	}
	if out.Domain == "" {
		out.Domain = DefaultDomain
		repairs = append(repairs, "domain defaulted to "+DefaultDomain)
	}
	if out.RelationalState == "" {
		out.RelationalState = DefaultRelationalState
		repairs = append(repairs, "relational_state defaulted to "+DefaultRelationalState)
	}
	if out.Label == "" {
		out.Label = DefaultLabel
		repairs = append(repairs, "label defaulted to "+DefaultLabel)
	}

	if in.Dimensions == nil {
		out.Dimensions = []DimensionScore{}
		repairs = append(repairs, "dimensions defaulted to []")
	} else {
		out.Dimensions = make([]DimensionScore, len(in.Dimensions))
		copy(out.Dimensions, in.Dimensions)
	}
	for i := range out.Dimensions {
		if want := BandFor(out.Dimensions[i].Score); out.Dimensions[i].Band != want {
			out.Dimensions[i].Band = want
		}
	}

	out.Diagnostics.PrimaryPatterns, repairs = repairList(in.Diagnostics.PrimaryPatterns, "diagnostics.primary_patterns", repairs)
	out.Diagnostics.SupportingEvidence, repairs = repairList(in.Diagnostics.SupportingEvidence, "diagnostics.supporting_evidence", repairs)
	out.Corrections.SampleRewrites, repairs = repairList(in.Corrections.SampleRewrites, "corrections.sample_rewrites", repairs)

	if in.Corrections.TopShifts == nil {
		out.Corrections.TopShifts = []TopShift{}
		repairs = append(repairs, "corrections.top_shifts defaulted to []")
	} else {
		out.Corrections.TopShifts = make([]TopShift, len(in.Corrections.TopShifts))
		copy(out.Corrections.TopShifts, in.Corrections.TopShifts)
		for i := range out.Corrections.TopShifts {
			if out.Corrections.TopShifts[i].ProtocolSteps == nil {
				out.Corrections.TopShifts[i].ProtocolSteps = []string{}
				repairs = append(repairs, fmt.Sprintf("corrections.top_shifts[%d].protocol_steps defaulted to []", i))
			}
		}
	}

	return &out, repairs
}

// repairMap coerces an untyped JSON object into the canonical shape. Wrong
// types are treated the same as absence.
func repairMap(m map[string]any) (*RawAssessment, []string) {
	var repairs []string
	out := &RawAssessment{}

	out.Modality, repairs = scalarField(m, "modality", DefaultModality, repairs)
	out.Domain, repairs = scalarField(m, "domain", DefaultDomain, repairs)
	out.RelationalState, repairs = scalarField(m, "relational_state", DefaultRelationalState, repairs)
	out.Label, repairs = scalarField(m, "label", DefaultLabel, repairs)

	dims, ok := m["dimensions"].([]any)
	if !ok {
		repairs = append(repairs, "dimensions defaulted to []")
	}
	out.Dimensions = make([]DimensionScore, 0, len(dims))
	for _, raw := range dims {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue // not an object, nothing scoreable in it
		}
		score := asInt(entry["score"])
		out.Dimensions = append(out.Dimensions, DimensionScore{
			DimensionID: asString(entry["dimension_id"]),
			Score:       score,
			Band:        BandFor(score),
			Notes:       asString(entry["notes"]),
		})
	}

	diag, _ := m["diagnostics"].(map[string]any)
	out.Diagnostics.PrimaryPatterns, repairs = listField(diag, "primary_patterns", "diagnostics.primary_patterns", repairs)
	out.Diagnostics.SupportingEvidence, repairs = listField(diag, "supporting_evidence", "diagnostics.supporting_evidence", repairs)

	corr, _ := m["corrections"].(map[string]any)
	out.Corrections.SampleRewrites, repairs = listField(corr, "sample_rewrites", "corrections.sample_rewrites", repairs)

	shifts, ok := corrList(corr, "top_shifts")
	if !ok {
		repairs = append(repairs, "corrections.top_shifts defaulted to []")
	}
	out.Corrections.TopShifts = make([]TopShift, 0, len(shifts))
	for i, raw := range shifts {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		steps, ok := entry["protocol_steps"].([]any)
		if !ok {
			repairs = append(repairs, fmt.Sprintf("corrections.top_shifts[%d].protocol_steps defaulted to []", i))
		}
		out.Corrections.TopShifts = append(out.Corrections.TopShifts, TopShift{
			DimensionID:   asString(entry["dimension_id"]),
			Shift:         asInt(entry["shift"]),
			ProtocolSteps: stringList(steps),
		})
	}

	return out, repairs
}

func scalarField(m map[string]any, key, def string, repairs []string) (string, []string) {
	if s, ok := m[key].(string); ok && s != "" {
		return s, repairs
	}
	return def, append(repairs, key+" defaulted to "+def)
}

func repairList(in []string, name string, repairs []string) ([]string, []string) {
	if in == nil {
		return []string{}, append(repairs, name+" defaulted to []")
	}
	out := make([]string, len(in))
	copy(out, in)
	return out, repairs
}

func listField(m map[string]any, key, name string, repairs []string) ([]string, []string) {
	if m != nil {
		if raw, ok := m[key].([]any); ok {
			return stringList(raw), repairs
		}
	}
	return []string{}, append(repairs, name+" defaulted to []")
}

func corrList(m map[string]any, key string) ([]any, bool) {
	if m == nil {
		return nil, false
	}
	raw, ok := m[key].([]any)
	return raw, ok
}

// stringList keeps string elements and drops everything else. Always non-nil.
func stringList(raw []any) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asInt accepts the numeric shapes encoding/json produces plus plain ints.
func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}
