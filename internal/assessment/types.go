package assessment

// Modality of the analyzed communication.
const (
	ModalityText  = "text"
	ModalityImage = "image"
)

// Relational-state classification of the communication. Drives the penalty
// applied to the aggregated score.
const (
	RelationalFullyAligned     = "fully_aligned"
	RelationalNeutral          = "neutral"
	RelationalOneSided         = "one_sided"
	RelationalFullyAdversarial = "fully_adversarial"
)

// RawAssessment is the repaired shape of the generative model's per-dimension
// assessment. After Normalize, every list field is non-nil (possibly empty),
// including every nested list, and every scalar has a value.
type RawAssessment struct {
	Modality        string           `json:"modality"`
	Domain          string           `json:"domain"`
	RelationalState string           `json:"relational_state"`
	// Label is the model's own overall call, normalized like any other scalar
	// but never trusted. The engine derives the authoritative label from the
	// final score and band distribution.
	Label           string           `json:"label"`
	Dimensions      []DimensionScore `json:"dimensions"`
	Diagnostics     Diagnostics      `json:"diagnostics"`
	Corrections     Corrections      `json:"corrections"`
}

// DimensionScore is one dimension's raw result. Score is the model's integer
// judgment in [-3, +3]; Band is always recomputed from Score, never trusted
// from the wire.
type DimensionScore struct {
	DimensionID string `json:"dimension_id"`
	Score       int    `json:"score"`
	Band        Band   `json:"band"`
	Notes       string `json:"notes,omitempty"`
}

// Diagnostics collects the model's observations supporting its scores.
type Diagnostics struct {
	PrimaryPatterns    []string `json:"primary_patterns"`
	SupportingEvidence []string `json:"supporting_evidence"`
}

// Corrections holds the model's suggested improvements.
type Corrections struct {
	TopShifts      []TopShift `json:"top_shifts"`
	SampleRewrites []string   `json:"sample_rewrites"`
}

// TopShift is one suggested dimension improvement with concrete steps.
type TopShift struct {
	DimensionID   string   `json:"dimension_id"`
	Shift         int      `json:"shift"`
	ProtocolSteps []string `json:"protocol_steps"`
}

// Band is the five-value qualitative bucket derived from a raw score.
type Band string

const (
	BandStrongNegative Band = "strong_negative"
	BandMildNegative   Band = "mild_negative"
	BandNeutral        Band = "neutral"
	BandMildPositive   Band = "mild_positive"
	BandStrongPositive Band = "strong_positive"
)

// BandFor maps a raw dimension score to its band. Out-of-range scores land in
// the nearest extreme band, mirroring the clamp applied at rescale time.
func BandFor(score int) Band {
	switch {
	case score <= -3:
		return BandStrongNegative
	case score <= -1:
		return BandMildNegative
	case score == 0:
		return BandNeutral
	case score <= 2:
		return BandMildPositive
	default:
		return BandStrongPositive
	}
}

// Positive reports whether the band counts toward the positive side of the
// overall label's distribution test. Neutral counts toward neither.
func (b Band) Positive() bool {
	return b == BandMildPositive || b == BandStrongPositive
}

// Negative reports whether the band counts toward the negative side.
func (b Band) Negative() bool {
	return b == BandMildNegative || b == BandStrongNegative
}
