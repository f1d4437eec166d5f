package scoring

import "github.com/MarloweDigital/Stature/internal/assessment"

// Penalty points subtracted from the weighted mean, by relational-state
// classification.
const (
	PenaltyFullyAligned     = 0.0
	PenaltyNeutral          = 5.0
	PenaltyOneSided         = 15.0
	PenaltyFullyAdversarial = 30.0
)

// Overall three-way labels.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelMixed    = "mixed"
)

// Thresholds for the overall label's score condition.
const (
	positiveScoreFloor   = 70
	negativeScoreCeiling = 30
)

// PenaltyFor returns the penalty for a relational-state classification and
// whether the state was recognized. Unknown states fall back to the neutral
// tier; the caller records the fallback as a derivation note.
func PenaltyFor(state string) (float64, bool) {
	switch state {
	case assessment.RelationalFullyAligned:
		return PenaltyFullyAligned, true
	case assessment.RelationalNeutral:
		return PenaltyNeutral, true
	case assessment.RelationalOneSided:
		return PenaltyOneSided, true
	case assessment.RelationalFullyAdversarial:
		return PenaltyFullyAdversarial, true
	default:
		return PenaltyNeutral, false
	}
}

// BandCounts is the distribution of dimensions across band polarities.
// Neutral dimensions are excluded from the majority comparison.
type BandCounts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// CountBands tallies the band distribution for a dimension set.
func CountBands(dims []assessment.DimensionScore) BandCounts {
	var c BandCounts
	for _, d := range dims {
		switch {
		case d.Band.Positive():
			c.Positive++
		case d.Band.Negative():
			c.Negative++
		default:
			c.Neutral++
		}
	}
	return c
}

// DeriveLabel computes the overall three-way label. Both the score threshold
// and a strict band majority must hold, so a single outlier dimension cannot
// flip the label when the numeric score disagrees. An exact positive/negative
// tie satisfies neither majority and yields mixed.
func DeriveLabel(finalScore int, counts BandCounts) string {
	switch {
	case finalScore >= positiveScoreFloor && counts.Positive > counts.Negative:
		return LabelPositive
	case finalScore <= negativeScoreCeiling && counts.Negative > counts.Positive:
		return LabelNegative
	default:
		return LabelMixed
	}
}
