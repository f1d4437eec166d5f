package scoring

import (
	"errors"

	"github.com/MarloweDigital/Stature/internal/assessment"
	"github.com/MarloweDigital/Stature/internal/catalog"
)

// ErrNoDimensions is returned when aggregation is attempted over an empty
// dimension list. A fabricated score is worse than a visible failure, so this
// propagates instead of being zero-filled.
var ErrNoDimensions = errors.New("assessment has no scoreable dimensions")

// Aggregation weights. Priority dimensions for the assessment's domain count
// double.
const (
	BaseWeight     = 1.0
	PriorityWeight = 2.0
)

// DimensionBreakdown captures one dimension's contribution to the weighted
// mean. This is the audit trail consumers use to explain "why this score";
// downstream report builders render from it and never re-derive.
type DimensionBreakdown struct {
	DimensionID string          `json:"dimension_id"`
	RawScore    int             `json:"raw_score"`
	Band        assessment.Band `json:"band"`
	Normalized  float64         `json:"normalized"`
	Weight      float64         `json:"weight"`
	Weighted    float64         `json:"weighted"`
	Priority    bool            `json:"priority"`
}

// Aggregate rescales every dimension score onto 0–100, applies the domain's
// priority weighting, and returns the weighted mean with the full breakdown.
func Aggregate(dims []assessment.DimensionScore, profile catalog.DomainProfile) (float64, []DimensionBreakdown, error) {
	if len(dims) == 0 {
		return 0, nil, ErrNoDimensions
	}

	priority := make(map[string]bool, len(profile.PriorityDimensions))
	for _, id := range profile.PriorityDimensions {
		priority[id] = true
	}

	breakdown := make([]DimensionBreakdown, 0, len(dims))
	var weightedSum, weightSum float64
	for _, d := range dims {
		weight := BaseWeight
		if priority[d.DimensionID] {
			weight = PriorityWeight
		}
		normalized := NormalizeAxis(d.Score)
		weighted := normalized * weight
		weightedSum += weighted
		weightSum += weight
		breakdown = append(breakdown, DimensionBreakdown{
			DimensionID: d.DimensionID,
			RawScore:    d.Score,
			Band:        d.Band,
			Normalized:  normalized,
			Weight:      weight,
			Weighted:    weighted,
			Priority:    priority[d.DimensionID],
		})
	}

	return weightedSum / weightSum, breakdown, nil
}
