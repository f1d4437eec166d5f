package scoring

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/MarloweDigital/Stature/internal/assessment"
	"github.com/MarloweDigital/Stature/internal/catalog"
)

// CompositeScore is the pipeline's output: the bounded 0–100 score plus its
// full, auditable derivation. Created once per assessment, never mutated.
type CompositeScore struct {
	FinalScore      int                  `json:"final_score"`
	Label           string               `json:"label"`
	RelationalState string               `json:"relational_state"`
	Domain          string               `json:"domain"`
	Modality        string               `json:"modality"`
	WeightedMean    float64              `json:"weighted_mean"`
	Penalty         float64              `json:"penalty"`
	RawScores       map[string]int       `json:"raw_scores"`
	Breakdown       []DimensionBreakdown `json:"breakdown"`
	BandCounts      BandCounts           `json:"band_counts"`
	Notes           []string             `json:"notes"`
}

// Engine converts a normalized Raw Assessment into a Composite Score. It is a
// stateless one-shot transform; concurrent use is safe.
type Engine struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewEngine creates an Engine over a read-only dimension catalog.
func NewEngine(cat *catalog.Catalog, logger *slog.Logger) *Engine {
	return &Engine{catalog: cat, logger: logger}
}

// Score runs weighting, aggregation, penalty, and label derivation. The input
// must already be normalized; scoring stages stay unconditional. An empty
// dimension list is a fatal precondition failure (ErrNoDimensions).
func (e *Engine) Score(ra *assessment.RawAssessment) (*CompositeScore, error) {
	if ra == nil {
		return nil, fmt.Errorf("score: %w", ErrNoDimensions)
	}

	var notes []string

	profile, known := e.catalog.Profile(ra.Domain)
	if !known {
		e.logger.Warn("unknown domain, scoring without priority dimensions", "domain", ra.Domain)
		notes = append(notes, fmt.Sprintf("unknown domain %q: no priority dimensions applied", ra.Domain))
	}
	if len(profile.PriorityDimensions) > 0 {
		notes = append(notes, fmt.Sprintf("domain %q priority dimensions: %s",
			ra.Domain, strings.Join(profile.PriorityDimensions, ", ")))
	} else if known {
		notes = append(notes, fmt.Sprintf("domain %q has no priority dimensions", ra.Domain))
	}

	for _, d := range ra.Dimensions {
		if d.Score < catalog.MinRawScore || d.Score > catalog.MaxRawScore {
			notes = append(notes, fmt.Sprintf("dimension %q raw score %d clamped into [%d, %d]",
				d.DimensionID, d.Score, catalog.MinRawScore, catalog.MaxRawScore))
		}
	}

	weightedMean, breakdown, err := Aggregate(ra.Dimensions, profile)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	notes = append(notes, fmt.Sprintf("weighted mean before penalty: %.2f", weightedMean))

	penalty, recognized := PenaltyFor(ra.RelationalState)
	if !recognized {
		e.logger.Warn("unknown relational state, applying neutral penalty", "state", ra.RelationalState)
		notes = append(notes, fmt.Sprintf("unknown relational state %q: neutral penalty applied", ra.RelationalState))
	}
	notes = append(notes, fmt.Sprintf("relational state %q: penalty %.0f", ra.RelationalState, penalty))

	finalScore := int(math.Round(clamp(weightedMean-penalty, 0, 100)))
	notes = append(notes, fmt.Sprintf("final score: %d", finalScore))

	counts := CountBands(ra.Dimensions)
	notes = append(notes, fmt.Sprintf("band distribution: %d positive / %d neutral / %d negative",
		counts.Positive, counts.Neutral, counts.Negative))

	label := DeriveLabel(finalScore, counts)
	notes = append(notes, "overall label: "+label)

	rawScores := make(map[string]int, len(ra.Dimensions))
	for _, d := range ra.Dimensions {
		rawScores[d.DimensionID] = d.Score
	}

	return &CompositeScore{
		FinalScore:      finalScore,
		Label:           label,
		RelationalState: ra.RelationalState,
		Domain:          ra.Domain,
		Modality:        ra.Modality,
		WeightedMean:    weightedMean,
		Penalty:         penalty,
		RawScores:       rawScores,
		Breakdown:       breakdown,
		BandCounts:      counts,
		Notes:           notes,
	}, nil
}
