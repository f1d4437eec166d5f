package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MarloweDigital/Stature/internal/assessment"
	"github.com/MarloweDigital/Stature/internal/scoring"
)

// Analysis is one scored assessment: the repaired model output, its composite
// score, and the repairs applied on the way in. Records are append-only
// history; nothing updates them after creation.
type Analysis struct {
	ID              uuid.UUID                 `json:"analysis_id"`
	SubjectID       string                    `json:"subject_id"`
	Domain          string                    `json:"domain"`
	Modality        string                    `json:"modality"`
	RelationalState string                    `json:"relational_state"`
	FinalScore      int                       `json:"final_score"`
	Label           string                    `json:"label"`
	Assessment      *assessment.RawAssessment `json:"assessment"`
	Score           *scoring.CompositeScore   `json:"score"`
	Repairs         []string                  `json:"repairs"`
	CreatedAt       time.Time                 `json:"created_at"`
}

// ScorePoint is one entry on a subject's trend line.
type ScorePoint struct {
	AnalysisID uuid.UUID `json:"analysis_id"`
	Domain     string    `json:"domain"`
	FinalScore int       `json:"final_score"`
	Label      string    `json:"label"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnalysisFilter narrows ListAnalyses results. Zero values mean "no filter".
type AnalysisFilter struct {
	SubjectID string
	Domain    string
	Label     string
	Limit     int
	Offset    int
}

// Stats summarizes the stored analyses for the admin endpoint.
type Stats struct {
	Total    int     `json:"total"`
	Positive int     `json:"positive"`
	Negative int     `json:"negative"`
	Mixed    int     `json:"mixed"`
	AvgScore float64 `json:"avg_score"`
}

type Store interface {
	CreateAnalysis(ctx context.Context, a *Analysis) error
	GetAnalysis(ctx context.Context, id uuid.UUID) (*Analysis, error)
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]*Analysis, error)
	SubjectScores(ctx context.Context, subjectID string, limit int) ([]ScorePoint, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}
