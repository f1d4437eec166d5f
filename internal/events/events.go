package events

import "time"

// ScoreComputedEvent announces a freshly scored analysis. Consumers that need
// the full breakdown fetch the analysis record; the event carries the
// decision-relevant summary (health alerts, coaching triggers, trend lines).
type ScoreComputedEvent struct {
	AnalysisID      string    `json:"analysis_id"`
	SubjectID       string    `json:"subject_id"`
	Domain          string    `json:"domain"`
	FinalScore      int       `json:"final_score"`
	Label           string    `json:"label"`
	RelationalState string    `json:"relational_state"`
	Timestamp       time.Time `json:"timestamp"`
}

// ScoreDegradedEvent is published when the normalizer had to repair the model
// document before scoring. Repairs lists every defaulted field.
type ScoreDegradedEvent struct {
	AnalysisID string   `json:"analysis_id"`
	SubjectID  string   `json:"subject_id"`
	Repairs    []string `json:"repairs"`
}

// AnalysisFailedEvent is published when scoring could not produce a result at
// all (non-object document, empty dimension set).
type AnalysisFailedEvent struct {
	SubjectID string `json:"subject_id"`
	Domain    string `json:"domain,omitempty"`
	Error     string `json:"error"`
}
