package events

const (
	StreamName   = "STATURE_EVENTS"
	StreamMaxAge = "2160h" // 90 days, scores are trend-line history
)

func SubjectScoreComputed(analysisID string) string { return "stature.score." + analysisID + ".computed" }
func SubjectScoreDegraded(analysisID string) string { return "stature.score." + analysisID + ".degraded" }
func SubjectAnalysisFailed() string                 { return "stature.analysis.failed" }
