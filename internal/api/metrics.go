package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stature_analyses_scored_total",
		Help: "Analyses scored, by domain and overall label.",
	}, []string{"domain", "label"})

	normalizerRepairs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stature_normalizer_repairs_total",
		Help: "Fields the normalizer had to default before scoring.",
	})

	scoringFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stature_scoring_failures_total",
		Help: "Analyses that could not be scored, by reason.",
	}, []string{"reason"})

	finalScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stature_final_score",
		Help:    "Distribution of composite final scores.",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
)
