package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExtractionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_requests_total",
			Help: "Total extraction requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "extraction_duration_seconds",
			Help: "Duration of extraction pipeline runs in seconds",
		},
		[]string{"mode"},
	)

	CollaboratorCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collaborator_calls_total",
			Help: "Calls to external OCR/LLM collaborators by service and status",
		},
		[]string{"service", "status"},
	)

	AmountSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amount_extraction_source_total",
			Help: "Successful single-amount extractions by provenance",
		},
		[]string{"source"},
	)
)
