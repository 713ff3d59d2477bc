package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChatTurnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kbadmin_chat_turn_duration_seconds",
			Help:    "Chat turn processing duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"outcome"},
	)

	ChatTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbadmin_chat_turns_total",
			Help: "Total chat turns processed",
		},
		[]string{"outcome"},
	)

	MatchScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kbadmin_match_score",
			Help:    "Best matcher score per turn",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	UnansweredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kbadmin_unanswered_questions_total",
			Help: "Total unanswered questions recorded",
		},
	)

	KnowledgePointsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kbadmin_knowledge_points_total",
			Help: "Knowledge points by status",
		},
		[]string{"status"},
	)

	GenerationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbadmin_generation_requests_total",
			Help: "Generation client requests",
		},
		[]string{"operation", "status"},
	)

	ColdStartDocuments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kbadmin_coldstart_documents_total",
			Help: "Cold-start documents processed",
		},
	)

	ColdStartPoints = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kbadmin_coldstart_points_total",
			Help: "Draft knowledge points created by cold start",
		},
	)

	StaleKnowledgePoints = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kbadmin_stale_knowledge_points",
			Help: "Published knowledge points not served within the window, as of the last report",
		},
	)
)

func Init() {
	prometheus.MustRegister(ChatTurnDuration)
	prometheus.MustRegister(ChatTurnsTotal)
	prometheus.MustRegister(MatchScore)
	prometheus.MustRegister(UnansweredTotal)
	prometheus.MustRegister(KnowledgePointsTotal)
	prometheus.MustRegister(GenerationRequests)
	prometheus.MustRegister(ColdStartDocuments)
	prometheus.MustRegister(ColdStartPoints)
	prometheus.MustRegister(StaleKnowledgePoints)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
