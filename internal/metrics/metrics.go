// Package metrics exposes Prometheus collectors for the exam service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	SessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_sessions_started_total",
			Help: "Exam sessions started, by mode",
		},
		[]string{"mode"},
	)

	AttemptsGraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_attempts_graded_total",
			Help: "Attempts graded and stored, by outcome and source",
		},
		[]string{"passed", "source"},
	)

	AttemptScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "exam_attempt_score",
			Help:    "Normalized attempt scores (0-1000)",
			Buckets: prometheus.LinearBuckets(0, 100, 11),
		},
	)

	ExcludedQuestions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "exam_excluded_questions_total",
			Help: "Questions skipped by grading because they lack exactly one correct option",
		},
	)

	ActiveStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "exam_session_streams_active",
			Help: "Open session WebSocket streams",
		},
	)
)

// Init registers every collector with the default registry.
func Init() {
	prometheus.MustRegister(
		RequestCounter,
		RequestDuration,
		SessionsStarted,
		AttemptsGraded,
		AttemptScores,
		ExcludedQuestions,
		ActiveStreams,
	)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, c.FullPath()).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// ObserveGraded records one freshly stored attempt.
func ObserveGraded(score int, passed bool, excluded int, source string) {
	AttemptsGraded.WithLabelValues(strconv.FormatBool(passed), source).Inc()
	AttemptScores.Observe(float64(score))
	if excluded > 0 {
		ExcludedQuestions.Add(float64(excluded))
	}
}
