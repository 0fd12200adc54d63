package monitoring

import (
	"strconv"
	"sync"
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
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 进度引擎指标
	XPAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skillquest_xp_awarded_total",
			Help: "Total XP granted to students",
		},
	)

	LevelUps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skillquest_level_ups_total",
			Help: "Number of XP awards that crossed a level boundary",
		},
	)

	StreakChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillquest_streak_changes_total",
			Help: "Streak transitions by kind",
		},
		[]string{"change"},
	)

	StreakHeals = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skillquest_streak_heals_total",
			Help: "Expired streaks zeroed on dashboard read",
		},
	)

	CASConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillquest_cas_conflicts_total",
			Help: "Optimistic update conflicts on the student record",
		},
		[]string{"operation"},
	)

	QuizSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillquest_quiz_submissions_total",
			Help: "Quiz submissions by outcome",
		},
		[]string{"passed"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			XPAwarded,
			LevelUps,
			StreakChanges,
			StreakHeals,
			CASConflicts,
			QuizSubmissions,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
