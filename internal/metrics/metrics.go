// Package metrics exposes Prometheus collectors for the HTTP API and the
// interview session lifecycle.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "interviewprep"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_in_flight_requests",
		Help:      "Current number of in-flight HTTP requests",
	})

	sessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_started_total",
		Help:      "Interview sessions started, by initial difficulty",
	}, []string{"difficulty"})

	questionsAsked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questions_asked_total",
		Help:      "Questions issued, by difficulty at the time of asking",
	}, []string{"difficulty"})

	answerScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "answer_score",
		Help:      "Distribution of clamped answer scores",
		Buckets:   prometheus.LinearBuckets(0, 1, 11),
	})

	sessionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_completed_total",
		Help:      "Interview sessions completed, by readiness label",
	}, []string{"label"})

	upstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_failures_total",
		Help:      "Failed question generation, scoring or classification calls",
	}, []string{"op", "kind"})

	llmRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_requests_total",
		Help:      "LLM provider calls, by outcome",
	}, []string{"provider", "purpose", "outcome"})

	llmLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "llm_request_duration_seconds",
		Help:      "Duration of single LLM provider calls in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
	}, []string{"provider", "purpose"})

	llmTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_tokens_total",
		Help:      "Tokens consumed by LLM calls",
	}, []string{"provider", "direction"})

	llmRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_retries_total",
		Help:      "LLM calls retried after a failed attempt",
	}, []string{"purpose", "reason"})
)

// SessionStarted counts a new session.
func SessionStarted(difficulty string) { sessionsStarted.WithLabelValues(difficulty).Inc() }

// QuestionAsked counts an issued question.
func QuestionAsked(difficulty string) { questionsAsked.WithLabelValues(difficulty).Inc() }

// AnswerScored records the score given to an answer.
func AnswerScored(score float64) { answerScores.Observe(score) }

// SessionCompleted counts a finished session.
func SessionCompleted(label string) { sessionsCompleted.WithLabelValues(label).Inc() }

// UpstreamFailure counts a failed external call. kind is "error" or "format".
func UpstreamFailure(op, kind string) { upstreamFailures.WithLabelValues(op, kind).Inc() }

// LLMCall records one provider round trip.
func LLMCall(provider, purpose, outcome string, d time.Duration, inTokens, outTokens int) {
	llmRequests.WithLabelValues(provider, purpose, outcome).Inc()
	llmLatency.WithLabelValues(provider, purpose).Observe(d.Seconds())
	if inTokens > 0 {
		llmTokens.WithLabelValues(provider, "input").Add(float64(inTokens))
	}
	if outTokens > 0 {
		llmTokens.WithLabelValues(provider, "output").Add(float64(outTokens))
	}
}

// LLMRetry counts a retried LLM call.
func LLMRetry(purpose, reason string) { llmRetries.WithLabelValues(purpose, reason).Inc() }

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request metrics labelled by chi route pattern, so
// session ids in paths do not create new series.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		labels := prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(rec.status),
		}
		httpRequests.With(labels).Inc()
		httpLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
