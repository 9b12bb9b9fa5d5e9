package observability

import (
	"time"

	"github.com/3dstuff/store-bff-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the storefront BFF.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	paymentsCreated *prometheus.CounterVec
	paymentOutcomes *prometheus.CounterVec
	pollTicks       *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "store_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		paymentsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_payments_created_total",
				Help: "Payment intents created, by method.",
			},
			[]string{"method"},
		),
		paymentOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_payment_outcomes_total",
				Help: "Resolved checkout sessions, by outcome.",
			},
			[]string{"outcome"},
		),
		pollTicks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_payment_poll_ticks_total",
				Help: "Payment status poll ticks, by result.",
			},
			[]string{"result"},
		),
		sessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "store_checkout_sessions_active",
				Help: "Checkout sessions currently open.",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrPaymentCreated counts a created payment intent.
func (m *Metrics) IncrPaymentCreated(method domain.PaymentMethod) {
	m.paymentsCreated.WithLabelValues(string(method)).Inc()
}

// IncrPaymentOutcome counts a resolved session outcome.
func (m *Metrics) IncrPaymentOutcome(outcome domain.Outcome) {
	m.paymentOutcomes.WithLabelValues(string(outcome)).Inc()
}

// IncrPollTick counts a status poll tick ("approved", "pending" or "error").
func (m *Metrics) IncrPollTick(result string) {
	m.pollTicks.WithLabelValues(result).Inc()
}

// SessionOpened / SessionClosed track the active session gauge.
func (m *Metrics) SessionOpened() { m.sessionsActive.Inc() }
func (m *Metrics) SessionClosed() { m.sessionsActive.Dec() }

// GetCheckoutSnapshot returns a snapshot of checkout metrics suitable for
// the GET /v1/metrics/checkout endpoint.
func (m *Metrics) GetCheckoutSnapshot() *domain.CheckoutMetrics {
	pix := getCounterValue(m.paymentsCreated, string(domain.MethodPix))
	card := getCounterValue(m.paymentsCreated, string(domain.MethodCreditCard))
	boleto := getCounterValue(m.paymentsCreated, string(domain.MethodBoleto))

	approved := getCounterValue(m.paymentOutcomes, string(domain.OutcomeApproved))
	rejected := getCounterValue(m.paymentOutcomes, string(domain.OutcomeRejected))
	cancelled := getCounterValue(m.paymentOutcomes, string(domain.OutcomeCancelled))
	timedOut := getCounterValue(m.paymentOutcomes, string(domain.OutcomeTimedOut))

	ticks := getCounterValue(m.pollTicks, "approved") +
		getCounterValue(m.pollTicks, "pending") +
		getCounterValue(m.pollTicks, "error")
	pollErrors := getCounterValue(m.pollTicks, "error")

	hits := getCounterValue(m.cacheHits, "installments") + getCounterValue(m.cacheHits, "products")
	misses := getCounterValue(m.cacheMisses, "installments") + getCounterValue(m.cacheMisses, "products")

	total := pix + card + boleto
	resolved := approved + rejected + cancelled + timedOut

	approvalRate := float64(0)
	if resolved > 0 {
		approvalRate = approved / resolved
	}
	cacheHitRate := float64(0)
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	return &domain.CheckoutMetrics{
		PaymentsCreated: int64(total),
		PixCreated:      int64(pix),
		CardCreated:     int64(card),
		BoletoCreated:   int64(boleto),
		Approved:        int64(approved),
		Rejected:        int64(rejected),
		Cancelled:       int64(cancelled),
		TimedOut:        int64(timedOut),
		ApprovalRate:    approvalRate,
		PollTicks:       int64(ticks),
		PollErrors:      int64(pollErrors),
		CacheHitRate:    cacheHitRate,
		Period:          "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
