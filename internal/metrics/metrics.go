package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for subject resolution, digests and the
// poll vote ledger. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Resolutions    *prometheus.CounterVec
	CatalogLookups *prometheus.CounterVec
	DigestDuration prometheus.Histogram

	CastTransitions *prometheus.CounterVec
	CastRetries     prometheus.Counter
	AwardsFired     prometheus.Counter
	AwardFailures   prometheus.Counter
	CastDuration    prometheus.Histogram
}

// New registers all collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scorecard_subject_resolutions_total",
			Help: "Roll-call votes resolved, by subject kind",
		}, []string{"kind"}),
		CatalogLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scorecard_catalog_lookups_total",
			Help: "Title catalog lookups, by catalog kind and result (hit, miss, error)",
		}, []string{"catalog", "result"}),
		DigestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "scorecard_digest_duration_seconds",
			Help:    "Duration of a resolve, group and classify pass",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		CastTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scorecard_poll_cast_transitions_total",
			Help: "Poll vote casts, by ledger operation (insert, delete, update)",
		}, []string{"op"}),
		CastRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "scorecard_poll_cast_retries_total",
			Help: "Cast attempts retried after losing a race on (poll_id, voter_id)",
		}),
		AwardsFired: f.NewCounter(prometheus.CounterOpts{
			Name: "scorecard_poll_awards_total",
			Help: "First-time poll vote point awards",
		}),
		AwardFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "scorecard_poll_award_failures_total",
			Help: "Point awards that failed after the vote committed",
		}),
		CastDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "scorecard_poll_cast_duration_seconds",
			Help:    "Duration of castVote including retries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncResolution counts one resolved vote
func (m *Metrics) IncResolution(kind string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(kind).Inc()
}

// IncCatalogLookup counts one catalog read that reached the backing catalog
func (m *Metrics) IncCatalogLookup(catalog, result string) {
	if m == nil {
		return
	}
	m.CatalogLookups.WithLabelValues(catalog, result).Inc()
}

// ObserveDigest records a digest pass. Call with time.Now() at the start.
func (m *Metrics) ObserveDigest(start time.Time) {
	if m == nil {
		return
	}
	m.DigestDuration.Observe(time.Since(start).Seconds())
}

// IncCast counts a committed ledger transition
func (m *Metrics) IncCast(op string) {
	if m == nil {
		return
	}
	m.CastTransitions.WithLabelValues(op).Inc()
}

// IncCastRetry counts a retried cast attempt
func (m *Metrics) IncCastRetry() {
	if m == nil {
		return
	}
	m.CastRetries.Inc()
}

// IncAward counts a fired award; failed awards are counted separately
func (m *Metrics) IncAward(failed bool) {
	if m == nil {
		return
	}
	if failed {
		m.AwardFailures.Inc()
		return
	}
	m.AwardsFired.Inc()
}

// ObserveCast records castVote latency. Call with time.Now() at the start.
func (m *Metrics) ObserveCast(start time.Time) {
	if m == nil {
		return
	}
	m.CastDuration.Observe(time.Since(start).Seconds())
}
