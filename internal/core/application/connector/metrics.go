package connector

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "utxo_connector"

// Metrics collects per chain counters about reservations and unspent source
// failures. A nil *Metrics is valid and records nothing.
type Metrics struct {
	lockAttempts   *prometheus.CounterVec
	lockConflicts  *prometheus.CounterVec
	unlocks        *prometheus.CounterVec
	sourceFailures *prometheus.CounterVec
	lockedUtxos    *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		lockAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lock_attempts_total",
			Help:      "Number of requests to lock utxos",
		}, []string{"chain"}),
		lockConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lock_conflicts_total",
			Help:      "Number of lock requests rejected because of already locked utxos",
		}, []string{"chain"}),
		unlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "unlocks_total",
			Help:      "Number of requests to unlock utxos",
		}, []string{"chain"}),
		sourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "source_failures_total",
			Help:      "Number of failed requests to the unspent source",
		}, []string{"chain"}),
		lockedUtxos: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "locked_utxos",
			Help:      "Number of utxos currently locked",
		}, []string{"chain"}),
	}

	for _, c := range []prometheus.Collector{
		m.lockAttempts, m.lockConflicts, m.unlocks, m.sourceFailures,
		m.lockedUtxos,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) lockAttempt(chain string) {
	if m == nil {
		return
	}
	m.lockAttempts.WithLabelValues(chain).Inc()
}

func (m *Metrics) lockConflict(chain string) {
	if m == nil {
		return
	}
	m.lockConflicts.WithLabelValues(chain).Inc()
}

func (m *Metrics) unlock(chain string) {
	if m == nil {
		return
	}
	m.unlocks.WithLabelValues(chain).Inc()
}

func (m *Metrics) sourceFailure(chain string) {
	if m == nil {
		return
	}
	m.sourceFailures.WithLabelValues(chain).Inc()
}

func (m *Metrics) setLocked(chain string, count int) {
	if m == nil {
		return
	}
	m.lockedUtxos.WithLabelValues(chain).Set(float64(count))
}
