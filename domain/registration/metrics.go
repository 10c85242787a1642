package registration

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeAccepted    = "accepted"
	outcomeRejected    = "rejected"
	outcomeDuplicate   = "duplicate"
	outcomeUnavailable = "unavailable"
	outcomeError       = "error"
)

type metrics struct {
	submissions *prometheus.CounterVec
	exports     *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registration_submissions_total",
				Help: "Registration submissions by outcome.",
			},
			[]string{"outcome"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registration_exports_total",
				Help: "Generated registration exports by format.",
			},
			[]string{"format"},
		),
	}

	if reg != nil {
		m.submissions = registerOrExisting(reg, m.submissions)
		m.exports = registerOrExisting(reg, m.exports)
	}

	return m
}

func registerOrExisting(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}
