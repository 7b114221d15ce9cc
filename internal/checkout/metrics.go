package checkout

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeOK     = "ok"
	outcomeEmpty  = "empty_cart"
	outcomeFailed = "failed"
)

type Metrics struct {
	Submissions *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bloomstore",
				Name:      "checkout_submissions_total",
				Help:      "Checkout attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.Submissions)
	return m
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}
