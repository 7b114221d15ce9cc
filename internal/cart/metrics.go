package cart

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Mutations *prometheus.CounterVec
	Size      prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bloomstore",
				Name:      "cart_mutations_total",
				Help:      "Cart writes by operation",
			},
			[]string{"op"},
		),
		Size: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "bloomstore",
				Name:      "cart_items_count",
				Help:      "Badge count after each cart write",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
			},
		),
	}
	reg.MustRegister(m.Mutations, m.Size)
	return m
}

// Observe is a Listener.
func (m *Metrics) Observe(e Event) {
	m.Mutations.WithLabelValues(string(e.Op)).Inc()
	m.Size.Observe(float64(e.Count))
}
