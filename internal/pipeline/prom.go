package pipeline

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the pipeline's Prometheus instruments. One instance per
// process; tests pass a fresh registry.
type Metrics struct {
	SentencesTotal    prometheus.Counter
	SentencesRejected *prometheus.CounterVec
	FieldsAccepted    prometheus.Counter
	SourceSwitches    prometheus.Counter
	Notifications     prometheus.Counter
	Subscribers       prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		SentencesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pelorus_sentences_total",
			Help: "Raw sentences handed to the pipeline.",
		}),
		SentencesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pelorus_sentences_rejected_total",
			Help: "Sentences dropped, by validation/decode error kind.",
		}, []string{"reason"}),
		FieldsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pelorus_fields_accepted_total",
			Help: "Decoded field updates applied to the store.",
		}),
		SourceSwitches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pelorus_source_switches_total",
			Help: "Arbitration lock changes across all logical metrics.",
		}),
		Notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pelorus_notifications_total",
			Help: "MetricValue deliveries to subscribers.",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pelorus_subscribers",
			Help: "Currently registered subscriptions.",
		}),
	}

	reg.MustRegister(
		m.SentencesTotal, m.SentencesRejected, m.FieldsAccepted,
		m.SourceSwitches, m.Notifications, m.Subscribers,
	)
	return m
}
