package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sparkchat_messages_sent_total",
		Help: "Messages durably persisted via REST or the realtime channel.",
	})
	MessagesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sparkchat_messages_deleted_total",
		Help: "Messages removed by their sender.",
	})
	PushesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sparkchat_pushes_delivered_total",
		Help: "Payloads accepted by a bound realtime channel.",
	})
	PushesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sparkchat_pushes_dropped_total",
		Help: "Payloads dropped because a bound channel would not accept the write.",
	})
	BoundChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sparkchat_bound_channels",
		Help: "Realtime channels currently bound to an identity.",
	})
)
