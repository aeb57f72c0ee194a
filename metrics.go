package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsMergedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "guard_client",
			Name:      "events_merged_total",
			Help:      "Live hub events merged into a local store.",
		},
	)

	framesDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "guard_client",
			Name:      "frames_dropped_total",
			Help:      "Hub frames discarded because they were not valid JSON or did not match the expected schema.",
		},
	)

	reconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "guard_client",
			Name:      "stream_reconnects_total",
			Help:      "Stream connection attempts after a transport or credential failure.",
		},
	)

	// Labelled by hashed topic shard (see job.ShardLabel) to keep
	// cardinality bounded regardless of how many conversations exist.
	sendFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guard_client",
			Name:      "send_failures_total",
			Help:      "Messages whose REST write failed terminally and were rolled back.",
		},
		[]string{"shard"},
	)
)
