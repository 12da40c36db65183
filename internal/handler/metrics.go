package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkoutsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "kafka_consumer",
		Name:      "checkouts_processed_total",
		Help:      "Total number of successfully processed checkout messages.",
	})

	checkoutsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "kafka_consumer",
		Name:      "checkouts_failed_total",
		Help:      "Total number of failed checkout processing attempts.",
	})

	checkoutsDLQ = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "kafka_consumer",
		Name:      "checkouts_dlq_total",
		Help:      "Total number of checkout messages written to the DLQ.",
	})

	commitErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "kafka_consumer",
		Name:      "commit_errors_total",
		Help:      "Total number of Kafka commit errors.",
	})
)
