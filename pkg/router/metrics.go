// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

package router

import "github.com/prometheus/client_golang/prometheus"

var filtersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "topictree",
	Subsystem: "router",
	Name:      "filters",
	Help:      "Number of registered filters.",
})

var deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "topictree",
	Subsystem: "router",
	Name:      "delivered_messages_total",
	Help:      "Number of messages delivered to subscribers.",
})

var publishLatency = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "topictree",
		Subsystem: "router",
		Name:      "publish_latency_seconds",
		Help:      "Histogram of publish latency (seconds).",
		Buckets:   []float64{0.00025, 0.0005, 0.001, 0.0025, .005, .01, .025, .05, .1, .25, .5, 1},
	},
)

func init() {
	prometheus.MustRegister(filtersGauge)
	prometheus.MustRegister(deliveredCounter)
	prometheus.MustRegister(publishLatency)
}
