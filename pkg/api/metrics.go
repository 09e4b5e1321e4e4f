// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

package api

import "github.com/prometheus/client_golang/prometheus"

var conns = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "topictree",
	Subsystem: "api",
	Name:      "connections",
	Help:      "Number of subscriber connections.",
})

var publishCounter = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "topictree",
	Subsystem: "api",
	Name:      "published_messages_total",
	Help:      "Number of messages accepted on the publish endpoint.",
})

var droppedCounter = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "topictree",
	Subsystem: "api",
	Name:      "dropped_messages_total",
	Help:      "Number of messages dropped for slow subscribers.",
})

func init() {
	prometheus.MustRegister(conns)
	prometheus.MustRegister(publishCounter)
	prometheus.MustRegister(droppedCounter)
}
