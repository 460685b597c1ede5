// Package metrics exposes the Prometheus counters and gauges the node
// state machine reports through, promoting the teacher's brush with the
// Prometheus ecosystem (prometheus/common/log in core/transport.go) to the
// real client library.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// CriticalSectionEntries counts every completed critical-section entry,
	// labeled by the entering node, incremented where assign_privilege
	// transitions using to true.
	CriticalSectionEntries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "raymond",
		Name:      "critical_section_entries_total",
		Help:      "Number of times a node has entered its critical section.",
	}, []string{"node"})

	// RecoveriesCompleted counts every finalize_recover call, labeled by
	// the recovering node.
	RecoveriesCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "raymond",
		Name:      "recoveries_completed_total",
		Help:      "Number of times a node has completed the kill/restart/advise recovery protocol.",
	}, []string{"node"})

	// RequestQueueLength tracks the current length of request_q per node,
	// set by step() outside recovery and again after assign_privilege pops
	// the head.
	RequestQueueLength = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "raymond",
		Name:      "request_queue_length",
		Help:      "Current length of a node's pending request queue.",
	}, []string{"node"})
)

func init() {
	prometheus.MustRegister(CriticalSectionEntries, RecoveriesCompleted, RequestQueueLength)
}
