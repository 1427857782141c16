// Package stats implements dram.EnergyRecorder as a Prometheus
// collector, following the corpus's habit of exposing runtime counters
// via github.com/prometheus/client_golang rather than hand-rolled
// accumulators.
package stats

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/user-none/go-dramsim/dram"
)

// Collector records command-issue counts, per-rank background energy
// cycles, and HBM dual-issue events, registering itself as an ordinary
// Prometheus Collector so a host process can serve it over /metrics.
type Collector struct {
	commandsIssued *prometheus.CounterVec
	backgroundCycles *prometheus.CounterVec
	hbmDualIssues  prometheus.Counter
}

// NewCollector builds a Collector whose metrics carry the given channel
// label. dram.NewMemorySystem hands one EnergyRecorder to every channel,
// so a Collector passed there counts all of that memory system's
// channels under the one label.
func NewCollector(channel string) *Collector {
	return &Collector{
		commandsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dramsim",
			Subsystem: "channel",
			Name:      "commands_issued_total",
			Help:      "DRAM commands issued, by command kind.",
			ConstLabels: prometheus.Labels{"channel": channel},
		}, []string{"kind"}),
		backgroundCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dramsim",
			Subsystem: "channel",
			Name:      "background_cycles_total",
			Help:      "Cycles spent in each background power state, by rank and state.",
			ConstLabels: prometheus.Labels{"channel": channel},
		}, []string{"rank", "state"}),
		hbmDualIssues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dramsim",
			Subsystem: "channel",
			Name:      "hbm_dual_command_issue_cycles_total",
			Help:      "Cycles in which HBM issued a column and a non-column command together.",
			ConstLabels: prometheus.Labels{"channel": channel},
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.commandsIssued.Describe(ch)
	c.backgroundCycles.Describe(ch)
	ch <- c.hbmDualIssues.Desc()
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.commandsIssued.Collect(ch)
	c.backgroundCycles.Collect(ch)
	ch <- c.hbmDualIssues
}

// RecordCommandIssued implements dram.EnergyRecorder.
func (c *Collector) RecordCommandIssued(kind dram.CommandKind) {
	c.commandsIssued.WithLabelValues(kind.String()).Inc()
}

// RecordBackgroundCycle implements dram.EnergyRecorder, classifying the
// cycle as self-refresh, precharge-standby, or active-standby energy
// (spec §4.5 step 3).
func (c *Collector) RecordBackgroundCycle(rank int, selfRefresh, allIdle bool) {
	state := "active_standby"
	switch {
	case selfRefresh:
		state = "self_refresh"
	case allIdle:
		state = "precharge_standby"
	}
	c.backgroundCycles.WithLabelValues(strconv.Itoa(rank), state).Inc()
}

// RecordHBMDualIssue implements dram.EnergyRecorder.
func (c *Collector) RecordHBMDualIssue() {
	c.hbmDualIssues.Inc()
}

var _ dram.EnergyRecorder = (*Collector)(nil)
