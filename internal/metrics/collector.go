package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pixil98/go-tabletop/internal/arena"
)

// Collector counts merge outcomes and dropped packs. It is an arena.Observer
// and can be handed to both the arena and the resource table of a room.
type Collector struct {
	assigns *prometheus.CounterVec
	drops   *prometheus.CounterVec
}

func NewCollector() *Collector {
	return &Collector{
		assigns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabletop",
			Subsystem: "arena",
			Name:      "assign_total",
			Help:      "Assign attempts by merge outcome.",
		}, []string{"outcome"}),
		drops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabletop",
			Name:      "pack_dropped_total",
			Help:      "Incoming packs that could not be decoded, by reason.",
		}, []string{"reason"}),
	}
}

func (c *Collector) ObserveAssign(o arena.Outcome) {
	c.assigns.WithLabelValues(o.String()).Inc()
}

func (c *Collector) ObserveDrop(reason string) {
	c.drops.WithLabelValues(reason).Inc()
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.assigns.Describe(ch)
	c.drops.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.assigns.Collect(ch)
	c.drops.Collect(ch)
}
