package metrics

import (
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

// PebbleSource is satisfied by storage.PebbleDB.
type PebbleSource interface {
	Metrics() *pebble.Metrics
}

// PebbleCollector reports a few storage level statistics of the pebble
// backend on each scrape.
type PebbleCollector struct {
	db PebbleSource

	compactionCount *prometheus.Desc
	memtableSize    *prometheus.Desc
	walSize         *prometheus.Desc
	diskUsage       *prometheus.Desc
}

func NewPebbleCollector(db PebbleSource) *PebbleCollector {
	return &PebbleCollector{
		db: db,
		compactionCount: prometheus.NewDesc(
			"tabletop_pebble_compaction_count_total",
			"Total number of compactions performed",
			nil, nil,
		),
		memtableSize: prometheus.NewDesc(
			"tabletop_pebble_memtable_size_bytes",
			"Current size of the memtables",
			nil, nil,
		),
		walSize: prometheus.NewDesc(
			"tabletop_pebble_wal_size_bytes",
			"Size of the live write ahead log",
			nil, nil,
		),
		diskUsage: prometheus.NewDesc(
			"tabletop_pebble_disk_usage_bytes",
			"Total disk space used by the database",
			nil, nil,
		),
	}
}

func (pc *PebbleCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- pc.compactionCount
	ch <- pc.memtableSize
	ch <- pc.walSize
	ch <- pc.diskUsage
}

func (pc *PebbleCollector) Collect(ch chan<- prometheus.Metric) {
	m := pc.db.Metrics()

	ch <- prometheus.MustNewConstMetric(pc.compactionCount, prometheus.CounterValue, float64(m.Compact.Count))
	ch <- prometheus.MustNewConstMetric(pc.memtableSize, prometheus.GaugeValue, float64(m.MemTable.Size))
	ch <- prometheus.MustNewConstMetric(pc.walSize, prometheus.GaugeValue, float64(m.WAL.Size))
	ch <- prometheus.MustNewConstMetric(pc.diskUsage, prometheus.GaugeValue, float64(m.DiskSpaceUsage()))
}
