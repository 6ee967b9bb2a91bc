package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/adfharrison1/go-search/pkg/domain"
)

var indexDocumentsDesc = prometheus.NewDesc(
	prometheus.BuildFQName(namespace, "", "index_documents"),
	"Documents stored per index",
	[]string{"index"}, nil,
)

// indexCollector reads document counts at scrape time
type indexCollector struct {
	list func() []domain.IndexInfo
}

func (c indexCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- indexDocumentsDesc
}

func (c indexCollector) Collect(ch chan<- prometheus.Metric) {
	for _, info := range c.list() {
		ch <- prometheus.MustNewConstMetric(indexDocumentsDesc, prometheus.GaugeValue, float64(info.DocumentCount), info.UID)
	}
}

// WatchIndexes exports the document count of every index returned by list
func (m *Metrics) WatchIndexes(list func() []domain.IndexInfo) {
	m.registry.MustRegister(indexCollector{list: list})
}
