package membership

import (
	"github.com/prometheus/client_golang/prometheus"
)

// statsFn 返回 (在册凭证数, 历史铸造总数, 状态变更序号)
type statsFn func() (float64, float64, float64)

type registryCollector struct {
	fetch statsFn

	tokensLive  *prometheus.Desc
	mintedTotal *prometheus.Desc
	height      *prometheus.Desc
}

func (c *registryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.tokensLive
	ch <- c.mintedTotal
	ch <- c.height
}

func (c *registryCollector) Collect(ch chan<- prometheus.Metric) {
	live, minted, height := c.fetch()
	ch <- prometheus.MustNewConstMetric(c.tokensLive, prometheus.GaugeValue, live)
	ch <- prometheus.MustNewConstMetric(c.mintedTotal, prometheus.CounterValue, minted)
	ch <- prometheus.MustNewConstMetric(c.height, prometheus.CounterValue, height)
}

// RegisterRegistryMetrics 在默认注册表中注册登记处指标采集器
func RegisterRegistryMetrics(fetch statsFn) error {
	collector := &registryCollector{
		fetch: fetch,
		tokensLive: prometheus.NewDesc(
			"membria_registry_tokens_live",
			"Number of tokens currently in the ledger",
			nil, nil,
		),
		mintedTotal: prometheus.NewDesc(
			"membria_registry_minted_total",
			"Monotonic mint counter, burns do not decrease it",
			nil, nil,
		),
		height: prometheus.NewDesc(
			"membria_registry_height",
			"State mutation sequence number",
			nil, nil,
		),
	}
	return prometheus.Register(collector)
}

// Stats 当前统计值，供指标采集器拉取
func (s *Service[T]) Stats() (float64, float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(len(s.tokens)), float64(s.counter), float64(s.height)
}
