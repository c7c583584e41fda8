package metrics

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type ClaimsMetrics struct {
	campaignsCreated *prometheus.CounterVec
	claimsProcessed  prometheus.Counter
	claimsRejected   *prometheus.CounterVec
	remainder        *prometheus.GaugeVec
}

var (
	claimsOnce     sync.Once
	claimsRegistry *ClaimsMetrics
)

func Claims() *ClaimsMetrics {
	claimsOnce.Do(func() {
		claimsRegistry = &ClaimsMetrics{
			campaignsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "claims_campaigns_created_total",
				Help: "Count of campaigns created by lockup kind.",
			}, []string{"lockup"}),
			claimsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "claims_processed_total",
				Help: "Count of successfully processed claims.",
			}),
			claimsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "claims_rejected_total",
				Help: "Count of rejected claims by reason.",
			}, []string{"reason"}),
			remainder: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "claims_campaign_remainder",
				Help: "Unclaimed remainder per campaign.",
			}, []string{"campaign"}),
		}
		prometheus.MustRegister(
			claimsRegistry.campaignsCreated,
			claimsRegistry.claimsProcessed,
			claimsRegistry.claimsRejected,
			claimsRegistry.remainder,
		)
	})
	return claimsRegistry
}

func (m *ClaimsMetrics) CampaignCreated(lockup string) {
	if m == nil {
		return
	}
	m.campaignsCreated.WithLabelValues(lockup).Inc()
}

func (m *ClaimsMetrics) ClaimProcessed(campaign string, remainder *big.Int) {
	if m == nil {
		return
	}
	m.claimsProcessed.Inc()
	if remainder != nil {
		value, _ := new(big.Float).SetInt(remainder).Float64()
		m.remainder.WithLabelValues(campaign).Set(value)
	}
}

func (m *ClaimsMetrics) ClaimRejected(reason string) {
	if m == nil || reason == "" {
		return
	}
	m.claimsRejected.WithLabelValues(reason).Inc()
}
