package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutTotal counts checkout submissions by payment method and result.
	CheckoutTotal *prometheus.CounterVec
	// SaleSubmitLatency records sale persistence latency in milliseconds.
	SaleSubmitLatency *prometheus.HistogramVec
	// DiscountAppliedTotal counts discount applications by kind.
	DiscountAppliedTotal *prometheus.CounterVec
	// CartOperationsTotal counts cart mutations by operation and result.
	CartOperationsTotal *prometheus.CounterVec
	// AlertScanTotal counts inventory alert scans by result.
	AlertScanTotal *prometheus.CounterVec
	// AlertItemsFound tracks the number of batches flagged by the latest scan.
	AlertItemsFound *prometheus.GaugeVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout submissions by method and outcome.",
		}, []string{"method", "result"})
		SaleSubmitLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sale_submit_duration_ms",
			Help:      "Latency for sale persistence in milliseconds.",
			Buckets:   defaultLatencyBuckets,
		}, []string{"result"})
		DiscountAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_applied_total",
			Help:      "Count of discount applications by kind and outcome.",
		}, []string{"kind", "result"})
		CartOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Count of cart mutations by operation and outcome.",
		}, []string{"op", "result"})
		AlertScanTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_scan_total",
			Help:      "Count of inventory alert scans by outcome.",
		}, []string{"result"})
		AlertItemsFound = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alert_items_found",
			Help:      "Batches flagged by the most recent alert scan.",
		}, []string{"kind"})

		reg.MustRegister(CheckoutTotal, SaleSubmitLatency, DiscountAppliedTotal, CartOperationsTotal, AlertScanTotal, AlertItemsFound)
	})
}
