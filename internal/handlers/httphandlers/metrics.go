package httphandlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metricsRegistry struct {
	registry              *prometheus.Registry
	contractsCreatedTotal *prometheus.CounterVec
	transactionsTotal     *prometheus.CounterVec
}

func newMetricsRegistry() *metricsRegistry {
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_contracts_created_total",
		Help: "Total number of contract creation requests",
	}, []string{"status"})

	transactions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_transactions_total",
		Help: "Total number of on-chain transaction submissions",
	}, []string{"kind", "status"})

	r := prometheus.NewRegistry()
	r.MustRegister(created, transactions)

	return &metricsRegistry{
		registry:              r,
		contractsCreatedTotal: created,
		transactionsTotal:     transactions,
	}
}

func (m *metricsRegistry) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metricsRegistry) incContractCreated(status string) {
	m.contractsCreatedTotal.WithLabelValues(status).Inc()
}

func (m *metricsRegistry) incTransaction(kind, status string) {
	m.transactionsTotal.WithLabelValues(kind, status).Inc()
}
