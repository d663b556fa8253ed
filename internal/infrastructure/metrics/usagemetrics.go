// Package metrics exposes Prometheus counters for usage gating decisions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	GateRateLimit = "rate_limit"
	GateLedger    = "ledger"
	GateAllowance = "allowance"

	OutcomeAllowed  = "allowed"
	OutcomeDenied   = "denied"
	OutcomeFailOpen = "fail_open"

	ConversionConverted        = "converted"
	ConversionAlreadyConverted = "already_converted"
	ConversionNotFound         = "not_found"
	ConversionDecryptFailed    = "decryption_failure"
	ConversionError            = "error"
)

// UsageMetrics is safe to use through a nil pointer; every method is then a
// no-op so callers and tests need not wire a registry.
type UsageMetrics struct {
	registry         *prometheus.Registry
	decisions        *prometheus.CounterVec
	storeErrors      *prometheus.CounterVec
	conversions      *prometheus.CounterVec
	generations      *prometheus.HistogramVec
	allowanceConsume *prometheus.CounterVec
}

func NewUsageMetrics() *UsageMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &UsageMetrics{
		registry: registry,
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "applytrack_usage_decisions_total",
			Help: "Usage gate decisions by gate, feature, tier and outcome.",
		}, []string{"gate", "feature", "tier", "outcome"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "applytrack_usage_store_errors_total",
			Help: "Counter and relational store failures by store and operation.",
		}, []string{"store", "operation"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "applytrack_preview_conversions_total",
			Help: "Preview session conversion attempts by outcome.",
		}, []string{"outcome"}),
		generations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "applytrack_generation_duration_seconds",
			Help:    "AI generation latency by feature and outcome.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"feature", "outcome"}),
		allowanceConsume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "applytrack_allowance_consumptions_total",
			Help: "One-shot allowance consumptions by feature and result.",
		}, []string{"feature", "result"}),
	}
	registry.MustRegister(m.decisions, m.storeErrors, m.conversions, m.generations, m.allowanceConsume)
	return m
}

func (m *UsageMetrics) RecordDecision(gate, feature, tier, outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(gate, feature, tier, outcome).Inc()
}

func (m *UsageMetrics) RecordStoreError(store, operation string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(store, operation).Inc()
}

func (m *UsageMetrics) RecordConversion(outcome string) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(outcome).Inc()
}

func (m *UsageMetrics) ObserveGeneration(feature string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.generations.WithLabelValues(feature, outcome).Observe(d.Seconds())
}

func (m *UsageMetrics) RecordAllowanceConsume(feature, result string) {
	if m == nil {
		return
	}
	m.allowanceConsume.WithLabelValues(feature, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *UsageMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
