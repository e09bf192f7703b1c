// Package metrics collects and exposes Prometheus metrics for the data-access
// layer and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services and handlers report to.
type Recorder interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
	RecordCacheError(cache string)
	RecordTx(op string, err error)
	RecordHTTPStatus(statusCode int)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	cacheLookups *prometheus.CounterVec
	cacheErrors  *prometheus.CounterVec
	txTotal      *prometheus.CounterVec
	httpStatus   *prometheus.CounterVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "suggestionapp_cache_lookups_total",
			Help: "Cache lookups by cache key and result.",
		}, []string{"cache", "result"}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "suggestionapp_cache_errors_total",
			Help: "Cache backend failures that were treated as misses.",
		}, []string{"cache"}),
		txTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "suggestionapp_transactions_total",
			Help: "Transactions by operation and outcome.",
		}, []string{"op", "outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "suggestionapp_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(c.cacheLookups, c.cacheErrors, c.txTotal, c.httpStatus)

	return c
}

func (c *Collector) RecordCacheHit(cache string) {
	c.cacheLookups.WithLabelValues(cache, "hit").Inc()
}

func (c *Collector) RecordCacheMiss(cache string) {
	c.cacheLookups.WithLabelValues(cache, "miss").Inc()
}

func (c *Collector) RecordCacheError(cache string) {
	c.cacheErrors.WithLabelValues(cache).Inc()
}

// RecordTx counts a finished transaction as committed or rolled back.
func (c *Collector) RecordTx(op string, err error) {
	outcome := "committed"
	if err != nil {
		outcome = "rolled_back"
	}
	c.txTotal.WithLabelValues(op, outcome).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordCacheHit(string)   {}
func (Nop) RecordCacheMiss(string)  {}
func (Nop) RecordCacheError(string) {}
func (Nop) RecordTx(string, error)  {}
func (Nop) RecordHTTPStatus(int)    {}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
