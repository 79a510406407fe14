package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — счётчики калькулятора и заявок. Реализует
// calculator.Metrics и orders.Metrics.
type Metrics struct {
	reseeds     *prometheus.CounterVec
	storeErrors *prometheus.CounterVec
	submitted   *prometheus.CounterVec
	failed      *prometheus.CounterVec
	limited     *prometheus.CounterVec
	quotes      *prometheus.CounterVec
}

// New регистрирует счётчики в reg; nil — глобальный регистр.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		reseeds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calculator_catalog_reseeds_total",
			Help: "Catalog document replaced with seed data.",
		}, []string{"reason"}),
		storeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calculator_catalog_store_errors_total",
			Help: "Catalog store read/write failures.",
		}, []string{"op"}),
		submitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_submitted_total",
			Help: "Orders accepted into the inbox.",
		}, []string{"source"}),
		failed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_failed_total",
			Help: "Order submission failures.",
		}, []string{"reason"}),
		limited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_rate_limited_total",
			Help: "Order submissions rejected by cooldown.",
		}, []string{"source"}),
		quotes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calculator_quotes_total",
			Help: "Price quotes computed.",
		}, []string{"channel"}),
	}
}

func (m *Metrics) CatalogReseeded(reason string)  { m.reseeds.WithLabelValues(reason).Inc() }
func (m *Metrics) CatalogStoreError(op string)    { m.storeErrors.WithLabelValues(op).Inc() }
func (m *Metrics) OrderSubmitted(source string)   { m.submitted.WithLabelValues(source).Inc() }
func (m *Metrics) OrderFailed(reason string)      { m.failed.WithLabelValues(reason).Inc() }
func (m *Metrics) OrderRateLimited(source string) { m.limited.WithLabelValues(source).Inc() }
func (m *Metrics) QuoteComputed(channel string)   { m.quotes.WithLabelValues(channel).Inc() }
