// Package metrics exports cart and checkout state to Prometheus.
package metrics

import (
	"net/http"
	"sync"

	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/niksmo/sneakers/internal/core/port"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ port.CheckoutObserver = (*Metrics)(nil)

const namespace = "storefront"

type Metrics struct {
	registry *prometheus.Registry

	lineItems  prometheus.Gauge
	totalItems prometheus.Gauge
	cartValue  prometheus.Gauge
	mutations  *prometheus.CounterVec
	checkouts  *prometheus.CounterVec

	mu           sync.Mutex
	lastRevision uint64
}

// New registers the collectors in a fresh registry together with
// the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		lineItems: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "line_items",
			Help:      "Distinct line items in the cart.",
		}),
		totalItems: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "items",
			Help:      "Sum of line item quantities in the cart.",
		}),
		cartValue: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "value",
			Help:      "Cart subtotal in the shop currency.",
		}),
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart mutations by operation.",
		}, []string{"op"}),
		checkouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "submissions_total",
			Help:      "Checkout submissions by result.",
		}, []string{"result"}),
	}
}

// Subscribe starts observing sub and returns the cancel func.
func (m *Metrics) Subscribe(sub port.CartSubscriber) (cancel func()) {
	return sub.Subscribe(m.ObserveCart)
}

// ObserveCart counts the mutation and updates the cart gauges.
//
// Gauges are left untouched by snapshots older than the last seen one.
func (m *Metrics) ObserveCart(s domain.CartSnapshot) {
	if s.Op != "" {
		m.mutations.WithLabelValues(string(s.Op)).Inc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Revision < m.lastRevision {
		return
	}
	m.lastRevision = s.Revision

	value, _ := s.TotalPrice.Float64()
	m.lineItems.Set(float64(len(s.Items)))
	m.totalItems.Set(float64(s.TotalItems))
	m.cartValue.Set(value)
}

func (m *Metrics) ObserveCheckout(result string) {
	m.checkouts.WithLabelValues(result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
