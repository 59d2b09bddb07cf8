package observability

import (
	"math/big"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"hopemarket/native/market"
)

type eventMetrics struct {
	activity *prometheus.CounterVec
	sales    *prometheus.CounterVec
	volume   *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking ledger events.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			activity: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "hopemarket",
				Subsystem: "events",
				Name:      "activity_total",
				Help:      "Count of committed ledger events by type.",
			}, []string{"type"}),
			sales: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "hopemarket",
				Subsystem: "events",
				Name:      "sales_total",
				Help:      "Count of settled sales segmented by collection.",
			}, []string{"collection"}),
			volume: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "hopemarket",
				Subsystem: "events",
				Name:      "sale_volume_total",
				Help:      "Settled sale volume segmented by denomination.",
			}, []string{"denom"}),
		}
		prometheus.MustRegister(eventRegistry.activity, eventRegistry.sales, eventRegistry.volume)
	})
	return eventRegistry
}

func normalizeLabel(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}

func (m *eventMetrics) recordEvent(eventType string) {
	if m == nil {
		return
	}
	m.activity.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *eventMetrics) recordSale(collection, denom string, amount *big.Int) {
	if m == nil {
		return
	}
	m.sales.WithLabelValues(normalizeLabel(collection)).Inc()
	if amount != nil && amount.Sign() > 0 {
		value, _ := new(big.Float).SetInt(amount).Float64()
		m.volume.WithLabelValues(normalizeLabel(denom)).Add(value)
	}
}

// MarketObserver decorates an emitter with event metrics. It satisfies
// market.Emitter and forwards every event to the wrapped emitter after
// recording it.
type MarketObserver struct {
	next market.Emitter
}

// NewMarketObserver wraps next, which may be nil for metrics-only use.
func NewMarketObserver(next market.Emitter) *MarketObserver {
	return &MarketObserver{next: next}
}

func (o *MarketObserver) Emit(evt market.Event) {
	if evt != nil {
		Events().recordEvent(evt.EventType())
		if settled, ok := evt.(market.SaleSettled); ok {
			Events().recordSale(settled.Sale.Collection, settled.Sale.Denom, settled.Sale.Amount)
		}
	}
	if o.next != nil {
		o.next.Emit(evt)
	}
}
