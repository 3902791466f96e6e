package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// StockLevel tracks the last known quantity per item
	StockLevel = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "item_stock_level",
			Help: "Current stock level per item",
		},
		[]string{"item"},
	)

	// EventsPublished tracks item events by kind and outcome
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "item_events_published_total",
			Help: "Total number of item events handed to the publisher",
		},
		[]string{"kind", "result"},
	)

	// BreakerState tracks the store circuit breaker (0=closed, 1=half-open, 2=open)
	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_circuit_breaker_state",
			Help: "Store circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// stock remembers the newest item copy applied to the gauge per name. Workers observe
// events in any order, so older copies and events for deleted items are skipped.
var stock = struct {
	sync.Mutex
	latest map[string]stockEntry
}{latest: make(map[string]stockEntry)}

type stockEntry struct {
	item    domain.Item
	deleted bool
}

// ObserveEvent records a published event and keeps the stock gauge in line with it.
func ObserveEvent(event domain.ItemEvent, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	EventsPublished.WithLabelValues(string(event.Kind), result).Inc()

	observeStock(event)
}

func observeStock(event domain.ItemEvent) {
	stock.Lock()
	defer stock.Unlock()

	item := event.Item
	deleted := event.Kind == domain.EventItemDeleted

	if prev, ok := stock.latest[item.Name]; ok {
		switch {
		case item.ID < prev.item.ID:
			return
		case item.ID == prev.item.ID && prev.deleted:
			return
		case item.ID == prev.item.ID && !deleted && !item.Supersedes(prev.item):
			return
		}
	}
	stock.latest[item.Name] = stockEntry{item: item, deleted: deleted}

	if deleted {
		StockLevel.DeleteLabelValues(item.Name)
		return
	}
	StockLevel.WithLabelValues(item.Name).Set(float64(item.Quantity))
}

// Middleware records request count and latency labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
