package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hopemarket/native/market"
)

// Server exposes the market's read surface over HTTP. All routes are
// read-only; mutations enter the ledger through the node, not the gateway.
type Server struct {
	engine   *market.Engine
	logger   *slog.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewServer(engine *market.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:   engine,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hopemarket",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Count of gateway requests by route and status.",
		}, []string{"route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hopemarket",
			Subsystem: "gateway",
			Name:      "request_seconds",
			Help:      "Gateway request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	s.registry.MustRegister(s.requests, s.latency)
	return s
}

// Handler builds the chi router with the full query surface mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/config", s.handleConfig)
		r.Route("/collections/{collection}", func(r chi.Router) {
			r.Get("/", s.handleCollection)
			r.Get("/asks", s.handleAsks)
			r.Get("/asks/count", s.handleAskCount)
			r.Get("/asks/{token}", s.handleAsk)
			r.Get("/asks/{token}/bids", s.handleItemBids)
			r.Get("/collection-bids", s.handleCollectionBids)
			r.Get("/sales", s.handleCollectionSales)
			r.Get("/sales/{token}", s.handleItemSales)
			r.Get("/tvl", s.handleCollectionTvl)
		})
		r.Route("/sellers/{seller}", func(r chi.Router) {
			r.Get("/asks", s.handleSellerAsks)
			r.Get("/bids", s.handleSellerBids)
			r.Get("/sales", s.handleSellerSales)
		})
		r.Route("/bidders/{bidder}", func(r chi.Router) {
			r.Get("/bids", s.handleBidderBids)
			r.Get("/collection-bids", s.handleBidderCollectionBids)
		})
		r.Get("/buyers/{buyer}/sales", s.handleBuyerSales)
		r.Get("/denoms/{denom}/tvl", s.handleDenomTvl)
	})
	return r
}

// instrument records per-route counters and latency, resolving the chi route
// pattern after the handler ran so placeholders stay unexpanded.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		if rec.status >= http.StatusInternalServerError {
			s.logger.Error("gateway request failed", "route", route, "status", rec.status, "path", r.URL.Path)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorBody{Error: msg})
}

// limitParam parses the limit query parameter; the engine clamps it further.
func limitParam(r *http.Request) uint32 {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

func timeParam(r *http.Request, key string) uint64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
