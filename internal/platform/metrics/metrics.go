package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "medgraph/internal/platform/errors"
)

// Registry holds the client-side counters. A nil *Registry is valid and
// records nothing.
type Registry struct {
	registry *prometheus.Registry

	SearchLookupsTotal  prometheus.Counter
	SearchStaleTotal    prometheus.Counter
	ViewportOpsTotal    *prometheus.CounterVec
	BackendCallsTotal   *prometheus.CounterVec
	FocusDiscardedTotal *prometheus.CounterVec
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Registry{
		registry: reg,
		SearchLookupsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "medgraph_search_lookups_total",
			Help: "Patient lookups issued after the debounce period",
		}),
		SearchStaleTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "medgraph_search_stale_responses_total",
			Help: "Lookup responses discarded because a newer token was issued",
		}),
		ViewportOpsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medgraph_viewport_operations_total",
			Help: "Graph viewport transitions",
		}, []string{"op"}), // present, update, clear
		BackendCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medgraph_backend_calls_total",
			Help: "Backend calls by operation and outcome",
		}, []string{"op", "outcome"}), // ok, rejected, error
		FocusDiscardedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medgraph_focus_results_discarded_total",
			Help: "Fetch results dropped because the focal patient changed",
		}, []string{"view"}),
	}
}

func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Registry) LookupIssued() {
	if r == nil {
		return
	}
	r.SearchLookupsTotal.Inc()
}

func (r *Registry) StaleDiscarded() {
	if r == nil {
		return
	}
	r.SearchStaleTotal.Inc()
}

func (r *Registry) ViewportOp(op string) {
	if r == nil {
		return
	}
	r.ViewportOpsTotal.WithLabelValues(op).Inc()
}

func (r *Registry) FocusDiscarded(view string) {
	if r == nil {
		return
	}
	r.FocusDiscardedTotal.WithLabelValues(view).Inc()
}

func (r *Registry) BackendCall(op string, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrRejected):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	r.BackendCallsTotal.WithLabelValues(op, outcome).Inc()
}
