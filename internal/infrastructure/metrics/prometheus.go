package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/beerlens/backend/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every comparison metric
const DefaultNamespace = "compare"

// PrometheusObserver exports selection and comparison metrics to Prometheus.
type PrometheusObserver struct {
	runs          *prometheus.CounterVec
	itemErrors    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec
	rejections    prometheus.Counter
}

// NewPrometheusObserver registers the comparison metrics with reg.
// Collectors that are already registered are reused, so building a second
// observer against the same registerer is safe.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	observer := &PrometheusObserver{}
	var err error

	observer.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Comparison runs by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, fmt.Errorf("register runs counter: %w", err)
	}

	observer.itemErrors, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "item_errors_total",
		Help:      "Comparison items degraded to fallback values, by cause.",
	}, []string{"kind"}))
	if err != nil {
		return nil, fmt.Errorf("register item errors counter: %w", err)
	}

	observer.fetchDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Latency of remote product fetches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"}))
	if err != nil {
		return nil, fmt.Errorf("register fetch histogram: %w", err)
	}

	observer.fetchErrors, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_errors_total",
		Help:      "Failed remote product fetches.",
	}, []string{"source"}))
	if err != nil {
		return nil, fmt.Errorf("register fetch errors counter: %w", err)
	}

	observer.rejections, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "selection_rejections_total",
		Help:      "Selection adds rejected because the selection was full.",
	}))
	if err != nil {
		return nil, fmt.Errorf("register rejections counter: %w", err)
	}

	return observer, nil
}

// register adds c to reg, returning the existing collector when one with the
// same descriptor is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RunFinished counts a finished run.
func (o *PrometheusObserver) RunFinished(outcome string, _ int, _ int) {
	if o == nil {
		return
	}
	o.runs.WithLabelValues(outcome).Inc()
}

// ItemFailed counts a degraded item.
func (o *PrometheusObserver) ItemFailed(kind string) {
	if o == nil {
		return
	}
	o.itemErrors.WithLabelValues(kind).Inc()
}

// FetchObserved records fetch latency and failures.
// A page without a capacity row answered successfully and is not counted as a failure.
func (o *PrometheusObserver) FetchObserved(source string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.fetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil && !errors.Is(err, domain.ErrCapacityNotFound) {
		o.fetchErrors.WithLabelValues(source).Inc()
	}
}

func (o *PrometheusObserver) SelectionRejected() {
	if o == nil {
		return
	}
	o.rejections.Inc()
}

var _ domain.ComparisonObserver = (*PrometheusObserver)(nil)
