// Package telemetry exposes the Prometheus collectors of the serving path.
// All methods are safe on a nil *Metrics.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flight_delay"

// Metrics holds the collectors registered on a private registry
type Metrics struct {
	registry *prometheus.Registry

	predictions       *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	fallbacks         prometheus.Counter
	reloads           *prometheus.CounterVec
	modelLoaded       prometheus.Gauge
	retrains          *prometheus.CounterVec
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions served by risk level and whether the model was used.",
		}, []string{"risk", "model_used"}),
		predictionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent computing one prediction.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "explainer_fallbacks_total",
			Help:      "Model attributions that fell back to simulated values.",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_reloads_total",
			Help:      "Serving state reloads by result.",
		}, []string{"result"}),
		modelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_loaded",
			Help:      "1 when the current serving state holds a trained model.",
		}),
		retrains: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrains_total",
			Help:      "Training runs started by the server by result.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.predictions,
		m.predictionLatency,
		m.fallbacks,
		m.reloads,
		m.modelLoaded,
		m.retrains,
		m.requests,
		m.requestDuration,
	)
	return m
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObservePrediction counts one prediction
func (m *Metrics) ObservePrediction(risk string, modelUsed bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(risk, strconv.FormatBool(modelUsed)).Inc()
	m.predictionLatency.Observe(elapsed.Seconds())
}

// ExplainerFallback counts one fallback from model to simulated attributions
func (m *Metrics) ExplainerFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

// ObserveReload counts a reload and records whether a model is loaded
func (m *Metrics) ObserveReload(err error, modelLoaded bool) {
	if m == nil {
		return
	}
	m.reloads.WithLabelValues(result(err)).Inc()
	if modelLoaded {
		m.modelLoaded.Set(1)
	} else {
		m.modelLoaded.Set(0)
	}
}

// ObserveRetrain counts a server-initiated training run
func (m *Metrics) ObserveRetrain(err error) {
	if m == nil {
		return
	}
	m.retrains.WithLabelValues(result(err)).Inc()
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
