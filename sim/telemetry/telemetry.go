// Package telemetry exposes drive-thru runs as prometheus metrics.
//
// A Collector is a trace.Sink: attach it to a restaurant with
// restaurant.WithSink and it counts customers by outcome, observes stage
// durations and tracks wait lines as events happen. Record adds the per-station
// results of a finished run. Metrics are written to a node-exporter style
// textfile; nothing is served over the network.
package telemetry

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/drivethru-sim/drivethru-sim/sim/restaurant"
	"github.com/drivethru-sim/drivethru-sim/sim/trace"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "drivethru"

// Customer outcomes used as the "outcome" label.
const (
	OutcomeBalked    = "balked"
	OutcomeEntered   = "entered"
	OutcomeCompleted = "completed"
)

// Buckets in simulated minutes.
var durationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60}

// Collector holds the drive-thru metrics in its own registry.
type Collector struct {
	registry *prometheus.Registry

	Customers         *prometheus.CounterVec
	BackpressureWaits *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec
	TimeInSystem      prometheus.Histogram
	QueueLength       *prometheus.GaugeVec

	StationUtilization *prometheus.GaugeVec
	StationPeakQueue   *prometheus.GaugeVec
	Runs               prometheus.Counter
}

// New creates a Collector registering its metrics under namespace.
// An empty namespace uses DefaultNamespace.
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	c := &Collector{registry: prometheus.NewRegistry()}

	c.Customers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "customers_total",
			Help:      "Customers by outcome",
		},
		[]string{"outcome"},
	)

	c.BackpressureWaits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backpressure_waits_total",
			Help:      "Times a customer held a station because the next wait line was full",
		},
		[]string{"station"},
	)

	c.StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_minutes",
			Help:      "Sampled stage durations in simulated minutes",
			Buckets:   durationBuckets,
		},
		[]string{"stage"},
	)

	c.TimeInSystem = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "time_in_system_minutes",
			Help:      "Time from entering the line to leaving the pickup station",
			Buckets:   durationBuckets,
		},
	)

	c.QueueLength = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_length",
			Help:      "Most recently observed wait-line length per station",
		},
		[]string{"station"},
	)

	c.StationUtilization = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "station_utilization_ratio",
			Help:      "Fraction of slot-time a station was busy during a run",
		},
		[]string{"restaurant", "station"},
	)

	c.StationPeakQueue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "station_peak_queue_length",
			Help:      "Longest wait line a station had during a run",
		},
		[]string{"restaurant", "station"},
	)

	c.Runs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed simulation runs",
		},
	)

	c.registry.MustRegister(
		c.Customers,
		c.BackpressureWaits,
		c.StageDuration,
		c.TimeInSystem,
		c.QueueLength,
		c.StationUtilization,
		c.StationPeakQueue,
		c.Runs,
	)
	return c
}

// Emit updates the event-driven metrics from one customer event.
func (c *Collector) Emit(rec trace.Record) {
	switch rec.Kind {
	case trace.KindBalk:
		c.Customers.WithLabelValues(OutcomeBalked).Inc()
	case trace.KindEnter:
		c.Customers.WithLabelValues(OutcomeEntered).Inc()
	case trace.KindOrder:
		c.StageDuration.WithLabelValues("order").Observe(rec.Duration)
	case trace.KindPrep:
		c.StageDuration.WithLabelValues("prep").Observe(rec.Duration)
	case trace.KindPay:
		c.StageDuration.WithLabelValues("pay").Observe(rec.Duration)
	case trace.KindPickup:
		c.StageDuration.WithLabelValues("pickup").Observe(rec.Duration)
	case trace.KindPayBlocked, trace.KindPickupBlocked:
		c.BackpressureWaits.WithLabelValues(rec.Station).Inc()
	case trace.KindExit:
		c.Customers.WithLabelValues(OutcomeCompleted).Inc()
		c.TimeInSystem.Observe(rec.Duration)
	}
	if rec.Station != "" {
		c.QueueLength.WithLabelValues(rec.Station).Set(float64(rec.QueueLen))
	}
}

// Record adds the per-station results of a finished run.
func (c *Collector) Record(s *restaurant.Summary) {
	number := strconv.Itoa(s.Number)
	for _, st := range s.Stations {
		c.StationUtilization.WithLabelValues(number, st.Name).Set(st.Utilization)
		c.StationPeakQueue.WithLabelValues(number, st.Name).Set(float64(st.PeakQueueLen))
	}
	c.Runs.Inc()
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes every metric to path in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
