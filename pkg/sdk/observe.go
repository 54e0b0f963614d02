package zenithds

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics holds the prometheus collectors of an embedded client.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	rows       *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zenithds",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "zenithds",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
		}, []string{"operation"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zenithds",
			Subsystem: "sdk",
			Name:      "rows_total",
			Help:      "Rows returned by select and render.",
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.rows); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses one already registered
// under the same descriptor, so several clients can share a registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return fmt.Errorf("zenithds: register metric: %w", err)
		}
		existing, ok := are.ExistingCollector.(T)
		if !ok {
			return fmt.Errorf("zenithds: metric already registered with incompatible type: %T", are.ExistingCollector)
		}
		*c = existing
	}
	return nil
}

// observer logs and measures client operations. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// operation describes one finished call.
type operation struct {
	name       string
	collection string
	rows       int
	start      time.Time
	err        error
}

func (o *observer) observe(op operation) {
	if o == nil {
		return
	}
	dur := time.Since(op.start)

	if o.metrics != nil {
		status := "ok"
		if op.err != nil {
			status = "error"
		}
		o.metrics.operations.WithLabelValues(op.name, status).Inc()
		o.metrics.duration.WithLabelValues(op.name).Observe(dur.Seconds())
		if op.err == nil && op.rows > 0 {
			o.metrics.rows.WithLabelValues(op.name).Add(float64(op.rows))
		}
	}

	if o.logger == nil {
		return
	}
	attrs := []any{"op", op.name, "duration", dur}
	if op.collection != "" {
		attrs = append(attrs, "collection", op.collection)
	}
	if op.err != nil {
		o.logger.Warn("operation failed", append(attrs, "error", op.err)...)
		return
	}
	o.logger.Debug("operation completed", append(attrs, "rows", op.rows)...)
}
