package berth

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsMiddleware counts resolutions and event deliveries.
type MetricsMiddleware struct {
	resolves *prometheus.CounterVec
	starts   *prometheus.CounterVec
	fires    *prometheus.CounterVec
	notified *prometheus.CounterVec
}

// NewMetricsMiddleware creates the collectors and registers them with reg.
func NewMetricsMiddleware(reg prometheus.Registerer) (*MetricsMiddleware, error) {
	m := &MetricsMiddleware{
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "berth",
			Name:      "resolves_total",
			Help:      "Service resolutions by service name and outcome.",
		}, []string{"service", "outcome"}),
		starts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "berth",
			Name:      "starts_total",
			Help:      "Service starts by service name and outcome.",
		}, []string{"service", "outcome"}),
		fires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "berth",
			Name:      "events_fired_total",
			Help:      "Events fired by payload type and outcome.",
		}, []string{"event", "outcome"}),
		notified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "berth",
			Name:      "observer_notifications_total",
			Help:      "Observer notifications by payload type.",
		}, []string{"event"}),
	}

	for _, c := range []prometheus.Collector{m.resolves, m.starts, m.fires, m.notified} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// BeforeResolve implements Middleware.
func (m *MetricsMiddleware) BeforeResolve(_ context.Context, _ string) error {
	return nil
}

// AfterResolve implements Middleware.
func (m *MetricsMiddleware) AfterResolve(_ context.Context, name string, _ any, err error) error {
	m.resolves.WithLabelValues(name, outcome(err)).Inc()
	return nil
}

// BeforeStart implements Middleware.
func (m *MetricsMiddleware) BeforeStart(_ context.Context, _ string) error {
	return nil
}

// AfterStart implements Middleware.
func (m *MetricsMiddleware) AfterStart(_ context.Context, name string, err error) error {
	m.starts.WithLabelValues(name, outcome(err)).Inc()
	return nil
}

// AfterFire implements EventHook.
func (m *MetricsMiddleware) AfterFire(_ context.Context, eventType string, observers int, err error) {
	m.fires.WithLabelValues(eventType, outcome(err)).Inc()
	m.notified.WithLabelValues(eventType).Add(float64(observers))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
