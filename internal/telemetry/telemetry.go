// Package telemetry collects container metrics for the demo programs and
// logs them when the program finishes.
package telemetry

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xraph/go-utils/log"

	"github.com/xraph/berth"
)

// Recorder owns a private registry so repeated runs in one process do not
// collide on collector names.
type Recorder struct {
	registry   *prometheus.Registry
	middleware *berth.MetricsMiddleware
}

// New creates a Recorder with the berth collectors registered.
func New() (*Recorder, error) {
	registry := prometheus.NewRegistry()

	middleware, err := berth.NewMetricsMiddleware(registry)
	if err != nil {
		return nil, err
	}

	return &Recorder{registry: registry, middleware: middleware}, nil
}

// Middleware returns the container middleware feeding the recorder.
func (r *Recorder) Middleware() berth.Middleware {
	return r.middleware
}

// Report logs one line per counter sample.
func (r *Recorder) Report(logger berth.Logger) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, pair := range metric.GetLabel() {
				labels = append(labels, pair.GetName()+"="+pair.GetValue())
			}

			logger.Info("metric",
				log.String("name", family.GetName()),
				log.String("labels", strings.Join(labels, ",")),
				log.String("value", strconv.FormatFloat(metric.GetCounter().GetValue(), 'f', -1, 64)),
			)
		}
	}

	return nil
}
