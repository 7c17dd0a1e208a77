// Package metrics records per-run conversion statistics and writes them in
// the Prometheus text format, for pickup by a node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the metrics of a single conversion run.
type Recorder struct {
	registry *prometheus.Registry

	EntriesLoaded    *prometheus.GaugeVec
	EntriesConverted *prometheus.GaugeVec
	EntriesSkipped   *prometheus.GaugeVec
	OutputReadings   prometheus.Gauge
	RunDuration      prometheus.Gauge
	RunSuccess       prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
}

// NewRecorder creates a recorder backed by its own registry.
func NewRecorder() *Recorder {
	labels := []string{"source", "format"}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		EntriesLoaded: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sensorconv_entries_loaded",
				Help: "Raw entries loaded from a source file",
			},
			labels,
		),
		EntriesConverted: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sensorconv_entries_converted",
				Help: "Entries successfully converted to the unified schema",
			},
			labels,
		),
		EntriesSkipped: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sensorconv_entries_skipped",
				Help: "Entries skipped because they failed validation",
			},
			labels,
		),
		OutputReadings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sensorconv_output_readings",
			Help: "Readings written to the output file",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sensorconv_run_duration_seconds",
			Help: "Wall time of the last conversion run",
		}),
		RunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sensorconv_run_success",
			Help: "1 if the last run completed, 0 if it aborted",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sensorconv_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}

	r.registry.MustRegister(
		r.EntriesLoaded,
		r.EntriesConverted,
		r.EntriesSkipped,
		r.OutputReadings,
		r.RunDuration,
		r.RunSuccess,
		r.LastRunTimestamp,
	)

	return r
}

// ObserveSource records the counts for one source file.
func (r *Recorder) ObserveSource(source, format string, loaded, converted, skipped int) {
	r.EntriesLoaded.WithLabelValues(source, format).Set(float64(loaded))
	r.EntriesConverted.WithLabelValues(source, format).Set(float64(converted))
	r.EntriesSkipped.WithLabelValues(source, format).Set(float64(skipped))
}

// Finish records the outcome of the run.
func (r *Recorder) Finish(outputReadings int, duration time.Duration, success bool, now time.Time) {
	r.OutputReadings.Set(float64(outputReadings))
	r.RunDuration.Set(duration.Seconds())
	r.LastRunTimestamp.Set(float64(now.Unix()))

	if success {
		r.RunSuccess.Set(1)
	} else {
		r.RunSuccess.Set(0)
	}
}

// WriteTextfile atomically writes all metrics to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}

	return nil
}
