package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scipunch/freegames/report"
)

// Run collects the outcome of a single fetch for the node_exporter textfile collector
type Run struct {
	registry  *prometheus.Registry
	promos    *prometheus.GaugeVec
	success   prometheus.Gauge
	lastRunTS prometheus.Gauge
	duration  prometheus.Gauge
}

func NewRun() *Run {
	r := &Run{registry: prometheus.NewRegistry()}
	r.promos = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "freegames",
		Name:      "promotions",
		Help:      "Promotions found in the last report",
	}, []string{"state"})
	r.success = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "freegames",
		Name:      "fetch_success",
		Help:      "1 if the last feed fetch succeeded",
	})
	r.lastRunTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "freegames",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last run",
	})
	r.duration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "freegames",
		Name:      "fetch_duration_seconds",
		Help:      "Time spent fetching and assembling the report",
	})
	r.registry.MustRegister(r.promos, r.success, r.lastRunTS, r.duration)
	return r
}

// ObserveReport records a successful run
func (r *Run) ObserveReport(rep report.Report, started, finished time.Time) {
	r.promos.WithLabelValues("current").Set(float64(len(rep.CurrentFreeGames)))
	r.promos.WithLabelValues("upcoming").Set(float64(len(rep.UpcomingFreeGames)))
	r.success.Set(1)
	r.lastRunTS.Set(float64(finished.Unix()))
	r.duration.Set(finished.Sub(started).Seconds())
}

// ObserveFailure records a run whose fetch failed
func (r *Run) ObserveFailure(started, finished time.Time) {
	r.success.Set(0)
	r.lastRunTS.Set(float64(finished.Unix()))
	r.duration.Set(finished.Sub(started).Seconds())
}

// WriteTextfile atomically writes the collected metrics to path
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to '%s': %w", path, err)
	}
	return nil
}
