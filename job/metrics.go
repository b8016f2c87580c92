package job

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the Prometheus series exported for job progress and wavefront
// fan-out (§4.8 "Progress" made observable without reading source).
var (
	WavefrontsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rowpipe_wavefronts_active",
		Help: "Number of concurrently in-flight stream wavefronts.",
	})
	RowsStreamedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rowpipe_rows_streamed_total",
		Help: "Total rows delivered across all stream fetches.",
	})
	JobProgressFraction = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rowpipe_job_progress_fraction",
		Help: "Last-reported completion fraction per job id.",
	}, []string{"job_id"})
)

func init() {
	prometheus.MustRegister(WavefrontsActive, RowsStreamedTotal, JobProgressFraction)
}
