// Package diag exposes Prometheus counters for the decode pipeline. None of
// the conditions counted here are fatal; they exist so a noisy link shows up
// on a dashboard instead of in lost samples.
package diag

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FramesDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kvh_frames_decoded_total",
		Help: "Frames that passed header and CRC validation",
	})
	NoiseBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kvh_noise_bytes_dropped_total",
		Help: "Bytes discarded while searching for the sync pattern",
	})
	BadHeaders = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kvh_bad_headers_total",
		Help: "Candidate frames rejected by the header check",
	})
	CRCMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kvh_crc_mismatches_total",
		Help: "Structurally valid frames that failed the integrity check",
	})
	BufferOverflows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kvh_sync_buffer_overflows_total",
		Help: "Times the pending-byte buffer hit its cap and dropped oldest bytes",
	})
	SamplesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kvh_samples_published_total",
		Help: "Samples emitted past the change-detection filter",
	})
	SamplesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kvh_samples_suppressed_total",
		Help: "Samples suppressed by the change-detection filter",
	})
)

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
