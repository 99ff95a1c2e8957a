package archive

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartcampus_transcript_archives_total",
			Help: "Transcript archive uploads by result.",
		},
		[]string{"result"},
	)
	uploadSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "smartcampus_transcript_archive_upload_seconds",
			Help:    "Latency of transcript uploads to object storage.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(uploadsTotal, uploadSeconds)
}

func observeUpload(err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	uploadsTotal.WithLabelValues(result).Inc()
	uploadSeconds.Observe(elapsed.Seconds())
}
