// Package metrics provides Prometheus metrics for the blog.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fishblog/fishblog/internal/blog"
)

var (
	// CommandsTotal counts commands by outcome.
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fishblog",
			Name:      "commands_total",
			Help:      "Total number of handled commands",
		},
		[]string{"command", "outcome"},
	)

	// CommandDuration measures command handling time, store writes included.
	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fishblog",
			Name:      "command_duration_seconds",
			Help:      "Duration of command handling in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	// ValidationFailures counts rejected input by field.
	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fishblog",
			Name:      "validation_failures_total",
			Help:      "Total number of rejected inputs",
		},
		[]string{"field"},
	)

	// ImageBytes observes exported image payload sizes.
	ImageBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fishblog",
			Name:      "image_payload_bytes",
			Help:      "Size of exported drawing payloads",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"surface"},
	)
)

// Outcome labels.
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid"
	OutcomeStorageError = "storage_error"
	OutcomeError        = "error"
)

// Outcome classifies a command error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, blog.ErrValidation):
		return OutcomeInvalid
	case errors.Is(err, blog.ErrStorageWrite):
		return OutcomeStorageError
	default:
		return OutcomeError
	}
}

// RecordCommand records one handled command.
func RecordCommand(command string, err error, duration time.Duration) {
	CommandsTotal.WithLabelValues(command, Outcome(err)).Inc()
	CommandDuration.WithLabelValues(command).Observe(duration.Seconds())

	var ve *blog.ValidationError
	if errors.As(err, &ve) {
		ValidationFailures.WithLabelValues(ve.Field).Inc()
	}
}

// RecordImage records the size of an exported drawing.
func RecordImage(surface string, size int) {
	ImageBytes.WithLabelValues(surface).Observe(float64(size))
}

// Recorder feeds command observations into the package metrics.
type Recorder struct{}

func (Recorder) ObserveCommand(command string, err error, duration time.Duration) {
	RecordCommand(command, err, duration)
}

func (Recorder) ObserveImage(surface string, size int) {
	RecordImage(surface, size)
}
