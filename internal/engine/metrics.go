package engine

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/ivlev/promoreel/internal/engine"

type metrics struct {
	framesRendered metric.Int64Counter
	frameTime      metric.Float64Histogram
	assetsFailed   metric.Int64Counter
}

// newMetrics uses the global provider, a no-op unless an SDK is installed.
func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)
	var (
		out metrics
		err error
	)
	out.framesRendered, err = m.Int64Counter(
		"render.frames",
		metric.WithDescription("Frames composited and written to the encoder"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frames counter: %w", err)
	}
	out.frameTime, err = m.Float64Histogram(
		"render.frame.duration",
		metric.WithDescription("Time to composite one frame"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frame time histogram: %w", err)
	}
	out.assetsFailed, err = m.Int64Counter(
		"render.assets.failed",
		metric.WithDescription("Screenshots replaced by placeholders"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating assets counter: %w", err)
	}
	return &out, nil
}
