// Package engine is the cash-flow stress simulation core: event projection,
// fixed-cost scheduling, the balance walk, runway and chart path, plus the
// client aging aggregator. Every exported function is pure over its inputs;
// nothing is cached or shared between calls.
package engine

import (
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultProjectionBufferDays extends the window past the last collection
	// so the final fixed-cost cycle is visible.
	DefaultProjectionBufferDays = 15

	// MaxPathPoints bounds the downsampled chart path.
	MaxPathPoints = 200

	// MinPathRange floors the y-range of a flat balance.
	MinPathRange = 1_000_000
)

// Epoch substitutes missing record dates.
var Epoch = time.Unix(0, 0).UTC()

type options struct {
	logger     *zap.Logger
	bufferDays int
}

// Option tunes a Simulate call.
type Option func(*options)

// WithLogger routes data-quality warnings to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProjectionBuffer overrides DefaultProjectionBufferDays.
func WithProjectionBuffer(days int) Option {
	return func(o *options) {
		if days >= 0 {
			o.bufferDays = days
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:     zap.NewNop(),
		bufferDays: DefaultProjectionBufferDays,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
