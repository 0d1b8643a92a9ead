package app

import (
	"context"

	"github.com/louisbranch/racesim/internal/services/race/domain/engine"
)

// Frame is one step of a running race as published to sinks.
type Frame struct {
	RaceID   string
	Name     string
	Distance float64
	Snapshot engine.Snapshot
}

// FrameSink receives the frames of a race in tick order.
type FrameSink interface {
	Publish(ctx context.Context, frame Frame) error
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(ctx context.Context, frame Frame) error

// Publish calls f.
func (f FrameSinkFunc) Publish(ctx context.Context, frame Frame) error {
	return f(ctx, frame)
}
