package analysis

import (
	"context"
	"math"
)

// SamplePoint is one sampled instant of the engagement series.
// Field names and 3-decimal rounding are a compatibility contract
// with the consuming front end.
type SamplePoint struct {
	T     float64 `json:"t"`
	Value float64 `json:"value"`
}

// Series is ordered by T, non-decreasing, and never empty.
type Series []SamplePoint

// Result is the externally consumed payload.
type Result struct {
	Series Series `json:"series"`
}

// Frame holds raw RGB24 pixels, 3 bytes per pixel, row-major.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
}

// SamplingPlan is derived once per video analysis and never mutated.
type SamplingPlan struct {
	IntervalSec float64
	StepFrames  int
}

// FrameSource gives sequential, forward-only access to decoded frames.
// FrameRate and FrameCount return 0 when the container does not report
// them; callers must treat 0 as unknown and never divide by it.
// Next returns io.EOF at end of stream. A source is owned by a single
// caller and must be closed exactly once.
type FrameSource interface {
	FrameRate() float64
	FrameCount() int64
	Next() (*Frame, error)
	Close() error
}

// Opener opens a path as a FrameSource. Failures to open are reported
// as ErrNotOpenable without leaking decoder resources.
type Opener interface {
	Open(ctx context.Context, path string) (FrameSource, error)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
