package analysis

import (
	"errors"
	"fmt"
	"io"
)

// Assemble walks the source frame by frame and scores every frame whose
// 0-based index is a multiple of plan.StepFrames. Timestamps are
// index/frameRate seconds; both coordinates are rounded to 3 decimals.
// The returned series is never empty: an exhausted source yields a
// single synthetic {0, 0} point, since downstream consumers assume at
// least one plottable point.
func Assemble(src FrameSource, plan SamplingPlan, scorer Scorer) (Series, error) {
	fps := src.FrameRate()
	if fps <= 0 {
		fps = fallbackFrameRate
	}

	series := Series{}
	for idx := int64(0); ; idx++ {
		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", idx, err)
		}
		if idx%int64(plan.StepFrames) != 0 {
			continue
		}
		value, err := scorer.Score(frame)
		if err != nil {
			return nil, fmt.Errorf("score frame %d: %w", idx, err)
		}
		series = append(series, SamplePoint{
			T:     round3(float64(idx) / fps),
			Value: round3(value),
		})
	}

	if len(series) == 0 {
		series = append(series, SamplePoint{T: 0.0, Value: 0.0})
	}
	return series, nil
}

// AssembleSingle scores exactly one frame at t=0. Used for the still
// image degradation path.
func AssembleSingle(src FrameSource, scorer Scorer) (Series, error) {
	frame, err := src.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read image frame: %w", err)
	}
	value, err := scorer.Score(frame)
	if err != nil {
		return nil, fmt.Errorf("score image frame: %w", err)
	}
	return Series{{T: 0.0, Value: round3(value)}}, nil
}
