package analysis

import "math"

const (
	// targetSamples bounds total work and output size independent of
	// input length: a 5-second clip and a 2-hour film both produce a
	// small, chartable series.
	targetSamples = 12

	// fallbackDurationSec stands in when the container reports no
	// usable frame count or rate. 10 minutes is a product assumption,
	// not a measurement; confirm before tuning.
	fallbackDurationSec = 600.0

	// fallbackFrameRate is used for stride and timestamp math when the
	// container reports no rate, kept consistent with the duration
	// fallback so the two never disagree.
	fallbackFrameRate = 25.0
)

// EstimateDuration derives an effective duration in seconds from
// container metadata. Zero or negative inputs mean "unknown".
func EstimateDuration(frameCount int64, frameRate float64) float64 {
	if frameCount > 0 && frameRate > 0 {
		return float64(frameCount) / frameRate
	}
	return fallbackDurationSec
}

// Plan computes the sampling interval and frame stride that spread
// targetSamples across the whole duration. The interval never drops
// below one second, and the stride never drops below one frame, so the
// assembler always makes forward progress.
func Plan(durationSec, frameRate float64) SamplingPlan {
	if frameRate <= 0 {
		frameRate = fallbackFrameRate
	}
	interval := math.Max(1.0, durationSec/targetSamples)
	step := int(math.Round(interval * frameRate))
	if step < 1 {
		step = 1
	}
	return SamplingPlan{IntervalSec: interval, StepFrames: step}
}
