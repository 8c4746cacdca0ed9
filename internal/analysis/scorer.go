package analysis

import (
	"math"
	"math/rand"
)

// Scorer maps a frame to an engagement score in [0,1]. Implementations
// must accept a nil frame (score 0) and clamp their output. The default
// implementation is a placeholder heuristic; callers may depend on the
// contract, not on the specific scoring model.
type Scorer interface {
	Score(frame *Frame) (float64, error)
}

const jitterAmplitude = 0.03

// LumaScorer scores a frame by its mean BT.601 luma normalized to
// [0,1], plus a small uniform jitter so a static shot does not render
// as a flat line. The jitter source is injected so tests can pin it.
type LumaScorer struct {
	rng *rand.Rand
}

func NewLumaScorer(rng *rand.Rand) *LumaScorer {
	return &LumaScorer{rng: rng}
}

func (s *LumaScorer) Score(frame *Frame) (float64, error) {
	if frame == nil || len(frame.Pix) < 3 {
		return 0.0, nil
	}

	var lumSum float64
	n := len(frame.Pix) / 3 * 3
	for i := 0; i < n; i += 3 {
		lumSum += 0.299*float64(frame.Pix[i]) +
			0.587*float64(frame.Pix[i+1]) +
			0.114*float64(frame.Pix[i+2])
	}
	mean := lumSum / (float64(n/3) * 255.0)

	jitter := 0.0
	if s.rng != nil {
		jitter = (s.rng.Float64()*2 - 1) * jitterAmplitude
	}
	return clamp01(mean + jitter), nil
}

// FixedScorer returns the same value for every frame. Useful as a
// deterministic stand-in for the stochastic default.
type FixedScorer struct {
	Value float64
}

func (s FixedScorer) Score(frame *Frame) (float64, error) {
	if frame == nil {
		return 0.0, nil
	}
	return clamp01(s.Value), nil
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
