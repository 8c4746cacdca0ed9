package analysis

import (
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource yields a fixed number of identical gray frames.
type stubSource struct {
	frames int64
	fps    float64
	count  int64
	next   int64
	closes int
}

func (s *stubSource) FrameRate() float64 { return s.fps }
func (s *stubSource) FrameCount() int64  { return s.count }

func (s *stubSource) Next() (*Frame, error) {
	if s.next >= s.frames {
		return nil, io.EOF
	}
	s.next++
	return &Frame{Pix: []byte{128, 128, 128}, Width: 1, Height: 1}, nil
}

func (s *stubSource) Close() error {
	s.closes++
	return nil
}

func TestAssembleTwelveSecondClip(t *testing.T) {
	// 300 frames at 25 fps is 12 seconds, so the interval floors to
	// one second and the stride is 25 frames.
	src := &stubSource{frames: 300, fps: 25, count: 300}
	plan := Plan(EstimateDuration(src.FrameCount(), src.FrameRate()), src.FrameRate())
	require.Equal(t, 25, plan.StepFrames)

	series, err := Assemble(src, plan, FixedScorer{Value: 0.5})
	require.NoError(t, err)

	require.Len(t, series, 12)
	for i, pt := range series {
		assert.Equal(t, float64(i), pt.T)
		assert.Equal(t, 0.5, pt.Value)
	}
}

func TestAssembleEmptyStreamYieldsSyntheticPoint(t *testing.T) {
	src := &stubSource{frames: 0, fps: 25}

	series, err := Assemble(src, Plan(600, 25), FixedScorer{Value: 0.9})
	require.NoError(t, err)

	require.Len(t, series, 1)
	assert.Equal(t, 0.0, series[0].T)
	assert.Equal(t, 0.0, series[0].Value)
}

func TestAssembleSeriesInvariants(t *testing.T) {
	// One minute at 30 fps with the stochastic default scorer.
	src := &stubSource{frames: 1800, fps: 30, count: 1800}
	plan := Plan(EstimateDuration(src.FrameCount(), src.FrameRate()), src.FrameRate())
	scorer := NewLumaScorer(rand.New(rand.NewSource(42)))

	series, err := Assemble(src, plan, scorer)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(series), 1)
	assert.LessOrEqual(t, len(series), 13)

	prev := -1.0
	for _, pt := range series {
		assert.GreaterOrEqual(t, pt.T, 0.0)
		assert.GreaterOrEqual(t, pt.T, prev)
		assert.GreaterOrEqual(t, pt.Value, 0.0)
		assert.LessOrEqual(t, pt.Value, 1.0)
		prev = pt.T
	}
}

func TestAssembleUnknownRateUsesFallbackTimestamps(t *testing.T) {
	src := &stubSource{frames: 50, fps: 0}

	series, err := Assemble(src, SamplingPlan{IntervalSec: 1, StepFrames: 25}, FixedScorer{Value: 0.2})
	require.NoError(t, err)

	// Timestamps computed against the 25 fps fallback.
	require.Len(t, series, 2)
	assert.Equal(t, 0.0, series[0].T)
	assert.Equal(t, 1.0, series[1].T)
}

type failingScorer struct{}

func (failingScorer) Score(*Frame) (float64, error) {
	return 0, errors.New("model crashed")
}

func TestAssembleScorerFailureAbortsWithoutPartialPoint(t *testing.T) {
	src := &stubSource{frames: 10, fps: 25}

	series, err := Assemble(src, SamplingPlan{IntervalSec: 1, StepFrames: 1}, failingScorer{})
	require.Error(t, err)
	assert.Nil(t, series)
}

func TestAssembleSingle(t *testing.T) {
	src := &stubSource{frames: 1, fps: 0}

	series, err := AssembleSingle(src, FixedScorer{Value: 0.73})
	require.NoError(t, err)

	require.Len(t, series, 1)
	assert.Equal(t, 0.0, series[0].T)
	assert.Equal(t, 0.73, series[0].Value)
}

func TestAssembleSingleEmptySourceScoresNilFrame(t *testing.T) {
	src := &stubSource{frames: 0, fps: 0}

	series, err := AssembleSingle(src, FixedScorer{Value: 0.73})
	require.NoError(t, err)

	require.Len(t, series, 1)
	assert.Equal(t, 0.0, series[0].T)
	assert.Equal(t, 0.0, series[0].Value)
}
