package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateDuration(t *testing.T) {
	tests := []struct {
		name       string
		frameCount int64
		frameRate  float64
		want       float64
	}{
		{"known count and rate", 1500, 25, 60},
		{"unknown count", 0, 25, 600},
		{"unknown rate", 1500, 0, 600},
		{"both unknown", 0, 0, 600},
		{"negative rate treated as unknown", 1500, -1, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateDuration(tt.frameCount, tt.frameRate))
		})
	}
}

func TestPlan(t *testing.T) {
	t.Run("one minute at 25fps", func(t *testing.T) {
		plan := Plan(60, 25)
		assert.Equal(t, 5.0, plan.IntervalSec)
		assert.Equal(t, 125, plan.StepFrames)
	})

	t.Run("short clip clamps interval to one second", func(t *testing.T) {
		plan := Plan(1, 25)
		assert.Equal(t, 1.0, plan.IntervalSec)
		assert.Equal(t, 25, plan.StepFrames)
	})

	t.Run("two hour film", func(t *testing.T) {
		plan := Plan(7200, 24)
		assert.Equal(t, 600.0, plan.IntervalSec)
		assert.Equal(t, 14400, plan.StepFrames)
	})

	t.Run("unknown frame rate defaults to 25", func(t *testing.T) {
		plan := Plan(60, 0)
		assert.Equal(t, 5.0, plan.IntervalSec)
		assert.Equal(t, 125, plan.StepFrames)
	})

	t.Run("degenerate rate still advances", func(t *testing.T) {
		plan := Plan(5, 0.001)
		assert.GreaterOrEqual(t, plan.StepFrames, 1)
		assert.GreaterOrEqual(t, plan.IntervalSec, 1.0)
	})
}
