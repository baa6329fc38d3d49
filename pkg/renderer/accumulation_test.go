package renderer

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"github.com/df07/go-progressive-gltracer/pkg/camera"
	"github.com/df07/go-progressive-gltracer/pkg/core"
)

// fixedSampler returns the same value forever
type fixedSampler struct{ v float64 }

func (f fixedSampler) Get1D() float64     { return f.v }
func (f fixedSampler) Get2D() mgl64.Vec2 { return mgl64.Vec2{f.v, f.v} }

func tick(ac *AccumulationController) FrameInputs {
	return ac.Tick(camera.Basis{}, 0, image.Pt(800, 640))
}

func TestAccumulation_FirstTickIsFreshImage(t *testing.T) {
	ac := NewAccumulationController(DefaultAccumulationConfig(), core.NewSeededSampler(1))

	in := tick(ac)
	assert.Equal(t, 1, in.FrameCount)
	assert.True(t, in.Dirty)
	assert.Equal(t, 3, in.QualityK)
	assert.Equal(t, 2, in.SampleCount)
}

func TestAccumulation_MovementThenIdleSequence(t *testing.T) {
	ac := NewAccumulationController(DefaultAccumulationConfig(), core.NewSeededSampler(1))

	var counts []int
	var dirty []bool
	for i := 0; i < 3; i++ {
		ac.MarkMoved()
		in := tick(ac)
		counts = append(counts, in.FrameCount)
		dirty = append(dirty, in.Dirty)
	}
	for i := 0; i < 5; i++ {
		in := tick(ac)
		counts = append(counts, in.FrameCount)
		dirty = append(dirty, in.Dirty)
	}

	assert.Equal(t, []int{1, 1, 1, 2, 3, 4, 5, 6}, counts)
	assert.Equal(t, []bool{true, true, true, false, false, false, false, false}, dirty)
	assert.EqualValues(t, 8, ac.Ticks())
	assert.EqualValues(t, 3, ac.Resets())
}

func TestAccumulation_IdleTicksCountUp(t *testing.T) {
	for _, n := range []int{0, 1, 10, 250} {
		ac := NewAccumulationController(DefaultAccumulationConfig(), core.NewSeededSampler(1))
		ac.MarkMoved()
		tick(ac)

		var in FrameInputs
		for i := 0; i < n; i++ {
			in = tick(ac)
		}
		assert.Equal(t, 1+n, ac.State().FrameCount, "after %d idle ticks", n)
		if n > 0 {
			assert.False(t, in.Dirty)
		}
	}
}

func TestAccumulation_MultipleMovesInOneTickResetOnce(t *testing.T) {
	ac := NewAccumulationController(DefaultAccumulationConfig(), core.NewSeededSampler(1))
	tick(ac)
	tick(ac)

	ac.MarkMoved()
	ac.MarkMoved()
	ac.RequestReset()
	assert.Equal(t, 1, tick(ac).FrameCount)
	assert.Equal(t, 2, tick(ac).FrameCount)
	assert.EqualValues(t, 2, ac.Resets())
}

func TestAccumulation_QualityChangePolicy(t *testing.T) {
	tests := []struct {
		name      string
		reset     bool
		wantCount int
	}{
		{"reset on quality change", true, 1},
		{"keep accumulating", false, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultAccumulationConfig()
			config.ResetOnQualityChange = tt.reset
			ac := NewAccumulationController(config, core.NewSeededSampler(1))
			tick(ac)
			tick(ac)
			tick(ac)

			assert.True(t, ac.AdjustQuality(0, 1))
			in := tick(ac)
			assert.Equal(t, tt.wantCount, in.FrameCount)
			assert.Equal(t, 3, in.SampleCount)
		})
	}
}

func TestAccumulation_QualityFloors(t *testing.T) {
	ac := NewAccumulationController(AccumulationConfig{QualityK: 1, SampleCount: 0, ResetOnQualityChange: true}, core.NewSeededSampler(1))
	tick(ac)

	assert.False(t, ac.AdjustQuality(0, -1), "nsamples already at floor")
	assert.False(t, ac.ResetPending(), "no-op adjustment does not reset")

	assert.True(t, ac.AdjustQuality(-1, 0))
	assert.False(t, ac.AdjustQuality(-1, 0))
	assert.Equal(t, 0, ac.State().QualityK)
	assert.Equal(t, 0, ac.State().SampleCount)
}

func TestAccumulation_NegativeConfigFloors(t *testing.T) {
	ac := NewAccumulationController(AccumulationConfig{QualityK: -3, SampleCount: -1}, core.NewSeededSampler(1))
	in := tick(ac)
	assert.Equal(t, 0, in.QualityK)
	assert.Equal(t, 0, in.SampleCount)
}

func TestAccumulation_FrameCountSaturates(t *testing.T) {
	ac := NewAccumulationController(DefaultAccumulationConfig(), core.NewSeededSampler(1))
	tick(ac)
	ac.state.FrameCount = MaxFrameCount - 1

	assert.Equal(t, MaxFrameCount, tick(ac).FrameCount)
	assert.Equal(t, MaxFrameCount, tick(ac).FrameCount)

	ac.MarkMoved()
	assert.Equal(t, 1, tick(ac).FrameCount)
}

func TestAccumulation_RandomSeedPerTick(t *testing.T) {
	ac := NewAccumulationController(DefaultAccumulationConfig(), core.NewSeededSampler(7))

	seen := make(map[float64]bool)
	for i := 0; i < 100; i++ {
		seed := tick(ac).RandomSeed
		assert.GreaterOrEqual(t, seed, 0.0)
		assert.Less(t, seed, 1.0)
		seen[seed] = true
	}
	assert.Greater(t, len(seen), 95, "seeds should almost never repeat")
}

func TestAccumulation_TickCarriesInputs(t *testing.T) {
	ac := NewAccumulationController(DefaultAccumulationConfig(), fixedSampler{v: 0.5})
	basis := camera.Basis{LensRadius: 0.05}

	in := ac.Tick(basis, 12.5, image.Pt(800, 640))
	assert.Equal(t, basis, in.Basis)
	assert.Equal(t, 12.5, in.GlobalTime)
	assert.Equal(t, image.Pt(800, 640), in.WindowSize)
	assert.Equal(t, 0.5, in.RandomSeed)
}
