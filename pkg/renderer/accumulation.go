package renderer

import (
	"image"
	"math"

	"github.com/df07/go-progressive-gltracer/pkg/camera"
	"github.com/df07/go-progressive-gltracer/pkg/core"
)

// MaxFrameCount is where the frame counter saturates. The counter is
// uploaded as a GL int uniform.
const MaxFrameCount = math.MaxInt32

// AccumulationConfig contains the initial quality knobs and reset policy
type AccumulationConfig struct {
	QualityK             int  // Bounce/recursion depth knob, floor 0
	SampleCount          int  // Samples per pixel per frame, floor 0
	ResetOnQualityChange bool // Restart accumulation when a knob changes
}

// DefaultAccumulationConfig returns the viewer's startup quality settings
func DefaultAccumulationConfig() AccumulationConfig {
	return AccumulationConfig{
		QualityK:             3,
		SampleCount:          2,
		ResetOnQualityChange: true,
	}
}

// AccumulationState is the per-tick accumulation bookkeeping
type AccumulationState struct {
	FrameCount  int  // Frames integrated into the current image, >= 1 once ticking
	QualityK    int  // >= 0
	SampleCount int  // >= 0
	Dirty       bool // True only on the tick that applied a reset
}

// FrameInputs is everything the accumulation and display programs need
// for one tick.
type FrameInputs struct {
	Basis       camera.Basis
	FrameCount  int
	QualityK    int
	SampleCount int
	RandomSeed  float64     // Fresh uniform value in [0,1) per tick
	GlobalTime  float64     // Seconds since start
	WindowSize  image.Point // Offscreen target size in device pixels
	Dirty       bool
}

// AccumulationController implements the progressive accumulation state
// machine. A requested reset is applied by the next Tick, which reports
// FrameCount 1 and Dirty; every other Tick increments FrameCount.
//
// The controller starts with a reset pending, so the first tick is
// frame 1 of a fresh image.
type AccumulationController struct {
	state                AccumulationState
	resetPending         bool
	resetOnQualityChange bool
	sampler              core.Sampler
	ticks                uint64
	resets               uint64
}

// NewAccumulationController creates a controller drawing per-tick seeds from sampler
func NewAccumulationController(config AccumulationConfig, sampler core.Sampler) *AccumulationController {
	return &AccumulationController{
		state: AccumulationState{
			QualityK:    max(0, config.QualityK),
			SampleCount: max(0, config.SampleCount),
		},
		resetPending:         true,
		resetOnQualityChange: config.ResetOnQualityChange,
		sampler:              sampler,
	}
}

// MarkMoved records a camera change; the next tick restarts accumulation
func (ac *AccumulationController) MarkMoved() {
	ac.RequestReset()
}

// RequestReset restarts accumulation on the next tick for any reason
// (camera change, resize, shader reload).
func (ac *AccumulationController) RequestReset() {
	ac.resetPending = true
}

// ResetPending reports whether the next tick will restart accumulation
func (ac *AccumulationController) ResetPending() bool {
	return ac.resetPending
}

// AdjustQuality changes the quality knobs by dk and dn, flooring both at
// 0. Returns true if either knob changed.
func (ac *AccumulationController) AdjustQuality(dk, dn int) bool {
	k := max(0, ac.state.QualityK+dk)
	n := max(0, ac.state.SampleCount+dn)
	changed := k != ac.state.QualityK || n != ac.state.SampleCount

	ac.state.QualityK = k
	ac.state.SampleCount = n
	if changed && ac.resetOnQualityChange {
		ac.RequestReset()
	}
	return changed
}

// Tick advances the state machine by one frame and returns the inputs for
// this frame's render passes.
func (ac *AccumulationController) Tick(basis camera.Basis, globalTime float64, windowSize image.Point) FrameInputs {
	if ac.resetPending {
		ac.state.FrameCount = 1
		ac.state.Dirty = true
		ac.resetPending = false
		ac.resets++
	} else {
		if ac.state.FrameCount < MaxFrameCount {
			ac.state.FrameCount++
		}
		ac.state.Dirty = false
	}
	ac.ticks++

	return FrameInputs{
		Basis:       basis,
		FrameCount:  ac.state.FrameCount,
		QualityK:    ac.state.QualityK,
		SampleCount: ac.state.SampleCount,
		RandomSeed:  ac.sampler.Get1D(),
		GlobalTime:  globalTime,
		WindowSize:  windowSize,
		Dirty:       ac.state.Dirty,
	}
}

// State returns a copy of the current accumulation state
func (ac *AccumulationController) State() AccumulationState {
	return ac.state
}

// Ticks returns the number of frames produced so far
func (ac *AccumulationController) Ticks() uint64 {
	return ac.ticks
}

// Resets returns the number of times accumulation restarted
func (ac *AccumulationController) Resets() uint64 {
	return ac.resets
}
