package renderer

import (
	"image"
	"time"

	"github.com/df07/go-progressive-gltracer/pkg/camera"
)

// FrameStats is a snapshot of the viewer state after a tick
type FrameStats struct {
	FrameCount    int        `json:"frameCount"`    // Frames integrated into the current image
	Ticks         uint64     `json:"ticks"`         // Frames produced since start
	Resets        uint64     `json:"resets"`        // Accumulation restarts since start
	QualityK      int        `json:"k"`             // Bounce/recursion depth knob
	SampleCount   int        `json:"nsamples"`      // Samples per pixel per frame
	FPS           float64    `json:"fps"`           // Recent frames per second
	Aperture      float64    `json:"aperture"`      // Lens diameter
	FocusDistance float64    `json:"focusDistance"` // Distance to the plane of focus
	Position      [3]float64 `json:"position"`      // Camera position
	Yaw           float64    `json:"yaw"`           // Degrees
	Pitch         float64    `json:"pitch"`         // Degrees
	Width         int        `json:"width"`         // Offscreen target width
	Height        int        `json:"height"`        // Offscreen target height
	Luminance     float64    `json:"luminance,omitempty"`
	Snapshot      string     `json:"snapshot,omitempty"` // Path of the last saved snapshot

	Basis camera.Basis `json:"-"` // Basis the frame was rendered with
}

// StatsPublisher receives frame statistics from the render loop. Publish
// is called on the render goroutine and must not block.
type StatsPublisher interface {
	Publish(stats FrameStats)
}

// FrameRate tracks frames per second over a sliding window
type FrameRate struct {
	window  time.Duration
	start   time.Time
	frames  int
	current float64
}

// NewFrameRate creates a tracker that updates its estimate once per window
func NewFrameRate(window time.Duration) *FrameRate {
	if window <= 0 {
		window = time.Second
	}
	return &FrameRate{window: window}
}

// Frame records a frame at time now and returns the current estimate
func (fr *FrameRate) Frame(now time.Time) float64 {
	if fr.start.IsZero() {
		fr.start = now
	}
	fr.frames++

	elapsed := now.Sub(fr.start)
	if elapsed >= fr.window {
		fr.current = float64(fr.frames) / elapsed.Seconds()
		fr.frames = 0
		fr.start = now
	}
	return fr.current
}

// FPS returns the last computed estimate
func (fr *FrameRate) FPS() float64 {
	return fr.current
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of img,
// with channels normalized to [0,1].
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			total += 0.2126*float64(r)/0xffff + 0.7152*float64(g)/0xffff + 0.0722*float64(b)/0xffff
		}
	}
	return total / float64(pixels)
}

// collectStats builds a FrameStats from the render context after a tick
func collectStats(rc *RenderContext, in FrameInputs, fps float64) FrameStats {
	state := rc.Accum.State()
	return FrameStats{
		FrameCount:    state.FrameCount,
		Ticks:         rc.Accum.Ticks(),
		Resets:        rc.Accum.Resets(),
		QualityK:      state.QualityK,
		SampleCount:   state.SampleCount,
		FPS:           fps,
		Aperture:      rc.Camera.Aperture,
		FocusDistance: rc.Camera.FocusDistance,
		Position:      [3]float64{rc.Camera.Position.X(), rc.Camera.Position.Y(), rc.Camera.Position.Z()},
		Yaw:           rc.Camera.Yaw,
		Pitch:         rc.Camera.Pitch,
		Width:         in.WindowSize.X,
		Height:        in.WindowSize.Y,
		Basis:         in.Basis,
	}
}
