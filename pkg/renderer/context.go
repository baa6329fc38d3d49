package renderer

import (
	"image"

	"github.com/df07/go-progressive-gltracer/pkg/camera"
	"github.com/df07/go-progressive-gltracer/pkg/core"
)

// Viewport describes the visible window and the supersampled offscreen
// target behind it.
type Viewport struct {
	Width       int // Window width in screen coordinates
	Height      int // Window height in screen coordinates
	Supersample int // Offscreen target scale factor, >= 1
}

// AspectRatio returns width / height
func (vp Viewport) AspectRatio() float64 {
	if vp.Height <= 0 {
		return 1
	}
	return float64(vp.Width) / float64(vp.Height)
}

// TargetSize returns the offscreen target size in device pixels
func (vp Viewport) TargetSize() image.Point {
	scale := max(1, vp.Supersample)
	return image.Pt(vp.Width*scale, vp.Height*scale)
}

// LensSteps are the increments applied by aperture and focus commands
type LensSteps struct {
	Aperture float64
	Focus    float64
}

// RenderContext holds every piece of mutable viewer state: the fly camera,
// the current basis, the accumulation controller and pending requests
// raised by commands. It is owned by the render loop goroutine.
type RenderContext struct {
	Camera   *camera.FlyCamera
	Accum    *AccumulationController
	Basis    camera.Basis
	Viewport Viewport
	Steps    LensSteps

	logger core.Logger

	cameraChanged     bool
	closeRequested    bool
	snapshotRequested bool
	reloadRequested   bool
}

// NewRenderContext builds the initial basis. A degenerate starting camera
// is a startup error.
func NewRenderContext(cam *camera.FlyCamera, accum *AccumulationController, viewport Viewport, steps LensSteps, logger core.Logger) (*RenderContext, error) {
	basis, err := camera.Recompute(cam.Params(viewport.AspectRatio()))
	if err != nil {
		return nil, err
	}

	return &RenderContext{
		Camera:   cam,
		Accum:    accum,
		Basis:    basis,
		Viewport: viewport,
		Steps:    steps,
		logger:   logger,
	}, nil
}

// MarkCameraChanged flags that the viewing parameters changed this tick
func (rc *RenderContext) MarkCameraChanged() {
	rc.cameraChanged = true
}

// CommitCamera recomputes the basis if the camera changed since the last
// commit and resets accumulation. On a degenerate basis the previous basis
// is kept and no reset happens. Returns true if a new basis was installed.
func (rc *RenderContext) CommitCamera() bool {
	if !rc.cameraChanged {
		return false
	}
	rc.cameraChanged = false

	basis, err := camera.Recompute(rc.Camera.Params(rc.Viewport.AspectRatio()))
	if err != nil {
		rc.logger.Printf("Keeping previous camera basis: %v\n", err)
		return false
	}

	rc.Basis = basis
	rc.Accum.MarkMoved()
	return true
}

// Resize updates the viewport; the aspect ratio feeds the basis, so this
// counts as a camera change.
func (rc *RenderContext) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if width == rc.Viewport.Width && height == rc.Viewport.Height {
		return false
	}
	rc.Viewport.Width = width
	rc.Viewport.Height = height
	rc.MarkCameraChanged()
	return true
}

// CloseRequested reports whether a close command was dispatched
func (rc *RenderContext) CloseRequested() bool {
	return rc.closeRequested
}

// takeSnapshotRequest returns and clears the pending snapshot request
func (rc *RenderContext) takeSnapshotRequest() bool {
	requested := rc.snapshotRequested
	rc.snapshotRequested = false
	return requested
}

// takeReloadRequest returns and clears the pending shader reload request
func (rc *RenderContext) takeReloadRequest() bool {
	requested := rc.reloadRequested
	rc.reloadRequested = false
	return requested
}
