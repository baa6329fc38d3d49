package renderer

import (
	"fmt"

	"github.com/df07/go-progressive-gltracer/pkg/camera"
	"github.com/df07/go-progressive-gltracer/pkg/input"
)

// Handler applies one command to the render context
type Handler func(rc *RenderContext, cmd input.Command)

// Dispatcher maps each command kind to exactly one handler. A command runs
// its own handler and nothing else.
type Dispatcher struct {
	handlers map[input.Kind]Handler
}

// NewDispatcher creates a dispatcher with the standard viewer handlers
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{handlers: make(map[input.Kind]Handler)}

	d.Handle(input.MoveForward, moveHandler(camera.Forward))
	d.Handle(input.MoveBackward, moveHandler(camera.Backward))
	d.Handle(input.StrafeLeft, moveHandler(camera.StrafeLeft))
	d.Handle(input.StrafeRight, moveHandler(camera.StrafeRight))
	d.Handle(input.Look, func(rc *RenderContext, cmd input.Command) {
		if rc.Camera.Look(cmd.DX, cmd.DY) {
			rc.MarkCameraChanged()
		}
	})

	d.Handle(input.IncreaseK, qualityHandler(1, 0))
	d.Handle(input.DecreaseK, qualityHandler(-1, 0))
	d.Handle(input.IncreaseSamples, qualityHandler(0, 1))
	d.Handle(input.DecreaseSamples, qualityHandler(0, -1))

	d.Handle(input.IncreaseAperture, func(rc *RenderContext, cmd input.Command) {
		if rc.Camera.AdjustAperture(rc.Steps.Aperture) {
			rc.MarkCameraChanged()
		}
	})
	d.Handle(input.DecreaseAperture, func(rc *RenderContext, cmd input.Command) {
		if rc.Camera.AdjustAperture(-rc.Steps.Aperture) {
			rc.MarkCameraChanged()
		}
	})
	d.Handle(input.FocusNear, func(rc *RenderContext, cmd input.Command) {
		if rc.Camera.AdjustFocus(-rc.Steps.Focus) {
			rc.MarkCameraChanged()
		}
	})
	d.Handle(input.FocusFar, func(rc *RenderContext, cmd input.Command) {
		if rc.Camera.AdjustFocus(rc.Steps.Focus) {
			rc.MarkCameraChanged()
		}
	})

	d.Handle(input.Snapshot, func(rc *RenderContext, cmd input.Command) {
		rc.snapshotRequested = true
	})
	d.Handle(input.ReloadShaders, func(rc *RenderContext, cmd input.Command) {
		rc.reloadRequested = true
	})
	d.Handle(input.CloseRequested, func(rc *RenderContext, cmd input.Command) {
		rc.closeRequested = true
	})

	return d
}

// Handle registers or replaces the handler for kind
func (d *Dispatcher) Handle(kind input.Kind, h Handler) {
	d.handlers[kind] = h
}

// Dispatch runs the handler registered for cmd.Kind
func (d *Dispatcher) Dispatch(rc *RenderContext, cmd input.Command) error {
	h, ok := d.handlers[cmd.Kind]
	if !ok {
		return fmt.Errorf("no handler for command %v", cmd.Kind)
	}
	h(rc, cmd)
	return nil
}

func moveHandler(dir camera.Direction) Handler {
	return func(rc *RenderContext, cmd input.Command) {
		if rc.Camera.Move(dir, cmd.Magnitude) {
			rc.MarkCameraChanged()
		}
	}
}

func qualityHandler(dk, dn int) Handler {
	return func(rc *RenderContext, cmd input.Command) {
		if rc.Accum.AdjustQuality(dk, dn) {
			state := rc.Accum.State()
			rc.logger.Printf("Nsamples = %d, K = %d\n", state.SampleCount, state.QualityK)
		}
	}
}
