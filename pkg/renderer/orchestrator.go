package renderer

import (
	"fmt"
	"image"

	"github.com/df07/go-progressive-gltracer/pkg/core"
)

// Target is the offscreen image written by the accumulation pass
type Target interface {
	Size() image.Point
}

// AccumulationPass renders one progressive frame into an offscreen target
// and returns the target it wrote.
type AccumulationPass interface {
	Accumulate(in FrameInputs) (Target, error)
}

// DisplayPass draws an accumulated target to the visible framebuffer
type DisplayPass interface {
	Display(src Target, in FrameInputs) error
}

// Presenter makes the visible framebuffer appear (buffer swap)
type Presenter interface {
	Present()
}

// Orchestrator runs the two render passes of a tick. The display pass
// consumes the target returned by the accumulation pass, so pass 2 can only
// run on pass 1's output.
type Orchestrator struct {
	accumulate AccumulationPass
	display    DisplayPass
	presenter  Presenter
}

// NewOrchestrator composes the accumulation pass, the display pass and the presenter
func NewOrchestrator(accumulate AccumulationPass, display DisplayPass, presenter Presenter) *Orchestrator {
	return &Orchestrator{
		accumulate: accumulate,
		display:    display,
		presenter:  presenter,
	}
}

// RenderFrame accumulates, displays and presents one frame
func (o *Orchestrator) RenderFrame(in FrameInputs) error {
	target, err := o.accumulate.Accumulate(in)
	if err != nil {
		return fmt.Errorf("accumulation pass: %w", err)
	}
	if target == nil {
		return fmt.Errorf("accumulation pass: %w: no target produced", core.ErrConfigurationFault)
	}

	if err := o.display.Display(target, in); err != nil {
		return fmt.Errorf("display pass: %w", err)
	}

	o.presenter.Present()
	return nil
}
