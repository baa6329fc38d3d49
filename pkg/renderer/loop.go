package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-progressive-gltracer/pkg/core"
	"github.com/df07/go-progressive-gltracer/pkg/input"
)

// Window is the platform surface the loop drives. PollEvents translates
// pending platform events (and held keys, scaled by dt seconds) into
// commands on the loop's queue.
type Window interface {
	ShouldClose() bool
	PollEvents(dt float64)
	Time() float64
	Size() image.Point
}

// ShaderReloader rebuilds the GPU programs from their sources
type ShaderReloader interface {
	Reload() error
}

// Snapshotter reads back the last displayed image
type Snapshotter interface {
	Snapshot() (image.Image, error)
}

// TargetResizer reallocates the offscreen targets at a new size
type TargetResizer interface {
	Resize(size image.Point) error
}

// LoopConfig wires the render loop. Reloader, Snapshotter, Resizer and
// Publisher are optional.
type LoopConfig struct {
	Window       Window
	Queue        *input.Queue
	Context      *RenderContext
	Dispatcher   *Dispatcher
	Orchestrator *Orchestrator
	Reloader     ShaderReloader
	Snapshotter  Snapshotter
	Resizer      TargetResizer
	Publisher    StatsPublisher
	OutputDir    string
	Logger       core.Logger
	Now          func() time.Time // Defaults to time.Now
}

// Loop runs the per-tick pipeline: drain commands, apply them, commit the
// camera, advance accumulation, render both passes, then publish stats.
// All GPU work happens on the goroutine calling Run.
type Loop struct {
	config    LoopConfig
	frameRate *FrameRate
	lastTime  float64
	started   bool
	lastShot  string
}

// NewLoop validates the wiring and creates a loop
func NewLoop(config LoopConfig) (*Loop, error) {
	switch {
	case config.Window == nil:
		return nil, fmt.Errorf("%w: render loop needs a window", core.ErrConfigurationFault)
	case config.Queue == nil:
		return nil, fmt.Errorf("%w: render loop needs a command queue", core.ErrConfigurationFault)
	case config.Context == nil:
		return nil, fmt.Errorf("%w: render loop needs a render context", core.ErrConfigurationFault)
	case config.Orchestrator == nil:
		return nil, fmt.Errorf("%w: render loop needs an orchestrator", core.ErrConfigurationFault)
	}
	if config.Dispatcher == nil {
		config.Dispatcher = NewDispatcher()
	}
	if config.Logger == nil {
		config.Logger = core.NopLogger{}
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.OutputDir == "" {
		config.OutputDir = "output"
	}

	return &Loop{
		config:    config,
		frameRate: NewFrameRate(time.Second),
	}, nil
}

// Run ticks until the window closes, a close command arrives or ctx is
// cancelled. Render errors stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if l.config.Window.ShouldClose() {
			return nil
		}

		done, err := l.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Step runs one tick. It returns true once a close command has been
// dispatched; no frame is rendered on that tick.
func (l *Loop) Step() (bool, error) {
	rc := l.config.Context
	window := l.config.Window

	now := window.Time()
	dt := 0.0
	if l.started {
		dt = now - l.lastTime
	}
	l.lastTime = now
	l.started = true

	window.PollEvents(dt)

	for _, cmd := range l.config.Queue.Drain() {
		if err := l.config.Dispatcher.Dispatch(rc, cmd); err != nil {
			l.config.Logger.Printf("Ignoring command: %v\n", err)
		}
	}

	if rc.CloseRequested() {
		return true, nil
	}

	size := window.Size()
	if rc.Resize(size.X, size.Y) && l.config.Resizer != nil {
		if err := l.config.Resizer.Resize(rc.Viewport.TargetSize()); err != nil {
			return false, fmt.Errorf("resizing render targets: %w", err)
		}
	}

	if rc.takeReloadRequest() {
		l.reloadShaders()
	}

	rc.CommitCamera()

	in := rc.Accum.Tick(rc.Basis, now, rc.Viewport.TargetSize())
	if err := l.config.Orchestrator.RenderFrame(in); err != nil {
		return false, err
	}

	stats := collectStats(rc, in, l.frameRate.Frame(l.config.Now()))

	if rc.takeSnapshotRequest() {
		l.snapshot(&stats)
	}
	stats.Snapshot = l.lastShot

	if l.config.Publisher != nil {
		l.config.Publisher.Publish(stats)
	}
	return false, nil
}

func (l *Loop) reloadShaders() {
	if l.config.Reloader == nil {
		l.config.Logger.Printf("Shader reload not available\n")
		return
	}
	if err := l.config.Reloader.Reload(); err != nil {
		l.config.Logger.Printf("Shader reload failed, keeping previous programs: %v\n", err)
		return
	}
	l.config.Logger.Printf("Shaders reloaded\n")
	l.config.Context.Accum.RequestReset()
}

func (l *Loop) snapshot(stats *FrameStats) {
	if l.config.Snapshotter == nil {
		l.config.Logger.Printf("Snapshot not available\n")
		return
	}
	img, err := l.config.Snapshotter.Snapshot()
	if err != nil {
		l.config.Logger.Printf("Snapshot failed: %v\n", err)
		return
	}
	path, err := SavePNG(l.config.OutputDir, img, l.config.Now())
	if err != nil {
		l.config.Logger.Printf("Snapshot failed: %v\n", err)
		return
	}
	l.lastShot = path
	stats.Luminance = CalculateAverageLuminance(img)
	l.config.Logger.Printf("Saved snapshot to %s (frame %d, luminance %.3f)\n", path, stats.FrameCount, stats.Luminance)
}
