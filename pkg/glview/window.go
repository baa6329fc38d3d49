package glview

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/df07/go-progressive-gltracer/pkg/core"
	"github.com/df07/go-progressive-gltracer/pkg/input"
)

// WindowOptions configures the GLFW window and its GL context
type WindowOptions struct {
	Title  string
	Width  int
	Height int
	VSync  bool
	Keymap Keymap
}

// Window is a GLFW window with a current OpenGL 4.1 core context. It
// turns keyboard and pointer events into commands on a queue. All methods
// must be called from the goroutine that created it, which must be locked
// to its OS thread.
type Window struct {
	win     *glfw.Window
	queue   *input.Queue
	keymap  Keymap
	pointer input.PointerTracker
	logger  core.Logger
}

// NewWindow initializes GLFW, opens the window, makes its context current
// and loads the GL function pointers.
func NewWindow(opts WindowOptions, queue *input.Queue, logger core.Logger) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("%w: initializing glfw: %v", core.ErrConfigurationFault, err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("%w: creating window: %v", core.ErrConfigurationFault, err)
	}
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("%w: initializing OpenGL: %v", core.ErrConfigurationFault, err)
	}

	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if logger == nil {
		logger = core.NopLogger{}
	}
	keymap := opts.Keymap
	if keymap.Held == nil && keymap.Pressed == nil {
		keymap = DefaultKeymap()
	}

	w := &Window{
		win:    win,
		queue:  queue,
		keymap: keymap,
		logger: logger,
	}

	win.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	win.SetKeyCallback(w.onKey)
	win.SetCursorPosCallback(w.onCursor)
	win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		// Avoid a jump when the cursor comes back from another window
		w.pointer.Reset()
	})
	win.SetCloseCallback(func(_ *glfw.Window) {
		w.push(input.Key(input.CloseRequested))
	})

	return w, nil
}

func (w *Window) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	if cmd, ok := w.keymap.OnPress(key); ok {
		w.push(cmd)
	}
}

func (w *Window) onCursor(_ *glfw.Window, x, y float64) {
	if cmd, ok := w.pointer.Update(x, y); ok {
		w.push(cmd)
	}
}

func (w *Window) push(cmd input.Command) {
	if !w.queue.Push(cmd) {
		w.logger.Printf("Command queue full, dropping %v\n", cmd.Kind)
	}
}

// ShouldClose reports whether the platform asked the window to close
func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

// PollEvents processes pending events, then emits one movement command
// per held movement key scaled by dt seconds.
func (w *Window) PollEvents(dt float64) {
	glfw.PollEvents()
	for key, kind := range w.keymap.Held {
		if w.win.GetKey(key) == glfw.Press {
			w.push(input.Move(kind, dt))
		}
	}
}

// Time returns seconds since GLFW was initialized
func (w *Window) Time() float64 {
	return glfw.GetTime()
}

// Size returns the window size in screen coordinates
func (w *Window) Size() image.Point {
	width, height := w.win.GetSize()
	return image.Pt(width, height)
}

// FramebufferSize returns the default framebuffer size in device pixels
func (w *Window) FramebufferSize() image.Point {
	width, height := w.win.GetFramebufferSize()
	return image.Pt(width, height)
}

// Present swaps the front and back buffers
func (w *Window) Present() {
	w.win.SwapBuffers()
}

// Destroy closes the window and terminates GLFW
func (w *Window) Destroy() {
	w.win.Destroy()
	glfw.Terminate()
}
