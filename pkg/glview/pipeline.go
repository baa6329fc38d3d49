package glview

import (
	"fmt"
	"image"
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-progressive-gltracer/pkg/core"
	"github.com/df07/go-progressive-gltracer/pkg/renderer"
	"github.com/df07/go-progressive-gltracer/pkg/shaders"
)

// historyUnit is the texture unit the previous accumulation is bound to
const historyUnit = 0

// maxSeed is the largest float32 below 1
var maxSeed = math.Nextafter32(1, 0)

// seedUniform narrows a [0,1) seed to float32 without rounding up to 1
func seedUniform(seed float64) float32 {
	if !(seed > 0) {
		return 0
	}
	return min(float32(seed), maxSeed)
}

// FramebufferSizer reports the visible framebuffer size in device pixels
type FramebufferSizer interface {
	FramebufferSize() image.Point
}

// Pipeline owns every GL resource of the two passes: the accumulation
// program writing the ping-pong targets and the display program drawing
// the latest target to the window.
type Pipeline struct {
	loader  *shaders.Loader
	screen  FramebufferSizer
	logger  core.Logger
	ray     *Program
	draw    *Program
	targets *PingPong
	quad    *Quad
}

// NewPipeline loads and links both programs and allocates the offscreen
// targets. Requires a current GL context.
func NewPipeline(loader *shaders.Loader, targetSize image.Point, screen FramebufferSizer, logger core.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	p := &Pipeline{
		loader: loader,
		screen: screen,
		logger: logger,
	}

	ray, draw, err := p.buildPrograms()
	if err != nil {
		return nil, err
	}
	p.ray, p.draw = ray, draw

	targets, err := NewPingPong(targetSize)
	if err != nil {
		p.Delete()
		return nil, err
	}
	p.targets = targets
	p.quad = NewQuad()

	return p, nil
}

func (p *Pipeline) buildPrograms() (*Program, *Program, error) {
	src, err := p.loader.Load()
	if err != nil {
		return nil, nil, err
	}
	ray, err := NewProgram(src.Vertex, src.Ray)
	if err != nil {
		return nil, nil, fmt.Errorf("accumulation program: %w", err)
	}
	draw, err := NewProgram(src.Vertex, src.Draw)
	if err != nil {
		ray.Delete()
		return nil, nil, fmt.Errorf("display program: %w", err)
	}
	return ray, draw, nil
}

// Accumulate renders one frame into the back target, sampling the front
// target as history, and returns the target it wrote.
func (p *Pipeline) Accumulate(in renderer.FrameInputs) (renderer.Target, error) {
	src := p.targets.Front()
	dst := p.targets.Back()
	if dst.Size() != in.WindowSize {
		return nil, fmt.Errorf("%w: target is %v, frame expects %v", core.ErrConfigurationFault, dst.Size(), in.WindowSize)
	}

	dst.Bind()
	p.ray.Use()
	p.ray.SetVec2("window_size", mgl32.Vec2{float32(in.WindowSize.X), float32(in.WindowSize.Y)})
	p.ray.SetFloat32("random_seed", seedUniform(in.RandomSeed))
	p.ray.SetFloat("global_time", in.GlobalTime)
	p.ray.SetVec3("camera_origin", in.Basis.Origin)
	p.ray.SetVec3("camera_lower_left_corner", in.Basis.LowerLeftCorner)
	p.ray.SetVec3("camera_horizontal", in.Basis.Horizontal)
	p.ray.SetVec3("camera_vertical", in.Basis.Vertical)
	p.ray.SetFloat("camera_lens_radius", in.Basis.LensRadius)
	p.ray.SetInt("framecount", in.FrameCount)
	p.ray.SetInt("k", in.QualityK)
	p.ray.SetInt("nsamples", in.SampleCount)

	src.BindTexture(historyUnit)
	p.ray.SetInt("renderedTexture", historyUnit)
	p.quad.Draw()

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	p.targets.Swap()
	return dst, nil
}

// Display draws an accumulated target to the window's framebuffer
func (p *Pipeline) Display(src renderer.Target, in renderer.FrameInputs) error {
	target, ok := src.(*Target)
	if !ok {
		return fmt.Errorf("%w: display pass needs a GL target, got %T", core.ErrConfigurationFault, src)
	}

	size := p.screen.FramebufferSize()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(size.X), int32(size.Y))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	p.draw.Use()
	target.BindTexture(historyUnit)
	p.draw.SetInt("renderedTexture", historyUnit)
	p.quad.Draw()
	return nil
}

// Reload rebuilds both programs from the loader. The running programs
// are only replaced when both new ones link.
func (p *Pipeline) Reload() error {
	ray, draw, err := p.buildPrograms()
	if err != nil {
		return err
	}
	p.ray.Delete()
	p.draw.Delete()
	p.ray, p.draw = ray, draw
	return nil
}

// Resize reallocates the ping-pong targets
func (p *Pipeline) Resize(size image.Point) error {
	return p.targets.Resize(size)
}

// Snapshot reads back the latest accumulated image, display encoded
func (p *Pipeline) Snapshot() (image.Image, error) {
	front := p.targets.Front()
	img, err := LinearToImage(front.ReadPixels(), front.Size())
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Delete releases every GL resource
func (p *Pipeline) Delete() {
	p.ray.Delete()
	p.draw.Delete()
	if p.targets != nil {
		p.targets.Delete()
	}
	if p.quad != nil {
		p.quad.Delete()
	}
}

// LogInfo logs the driver identification strings
func LogInfo(logger core.Logger) {
	logger.Printf("OpenGL version: %s\n", gl.GoStr(gl.GetString(gl.VERSION)))
	logger.Printf("GLSL version: %s\n", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))
	logger.Printf("Vendor: %s\n", gl.GoStr(gl.GetString(gl.VENDOR)))
	logger.Printf("Renderer: %s\n", gl.GoStr(gl.GetString(gl.RENDERER)))
}
