package glview

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/df07/go-progressive-gltracer/pkg/core"
)

// Target is an offscreen framebuffer with one RGBA32F color texture.
// Float storage keeps long accumulations from quantizing.
type Target struct {
	fbo     uint32
	texture uint32
	size    image.Point
}

func newTarget(size image.Point) (*Target, error) {
	t := &Target{size: size}
	gl.GenFramebuffers(1, &t.fbo)
	gl.GenTextures(1, &t.texture)

	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(size.X), int32(size.Y), 0, gl.RGBA, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.texture, 0)
	drawBuffers := []uint32{gl.COLOR_ATTACHMENT0}
	gl.DrawBuffers(1, &drawBuffers[0])

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.Delete()
		return nil, fmt.Errorf("%w: offscreen framebuffer %dx%d incomplete (status 0x%x)", core.ErrConfigurationFault, size.X, size.Y, status)
	}

	t.Clear()
	return t, nil
}

// Size returns the target size in pixels
func (t *Target) Size() image.Point {
	return t.size
}

// Bind makes the target the draw framebuffer and sets the viewport
func (t *Target) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.size.X), int32(t.size.Y))
}

// Clear zeroes the color texture
func (t *Target) Clear() {
	t.Bind()
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// BindTexture binds the color texture to the given texture unit
func (t *Target) BindTexture(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
}

// ReadPixels returns the linear RGBA contents, bottom row first
func (t *Target) ReadPixels() []float32 {
	pixels := make([]float32, t.size.X*t.size.Y*4)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.ReadPixels(0, 0, int32(t.size.X), int32(t.size.Y), gl.RGBA, gl.FLOAT, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return pixels
}

// Delete releases the framebuffer and texture
func (t *Target) Delete() {
	gl.DeleteFramebuffers(1, &t.fbo)
	gl.DeleteTextures(1, &t.texture)
	t.fbo, t.texture = 0, 0
}

// PingPong holds two targets: the accumulation pass reads the front
// (history) and writes the back, then the two swap.
type PingPong struct {
	targets [2]*Target
	front   int
}

// NewPingPong allocates both targets at size
func NewPingPong(size image.Point) (*PingPong, error) {
	pp := &PingPong{}
	if err := pp.Resize(size); err != nil {
		return nil, err
	}
	return pp, nil
}

// Front returns the most recently written target
func (pp *PingPong) Front() *Target {
	return pp.targets[pp.front]
}

// Back returns the target the next accumulation pass writes
func (pp *PingPong) Back() *Target {
	return pp.targets[1-pp.front]
}

// Swap makes the back target the front
func (pp *PingPong) Swap() {
	pp.front = 1 - pp.front
}

// Resize reallocates both targets. On failure the previous targets are kept.
func (pp *PingPong) Resize(size image.Point) error {
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("%w: invalid target size %dx%d", core.ErrConfigurationFault, size.X, size.Y)
	}
	a, err := newTarget(size)
	if err != nil {
		return err
	}
	b, err := newTarget(size)
	if err != nil {
		a.Delete()
		return err
	}
	pp.Delete()
	pp.targets = [2]*Target{a, b}
	pp.front = 0
	return nil
}

// Delete releases both targets
func (pp *PingPong) Delete() {
	for i, t := range pp.targets {
		if t != nil {
			t.Delete()
			pp.targets[i] = nil
		}
	}
}
