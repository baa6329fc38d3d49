package core

import "github.com/go-gl/mathgl/mgl64"

// Logger interface for viewer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// Sampler provides random sampling for the host-side sampling helpers.
// Can be swapped out for deterministic testing.
type Sampler interface {
	Get1D() float64
	Get2D() mgl64.Vec2
}
