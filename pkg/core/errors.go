package core

import "errors"

// Fault classes shared by the camera, the render loop and the GL backend.
// Callers wrap these with context and match them with errors.Is.
var (
	// ErrDegenerateBasis reports a camera whose up vector is parallel to the
	// view direction, or whose eye and target coincide.
	ErrDegenerateBasis = errors.New("degenerate camera basis")

	// ErrConfigurationFault reports an unusable renderer setup: incomplete
	// offscreen target, shader compile or link failure, invalid settings.
	ErrConfigurationFault = errors.New("configuration fault")

	// ErrResourceLoadFault reports an external resource (shader source,
	// config file) that could not be read.
	ErrResourceLoadFault = errors.New("resource load fault")
)
