package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxPitch keeps the view direction away from the up axis, where the
// basis would flip.
const MaxPitch = 89.0

// MinFocusDistance is the closest focus plane FlyCamera allows
const MinFocusDistance = 0.05

// Direction is a movement direction relative to the current view
type Direction int

const (
	Forward Direction = iota
	Backward
	StrafeLeft
	StrafeRight
)

// FlyConfig contains the initial state of a FlyCamera
type FlyConfig struct {
	LookFrom      mgl64.Vec3
	LookAt        mgl64.Vec3
	Up            mgl64.Vec3
	VFov          float64 // degrees
	Aperture      float64
	FocusDistance float64 // 0 = |LookFrom - LookAt|
	MoveSpeed     float64 // world units per second
	Sensitivity   float64 // degrees per pointer pixel
}

// FlyCamera is a first-person camera driven by yaw/pitch look deltas and
// view-relative movement. It owns the viewing parameters; Params turns
// them into the input of Recompute.
type FlyCamera struct {
	Position      mgl64.Vec3
	Up            mgl64.Vec3
	Yaw           float64 // degrees, -90 looks down -Z
	Pitch         float64 // degrees, clamped to [-MaxPitch, MaxPitch]
	VFov          float64
	Aperture      float64
	FocusDistance float64
	MoveSpeed     float64
	Sensitivity   float64
}

// NewFlyCamera creates a camera looking from config.LookFrom towards config.LookAt
func NewFlyCamera(config FlyConfig) *FlyCamera {
	dir := config.LookAt.Sub(config.LookFrom)

	focus := config.FocusDistance
	if focus <= 0 {
		focus = dir.Len()
	}

	yaw, pitch := -90.0, 0.0
	if dir.Len() > 0 {
		d := dir.Normalize()
		up, e1, e2 := orientationFrame(config.Up)
		yaw = mgl64.RadToDeg(math.Atan2(d.Dot(e2), d.Dot(e1)))
		pitch = mgl64.RadToDeg(math.Asin(mgl64.Clamp(d.Dot(up), -1, 1)))
	}

	return &FlyCamera{
		Position:      config.LookFrom,
		Up:            config.Up,
		Yaw:           yaw,
		Pitch:         clampPitch(pitch),
		VFov:          config.VFov,
		Aperture:      config.Aperture,
		FocusDistance: max(focus, MinFocusDistance),
		MoveSpeed:     config.MoveSpeed,
		Sensitivity:   config.Sensitivity,
	}
}

// Front returns the unit view direction for the current yaw and pitch.
// Yaw turns about Up and pitch tilts towards it, so the clamp keeps the
// view off the up axis whatever Up is.
func (fc *FlyCamera) Front() mgl64.Vec3 {
	up, e1, e2 := orientationFrame(fc.Up)
	yaw := mgl64.DegToRad(fc.Yaw)
	pitch := mgl64.DegToRad(fc.Pitch)
	return e1.Mul(math.Cos(yaw) * math.Cos(pitch)).
		Add(up.Mul(math.Sin(pitch))).
		Add(e2.Mul(math.Sin(yaw) * math.Cos(pitch))).
		Normalize()
}

// Right returns the unit strafe direction
func (fc *FlyCamera) Right() mgl64.Vec3 {
	up, _, _ := orientationFrame(fc.Up)
	return fc.Front().Cross(up).Normalize()
}

// orientationFrame returns the unit up axis and the yaw 0 and yaw 90
// directions perpendicular to it. For a Y up these are X and Z. A zero or
// non-finite up falls back to Y.
func orientationFrame(up mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3, mgl64.Vec3) {
	if !(up.Len() > 0) || !isFinite(up) {
		up = mgl64.Vec3{0, 1, 0}
	}
	up = up.Normalize()

	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(up.Dot(ref)) > 0.99 {
		ref = mgl64.Vec3{0, 0, 1}
	}
	e1 := ref.Sub(up.Mul(ref.Dot(up))).Normalize()
	e2 := e1.Cross(up)
	return up, e1, e2
}

func isFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Move translates the camera along dir by MoveSpeed*dt.
// Returns true if the position changed.
func (fc *FlyCamera) Move(dir Direction, dt float64) bool {
	step := fc.MoveSpeed * dt
	if step == 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return false
	}

	var offset mgl64.Vec3
	switch dir {
	case Forward:
		offset = fc.Front().Mul(step)
	case Backward:
		offset = fc.Front().Mul(-step)
	case StrafeLeft:
		offset = fc.Right().Mul(-step)
	case StrafeRight:
		offset = fc.Right().Mul(step)
	default:
		return false
	}

	next := fc.Position.Add(offset)
	if !isFinite(next) {
		return false
	}
	fc.Position = next
	return true
}

// Look applies a pointer delta in pixels (y positive = up).
// Returns true if yaw or pitch changed.
func (fc *FlyCamera) Look(dx, dy float64) bool {
	oldYaw, oldPitch := fc.Yaw, fc.Pitch
	fc.Yaw += dx * fc.Sensitivity
	fc.Pitch = clampPitch(fc.Pitch + dy*fc.Sensitivity)
	return fc.Yaw != oldYaw || fc.Pitch != oldPitch
}

// AdjustAperture changes the lens diameter, flooring at 0.
// Returns true if the aperture changed.
func (fc *FlyCamera) AdjustAperture(delta float64) bool {
	old := fc.Aperture
	fc.Aperture = max(0, fc.Aperture+delta)
	return fc.Aperture != old
}

// AdjustFocus moves the focus plane, flooring at MinFocusDistance.
// Returns true if the focus distance changed.
func (fc *FlyCamera) AdjustFocus(delta float64) bool {
	old := fc.FocusDistance
	fc.FocusDistance = max(MinFocusDistance, fc.FocusDistance+delta)
	return fc.FocusDistance != old
}

// Params returns the Recompute input for the current state
func (fc *FlyCamera) Params(aspectRatio float64) Params {
	return Params{
		LookFrom:      fc.Position,
		LookAt:        fc.Position.Add(fc.Front()),
		Up:            fc.Up,
		VFov:          fc.VFov,
		AspectRatio:   aspectRatio,
		Aperture:      fc.Aperture,
		FocusDistance: fc.FocusDistance,
	}
}

func clampPitch(pitch float64) float64 {
	return mgl64.Clamp(pitch, -MaxPitch, MaxPitch)
}
