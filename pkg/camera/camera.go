package camera

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-progressive-gltracer/pkg/core"
)

// ErrInvalidParams reports a camera scalar outside its valid range
var ErrInvalidParams = errors.New("invalid camera parameters")

// degenerateEpsilon is the smallest |up × w| accepted as non-parallel
const degenerateEpsilon = 1e-9

// Params holds the viewing parameters a Basis is built from
type Params struct {
	LookFrom      mgl64.Vec3 // Eye position
	LookAt        mgl64.Vec3 // Point the camera looks at
	Up            mgl64.Vec3 // Up direction (need not be unit length)
	VFov          float64    // Vertical field of view in degrees, (0, 180)
	AspectRatio   float64    // Width / height
	Aperture      float64    // Lens diameter, 0 for a pinhole camera
	FocusDistance float64    // Distance to the plane in perfect focus
}

// Basis is the camera frame and image-plane geometry uploaded to the GPU.
// It is rebuilt wholesale by Recompute and never mutated in place.
type Basis struct {
	Origin          mgl64.Vec3
	U, V, W         mgl64.Vec3 // right, up, back (W points from LookAt to Origin)
	LowerLeftCorner mgl64.Vec3
	Horizontal      mgl64.Vec3
	Vertical        mgl64.Vec3
	LensRadius      float64
}

// Validate checks the scalar preconditions of Recompute
func (p Params) Validate() error {
	switch {
	case !(p.VFov > 0 && p.VFov < 180):
		return fmt.Errorf("%w: vertical fov %g not in (0, 180)", ErrInvalidParams, p.VFov)
	case !(p.AspectRatio > 0):
		return fmt.Errorf("%w: aspect ratio %g must be positive", ErrInvalidParams, p.AspectRatio)
	case !(p.FocusDistance > 0):
		return fmt.Errorf("%w: focus distance %g must be positive", ErrInvalidParams, p.FocusDistance)
	case !(p.Aperture >= 0):
		return fmt.Errorf("%w: aperture %g must not be negative", ErrInvalidParams, p.Aperture)
	}
	return nil
}

// Recompute builds the orthonormal camera frame and the image-plane
// rectangle at the focus distance. It has no side effects; the caller
// decides whether the new basis counts as camera movement.
func Recompute(p Params) (Basis, error) {
	if err := p.Validate(); err != nil {
		return Basis{}, err
	}

	theta := mgl64.DegToRad(p.VFov)
	halfHeight := math.Tan(theta / 2)
	halfWidth := p.AspectRatio * halfHeight

	back := p.LookFrom.Sub(p.LookAt)
	if !(back.Len() >= degenerateEpsilon) {
		return Basis{}, fmt.Errorf("%w: lookfrom equals lookat %v", core.ErrDegenerateBasis, p.LookFrom)
	}
	w := back.Normalize()

	right := p.Up.Cross(w)
	if !(right.Len() >= degenerateEpsilon) {
		return Basis{}, fmt.Errorf("%w: up %v is parallel to view direction %v", core.ErrDegenerateBasis, p.Up, w.Mul(-1))
	}
	u := right.Normalize()
	v := w.Cross(u)

	f := p.FocusDistance
	origin := p.LookFrom
	lowerLeftCorner := origin.
		Sub(u.Mul(halfWidth * f)).
		Sub(v.Mul(halfHeight * f)).
		Sub(w.Mul(f))

	return Basis{
		Origin:          origin,
		U:               u,
		V:               v,
		W:               w,
		LowerLeftCorner: lowerLeftCorner,
		Horizontal:      u.Mul(2 * halfWidth * f),
		Vertical:        v.Mul(2 * halfHeight * f),
		LensRadius:      p.Aperture / 2,
	}, nil
}

// Forward returns the viewing direction (-W)
func (b Basis) Forward() mgl64.Vec3 {
	return b.W.Mul(-1)
}

// RayDirection returns the un-normalized direction of the pinhole ray
// through image coordinates (s, t) in [0,1]², the host-side mirror of the
// shader's ray setup.
func (b Basis) RayDirection(s, t float64) mgl64.Vec3 {
	return b.LowerLeftCorner.
		Add(b.Horizontal.Mul(s)).
		Add(b.Vertical.Mul(t)).
		Sub(b.Origin)
}

// LensOffset maps a unit-disk sample onto the lens, in world space
func (b Basis) LensOffset(disk mgl64.Vec3) mgl64.Vec3 {
	rd := disk.Mul(b.LensRadius)
	return b.U.Mul(rd[0]).Add(b.V.Mul(rd[1]))
}
