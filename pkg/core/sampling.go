package core

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxDiskRejections bounds the rejection loop in SampleUnitDisk.
// The expected number of draws is 4/π ≈ 1.27, so 64 is only reached by a
// broken or adversarial source.
const MaxDiskRejections = 64

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator for the given seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() mgl64.Vec2 {
	return mgl64.Vec2{r.random.Float64(), r.random.Float64()}
}

// SampleUnitDisk generates a point uniformly distributed in the open unit
// disk by rejection sampling, for thin-lens ray jitter. Z is always 0 so
// the result composes directly with basis vectors.
//
// After MaxDiskRejections failed draws the last candidate is pulled inside
// the disk, so the function terminates for any sampler.
func SampleUnitDisk(sampler Sampler) mgl64.Vec3 {
	var p mgl64.Vec3
	for i := 0; i < MaxDiskRejections; i++ {
		s := sampler.Get2D()
		p = mgl64.Vec3{2*s[0] - 1, 2*s[1] - 1, 0}
		if p.Dot(p) < 1.0 {
			return p
		}
	}
	return clampIntoDisk(p)
}

// clampIntoDisk scales p onto a radius just below 1.
func clampIntoDisk(p mgl64.Vec3) mgl64.Vec3 {
	length := p.Len()
	if length < 1.0 {
		return p
	}
	if math.IsNaN(length) || math.IsInf(length, 0) {
		return mgl64.Vec3{}
	}
	const maxRadius = 1 - 1e-9
	return p.Mul(maxRadius / length)
}
