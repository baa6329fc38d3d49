package glview

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedUniform_StaysBelowOne(t *testing.T) {
	tests := []struct {
		name string
		seed float64
		want float32
	}{
		{"zero", 0, 0},
		{"middle", 0.5, 0.5},
		{"largest float64 below one", math.Nextafter(1, 0), math.Nextafter32(1, 0)},
		{"rounds up in float32", 1 - math.Pow(2, -26), math.Nextafter32(1, 0)},
		{"negative", -0.25, 0},
		{"nan", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := seedUniform(tt.seed)
			assert.Equal(t, tt.want, got)
			assert.Less(t, got, float32(1))
		})
	}
}

func TestSeedUniform_ScaledSeedFitsUint32(t *testing.T) {
	// The shader hashes uint(random_seed * 4294967295.0)
	scaled := float64(seedUniform(math.Nextafter(1, 0))) * 4294967295.0
	assert.Less(t, scaled, 4294967296.0)
}
