package renderer

import (
	"image"
	"image/color"
	"testing"
	"time"
)

func TestCalculateAverageLuminance(t *testing.T) {
	// Create a 2x2 image
	// Top-left: Red (1, 0, 0) -> Lum = 0.2126
	// Top-right: Green (0, 1, 0) -> Lum = 0.7152
	// Bottom-left: Blue (0, 0, 1) -> Lum = 0.0722
	// Bottom-right: Black (0, 0, 0) -> Lum = 0.0

	// Expected average: (0.2126 + 0.7152 + 0.0722 + 0.0) / 4 = 1.0 / 4 = 0.25

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{0, 0, 0, 255})

	avgLum := CalculateAverageLuminance(img)
	expected := 0.25
	tolerance := 0.0001

	if avgLum < expected-tolerance || avgLum > expected+tolerance {
		t.Errorf("Expected average luminosity %f, got %f", expected, avgLum)
	}
}

func TestCalculateAverageLuminance_White(t *testing.T) {
	// 1x1 White pixel -> Lum = 1.0
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{255, 255, 255, 255})

	avgLum := CalculateAverageLuminance(img)
	expected := 1.0
	tolerance := 0.0001

	if avgLum < expected-tolerance || avgLum > expected+tolerance {
		t.Errorf("Expected average luminosity %f, got %f", expected, avgLum)
	}
}

func TestCalculateAverageLuminance_Empty(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if lum := CalculateAverageLuminance(img); lum != 0 {
		t.Errorf("Expected 0 for an empty image, got %f", lum)
	}
}

func TestFrameRate(t *testing.T) {
	fr := NewFrameRate(time.Second)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// 30 frames over the first second
	for i := 0; i < 30; i++ {
		fr.Frame(start.Add(time.Duration(i) * time.Second / 30))
	}
	if fps := fr.FPS(); fps != 0 {
		t.Errorf("Expected no estimate before the window elapses, got %f", fps)
	}

	fps := fr.Frame(start.Add(time.Second))
	if fps < 30 || fps > 32 {
		t.Errorf("Expected about 31 fps, got %f", fps)
	}

	// Estimate holds until the next window completes
	if got := fr.Frame(start.Add(time.Second + time.Millisecond)); got != fps {
		t.Errorf("Expected estimate %f to hold, got %f", fps, got)
	}
}

func TestNewFrameRate_DefaultWindow(t *testing.T) {
	fr := NewFrameRate(0)
	if fr.window != time.Second {
		t.Errorf("Expected default window of 1s, got %v", fr.window)
	}
}
