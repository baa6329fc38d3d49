package glview

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// LinearToImage converts RGBA float pixels read back from GL (bottom row
// first, linear) into a top-down 8-bit image with the same gamma 2 encoding
// the display shader applies.
func LinearToImage(pixels []float32, size image.Point) (*image.RGBA, error) {
	if size.X <= 0 || size.Y <= 0 || len(pixels) != size.X*size.Y*4 {
		return nil, fmt.Errorf("readback has %d floats, want %dx%dx4", len(pixels), size.X, size.Y)
	}

	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	for y := 0; y < size.Y; y++ {
		row := size.Y - 1 - y
		for x := 0; x < size.X; x++ {
			i := (row*size.X + x) * 4
			img.SetRGBA(x, y, color.RGBA{
				R: encode(pixels[i]),
				G: encode(pixels[i+1]),
				B: encode(pixels[i+2]),
				A: 255,
			})
		}
	}
	return img, nil
}

func encode(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(math.Sqrt(float64(v)) * 255))
}
