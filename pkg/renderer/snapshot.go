package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/df07/go-progressive-gltracer/pkg/core"
)

// SnapshotTimeFormat names snapshot files by wall clock time
const SnapshotTimeFormat = "20060102_150405"

// maxSnapshotSuffix bounds the render_<timestamp>_<n>.png names tried
// within one second
const maxSnapshotSuffix = 1000

// SavePNG writes img to dir/render_<timestamp>.png, creating dir if needed.
// Existing files are never overwritten: later snapshots in the same second
// get a _2, _3, ... suffix.
func SavePNG(dir string, img image.Image, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: creating output directory: %v", core.ErrResourceLoadFault, err)
	}

	file, filename, err := createSnapshotFile(dir, now.Format(SnapshotTimeFormat))
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding %s: %w", filename, err)
	}
	return filename, nil
}

func createSnapshotFile(dir, timestamp string) (*os.File, string, error) {
	for n := 1; n <= maxSnapshotSuffix; n++ {
		name := fmt.Sprintf("render_%s.png", timestamp)
		if n > 1 {
			name = fmt.Sprintf("render_%s_%d.png", timestamp, n)
		}
		filename := filepath.Join(dir, name)

		file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return file, filename, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("%w: creating %s: %v", core.ErrResourceLoadFault, filename, err)
		}
	}
	return nil, "", fmt.Errorf("%w: too many snapshots at %s in %s", core.ErrResourceLoadFault, timestamp, dir)
}
