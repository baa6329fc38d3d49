// Package shaders provides the GLSL sources for the accumulation and
// display programs. Sources are embedded in the binary and may be
// overridden file by file from a directory on disk.
package shaders

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/df07/go-progressive-gltracer/pkg/core"
)

// File names of the three shader stages
const (
	VertexFile     = "vertex_draw.glsl"
	RayFile        = "fragment_ray.glsl"
	DrawFile       = "fragment_draw.glsl"
	embeddedPrefix = "glsl"
)

//go:embed glsl/*.glsl
var embedded embed.FS

// Sources holds one complete set of shader sources. The vertex stage is
// shared by both programs.
type Sources struct {
	Vertex string
	Ray    string
	Draw   string
}

// Loader reads shader sources, preferring files in Dir over the embedded
// defaults. An empty Dir always uses the embedded sources.
type Loader struct {
	Dir string
}

// NewLoader creates a loader with an optional override directory
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// Load reads all three shader sources
func (l *Loader) Load() (Sources, error) {
	var src Sources
	var err error
	if src.Vertex, err = l.Read(VertexFile); err != nil {
		return Sources{}, err
	}
	if src.Ray, err = l.Read(RayFile); err != nil {
		return Sources{}, err
	}
	if src.Draw, err = l.Read(DrawFile); err != nil {
		return Sources{}, err
	}
	return src, nil
}

// Read returns the source for one file name
func (l *Loader) Read(name string) (string, error) {
	if l.Dir != "" {
		data, err := os.ReadFile(filepath.Join(l.Dir, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: reading shader %s: %v", core.ErrResourceLoadFault, name, err)
		}
	}

	data, err := embedded.ReadFile(embeddedPrefix + "/" + name)
	if err != nil {
		return "", fmt.Errorf("%w: no shader named %s: %v", core.ErrResourceLoadFault, name, err)
	}
	return string(data), nil
}

// IsShaderFile reports whether name is one of the files the loader reads
func IsShaderFile(name string) bool {
	switch filepath.Base(name) {
	case VertexFile, RayFile, DrawFile:
		return true
	}
	return false
}
