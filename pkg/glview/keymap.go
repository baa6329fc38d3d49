package glview

import (
	"fmt"
	"sort"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/df07/go-progressive-gltracer/pkg/input"
)

// Keymap binds keys to commands. Held keys are polled every tick and
// produce movement scaled by the tick's elapsed time; pressed keys produce
// one command per key press.
type Keymap struct {
	Held    map[glfw.Key]input.Kind
	Pressed map[glfw.Key]input.Kind
}

// DefaultKeymap returns the viewer's standard bindings
func DefaultKeymap() Keymap {
	return Keymap{
		Held: map[glfw.Key]input.Kind{
			glfw.KeyW: input.MoveForward,
			glfw.KeyS: input.MoveBackward,
			glfw.KeyA: input.StrafeLeft,
			glfw.KeyD: input.StrafeRight,
		},
		Pressed: map[glfw.Key]input.Kind{
			glfw.KeyI:      input.DecreaseK,
			glfw.KeyO:      input.IncreaseK,
			glfw.KeyK:      input.DecreaseSamples,
			glfw.KeyL:      input.IncreaseSamples,
			glfw.KeyZ:      input.DecreaseAperture,
			glfw.KeyX:      input.IncreaseAperture,
			glfw.KeyC:      input.FocusNear,
			glfw.KeyV:      input.FocusFar,
			glfw.KeyP:      input.Snapshot,
			glfw.KeyR:      input.ReloadShaders,
			glfw.KeyEscape: input.CloseRequested,
		},
	}
}

// OnPress returns the command for a key press event
func (km Keymap) OnPress(key glfw.Key) (input.Command, bool) {
	kind, ok := km.Pressed[key]
	if !ok {
		return input.Command{}, false
	}
	return input.Key(kind), true
}

// Describe lists the bindings as "key: command" lines, sorted by key name
func (km Keymap) Describe() []string {
	var lines []string
	add := func(bindings map[glfw.Key]input.Kind, suffix string) {
		for key, kind := range bindings {
			lines = append(lines, fmt.Sprintf("%s: %s%s", keyName(key), kind, suffix))
		}
	}
	add(km.Held, " (hold)")
	add(km.Pressed, "")
	sort.Strings(lines)
	return lines
}

func keyName(key glfw.Key) string {
	switch {
	case key == glfw.KeyEscape:
		return "Escape"
	case key >= glfw.KeyA && key <= glfw.KeyZ:
		return string(rune('A' + int(key-glfw.KeyA)))
	case key >= glfw.Key0 && key <= glfw.Key9:
		return string(rune('0' + int(key-glfw.Key0)))
	}
	return fmt.Sprintf("Key(%d)", int(key))
}
