package glview

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-progressive-gltracer/pkg/input"
)

func TestDefaultKeymap_BindsEveryKeyboardCommand(t *testing.T) {
	km := DefaultKeymap()

	bound := make(map[input.Kind]int)
	for _, kind := range km.Held {
		bound[kind]++
	}
	for _, kind := range km.Pressed {
		bound[kind]++
	}

	for _, name := range input.KindNames() {
		kind, err := input.ParseKind(name)
		require.NoError(t, err)
		if kind == input.Look {
			assert.Zero(t, bound[kind], "look comes from the pointer")
			continue
		}
		assert.Equal(t, 1, bound[kind], "%s should have exactly one key", name)
	}

	for key := range km.Held {
		_, pressed := km.Pressed[key]
		assert.False(t, pressed, "key %s is both held and pressed", keyName(key))
	}
}

func TestKeymap_OnPress(t *testing.T) {
	km := DefaultKeymap()

	cmd, ok := km.OnPress(glfw.KeyO)
	require.True(t, ok)
	assert.Equal(t, input.IncreaseK, cmd.Kind)

	cmd, ok = km.OnPress(glfw.KeyEscape)
	require.True(t, ok)
	assert.Equal(t, input.CloseRequested, cmd.Kind)

	_, ok = km.OnPress(glfw.KeyW)
	assert.False(t, ok, "movement keys are polled, not pressed")

	_, ok = km.OnPress(glfw.KeyF12)
	assert.False(t, ok)
}

func TestKeymap_Describe(t *testing.T) {
	lines := DefaultKeymap().Describe()

	assert.Len(t, lines, 15)
	assert.IsNonDecreasing(t, lines)
	assert.Contains(t, lines, "W: move-forward (hold)")
	assert.Contains(t, lines, "Escape: close")
	assert.Contains(t, lines, "P: snapshot")
}

func TestKeyName(t *testing.T) {
	assert.Equal(t, "A", keyName(glfw.KeyA))
	assert.Equal(t, "Z", keyName(glfw.KeyZ))
	assert.Equal(t, "7", keyName(glfw.Key7))
	assert.Equal(t, "Escape", keyName(glfw.KeyEscape))
	assert.Equal(t, "Key(301)", keyName(glfw.KeyF12))
}
