package input

import (
	"fmt"
	"sort"
)

// Kind identifies a discrete viewer command
type Kind int

const (
	MoveForward Kind = iota
	MoveBackward
	StrafeLeft
	StrafeRight
	Look
	IncreaseK
	DecreaseK
	IncreaseSamples
	DecreaseSamples
	IncreaseAperture
	DecreaseAperture
	FocusNear
	FocusFar
	Snapshot
	ReloadShaders
	CloseRequested
)

var kindNames = map[Kind]string{
	MoveForward:      "move-forward",
	MoveBackward:     "move-backward",
	StrafeLeft:       "strafe-left",
	StrafeRight:      "strafe-right",
	Look:             "look",
	IncreaseK:        "k-up",
	DecreaseK:        "k-down",
	IncreaseSamples:  "samples-up",
	DecreaseSamples:  "samples-down",
	IncreaseAperture: "aperture-up",
	DecreaseAperture: "aperture-down",
	FocusNear:        "focus-near",
	FocusFar:         "focus-far",
	Snapshot:         "snapshot",
	ReloadShaders:    "reload-shaders",
	CloseRequested:   "close",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind looks up a command kind by its name
func ParseKind(name string) (Kind, error) {
	for kind, n := range kindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", name)
}

// KindNames returns all command names, sorted
func KindNames() []string {
	names := make([]string, 0, len(kindNames))
	for _, n := range kindNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Command is one input event. Magnitude is the tick's elapsed time in
// seconds for movement commands; DX/DY carry pointer deltas for Look.
type Command struct {
	Kind      Kind
	Magnitude float64
	DX, DY    float64
}

// Move creates a movement command for dt seconds
func Move(kind Kind, dt float64) Command {
	return Command{Kind: kind, Magnitude: dt}
}

// LookDelta creates a look command from a pointer delta
func LookDelta(dx, dy float64) Command {
	return Command{Kind: Look, DX: dx, DY: dy}
}

// Key creates a command with no payload
func Key(kind Kind) Command {
	return Command{Kind: kind}
}
