package renderer

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-progressive-gltracer/pkg/core"
)

type fakeTarget struct {
	size image.Point
	id   int
}

func (ft *fakeTarget) Size() image.Point { return ft.size }

// fakePipeline implements all three pass interfaces and records calls
type fakePipeline struct {
	calls       []string
	inputs      []FrameInputs
	displayed   []Target
	targets     []*fakeTarget
	next        int
	accumErr    error
	displayErr  error
	nilTarget   bool
	presents    int
}

func (fp *fakePipeline) Accumulate(in FrameInputs) (Target, error) {
	fp.calls = append(fp.calls, "accumulate")
	fp.inputs = append(fp.inputs, in)
	if fp.accumErr != nil {
		return nil, fp.accumErr
	}
	if fp.nilTarget {
		return nil, nil
	}
	target := &fakeTarget{size: in.WindowSize, id: fp.next}
	fp.next++
	fp.targets = append(fp.targets, target)
	return target, nil
}

func (fp *fakePipeline) Display(src Target, in FrameInputs) error {
	fp.calls = append(fp.calls, "display")
	fp.displayed = append(fp.displayed, src)
	return fp.displayErr
}

func (fp *fakePipeline) Present() {
	fp.calls = append(fp.calls, "present")
	fp.presents++
}

func TestOrchestrator_PassOrder(t *testing.T) {
	fp := &fakePipeline{}
	o := NewOrchestrator(fp, fp, fp)

	require.NoError(t, o.RenderFrame(FrameInputs{FrameCount: 1, WindowSize: image.Pt(800, 640)}))
	require.NoError(t, o.RenderFrame(FrameInputs{FrameCount: 2, WindowSize: image.Pt(800, 640)}))

	assert.Equal(t, []string{"accumulate", "display", "present", "accumulate", "display", "present"}, fp.calls)
	require.Len(t, fp.displayed, 2)
	assert.Same(t, fp.targets[0], fp.displayed[0], "display samples the target the accumulation pass wrote")
	assert.Same(t, fp.targets[1], fp.displayed[1])
	assert.Equal(t, 2, fp.inputs[1].FrameCount)
}

func TestOrchestrator_AccumulationFailureSkipsDisplay(t *testing.T) {
	fp := &fakePipeline{accumErr: errors.New("program not linked")}
	o := NewOrchestrator(fp, fp, fp)

	err := o.RenderFrame(FrameInputs{})
	assert.ErrorContains(t, err, "accumulation pass")
	assert.Equal(t, []string{"accumulate"}, fp.calls)
}

func TestOrchestrator_MissingTargetIsConfigurationFault(t *testing.T) {
	fp := &fakePipeline{nilTarget: true}
	o := NewOrchestrator(fp, fp, fp)

	err := o.RenderFrame(FrameInputs{})
	assert.ErrorIs(t, err, core.ErrConfigurationFault)
	assert.Equal(t, 0, fp.presents)
}

func TestOrchestrator_DisplayFailureSkipsPresent(t *testing.T) {
	fp := &fakePipeline{displayErr: core.ErrConfigurationFault}
	o := NewOrchestrator(fp, fp, fp)

	err := o.RenderFrame(FrameInputs{})
	assert.ErrorIs(t, err, core.ErrConfigurationFault)
	assert.ErrorContains(t, err, "display pass")
	assert.Equal(t, []string{"accumulate", "display"}, fp.calls)
}
