package vm

import (
	"errors"
	"testing"

	"github.com/lightplayer/lps/op"
	"github.com/stretchr/testify/require"
)

// TestObserver is a test observer that records events.
type TestObserver struct {
	NoOpObserver
	Steps   []StepEvent
	Calls   []CallEvent
	Returns []ReturnEvent
}

func (o *TestObserver) OnStep(event StepEvent) bool {
	o.Steps = append(o.Steps, event)
	return true
}

func (o *TestObserver) OnCall(event CallEvent) bool {
	o.Calls = append(o.Calls, event)
	return true
}

func (o *TestObserver) OnReturn(event ReturnEvent) bool {
	o.Returns = append(o.Returns, event)
	return true
}

func TestObserverOnStep(t *testing.T) {
	code := compileExpr(t, "uv.x + 2.0")

	observer := &TestObserver{}
	machine, err := New(code, WithObserver(observer))
	require.NoError(t, err)
	_, err = machine.Run(0, 0, 0)
	require.NoError(t, err)

	require.Len(t, observer.Steps, len(code.Code))
	require.Equal(t, op.Load, observer.Steps[0].Opcode)
	require.Equal(t, 0, observer.Steps[0].StackDepth)
	last := observer.Steps[len(observer.Steps)-1]
	require.Equal(t, op.Return, last.Opcode)
	require.Equal(t, 1, last.StackDepth)
}

func TestObserverOnCallAndReturn(t *testing.T) {
	code := compileProgram(t, `
float add(float a, float b) {
	return a + b;
}
return add(1.0, 2.0);
`)

	observer := &TestObserver{}
	machine, err := New(code, WithObserver(observer))
	require.NoError(t, err)
	v, err := machine.RunScalar(0, 0, 0)
	require.NoError(t, err)
	require.InDelta(t, 3.0, v.Float(), 0.001)

	require.Len(t, observer.Calls, 1)
	call := observer.Calls[0]
	require.Equal(t, "add", call.FunctionName)
	require.Equal(t, 1, call.FunctionIndex)
	require.Equal(t, 2, call.ArgWords)
	require.Equal(t, 1, call.FrameDepth)
	require.Equal(t, 5, call.Span.Line)

	require.Len(t, observer.Returns, 1)
	require.Equal(t, "add", observer.Returns[0].FunctionName)
	require.Equal(t, 0, observer.Returns[0].FrameDepth)
}

type lineObserver struct {
	NoOpObserver
	lines []int
}

func (o *lineObserver) Config() ObserverConfig {
	return NewObserverConfig(StepOnLine)
}

func (o *lineObserver) OnStep(event StepEvent) bool {
	o.lines = append(o.lines, event.Span.Line)
	return true
}

func TestObserverStepOnLine(t *testing.T) {
	code := compileProgram(t, "float a = 1.0;\nfloat b = a + 2.0;\nreturn b;")
	observer := &lineObserver{}
	machine, err := New(code, WithObserver(observer))
	require.NoError(t, err)
	_, err = machine.Run(0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, observer.lines)
}

func TestObserverHaltOnStep(t *testing.T) {
	code := compileExpr(t, "uv.x + uv.y + 3.0 + 4.0")

	haltingObserver := &haltingObserverImpl{haltAfter: 3}
	machine, err := New(code, WithObserver(haltingObserver))
	require.NoError(t, err)
	_, err = machine.Run(0, 0, 0)

	var rerr *RuntimeError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, ObserverHalt, rerr.Kind)
	require.Equal(t, 2, rerr.PC)
	require.Equal(t, 3, haltingObserver.stepCount)
}

type haltingObserverImpl struct {
	NoOpObserver
	haltAfter int
	stepCount int
}

func (o *haltingObserverImpl) OnStep(event StepEvent) bool {
	o.stepCount++
	return o.stepCount < o.haltAfter
}
