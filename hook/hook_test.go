package hook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/fixedkit/errors"
)

func TestReporter_InvokesHook(t *testing.T) {
	type call struct {
		status errors.Status
		msg    string
		ctx    any
	}
	var calls []call
	r := NewReporter(func(s errors.Status, m string, c any) {
		calls = append(calls, call{s, m, c})
	}, "ctx-1", "telemetry")

	err := r.Fail(errors.Full(errors.PhaseQueue, 4))
	require.Error(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, errors.StatusInvalidSize, calls[0].status)
	assert.Equal(t, "ctx-1", calls[0].ctx)
	assert.Contains(t, calls[0].msg, "telemetry")
	assert.Equal(t, errors.StatusInvalidSize, errors.StatusOf(err))
}

func TestReporter_ZeroValue(t *testing.T) {
	var r Reporter
	err := r.Fail(errors.Empty(errors.PhaseStack))
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
	assert.Empty(t, r.Name())
}

func TestReporter_KeepsExplicitPath(t *testing.T) {
	r := NewReporter(nil, nil, "outer")
	e := errors.New(errors.PhaseMap, errors.KindTableFull).Path("inner").Build()
	_ = r.Fail(e)
	assert.Equal(t, []string{"inner"}, e.Path)
}

func TestZap(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fn := Zap(zap.New(core))

	fn(errors.StatusMemAlloc, "pool exhausted", "sensor-task")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "pool exhausted", entries[0].Message)
	assert.Equal(t, "MEMALLOC_ERROR", entries[0].ContextMap()["status"])
	assert.Equal(t, "sensor-task", entries[0].ContextMap()["context"])
}

func TestZap_NilLogger(t *testing.T) {
	fn := Zap(nil)
	assert.NotPanics(t, func() { fn(errors.StatusErr, "x", nil) })
}

func TestReporter_Report(t *testing.T) {
	var got []errors.Status
	r := NewReporter(func(s errors.Status, _ string, _ any) { got = append(got, s) }, nil, "arr")

	assert.NoError(t, r.Report(nil))

	foreign := assert.AnError
	assert.Same(t, foreign, r.Report(foreign))

	structured := errors.OutOfBounds(errors.PhaseArray, 9, 4)
	assert.Equal(t, error(structured), r.Report(structured))

	assert.Equal(t, []errors.Status{errors.StatusErr, errors.StatusOOB}, got)
}
