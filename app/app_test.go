package app

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/fixedkit/errors"
)

func counter(name string, n *int) Task {
	return NewTask(name, nil, func(context.Context) error {
		*n++
		return nil
	})
}

func TestLoop_StepRoundRobin(t *testing.T) {
	l, err := New(Config{MaxTasks: 2})
	require.NoError(t, err)

	var order []string
	for _, name := range []string{"a", "b"} {
		require.NoError(t, l.Add(NewTask(name, nil, func(context.Context) error {
			order = append(order, name)
			return nil
		})))
	}
	err = l.Add(counter("c", new(int)))
	require.ErrorIs(t, err, ErrFull)

	ctx := context.Background()
	require.NoError(t, l.Init(ctx))
	require.NoError(t, l.Step(ctx))
	require.NoError(t, l.Step(ctx))
	assert.Equal(t, []string{"a", "b", "a", "b"}, order)
	assert.Equal(t, uint64(2), l.Ticks())
}

func TestLoop_FailuresDoNotStopPass(t *testing.T) {
	var statuses []errors.Status
	l, err := New(Config{Hook: func(s errors.Status, _ string, _ any) { statuses = append(statuses, s) }})
	require.NoError(t, err)

	boom := stderrors.New("boom")
	var ran int
	require.NoError(t, l.Add(NewTask("bad", func(context.Context) error { return boom },
		func(context.Context) error { return boom })))
	require.NoError(t, l.Add(NewTask("panics", nil, func(context.Context) error { panic("oops") })))
	require.NoError(t, l.Add(counter("good", &ran)))

	ctx := context.Background()
	err = l.Init(ctx)
	require.ErrorIs(t, err, boom)

	err = l.Step(ctx)
	require.ErrorIs(t, err, boom)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "panic: oops")
	assert.Equal(t, 1, ran)
	assert.Equal(t, []errors.Status{errors.StatusErr, errors.StatusErr, errors.StatusErr}, statuses)
}

func TestLoop_Run(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	l, err := New(Config{})
	require.NoError(t, err)
	var ran int
	require.NoError(t, l.Add(counter("tick", &ran)))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, l.Add(NewTask("stopper", nil, func(context.Context) error {
		if ran >= 3 {
			cancel()
		}
		return nil
	})))

	err = l.Run(ctx, time.Millisecond)
	require.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, ran, 3)
	assert.Equal(t, 1, logs.FilterMessage("loop stopped").Len())
}

func TestLoop_InvalidInput(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, errors.StatusNullPtr, errors.StatusOf(l.Add(nil)))
	assert.Equal(t, errors.StatusInvalidSize, errors.StatusOf(l.Run(context.Background(), 0)))

	_, err = New(Config{MaxTasks: -1})
	assert.Error(t, err)
}
