// Package app runs a fixed set of cooperative tasks on the caller's
// goroutine: every task is initialised once, then processed round-robin,
// either one pass at a time with Step or periodically with Run.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/fixedkit/array"
	"github.com/wippyai/fixedkit/capability"
	"github.com/wippyai/fixedkit/errors"
	"github.com/wippyai/fixedkit/hook"
)

const DefaultMaxTasks = 8

var ErrFull = errors.Sentinel(errors.PhaseApp, errors.KindTableFull)

// Task is one unit of cooperative work.
type Task interface {
	Name() string
	Init(ctx context.Context) error
	Process(ctx context.Context) error
}

type funcTask struct {
	name    string
	init    func(context.Context) error
	process func(context.Context) error
}

// NewTask builds a Task from functions. init may be nil.
func NewTask(name string, init, process func(context.Context) error) Task {
	return &funcTask{name: name, init: init, process: process}
}

func (t *funcTask) Name() string { return t.name }

func (t *funcTask) Init(ctx context.Context) error {
	if t.init == nil {
		return nil
	}
	return t.init(ctx)
}

func (t *funcTask) Process(ctx context.Context) error { return t.process(ctx) }

var taskOps = capability.NewTable[Task]("app.Task")

// Config sizes a Loop.
type Config struct {
	MaxTasks    int
	Hook        hook.Func
	HookContext any
	Name        string
}

// Loop owns the registered tasks. Not safe for concurrent use.
type Loop struct {
	tasks *array.Fixed[Task]
	n     int
	ticks uint64
	rep   hook.Reporter
}

// New creates an empty loop.
func New(cfg Config) (*Loop, error) {
	rep := hook.NewReporter(cfg.Hook, cfg.HookContext, cfg.Name)
	limit := cfg.MaxTasks
	if limit == 0 {
		limit = DefaultMaxTasks
	}
	if limit < 0 {
		return nil, rep.Fail(errors.InvalidSize(errors.PhaseApp, "max tasks %d", limit))
	}
	tasks, err := array.NewFixed(taskOps, make([]Task, limit), array.Config{Name: cfg.Name})
	if err != nil {
		return nil, rep.Report(err)
	}
	return &Loop{tasks: tasks, rep: rep}, nil
}

// Add registers t. Tasks run in the order they were added.
func (l *Loop) Add(t Task) error {
	if t == nil {
		return l.rep.Fail(errors.NilPointer(errors.PhaseApp, "task"))
	}
	if l.n == l.tasks.Cap() {
		return l.rep.Fail(errors.New(errors.PhaseApp, errors.KindTableFull).
			Value(t.Name()).
			Detail("task limit %d reached", l.tasks.Cap()).
			Build())
	}
	if err := array.Store[Task](l.tasks, l.n, &t); err != nil {
		return l.rep.Report(err)
	}
	l.n++
	return nil
}

// Len returns the number of registered tasks.
func (l *Loop) Len() int { return l.n }

// Ticks returns the number of completed Step passes.
func (l *Loop) Ticks() uint64 { return l.ticks }

// Init initialises every task. All tasks are attempted; failures are
// combined into the returned error.
func (l *Loop) Init(ctx context.Context) error {
	var errs error
	for i := range l.n {
		t, err := l.task(i)
		if err != nil {
			return err
		}
		if err := l.call(ctx, t, t.Init, "init"); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		Logger().Info("task initialised", zap.String("task", t.Name()))
	}
	return errs
}

// Step runs Process once for every task. A failing task does not stop the
// pass; failures are combined into the returned error.
func (l *Loop) Step(ctx context.Context) error {
	var errs error
	for i := range l.n {
		t, err := l.task(i)
		if err != nil {
			return err
		}
		errs = multierr.Append(errs, l.call(ctx, t, t.Process, "process"))
	}
	l.ticks++
	return errs
}

// Run calls Step every period until ctx is done and returns ctx.Err().
// Step failures are logged and do not stop the loop.
func (l *Loop) Run(ctx context.Context, period time.Duration) error {
	if period <= 0 {
		return l.rep.Fail(errors.InvalidSize(errors.PhaseApp, "period %s", period))
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	Logger().Info("loop started", zap.Int("tasks", l.n), zap.Duration("period", period))
	for {
		select {
		case <-ctx.Done():
			Logger().Info("loop stopped", zap.Uint64("ticks", l.ticks))
			return ctx.Err()
		case <-ticker.C:
			_ = l.Step(ctx)
		}
	}
}

func (l *Loop) task(i int) (Task, error) {
	p, err := l.tasks.Ref(i)
	if err != nil {
		return nil, l.rep.Report(err)
	}
	return *p, nil
}

func (l *Loop) call(ctx context.Context, t Task, fn func(context.Context) error, stage string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			Logger().Warn("task failed",
				zap.String("task", t.Name()),
				zap.String("stage", stage),
				zap.Error(err))
			err = l.rep.Fail(errors.Wrap(errors.PhaseApp, errors.KindGeneric, err, t.Name()+" "+stage))
		}
	}()
	return fn(ctx)
}
