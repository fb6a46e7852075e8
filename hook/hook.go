// Package hook carries the optional failure hook every container accepts at
// construction.
//
// A hook is purely observational: it is invoked with the status and a
// diagnostic message after an operation has already decided to fail, and its
// return cannot change the outcome. Omitting it (nil) is always valid.
package hook

import (
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/wippyai/fixedkit/errors"
)

// Func receives a failure status, a diagnostic message and the user context
// that was registered together with the hook.
type Func func(status errors.Status, message string, userCtx any)

// Reporter invokes a Func on behalf of one container instance.
// The zero value reports only to the package logger.
type Reporter struct {
	fn   Func
	ctx  any
	name string
}

// NewReporter binds fn and its user context. name labels log lines and is
// added to the Path of reported errors.
func NewReporter(fn Func, userCtx any, name string) Reporter {
	return Reporter{fn: fn, ctx: userCtx, name: name}
}

// Name returns the label given at construction.
func (r Reporter) Name() string {
	return r.name
}

// Fail reports err and returns it so call sites can write
// `return r.Fail(errors.Empty(errors.PhaseQueue))`.
func (r Reporter) Fail(err *errors.Error) error {
	if r.name != "" && len(err.Path) == 0 {
		err.Path = []string{r.name}
	}
	status := err.Status()
	msg := err.Error()

	Logger().Debug("operation failed",
		zap.String("phase", string(err.Phase)),
		zap.String("kind", string(err.Kind)),
		zap.Stringer("status", status),
		zap.String("container", r.name),
		zap.String("detail", err.Detail))

	if r.fn != nil {
		r.fn(status, msg, r.ctx)
	}
	return err
}

// Report forwards an error produced by a collaborator. Structured errors go
// through Fail; anything else reaches the hook as StatusErr and is returned
// unchanged. A nil err is returned as nil without reporting.
func (r Reporter) Report(err error) error {
	if err == nil {
		return nil
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		_ = r.Fail(e)
		return err
	}
	Logger().Debug("operation failed", zap.String("container", r.name), zap.Error(err))
	if r.fn != nil {
		r.fn(errors.StatusErr, err.Error(), r.ctx)
	}
	return err
}

// Zap adapts a zap logger into a hook that logs each failure at warn level.
func Zap(l *zap.Logger) Func {
	if l == nil {
		l = zap.NewNop()
	}
	return func(status errors.Status, message string, userCtx any) {
		fields := []zap.Field{zap.Stringer("status", status)}
		if userCtx != nil {
			fields = append(fields, zap.Any("context", userCtx))
		}
		l.Warn(message, fields...)
	}
}
