package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseArray,
				Kind:   KindTypeMismatch,
				Path:   []string{"sensors", "readings"},
				Type:   "reading",
				Detail: "operation table mismatch",
			},
			contains: []string{"[array]", "type_mismatch", "sensors.readings", "reading", "operation table mismatch"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseQueue,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[queue]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseTable,
				Kind:   KindWrite,
				Detail: "flush header",
				Cause:  errors.New("disk full"),
			},
			contains: []string{"[table]", "write", "flush header", "caused by", "disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseTable,
		Kind:  KindRead,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:  PhaseAlloc,
		Kind:   KindAllocation,
		Detail: "pool exhausted",
	}

	if !err.Is(Sentinel(PhaseAlloc, KindAllocation)) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(Sentinel(PhaseHeap, KindAllocation)) {
		t.Error("Is should not match different phase")
	}
	if err.Is(Sentinel(PhaseAlloc, KindInvalidFree)) {
		t.Error("Is should not match different kind")
	}

	wrapped := fmt.Errorf("reserve buffer: %w", err)
	if !errors.Is(wrapped, Sentinel(PhaseAlloc, KindAllocation)) {
		t.Error("errors.Is should match through fmt wrapping")
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", Empty(PhaseStack))
	if !IsKind(err, KindNotFound) {
		t.Error("IsKind should see through wrapping")
	}
	if IsKind(err, KindTableFull) {
		t.Error("IsKind should not match a different kind")
	}
	if IsKind(errors.New("plain"), KindNotFound) {
		t.Error("IsKind should not match foreign errors")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseAlloc, KindInvalidSize).
		Path("pool", "telemetry").
		Type("frame").
		Value(24).
		Cause(cause).
		Detail("requested %d, slot is %d", 24, 16).
		Build()

	if err.Phase != PhaseAlloc {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseAlloc)
	}
	if err.Kind != KindInvalidSize {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidSize)
	}
	if len(err.Path) != 2 || err.Path[0] != "pool" || err.Path[1] != "telemetry" {
		t.Errorf("Path = %v, want [pool telemetry]", err.Path)
	}
	if err.Type != "frame" {
		t.Errorf("Type = %v, want 'frame'", err.Type)
	}
	if err.Value != 24 {
		t.Errorf("Value = %v, want 24", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "requested 24, slot is 16" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseArray, "reading", "sample")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.Type != "reading" {
			t.Errorf("Type = %v, want reading", err.Type)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseArray, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("NilPointer", func(t *testing.T) {
		err := NilPointer(PhaseCapability, "destination")
		if err.Kind != KindNilPointer {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNilPointer)
		}
		if !strings.Contains(err.Detail, "destination") {
			t.Errorf("Detail = %v, should name the argument", err.Detail)
		}
	})

	t.Run("Full", func(t *testing.T) {
		err := Full(PhaseQueue, 8)
		if err.Kind != KindInvalidSize {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidSize)
		}
		if err.Value != 8 {
			t.Errorf("Value = %v, want 8", err.Value)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseMap, "key", 42)
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
		if !strings.Contains(err.Error(), "42") {
			t.Errorf("message %q should contain the key", err.Error())
		}
	})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{nil, StatusSuccess},
		{errors.New("foreign"), StatusErr},
		{Sentinel(PhaseApp, KindGeneric), StatusErr},
		{NilPointer(PhaseCapability, "src"), StatusNullPtr},
		{Sentinel(PhaseAlloc, KindAllocation), StatusMemAlloc},
		{Sentinel(PhaseAlloc, KindInvalidFree), StatusMemFree},
		{TypeMismatch(PhaseArray, "a", "b"), StatusInvalidType},
		{Full(PhaseStack, 4), StatusInvalidSize},
		{Sentinel(PhaseMap, KindTableFull), StatusTableFull},
		{Empty(PhaseQueue), StatusDNE},
		{OutOfBounds(PhaseArray, 3, 2), StatusOOB},
		{Sentinel(PhaseAlloc, KindRefInUse), StatusRefInUse},
		{Sentinel(PhaseAlloc, KindInvalidRef), StatusInvalidRef},
		{InvalidData(PhaseTable, "bad magic"), StatusInvalidData},
		{Sentinel(PhaseApp, KindTimeout), StatusTimeout},
		{Sentinel(PhaseTable, KindFile), StatusFile},
		{Sentinel(PhaseTable, KindRead), StatusRead},
		{Sentinel(PhaseTable, KindWrite), StatusWrite},
		{Sentinel(PhaseTable, KindChecksum), StatusCRC},
		{fmt.Errorf("wrapped: %w", Sentinel(PhaseTable, KindChecksum)), StatusCRC},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStatus_String(t *testing.T) {
	if StatusOOB.String() != "OOB_ERROR" {
		t.Errorf("StatusOOB = %q", StatusOOB.String())
	}
	if Status(200).String() != "UNKNOWN_STATUS" {
		t.Errorf("out of range status = %q", Status(200).String())
	}
}
