package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/fixedkit/errors"
)

type reading struct {
	Sensor uint16
	Value  int32
	Flags  [4]byte
}

func TestTable_CopyAndReset(t *testing.T) {
	ops := NewTable[reading]("reading")
	src := reading{Sensor: 7, Value: -12, Flags: [4]byte{1, 2, 3, 4}}
	var dst reading

	require.NoError(t, ops.Copy(Of(ops, &dst), Of(ops, &src)))
	assert.Equal(t, src, dst)

	require.NoError(t, ops.Reset(Of(ops, &dst)))
	assert.Equal(t, reading{}, dst)
}

func TestTable_Declares(t *testing.T) {
	ops := NewTable[reading]("reading")
	assert.Equal(t, "reading", ops.Name())
	assert.Equal(t, uintptr(12), ops.Size())
	assert.Equal(t, uintptr(4), ops.Align())
}

func TestTable_WithDefault(t *testing.T) {
	ops := NewTable("slot", WithDefault(int32(-1)))
	v := int32(99)
	require.NoError(t, Reset(Of(ops, &v)))
	assert.Equal(t, int32(-1), v)
}

func TestTable_CustomOps(t *testing.T) {
	copies, resets := 0, 0
	ops := NewTable[int]("counted",
		WithCopy(func(dst, src *int) { copies++; *dst = *src }),
		WithReset(func(dst *int) { resets++; *dst = 0 }),
	)
	a, b := 1, 2
	require.NoError(t, Copy(Of(ops, &a), Of(ops, &b)))
	require.NoError(t, Reset(Of(ops, &a)))
	assert.Equal(t, 1, copies)
	assert.Equal(t, 1, resets)
}

func TestTable_NilAddress(t *testing.T) {
	ops := NewTable[reading]("reading")
	var r reading

	err := ops.Copy(Of(ops, &r), Of[reading](ops, nil))
	assert.Equal(t, errors.StatusNullPtr, errors.StatusOf(err))

	err = ops.Reset(Of[reading](ops, nil))
	assert.Equal(t, errors.StatusNullPtr, errors.StatusOf(err))
}

func TestTable_ForeignTableRejected(t *testing.T) {
	ops := NewTable[reading]("reading")
	other := NewTable[reading]("calibration")

	dst := reading{Sensor: 1}
	src := reading{Sensor: 2}

	err := ops.Copy(Of(ops, &dst), Of(other, &src))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindTypeMismatch))
	assert.Equal(t, uint16(1), dst.Sensor, "destination must not be touched")

	err = ops.Reset(Of(other, &dst))
	assert.Equal(t, errors.StatusInvalidType, errors.StatusOf(err))
	assert.Equal(t, uint16(1), dst.Sensor)
}

func TestTable_ForgedDescriptorRejected(t *testing.T) {
	ops := NewTable[reading]("reading")
	var r reading
	d := Of(ops, &r)
	d.Size = 8

	err := ops.Reset(d)
	assert.True(t, errors.IsKind(err, errors.KindTypeMismatch))
}

func TestTable_Nil(t *testing.T) {
	var ops *Table[int]
	v := 1
	err := ops.Reset(Of(ops, &v))
	assert.Equal(t, errors.StatusNullPtr, errors.StatusOf(err))
	assert.Equal(t, "<nil>", ops.Name())
}

func TestTable_SelfCopy(t *testing.T) {
	ops := NewTable[reading]("reading")
	r := reading{Sensor: 3}
	require.NoError(t, ops.Copy(Of(ops, &r), Of(ops, &r)))
	assert.Equal(t, uint16(3), r.Sensor)
}
