package wasmmem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/fixedkit/alloc"
	"github.com/wippyai/fixedkit/errors"
)

func TestUleb(t *testing.T) {
	assert.Equal(t, []byte{0x01}, uleb(1))
	assert.Equal(t, []byte{0x7f}, uleb(127))
	assert.Equal(t, []byte{0x80, 0x01}, uleb(128))
	assert.Equal(t, []byte{0xe5, 0x8e, 0x26}, uleb(624485))
}

func TestStandalone_Memory(t *testing.T) {
	ctx := context.Background()
	sa, err := NewStandalone(ctx, 2)
	require.NoError(t, err)
	defer sa.Close(ctx)

	mem := sa.Memory()
	require.NotNil(t, mem)
	assert.Equal(t, uint32(2*PageSize), mem.Size())

	_, ok := mem.Grow(1)
	assert.False(t, ok, "memory is capped at its initial size")
}

func TestStandalone_ZeroPages(t *testing.T) {
	_, err := NewStandalone(context.Background(), 0)
	assert.True(t, errors.IsKind(err, errors.KindInvalidSize))
}

func TestNewRegion_Bounds(t *testing.T) {
	ctx := context.Background()
	sa, err := NewStandalone(ctx, 1)
	require.NoError(t, err)
	defer sa.Close(ctx)

	_, err = NewRegion(sa.Memory(), PageSize-8, 16)
	assert.Equal(t, errors.StatusOOB, errors.StatusOf(err))

	_, err = NewRegion(sa.Memory(), 0, 0)
	assert.Equal(t, errors.StatusInvalidSize, errors.StatusOf(err))

	_, err = NewRegion(nil, 0, 8)
	assert.Equal(t, errors.StatusNullPtr, errors.StatusOf(err))
}

func TestRegion_PoolAliasesGuestMemory(t *testing.T) {
	ctx := context.Background()
	sa, err := NewStandalone(ctx, 1)
	require.NoError(t, err)
	defer sa.Close(ctx)

	region, err := NewRegion(sa.Memory(), 1024, 256)
	require.NoError(t, err)
	assert.Equal(t, uint32(1024), region.Offset())
	assert.Equal(t, uint32(256), region.Len())

	pool, err := region.Pool(alloc.Config{SlotSize: 32})
	require.NoError(t, err)
	assert.Equal(t, 8, pool.Cap())

	_, _ = pool.Get(32)
	h, err := pool.Get(32)
	require.NoError(t, err)
	b, err := pool.Bytes(h)
	require.NoError(t, err)
	copy(b, []byte("guest"))

	got, ok := sa.Memory().Read(region.GuestAddr(h), 5)
	require.True(t, ok)
	assert.Equal(t, "guest", string(got))
	assert.Equal(t, uint32(1024+32), region.GuestAddr(h))

	require.NoError(t, pool.Put(h))
	v, ok := sa.Memory().ReadByte(region.GuestAddr(h))
	require.True(t, ok)
	assert.Zero(t, v, "Put zero-fills the guest bytes")
}
