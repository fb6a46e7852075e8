package hashmap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/fixedkit/array"
	"github.com/wippyai/fixedkit/capability"
	"github.com/wippyai/fixedkit/errors"
)

var (
	intOps    = capability.NewTable[int]("int")
	stringOps = capability.NewTable[string]("string")
)

func newIntMap(t *testing.T, capacity int, hook func(errors.Status, string, any)) (*Map[int, string], []int) {
	t.Helper()
	keys := make([]int, capacity)
	ka, err := array.NewFixed(intOps, keys, array.Config{})
	require.NoError(t, err)
	va, err := array.NewFixed(stringOps, make([]string, capacity), array.Config{})
	require.NoError(t, err)
	m, err := New[int, string](ka, va, Config[int]{
		Hash:   IntHash[int],
		Equals: EqualComparable[int],
		IsNull: ZeroIsNull[int],
		Hook:   hook,
		Name:   "m",
	})
	require.NoError(t, err)
	return m, keys
}

func TestMap_RoundTrip(t *testing.T) {
	m, _ := newIntMap(t, 16, nil)

	for k := 1; k <= 12; k++ {
		require.NoError(t, m.Set(k, fmt.Sprintf("v%d", k)))
	}
	assert.Equal(t, 12, m.Len())

	for k := 1; k <= 12; k++ {
		var v string
		require.NoError(t, m.Get(k, &v))
		assert.Equal(t, fmt.Sprintf("v%d", k), v)
	}

	require.NoError(t, m.Set(3, "three"))
	assert.Equal(t, 12, m.Len(), "overwrite keeps count")
	var v string
	require.NoError(t, m.Get(3, &v))
	assert.Equal(t, "three", v)
}

func TestMap_CollisionPlacement(t *testing.T) {
	m, keys := newIntMap(t, 10, nil)

	require.NoError(t, m.Set(5, "a"))
	require.NoError(t, m.Set(15, "b"))
	assert.Equal(t, 5, m.IndexOf(5))
	assert.Equal(t, 6, m.IndexOf(15))
	assert.Equal(t, 5, keys[5])
	assert.Equal(t, 15, keys[6])

	// Probe wraps from the last slot to the first.
	require.NoError(t, m.Set(9, "c"))
	require.NoError(t, m.Set(19, "d"))
	assert.Equal(t, 0, m.IndexOf(19))
}

func TestMap_TableFull(t *testing.T) {
	var statuses []errors.Status
	m, _ := newIntMap(t, 4, func(s errors.Status, _ string, _ any) { statuses = append(statuses, s) })

	for k := 1; k <= 4; k++ {
		require.NoError(t, m.Set(k, "x"))
	}
	err := m.Set(5, "y")
	require.ErrorIs(t, err, ErrTableFull)
	assert.Equal(t, errors.StatusTableFull, errors.StatusOf(err))
	assert.Equal(t, []errors.Status{errors.StatusTableFull}, statuses)

	require.NoError(t, m.Set(2, "still writable"))
}

func TestMap_RemoveThenMissing(t *testing.T) {
	m, keys := newIntMap(t, 8, nil)
	require.NoError(t, m.Set(7, "x"))
	require.NoError(t, m.Remove(7))
	assert.Zero(t, keys[7])
	assert.Zero(t, m.Len())

	var v string
	err := m.Get(7, &v)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, errors.StatusDNE, errors.StatusOf(err))

	require.NoError(t, m.Remove(7), "absent key")
}

func TestMap_LookupPastHole(t *testing.T) {
	m, _ := newIntMap(t, 10, nil)
	require.NoError(t, m.Set(5, "a"))
	require.NoError(t, m.Set(15, "b"))
	require.NoError(t, m.Remove(5))

	var v string
	require.NoError(t, m.Get(15, &v))
	assert.Equal(t, "b", v)

	// An existing key is overwritten in place, never duplicated into the hole.
	require.NoError(t, m.Set(15, "c"))
	assert.Equal(t, 6, m.IndexOf(15))
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Set(25, "d"))
	assert.Equal(t, 5, m.IndexOf(25))
}

func TestMap_NullKeyRejected(t *testing.T) {
	m, _ := newIntMap(t, 4, nil)
	err := m.Set(0, "zero")
	assert.Equal(t, errors.StatusInvalidData, errors.StatusOf(err))
}

func TestMap_Each(t *testing.T) {
	m, _ := newIntMap(t, 8, nil)
	require.NoError(t, m.Set(1, "a"))
	require.NoError(t, m.Set(2, "b"))

	got := map[int]string{}
	m.Each(func(k *int, v *string) bool {
		got[*k] = *v
		return true
	})
	assert.Equal(t, map[int]string{1: "a", 2: "b"}, got)
}

func TestMap_StringKeys(t *testing.T) {
	ka, err := array.NewFixed(stringOps, make([]string, 8), array.Config{})
	require.NoError(t, err)
	va, err := array.NewFixed(intOps, make([]int, 8), array.Config{})
	require.NoError(t, err)
	m, err := New[string, int](ka, va, Config[string]{
		Hash:   StringHash,
		Equals: EqualComparable[string],
		IsNull: ZeroIsNull[string],
	})
	require.NoError(t, err)

	for i, k := range []string{"alpha", "beta", "gamma"} {
		require.NoError(t, m.Set(k, i))
	}
	var v int
	require.NoError(t, m.Get("gamma", &v))
	assert.Equal(t, 2, v)
	assert.False(t, m.Contains("delta"))
}

func TestMap_New(t *testing.T) {
	ka, err := array.NewFixed(intOps, make([]int, 4), array.Config{})
	require.NoError(t, err)
	va, err := array.NewFixed(stringOps, make([]string, 3), array.Config{})
	require.NoError(t, err)

	cfg := Config[int]{Hash: IntHash[int], Equals: EqualComparable[int], IsNull: ZeroIsNull[int]}
	_, err = New[int, string](ka, va, cfg)
	assert.Equal(t, errors.StatusInvalidSize, errors.StatusOf(err))

	_, err = New[int, string](ka, nil, cfg)
	assert.Equal(t, errors.StatusNullPtr, errors.StatusOf(err))

	_, err = New[int, string](ka, va, Config[int]{})
	assert.Equal(t, errors.StatusNullPtr, errors.StatusOf(err))
}

func TestMap_CountsPrepopulatedKeys(t *testing.T) {
	keys := []int{0, 3, 0, 0}
	ka, err := array.NewFixed(intOps, keys, array.Config{})
	require.NoError(t, err)
	va, err := array.NewFixed(stringOps, []string{"", "three", "", ""}, array.Config{})
	require.NoError(t, err)
	m, err := New[int, string](ka, va, Config[int]{
		Hash: IntHash[int], Equals: EqualComparable[int], IsNull: ZeroIsNull[int],
	})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
	var v string
	require.NoError(t, m.Get(3, &v))
	assert.Equal(t, "three", v)
}

type id [16]byte

func TestBytesHash_Distinguishes(t *testing.T) {
	a, b := id{1}, id{2}
	assert.NotEqual(t, BytesHash(&a), BytesHash(&b))
	assert.Equal(t, BytesHash(&a), BytesHash(&id{1}))
}
