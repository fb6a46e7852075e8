// Package hashmap implements a fixed-capacity open-addressing map over two
// parallel array.Arrays, one for keys and one for values.
//
// Slot i of the key array pairs with slot i of the value array. A slot is
// empty when IsNull reports true for its key. Collisions are resolved by
// linear probing from Hash(k) mod capacity. Removal resets the slot without a
// tombstone; lookups therefore probe past empty slots.
package hashmap

import (
	"hash/fnv"

	"github.com/wippyai/fixedkit/array"
	"github.com/wippyai/fixedkit/errors"
	"github.com/wippyai/fixedkit/hook"
)

var (
	ErrTableFull = errors.Sentinel(errors.PhaseMap, errors.KindTableFull)
	ErrNotFound  = errors.Sentinel(errors.PhaseMap, errors.KindNotFound)
)

type (
	HashFunc[K any]   func(key *K) uint64
	EqualsFunc[K any] func(a, b *K) bool
	NullFunc[K any]   func(key *K) bool
)

// Integer is the set of key types IntHash accepts.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// IntHash hashes an integer key to itself.
func IntHash[K Integer](key *K) uint64 { return uint64(*key) }

// StringHash is FNV-1a over the string bytes.
func StringHash(key *string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(*key))
	return h.Sum64()
}

// BytesHash is FNV-1a over a 16-byte key such as a UUID.
func BytesHash[K ~[16]byte](key *K) uint64 {
	h := fnv.New64a()
	b := [16]byte(*key)
	_, _ = h.Write(b[:])
	return h.Sum64()
}

// ZeroIsNull treats the zero value of K as the empty-slot marker.
func ZeroIsNull[K comparable](key *K) bool {
	var zero K
	return *key == zero
}

// EqualComparable compares keys with ==.
func EqualComparable[K comparable](a, b *K) bool { return *a == *b }

// Config holds the key operations. Hash, Equals and IsNull are required.
type Config[K any] struct {
	Hash        HashFunc[K]
	Equals      EqualsFunc[K]
	IsNull      NullFunc[K]
	Hook        hook.Func
	HookContext any
	Name        string
}

// Map is a linear-probing hash map. Not safe for concurrent use.
type Map[K, V any] struct {
	keys   array.Array[K]
	values array.Array[V]
	hash   HashFunc[K]
	equals EqualsFunc[K]
	isNull NullFunc[K]
	rep    hook.Reporter
	count  int
}

// New creates a map over keys and values, which must have equal capacity and
// start out with every key slot null.
func New[K, V any](keys array.Array[K], values array.Array[V], cfg Config[K]) (*Map[K, V], error) {
	rep := hook.NewReporter(cfg.Hook, cfg.HookContext, cfg.Name)
	switch {
	case keys == nil:
		return nil, rep.Fail(errors.NilPointer(errors.PhaseMap, "key array"))
	case values == nil:
		return nil, rep.Fail(errors.NilPointer(errors.PhaseMap, "value array"))
	case cfg.Hash == nil:
		return nil, rep.Fail(errors.NilPointer(errors.PhaseMap, "hash function"))
	case cfg.Equals == nil:
		return nil, rep.Fail(errors.NilPointer(errors.PhaseMap, "equals function"))
	case cfg.IsNull == nil:
		return nil, rep.Fail(errors.NilPointer(errors.PhaseMap, "null predicate"))
	}
	if keys.Cap() != values.Cap() {
		return nil, rep.Fail(errors.InvalidSize(errors.PhaseMap,
			"key capacity %d != value capacity %d", keys.Cap(), values.Cap()))
	}

	m := &Map[K, V]{
		keys:   keys,
		values: values,
		hash:   cfg.Hash,
		equals: cfg.Equals,
		isNull: cfg.IsNull,
		rep:    rep,
	}
	for i := range keys.Cap() {
		k, err := keys.Ref(i)
		if err != nil {
			return nil, rep.Report(err)
		}
		if !m.isNull(k) {
			m.count++
		}
	}
	return m, nil
}

// Set inserts or overwrites k.
func (m *Map[K, V]) Set(k K, v V) error {
	if m.isNull(&k) {
		return m.rep.Fail(errors.InvalidData(errors.PhaseMap, "key is the null marker"))
	}
	idx, empty, err := m.probe(&k)
	if err != nil {
		return m.rep.Report(err)
	}
	if idx < 0 {
		if empty < 0 {
			return m.rep.Fail(errors.New(errors.PhaseMap, errors.KindTableFull).
				Value(m.keys.Cap()).
				Detail("no free slot in %d", m.keys.Cap()).
				Build())
		}
		if err := array.Store(m.keys, empty, &k); err != nil {
			return m.rep.Report(err)
		}
		idx = empty
		m.count++
	}
	return m.rep.Report(array.Store(m.values, idx, &v))
}

// Get copies the value stored under k into *out.
func (m *Map[K, V]) Get(k K, out *V) error {
	idx, _, err := m.probe(&k)
	if err != nil {
		return m.rep.Report(err)
	}
	if idx < 0 {
		return m.rep.Fail(errors.NotFound(errors.PhaseMap, "key", k))
	}
	return m.rep.Report(array.Load(m.values, idx, out))
}

// Contains reports whether k is stored.
func (m *Map[K, V]) Contains(k K) bool {
	idx, _, err := m.probe(&k)
	return err == nil && idx >= 0
}

// Remove resets k's slots. Removing an absent key is not an error.
func (m *Map[K, V]) Remove(k K) error {
	idx, _, err := m.probe(&k)
	if err != nil {
		return m.rep.Report(err)
	}
	if idx < 0 {
		return nil
	}
	if err := m.keys.RemoveAt(idx); err != nil {
		return m.rep.Report(err)
	}
	if err := m.values.RemoveAt(idx); err != nil {
		return m.rep.Report(err)
	}
	m.count--
	return nil
}

// IndexOf returns the slot holding k, or -1.
func (m *Map[K, V]) IndexOf(k K) int {
	idx, _, err := m.probe(&k)
	if err != nil {
		return -1
	}
	return idx
}

// Each calls fn for every live entry in slot order until fn returns false.
func (m *Map[K, V]) Each(fn func(k *K, v *V) bool) {
	for i := range m.keys.Cap() {
		k, err := m.keys.Ref(i)
		if err != nil || m.isNull(k) {
			continue
		}
		v, err := m.values.Ref(i)
		if err != nil {
			continue
		}
		if !fn(k, v) {
			return
		}
	}
}

// Len returns the number of live entries.
func (m *Map[K, V]) Len() int { return m.count }

// Cap returns the number of slots.
func (m *Map[K, V]) Cap() int { return m.keys.Cap() }

// probe walks the sequence from k's home slot. It returns the index of a live
// slot whose key equals k (or -1) and the first empty slot seen (or -1).
// The walk stops once every live entry has been visited and an empty slot is
// known, since no later slot can hold k.
func (m *Map[K, V]) probe(k *K) (found, empty int, err error) {
	capacity := m.keys.Cap()
	base := int(m.hash(k) % uint64(capacity))
	found, empty = -1, -1
	seen := 0
	for i := range capacity {
		idx := (base + i) % capacity
		slot, err := m.keys.Ref(idx)
		if err != nil {
			return -1, -1, err
		}
		if m.isNull(slot) {
			if empty < 0 {
				empty = idx
			}
			if seen == m.count {
				break
			}
			continue
		}
		if m.equals(slot, k) {
			return idx, empty, nil
		}
		seen++
		if seen == m.count && empty >= 0 {
			break
		}
	}
	return found, empty, nil
}
