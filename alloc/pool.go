package alloc

import (
	"unsafe"

	"github.com/wippyai/fixedkit/errors"
	"github.com/wippyai/fixedkit/hook"
)

// DefaultAlign is the slot alignment used when Config.Align is zero.
const DefaultAlign = 8

var (
	ErrExhausted = errors.Sentinel(errors.PhaseAlloc, errors.KindAllocation)
	ErrBadFree   = errors.Sentinel(errors.PhaseAlloc, errors.KindInvalidFree)
	ErrInUse     = errors.Sentinel(errors.PhaseAlloc, errors.KindRefInUse)
	ErrBadRef    = errors.Sentinel(errors.PhaseAlloc, errors.KindInvalidRef)
	ErrBadSize   = errors.Sentinel(errors.PhaseAlloc, errors.KindInvalidSize)
)

// Config holds pool configuration.
type Config struct {
	Hook        hook.Func
	HookContext any
	Name        string

	// SlotSize is the fixed allocation size. Get must request exactly this.
	SlotSize int

	// Align rounds each slot's stride and the first slot's address.
	// 0 means DefaultAlign. Must be a power of two.
	Align int
}

// Handle identifies one allocated slot.
type Handle struct {
	// Offset is the slot's byte offset into the pool buffer.
	Offset uint32
	// Size is the number of bytes the holder currently uses.
	Size uint32
}

type slot struct {
	refs uint32
	live bool
}

// Stats is a point-in-time view of pool accounting.
type Stats struct {
	Capacity int
	Used     int
	Free     int
	Live     int
	SlotSize int
	Stride   int
}

// Pool is a fixed-capacity slot allocator.
type Pool struct {
	rep      hook.Reporter
	buf      []byte
	meta     []slot
	free     []uint32
	base     int
	slotSize int
	stride   int
	capacity int
	used     int
}

// New creates a pool over buf. buf stays owned by the caller; the pool never
// resizes it.
func New(buf []byte, cfg Config) (*Pool, error) {
	rep := hook.NewReporter(cfg.Hook, cfg.HookContext, cfg.Name)

	align := cfg.Align
	if align == 0 {
		align = DefaultAlign
	}
	if align < 0 || align&(align-1) != 0 {
		return nil, rep.Fail(errors.InvalidSize(errors.PhaseAlloc, "alignment %d is not a power of two", align))
	}
	if cfg.SlotSize <= 0 {
		return nil, rep.Fail(errors.InvalidSize(errors.PhaseAlloc, "slot size %d", cfg.SlotSize))
	}

	stride := (cfg.SlotSize + align - 1) &^ (align - 1)
	base := 0
	if len(buf) > 0 {
		if rem := int(uintptr(unsafe.Pointer(unsafe.SliceData(buf))) % uintptr(align)); rem != 0 {
			base = align - rem
		}
	}
	capacity := 0
	if len(buf) > base {
		capacity = (len(buf) - base) / stride
	}
	if capacity == 0 {
		return nil, rep.Fail(errors.InvalidSize(errors.PhaseAlloc,
			"buffer of %d bytes holds no %d-byte slot", len(buf), stride))
	}

	return &Pool{
		rep:      rep,
		buf:      buf,
		meta:     make([]slot, capacity),
		free:     make([]uint32, 0, capacity),
		base:     base,
		slotSize: cfg.SlotSize,
		stride:   stride,
		capacity: capacity,
	}, nil
}

// Get allocates one slot. size must equal the pool's slot size.
func (p *Pool) Get(size int) (Handle, error) {
	if size != p.slotSize {
		return Handle{}, p.rep.Fail(errors.New(errors.PhaseAlloc, errors.KindInvalidSize).
			Value(size).
			Detail("requested %d bytes, slot size is %d", size, p.slotSize).
			Build())
	}

	var idx int
	switch {
	case len(p.free) > 0:
		last := len(p.free) - 1
		idx = int(p.free[last])
		p.free = p.free[:last]
	case p.used < p.capacity:
		idx = p.used
		p.used++
	default:
		return Handle{}, p.rep.Fail(errors.New(errors.PhaseAlloc, errors.KindAllocation).
			Detail("pool exhausted (%d slots)", p.capacity).
			Build())
	}

	p.meta[idx] = slot{refs: 1, live: true}
	return Handle{Offset: uint32(p.offset(idx)), Size: uint32(size)}, nil
}

// Update changes the size recorded in h. Slots never grow past the slot size.
func (p *Pool) Update(h *Handle, newSize int) error {
	if h == nil {
		return p.rep.Fail(errors.NilPointer(errors.PhaseAlloc, "handle"))
	}
	if _, err := p.live(*h); err != nil {
		return err
	}
	if newSize <= 0 || newSize > p.slotSize {
		return p.rep.Fail(errors.New(errors.PhaseAlloc, errors.KindInvalidSize).
			Value(newSize).
			Detail("size %d does not fit a %d-byte slot", newSize, p.slotSize).
			Build())
	}
	h.Size = uint32(newSize)
	return nil
}

// Put frees the slot behind h and zero-fills it.
func (p *Pool) Put(h Handle) error {
	idx, ok := p.index(h.Offset)
	if !ok {
		return p.rep.Fail(errors.New(errors.PhaseAlloc, errors.KindInvalidFree).
			Value(h.Offset).
			Detail("offset %d is not a slot of this pool", h.Offset).
			Build())
	}
	s := &p.meta[idx]
	if !s.live {
		return p.rep.Fail(errors.New(errors.PhaseAlloc, errors.KindInvalidFree).
			Value(h.Offset).
			Detail("slot %d is already free", idx).
			Build())
	}
	if s.refs != 1 {
		return p.rep.Fail(errors.New(errors.PhaseAlloc, errors.KindRefInUse).
			Value(s.refs).
			Detail("slot %d still has %d holders", idx, s.refs).
			Build())
	}

	clear(p.slotBytes(idx))
	*s = slot{}
	if idx == p.used-1 {
		p.used--
	} else {
		p.free = append(p.free, uint32(idx))
	}
	return nil
}

// GetRef registers an additional holder of h.
func (p *Pool) GetRef(h Handle) error {
	idx, err := p.live(h)
	if err != nil {
		return err
	}
	p.meta[idx].refs++
	return nil
}

// PutRef drops one holder of h. The count saturates at zero.
func (p *Pool) PutRef(h Handle) error {
	idx, err := p.live(h)
	if err != nil {
		return err
	}
	if p.meta[idx].refs > 0 {
		p.meta[idx].refs--
	}
	return nil
}

// RefCount returns the number of holders of h.
func (p *Pool) RefCount(h Handle) (int, error) {
	idx, err := p.live(h)
	if err != nil {
		return 0, err
	}
	return int(p.meta[idx].refs), nil
}

// Bytes returns the first h.Size bytes of the slot. The slice aliases the
// pool buffer and is only meaningful while h is live.
func (p *Pool) Bytes(h Handle) ([]byte, error) {
	idx, err := p.live(h)
	if err != nil {
		return nil, err
	}
	n := min(int(h.Size), p.slotSize)
	return p.slotBytes(idx)[:n:n], nil
}

// Each calls fn for every live slot in address order until fn returns false.
func (p *Pool) Each(fn func(h Handle, refs int) bool) {
	for idx := 0; idx < p.used; idx++ {
		s := p.meta[idx]
		if !s.live {
			continue
		}
		if !fn(Handle{Offset: uint32(p.offset(idx)), Size: uint32(p.slotSize)}, int(s.refs)) {
			return
		}
	}
}

// Cap returns the number of slots.
func (p *Pool) Cap() int { return p.capacity }

// Len returns the number of live slots.
func (p *Pool) Len() int { return p.used - len(p.free) }

// Used returns the size of the carved region in slots, live or freed.
func (p *Pool) Used() int { return p.used }

// Free returns the number of slots on the free list.
func (p *Pool) Free() int { return len(p.free) }

// SlotSize returns the fixed allocation size.
func (p *Pool) SlotSize() int { return p.slotSize }

// Name returns the configured pool name.
func (p *Pool) Name() string { return p.rep.Name() }

// Stats returns the current accounting.
func (p *Pool) Stats() Stats {
	return Stats{
		Capacity: p.capacity,
		Used:     p.used,
		Free:     len(p.free),
		Live:     p.Len(),
		SlotSize: p.slotSize,
		Stride:   p.stride,
	}
}

// SlotState reports whether slot idx is live and its holder count. It is
// meant for inspection tools; idx ranges over [0, Cap()).
func (p *Pool) SlotState(idx int) (live bool, refs int) {
	if idx < 0 || idx >= p.capacity {
		return false, 0
	}
	s := p.meta[idx]
	return s.live, int(s.refs)
}

// HandleAt returns the handle for slot idx if it is live.
func (p *Pool) HandleAt(idx int) (Handle, bool) {
	if idx < 0 || idx >= p.capacity || !p.meta[idx].live {
		return Handle{}, false
	}
	return Handle{Offset: uint32(p.offset(idx)), Size: uint32(p.slotSize)}, true
}

func (p *Pool) offset(idx int) int {
	return p.base + idx*p.stride
}

func (p *Pool) slotBytes(idx int) []byte {
	off := p.offset(idx)
	return p.buf[off : off+p.slotSize : off+p.slotSize]
}

// index maps a byte offset to a slot index if it names a slot start.
func (p *Pool) index(off uint32) (int, bool) {
	rel := int(off) - p.base
	if rel < 0 || rel%p.stride != 0 {
		return 0, false
	}
	idx := rel / p.stride
	if idx >= p.capacity {
		return 0, false
	}
	return idx, true
}

func (p *Pool) live(h Handle) (int, error) {
	idx, ok := p.index(h.Offset)
	if !ok || !p.meta[idx].live {
		return 0, p.rep.Fail(errors.New(errors.PhaseAlloc, errors.KindInvalidRef).
			Value(h.Offset).
			Detail("offset %d is not a live slot", h.Offset).
			Build())
	}
	return idx, nil
}
