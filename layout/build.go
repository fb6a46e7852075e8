package layout

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/fixedkit/alloc"
	"github.com/wippyai/fixedkit/broker"
	"github.com/wippyai/fixedkit/errors"
	"github.com/wippyai/fixedkit/hook"
	"github.com/wippyai/fixedkit/wasmmem"
)

// Options controls where pools are placed.
type Options struct {
	Hook        hook.Func
	HookContext any

	// Memory, when set, places every pool in consecutive regions of guest
	// linear memory starting at Offset instead of fresh host buffers.
	Memory api.Memory
	Offset uint32
}

// Set holds what Build created.
type Set struct {
	Pools   map[string]*alloc.Pool
	Regions map[string]*wasmmem.Region
	Broker  *broker.Broker
}

// GuestBytes returns how much guest memory Build needs when Options.Memory
// is set.
func (l *Layout) GuestBytes() uint32 {
	var n uint32
	for _, p := range l.Pools {
		n = alignUp(n, uint32(p.align()))
		n += uint32(p.Stride() * p.Capacity)
	}
	return n
}

// Build creates every pool, and the broker when one is described.
func (l *Layout) Build(opts Options) (*Set, error) {
	set := &Set{
		Pools:   make(map[string]*alloc.Pool, len(l.Pools)),
		Regions: make(map[string]*wasmmem.Region),
	}
	offset := opts.Offset
	for _, p := range l.Pools {
		cfg := alloc.Config{
			Hook:        opts.Hook,
			HookContext: opts.HookContext,
			Name:        p.Name,
			SlotSize:    p.SlotSize,
			Align:       p.Align,
		}
		if opts.Memory == nil {
			pool, err := alloc.New(make([]byte, p.BufferSize()), cfg)
			if err != nil {
				return nil, err
			}
			set.Pools[p.Name] = pool
			continue
		}

		offset = alignUp(offset, uint32(p.align()))
		length := uint32(p.Stride() * p.Capacity)
		region, err := wasmmem.NewRegion(opts.Memory, offset, length)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseLayout, errors.KindOutOfBounds, err, "place pool "+p.Name)
		}
		pool, err := region.Pool(cfg)
		if err != nil {
			return nil, err
		}
		set.Pools[p.Name] = pool
		set.Regions[p.Name] = region
		offset += length
	}

	if l.Broker != nil {
		b, err := broker.New(broker.Config{
			QueueDepth:     l.Broker.QueueDepth,
			MaxSubscribers: l.Broker.MaxSubscribers,
			Hook:           opts.Hook,
			HookContext:    opts.HookContext,
			Name:           "broker",
		})
		if err != nil {
			return nil, err
		}
		set.Broker = b
	}
	return set, nil
}

func alignUp(n, align uint32) uint32 {
	return (n + align - 1) &^ (align - 1)
}
