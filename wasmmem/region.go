package wasmmem

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/fixedkit/alloc"
	"github.com/wippyai/fixedkit/errors"
)

// PageSize is the WebAssembly page size in bytes.
const PageSize = 65536

// Region is a fixed window of guest linear memory.
type Region struct {
	mem    api.Memory
	view   []byte
	offset uint32
	length uint32
}

// NewRegion validates that [offset, offset+length) lies inside mem.
func NewRegion(mem api.Memory, offset, length uint32) (*Region, error) {
	if mem == nil {
		return nil, errors.NilPointer(errors.PhaseMemory, "memory")
	}
	if length == 0 {
		return nil, errors.InvalidSize(errors.PhaseMemory, "empty region")
	}
	view, ok := mem.Read(offset, length)
	if !ok {
		return nil, errors.New(errors.PhaseMemory, errors.KindOutOfBounds).
			Value(offset).
			Detail("region offset=%d length=%d exceeds memory of %d bytes", offset, length, mem.Size()).
			Build()
	}
	return &Region{mem: mem, view: view, offset: offset, length: length}, nil
}

// Bytes returns the region's view. Writes through it are visible to the guest.
func (r *Region) Bytes() []byte {
	return r.view
}

// Offset returns the region start in guest address space.
func (r *Region) Offset() uint32 { return r.offset }

// Len returns the region length in bytes.
func (r *Region) Len() uint32 { return r.length }

// Pool builds a block allocator whose slots live in this region.
func (r *Region) Pool(cfg alloc.Config) (*alloc.Pool, error) {
	return alloc.New(r.view, cfg)
}

// GuestAddr converts a pool handle from a pool built on this region into a
// guest pointer.
func (r *Region) GuestAddr(h alloc.Handle) uint32 {
	return r.offset + h.Offset
}

// Standalone owns a runtime with a single memory-only module. It gives hosts
// a guest-shaped fixed region without a real guest.
type Standalone struct {
	rt  wazero.Runtime
	mod api.Module
}

// NewStandalone instantiates a module exporting "memory" with the given
// number of pages, capped at the same number (the memory cannot grow).
func NewStandalone(ctx context.Context, pages uint32) (*Standalone, error) {
	if pages == 0 {
		return nil, errors.InvalidSize(errors.PhaseMemory, "zero pages")
	}
	rt := wazero.NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, memoryModule(pages))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseMemory, errors.KindInvalidData, err, "compile memory module")
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseMemory, errors.KindInvalidData, err, "instantiate memory module")
	}
	return &Standalone{rt: rt, mod: mod}, nil
}

// Memory returns the exported memory.
func (s *Standalone) Memory() api.Memory {
	return s.mod.ExportedMemory("memory")
}

// Close releases the runtime and every view derived from it.
func (s *Standalone) Close(ctx context.Context) error {
	return s.rt.Close(ctx)
}

// memoryModule encodes a module with one exported memory of min=max=pages.
func memoryModule(pages uint32) []byte {
	limits := append([]byte{0x01}, uleb(pages)...) // flags: has max
	limits = append(limits, uleb(pages)...)
	memSection := append([]byte{0x01}, limits...) // one memory

	out := []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
	}
	out = append(out, 0x05)
	out = append(out, uleb(uint32(len(memSection)))...)
	out = append(out, memSection...)
	out = append(out,
		0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
		0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // "memory"
		0x02, 0x00, // kind: memory, index 0
	)
	return out
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}
