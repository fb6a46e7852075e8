package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/fixedkit/alloc"
	"github.com/wippyai/fixedkit/errors"
	"github.com/wippyai/fixedkit/hook"
	"github.com/wippyai/fixedkit/layout"
	"github.com/wippyai/fixedkit/wasmmem"
)

// session drives one pool from script commands or key presses.
type session struct {
	pool   *alloc.Pool
	region *wasmmem.Region
	mem    *wasmmem.Standalone

	// failures counts hook invocations per status.
	failures map[errors.Status]int
}

type sessionConfig struct {
	slots      int
	size       int
	align      int
	layoutFile string
	poolName   string
	guest      bool
	hook       hook.Func
}

func newSession(ctx context.Context, cfg sessionConfig) (*session, error) {
	s := &session{failures: map[errors.Status]int{}}
	desc := layout.Pool{Name: "pool", SlotSize: cfg.size, Capacity: cfg.slots, Align: cfg.align}

	if cfg.layoutFile != "" {
		l, err := layout.Load(cfg.layoutFile)
		if err != nil {
			return nil, err
		}
		if len(l.Pools) == 0 {
			return nil, fmt.Errorf("%s describes no pools", cfg.layoutFile)
		}
		desc = l.Pools[0]
		if cfg.poolName != "" {
			if desc, err = l.Pool(cfg.poolName); err != nil {
				return nil, err
			}
		}
	}

	l := &layout.Layout{Pools: []layout.Pool{desc}}
	if err := l.Validate(); err != nil {
		return nil, err
	}

	opts := layout.Options{
		Hook: func(status errors.Status, msg string, userCtx any) {
			s.failures[status]++
			if cfg.hook != nil {
				cfg.hook(status, msg, userCtx)
			}
		},
		HookContext: desc.Name,
	}
	if cfg.guest {
		pages := (l.GuestBytes() + wasmmem.PageSize - 1) / wasmmem.PageSize
		mem, err := wasmmem.NewStandalone(ctx, pages)
		if err != nil {
			return nil, err
		}
		s.mem = mem
		opts.Memory = mem.Memory()
	}

	set, err := l.Build(opts)
	if err != nil {
		s.close(ctx)
		return nil, err
	}
	s.pool = set.Pools[desc.Name]
	s.region = set.Regions[desc.Name]
	return s, nil
}

func (s *session) failureCount() int {
	n := 0
	for _, c := range s.failures {
		n += c
	}
	return n
}

func (s *session) close(ctx context.Context) {
	if s.mem != nil {
		_ = s.mem.Close(ctx)
	}
}

// exec runs one command:
//
//	g      get a slot
//	pN     put slot N
//	rN     add a reference to slot N
//	uN     drop a reference from slot N
//	wN:txt write txt into slot N
//	s      print stats
func (s *session) exec(cmd string) (string, error) {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return "", nil
	}
	op, arg := cmd[0], cmd[1:]

	switch op {
	case 'g':
		h, err := s.pool.Get(s.pool.SlotSize())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("get -> slot %d %s", s.slotOf(h), s.where(h)), nil
	case 's':
		st := s.pool.Stats()
		return fmt.Sprintf("cap=%d live=%d used=%d free=%d slot=%d stride=%d failures=%d",
			st.Capacity, st.Live, st.Used, st.Free, st.SlotSize, st.Stride, s.failureCount()), nil
	}

	var text string
	if op == 'w' {
		arg, text, _ = strings.Cut(arg, ":")
	}
	idx, err := strconv.Atoi(arg)
	if err != nil {
		return "", fmt.Errorf("command %q: want a slot number", cmd)
	}
	h, ok := s.handle(idx)

	switch op {
	case 'p':
		if err := s.pool.Put(h); err != nil {
			return "", err
		}
		return fmt.Sprintf("put slot %d", idx), nil
	case 'r':
		if err := s.pool.GetRef(h); err != nil {
			return "", err
		}
		n, _ := s.pool.RefCount(h)
		return fmt.Sprintf("ref slot %d -> %d", idx, n), nil
	case 'u':
		if err := s.pool.PutRef(h); err != nil {
			return "", err
		}
		n, _ := s.pool.RefCount(h)
		return fmt.Sprintf("unref slot %d -> %d", idx, n), nil
	case 'w':
		if !ok {
			return "", errors.New(errors.PhaseAlloc, errors.KindInvalidRef).
				Value(idx).
				Detail("slot %d is not live", idx).
				Build()
		}
		b, err := s.pool.Bytes(h)
		if err != nil {
			return "", err
		}
		n := copy(b, text)
		return fmt.Sprintf("wrote %d bytes to slot %d", n, idx), nil
	}
	return "", fmt.Errorf("unknown command %q", cmd)
}

// run executes a comma-separated script, stopping at the first error.
func (s *session) run(script string, out func(string)) error {
	for _, cmd := range strings.Split(script, ",") {
		line, err := s.exec(cmd)
		if err != nil {
			out(fmt.Sprintf("%s: %s (%s)", strings.TrimSpace(cmd), err, errors.StatusOf(err)))
			return err
		}
		if line != "" {
			out(line)
		}
	}
	return nil
}

// handle returns the live handle for idx, or a handle pointing at the slot
// start so the pool itself reports the failure.
func (s *session) handle(idx int) (alloc.Handle, bool) {
	if h, ok := s.pool.HandleAt(idx); ok {
		return h, true
	}
	stride := s.pool.Stats().Stride
	if idx < 0 {
		idx = s.pool.Cap()
	}
	return alloc.Handle{Offset: uint32(idx * stride), Size: uint32(s.pool.SlotSize())}, false
}

func (s *session) slotOf(h alloc.Handle) int {
	for i := range s.pool.Cap() {
		if got, ok := s.pool.HandleAt(i); ok && got.Offset == h.Offset {
			return i
		}
	}
	return -1
}

func (s *session) where(h alloc.Handle) string {
	if s.region != nil {
		return fmt.Sprintf("@guest 0x%x", s.region.GuestAddr(h))
	}
	return fmt.Sprintf("@+%d", h.Offset)
}

// slots renders one line per slot.
func (s *session) slots() []string {
	lines := make([]string, s.pool.Cap())
	for i := range lines {
		live, refs := s.pool.SlotState(i)
		state := "free"
		if live {
			state = fmt.Sprintf("live refs=%d", refs)
			if h, ok := s.pool.HandleAt(i); ok {
				if b, err := s.pool.Bytes(h); err == nil {
					if txt := printable(b); txt != "" {
						state += " " + strconv.Quote(txt)
					}
				}
			}
		}
		lines[i] = fmt.Sprintf("%3d  %s", i, state)
	}
	return lines
}

func printable(b []byte) string {
	end := 0
	for end < len(b) && b[end] >= 0x20 && b[end] < 0x7f {
		end++
	}
	return string(b[:end])
}
