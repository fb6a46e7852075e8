// Package layout describes a set of fixed-capacity containers in YAML and
// builds the ones that do not need an element type: block pools and the
// broker. Typed containers (queues, stacks, heaps, maps) are looked up by
// name for their capacity.
//
//	pools:
//	  - name: frames
//	    slot_size: 256
//	    capacity: 32
//	    align: 16
//	queues:
//	  - name: commands
//	    capacity: 64
//	broker:
//	  queue_depth: 8
//	  max_subscribers: 4
package layout

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/fixedkit/alloc"
	"github.com/wippyai/fixedkit/errors"
)

// Kind names a section of the layout.
type Kind string

const (
	KindPool  Kind = "pools"
	KindQueue Kind = "queues"
	KindStack Kind = "stacks"
	KindHeap  Kind = "heaps"
	KindMap   Kind = "maps"
)

// Pool describes one block pool.
type Pool struct {
	Name     string `yaml:"name"`
	SlotSize int    `yaml:"slot_size"`
	Capacity int    `yaml:"capacity"`
	Align    int    `yaml:"align,omitempty"`
}

// Stride returns the per-slot footprint after alignment.
func (p Pool) Stride() int {
	align := p.align()
	return (p.SlotSize + align - 1) &^ (align - 1)
}

// BufferSize returns a buffer length that holds exactly Capacity slots
// whatever the buffer's starting address.
func (p Pool) BufferSize() int {
	return p.Stride()*p.Capacity + p.align() - 1
}

func (p Pool) align() int {
	if p.Align == 0 {
		return alloc.DefaultAlign
	}
	return p.Align
}

// Container describes a typed container by capacity only.
type Container struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
}

// Broker sizes the pub/sub broker.
type Broker struct {
	QueueDepth     int `yaml:"queue_depth"`
	MaxSubscribers int `yaml:"max_subscribers,omitempty"`
}

// Layout is the parsed document.
type Layout struct {
	Pools  []Pool      `yaml:"pools,omitempty"`
	Queues []Container `yaml:"queues,omitempty"`
	Stacks []Container `yaml:"stacks,omitempty"`
	Heaps  []Container `yaml:"heaps,omitempty"`
	Maps   []Container `yaml:"maps,omitempty"`
	Broker *Broker     `yaml:"broker,omitempty"`
}

// Parse decodes and validates a YAML layout. Unknown fields are rejected.
func Parse(data []byte) (*Layout, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var l Layout
	if err := dec.Decode(&l); err != nil {
		return nil, errors.Wrap(errors.PhaseLayout, errors.KindInvalidData, err, "decode layout")
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Load reads and parses a layout file.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLayout, errors.KindFile, err, "read "+path)
	}
	return Parse(data)
}

// Marshal encodes the layout back to YAML.
func (l *Layout) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(l)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLayout, errors.KindWrite, err, "encode layout")
	}
	return data, nil
}

// Validate checks sizes, alignment and name uniqueness within each section.
func (l *Layout) Validate() error {
	seen := map[string]bool{}
	for i, p := range l.Pools {
		path := []string{string(KindPool), p.Name}
		if err := checkName(seen, KindPool, p.Name, i); err != nil {
			return err
		}
		if p.SlotSize <= 0 {
			return invalid(path, "slot_size must be positive, got %d", p.SlotSize)
		}
		if p.Capacity <= 0 {
			return invalid(path, "capacity must be positive, got %d", p.Capacity)
		}
		if a := p.Align; a < 0 || a&(a-1) != 0 {
			return invalid(path, "align %d is not a power of two", a)
		}
	}
	for _, section := range []struct {
		kind  Kind
		items []Container
	}{
		{KindQueue, l.Queues},
		{KindStack, l.Stacks},
		{KindHeap, l.Heaps},
		{KindMap, l.Maps},
	} {
		seen := map[string]bool{}
		for i, c := range section.items {
			if err := checkName(seen, section.kind, c.Name, i); err != nil {
				return err
			}
			if c.Capacity <= 0 {
				return invalid([]string{string(section.kind), c.Name}, "capacity must be positive, got %d", c.Capacity)
			}
		}
	}
	if b := l.Broker; b != nil {
		if b.QueueDepth < 0 || b.MaxSubscribers < 0 {
			return invalid([]string{"broker"}, "queue_depth %d, max_subscribers %d", b.QueueDepth, b.MaxSubscribers)
		}
	}
	return nil
}

// Pool returns the named pool description.
func (l *Layout) Pool(name string) (Pool, error) {
	for _, p := range l.Pools {
		if p.Name == name {
			return p, nil
		}
	}
	return Pool{}, errors.NotFound(errors.PhaseLayout, string(KindPool), name)
}

// Capacity returns the capacity of the named typed container.
func (l *Layout) Capacity(kind Kind, name string) (int, error) {
	var items []Container
	switch kind {
	case KindQueue:
		items = l.Queues
	case KindStack:
		items = l.Stacks
	case KindHeap:
		items = l.Heaps
	case KindMap:
		items = l.Maps
	default:
		return 0, errors.New(errors.PhaseLayout, errors.KindInvalidData).
			Value(kind).
			Detail("no capacity section %q", kind).
			Build()
	}
	for _, c := range items {
		if c.Name == name {
			return c.Capacity, nil
		}
	}
	return 0, errors.NotFound(errors.PhaseLayout, string(kind), name)
}

func checkName(seen map[string]bool, kind Kind, name string, index int) error {
	if name == "" {
		return errors.New(errors.PhaseLayout, errors.KindInvalidData).
			Path(string(kind)).
			Value(index).
			Detail("entry %d has no name", index).
			Build()
	}
	if seen[name] {
		return invalid([]string{string(kind), name}, "duplicate name")
	}
	seen[name] = true
	return nil
}

func invalid(path []string, format string, args ...any) error {
	return errors.New(errors.PhaseLayout, errors.KindInvalidSize).
		Path(path...).
		Detail(format, args...).
		Build()
}
