// Package broker is a small topic-based publish/subscribe hub built from the
// fixed-capacity containers.
//
// Every subscription owns a bounded queue. Publish never blocks: when a
// subscriber's queue is full the message is dropped for that subscriber and
// the drop is reported. Subscriptions are kept in a hashmap keyed by their
// UUID, so both the number of subscribers and the per-subscriber backlog are
// fixed at construction.
//
// Topics are slash-separated names. A subscription pattern matches a topic
// exactly, or, when it ends in "/*", matches every topic under that prefix.
// The pattern "*" matches every topic.
package broker

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/fixedkit/array"
	"github.com/wippyai/fixedkit/capability"
	"github.com/wippyai/fixedkit/errors"
	"github.com/wippyai/fixedkit/hashmap"
	"github.com/wippyai/fixedkit/hook"
	"github.com/wippyai/fixedkit/queue"
)

const (
	DefaultQueueDepth     = 16
	DefaultMaxSubscribers = 32
)

var (
	ErrDropped    = errors.Sentinel(errors.PhaseBroker, errors.KindInvalidSize)
	ErrClosed     = errors.Sentinel(errors.PhaseBroker, errors.KindInvalidRef)
	ErrTooMany    = errors.Sentinel(errors.PhaseBroker, errors.KindTableFull)
	ErrBadPattern = errors.Sentinel(errors.PhaseBroker, errors.KindInvalidData)
)

// Message is one published item. Payload is shared, not copied, between
// subscribers; treat it as read-only after Publish.
type Message struct {
	Topic   string
	Payload []byte
	Seq     uint64
	Time    time.Time
}

var (
	messageOps = capability.NewTable[Message]("broker.Message")
	idOps      = capability.NewTable[uuid.UUID]("uuid.UUID")
	subOps     = capability.NewTable[*Subscription]("*broker.Subscription")
)

// Config sizes a broker. Zero values select the defaults.
type Config struct {
	QueueDepth     int
	MaxSubscribers int
	Hook           hook.Func
	HookContext    any
	Name           string
}

// Broker fans published messages out to matching subscriptions.
// It is safe for concurrent use.
type Broker struct {
	mu    sync.Mutex
	subs  *hashmap.Map[uuid.UUID, *Subscription]
	depth int
	seq   uint64
	rep   hook.Reporter
}

// Subscription receives the messages published to topics matching its
// pattern.
type Subscription struct {
	b       *Broker
	id      uuid.UUID
	pattern string
	q       *queue.Queue[Message]
	dropped uint64
	closed  bool
}

// New creates a broker.
func New(cfg Config) (*Broker, error) {
	rep := hook.NewReporter(cfg.Hook, cfg.HookContext, cfg.Name)
	depth := cfg.QueueDepth
	if depth == 0 {
		depth = DefaultQueueDepth
	}
	maxSubs := cfg.MaxSubscribers
	if maxSubs == 0 {
		maxSubs = DefaultMaxSubscribers
	}
	if depth < 0 || maxSubs < 0 {
		return nil, rep.Fail(errors.InvalidSize(errors.PhaseBroker,
			"queue depth %d, max subscribers %d", depth, maxSubs))
	}

	keys, err := array.NewFixed(idOps, make([]uuid.UUID, maxSubs), array.Config{})
	if err != nil {
		return nil, rep.Report(err)
	}
	values, err := array.NewFixed(subOps, make([]*Subscription, maxSubs), array.Config{})
	if err != nil {
		return nil, rep.Report(err)
	}
	subs, err := hashmap.New[uuid.UUID, *Subscription](keys, values, hashmap.Config[uuid.UUID]{
		Hash:   hashmap.BytesHash[uuid.UUID],
		Equals: hashmap.EqualComparable[uuid.UUID],
		IsNull: hashmap.ZeroIsNull[uuid.UUID],
		Name:   cfg.Name,
	})
	if err != nil {
		return nil, rep.Report(err)
	}
	return &Broker{subs: subs, depth: depth, rep: rep}, nil
}

// Subscribe registers pattern and returns the new subscription.
func (b *Broker) Subscribe(pattern string) (*Subscription, error) {
	if !validPattern(pattern) {
		return nil, b.rep.Fail(errors.New(errors.PhaseBroker, errors.KindInvalidData).
			Value(pattern).
			Detail("invalid topic pattern %q", pattern).
			Build())
	}
	arr, err := array.NewFixed(messageOps, make([]Message, b.depth), array.Config{})
	if err != nil {
		return nil, b.rep.Report(err)
	}
	q, err := queue.New[Message](arr, queue.Config{Name: pattern})
	if err != nil {
		return nil, b.rep.Report(err)
	}
	s := &Subscription{b: b, id: uuid.New(), pattern: pattern, q: q}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs.Len() == b.subs.Cap() {
		return nil, b.rep.Fail(errors.New(errors.PhaseBroker, errors.KindTableFull).
			Value(b.subs.Cap()).
			Detail("subscriber limit %d reached", b.subs.Cap()).
			Build())
	}
	if err := b.subs.Set(s.id, s); err != nil {
		return nil, b.rep.Fail(errors.Wrap(errors.PhaseBroker, errors.KindTableFull, err, "register subscription"))
	}
	Logger().Debug("subscribed", zap.Stringer("id", s.id), zap.String("pattern", pattern))
	return s, nil
}

// Unsubscribe removes s. Pending messages are discarded and further Receive
// calls fail with ErrClosed. Unsubscribing twice is a no-op.
func (b *Broker) Unsubscribe(s *Subscription) error {
	if s == nil {
		return b.rep.Fail(errors.NilPointer(errors.PhaseBroker, "subscription"))
	}
	if s.b != b {
		return b.rep.Fail(errors.New(errors.PhaseBroker, errors.KindInvalidRef).
			Value(s.id).
			Detail("subscription belongs to another broker").
			Build())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.q.Clear(); err != nil {
		return b.rep.Report(err)
	}
	Logger().Debug("unsubscribed", zap.Stringer("id", s.id), zap.String("pattern", s.pattern))
	return b.rep.Report(b.subs.Remove(s.id))
}

// Publish delivers a message to every matching subscription and returns how
// many received it. Drops on full queues are combined into the returned
// error; each wraps ErrDropped.
func (b *Broker) Publish(topic string, payload []byte) (int, error) {
	if topic == "" || strings.Contains(topic, "*") {
		return 0, b.rep.Fail(errors.New(errors.PhaseBroker, errors.KindInvalidData).
			Value(topic).
			Detail("invalid topic %q", topic).
			Build())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	msg := Message{Topic: topic, Payload: payload, Seq: b.seq, Time: time.Now()}

	var (
		delivered int
		errs      error
	)
	b.subs.Each(func(_ *uuid.UUID, s **Subscription) bool {
		sub := *s
		if !Match(sub.pattern, topic) {
			return true
		}
		if sub.q.IsFull() {
			sub.dropped++
			Logger().Warn("message dropped",
				zap.Stringer("subscription", sub.id),
				zap.String("topic", topic),
				zap.Uint64("seq", msg.Seq))
			errs = multierr.Append(errs, b.rep.Fail(errors.New(errors.PhaseBroker, errors.KindInvalidSize).
				Value(sub.id).
				Detail("subscriber %s queue full (%d)", sub.id, sub.q.Cap()).
				Build()))
			return true
		}
		if err := sub.q.Enqueue(msg); err != nil {
			errs = multierr.Append(errs, b.rep.Report(err))
			return true
		}
		delivered++
		return true
	})
	return delivered, errs
}

// Len returns the number of active subscriptions.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subs.Len()
}

// ID returns the subscription's identifier.
func (s *Subscription) ID() uuid.UUID { return s.id }

// Pattern returns the topic pattern given to Subscribe.
func (s *Subscription) Pattern() string { return s.pattern }

// Receive moves the oldest pending message into *out. It reports false with
// a nil error when nothing is pending.
func (s *Subscription) Receive(out *Message) (bool, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if s.closed {
		return false, s.b.rep.Fail(errors.New(errors.PhaseBroker, errors.KindInvalidRef).
			Value(s.id).
			Detail("subscription %s closed", s.id).
			Build())
	}
	if s.q.IsEmpty() {
		return false, nil
	}
	if err := s.q.Dequeue(out); err != nil {
		return false, s.b.rep.Report(err)
	}
	return true, nil
}

// Pending returns the number of queued messages.
func (s *Subscription) Pending() int {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return s.q.Len()
}

// Dropped returns how many messages were dropped because the queue was full.
func (s *Subscription) Dropped() uint64 {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return s.dropped
}

// Match reports whether topic is selected by pattern.
func Match(pattern, topic string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasSuffix(pattern, "/*"):
		return strings.HasPrefix(topic, pattern[:len(pattern)-1])
	default:
		return pattern == topic
	}
}

func validPattern(p string) bool {
	if p == "" {
		return false
	}
	if p == "*" {
		return true
	}
	body := strings.TrimSuffix(p, "/*")
	return body != "" && !strings.Contains(body, "*")
}
