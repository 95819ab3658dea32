package broadcast

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the per-subscriber queue length used when no WithBuffer
// option is given.
const DefaultBuffer = 16

// Option configures a Channel.
type Option func(*options)

type options struct {
	buffer int
	clone  any // func(T) T
}

// WithBuffer sets the per-subscriber queue length. Values below one are
// raised to one, since the replayed value must always fit.
func WithBuffer(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.buffer = n
	}
}

// WithClone makes every subscriber receive its own copy of each value, made
// with clone, so one subscriber cannot alter what another observes.
// It only applies to a Channel of the same T.
func WithClone[T any](clone func(T) T) Option {
	return func(o *options) { o.clone = clone }
}

// Channel is a replay-one broadcast of values of type T.
type Channel[T any] struct {
	mu       sync.Mutex
	last     T
	subs     map[*Subscription[T]]struct{}
	buffer   int
	clone    func(T) T
	detached bool
}

// New returns a Channel whose replay slot starts at initial.
func New[T any](initial T, opts ...Option) *Channel[T] {
	o := options{buffer: DefaultBuffer}
	for _, opt := range opts {
		opt(&o)
	}
	clone, _ := o.clone.(func(T) T)
	return &Channel[T]{
		last:   initial,
		subs:   make(map[*Subscription[T]]struct{}),
		buffer: o.buffer,
		clone:  clone,
	}
}

// copyOf returns the value handed to one subscriber. Caller holds c.mu.
func (c *Channel[T]) copyOf(v T) T {
	if c.clone == nil {
		return v
	}
	return c.clone(v)
}

// Publish records v as the current value and offers it to every subscriber.
// It is a no-op once the channel has been detached.
func (c *Channel[T]) Publish(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.detached {
		return
	}
	c.last = v
	for s := range c.subs {
		s.offer(c.copyOf(v))
	}
}

// Subscribe attaches a new subscriber. The current value is queued as its
// first element before any later publish can be observed. The subscription
// is cancelled when ctx is done.
func (c *Channel[T]) Subscribe(ctx context.Context) *Subscription[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &Subscription[T]{
		ch:    make(chan T, c.buffer),
		owner: c,
	}
	s.ch <- c.copyOf(c.last)
	c.subs[s] = struct{}{}
	s.stop = context.AfterFunc(ctx, s.Cancel)
	return s
}

// Last returns the current value.
func (c *Channel[T]) Last() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyOf(c.last)
}

// Len reports the number of live subscriptions.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Detach stops all future emissions. Existing subscriptions stay open and
// receive nothing further until they are cancelled.
func (c *Channel[T]) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
}

// Subscription is one subscriber's view of a Channel.
type Subscription[T any] struct {
	ch      chan T
	owner   *Channel[T]
	stop    func() bool
	once    sync.Once
	dropped atomic.Uint64
}

// C returns the delivery channel. It is closed by Cancel.
func (s *Subscription[T]) C() <-chan T { return s.ch }

// Dropped reports how many values were discarded because this subscriber
// fell behind.
func (s *Subscription[T]) Dropped() uint64 { return s.dropped.Load() }

// Cancel detaches the subscription and closes C. It is safe to call more
// than once and from any goroutine.
func (s *Subscription[T]) Cancel() {
	s.once.Do(func() {
		c := s.owner
		c.mu.Lock()
		defer c.mu.Unlock()

		if s.stop != nil {
			s.stop()
		}
		delete(c.subs, s)
		close(s.ch)
	})
}

// offer queues v without blocking. Called with owner.mu held, so this is the
// only sender on s.ch.
func (s *Subscription[T]) offer(v T) {
	select {
	case s.ch <- v:
		return
	default:
	}
	select {
	case <-s.ch:
		s.dropped.Add(1)
	default:
	}
	select {
	case s.ch <- v:
	default:
		s.dropped.Add(1)
	}
}
