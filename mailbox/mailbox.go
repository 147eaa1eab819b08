package mailbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the number of outstanding items a mailbox buffers before
// senders block.
const DefaultCapacity = 100

var (
	// ErrClosed is returned by Send once the receiving side has been closed.
	ErrClosed = errors.New("mailbox closed")
	// ErrSenderClosed is returned when a released sender handle is used.
	ErrSenderClosed = errors.New("mailbox sender handle released")
	// ErrEndOfStream is returned by Recv after every sender handle has been
	// released and all queued items have been delivered.
	ErrEndOfStream = errors.New("mailbox end of stream")
	// ErrFull is returned by TrySend when the queue is at capacity.
	ErrFull = errors.New("mailbox full")
)

// Tracker observes items entering and leaving a mailbox. Add(1) is called for
// every accepted item and Done once the item is acknowledged or discarded.
// *sync.WaitGroup satisfies Tracker.
type Tracker interface {
	Add(delta int)
	Done()
}

// Options configures a mailbox.
type Options struct {
	// Capacity bounds the number of queued items. Values <= 0 fall back to
	// DefaultCapacity.
	Capacity int
	// Tracker is optional. It lets an owner detect when every item routed
	// through a set of mailboxes has been processed.
	Tracker Tracker
}

type mailbox[T any] struct {
	queue   chan T
	done    chan struct{} // closed when the receiver is closed
	gone    chan struct{} // closed when the last sender handle is released
	tracker Tracker

	mu        sync.Mutex
	refs      int
	closeOnce sync.Once
}

// New allocates a mailbox and returns its first sender handle and the receiver.
func New[T any](optFns ...func(o *Options)) (*Sender[T], *Receiver[T]) {
	opts := Options{Capacity: DefaultCapacity}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}

	m := &mailbox[T]{
		queue:   make(chan T, opts.Capacity),
		done:    make(chan struct{}),
		gone:    make(chan struct{}),
		tracker: opts.Tracker,
		refs:    1,
	}

	return &Sender[T]{mb: m}, &Receiver[T]{mb: m}
}

// acquire takes a reference unless every handle has already been released.
func (m *mailbox[T]) acquire() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.refs == 0 {
		return false
	}

	m.refs++

	return true
}

func (m *mailbox[T]) release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refs--
	if m.refs == 0 {
		close(m.gone)
	}
}

func (m *mailbox[T]) closed() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

func (m *mailbox[T]) add() {
	if m.tracker != nil {
		m.tracker.Add(1)
	}
}

func (m *mailbox[T]) settle() {
	if m.tracker != nil {
		m.tracker.Done()
	}
}

// reclaim removes one queued item after a send raced with Receiver.Close so
// the tracker stays balanced.
func (m *mailbox[T]) reclaim() {
	select {
	case <-m.queue:
		m.settle()
	default:
	}
}

// Sender is a cloneable handle to the sending side of a mailbox. A Sender is
// safe for concurrent use.
type Sender[T any] struct {
	mb       *mailbox[T]
	released atomic.Bool
	once     sync.Once
}

// Send enqueues v, blocking while the mailbox is full.
func (s *Sender[T]) Send(ctx context.Context, v T) error {
	if s.released.Load() || !s.mb.acquire() {
		return ErrSenderClosed
	}
	defer s.mb.release()

	m := s.mb
	if m.closed() {
		return ErrClosed
	}

	m.add()

	select {
	case m.queue <- v:
		if m.closed() {
			m.reclaim()
		}
		return nil
	case <-m.done:
		m.settle()
		return ErrClosed
	case <-ctx.Done():
		m.settle()
		return ctx.Err()
	}
}

// TrySend enqueues v without blocking. It returns ErrFull when the mailbox is
// at capacity.
func (s *Sender[T]) TrySend(v T) error {
	if s.released.Load() || !s.mb.acquire() {
		return ErrSenderClosed
	}
	defer s.mb.release()

	m := s.mb
	if m.closed() {
		return ErrClosed
	}

	m.add()

	select {
	case m.queue <- v:
		if m.closed() {
			m.reclaim()
		}
		return nil
	default:
		m.settle()
		return ErrFull
	}
}

// Clone returns an independent handle to the same mailbox. The clone must be
// closed separately. Cloning a released handle yields a released handle.
func (s *Sender[T]) Clone() *Sender[T] {
	c := &Sender[T]{mb: s.mb}
	if s.released.Load() || !s.mb.acquire() {
		c.released.Store(true)
		c.once.Do(func() {})
	}

	return c
}

// Close releases this handle. It is idempotent. Once every handle has been
// released the receiver drains the queue and then reports ErrEndOfStream.
func (s *Sender[T]) Close() {
	s.once.Do(func() {
		s.released.Store(true)
		s.mb.release()
	})
}

// Released reports whether this handle has been closed.
func (s *Sender[T]) Released() bool { return s.released.Load() }

// ReceiverClosed reports whether the receiving side is gone.
func (s *Sender[T]) ReceiverClosed() bool { return s.mb.closed() }

// Len returns a snapshot of the number of queued items.
func (s *Sender[T]) Len() int { return len(s.mb.queue) }

// Cap returns the mailbox capacity.
func (s *Sender[T]) Cap() int { return cap(s.mb.queue) }

// Receiver is the exclusively owned receiving side of a mailbox. Recv, Ack and
// Close must be called from a single goroutine.
type Receiver[T any] struct {
	mb *mailbox[T]
}

// Recv returns the next item, blocking until one is available. It returns
// ErrEndOfStream once all senders are released and the queue is empty,
// ErrClosed after Close, or ctx.Err() when ctx is cancelled.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	var zero T

	m := r.mb
	if m.closed() {
		return zero, ErrClosed
	}

	select {
	case v := <-m.queue:
		return v, nil
	default:
	}

	select {
	case v := <-m.queue:
		return v, nil
	case <-m.gone:
		// Every handle is released and in-flight sends hold a reference, so
		// the queue contents are final here.
		select {
		case v := <-m.queue:
			return v, nil
		default:
			return zero, ErrEndOfStream
		}
	case <-m.done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Ack marks one received item as processed.
func (r *Receiver[T]) Ack() { r.mb.settle() }

// Close shuts the receiving side. Pending and future sends fail with
// ErrClosed; queued items are discarded.
func (r *Receiver[T]) Close() {
	m := r.mb
	m.closeOnce.Do(func() {
		close(m.done)
		for {
			select {
			case <-m.queue:
				m.settle()
			default:
				return
			}
		}
	})
}

// Len returns a snapshot of the number of queued items.
func (r *Receiver[T]) Len() int { return len(r.mb.queue) }
