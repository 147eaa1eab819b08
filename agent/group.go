package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/agentchat/logging"
)

// GroupOptions configures a Group.
type GroupOptions struct {
	// Logger is handed to spawned actors that were built without one.
	Logger logging.Logger
}

// Group runs a set of actors, tracks every envelope routed between them and
// collects the protocol errors they report.
type Group struct {
	logger  logging.Logger
	tracker *idleTracker
	eg      errgroup.Group

	mu       sync.Mutex
	actors   map[string]*Actor
	handles  []Identity
	loopErrs []error
	errs     []error
	closed   bool
}

// NewGroup creates an empty group.
func NewGroup(optFns ...func(o *GroupOptions)) *Group {
	opts := GroupOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Group{
		logger:  logging.With(opts.Logger, "component", "group"),
		tracker: newIdleTracker(),
		actors:  make(map[string]*Actor),
	}
}

// Spawn builds an actor from b and starts its run loop under ctx. The group
// keeps the returned identity's handle and releases it on Close.
func (g *Group) Spawn(ctx context.Context, b Builder) (*Actor, Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil, Identity{}, fmt.Errorf("spawn %s: group closed", b.name)
	}
	if _, exists := g.actors[b.name]; exists {
		return nil, Identity{}, fmt.Errorf("spawn %s: %w", b.name, ErrDuplicateName)
	}

	if b.opts.Logger == nil {
		b.opts.Logger = g.logger
	}
	b.opts.Tracker = g.tracker
	next := b.opts.ErrorHandler
	b.opts.ErrorHandler = func(err error) {
		g.record(err)
		if next != nil {
			next(err)
		}
	}

	a, id, err := b.Build()
	if err != nil {
		return nil, Identity{}, err
	}

	g.actors[a.Name()] = a
	g.handles = append(g.handles, id)

	g.eg.Go(func() error {
		if err := a.Run(ctx); err != nil {
			err = fmt.Errorf("agent %s: %w", a.Name(), err)
			g.mu.Lock()
			g.loopErrs = append(g.loopErrs, err)
			g.mu.Unlock()
			return err
		}
		return nil
	})

	g.logger.Debug("Agent spawned", "agent", a.Name(), "role", a.Role().String())

	return a, id, nil
}

// Actor returns the spawned actor with the given name.
func (g *Group) Actor(name string) (*Actor, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.actors[name]
	return a, ok
}

// InitiateChat injects the envelope that makes initiator open a conversation
// with recipient.
func (g *Group) InitiateChat(ctx context.Context, initiator, recipient Identity, msg string, requestReply bool) error {
	if recipient.IsZero() {
		return ErrInvalidIdentity
	}
	g.logger.Info("Conversation initiated", "initiator", initiator.Name(), "recipient", recipient.Name())
	return initiator.Post(ctx, InitiateChat{Recipient: recipient, Message: msg, RequestReply: requestReply})
}

// WaitIdle blocks until no envelope is queued or being processed in any
// mailbox of the group, or ctx is done.
func (g *Group) WaitIdle(ctx context.Context) error {
	return g.tracker.wait(ctx)
}

// Pending returns the number of envelopes queued or being processed.
func (g *Group) Pending() int { return g.tracker.pending() }

// Close releases the identity handles held by the group. Actors drain their
// mailboxes and stop once no other handle to them remains.
func (g *Group) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	for _, id := range g.handles {
		id.Close()
	}
}

// Wait blocks until every run loop has returned. The result joins loop
// failures and the protocol errors reported by the actors.
func (g *Group) Wait() error {
	_ = g.eg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	all := make([]error, 0, len(g.loopErrs)+len(g.errs))
	all = append(all, g.loopErrs...)
	all = append(all, g.errs...)
	return errors.Join(all...)
}

// Errors returns the protocol errors reported so far.
func (g *Group) Errors() []error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]error(nil), g.errs...)
}

func (g *Group) record(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

// idleTracker counts envelopes in flight across the group's mailboxes. Unlike
// sync.WaitGroup it tolerates Add from zero while a waiter is blocked.
type idleTracker struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func newIdleTracker() *idleTracker {
	idle := make(chan struct{})
	close(idle)
	return &idleTracker{idle: idle}
}

func (t *idleTracker) Add(delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.n
	t.n += delta
	if t.n < 0 {
		t.n = 0
	}
	switch {
	case prev == 0 && t.n > 0:
		t.idle = make(chan struct{})
	case prev > 0 && t.n == 0:
		close(t.idle)
	}
}

func (t *idleTracker) Done() { t.Add(-1) }

func (t *idleTracker) pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}

func (t *idleTracker) wait(ctx context.Context) error {
	t.mu.Lock()
	idle := t.idle
	t.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
