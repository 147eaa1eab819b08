package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentchat/internal/util"
	"github.com/hupe1980/agentchat/mailbox"
)

// Identity is the addressable handle of an agent: an immutable name plus a
// sender handle to its mailbox. Copies share the handle; Clone takes an
// independent one. Identity is safe for concurrent use.
//
// The owning actor's loop ends once every handle to its mailbox is closed,
// so whoever built the agent is responsible for calling Close (agent.Group
// does this on shutdown).
type Identity struct {
	name     string
	id       string
	outbound *mailbox.Sender[Envelope]
}

func newIdentity(name string, tx *mailbox.Sender[Envelope]) Identity {
	return Identity{name: name, id: util.NewID(), outbound: tx}
}

// Name returns the agent name. Names are unique within a process run.
func (i Identity) Name() string { return i.name }

// ID returns the identifier minted when the agent was built.
func (i Identity) ID() string { return i.id }

// IsZero reports whether i was never bound to a mailbox.
func (i Identity) IsZero() bool { return i.outbound == nil }

// Clone returns an identity with its own mailbox handle. The clone keeps the
// agent reachable until it is closed itself.
func (i Identity) Clone() Identity {
	if i.outbound == nil {
		return i
	}
	c := i
	c.outbound = i.outbound.Clone()
	return c
}

// Close releases the mailbox handle shared by this identity and its copies.
func (i Identity) Close() {
	if i.outbound != nil {
		i.outbound.Close()
	}
}

// Reachable reports whether envelopes can still be delivered through i.
func (i Identity) Reachable() bool {
	return i.outbound != nil && !i.outbound.Released() && !i.outbound.ReceiverClosed()
}

// Post enqueues env into the agent's mailbox, blocking while it is full.
// This is how external code injects the InitiateChat that starts a conversation.
func (i Identity) Post(ctx context.Context, env Envelope) error {
	if i.outbound == nil {
		return ErrInvalidIdentity
	}
	if env == nil {
		return ErrInvalidEnvelope
	}
	if err := i.outbound.Send(ctx, env); err != nil {
		return fmt.Errorf("deliver %s to %s: %w", env.Kind(), i.name, err)
	}
	return nil
}

// Equal reports whether both identities address the same agent.
func (i Identity) Equal(o Identity) bool { return i.id == o.id && i.name == o.name }

func (i Identity) String() string {
	if i.outbound == nil {
		return "<none>"
	}
	return i.name
}
