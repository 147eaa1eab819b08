// Package agentchat provides a high-level façade over the agent actors and
// their Group. Most applications interact with this package by:
//  1. Creating an AgentChat via New()
//  2. Spawning a user proxy and an assistant from agent builders
//  3. Running conversations synchronously with Chat and reading the transcript
//
// The façade delegates routing to agent.Group and keeps setup concise. Close
// releases every agent and reports the protocol errors collected on the way.
package agentchat

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentchat/agent"
	"github.com/hupe1980/agentchat/logging"
)

// Options configures the AgentChat instance.
type Options struct {
	// RequestReply is set on the seed envelope of every Chat. Defaults to true.
	RequestReply bool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentChat owns a group of running agents. Spawn and Chat must not be
// called concurrently.
type AgentChat struct {
	opts  Options
	ctx   context.Context
	group *agent.Group
	ids   map[string]agent.Identity
}

// New creates an AgentChat whose agents run until Close or until ctx is done.
func New(ctx context.Context, optFns ...func(o *Options)) *AgentChat {
	opts := Options{
		RequestReply: true,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	g := agent.NewGroup(func(o *agent.GroupOptions) {
		o.Logger = opts.Logger
	})

	return &AgentChat{opts: opts, ctx: ctx, group: g, ids: make(map[string]agent.Identity)}
}

// Spawn builds and starts an agent.
func (c *AgentChat) Spawn(b agent.Builder) (*agent.Actor, error) {
	a, id, err := c.group.Spawn(c.ctx, b)
	if err != nil {
		return nil, err
	}
	c.ids[a.Name()] = id
	return a, nil
}

// Transcript is the initiator's view of one conversation.
type Transcript struct {
	Initiator string
	Recipient string
	Entries   []agent.Entry
}

// Messages returns the payloads of the transcript in order.
func (t Transcript) Messages() []string {
	out := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		out = append(out, e.Content)
	}
	return out
}

// Chat makes initiator open a conversation with recipient and blocks until
// no envelope is in flight anymore. The transcript holds the entries added to
// the initiator's log for the recipient during this call.
func (c *AgentChat) Chat(ctx context.Context, initiator, recipient, message string) (Transcript, error) {
	from, ok := c.ids[initiator]
	if !ok {
		return Transcript{}, fmt.Errorf("chat: unknown agent %q", initiator)
	}
	to, ok := c.ids[recipient]
	if !ok {
		return Transcript{}, fmt.Errorf("chat: unknown agent %q", recipient)
	}
	a, _ := c.group.Actor(initiator)

	// Wait for earlier conversations so the log offset is stable.
	if err := c.group.WaitIdle(ctx); err != nil {
		return Transcript{}, err
	}
	offset := len(a.Log().Entries(recipient))

	if err := c.group.InitiateChat(ctx, from, to, message, c.opts.RequestReply); err != nil {
		return Transcript{}, err
	}
	if err := c.group.WaitIdle(ctx); err != nil {
		return Transcript{}, err
	}

	entries := a.Log().Entries(recipient)
	if offset > len(entries) {
		offset = 0 // the log was reset in between
	}

	return Transcript{Initiator: initiator, Recipient: recipient, Entries: entries[offset:]}, nil
}

// Errors returns the protocol errors reported so far.
func (c *AgentChat) Errors() []error { return c.group.Errors() }

// Close stops every agent and waits for their loops. The result joins loop
// failures and reported protocol errors such as agent.ErrReplyCeilingExceeded.
func (c *AgentChat) Close() error {
	c.group.Close()
	return c.group.Wait()
}
