package agent

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hupe1980/agentchat/config"
	"github.com/hupe1980/agentchat/logging"
	"github.com/hupe1980/agentchat/mailbox"
)

// Role selects the default behavior of an actor.
type Role uint8

const (
	// RoleUserProxy stands in for a human and answers with DefaultReply.
	RoleUserProxy Role = iota
	// RoleAssistant answers through a model when one is attached.
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleUserProxy:
		return "user_proxy"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// TerminationSuffix marks a message that ends a conversation.
const TerminationSuffix = "TERMINATE"

// IsTermination reports whether msg ends with TerminationSuffix once
// surrounding whitespace is trimmed.
func IsTermination(msg string) bool {
	return strings.HasSuffix(strings.TrimSpace(msg), TerminationSuffix)
}

// Actor is an independently scheduled agent: it owns one mailbox receiver, a
// ConversationLog and a TriggerRegistry, and processes its envelopes strictly
// one at a time inside Run.
type Actor struct {
	self     Identity
	rx       *mailbox.Receiver[Envelope]
	role     Role
	opts     Options
	logger   logging.Logger
	log      *ConversationLog
	triggers *TriggerRegistry

	// consecutive auto-replies per counterpart
	autoReplies map[string]int
	running     atomic.Bool
}

// Identity returns the actor's address.
func (a *Actor) Identity() Identity { return a.self }

// Name returns the actor's name.
func (a *Actor) Name() string { return a.self.Name() }

// Role returns the actor variant.
func (a *Actor) Role() Role { return a.role }

// SystemMessage returns the rendered system message.
func (a *Actor) SystemMessage() string { return a.opts.SystemMessage }

// Description returns the actor description.
func (a *Actor) Description() string { return a.opts.Description }

// ConfigList returns the LLM configurations the actor was built with.
func (a *Actor) ConfigList() []config.Config {
	return append([]config.Config(nil), a.opts.ConfigList...)
}

// MaxConsecutiveAutoReply returns the per-counterpart auto-reply ceiling.
func (a *Actor) MaxConsecutiveAutoReply() int { return a.opts.MaxConsecutiveAutoReply }

// Triggers exposes the actor's trigger registry.
func (a *Actor) Triggers() *TriggerRegistry { return a.triggers }

// RegisterReply binds fn to the agent named trigger. Messages from that agent
// that ask for a reply are answered by fn instead of the default source.
func (a *Actor) RegisterReply(trigger string, fn ReplyFunc) error {
	return a.triggers.Register(trigger, fn)
}

// RegisterReplySource is RegisterReply for a ReplySource. Its errors are
// wrapped in a ReplyError and reported to the ErrorHandler.
func (a *Actor) RegisterReplySource(trigger string, src ReplySource) error {
	return a.triggers.Register(trigger, src)
}

// Log returns the actor's conversation log. It is owned by the run loop and
// must only be read while the loop is idle or stopped.
func (a *Actor) Log() *ConversationLog { return a.log }

// Messages returns the payloads exchanged with counterpart. Same caveat as Log.
func (a *Actor) Messages(counterpart string) []string { return a.log.Messages(counterpart) }

// InitiateChat posts an InitiateChat envelope into the actor's own mailbox.
func (a *Actor) InitiateChat(ctx context.Context, recipient Identity, msg string, requestReply bool) error {
	return a.self.Post(ctx, InitiateChat{Recipient: recipient, Message: msg, RequestReply: requestReply})
}

// Run consumes the mailbox until every handle to it has been released
// (returns nil) or ctx is done (returns ctx.Err()). The mailbox is closed on
// return so later deliveries fail with ErrMailboxClosed.
func (a *Actor) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.rx.Close()

	a.logger.Info("Agent started", "role", a.role.String(), "id", a.self.ID())

	for {
		env, err := a.rx.Recv(ctx)
		if err != nil {
			if errors.Is(err, mailbox.ErrEndOfStream) {
				a.logger.Info("Agent stopped", "reason", "all handles released")
				return nil
			}
			a.logger.Info("Agent stopped", "reason", err.Error())
			return err
		}

		a.handle(ctx, env)
		a.rx.Ack()
	}
}

func (a *Actor) handle(ctx context.Context, env Envelope) {
	switch e := env.(type) {
	case InitiateChat:
		a.autoReplies[e.Recipient.Name()] = 0
		a.send(ctx, KindInitiateChat, e.Recipient, e.Message, e.RequestReply)
	case Send:
		a.send(ctx, KindSend, e.Recipient, e.Message, e.RequestReply)
	case Receive:
		a.receive(ctx, e)
	case Reset:
		a.log.Clear()
		clear(a.autoReplies)
		a.logger.Info("Conversation state reset")
	default:
		a.logger.Warn("Unknown envelope dropped", "type", env)
	}
}

// send records msg as outbound and delivers it to the recipient's mailbox,
// naming this actor as the counterpart. Delivery failures drop the envelope.
func (a *Actor) send(ctx context.Context, kind Kind, to Identity, msg string, requestReply bool) {
	if to.IsZero() {
		a.logger.Warn("Envelope without recipient dropped", "kind", kind.String())
		return
	}

	a.log.Append(to.Name(), msg, Outbound)
	logging.Envelope(a.logger, kind.String(), to.Name(), requestReply, msg)

	if err := to.Post(ctx, Receive{Recipient: a.self, Message: msg, RequestReply: requestReply}); err != nil {
		a.logger.Warn("Delivery failed, envelope dropped", "counterpart", to.Name(), "error", err)
	}
}

func (a *Actor) receive(ctx context.Context, e Receive) {
	from := e.Recipient.Name()
	a.log.Append(from, e.Message, Inbound)
	logging.Envelope(a.logger, KindReceive.String(), from, e.RequestReply, e.Message)

	if !e.RequestReply {
		return
	}
	if a.opts.TerminationFunc(e.Message) {
		a.logger.Debug("Termination message received", "counterpart", from)
		return
	}
	if n := a.autoReplies[from]; n >= a.opts.MaxConsecutiveAutoReply {
		a.report(&ReplyCeilingError{Agent: a.Name(), Counterpart: from, Limit: a.opts.MaxConsecutiveAutoReply})
		return
	}

	source, label := a.replySource(from)
	st := &State{
		Self:          a.self,
		Sender:        e.Recipient,
		Message:       e.Message,
		Log:           a.log,
		SystemMessage: a.opts.SystemMessage,
		ConfigList:    a.opts.ConfigList,
	}

	start := time.Now()
	reply, ok, err := source.GenerateReply(ctx, st)
	if err != nil {
		err = &ReplyError{Agent: a.Name(), Counterpart: from, Source: label, Err: err}
		logging.Reply(a.logger, label, from, time.Since(start), false, err)
		a.report(err)
		return
	}
	logging.Reply(a.logger, label, from, time.Since(start), ok, nil)
	if !ok {
		return
	}

	a.autoReplies[from]++
	a.send(ctx, KindSend, e.Recipient, reply, e.RequestReply)
}

// replySource picks the callback registered for the sender, falling back to
// the actor's default source.
func (a *Actor) replySource(sender string) (ReplySource, string) {
	if src, ok := a.triggers.Lookup(sender); ok {
		return src, "trigger"
	}
	return a.opts.ReplySource, sourceName(a.opts.ReplySource)
}

func sourceName(src ReplySource) string {
	switch s := src.(type) {
	case DefaultReply, *DefaultReply:
		return "default"
	case StaticReply:
		return "static"
	case *ModelReply:
		return "model"
	case *OnceReply:
		return "once"
	case TerminatingReply:
		return sourceName(s.Next)
	default:
		return "custom"
	}
}

func (a *Actor) report(err error) {
	if errors.Is(err, ErrReplyCeilingExceeded) {
		a.logger.Warn("Auto-reply ceiling reached", "error", err)
	}
	if a.opts.ErrorHandler != nil {
		a.opts.ErrorHandler(err)
	}
}
