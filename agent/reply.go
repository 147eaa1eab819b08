package agent

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/agentchat/config"
	"github.com/hupe1980/agentchat/logging"
	"github.com/hupe1980/agentchat/model"
)

// DefaultReplyMessage is the payload DefaultReply answers with.
const DefaultReplyMessage = "fake message"

// State is the view of an actor handed to reply sources and trigger
// callbacks while a reply is being decided. Log is the actor's own
// ConversationLog and may be mutated.
type State struct {
	// Self is the replying actor.
	Self Identity
	// Sender is the counterpart whose message asked for a reply.
	Sender Identity
	// Message is the payload that asked for a reply.
	Message       string
	Log           *ConversationLog
	SystemMessage string
	ConfigList    []config.Config
}

// History returns the entries exchanged with the sender.
func (s *State) History() []Entry { return s.Log.Entries(s.Sender.Name()) }

// ReplySource decides the reply to a message. ok=false means no reply.
type ReplySource interface {
	GenerateReply(ctx context.Context, st *State) (reply string, ok bool, err error)
}

// ReplySourceFunc adapts a function to ReplySource.
type ReplySourceFunc func(ctx context.Context, st *State) (string, bool, error)

// GenerateReply implements ReplySource.
func (f ReplySourceFunc) GenerateReply(ctx context.Context, st *State) (string, bool, error) {
	return f(ctx, st)
}

// DefaultReply answers every request with DefaultReplyMessage.
type DefaultReply struct{}

// GenerateReply implements ReplySource.
func (DefaultReply) GenerateReply(context.Context, *State) (string, bool, error) {
	return DefaultReplyMessage, true, nil
}

// StaticReply answers every request with the same text.
type StaticReply string

// GenerateReply implements ReplySource.
func (s StaticReply) GenerateReply(context.Context, *State) (string, bool, error) {
	return string(s), true, nil
}

// OnceReply yields Next for the first request it sees and no reply afterwards.
// A single OnceReply may be shared by several actors.
type OnceReply struct {
	Next ReplySource
	used atomic.Bool
}

// GenerateReply implements ReplySource.
func (o *OnceReply) GenerateReply(ctx context.Context, st *State) (string, bool, error) {
	if o.used.Swap(true) {
		return "", false, nil
	}
	next := o.Next
	if next == nil {
		next = DefaultReply{}
	}
	return next.GenerateReply(ctx, st)
}

// TerminatingReply wraps Next and appends TerminationSuffix to every reply
// that does not already end the conversation. Errors from Next pass through.
type TerminatingReply struct {
	Next ReplySource
}

// GenerateReply implements ReplySource.
func (t TerminatingReply) GenerateReply(ctx context.Context, st *State) (string, bool, error) {
	next := t.Next
	if next == nil {
		next = DefaultReply{}
	}
	reply, ok, err := next.GenerateReply(ctx, st)
	if err != nil || !ok {
		return "", false, err
	}
	if !IsTermination(reply) {
		reply += "\n" + TerminationSuffix
	}
	return reply, true, nil
}

// ModelReply asks a language model for the reply. The system message becomes
// the request instructions and the history with the sender is mapped to
// user (inbound) and assistant (outbound) turns.
type ModelReply struct {
	Model model.Model
	// MaxHistoryMessages bounds the number of turns sent to the model; zero
	// sends the whole history.
	MaxHistoryMessages int
	// Limiter throttles model calls when set.
	Limiter *rate.Limiter
	Logger  logging.Logger
}

// NewModelReply returns a ModelReply for m.
func NewModelReply(m model.Model, logger logging.Logger) *ModelReply {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ModelReply{Model: m, Logger: logger}
}

// GenerateReply implements ReplySource. An empty completion means no reply.
func (r *ModelReply) GenerateReply(ctx context.Context, st *State) (string, bool, error) {
	if r.Model == nil {
		return "", false, errors.New("model reply: no model configured")
	}

	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx); err != nil {
			return "", false, err
		}
	}

	req := model.Request{Instructions: st.SystemMessage, Messages: r.messages(st)}

	logger := r.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	start := time.Now()
	resp, err := model.Collect(ctx, r.Model, req)
	tokens := 0
	if resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	logging.ModelCall(logger, r.Model.Info().Name, tokens, time.Since(start), err)
	if err != nil {
		return "", false, err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", false, nil
	}
	return text, true, nil
}

func (r *ModelReply) messages(st *State) []model.Message {
	history := st.History()
	if r.MaxHistoryMessages > 0 && len(history) > r.MaxHistoryMessages {
		history = history[len(history)-r.MaxHistoryMessages:]
	}

	msgs := make([]model.Message, 0, len(history)+1)
	for _, e := range history {
		role := model.RoleUser
		if e.Direction == Outbound {
			role = model.RoleAssistant
		}
		msgs = append(msgs, model.Message{Role: role, Content: e.Content})
	}
	if len(msgs) == 0 {
		msgs = append(msgs, model.Message{Role: model.RoleUser, Content: st.Message})
	}
	return msgs
}
