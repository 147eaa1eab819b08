package agent

import (
	"errors"
	"fmt"

	"github.com/hupe1980/agentchat/mailbox"
)

var (
	// ErrMailboxClosed is returned when delivering to an agent whose run loop
	// has stopped. The run loop recovers from it locally.
	ErrMailboxClosed = mailbox.ErrClosed
	// ErrIdentityClosed is returned when delivering through a released identity.
	ErrIdentityClosed = mailbox.ErrSenderClosed
	// ErrInvalidIdentity is returned for the zero Identity.
	ErrInvalidIdentity = errors.New("invalid agent identity")
	// ErrInvalidEnvelope is returned when posting a nil envelope.
	ErrInvalidEnvelope = errors.New("invalid envelope")
	// ErrDuplicateTrigger is returned when a trigger already has a callback.
	ErrDuplicateTrigger = errors.New("duplicate reply trigger")
	// ErrInvalidTrigger is returned for an empty trigger name or nil callback.
	ErrInvalidTrigger = errors.New("invalid reply trigger")
	// ErrReplyCeilingExceeded is matched by every ReplyCeilingError.
	ErrReplyCeilingExceeded = errors.New("auto-reply ceiling exceeded")
	// ErrInvalidName is returned when building an agent without a name.
	ErrInvalidName = errors.New("agent name must not be empty")
	// ErrDuplicateName is returned when a group already hosts an agent with that name.
	ErrDuplicateName = errors.New("duplicate agent name")
	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("agent is already running")
)

// ReplyCeilingError reports that an actor stopped auto-replying to a
// counterpart because MaxConsecutiveAutoReply was reached.
type ReplyCeilingError struct {
	Agent       string
	Counterpart string
	Limit       int
}

func (e *ReplyCeilingError) Error() string {
	return fmt.Sprintf("agent %s: %d consecutive auto-replies to %s: %v", e.Agent, e.Limit, e.Counterpart, ErrReplyCeilingExceeded)
}

// Unwrap returns ErrReplyCeilingExceeded.
func (e *ReplyCeilingError) Unwrap() error { return ErrReplyCeilingExceeded }

// ReplyError wraps a failure of a reply source.
type ReplyError struct {
	Agent       string
	Counterpart string
	Source      string
	Err         error
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("agent %s: %s reply to %s: %v", e.Agent, e.Source, e.Counterpart, e.Err)
}

// Unwrap returns the reply source error.
func (e *ReplyError) Unwrap() error { return e.Err }
