package agent

// Kind discriminates envelope variants.
type Kind uint8

const (
	// KindInitiateChat seeds a conversation.
	KindInitiateChat Kind = iota
	// KindSend asks an actor to deliver a payload to a counterpart.
	KindSend
	// KindReceive carries a payload from a counterpart.
	KindReceive
	// KindReset clears an actor's conversational state.
	KindReset
)

// String returns the lower-case variant name.
func (k Kind) String() string {
	switch k {
	case KindInitiateChat:
		return "initiate_chat"
	case KindSend:
		return "send"
	case KindReceive:
		return "receive"
	case KindReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Envelope is the closed set of messages routed between actors.
type Envelope interface {
	Kind() Kind
	isEnvelope()
}

// InitiateChat is the first hop of a conversation. It is handled exactly like
// Send; the distinct variant lets observers and hooks tell the seed apart.
type InitiateChat struct {
	// Recipient is the agent the conversation is opened with.
	Recipient    Identity
	Message      string
	RequestReply bool
}

// Send asks the receiving actor to deliver Message to Recipient.
type Send struct {
	// Recipient is the agent to deliver to.
	Recipient    Identity
	Message      string
	RequestReply bool
}

// Receive carries Message from a counterpart. Recipient is the counterpart
// to reply to, not the mailbox the envelope arrived through.
type Receive struct {
	// Recipient is the agent to reply to.
	Recipient    Identity
	Message      string
	RequestReply bool
}

// Reset clears the receiving actor's conversation log and reply counters.
type Reset struct{}

// Kind implements Envelope.
func (InitiateChat) Kind() Kind { return KindInitiateChat }

// Kind implements Envelope.
func (Send) Kind() Kind { return KindSend }

// Kind implements Envelope.
func (Receive) Kind() Kind { return KindReceive }

// Kind implements Envelope.
func (Reset) Kind() Kind { return KindReset }

func (InitiateChat) isEnvelope() {}
func (Send) isEnvelope()         {}
func (Receive) isEnvelope()      {}
func (Reset) isEnvelope()        {}
