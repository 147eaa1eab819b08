// Package agent implements the actor messaging protocol used by agentchat:
// how agents are identified and addressed, how envelopes are routed between
// mailboxes, the request/reply state machine that drives a conversation and
// the trigger registry that lets an agent plug custom reply behavior keyed by
// the agent that triggered it.
//
// The package focuses on four concerns:
//
//  1. Addressing (Identity) and the envelope protocol (InitiateChat, Send,
//     Receive, Reset)
//  2. The Actor run loop: one goroutine per actor consuming its mailbox
//     strictly sequentially, so its ConversationLog and TriggerRegistry need
//     no locking
//  3. Reply sources: DefaultReply, StaticReply, ModelReply and registered
//     ReplyFunc callbacks, selected by trigger lookup before every reply
//  4. Wiring: Builder produces a ready-to-run Actor plus its Identity; Group
//     runs a set of actors and detects when a conversation went quiet
//
// Execution model:
//   - Envelopes ping-pong between mailboxes. Receive with RequestReply set
//     asks for a reply; the actor answers until its reply source returns no
//     payload, a termination message arrives, or MaxConsecutiveAutoReply is
//     reached (reported as ErrReplyCeilingExceeded).
//   - Releasing every handle to an actor's mailbox (Identity.Close on all
//     copies and clones) ends its run loop gracefully.
//
// Registered callbacks return the reply payload instead of sending it; the
// run loop performs the send so the auto-reply ceiling applies uniformly.
package agent
