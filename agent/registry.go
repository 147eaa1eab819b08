package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ReplyFunc is a callback registered for a trigger. It may inspect and mutate
// the actor state and returns the reply payload, or ok=false for no reply.
// Callbacks never send themselves; the run loop delivers the returned payload.
type ReplyFunc func(ctx context.Context, st *State) (reply string, ok bool)

// GenerateReply lets a ReplyFunc act as a ReplySource.
func (f ReplyFunc) GenerateReply(ctx context.Context, st *State) (string, bool, error) {
	reply, ok := f(ctx, st)
	return reply, ok, nil
}

// TriggerRegistry maps a trigger (the name of the agent whose messages should
// invoke it) to a reply source. A trigger holds at most one source. Sources
// may be registered while the owning actor is running.
type TriggerRegistry struct {
	mu    sync.RWMutex
	funcs map[string]ReplySource
}

// NewTriggerRegistry returns an empty registry.
func NewTriggerRegistry() *TriggerRegistry {
	return &TriggerRegistry{funcs: make(map[string]ReplySource)}
}

// Register binds src to trigger. Registering a trigger twice fails with
// ErrDuplicateTrigger and keeps the first source. Errors returned by src are
// reported like failures of the actor's default source.
func (r *TriggerRegistry) Register(trigger string, src ReplySource) error {
	if trigger == "" || isNilSource(src) {
		return fmt.Errorf("register %q: %w", trigger, ErrInvalidTrigger)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[trigger]; exists {
		return fmt.Errorf("register %q: %w", trigger, ErrDuplicateTrigger)
	}
	r.funcs[trigger] = src
	return nil
}

func isNilSource(src ReplySource) bool {
	switch s := src.(type) {
	case nil:
		return true
	case ReplyFunc:
		return s == nil
	case ReplySourceFunc:
		return s == nil
	default:
		return false
	}
}

// Lookup returns the source registered for trigger.
func (r *TriggerRegistry) Lookup(trigger string) (ReplySource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[trigger]
	return fn, ok
}

// Unregister removes trigger and reports whether it was present.
func (r *TriggerRegistry) Unregister(trigger string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.funcs[trigger]; !ok {
		return false
	}
	delete(r.funcs, trigger)
	return true
}

// Triggers returns the registered trigger names, sorted.
func (r *TriggerRegistry) Triggers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.funcs))
	for t := range r.funcs {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered triggers.
func (r *TriggerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funcs)
}
