package agent

import "sort"

// Direction tells whether a log entry was received or sent.
type Direction uint8

const (
	// Inbound entries were received from the counterpart.
	Inbound Direction = iota
	// Outbound entries were sent to the counterpart.
	Outbound
)

func (d Direction) String() string {
	if d == Outbound {
		return "outbound"
	}
	return "inbound"
}

// Entry is one payload exchanged with a counterpart.
type Entry struct {
	Content   string
	Direction Direction
}

// ConversationLog keeps, per counterpart name, the ordered payloads an actor
// exchanged with it. It is owned by a single actor and is not synchronised.
type ConversationLog struct {
	entries map[string][]Entry
}

// NewConversationLog returns an empty log.
func NewConversationLog() *ConversationLog {
	return &ConversationLog{entries: make(map[string][]Entry)}
}

// Append records content exchanged with counterpart.
func (l *ConversationLog) Append(counterpart, content string, dir Direction) {
	if l.entries == nil {
		l.entries = make(map[string][]Entry)
	}
	l.entries[counterpart] = append(l.entries[counterpart], Entry{Content: content, Direction: dir})
}

// Entries returns a copy of the entries exchanged with counterpart.
func (l *ConversationLog) Entries(counterpart string) []Entry {
	return append([]Entry(nil), l.entries[counterpart]...)
}

// Messages returns only the payloads exchanged with counterpart, in order.
func (l *ConversationLog) Messages(counterpart string) []string {
	es := l.entries[counterpart]
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Content)
	}
	return out
}

// Counterparts returns the sorted names the actor has exchanged messages with.
func (l *ConversationLog) Counterparts() []string {
	names := make([]string, 0, len(l.entries))
	for n := range l.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of entries across all counterparts.
func (l *ConversationLog) Len() int {
	n := 0
	for _, es := range l.entries {
		n += len(es)
	}
	return n
}

// Clear removes the history for every counterpart.
func (l *ConversationLog) Clear() {
	l.entries = make(map[string][]Entry)
}
