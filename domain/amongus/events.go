package amongus

import (
	"context"

	"github.com/dev-tnsq/Proof-of-Sus/auth"
)

// Topic names a notification.
type Topic string

const (
	TopicStarted Topic = "started"
	TopicJoined  Topic = "joined"
	TopicMoved   Topic = "moved"
	TopicMeeting Topic = "meeting"
	TopicResume  Topic = "resume"
	TopicEjected Topic = "ejected"
	TopicSkipped Topic = "skipped"
	TopicVoted   Topic = "voted"
	TopicWinner  Topic = "winner"
	TopicKilled  Topic = "killed"
)

// Event is a notification for off-chain observers. Only the fields relevant
// to Topic are set.
type Event struct {
	Topic  Topic        `json:"topic"`
	Caller auth.Address `json:"caller"`
	Round  uint32       `json:"round,omitempty"`
	X      uint32       `json:"x,omitempty"`
	Y      uint32       `json:"y,omitempty"`
	Target Hash         `json:"target"`
	Winner Winner       `json:"winner,omitempty"`
	Victim auth.Address `json:"victim,omitempty"`
}

// Publisher receives events after their transaction commits. Delivery is
// best effort; Publish has no way to fail the transaction.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, ev Event)

func (f PublisherFunc) Publish(ctx context.Context, ev Event) { f(ctx, ev) }

type discard struct{}

func (discard) Publish(context.Context, Event) {}

// EventLog collects the events emitted inside one transaction.
type EventLog struct {
	events []Event
}

func (l *EventLog) emit(ev Event) {
	l.events = append(l.events, ev)
}

// Events returns the collected events in emission order.
func (l *EventLog) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}
