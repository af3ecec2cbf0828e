// Package notify delivers contract notifications to off-chain observers.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dev-tnsq/Proof-of-Sus/domain/amongus"
)

// Logger writes each notification as an Info record.
type Logger struct {
	log *slog.Logger
}

var _ amongus.Publisher = (*Logger)(nil)

// NewLogger returns a Logger; a nil logger falls back to slog.Default.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{log: l}
}

func (l *Logger) Publish(ctx context.Context, ev amongus.Event) {
	l.log.InfoContext(ctx, "notification", Attrs(ev)...)
}

// Attrs returns the topic and the payload fields relevant to it.
func Attrs(ev amongus.Event) []any {
	attrs := []any{slog.String("topic", string(ev.Topic))}
	if ev.Caller != "" {
		attrs = append(attrs, slog.String("caller", string(ev.Caller)))
	}
	switch ev.Topic {
	case amongus.TopicMoved:
		attrs = append(attrs, slog.Uint64("x", uint64(ev.X)), slog.Uint64("y", uint64(ev.Y)))
	case amongus.TopicMeeting, amongus.TopicResume:
		attrs = append(attrs, slog.Uint64("round", uint64(ev.Round)))
	case amongus.TopicEjected, amongus.TopicSkipped, amongus.TopicVoted:
		attrs = append(attrs, slog.String("target", ev.Target.String()))
	case amongus.TopicWinner:
		attrs = append(attrs, slog.String("winner", ev.Winner.String()))
	case amongus.TopicKilled:
		attrs = append(attrs, slog.String("victim", string(ev.Victim)))
	}
	return attrs
}

// Recorder keeps every notification in memory. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []amongus.Event
}

var _ amongus.Publisher = (*Recorder)(nil)

func (r *Recorder) Publish(_ context.Context, ev amongus.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded notifications.
func (r *Recorder) Events() []amongus.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]amongus.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Topics returns the recorded topics in delivery order.
func (r *Recorder) Topics() []amongus.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]amongus.Topic, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Topic
	}
	return out
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Multi fans a notification out to every publisher in order.
type Multi []amongus.Publisher

func (m Multi) Publish(ctx context.Context, ev amongus.Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, ev)
		}
	}
}
