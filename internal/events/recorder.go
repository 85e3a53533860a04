package events

import (
	"context"
	"sync"
)

// Recorded is one captured publish call.
type Recorded struct {
	Topic string
	Event Event
}

// Recorder is an in-memory Publisher for tests: it captures every
// publish so assertions can inspect emitted events without a transport.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, topic string, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Topic: topic, Event: event})
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.events))
	copy(out, r.events)
	return out
}

// ByType filters captured events by type.
func (r *Recorder) ByType(t Type) []Recorded {
	var out []Recorded
	for _, rec := range r.Events() {
		if rec.Event.Type == t {
			out = append(out, rec)
		}
	}
	return out
}
