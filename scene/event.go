package scene

import "sync"

// EventKind identifies an input event
type EventKind int

const (
	EventText EventKind = iota
	EventSubmit
	EventBackspace
	EventQuit
)

// Event is one input event queued by the window callbacks
type Event struct {
	Kind EventKind
	Rune rune
}

// Text returns a text-input event for r
func Text(r rune) Event {
	return Event{Kind: EventText, Rune: r}
}

// Queue buffers events between the window callbacks and the frame loop
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// Push appends an event
func (q *Queue) Push(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// Drain appends all queued events to dst and empties the queue
func (q *Queue) Drain(dst []Event) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	dst = append(dst, q.events...)
	q.events = q.events[:0]
	return dst
}

// Len returns the number of queued events
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
