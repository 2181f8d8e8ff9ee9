package reasoner

import (
	"sync"

	"github.com/roach88/etrace/internal/nal"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventTypeInput carries an externally supplied task.
	EventTypeInput EventType = iota + 1
	// EventTypeCycle requests one or more control cycles.
	EventTypeCycle
)

// Event is a unit of work for the Run loop.
type Event struct {
	Type   EventType
	Task   *nal.Task // EventTypeInput
	Cycles int       // EventTypeCycle; values below 1 run one cycle
}

// InputEvent wraps a task for Enqueue.
func InputEvent(task *nal.Task) Event {
	return Event{Type: EventTypeInput, Task: task}
}

// CycleEvent requests n cycles.
func CycleEvent(n int) Event {
	return Event{Type: EventTypeCycle, Cycles: n}
}

// eventQueue is an unbounded thread-safe FIFO queue.
//
// Producers may enqueue from any goroutine while the engine's Run loop
// dequeues. The buffered signal channel lets Run wait on the queue and a
// context at the same time.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // buffered, size 1
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)

	// Non-blocking: the buffer of 1 coalesces signals
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front event without blocking.
// Returns (Event{}, false) if the queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]
	// Clear the slot so the backing array does not pin the task
	q.events[0] = Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Wait returns a channel that signals when events may be available.
// The channel is closed by Close.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close signals that no more events will be enqueued and wakes waiters.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
