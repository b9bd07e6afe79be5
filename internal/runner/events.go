package runner

import "sync"

// EventType identifies what an Event reports.
type EventType string

const (
	EventStateChanged  EventType = "state_changed"
	EventProgress      EventType = "progress"
	EventFileStarted   EventType = "file_started"
	EventFileCompleted EventType = "file_completed"
	EventFileSkipped   EventType = "file_skipped"
	EventFileFailed    EventType = "file_failed"
	EventJobCompleted  EventType = "job_completed"
	EventJobFailed     EventType = "job_failed"
)

// Event is one observer notification from the runner.
type Event struct {
	Type  EventType      `json:"type"`
	JobID string         `json:"job_id"`
	Data  map[string]any `json:"data,omitempty"`
}

// eventQueue buffers events without bound so the worker never blocks on a
// slow or absent consumer. A pump goroutine drains the buffer into the
// public channel.
type eventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Event
	closed bool
	out    chan Event
}

func newEventQueue() *eventQueue {
	q := &eventQueue{out: make(chan Event)}
	q.cond = sync.NewCond(&q.mu)
	go q.pump()
	return q
}

func (q *eventQueue) push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, ev)
	q.cond.Signal()
}

func (q *eventQueue) pump() {
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.items) == 0 && q.closed {
			q.mu.Unlock()
			close(q.out)
			return
		}
		ev := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()
		q.out <- ev
	}
}

func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
