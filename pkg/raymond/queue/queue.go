// Package queue implements the FIFO sequence used for request_q: an
// ordered list of pending requesters supporting a membership test, which
// the advise-reconstruction step of recovery depends on to avoid
// double-pushing a neighbor (§4.1, §9 item 4).
package queue

// Queue is an ordered sequence of types.Peer-able identities, stored here
// as plain strings so the package has no dependency on the rest of the
// protocol: the node state machine is responsible for encoding its
// Peer values to and from strings at the boundary.
type Queue struct {
	items []string
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{items: make([]string, 0, 4)}
}

// Push appends x at the tail. Safety of the state machine depends on
// callers not pushing a duplicate; see Contains.
func (q *Queue) Push(x string) {
	q.items = append(q.items, x)
}

// Get removes and returns the head. Panics if the queue is empty, the same
// way a pop on an empty slice would be a programming error here: every
// caller in this module guards with Empty first.
func (q *Queue) Get() string {
	if len(q.items) == 0 {
		panic("queue: Get() called on empty queue")
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head
}

// Head peeks at the front without removing it.
func (q *Queue) Head() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	return q.items[0], true
}

// Empty reports whether the queue has no pending entries.
func (q *Queue) Empty() bool {
	return len(q.items) == 0
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.items)
}

// Contains reports whether x is already queued. Used both to enforce
// invariant 5 (an entry appears at most once) and during advise
// reconstruction to avoid re-pushing a neighbor already present.
func (q *Queue) Contains(x string) bool {
	for _, item := range q.items {
		if item == x {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the queue contents in FIFO order, used by the
// visualizer's read-only snapshot() view.
func (q *Queue) Snapshot() []string {
	out := make([]string, len(q.items))
	copy(out, q.items)
	return out
}
