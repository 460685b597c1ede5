package core

import (
	"sync"

	"github.com/jabolina/go-raymond/pkg/raymond/types"
)

// InMemoryTransport is a Transport backed by per-node channels instead of a
// broker connection, used by unit and integration tests (§9: "an in-memory
// channel fabric backs the unit tests; the broker is used in deployment").
// Per-pair FIFO ordering is preserved because a single goroutine per
// subscriber drains its mailbox in arrival order.
type InMemoryTransport struct {
	mu        sync.Mutex
	mailboxes map[string]chan envelope
	done      chan struct{}
	closeOnce sync.Once
}

type envelope struct {
	sender string
	kind   types.Kind
	body   string
}

// NewInMemoryTransport returns a ready-to-use fabric. Every node that will
// exchange messages must call Subscribe before any Send targeting it.
func NewInMemoryTransport() *InMemoryTransport {
	return &InMemoryTransport{
		mailboxes: make(map[string]chan envelope),
		done:      make(chan struct{}),
	}
}

// Subscribe registers callback for nodeName and spawns the draining
// goroutine that invokes it for every arriving envelope, in send order.
func (f *InMemoryTransport) Subscribe(nodeName string, callback Callback) error {
	mailbox := make(chan envelope, 64)

	f.mu.Lock()
	f.mailboxes[nodeName] = mailbox
	f.mu.Unlock()

	InvokerInstance().Spawn(func() {
		for {
			select {
			case <-f.done:
				return
			case e, ok := <-mailbox:
				if !ok {
					return
				}
				callback(e.sender, e.kind, e.body)
			}
		}
	})
	return nil
}

// Send delivers to target's mailbox. Two sends from the same sender to the
// same target preserve order because the mailbox is a single FIFO channel.
func (f *InMemoryTransport) Send(sender, target string, kind types.Kind, body string) error {
	f.mu.Lock()
	mailbox, ok := f.mailboxes[target]
	f.mu.Unlock()
	if !ok {
		return ErrNotAdvertised
	}

	select {
	case mailbox <- envelope{sender: sender, kind: kind, body: body}:
		return nil
	case <-f.done:
		return ErrNotAdvertised
	}
}

// Close stops every draining goroutine.
func (f *InMemoryTransport) Close() error {
	f.closeOnce.Do(func() {
		close(f.done)
	})
	return nil
}
