// Package orchestrator spawns nodes, wires them into a fixed tree, and
// dispatches CLI commands onto their local API — the facade the spec
// treats as an external collaborator to the protocol core (§1).
package orchestrator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/jabolina/go-raymond/pkg/raymond/core"
	"github.com/jabolina/go-raymond/pkg/raymond/topology"
	"github.com/jabolina/go-raymond/pkg/raymond/types"
)

// askRandomMin/Max and killRandomMin/Max bound the sleep between
// iterations of the "random" background loops named in §6's CLI table.
const (
	askRandomMin  = 3 * time.Second
	askRandomMax  = 8 * time.Second
	killRandomMin = 6 * time.Second
	killRandomMax = 16 * time.Second
)

// Orchestrator owns every node in the run and the random-loop goroutines
// spawned by `ask random` / `kill random`.
type Orchestrator struct {
	log   types.Logger
	nodes map[string]*core.Node

	mu               sync.Mutex
	backgroundCancel []context.CancelFunc
	rng              *rand.Rand
}

// New spawns one Node per vertex of tree, each subscribed on transport.
func New(tree *topology.Tree, transport core.Transport, log types.Logger, config func(name string, neighbors []string) *types.NodeConfiguration, criticalSection func(name string) func()) (*Orchestrator, error) {
	o := &Orchestrator{
		log:   log,
		nodes: make(map[string]*core.Node, len(tree.Names)),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, name := range tree.Names {
		neighbors := tree.Neighbors(name)
		cfg := config(name, neighbors)
		var cs func()
		if criticalSection != nil {
			cs = criticalSection(name)
		}
		node, err := core.NewNode(cfg, transport, log, cs)
		if err != nil {
			return nil, err
		}
		o.nodes[name] = node
	}
	return o, nil
}

// Names returns every node name known to this orchestrator, in no
// particular order.
func (o *Orchestrator) Names() []string {
	names := make([]string, 0, len(o.nodes))
	for name := range o.nodes {
		names = append(names, name)
	}
	return names
}

// Node looks up a node by name. Returns nil, false for an unknown name —
// callers (the CLI dispatcher) silently ignore that case per §7's
// "Unknown node name" taxonomy entry.
func (o *Orchestrator) Node(name string) (*core.Node, bool) {
	n, ok := o.nodes[name]
	return n, ok
}

// Initialize invokes initialize_network on name, ignoring unknown names.
func (o *Orchestrator) Initialize(name string) {
	if node, ok := o.nodes[name]; ok {
		node.InitializeNetwork()
	}
}

// Ask invokes ask_for_critical_section on each given name, dispatched on
// short-lived worker goroutines per §5: "the orchestrator may dispatch
// local API calls on short-lived worker threads."
func (o *Orchestrator) Ask(names ...string) {
	for _, name := range names {
		if node, ok := o.nodes[name]; ok {
			go node.AskForCriticalSection()
		}
	}
}

// Kill invokes kill on each given name, dispatched the same way as Ask.
func (o *Orchestrator) Kill(names ...string) {
	for _, name := range names {
		if node, ok := o.nodes[name]; ok {
			go node.Kill()
		}
	}
}

// AskRandom starts a background loop that every 3-8s asks a uniformly
// chosen node, per §6's `ask random` row. Returns a cancel function.
func (o *Orchestrator) AskRandom() context.CancelFunc {
	return o.randomLoop(askRandomMin, askRandomMax, func(name string) {
		o.Ask(name)
	})
}

// KillRandom starts a background loop that every 6-16s kills a uniformly
// chosen node, per §6's `kill random` row. Returns a cancel function.
func (o *Orchestrator) KillRandom() context.CancelFunc {
	return o.randomLoop(killRandomMin, killRandomMax, func(name string) {
		o.Kill(name)
	})
}

func (o *Orchestrator) randomLoop(min, max time.Duration, fire func(name string)) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())

	o.mu.Lock()
	names := o.Names()
	o.backgroundCancel = append(o.backgroundCancel, cancel)
	o.mu.Unlock()

	go func() {
		for {
			o.mu.Lock()
			wait := min
			spread := max - min
			if spread > 0 {
				wait += time.Duration(o.rng.Int63n(int64(spread)))
			}
			o.mu.Unlock()

			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}

			if len(names) == 0 {
				continue
			}
			o.mu.Lock()
			name := names[o.rng.Intn(len(names))]
			o.mu.Unlock()
			fire(name)
		}
	}()

	return cancel
}

// StopBackgroundLoops cancels every running random-ask/random-kill loop,
// the cancellation-on-exit behavior named in §9's design notes.
func (o *Orchestrator) StopBackgroundLoops() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, cancel := range o.backgroundCancel {
		cancel()
	}
	o.backgroundCancel = nil
}

// Snapshot collects a read-only view of every node, used by the
// visualizer's redraw loop.
func (o *Orchestrator) Snapshot() map[string]core.Snapshot {
	out := make(map[string]core.Snapshot, len(o.nodes))
	for name, node := range o.nodes {
		out[name] = node.Snapshot()
	}
	return out
}
