// Package test holds integration helpers shared by the end-to-end
// scenario tests, mirroring the teacher's own test/testing.go: a small
// cluster-building API the scenario tests in protocol_test.go drive.
package test

import (
	"sync"
	"testing"
	"time"

	"github.com/jabolina/go-raymond/pkg/raymond/core"
	"github.com/jabolina/go-raymond/pkg/raymond/definition"
	"github.com/jabolina/go-raymond/pkg/raymond/types"
)

// RecordedMessage is one (sender, target, kind) triple captured by a
// RecordingTransport, used to assert the message traces named in §8's
// end-to-end scenarios.
type RecordedMessage struct {
	Sender string
	Target string
	Kind   types.Kind
}

// RecordingTransport wraps an in-memory fabric and records every Send in
// order, so a scenario test can assert on the wire trace instead of only
// on final state.
type RecordingTransport struct {
	inner *core.InMemoryTransport
	mu    sync.Mutex
	sent  []RecordedMessage
}

// NewRecordingTransport builds a RecordingTransport over a fresh in-memory
// fabric.
func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{inner: core.NewInMemoryTransport()}
}

func (r *RecordingTransport) Subscribe(nodeName string, callback core.Callback) error {
	return r.inner.Subscribe(nodeName, callback)
}

func (r *RecordingTransport) Send(sender, target string, kind types.Kind, body string) error {
	r.mu.Lock()
	r.sent = append(r.sent, RecordedMessage{Sender: sender, Target: target, Kind: kind})
	r.mu.Unlock()
	return r.inner.Send(sender, target, kind, body)
}

func (r *RecordingTransport) Close() error {
	return r.inner.Close()
}

// Sent returns a copy of every message recorded so far.
func (r *RecordingTransport) Sent() []RecordedMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedMessage(nil), r.sent...)
}

// Cluster wires a fixed set of named nodes over a shared transport, with
// short timing constants so the scenarios in §8 run fast.
type Cluster struct {
	T         *testing.T
	Transport core.Transport
	Nodes     map[string]*core.Node
	Entries   map[string]int
}

// BuildCluster spawns one node per (name -> neighbors) entry in adjacency
// over a fresh in-memory transport.
func BuildCluster(t *testing.T, adjacency map[string][]string) *Cluster {
	t.Helper()
	return BuildClusterOn(t, core.NewInMemoryTransport(), adjacency)
}

// BuildClusterOn spawns one node per (name -> neighbors) entry in
// adjacency over a caller-supplied transport, letting scenario tests
// plug in a RecordingTransport to assert on the wire trace.
func BuildClusterOn(t *testing.T, transport core.Transport, adjacency map[string][]string) *Cluster {
	t.Helper()
	log := definition.NewDefaultLogger()

	c := &Cluster{
		T:         t,
		Transport: transport,
		Nodes:     make(map[string]*core.Node, len(adjacency)),
		Entries:   make(map[string]int),
	}

	for name, neighbors := range adjacency {
		name := name
		cfg := types.DefaultNodeConfiguration(name, neighbors)
		cfg.CSDelayMin = time.Millisecond
		cfg.CSDelayMax = 2 * time.Millisecond
		cfg.RecoveryGracePeriod = 15 * time.Millisecond

		node, err := core.NewNode(cfg, transport, log, func() {
			c.Entries[name]++
		})
		if err != nil {
			t.Fatalf("failed creating node %s: %v", name, err)
		}
		c.Nodes[name] = node
	}
	return c
}

// Close tears down the cluster's transport.
func (c *Cluster) Close() {
	_ = c.Transport.Close()
}

// FourNodePath builds the 0-1-2-3 path topology used by scenarios S3 and
// S4.
func FourNodePath(t *testing.T) *Cluster {
	return BuildCluster(t, map[string][]string{
		"0": {"1"},
		"1": {"0", "2"},
		"2": {"1", "3"},
		"3": {"2"},
	})
}

// FourNodePathOn is FourNodePath wired over a caller-supplied transport.
func FourNodePathOn(t *testing.T, transport core.Transport) *Cluster {
	return BuildClusterOn(t, transport, map[string][]string{
		"0": {"1"},
		"1": {"0", "2"},
		"2": {"1", "3"},
		"3": {"2"},
	})
}

// ThreeNodePath builds the 0-1-2 path used by scenario S6.
func ThreeNodePath(t *testing.T) *Cluster {
	return BuildCluster(t, map[string][]string{
		"0": {"1"},
		"1": {"0", "2"},
		"2": {"1"},
	})
}

// StarWithLeaves builds a star topology: one center and n uniquely named
// leaves, used by scenario S5.
func StarWithLeaves(t *testing.T, n int) *Cluster {
	adjacency := map[string][]string{"center": nil}
	leaves := make([]string, n)
	for i := 0; i < n; i++ {
		leaf := "leaf" + string(rune('a'+i))
		leaves[i] = leaf
		adjacency["center"] = append(adjacency["center"], leaf)
		adjacency[leaf] = []string{"center"}
	}
	return BuildCluster(t, adjacency)
}

// WaitUntil polls cond until it returns true or timeout elapses, returning
// the final result of cond either way.
func WaitUntil(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

// AllSnapshots returns a snapshot of every node in the cluster.
func (c *Cluster) AllSnapshots() map[string]core.Snapshot {
	out := make(map[string]core.Snapshot, len(c.Nodes))
	for name, node := range c.Nodes {
		out[name] = node.Snapshot()
	}
	return out
}
