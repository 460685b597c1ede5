package test

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/jabolina/go-raymond/pkg/raymond/core"
	"github.com/jabolina/go-raymond/pkg/raymond/definition"
	"github.com/jabolina/go-raymond/pkg/raymond/types"
)

// TestS1_LinearRequestPropagatesAndPrivilegeReturns is scenario S1: seed
// init 0, then ask 3 on the path 0-1-2-3. The message trace should be
// request forwarded hop by hop toward the holder, then privilege forwarded
// back hop by hop to the asker.
func TestS1_LinearRequestPropagatesAndPrivilegeReturns(t *testing.T) {
	recorder := NewRecordingTransport()
	c := FourNodePathOn(t, recorder)
	defer c.Close()

	c.Nodes["0"].InitializeNetwork()
	WaitUntil(t, time.Second, func() bool {
		return c.Nodes["3"].Snapshot().Holder == "2"
	})

	c.Nodes["3"].AskForCriticalSection()

	ok := WaitUntil(t, 2*time.Second, func() bool {
		snap := c.Nodes["3"].Snapshot()
		return snap.Holder == "self" && !snap.Using
	})
	if !ok {
		t.Fatalf("node 3 never settled holding the privilege")
	}

	wantSubsequence := []RecordedMessage{
		{Sender: "3", Target: "2", Kind: types.Request},
		{Sender: "2", Target: "1", Kind: types.Request},
		{Sender: "1", Target: "0", Kind: types.Request},
		{Sender: "0", Target: "1", Kind: types.Privilege},
		{Sender: "1", Target: "2", Kind: types.Privilege},
		{Sender: "2", Target: "3", Kind: types.Privilege},
	}
	assertContainsSubsequence(t, recorder.Sent(), wantSubsequence)

	if c.Entries["3"] != 1 {
		t.Errorf("expected node 3 to enter the critical section exactly once, got %d", c.Entries["3"])
	}
}

// assertContainsSubsequence checks that want appears, in order, as a
// (not necessarily contiguous) subsequence of got — filtering out
// message kinds that aren't part of the expected trace (initialize, for
// instance, fires before either side of want).
func assertContainsSubsequence(t *testing.T, got []RecordedMessage, want []RecordedMessage) {
	t.Helper()
	i := 0
	for _, msg := range got {
		if i >= len(want) {
			break
		}
		if msg == want[i] {
			i++
		}
	}
	if i != len(want) {
		t.Errorf("expected trace to contain subsequence %v in order, got %v", want, got)
	}
}

// TestS2_ConcurrentAsksBothCompleteWithoutOverlap is scenario S2: seed
// init 0, then concurrently ask 2 and ask 3; both complete and no two
// critical section entries overlap.
func TestS2_ConcurrentAsksBothCompleteWithoutOverlap(t *testing.T) {
	transport := core.NewInMemoryTransport()
	defer transport.Close()
	log := definition.NewDefaultLogger()

	adjacency := map[string][]string{
		"0": {"1"},
		"1": {"0", "2"},
		"2": {"1", "3"},
		"3": {"2"},
	}

	var mu sync.Mutex
	overlapDetected := false
	active := 0
	entries := make(map[string]int)

	nodes := make(map[string]*core.Node, len(adjacency))
	for name, neighbors := range adjacency {
		name := name
		cfg := types.DefaultNodeConfiguration(name, neighbors)
		cfg.CSDelayMin = time.Millisecond
		cfg.CSDelayMax = 2 * time.Millisecond

		node, err := core.NewNode(cfg, transport, log, func() {
			mu.Lock()
			active++
			if active > 1 {
				overlapDetected = true
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			entries[name]++
			active--
			mu.Unlock()
		})
		if err != nil {
			t.Fatalf("failed creating node %s: %v", name, err)
		}
		nodes[name] = node
	}

	nodes["0"].InitializeNetwork()
	WaitUntil(t, time.Second, func() bool { return nodes["2"].Snapshot().Holder == "1" })

	nodes["2"].AskForCriticalSection()
	nodes["3"].AskForCriticalSection()

	ok := WaitUntil(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return entries["2"] >= 1 && entries["3"] >= 1
	})
	if !ok {
		t.Fatalf("expected both node 2 and node 3 to enter the critical section, got %v", entries)
	}
	if overlapDetected {
		t.Fatalf("detected overlapping critical section entries")
	}
}

// TestS3_RequestsFromBothDirectionsEachEnterOnce is scenario S3: seed
// init 1, ask 3, then while the token is mid-transit ask 0. Both 0 and 3
// enter exactly once.
func TestS3_RequestsFromBothDirectionsEachEnterOnce(t *testing.T) {
	c := FourNodePath(t)
	defer c.Close()

	c.Nodes["1"].InitializeNetwork()
	WaitUntil(t, time.Second, func() bool { return c.Nodes["3"].Snapshot().Holder != "<none>" })

	c.Nodes["3"].AskForCriticalSection()
	WaitUntil(t, 200*time.Millisecond, func() bool { return c.Nodes["2"].Snapshot().Asked })

	c.Nodes["0"].AskForCriticalSection()

	ok := WaitUntil(t, 3*time.Second, func() bool {
		return c.Entries["0"] == 1 && c.Entries["3"] == 1
	})
	if !ok {
		t.Fatalf("expected node 0 and node 3 to each enter exactly once, got %v", c.Entries)
	}
}

// TestS4_KillDuringInFlightRequestStillDelivers is scenario S4: seed
// init 0, ask 3, kill 2 before any reply. Node 2 recovers and node 3
// eventually enters the critical section.
func TestS4_KillDuringInFlightRequestStillDelivers(t *testing.T) {
	c := FourNodePath(t)
	defer c.Close()

	c.Nodes["0"].InitializeNetwork()
	WaitUntil(t, time.Second, func() bool { return c.Nodes["3"].Snapshot().Holder == "2" })

	c.Nodes["3"].AskForCriticalSection()
	WaitUntil(t, 200*time.Millisecond, func() bool { return c.Nodes["2"].Snapshot().Asked })

	go c.Nodes["2"].Kill()

	ok := WaitUntil(t, 3*time.Second, func() bool {
		snap := c.Nodes["3"].Snapshot()
		return snap.Holder == "self" && !snap.Using
	})
	if !ok {
		t.Fatalf("node 3 never entered the critical section after node 2 recovered; snapshots=%+v", c.AllSnapshots())
	}
}

// TestS5_StarTenRandomAsksAllComplete is scenario S5: a 5-leaf star, init
// at the center, ten ask commands at random leaves. All ten entries
// happen and no node ever queues more requests than it has neighbors+1.
func TestS5_StarTenRandomAsksAllComplete(t *testing.T) {
	c := StarWithLeaves(t, 5)
	defer c.Close()

	c.Nodes["center"].InitializeNetwork()
	leaves := make([]string, 0, 5)
	for name := range c.Nodes {
		if name != "center" {
			leaves = append(leaves, name)
		}
	}
	WaitUntil(t, time.Second, func() bool {
		return c.Nodes[leaves[0]].Snapshot().Holder != "<none>"
	})

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 10; i++ {
		leaf := leaves[rng.Intn(len(leaves))]
		c.Nodes[leaf].AskForCriticalSection()
		time.Sleep(5 * time.Millisecond)
	}

	total := func() int {
		sum := 0
		for _, n := range c.Entries {
			sum += n
		}
		return sum
	}
	ok := WaitUntil(t, 6*time.Second, func() bool { return total() == 10 })
	if !ok {
		t.Fatalf("expected 10 total critical section entries, got %d (%v)", total(), c.Entries)
	}

	for name, node := range c.Nodes {
		neighborCount := len(node.Snapshot().Neighbors)
		if qlen := len(node.Snapshot().RequestQueue); qlen > neighborCount+1 {
			t.Errorf("node %s queue length %d exceeds neighbors+1 (%d)", name, qlen, neighborCount+1)
		}
	}
}

// TestS6_KillDuringForwardedPrivilegeDoesNotDeadlock is scenario S6: path
// 0-1-2; init 0; ask 2; kill 1 after the request propagated toward 0 but
// before the privilege returns. Once node 1 recovers, node 2 eventually
// enters.
func TestS6_KillDuringForwardedPrivilegeDoesNotDeadlock(t *testing.T) {
	c := ThreeNodePath(t)
	defer c.Close()

	c.Nodes["0"].InitializeNetwork()
	WaitUntil(t, time.Second, func() bool { return c.Nodes["2"].Snapshot().Holder == "1" })

	c.Nodes["2"].AskForCriticalSection()
	WaitUntil(t, 200*time.Millisecond, func() bool { return c.Nodes["1"].Snapshot().Asked })

	go c.Nodes["1"].Kill()

	ok := WaitUntil(t, 4*time.Second, func() bool {
		snap := c.Nodes["2"].Snapshot()
		return snap.Holder == "self" && !snap.Using
	})
	if !ok {
		t.Fatalf("expected node 2 to eventually enter the critical section; snapshots=%+v", c.AllSnapshots())
	}
}
