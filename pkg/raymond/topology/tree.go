// Package topology generates the random tree the orchestrator wires nodes
// against. Generating the topology itself is explicitly out of scope for
// the protocol (spec §1's "network topology generator"), but the
// orchestrator needs a concrete tree to drive the CLI and integration
// tests end to end, so it is supplemented here per SPEC_FULL.md §4.
package topology

import (
	"math/rand"
	"strconv"
)

// Tree is an undirected adjacency list over vertices named "0".."N-1".
type Tree struct {
	Names     []string
	Adjacency map[string][]string
}

// Neighbors returns the fixed neighbor set for name, the value every Node
// is constructed with.
func (t *Tree) Neighbors(name string) []string {
	return append([]string(nil), t.Adjacency[name]...)
}

// GenerateRandomGrowingTree builds a random growing-network tree over n
// vertices: each new vertex attaches to one uniformly chosen existing
// vertex, as named in §6 ("a random tree over N vertices"). A node's
// neighbor set is its predecessors union its successors in that
// construction, which a plain adjacency list already captures.
func GenerateRandomGrowingTree(n int, rng *rand.Rand) *Tree {
	if n <= 0 {
		return &Tree{Adjacency: map[string][]string{}}
	}

	names := make([]string, n)
	adjacency := make(map[string][]string, n)
	for i := 0; i < n; i++ {
		names[i] = strconv.Itoa(i)
		adjacency[names[i]] = nil
	}

	for i := 1; i < n; i++ {
		parent := names[rng.Intn(i)]
		child := names[i]
		adjacency[parent] = append(adjacency[parent], child)
		adjacency[child] = append(adjacency[child], parent)
	}

	return &Tree{Names: names, Adjacency: adjacency}
}
