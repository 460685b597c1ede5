// Package visualizer renders a directed graph of holder edges from a
// read-only polling loop over node snapshots (§2's Visualizer component,
// §9's design note replacing direct private-field reads with a
// snapshot() method).
package visualizer

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"

	"github.com/jabolina/go-raymond/pkg/raymond/core"
)

// SnapshotSource is anything that can produce a point-in-time view of
// every node, satisfied by orchestrator.Orchestrator.Snapshot.
type SnapshotSource interface {
	Snapshot() map[string]core.Snapshot
}

// Visualizer polls a SnapshotSource and renders the holder graph to a
// writer, coloring the current token holder green and any node with a
// non-empty request queue yellow.
type Visualizer struct {
	source SnapshotSource
	out    io.Writer

	holderColor  *color.Color
	waitingColor *color.Color
	plainColor   *color.Color
}

// New builds a Visualizer writing to a colorable stdout wrapper so ANSI
// codes degrade gracefully when output is not a terminal.
func New(source SnapshotSource) *Visualizer {
	return &Visualizer{
		source:       source,
		out:          colorable.NewColorableStdout(),
		holderColor:  color.New(color.FgGreen, color.Bold),
		waitingColor: color.New(color.FgYellow),
		plainColor:   color.New(color.FgWhite),
	}
}

// Render draws one frame of the holder graph: one line per node, showing
// its holder pointer, whether it currently holds self-privilege, and its
// pending request queue.
func (v *Visualizer) Render() {
	snapshots := v.source.Snapshot()

	names := make([]string, 0, len(snapshots))
	for name := range snapshots {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		snap := snapshots[name]
		line := fmt.Sprintf("%s -> %s", name, snap.Holder)
		if snap.Using {
			line += " [USING]"
		}
		if snap.IsRecovering {
			line += " [RECOVERING]"
		}
		if len(snap.RequestQueue) > 0 {
			line += fmt.Sprintf(" queue=%v", snap.RequestQueue)
		}

		switch {
		case snap.Holder == "self":
			v.holderColor.Fprintln(v.out, line)
		case len(snap.RequestQueue) > 0:
			v.waitingColor.Fprintln(v.out, line)
		default:
			v.plainColor.Fprintln(v.out, line)
		}
	}
}

// RenderLoop calls Render every interval until stop is closed, the
// "polls node state read-only on a redraw loop" behavior of §2.
func (v *Visualizer) RenderLoop(interval <-chan struct{}, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-interval:
			v.Render()
		}
	}
}
