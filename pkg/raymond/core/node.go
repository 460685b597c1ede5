// Package core holds the transport adapter, the goroutine invoker, and the
// Node state machine — the protocol's core, equivalent in spirit to the
// teacher's core.Peer but implementing Raymond's algorithm instead of
// generic multicast.
package core

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/jabolina/go-raymond/pkg/raymond/helper"
	"github.com/jabolina/go-raymond/pkg/raymond/metrics"
	"github.com/jabolina/go-raymond/pkg/raymond/queue"
	"github.com/jabolina/go-raymond/pkg/raymond/types"
)

// ErrNoLogger is returned by NewNode when constructed without a logger.
var ErrNoLogger = errors.New("raymond: node requires a logger")

// Snapshot is an immutable, read-only view of a Node's state, returned by
// Node.Snapshot for the visualizer to render without touching private
// fields directly (§9: "Replace with a read-only snapshot() method").
type Snapshot struct {
	Name         string
	Neighbors    []string
	Holder       string
	Using        bool
	Asked        bool
	RequestQueue []string
	IsRecovering bool
}

// Node is a single Raymond tree participant. All mutable state is private
// and guarded by mutex; only the owning state machine mutates it, per the
// data model section.
type Node struct {
	mutex *sync.Mutex

	name         string
	neighborList []string

	holder       types.Peer
	using        bool
	asked        bool
	requestQ     *queue.Queue
	isRecovering bool
	adviseBuf    map[string]types.AdviseTriple

	transport       Transport
	log             types.Logger
	config          *types.NodeConfiguration
	criticalSection func()
}

// NewNode builds a Node for config, subscribes it on transport, and
// returns it ready to receive initialize_network or ask_for_critical_section.
// criticalSection may be nil, in which case a bounded random sleep between
// CSDelayMin and CSDelayMax stands in for real work (§4.3).
func NewNode(config *types.NodeConfiguration, transport Transport, log types.Logger, criticalSection func()) (*Node, error) {
	if log == nil {
		return nil, ErrNoLogger
	}

	n := &Node{
		mutex:           &sync.Mutex{},
		name:            config.Name,
		neighborList:    append([]string(nil), config.Neighbors...),
		holder:          types.None(),
		requestQ:        queue.New(),
		adviseBuf:       make(map[string]types.AdviseTriple),
		transport:       transport,
		log:             log.WithField("node", config.Name),
		config:          config,
		criticalSection: criticalSection,
	}
	if n.criticalSection == nil {
		n.criticalSection = n.defaultCriticalSectionDelay
	}

	if err := transport.Subscribe(config.Name, n.handle); err != nil {
		return nil, errors.Wrapf(err, "subscribing node %s", config.Name)
	}
	return n, nil
}

// Name returns the node's identity.
func (n *Node) Name() string {
	return n.name
}

func (n *Node) defaultCriticalSectionDelay() {
	spread := n.config.CSDelayMax - n.config.CSDelayMin
	delay := n.config.CSDelayMin
	if spread > 0 {
		delay += time.Duration(rand.Int63n(int64(spread)))
	}
	time.Sleep(delay)
}

// Snapshot returns a copy of the current state for read-only consumers
// such as the visualizer. Safe to call concurrently with any event.
func (n *Node) Snapshot() Snapshot {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return Snapshot{
		Name:         n.name,
		Neighbors:    append([]string(nil), n.neighborList...),
		Holder:       n.holder.String(),
		Using:        n.using,
		Asked:        n.asked,
		RequestQueue: n.requestQ.Snapshot(),
		IsRecovering: n.isRecovering,
	}
}

func (n *Node) peerFromName(name string) types.Peer {
	if name == "self" {
		return types.Self()
	}
	return types.Named(name)
}

// handle is the single entry point the transport calls back into. It
// dispatches on kind; each handler it calls takes the mutex itself, and
// holds it across any critical-section sleep that the event triggers.
func (n *Node) handle(sender string, kind types.Kind, body string) {
	switch kind {
	case types.Request:
		n.onRequest(sender)
	case types.Privilege:
		n.onPrivilege()
	case types.Initialize:
		n.onInitialize(sender)
	case types.Restart:
		n.onRestart(sender)
	case types.Advise:
		n.onAdvise(sender, body)
	default:
		n.log.Warnf("unknown message kind %q from %s", kind, sender)
	}
}

// InitializeNetwork is the local seed operation: this node declares itself
// the initial holder and propagates initialize to every neighbor.
func (n *Node) InitializeNetwork() {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.holder = types.Self()
	for _, neighbor := range n.neighborList {
		n.sendLocked(neighbor, types.Initialize, "")
	}
}

// AskForCriticalSection is the local ask_for_critical_section operation:
// push self onto request_q and run step.
func (n *Node) AskForCriticalSection() {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	assertNoDuplicate(n.requestQ.Contains("self"), "self", "request_q")
	if n.requestQ.Contains("self") {
		return
	}
	n.requestQ.Push("self")
	n.step()
}

// Kill resets local state and enters recovery, then after the grace period
// broadcasts restart to every neighbor (§4.3 recovery subsection). The
// sleep happens without the lock held so in-flight messages for this node
// can still be processed by onRequest/onPrivilege/onInitialize.
func (n *Node) Kill() {
	n.mutex.Lock()
	n.holder = types.None()
	n.using = false
	n.requestQ = queue.New()
	n.asked = false
	n.adviseBuf = make(map[string]types.AdviseTriple)
	n.isRecovering = true
	n.mutex.Unlock()

	n.log.Infof("killed, entering recovery")
	time.Sleep(n.config.RecoveryGracePeriod)

	n.mutex.Lock()
	neighbors := append([]string(nil), n.neighborList...)
	n.mutex.Unlock()

	for _, neighbor := range neighbors {
		cid := helper.NewCorrelationID()
		if err := n.transport.Send(n.name, neighbor, types.Restart, ""); err != nil {
			n.log.Errorf("[%s] failed sending restart to %s: %v", cid, neighbor, err)
			continue
		}
		n.log.Debugf("[%s] sent restart to %s", cid, neighbor)
	}
}

func (n *Node) onRequest(sender string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	assertNoDuplicate(n.requestQ.Contains(sender), sender, "request_q")
	if n.requestQ.Contains(sender) {
		return
	}
	n.requestQ.Push(sender)
	n.step()
}

func (n *Node) onPrivilege() {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	// Always recorded, even mid-recovery: finalizeRecover treats an
	// already-self holder as "a privilege arrived during recovery" and
	// skips reconstructing it from advise triples (§9 item 1).
	n.holder = types.Self()
	n.step()
}

func (n *Node) onInitialize(sender string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	// Re-parenting on a repeated initialize is intentional (§9 item 3).
	n.holder = types.Named(sender)
	for _, neighbor := range n.neighborList {
		if neighbor == sender {
			continue
		}
		n.sendLocked(neighbor, types.Initialize, "")
	}
}

func (n *Node) onRestart(sender string) {
	n.mutex.Lock()
	triple := types.AdviseTriple{
		HolderIsRecoveringNode: n.holder.IsNamed() && n.holder.Name() == sender,
		Asked:                  n.asked,
		RecoveringNodeInQueue:  n.requestQ.Contains(sender),
	}
	n.mutex.Unlock()

	cid := helper.NewCorrelationID()
	if err := n.transport.Send(n.name, sender, types.Advise, triple.Encode()); err != nil {
		n.log.Errorf("[%s] failed sending advise to %s: %v", cid, sender, err)
		return
	}
	n.log.Debugf("[%s] sent advise to %s", cid, sender)
}

func (n *Node) onAdvise(sender, body string) {
	triple, err := types.DecodeAdviseTriple(body)
	if err != nil {
		n.log.Errorf("dropping malformed advise from %s: %v", sender, err)
		return
	}

	n.mutex.Lock()
	defer n.mutex.Unlock()

	if !n.isRecovering {
		n.log.Warnf("ignoring stray advise from %s while not recovering", sender)
		return
	}

	n.adviseBuf[sender] = triple
	if len(n.adviseBuf) == len(n.neighborList) {
		n.finalizeRecover()
	}
}

// finalizeRecover reconstructs holder, asked and request_q from the
// buffered advise triples, implementing §4.3's finalize_recover steps 1-4.
// Assumes mutex is held.
func (n *Node) finalizeRecover() {
	if !n.holder.IsSelf() {
		outward, found := n.firstOutwardNeighbor()
		if found {
			n.holder = types.Named(outward)
		} else {
			n.holder = types.Self()
		}
	}

	if n.holder.IsSelf() {
		n.asked = false
	} else {
		n.asked = n.adviseBuf[n.holder.Name()].Asked
	}

	for neighbor, triple := range n.adviseBuf {
		if triple.HolderIsRecoveringNode && triple.Asked {
			assertNoDuplicate(n.requestQ.Contains(neighbor), neighbor, "request_q")
			if !n.requestQ.Contains(neighbor) {
				n.requestQ.Push(neighbor)
			}
		}
	}

	n.isRecovering = false
	metrics.RecoveriesCompleted.WithLabelValues(n.name).Inc()
	n.log.Infof("recovery finalized: holder=%s asked=%t queue=%v", n.holder, n.asked, n.requestQ.Snapshot())
	n.step()
}

// firstOutwardNeighbor picks any neighbor that reported an edge not
// pointing back at this node (T[0] = false): it lies on the path toward
// the current holder. Tie-break note in §4.3: any such neighbor is
// equally valid at the moment advise was sampled.
func (n *Node) firstOutwardNeighbor() (string, bool) {
	for _, neighbor := range n.neighborList {
		if triple, ok := n.adviseBuf[neighbor]; ok && !triple.HolderIsRecoveringNode {
			return neighbor, true
		}
	}
	return "", false
}

// step runs the two fundamental procedures together, as required after
// every protocol-relevant event. A no-op while recovering.
func (n *Node) step() {
	if n.isRecovering {
		return
	}
	metrics.RequestQueueLength.WithLabelValues(n.name).Set(float64(n.requestQ.Len()))
	n.assignPrivilege()
	n.makeRequest()
}

// assignPrivilege implements §4.3's assign_privilege procedure.
func (n *Node) assignPrivilege() {
	if !n.holder.IsSelf() || n.using || n.requestQ.Empty() {
		return
	}

	head := n.requestQ.Get()
	newHolder := n.peerFromName(head)
	n.holder = newHolder
	n.asked = false
	metrics.RequestQueueLength.WithLabelValues(n.name).Set(float64(n.requestQ.Len()))

	if newHolder.IsSelf() {
		n.using = true
		n.log.Debugf("entering critical section")
		metrics.CriticalSectionEntries.WithLabelValues(n.name).Inc()
		n.criticalSection()
		n.using = false
		n.log.Debugf("exiting critical section")
		n.step()
		return
	}

	n.sendLocked(newHolder.Name(), types.Privilege, "")
}

// makeRequest implements §4.3's make_request procedure.
func (n *Node) makeRequest() {
	if n.holder.IsSelf() || n.requestQ.Empty() || n.asked {
		return
	}
	n.sendLocked(n.holder.Name(), types.Request, "")
	n.asked = true
}

// sendLocked sends while the mutex is already held, logging rather than
// propagating transport errors: a failed send is logged at error level and
// dropped. It is not retried, the node keeps running, and the state change
// that prompted the send stays in place as if the message had gone out.
// Every send gets its own correlation id, logged here on the sending side
// only; the id never goes out on the wire.
func (n *Node) sendLocked(target string, kind types.Kind, body string) {
	cid := helper.NewCorrelationID()
	if err := n.transport.Send(n.name, target, kind, body); err != nil {
		n.log.Errorf("[%s] transport send failure sending %s to %s: %v", cid, kind, target, err)
		return
	}
	n.log.Debugf("[%s] sent %s to %s", cid, kind, target)
}
