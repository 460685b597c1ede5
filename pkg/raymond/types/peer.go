package types

import "fmt"

// Peer is a tagged variant standing in for the holder/request_q sentinel
// convention of the original algorithm: a slot can name this node itself,
// a neighbor, or nothing at all.
type Peer struct {
	kind peerKind
	name string
}

type peerKind uint8

const (
	peerNone peerKind = iota
	peerSelf
	peerNamed
)

// None is the unset sentinel: a node holds it before initialize_network
// reaches it and while it recovers after a kill.
func None() Peer {
	return Peer{kind: peerNone}
}

// Self represents the owning node.
func Self() Peer {
	return Peer{kind: peerSelf}
}

// Named represents a concrete neighbor by name.
func Named(name string) Peer {
	return Peer{kind: peerNamed, name: name}
}

func (p Peer) IsNone() bool {
	return p.kind == peerNone
}

func (p Peer) IsSelf() bool {
	return p.kind == peerSelf
}

func (p Peer) IsNamed() bool {
	return p.kind == peerNamed
}

// Name returns the neighbor name. Panics if the peer is not a named variant,
// the same way a type-switch on the wrong case would.
func (p Peer) Name() string {
	if p.kind != peerNamed {
		panic(fmt.Sprintf("types: Name() called on non-named peer %s", p))
	}
	return p.name
}

// Equal compares two peers by variant and, for named peers, by identity.
func (p Peer) Equal(other Peer) bool {
	if p.kind != other.kind {
		return false
	}
	return p.kind != peerNamed || p.name == other.name
}

func (p Peer) String() string {
	switch p.kind {
	case peerSelf:
		return "self"
	case peerNamed:
		return p.name
	default:
		return "<none>"
	}
}
