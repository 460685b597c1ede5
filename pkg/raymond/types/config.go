package types

import "time"

// ProtocolVersion is this build's protocol version. It is checked only at
// startup against the --min-protocol-version flag; it is not sent on the
// wire, so peers do not exchange or compare versions.
const ProtocolVersion = "1.0.0"

// NodeConfiguration bundles the parameters a Node is built from. CSDelayMin/
// CSDelayMax bound the simulated critical-section work described in §4.3;
// RecoveryGracePeriod is the fixed wait before a killed node broadcasts
// restart, described in §4.3's recovery subsection.
type NodeConfiguration struct {
	Name                string
	Neighbors           []string
	CSDelayMin          time.Duration
	CSDelayMax          time.Duration
	RecoveryGracePeriod time.Duration
	ProtocolVersion     string
}

// DefaultNodeConfiguration returns the defaults named in §4.3: a 2-3s
// critical-section delay and a 5s recovery grace period.
func DefaultNodeConfiguration(name string, neighbors []string) *NodeConfiguration {
	return &NodeConfiguration{
		Name:                name,
		Neighbors:           neighbors,
		CSDelayMin:          2 * time.Second,
		CSDelayMax:          3 * time.Second,
		RecoveryGracePeriod: 5 * time.Second,
		ProtocolVersion:     ProtocolVersion,
	}
}
