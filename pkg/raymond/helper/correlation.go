// Package helper holds small cross-cutting utilities shared by core and
// the transports, mirroring the teacher's own helper package.
package helper

import "github.com/google/uuid"

// NewCorrelationID returns a fresh identifier for tagging a single
// send/log pair so a node's log lines for one outgoing message can be
// grepped together, independent of the wire routing key.
func NewCorrelationID() string {
	return uuid.NewString()
}
