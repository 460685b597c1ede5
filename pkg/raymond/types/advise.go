package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// AdviseTriple is a neighbor's view of its edge to a recovering node,
// sent in reply to a restart message:
//
//	(holder_is_recovering_node, asked, recovering_node_in_request_q)
type AdviseTriple struct {
	HolderIsRecoveringNode bool
	Asked                  bool
	RecoveringNodeInQueue  bool
}

// ErrMalformedAdvise is returned when an advise body does not match the
// textual triple format pinned by the wire format section.
var ErrMalformedAdvise = errors.New("raymond: malformed advise body")

// Encode renders the triple exactly as the wire format section specifies:
// the textual form "(bool, bool, bool)".
func (t AdviseTriple) Encode() string {
	return fmt.Sprintf("(%t, %t, %t)", t.HolderIsRecoveringNode, t.Asked, t.RecoveringNodeInQueue)
}

// DecodeAdviseTriple parses a body produced by Encode.
func DecodeAdviseTriple(body string) (AdviseTriple, error) {
	var t AdviseTriple
	n, err := fmt.Sscanf(body, "(%t, %t, %t)", &t.HolderIsRecoveringNode, &t.Asked, &t.RecoveringNodeInQueue)
	if err != nil {
		return AdviseTriple{}, errors.Wrapf(ErrMalformedAdvise, "parsing %q: %v", body, err)
	}
	if n != 3 {
		return AdviseTriple{}, errors.Wrapf(ErrMalformedAdvise, "parsing %q: expected 3 fields, got %d", body, n)
	}
	return t, nil
}
