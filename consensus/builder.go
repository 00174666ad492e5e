package consensus

import (
	"github.com/orbitnet/orbit/model/orbit"
)

// PayloadBuilder assembles the payload reference for a new block proposal.
// Payload contents (ingress messages, execution input) are outside the
// consensus core; the core only embeds the returned identifier in the block.
type PayloadBuilder interface {
	BuildPayload(height orbit.Height, parent orbit.Identifier) orbit.Identifier
}

// EmptyPayloadBuilder proposes empty blocks. Used when the replica runs
// without an ingress pipeline attached.
type EmptyPayloadBuilder struct{}

var _ PayloadBuilder = (*EmptyPayloadBuilder)(nil)

func (EmptyPayloadBuilder) BuildPayload(_ orbit.Height, _ orbit.Identifier) orbit.Identifier {
	return orbit.ZeroID
}
