package consensus

import (
	"github.com/orbitnet/orbit/model/orbit"
)

// Committee is the consensus core's view of subnet topology. Membership is
// versioned by height and supplied by the registry; the core consumes it and
// must tolerate membership changing between heights without invalidating
// already finalized history.
type Committee interface {

	// MembersAt returns the subnet members at the given height, in canonical
	// order. The returned list must not be mutated.
	MembersAt(height orbit.Height) orbit.IdentityList

	// RankAt returns the leader-priority rank of the given node at the given
	// height. Rank 0 is the highest priority. Returns false if the node is
	// not a member at that height, or if the random beacon seeding the
	// height's rank permutation is not validated yet.
	RankAt(height orbit.Height, nodeID orbit.Identifier) (orbit.Rank, bool)

	// Threshold returns the signature-share quorum n-f at the given height.
	Threshold(height orbit.Height) int

	// Self returns this node's identifier.
	Self() orbit.Identifier
}
