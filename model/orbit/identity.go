package orbit

import (
	"bytes"
	"sort"
)

// Identity describes one member of a subnet committee.
type Identity struct {
	// NodeID is the unique identifier of the node.
	NodeID Identifier
	// PubKey is the node's public signing key, opaque to the consensus core.
	PubKey []byte
}

// ID implements content addressing for identities.
func (iy Identity) ID() Identifier {
	return iy.NodeID
}

// IdentityList is a list of subnet members. Protocol-visible lists are kept in
// canonical order so that every replica derives identical rank assignments.
type IdentityList []*Identity

// NodeIDs returns the node IDs of all members, preserving order.
func (il IdentityList) NodeIDs() []Identifier {
	ids := make([]Identifier, 0, len(il))
	for _, identity := range il {
		ids = append(ids, identity.NodeID)
	}
	return ids
}

// Lookup returns the identity with the given node ID.
func (il IdentityList) Lookup(nodeID Identifier) (*Identity, bool) {
	for _, identity := range il {
		if identity.NodeID == nodeID {
			return identity, true
		}
	}
	return nil, false
}

// Contains checks membership of the given node ID.
func (il IdentityList) Contains(nodeID Identifier) bool {
	_, ok := il.Lookup(nodeID)
	return ok
}

// Sort returns a copy of the list in canonical order (ascending node ID).
func (il IdentityList) Sort() IdentityList {
	dup := make(IdentityList, len(il))
	copy(dup, il)
	sort.Slice(dup, func(i, j int) bool {
		return bytes.Compare(dup[i].NodeID[:], dup[j].NodeID[:]) < 0
	})
	return dup
}

// Threshold returns the quorum size n-f for the list, where f = (n-1)/3 is
// the maximum number of Byzantine members the subnet tolerates.
func (il IdentityList) Threshold() int {
	n := len(il)
	f := (n - 1) / 3
	return n - f
}
