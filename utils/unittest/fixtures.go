package unittest

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/orbitnet/orbit/model/orbit"
)

// IdentifierFixture returns a random identifier.
func IdentifierFixture() orbit.Identifier {
	var id orbit.Identifier
	_, err := rand.Read(id[:])
	if err != nil {
		panic(fmt.Sprintf("could not read random bytes: %s", err))
	}
	return id
}

// IdentityFixture returns a member identity with a fresh ed25519 key pair.
func IdentityFixture() (*orbit.Identity, ed25519.PrivateKey) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(fmt.Sprintf("could not generate key: %s", err))
	}
	identity := &orbit.Identity{
		NodeID: IdentifierFixture(),
		PubKey: pub,
	}
	return identity, priv
}

// CommitteeFixture returns n member identities in canonical order together
// with their private keys.
func CommitteeFixture(n int) (orbit.IdentityList, map[orbit.Identifier]ed25519.PrivateKey) {
	members := make(orbit.IdentityList, 0, n)
	keys := make(map[orbit.Identifier]ed25519.PrivateKey, n)
	for i := 0; i < n; i++ {
		identity, key := IdentityFixture()
		members = append(members, identity)
		keys[identity.NodeID] = key
	}
	return members.Sort(), keys
}

// BlockFixture returns a block at the given height with a random parent.
func BlockFixture(height orbit.Height) *orbit.Block {
	return &orbit.Block{
		Height:    height,
		Parent:    IdentifierFixture(),
		Payload:   IdentifierFixture(),
		Timestamp: time.Unix(1720000000, 0).UTC(),
	}
}

// ProposalFixture returns an unsigned block proposal for the given block.
func ProposalFixture(block *orbit.Block, proposer orbit.Identifier, rank orbit.Rank) *orbit.BlockProposal {
	return &orbit.BlockProposal{
		Block:      block,
		ProposerID: proposer,
		Rank:       rank,
	}
}
