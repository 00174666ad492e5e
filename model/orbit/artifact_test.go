package orbit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/orbitnet/orbit/model/orbit"
)

// Artifacts of different kinds over the same fields must still hash to
// distinct identifiers, otherwise a notarization share could collide with
// a finalization share for the same block.
func TestArtifactIDsDistinctAcrossKinds(t *testing.T) {
	height := orbit.Height(7)
	blockID := orbit.HashToID([]byte("block"))
	signer := orbit.HashToID([]byte("signer"))
	sig := orbit.Signature([]byte("signature"))

	notar := &orbit.NotarizationShare{Height: height, BlockID: blockID, Signer: signer, Sig: sig}
	final := &orbit.FinalizationShare{Height: height, BlockID: blockID, Signer: signer, Sig: sig}
	assert.NotEqual(t, notar.ID(), final.ID())

	beacon := &orbit.RandomBeaconShare{Height: height, Parent: blockID, Signer: signer, Sig: sig}
	tape := &orbit.RandomTapeShare{Height: height, Signer: signer, Sig: sig}
	assert.NotEqual(t, beacon.ID(), tape.ID())
}

func TestBlockIDCoversTimestamp(t *testing.T) {
	ts := time.Unix(1700000000, 0).UTC()
	block := orbit.Block{
		Height:  3,
		Parent:  orbit.HashToID([]byte("parent")),
		Payload: orbit.HashToID([]byte("payload")),
	}

	block.Timestamp = ts
	first := block.ID()
	block.Timestamp = ts.Add(time.Second)
	second := block.ID()
	assert.NotEqual(t, first, second)
}

func TestProposalIDMatchesBlockID(t *testing.T) {
	block := orbit.Block{
		Height:    5,
		Parent:    orbit.HashToID([]byte("parent")),
		Payload:   orbit.HashToID([]byte("payload")),
		Timestamp: time.Unix(1700000000, 0).UTC(),
	}
	proposal := &orbit.BlockProposal{
		Block:      &block,
		ProposerID: orbit.HashToID([]byte("proposer")),
		Rank:       2,
		Sig:        []byte("sig"),
	}
	assert.Equal(t, block.ID(), proposal.ID())
}

func TestGenesisBlockStable(t *testing.T) {
	assert.Equal(t, orbit.GenesisBlock().ID(), orbit.GenesisBlock().ID())
	assert.Equal(t, orbit.Height(0), orbit.GenesisBlock().Height)
	assert.Equal(t, orbit.ZeroID, orbit.GenesisBlock().Parent)
}
