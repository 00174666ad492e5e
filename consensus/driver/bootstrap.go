package driver

import (
	"fmt"
	"time"

	"github.com/orbitnet/orbit/consensus/pool"
	"github.com/orbitnet/orbit/model/orbit"
)

// Bootstrap seeds an empty pool with the genesis block and its certificates.
// Genesis is agreed out of band at subnet creation: its proposal, beacon,
// notarization and finalization carry empty signatures and every replica
// derives the identical artifacts from the genesis time alone. With genesis
// finalized the driver leaves AwaitingGenesis on its first step.
func Bootstrap(p *pool.Pool, genesisTime time.Time) (*orbit.BlockProposal, error) {
	if _, ok := p.CurrentRound(); ok {
		return nil, fmt.Errorf("pool is already bootstrapped")
	}

	block := orbit.GenesisBlock()
	block.Timestamp = genesisTime.UTC()
	proposal := &orbit.BlockProposal{
		Block:      block,
		ProposerID: orbit.ZeroID,
		Rank:       0,
	}
	blockID := block.ID()

	artifacts := []orbit.Artifact{
		proposal,
		&orbit.RandomBeacon{Height: 0, Parent: orbit.ZeroID},
		&orbit.Notarization{Height: 0, BlockID: blockID},
		&orbit.Finalization{Height: 0, BlockID: blockID},
	}
	for _, artifact := range artifacts {
		err := p.AddValidated(artifact)
		if err != nil {
			return nil, fmt.Errorf("could not add genesis artifact %s: %w", artifact.Kind(), err)
		}
	}
	return proposal, nil
}
