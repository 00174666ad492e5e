package changeset

import (
	"fmt"

	"github.com/orbitnet/orbit/model/orbit"
)

// validationMoves promotes unvalidated artifacts whose prerequisites are in
// the validated pool and whose signatures verify. Artifacts whose
// prerequisites are still missing are left in place and rechecked next pass;
// artifacts that fail verification are permanently rejected in place and
// eventually removed by the unvalidated purge.
func (p *pass) validationMoves() {
	for _, artifact := range p.pool.Unvalidated() {
		ready, err := p.linkage(artifact)
		if err != nil {
			p.log.Debug().
				Hex("artifact_id", loggableID(artifact)).
				Uint64("height", uint64(artifact.ArtifactHeight())).
				Str("kind", artifact.Kind().String()).
				Err(err).
				Msg("rejecting malformed artifact")
			continue
		}
		if !ready {
			continue
		}

		err = p.verifier.VerifyArtifact(artifact)
		if err != nil {
			// permanent reject of this one artifact; nothing else is affected
			p.log.Info().
				Hex("artifact_id", loggableID(artifact)).
				Str("kind", artifact.Kind().String()).
				Err(err).
				Msg("artifact failed verification")
			continue
		}

		p.cs = append(p.cs, MoveToValidated{
			ArtifactID: artifact.ID(),
			Height:     artifact.ArtifactHeight(),
		})
	}
}

// linkage checks the structural prerequisites of an artifact against the
// validated snapshot. Returns (false, nil) when a prerequisite is merely not
// validated yet, and an error when the artifact can never become valid.
func (p *pass) linkage(artifact orbit.Artifact) (bool, error) {
	switch a := artifact.(type) {

	case *orbit.RandomBeaconShare:
		return p.beaconParentMatches(a.Height, a.Parent)

	case *orbit.RandomBeacon:
		return p.beaconParentMatches(a.Height, a.Parent)

	case *orbit.BlockProposal:
		// the parent must be a notarized block one height below
		if !p.blockIsNotarized(a.Block.Height-1, a.Block.Parent) {
			return false, nil
		}
		// the claimed rank must match the beacon-derived assignment
		rank, ok := p.committee.RankAt(a.Block.Height, a.ProposerID)
		if !ok {
			return false, nil
		}
		if rank != a.Rank {
			return false, fmt.Errorf("proposer rank mismatch (claimed %d, assigned %d)", a.Rank, rank)
		}
		return true, nil

	case *orbit.NotarizationShare:
		return p.blockIsValidated(a.Height, a.BlockID), nil

	case *orbit.Notarization:
		return p.blockIsValidated(a.Height, a.BlockID), nil

	case *orbit.FinalizationShare:
		return p.blockIsValidated(a.Height, a.BlockID), nil

	case *orbit.Finalization:
		// at most one finalization per height; a conflicting one can never
		// become valid
		for _, existing := range p.pool.ByHeightAndKind(a.Height, orbit.KindFinalization) {
			if existing.(*orbit.Finalization).BlockID != a.BlockID {
				return false, fmt.Errorf("conflicting finalization at height %d (%v vs %v)",
					a.Height, existing.(*orbit.Finalization).BlockID, a.BlockID)
			}
		}
		return p.blockIsNotarized(a.Height, a.BlockID), nil

	case *orbit.CatchUpShare:
		return p.blockIsValidated(a.Height, a.BlockID), nil

	case *orbit.CatchUpPackage:
		return p.blockIsValidated(a.Height, a.BlockID), nil

	case *orbit.RandomTapeShare, *orbit.RandomTape:
		return true, nil
	}
	return false, fmt.Errorf("unknown artifact type %T", artifact)
}

// beaconParentMatches checks that the referenced parent is the validated
// beacon one height below.
func (p *pass) beaconParentMatches(height orbit.Height, parent orbit.Identifier) (bool, error) {
	if height == 0 {
		return false, fmt.Errorf("beacon at genesis height is bootstrapped, never received")
	}
	parents := p.pool.ByHeightAndKind(height-1, orbit.KindRandomBeacon)
	if len(parents) == 0 {
		return false, nil
	}
	if parents[0].ID() != parent {
		return false, fmt.Errorf("beacon parent mismatch at height %d", height)
	}
	return true, nil
}

// blockIsValidated checks for a validated proposal of the given block.
func (p *pass) blockIsValidated(height orbit.Height, blockID orbit.Identifier) bool {
	for _, artifact := range p.pool.ByHeightAndKind(height, orbit.KindBlockProposal) {
		if artifact.ID() == blockID {
			return true
		}
	}
	return false
}

// blockIsNotarized checks for a validated notarization of the given block.
func (p *pass) blockIsNotarized(height orbit.Height, blockID orbit.Identifier) bool {
	for _, artifact := range p.pool.ByHeightAndKind(height, orbit.KindNotarization) {
		if artifact.(*orbit.Notarization).BlockID == blockID {
			return true
		}
	}
	return false
}

func loggableID(artifact orbit.Artifact) []byte {
	id := artifact.ID()
	return id[:]
}
