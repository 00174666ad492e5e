package changeset

import (
	"github.com/orbitnet/orbit/consensus/signature"
	"github.com/orbitnet/orbit/model/orbit"
)

// notarizationActions contributes this node's notarization share for the
// best proposal at a height and aggregates any proposal that has reached the
// quorum of shares.
func (p *pass) notarizationActions(height orbit.Height) {
	proposals := p.artifacts(height, orbit.KindBlockProposal)
	if len(proposals) == 0 {
		return
	}

	self := p.committee.Self()

	// an honest node endorses only the lowest-rank proposal it has seen
	if p.selfIsMember(height) && len(p.artifacts(height, orbit.KindFinalization)) == 0 {
		best := proposals[0].(*orbit.BlockProposal)
		for _, artifact := range proposals[1:] {
			proposal := artifact.(*orbit.BlockProposal)
			if proposal.Rank < best.Rank {
				best = proposal
			}
		}
		if !p.hasNotarizationShareFrom(height, self) {
			sig, err := p.signer.Sign(signature.NotarizationPayload(height, best.ID()))
			if err != nil {
				p.log.Error().Err(err).Uint64("height", uint64(height)).Msg("could not sign notarization share")
			} else {
				p.add(&orbit.NotarizationShare{
					Height:  height,
					BlockID: best.ID(),
					Signer:  self,
					Sig:     sig,
				})
			}
		}
	}

	// aggregate per distinct block, preserving share insertion order for the
	// deterministic emission order of notarizations
	var order []orbit.Identifier
	byBlock := make(map[orbit.Identifier][]sharePair)
	for _, artifact := range p.artifacts(height, orbit.KindNotarizationShare) {
		share := artifact.(*orbit.NotarizationShare)
		if _, ok := byBlock[share.BlockID]; !ok {
			order = append(order, share.BlockID)
		}
		byBlock[share.BlockID] = append(byBlock[share.BlockID], sharePair{signer: share.Signer, sig: share.Sig})
	}

	for _, blockID := range order {
		if p.blockHasNotarization(height, blockID) {
			continue
		}
		agg, ok := p.combineShares(height, byBlock[blockID])
		if !ok {
			continue
		}
		p.log.Info().
			Uint64("height", uint64(height)).
			Hex("block_id", blockID[:]).
			Msg("block notarized")
		p.add(&orbit.Notarization{Height: height, BlockID: blockID, Sig: agg})
	}
}

// finalizationActions emits finalization shares and the aggregate
// finalization for a height with a unique notarized block. Two or more
// notarized blocks at one height is equivocation: finalization stalls there
// until the fork is resolved through the parent chain of a later round.
func (p *pass) finalizationActions(height orbit.Height) {
	if len(p.artifacts(height, orbit.KindFinalization)) > 0 {
		return
	}

	notarizations := p.artifacts(height, orbit.KindNotarization)
	if len(notarizations) == 0 {
		return
	}
	if len(notarizations) > 1 {
		p.log.Warn().
			Uint64("height", uint64(height)).
			Int("notarized_blocks", len(notarizations)).
			Msg("equivocation detected, finalization stalled at height")
		return
	}
	blockID := notarizations[0].(*orbit.Notarization).BlockID

	self := p.committee.Self()
	shares := make([]sharePair, 0)
	selfSigned := false
	for _, artifact := range p.artifacts(height, orbit.KindFinalizationShare) {
		share := artifact.(*orbit.FinalizationShare)
		if share.BlockID != blockID {
			continue
		}
		shares = append(shares, sharePair{signer: share.Signer, sig: share.Sig})
		if share.Signer == self {
			selfSigned = true
		}
	}

	if !selfSigned && p.selfIsMember(height) {
		sig, err := p.signer.Sign(signature.FinalizationPayload(height, blockID))
		if err != nil {
			p.log.Error().Err(err).Uint64("height", uint64(height)).Msg("could not sign finalization share")
			return
		}
		share := &orbit.FinalizationShare{Height: height, BlockID: blockID, Signer: self, Sig: sig}
		p.add(share)
		shares = append(shares, sharePair{signer: share.Signer, sig: share.Sig})
	}

	agg, ok := p.combineShares(height, shares)
	if !ok {
		return
	}
	p.log.Info().
		Uint64("height", uint64(height)).
		Hex("block_id", blockID[:]).
		Msg("block finalized")
	p.add(&orbit.Finalization{Height: height, BlockID: blockID, Sig: agg})
}

func (p *pass) hasNotarizationShareFrom(height orbit.Height, signer orbit.Identifier) bool {
	for _, artifact := range p.artifacts(height, orbit.KindNotarizationShare) {
		if artifact.(*orbit.NotarizationShare).Signer == signer {
			return true
		}
	}
	return false
}

func (p *pass) blockHasNotarization(height orbit.Height, blockID orbit.Identifier) bool {
	for _, artifact := range p.artifacts(height, orbit.KindNotarization) {
		if artifact.(*orbit.Notarization).BlockID == blockID {
			return true
		}
	}
	return false
}
