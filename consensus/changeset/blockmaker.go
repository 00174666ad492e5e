package changeset

import (
	"github.com/orbitnet/orbit/consensus/signature"
	"github.com/orbitnet/orbit/model/orbit"
)

// proposalActions decides whether this node proposes a block at the given
// height. A proposal is only legal once the node's rank timeout has elapsed
// since the round started, and only while no equal-or-higher-priority
// proposal is already validated.
func (p *pass) proposalActions(height orbit.Height) {
	if len(p.artifacts(height, orbit.KindFinalization)) > 0 {
		return
	}

	parentID, ok := p.parentForHeight(height)
	if !ok {
		// no notarized block below: the round is not proposable yet
		return
	}

	self := p.committee.Self()
	rank, ok := p.committee.RankAt(height, self)
	if !ok {
		return
	}

	for _, artifact := range p.artifacts(height, orbit.KindBlockProposal) {
		proposal := artifact.(*orbit.BlockProposal)
		if proposal.ProposerID == self {
			return
		}
		if proposal.Rank <= rank {
			// a higher-or-equal-priority block maker acted already; our own
			// attempt is moot, not cancelled
			return
		}
	}

	start, ok := p.pool.RoundStart(height)
	if !ok {
		return
	}
	if p.now.Before(p.timing.ProposalDeadline(start, rank)) {
		return
	}

	block := &orbit.Block{
		Height:    height,
		Parent:    parentID,
		Payload:   p.payloads.BuildPayload(height, parentID),
		Timestamp: p.now.UTC(),
	}
	sig, err := p.signer.Sign(signature.ProposalPayload(block))
	if err != nil {
		p.log.Error().Err(err).Uint64("height", uint64(height)).Msg("could not sign block proposal")
		return
	}

	p.log.Info().
		Uint64("height", uint64(height)).
		Uint16("rank", uint16(rank)).
		Msg("proposing block")
	p.add(&orbit.BlockProposal{
		Block:      block,
		ProposerID: self,
		Rank:       rank,
		Sig:        sig,
	})
}

// parentForHeight picks the parent for a new proposal at the given height:
// the notarized block one height below whose proposal carries the lowest
// rank, breaking ties by notarization insertion order.
func (p *pass) parentForHeight(height orbit.Height) (orbit.Identifier, bool) {
	notarizations := p.artifacts(height-1, orbit.KindNotarization)
	if len(notarizations) == 0 {
		return orbit.ZeroID, false
	}

	best := notarizations[0].(*orbit.Notarization).BlockID
	bestRank, haveRank := p.proposalRank(height-1, best)
	for _, artifact := range notarizations[1:] {
		candidate := artifact.(*orbit.Notarization).BlockID
		rank, ok := p.proposalRank(height-1, candidate)
		if !ok {
			continue
		}
		if !haveRank || rank < bestRank {
			best, bestRank, haveRank = candidate, rank, true
		}
	}
	return best, true
}

// proposalRank looks up the rank a notarized block was proposed with.
func (p *pass) proposalRank(height orbit.Height, blockID orbit.Identifier) (orbit.Rank, bool) {
	for _, artifact := range p.artifacts(height, orbit.KindBlockProposal) {
		proposal := artifact.(*orbit.BlockProposal)
		if proposal.ID() == blockID {
			return proposal.Rank, true
		}
	}
	return 0, false
}
