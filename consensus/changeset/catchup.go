package changeset

import (
	"github.com/orbitnet/orbit/consensus/signature"
	"github.com/orbitnet/orbit/model/orbit"
)

// catchUpActions builds the catch-up package for the newest finalized height
// matching the interval policy: contribute this node's share, aggregate at
// quorum. Packages summarize the chain up to their height for fast-follower
// bootstrap.
func (p *pass) catchUpActions(finalized orbit.Height) {
	eligible := finalized - (finalized % p.cfg.CatchUpInterval)
	if eligible == 0 {
		return
	}
	if len(p.artifacts(eligible, orbit.KindCatchUpPackage)) > 0 {
		return
	}

	finalizations := p.artifacts(eligible, orbit.KindFinalization)
	if len(finalizations) == 0 {
		// already purged or not locally finalized; a package from a peer
		// will cover this height
		return
	}
	blockID := finalizations[0].(*orbit.Finalization).BlockID

	beacons := p.artifacts(eligible, orbit.KindRandomBeacon)
	if len(beacons) == 0 {
		return
	}

	self := p.committee.Self()
	shares := make([]sharePair, 0)
	selfSigned := false
	for _, artifact := range p.artifacts(eligible, orbit.KindCatchUpShare) {
		share := artifact.(*orbit.CatchUpShare)
		if share.BlockID != blockID {
			continue
		}
		shares = append(shares, sharePair{signer: share.Signer, sig: share.Sig})
		if share.Signer == self {
			selfSigned = true
		}
	}

	if !selfSigned && p.selfIsMember(eligible) {
		sig, err := p.signer.Sign(signature.CatchUpPayload(eligible, blockID))
		if err != nil {
			p.log.Error().Err(err).Uint64("height", uint64(eligible)).Msg("could not sign catch-up share")
			return
		}
		share := &orbit.CatchUpShare{Height: eligible, BlockID: blockID, Signer: self, Sig: sig}
		p.add(share)
		shares = append(shares, sharePair{signer: share.Signer, sig: share.Sig})
	}

	agg, ok := p.combineShares(eligible, shares)
	if !ok {
		return
	}
	p.add(&orbit.CatchUpPackage{
		Height:  eligible,
		BlockID: blockID,
		Beacon:  beacons[0].ID(),
		Sig:     agg,
	})
}

// purgeActions bounds pool growth once history falls outside the retention
// windows. Validated history is retained longer than unvalidated input
// because catch-up construction reads finalized artifacts.
func (p *pass) purgeActions(finalized orbit.Height) {
	if finalized > p.cfg.UnvalidatedRetention {
		p.cs = append(p.cs, PurgeUnvalidatedBelow{Height: finalized - p.cfg.UnvalidatedRetention})
	}
	if finalized > p.cfg.ValidatedRetention {
		p.cs = append(p.cs, PurgeValidatedBelow{Height: finalized - p.cfg.ValidatedRetention})
	}
}
