package changeset

import (
	"errors"

	"github.com/orbitnet/orbit/consensus/signature"
	"github.com/orbitnet/orbit/model/orbit"
)

// beaconActions advances the random beacon chain at one height: contribute
// this node's share if missing, and aggregate once a quorum of shares for
// the validated parent is available.
func (p *pass) beaconActions(height orbit.Height) {
	if len(p.artifacts(height, orbit.KindRandomBeacon)) > 0 {
		return
	}
	parents := p.artifacts(height-1, orbit.KindRandomBeacon)
	if len(parents) == 0 {
		// chain can only grow one link at a time
		return
	}
	parentID := parents[0].ID()

	shares := make([]*orbit.RandomBeaconShare, 0)
	selfSigned := false
	for _, artifact := range p.artifacts(height, orbit.KindRandomBeaconShare) {
		share := artifact.(*orbit.RandomBeaconShare)
		if share.Parent != parentID {
			continue
		}
		shares = append(shares, share)
		if share.Signer == p.committee.Self() {
			selfSigned = true
		}
	}

	if !selfSigned && p.selfIsMember(height) {
		sig, err := p.signer.Sign(signature.BeaconPayload(height, parentID))
		if err != nil {
			p.log.Error().Err(err).Uint64("height", uint64(height)).Msg("could not sign beacon share")
			return
		}
		share := &orbit.RandomBeaconShare{
			Height: height,
			Parent: parentID,
			Signer: p.committee.Self(),
			Sig:    sig,
		}
		p.add(share)
		shares = append(shares, share)
	}

	agg, ok := p.combineShares(height, sharesToPairs(shares))
	if !ok {
		return
	}
	p.add(&orbit.RandomBeacon{Height: height, Parent: parentID, Sig: agg})
}

// tapeActions produces the execution randomness for one height, following
// the same share-then-aggregate pattern as the beacon but without chaining.
func (p *pass) tapeActions(height orbit.Height) {
	if len(p.artifacts(height, orbit.KindRandomTape)) > 0 {
		return
	}

	shares := make([]sharePair, 0)
	selfSigned := false
	for _, artifact := range p.artifacts(height, orbit.KindRandomTapeShare) {
		share := artifact.(*orbit.RandomTapeShare)
		shares = append(shares, sharePair{signer: share.Signer, sig: share.Sig})
		if share.Signer == p.committee.Self() {
			selfSigned = true
		}
	}

	if !selfSigned && p.selfIsMember(height) {
		sig, err := p.signer.Sign(signature.TapePayload(height))
		if err != nil {
			p.log.Error().Err(err).Uint64("height", uint64(height)).Msg("could not sign tape share")
			return
		}
		share := &orbit.RandomTapeShare{Height: height, Signer: p.committee.Self(), Sig: sig}
		p.add(share)
		shares = append(shares, sharePair{signer: share.Signer, sig: share.Sig})
	}

	agg, ok := p.combineShares(height, shares)
	if !ok {
		return
	}
	p.add(&orbit.RandomTape{Height: height, Sig: agg})
}

// sharePair is one (signer, signature) contribution to an aggregate.
type sharePair struct {
	signer orbit.Identifier
	sig    orbit.Signature
}

func sharesToPairs(shares []*orbit.RandomBeaconShare) []sharePair {
	pairs := make([]sharePair, 0, len(shares))
	for _, share := range shares {
		pairs = append(pairs, sharePair{signer: share.Signer, sig: share.Sig})
	}
	return pairs
}

// combineShares aggregates the given contributions against the height's
// quorum threshold. Returns false while the threshold is not met; that is
// the expected not-yet condition, rechecked next pass.
func (p *pass) combineShares(height orbit.Height, shares []sharePair) (orbit.AggregatedSignature, bool) {
	sigs := make([]orbit.Signature, 0, len(shares))
	signers := make([]orbit.Identifier, 0, len(shares))
	for _, share := range shares {
		sigs = append(sigs, share.sig)
		signers = append(signers, share.signer)
	}

	agg, err := p.combiner.Combine(sigs, signers, p.committee.Threshold(height))
	if err != nil {
		if !errors.Is(err, orbit.ErrInsufficientShares) {
			p.log.Warn().Err(err).Uint64("height", uint64(height)).Msg("share combination failed")
		}
		return orbit.AggregatedSignature{}, false
	}
	return agg, true
}
