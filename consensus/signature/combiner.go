package signature

import (
	"crypto/ed25519"
	"fmt"

	"github.com/orbitnet/orbit/consensus"
	"github.com/orbitnet/orbit/model/orbit"
)

// Combiner aggregates signature shares by concatenation, recording the
// contributing signers alongside. Verification of the aggregate re-checks
// every contained share against the common payload.
type Combiner struct{}

var _ consensus.Combiner = (*Combiner)(nil)

func NewCombiner() *Combiner {
	return &Combiner{}
}

// Combine joins the shares of the given signers into an aggregate signature.
// Shares and signers are positionally matched. Returns ErrInsufficientShares
// when fewer than threshold distinct signers contributed; callers treat that
// as "not yet", not as a failure.
func (c *Combiner) Combine(shares []orbit.Signature, signers []orbit.Identifier, threshold int) (orbit.AggregatedSignature, error) {
	if len(shares) != len(signers) {
		return orbit.AggregatedSignature{}, fmt.Errorf("shares and signers length mismatch (%d != %d)", len(shares), len(signers))
	}

	seen := make(map[orbit.Identifier]struct{}, len(signers))
	raw := make([]byte, 0, len(shares)*ed25519.SignatureSize)
	included := make([]orbit.Identifier, 0, len(signers))
	for i, share := range shares {
		if len(share) != ed25519.SignatureSize {
			return orbit.AggregatedSignature{}, fmt.Errorf("share %d has invalid length (%d != %d)", i, len(share), ed25519.SignatureSize)
		}
		if _, ok := seen[signers[i]]; ok {
			// duplicated signer contributes nothing to the quorum
			continue
		}
		seen[signers[i]] = struct{}{}
		raw = append(raw, share...)
		included = append(included, signers[i])
	}

	if len(included) < threshold {
		return orbit.AggregatedSignature{}, fmt.Errorf("%d shares for threshold %d: %w",
			len(included), threshold, orbit.ErrInsufficientShares)
	}

	return orbit.AggregatedSignature{Raw: raw, Signers: included}, nil
}

// Split recovers the individual shares from an aggregate, positionally
// matched with its signers.
func (c *Combiner) Split(agg orbit.AggregatedSignature) ([]orbit.Signature, error) {
	if len(agg.Raw) != len(agg.Signers)*ed25519.SignatureSize {
		return nil, fmt.Errorf("aggregate length %d does not match %d signers", len(agg.Raw), len(agg.Signers))
	}
	shares := make([]orbit.Signature, 0, len(agg.Signers))
	for i := 0; i < len(agg.Signers); i++ {
		shares = append(shares, orbit.Signature(agg.Raw[i*ed25519.SignatureSize:(i+1)*ed25519.SignatureSize]))
	}
	return shares, nil
}
