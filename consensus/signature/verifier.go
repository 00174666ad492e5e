package signature

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/orbitnet/orbit/consensus"
	"github.com/orbitnet/orbit/model/orbit"
)

// Verifier checks artifact signatures against the committee's member keys.
// A failed check permanently rejects that one artifact.
type Verifier struct {
	committee consensus.Committee
	combiner  *Combiner
}

var _ consensus.Verifier = (*Verifier)(nil)

func NewVerifier(committee consensus.Committee) *Verifier {
	return &Verifier{
		committee: committee,
		combiner:  NewCombiner(),
	}
}

// VerifyArtifact checks the signature carried by the artifact. Error returns:
//   - InvalidArtifactError: signer is not a member at the artifact height, or
//     the aggregate is structurally broken
//   - VerificationFailedError: a signature check failed
func (v *Verifier) VerifyArtifact(artifact orbit.Artifact) error {
	msg, err := SignedPayload(artifact)
	if err != nil {
		return orbit.NewInvalidArtifactError(artifact.ID(), err)
	}

	switch a := artifact.(type) {
	case *orbit.RandomBeaconShare:
		return v.verifyShare(artifact, a.Signer, msg, a.Sig)
	case *orbit.RandomTapeShare:
		return v.verifyShare(artifact, a.Signer, msg, a.Sig)
	case *orbit.NotarizationShare:
		return v.verifyShare(artifact, a.Signer, msg, a.Sig)
	case *orbit.FinalizationShare:
		return v.verifyShare(artifact, a.Signer, msg, a.Sig)
	case *orbit.CatchUpShare:
		return v.verifyShare(artifact, a.Signer, msg, a.Sig)
	case *orbit.BlockProposal:
		return v.verifyProposal(a, msg)
	case *orbit.RandomBeacon:
		return v.verifyAggregate(artifact, msg, a.Sig)
	case *orbit.RandomTape:
		return v.verifyAggregate(artifact, msg, a.Sig)
	case *orbit.Notarization:
		return v.verifyAggregate(artifact, msg, a.Sig)
	case *orbit.Finalization:
		return v.verifyAggregate(artifact, msg, a.Sig)
	case *orbit.CatchUpPackage:
		return v.verifyAggregate(artifact, msg, a.Sig)
	}
	return orbit.NewInvalidArtifactError(artifact.ID(), fmt.Errorf("unknown artifact type %T", artifact))
}

func (v *Verifier) memberKey(height orbit.Height, nodeID orbit.Identifier) (ed25519.PublicKey, error) {
	identity, ok := v.committee.MembersAt(height).Lookup(nodeID)
	if !ok {
		return nil, fmt.Errorf("signer %v is not a member at height %d", nodeID, height)
	}
	if len(identity.PubKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("member %v has invalid public key length %d", nodeID, len(identity.PubKey))
	}
	return ed25519.PublicKey(identity.PubKey), nil
}

func (v *Verifier) verifyShare(artifact orbit.Artifact, signer orbit.Identifier, msg []byte, sig orbit.Signature) error {
	key, err := v.memberKey(artifact.ArtifactHeight(), signer)
	if err != nil {
		return orbit.NewInvalidArtifactError(artifact.ID(), err)
	}
	if !ed25519.Verify(key, msg, sig) {
		return orbit.NewVerificationFailedError(artifact.ID(), fmt.Errorf("share signature of %v invalid", signer))
	}
	return nil
}

func (v *Verifier) verifyProposal(proposal *orbit.BlockProposal, msg []byte) error {
	// the proposer's claimed rank is checked by the change-set engine, which
	// has the beacon context; here we check membership and the signature
	return v.verifyShare(proposal, proposal.ProposerID, msg, proposal.Sig)
}

func (v *Verifier) verifyAggregate(artifact orbit.Artifact, msg []byte, agg orbit.AggregatedSignature) error {
	shares, err := v.combiner.Split(agg)
	if err != nil {
		return orbit.NewInvalidArtifactError(artifact.ID(), err)
	}

	height := artifact.ArtifactHeight()
	seen := make(map[orbit.Identifier]struct{}, len(agg.Signers))
	for i, signer := range agg.Signers {
		if _, ok := seen[signer]; ok {
			return orbit.NewInvalidArtifactError(artifact.ID(), fmt.Errorf("duplicated signer %v", signer))
		}
		seen[signer] = struct{}{}
		key, err := v.memberKey(height, signer)
		if err != nil {
			return orbit.NewInvalidArtifactError(artifact.ID(), err)
		}
		if !ed25519.Verify(key, msg, shares[i]) {
			return orbit.NewVerificationFailedError(artifact.ID(), fmt.Errorf("aggregate share of %v invalid", signer))
		}
	}

	if len(agg.Signers) < v.committee.Threshold(height) {
		return orbit.NewInvalidArtifactError(artifact.ID(),
			errors.New("aggregate signature below quorum threshold"))
	}
	return nil
}
