package consensus

import (
	"github.com/orbitnet/orbit/model/orbit"
)

// Signer produces this node's signature shares. The consensus core treats
// signing as an opaque capability; key management lives outside.
type Signer interface {

	// Sign signs the given payload with this node's share key.
	Sign(payload []byte) (orbit.Signature, error)
}

// Verifier checks artifact signatures against the committee's keys. A
// verification failure is a permanent reject of that one artifact; the core
// never retries it and no other artifact is affected.
type Verifier interface {

	// VerifyArtifact checks the signature (or aggregate signature) carried by
	// the artifact. Returns VerificationFailedError on a bad signature and
	// InvalidArtifactError on structural problems such as an unknown signer.
	VerifyArtifact(artifact orbit.Artifact) error
}

// Combiner aggregates a quorum of signature shares into an aggregate
// signature.
type Combiner interface {

	// Combine combines the shares of the given signers. Returns
	// ErrInsufficientShares when fewer than threshold shares are provided;
	// the caller treats that as "not producible yet", not as a failure.
	Combine(shares []orbit.Signature, signers []orbit.Identifier, threshold int) (orbit.AggregatedSignature, error)
}
