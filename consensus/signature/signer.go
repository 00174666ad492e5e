package signature

import (
	"crypto/ed25519"
	"fmt"

	"github.com/orbitnet/orbit/consensus"
	"github.com/orbitnet/orbit/model/orbit"
)

// Signer signs payloads with this node's ed25519 share key. The consensus
// core only sees the consensus.Signer capability; swapping in a threshold
// scheme is a matter of replacing this implementation.
type Signer struct {
	nodeID orbit.Identifier
	key    ed25519.PrivateKey
}

var _ consensus.Signer = (*Signer)(nil)

// NewSigner wraps a private key as a signing capability.
func NewSigner(nodeID orbit.Identifier, key ed25519.PrivateKey) (*Signer, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length (%d != %d)", len(key), ed25519.PrivateKeySize)
	}
	return &Signer{nodeID: nodeID, key: key}, nil
}

// NodeID returns the identifier the signer signs as.
func (s *Signer) NodeID() orbit.Identifier {
	return s.nodeID
}

// Sign signs the payload. No errors are expected during normal operation.
func (s *Signer) Sign(payload []byte) (orbit.Signature, error) {
	return ed25519.Sign(s.key, payload), nil
}
