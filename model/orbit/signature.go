package orbit

// Signature is an opaque signature produced by a single node.
type Signature []byte

// AggregatedSignature is the combination of a quorum of signature shares.
// Signers records which committee members contributed, in the order their
// shares were combined.
type AggregatedSignature struct {
	// Raw is the raw aggregate signature bytes.
	Raw []byte
	// Signers are the node IDs of all contributing signers.
	Signers []Identifier
}
