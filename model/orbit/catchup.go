package orbit

// CatchUpShare is one node's contribution to a catch-up package at a height
// matching the catch-up interval policy.
type CatchUpShare struct {
	Height  Height
	BlockID Identifier
	Signer  Identifier
	Sig     Signature
}

func (s *CatchUpShare) ID() Identifier {
	return makeArtifactID(KindCatchUpShare, struct {
		Height  Height
		BlockID Identifier
		Signer  Identifier
	}{s.Height, s.BlockID, s.Signer})
}

func (s *CatchUpShare) ArtifactHeight() Height { return s.Height }
func (s *CatchUpShare) Kind() ArtifactKind     { return KindCatchUpShare }

// CatchUpPackage is a certified summary of the chain up to a finalized
// height. A node joining or rejoining the subnet bootstraps from the newest
// package instead of replaying pruned history.
type CatchUpPackage struct {
	Height  Height
	BlockID Identifier
	// Beacon is the ID of the random beacon at the package height, needed to
	// resume rank derivation for the following heights.
	Beacon Identifier
	Sig    AggregatedSignature
}

func (c *CatchUpPackage) ID() Identifier {
	return makeArtifactID(KindCatchUpPackage, struct {
		Height  Height
		BlockID Identifier
		Beacon  Identifier
	}{c.Height, c.BlockID, c.Beacon})
}

func (c *CatchUpPackage) ArtifactHeight() Height { return c.Height }
func (c *CatchUpPackage) Kind() ArtifactKind     { return KindCatchUpPackage }
