package orbit

// RandomBeaconShare is one node's contribution to the beacon at a height.
// The share signs over (height, parent beacon ID) so a quorum of shares for
// the same parent combines into the next beacon in the chain.
type RandomBeaconShare struct {
	Height Height
	Parent Identifier
	Signer Identifier
	Sig    Signature
}

func (s *RandomBeaconShare) ID() Identifier {
	return makeArtifactID(KindRandomBeaconShare, struct {
		Height Height
		Parent Identifier
		Signer Identifier
	}{s.Height, s.Parent, s.Signer})
}

func (s *RandomBeaconShare) ArtifactHeight() Height { return s.Height }
func (s *RandomBeaconShare) Kind() ArtifactKind     { return KindRandomBeaconShare }

// RandomBeacon is the aggregated per-height randomness. Beacons form a singly
// linked chain: Parent references the beacon one height below by ID, resolved
// through the pool rather than held as a pointer, so pruned history does not
// pin memory.
type RandomBeacon struct {
	Height Height
	Parent Identifier
	Sig    AggregatedSignature
}

func (b *RandomBeacon) ID() Identifier {
	return makeArtifactID(KindRandomBeacon, struct {
		Height Height
		Parent Identifier
	}{b.Height, b.Parent})
}

func (b *RandomBeacon) ArtifactHeight() Height { return b.Height }
func (b *RandomBeacon) Kind() ArtifactKind     { return KindRandomBeacon }

// RandomTapeShare is one node's contribution to the execution randomness for
// a height. Unlike beacon shares, tape shares are independent per height.
type RandomTapeShare struct {
	Height Height
	Signer Identifier
	Sig    Signature
}

func (s *RandomTapeShare) ID() Identifier {
	return makeArtifactID(KindRandomTapeShare, struct {
		Height Height
		Signer Identifier
	}{s.Height, s.Signer})
}

func (s *RandomTapeShare) ArtifactHeight() Height { return s.Height }
func (s *RandomTapeShare) Kind() ArtifactKind     { return KindRandomTapeShare }

// RandomTape is the aggregated execution randomness for one height, handed to
// the execution layer once the height is finalized.
type RandomTape struct {
	Height Height
	Sig    AggregatedSignature
}

func (t *RandomTape) ID() Identifier {
	return makeArtifactID(KindRandomTape, struct {
		Height Height
	}{t.Height})
}

func (t *RandomTape) ArtifactHeight() Height { return t.Height }
func (t *RandomTape) Kind() ArtifactKind     { return KindRandomTape }
