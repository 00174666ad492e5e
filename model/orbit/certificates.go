package orbit

// NotarizationShare endorses one block as a valid candidate at its height.
type NotarizationShare struct {
	Height  Height
	BlockID Identifier
	Signer  Identifier
	Sig     Signature
}

func (s *NotarizationShare) ID() Identifier {
	return makeArtifactID(KindNotarizationShare, struct {
		Height  Height
		BlockID Identifier
		Signer  Identifier
	}{s.Height, s.BlockID, s.Signer})
}

func (s *NotarizationShare) ArtifactHeight() Height { return s.Height }
func (s *NotarizationShare) Kind() ArtifactKind     { return KindNotarizationShare }

// Notarization is the quorum-certified endorsement that a block is a valid
// candidate at its height. Several blocks may be notarized at one height;
// that condition is equivocation and stalls finalization there.
type Notarization struct {
	Height  Height
	BlockID Identifier
	Sig     AggregatedSignature
}

func (n *Notarization) ID() Identifier {
	return makeArtifactID(KindNotarization, struct {
		Height  Height
		BlockID Identifier
	}{n.Height, n.BlockID})
}

func (n *Notarization) ArtifactHeight() Height { return n.Height }
func (n *Notarization) Kind() ArtifactKind     { return KindNotarization }

// FinalizationShare is one node's vote that a notarized block is the unique
// permanent choice at its height. Honest nodes only emit it when they have
// notarized no other block at that height.
type FinalizationShare struct {
	Height  Height
	BlockID Identifier
	Signer  Identifier
	Sig     Signature
}

func (s *FinalizationShare) ID() Identifier {
	return makeArtifactID(KindFinalizationShare, struct {
		Height  Height
		BlockID Identifier
		Signer  Identifier
	}{s.Height, s.BlockID, s.Signer})
}

func (s *FinalizationShare) ArtifactHeight() Height { return s.Height }
func (s *FinalizationShare) Kind() ArtifactKind     { return KindFinalizationShare }

// Finalization is the quorum-certified decision that a block is the unique
// permanent choice at its height. At most one finalization per height can
// ever become validated on a correct subnet.
type Finalization struct {
	Height  Height
	BlockID Identifier
	Sig     AggregatedSignature
}

func (f *Finalization) ID() Identifier {
	return makeArtifactID(KindFinalization, struct {
		Height  Height
		BlockID Identifier
	}{f.Height, f.BlockID})
}

func (f *Finalization) ArtifactHeight() Height { return f.Height }
func (f *Finalization) Kind() ArtifactKind     { return KindFinalization }
