package orbit

// ArtifactKind discriminates the consensus artifact variants held by the pool.
type ArtifactKind uint8

const (
	KindRandomBeaconShare ArtifactKind = iota + 1
	KindRandomBeacon
	KindRandomTapeShare
	KindRandomTape
	KindBlockProposal
	KindNotarizationShare
	KindNotarization
	KindFinalizationShare
	KindFinalization
	KindCatchUpShare
	KindCatchUpPackage
)

var kindStrings = map[ArtifactKind]string{
	KindRandomBeaconShare: "random_beacon_share",
	KindRandomBeacon:      "random_beacon",
	KindRandomTapeShare:   "random_tape_share",
	KindRandomTape:        "random_tape",
	KindBlockProposal:     "block_proposal",
	KindNotarizationShare: "notarization_share",
	KindNotarization:      "notarization",
	KindFinalizationShare: "finalization_share",
	KindFinalization:      "finalization",
	KindCatchUpShare:      "catch_up_share",
	KindCatchUpPackage:    "catch_up_package",
}

func (k ArtifactKind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return "unknown"
}

// Artifact is the sum type over everything the consensus pool stores. Each
// artifact belongs to exactly one height and is addressed by its content hash.
type Artifact interface {
	// ID returns the content hash identifying the artifact. Equal IDs mean
	// equal artifacts across the whole subnet.
	ID() Identifier
	// ArtifactHeight returns the round the artifact belongs to.
	ArtifactHeight() Height
	// Kind returns the variant discriminant.
	Kind() ArtifactKind
}

// artifactBody tags the hashed encoding with the kind so that two variants
// with identical fields can never collide on ID.
type artifactBody struct {
	Kind ArtifactKind
	Body interface{}
}

func makeArtifactID(kind ArtifactKind, body interface{}) Identifier {
	return MakeID(artifactBody{Kind: kind, Body: body})
}
