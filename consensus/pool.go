package consensus

import (
	"time"

	"github.com/orbitnet/orbit/model/orbit"
)

// PoolReader is the read-only view of the artifact pool handed to the
// change-set engine. All reads are consistent snapshots: iteration order
// within one height/kind bucket is the insertion order and is stable across
// repeated calls, which later tie-breaking logic depends on.
type PoolReader interface {

	// ByHeightAndKind returns all validated artifacts of the given kind at
	// the given height, in insertion order. The returned slice is a snapshot
	// owned by the caller.
	ByHeightAndKind(height orbit.Height, kind orbit.ArtifactKind) []orbit.Artifact

	// UnvalidatedByHeightAndKind is the unvalidated-section counterpart of
	// ByHeightAndKind.
	UnvalidatedByHeightAndKind(height orbit.Height, kind orbit.ArtifactKind) []orbit.Artifact

	// Unvalidated returns a snapshot of every unvalidated artifact, ordered
	// by ascending height and insertion order within a height.
	Unvalidated() []orbit.Artifact

	// HasValidated checks whether the artifact with the given ID is in the
	// validated section.
	HasValidated(artifactID orbit.Identifier) bool

	// CurrentRound returns the highest height holding a validated
	// finalization, and false before genesis finalization.
	CurrentRound() (orbit.Height, bool)

	// RoundStart returns the wall-clock instant the given height's round
	// began, i.e. when the prior height first reached notarization quorum.
	// False if the round has not started.
	RoundStart(height orbit.Height) (time.Time, bool)
}

// PoolMutator is the narrow mutation API of the artifact pool. The change
// applier is the single writer of the validated section; unvalidated inserts
// arrive concurrently from the ingest path.
type PoolMutator interface {

	// InsertUnvalidated adds an externally received artifact to the
	// unvalidated section. Returns DuplicateArtifactError if the identity is
	// already present in either section.
	InsertUnvalidated(artifact orbit.Artifact) error

	// MoveToValidated moves the artifact with the given ID from the
	// unvalidated to the validated section. Returns NotFoundError when the
	// artifact is in neither section.
	MoveToValidated(artifactID orbit.Identifier) error

	// AddValidated adds a locally produced artifact directly to the validated
	// section. Adding an artifact that is already validated is a no-op, so
	// re-derived change sets replay cleanly.
	AddValidated(artifact orbit.Artifact) error

	// PurgeUnvalidatedBelow removes every unvalidated artifact with height
	// strictly below the threshold and returns the number removed.
	PurgeUnvalidatedBelow(height orbit.Height) int

	// PurgeValidatedBelow removes every validated artifact with height
	// strictly below the threshold and returns the number removed.
	PurgeValidatedBelow(height orbit.Height) int
}

// Pool combines both faces of the artifact pool.
type Pool interface {
	PoolReader
	PoolMutator
}
