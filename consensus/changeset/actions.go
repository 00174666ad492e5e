package changeset

import (
	"fmt"

	"github.com/orbitnet/orbit/model/orbit"
)

// ChangeAction describes one atomic pool mutation. The change-set engine
// produces an ordered sequence of actions; the applier applies them strictly
// in that order.
type ChangeAction interface {
	fmt.Stringer
	isChangeAction()
}

// ChangeSet is an ordered sequence of pool mutations.
type ChangeSet []ChangeAction

// AddToValidated adds a locally produced artifact to the validated section.
// The driver also hands the artifact to the transport layer for broadcast.
type AddToValidated struct {
	Artifact orbit.Artifact
}

// MoveToValidated promotes an externally received artifact whose signature
// verified from the unvalidated to the validated section.
type MoveToValidated struct {
	ArtifactID orbit.Identifier
	Height     orbit.Height
}

// PurgeUnvalidatedBelow removes unvalidated artifacts strictly below Height.
type PurgeUnvalidatedBelow struct {
	Height orbit.Height
}

// PurgeValidatedBelow removes validated artifacts strictly below Height.
type PurgeValidatedBelow struct {
	Height orbit.Height
}

func (AddToValidated) isChangeAction()        {}
func (MoveToValidated) isChangeAction()       {}
func (PurgeUnvalidatedBelow) isChangeAction() {}
func (PurgeValidatedBelow) isChangeAction()   {}

func (a AddToValidated) String() string {
	return fmt.Sprintf("add_to_validated(%s, height=%d)", a.Artifact.Kind(), a.Artifact.ArtifactHeight())
}

func (a MoveToValidated) String() string {
	return fmt.Sprintf("move_to_validated(%v, height=%d)", a.ArtifactID, a.Height)
}

func (a PurgeUnvalidatedBelow) String() string {
	return fmt.Sprintf("purge_unvalidated_below(%d)", a.Height)
}

func (a PurgeValidatedBelow) String() string {
	return fmt.Sprintf("purge_validated_below(%d)", a.Height)
}
