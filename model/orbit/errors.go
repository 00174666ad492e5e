package orbit

import (
	"errors"
	"fmt"
)

// DuplicateArtifactError indicates that an artifact with the same identity is
// already present in the pool. Benign: the artifact is logged and discarded.
type DuplicateArtifactError struct {
	ArtifactID Identifier
	Height     Height
}

func NewDuplicateArtifactError(id Identifier, height Height) error {
	return DuplicateArtifactError{ArtifactID: id, Height: height}
}

func (e DuplicateArtifactError) Error() string {
	return fmt.Sprintf("duplicate artifact %v at height %d", e.ArtifactID, e.Height)
}

// IsDuplicateArtifactError returns whether err is a DuplicateArtifactError.
func IsDuplicateArtifactError(err error) bool {
	var e DuplicateArtifactError
	return errors.As(err, &e)
}

// NotFoundError indicates that a referenced artifact is absent from the pool
// section it was expected in. This is a symptom of a lost race with a
// concurrent apply: the action was already satisfied, so callers log and
// skip, never abort.
type NotFoundError struct {
	ArtifactID Identifier
}

func NewNotFoundError(id Identifier) error {
	return NotFoundError{ArtifactID: id}
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("artifact %v not found", e.ArtifactID)
}

// IsNotFoundError returns whether err is a NotFoundError.
func IsNotFoundError(err error) bool {
	var e NotFoundError
	return errors.As(err, &e)
}

// VerificationFailedError indicates that an artifact's signature did not
// verify. The artifact is permanently rejected; no retry, no effect on any
// other artifact.
type VerificationFailedError struct {
	ArtifactID Identifier
	Err        error
}

func NewVerificationFailedError(id Identifier, err error) error {
	return VerificationFailedError{ArtifactID: id, Err: err}
}

func (e VerificationFailedError) Error() string {
	return fmt.Sprintf("verification of artifact %v failed: %s", e.ArtifactID, e.Err)
}

func (e VerificationFailedError) Unwrap() error { return e.Err }

// IsVerificationFailedError returns whether err is a VerificationFailedError.
func IsVerificationFailedError(err error) bool {
	var e VerificationFailedError
	return errors.As(err, &e)
}

// ErrInsufficientShares signals that fewer shares than the quorum threshold
// are available for combination. Not a failure of any artifact: the
// corresponding change action simply is not producible yet and will be
// rechecked on the next engine pass.
var ErrInsufficientShares = errors.New("insufficient signature shares for threshold")

// InvalidArtifactError indicates an artifact that is structurally broken
// (wrong height linkage, unknown signer, malformed reference) independent of
// its signature. Permanently rejected, like a verification failure.
type InvalidArtifactError struct {
	ArtifactID Identifier
	Err        error
}

func NewInvalidArtifactError(id Identifier, err error) error {
	return InvalidArtifactError{ArtifactID: id, Err: err}
}

func (e InvalidArtifactError) Error() string {
	return fmt.Sprintf("invalid artifact %v: %s", e.ArtifactID, e.Err)
}

func (e InvalidArtifactError) Unwrap() error { return e.Err }

// IsInvalidArtifactError returns whether err is an InvalidArtifactError.
func IsInvalidArtifactError(err error) bool {
	var e InvalidArtifactError
	return errors.As(err, &e)
}
