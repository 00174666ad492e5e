package orbit_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orbitnet/orbit/model/orbit"
)

func TestErrorPredicates(t *testing.T) {
	id := orbit.HashToID([]byte("artifact"))

	dup := orbit.NewDuplicateArtifactError(id, 3)
	assert.True(t, orbit.IsDuplicateArtifactError(dup))
	assert.False(t, orbit.IsNotFoundError(dup))

	notFound := orbit.NewNotFoundError(id)
	assert.True(t, orbit.IsNotFoundError(notFound))
	assert.False(t, orbit.IsDuplicateArtifactError(notFound))

	verification := orbit.NewVerificationFailedError(id, errors.New("bad sig"))
	assert.True(t, orbit.IsVerificationFailedError(verification))
	assert.False(t, orbit.IsInvalidArtifactError(verification))

	invalid := orbit.NewInvalidArtifactError(id, errors.New("unknown signer"))
	assert.True(t, orbit.IsInvalidArtifactError(invalid))
	assert.False(t, orbit.IsVerificationFailedError(invalid))
}

func TestErrorPredicatesMatchWrapped(t *testing.T) {
	id := orbit.HashToID([]byte("artifact"))
	wrapped := fmt.Errorf("could not insert: %w", orbit.NewDuplicateArtifactError(id, 3))
	assert.True(t, orbit.IsDuplicateArtifactError(wrapped))
}
