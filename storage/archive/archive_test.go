package archive_test

import (
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitnet/orbit/model/orbit"
	"github.com/orbitnet/orbit/storage/archive"
	"github.com/orbitnet/orbit/utils/unittest"
)

// finalizedFixture returns a proposal and a finalization certifying it.
func finalizedFixture(height orbit.Height) (*orbit.BlockProposal, *orbit.Finalization) {
	proposal := unittest.ProposalFixture(unittest.BlockFixture(height), unittest.IdentifierFixture(), 0)
	fin := &orbit.Finalization{Height: height, BlockID: proposal.ID()}
	return proposal, fin
}

func TestStoreRetrieveFinalized(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		a := archive.NewArchive(unittest.Logger(), db)

		proposal, fin := finalizedFixture(7)
		require.NoError(t, a.StoreFinalized(proposal, fin))

		gotProposal, gotFin, err := a.FinalizedByHeight(7)
		require.NoError(t, err)
		assert.Equal(t, proposal.ID(), gotProposal.ID())
		assert.Equal(t, fin.BlockID, gotFin.BlockID)
		assert.Equal(t, proposal.Block.Height, gotProposal.Block.Height)
	})
}

func TestFinalizedByHeightNotFound(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		a := archive.NewArchive(unittest.Logger(), db)

		_, _, err := a.FinalizedByHeight(42)
		require.Error(t, err)
		assert.True(t, errors.Is(err, archive.ErrNotFound))
	})
}

func TestStoreFinalizedRejectsMismatch(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		a := archive.NewArchive(unittest.Logger(), db)

		proposal, _ := finalizedFixture(3)
		fin := &orbit.Finalization{Height: 3, BlockID: unittest.IdentifierFixture()}
		require.Error(t, a.StoreFinalized(proposal, fin))
	})
}

func TestStoreFinalizedOverwriteTolerated(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		a := archive.NewArchive(unittest.Logger(), db)

		proposal, fin := finalizedFixture(5)
		require.NoError(t, a.StoreFinalized(proposal, fin))
		require.NoError(t, a.StoreFinalized(proposal, fin))

		gotProposal, _, err := a.FinalizedByHeight(5)
		require.NoError(t, err)
		assert.Equal(t, proposal.ID(), gotProposal.ID())
	})
}

func TestOnFinalizedPersists(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		a := archive.NewArchive(unittest.Logger(), db)

		proposal, fin := finalizedFixture(9)
		a.OnFinalized(proposal, fin)

		_, gotFin, err := a.FinalizedByHeight(9)
		require.NoError(t, err)
		assert.Equal(t, fin.BlockID, gotFin.BlockID)
	})
}

func TestOnCatchUpPackagePersists(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		a := archive.NewArchive(unittest.Logger(), db)

		cup := &orbit.CatchUpPackage{
			Height:  16,
			BlockID: unittest.IdentifierFixture(),
			Beacon:  unittest.IdentifierFixture(),
		}
		a.OnCatchUpPackage(cup)

		newest, err := a.NewestCatchUp()
		require.NoError(t, err)
		assert.Equal(t, cup, newest)
	})
}

func TestNewestCatchUp(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		a := archive.NewArchive(unittest.Logger(), db)

		_, err := a.NewestCatchUp()
		require.Error(t, err)
		assert.True(t, errors.Is(err, archive.ErrNotFound))

		// stored out of height order; the newest by height wins
		for _, height := range []orbit.Height{32, 64, 48} {
			require.NoError(t, a.StoreCatchUp(&orbit.CatchUpPackage{
				Height:  height,
				BlockID: unittest.IdentifierFixture(),
				Beacon:  unittest.IdentifierFixture(),
			}))
		}

		newest, err := a.NewestCatchUp()
		require.NoError(t, err)
		assert.Equal(t, orbit.Height(64), newest.Height)
	})
}
