package committee_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitnet/orbit/consensus/committee"
	"github.com/orbitnet/orbit/consensus/pool"
	"github.com/orbitnet/orbit/model/orbit"
	"github.com/orbitnet/orbit/utils/unittest"
)

// seedPool returns a pool holding a validated random beacon at the given
// height, so ranks at height+1 are derivable.
func seedPool(t *testing.T, height orbit.Height) *pool.Pool {
	p := pool.NewPool(time.Now())
	beacon := &orbit.RandomBeacon{
		Height: height,
		Parent: unittest.IdentifierFixture(),
	}
	require.NoError(t, p.AddValidated(beacon))
	return p
}

func TestRankAtAssignsDistinctTotalRanks(t *testing.T) {
	members, _ := unittest.CommitteeFixture(7)
	p := seedPool(t, 0)
	com, err := committee.NewStatic(members, members[0].NodeID, p)
	require.NoError(t, err)

	seen := make(map[orbit.Rank]orbit.Identifier)
	for _, member := range members {
		rank, ok := com.RankAt(1, member.NodeID)
		require.True(t, ok)
		_, taken := seen[rank]
		require.False(t, taken, "rank %d assigned twice", rank)
		seen[rank] = member.NodeID
	}
	// ranks form exactly 0..n-1
	for rank := orbit.Rank(0); int(rank) < len(members); rank++ {
		assert.Contains(t, seen, rank)
	}
}

func TestRankAtDeterministicAcrossReplicas(t *testing.T) {
	members, _ := unittest.CommitteeFixture(5)
	p := seedPool(t, 3)

	// two committees over the same members and pool must agree on every rank
	first, err := committee.NewStatic(members, members[0].NodeID, p)
	require.NoError(t, err)
	second, err := committee.NewStatic(members, members[1].NodeID, p)
	require.NoError(t, err)

	for _, member := range members {
		rankA, okA := first.RankAt(4, member.NodeID)
		rankB, okB := second.RankAt(4, member.NodeID)
		require.True(t, okA)
		require.True(t, okB)
		assert.Equal(t, rankA, rankB)
	}
}

func TestRankAtDependsOnBeaconSeed(t *testing.T) {
	members, _ := unittest.CommitteeFixture(16)

	// two heights with distinct beacons should (virtually always) shuffle
	// at least one member to a different rank
	p := pool.NewPool(time.Now())
	require.NoError(t, p.AddValidated(&orbit.RandomBeacon{Height: 1, Parent: unittest.IdentifierFixture()}))
	require.NoError(t, p.AddValidated(&orbit.RandomBeacon{Height: 2, Parent: unittest.IdentifierFixture()}))
	com, err := committee.NewStatic(members, members[0].NodeID, p)
	require.NoError(t, err)

	differs := false
	for _, member := range members {
		rankA, ok := com.RankAt(2, member.NodeID)
		require.True(t, ok)
		rankB, ok := com.RankAt(3, member.NodeID)
		require.True(t, ok)
		if rankA != rankB {
			differs = true
		}
	}
	assert.True(t, differs)
}

func TestRankAtUnavailableCases(t *testing.T) {
	members, _ := unittest.CommitteeFixture(4)
	p := seedPool(t, 0)
	com, err := committee.NewStatic(members, members[0].NodeID, p)
	require.NoError(t, err)

	// genesis is bootstrapped, never ranked
	_, ok := com.RankAt(0, members[0].NodeID)
	assert.False(t, ok)

	// no validated beacon at height 1 yet, so height 2 has no ranks
	_, ok = com.RankAt(2, members[0].NodeID)
	assert.False(t, ok)

	// non-members have no rank
	_, ok = com.RankAt(1, unittest.IdentifierFixture())
	assert.False(t, ok)
}

func TestThreshold(t *testing.T) {
	cases := []struct {
		n         int
		threshold int
	}{
		{1, 1},
		{4, 3},
		{7, 5},
		{10, 7},
	}
	for _, tc := range cases {
		members, _ := unittest.CommitteeFixture(tc.n)
		com, err := committee.NewStatic(members, members[0].NodeID, pool.NewPool(time.Now()))
		require.NoError(t, err)
		assert.Equal(t, tc.threshold, com.Threshold(1), "n=%d", tc.n)
	}
}
