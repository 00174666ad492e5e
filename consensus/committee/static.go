package committee

import (
	"encoding/binary"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/crypto/sha3"

	"github.com/orbitnet/orbit/consensus"
	"github.com/orbitnet/orbit/model/orbit"
)

// rankCacheSize bounds the number of per-height rank permutations kept
// around. Ranks are only queried near the current round, so a small window
// suffices.
const rankCacheSize = 64

// Static is a Committee with fixed membership across all heights, backed by
// the registry at subnet creation. Rank ordering still varies per height,
// seeded by the prior height's random beacon read from the validated pool.
type Static struct {
	members   orbit.IdentityList
	self      orbit.Identifier
	pool      consensus.PoolReader
	rankCache *lru.Cache // orbit.Height -> rankTable
}

// rankTable is the materialized permutation for one height, keyed by the
// beacon that seeded it so a cache hit is only valid for the same seed.
type rankTable struct {
	seed  orbit.Identifier
	ranks map[orbit.Identifier]orbit.Rank
}

var _ consensus.Committee = (*Static)(nil)

// NewStatic creates a static committee over the given members. The list is
// stored in canonical order; rank derivation and share verification both
// depend on every replica holding the identical ordering.
func NewStatic(members orbit.IdentityList, self orbit.Identifier, pool consensus.PoolReader) (*Static, error) {
	cache, err := lru.New(rankCacheSize)
	if err != nil {
		return nil, err
	}
	return &Static{
		members:   members.Sort(),
		self:      self,
		pool:      pool,
		rankCache: cache,
	}, nil
}

// MembersAt returns the committee members; static membership ignores height.
func (s *Static) MembersAt(_ orbit.Height) orbit.IdentityList {
	return s.members
}

// Threshold returns the quorum n-f of the committee.
func (s *Static) Threshold(height orbit.Height) int {
	return s.MembersAt(height).Threshold()
}

// Self returns this node's identifier.
func (s *Static) Self() orbit.Identifier {
	return s.self
}

// RankAt derives the node's block-maker rank at the given height. The rank
// permutation is a pure function of the validated beacon at height-1 and the
// canonical member list, so all replicas with the same validated-pool prefix
// agree on it. Returns false if the node is not a member or the seeding
// beacon is not validated yet.
func (s *Static) RankAt(height orbit.Height, nodeID orbit.Identifier) (orbit.Rank, bool) {
	members := s.MembersAt(height)
	if !members.Contains(nodeID) {
		return 0, false
	}
	if height == 0 {
		// genesis is bootstrapped, never proposed
		return 0, false
	}

	seed, ok := s.seedFor(height)
	if !ok {
		return 0, false
	}

	if cached, ok := s.rankCache.Get(height); ok {
		table := cached.(rankTable)
		if table.seed == seed {
			rank, ok := table.ranks[nodeID]
			return rank, ok
		}
	}

	table := rankTable{seed: seed, ranks: permute(members.NodeIDs(), seed)}
	s.rankCache.Add(height, table)
	rank, ok := table.ranks[nodeID]
	return rank, ok
}

// seedFor returns the rank seed for a height: the ID of the validated random
// beacon one height below.
func (s *Static) seedFor(height orbit.Height) (orbit.Identifier, bool) {
	beacons := s.pool.ByHeightAndKind(height-1, orbit.KindRandomBeacon)
	if len(beacons) == 0 {
		return orbit.ZeroID, false
	}
	return beacons[0].ID(), true
}

// permute assigns each node a distinct rank via a Fisher-Yates shuffle driven
// by a SHAKE-256 stream over the seed. The draw sequence depends only on
// (seed, canonical member order), keeping the permutation replica-independent.
func permute(nodeIDs []orbit.Identifier, seed orbit.Identifier) map[orbit.Identifier]orbit.Rank {
	shuffled := make([]orbit.Identifier, len(nodeIDs))
	copy(shuffled, nodeIDs)

	stream := sha3.NewShake256()
	_, _ = stream.Write(seed[:])
	var buf [8]byte
	for i := len(shuffled) - 1; i > 0; i-- {
		_, _ = stream.Read(buf[:])
		j := binary.BigEndian.Uint64(buf[:]) % uint64(i+1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	ranks := make(map[orbit.Identifier]orbit.Rank, len(shuffled))
	for i, nodeID := range shuffled {
		ranks[nodeID] = orbit.Rank(i)
	}
	return ranks
}
