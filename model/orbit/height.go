package orbit

// Height is the monotonic round counter of the subnet. Every consensus
// artifact belongs to exactly one height.
type Height uint64

// Rank is a node's position in the leader-priority ordering for one height.
// Rank 0 is the highest priority block maker.
type Rank uint16
