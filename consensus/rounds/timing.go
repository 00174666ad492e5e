package rounds

import (
	"fmt"
	"time"

	"github.com/orbitnet/orbit/model/orbit"
)

// Config parameterizes round timing. The zero value is invalid; construct
// via NewConfig.
type Config struct {
	// UnitDelay is the extra wait per rank step before a backup block maker
	// activates. Rank 0 proposes immediately, rank r waits r*UnitDelay.
	UnitDelay time.Duration
}

// NewConfig validates the timing parameters. UnitDelay must be positive so
// that rank timeouts are strictly monotone: at most one proposer's window is
// open at any instant before the backups activate.
func NewConfig(unitDelay time.Duration) (Config, error) {
	if unitDelay <= 0 {
		return Config{}, fmt.Errorf("unit delay must be positive, got %v", unitDelay)
	}
	return Config{UnitDelay: unitDelay}, nil
}

// TimeoutFor returns the block-maker timeout for the given rank, measured
// from the round's start. Strictly increasing in rank.
func (c Config) TimeoutFor(rank orbit.Rank) time.Duration {
	return time.Duration(rank) * c.UnitDelay
}

// ProposalDeadline returns the earliest instant the block maker with the
// given rank may propose in a round that started at start.
func (c Config) ProposalDeadline(start time.Time, rank orbit.Rank) time.Time {
	return start.Add(c.TimeoutFor(rank))
}
