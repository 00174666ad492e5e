package module

import (
	"time"

	"github.com/orbitnet/orbit/model/orbit"
)

// ConsensusMetrics reports the health of the consensus core. Implementations
// must be non-blocking; calls happen on the driver's hot path.
type ConsensusMetrics interface {

	// PoolSize reports the current unvalidated and validated section sizes.
	PoolSize(unvalidated uint, validated uint)

	// IngestQueueLength reports the length of the transport ingest queue.
	IngestQueueLength(length int)

	// FinalizedHeight reports the newest finalized height.
	FinalizedHeight(height orbit.Height)

	// StateChangeDuration reports the duration of one engine pass.
	StateChangeDuration(d time.Duration)

	// ActionsApplied counts applied change actions.
	ActionsApplied(count int)
}
