package consensus

import (
	"github.com/orbitnet/orbit/model/orbit"
)

// FinalizationConsumer receives the finalized-height callback from the
// driver. Heights are delivered strictly monotonically increasing, exactly
// once per height. Implementations must be non-blocking; the state manager
// picks up execution from here.
type FinalizationConsumer interface {

	// OnFinalized is called when a block becomes finalized. The proposal is
	// the unique surviving block at its height; fin is the aggregate
	// finalization certifying it.
	OnFinalized(proposal *orbit.BlockProposal, fin *orbit.Finalization)
}

// CatchUpConsumer receives validated catch-up packages from the driver.
// Optional companion to FinalizationConsumer; a consumer implementing it is
// handed every catch-up package entering the validated pool section, whether
// aggregated locally or received from a peer.
type CatchUpConsumer interface {

	// OnCatchUpPackage is called when a catch-up package becomes validated.
	// Implementations must be non-blocking.
	OnCatchUpPackage(cup *orbit.CatchUpPackage)
}

// Broadcaster hands locally produced artifacts to the transport layer. The
// call must not block on network I/O; delivery is best effort and never
// acknowledged back into the core.
type Broadcaster interface {
	Broadcast(artifact orbit.Artifact)
}
