package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/orbitnet/orbit/consensus"
	"github.com/orbitnet/orbit/consensus/changeset"
	"github.com/orbitnet/orbit/consensus/pool"
	"github.com/orbitnet/orbit/model/orbit"
	"github.com/orbitnet/orbit/module"
	"github.com/orbitnet/orbit/module/counters"
	"github.com/orbitnet/orbit/module/fifoqueue"
)

// State is the driver's lifecycle state.
type State uint32

const (
	// AwaitingGenesis means the pool holds no finalized block yet.
	AwaitingGenesis State = iota
	// Running means the replica participates in rounds.
	Running
	// Halted means an internal invariant was violated and the driver
	// refuses further pool mutation.
	Halted
)

func (s State) String() string {
	switch s {
	case AwaitingGenesis:
		return "awaiting_genesis"
	case Running:
		return "running"
	case Halted:
		return "halted"
	}
	return "unknown"
}

// defaultIngestCapacity bounds the transport ingest queue.
const defaultIngestCapacity = 4096

// Driver orchestrates time advancement and artifact ingestion: each
// iteration drains the ingest queue into the unvalidated pool section,
// computes the change set for the current instant, applies it, broadcasts
// locally produced artifacts, and delivers finalized-height callbacks.
//
// The driver polls; it never blocks on network I/O. The clock is injected so
// tests advance time synthetically.
type Driver struct {
	log         zerolog.Logger
	pool        *pool.Pool
	engine      *changeset.Engine
	applier     *pool.Applier
	queue       *fifoqueue.FifoQueue
	broadcaster consensus.Broadcaster
	consumer    consensus.FinalizationConsumer
	// catchUp is set when the consumer also implements CatchUpConsumer.
	catchUp consensus.CatchUpConsumer
	metrics module.ConsensusMetrics
	clock       func() time.Time
	interval    time.Duration
	state       *atomic.Uint32
	// finalized tracks the highest height delivered to the consumer, so the
	// callback fires strictly monotonically, exactly once per height.
	finalized counters.StrictMonotonicCounter
	notify    chan struct{}
}

// Option customizes driver construction.
type Option func(*Driver)

// WithClock replaces the wall clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(d *Driver) {
		d.clock = clock
	}
}

// WithPollInterval sets how often the loop re-evaluates the change set when
// no artifacts arrive.
func WithPollInterval(interval time.Duration) Option {
	return func(d *Driver) {
		d.interval = interval
	}
}

// New creates a driver over the given consensus core.
func New(
	log zerolog.Logger,
	p *pool.Pool,
	engine *changeset.Engine,
	applier *pool.Applier,
	broadcaster consensus.Broadcaster,
	consumer consensus.FinalizationConsumer,
	metrics module.ConsensusMetrics,
	opts ...Option,
) (*Driver, error) {
	d := &Driver{
		log:         log.With().Str("component", "driver").Logger(),
		pool:        p,
		engine:      engine,
		applier:     applier,
		broadcaster: broadcaster,
		consumer:    consumer,
		metrics:     metrics,
		clock:       time.Now,
		interval:    50 * time.Millisecond,
		state:       atomic.NewUint32(uint32(AwaitingGenesis)),
		finalized:   counters.NewMonotonicCounter(0),
		notify:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	if cc, ok := consumer.(consensus.CatchUpConsumer); ok {
		d.catchUp = cc
	}

	queue, err := fifoqueue.NewFifoQueue(defaultIngestCapacity, metrics.IngestQueueLength)
	if err != nil {
		return nil, fmt.Errorf("could not create ingest queue: %w", err)
	}
	d.queue = queue

	if _, ok := p.CurrentRound(); ok {
		d.state.Store(uint32(Running))
	}
	return d, nil
}

// State returns the driver's lifecycle state.
func (d *Driver) State() State {
	return State(d.state.Load())
}

// FinalizedHeight returns the newest height delivered to the consumer.
func (d *Driver) FinalizedHeight() orbit.Height {
	return orbit.Height(d.finalized.Value())
}

// Submit hands an externally received artifact to the driver. Called by the
// transport layer; never blocks. Artifacts beyond the queue capacity are
// dropped and rely on peer re-broadcast.
func (d *Driver) Submit(artifact orbit.Artifact) {
	if d.State() == Halted {
		return
	}
	if !d.queue.Push(artifact) {
		d.log.Warn().
			Uint64("height", uint64(artifact.ArtifactHeight())).
			Str("kind", artifact.Kind().String()).
			Msg("ingest queue full, dropping artifact")
		return
	}
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

// Run polls the consensus core until the context is cancelled or the driver
// halts. Returns the halting error, if any.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.notify:
		case <-ticker.C:
		}

		err := d.Step(d.clock())
		if err != nil {
			d.state.Store(uint32(Halted))
			d.log.Error().Err(err).Msg("invariant violation, halting driver")
			return fmt.Errorf("driver halted: %w", err)
		}
	}
}

// Step executes one driver iteration at the given instant. Exposed so tests
// drive the loop with a synthetic clock.
func (d *Driver) Step(now time.Time) error {
	if d.State() == Halted {
		return fmt.Errorf("driver is halted")
	}

	d.ingest()

	start := time.Now()
	cs := d.engine.OnStateChange(now)
	d.metrics.StateChangeDuration(time.Since(start))

	err := d.applier.Apply(cs, now)
	if err != nil {
		return fmt.Errorf("could not apply change set: %w", err)
	}
	d.metrics.ActionsApplied(len(cs))

	d.broadcastProduced(cs)
	d.deliverCatchUp(cs)
	d.deliverFinalized()

	unvalidated, validated := d.pool.Size()
	d.metrics.PoolSize(unvalidated, validated)

	if d.State() == AwaitingGenesis {
		if _, ok := d.pool.CurrentRound(); ok {
			d.log.Info().Msg("genesis finalized, replica running")
			d.state.Store(uint32(Running))
		}
	}
	return nil
}

// ingest drains the transport queue into the unvalidated pool section.
func (d *Driver) ingest() {
	for {
		artifact, ok := d.queue.Pop()
		if !ok {
			return
		}
		err := d.pool.InsertUnvalidated(artifact)
		if err != nil {
			if orbit.IsDuplicateArtifactError(err) {
				d.log.Debug().
					Str("kind", artifact.Kind().String()).
					Uint64("height", uint64(artifact.ArtifactHeight())).
					Msg("discarding duplicate artifact")
				continue
			}
			d.log.Warn().Err(err).Msg("could not insert received artifact")
		}
	}
}

// broadcastProduced hands locally produced artifacts to the transport.
func (d *Driver) broadcastProduced(cs changeset.ChangeSet) {
	for _, action := range cs {
		add, ok := action.(changeset.AddToValidated)
		if !ok {
			continue
		}
		d.broadcaster.Broadcast(add.Artifact)
	}
}

// deliverCatchUp hands catch-up packages entering the validated section to
// the consumer, so they survive the validated-pool purge. Moves carry only
// the artifact ID; the package itself is looked up in the pool.
func (d *Driver) deliverCatchUp(cs changeset.ChangeSet) {
	if d.catchUp == nil {
		return
	}
	for _, action := range cs {
		switch act := action.(type) {
		case changeset.AddToValidated:
			if cup, ok := act.Artifact.(*orbit.CatchUpPackage); ok {
				d.catchUp.OnCatchUpPackage(cup)
			}
		case changeset.MoveToValidated:
			for _, artifact := range d.pool.ByHeightAndKind(act.Height, orbit.KindCatchUpPackage) {
				if artifact.ID() == act.ArtifactID {
					d.catchUp.OnCatchUpPackage(artifact.(*orbit.CatchUpPackage))
				}
			}
		}
	}
}

// deliverFinalized notifies the consumer of newly finalized heights in
// order, exactly once per height.
func (d *Driver) deliverFinalized() {
	newest, ok := d.pool.CurrentRound()
	if !ok {
		return
	}
	for height := orbit.Height(d.finalized.Value()) + 1; height <= newest; height++ {
		proposal, fin, ok := d.finalizedAt(height)
		if !ok {
			// below the retention window or no local copy; the consumer
			// catches up through a catch-up package instead
			continue
		}
		if !d.finalized.Set(uint64(height)) {
			continue
		}
		d.metrics.FinalizedHeight(height)
		d.consumer.OnFinalized(proposal, fin)
	}
}

// finalizedAt looks up the finalized block and its certificate at a height.
func (d *Driver) finalizedAt(height orbit.Height) (*orbit.BlockProposal, *orbit.Finalization, bool) {
	finalizations := d.pool.ByHeightAndKind(height, orbit.KindFinalization)
	if len(finalizations) == 0 {
		return nil, nil, false
	}
	fin := finalizations[0].(*orbit.Finalization)
	for _, artifact := range d.pool.ByHeightAndKind(height, orbit.KindBlockProposal) {
		proposal := artifact.(*orbit.BlockProposal)
		if proposal.ID() == fin.BlockID {
			return proposal, fin, true
		}
	}
	return nil, nil, false
}
