package changeset

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/orbitnet/orbit/consensus"
	"github.com/orbitnet/orbit/consensus/rounds"
	"github.com/orbitnet/orbit/model/orbit"
)

// Config bounds the engine's speculative work and retention windows.
type Config struct {
	// TapeLookahead is how many heights past the finalized round the engine
	// prepares random tape for, so execution never waits on randomness.
	TapeLookahead orbit.Height
	// CatchUpInterval is the height spacing of catch-up packages.
	CatchUpInterval orbit.Height
	// UnvalidatedRetention is how many heights below the finalized round
	// unvalidated artifacts are kept before purging.
	UnvalidatedRetention orbit.Height
	// ValidatedRetention is how many heights below the finalized round
	// validated artifacts are kept. Must cover at least one catch-up
	// interval, since package construction reads finalized history.
	ValidatedRetention orbit.Height
}

// DefaultConfig returns the production retention and interval policy.
func DefaultConfig() Config {
	return Config{
		TapeLookahead:        2,
		CatchUpInterval:      16,
		UnvalidatedRetention: 4,
		ValidatedRetention:   32,
	}
}

// Validate checks internal consistency of the policy.
func (c Config) Validate() error {
	if c.CatchUpInterval == 0 {
		return fmt.Errorf("catch-up interval must be positive")
	}
	if c.ValidatedRetention < c.CatchUpInterval {
		return fmt.Errorf("validated retention (%d) must cover the catch-up interval (%d)",
			c.ValidatedRetention, c.CatchUpInterval)
	}
	if c.ValidatedRetention <= c.UnvalidatedRetention {
		return fmt.Errorf("validated retention (%d) must exceed unvalidated retention (%d)",
			c.ValidatedRetention, c.UnvalidatedRetention)
	}
	return nil
}

// Engine computes the set of legal next pool mutations from a snapshot of
// the pool and the caller-supplied clock. OnStateChange is a pure read: it
// never mutates the pool itself, so it may run concurrently with unvalidated
// inserts. The engine is polled by the driver, not scheduled; timeouts are
// decided against the injected `now`.
type Engine struct {
	log       zerolog.Logger
	cfg       Config
	timing    rounds.Config
	pool      consensus.PoolReader
	committee consensus.Committee
	signer    consensus.Signer
	verifier  consensus.Verifier
	combiner  consensus.Combiner
	payloads  consensus.PayloadBuilder
}

// NewEngine wires the decision core against its collaborators.
func NewEngine(
	log zerolog.Logger,
	cfg Config,
	timing rounds.Config,
	pool consensus.PoolReader,
	committee consensus.Committee,
	signer consensus.Signer,
	verifier consensus.Verifier,
	combiner consensus.Combiner,
	payloads consensus.PayloadBuilder,
) (*Engine, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	e := &Engine{
		log:       log.With().Str("component", "changeset_engine").Logger(),
		cfg:       cfg,
		timing:    timing,
		pool:      pool,
		committee: committee,
		signer:    signer,
		verifier:  verifier,
		combiner:  combiner,
		payloads:  payloads,
	}
	return e, nil
}

// OnStateChange computes the ordered sequence of legal pool mutations for the
// given instant. Heights are processed lowest-first and, within one height,
// concerns are evaluated in fixed priority order (beacon, tape, proposal,
// notarization, finalization), followed by catch-up and purge actions. The
// engine therefore never emits a proposal for height h+1 while height h has
// no notarized block.
func (e *Engine) OnStateChange(now time.Time) ChangeSet {
	p := &pass{Engine: e, now: now, pending: make(map[pendingKey][]orbit.Artifact)}

	// promote externally received artifacts that verify
	p.validationMoves()

	finalized, started := e.pool.CurrentRound()
	if !started {
		// awaiting genesis; nothing to decide until bootstrap lands
		return p.cs
	}

	// rounds above the finalized height progress on notarizations alone;
	// during equivocation the finalized round lags until the fork is
	// resolved through the parent chain of a later finalization
	top := p.notarizedTip(finalized) + 1

	for height := finalized + 1; height <= top; height++ {
		p.beaconActions(height)
		p.tapeActions(height)
		p.proposalActions(height)
		p.notarizationActions(height)
		p.finalizationActions(height)
	}
	for height := top + 1; height <= finalized+e.cfg.TapeLookahead; height++ {
		p.tapeActions(height)
	}

	p.catchUpActions(finalized)
	p.purgeActions(finalized)

	return p.cs
}

// pass is the working state of one OnStateChange invocation. Artifacts the
// pass has already decided to add are visible to later decisions in the same
// pass through the pending overlay, mirroring the deterministic
// apply-everything contract of the production applier.
type pass struct {
	*Engine
	now     time.Time
	cs      ChangeSet
	pending map[pendingKey][]orbit.Artifact
}

type pendingKey struct {
	height orbit.Height
	kind   orbit.ArtifactKind
}

// add emits an AddToValidated action and records the artifact in the overlay.
func (p *pass) add(artifact orbit.Artifact) {
	p.cs = append(p.cs, AddToValidated{Artifact: artifact})
	key := pendingKey{height: artifact.ArtifactHeight(), kind: artifact.Kind()}
	p.pending[key] = append(p.pending[key], artifact)
}

// artifacts returns the validated artifacts of one bucket, including those
// already emitted by this pass.
func (p *pass) artifacts(height orbit.Height, kind orbit.ArtifactKind) []orbit.Artifact {
	stored := p.pool.ByHeightAndKind(height, kind)
	extra := p.pending[pendingKey{height: height, kind: kind}]
	if len(extra) == 0 {
		return stored
	}
	combined := make([]orbit.Artifact, 0, len(stored)+len(extra))
	combined = append(combined, stored...)
	combined = append(combined, extra...)
	return combined
}

// notarizedTip returns the highest height at or above the finalized round
// with at least one notarized block, scanning upward without gaps.
func (p *pass) notarizedTip(finalized orbit.Height) orbit.Height {
	tip := finalized
	for len(p.artifacts(tip+1, orbit.KindNotarization)) > 0 {
		tip++
	}
	return tip
}

// selfIsMember checks this node's membership at a height.
func (p *pass) selfIsMember(height orbit.Height) bool {
	return p.committee.MembersAt(height).Contains(p.committee.Self())
}
