package pool

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/orbitnet/orbit/consensus/changeset"
	"github.com/orbitnet/orbit/model/orbit"
)

// Applier applies a change set to the pool, strictly in the order given.
// Each action is atomic with respect to the pool; replaying an action that
// was already applied is a no-op, since the driver may re-derive overlapping
// change sets across iterations under concurrent artifact arrival.
type Applier struct {
	log  zerolog.Logger
	pool *Pool
}

func NewApplier(log zerolog.Logger, pool *Pool) *Applier {
	return &Applier{
		log:  log.With().Str("component", "change_applier").Logger(),
		pool: pool,
	}
}

// Apply mutates the pool according to the change set. Benign conditions
// (duplicates, lost races) are logged and skipped. The only non-nil return
// is an internal invariant violation, such as a second distinct finalization
// reaching the applier for one height; the caller must treat that as a
// defensive abort, not patch over it.
func (a *Applier) Apply(cs changeset.ChangeSet, now time.Time) error {
	var fatal *multierror.Error

	for _, action := range cs {
		switch act := action.(type) {

		case changeset.AddToValidated:
			err := a.addValidated(act.Artifact, now)
			if err != nil {
				fatal = multierror.Append(fatal, err)
			}

		case changeset.MoveToValidated:
			err := a.pool.MoveToValidated(act.ArtifactID)
			if err != nil {
				// a concurrent purge or an earlier apply already satisfied
				// this action
				a.log.Debug().
					Hex("artifact_id", act.ArtifactID[:]).
					Uint64("height", uint64(act.Height)).
					Err(err).
					Msg("skipping move of missing artifact")
				continue
			}
			a.markRoundStart(act.ArtifactID, now)

		case changeset.PurgeUnvalidatedBelow:
			removed := a.pool.PurgeUnvalidatedBelow(act.Height)
			if removed > 0 {
				a.log.Debug().
					Uint64("below_height", uint64(act.Height)).
					Int("removed", removed).
					Msg("purged unvalidated artifacts")
			}

		case changeset.PurgeValidatedBelow:
			removed := a.pool.PurgeValidatedBelow(act.Height)
			if removed > 0 {
				a.log.Debug().
					Uint64("below_height", uint64(act.Height)).
					Int("removed", removed).
					Msg("purged validated artifacts")
			}

		default:
			fatal = multierror.Append(fatal, fmt.Errorf("unknown change action %T", action))
		}
	}

	return fatal.ErrorOrNil()
}

// addValidated adds one artifact to the validated section, guarding the
// at-most-one-finalization invariant and anchoring the next round's clock
// when a height first reaches notarization quorum.
func (a *Applier) addValidated(artifact orbit.Artifact, now time.Time) error {
	if fin, ok := artifact.(*orbit.Finalization); ok {
		for _, existing := range a.pool.ByHeightAndKind(fin.Height, orbit.KindFinalization) {
			if existing.(*orbit.Finalization).BlockID != fin.BlockID {
				// two distinct finalizations at one height can only happen if
				// more than f members are Byzantine or the engine is broken
				return fmt.Errorf("conflicting finalization at height %d (%v vs %v)",
					fin.Height, existing.(*orbit.Finalization).BlockID, fin.BlockID)
			}
		}
	}

	err := a.pool.AddValidated(artifact)
	if err != nil {
		return fmt.Errorf("could not add artifact %v: %w", artifact.ID(), err)
	}
	if artifact.Kind() == orbit.KindNotarization {
		a.pool.MarkRoundStart(artifact.ArtifactHeight()+1, now)
	}
	return nil
}

// markRoundStart anchors the next round's clock when the moved artifact was
// a notarization.
func (a *Applier) markRoundStart(artifactID orbit.Identifier, now time.Time) {
	artifact, ok := a.pool.getValidated(artifactID)
	if !ok {
		return
	}
	if artifact.Kind() == orbit.KindNotarization {
		a.pool.MarkRoundStart(artifact.ArtifactHeight()+1, now)
	}
}
