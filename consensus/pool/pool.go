package pool

import (
	"sort"
	"sync"
	"time"

	"github.com/orbitnet/orbit/consensus"
	"github.com/orbitnet/orbit/model/orbit"
)

// bucketKey indexes one height/kind bucket within a section.
type bucketKey struct {
	height orbit.Height
	kind   orbit.ArtifactKind
}

// section is one partition of the pool (validated or unvalidated), a map of
// artifacts plus per-bucket insertion order. Not concurrency safe on its own;
// the Pool serializes access.
type section struct {
	artifacts map[orbit.Identifier]orbit.Artifact
	buckets   map[bucketKey][]orbit.Identifier
}

func newSection() *section {
	return &section{
		artifacts: make(map[orbit.Identifier]orbit.Artifact),
		buckets:   make(map[bucketKey][]orbit.Identifier),
	}
}

func (s *section) has(id orbit.Identifier) bool {
	_, ok := s.artifacts[id]
	return ok
}

func (s *section) add(artifact orbit.Artifact) {
	id := artifact.ID()
	if s.has(id) {
		return
	}
	s.artifacts[id] = artifact
	key := bucketKey{height: artifact.ArtifactHeight(), kind: artifact.Kind()}
	s.buckets[key] = append(s.buckets[key], id)
}

func (s *section) remove(id orbit.Identifier) (orbit.Artifact, bool) {
	artifact, ok := s.artifacts[id]
	if !ok {
		return nil, false
	}
	delete(s.artifacts, id)
	key := bucketKey{height: artifact.ArtifactHeight(), kind: artifact.Kind()}
	ids := s.buckets[key]
	for i, bucketID := range ids {
		if bucketID == id {
			s.buckets[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(s.buckets[key]) == 0 {
		delete(s.buckets, key)
	}
	return artifact, true
}

func (s *section) byBucket(height orbit.Height, kind orbit.ArtifactKind) []orbit.Artifact {
	ids := s.buckets[bucketKey{height: height, kind: kind}]
	if len(ids) == 0 {
		return nil
	}
	artifacts := make([]orbit.Artifact, 0, len(ids))
	for _, id := range ids {
		artifacts = append(artifacts, s.artifacts[id])
	}
	return artifacts
}

// purgeBelow removes all artifacts with height strictly below the threshold
// and returns how many were removed.
func (s *section) purgeBelow(height orbit.Height) int {
	removed := 0
	for key := range s.buckets {
		if key.height >= height {
			continue
		}
		for _, id := range s.buckets[key] {
			delete(s.artifacts, id)
			removed++
		}
		delete(s.buckets, key)
	}
	return removed
}

// Pool is the consensus artifact pool: an unvalidated section fed by the
// transport ingest path and a validated section owned by the change applier.
// Reads taken by the change-set engine are consistent snapshots under the
// read lock; the validated section has a single writer.
type Pool struct {
	mu          sync.RWMutex
	unvalidated *section
	validated   *section
	// currentRound tracks the highest height with a validated finalization.
	currentRound    orbit.Height
	hasCurrentRound bool
	// roundStarts anchors each height's logical clock to the instant the
	// prior height first reached notarization quorum.
	roundStarts map[orbit.Height]time.Time
}

var _ consensus.Pool = (*Pool)(nil)

// NewPool creates an empty pool. The round clock for the lowest height is
// anchored at genesisStart.
func NewPool(genesisStart time.Time) *Pool {
	return &Pool{
		unvalidated: newSection(),
		validated:   newSection(),
		roundStarts: map[orbit.Height]time.Time{0: genesisStart, 1: genesisStart},
	}
}

// InsertUnvalidated adds an externally received artifact. An artifact already
// present in either section is rejected with DuplicateArtifactError; the
// caller logs and discards.
func (p *Pool) InsertUnvalidated(artifact orbit.Artifact) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := artifact.ID()
	if p.unvalidated.has(id) || p.validated.has(id) {
		return orbit.NewDuplicateArtifactError(id, artifact.ArtifactHeight())
	}
	p.unvalidated.add(artifact)
	return nil
}

// MoveToValidated promotes an artifact from the unvalidated section. The move
// is monotone: the artifact never returns to the unvalidated section. Moving
// an artifact that is already validated is a no-op (a concurrent apply beat
// us to it); an artifact in neither section yields NotFoundError.
func (p *Pool) MoveToValidated(artifactID orbit.Identifier) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	artifact, ok := p.unvalidated.remove(artifactID)
	if !ok {
		if p.validated.has(artifactID) {
			return nil
		}
		return orbit.NewNotFoundError(artifactID)
	}
	p.addValidatedLocked(artifact)
	return nil
}

// AddValidated adds a locally produced artifact straight to the validated
// section. Duplicate adds are no-ops so re-derived change sets replay
// cleanly.
func (p *Pool) AddValidated(artifact orbit.Artifact) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addValidatedLocked(artifact)
	return nil
}

func (p *Pool) addValidatedLocked(artifact orbit.Artifact) {
	p.validated.add(artifact)
	if artifact.Kind() == orbit.KindFinalization {
		height := artifact.ArtifactHeight()
		if !p.hasCurrentRound || height > p.currentRound {
			p.currentRound = height
			p.hasCurrentRound = true
		}
	}
}

// MarkRoundStart records the wall-clock instant the given height's round
// began. Only the first mark per height sticks; later marks are no-ops, so
// replayed change sets do not skew the round clock.
func (p *Pool) MarkRoundStart(height orbit.Height, start time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.roundStarts[height]; ok {
		return
	}
	p.roundStarts[height] = start
}

// RoundStart returns when the given height's round began, false if it has
// not started yet.
func (p *Pool) RoundStart(height orbit.Height) (time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	start, ok := p.roundStarts[height]
	return start, ok
}

// CurrentRound returns the highest height with a validated finalization, and
// false before genesis finalization.
func (p *Pool) CurrentRound() (orbit.Height, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentRound, p.hasCurrentRound
}

// ByHeightAndKind returns the validated artifacts of one kind at one height
// in stable insertion order. The slice is a snapshot owned by the caller.
func (p *Pool) ByHeightAndKind(height orbit.Height, kind orbit.ArtifactKind) []orbit.Artifact {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.validated.byBucket(height, kind)
}

// UnvalidatedByHeightAndKind is the unvalidated counterpart of
// ByHeightAndKind.
func (p *Pool) UnvalidatedByHeightAndKind(height orbit.Height, kind orbit.ArtifactKind) []orbit.Artifact {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.unvalidated.byBucket(height, kind)
}

// Unvalidated returns a snapshot of the whole unvalidated section, ordered by
// ascending height, then kind, then insertion order. The deterministic order
// keeps validation passes identical across replicas holding the same pool.
func (p *Pool) Unvalidated() []orbit.Artifact {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]bucketKey, 0, len(p.unvalidated.buckets))
	for key := range p.unvalidated.buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].height != keys[j].height {
			return keys[i].height < keys[j].height
		}
		return keys[i].kind < keys[j].kind
	})
	var artifacts []orbit.Artifact
	for _, key := range keys {
		for _, id := range p.unvalidated.buckets[key] {
			artifacts = append(artifacts, p.unvalidated.artifacts[id])
		}
	}
	return artifacts
}

// getValidated returns a validated artifact by ID.
func (p *Pool) getValidated(artifactID orbit.Identifier) (orbit.Artifact, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	artifact, ok := p.validated.artifacts[artifactID]
	return artifact, ok
}

// HasValidated checks membership of the validated section.
func (p *Pool) HasValidated(artifactID orbit.Identifier) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.validated.has(artifactID)
}

// PurgeUnvalidatedBelow removes unvalidated artifacts strictly below the
// threshold. Validated artifacts are never touched by this operation.
func (p *Pool) PurgeUnvalidatedBelow(height orbit.Height) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unvalidated.purgeBelow(height)
}

// PurgeValidatedBelow removes validated artifacts strictly below the
// threshold. The retention window for validated history is enforced by the
// change-set engine, which keeps it wider than the unvalidated one because
// finalized history feeds catch-up package construction.
func (p *Pool) PurgeValidatedBelow(height orbit.Height) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	removed := p.validated.purgeBelow(height)
	for h := range p.roundStarts {
		if h < height {
			delete(p.roundStarts, h)
		}
	}
	return removed
}

// Size returns the number of artifacts in (unvalidated, validated) sections.
func (p *Pool) Size() (uint, uint) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return uint(len(p.unvalidated.artifacts)), uint(len(p.validated.artifacts))
}
