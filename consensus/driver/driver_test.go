package driver_test

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitnet/orbit/consensus"
	"github.com/orbitnet/orbit/consensus/changeset"
	"github.com/orbitnet/orbit/consensus/committee"
	"github.com/orbitnet/orbit/consensus/driver"
	"github.com/orbitnet/orbit/consensus/pool"
	"github.com/orbitnet/orbit/consensus/rounds"
	"github.com/orbitnet/orbit/consensus/signature"
	"github.com/orbitnet/orbit/model/orbit"
	"github.com/orbitnet/orbit/module/metrics"
	"github.com/orbitnet/orbit/utils/unittest"
)

// recordingConsumer collects finalized-height and catch-up callbacks.
type recordingConsumer struct {
	mu       sync.Mutex
	heights  []orbit.Height
	packages []*orbit.CatchUpPackage
}

func (c *recordingConsumer) OnFinalized(proposal *orbit.BlockProposal, _ *orbit.Finalization) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heights = append(c.heights, proposal.Block.Height)
}

func (c *recordingConsumer) delivered() []orbit.Height {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]orbit.Height(nil), c.heights...)
}

func (c *recordingConsumer) OnCatchUpPackage(cup *orbit.CatchUpPackage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packages = append(c.packages, cup)
}

func (c *recordingConsumer) archived() []*orbit.CatchUpPackage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*orbit.CatchUpPackage(nil), c.packages...)
}

// recordingBroadcaster collects locally produced artifacts.
type recordingBroadcaster struct {
	mu        sync.Mutex
	artifacts []orbit.Artifact
}

func (b *recordingBroadcaster) Broadcast(artifact orbit.Artifact) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.artifacts = append(b.artifacts, artifact)
}

func (b *recordingBroadcaster) sent() []orbit.Artifact {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]orbit.Artifact(nil), b.artifacts...)
}

// driverFixture wires a driver over an n-member committee, acting as the
// first member in canonical order.
type driverFixture struct {
	genesis     time.Time
	members     orbit.IdentityList
	keys        map[orbit.Identifier]ed25519.PrivateKey
	pool        *pool.Pool
	driver      *driver.Driver
	consumer    *recordingConsumer
	broadcaster *recordingBroadcaster
}

func newDriverFixture(t *testing.T, n int, bootstrap bool) *driverFixture {
	members, keys := unittest.CommitteeFixture(n)
	genesis := time.Unix(1700000000, 0)
	p := pool.NewPool(genesis)
	if bootstrap {
		_, err := driver.Bootstrap(p, genesis)
		require.NoError(t, err)
	}

	self := members[0].NodeID
	com, err := committee.NewStatic(members, self, p)
	require.NoError(t, err)
	signer, err := signature.NewSigner(self, keys[self])
	require.NoError(t, err)
	timing, err := rounds.NewConfig(2 * time.Second)
	require.NoError(t, err)
	engine, err := changeset.NewEngine(
		unittest.Logger(),
		changeset.DefaultConfig(),
		timing,
		p,
		com,
		signer,
		signature.NewVerifier(com),
		signature.NewCombiner(),
		consensus.EmptyPayloadBuilder{},
	)
	require.NoError(t, err)

	consumer := &recordingConsumer{}
	broadcaster := &recordingBroadcaster{}
	drv, err := driver.New(
		unittest.Logger(),
		p,
		engine,
		pool.NewApplier(unittest.Logger(), p),
		broadcaster,
		consumer,
		metrics.NewNoopCollector(),
		driver.WithClock(func() time.Time { return genesis }),
		driver.WithPollInterval(time.Millisecond),
	)
	require.NoError(t, err)

	return &driverFixture{
		genesis:     genesis,
		members:     members,
		keys:        keys,
		pool:        p,
		driver:      drv,
		consumer:    consumer,
		broadcaster: broadcaster,
	}
}

func TestDriverAwaitsGenesis(t *testing.T) {
	f := newDriverFixture(t, 4, false)
	assert.Equal(t, driver.AwaitingGenesis, f.driver.State())

	// stepping before bootstrap is a no-op, not an error
	require.NoError(t, f.driver.Step(f.genesis))
	assert.Equal(t, driver.AwaitingGenesis, f.driver.State())

	_, err := driver.Bootstrap(f.pool, f.genesis)
	require.NoError(t, err)
	require.NoError(t, f.driver.Step(f.genesis))
	assert.Equal(t, driver.Running, f.driver.State())
}

func TestDriverRunningFromBootstrappedPool(t *testing.T) {
	f := newDriverFixture(t, 4, true)
	assert.Equal(t, driver.Running, f.driver.State())
}

func TestBootstrapTwiceFails(t *testing.T) {
	f := newDriverFixture(t, 4, true)
	_, err := driver.Bootstrap(f.pool, f.genesis)
	require.Error(t, err)
}

// A single-member subnet finalizes one height per step; the consumer must
// see each height exactly once, in order.
func TestDriverDeliversFinalizedInOrder(t *testing.T) {
	f := newDriverFixture(t, 1, true)

	now := f.genesis
	for i := 0; i < 3; i++ {
		require.NoError(t, f.driver.Step(now))
		now = now.Add(time.Second)
	}

	assert.Equal(t, []orbit.Height{1, 2, 3}, f.consumer.delivered())
	assert.Equal(t, orbit.Height(3), f.driver.FinalizedHeight())
}

func TestDriverDeliversCatchUpPackages(t *testing.T) {
	f := newDriverFixture(t, 1, true)

	// enough steps to finalize past the catch-up interval
	now := f.genesis
	for i := 0; i < 20; i++ {
		require.NoError(t, f.driver.Step(now))
		now = now.Add(time.Second)
	}

	packages := f.consumer.archived()
	require.NotEmpty(t, packages)
	assert.Equal(t, orbit.Height(16), packages[0].Height)
}

func TestDriverBroadcastsProducedArtifacts(t *testing.T) {
	f := newDriverFixture(t, 1, true)

	require.NoError(t, f.driver.Step(f.genesis))

	sent := f.broadcaster.sent()
	require.NotEmpty(t, sent)
	var sawProposal, sawFinalization bool
	for _, artifact := range sent {
		switch artifact.Kind() {
		case orbit.KindBlockProposal:
			sawProposal = true
		case orbit.KindFinalization:
			sawFinalization = true
		}
	}
	assert.True(t, sawProposal)
	assert.True(t, sawFinalization)
}

func TestDriverIngestsSubmittedArtifacts(t *testing.T) {
	f := newDriverFixture(t, 4, true)

	// a beacon share from another member arrives over the wire
	sender := f.members[1].NodeID
	signer, err := signature.NewSigner(sender, f.keys[sender])
	require.NoError(t, err)
	parentID := f.pool.ByHeightAndKind(0, orbit.KindRandomBeacon)[0].ID()
	sig, err := signer.Sign(signature.BeaconPayload(1, parentID))
	require.NoError(t, err)
	share := &orbit.RandomBeaconShare{Height: 1, Parent: parentID, Signer: sender, Sig: sig}

	f.driver.Submit(share)
	require.NoError(t, f.driver.Step(f.genesis))

	assert.True(t, f.pool.HasValidated(share.ID()))
}

func TestDriverDropsDuplicateSubmissions(t *testing.T) {
	f := newDriverFixture(t, 4, true)

	sender := f.members[1].NodeID
	signer, err := signature.NewSigner(sender, f.keys[sender])
	require.NoError(t, err)
	sig, err := signer.Sign(signature.TapePayload(1))
	require.NoError(t, err)
	share := &orbit.RandomTapeShare{Height: 1, Signer: sender, Sig: sig}

	f.driver.Submit(share)
	f.driver.Submit(share)
	require.NoError(t, f.driver.Step(f.genesis))

	_, validated := f.pool.Size()
	assert.True(t, f.pool.HasValidated(share.ID()))
	assert.Greater(t, validated, uint(0))
}

func TestDriverRunStopsOnCancel(t *testing.T) {
	f := newDriverFixture(t, 4, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.driver.Run(ctx)
	}()
	// let the loop take a few iterations before stopping it
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("driver did not stop on context cancellation")
	}
}
