package metrics

import (
	"time"

	"github.com/orbitnet/orbit/model/orbit"
	"github.com/orbitnet/orbit/module"
)

// NoopCollector discards all metrics. Used in tests.
type NoopCollector struct{}

var _ module.ConsensusMetrics = (*NoopCollector)(nil)

func NewNoopCollector() *NoopCollector { return &NoopCollector{} }

func (nc *NoopCollector) PoolSize(uint, uint)               {}
func (nc *NoopCollector) IngestQueueLength(int)             {}
func (nc *NoopCollector) FinalizedHeight(orbit.Height)      {}
func (nc *NoopCollector) StateChangeDuration(time.Duration) {}
func (nc *NoopCollector) ActionsApplied(int)                {}
