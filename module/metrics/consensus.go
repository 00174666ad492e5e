package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/orbitnet/orbit/model/orbit"
	"github.com/orbitnet/orbit/module"
)

const namespaceConsensus = "consensus"

// ConsensusCollector exposes the consensus core's health over prometheus.
type ConsensusCollector struct {
	unvalidatedPoolSize prometheus.Gauge
	validatedPoolSize   prometheus.Gauge
	ingestQueueLength   prometheus.Gauge
	finalizedHeight     prometheus.Gauge
	stateChangeDuration prometheus.Histogram
	actionsApplied      prometheus.Counter
}

var _ module.ConsensusMetrics = (*ConsensusCollector)(nil)

// NewConsensusCollector registers and returns the consensus collectors.
func NewConsensusCollector(registerer prometheus.Registerer) *ConsensusCollector {
	cc := &ConsensusCollector{
		unvalidatedPoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespaceConsensus,
			Name:      "pool_unvalidated_size",
			Help:      "number of artifacts in the unvalidated pool section",
		}),
		validatedPoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespaceConsensus,
			Name:      "pool_validated_size",
			Help:      "number of artifacts in the validated pool section",
		}),
		ingestQueueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespaceConsensus,
			Name:      "ingest_queue_length",
			Help:      "artifacts queued between transport and driver",
		}),
		finalizedHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespaceConsensus,
			Name:      "finalized_height",
			Help:      "newest finalized height",
		}),
		stateChangeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceConsensus,
			Name:      "state_change_duration_s",
			Help:      "duration of one change-set engine pass in seconds",
		}),
		actionsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceConsensus,
			Name:      "actions_applied_total",
			Help:      "total change actions applied to the pool",
		}),
	}
	registerer.MustRegister(
		cc.unvalidatedPoolSize,
		cc.validatedPoolSize,
		cc.ingestQueueLength,
		cc.finalizedHeight,
		cc.stateChangeDuration,
		cc.actionsApplied,
	)
	return cc
}

func (cc *ConsensusCollector) PoolSize(unvalidated uint, validated uint) {
	cc.unvalidatedPoolSize.Set(float64(unvalidated))
	cc.validatedPoolSize.Set(float64(validated))
}

func (cc *ConsensusCollector) IngestQueueLength(length int) {
	cc.ingestQueueLength.Set(float64(length))
}

func (cc *ConsensusCollector) FinalizedHeight(height orbit.Height) {
	cc.finalizedHeight.Set(float64(height))
}

func (cc *ConsensusCollector) StateChangeDuration(d time.Duration) {
	cc.stateChangeDuration.Observe(d.Seconds())
}

func (cc *ConsensusCollector) ActionsApplied(count int) {
	cc.actionsApplied.Add(float64(count))
}
