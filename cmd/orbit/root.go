package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/orbitnet/orbit/consensus"
	"github.com/orbitnet/orbit/consensus/changeset"
	"github.com/orbitnet/orbit/consensus/committee"
	"github.com/orbitnet/orbit/consensus/driver"
	"github.com/orbitnet/orbit/consensus/pool"
	"github.com/orbitnet/orbit/consensus/rounds"
	"github.com/orbitnet/orbit/consensus/signature"
	"github.com/orbitnet/orbit/model/orbit"
	"github.com/orbitnet/orbit/module/metrics"
	"github.com/orbitnet/orbit/storage/archive"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orbit",
		Short: "orbit subnet replica",
	}
	cmd.AddCommand(runCmd())
	return cmd
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a single-node development subnet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	bindRunFlags(cmd.Flags())
	return cmd
}

// bindRunFlags registers the run flags and binds them to viper, so every
// flag is also settable through an ORBIT_-prefixed environment variable.
func bindRunFlags(flags *pflag.FlagSet) {
	flags.String("data-dir", "data", "directory for the finalized-history archive")
	flags.Duration("unit-delay", 2*time.Second, "extra block-maker wait per rank step")
	flags.Duration("poll-interval", 50*time.Millisecond, "driver poll interval")
	flags.String("metrics-addr", ":9095", "listen address for prometheus metrics, empty to disable")
	flags.String("log-level", "info", "log level (trace|debug|info|warn|error)")

	err := viper.BindPFlags(flags)
	if err != nil {
		panic(fmt.Sprintf("could not bind flags: %s", err))
	}
	viper.SetEnvPrefix("ORBIT")
	viper.AutomaticEnv()
}

// run wires a development subnet of one replica: an in-process committee
// with a fresh key, loopback-free transport and a local badger archive.
func run() error {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log := zerolog.New(zerolog.NewConsoleWriter()).Level(level).With().Timestamp().Logger()

	timing, err := rounds.NewConfig(viper.GetDuration("unit-delay"))
	if err != nil {
		return fmt.Errorf("invalid timing config: %w", err)
	}

	// single-member development committee
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("could not generate node key: %w", err)
	}
	self := orbit.HashToID(pub)
	members := orbit.IdentityList{{NodeID: self, PubKey: pub}}

	p := pool.NewPool(time.Now())
	com, err := committee.NewStatic(members, self, p)
	if err != nil {
		return fmt.Errorf("could not create committee: %w", err)
	}
	signer, err := signature.NewSigner(self, priv)
	if err != nil {
		return fmt.Errorf("could not create signer: %w", err)
	}

	engine, err := changeset.NewEngine(
		log,
		changeset.DefaultConfig(),
		timing,
		p,
		com,
		signer,
		signature.NewVerifier(com),
		signature.NewCombiner(),
		consensus.EmptyPayloadBuilder{},
	)
	if err != nil {
		return fmt.Errorf("could not create change-set engine: %w", err)
	}

	db, err := badger.Open(badger.DefaultOptions(viper.GetString("data-dir")).WithLogger(nil))
	if err != nil {
		return fmt.Errorf("could not open archive db: %w", err)
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	collector := metrics.NewConsensusCollector(registry)

	drv, err := driver.New(
		log,
		p,
		engine,
		pool.NewApplier(log, p),
		noopBroadcaster{},
		archive.NewArchive(log, db),
		collector,
		driver.WithPollInterval(viper.GetDuration("poll-interval")),
	)
	if err != nil {
		return fmt.Errorf("could not create driver: %w", err)
	}

	_, err = driver.Bootstrap(p, time.Now())
	if err != nil {
		return fmt.Errorf("could not bootstrap genesis: %w", err)
	}

	if addr := viper.GetString("metrics-addr"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			err := http.ListenAndServe(addr, mux)
			if err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().Hex("node_id", self[:]).Msg("replica starting")
	return drv.Run(ctx)
}

// noopBroadcaster drops outbound artifacts; a single-member subnet has no
// peers to gossip to.
type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(orbit.Artifact) {}
