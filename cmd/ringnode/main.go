// Command ringnode runs a single Chord ring member: it binds the peer/HTTP
// surface, joins (or founds) a ring, and runs the stabilization loop until
// a shutdown signal arrives.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ChordRing/internal/bindaddr"
	"ChordRing/internal/bootstrap"
	"ChordRing/internal/config"
	"ChordRing/internal/httpserver"
	"ChordRing/internal/logger"
	zapfactory "ChordRing/internal/logger/zap"
	"ChordRing/internal/node"
	"ChordRing/internal/peerclient"
	"ChordRing/internal/ring"
	"ChordRing/internal/telemetry"
)

var defaultConfigPath = "config/ringnode/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	// A bare positional argument is a one-off introducer override: the
	// simplest invocation is `ringnode` (solo ring) or `ringnode <introducer>`
	// (join through that address), without needing a config file at all.
	introducerArg := flag.Arg(0)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		if introducerArg != "" || *configPath == defaultConfigPath {
			cfg = config.Default()
		} else {
			log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
		}
	}
	cfg.ApplyEnvOverrides()
	if introducerArg != "" {
		cfg.Bootstrap.Mode = "static"
		cfg.Bootstrap.Peers = []string{introducerArg}
	} else if cfg.Bootstrap.Mode == "" {
		cfg.Bootstrap.Mode = "init"
	}
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	var lgr logger.Logger
	if cfg.Logger.Active {
		zapLog, err := zapfactory.New(cfg.Logger)
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
		defer func() { _ = zapLog.Sync() }()
		lgr = zapfactory.NewZapAdapter(zapLog)
	} else {
		lgr = logger.NopLogger{}
	}
	cfg.LogConfig(lgr)

	resolved, err := bindaddr.Listen(&cfg.Node)
	if err != nil {
		lgr.Error("failed to initialize listener", logger.F("err", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = resolved.Listener.Close() }()
	lgr.Debug("listener created", logger.FAddr("addr", resolved.Addr))

	space, err := ring.NewSpace(cfg.Ring.Bits)
	if err != nil {
		lgr.Error("failed to initialize identifier space", logger.F("err", err.Error()))
		os.Exit(1)
	}

	selfAddr := resolved.Addr
	selfID := space.HashID(selfAddr)
	if cfg.Node.Id != "" {
		lgr.Warn("node.id override ignored; identifiers are derived from the advertised address",
			logger.F("configured_id", cfg.Node.Id))
	}
	lgr = lgr.Named("node").With(logger.F("self_id", selfID.String()), logger.FAddr("self_addr", selfAddr))
	lgr.Info("node starting")

	shutdownTracer, err := telemetry.InitTracer(context.Background(), cfg.Telemetry, "chordring-node", selfID.String(), selfAddr, lgr)
	if err != nil {
		lgr.Error("failed to initialize tracing", logger.F("err", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	pc := peerclient.New(space, cfg.Ring.ReqTimeout, cfg.Ring.LivenessTimeout, peerclient.WithLogger(lgr.Named("peerclient")))

	nodeCfg := node.Config{
		StabilizeInterval: cfg.Ring.StabilizeInterval,
		LivenessTimeout:   cfg.Ring.LivenessTimeout,
		ReqTimeout:        cfg.Ring.ReqTimeout,
		SuccessorListSize: cfg.Ring.SuccessorListSize,
	}
	n := node.New(selfAddr, space, nodeCfg, pc, node.WithLogger(lgr))
	lgr.Debug("node state initialized")

	srv := httpserver.New(resolved.Listener, n, httpserver.WithLogger(lgr.Named("httpserver")))
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()
	lgr.Debug("http server started")

	var bs bootstrap.Bootstrap
	switch cfg.Bootstrap.Mode {
	case "route53":
		bs, err = bootstrap.NewRoute53Bootstrap(cfg.Bootstrap.Route53)
		if err != nil {
			lgr.Error("failed to initialize Route53 bootstrap", logger.F("err", err.Error()))
			os.Exit(1)
		}
	case "static":
		bs = bootstrap.NewStaticBootstrap(cfg.Bootstrap.Peers)
	case "init":
		bs = bootstrap.NewStaticBootstrap(nil)
	}

	discoverCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	peers, err := bs.Discover(discoverCtx)
	cancel()
	if err != nil {
		lgr.Error("failed to resolve bootstrap peers", logger.F("err", err.Error()))
		os.Exit(1)
	}
	lgr.Info("resolved bootstrap peers", logger.F("peers", peers))

	if len(peers) == 0 {
		lgr.Info("no peers discovered, founding new ring")
	} else {
		joinCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := n.Join(joinCtx, peers[0])
		cancel()
		if err != nil {
			lgr.Error("failed to join ring", logger.F("err", err.Error()))
			os.Exit(1)
		}
		lgr.Info("joined ring", logger.FAddr("introducer", peers[0]))
	}

	registerCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bs.Register(registerCtx, selfAddr); err != nil {
		lgr.Warn("failed to advertise self via bootstrap backend", logger.F("err", err.Error()))
	}
	cancel()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	n.StartStabilizer(ctx)
	lgr.Debug("stabilizer started")

	select {
	case <-ctx.Done():
		lgr.Info("shutdown signal received, draining")
		stop()

		deregisterCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := bs.Deregister(deregisterCtx, selfAddr); err != nil {
			lgr.Warn("failed to deregister from bootstrap backend", logger.F("err", err.Error()))
		}
		cancel()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lgr.Warn("http server shutdown did not complete cleanly", logger.F("err", err.Error()))
		}
		lgr.Info("node stopped")

	case err := <-serveErr:
		lgr.Error("http server terminated unexpectedly", logger.F("err", err.Error()))
		stop()
		os.Exit(1)
	}
}
