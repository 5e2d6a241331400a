// Command ringtester drives a running ChordRing deployment with waves of
// insert/lookup traffic and optionally records results to CSV, for local
// or CI integration testing.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ChordRing/internal/bootstrap"
	"ChordRing/internal/logger"
	zapfactory "ChordRing/internal/logger/zap"
	"ChordRing/internal/ring"
	"ChordRing/internal/ringtester"
	"ChordRing/internal/ringtester/writer"
)

var defaultConfigPath = "config/ringtester/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := ringtester.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
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

	var w writer.Writer
	if cfg.CSV.Enabled {
		w, err = writer.NewCSVWriter(cfg.CSV.Path)
		if err != nil {
			lgr.Error("failed to initialize csv writer", logger.F("err", err.Error()))
			return
		}
	} else {
		w = writer.NopWriter{}
	}
	defer w.Close()

	space, err := ring.NewSpace(cfg.RingBits)
	if err != nil {
		lgr.Error("failed to initialize identifier space", logger.F("err", err.Error()))
		return
	}

	var boot bootstrap.Bootstrap
	switch cfg.Bootstrap.Mode {
	case "route53":
		boot, err = bootstrap.NewRoute53Bootstrap(cfg.Bootstrap.Route53)
		if err != nil {
			lgr.Error("failed to initialize route53 bootstrap", logger.F("err", err.Error()))
			return
		}
	default:
		boot = ringtester.NewDockerBootstrap(cfg.Bootstrap.Docker.ContainerSuffix, cfg.Bootstrap.Docker.Port, cfg.Bootstrap.Docker.Network)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		lgr.Warn("received termination signal", logger.F("signal", sig.String()))
		cancel()
	}()

	runner := ringtester.New(cfg, lgr.Named("runner"), w, boot, space)
	start := time.Now()
	if err := runner.Run(ctx); err != nil {
		lgr.Error("ringtester run failed", logger.F("err", err.Error()))
	}
	lgr.Info("ringtester finished", logger.F("elapsed", time.Since(start).String()))
}
