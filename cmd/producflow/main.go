package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/producflow/internal/cache"
	"codeberg.org/mutker/producflow/internal/config"
	"codeberg.org/mutker/producflow/internal/errors"
	"codeberg.org/mutker/producflow/internal/httpapi"
	"codeberg.org/mutker/producflow/internal/logger"
	"codeberg.org/mutker/producflow/internal/metrics"
	"codeberg.org/mutker/producflow/internal/monitoring"
	"codeberg.org/mutker/producflow/internal/pid"
	"codeberg.org/mutker/producflow/internal/sensor"
	"codeberg.org/mutker/producflow/internal/store"
	"codeberg.org/mutker/producflow/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

const cacheDialTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel.String(), string(cfg.LogFormat), logger.IsService())
	logger.Debug().Msg("Config loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx, cfg); err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) {
			logger.ErrorWithCode(appErr).Msg("producflow stopped with an error")
		} else {
			logger.Error().Err(err).Msg("producflow stopped with an error")
		}
		os.Exit(1)
	}

	logger.Info().Msg("Exiting...")
}

func run(ctx context.Context, cfg *config.Config) error {
	errFactory := errors.New()
	log := logger.Get()

	if cfg.PIDFile != "" {
		pidFile := pid.New(cfg.PIDFile)
		if err := pidFile.Write(); err != nil {
			return err
		}
		defer func() {
			if err := pidFile.Remove(); err != nil {
				log.Warn().Err(err).Msg("Failed to remove PID file")
			}
		}()
	}

	st, err := store.Open(ctx, cfg.Database, log)
	if err != nil {
		return errFactory.Wrap(errors.ErrOpenStore, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.ErrorWithCode(errFactory.Wrap(errors.ErrCloseStore, err)).Msg("Failed to close record store")
		}
	}()

	gen := sensor.NewGenerator(nil)

	if cfg.Database.Seed {
		if _, err := st.Seed(ctx, gen, time.Now().UTC()); err != nil {
			return errFactory.Wrap(errors.ErrSeedStore, err)
		}
	}

	reporter, err := metrics.NewService(st, cfg.Metrics)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	var serverOpts []httpapi.Option
	serverOpts = append(serverOpts, httpapi.WithMetrics(monitoring.New()))

	if cfg.Cache.Enabled() {
		dialCtx, cancelDial := context.WithTimeout(ctx, cacheDialTimeout)
		kv, err := cache.Dial(dialCtx, cfg.Cache)
		cancelDial()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("Report cache unavailable, serving uncached")
		} else {
			defer kv.Close()
			cached := cache.NewReporter(reporter, kv, cfg.Cache.TTL, log)
			reporter = cached
			serverOpts = append(serverOpts, httpapi.WithInvalidator(cached))
			log.Info().Str("addr", cfg.Cache.RedisAddr).Dur("ttl", cfg.Cache.TTL).Msg("Report cache enabled")
		}
	}

	collector := telemetry.NewService(st, log)

	simulator, err := telemetry.NewSimulator(cfg.Telemetry, st, collector, gen, log)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}
	subscriber := telemetry.NewSubscriber(cfg.Telemetry.MQTT, collector, log)

	server, err := httpapi.New(cfg.Server, st, reporter, collector, log, serverOpts...)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return simulator.Run(gctx) })
	g.Go(func() error { return subscriber.Run(gctx) })

	return g.Wait()
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
