package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/skyezerfox/magma/config"
	"github.com/skyezerfox/magma/connection"
	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/health"
	"github.com/skyezerfox/magma/metrics"
)

var version = "dev"

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	var (
		configPath string
		debug      bool
	)

	root := &cobra.Command{
		Use:           "magma",
		Short:         "Offline-mode Minecraft " + constants.MCVersion + " server front end",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := setLevel(cfg.LogLevel, debug); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "config file (default ./magma.yaml)")
	root.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "magma %s (minecraft %s, protocol %d)\n", version, constants.MCVersion, constants.MCProtocol)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func setLevel(level string, debug bool) error {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return nil
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	zerolog.SetGlobalLevel(l)
	return nil
}

func run(ctx context.Context, cfg *config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	players := connection.NewRegistry(log.Logger, m)
	srv := connection.NewServer(connection.Options{
		Settings:    cfg,
		Players:     players,
		Sink:        connection.LoggingSink{Log: log.Logger.With().Str("component", "play").Logger()},
		Metrics:     m,
		Log:         log.Logger,
		IdleTimeout: cfg.IdleTimeout,
	})

	// Bind before anything else runs so a taken port stops startup.
	l, err := srv.Listen()
	if err != nil {
		return err
	}
	log.Info().Str("addr", l.Addr().String()).Int("max_players", cfg.MaxPlayers()).Str("config", cfg.File).Msg("Starting server...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(l) })

	var hs *health.Server
	if cfg.HealthEnabled {
		hs = health.New(cfg.HealthAddr(), cfg, players, reg, log.Logger)
		g.Go(hs.ListenAndServe)
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if hs != nil {
			if err := hs.Shutdown(sctx); err != nil {
				log.Warn().Err(err).Msg("Health server shutdown")
			}
		}
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
