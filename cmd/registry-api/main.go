package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressly/goose/v3"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/equipreg/internal/api"
	"github.com/edvin/equipreg/internal/config"
	"github.com/edvin/equipreg/internal/host"
	"github.com/edvin/equipreg/internal/logging"
	"github.com/edvin/equipreg/internal/metrics"
	"github.com/edvin/equipreg/internal/model"
	"github.com/edvin/equipreg/internal/platform"
	"github.com/edvin/equipreg/internal/snapshot"
	"github.com/edvin/equipreg/internal/storage"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "create-api-key":
			createAPIKey(os.Args[2:])
			return
		case "snapshot":
			runSnapshot()
			return
		}
	}

	migrateFlag := flag.Bool("migrate", false, "Run store migrations before starting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("registry-api"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)
	goose.SetLogger(logging.NewGooseLogger(logger))
	storeCfg := storeConfig(cfg)

	if *migrateFlag {
		logger.Info().Str("provider", storeCfg.Provider).Msg("running store migrations")
		if err := storage.Migrate(storeCfg); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	callers, err := config.LoadCallers(cfg.CallersFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load callers")
	}
	logger.Info().Int("callers", callers.Len()).Msg("loaded callers")

	tlsConfig, err := cfg.ServerTLS()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure TLS")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, storeCfg, storage.DefaultConstructors())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	rt := host.New(store, logger)
	if err := rt.Deploy(ctx, model.Identity(cfg.DeployerIdentity)); err != nil {
		logger.Fatal().Err(err).Msg("deployment failed")
	}

	srv := api.NewServer(logger, rt, callers)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		TLSConfig:    tlsConfig,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	metricsSrv := metrics.NewServer(cfg.MetricsListenAddr, rt.Ready)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Bool("tls", tlsConfig != nil).Msg("starting registry API server")
		var err error
		if tlsConfig != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	if cfg.MetricsListenAddr != "" {
		g.Go(func() error {
			logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("starting metrics server")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("api server shutdown incomplete")
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown incomplete")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func storeConfig(cfg *config.Config) storage.Config {
	return storage.Config{
		Provider:    cfg.StoreProvider,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	}
}

func runSnapshot() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("snapshot"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)
	goose.SetLogger(logging.NewGooseLogger(logger))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := storage.Open(ctx, storeConfig(cfg), storage.DefaultConstructors())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	client := snapshot.NewS3Client(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey)
	key, err := snapshot.NewExporter(client, cfg.SnapshotBucket, logger).Export(ctx, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("snapshot failed")
	}

	fmt.Printf("s3://%s/%s\n", cfg.SnapshotBucket, key)
}

// createAPIKey prints a new random API key and the callers file entry for it.
func createAPIKey(args []string) {
	fs := flag.NewFlagSet("create-api-key", flag.ExitOnError)
	name := fs.String("name", "", "Name for the API key (required)")
	identity := fs.String("identity", "", "Caller identity the key acts as (required)")
	fs.Parse(args)

	if *name == "" || *identity == "" {
		fmt.Fprintln(os.Stderr, "error: --name and --identity are required")
		fmt.Fprintln(os.Stderr, "usage: registry-api create-api-key --name <name> --identity <identity>")
		os.Exit(1)
	}

	rawKey := platform.NewAPIKey()

	fmt.Printf("API key created.\n\n")
	fmt.Printf("  Key:    %s\n\n", rawKey)
	fmt.Printf("Add this entry to the callers file:\n\n")
	fmt.Printf("  - name: %s\n", *name)
	fmt.Printf("    identity: %s\n", *identity)
	fmt.Printf("    key_sha256: %s\n\n", config.HashKey(rawKey))
	fmt.Printf("Save this key, it will not be shown again.\n")
}
