// Command parkhub-server runs the self-hosted ParkHub server core: the
// bbolt-backed storage engine, booking coordinator, and HTTP API, with
// mDNS discovery and graceful shutdown (spec §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/parkhub/parkhub-server/infrastructure/logging"
	"github.com/parkhub/parkhub-server/infrastructure/metrics"
	mw "github.com/parkhub/parkhub-server/infrastructure/middleware"
	"github.com/parkhub/parkhub-server/internal/auth"
	"github.com/parkhub/parkhub-server/internal/booking"
	"github.com/parkhub/parkhub-server/internal/config"
	"github.com/parkhub/parkhub-server/internal/discovery"
	"github.com/parkhub/parkhub-server/internal/httpapi"
	"github.com/parkhub/parkhub-server/internal/lots"
	"github.com/parkhub/parkhub-server/internal/mail"
	"github.com/parkhub/parkhub-server/internal/ratelimit"
	"github.com/parkhub/parkhub-server/internal/storage"
	"github.com/parkhub/parkhub-server/internal/users"
	"github.com/parkhub/parkhub-server/pkg/version"
)

const shutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("parkhub-server", flag.ContinueOnError)
	showVersion := fs.Bool("version", false, "print version and exit")
	debug := fs.Bool("debug", false, "enable debug logging")
	headless := fs.Bool("headless", false, "disable mDNS advertisement and TLS")
	unattended := fs.Bool("unattended", false, "never prompt; fail fast if a required secret is missing")
	port := fs.Int("port", 0, "HTTP port (overrides config.toml)")
	dataDir := fs.String("data-dir", "./data", "directory for config, database, and TLS material")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Println(version.FullVersion())
		return 0
	}

	cfg, err := config.Load(*dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *headless {
		cfg.Server.Headless = true
		cfg.Server.TLSEnabled = false
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		format = "json"
	}
	if *debug {
		level, format = "debug", "text"
	}
	logger := logging.New("parkhub-server", level, format)

	passphrase := config.DBPassphrase()
	if cfg.Server.EncryptionEnabled && passphrase == "" && *unattended {
		logger.Error(context.Background(), "encryption enabled but PARKHUB_DB_PASSPHRASE is unset", nil, nil)
		return 1
	}

	store, err := storage.Open(cfg.Server.DataDir, cfg.Server.EncryptionEnabled, passphrase)
	if err != nil {
		logger.Error(context.Background(), "failed to open storage", err, nil)
		return 1
	}
	defer store.Close()

	if err := store.SetSetting(storage.SettingSetupCompleted, "true"); err != nil {
		logger.Error(context.Background(), "failed to record setup completion", err, nil)
	}

	authSvc := auth.New(store, logger)
	usersSvc := users.New(store, authSvc, logger)
	if err := usersSvc.SetSelfRegistrationAllowed(cfg.Server.AllowSelfRegistration); err != nil {
		logger.Warn(context.Background(), "failed to persist self-registration flag", map[string]interface{}{"error": err.Error()})
	}
	lotsSvc := lots.New(store)

	mailCfg := mail.Config{AppURL: config.AppURL(fmt.Sprintf("http://localhost:%d", cfg.Server.Port))}
	mailCfg.Host, mailCfg.Port, mailCfg.User, mailCfg.Pass, mailCfg.From = config.SMTPFromEnv()
	mailer := mail.New(mailCfg, logger)

	bookingCoord := booking.New(store, logger, mailer)
	limiters := ratelimit.New(logger)
	stopCleanup := limiters.StartCleanup(10 * time.Minute)
	defer stopCleanup()

	var metricsCollector *metrics.Metrics
	if metrics.Enabled() {
		metricsCollector = metrics.Init("parkhub")
	}

	fingerprint := ""
	if cfg.Server.TLSEnabled {
		bundle, err := discovery.LoadOrGenerateCert(cfg.Server.DataDir, cfg.Server.Name)
		if err != nil {
			logger.Error(context.Background(), "failed to load or generate TLS certificate", err, nil)
			return 1
		}
		fingerprint = bundle.Fingerprint
	}
	handshaker := discovery.NewHandshaker(cfg.Server.Name, version.Version, fingerprint)

	deps := &httpapi.Deps{
		Store:            store,
		Auth:             authSvc,
		Booking:          bookingCoord,
		Users:            usersSvc,
		Lots:             lotsSvc,
		Mail:             mailer,
		Limiters:         limiters,
		Handshaker:       handshaker,
		Logger:           logger,
		Metrics:          metricsCollector,
		ExtraCORSOrigins: cfg.CORS.ExtraOrigins,
		ReadyCheck: func() error {
			_, err := store.Statistics()
			return err
		},
	}

	router := httpapi.NewRouter(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var advertiser *discovery.Advertiser
	if !cfg.Server.Headless {
		txt := discovery.TXTRecord{Version: version.Version, Protocol: discovery.ProtocolVersion, TLS: cfg.Server.TLSEnabled}
		advertiser, err = discovery.Advertise(cfg.Server.Name, cfg.Server.Port, txt, logger)
		if err != nil {
			logger.Warn(context.Background(), "mDNS advertisement failed, continuing without it", map[string]interface{}{"error": err.Error()})
		}
	}

	shutdown := mw.NewGracefulShutdown(server, shutdownTimeout)
	shutdown.OnShutdown(func() {
		if advertiser != nil {
			advertiser.Shutdown()
		}
	})
	shutdown.ListenForSignals()

	logger.Info(context.Background(), fmt.Sprintf("parkhub-server listening on %s", server.Addr), nil)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error(context.Background(), "server error", err, nil)
		return 1
	}

	// ListenAndServe returns ErrServerClosed as soon as Shutdown() starts
	// stopping the server; Wait blocks until in-flight requests have drained
	// and shutdownChan is closed.
	shutdown.Wait()
	return 0
}
