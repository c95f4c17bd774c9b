package main

import (
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"signaldesk/internal/amqp"
	"signaldesk/internal/backend"
	"signaldesk/internal/cli"
	apphttp "signaldesk/internal/http"
	applog "signaldesk/internal/log"
	"signaldesk/internal/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info", applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, applog.ComponentApp)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		return 1
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err, "backend", cfg.DataBackend)
		return 1
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}
	}()

	// A nil Publisher disables change events; never pass a typed nil client.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			return 1
		}
		defer client.Close()
		publisher = client
		logger.Info("Publishing change events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	app := services.NewApp(result.Backend, publisher, services.AppConfig{
		ActivityLimit: cfg.ActivityLimit,
		CacheTTL:      cfg.CacheTTL,
		Auth: services.AuthConfig{
			Secret:   cfg.AuthSecret,
			Delay:    cfg.LoginDelay,
			TokenTTL: cfg.TokenTTL,
		},
	}, logger)

	opts := apphttp.DefaultOptions()
	opts.AuthRequired = cfg.AuthRequired
	opts.RateLimitPerMinute = cfg.RateLimitPerMinute
	opts.ActivityLimit = cfg.ActivityLimit
	srv := apphttp.NewServer(":"+cfg.Port, app, opts, logger)
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting signaldesk server", "port", cfg.Port, "backend", cfg.DataBackend, "auth_required", cfg.AuthRequired)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		cli.RunCleanup(logger, cfg.ShutdownTimeout, srv.Shutdown)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		return 1
	}
	logger.Info("Server stopped gracefully")
	return 0
}
