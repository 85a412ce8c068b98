package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/luxclient/internal/fakeapi"
	"github.com/mkrupp/luxclient/internal/infra/config"
	"github.com/mkrupp/luxclient/internal/infra/logging"
	http_ "github.com/mkrupp/luxclient/internal/infra/transport/http"
)

const (
	appName = "lux"
	svcName = "luxmock"
)

type Config struct {
	config.EnvConfig

	Log  logging.LoggerConfig      `envPrefix:"LOG_"`
	API  fakeapi.Config            `envPrefix:"MOCK_"`
	HTTP http_.HTTPTransportConfig `envPrefix:"HTTP_"`
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(".env"); err != nil {
		panic(err)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.luxmock")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)

			return
		}

		log.InfoContext(ctx, "shutdown")
	}()

	server, err := fakeapi.New(cfg.API)
	if err != nil {
		return fmt.Errorf("new fake api: %w", err)
	}

	if err := server.ListenAndServe(ctx, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
