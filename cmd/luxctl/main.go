package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mkrupp/luxclient/internal/apiclient"
	"github.com/mkrupp/luxclient/internal/infra/config"
	"github.com/mkrupp/luxclient/internal/infra/logging"
	http_ "github.com/mkrupp/luxclient/internal/infra/transport/http"
	"github.com/mkrupp/luxclient/internal/repo/credential"
	"github.com/mkrupp/luxclient/internal/svc/authsvc"
)

const (
	appName = "lux"
	svcName = "luxctl"
)

type Config struct {
	config.EnvConfig

	Log   logging.LoggerConfig   `envPrefix:"LOG_"`
	API   apiclient.Config       `envPrefix:"API_"`
	HTTP  http_.HTTPClientConfig `envPrefix:"HTTP_"`
	Store credential.StoreConfig `envPrefix:"STORE_"`
	Auth  authsvc.AuthConfig
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, args []string) (err error) {
	log := logging.GetLogger("cmd.luxctl")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "command failed", "error", err)
		}
	}()

	factory, err := credential.NewStoreFactory(cfg.Store)
	if err != nil {
		return fmt.Errorf("credential store: %w", err)
	}

	store, err := factory(ctx)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}

	client := apiclient.NewClient(cfg.API, store, http_.NewHTTPClient(cfg.HTTP, logging.GetLogger("apiclient.http")))

	a := newApp(cfg, client, os.Stdout)

	defer func() {
		if closeErr := a.auth.Close(); closeErr != nil {
			log.WarnContext(ctx, "close", "error", closeErr)
		}
	}()

	return a.execute(ctx, args)
}
