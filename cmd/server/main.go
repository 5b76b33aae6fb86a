package main

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arnavshah/odysai-api-go/pkg/app"
	"github.com/arnavshah/odysai-api-go/pkg/config"
	"github.com/arnavshah/odysai-api-go/pkg/logging"
	"github.com/arnavshah/odysai-api-go/pkg/metrics"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	logger := logging.New(cfg.AppEnv)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	s, backend, err := app.OpenStore(context.Background(), cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not open store")
	}
	defer s.Close()

	r := app.NewEngine(cfg, s, logger)

	logger.Info().Str("port", cfg.Port).Str("store", backend).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error().Err(err).Msg("could not run server")
		s.Close()
		os.Exit(1)
	}
}
