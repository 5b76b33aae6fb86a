package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arnavshah/odysai-api-go/pkg/app"
	"github.com/arnavshah/odysai-api-go/pkg/config"
	"github.com/arnavshah/odysai-api-go/pkg/logging"
	"github.com/arnavshah/odysai-api-go/pkg/metrics"
)

var (
	once    sync.Once
	r       *gin.Engine
	initErr error
)

func setup() {
	// Load .env if it exists (for local testing with vercel dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	logger := logging.New(cfg.AppEnv)
	if err != nil {
		initErr = err
		logger.Error().Err(err).Msg("invalid configuration")
		return
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	s, backend, err := app.OpenStore(context.Background(), cfg)
	if err != nil {
		initErr = err
		logger.Error().Err(err).Msg("could not open store")
		return
	}
	logger.Info().Str("store", backend).Msg("serverless handler ready")
	r = app.NewEngine(cfg, s, logger)
}

// Handler is the entry point for Vercel
func Handler(w http.ResponseWriter, req *http.Request) {
	once.Do(setup)
	if initErr != nil {
		http.Error(w, `{"error":"service unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	r.ServeHTTP(w, req)
}
