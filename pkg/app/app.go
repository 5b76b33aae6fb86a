package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/arnavshah/odysai-api-go/pkg/config"
	"github.com/arnavshah/odysai-api-go/pkg/database"
	"github.com/arnavshah/odysai-api-go/pkg/handlers"
	"github.com/arnavshah/odysai-api-go/pkg/kvstore"
	"github.com/arnavshah/odysai-api-go/pkg/store"
)

// OpenStore opens the configured backend wrapped with latency metrics
func OpenStore(ctx context.Context, cfg config.Config) (store.Store, string, error) {
	backend, err := cfg.StoreBackend()
	if err != nil {
		return nil, "", err
	}

	var s store.Store
	switch backend {
	case config.BackendMemory:
		s = store.NewMemory()
	case config.BackendRedis:
		s, err = kvstore.Open(ctx, cfg.RedisAddr(), cfg.Store.VoteRetries)
	default:
		s, err = database.InitDB(database.Options{DSN: cfg.Store.DatabaseURL, Path: cfg.Store.DataPath})
	}
	if err != nil {
		return nil, backend, fmt.Errorf("open %s store: %w", backend, err)
	}
	return store.NewInstrumented(s, backend), backend, nil
}

// NewEngine builds the gin engine for a configured store
func NewEngine(cfg config.Config, s store.Store, log zerolog.Logger) *gin.Engine {
	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}
	return handlers.NewRouter(handlers.New(s, log), cfg.CORSOrigins)
}
