package app

import (
	"adaudit/internal/cache"
	"adaudit/internal/catalog"
	"adaudit/internal/config"
	"adaudit/internal/repository"
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// App holds the stores selected by configuration
type App struct {
	Catalog  *catalog.Catalog
	Audits   repository.AuditRepo
	Sessions cache.SessionStore

	mongo *mongo.Client
	redis *redis.Client
}

// LoadCatalog returns the catalog file named by the config, or the built-in one
func LoadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogFile != "" {
		return catalog.LoadFile(cfg.CatalogFile)
	}
	return catalog.Default()
}

// Open connects the configured backends
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	cat, err := LoadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"version":  cat.Version,
		"segments": len(cat.Segments()),
	}).Info("catalog loaded")

	a := &App{Catalog: cat}

	if cfg.Store == config.StoreMemory {
		log.Warn("STORE=memory: audits and sessions are lost on restart")
		a.Audits = repository.NewMemoryAuditRepo()
		a.Sessions = cache.NewMemorySessionCache(cfg.SessionTTL)
		return a, nil
	}

	if a.mongo, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI)); err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.mongo.Ping(pingCtx, nil); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	log.WithField("db", cfg.MongoDB).Info("connected to MongoDB")

	db := a.mongo.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("create indexes: %w", err)
	}

	a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := a.redis.Ping(ctx).Result(); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("ping Redis: %w", err)
	}
	log.WithField("addr", cfg.RedisAddr).Info("connected to Redis")

	a.Audits = repository.NewAuditRepo(db)
	a.Sessions = cache.NewSessionCache(a.redis, cfg.SessionTTL)
	return a, nil
}

// Close releases the backend connections
func (a *App) Close(ctx context.Context) {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.mongo != nil {
		a.mongo.Disconnect(ctx)
	}
}
