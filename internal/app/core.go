package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/toolshelf/internal/catalog"
	"github.com/MrSnakeDoc/toolshelf/internal/config"
	"github.com/MrSnakeDoc/toolshelf/internal/logger"
	"github.com/MrSnakeDoc/toolshelf/internal/mirror"
	"github.com/MrSnakeDoc/toolshelf/internal/notify"
	"github.com/MrSnakeDoc/toolshelf/internal/redis"
	redisstore "github.com/MrSnakeDoc/toolshelf/internal/store/redis"
	"github.com/MrSnakeDoc/toolshelf/internal/utils"
)

// Core is everything a command needs to work on the catalog.
type Core struct {
	Logger        logger.Logger
	RedisClient   *goredis.Client
	Store         *redisstore.Store
	Mirror        *mirror.Mirror // nil when no mirror path is configured
	Notifications *notify.Feed
	Catalog       *catalog.Catalog
}

// NewCore connects to Redis and assembles the catalog. It does not load it.
func NewCore(cfg *config.Config, log logger.Logger) (*Core, error) {
	log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	client, err := redis.New(RedisOptions(cfg), log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("Redis initialized successfully")

	c := &Core{
		Logger:        log,
		RedisClient:   client,
		Store:         redisstore.NewStore(client),
		Notifications: notify.NewFeed(log, cfg.NotifyCapacity),
	}

	opts := catalog.Options{
		UndoWindow:   cfg.UndoWindow,
		StoreTimeout: cfg.StoreTimeout,
	}
	if cfg.MirrorPath != "" {
		m, err := mirror.Open(cfg.MirrorPath)
		if err != nil {
			// the mirror is a convenience; run without it
			log.Warn("local mirror disabled",
				logger.String("path", cfg.MirrorPath),
				logger.Error(err))
		} else {
			c.Mirror = m
			opts.Mirror = m
		}
	}

	c.Catalog = catalog.New(c.Store, c.Notifications, log, opts)
	return c, nil
}

// Close finalizes a pending delete, waits for background store calls and
// releases connections.
func (c *Core) Close(ctx context.Context) {
	c.Catalog.Close(ctx)
	if c.Mirror != nil {
		utils.CloseLogged(c.Mirror, c.Logger, "mirror")
	}
	utils.CloseLogged(c.RedisClient, c.Logger, "redis")
}

// RedisOptions maps the configuration onto the connector.
func RedisOptions(cfg *config.Config) redis.ConnectOptions {
	return redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}
}
