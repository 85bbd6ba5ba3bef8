package config

import (
	"context"
	"strings"
	"time"

	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// Redis client, nil when the CEP cache is disabled or unreachable
	Redis *redisclient.Client
)

// InitRedis initializes the Redis connection used by the CEP lookup cache.
// The front-end works without Redis; on failure Redis stays nil.
func InitRedis() {
	if !AppConfig.CEPCacheOn {
		logging.Logger.Info("CEP cache is disabled")
		return
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         AppConfig.RedisURI,
		Password:     AppConfig.RedisPassword,
		DB:           AppConfig.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	client := redisclient.NewClient(redisClient)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logging.Logger.Error("failed to connect to Redis, CEP cache disabled",
			zap.String("uri", maskRedisURI(AppConfig.RedisURI)),
			zap.Error(err))
		_ = redisClient.Close()
		return
	}

	Redis = client
	logging.Logger.Info("connected to Redis",
		zap.String("uri", maskRedisURI(AppConfig.RedisURI)))
}

// CloseRedis releases the Redis connection pool
func CloseRedis() {
	if Redis == nil {
		return
	}
	if err := Redis.Close(); err != nil {
		logging.Logger.Warn("failed to close Redis client", zap.Error(err))
	}
	Redis = nil
}

// maskRedisURI masks credentials in a redis:// URI
func maskRedisURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at < 0 {
		return uri
	}
	scheme := ""
	if i := strings.Index(uri, "://"); i >= 0 && i < at {
		scheme = uri[:i+3]
	}
	return scheme + "****:****@" + uri[at+1:]
}
