package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/models"
	"github.com/prefeitura-rio/app-cadastro/internal/redisclient"
)

const cepCacheKeyPrefix = "app-cadastro:cep:"

// CEPCache keeps successful postal code lookups in Redis. A nil *CEPCache
// is valid and never hits.
type CEPCache struct {
	client *redisclient.Client
	ttl    time.Duration
	logger *logging.SafeLogger
}

// NewCEPCache returns nil when client is nil, which disables caching
func NewCEPCache(client *redisclient.Client, ttl time.Duration, logger *logging.SafeLogger) *CEPCache {
	if client == nil {
		return nil
	}
	return &CEPCache{client: client, ttl: ttl, logger: logger.Named("cep_cache")}
}

func cepCacheKey(cep string) string {
	return cepCacheKeyPrefix + cep
}

// Get returns the cached fragment for a canonical CEP
func (c *CEPCache) Get(ctx context.Context, cep string) (models.AddressFragment, bool) {
	if c == nil {
		return models.AddressFragment{}, false
	}

	data, err := c.client.Get(ctx, cepCacheKey(cep)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cep cache read failed", zap.String("cep", cep), zap.Error(err))
		}
		return models.AddressFragment{}, false
	}

	var frag models.AddressFragment
	if err := json.Unmarshal(data, &frag); err != nil {
		c.logger.Warn("discarding corrupt cep cache entry", zap.String("cep", cep), zap.Error(err))
		_ = c.client.Del(ctx, cepCacheKey(cep)).Err()
		return models.AddressFragment{}, false
	}
	return frag, true
}

// Set stores a fragment; failures are logged and otherwise ignored
func (c *CEPCache) Set(ctx context.Context, cep string, frag models.AddressFragment) {
	if c == nil {
		return
	}

	data, err := json.Marshal(frag)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cepCacheKey(cep), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cep cache write failed", zap.String("cep", cep), zap.Error(err))
	}
}
