package redisclient

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Client wraps a Redis client with OpenTelemetry tracing.
// Only the commands the CEP cache needs are exposed.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new traced Redis client
func NewClient(client *redis.Client) *Client {
	return &Client{rdb: client}
}

// NewClientFromURL parses a redis:// URL and returns a traced client
func NewClientFromURL(rawURL string) (*Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return NewClient(redis.NewClient(opts)), nil
}

func (c *Client) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	attrs = append(attrs,
		attribute.String("redis.operation", op),
		attribute.String("redis.client", "app-cadastro"),
	)
	ctx, span := otel.Tracer("redis").Start(ctx, "redis."+op, trace.WithAttributes(attrs...))
	return ctx, span, time.Now()
}

// finish closes the span; redis.Nil is a cache miss, not a failure
func finish(span trace.Span, start time.Time, err error) {
	span.SetAttributes(attribute.Int64("redis.duration_ms", time.Since(start).Milliseconds()))
	if err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "success")
	}
	span.End()
}

// Get wraps Redis GET
func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	ctx, span, start := c.start(ctx, "get", attribute.String("redis.key", key))
	cmd := c.rdb.Get(ctx, key)
	finish(span, start, cmd.Err())
	return cmd
}

// Set wraps Redis SET with an expiration
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	ctx, span, start := c.start(ctx, "set",
		attribute.String("redis.key", key),
		attribute.String("redis.expiration", expiration.String()),
	)
	cmd := c.rdb.Set(ctx, key, value, expiration)
	finish(span, start, cmd.Err())
	return cmd
}

// Del wraps Redis DEL
func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	ctx, span, start := c.start(ctx, "del", attribute.Int("redis.key_count", len(keys)))
	cmd := c.rdb.Del(ctx, keys...)
	finish(span, start, cmd.Err())
	return cmd
}

// TTL wraps Redis TTL
func (c *Client) TTL(ctx context.Context, key string) *redis.DurationCmd {
	ctx, span, start := c.start(ctx, "ttl", attribute.String("redis.key", key))
	cmd := c.rdb.TTL(ctx, key)
	finish(span, start, cmd.Err())
	return cmd
}

// Ping wraps Redis PING
func (c *Client) Ping(ctx context.Context) *redis.StatusCmd {
	ctx, span, start := c.start(ctx, "ping")
	cmd := c.rdb.Ping(ctx)
	finish(span, start, cmd.Err())
	return cmd
}

// PoolStats returns connection pool statistics
func (c *Client) PoolStats() *redis.PoolStats {
	return c.rdb.PoolStats()
}

// Close releases the underlying connection pool
func (c *Client) Close() error {
	return c.rdb.Close()
}
