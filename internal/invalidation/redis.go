package invalidation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

const keyPrefix = "dryad:marker:"

type redisMarkers struct {
	log *logger.Logger
	rdb goredis.UniversalClient
}

// NewRedisMarkers shares versions across instances through Redis counters.
func NewRedisMarkers(log *logger.Logger, addr string) (Markers, io.Closer, error) {
	if log == nil {
		return nil, nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, nil, fmt.Errorf("missing redis addr")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisMarkersFromClient(log, rdb), rdb, nil
}

// NewRedisMarkersFromClient wraps an existing client.
func NewRedisMarkersFromClient(log *logger.Logger, rdb goredis.UniversalClient) Markers {
	return &redisMarkers{log: log.With("service", "RedisMarkers"), rdb: rdb}
}

func (m *redisMarkers) Bump(ctx context.Context, name string) (int64, error) {
	v, err := m.rdb.Incr(ctx, keyPrefix+name).Result()
	if err != nil {
		m.log.Warn("marker bump failed", "marker", name, "error", err)
		return 0, fmt.Errorf("bump %s: %w", name, err)
	}
	return v, nil
}

func (m *redisMarkers) Version(ctx context.Context, name string) (int64, error) {
	v, err := m.rdb.Get(ctx, keyPrefix+name).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", name, err)
	}
	return v, nil
}
