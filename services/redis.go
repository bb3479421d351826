package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var errRedisDisabled = errors.New("redis client not initialized")

// RedisService is an optional shared cache tier. Without REDIS_ADDR it stays disabled and
// every caller keeps to its in-process state. Values are stored as JSON under keyPrefix.
type RedisService struct {
	appContext.DefaultService

	client    *redis.Client
	keyPrefix string
}

const REDIS_SVC = "redis_svc"

func (svc RedisService) Id() string {
	return REDIS_SVC
}

func (svc *RedisService) Configure(ctx *appContext.Context) error {
	svc.keyPrefix = shared.GetEnv("REDIS_KEY_PREFIX", "portfolio:")
	if addr := shared.GetEnv("REDIS_ADDR", ""); addr != "" {
		svc.client = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: shared.GetEnv("REDIS_PASSWORD", ""),
			DB:       shared.GetEnvInt("REDIS_DB", 0),
		})
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *RedisService) Start() error {
	if svc.client == nil {
		log.Info("REDIS_ADDR not set, shared cache disabled")
		return nil
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := svc.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.WithField("prefix", svc.keyPrefix).Info("Shared cache connected")
	return nil
}

func (svc *RedisService) Shutdown() {
	if svc.client == nil {
		return
	}
	if err := svc.client.Close(); err != nil {
		log.WithError(err).Warn("Failed to close redis client")
	}
}

func (svc *RedisService) Enabled() bool {
	return svc != nil && svc.client != nil
}

func (svc *RedisService) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !svc.Enabled() {
		return errRedisDisabled
	}

	body, err := shared.JSON().Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return svc.client.Set(ctx, svc.keyPrefix+key, body, ttl).Err()
}

// GetJSON reports whether key was present; dest is untouched on a miss.
func (svc *RedisService) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !svc.Enabled() {
		return false, errRedisDisabled
	}

	body, err := svc.client.Get(ctx, svc.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := shared.JSON().Unmarshal(body, dest); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}
