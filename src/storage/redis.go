package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"perfmon-dashboard/src/logger"
	"perfmon-dashboard/src/models"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	redisDialTimeout  = 5 * time.Second
	redisReadTimeout  = 3 * time.Second
	redisWriteTimeout = 3 * time.Second
	redisOpTimeout    = 10 * time.Second
)

// -----------------------------------------------------------------------------

// RedisArchive keeps each snapshot as one JSON document under
// <prefix>:snapshot:<fingerprint> and points <prefix>:latest at the newest.
type RedisArchive struct {
	Config *models.MConfig
	Client *redis.Client
	Prefix string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewRedisArchive(cfg *models.MConfig, log *logger.Logger) (*RedisArchive, error) {
	return &RedisArchive{
		Config: cfg,
		Prefix: cfg.Storage.RedisKeyPrefix,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (r *RedisArchive) Initialize() error {
	opt := &redis.Options{
		Addr: r.Config.Storage.RedisAddr,
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: redisDialTimeout}
			return dialer.DialContext(ctx, network, addr)
		},
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisReadTimeout,
		WriteTimeout: redisWriteTimeout,
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("redis ping %s: %w", opt.Addr, err)
	}

	r.Client = client
	return nil
}

// -----------------------------------------------------------------------------

func (r *RedisArchive) snapshotKey(fingerprint string) string {
	return fmt.Sprintf("%s:snapshot:%s", r.Prefix, fingerprint)
}

func (r *RedisArchive) latestKey() string {
	return r.Prefix + ":latest"
}

// -----------------------------------------------------------------------------

func (r *RedisArchive) SaveSnapshot(record models.MSnapshotRecord) error {
	fp := record.Stats.Fingerprint
	if fp == "" {
		return fmt.Errorf("snapshot has no fingerprint")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	_, err = r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.snapshotKey(fp), payload, 0)
		pipe.Set(ctx, r.latestKey(), fp, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", fp, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (r *RedisArchive) LoadSnapshot(fingerprint string) (*models.MSnapshotRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	payload, err := r.Client.Get(ctx, r.snapshotKey(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, fingerprint)
	}
	if err != nil {
		return nil, err
	}

	var record models.MSnapshotRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", fingerprint, err)
	}
	return &record, nil
}

// -----------------------------------------------------------------------------

func (r *RedisArchive) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}
