package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redigo "github.com/gomodule/redigo/redis"
	"github.com/todoapp/notifier/internal/cache"
	"github.com/todoapp/notifier/internal/config"
)

// scanCount is the COUNT hint passed to SCAN; deleteBatch caps the number
// of keys sent in one DEL.
const (
	scanCount   = 200
	deleteBatch = 500
)

// NewPool builds a connection pool from cfg. Connections are dialed lazily.
func NewPool(cfg config.RedisConfig) *redigo.Pool {
	opts := []redigo.DialOption{
		redigo.DialDatabase(cfg.DB),
		redigo.DialConnectTimeout(cfg.DialTimeout),
		redigo.DialReadTimeout(cfg.DialTimeout),
		redigo.DialWriteTimeout(cfg.DialTimeout),
	}
	if cfg.Password != "" {
		opts = append(opts, redigo.DialPassword(cfg.Password))
	}

	return &redigo.Pool{
		MaxIdle:     cfg.MaxIdle,
		IdleTimeout: cfg.IdleTimeout,
		DialContext: func(ctx context.Context) (redigo.Conn, error) {
			return redigo.DialContext(ctx, "tcp", cfg.Addr, opts...)
		},
		TestOnBorrow: func(c redigo.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

// Ping checks that a connection can be obtained and answers PING.
func Ping(ctx context.Context, pool *redigo.Pool) error {
	conn, err := pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis: get connection: %w", err)
	}
	defer conn.Close()

	if _, err := redigo.DoContext(conn, ctx, "PING"); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// KV implements cache.KV.
type KV struct {
	pool *redigo.Pool
}

var _ cache.KV = (*KV)(nil)

// NewKV wraps pool.
func NewKV(pool *redigo.Pool) *KV {
	return &KV{pool: pool}
}

func (kv *KV) conn(ctx context.Context) (redigo.Conn, error) {
	conn, err := kv.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("redis: get connection: %w", err)
	}
	return conn, nil
}

// Get implements cache.KV.
func (kv *KV) Get(ctx context.Context, key string) ([]byte, error) {
	conn, err := kv.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	value, err := redigo.Bytes(redigo.DoContext(conn, ctx, "GET", key))
	switch {
	case errors.Is(err, redigo.ErrNil):
		return nil, cache.ErrNil
	case err != nil:
		return nil, fmt.Errorf("redis: GET %s: %w", key, err)
	}
	return value, nil
}

// SetEx implements cache.KV. The expiry is applied with millisecond
// precision.
func (kv *KV) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	conn, err := kv.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	ms := ttl.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	if _, err := redigo.DoContext(conn, ctx, "SET", key, value, "PX", ms); err != nil {
		return fmt.Errorf("redis: SET %s: %w", key, err)
	}
	return nil
}

// ListMatching implements cache.KV with SCAN so the server is never
// blocked by a full keyspace walk.
func (kv *KV) ListMatching(ctx context.Context, pattern string) ([]string, error) {
	conn, err := kv.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return scanKeys(ctx, conn, pattern)
}

// DeleteMatching implements cache.KV.
func (kv *KV) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	conn, err := kv.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	keys, err := scanKeys(ctx, conn, pattern)
	if err != nil {
		return 0, err
	}
	return deleteKeys(ctx, conn, keys)
}

// DeleteMany implements cache.KV.
func (kv *KV) DeleteMany(ctx context.Context, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	conn, err := kv.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	return deleteKeys(ctx, conn, keys)
}

func scanKeys(ctx context.Context, conn redigo.Conn, pattern string) ([]string, error) {
	var (
		cursor = 0
		keys   []string
	)
	for {
		values, err := redigo.Values(redigo.DoContext(conn, ctx, "SCAN", cursor, "MATCH", pattern, "COUNT", scanCount))
		if err != nil {
			return nil, fmt.Errorf("redis: SCAN %s: %w", pattern, err)
		}
		if len(values) != 2 {
			return nil, fmt.Errorf("redis: SCAN %s: unexpected reply of %d elements", pattern, len(values))
		}

		cursor, err = redigo.Int(values[0], nil)
		if err != nil {
			return nil, fmt.Errorf("redis: SCAN %s: bad cursor: %w", pattern, err)
		}
		batch, err := redigo.Strings(values[1], nil)
		if err != nil {
			return nil, fmt.Errorf("redis: SCAN %s: bad keys: %w", pattern, err)
		}
		keys = append(keys, batch...)

		if cursor == 0 {
			return keys, nil
		}
	}
}

func deleteKeys(ctx context.Context, conn redigo.Conn, keys []string) (int, error) {
	deleted := 0
	for start := 0; start < len(keys); start += deleteBatch {
		end := min(start+deleteBatch, len(keys))
		n, err := redigo.Int(redigo.DoContext(conn, ctx, "DEL", redigo.Args{}.AddFlat(keys[start:end])...))
		deleted += n
		if err != nil {
			return deleted, fmt.Errorf("redis: DEL: %w", err)
		}
	}
	return deleted, nil
}
