package kv

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Storage backed by Redis strings.
//
// Every write also scores its key in a sorted set named after the prefix
// ("{prefix}.written", or "kv:written" without a prefix) so [Redis.Purge] can
// find idle namespaces without reading the values.
type Redis struct {
	client redis.UniversalClient
	opts   *redisOptions
}

// NewRedis creates a Redis-backed storage.
// The client should be obtained from pkg/redis.Open.
//
// Example:
//
//	client, err := redis.Open(ctx, cfg.Redis)
//	s := kv.NewRedis(client,
//	    kv.WithRedisPrefix("academy"),
//	    kv.WithRedisTTL(30 * 24 * time.Hour),
//	)
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	o := defaultRedisOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Redis{client: client, opts: o}
}

// Get returns the value stored under key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.fullKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set stores value under key. With a TTL configured the expiry is refreshed.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	full := r.fullKey(key)
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		// Redis interprets 0 as no expiration.
		p.Set(ctx, full, value, max(r.opts.ttl, 0))
		p.ZAdd(ctx, r.writtenKey(), redis.Z{Score: float64(time.Now().UnixMilli()), Member: full})
		return nil
	})
	return err
}

// Delete removes key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	full := r.fullKey(key)
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, full)
		p.ZRem(ctx, r.writtenKey(), full)
		return nil
	})
	return err
}

// Keys lists keys starting with prefix using SCAN, so the server is never blocked.
func (r *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	pattern := escapeGlob(r.fullKey(prefix)) + "*"
	keys := make([]string, 0)

	var cursor uint64
	for {
		batch, next, err := r.client.Scan(ctx, cursor, pattern, r.opts.scanCount).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range batch {
			keys = append(keys, r.trimPrefix(k))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	// SCAN may return a key more than once.
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

// Purge deletes the namespaces under prefix whose newest key was written
// before before. See [Purger]. Keys written without the index, such as keys
// created before it existed, are left alone.
func (r *Redis) Purge(ctx context.Context, prefix string, before time.Time) (int64, error) {
	index := r.writtenKey()
	full := r.fullKey(prefix)

	written, err := r.scanWritten(ctx, index, escapeGlob(full)+"*")
	if err != nil {
		return 0, err
	}

	latest := make(map[string]float64)
	members := make(map[string][]string)
	for key, score := range written {
		ns, ok := namespaceOf(key, full)
		if !ok {
			continue
		}
		latest[ns] = max(latest[ns], score)
		members[ns] = append(members[ns], key)
	}

	cutoff := float64(before.UnixMilli())
	var stale []string
	for ns, score := range latest {
		if score < cutoff {
			stale = append(stale, members[ns]...)
		}
	}

	var removed int64
	for chunk := range slices.Chunk(stale, int(r.opts.scanCount)) {
		dels := make([]*redis.IntCmd, 0, len(chunk))
		_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
			for _, k := range chunk {
				dels = append(dels, p.Del(ctx, k))
				p.ZRem(ctx, index, k)
			}
			return nil
		})
		if err != nil {
			return removed, err
		}
		for _, cmd := range dels {
			removed += cmd.Val()
		}
	}
	return removed, nil
}

// scanWritten reads the write index entries matching pattern with ZSCAN.
func (r *Redis) scanWritten(ctx context.Context, index, pattern string) (map[string]float64, error) {
	written := make(map[string]float64)

	var cursor uint64
	for {
		batch, next, err := r.client.ZScan(ctx, index, cursor, pattern, r.opts.scanCount).Result()
		if err != nil {
			return nil, err
		}
		// ZSCAN replies with member, score pairs.
		for i := 0; i+1 < len(batch); i += 2 {
			score, err := strconv.ParseFloat(batch[i+1], 64)
			if err != nil {
				return nil, err
			}
			written[batch[i]] = score
		}
		cursor = next
		if cursor == 0 {
			return written, nil
		}
	}
}

// Close is a no-op. The client lifecycle belongs to the caller (pkg/redis.Shutdown).
func (r *Redis) Close() error {
	return nil
}

func (r *Redis) fullKey(key string) string {
	if r.opts.prefix == "" {
		return key
	}
	return r.opts.prefix + Separator + key
}

func (r *Redis) writtenKey() string {
	if r.opts.prefix == "" {
		return "kv:written"
	}
	return r.opts.prefix + ".written"
}

func (r *Redis) trimPrefix(key string) string {
	if r.opts.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, r.opts.prefix+Separator)
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob quotes the characters SCAN MATCH treats as wildcards.
func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}

var (
	_ Storage = (*Redis)(nil)
	_ Purger  = (*Redis)(nil)
)

// RedisOption configures the Redis storage.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix    string
	ttl       time.Duration
	scanCount int64
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{scanCount: 100}
}

// WithRedisPrefix stores every key as "{prefix}:{key}".
func WithRedisPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}

// WithRedisTTL expires keys that were not written for d.
// Default: 0 (keys never expire).
func WithRedisTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		o.ttl = d
	}
}

// WithScanCount sets the COUNT hint passed to SCAN.
// Default: 100.
func WithScanCount(n int64) RedisOption {
	return func(o *redisOptions) {
		if n > 0 {
			o.scanCount = n
		}
	}
}
