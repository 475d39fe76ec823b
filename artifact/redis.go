package artifact

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps a policy in a redis hash so trainer and server need not share a filesystem.
// Values live under Key, metadata under Key+":meta".
type RedisStore struct {
	client *redis.Client
	Key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{
		client: client,
		Key:    key,
	}
}

func (r *RedisStore) metaKey() string {
	return r.Key + ":meta"
}

// Save replaces whatever policy is stored under the key
func (r *RedisStore) Save(ctx context.Context, p *Policy) error {
	values := make(map[string]interface{}, p.Len())
	for k, v := range p.Values() {
		values[k] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.Key, r.metaKey())
		if len(values) > 0 {
			pipe.HSet(ctx, r.Key, values)
		}
		pipe.HSet(ctx, r.metaKey(), map[string]interface{}{
			"version":  FormatVersion,
			"run_id":   p.runID,
			"episodes": p.episodes,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving policy to redis: %w", err)
	}
	return nil
}

// Load reads the policy back with the same validation as the file format
func (r *RedisStore) Load(ctx context.Context) (*Policy, error) {
	meta, err := r.client.HGetAll(ctx, r.metaKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("loading policy metadata from redis: %w", err)
	}
	if len(meta) == 0 {
		return nil, fmt.Errorf("%w: redis key %s", ErrNotFound, r.Key)
	}
	version, err := strconv.Atoi(meta["version"])
	if err != nil || version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrCorrupt, meta["version"])
	}
	episodes, err := strconv.Atoi(meta["episodes"])
	if err != nil {
		return nil, fmt.Errorf("%w: episodes %q", ErrCorrupt, meta["episodes"])
	}

	raw, err := r.client.HGetAll(ctx, r.Key).Result()
	if err != nil {
		return nil, fmt.Errorf("loading policy values from redis: %w", err)
	}
	parsed := make(map[string]float64, len(raw))
	for k, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrCorrupt, k, err)
		}
		parsed[k] = v
	}
	values, err := parseValues(parsed)
	if err != nil {
		return nil, err
	}
	return &Policy{
		runID:    meta["run_id"],
		episodes: episodes,
		values:   values,
	}, nil
}
