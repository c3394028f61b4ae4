package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/deppfellow/apitour/internal/lib/jsonutil"
	"github.com/deppfellow/apitour/internal/schema"
)

// RedisStore keeps values in a hash. Records are written without their
// unset fields and parsed back through the schema, so set-tracking survives.
// Insertion order is kept in a companion sorted set scored by write time.
type RedisStore[V any] struct {
	client *redis.Client
	hash   string
	order  string
}

func NewRedisStore[V any](client *redis.Client, prefix, name string) *RedisStore[V] {
	return &RedisStore[V]{
		client: client,
		hash:   prefix + ":" + name,
		order:  prefix + ":" + name + ":order",
	}
}

func (s *RedisStore[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := s.client.HGet(ctx, s.hash, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, errors.Wrapf(err, "redis get %s/%s", s.hash, key)
	}

	return decodeValue[V](data)
}

func (s *RedisStore[V]) List(ctx context.Context) ([]V, error) {
	keys, err := s.client.ZRange(ctx, s.order, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "redis list %s", s.hash)
	}
	if len(keys) == 0 {
		return []V{}, nil
	}

	raw, err := s.client.HMGet(ctx, s.hash, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "redis list %s", s.hash)
	}

	out := make([]V, 0, len(raw))
	for _, r := range raw {
		str, ok := r.(string)
		if !ok {
			continue
		}
		v, err := decodeValue[V]([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *RedisStore[V]) Put(ctx context.Context, key string, value V) error {
	data, err := encodeValue(value)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.hash, key, data)
		pipe.ZAddNX(ctx, s.order, redis.Z{Score: float64(time.Now().UnixNano()), Member: key})
		return nil
	})
	return errors.Wrapf(err, "redis put %s/%s", s.hash, key)
}

func encodeValue(v any) ([]byte, error) {
	data, err := jsonutil.Marshal(schema.Dump(v, schema.DumpOptions{ExcludeUnset: true}))
	if err != nil {
		return nil, errors.Wrap(err, "encode stored value")
	}
	return data, nil
}

func decodeValue[V any](data []byte) (V, error) {
	var zero V

	raw, err := jsonutil.DecodeLoose(data)
	if err != nil {
		return zero, errors.Wrap(err, "decode stored value")
	}

	v, err := schema.Parse[V](raw)
	if err != nil {
		return zero, errors.Wrap(err, "stored value does not match schema")
	}
	return v, nil
}
