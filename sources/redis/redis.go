// Package redis is a worked BatchedSource implementation backed by Redis,
// batching many Key requests into a single MGET.
package redis

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/samsarahq/go/oops"

	"github.com/samsarahq/muse"
)

// Key requests the value for a single Redis key via Client.
type Key struct {
	Client *redis.Client
	Name   string
}

// Identity implements muse.Source.
func (k *Key) Identity() interface{} {
	return k.Name
}

// Fetch implements muse.DataSource with a plain GET.
func (k *Key) Fetch(ctx context.Context, env *muse.Options) (interface{}, error) {
	v, err := k.Client.Get(ctx, k.Name).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Wrapf(err, "GET %s", k.Name)
	}
	return v, nil
}

// FetchMany implements muse.BatchedSource with a single MGET covering self
// and every other Key in the batch.
func (k *Key) FetchMany(ctx context.Context, others []muse.Source, env *muse.Options) (map[interface{}]interface{}, error) {
	names := make([]string, 0, len(others)+1)
	names = append(names, k.Name)
	for _, o := range others {
		key, ok := o.(*Key)
		if !ok {
			return nil, oops.Errorf("redis: FetchMany received a non-*Key source %T", o)
		}
		names = append(names, key.Name)
	}

	values, err := k.Client.MGet(ctx, names...).Result()
	if err != nil {
		return nil, oops.Wrapf(err, "MGET of %d keys", len(names))
	}

	out := make(map[interface{}]interface{}, len(names))
	for i, name := range names {
		out[name] = values[i]
	}
	return out, nil
}
