package muse

import (
	"context"
	"reflect"

	"github.com/samsarahq/muse/promise"
)

// dispatch implements the fetcher's dispatch rule (spec §4.3) for a
// non-empty list of requests already deduplicated by identity and known to
// share a single resource kind. It returns a promise resolving to a map of
// identity to response covering every request in reqs.
func dispatch(ctx context.Context, kind reflect.Type, reqs []Source, env *Options) *promise.Promise[map[interface{}]interface{}] {
	if len(reqs) == 1 {
		return dispatchOne(ctx, kind, reqs[0], env)
	}
	if batched, ok := reqs[0].(BatchedSource); ok {
		return dispatchBatch(ctx, kind, batched, reqs[1:], env)
	}
	return dispatchConcurrent(ctx, kind, reqs, env)
}

func dispatchOne(ctx context.Context, kind reflect.Type, req Source, env *Options) *promise.Promise[map[interface{}]interface{}] {
	ds, ok := req.(DataSource)
	if !ok {
		return promise.Failed[map[interface{}]interface{}](notADataSourceError(kind))
	}
	return promise.Make(func() (map[interface{}]interface{}, error) {
		resp, err := ds.Fetch(ctx, env)
		if err != nil {
			return nil, &FetchFailedError{Kind: kind, Identity: ds.Identity(), Err: err}
		}
		return map[interface{}]interface{}{ds.Identity(): resp}, nil
	})
}

func dispatchBatch(ctx context.Context, kind reflect.Type, first BatchedSource, rest []Source, env *Options) *promise.Promise[map[interface{}]interface{}] {
	return promise.Make(func() (map[interface{}]interface{}, error) {
		resp, err := first.FetchMany(ctx, rest, env)
		if err != nil {
			return nil, &FetchFailedError{Kind: kind, Identity: first.Identity(), Err: err}
		}

		var missing []interface{}
		if _, ok := resp[first.Identity()]; !ok {
			missing = append(missing, first.Identity())
		}
		for _, r := range rest {
			if _, ok := resp[r.Identity()]; !ok {
				missing = append(missing, r.Identity())
			}
		}
		if len(missing) > 0 {
			return nil, &BatchIncompleteError{Kind: kind, Missing: missing}
		}
		return resp, nil
	})
}

func dispatchConcurrent(ctx context.Context, kind reflect.Type, reqs []Source, env *Options) *promise.Promise[map[interface{}]interface{}] {
	fetches := make([]*promise.Promise[fetchResult], len(reqs))
	for i, r := range reqs {
		r := r
		ds, ok := r.(DataSource)
		if !ok {
			fetches[i] = promise.Failed[fetchResult](notADataSourceError(kind))
			continue
		}
		fetches[i] = promise.Make(func() (fetchResult, error) {
			resp, err := ds.Fetch(ctx, env)
			if err != nil {
				return fetchResult{}, &FetchFailedError{Kind: kind, Identity: ds.Identity(), Err: err}
			}
			return fetchResult{id: ds.Identity(), response: resp}, nil
		})
	}

	joined := promise.All(fetches)
	return promise.Map(joined, func(results []fetchResult) (map[interface{}]interface{}, error) {
		out := make(map[interface{}]interface{}, len(results))
		for _, r := range results {
			out[r.id] = r.response
		}
		return out, nil
	})
}

type fetchResult struct {
	id       interface{}
	response interface{}
}

func notADataSourceError(kind reflect.Type) error {
	return &FetchFailedError{Kind: kind, Err: errNotADataSource}
}
