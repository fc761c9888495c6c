package muse

import (
	"context"

	"github.com/samsarahq/muse/promise"
)

// Options configures a single Execute/Run/RunSync call. It is the env every
// Fetch and FetchMany call receives, plus the handful of keys the core
// itself recognizes.
type Options struct {
	// Cache is the run's cache; the run reads it and merges its fetched
	// responses into it. Defaults to a fresh, empty Cache.
	Cache *Cache
	// Extra carries caller-defined values through to every Fetch/FetchMany
	// call; the core never reads it.
	Extra map[string]interface{}
	// Logger receives evaluator diagnostics (level counts, dispatch sizes).
	// Defaults to a no-op logger.
	Logger Logger
	// MaxLevels bounds the number of fetch/merge rounds before the
	// evaluator gives up with a DivergedError. Zero (the default) disables
	// the guard.
	MaxLevels int
}

func (o *Options) logger() Logger {
	if o == nil || o.Logger == nil {
		return noopLogger{}
	}
	return o.Logger
}

// Get returns a caller-defined Extra value by key.
func (o *Options) Get(key string) (interface{}, bool) {
	if o == nil || o.Extra == nil {
		return nil, false
	}
	v, ok := o.Extra[key]
	return v, ok
}

// withDefaults returns a copy of o (or a fresh zero value if o is nil) with
// an empty Cache filled in when none was supplied. The copy means a Cache
// filled in here is never written back into o, so repeated calls with no
// Cache each start empty; a Cache the caller supplied is shared by those
// calls and keeps the responses of every run.
func (o *Options) withDefaults() *Options {
	var cp Options
	if o != nil {
		cp = *o
	}
	if cp.Cache == nil {
		cp.Cache = NewCache()
	}
	return &cp
}

// ExecuteResult is the pair Execute resolves to: the plan's final value and
// the cache accumulated while computing it.
type ExecuteResult struct {
	Value interface{}
	Cache *Cache
}

// Execute evaluates plan to completion and resolves to both its value and
// the cache built up along the way, mirroring spec's execute(plan, opts).
func Execute(ctx context.Context, plan *Muse, opts *Options) *promise.Promise[ExecuteResult] {
	opts = opts.withDefaults()
	return promise.Make(func() (ExecuteResult, error) {
		value, err := evaluate(ctx, plan, opts.Cache, opts)
		if err != nil {
			return ExecuteResult{}, err
		}
		return ExecuteResult{Value: value, Cache: opts.Cache}, nil
	})
}

// Run evaluates plan to completion and resolves to its value, discarding
// the cache (spec's run(plan, opts)).
func Run(ctx context.Context, plan *Muse, opts *Options) *promise.Promise[interface{}] {
	return promise.Map(Execute(ctx, plan, opts), func(r ExecuteResult) (interface{}, error) {
		return r.Value, nil
	})
}

// RunSync blocks on Run and returns its value or error directly, mirroring
// spec's run!(plan, opts).
func RunSync(ctx context.Context, plan *Muse, opts *Options) (interface{}, error) {
	return Run(ctx, plan, opts).Extract()
}
