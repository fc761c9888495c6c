package muse

import (
	"context"
	"reflect"
)

// Source is the minimal capability every data-source request must provide:
// a stable, structurally-comparable identity used as the dedup/cache key
// within its resource kind.
type Source interface {
	// Identity returns a value with structural equality, stable for a given
	// request. Two requests of the same Go type with equal identities are
	// treated as the same fetch and deduplicated.
	Identity() interface{}
}

// DataSource is a Source that knows how to fetch its own response.
// Failures propagate as the error return; the core never retries.
type DataSource interface {
	Source
	Fetch(ctx context.Context, env *Options) (interface{}, error)
}

// BatchedSource is a DataSource whose resource kind can resolve many
// requests in a single call. FetchMany must return a response for every
// identity among self and others; a missing key is reported back to the
// caller as BatchIncompleteError.
type BatchedSource interface {
	DataSource
	FetchMany(ctx context.Context, others []Source, env *Options) (map[interface{}]interface{}, error)
}

// kindOf returns the resource kind of a source request: the dynamic Go
// type of the concrete value behind the Source interface. Two requests
// share a kind iff they share a concrete type, matching the spec's "nominal
// type of the request value" definition while giving collision-free,
// string-free keys.
func kindOf(s Source) reflect.Type {
	return reflect.TypeOf(s)
}
