// Package promise provides the minimal future type the evaluator needs:
// make, resolved, map, flat_map, all and extract (spec §6.2). It is the
// only concurrency primitive the core depends on; everything else in the
// evaluator is synchronous tree rewriting between one promise.All join per
// level.
//
// The implementation is a generic cousin of thunder's graphql.thunk/fork:
// a goroutine computes a value/error pair and closes a done channel that
// Extract blocks on.
package promise

import "golang.org/x/sync/errgroup"

// Promise is a value of type T that may not be computed yet.
type Promise[T any] struct {
	value T
	err   error
	done  chan struct{}
}

// Make runs thunk in its own goroutine and returns a Promise for its
// result.
func Make[T any](thunk func() (T, error)) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{})}
	go func() {
		p.value, p.err = thunk()
		close(p.done)
	}()
	return p
}

// Resolved returns a Promise that is already complete with v.
func Resolved[T any](v T) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{}), value: v}
	close(p.done)
	return p
}

// Failed returns a Promise that is already complete with err.
func Failed[T any](err error) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{}), err: err}
	close(p.done)
	return p
}

// Extract blocks until p is complete and returns its value or error.
func (p *Promise[T]) Extract() (T, error) {
	<-p.done
	return p.value, p.err
}

// Map transforms a Promise's eventual value with f, short-circuiting if p
// failed or f errors.
func Map[T, U any](p *Promise[T], f func(T) (U, error)) *Promise[U] {
	return Make(func() (U, error) {
		v, err := p.Extract()
		if err != nil {
			var zero U
			return zero, err
		}
		return f(v)
	})
}

// FlatMap transforms a Promise's eventual value into another Promise and
// flattens it, short-circuiting if p failed.
func FlatMap[T, U any](p *Promise[T], f func(T) *Promise[U]) *Promise[U] {
	return Make(func() (U, error) {
		v, err := p.Extract()
		if err != nil {
			var zero U
			return zero, err
		}
		return f(v).Extract()
	})
}

// All waits for every promise in ps and returns their values in the same
// order, failing fast on the first error encountered (via an
// errgroup.Group, same join semantics as the evaluator's per-level
// fetch joins).
func All[T any](ps []*Promise[T]) *Promise[[]T] {
	return Make(func() ([]T, error) {
		results := make([]T, len(ps))
		errs := make(chan error, len(ps)+1)
		var g errgroup.Group
		for i, p := range ps {
			i, p := i, p
			g.Go(func() error {
				v, err := p.Extract()
				if err != nil {
					errs <- err
					return err
				}
				results[i] = v
				return nil
			})
		}
		go func() { errs <- g.Wait() }()
		if err := <-errs; err != nil {
			return nil, err
		}
		return results, nil
	})
}
