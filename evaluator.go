package muse

import (
	"context"
	"reflect"

	"github.com/samsarahq/muse/promise"
)

// inject walks m top-down once, resolving cache hits to Done, reducing
// Map/FlatMap nodes whose children are all Done, and collecting the Source
// leaves still outstanding (the frontier). It returns the rewritten node and
// that frontier, or an error if a user map/flat_map function failed or a
// construction-time fusion had already failed.
func inject(m *Muse, cache *Cache) (*Muse, []Source, error) {
	switch m.kind {
	case doneNode:
		if m.err != nil {
			return nil, nil, m.err
		}
		return m, nil, nil

	case sourceNode:
		kind := kindOf(m.source)
		if resp, ok := cache.Lookup(kind, m.source.Identity()); ok {
			return done(resp), nil, nil
		}
		return liftSource(m.source), []Source{m.source}, nil

	case valueNode:
		injChild, frontier, err := inject(m.inner, cache)
		if err != nil {
			return nil, nil, err
		}
		if injChild.IsDone() {
			return done(injChild.value), frontier, nil
		}
		return injChild, frontier, nil

	case mapNode:
		newChildren, frontier, allDone, err := injectChildren(m.children, cache)
		if err != nil {
			return nil, nil, err
		}
		if !allDone {
			return &Muse{kind: mapNode, fn: m.fn, children: newChildren}, frontier, nil
		}
		v, err := m.fn(extractValues(newChildren))
		if err != nil {
			return nil, nil, err
		}
		return done(v), nil, nil

	case flatMapNode:
		newChildren, frontier, allDone, err := injectChildren(m.children, cache)
		if err != nil {
			return nil, nil, err
		}
		if !allDone {
			return &Muse{kind: flatMapNode, fn: m.fn, children: newChildren}, frontier, nil
		}
		r, err := m.fn(extractValues(newChildren))
		if err != nil {
			return nil, nil, err
		}
		next := lift(r)
		injNext, nextFrontier, err := inject(next, cache)
		if err != nil {
			return nil, nil, err
		}
		return injNext, nextFrontier, nil

	default:
		panic("muse: unreachable node kind")
	}
}

// injectChildren injects every child of a Map/FlatMap node and aggregates
// their frontiers. allDone is true iff every child reduced to Done.
func injectChildren(children []*Muse, cache *Cache) (newChildren []*Muse, frontier []Source, allDone bool, err error) {
	newChildren = make([]*Muse, len(children))
	allDone = true
	for i, c := range children {
		nc, f, cerr := inject(c, cache)
		if cerr != nil {
			return nil, nil, false, cerr
		}
		newChildren[i] = nc
		frontier = append(frontier, f...)
		if !nc.IsDone() {
			allDone = false
		}
	}
	return newChildren, frontier, allDone, nil
}

// extractValues implements the single-child calling convention: a lone
// child's value is passed directly, otherwise an ordered slice of values.
func extractValues(children []*Muse) interface{} {
	if len(children) == 1 {
		return children[0].Value()
	}
	values := make([]interface{}, len(children))
	for i, c := range children {
		values[i] = c.Value()
	}
	return values
}

// lift converts a FlatMap's continuation result into a plan node: a *Muse
// is used as-is, a Source is wrapped as a pending leaf, and anything else
// is treated as an already-computed value.
func lift(r interface{}) *Muse {
	switch v := r.(type) {
	case *Muse:
		return v
	case Source:
		return FromSource(v)
	default:
		return done(v)
	}
}

// groupByKind partitions a frontier by resource kind and deduplicates
// within each kind by identity, keeping the first occurrence — the dedup
// step of spec §4.4.
func groupByKind(frontier []Source) map[reflect.Type][]Source {
	seenByKind := make(map[reflect.Type]map[interface{}]bool)
	groups := make(map[reflect.Type][]Source)
	for _, s := range frontier {
		kind := kindOf(s)
		id := s.Identity()
		seen := seenByKind[kind]
		if seen == nil {
			seen = make(map[interface{}]bool)
			seenByKind[kind] = seen
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		groups[kind] = append(groups[kind], s)
	}
	return groups
}

type kindResponses struct {
	kind      reflect.Type
	responses map[interface{}]interface{}
}

// evaluate runs the level-by-level loop of spec §4.4 to completion: inject,
// check the frontier, dispatch and merge, repeat.
func evaluate(ctx context.Context, root *Muse, cache *Cache, env *Options) (interface{}, error) {
	logger := env.logger()
	levels := 0
	for {
		injected, frontier, err := inject(root, cache)
		if err != nil {
			return nil, err
		}
		root = injected

		if len(frontier) == 0 {
			if root.IsDone() {
				logger.Debug("muse: evaluation complete", "levels", levels)
				return root.Value(), nil
			}
			// Progress was made purely by tree reductions; re-inject the same
			// cache against the rewritten tree. Bounded by AST size.
			levels++
			if err := checkDiverged(env, levels); err != nil {
				return nil, err
			}
			continue
		}

		groups := groupByKind(frontier)
		levels++
		if err := checkDiverged(env, levels); err != nil {
			return nil, err
		}
		logger.Debug("muse: dispatching level", "kinds", len(groups), "requests", len(frontier))

		promises := make([]*promise.Promise[kindResponses], 0, len(groups))
		for kind, reqs := range groups {
			kind, reqs := kind, reqs
			fetched := dispatch(ctx, kind, reqs, env)
			promises = append(promises, promise.Map(fetched, func(resp map[interface{}]interface{}) (kindResponses, error) {
				return kindResponses{kind: kind, responses: resp}, nil
			}))
		}

		results, err := promise.All(promises).Extract()
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			cache.Merge(r.kind, r.responses)
		}
	}
}

func checkDiverged(env *Options, levels int) error {
	if env.MaxLevels > 0 && levels > env.MaxLevels {
		return &DivergedError{Levels: levels}
	}
	return nil
}
