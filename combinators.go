package muse

import "github.com/samsarahq/go/oops"

// Value wraps an already-computed value as a done plan. It rejects values
// that are themselves plans or sources, since accepting one would silently
// double-wrap it and hide outstanding fetches from the evaluator.
func Value(v interface{}) (*Muse, error) {
	switch v.(type) {
	case *Muse:
		return nil, &AlreadyAstError{Value: v}
	case Source:
		return nil, &AlreadyAstError{Value: v}
	}
	return done(v), nil
}

// MustValue is Value, panicking on AlreadyAstError. Useful for literals a
// caller knows are plain values.
func MustValue(v interface{}) *Muse {
	m, err := Value(v)
	if err != nil {
		panic(err)
	}
	return m
}

// Wrap boxes an already-built plan (or a bare source, via FromSource) as a
// Value node: the data model's shorthand for "map(identity, [inner])"
// without the identity closure. The evaluator's inject step unwraps it in
// one step once inner is done, rather than going through a function call.
func Wrap(inner *Muse) *Muse {
	return &Muse{kind: valueNode, inner: inner}
}

// FromSource lifts a data-source request into a plan leaf. The request is
// not dispatched until the evaluator discovers it in the frontier.
func FromSource(s Source) *Muse {
	return &Muse{kind: sourceNode, source: s}
}

// composeFn builds f2 ∘ f1: applies f1, then feeds its result through f2,
// short-circuiting on either error.
func composeFn(f2, f1 transform) transform {
	return func(v interface{}) (interface{}, error) {
		mid, err := f1(v)
		if err != nil {
			return nil, err
		}
		return f2(mid)
	}
}

// fuse implements the composed-AST rule shared by Map and FlatMap: composing
// a new function f onto an existing composable node n, producing a node of
// kind resultKind unless n is already terminal.
//
//   - Done{v}     -> Done{f(v)}, applied eagerly.
//   - Value{inner} -> {resultKind, f, [inner]}.
//   - Map/FlatMap{g, cs} -> {resultKind, f ∘ g, cs}.
//
// Per the spec's open question on FlatMap fusion, composing a FlatMap onto
// an existing node always keeps the FlatMap shape (resultKind is whatever
// the caller asked for, never downgraded to Map).
func fuse(n *Muse, f transform, resultKind nodeKind) *Muse {
	switch n.kind {
	case doneNode:
		if n.err != nil {
			return n
		}
		v, err := f(n.value)
		if err != nil {
			return failed(err)
		}
		// For Map, f's result is already the final value. For FlatMap, f's
		// result is itself a plan/source/value that still needs lifting —
		// applying f does not, by itself, reach Done.
		if resultKind == flatMapNode {
			return lift(v)
		}
		return done(v)
	case valueNode:
		return &Muse{kind: resultKind, fn: f, children: []*Muse{n.inner}}
	case mapNode, flatMapNode:
		return &Muse{kind: resultKind, fn: composeFn(f, n.fn), children: n.children}
	default:
		panic(oops.Errorf("muse: fuse called on non-composable node kind %d", n.kind))
	}
}

// buildNode is the shared implementation of Map and FlatMap: apply the
// fusion shortcut when given a single already-composable child, otherwise
// build a plain node over the given children.
func buildNode(kind nodeKind, f transform, children []*Muse) *Muse {
	if len(children) == 1 && isComposable(children[0]) {
		return fuse(children[0], f, kind)
	}
	return &Muse{kind: kind, fn: f, children: children}
}

// Map applies f once every child plan is done. With a single child, f
// receives that child's value directly; with multiple children, f receives
// a []interface{} of their values in order.
func Map(f func(interface{}) (interface{}, error), children ...*Muse) *Muse {
	return buildNode(mapNode, f, children)
}

// FlatMap is like Map, but f yields another plan (or source, or plain
// value) to be further evaluated rather than a final value.
func FlatMap(f func(interface{}) (interface{}, error), children ...*Muse) *Muse {
	return buildNode(flatMapNode, f, children)
}

// Collect runs every plan in ms and resolves to their values in input
// order, regardless of the order their fetches complete in. Collect(nil)
// resolves to an empty slice without issuing any fetch.
func Collect(ms []*Muse) *Muse {
	if len(ms) == 0 {
		return done([]interface{}{})
	}
	identity := func(v interface{}) (interface{}, error) { return v, nil }
	return Map(identity, ms...)
}

// Traverse applies f to every element of xs, producing one plan per
// element, and collects the results in order. It is the list-oriented
// sibling of Collect: Collect assembles plans you already have, Traverse
// builds them from plain values first.
func Traverse(xs []interface{}, f func(interface{}) *Muse) *Muse {
	children := make([]*Muse, len(xs))
	for i, x := range xs {
		children[i] = f(x)
	}
	return Collect(children)
}
