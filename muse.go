// Package muse implements a small combinator library for declarative
// remote-data access. Application code describes what data it needs as a
// composable plan (a Muse); the evaluator decides how to fetch it: running
// independent requests concurrently, batching same-kind requests into one
// call, deduplicating identical requests, and caching results for the life
// of a single run.
package muse

import "fmt"

// nodeKind tags the shape of a Muse node. A Muse is exactly one of these
// five shapes; the evaluator dispatches on kind with a single switch.
type nodeKind int

const (
	doneNode nodeKind = iota
	valueNode
	mapNode
	flatMapNode
	sourceNode
)

// transform is the function carried by a Map or FlatMap node. It receives
// either a single child value (when there is exactly one child) or a
// []interface{} of child values in child order.
type transform func(interface{}) (interface{}, error)

// Muse is a node in a plan tree. Only the fields listed for its kind are
// meaningful:
//
//	doneNode:    value holds the fully evaluated result, or err the failure.
//	valueNode:   inner holds the wrapped subplan.
//	mapNode:     fn and children; fn runs once every child is doneNode.
//	flatMapNode: fn and children; fn yields another Muse to keep evaluating.
//	sourceNode:  source holds the pending request.
type Muse struct {
	kind     nodeKind
	value    interface{}
	err      error
	inner    *Muse
	fn       transform
	children []*Muse
	source   Source
}

// IsDone reports whether m has reached a final value (successful or failed).
func (m *Muse) IsDone() bool {
	return m.kind == doneNode
}

// Value returns the value of a done node. It panics if m is not done;
// callers are expected to check IsDone (or only call this from the
// evaluator, which maintains that invariant).
func (m *Muse) Value() interface{} {
	if m.kind != doneNode {
		panic(fmt.Sprintf("muse: Value called on non-done node (kind %d)", m.kind))
	}
	return m.value
}

// Err returns the terminal error recorded on a done node, if any.
func (m *Muse) Err() error {
	return m.err
}

func done(v interface{}) *Muse {
	return &Muse{kind: doneNode, value: v}
}

func failed(err error) *Muse {
	return &Muse{kind: doneNode, err: err}
}

// liftSource wraps a bare Source into a one-child Map node keyed by the
// identity function, matching the inject step's "lift to Map{identity,
// [Source(r)]}" rule (spec §4.4).
func liftSource(s Source) *Muse {
	return &Muse{
		kind:     mapNode,
		fn:       func(v interface{}) (interface{}, error) { return v, nil },
		children: []*Muse{{kind: sourceNode, source: s}},
	}
}

// isComposable reports whether m is a node that composition (map/flat_map
// fusion) may fold a new function into, per the composed-AST rule.
func isComposable(m *Muse) bool {
	switch m.kind {
	case doneNode, valueNode, mapNode, flatMapNode:
		return true
	default:
		return false
	}
}
