package muse

import (
	"reflect"

	"github.com/samsarahq/go/oops"
)

// errNotADataSource is wrapped into a FetchFailedError when a Source
// implements only the Identity half of the capability and was nonetheless
// discovered in a plan's frontier.
var errNotADataSource = oops.Errorf("muse: source does not implement DataSource")

// AlreadyAstError is returned by Value when the caller passes a value that
// is already a plan or a source, which would otherwise silently hide
// outstanding fetches from the evaluator.
type AlreadyAstError struct {
	Value interface{}
}

func (e *AlreadyAstError) Error() string {
	return oops.Errorf("muse: value %#v is already a plan or source; wrap its source instead of the plan", e.Value).Error()
}

// FetchFailedError wraps an error returned by a DataSource's Fetch or
// BatchedSource's FetchMany call. It is the error the evaluator surfaces
// when a fetch promise rejects.
type FetchFailedError struct {
	Kind     reflect.Type
	Identity interface{}
	Err      error
}

func (e *FetchFailedError) Error() string {
	return oops.Wrapf(e.Err, "muse: fetch failed for %s{%v}", e.Kind, e.Identity).Error()
}

func (e *FetchFailedError) Unwrap() error {
	return e.Err
}

// BatchIncompleteError is returned when a BatchedSource's FetchMany omits
// one or more of the identities it was asked to resolve.
type BatchIncompleteError struct {
	Kind    reflect.Type
	Missing []interface{}
}

func (e *BatchIncompleteError) Error() string {
	return oops.Errorf("muse: batched fetch for %s is missing responses for %v", e.Kind, e.Missing).Error()
}

// DivergedError is an optional defensive guard: it is returned when
// evaluation exceeds Options.MaxLevels reduction/fetch rounds without
// reaching Done, which usually indicates a FlatMap that keeps producing
// new pending sources forever.
type DivergedError struct {
	Levels int
}

func (e *DivergedError) Error() string {
	return oops.Errorf("muse: evaluation did not converge after %d levels", e.Levels).Error()
}
