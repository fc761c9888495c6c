package muse_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samsarahq/muse"
)

// httpSource is the running example from the spec's scenarios: a request
// identified by its url alone (params are carried but not part of the
// identity) with a canned response.
type httpSource struct {
	url      string
	params   map[string]string
	response map[string]interface{}
	calls    *int32
}

type httpIdentity struct {
	url string
}

func (s *httpSource) Identity() interface{} {
	return httpIdentity{url: s.url}
}

func (s *httpSource) Fetch(ctx context.Context, env *muse.Options) (interface{}, error) {
	if s.calls != nil {
		atomic.AddInt32(s.calls, 1)
	}
	return map[string]interface{}{"body": s.response}, nil
}

func identityFn(v interface{}) (interface{}, error) { return v, nil }

func TestValuePurity(t *testing.T) {
	plan, err := muse.Value(3)
	require.NoError(t, err)

	v, err := muse.RunSync(context.Background(), plan, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestValueRejectsPlan(t *testing.T) {
	inner, err := muse.Value(3)
	require.NoError(t, err)

	_, err = muse.Value(inner)
	require.Error(t, err)
	var alreadyAst *muse.AlreadyAstError
	assert.ErrorAs(t, err, &alreadyAst)
}

func TestValueRejectsSource(t *testing.T) {
	_, err := muse.Value(&httpSource{url: "x"})
	require.Error(t, err)
}

func TestIdentityLaw(t *testing.T) {
	// map(p, identity) evaluates to the same value as p.
	base, err := muse.Value(42)
	require.NoError(t, err)
	mapped := muse.Map(identityFn, base)

	v1, err := muse.RunSync(context.Background(), base, nil)
	require.NoError(t, err)
	v2, err := muse.RunSync(context.Background(), mapped, nil)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestCompositionLaw(t *testing.T) {
	// map(map(p, g), f) ≡ map(p, f ∘ g).
	g := func(v interface{}) (interface{}, error) { return v.(int) + 1, nil }
	f := func(v interface{}) (interface{}, error) { return v.(int) * 2, nil }

	base, err := muse.Value(10)
	require.NoError(t, err)

	nested := muse.Map(f, muse.Map(g, base))
	fused := muse.Map(func(v interface{}) (interface{}, error) {
		mid, err := g(v)
		if err != nil {
			return nil, err
		}
		return f(mid)
	}, base)

	v1, err := muse.RunSync(context.Background(), nested, nil)
	require.NoError(t, err)
	v2, err := muse.RunSync(context.Background(), fused, nil)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestMapFusesOverDoneEagerly(t *testing.T) {
	var applied bool
	base, err := muse.Value(5)
	require.NoError(t, err)

	fused := muse.Map(func(v interface{}) (interface{}, error) {
		applied = true
		return v.(int) + 1, nil
	}, base)

	// Map's fusion rule applies eagerly at construction time for a Done
	// child, before Execute/Run ever sees the plan.
	assert.True(t, applied)

	v, err := muse.RunSync(context.Background(), fused, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, v)
}

func TestCollectEmpty(t *testing.T) {
	plan := muse.Collect(nil)
	v, err := muse.RunSync(context.Background(), plan, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{}, v)
}

func TestCollectOrderPreservedRegardlessOfCompletionOrder(t *testing.T) {
	var calls int32
	fast := &httpSource{url: "/fast", response: map[string]interface{}{"n": 1}, calls: &calls}
	slow := &httpSource{url: "/slow", response: map[string]interface{}{"n": 2}, calls: &calls}

	plan := muse.Collect([]*muse.Muse{muse.FromSource(slow), muse.FromSource(fast)})
	v, err := muse.RunSync(context.Background(), plan, nil)
	require.NoError(t, err)

	values := v.([]interface{})
	require.Len(t, values, 2)
	assert.Equal(t, map[string]interface{}{"body": slow.response}, values[0])
	assert.Equal(t, map[string]interface{}{"body": fast.response}, values[1])
}

func TestTraverse(t *testing.T) {
	xs := []interface{}{1, 2, 3}
	plan := muse.Traverse(xs, func(x interface{}) *muse.Muse {
		return muse.MustValue(x.(int) * 10)
	})

	v, err := muse.RunSync(context.Background(), plan, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{10, 20, 30}, v)
}

func TestWrapUnwrapsOnceInnerIsDone(t *testing.T) {
	inner, err := muse.Value("hello")
	require.NoError(t, err)
	wrapped := muse.Wrap(inner)

	v, err := muse.RunSync(context.Background(), wrapped, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}
